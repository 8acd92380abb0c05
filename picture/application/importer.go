package application

import (
	"bytes"
	"context"
	"crypto/sha256"
	"fmt"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/dfryer1193/pictures/picture/domain"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/rwcarlsen/goexif/exif"
	"github.com/rwcarlsen/goexif/mknote"
)

// Fields the importer adds to a picture document
const (
	FieldSourcePath = "source_path"
	FieldSHA256     = "sha256"
	FieldTakenAt    = "taken_at"
	FieldCamera     = "camera"
)

var registerExifParsers sync.Once

// Importer copies JPEG files into the picture directory and records a picture
// document for each.
type Importer struct {
	svc     *PictureService
	runInTx domain.TxFunc
	newID   func() string
}

// NewImporter creates an importer. The document write and the file write run
// through runInTx so a failed copy does not leave a record behind on
// transactional backends.
func NewImporter(svc *PictureService, runInTx domain.TxFunc) *Importer {
	return &Importer{
		svc:     svc,
		runInTx: runInTx,
		newID:   uuid.NewString,
	}
}

// Import reads the JPEG at sourcePath and stores it as a new picture of snapID.
// A file whose content was already imported into the same snap is rejected
// with domain.ErrDocumentConfiguration.
func (i *Importer) Import(ctx context.Context, sourcePath, snapID string) (*domain.Document, error) {
	content, err := os.ReadFile(sourcePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", sourcePath, err)
	}

	if contentType := http.DetectContentType(content); contentType != "image/jpeg" {
		return nil, fmt.Errorf("%w: %s is %s, not a JPEG", domain.ErrDocumentConfiguration, sourcePath, contentType)
	}

	sum := fmt.Sprintf("%x", sha256.Sum256(content))
	snapID = domain.CanonicalID(snapID)

	duplicate := domain.Filter{FieldSHA256: sum}
	if snapID != "" {
		duplicate[domain.FieldSnapID] = snapID
	}
	existing, err := i.svc.FindMany(ctx, duplicate)
	if err != nil {
		return nil, err
	}
	if len(existing) > 0 {
		return nil, fmt.Errorf("%w: %s already imported into snap %q", domain.ErrDocumentConfiguration, sourcePath, snapID)
	}

	doc := &domain.Document{
		ID:     i.newID(),
		Type:   domain.PictureType,
		SnapID: snapID,
		Extra: map[string]any{
			FieldSourcePath: sourcePath,
			FieldSHA256:     sum,
		},
	}
	for k, v := range readExif(content) {
		doc.Extra[k] = v
	}

	var path string
	err = i.runInTx(ctx, func(txCtx context.Context) error {
		if err := i.svc.Save(txCtx, doc); err != nil {
			return err
		}

		var err error
		path, err = i.svc.BuildPicturePath(i.svc.BuildFileName(doc.ID), snapID)
		if err != nil {
			return err
		}

		if err := os.WriteFile(path, content, 0644); err != nil {
			return fmt.Errorf("failed to write picture file: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info().Str("id", doc.ID).Str("snap_id", snapID).Str("source", sourcePath).Str("path", path).Msg("Imported picture")
	return doc, nil
}

// readExif extracts the capture time and camera model, when present
func readExif(content []byte) map[string]any {
	registerExifParsers.Do(func() {
		exif.RegisterParsers(mknote.All...)
	})

	fields := map[string]any{}

	x, err := exif.Decode(bytes.NewReader(content))
	if err != nil {
		log.Debug().Err(err).Msg("No EXIF data in picture")
		return fields
	}

	if tm, err := x.DateTime(); err == nil {
		fields[FieldTakenAt] = tm.UTC().Format(time.RFC3339)
	}

	if tag, err := x.Get(exif.Model); err == nil {
		if model, err := tag.StringVal(); err == nil && model != "" {
			fields[FieldCamera] = model
		}
	}

	return fields
}
