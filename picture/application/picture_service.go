package application

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dfryer1193/pictures/picture/domain"
	"github.com/rs/zerolog/log"
)

// pictureExtension is appended to a picture id to name its image file
const pictureExtension = ".jpg"

// PictureService validates and looks up picture documents, and computes where
// their image files live on disk.
type PictureService struct {
	store      domain.DocumentStore
	fs         domain.Filesystem
	pictureDir string
}

// NewPictureService creates a service over store. Picture files are placed in
// per-snap directories under pictureDir.
func NewPictureService(store domain.DocumentStore, fs domain.Filesystem, pictureDir string) *PictureService {
	return &PictureService{
		store:      store,
		fs:         fs,
		pictureDir: pictureDir,
	}
}

// Save validates doc as a picture document and persists it under its
// canonical id. On success the canonical id and the revision assigned by the
// store are set on doc.
func (s *PictureService) Save(ctx context.Context, doc *domain.Document) error {
	if err := validatePicture(doc); err != nil {
		log.Warn().Err(err).Msg("Rejected picture document")
		return err
	}

	doc.ID = domain.CanonicalID(doc.ID)

	rev, err := s.store.Create(ctx, doc)
	if errors.Is(err, domain.ErrConflict) {
		log.Warn().Str("id", doc.ID).Msg("Rejected duplicate picture document")
		return fmt.Errorf("%w: picture %s already exists", domain.ErrDocumentConfiguration, doc.ID)
	}
	if err != nil {
		return fmt.Errorf("failed to save picture %s: %w", doc.ID, err)
	}

	doc.Revision = rev
	log.Debug().Str("id", doc.ID).Str("snap_id", doc.SnapID).Str("rev", rev).Msg("Saved picture document")
	return nil
}

// validatePicture checks the type before anything touches the store
func validatePicture(doc *domain.Document) error {
	if doc == nil {
		return fmt.Errorf("%w: document cannot be nil", domain.ErrDocumentConfiguration)
	}
	if doc.Type == "" {
		return fmt.Errorf("%w: document has no type", domain.ErrDocumentConfiguration)
	}
	if doc.Type != domain.PictureType {
		return fmt.Errorf("%w: type %q is not %q", domain.ErrDocumentConfiguration, doc.Type, domain.PictureType)
	}
	if domain.CanonicalID(doc.ID) == "" {
		return fmt.Errorf("%w: document has no id", domain.ErrDocumentConfiguration)
	}
	for name := range doc.Extra {
		if domain.IsReservedField(name) {
			return fmt.Errorf("%w: reserved field %q set as an extra field", domain.ErrDocumentConfiguration, name)
		}
	}
	return nil
}

// Find returns the document stored under id, or domain.ErrNotFound.
//
// The stored type is not checked, so a non-picture document sharing the key
// space is returned as-is.
func (s *PictureService) Find(ctx context.Context, id string) (*domain.Document, error) {
	doc, err := s.store.Get(ctx, domain.CanonicalID(id))
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// FindMany returns the picture documents matching every constraint in filter,
// keyed by id. Documents of any other type are dropped.
func (s *PictureService) FindMany(ctx context.Context, filter domain.Filter) (map[string]*domain.Document, error) {
	docs, err := s.store.Query(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to find pictures: %w", err)
	}

	pictures := make(map[string]*domain.Document, len(docs))
	for _, doc := range docs {
		if !doc.IsPicture() {
			continue
		}
		pictures[doc.ID] = doc
	}
	return pictures, nil
}

// Exists reports whether any document is stored under id. Unlike Find it does
// not fail when the document is missing.
func (s *PictureService) Exists(ctx context.Context, id string) (bool, error) {
	_, err := s.store.Get(ctx, domain.CanonicalID(id))
	if errors.Is(err, domain.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// BuildFileName returns the image file name for a picture id
func (s *PictureService) BuildFileName(id string) string {
	return domain.CanonicalID(id) + pictureExtension
}

// BuildFilePath returns the path of fileName inside the directory for groupID.
// When createDirectory is set the directory is created first; otherwise the
// filesystem is not touched. Either part must be a single path element.
func (s *PictureService) BuildFilePath(fileName, groupID string, createDirectory bool) (string, error) {
	groupID = domain.CanonicalID(groupID)
	if err := checkPathElement("group id", groupID, true); err != nil {
		return "", err
	}
	if err := checkPathElement("file name", fileName, false); err != nil {
		return "", err
	}

	dir := s.fs.Join(s.pictureDir, groupID)

	if createDirectory {
		if err := s.fs.EnsureDir(dir); err != nil {
			return "", fmt.Errorf("failed to prepare picture directory: %w", err)
		}
	}

	return s.fs.Join(dir, fileName), nil
}

// BuildPicturePath is BuildFilePath with directory creation
func (s *PictureService) BuildPicturePath(fileName, groupID string) (string, error) {
	return s.BuildFilePath(fileName, groupID, true)
}

// checkPathElement keeps name from leaving the picture directory
func checkPathElement(what, name string, allowEmpty bool) error {
	switch {
	case name == "" && allowEmpty:
		return nil
	case name == "", name == ".", name == "..", strings.ContainsAny(name, `/\`):
		return fmt.Errorf("%w: invalid %s %q", domain.ErrDocumentConfiguration, what, name)
	}
	return nil
}
