package rest

import (
	"errors"
	"net/http"

	"github.com/dfryer1193/pictures/api"
	"github.com/dfryer1193/pictures/picture/application"
	"github.com/dfryer1193/pictures/picture/domain"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

type PicturesHandler struct {
	svc *application.PictureService
}

func NewPicturesHandler(svc *application.PictureService) *PicturesHandler {
	return &PicturesHandler{svc: svc}
}

func (h *PicturesHandler) SavePicture(c *gin.Context) {
	var doc domain.Document
	if err := c.ShouldBindJSON(&doc); err != nil {
		c.JSON(http.StatusBadRequest, api.Error{Error: err.Error()})
		return
	}

	// revisions are assigned by the store
	doc.Revision = ""

	if err := h.svc.Save(c.Request.Context(), &doc); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, api.SavedPicture{ID: doc.ID, Revision: doc.Revision})
}

func (h *PicturesHandler) GetPicture(c *gin.Context) {
	doc, err := h.svc.Find(c.Request.Context(), c.Param("pictureId"))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, doc)
}

func (h *PicturesHandler) PictureExists(c *gin.Context) {
	exists, err := h.svc.Exists(c.Request.Context(), c.Param("pictureId"))
	if err != nil {
		writeError(c, err)
		return
	}

	if !exists {
		c.Status(http.StatusNotFound)
		return
	}
	c.Status(http.StatusOK)
}

// FindPictures turns every query parameter into an equality constraint
func (h *PicturesHandler) FindPictures(c *gin.Context) {
	filter := domain.Filter{}
	for name, values := range c.Request.URL.Query() {
		if len(values) != 1 {
			c.JSON(http.StatusBadRequest, api.Error{Error: "filter field " + name + " given more than once"})
			return
		}
		filter[name] = values[0]
	}

	pictures, err := h.svc.FindMany(c.Request.Context(), filter)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, pictures)
}

// GetPicturePath reports where the picture's file lives without creating directories
func (h *PicturesHandler) GetPicturePath(c *gin.Context) {
	fileName := h.svc.BuildFileName(c.Param("pictureId"))

	path, err := h.svc.BuildFilePath(fileName, c.Query(domain.FieldSnapID), false)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, api.PicturePath{FileName: fileName, Path: path})
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrDocumentConfiguration):
		c.JSON(http.StatusBadRequest, api.Error{Error: err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, api.Error{Error: err.Error()})
	default:
		log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("Request failed")
		c.JSON(http.StatusInternalServerError, api.Error{Error: "internal error"})
	}
}
