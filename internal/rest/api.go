package rest

import (
	"github.com/dfryer1193/pictures/picture/application"
	"github.com/gin-gonic/gin"
)

func NewApi(router *gin.Engine, svc *application.PictureService) {
	h := NewPicturesHandler(svc)

	picturesV1 := router.Group("pictures/v1")
	{
		picturesV1.POST("/", h.SavePicture)
		picturesV1.GET("/", h.FindPictures)
		picturesV1.GET("/:pictureId", h.GetPicture)
		picturesV1.HEAD("/:pictureId", h.PictureExists)
		picturesV1.GET("/:pictureId/path", h.GetPicturePath)
	}
}
