package controllers

import (
	"net/http"

	"freshfetch/services"

	"github.com/gin-gonic/gin"
)

type UploadController struct {
	uploadService *services.UploadService
}

func NewUploadController(uploadService *services.UploadService) *UploadController {
	return &UploadController{uploadService: uploadService}
}

// UploadImage godoc
// @Summary Upload image
// @Description Stores a jpg, jpeg, png, gif or webp image on Cloudinary
// @Tags Uploads
// @Security BearerAuth
// @Accept multipart/form-data
// @Produce json
// @Param image formData file true "Image"
// @Success 201 {object} models.Response{data=models.UploadResult}
// @Failure 400 {object} models.ErrorResponse
// @Failure 503 {object} models.ErrorResponse
// @Router /uploads/image [post]
func (ctrl *UploadController) UploadImage(c *gin.Context) {
	file, err := c.FormFile("image")
	if err != nil {
		badRequest(c, "Image file is required", err)
		return
	}

	result, err := ctrl.uploadService.UploadImage(c.Request.Context(), file)
	if err != nil {
		handleError(c, err)
		return
	}
	respond(c, http.StatusCreated, "Image uploaded", result)
}

// DeleteImage godoc
// @Summary Delete uploaded image
// @Tags Uploads
// @Security BearerAuth
// @Produce json
// @Param publicId query string true "Cloudinary public id"
// @Success 200 {object} models.Response
// @Failure 400 {object} models.ErrorResponse
// @Router /uploads/image [delete]
func (ctrl *UploadController) DeleteImage(c *gin.Context) {
	if err := ctrl.uploadService.DeleteImage(c.Request.Context(), c.Query("publicId")); err != nil {
		handleError(c, err)
		return
	}
	respond(c, http.StatusOK, "Image deleted", nil)
}
