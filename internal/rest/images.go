package rest

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/dfryer1193/imgstash/api"
	"github.com/dfryer1193/imgstash/images/application"
	"github.com/dfryer1193/imgstash/images/domain"
	"github.com/dfryer1193/imgstash/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

type ImagesHandler struct {
	svc *application.ImageService
}

func NewImagesHandler(svc *application.ImageService) *ImagesHandler {
	return &ImagesHandler{svc: svc}
}

// GetImages handles GET /api/images
func (h *ImagesHandler) GetImages(c *gin.Context) {
	images, err := h.svc.List(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		writeServiceError(c, err)
		return
	}

	out := make([]api.Image, 0, len(images))
	for _, img := range images {
		out = append(out, toWire(img))
	}
	c.JSON(http.StatusOK, out)
}

// PostImage handles POST /api/images with multipart field "image"
func (h *ImagesHandler) PostImage(c *gin.Context) {
	header, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, api.ErrorResponse{
			Error:  "validation failed",
			Fields: []api.FieldError{{Field: "image", Message: "an image file is required"}},
		})
		return
	}

	file, err := header.Open()
	if err != nil {
		writeServiceError(c, err)
		return
	}
	defer file.Close()

	img, err := h.svc.Upload(
		c.Request.Context(),
		middleware.UserID(c),
		file,
		header.Filename,
		header.Header.Get("Content-Type"),
		header.Size,
	)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toWire(img))
}

// PutImage handles PUT /api/images/:id with JSON or form field "edited_image"
func (h *ImagesHandler) PutImage(c *gin.Context) {
	id, ok := imageID(c)
	if !ok {
		return
	}

	var req api.EditImageRequest
	if err := c.ShouldBind(&req); err != nil || req.EditedImage == "" {
		c.JSON(http.StatusUnprocessableEntity, api.ErrorResponse{
			Error:  "validation failed",
			Fields: []api.FieldError{{Field: "edited_image", Message: "an edited image data URI is required"}},
		})
		return
	}

	img, err := h.svc.Edit(c.Request.Context(), middleware.UserID(c), id, req.EditedImage)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, toWire(img))
}

// DeleteImage handles DELETE /api/images/:id
func (h *ImagesHandler) DeleteImage(c *gin.Context) {
	id, ok := imageID(c)
	if !ok {
		return
	}

	if err := h.svc.Delete(c.Request.Context(), middleware.UserID(c), id); err != nil {
		writeServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// imageID parses the :id path parameter, responding 404 when it is not a
// valid identifier
func imageID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "image not found"})
		return 0, false
	}
	return id, true
}

// writeServiceError maps service errors onto HTTP status codes
func writeServiceError(c *gin.Context, err error) {
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		fields := make([]api.FieldError, 0, len(verr.Fields))
		for _, f := range verr.Fields {
			fields = append(fields, api.FieldError{Field: f.Field, Message: f.Message})
		}
		c.JSON(http.StatusUnprocessableEntity, api.ErrorResponse{Error: "validation failed", Fields: fields})
		return
	}

	if errors.Is(err, domain.ErrNotFound) {
		c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "image not found"})
		return
	}

	log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("Request failed")
	c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "internal server error"})
}

func toWire(img *domain.Image) api.Image {
	return api.Image{
		ID:        img.ID,
		Name:      img.Name,
		Path:      img.Path,
		UserID:    img.UserID,
		UpdatedAt: img.UpdatedAt,
		CreatedAt: img.CreatedAt,
	}
}
