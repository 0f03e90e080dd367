package http

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"hbnb/internal/domain"
	"hbnb/internal/service"
)

// multipart overhead allowed on top of the photo itself
const photoFormSlack = 1 << 20

func (h *Handler) listPlaces(c *gin.Context) {
	places, err := h.facade.Places.List(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, mapAll(places, toPlaceResponse))
}

func (h *Handler) createPlace(c *gin.Context) {
	var req createPlaceRequest
	if !h.bindJSON(c, &req) {
		return
	}

	place, err := h.facade.Places.Create(c.Request.Context(), principal(c), service.CreatePlaceInput{
		Title:       req.Title,
		Description: req.Description,
		Price:       *req.Price,
		Latitude:    req.Latitude,
		Longitude:   req.Longitude,
		AmenityIDs:  req.AmenityIDs,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toPlaceResponse(place))
}

func (h *Handler) getPlace(c *gin.Context) {
	place, err := h.facade.Places.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toPlaceResponse(place))
}

func (h *Handler) updatePlace(c *gin.Context) {
	var req updatePlaceRequest
	if !h.bindJSON(c, &req) {
		return
	}

	place, err := h.facade.Places.Update(c.Request.Context(), principal(c), c.Param("id"), domain.PlacePatch{
		Title:       req.Title,
		Description: req.Description,
		Price:       req.Price,
		Latitude:    req.Latitude,
		Longitude:   req.Longitude,
		AmenityIDs:  req.AmenityIDs,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toPlaceResponse(place))
}

func (h *Handler) transferPlace(c *gin.Context) {
	var req transferPlaceRequest
	if !h.bindJSON(c, &req) {
		return
	}

	place, err := h.facade.Places.Transfer(c.Request.Context(), principal(c), c.Param("id"), req.OwnerID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toPlaceResponse(place))
}

func (h *Handler) deletePlace(c *gin.Context) {
	if err := h.facade.Places.Delete(c.Request.Context(), principal(c), c.Param("id")); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) listPlacePhotos(c *gin.Context) {
	photos, err := h.facade.Places.ListPhotos(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, mapAll(photos, toPhotoResponse))
}

func (h *Handler) uploadPlacePhoto(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, service.MaxPhotoSize+photoFormSlack)

	header, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("photo must be at most %d bytes", service.MaxPhotoSize)})
			return
		}
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "multipart field \"file\" is required"})
		return
	}
	file, err := header.Open()
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "cannot read uploaded file"})
		return
	}
	defer file.Close()

	photo, err := h.facade.Places.AddPhoto(c.Request.Context(), principal(c), c.Param("id"), service.PhotoUpload{
		Filename: header.Filename,
		Size:     header.Size,
		Body:     file,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toPhotoResponse(photo))
}
