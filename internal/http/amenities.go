package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"hbnb/internal/domain"
)

func (h *Handler) listAmenities(c *gin.Context) {
	amenities, err := h.facade.Amenities.List(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, mapAll(amenities, toAmenityResponse))
}

func (h *Handler) createAmenity(c *gin.Context) {
	var req amenityRequest
	if !h.bindJSON(c, &req) {
		return
	}

	amenity, err := h.facade.Amenities.Create(c.Request.Context(), principal(c), req.Name, req.Description)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toAmenityResponse(amenity))
}

func (h *Handler) getAmenity(c *gin.Context) {
	amenity, err := h.facade.Amenities.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toAmenityResponse(amenity))
}

func (h *Handler) updateAmenity(c *gin.Context) {
	var req updateAmenityRequest
	if !h.bindJSON(c, &req) {
		return
	}

	amenity, err := h.facade.Amenities.Update(c.Request.Context(), principal(c), c.Param("id"), domain.AmenityPatch{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toAmenityResponse(amenity))
}

func (h *Handler) deleteAmenity(c *gin.Context) {
	if err := h.facade.Amenities.Delete(c.Request.Context(), principal(c), c.Param("id")); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) listAmenityPlaces(c *gin.Context) {
	places, err := h.facade.Places.ListByAmenity(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, mapAll(places, toPlaceResponse))
}
