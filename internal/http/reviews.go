package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"hbnb/internal/domain"
	"hbnb/internal/service"
)

func (h *Handler) listReviews(c *gin.Context) {
	reviews, err := h.facade.Reviews.List(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, mapAll(reviews, toReviewResponse))
}

func (h *Handler) listPlaceReviews(c *gin.Context) {
	reviews, err := h.facade.Reviews.ListByPlace(c.Request.Context(), c.Param("place_id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, mapAll(reviews, toReviewResponse))
}

func (h *Handler) createReview(c *gin.Context) {
	var req createReviewRequest
	if !h.bindJSON(c, &req) {
		return
	}

	review, err := h.facade.Reviews.Create(c.Request.Context(), principal(c), service.CreateReviewInput{
		Text:    req.Text,
		Rating:  *req.Rating,
		PlaceID: req.PlaceID,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toReviewResponse(review))
}

func (h *Handler) getReview(c *gin.Context) {
	review, err := h.facade.Reviews.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toReviewResponse(review))
}

func (h *Handler) updateReview(c *gin.Context) {
	var req updateReviewRequest
	if !h.bindJSON(c, &req) {
		return
	}

	review, err := h.facade.Reviews.Update(c.Request.Context(), principal(c), c.Param("id"), domain.ReviewPatch{
		Text:   req.Text,
		Rating: req.Rating,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toReviewResponse(review))
}

func (h *Handler) deleteReview(c *gin.Context) {
	if err := h.facade.Reviews.Delete(c.Request.Context(), principal(c), c.Param("id")); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
