package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"hbnb/internal/apperrors"
	"hbnb/internal/auth"
	"hbnb/internal/service"
)

// Handler wires HTTP routes to the facade.
type Handler struct {
	facade *service.Facade
	tokens *auth.TokenManager
	logger *logrus.Logger
}

func NewHandler(facade *service.Facade, tokens *auth.TokenManager, logger *logrus.Logger) *Handler {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Handler{facade: facade, tokens: tokens, logger: logger}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.Use(corsMiddleware(), requestLogger(h.logger))

	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": "ok"})
	})

	v1 := router.Group("/api/v1")
	authed := h.authenticate()
	optional := h.optionalAuthenticate()

	authGroup := v1.Group("/auth")
	{
		authGroup.POST("/login", h.login)
		authGroup.GET("/me", authed, h.me)
	}

	users := v1.Group("/users")
	{
		users.GET("/", authed, h.listUsers)
		users.POST("/", optional, h.createUser)
		users.GET("/:id", authed, h.getUser)
		users.PUT("/:id", authed, h.updateUser)
		users.DELETE("/:id", authed, h.deleteUser)
		users.PUT("/:id/admin", authed, h.setUserAdmin)
	}

	places := v1.Group("/places")
	{
		places.GET("/", h.listPlaces)
		places.POST("/", authed, h.createPlace)
		places.GET("/:id", h.getPlace)
		places.PUT("/:id", authed, h.updatePlace)
		places.DELETE("/:id", authed, h.deletePlace)
		places.PUT("/:id/transfer", authed, h.transferPlace)
		places.GET("/:id/photos", h.listPlacePhotos)
		places.POST("/:id/photos", authed, h.uploadPlacePhoto)
	}

	reviews := v1.Group("/reviews")
	{
		reviews.GET("/", h.listReviews)
		reviews.POST("/", authed, h.createReview)
		reviews.GET("/place/:place_id", h.listPlaceReviews)
		reviews.GET("/:id", h.getReview)
		reviews.PUT("/:id", authed, h.updateReview)
		reviews.DELETE("/:id", authed, h.deleteReview)
	}

	amenities := v1.Group("/amenities")
	{
		amenities.GET("/", h.listAmenities)
		amenities.POST("/", authed, h.createAmenity)
		amenities.GET("/:id", h.getAmenity)
		amenities.PUT("/:id", authed, h.updateAmenity)
		amenities.DELETE("/:id", authed, h.deleteAmenity)
		amenities.GET("/:id/places", h.listAmenityPlaces)
	}
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

func statusFor(kind apperrors.Kind) int {
	switch kind {
	case apperrors.KindValidation:
		return http.StatusBadRequest
	case apperrors.KindNotFound:
		return http.StatusNotFound
	case apperrors.KindConflict:
		return http.StatusConflict
	case apperrors.KindUnauthorized:
		return http.StatusUnauthorized
	case apperrors.KindForbidden:
		return http.StatusForbidden
	case apperrors.KindUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes the error body for err. Only internal failures are logged.
func (h *Handler) respondError(c *gin.Context, err error) {
	status := statusFor(apperrors.KindOf(err))
	if status == http.StatusInternalServerError {
		h.logger.WithError(err).WithFields(logrus.Fields{
			"method": c.Request.Method,
			"path":   c.FullPath(),
		}).Error("request failed")
	}
	c.AbortWithStatusJSON(status, gin.H{"error": apperrors.Message(err)})
}

// bindJSON decodes the body into req, answering 400 on malformed input.
func (h *Handler) bindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return false
	}
	return true
}
