package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"hbnb/internal/service"
)

func (h *Handler) login(c *gin.Context) {
	var req loginRequest
	if !h.bindJSON(c, &req) {
		return
	}

	token, err := h.facade.Auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tokenResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int64(h.tokens.TTL().Seconds()),
	})
}

func (h *Handler) me(c *gin.Context) {
	user, err := h.facade.Auth.Me(c.Request.Context(), principal(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toUserResponse(user))
}

// listUsers lists every user, or the single user matching ?email=.
func (h *Handler) listUsers(c *gin.Context) {
	ctx := c.Request.Context()
	if email := c.Query("email"); email != "" {
		user, err := h.facade.Users.GetByEmail(ctx, principal(c), email)
		if err != nil {
			h.respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, []userResponse{toUserResponse(user)})
		return
	}

	users, err := h.facade.Users.List(ctx, principal(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, mapAll(users, toUserResponse))
}

func (h *Handler) createUser(c *gin.Context) {
	var req createUserRequest
	if !h.bindJSON(c, &req) {
		return
	}

	user, err := h.facade.Users.Create(c.Request.Context(), principal(c), service.CreateUserInput{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		IsAdmin:   req.IsAdmin,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toUserResponse(user))
}

func (h *Handler) getUser(c *gin.Context) {
	user, err := h.facade.Users.Get(c.Request.Context(), principal(c), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toUserResponse(user))
}

func (h *Handler) updateUser(c *gin.Context) {
	var req updateUserRequest
	if !h.bindJSON(c, &req) {
		return
	}

	user, err := h.facade.Users.Update(c.Request.Context(), principal(c), c.Param("id"), service.UpdateUserInput{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toUserResponse(user))
}

func (h *Handler) setUserAdmin(c *gin.Context) {
	var req setAdminRequest
	if !h.bindJSON(c, &req) {
		return
	}

	user, err := h.facade.Users.SetAdmin(c.Request.Context(), principal(c), c.Param("id"), *req.IsAdmin)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toUserResponse(user))
}

func (h *Handler) deleteUser(c *gin.Context) {
	if err := h.facade.Users.Delete(c.Request.Context(), principal(c), c.Param("id")); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
