package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/maia/backend/internal/application/identity"
	"github.com/maia/backend/internal/interfaces/http/middleware"
)

// UserHandler serves account profiles. Every route except Create and Search
// acts on behalf of the bearer session's identity.
type UserHandler struct {
	BaseHandler
	authService *identity.AuthService
	userService *identity.UserService
}

// NewUserHandler creates a new user handler
func NewUserHandler(authService *identity.AuthService, userService *identity.UserService) *UserHandler {
	return &UserHandler{
		authService: authService,
		userService: userService,
	}
}

// Create godoc
// @Summary      Create a user
// @Description  Same as POST /auth/register
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        request body RegisterRequest true "Account"
// @Success      201 {object} dto.Response{data=identity.UserDTO}
// @Router       /users [post]
func (h *UserHandler) Create(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	user, err := h.authService.Register(c.Request.Context(), req.toInput())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, user)
}

// GetMe godoc
// @Summary      Current user profile
// @Tags         users
// @Produce      json
// @Success      200 {object} dto.Response{data=identity.UserDTO}
// @Security     BearerAuth
// @Router       /users/me [get]
func (h *UserHandler) GetMe(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	h.get(c, session, session.UserID)
}

// GetByID godoc
// @Summary      Get a user
// @Tags         users
// @Produce      json
// @Param        id path string true "User ID" format(uuid)
// @Success      200 {object} dto.Response{data=identity.UserDTO}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /users/{id} [get]
func (h *UserHandler) GetByID(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	id, ok := h.parseID(c)
	if !ok {
		return
	}
	h.get(c, session, id)
}

func (h *UserHandler) get(c *gin.Context, session *identity.Session, id uuid.UUID) {
	user, err := h.userService.Get(c.Request.Context(), session.Owner, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, user)
}

// UpdateMe godoc
// @Summary      Update the current user
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        request body UpdateUserRequest true "Changes"
// @Success      200 {object} dto.Response{data=identity.UserDTO}
// @Security     BearerAuth
// @Router       /users/me [patch]
func (h *UserHandler) UpdateMe(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	h.update(c, session, session.UserID)
}

// Update godoc
// @Summary      Update a user
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        id path string true "User ID" format(uuid)
// @Param        request body UpdateUserRequest true "Changes"
// @Success      200 {object} dto.Response{data=identity.UserDTO}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /users/{id} [patch]
func (h *UserHandler) Update(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	id, ok := h.parseID(c)
	if !ok {
		return
	}
	h.update(c, session, id)
}

func (h *UserHandler) update(c *gin.Context, session *identity.Session, id uuid.UUID) {
	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	user, err := h.userService.Update(c.Request.Context(), session.Owner, id, req.toInput())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, user)
}

// DeleteMe godoc
// @Summary      Delete the current user and all of their records
// @Tags         users
// @Produce      json
// @Success      200 {object} dto.Response
// @Security     BearerAuth
// @Router       /users/me [delete]
func (h *UserHandler) DeleteMe(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	h.delete(c, session, session.UserID)
}

// Delete godoc
// @Summary      Delete a user and all of their records
// @Tags         users
// @Produce      json
// @Param        id path string true "User ID" format(uuid)
// @Success      200 {object} dto.Response
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /users/{id} [delete]
func (h *UserHandler) Delete(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	id, ok := h.parseID(c)
	if !ok {
		return
	}
	h.delete(c, session, id)
}

func (h *UserHandler) delete(c *gin.Context, session *identity.Session, id uuid.UUID) {
	if err := h.userService.Delete(c.Request.Context(), session.Owner, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{"message": "User deleted"})
}

// Search godoc
// @Summary      Find the user holding a namespace/token pair
// @Tags         users
// @Produce      json
// @Param        user_ns query string true "Namespace"
// @Param        token_talkbi query string true "Token"
// @Success      200 {object} dto.Response{data=identity.UserDTO}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /users/search [get]
func (h *UserHandler) Search(c *gin.Context) {
	user, err := h.userService.SearchByNamespace(c.Request.Context(),
		c.Query(middleware.NamespaceParam), c.Query(middleware.TokenParam))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, user)
}
