package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"library-api/internal/domains/user"
	"library-api/internal/shared/middleware"
	"library-api/internal/shared/response"
)

// UserHandler xử lý HTTP requests cho auth + users
type UserHandler struct {
	service user.Service
}

func NewUserHandler(service user.Service) *UserHandler {
	return &UserHandler{service: service}
}

// ========================================
// AUTHENTICATION ENDPOINTS
// ========================================

// Register xử lý POST /auth/register
func (h *UserHandler) Register(c *gin.Context) {
	var req user.RegisterRequest
	if !h.bind(c, &req) {
		return
	}

	res, err := h.service.Register(c.Request.Context(), req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.Header("Location", "/api/v1/users/"+res.User.ID.String())
	response.Success(c, http.StatusCreated, "User registered successfully", res)
}

// Login xử lý POST /auth/login
func (h *UserHandler) Login(c *gin.Context) {
	var req user.LoginRequest
	if !h.bind(c, &req) {
		return
	}

	res, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "Login successful", res)
}

// Me xử lý GET /auth/me
func (h *UserHandler) Me(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		response.Unauthorized(c, "Unauthenticated.")
		return
	}

	dto, err := h.service.Me(c.Request.Context(), userID)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "User retrieved successfully", dto)
}

// Refresh xử lý POST /auth/refresh, token cũ bị thu hồi
func (h *UserHandler) Refresh(c *gin.Context) {
	claims, ok := middleware.CurrentClaims(c)
	if !ok {
		response.Unauthorized(c, "Unauthenticated.")
		return
	}

	res, err := h.service.Refresh(c.Request.Context(), claims)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "Token refreshed successfully", res)
}

// Logout xử lý POST /auth/logout
func (h *UserHandler) Logout(c *gin.Context) {
	claims, ok := middleware.CurrentClaims(c)
	if !ok {
		response.Unauthorized(c, "Unauthenticated.")
		return
	}

	if err := h.service.Logout(c.Request.Context(), claims); err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "Successfully logged out", nil)
}

// ========================================
// USERS CRUD
// ========================================

// ListUsers - GET /users
func (h *UserHandler) ListUsers(c *gin.Context) {
	users, err := h.service.List(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "Users retrieved successfully", users)
}

// CreateUser - POST /users
func (h *UserHandler) CreateUser(c *gin.Context) {
	var req user.CreateUserRequest
	if !h.bind(c, &req) {
		return
	}

	dto, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, "User created successfully", dto)
}

// GetUser - GET /users/:id
func (h *UserHandler) GetUser(c *gin.Context) {
	id, ok := userID(c)
	if !ok {
		return
	}

	dto, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "User retrieved successfully", dto)
}

// UpdateUser - PUT /users/:id
func (h *UserHandler) UpdateUser(c *gin.Context) {
	id, ok := userID(c)
	if !ok {
		return
	}

	var req user.UpdateUserRequest
	if !h.bind(c, &req) {
		return
	}

	dto, err := h.service.Update(c.Request.Context(), id, req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "User updated successfully", dto)
}

// DeleteUser - DELETE /users/:id
func (h *UserHandler) DeleteUser(c *gin.Context) {
	id, ok := userID(c)
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "User deleted successfully", nil)
}

// ========================================
// HELPER FUNCTIONS
// ========================================

func userID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid user ID")
		return uuid.Nil, false
	}
	return id, true
}

func (h *UserHandler) bind(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return false
	}
	return true
}

// handleError map domain errors thành HTTP responses
func (h *UserHandler) handleError(c *gin.Context, err error) {
	if response.IsValidationError(err) {
		response.ValidationError(c, err)
		return
	}

	status := user.ToHTTPStatus(err)
	if status == http.StatusInternalServerError {
		// Log error nhưng không expose details cho client
		log.Error().Err(err).Str("request_id", c.GetString(middleware.ContextRequestID)).Msg("user request failed")
		response.InternalServerError(c, "Internal server error")
		return
	}
	response.ErrorResponse(c, status, user.ToErrorCode(err), err.Error())
}
