package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/recipehub/backend/internal/apperror"
	"github.com/pageza/recipehub/backend/internal/middleware"
	"github.com/pageza/recipehub/backend/internal/respond"
	"github.com/pageza/recipehub/backend/internal/service"
)

type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthHandler serves sign-up, sign-in and sign-out.
type AuthHandler struct {
	authService service.IAuthService
}

func NewAuthHandler(authService service.IAuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// RegisterRoutes mounts the public auth routes on public and sign-out on protected.
func (h *AuthHandler) RegisterRoutes(public, protected *gin.RouterGroup) {
	public.POST("/signup", h.SignUp)
	public.POST("/signin", h.SignIn)
	protected.POST("/signout", h.SignOut)
}

func (h *AuthHandler) SignUp(c *gin.Context) {
	var req service.RegisterInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, apperror.BadRequest("Invalid request body"))
		return
	}

	user, err := h.authService.Register(c.Request.Context(), req)
	if err != nil {
		respond.Error(c, err)
		return
	}
	respond.Success(c, http.StatusCreated, "User created successfully", user.View())
}

func (h *AuthHandler) SignIn(c *gin.Context) {
	var req SignInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, apperror.BadRequest("Invalid request body"))
		return
	}

	session, err := h.authService.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respond.Error(c, err)
		return
	}
	respond.Success(c, http.StatusOK, "Signed in successfully", session)
}

// SignOut revokes the token that authenticated the request.
func (h *AuthHandler) SignOut(c *gin.Context) {
	jti, expiresAt, ok := middleware.TokenID(c)
	if !ok {
		respond.Error(c, apperror.Unauthorized("invalid token claims"))
		return
	}
	if err := h.authService.Revoke(c.Request.Context(), jti, expiresAt); err != nil {
		respond.Error(c, err)
		return
	}
	respond.Message(c, http.StatusOK, "Signed out successfully")
}
