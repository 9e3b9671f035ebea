package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vkuzmin/shelfmate/internal/auth"
)

// AuthController serves the local-mode login/logout/register endpoints.
// It is only registered when auth mode is "local".
type AuthController struct {
	service        *auth.Service
	sessionManager *auth.SessionManager
}

func NewAuthController(service *auth.Service, sessionManager *auth.SessionManager) *AuthController {
	return &AuthController{service: service, sessionManager: sessionManager}
}

type credentialsRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Register creates the single local user. Registration closes once a user
// exists.
func (controller *AuthController) Register(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, "invalid request body", err.Error())
		return
	}

	user, err := controller.service.Register(req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrSetupComplete), errors.Is(err, auth.ErrUserExists):
			respondConflict(c, err.Error())
		case errors.Is(err, auth.ErrUsernameRequired),
			errors.Is(err, auth.ErrPasswordRequired),
			errors.Is(err, auth.ErrUsernameInvalid),
			errors.Is(err, auth.ErrPasswordTooShort),
			errors.Is(err, auth.ErrPasswordTooLong):
			respondValidationError(c, err.Error(), nil)
		default:
			respondInternalError(c, err, "register")
		}
		return
	}

	respondCreated(c, gin.H{"id": user.ID, "username": user.Username})
}

func (controller *AuthController) Login(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, "invalid request body", err.Error())
		return
	}

	user, err := controller.service.Authenticate(req.Username, req.Password)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error: "invalid username or password",
			Code:  CodeUnauthorized,
			Path:  c.Request.URL.Path,
		})
		return
	}

	if err := controller.sessionManager.CreateSession(c.Request, user); err != nil {
		respondInternalError(c, err, "create session")
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": user.ID, "username": user.Username})
}

func (controller *AuthController) Logout(c *gin.Context) {
	if err := controller.sessionManager.DestroySession(c.Request); err != nil {
		respondInternalError(c, err, "destroy session")
		return
	}
	respondSuccess(c, "logged out")
}
