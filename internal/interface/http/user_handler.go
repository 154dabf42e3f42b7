package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	userapp "github.com/oksasatya/go-user-registration/internal/application"
	domerrors "github.com/oksasatya/go-user-registration/internal/domain/errors"
	"github.com/oksasatya/go-user-registration/pkg/response"
	"github.com/oksasatya/go-user-registration/pkg/validation"
)

// UserCreator is the slice of the application layer the handler depends on.
type UserCreator interface {
	CreateUser(ctx context.Context, in userapp.CreateUserInput) (*userapp.CreateUserResponse, error)
}

type UserHandler struct {
	Svc    UserCreator
	Logger *logrus.Logger
}

func NewUserHandler(svc UserCreator, logger *logrus.Logger) *UserHandler {
	return &UserHandler{Svc: svc, Logger: logger}
}

// Password strength is enforced by the application layer so policy failures
// surface as InvalidCredential. 72 is bcrypt's input limit.
type createUserRequest struct {
	Username string `json:"username" binding:"required,min=3,max=30,username"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"omitempty,max=72"`
}

// Create handles POST /api/v1/users.
func (h *UserHandler) Create(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		details := validation.ToDetails(err)
		response.Error(c, http.StatusBadRequest, validation.Message(details), details)
		return
	}

	res, err := h.Svc.CreateUser(c.Request.Context(), userapp.CreateUserInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, res)
}

// writeError maps domain failures to client errors and hides everything else
// behind a generic 500.
func (h *UserHandler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domerrors.ErrAlreadyExists):
		response.Error(c, http.StatusConflict, err.Error(), nil)
	case domerrors.IsDomainError(err):
		response.Error(c, http.StatusBadRequest, err.Error(), nil)
	default:
		if h.Logger != nil {
			h.Logger.WithError(err).WithField("request_id", c.GetString("request_id")).Error("create user failed")
		}
		response.Error(c, http.StatusInternalServerError, "internal server error", nil)
	}
}
