package users

import (
	"errors"
	"net/http"

	"bizdir/internal/csvio"
	"bizdir/internal/pkg/response"
	"bizdir/internal/pkg/validator"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, admin ...gin.HandlerFunc) {
	users := rg.Group("/users")
	{
		users.POST("/check", h.Check)
		users.GET("/export", append(append([]gin.HandlerFunc{}, admin...), h.Export)...)
	}
}

// Check handles POST /api/users/check {email, userData?}.
func (h *Handler) Check(c *gin.Context) {
	var req CheckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "Email is required")
		return
	}
	if errs := validator.Validate(req); errs != nil {
		response.ErrorWithMessage(c, http.StatusBadRequest, "Email is required", validator.Summary(errs))
		return
	}

	result, err := h.service.Check(c.Request.Context(), req.Email, req.UserData)
	if errors.Is(err, ErrEmailRequired) {
		response.Error(c, http.StatusBadRequest, "Email is required")
		return
	}
	if err != nil {
		zap.S().Errorw("user check failed", "error", err)
		response.ErrorWithMessage(c, http.StatusInternalServerError, "Failed to process user", err.Error())
		return
	}

	response.SuccessFields(c, http.StatusOK, gin.H{
		"exists":  result.Exists,
		"created": result.Created,
		"user":    result.User,
	})
}

func (h *Handler) Export(c *gin.Context) {
	body, err := h.service.Export(c.Request.Context())
	if errors.Is(err, csvio.ErrNoRecords) {
		response.Error(c, http.StatusNotFound, "No users found")
		return
	}
	if err != nil {
		zap.S().Errorw("user export failed", "error", err)
		response.ErrorWithMessage(c, http.StatusInternalServerError, "Failed to export users", err.Error())
		return
	}
	response.CSV(c, h.service.ExportFilename(), body)
}
