package biz

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"bizdir/internal/csvio"
	"bizdir/internal/pkg/response"
	"bizdir/internal/pkg/validator"
	"bizdir/internal/repository"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handler struct {
	service        *Service
	maxUploadBytes int64
	recentDefault  int
}

func NewHandler(service *Service, maxUploadBytes int64, recentDefault int) *Handler {
	if recentDefault <= 0 {
		recentDefault = 3
	}
	return &Handler{
		service:        service,
		maxUploadBytes: maxUploadBytes,
		recentDefault:  recentDefault,
	}
}

// RegisterRoutes mounts the business routes. admin guards the routes that
// write or dump the whole directory.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, admin ...gin.HandlerFunc) {
	biz := rg.Group("/biz")
	{
		biz.GET("", h.List)
		biz.GET("/cities", h.Cities)
		biz.GET("/recent", h.Recent)

		biz.GET("/my-business", h.GetMine)
		biz.POST("/my-business", h.SaveMine)
		biz.DELETE("/my-business", h.DeleteMine)

		biz.POST("/admin", guarded(admin, h.CreateAdmin)...)
		biz.POST("/import", guarded(admin, h.Import)...)
		biz.GET("/export", guarded(admin, h.Export)...)

		biz.GET("/:id", h.Get)
	}
}

func guarded(chain []gin.HandlerFunc, h gin.HandlerFunc) []gin.HandlerFunc {
	out := make([]gin.HandlerFunc, 0, len(chain)+1)
	out = append(out, chain...)
	return append(out, h)
}

/* ---------- READ ---------- */

// List handles GET /api/biz?type=&city=
func (h *Handler) List(c *gin.Context) {
	f := repository.BusinessFilter{
		Type: c.Query("type"),
		City: c.Query("city"),
	}

	businesses, err := h.service.List(c.Request.Context(), f)
	if err != nil {
		failure(c, "Failed to fetch businesses", err)
		return
	}
	response.Success(c, http.StatusOK, businesses)
}

func (h *Handler) Get(c *gin.Context) {
	b, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if errors.Is(err, ErrNotFound) {
		response.Error(c, http.StatusNotFound, "Business not found")
		return
	}
	if err != nil {
		failure(c, "Failed to fetch business", err)
		return
	}
	response.Success(c, http.StatusOK, b)
}

// Recent handles GET /api/biz/recent?limit=
func (h *Handler) Recent(c *gin.Context) {
	limit := h.recentDefault
	if raw := c.Query("limit"); raw != "" {
		if val, err := strconv.Atoi(raw); err == nil && val > 0 && val <= 100 {
			limit = val
		}
	}

	businesses, err := h.service.Recent(c.Request.Context(), limit)
	if err != nil {
		failure(c, "Failed to fetch recent businesses", err)
		return
	}
	response.Success(c, http.StatusOK, businesses)
}

func (h *Handler) Cities(c *gin.Context) {
	cities, err := h.service.Cities(c.Request.Context())
	if err != nil {
		failure(c, "Failed to fetch cities", err)
		return
	}
	response.Success(c, http.StatusOK, cities)
}

/* ---------- ADMIN ---------- */

func (h *Handler) CreateAdmin(c *gin.Context) {
	var req CreateAdminRequest
	if err := c.ShouldBindJSON(&req); err != nil || !req.BusinessData.HasTitle() {
		response.Error(c, http.StatusBadRequest, "Business data with title is required")
		return
	}
	if errs := validator.Validate(req); errs != nil {
		response.ErrorWithMessage(c, http.StatusBadRequest, "Invalid business data", validator.Summary(errs))
		return
	}

	b, err := h.service.CreateAdmin(c.Request.Context(), req.BusinessData)
	if err != nil {
		failure(c, "Failed to create business", err)
		return
	}
	response.Success(c, http.StatusCreated, b)
}

/* ---------- MY BUSINESS ---------- */

// GetMine handles GET /api/biz/my-business?userId=. A user without a
// business gets data: null.
func (h *Handler) GetMine(c *gin.Context) {
	userID := c.Query("userId")
	if userID == "" {
		response.Error(c, http.StatusBadRequest, "User ID is required")
		return
	}

	b, err := h.service.GetMine(c.Request.Context(), userID)
	if err != nil {
		failure(c, "Failed to fetch business", err)
		return
	}
	response.Success(c, http.StatusOK, b)
}

func (h *Handler) SaveMine(c *gin.Context) {
	var req SaveMyBusinessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "User ID and business data are required")
		return
	}
	if errs := validator.Validate(req); errs != nil {
		msg := "Invalid business data"
		if errs["userId"] != "" || errs["businessData"] != "" {
			msg = "User ID and business data are required"
		}
		response.ErrorWithMessage(c, http.StatusBadRequest, msg, validator.Summary(errs))
		return
	}

	b, created, err := h.service.SaveMine(c.Request.Context(), req.UserID, req.BusinessData)
	if errors.Is(err, ErrUserIDRequired) {
		response.Error(c, http.StatusBadRequest, "User ID and business data are required")
		return
	}
	if errors.Is(err, ErrTitleRequired) {
		response.Error(c, http.StatusBadRequest, "Business data with title is required")
		return
	}
	if err != nil {
		failure(c, "Failed to save business", err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	response.SuccessFields(c, status, gin.H{
		"data":    b,
		"created": created,
		"updated": !created,
	})
}

func (h *Handler) DeleteMine(c *gin.Context) {
	userID := c.Query("userId")
	if userID == "" {
		response.Error(c, http.StatusBadRequest, "User ID is required")
		return
	}

	err := h.service.DeleteMine(c.Request.Context(), userID)
	if errors.Is(err, ErrNotFound) {
		response.Error(c, http.StatusNotFound, "Business not found")
		return
	}
	if err != nil {
		failure(c, "Failed to delete business", err)
		return
	}
	response.SuccessFields(c, http.StatusOK, gin.H{"message": "Business deleted successfully"})
}

/* ---------- CSV ---------- */

// Import handles a multipart upload with the CSV in the "file" field.
func (h *Handler) Import(c *gin.Context) {
	if h.maxUploadBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes)
	}

	fh, err := c.FormFile("file")
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		response.Error(c, http.StatusRequestEntityTooLarge, "File is too large")
		return
	}
	if err != nil {
		response.Error(c, http.StatusBadRequest, "No file uploaded")
		return
	}
	if err := csvio.CheckFilename(fh.Filename); err != nil {
		response.Error(c, http.StatusBadRequest, err.Error())
		return
	}

	f, err := fh.Open()
	if err != nil {
		failure(c, "Failed to read uploaded file", err)
		return
	}
	defer f.Close()

	raw, err := io.ReadAll(f)
	if err != nil {
		failure(c, "Failed to read uploaded file", err)
		return
	}

	result, err := h.service.Import(c.Request.Context(), fh.Filename, string(raw))
	var missing *csvio.MissingColumnsError
	switch {
	case errors.As(err, &missing):
		response.Error(c, http.StatusBadRequest, "CSV parsing error: "+missing.Error())
		return
	case errors.Is(err, ErrNoValidRows):
		response.Error(c, http.StatusBadRequest, "No valid businesses found in CSV file")
		return
	case errors.Is(err, csvio.ErrNotCSV):
		response.Error(c, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		failure(c, "Failed to import businesses", err)
		return
	}

	zap.S().Infow("csv import processed",
		"file", fh.Filename,
		"imported", result.Imported,
		"failed", result.Failed,
	)

	c.JSON(http.StatusOK, ImportResponse{
		Success:  true,
		Message:  fmt.Sprintf("Successfully imported %d businesses", result.Imported),
		Imported: result.Imported,
		Failed:   result.Failed,
		Errors:   result.Errors,
	})
}

func (h *Handler) Export(c *gin.Context) {
	body, err := h.service.Export(c.Request.Context())
	if errors.Is(err, csvio.ErrNoRecords) {
		response.Error(c, http.StatusNotFound, "No businesses found")
		return
	}
	if err != nil {
		failure(c, "Failed to export businesses", err)
		return
	}
	response.CSV(c, h.service.ExportFilename(), body)
}

// failure logs an unexpected error and answers 500.
func failure(c *gin.Context, errMsg string, err error) {
	zap.S().Errorw(errMsg, "error", err, "path", c.FullPath())
	_ = c.Error(err)
	response.ErrorWithMessage(c, http.StatusInternalServerError, errMsg, err.Error())
}
