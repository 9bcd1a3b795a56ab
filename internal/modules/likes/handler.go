package likes

import (
	"errors"
	"net/http"

	"bizdir/internal/pkg/response"
	"bizdir/internal/pkg/validator"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

type ToggleRequest struct {
	UserID     string `json:"userId" validate:"required"`
	BusinessID string `json:"businessId" validate:"required"`
}

type Handler struct {
	service  *Service
	hub      *Hub
	upgrader websocket.Upgrader
}

// NewHandler builds the like routes. allowedOrigins limits which pages may
// open the live stream; empty allows any.
func NewHandler(service *Service, hub *Hub, allowedOrigins []string) *Handler {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = true
	}

	return &Handler{
		service: service,
		hub:     hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || len(allowed) == 0 || allowed[origin]
			},
		},
	}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	likes := rg.Group("/likes")
	{
		likes.GET("", h.Status)
		likes.POST("", h.Toggle)
		likes.GET("/user", h.UserLikes)
		likes.GET("/ws", h.Stream)
	}
}

// Status handles GET /api/likes?userId=&businessId=
func (h *Handler) Status(c *gin.Context) {
	st, err := h.service.Status(c.Request.Context(), c.Query("userId"), c.Query("businessId"))
	if errors.Is(err, ErrIDsRequired) {
		response.Error(c, http.StatusBadRequest, "userId and businessId are required")
		return
	}
	if err != nil {
		zap.S().Errorw("like status failed", "error", err)
		response.ErrorWithMessage(c, http.StatusInternalServerError, "Failed to fetch like status", err.Error())
		return
	}

	response.SuccessFields(c, http.StatusOK, gin.H{
		"liked": st.Liked,
		"count": st.Count,
	})
}

// Toggle handles POST /api/likes {userId, businessId}.
func (h *Handler) Toggle(c *gin.Context) {
	var req ToggleRequest
	_ = c.ShouldBindJSON(&req)
	if errs := validator.Validate(req); errs != nil {
		response.ErrorWithMessage(c, http.StatusBadRequest, "userId and businessId are required", validator.Summary(errs))
		return
	}

	result, count, err := h.service.Toggle(c.Request.Context(), req.UserID, req.BusinessID)
	if errors.Is(err, ErrIDsRequired) {
		response.Error(c, http.StatusBadRequest, "userId and businessId are required")
		return
	}
	if err != nil {
		zap.S().Errorw("like toggle failed", "error", err)
		response.ErrorWithMessage(c, http.StatusInternalServerError, "Failed to toggle like", err.Error())
		return
	}

	response.SuccessFields(c, http.StatusOK, gin.H{
		"liked":  result.Liked,
		"count":  count,
		"action": result.Action,
	})
}

// UserLikes handles GET /api/likes/user?userId=
func (h *Handler) UserLikes(c *gin.Context) {
	ids, err := h.service.LikedBusinesses(c.Request.Context(), c.Query("userId"))
	if errors.Is(err, ErrIDsRequired) {
		response.Error(c, http.StatusBadRequest, "userId is required")
		return
	}
	if err != nil {
		zap.S().Errorw("liked businesses failed", "error", err)
		response.ErrorWithMessage(c, http.StatusInternalServerError, "Failed to fetch liked businesses", err.Error())
		return
	}
	response.Success(c, http.StatusOK, ids)
}

// Stream upgrades to a websocket that receives every like toggle.
func (h *Handler) Stream(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		zap.S().Warnw("like stream upgrade failed", "error", err)
		return
	}
	h.hub.Serve(conn)
}
