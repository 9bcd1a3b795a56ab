package sitemap

import (
	"bytes"
	"context"
	"net/http"
	"strings"
	"time"

	"bizdir/internal/domain"
	"bizdir/internal/pkg/response"
	"bizdir/internal/repository"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type BusinessLister interface {
	List(ctx context.Context, f repository.BusinessFilter) ([]domain.Business, error)
}

type Handler struct {
	businesses BusinessLister
	pinger     Pinger
	siteURL    string
	now        func() time.Time
}

// NewHandler serves the sitemap for siteURL. A nil pinger turns
// search-engine notification off.
func NewHandler(businesses BusinessLister, pinger Pinger, siteURL string) *Handler {
	return &Handler{
		businesses: businesses,
		pinger:     pinger,
		siteURL:    strings.TrimRight(siteURL, "/"),
		now:        time.Now,
	}
}

// RegisterRoutes mounts GET /sitemap.xml on root and the update trigger on api.
func (h *Handler) RegisterRoutes(root gin.IRoutes, api *gin.RouterGroup, admin ...gin.HandlerFunc) {
	root.GET("/sitemap.xml", h.Sitemap)
	api.POST("/sitemap/update", append(append([]gin.HandlerFunc{}, admin...), h.Update)...)
}

func (h *Handler) Sitemap(c *gin.Context) {
	list, err := h.businesses.List(c.Request.Context(), repository.BusinessFilter{})
	if err != nil {
		// static pages are still worth serving
		zap.S().Errorw("sitemap: list businesses", "error", err)
		list = nil
	}

	var buf bytes.Buffer
	if err := Write(&buf, h.siteURL, list, h.now()); err != nil {
		response.ErrorWithMessage(c, http.StatusInternalServerError, "Failed to build sitemap", err.Error())
		return
	}
	c.Data(http.StatusOK, "application/xml; charset=utf-8", buf.Bytes())
}

// Update handles POST /api/sitemap/update. Ping failures are reported in
// the body and never fail the request.
func (h *Handler) Update(c *gin.Context) {
	ctx := c.Request.Context()

	list, err := h.businesses.List(ctx, repository.BusinessFilter{})
	if err != nil {
		zap.S().Errorw("sitemap update failed", "error", err)
		response.ErrorWithMessage(c, http.StatusInternalServerError, "Failed to update sitemap", err.Error())
		return
	}

	sitemapURL := h.siteURL + "/sitemap.xml"
	pinged := map[string]bool{"google": false, "bing": false}
	if h.pinger != nil {
		for engine := range pinged {
			if err := h.pinger.Ping(ctx, engine, sitemapURL); err != nil {
				zap.S().Warnw("could not ping search engine", "engine", engine, "error", err)
				continue
			}
			pinged[engine] = true
		}
	}

	response.SuccessFields(c, http.StatusOK, gin.H{
		"message":         "Sitemap update request sent successfully",
		"businessesCount": len(list),
		"sitemapUrl":      sitemapURL,
		"googlePinged":    pinged["google"],
		"bingPinged":      pinged["bing"],
	})
}
