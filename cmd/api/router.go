package main

import (
	"net/http"
	"time"

	"bizdir/internal/config"
	"bizdir/internal/middleware"
	"bizdir/internal/modules/biz"
	"bizdir/internal/modules/likes"
	"bizdir/internal/modules/sitemap"
	"bizdir/internal/modules/users"
	jwtsvc "bizdir/internal/pkg/jwt"
	"bizdir/internal/repository"

	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type app struct {
	router *gin.Engine
	hub    *likes.Hub
}

// newApp wires repositories, services and routes on top of db.
func newApp(cfg *config.Config, db *gorm.DB, reg *prometheus.Registry, pinger sitemap.Pinger) *app {
	businessRepo := repository.NewBusinessRepository(db)
	userRepo := repository.NewUserRepository(db)
	likeRepo := repository.NewLikeRepository(db)

	var admin []gin.HandlerFunc
	if cfg.AdminAuthEnabled() {
		admin = middleware.AdminOnly(jwtsvc.New(cfg.JWTSecret, cfg.AdminTokenTTL))
	} else {
		zap.S().Warn("JWT_SECRET is empty: admin routes are unauthenticated")
	}

	hub := likes.NewHub()

	bizHandler := biz.NewHandler(
		biz.NewService(businessRepo, biz.NewImportMetrics(reg)),
		cfg.MaxUploadBytes,
		cfg.RecentDefaultLimit,
	)
	usersHandler := users.NewHandler(users.NewService(userRepo))
	likesHandler := likes.NewHandler(likes.NewService(likeRepo, hub), hub, cfg.CORSAllowedOrigins)
	sitemapHandler := sitemap.NewHandler(businessRepo, pinger, cfg.SiteURL)

	r := gin.New()
	r.Use(ginzap.Ginzap(zap.L(), time.RFC3339, true))
	r.Use(ginzap.RecoveryWithZap(zap.L(), true))
	r.Use(middleware.RequestID())
	r.Use(middleware.ErrorLogger())
	r.Use(middleware.CORS(cfg.CORSAllowedOrigins))
	r.Use(middleware.NewMetrics(reg).Handler())

	r.GET("/health", func(c *gin.Context) {
		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(c.Request.Context())
		}
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	api := r.Group("/api")
	{
		bizHandler.RegisterRoutes(api, admin...)
		usersHandler.RegisterRoutes(api, admin...)
		likesHandler.RegisterRoutes(api)
		sitemapHandler.RegisterRoutes(r, api, admin...)
	}

	return &app{router: r, hub: hub}
}
