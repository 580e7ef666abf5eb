package ginserver

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	gin "github.com/gin-gonic/gin"

	"tripdesk/internal/infra/config"
	"tripdesk/internal/infra/obs"
)

type Handlers struct {
	Listing        ListingHTTP
	Availability   AvailabilityHTTP
	Pricing        PricingHTTP
	Booking        BookingHTTP
	Me             MeHTTP
	Auth           AuthHTTP
	Admin          AdminHTTP
	Review         ReviewHTTP
	AuthMiddleware gin.HandlerFunc
}

func NewServer(cfg config.Config, obsMW obs.Middleware, health obs.HealthHandlers, h Handlers) *http.Server {
	mode := configureGinMode(cfg.Env)
	if obsMW.Logger != nil {
		obsMW.Logger.Info("gin initialized", "mode", mode)
	}
	return &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           NewRouter(cfg, obsMW, health, h),
		ReadHeaderTimeout: 10 * time.Second,
	}
}

func NewRouter(cfg config.Config, obsMW obs.Middleware, health obs.HealthHandlers, h Handlers) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(obsMW.RequestID())
	router.Use(obsMW.LoggerMiddleware())
	router.Use(cors.New(corsConfig(cfg.CORSOrigins)))

	router.GET("/livez", health.Livez)
	router.GET("/readyz", health.Readyz)

	api := router.Group("/api/v1")
	if h.AuthMiddleware != nil {
		api.Use(h.AuthMiddleware)
	}
	if h.Auth != nil {
		api.GET("/auth/session", h.Auth.Session)
	}
	if h.Listing != nil {
		api.GET("/listings", h.Listing.Catalog)
		api.GET("/listings/:id", h.Listing.Get)
	}
	if h.Availability != nil {
		api.GET("/listings/:id/calendar", h.Availability.Calendar)
	}
	if h.Pricing != nil {
		api.GET("/listings/:id/quote", h.Pricing.Quote)
	}
	if h.Review != nil {
		api.GET("/listings/:id/reviews", h.Review.ListForListing)
		api.POST("/listings/:id/reviews", h.Review.Submit)
	}
	if h.Booking != nil {
		api.POST("/bookings", h.Booking.Create)
	}
	if h.Me != nil {
		meGroup := api.Group("/me")
		meGroup.GET("/bookings", h.Me.ListBookings)
	}
	if h.Admin != nil {
		admin := api.Group("/admin", RequireAdmin())
		admin.GET("/listings", h.Admin.ListListings)
		admin.POST("/listings", h.Admin.CreateListing)
		admin.POST("/listings/:id/publish", h.Admin.PublishListing)
		admin.POST("/listings/:id/unpublish", h.Admin.UnpublishListing)
		admin.POST("/listings/:id/availability/toggle", h.Admin.ToggleAvailability)
		admin.PUT("/listings/:id/availability", h.Admin.SetAvailability)
		admin.GET("/bookings", h.Admin.ListBookings)
		admin.PATCH("/bookings/:id/payment-status", h.Admin.UpdatePaymentStatus)
		if h.Review != nil {
			admin.GET("/reviews", h.Review.ListForModeration)
			admin.PATCH("/reviews/:id/status", h.Review.SetStatus)
			admin.DELETE("/reviews/:id", h.Review.Delete)
		}
	}
	return router
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization", idempotencyHeader, obs.RequestIDHeader},
		ExposeHeaders: []string{
			"Content-Length",
			"Content-Type",
			obs.RequestIDHeader,
		},
		MaxAge: 12 * time.Hour,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
		cfg.AllowCredentials = true
	}
	return cfg
}

func configureGinMode(env string) string {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "debug", "dev", "local":
		gin.SetMode(gin.DebugMode)
		return gin.DebugMode
	case "test", "testing":
		gin.SetMode(gin.TestMode)
		return gin.TestMode
	default:
		gin.SetMode(gin.ReleaseMode)
		return gin.ReleaseMode
	}
}
