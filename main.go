package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"dentserver/api"
	"dentserver/config"
	"dentserver/db"
	_ "dentserver/docs" // registers the swagger spec via init()
	"dentserver/models"
	"dentserver/utils"
)

// @title           DentServer API
// @version         1.0.0

// @description     Dental practice management backend. Patients and appointments ("incidents")
// @description     live in a single JSON store file; dashboards and the calendar view are pure
// @description     derivations recomputed per request. Two accounts are seeded on first use:
// @description     an Admin (admin@entnt.in) and a Patient (john@entnt.in) linked to the demo
// @description     patient record.

// @host      localhost:8080
// @BasePath  /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the JWT token.
func main() {
	// --- Configuration ---
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("CRITICAL: Failed to load configuration: %v", err)
	}

	// --- Store ---
	database, err := db.NewDatabase(cfg)
	if err != nil {
		log.Fatalf("CRITICAL: Failed to initialize store: %v", err)
	}
	database.SeedDefaults()

	// --- Gin Router Setup ---
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	loginLimiter := utils.NewRateLimiter(cfg.LoginRateLimit, cfg.LoginRateBurst)
	authMiddleware := utils.AuthMiddleware(cfg)

	// --- Public Routes ---
	authGroup := router.Group("/auth")
	{
		authGroup.POST("/login", loginLimiter.Middleware(), func(c *gin.Context) {
			api.LoginHandler(c, database, cfg)
		})
		authGroup.GET("/session", func(c *gin.Context) {
			api.SessionHandler(c, database, cfg)
		})
	}
	// Logout sits under /auth conceptually but needs the middleware.
	router.POST("/auth/logout", authMiddleware, func(c *gin.Context) {
		api.LogoutHandler(c, database, cfg)
	})

	// --- Admin Routes ---
	adminOnly := utils.RequireRole(models.RoleAdmin)

	patientGroup := router.Group("/patients")
	patientGroup.Use(authMiddleware, adminOnly)
	{
		patientGroup.GET("", func(c *gin.Context) {
			api.ListPatientsHandler(c, database, cfg)
		})
		patientGroup.POST("", func(c *gin.Context) {
			api.CreatePatientHandler(c, database, cfg)
		})
		patientGroup.GET("/:id", func(c *gin.Context) {
			api.GetPatientHandler(c, database, cfg)
		})
		patientGroup.PUT("/:id", func(c *gin.Context) {
			api.UpdatePatientHandler(c, database, cfg)
		})
		patientGroup.DELETE("/:id", func(c *gin.Context) {
			api.DeletePatientHandler(c, database, cfg)
		})
	}

	incidentGroup := router.Group("/appointments")
	incidentGroup.Use(authMiddleware, adminOnly)
	{
		incidentGroup.GET("", func(c *gin.Context) {
			api.ListIncidentsHandler(c, database, cfg)
		})
		incidentGroup.POST("", func(c *gin.Context) {
			api.CreateIncidentHandler(c, database, cfg)
		})
		incidentGroup.GET("/:id", func(c *gin.Context) {
			api.GetIncidentHandler(c, database, cfg)
		})
		incidentGroup.PUT("/:id", func(c *gin.Context) {
			api.UpdateIncidentHandler(c, database, cfg)
		})
		incidentGroup.DELETE("/:id", func(c *gin.Context) {
			api.DeleteIncidentHandler(c, database, cfg)
		})
	}

	dashboardGroup := router.Group("/dashboard")
	dashboardGroup.Use(authMiddleware, adminOnly)
	{
		dashboardGroup.GET("/stats", func(c *gin.Context) {
			api.DashboardStatsHandler(c, database, cfg)
		})
		dashboardGroup.GET("/upcoming", func(c *gin.Context) {
			api.UpcomingAppointmentsHandler(c, database, cfg)
		})
	}

	calendarGroup := router.Group("/calendar")
	calendarGroup.Use(authMiddleware, adminOnly)
	{
		calendarGroup.GET("/week", func(c *gin.Context) {
			api.CalendarWeekHandler(c, database, cfg)
		})
		calendarGroup.GET("/day", func(c *gin.Context) {
			api.CalendarDayHandler(c, database, cfg)
		})
	}

	// --- Patient Portal Routes ---
	myGroup := router.Group("/my")
	myGroup.Use(authMiddleware, utils.RequireRole(models.RolePatient))
	{
		myGroup.GET("/profile", func(c *gin.Context) {
			api.MyProfileHandler(c, database, cfg)
		})
		myGroup.GET("/appointments", func(c *gin.Context) {
			api.MyAppointmentsHandler(c, database, cfg)
		})
	}

	// --- Swagger Route ---
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// --- Start Server ---
	listenAddr := fmt.Sprintf("%s:%s", cfg.ListenAddress, cfg.ListenPort)
	log.Printf("INFO: Starting server on %s", listenAddr)

	server := &http.Server{
		Addr:    listenAddr,
		Handler: router,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("CRITICAL: Server failed to start: %v", err)
		}
	}()

	// Block until interrupted, then flush the store before exiting so a
	// debounced save is never lost.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Printf("INFO: Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("ERROR: Server shutdown failed: %v", err)
	}
	if err := database.Close(); err != nil {
		log.Printf("ERROR: Final store flush failed: %v", err)
	}
	log.Printf("INFO: Shutdown complete.")
}
