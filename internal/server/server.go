package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"healthcare-booking-server/internal/chatbot"
	"healthcare-booking-server/internal/config"
	"healthcare-booking-server/internal/db"
	"healthcare-booking-server/internal/handlers"
	"healthcare-booking-server/internal/middleware"
	"healthcare-booking-server/internal/mq"
	"healthcare-booking-server/internal/routes"
	"healthcare-booking-server/internal/services"
	"healthcare-booking-server/internal/store"
	"healthcare-booking-server/internal/utils"
)

// Server wraps the HTTP server and the resources it owns.
type Server struct {
	httpServer *http.Server
	db         *gorm.DB
	queue      *mq.MQ
	stop       context.CancelFunc
}

// New opens the database and broker and builds the router.
func New(ctx context.Context, cfg *config.Config) (*Server, error) {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	gdb, err := db.Open(ctx, cfg.Database, !cfg.IsProduction())
	if err != nil {
		return nil, err
	}

	backend, err := mq.NewBackend(cfg.RabbitMQ)
	if err != nil {
		_ = db.Close(gdb)
		return nil, fmt.Errorf("connect rabbitmq: %w", err)
	}
	queue := mq.New(backend)

	bgCtx, stop := context.WithCancel(context.Background())
	engine := NewEngine(bgCtx, cfg, gdb, queue)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Server{
		httpServer: httpServer,
		db:         gdb,
		queue:      queue,
		stop:       stop,
	}, nil
}

// NewEngine wires stores, services and handlers into a gin engine. Background
// work started here, such as the rate limiter sweeper, ends when ctx is cancelled.
func NewEngine(ctx context.Context, cfg *config.Config, gdb *gorm.DB, events mq.Publisher) *gin.Engine {
	tokens := utils.NewTokenManager(cfg.JWT)

	userStore := store.NewUserStore(gdb)
	appointmentStore := store.NewAppointmentStore(gdb)

	authService := services.NewAuthService(userStore, tokens, events, cfg.RequireEmailVerification)
	userService := services.NewUserService(userStore)
	appointmentService := services.NewAppointmentService(appointmentStore, userStore, events)

	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{cfg.Origin}
	corsConfig.AllowCredentials = true
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	router.Use(cors.New(corsConfig))

	routes.SetupRoutes(router, routes.Dependencies{
		Tokens:       tokens,
		Limiter:      middleware.NewRateLimiter(ctx, cfg.RateLimit.RPS, cfg.RateLimit.Burst),
		Auth:         handlers.NewAuthHandler(authService, cfg.JWT.RefreshTTL, cfg.IsProduction()),
		Users:        handlers.NewUserHandler(userService),
		Appointments: handlers.NewAppointmentHandler(appointmentService),
		Chat:         handlers.NewChatHandler(chatbot.New(chatbot.DefaultRules)),
	})
	return router
}

// Start runs the HTTP server until Shutdown is called.
func (s *Server) Start() error {
	log.Printf("Server running on %s", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests, then closes the broker and database.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.httpServer.Shutdown(ctx)
	s.stop()
	if cerr := s.queue.Close(); cerr != nil {
		log.Printf("close mq: %v", cerr)
	}
	if cerr := db.Close(s.db); cerr != nil {
		log.Printf("close database: %v", cerr)
	}
	return err
}
