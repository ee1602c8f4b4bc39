package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"career-arcade-backend/internal/analytics"
	"career-arcade-backend/internal/catalog"
	"career-arcade-backend/internal/config"
	"career-arcade-backend/internal/database"
	"career-arcade-backend/internal/engine"
	"career-arcade-backend/internal/handlers"
	"career-arcade-backend/internal/middleware"
	"career-arcade-backend/internal/services"
	"career-arcade-backend/internal/store"
	"career-arcade-backend/internal/ws"

	_ "career-arcade-backend/docs"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title           Career Arcade API
// @version         1.0
// @description     Perpetual multiplayer matching and quiz rooms with AI agents
// @host            localhost:8080
// @BasePath        /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Enter "Bearer {token}"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	db := database.Connect(cfg)
	database.AutoMigrate(db)

	hub := ws.NewHub()
	gameStore := store.New(db)
	selector := catalog.NewSelector(db)

	var sink engine.Sink = engine.NopSink()
	if cfg.AMQPURL != "" {
		amqpSink, err := analytics.NewAMQPSink(cfg.AMQPURL)
		if err != nil {
			log.Printf("analytics sink unavailable, events will be dropped: %v", err)
		} else {
			sink = amqpSink
			defer amqpSink.Close()
		}
	}

	tuning := engine.Tuning{
		RevealHold:        cfg.RevealHold,
		Intermission:      cfg.Intermission,
		JoinGrace:         cfg.JoinGrace,
		RoundTime:         cfg.RoundTime,
		InactivityTimeout: cfg.InactivityTimeout,
		SessionTimeLimit:  cfg.SessionTimeLimit,
		BotThinkDelay:     cfg.BotThinkDelay,
		BotPolicy:         engine.PolicyLevel(cfg.BotPolicy),
	}
	registry := engine.NewRegistry(tuning, engine.Deps{
		Content:   selector,
		Store:     gameStore,
		Sink:      sink,
		Broadcast: hub,
	}, cfg.TickInterval)
	if err := registry.Restore(); err != nil {
		log.Fatalf("failed to restore rooms: %v", err)
	}
	defer registry.Stop()

	roomService := services.NewRoomService(registry)
	playService := services.NewPlayService(registry)

	roomHandler := handlers.NewRoomHandler(roomService)
	playHandler := handlers.NewPlayHandler(playService)
	sessionHandler := handlers.NewSessionHandler(playService)
	wsHandler := handlers.NewWSHandler(hub, roomService)

	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	r.GET("/ws/room/:id", wsHandler.HandleWebSocket)

	api := r.Group("/api/v1")
	{
		rooms := api.Group("/rooms")
		{
			rooms.GET("", roomHandler.ListRooms)
			rooms.GET("/:id", roomHandler.GetRoom)
			rooms.POST("", middleware.JWTAuth(cfg.JWTSecret), roomHandler.CreateRoom)
			rooms.POST("/:id/pause", middleware.JWTAuth(cfg.JWTSecret), roomHandler.PauseRoom)
		}

		play := api.Group("/play")
		play.Use(middleware.JWTAuth(cfg.JWTSecret))
		{
			play.POST("/join", playHandler.Join)
			play.POST("/flip", playHandler.Flip)
			play.POST("/answer", playHandler.Answer)
			play.POST("/leave", playHandler.Leave)
		}

		sessions := api.Group("/sessions")
		sessions.Use(middleware.OptionalAuth(cfg.JWTSecret))
		{
			sessions.GET("/:id", sessionHandler.GetSession)
			sessions.GET("/:id/leaderboard", sessionHandler.GetLeaderboard)
		}
	}

	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: r,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Printf("server starting on :%s", cfg.ServerPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("server shutdown: %v", err)
	}
}
