package main

import (
	"context"
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"stranger-chat-service/internal/config"
	"stranger-chat-service/internal/db"
	"stranger-chat-service/internal/handlers"
	"stranger-chat-service/internal/matchmaking"
	"stranger-chat-service/internal/middleware"
	"stranger-chat-service/internal/observability"
	"stranger-chat-service/internal/rabbitmq"
	"stranger-chat-service/internal/realtime"
	"stranger-chat-service/internal/repositories"
	"stranger-chat-service/internal/telemetry"
	"stranger-chat-service/internal/ws"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file loaded")
	}
	cfg := config.Load()

	shutdownTracing, err := telemetry.SetupTracing(context.Background(), cfg.ServiceName, cfg.Environment, cfg.OTLPAddr)
	if err != nil {
		log.Fatalf("failed to set up tracing: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTracing(ctx)
	}()

	database, err := db.Connect(cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("failed to connect to db: %v", err)
	}

	publisher := rabbitmq.NewPublisher(cfg.AMQPURL, cfg.Exchange)
	defer publisher.Close()
	log.Printf("event publisher mode=%s", rabbitmq.PublisherMode(publisher))
	emitter := telemetry.NewAuditEmitter(publisher, "audit.stranger", cfg.ServiceName, cfg.Environment)

	if amqpPublisher, err := observability.NewAMQPPublisher(cfg.AMQPURL, cfg.Exchange); err == nil {
		observability.SetPublisher(amqpPublisher)
		defer amqpPublisher.Close()
	} else {
		log.Printf("ws event publishing disabled: %v", err)
	}

	queueRepo := repositories.NewQueueRepo(database)
	roomRepo := repositories.NewRoomRepo(database)
	messageRepo := repositories.NewMessageRepo(database)
	profileRepo := repositories.NewProfileRepo(database)

	hub := ws.NewHub()
	broadcaster := realtime.NewBroadcaster(cfg.RedisAddr, hub)

	gate := matchmaking.NewGate(profileRepo)
	engine := matchmaking.NewEngine(queueRepo, roomRepo)

	matchHandler := handlers.NewMatchHandler(gate, engine, emitter)
	roomHandler := handlers.NewRoomHandler(roomRepo, messageRepo, broadcaster, emitter)
	roomWS := ws.NewRoomWebSocketHandler(hub, roomRepo, cfg.JWTSecret)

	router := gin.Default()
	router.Use(otelgin.Middleware(cfg.ServiceName))
	router.Use(observability.HTTPMetricsMiddleware())

	authMiddleware := middleware.AuthMiddleware(cfg.JWTSecret)

	router.POST("/match/request", authMiddleware, matchHandler.RequestMatch)
	router.DELETE("/match", authMiddleware, matchHandler.CancelMatch)

	router.GET("/rooms/:room_id/messages", authMiddleware, roomHandler.GetRoomMessages)
	router.POST("/rooms/:room_id/messages", authMiddleware, roomHandler.PostMessage)
	router.DELETE("/rooms/:room_id", authMiddleware, roomHandler.EndRoom)

	router.GET("/ws/rooms/:room_id", roomWS.Handle)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/healthz", func(c *gin.Context) { c.JSON(200, gin.H{"status": "ok"}) })
	handlers.RegisterDebugRoutes(router, emitter, cfg.Debug)

	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
