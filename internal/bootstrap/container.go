package bootstrap

import (
	"context"
	"log"

	"edubridge-chat-be/internal/config"
	"edubridge-chat-be/internal/controller"
	"edubridge-chat-be/internal/pkg/logger"
	"edubridge-chat-be/internal/repository/memory"
	"edubridge-chat-be/internal/service"
	"edubridge-chat-be/internal/websocket"
	"edubridge-chat-be/pkg/agent"
	"edubridge-chat-be/pkg/catalog"
	"edubridge-chat-be/pkg/events"

	pktNats "edubridge-chat-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
)

type Container struct {
	// Controllers
	ChatController controller.IChatController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService

	// WebSockets
	WebSocketHub *websocket.Hub

	Logger logger.ILogger
}

func NewContainer(cfg *config.Config) *Container {
	// 1. Core Facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 2.5 Infrastructure
	// NATS (optional, lifecycle events only)
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	} else {
		startLifecycleAudit(cfg.App.NatsURL, sysLogger)
	}

	// Redis (optional, WebSocket cross-instance fan-out)
	var rdb *redis.Client
	if opt, err := redis.ParseURL(cfg.App.RedisURL); err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. WebSocket fan-out is local only", err)
	} else {
		rdb = redis.NewClient(opt)
		if _, err := rdb.Ping(context.Background()).Result(); err != nil {
			log.Printf("[WARN] Failed to connect to Redis: %v. WebSocket fan-out is local only", err)
			rdb = nil
		}
	}

	// WebSocket Hub
	wsLogger := logger.NewIsolatedLogger("logs/chat_ws.log")
	wsHub := websocket.NewHub(rdb, wsLogger)
	go wsHub.Run()

	// 3. Engine wiring
	sessionRepo := memory.NewSessionRepository()
	docCatalog := catalog.NewStaticCatalog()
	generalResponder := agent.NewGeneralResponder(cfg.Chat.GeneralLatency)
	quizResponder := agent.NewQuizResponder(cfg.Chat.QuizLatency)

	publisherService := service.NewPublisherService(cfg.Chat.StateTopic, pubSub)
	consumerService := service.NewConsumerService(pubSub, cfg.Chat.StateTopic, wsHub, wsLogger)

	chatService := service.NewChatService(
		sessionRepo,
		generalResponder,
		quizResponder,
		docCatalog,
		publisherService,
		natsPub,
		sysLogger,
	)

	// 4. Controllers
	return &Container{
		ChatController:  controller.NewChatController(chatService),
		ConsumerService: consumerService,
		WebSocketHub:    wsHub,
		Logger:          sysLogger,
	}
}

// startLifecycleAudit mirrors session lifecycle events into the structured
// log. Best effort, the event bus stays optional.
func startLifecycleAudit(natsURL string, sysLogger logger.ILogger) {
	natsSub, err := pktNats.NewSubscriber(natsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Subscriber: %v", err)
		return
	}

	err = natsSub.Subscribe("chat.>", "chat-lifecycle-audit", func(ctx context.Context, event events.Event) error {
		sysLogger.Info("LifecycleAudit", "Session lifecycle event", map[string]interface{}{
			"event":   event.EventType(),
			"payload": event.Payload(),
		})
		return nil
	})
	if err != nil {
		log.Printf("[WARN] Failed to subscribe to lifecycle events: %v", err)
	}
}
