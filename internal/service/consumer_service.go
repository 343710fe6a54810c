package service

import (
	"context"
	"encoding/json"

	"edubridge-chat-be/internal/dto"
	"edubridge-chat-be/internal/pkg/logger"
	"edubridge-chat-be/internal/websocket"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// consumerService bridges the in-process bus to the WebSocket hub: every
// state-changed message becomes one broadcast to connected shells.
type consumerService struct {
	pubSub    *gochannel.GoChannel
	topicName string
	hub       *websocket.Hub
	logger    logger.ILogger
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	hub *websocket.Hub,
	log logger.ILogger,
) IConsumerService {
	return &consumerService{
		pubSub:    pubSub,
		topicName: topicName,
		hub:       hub,
		logger:    log,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(msg *message.Message) {
	var snapshot dto.StoreSnapshotResponse
	if err := json.Unmarshal(msg.Payload, &snapshot); err != nil {
		cs.logger.Warn("Consumer", "Failed to unmarshal state payload", map[string]interface{}{
			"error": err.Error(),
		})
		msg.Ack() // malformed payloads are not retriable
		return
	}

	cs.hub.BroadcastState(&snapshot)
	msg.Ack()
}
