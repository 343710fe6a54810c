package service

import (
	"encoding/json"

	"edubridge-chat-be/internal/dto"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// IPublisherService pushes store snapshots onto the in-process bus after
// every engine mutation. The consumer side fans them out to WebSocket
// clients.
type IPublisherService interface {
	PublishStateChanged(snapshot *dto.StoreSnapshotResponse) error
}

type publisherService struct {
	topicName string
	pubSub    *gochannel.GoChannel
}

func NewPublisherService(topicName string, pubSub *gochannel.GoChannel) IPublisherService {
	return &publisherService{
		topicName: topicName,
		pubSub:    pubSub,
	}
}

func (ps *publisherService) PublishStateChanged(snapshot *dto.StoreSnapshotResponse) error {
	payload, err := json.Marshal(snapshot)
	if err != nil {
		return err
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	return ps.pubSub.Publish(ps.topicName, msg)
}
