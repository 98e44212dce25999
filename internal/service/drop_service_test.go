package service

import (
	"testing"

	infraKafka "atelier-go/internal/infra/kafka"
	"atelier-go/internal/model"

	"github.com/stretchr/testify/assert"
)

func TestBuildDeliveryTasks(t *testing.T) {
	drop := &model.Drop{
		ID:       10,
		AuthorID: 1,
		Title:    "八月画廊上新",
		Body:     "本月共上架 12 件新作品",
		Status:   model.DropStatusDraft,
	}
	subscribers := []model.Subscriber{
		{ID: 100, Email: "alice@example.com", Active: true},
		{ID: 101, Email: "bob@example.com", Active: true},
	}

	tasks := buildDeliveryTasks(drop, subscribers)

	assert.Equal(t, []infraKafka.DeliveryTask{
		{DropID: 10, SubscriberID: 100, Email: "alice@example.com", Title: "八月画廊上新"},
		{DropID: 10, SubscriberID: 101, Email: "bob@example.com", Title: "八月画廊上新"},
	}, tasks)
}

func TestBuildDeliveryTasksNoSubscribers(t *testing.T) {
	tasks := buildDeliveryTasks(&model.Drop{ID: 10}, nil)
	assert.Empty(t, tasks)
}
