package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/IBM/sarama"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/services-marketplace/internal/logger"
)

// NewSyncProducer создаёт синхронного продюсера, который ждёт подтверждения от всех реплик.
func NewSyncProducer(brokers []string) (sarama.SyncProducer, error) {
	config := sarama.NewConfig()
	config.Producer.Return.Successes = true
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Retry.Max = 5

	producer, err := sarama.NewSyncProducer(brokers, config)
	if err != nil {
		return nil, fmt.Errorf("kafka: не удалось создать продюсера: %w", err)
	}
	return producer, nil
}

// KafkaPublisher публикует события в топик. Ключ сообщения равен id бронирования,
// так события одного бронирования попадают в одну партицию по порядку.
type KafkaPublisher struct {
	producer sarama.SyncProducer
	topic    string
}

func NewKafkaPublisher(producer sarama.SyncProducer, topic string) *KafkaPublisher {
	return &KafkaPublisher{producer: producer, topic: topic}
}

func (p *KafkaPublisher) Publish(_ context.Context, event Event) error {
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("kafka: marshal event: %w", err)
	}

	msg := &sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(strconv.FormatInt(event.BookingID, 10)),
		Value: sarama.ByteEncoder(value),
		Headers: []sarama.RecordHeader{
			{Key: []byte("event_type"), Value: []byte(event.Type)},
		},
	}

	partition, offset, err := p.producer.SendMessage(msg)
	if err != nil {
		return fmt.Errorf("kafka: send %s: %w", event.Type, err)
	}

	logger.Log.WithFields(logrus.Fields{
		"topic":      p.topic,
		"event_type": event.Type,
		"booking_id": event.BookingID,
		"partition":  partition,
		"offset":     offset,
	}).Debug("kafka: событие опубликовано")

	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.producer.Close()
}
