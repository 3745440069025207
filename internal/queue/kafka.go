package queue

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/confluentinc/confluent-kafka-go/kafka"
	"github.com/sirupsen/logrus"
)

var _ EntryQueue = (*KafkaEntryQueue)(nil)

type KafkaEntryQueue struct {
	producer *kafka.Producer
	topic    string
}

func NewKafkaEntryQueue(brokers, topic string) (*KafkaEntryQueue, error) {
	producer, err := kafka.NewProducer(&kafka.ConfigMap{
		"bootstrap.servers": brokers,
	})
	if err != nil {
		return nil, err
	}

	q := &KafkaEntryQueue{
		producer: producer,
		topic:    topic,
	}

	// drain delivery reports, failed deliveries are logged and dropped
	go func() {
		for e := range producer.Events() {
			if m, ok := e.(*kafka.Message); ok && m.TopicPartition.Error != nil {
				logrus.Errorf("entry change delivery failed: %v", m.TopicPartition.Error)
			}
		}
	}()

	return q, nil
}

func (q *KafkaEntryQueue) PublishChange(ctx context.Context, change *EntryChange) error {
	value, err := json.Marshal(change)
	if err != nil {
		return err
	}

	return q.producer.Produce(&kafka.Message{
		TopicPartition: kafka.TopicPartition{Topic: &q.topic, Partition: kafka.PartitionAny},
		Key:            []byte(strconv.FormatUint(uint64(change.EntryID), 10)),
		Value:          value,
	}, nil)
}

func (q *KafkaEntryQueue) Close() {
	q.producer.Flush(5000)
	q.producer.Close()
}
