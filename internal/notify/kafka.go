package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/IBM/sarama"
	"github.com/sirupsen/logrus"
)

// KafkaNotifier publishes events to a Kafka topic consumed by the email
// worker. Send errors are logged and dropped.
type KafkaNotifier struct {
	producer sarama.SyncProducer
	topic    string
	log      *logrus.Logger
}

func NewKafkaNotifier(brokers []string, topic string, log *logrus.Logger) (*KafkaNotifier, error) {
	config := sarama.NewConfig()
	config.Producer.Return.Successes = true
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Retry.Max = 5

	producer, err := sarama.NewSyncProducer(brokers, config)
	if err != nil {
		return nil, fmt.Errorf("creating kafka producer: %w", err)
	}

	return &KafkaNotifier{
		producer: producer,
		topic:    topic,
		log:      log,
	}, nil
}

func (n *KafkaNotifier) Notify(_ context.Context, event Event) {
	payload, marshalErr := json.Marshal(event)
	if marshalErr != nil {
		n.log.WithError(marshalErr).WithField("type", event.Type).Error("marshaling notification event")
		return
	}

	msg := &sarama.ProducerMessage{
		Topic: n.topic,
		Key:   sarama.StringEncoder(event.Recipient),
		Value: sarama.ByteEncoder(payload),
	}

	partition, offset, sendErr := n.producer.SendMessage(msg)
	if sendErr != nil {
		n.log.WithError(sendErr).WithField("type", event.Type).Error("publishing notification event")
		return
	}

	n.log.WithFields(logrus.Fields{
		"type":      event.Type,
		"partition": partition,
		"offset":    offset,
	}).Debug("notification event published")
}

func (n *KafkaNotifier) Close() error {
	return n.producer.Close() //nolint:wrapcheck
}
