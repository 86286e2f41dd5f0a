package kfka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
)

// Event tells one recipient about one notification.
type Event struct {
	NotificationID uint   `json:"notification_id"`
	UserID         uint   `json:"user_id"`
	Email          string `json:"email"`
	EventType      string `json:"event_type"`
	CourseID       *uint  `json:"course_id,omitempty"`
	TitleAr        string `json:"title_ar"`
	TitleEn        string `json:"title_en"`
	MessageAr      string `json:"message_ar"`
	MessageEn      string `json:"message_en"`
}

// Key routes every event of a recipient to the same partition.
func (e *Event) Key() []byte {
	return []byte(fmt.Sprintf("user-%d", e.UserID))
}

func (e *Event) Message() (kafka.Message, error) {
	value, err := json.Marshal(e)
	if err != nil {
		return kafka.Message{}, err
	}
	return kafka.Message{Key: e.Key(), Value: value}, nil
}

// Writer is the producing half of *kafka.Writer.
type Writer interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// Publish writes events as one batch.
func Publish(ctx context.Context, w Writer, events []Event) error {
	if len(events) == 0 {
		return nil
	}
	msgs := make([]kafka.Message, 0, len(events))
	for i := range events {
		m, err := events[i].Message()
		if err != nil {
			return err
		}
		msgs = append(msgs, m)
	}
	return w.WriteMessages(ctx, msgs...)
}

func NewWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 50 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,
	}
}

func NewReader(brokers []string, topic, group string) *kafka.Reader {
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers: brokers,
		Topic:   topic,
		GroupID: group,
	})
}
