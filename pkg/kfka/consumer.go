package kfka

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"time"

	"github.com/segmentio/kafka-go"

	"bilingual-lms/pkg/logger"
)

// Reader is the consuming half of *kafka.Reader.
type Reader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
}

type Handler func(ctx context.Context, e Event) error

// Consume feeds events to h until ctx is cancelled or the reader is closed.
// Malformed messages and handler failures are logged and committed so one
// bad event cannot stall the partition.
func Consume(ctx context.Context, r Reader, log *logger.Logger, h Handler) error {
	for {
		m, err := r.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, io.EOF) {
				return nil
			}
			log.Warn("kafka fetch failed", "error", err)
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(time.Second):
			}
			continue
		}

		var e Event
		if err := json.Unmarshal(m.Value, &e); err != nil {
			log.Warn("skipping malformed event", "offset", m.Offset, "partition", m.Partition, "error", err)
		} else if err := h(ctx, e); err != nil {
			log.Error("event handler failed", "notification_id", e.NotificationID, "user_id", e.UserID, "error", err)
		}

		if err := r.CommitMessages(ctx, m); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			log.Warn("kafka commit failed", "offset", m.Offset, "error", err)
		}
	}
}
