package kfka

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bilingual-lms/pkg/logger"
)

type fakeReader struct {
	msgs      []kafka.Message
	committed []int64
}

func (f *fakeReader) FetchMessage(context.Context) (kafka.Message, error) {
	if len(f.msgs) == 0 {
		return kafka.Message{}, io.EOF
	}
	m := f.msgs[0]
	f.msgs = f.msgs[1:]
	return m, nil
}

func (f *fakeReader) CommitMessages(_ context.Context, msgs ...kafka.Message) error {
	for _, m := range msgs {
		f.committed = append(f.committed, m.Offset)
	}
	return nil
}

type recorder struct{ msgs []kafka.Message }

func (r *recorder) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	r.msgs = append(r.msgs, msgs...)
	return nil
}

func TestPublishKeysByRecipient(t *testing.T) {
	w := &recorder{}
	require.NoError(t, Publish(context.Background(), w, []Event{
		{NotificationID: 1, UserID: 7, EventType: "COURSE"},
		{NotificationID: 1, UserID: 8, EventType: "COURSE"},
	}))
	require.Len(t, w.msgs, 2)
	assert.Equal(t, "user-7", string(w.msgs[0].Key))
	assert.Equal(t, "user-8", string(w.msgs[1].Key))

	require.NoError(t, Publish(context.Background(), w, nil))
	assert.Len(t, w.msgs, 2)
}

func TestConsumeSkipsMalformed(t *testing.T) {
	good, err := (&Event{NotificationID: 3, UserID: 9, Email: "s@example.com"}).Message()
	require.NoError(t, err)
	good.Offset = 2
	failing, err := (&Event{NotificationID: 4, UserID: 9}).Message()
	require.NoError(t, err)
	failing.Offset = 3

	r := &fakeReader{msgs: []kafka.Message{
		{Offset: 1, Value: []byte("{not json")},
		good,
		failing,
	}}
	var handled []uint
	err = Consume(context.Background(), r, logger.NewNop(), func(_ context.Context, e Event) error {
		handled = append(handled, e.NotificationID)
		if e.NotificationID == 4 {
			return errors.New("smtp down")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []uint{3, 4}, handled)
	assert.Equal(t, []int64{1, 2, 3}, r.committed)
}

func TestConsumeStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r := &blockingReader{}
	assert.NoError(t, Consume(ctx, r, logger.NewNop(), func(context.Context, Event) error { return nil }))
}

type blockingReader struct{}

func (blockingReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	<-ctx.Done()
	return kafka.Message{}, ctx.Err()
}

func (blockingReader) CommitMessages(context.Context, ...kafka.Message) error { return nil }
