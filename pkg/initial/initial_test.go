package initial

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bilingual-lms/pkg/config"
	"bilingual-lms/pkg/logger"
)

func TestDSN(t *testing.T) {
	cfg := &config.Config{DBHost: "db", DBPort: "5433", DBUser: "lms", DBPassword: "secret", DBName: "academy", DBSSLMode: "require"}
	assert.Equal(t, "host=db user=lms password=secret dbname=academy port=5433 sslmode=require", DSN(cfg))
}

func TestOptionalClientsStayNil(t *testing.T) {
	cfg := &config.Config{}
	ctx := context.Background()

	es, err := NewES(cfg)
	require.NoError(t, err)
	assert.Nil(t, es)

	rdb, err := NewRedis(ctx, cfg)
	require.NoError(t, err)
	assert.Nil(t, rdb)

	m, err := NewMedia(ctx, cfg, logger.NewNop())
	require.NoError(t, err)
	assert.Nil(t, m)

	assert.Nil(t, NewEvents(cfg))

	in := &Infra{}
	assert.Nil(t, in.EventWriter())
	assert.Nil(t, in.SettingsCache())
	assert.NoError(t, in.Close())
}

func TestNewESAndEvents(t *testing.T) {
	cfg := &config.Config{ESAddress: "http://localhost:9200", ESUser: "elastic", ESInsecure: true,
		KafkaBrokers: []string{"localhost:9092"}, NotificationsTopic: "notifications"}

	es, err := NewES(cfg)
	require.NoError(t, err)
	assert.NotNil(t, es)

	w := NewEvents(cfg)
	require.NotNil(t, w)
	assert.Equal(t, "notifications", w.Topic)
	in := &Infra{Events: w}
	assert.NotNil(t, in.EventWriter())
	assert.NoError(t, in.Close())
}
