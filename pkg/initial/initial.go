// Package initial connects the process to its infrastructure. Every client
// except the database is optional and stays nil when unconfigured.
package initial

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"bilingual-lms/pkg/config"
	"bilingual-lms/pkg/kfka"
	"bilingual-lms/pkg/logger"
	"bilingual-lms/pkg/media"
	"bilingual-lms/pkg/models"
	"bilingual-lms/pkg/settings"
)

type Infra struct {
	DB     *gorm.DB
	ES     *elasticsearch.Client
	Redis  *redis.Client
	Media  *media.Store
	Events *kafka.Writer
}

// DSN builds the PostgreSQL connection string.
func DSN(cfg *config.Config) string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		cfg.DBHost, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBPort, cfg.DBSSLMode)
}

func ConnectDB(cfg *config.Config, log *logger.Logger) (*gorm.DB, error) {
	log.Info("connecting to database", "host", cfg.DBHost, "port", cfg.DBPort, "db", cfg.DBName, "user", cfg.DBUser)
	level := gormlogger.Warn
	if cfg.LogMode == "prod" || cfg.LogMode == "production" {
		level = gormlogger.Error
	}
	db, err := gorm.Open(postgres.Open(DSN(cfg)), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(level),
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return db, nil
}

// Migrate creates or updates every table.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(models.All()...)
}

func NewES(cfg *config.Config) (*elasticsearch.Client, error) {
	if cfg.ESAddress == "" {
		return nil, nil
	}
	esCfg := elasticsearch.Config{
		Addresses: []string{cfg.ESAddress},
		Username:  cfg.ESUser,
		Password:  cfg.ESPassword,
	}
	if cfg.ESInsecure {
		esCfg.Transport = &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		}
	}
	client, err := elasticsearch.NewClient(esCfg)
	if err != nil {
		return nil, fmt.Errorf("elasticsearch client: %w", err)
	}
	return client, nil
}

func NewRedis(ctx context.Context, cfg *config.Config) (*redis.Client, error) {
	if cfg.RedisAddr == "" {
		return nil, nil
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return rdb, nil
}

func NewMedia(ctx context.Context, cfg *config.Config, log *logger.Logger) (*media.Store, error) {
	if cfg.MinioEndpoint == "" {
		return nil, nil
	}
	client, err := media.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("minio client: %w", err)
	}
	s := media.NewStore(client, cfg.MinioBucket, client.EndpointURL().String(), log)
	if err := s.EnsureBucket(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func NewEvents(cfg *config.Config) *kafka.Writer {
	if len(cfg.KafkaBrokers) == 0 {
		return nil
	}
	return kfka.NewWriter(cfg.KafkaBrokers, cfg.NotificationsTopic)
}

// Open connects every configured backend. On error, the clients opened so far
// are closed.
func Open(ctx context.Context, cfg *config.Config, log *logger.Logger) (*Infra, error) {
	in := &Infra{}
	var err error
	if in.DB, err = ConnectDB(cfg, log); err != nil {
		return nil, err
	}
	if in.ES, err = NewES(cfg); err != nil {
		in.Close()
		return nil, err
	}
	if in.Redis, err = NewRedis(ctx, cfg); err != nil {
		in.Close()
		return nil, err
	}
	if in.Media, err = NewMedia(ctx, cfg, log); err != nil {
		in.Close()
		return nil, err
	}
	in.Events = NewEvents(cfg)
	log.Info("infrastructure ready",
		"search", in.ES != nil,
		"cache", in.Redis != nil,
		"media", in.Media != nil,
		"events", in.Events != nil)
	return in, nil
}

// EventWriter returns Events as an interface that is nil when Kafka is off.
func (in *Infra) EventWriter() kfka.Writer {
	if in.Events == nil {
		return nil
	}
	return in.Events
}

func (in *Infra) SettingsCache() settings.Cache {
	if in.Redis == nil {
		return nil
	}
	return in.Redis
}

func (in *Infra) Close() error {
	var errs []error
	if in.Events != nil {
		errs = append(errs, in.Events.Close())
	}
	if in.Redis != nil {
		errs = append(errs, in.Redis.Close())
	}
	if in.DB != nil {
		if sqlDB, err := in.DB.DB(); err == nil {
			errs = append(errs, sqlDB.Close())
		}
	}
	return errors.Join(errs...)
}
