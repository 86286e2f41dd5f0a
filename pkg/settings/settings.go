// Package settings serves system_settings rows through an optional Redis
// read-through cache.
package settings

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"bilingual-lms/pkg/i18n"
	"bilingual-lms/pkg/logger"
	"bilingual-lms/pkg/models"
	"bilingual-lms/pkg/store"
)

var ErrNotFound = errors.New("setting not found")

const keyPrefix = "settings:"

// Cache is the part of *redis.Client the service uses.
type Cache interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

type Service struct {
	db    *gorm.DB
	log   *logger.Logger
	cache Cache
	ttl   time.Duration
}

// NewService returns a settings service. A nil cache reads the database every
// time.
func NewService(db *gorm.DB, log *logger.Logger, cache Cache, ttl time.Duration) *Service {
	return &Service{db: db, log: log.With("service", "SettingsService"), cache: cache, ttl: ttl}
}

func (s *Service) Get(ctx context.Context, key string) (*models.SystemSetting, error) {
	if s.cache != nil {
		raw, err := s.cache.Get(ctx, keyPrefix+key).Bytes()
		switch {
		case err == nil:
			var setting models.SystemSetting
			if err := json.Unmarshal(raw, &setting); err == nil {
				return &setting, nil
			}
			s.log.Warn("dropping undecodable cached setting", "key", key)
		case !errors.Is(err, redis.Nil):
			s.log.Warn("settings cache read failed", "key", key, "error", err)
		}
	}

	var setting models.SystemSetting
	if err := s.db.WithContext(ctx).Where(&models.SystemSetting{Key: key}).Take(&setting).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if s.cache != nil {
		if raw, err := json.Marshal(&setting); err == nil {
			if err := s.cache.Set(ctx, keyPrefix+key, raw, s.ttl).Err(); err != nil {
				s.log.Warn("settings cache write failed", "key", key, "error", err)
			}
		}
	}
	return &setting, nil
}

// Set creates or overwrites the setting and drops its cache entry.
func (s *Service) Set(ctx context.Context, setting *models.SystemSetting) error {
	err := store.Upsert(ctx, s.db, setting,
		[]string{"key"},
		[]string{"value", "value_ar", "value_en", "description", "updated_at"})
	if err != nil {
		return err
	}
	s.invalidate(ctx, setting.Key)
	s.log.Info("setting saved", "key", setting.Key)
	return nil
}

// Ensure creates the setting only when the key is new.
func (s *Service) Ensure(ctx context.Context, setting *models.SystemSetting) (store.Outcome, error) {
	out, err := store.UpsertByKey(ctx, s.db, setting, "Key")
	if err == nil && out == store.Created {
		s.invalidate(ctx, setting.Key)
	}
	return out, err
}

// Localized returns the setting in lang, falling back to the other language
// and then to the plain value.
func (s *Service) Localized(ctx context.Context, key string, lang i18n.Lang) (string, error) {
	setting, err := s.Get(ctx, key)
	if err != nil {
		return "", err
	}
	if v := (i18n.Text{Ar: setting.ValueAr, En: setting.ValueEn}).In(lang); v != "" {
		return v, nil
	}
	return setting.Value, nil
}

func (s *Service) invalidate(ctx context.Context, key string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, keyPrefix+key).Err(); err != nil {
		s.log.Warn("settings cache invalidation failed", "key", key, "error", err)
	}
}
