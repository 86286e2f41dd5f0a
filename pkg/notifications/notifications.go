package notifications

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"bilingual-lms/pkg/kfka"
	"bilingual-lms/pkg/logger"
	"bilingual-lms/pkg/models"
	"bilingual-lms/pkg/store"
)

var ErrNotFound = errors.New("notification not found for user")

type Service struct {
	db     *gorm.DB
	log    *logger.Logger
	events kfka.Writer
}

// NewService returns a service that publishes one event per new recipient.
// A nil events writer only stores rows.
func NewService(db *gorm.DB, log *logger.Logger, events kfka.Writer) *Service {
	return &Service{db: db, log: log.With("service", "NotificationService"), events: events}
}

// Send stores n and its recipients in one transaction. A notification with an
// ExternalKey is created once; recipients already attached are ignored.
// Events are published after commit, and only for recipients added by this
// call.
func (s *Service) Send(ctx context.Context, n *models.Notification, recipients []uint) (store.Outcome, error) {
	n.Recipients = nil
	ids := unique(recipients)

	var (
		out   store.Outcome
		added []uint
	)
	err := store.InTx(ctx, s.db, func(tx *gorm.DB) error {
		var err error
		if n.ExternalKey != nil {
			out, err = store.UpsertByKey(ctx, tx, n, "ExternalKey")
		} else {
			out, err = store.Create(ctx, tx, n)
		}
		if err != nil {
			return err
		}
		added, err = attach(ctx, tx, n.ID, ids)
		return err
	})
	if err != nil {
		return store.Failed, err
	}
	s.log.Info("notification "+out.String(), "notification_id", n.ID, "type", n.Type, "recipients", len(ids), "added", len(added))

	if s.events != nil && len(added) > 0 {
		if err := s.publish(ctx, n, added); err != nil {
			// Rows are the source of truth; the inbox still shows it.
			s.log.Warn("publishing notification events failed", "notification_id", n.ID, "error", err)
		}
	}
	return out, nil
}

// attach inserts the missing recipient rows and returns their user ids.
func attach(ctx context.Context, tx *gorm.DB, notificationID uint, userIDs []uint) ([]uint, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}
	var existing []uint
	if err := tx.WithContext(ctx).Model(&models.NotificationRecipient{}).
		Where("notification_id = ? AND user_id IN ?", notificationID, userIDs).
		Pluck("user_id", &existing).Error; err != nil {
		return nil, err
	}
	have := make(map[uint]bool, len(existing))
	for _, id := range existing {
		have[id] = true
	}

	var rows []models.NotificationRecipient
	var added []uint
	for _, id := range userIDs {
		if have[id] {
			continue
		}
		rows = append(rows, models.NotificationRecipient{NotificationID: notificationID, UserID: id})
		added = append(added, id)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	err := tx.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "notification_id"}, {Name: "user_id"}},
			DoNothing: true,
		}).
		Create(&rows).Error
	return added, err
}

func (s *Service) publish(ctx context.Context, n *models.Notification, userIDs []uint) error {
	var users []models.User
	if err := s.db.WithContext(ctx).Select("id", "email").Where("id IN ?", userIDs).Find(&users).Error; err != nil {
		return err
	}
	events := make([]kfka.Event, 0, len(users))
	for _, u := range users {
		events = append(events, kfka.Event{
			NotificationID: n.ID,
			UserID:         u.ID,
			Email:          u.Email,
			EventType:      string(n.Type),
			CourseID:       n.CourseID,
			TitleAr:        n.TitleAr,
			TitleEn:        n.TitleEn,
			MessageAr:      n.MessageAr,
			MessageEn:      n.MessageEn,
		})
	}
	return kfka.Publish(ctx, s.events, events)
}

// MarkRead flags one notification as read for userID. Marking twice is a no-op.
func (s *Service) MarkRead(ctx context.Context, notificationID, userID uint) error {
	now := time.Now().UTC()
	res := s.db.WithContext(ctx).Model(&models.NotificationRecipient{}).
		Where("notification_id = ? AND user_id = ? AND read = ?", notificationID, userID, false).
		UpdateColumns(map[string]any{"read": true, "read_at": now, "updated_at": now})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		return nil
	}
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.NotificationRecipient{}).
		Where("notification_id = ? AND user_id = ?", notificationID, userID).
		Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Service) MarkAllRead(ctx context.Context, userID uint) (int64, error) {
	now := time.Now().UTC()
	res := s.db.WithContext(ctx).Model(&models.NotificationRecipient{}).
		Where("user_id = ? AND read = ?", userID, false).
		UpdateColumns(map[string]any{"read": true, "read_at": now, "updated_at": now})
	return res.RowsAffected, res.Error
}

// Unread lists the user's unread notifications, newest first.
func (s *Service) Unread(ctx context.Context, userID uint) ([]models.Notification, error) {
	var list []models.Notification
	err := s.db.WithContext(ctx).
		Joins("JOIN notification_recipients r ON r.notification_id = notifications.id AND r.deleted_at IS NULL").
		Where("r.user_id = ? AND r.read = ?", userID, false).
		Order("notifications.id DESC").
		Find(&list).Error
	return list, err
}

func unique(ids []uint) []uint {
	seen := make(map[uint]bool, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if id == 0 || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
