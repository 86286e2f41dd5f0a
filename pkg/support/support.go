package support

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"bilingual-lms/pkg/logger"
	"bilingual-lms/pkg/models"
	"bilingual-lms/pkg/store"
)

var (
	ErrTicketNotFound    = errors.New("ticket not found")
	ErrInvalidTransition = errors.New("invalid ticket status transition")
	ErrEmptyReply        = errors.New("admin reply is required")
)

type Service struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewService(db *gorm.DB, log *logger.Logger) *Service {
	return &Service{db: db, log: log.With("service", "SupportService")}
}

// Open files a new ticket. Tickets with an ExternalKey are created once.
func (s *Service) Open(ctx context.Context, t *models.Ticket) (store.Outcome, error) {
	if t.Status == "" {
		t.Status = models.TicketOpen
	}
	if t.Status != models.TicketOpen && t.ExternalKey == nil {
		return store.Failed, ErrInvalidTransition
	}
	var (
		out store.Outcome
		err error
	)
	if t.ExternalKey != nil {
		out, err = store.UpsertByKey(ctx, s.db, t, "ExternalKey")
	} else {
		out, err = store.Create(ctx, s.db, t)
	}
	if err != nil {
		return store.Failed, err
	}
	s.log.Info("ticket "+out.String(), "ticket_id", t.ID, "user_id", t.UserID, "status", t.Status)
	return out, nil
}

// Start moves an OPEN ticket to IN_PROGRESS.
func (s *Service) Start(ctx context.Context, ticketID uint) (*models.Ticket, error) {
	return s.transition(ctx, ticketID, func(t *models.Ticket) (map[string]any, error) {
		if t.Status != models.TicketOpen {
			return nil, ErrInvalidTransition
		}
		return map[string]any{"status": models.TicketInProgress}, nil
	})
}

// Resolve closes an OPEN or IN_PROGRESS ticket with an admin reply.
func (s *Service) Resolve(ctx context.Context, ticketID uint, reply string) (*models.Ticket, error) {
	reply = strings.TrimSpace(reply)
	if reply == "" {
		return nil, ErrEmptyReply
	}
	return s.transition(ctx, ticketID, func(t *models.Ticket) (map[string]any, error) {
		if t.Status == models.TicketResolved {
			return nil, ErrInvalidTransition
		}
		return map[string]any{
			"status":      models.TicketResolved,
			"admin_reply": reply,
			"resolved_at": time.Now().UTC(),
		}, nil
	})
}

func (s *Service) transition(ctx context.Context, ticketID uint, next func(*models.Ticket) (map[string]any, error)) (*models.Ticket, error) {
	var t models.Ticket
	err := store.InTx(ctx, s.db, func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&t, ticketID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrTicketNotFound
			}
			return err
		}
		cols, err := next(&t)
		if err != nil {
			return err
		}
		cols["updated_at"] = time.Now().UTC()
		if err := tx.Model(&t).UpdateColumns(cols).Error; err != nil {
			return err
		}
		return tx.First(&t, ticketID).Error
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("ticket status changed", "ticket_id", t.ID, "status", t.Status)
	return &t, nil
}

// ByUser lists a user's tickets, newest first.
func (s *Service) ByUser(ctx context.Context, userID uint) ([]models.Ticket, error) {
	var list []models.Ticket
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("id DESC").Find(&list).Error
	return list, err
}

func (s *Service) ByStatus(ctx context.Context, status models.TicketStatus) ([]models.Ticket, error) {
	var list []models.Ticket
	err := s.db.WithContext(ctx).Where("status = ?", status).Order("id").Find(&list).Error
	return list, err
}
