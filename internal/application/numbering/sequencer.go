// Package numbering hands out the legal numbers of quotes, invoices and
// supplier orders (PREFIX-YYYY-NNNNN). Sequences restart every year and have
// no gaps: a number is drawn inside the transaction that persists the
// document, so a failed write rolls the counter back with it.
package numbering

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/monartisan/backend/internal/domain/identity"
	"github.com/monartisan/backend/internal/domain/shared"
)

// DefaultLockTTL bounds how long a numbering lock may be held
const DefaultLockTTL = 10 * time.Second

// Assigned is the number drawn for a document
type Assigned struct {
	Number  string
	Date    time.Time
	Artisan *identity.Artisan
}

// Sequencer serialises numbering per tenant and document kind
type Sequencer struct {
	artisanRepo identity.ArtisanRepository
	txManager   shared.TransactionManager
	locker      shared.Locker
	lockTTL     time.Duration
	now         func() time.Time
}

// NewSequencer creates a sequencer. locker may be nil when a single
// instance runs; the database counter still guarantees distinct numbers.
func NewSequencer(artisanRepo identity.ArtisanRepository, txManager shared.TransactionManager, locker shared.Locker) *Sequencer {
	return &Sequencer{
		artisanRepo: artisanRepo,
		txManager:   txManager,
		locker:      locker,
		lockTTL:     DefaultLockTTL,
		now:         time.Now,
	}
}

// WithNumber draws the next number of kind for the tenant and runs fn in the
// same transaction. If fn fails the number is released.
func (s *Sequencer) WithNumber(ctx context.Context, tenantID uuid.UUID, kind identity.DocumentKind, fn func(ctx context.Context, a Assigned) error) error {
	if s.locker != nil {
		lock, err := s.locker.Acquire(ctx, lockKey(tenantID, kind), s.lockTTL)
		if err != nil {
			return err
		}
		defer func() { _ = lock.Release(context.WithoutCancel(ctx)) }()
	}

	artisan, err := s.artisanRepo.FindByID(ctx, tenantID)
	if err != nil {
		return err
	}

	return s.txManager.WithinTransaction(ctx, func(ctx context.Context) error {
		now := s.now()
		year := now.Year()
		seq, err := s.artisanRepo.NextDocumentNumber(ctx, tenantID, kind, year)
		if err != nil {
			return fmt.Errorf("next %s number: %w", kind, err)
		}
		return fn(ctx, Assigned{
			Number:  identity.FormatDocumentNumber(artisan.DocumentPrefix(kind), year, seq),
			Date:    now,
			Artisan: artisan,
		})
	})
}

func lockKey(tenantID uuid.UUID, kind identity.DocumentKind) string {
	return "numbering:" + tenantID.String() + ":" + string(kind)
}
