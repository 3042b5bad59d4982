package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-neo/core"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// TriggerStateStore persists trigger static data in neo_trigger_state, one
// row per (trigger_id, name).
type TriggerStateStore struct {
	db   *bun.DB
	repo repository.Repository[*triggerStateRecord]
	now  func() time.Time
}

func NewTriggerStateStore(db *bun.DB) (*TriggerStateStore, error) {
	if db == nil {
		return nil, fmt.Errorf("sqlstore: bun db is required")
	}
	repo := repository.NewRepository[*triggerStateRecord](db, triggerStateHandlers())
	if validator, ok := repo.(repository.Validator); ok {
		if err := validator.Validate(); err != nil {
			return nil, fmt.Errorf("sqlstore: invalid trigger state repository wiring: %w", err)
		}
	}
	return &TriggerStateStore{
		db:   db,
		repo: repo,
		now:  func() time.Time { return time.Now().UTC() },
	}, nil
}

func (s *TriggerStateStore) Get(ctx context.Context, key core.StateKey) (string, bool, error) {
	if s == nil || s.db == nil {
		return "", false, fmt.Errorf("sqlstore: trigger state store is not configured")
	}
	key = normalizeStateKey(key)
	if err := key.Validate(); err != nil {
		return "", false, err
	}
	record := &triggerStateRecord{}
	err := s.db.NewSelect().
		Model(record).
		Where("?TableAlias.trigger_id = ?", key.TriggerID).
		Where("?TableAlias.name = ?", key.Name).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, err
	}
	return record.Value, true, nil
}

func (s *TriggerStateStore) Set(ctx context.Context, key core.StateKey, value string) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("sqlstore: trigger state store is not configured")
	}
	key = normalizeStateKey(key)
	if err := key.Validate(); err != nil {
		return err
	}
	now := s.now()

	return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		record, err := findTriggerStateTx(ctx, tx, key)
		if err != nil {
			return err
		}
		if record == nil {
			record = &triggerStateRecord{
				ID:        uuid.NewString(),
				TriggerID: key.TriggerID,
				Name:      key.Name,
				Value:     value,
				CreatedAt: now,
				UpdatedAt: now,
			}
			_, err := s.repo.CreateTx(ctx, tx, record)
			return err
		}
		record.Value = value
		record.UpdatedAt = now
		_, err = tx.NewUpdate().
			Model(record).
			Column("value", "updated_at").
			Where("id = ?", record.ID).
			Exec(ctx)
		return err
	})
}

func (s *TriggerStateStore) Delete(ctx context.Context, key core.StateKey) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("sqlstore: trigger state store is not configured")
	}
	key = normalizeStateKey(key)
	if err := key.Validate(); err != nil {
		return err
	}
	_, err := s.db.NewDelete().
		Model((*triggerStateRecord)(nil)).
		Where("trigger_id = ?", key.TriggerID).
		Where("name = ?", key.Name).
		Exec(ctx)
	return err
}

func findTriggerStateTx(ctx context.Context, tx bun.Tx, key core.StateKey) (*triggerStateRecord, error) {
	record := &triggerStateRecord{}
	err := tx.NewSelect().
		Model(record).
		Where("?TableAlias.trigger_id = ?", key.TriggerID).
		Where("?TableAlias.name = ?", key.Name).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return record, nil
}

func normalizeStateKey(key core.StateKey) core.StateKey {
	return core.StateKey{
		TriggerID: strings.TrimSpace(key.TriggerID),
		Name:      strings.TrimSpace(key.Name),
	}
}
