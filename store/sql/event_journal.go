package sqlstore

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-neo/core"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

const defaultJournalPerPage = 25

// EventJournal records every accepted callback event in neo_callback_events.
// It implements core.EventSink so it can sit next to the host sink.
type EventJournal struct {
	repo repository.Repository[*callbackEventRecord]
	now  func() time.Time
}

// JournalEntry is a stored callback event.
type JournalEntry struct {
	ID         string
	TriggerID  string
	Event      core.InboundEvent
	ReceivedAt time.Time
}

type JournalPage struct {
	Items      []JournalEntry
	Page       int
	PerPage    int
	Total      int
	HasNext    bool
	NextCursor string
}

type JournalFilter struct {
	TriggerID string
	EventType string
	Since     *time.Time
	Page      int
	PerPage   int
}

func NewEventJournal(db *bun.DB) (*EventJournal, error) {
	if db == nil {
		return nil, fmt.Errorf("sqlstore: bun db is required")
	}
	repo := repository.NewRepository[*callbackEventRecord](db, callbackEventHandlers())
	if validator, ok := repo.(repository.Validator); ok {
		if err := validator.Validate(); err != nil {
			return nil, fmt.Errorf("sqlstore: invalid callback event repository wiring: %w", err)
		}
	}
	return &EventJournal{
		repo: repo,
		now:  func() time.Time { return time.Now().UTC() },
	}, nil
}

func (j *EventJournal) Emit(ctx context.Context, triggerID string, event core.InboundEvent) error {
	if j == nil || j.repo == nil {
		return fmt.Errorf("sqlstore: event journal is not configured")
	}
	triggerID = strings.TrimSpace(triggerID)
	if triggerID == "" {
		return core.ErrTriggerIDRequired
	}
	now := j.now()
	record := &callbackEventRecord{
		ID:         uuid.NewString(),
		TriggerID:  triggerID,
		EventType:  event.EventType,
		Mode:       string(event.Mode),
		TestMode:   event.TestMode,
		Timestamp:  timestampText(event.Timestamp),
		Data:       copyAnyMap(event.Data),
		Headers:    copyStringMap(core.RedactHeaders(event.Headers)),
		ReceivedAt: now,
		CreatedAt:  now,
	}
	_, err := j.repo.Create(ctx, record)
	return err
}

func (j *EventJournal) List(ctx context.Context, filter JournalFilter) (JournalPage, error) {
	if j == nil || j.repo == nil {
		return JournalPage{}, fmt.Errorf("sqlstore: event journal is not configured")
	}
	page := filter.Page
	if page <= 0 {
		page = 1
	}
	perPage := filter.PerPage
	if perPage <= 0 {
		perPage = defaultJournalPerPage
	}
	offset := (page - 1) * perPage

	selectors := []repository.SelectCriteria{
		repository.OrderBy("received_at DESC"),
		repository.SelectPaginate(perPage, offset),
	}
	if triggerID := strings.TrimSpace(filter.TriggerID); triggerID != "" {
		selectors = append(selectors, repository.SelectBy("trigger_id", "=", triggerID))
	}
	if eventType := strings.TrimSpace(filter.EventType); eventType != "" {
		selectors = append(selectors, repository.SelectBy("event_type", "=", eventType))
	}
	if filter.Since != nil {
		selectors = append(selectors, repository.SelectByTimetz("received_at", ">=", filter.Since.UTC()))
	}

	records, total, err := j.repo.List(ctx, selectors...)
	if err != nil {
		return JournalPage{}, err
	}
	items := make([]JournalEntry, 0, len(records))
	for _, record := range records {
		items = append(items, record.toDomain())
	}
	hasNext := offset+len(items) < total
	nextCursor := ""
	if hasNext {
		nextCursor = strconv.Itoa(offset + len(items))
	}
	return JournalPage{
		Items:      items,
		Page:       page,
		PerPage:    perPage,
		Total:      total,
		HasNext:    hasNext,
		NextCursor: nextCursor,
	}, nil
}

func (r *callbackEventRecord) toDomain() JournalEntry {
	if r == nil {
		return JournalEntry{}
	}
	entry := JournalEntry{
		ID:         r.ID,
		TriggerID:  r.TriggerID,
		ReceivedAt: r.ReceivedAt,
		Event: core.InboundEvent{
			EventType: r.EventType,
			Data:      copyAnyMap(r.Data),
			Headers:   copyStringMap(r.Headers),
			TestMode:  r.TestMode,
			Mode:      core.ExecutionMode(r.Mode),
		},
	}
	if r.Timestamp != "" {
		entry.Event.Timestamp = r.Timestamp
	}
	return entry
}

func timestampText(value any) string {
	switch typed := value.(type) {
	case nil:
		return ""
	case string:
		return typed
	case time.Time:
		return typed.UTC().Format(time.RFC3339Nano)
	default:
		return fmt.Sprint(typed)
	}
}

func copyAnyMap(input map[string]any) map[string]any {
	if len(input) == 0 {
		return map[string]any{}
	}
	out := make(map[string]any, len(input))
	for key, value := range input {
		out[key] = value
	}
	return out
}

func copyStringMap(input map[string]string) map[string]string {
	if len(input) == 0 {
		return map[string]string{}
	}
	out := make(map[string]string, len(input))
	for key, value := range input {
		out[key] = value
	}
	return out
}
