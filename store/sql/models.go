package sqlstore

import (
	"time"

	"github.com/uptrace/bun"
)

type triggerStateRecord struct {
	bun.BaseModel `bun:"table:neo_trigger_state,alias:nts"`

	ID        string    `bun:"id,pk"`
	TriggerID string    `bun:"trigger_id,notnull"`
	Name      string    `bun:"name,notnull"`
	Value     string    `bun:"value,notnull"`
	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

type callbackEventRecord struct {
	bun.BaseModel `bun:"table:neo_callback_events,alias:nce"`

	ID         string            `bun:"id,pk"`
	TriggerID  string            `bun:"trigger_id,notnull"`
	EventType  string            `bun:"event_type,notnull"`
	Mode       string            `bun:"mode,notnull"`
	TestMode   bool              `bun:"test_mode,notnull"`
	Timestamp  string            `bun:"event_timestamp"`
	Data       map[string]any    `bun:"data,type:jsonb,notnull"`
	Headers    map[string]string `bun:"headers,type:jsonb,notnull"`
	ReceivedAt time.Time         `bun:"received_at,nullzero,notnull,default:current_timestamp"`
	CreatedAt  time.Time         `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}
