package sqlstore

import "github.com/goliatone/go-neo/core"

var (
	_ core.StateStore = (*TriggerStateStore)(nil)
	_ core.StateStore = (*CachedTriggerStateStore)(nil)
	_ core.EventSink  = (*EventJournal)(nil)
)
