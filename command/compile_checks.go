package command

import gocmd "github.com/goliatone/go-command"

var (
	_ gocmd.Commander[ActivateTriggerMessage]   = (*ActivateTriggerCommand)(nil)
	_ gocmd.Commander[DeactivateTriggerMessage] = (*DeactivateTriggerCommand)(nil)
)
