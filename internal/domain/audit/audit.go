// Package audit defines the append-only audit trail contract for engine
// mutations. The PostgreSQL implementation lives in infrastructure/storage.
package audit

import (
	"context"

	"livecart/internal/core/id"
)

// Action identifies the type of audited operation.
type Action string

const (
	ActionCreate     Action = "create"
	ActionUpdate     Action = "update"
	ActionDelete     Action = "delete"
	ActionAdjust     Action = "adjust"
	ActionClamp      Action = "clamp"
	ActionBuild      Action = "build"
	ActionDesync     Action = "desync"
	ActionPostPay    Action = "post_payment"
	ActionVoidPay    Action = "void_payment"
	ActionShipUpdate Action = "shipment_update"
)

// Recorder records audit entries. Implementations must be safe to call
// inside transactions; a recording failure must not fail the mutation.
type Recorder interface {
	Record(ctx context.Context, entityType string, entityID id.ID, action Action, changes map[string]any)
}

// Nop discards all audit entries. Used in tests and when auditing is disabled.
type Nop struct{}

func (Nop) Record(context.Context, string, id.ID, Action, map[string]any) {}
