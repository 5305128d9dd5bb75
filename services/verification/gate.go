package verification

import (
	"fmt"

	"stowage/models"
)

// GateState enumerates the derived button-gating states. Derived from the
// displayed snapshot on every render, never stored.
type GateState string

const (
	GateLocked          GateState = "locked"
	GateHandoverEnabled GateState = "handover_enabled"
	GateReturnEnabled   GateState = "return_enabled"
	GateTerminal        GateState = "terminal"
)

// Gate tells the panel which action button, if any, may be enabled.
type Gate struct {
	State  GateState `json:"state"`
	Reason string    `json:"reason,omitempty"`
}

// HandoverEnabled reports whether the drop-off action is legal.
func (g Gate) HandoverEnabled() bool {
	return g.State == GateHandoverEnabled
}

// ReturnEnabled reports whether the pick-up action is legal.
func (g Gate) ReturnEnabled() bool {
	return g.State == GateReturnEnabled
}

// Allows reports whether the gate permits the given action.
func (g Gate) Allows(kind ActionKind) bool {
	switch kind {
	case ActionHandover:
		return g.HandoverEnabled()
	case ActionReturn:
		return g.ReturnEnabled()
	}
	return false
}

// DeriveGate computes the action gate for a snapshot. A pending mutation
// locks both actions so attempts against the same reservation stay
// serialized. Handover and return are mutually exclusive by construction.
func DeriveGate(snap models.ReservationSnapshot, pending bool) Gate {
	if pending {
		return Gate{State: GateLocked, Reason: "an action is being recorded"}
	}
	if !snap.Found() {
		return Gate{State: GateLocked, Reason: "no reservation matched this code"}
	}
	if snap.Terminal() {
		return Gate{State: GateTerminal, Reason: fmt.Sprintf("reservation is %s", snap.Status)}
	}
	if snap.Status != models.StatusActive {
		return Gate{State: GateLocked, Reason: "reservation is not active"}
	}
	switch {
	case snap.HandoverAt == nil:
		return Gate{State: GateHandoverEnabled}
	case snap.ReturnedAt == nil:
		return Gate{State: GateReturnEnabled}
	default:
		return Gate{State: GateLocked, Reason: "handover and return already recorded"}
	}
}
