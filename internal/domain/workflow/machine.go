package workflow

import (
	"fmt"
	"sort"
)

// Delegation lifecycle transition table.
//
// Approve and reject require the current status to be exactly PENDING;
// the older direct-approve pathway that also accepted DRAFT is gone, so
// a draft has to be submitted before a manager can decide on it. Cancel
// is permitted from every status, including the terminal ones, which
// makes repeated cancellation an idempotent override. Edit keeps a draft
// in DRAFT and is only defined there.
var delegationTransitions = map[DelegationStatus]map[Trigger]DelegationStatus{
	DelegationDraft: {
		TriggerSubmit: DelegationPending,
		TriggerEdit:   DelegationDraft,
		TriggerCancel: DelegationCancelled,
	},
	DelegationPending: {
		TriggerApprove: DelegationApproved,
		TriggerReject:  DelegationRejected,
		TriggerCancel:  DelegationCancelled,
	},
	DelegationApproved: {
		TriggerCancel: DelegationCancelled,
	},
	DelegationRejected: {
		TriggerCancel: DelegationCancelled,
	},
	DelegationCancelled: {
		TriggerCancel: DelegationCancelled,
	},
}

// CanFire returns true if the trigger is permitted from the given status
func CanFire(from DelegationStatus, trigger Trigger) bool {
	transitions, ok := delegationTransitions[from]
	if !ok {
		return false
	}
	_, ok = transitions[trigger]
	return ok
}

// Fire executes the trigger against the given status and returns the
// resulting status. It returns ErrInvalidState for an unknown status and
// ErrInvalidTransition when the trigger is not permitted.
func Fire(from DelegationStatus, trigger Trigger) (DelegationStatus, error) {
	transitions, ok := delegationTransitions[from]
	if !ok {
		return from, fmt.Errorf("%w: %s", ErrInvalidState, from)
	}

	to, ok := transitions[trigger]
	if !ok {
		return from, fmt.Errorf("%w: cannot fire %s from %s", ErrInvalidTransition, trigger, from)
	}

	return to, nil
}

// PermittedTriggers returns the triggers that can be fired from the
// given status, in stable order
func PermittedTriggers(from DelegationStatus) []Trigger {
	transitions, ok := delegationTransitions[from]
	if !ok {
		return []Trigger{}
	}

	triggers := make([]Trigger, 0, len(transitions))
	for trigger := range transitions {
		triggers = append(triggers, trigger)
	}
	sort.Slice(triggers, func(i, j int) bool { return triggers[i] < triggers[j] })

	return triggers
}
