package workflow

import (
	"errors"
	"testing"
)

func TestFire_AllowedTransitions(t *testing.T) {
	tests := []struct {
		from    DelegationStatus
		trigger Trigger
		want    DelegationStatus
	}{
		{DelegationDraft, TriggerSubmit, DelegationPending},
		{DelegationDraft, TriggerEdit, DelegationDraft},
		{DelegationDraft, TriggerCancel, DelegationCancelled},
		{DelegationPending, TriggerApprove, DelegationApproved},
		{DelegationPending, TriggerReject, DelegationRejected},
		{DelegationPending, TriggerCancel, DelegationCancelled},
		{DelegationApproved, TriggerCancel, DelegationCancelled},
		{DelegationRejected, TriggerCancel, DelegationCancelled},
		{DelegationCancelled, TriggerCancel, DelegationCancelled},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"_"+string(tt.trigger), func(t *testing.T) {
			got, err := Fire(tt.from, tt.trigger)
			if err != nil {
				t.Fatalf("Fire(%v, %v) error = %v", tt.from, tt.trigger, err)
			}
			if got != tt.want {
				t.Errorf("Fire(%v, %v) = %v, want %v", tt.from, tt.trigger, got, tt.want)
			}
		})
	}
}

func TestFire_RejectedTransitions(t *testing.T) {
	tests := []struct {
		from    DelegationStatus
		trigger Trigger
	}{
		{DelegationDraft, TriggerApprove},
		{DelegationDraft, TriggerReject},
		{DelegationPending, TriggerSubmit},
		{DelegationPending, TriggerEdit},
		{DelegationApproved, TriggerApprove},
		{DelegationApproved, TriggerReject},
		{DelegationApproved, TriggerSubmit},
		{DelegationRejected, TriggerApprove},
		{DelegationCancelled, TriggerSubmit},
		{DelegationCancelled, TriggerApprove},
		{DelegationCancelled, TriggerEdit},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"_"+string(tt.trigger), func(t *testing.T) {
			if _, err := Fire(tt.from, tt.trigger); !errors.Is(err, ErrInvalidTransition) {
				t.Errorf("Fire(%v, %v) error = %v, want ErrInvalidTransition", tt.from, tt.trigger, err)
			}
			if CanFire(tt.from, tt.trigger) {
				t.Errorf("CanFire(%v, %v) = true, want false", tt.from, tt.trigger)
			}
		})
	}
}

func TestFire_UnknownState(t *testing.T) {
	if _, err := Fire(DelegationStatus("ARCHIVED"), TriggerCancel); !errors.Is(err, ErrInvalidState) {
		t.Errorf("Fire from unknown state error = %v, want ErrInvalidState", err)
	}
}

func TestPermittedTriggers(t *testing.T) {
	tests := []struct {
		from DelegationStatus
		want []Trigger
	}{
		{DelegationDraft, []Trigger{TriggerCancel, TriggerEdit, TriggerSubmit}},
		{DelegationPending, []Trigger{TriggerApprove, TriggerCancel, TriggerReject}},
		{DelegationApproved, []Trigger{TriggerCancel}},
		{DelegationCancelled, []Trigger{TriggerCancel}},
		{DelegationStatus("ARCHIVED"), []Trigger{}},
	}

	for _, tt := range tests {
		t.Run(string(tt.from), func(t *testing.T) {
			got := PermittedTriggers(tt.from)
			if len(got) != len(tt.want) {
				t.Fatalf("PermittedTriggers(%v) = %v, want %v", tt.from, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("PermittedTriggers(%v)[%d] = %v, want %v", tt.from, i, got[i], tt.want[i])
				}
			}
		})
	}
}
