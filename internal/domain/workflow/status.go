package workflow

import "strings"

// ExpenseStatus is the canonical per-item status
type ExpenseStatus string

const (
	ExpensePending  ExpenseStatus = "PENDING"
	ExpenseApproved ExpenseStatus = "APPROVED"
	ExpenseRejected ExpenseStatus = "REJECTED"
)

// DelegationStatus is the delegation lifecycle status. PENDING, APPROVED
// and REJECTED are derived from the expense items once a delegation has
// been submitted; CANCELLED is a manager override independent of items.
type DelegationStatus string

const (
	DelegationDraft     DelegationStatus = "DRAFT"
	DelegationPending   DelegationStatus = "PENDING"
	DelegationApproved  DelegationStatus = "APPROVED"
	DelegationRejected  DelegationStatus = "REJECTED"
	DelegationCancelled DelegationStatus = "CANCELLED"
)

var validDelegationStatuses = map[DelegationStatus]bool{
	DelegationDraft:     true,
	DelegationPending:   true,
	DelegationApproved:  true,
	DelegationRejected:  true,
	DelegationCancelled: true,
}

// IsValid returns true if the status is a known delegation status
func (s DelegationStatus) IsValid() bool {
	return validDelegationStatuses[s]
}

// IsTerminal returns true if no further transition other than the
// universal cancel is defined from the status
func (s DelegationStatus) IsTerminal() bool {
	return s == DelegationApproved || s == DelegationRejected || s == DelegationCancelled
}

// String returns the string representation of the status
func (s DelegationStatus) String() string {
	return string(s)
}

// String returns the string representation of the status
func (s ExpenseStatus) String() string {
	return string(s)
}

// Synonyms still present in rows written by earlier versions of the
// system. Matching is done after upper-casing the input.
var legacyStatusSynonyms = map[string]ExpenseStatus{
	"ACCEPTED":     ExpenseApproved,
	"ZATWIERDZONY": ExpenseApproved,
	"ODRZUCONY":    ExpenseRejected,
}

// NormalizeExpenseStatus maps a stored status value to the canonical
// enum. It is total: empty, unknown and legacy values all map to a
// canonical status, PENDING being the default. Case-insensitive.
func NormalizeExpenseStatus(raw string) ExpenseStatus {
	upper := strings.ToUpper(strings.TrimSpace(raw))

	switch ExpenseStatus(upper) {
	case ExpensePending, ExpenseApproved, ExpenseRejected:
		return ExpenseStatus(upper)
	}

	if canonical, ok := legacyStatusSynonyms[upper]; ok {
		return canonical
	}

	return ExpensePending
}
