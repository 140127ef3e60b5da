package workflow

// AggregateStatus derives a delegation's status from the raw statuses of
// its expense items. The result is restricted to the three derived values
// PENDING, APPROVED and REJECTED.
//
// Rules, in order:
//  1. no items at all means nothing has been evaluated yet: PENDING
//  2. a single undecided item blocks the delegation: PENDING
//  3. every item rejected: REJECTED
//  4. no pending, at least one approved: APPROVED (approved wins over a
//     mix with rejected items)
//  5. fallback to PENDING; unreachable while the enum stays closed, kept
//     as a safety net should a fourth value ever slip through
//
// The function is pure and order-independent; callers persist the result
// after every item mutation and surface it on every read so the derived
// status stays the single source of truth.
func AggregateStatus(rawStatuses []string) DelegationStatus {
	if len(rawStatuses) == 0 {
		return DelegationPending
	}

	var pending, approved, rejected int
	for _, raw := range rawStatuses {
		switch NormalizeExpenseStatus(raw) {
		case ExpensePending:
			pending++
		case ExpenseApproved:
			approved++
		case ExpenseRejected:
			rejected++
		}
	}

	if pending > 0 {
		return DelegationPending
	}
	if rejected == len(rawStatuses) {
		return DelegationRejected
	}
	if approved > 0 {
		return DelegationApproved
	}

	return DelegationPending
}
