// Package chore defines the assignment and completion lifecycles.
package chore

// Status is the lifecycle state of a chore assignment.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress" // reserved; no transition produces it yet
	StatusCompleted  Status = "completed"
	StatusApproved   Status = "approved"
	StatusRejected   Status = "rejected"
)

// Completion review states. A completion starts pending and is reviewed
// exactly once.
const (
	ReviewPending  = "pending"
	ReviewApproved = "approved"
	ReviewRejected = "rejected"
)

// CanTransition reports whether an assignment may move from one status to
// another. Legal moves: pending|in_progress -> completed (submission),
// completed -> approved|rejected (review), and rejected -> completed (the
// chore is redone and submitted again). Approved is terminal.
func CanTransition(from, to Status) bool {
	switch from {
	case StatusPending, StatusInProgress, StatusRejected:
		return to == StatusCompleted
	case StatusCompleted:
		return to == StatusApproved || to == StatusRejected
	default:
		return false
	}
}

// ReviewStatus maps a review verdict to the resulting status, shared by the
// completion and its parent assignment.
func ReviewStatus(approved bool) Status {
	if approved {
		return StatusApproved
	}
	return StatusRejected
}
