package achievement

// Action is a lifecycle operation attempted on an achievement.
type Action string

const (
	ActionSubmit    Action = "submit"
	ActionApprove   Action = "approve"
	ActionReject    Action = "reject"
	ActionRecommend Action = "recommend"
	ActionResubmit  Action = "resubmit"
)

// transitions is the explicit lifecycle table: current status x action -> next
// status. Absent entries are invalid transitions. Approving an approved
// achievement is a recorded no-op, not an error (see Service.Approve).
var transitions = map[Status]map[Action]Status{
	StatusDraft: {
		ActionSubmit: StatusPending,
	},
	StatusPending: {
		ActionApprove: StatusApproved,
		ActionReject:  StatusRejected,
	},
	StatusApproved: {
		ActionApprove:   StatusApproved, // idempotent no-op
		ActionRecommend: StatusApproved,
		ActionResubmit:  StatusPending, // as a new record
	},
	StatusRejected: {
		ActionResubmit: StatusPending, // as a new record
	},
}

// nextStatus resolves the transition table. ok is false for an invalid
// current-state/action pair.
func nextStatus(current Status, action Action) (Status, bool) {
	row, ok := transitions[current]
	if !ok {
		return "", false
	}
	next, ok := row[action]
	return next, ok
}

// CanTransition reports whether the action is valid from the current status.
func CanTransition(current Status, action Action) bool {
	_, ok := nextStatus(current, action)
	return ok
}
