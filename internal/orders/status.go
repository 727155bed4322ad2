package orders

type Status string

const (
	StatusPending     Status = "pending"
	StatusApproved    Status = "approved"
	StatusDisapproved Status = "disapproved"
)

// Review transitions are unconditional: any status may be (re)approved or
// (re)disapproved, and repeating a review is a no-op in effect. Nothing
// ever goes back to pending.
var validNext = map[Status]map[Status]bool{
	StatusPending:     {StatusApproved: true, StatusDisapproved: true},
	StatusApproved:    {StatusApproved: true, StatusDisapproved: true},
	StatusDisapproved: {StatusApproved: true, StatusDisapproved: true},
}

func CanTransition(from, to Status) bool {
	return validNext[from][to]
}

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusDisapproved:
		return true
	}
	return false
}
