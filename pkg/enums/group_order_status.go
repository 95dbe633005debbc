package enums

import "fmt"

// GroupOrderStatus tracks the lifecycle of a department group order.
type GroupOrderStatus string

const (
	GroupOrderStatusPending    GroupOrderStatus = "PENDING"
	GroupOrderStatusInProgress GroupOrderStatus = "IN_PROGRESS"
	GroupOrderStatusCompleted  GroupOrderStatus = "COMPLETED"
	GroupOrderStatusCancelled  GroupOrderStatus = "CANCELLED"
)

var validGroupOrderStatuses = []GroupOrderStatus{
	GroupOrderStatusPending,
	GroupOrderStatusInProgress,
	GroupOrderStatusCompleted,
	GroupOrderStatusCancelled,
}

var groupOrderTransitions = map[GroupOrderStatus][]GroupOrderStatus{
	GroupOrderStatusPending:    {GroupOrderStatusInProgress, GroupOrderStatusCancelled},
	GroupOrderStatusInProgress: {GroupOrderStatusCompleted},
	GroupOrderStatusCompleted:  {},
	GroupOrderStatusCancelled:  {},
}

// String implements fmt.Stringer.
func (g GroupOrderStatus) String() string {
	return string(g)
}

// IsValid reports whether the value is a known GroupOrderStatus.
func (g GroupOrderStatus) IsValid() bool {
	for _, candidate := range validGroupOrderStatuses {
		if candidate == g {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transitions are allowed.
func (g GroupOrderStatus) IsTerminal() bool {
	return len(groupOrderTransitions[g]) == 0 && g.IsValid()
}

// CanTransitionTo reports whether moving to the target status is allowed.
func (g GroupOrderStatus) CanTransitionTo(target GroupOrderStatus) bool {
	for _, candidate := range groupOrderTransitions[g] {
		if candidate == target {
			return true
		}
	}
	return false
}

// ParseGroupOrderStatus converts raw input into a GroupOrderStatus.
func ParseGroupOrderStatus(value string) (GroupOrderStatus, error) {
	for _, candidate := range validGroupOrderStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid group order status %q", value)
}
