package enums

import "fmt"

// DistributionStatus tracks the lifecycle of a distribution item.
type DistributionStatus string

const (
	DistributionStatusPending     DistributionStatus = "PENDING"
	DistributionStatusScheduled   DistributionStatus = "SCHEDULED"
	DistributionStatusDistributed DistributionStatus = "DISTRIBUTED"
	DistributionStatusCancelled   DistributionStatus = "CANCELLED"
)

var validDistributionStatuses = []DistributionStatus{
	DistributionStatusPending,
	DistributionStatusScheduled,
	DistributionStatusDistributed,
	DistributionStatusCancelled,
}

// Transitions are monotonic. Cancellation is only possible before scheduling.
var distributionTransitions = map[DistributionStatus][]DistributionStatus{
	DistributionStatusPending:     {DistributionStatusScheduled, DistributionStatusCancelled},
	DistributionStatusScheduled:   {DistributionStatusDistributed},
	DistributionStatusDistributed: {},
	DistributionStatusCancelled:   {},
}

// String implements fmt.Stringer.
func (d DistributionStatus) String() string {
	return string(d)
}

// IsValid reports whether the value is a known DistributionStatus.
func (d DistributionStatus) IsValid() bool {
	for _, candidate := range validDistributionStatuses {
		if candidate == d {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transitions are allowed.
func (d DistributionStatus) IsTerminal() bool {
	return len(distributionTransitions[d]) == 0 && d.IsValid()
}

// CanTransitionTo reports whether moving to the target status is allowed.
func (d DistributionStatus) CanTransitionTo(target DistributionStatus) bool {
	for _, candidate := range distributionTransitions[d] {
		if candidate == target {
			return true
		}
	}
	return false
}

// ParseDistributionStatus converts raw input into a DistributionStatus.
func ParseDistributionStatus(value string) (DistributionStatus, error) {
	for _, candidate := range validDistributionStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid distribution status %q", value)
}
