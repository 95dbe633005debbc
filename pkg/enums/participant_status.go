package enums

import "fmt"

// ParticipantStatus tracks an invited member inside a group order.
type ParticipantStatus string

const (
	ParticipantStatusInvited   ParticipantStatus = "INVITED"
	ParticipantStatusConfirmed ParticipantStatus = "CONFIRMED"
	ParticipantStatusDeclined  ParticipantStatus = "DECLINED"
)

var validParticipantStatuses = []ParticipantStatus{
	ParticipantStatusInvited,
	ParticipantStatusConfirmed,
	ParticipantStatusDeclined,
}

// String implements fmt.Stringer.
func (p ParticipantStatus) String() string {
	return string(p)
}

// IsValid reports whether the value is a known ParticipantStatus.
func (p ParticipantStatus) IsValid() bool {
	for _, candidate := range validParticipantStatuses {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParseParticipantStatus converts raw input into a ParticipantStatus.
func ParseParticipantStatus(value string) (ParticipantStatus, error) {
	for _, candidate := range validParticipantStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid participant status %q", value)
}
