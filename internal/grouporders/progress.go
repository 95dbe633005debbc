package grouporders

import (
	"math"

	"github.com/merchlane/merchportal-backend/pkg/db/models"
	"github.com/merchlane/merchportal-backend/pkg/enums"
)

// ProgressPercent reports the share of participants who confirmed, rounded to
// the nearest whole percent and clamped to [0,100]. An order with no
// participants reports zero.
func ProgressPercent(participants []models.GroupOrderParticipant) int {
	if len(participants) == 0 {
		return 0
	}

	confirmed := 0
	for _, p := range participants {
		if p.Status == enums.ParticipantStatusConfirmed {
			confirmed++
		}
	}

	percent := int(math.Round(float64(confirmed) / float64(len(participants)) * 100))
	if percent < 0 {
		return 0
	}
	if percent > 100 {
		return 100
	}
	return percent
}
