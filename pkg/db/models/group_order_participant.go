package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/merchlane/merchportal-backend/pkg/enums"
)

// GroupOrderParticipant tracks an invited member and their response.
type GroupOrderParticipant struct {
	ID        uuid.UUID               `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID   uuid.UUID               `gorm:"column:order_id;type:uuid;not null;index;uniqueIndex:group_order_participants_order_user_key"`
	UserID    uuid.UUID               `gorm:"column:user_id;type:uuid;not null;uniqueIndex:group_order_participants_order_user_key"`
	UserName  string                  `gorm:"column:user_name;not null"`
	Status    enums.ParticipantStatus `gorm:"column:status;type:participant_status;not null;default:'INVITED'"`
	InvitedAt time.Time               `gorm:"column:invited_at;not null"`
	JoinedAt  *time.Time              `gorm:"column:joined_at"`
	CreatedAt time.Time               `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time               `gorm:"column:updated_at;autoUpdateTime"`
}
