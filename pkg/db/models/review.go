package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/merchlane/merchportal-backend/pkg/enums"
)

// Review is a moderated product review. UserName is snapshotted at submission.
type Review struct {
	ID          uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID      uuid.UUID          `gorm:"column:user_id;type:uuid;not null;index"`
	UserName    string             `gorm:"column:user_name;not null"`
	ProductID   uuid.UUID          `gorm:"column:product_id;type:uuid;not null;index"`
	Rating      int                `gorm:"column:rating;not null"`
	Comment     *string            `gorm:"column:comment"`
	Status      enums.ReviewStatus `gorm:"column:status;type:review_status;not null;default:'PENDING'"`
	ModeratedAt *time.Time         `gorm:"column:moderated_at"`
	ModeratedBy *uuid.UUID         `gorm:"column:moderated_by;type:uuid"`
	CreatedAt   time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}
