package models

import "time"

// Expert is a ranked predictor. UserID links the expert profile to the
// account that owns it; positions opened under either id count toward the
// same statistics row.
type Expert struct {
	ID          string `gorm:"type:varchar(36);primaryKey"`
	UserID      string `gorm:"type:varchar(36);not null;uniqueIndex"`
	DisplayName string `gorm:"type:varchar(100);not null"`

	CreatedAt time.Time `gorm:"type:timestamptz;autoCreateTime"`
	UpdatedAt time.Time `gorm:"type:timestamptz;autoUpdateTime"`
}

func (Expert) TableName() string {
	return "experts"
}
