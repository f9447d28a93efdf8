package models

import (
	"time"

	"gorm.io/datatypes"
)

// RawHealthData stores payloads imported from external sources (wearables, exports).
// Only the schema is maintained here; ingestion lives elsewhere.
type RawHealthData struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	UserID    uint           `gorm:"index;not null" json:"userId"`
	Date      time.Time      `gorm:"type:date;not null;index:idx_raw_date_source,priority:1" json:"date"`
	Source    string         `gorm:"size:50;not null;index:idx_raw_date_source,priority:2" json:"source"`
	Payload   datatypes.JSON `gorm:"type:json" json:"payload"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
}

// TableName keeps the historical table name.
func (RawHealthData) TableName() string {
	return "raw_health_data"
}

// All lists every model managed by AutoMigrate, parents first.
func All() []interface{} {
	return []interface{}{&User{}, &CheckinRecord{}, &RawHealthData{}}
}
