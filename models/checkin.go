package models

import "time"

// DateLayout is the wire and storage format of a check-in date.
const DateLayout = "2006-01-02"

// CheckinMetrics holds the optional daily metrics. A nil pointer means the
// user did not report the value, which is distinct from reporting zero.
type CheckinMetrics struct {
	SleepHours   *float64 `gorm:"type:decimal(4,2)" json:"sleepHours" validate:"omitnil,gte=0,lte=24"`
	SleepQuality *int     `json:"sleepQuality" validate:"omitnil,gte=1,lte=10"`
	SleepNotes   *string  `gorm:"type:text" json:"sleepNotes" validate:"omitnil,max=500"`

	EnergyMorning   *int `json:"energyMorning" validate:"omitnil,gte=1,lte=10"`
	EnergyAfternoon *int `json:"energyAfternoon" validate:"omitnil,gte=1,lte=10"`
	EnergyEvening   *int `json:"energyEvening" validate:"omitnil,gte=1,lte=10"`

	Mood        *string `gorm:"size:50" json:"mood" validate:"omitnil,max=50"`
	StressLevel *int    `json:"stressLevel" validate:"omitnil,gte=1,lte=10"`

	ExerciseType            *string `gorm:"size:100" json:"exerciseType" validate:"omitnil,max=100"`
	ExerciseDurationMinutes *int    `json:"exerciseDurationMinutes" validate:"omitnil,gte=0"`
	ExerciseIntensity       *int    `json:"exerciseIntensity" validate:"omitnil,gte=1,lte=10"`

	CaffeineMg                 *int  `json:"caffeineMg" validate:"omitnil,gte=0"`
	WaterGlasses               *int  `json:"waterGlasses" validate:"omitnil,gte=0"`
	AteBreakfast               *bool `json:"ateBreakfast"`
	ScreenTimeBeforeBedMinutes *int  `json:"screenTimeBeforeBedMinutes" validate:"omitnil,gte=0"`

	DeepWorkHours      *float64 `gorm:"type:decimal(4,2)" json:"deepWorkHours" validate:"omitnil,gte=0,lte=24"`
	ProductivityRating *int     `json:"productivityRating" validate:"omitnil,gte=1,lte=10"`
	ProductivityNotes  *string  `gorm:"type:text" json:"productivityNotes" validate:"omitnil,max=1000"`
}

// CheckinRecord stores one user's metrics for one calendar date.
// (user_id, date) is unique: a second submission for the same date updates the row.
type CheckinRecord struct {
	ID             uint      `gorm:"primaryKey"`
	UserID         uint      `gorm:"not null;uniqueIndex:idx_checkin_user_date,priority:1"`
	Date           time.Time `gorm:"type:date;not null;uniqueIndex:idx_checkin_user_date,priority:2;index"`
	CheckinMetrics `gorm:"embedded"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// TableName keeps the historical table name.
func (CheckinRecord) TableName() string {
	return "manual_checkins"
}

// CheckinInput is the request body for creating or updating a check-in.
type CheckinInput struct {
	Date string `json:"date"`
	CheckinMetrics
}

// CheckinResponse is the wire representation of a CheckinRecord.
type CheckinResponse struct {
	ID     uint   `json:"id"`
	UserID uint   `json:"userId"`
	Date   string `json:"date"`
	CheckinMetrics
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Response converts r into its wire representation.
func (r CheckinRecord) Response() CheckinResponse {
	return CheckinResponse{
		ID:             r.ID,
		UserID:         r.UserID,
		Date:           r.Date.Format(DateLayout),
		CheckinMetrics: r.CheckinMetrics,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
}

// CheckinResponses converts a slice of records, never returning nil.
func CheckinResponses(records []CheckinRecord) []CheckinResponse {
	out := make([]CheckinResponse, 0, len(records))
	for _, r := range records {
		out = append(out, r.Response())
	}
	return out
}
