package whoop

import (
	"strconv"
	"time"
)

type UserProfile struct {
	UserID    int64  `json:"user_id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

func (p UserProfile) ID() string {
	if p.UserID == 0 {
		return ""
	}
	return strconv.FormatInt(p.UserID, 10)
}

type Cycle struct {
	ID             int64          `json:"id"`
	UserID         int64          `json:"user_id"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	Start          time.Time      `json:"start"`
	End            *time.Time     `json:"end"`
	TimezoneOffset string         `json:"timezone_offset"`
	ScoreState     ScoreState     `json:"score_state"`
	Score          *CycleScore    `json:"score,omitempty"`
	Strain         *CycleStrain   `json:"strain,omitempty"`
	Recovery       *CycleRecovery `json:"recovery,omitempty"`
	Sleep          *CycleSleep    `json:"sleep,omitempty"`
}

func (c Cycle) IsCompleted() bool {
	return c.ScoreState == ScoreStateScored && c.End != nil
}

type CycleScore struct {
	Strain           *float64 `json:"strain"`
	Kilojoule        float64  `json:"kilojoule"`
	AverageHeartRate int      `json:"average_heart_rate"`
	MaxHeartRate     int      `json:"max_heart_rate"`
}

type CycleStrain struct {
	Score *float64 `json:"score"`
}

type CycleRecovery struct {
	Score            *float64 `json:"score"`
	RestingHeartRate *float64 `json:"resting_heart_rate"`
	HRVRmssdMilli    *float64 `json:"hrv_rmssd_milli"`
}

type CycleSleep struct {
	TotalSleepDurationMilli *int64 `json:"total_sleep_duration_milli"`
}

type ScoreState string

const (
	ScoreStateScored       ScoreState = "SCORED"
	ScoreStatePendingScore ScoreState = "PENDING_SCORE"
	ScoreStateUnscorable   ScoreState = "UNSCORABLE"
)
