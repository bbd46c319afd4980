package xsync

import (
	"github.com/garrettladley/whoopsync/internal/client/whoop"
	"github.com/garrettladley/whoopsync/internal/repository"
)

const millisPerHour = 3_600_000

// Transform flattens a scored cycle into the stored record shape. It returns
// nil for a nil or unscored cycle.
func Transform(cycle *whoop.Cycle, userID string) *repository.Record {
	if cycle == nil || cycle.ScoreState != whoop.ScoreStateScored {
		return nil
	}

	record := &repository.Record{
		UserID:    userID,
		Timestamp: cycle.Start.UTC(),
	}
	if cycle.End != nil {
		record.Timestamp = cycle.End.UTC()
	}

	if cycle.Sleep != nil && cycle.Sleep.TotalSleepDurationMilli != nil && *cycle.Sleep.TotalSleepDurationMilli != 0 {
		hours := float64(*cycle.Sleep.TotalSleepDurationMilli) / millisPerHour
		record.SleepDurationHours = &hours
	}
	if cycle.Recovery != nil {
		record.RecoveryScore = cycle.Recovery.Score
		record.HeartRate = cycle.Recovery.RestingHeartRate
	}
	if cycle.Strain != nil {
		record.StrainScore = cycle.Strain.Score
	}
	if record.StrainScore == nil && cycle.Score != nil {
		record.StrainScore = cycle.Score.Strain
	}

	return record
}
