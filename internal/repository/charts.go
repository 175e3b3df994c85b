package repository

import (
	"context"
	"time"
)

type TimelineDataPoint struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
}

// ScoreSeries is the saved score of one assessment, for charting.
type ScoreSeries struct {
	AssessmentID string              `json:"assessmentId"`
	Points       []TimelineDataPoint `json:"points"`
}

// GetScoreTimeline returns saved assessment scores ordered by completion time.
// Only the latest result of each assessment is kept, so every assessment
// contributes at most one point.
func (r *Repository) GetScoreTimeline(ctx context.Context, uid string) ([]TimelineDataPoint, error) {
	records, err := r.ListAssessmentResults(ctx, uid)
	if err != nil {
		return nil, err
	}
	points := make([]TimelineDataPoint, 0, len(records))
	for i := len(records) - 1; i >= 0; i-- {
		points = append(points, TimelineDataPoint{Date: records[i].CompletedAt, Value: records[i].Score})
	}
	return points, nil
}

// GetMoodTimeline counts mood entries per UTC day, oldest day first. Only days
// with at least one entry appear.
func (r *Repository) GetMoodTimeline(ctx context.Context, uid string) ([]TimelineDataPoint, error) {
	moods, err := r.ListMoods(ctx, uid)
	if err != nil {
		return nil, err
	}
	var points []TimelineDataPoint
	// ListMoods is newest first; walk backwards for ascending days.
	for i := len(moods) - 1; i >= 0; i-- {
		day := moods[i].CreatedAt.UTC().Truncate(24 * time.Hour)
		if n := len(points); n > 0 && points[n-1].Date.Equal(day) {
			points[n-1].Value++
			continue
		}
		points = append(points, TimelineDataPoint{Date: day, Value: 1})
	}
	return points, nil
}
