package repository

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/Asgar77/goodminds-app/internal/models"
)

// Dashboard is the overview shown after sign-in.
type Dashboard struct {
	Activity []models.Activity `json:"activity"`
	Stats    DashboardStats    `json:"stats"`
	Insight  string            `json:"insight"`
}

type DashboardStats struct {
	DaysTracked    int `json:"daysTracked"`
	Assessments    int `json:"assessments"`
	TaraSessions   int `json:"taraSessions"`
	JournalEntries int `json:"journalEntries"`
}

// LoadDashboard reads the four activity collections concurrently and merges
// them into one feed, newest first.
func (r *Repository) LoadDashboard(ctx context.Context, uid string) (Dashboard, error) {
	var (
		moods       []models.MoodEntry
		assessments []models.AssessmentRecord
		sessions    []models.VoiceSessionRecord
		journal     []models.JournalEntry
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		moods, err = r.ListMoods(gctx, uid)
		return err
	})
	g.Go(func() (err error) {
		assessments, err = r.ListAssessmentResults(gctx, uid)
		return err
	})
	g.Go(func() (err error) {
		sessions, err = r.ListSessions(gctx, uid)
		return err
	})
	g.Go(func() (err error) {
		journal, err = r.ListJournal(gctx, uid)
		return err
	})
	if err := g.Wait(); err != nil {
		return Dashboard{}, err
	}

	feed := make([]models.Activity, 0, len(moods)+len(assessments)+len(sessions)+len(journal))
	for _, m := range moods {
		feed = append(feed, models.Activity{Type: "mood", Timestamp: m.CreatedAt, Label: m.Label, Emoji: m.Emoji})
	}
	for _, a := range assessments {
		feed = append(feed, models.Activity{Type: "assessment", Timestamp: a.CompletedAt, Label: a.AssessmentID, Summary: a.Summary})
	}
	completed := 0
	for _, s := range sessions {
		// Sessions without an end have not finished and are not listed.
		if s.EndTime == nil {
			continue
		}
		completed++
		feed = append(feed, models.Activity{Type: "tara", Timestamp: *s.EndTime, Topic: s.Topic, Duration: s.Duration})
	}
	for _, j := range journal {
		feed = append(feed, models.Activity{Type: "journal", Timestamp: j.CreatedAt, Text: j.Text})
	}
	sortByTimeDesc(feed, func(a models.Activity) int64 { return a.Timestamp.UnixNano() })

	return Dashboard{
		Activity: feed,
		Stats: DashboardStats{
			DaysTracked:    DaysTracked(moods),
			Assessments:    len(assessments),
			TaraSessions:   completed,
			JournalEntries: len(journal),
		},
		Insight: MoodInsight(moods),
	}, nil
}
