package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/Asgar77/goodminds-app/internal/database/dbtest"
	"github.com/Asgar77/goodminds-app/internal/models"
	"github.com/Asgar77/goodminds-app/internal/store"
	"github.com/Asgar77/goodminds-app/internal/voice"
)

// newTestRepository returns a repository whose clock starts at base and
// advances one minute per call.
func newTestRepository(t *testing.T, base time.Time) *Repository {
	t.Helper()
	db := dbtest.Open(t)
	st := store.New(db, zap.NewNop(), nil)
	t.Cleanup(func() { _ = st.Close() })
	r := New(db, st)
	next := base
	r.now = func() time.Time {
		cur := next
		next = next.Add(time.Minute)
		return cur
	}
	return r
}

var base = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

func TestMoodsAddListDelete(t *testing.T) {
	ctx := context.Background()
	r := newTestRepository(t, base)

	if _, err := r.AddMood(ctx, "u1", "bored"); !errors.Is(err, ErrUnknownMood) {
		t.Fatalf("AddMood unknown err=%v, want ErrUnknownMood", err)
	}

	happy, err := r.AddMood(ctx, "u1", "happy")
	if err != nil {
		t.Fatalf("AddMood: %v", err)
	}
	if happy.Emoji != "😊" || happy.Label != "Happy" {
		t.Fatalf("AddMood = %+v", happy)
	}
	sad, err := r.AddMood(ctx, "u1", "sad")
	if err != nil {
		t.Fatalf("AddMood: %v", err)
	}
	if _, err := r.AddMood(ctx, "u2", "calm"); err != nil {
		t.Fatalf("AddMood other user: %v", err)
	}

	moods, err := r.ListMoods(ctx, "u1")
	if err != nil {
		t.Fatalf("ListMoods: %v", err)
	}
	if len(moods) != 2 || moods[0].ID != sad.ID || moods[1].ID != happy.ID {
		t.Fatalf("ListMoods = %+v, want sad then happy", moods)
	}
	if !moods[1].CreatedAt.Equal(base) {
		t.Fatalf("createdAt = %v, want %v", moods[1].CreatedAt, base)
	}

	if err := r.DeleteMood(ctx, "u1", happy.ID); err != nil {
		t.Fatalf("DeleteMood: %v", err)
	}
	moods, _ = r.ListMoods(ctx, "u1")
	if len(moods) != 1 || moods[0].ID != sad.ID {
		t.Fatalf("after delete = %+v", moods)
	}
	other, _ := r.ListMoods(ctx, "u2")
	if len(other) != 1 {
		t.Fatalf("other user's moods = %d, want 1", len(other))
	}
}

func TestMoodInsight(t *testing.T) {
	mk := func(labels ...string) []models.MoodEntry {
		out := make([]models.MoodEntry, len(labels))
		for i, l := range labels {
			out[i] = models.MoodEntry{Label: l}
		}
		return out
	}
	cases := []struct {
		name    string
		entries []models.MoodEntry
		want    string
	}{
		{"empty", nil, "Log your moods to see insights."},
		{"majority", mk("Sad", "Happy", "Happy"), "Your most frequent mood is Happy. Keep tracking to see more patterns!"},
		{"tie goes to first seen", mk("Calm", "Sad", "Sad", "Calm"), "Your most frequent mood is Calm. Keep tracking to see more patterns!"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := MoodInsight(c.entries); got != c.want {
				t.Fatalf("MoodInsight = %q, want %q", got, c.want)
			}
		})
	}
}

func TestMoodDistributionAndDaysTracked(t *testing.T) {
	day1 := base
	day2 := base.Add(26 * time.Hour)
	entries := []models.MoodEntry{
		{Mood: "sad", CreatedAt: day2},
		{Mood: "happy", CreatedAt: day1},
		{Mood: "happy", CreatedAt: day1.Add(time.Hour)},
	}
	dist := MoodDistribution(entries)
	if len(dist) != 2 || dist[0].Mood != "happy" || dist[0].Count != 2 || dist[1].Mood != "sad" {
		t.Fatalf("MoodDistribution = %+v", dist)
	}
	if got := DaysTracked(entries); got != 2 {
		t.Fatalf("DaysTracked = %d, want 2", got)
	}
}

func TestJournal(t *testing.T) {
	ctx := context.Background()
	r := newTestRepository(t, base)

	if _, err := r.AddJournalEntry(ctx, "u1", "   "); !errors.Is(err, ErrEmptyJournalEntry) {
		t.Fatalf("blank entry err=%v", err)
	}
	first, err := r.AddJournalEntry(ctx, "u1", "exam went fine")
	if err != nil {
		t.Fatalf("AddJournalEntry: %v", err)
	}
	second, _ := r.AddJournalEntry(ctx, "u1", "slept badly")

	entries, err := r.ListJournal(ctx, "u1")
	if err != nil {
		t.Fatalf("ListJournal: %v", err)
	}
	if len(entries) != 2 || entries[0].ID != second.ID || entries[1].Text != "exam went fine" {
		t.Fatalf("ListJournal = %+v", entries)
	}
	if err := r.DeleteJournalEntry(ctx, "u1", first.ID); err != nil {
		t.Fatalf("DeleteJournalEntry: %v", err)
	}
	entries, _ = r.ListJournal(ctx, "u1")
	if len(entries) != 1 || entries[0].ID != second.ID {
		t.Fatalf("after delete = %+v", entries)
	}
}

func TestSessionStartThenEndPatch(t *testing.T) {
	ctx := context.Background()
	r := newTestRepository(t, base)

	id, err := r.StartSession(ctx, "u1", "Exam stress", base)
	if err != nil {
		t.Fatalf("StartSession: %v", err)
	}
	sessions, _ := r.ListSessions(ctx, "u1")
	if len(sessions) != 1 || sessions[0].Status != models.SessionActive || sessions[0].EndTime != nil {
		t.Fatalf("after start = %+v", sessions)
	}

	end := base.Add(125 * time.Second)
	if err := r.EndSession(ctx, "u1", id, voice.EndRecord{
		EndTime: end, Duration: "02:05", Topic: "Exam stress", ConversationLength: 3,
	}); err != nil {
		t.Fatalf("EndSession: %v", err)
	}
	sessions, _ = r.ListSessions(ctx, "u1")
	s := sessions[0]
	if s.ID != id || s.Status != models.SessionCompleted || s.Duration != "02:05" || s.ConversationLength != 3 {
		t.Fatalf("after end = %+v", s)
	}
	if !s.StartTime.Equal(base) || s.EndTime == nil || !s.EndTime.Equal(end) {
		t.Fatalf("times = %v..%v", s.StartTime, s.EndTime)
	}
}

func TestAssessmentResults(t *testing.T) {
	ctx := context.Background()
	r := newTestRepository(t, base)
	st := r.Store()

	write := func(id string, score float64, at time.Time) {
		t.Helper()
		err := st.Write(ctx, store.Doc("u1", CollectionAssessments, id), map[string]any{
			"answers":     []int{1, 2},
			"completedAt": timestamp(at),
			"summary":     "s-" + id,
			"score":       score,
			"type":        "student-focused",
		}, store.WriteOptions{Merge: true})
		if err != nil {
			t.Fatalf("write %s: %v", id, err)
		}
	}
	write("academic-stress", 40, base)
	write("sleep-wellness", 80, base.Add(time.Hour))

	list, err := r.ListAssessmentResults(ctx, "u1")
	if err != nil {
		t.Fatalf("ListAssessmentResults: %v", err)
	}
	if len(list) != 2 || list[0].AssessmentID != "sleep-wellness" || list[1].AssessmentID != "academic-stress" {
		t.Fatalf("list = %+v", list)
	}

	got, err := r.GetAssessmentResult(ctx, "u1", "academic-stress")
	if err != nil || got.Score != 40 || got.Summary != "s-academic-stress" {
		t.Fatalf("GetAssessmentResult = %+v, %v", got, err)
	}
	if _, err := r.GetAssessmentResult(ctx, "u1", "perfectionism"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing result err=%v", err)
	}

	scores, _ := r.AssessmentScores(ctx, "u1")
	if scores["academic-stress"] != 40 || scores["sleep-wellness"] != 80 {
		t.Fatalf("scores = %v", scores)
	}

	timeline, _ := r.GetScoreTimeline(ctx, "u1")
	if len(timeline) != 2 || timeline[0].Value != 40 || timeline[1].Value != 80 {
		t.Fatalf("timeline = %+v", timeline)
	}
}

func TestMoodTimeline(t *testing.T) {
	ctx := context.Background()
	r := newTestRepository(t, base)
	for _, m := range []string{"happy", "calm"} {
		if _, err := r.AddMood(ctx, "u1", m); err != nil {
			t.Fatal(err)
		}
	}
	r.now = func() time.Time { return base.Add(48 * time.Hour) }
	if _, err := r.AddMood(ctx, "u1", "sad"); err != nil {
		t.Fatal(err)
	}

	points, err := r.GetMoodTimeline(ctx, "u1")
	if err != nil {
		t.Fatalf("GetMoodTimeline: %v", err)
	}
	if len(points) != 2 || points[0].Value != 2 || points[1].Value != 1 {
		t.Fatalf("points = %+v", points)
	}
	if !points[0].Date.Equal(base.Truncate(24 * time.Hour)) {
		t.Fatalf("first day = %v", points[0].Date)
	}
}

func TestProfileAndSettings(t *testing.T) {
	ctx := context.Background()
	r := newTestRepository(t, base)

	u, err := r.CreateUser(ctx, "Student@Example.com", "pw", "")
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if err := r.RecordLogin(ctx, u); err != nil {
		t.Fatalf("RecordLogin: %v", err)
	}
	p, err := r.GetProfile(ctx, u.ID)
	if err != nil {
		t.Fatalf("GetProfile: %v", err)
	}
	if p.DisplayName != "student@example.com" || p.Email != "student@example.com" || p.LastLogin == nil {
		t.Fatalf("profile = %+v", p)
	}

	name := "Sam"
	p, err = r.UpdateProfile(ctx, u.ID, ProfileUpdate{DisplayName: &name})
	if err != nil {
		t.Fatalf("UpdateProfile: %v", err)
	}
	if p.DisplayName != "Sam" || p.Email != "student@example.com" {
		t.Fatalf("merged profile = %+v", p)
	}
	stored, _ := r.GetUserByID(ctx, u.ID)
	if stored.DisplayName != "Sam" {
		t.Fatalf("user record display name = %q", stored.DisplayName)
	}

	s, err := r.GetSettings(ctx, u.ID)
	if err != nil || s != DefaultSettings {
		t.Fatalf("default settings = %+v, %v", s, err)
	}
	dark := "dark"
	if _, err := r.UpdateSettings(ctx, u.ID, SettingsUpdate{Theme: &dark}); err != nil {
		t.Fatalf("UpdateSettings: %v", err)
	}
	off := false
	s, err = r.UpdateSettings(ctx, u.ID, SettingsUpdate{Notifications: &off})
	if err != nil {
		t.Fatalf("UpdateSettings: %v", err)
	}
	if s.Theme != "dark" || s.Notifications {
		t.Fatalf("settings = %+v, want dark without notifications", s)
	}
}

func TestUsers(t *testing.T) {
	ctx := context.Background()
	r := newTestRepository(t, base)

	u, err := r.CreateUser(ctx, " a@b.co ", "secret-1", "Ann")
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if _, err := r.CreateUser(ctx, "A@B.CO", "x", ""); !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("duplicate err=%v, want ErrEmailTaken", err)
	}
	got, err := r.GetUserByEmail(ctx, "A@b.co")
	if err != nil || got.ID != u.ID {
		t.Fatalf("GetUserByEmail = %+v, %v", got, err)
	}
	if !got.CheckPassword("secret-1") || got.CheckPassword("secret-2") {
		t.Fatal("CheckPassword mismatch")
	}
	if err := r.UpdateUserPassword(ctx, u.ID, "secret-2"); err != nil {
		t.Fatalf("UpdateUserPassword: %v", err)
	}
	got, _ = r.GetUserByID(ctx, u.ID)
	if !got.CheckPassword("secret-2") {
		t.Fatal("password not updated")
	}

	if _, err := r.AddMood(ctx, u.ID, "calm"); err != nil {
		t.Fatal(err)
	}
	if err := r.DeleteUser(ctx, u.ID); err != nil {
		t.Fatalf("DeleteUser: %v", err)
	}
	if _, err := r.GetUserByID(ctx, u.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("deleted user err=%v", err)
	}
	if moods, _ := r.ListMoods(ctx, u.ID); len(moods) != 0 {
		t.Fatalf("moods after delete = %d", len(moods))
	}
}

func TestReminders(t *testing.T) {
	ctx := context.Background()
	r := newTestRepository(t, base)

	u, _ := r.CreateUser(ctx, "r@x.io", "pw", "")
	if _, err := r.CreateUser(ctx, "other@x.io", "pw", ""); err != nil {
		t.Fatal(err)
	}
	if err := r.UpdateNotificationPreferences(ctx, u.ID, true, "09:00", "UTC"); err != nil {
		t.Fatalf("UpdateNotificationPreferences: %v", err)
	}
	users, err := r.GetUsersForMoodReminder(ctx, "09:00")
	if err != nil || len(users) != 1 || users[0].ID != u.ID {
		t.Fatalf("GetUsersForMoodReminder = %+v, %v", users, err)
	}

	logged, _ := r.HasLoggedMoodToday(ctx, u.ID, base)
	if logged {
		t.Fatal("no mood logged yet")
	}
	if _, err := r.AddMood(ctx, u.ID, "happy"); err != nil {
		t.Fatal(err)
	}
	if logged, _ := r.HasLoggedMoodToday(ctx, u.ID, base.Add(3*time.Hour)); !logged {
		t.Fatal("mood logged today not found")
	}
	if logged, _ := r.HasLoggedMoodToday(ctx, u.ID, base.Add(24*time.Hour)); logged {
		t.Fatal("yesterday's mood counted as today")
	}
}

func TestLoadDashboard(t *testing.T) {
	ctx := context.Background()
	r := newTestRepository(t, base)

	if _, err := r.AddMood(ctx, "u1", "happy"); err != nil { // 09:00
		t.Fatal(err)
	}
	if _, err := r.AddJournalEntry(ctx, "u1", "note"); err != nil { // 09:01
		t.Fatal(err)
	}
	if _, err := r.StartSession(ctx, "u1", "never ended", base); err != nil {
		t.Fatal(err)
	}
	done, _ := r.StartSession(ctx, "u1", "Exam stress", base)
	if err := r.EndSession(ctx, "u1", done, voice.EndRecord{
		EndTime: base.Add(10 * time.Minute), Duration: "01:00", Topic: "Exam stress", ConversationLength: 2,
	}); err != nil {
		t.Fatal(err)
	}

	d, err := r.LoadDashboard(ctx, "u1")
	if err != nil {
		t.Fatalf("LoadDashboard: %v", err)
	}
	if len(d.Activity) != 3 {
		t.Fatalf("activity = %+v, want 3 items", d.Activity)
	}
	wantOrder := []string{"tara", "journal", "mood"}
	for i, want := range wantOrder {
		if d.Activity[i].Type != want {
			t.Fatalf("activity[%d] = %s, want %s", i, d.Activity[i].Type, want)
		}
	}
	if d.Stats != (DashboardStats{DaysTracked: 1, TaraSessions: 1, JournalEntries: 1}) {
		t.Fatalf("stats = %+v", d.Stats)
	}
	if d.Insight != "Your most frequent mood is Happy. Keep tracking to see more patterns!" {
		t.Fatalf("insight = %q", d.Insight)
	}
}
