package repository

import (
	"context"
	"fmt"

	"github.com/Asgar77/goodminds-app/internal/models"
	"github.com/Asgar77/goodminds-app/internal/store"
)

// ListAssessmentResults returns every saved assessment result of the user,
// most recently completed first.
func (r *Repository) ListAssessmentResults(ctx context.Context, uid string) ([]models.AssessmentRecord, error) {
	records, err := listDecoded(ctx, r, uid, CollectionAssessments, DecodeAssessmentRecord)
	if err != nil {
		return nil, err
	}
	sortByTimeDesc(records, func(rec models.AssessmentRecord) int64 { return rec.CompletedAt.UnixNano() })
	return records, nil
}

// GetAssessmentResult returns the saved result for one assessment.
func (r *Repository) GetAssessmentResult(ctx context.Context, uid, assessmentID string) (models.AssessmentRecord, error) {
	doc, found, err := r.store.Read(ctx, store.Doc(uid, CollectionAssessments, assessmentID))
	if err != nil {
		return models.AssessmentRecord{}, err
	}
	if !found {
		return models.AssessmentRecord{}, fmt.Errorf("assessment result %q: %w", assessmentID, ErrNotFound)
	}
	return DecodeAssessmentRecord(doc)
}

// AssessmentScores maps assessment id to saved score.
func (r *Repository) AssessmentScores(ctx context.Context, uid string) (map[string]float64, error) {
	records, err := listDecoded(ctx, r, uid, CollectionAssessments, DecodeAssessmentRecord)
	if err != nil {
		return nil, err
	}
	scores := make(map[string]float64, len(records))
	for _, rec := range records {
		scores[rec.AssessmentID] = rec.Score
	}
	return scores, nil
}

func DecodeAssessmentRecord(d store.Document) (models.AssessmentRecord, error) {
	var rec models.AssessmentRecord
	if err := d.DataTo(&rec); err != nil {
		return rec, err
	}
	rec.AssessmentID = d.ID
	return rec, nil
}
