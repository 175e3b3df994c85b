package assessment

// Progress summarizes how much of the catalog a user has completed.
type Progress struct {
	Completed  int     `json:"completed"`
	Total      int     `json:"total"`
	Percentage float64 `json:"percentage"`
	// AverageScore is the mean saved score, zero when nothing is saved.
	AverageScore float64 `json:"averageScore"`
}

// ComputeProgress counts saved scores (keyed by assessment id) that belong to
// the catalog. Results for assessments no longer in the catalog are ignored.
func ComputeProgress(c *Catalog, scores map[string]float64) Progress {
	p := Progress{Total: c.Len()}
	sum := 0.0
	for _, d := range c.ordered {
		score, ok := scores[d.ID]
		if !ok {
			continue
		}
		p.Completed++
		sum += score
	}
	if p.Total > 0 {
		p.Percentage = 100 * float64(p.Completed) / float64(p.Total)
	}
	if p.Completed > 0 {
		p.AverageScore = sum / float64(p.Completed)
	}
	return p
}
