package assessment

import (
	"strings"
	"testing"
)

func TestLoadCatalogShippedDefinitions(t *testing.T) {
	c, err := LoadCatalog("../../config/assessments.yaml")
	if err != nil {
		t.Fatalf("LoadCatalog: %v", err)
	}
	if c.Len() != 6 {
		t.Fatalf("catalog has %d assessments, want 6", c.Len())
	}
	def, ok := c.Get("academic-stress")
	if !ok {
		t.Fatalf("academic-stress missing")
	}
	if def.QuestionCount() != 10 || def.MaxOptionValue() != 4 || len(def.Buckets) != 4 {
		t.Fatalf("academic-stress: %d questions, max %d, %d buckets", def.QuestionCount(), def.MaxOptionValue(), len(def.Buckets))
	}
	if !strings.HasPrefix(def.Classify(60).Summary, "You're experiencing moderate academic stress") {
		t.Fatalf("unexpected summary %q", def.Classify(60).Summary)
	}
	if mood, _ := c.Get("mood-wellness"); len(mood.Buckets) != 3 {
		t.Fatalf("mood-wellness has %d buckets, want 3", len(mood.Buckets))
	}
	if got := c.All()[0].ID; got != "academic-stress" {
		t.Fatalf("first assessment %q", got)
	}
}

func TestParseCatalogRejectsInvalidTables(t *testing.T) {
	const header = `
question_sets: {q: ["one", "two"]}
option_sets: {o: [{value: 0, label: No}, {value: 1, label: Yes}]}
`
	cases := []struct {
		name  string
		scale string
		want  string
	}{
		{"descending bounds", `[{below: 50, summary: a}, {below: 25, summary: b}, {summary: c}]`, "out of order"},
		{"bound above 100", `[{below: 120, summary: a}, {summary: b}]`, "outside"},
		{"bounded last bucket", `[{below: 50, summary: a}]`, "must be unbounded"},
		{"unbounded middle bucket", `[{summary: a}, {below: 50, summary: b}, {summary: c}]`, "only the last"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			doc := header + "scales: {s: " + c.scale + "}\n" +
				"assessments: [{id: x, questions: q, options: o, scale: s}]\n"
			_, err := ParseCatalog([]byte(doc))
			if err == nil || !strings.Contains(err.Error(), c.want) {
				t.Fatalf("err=%v, want mention of %q", err, c.want)
			}
		})
	}
}

func TestParseCatalogUnknownReference(t *testing.T) {
	doc := `
question_sets: {q: ["one"]}
option_sets: {o: [{value: 1, label: Yes}]}
scales: {s: [{summary: all}]}
assessments: [{id: x, questions: missing, options: o, scale: s}]
`
	if _, err := ParseCatalog([]byte(doc)); err == nil || !strings.Contains(err.Error(), "unknown question set") {
		t.Fatalf("err=%v", err)
	}
}

func TestComputeProgress(t *testing.T) {
	c, err := LoadCatalog("../../config/assessments.yaml")
	if err != nil {
		t.Fatal(err)
	}
	p := ComputeProgress(c, map[string]float64{"academic-stress": 40, "sleep-wellness": 60, "retired": 10})
	if p.Completed != 2 || p.Total != 6 || p.AverageScore != 50 {
		t.Fatalf("progress=%+v", p)
	}
	if empty := ComputeProgress(c, nil); empty.Completed != 0 || empty.Percentage != 0 || empty.AverageScore != 0 {
		t.Fatalf("empty progress=%+v", empty)
	}
}
