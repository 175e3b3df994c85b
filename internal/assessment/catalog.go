package assessment

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Option is one selectable answer.
type Option struct {
	Value int    `yaml:"value" json:"value"`
	Label string `yaml:"label" json:"label"`
}

// Bucket maps every percentage below UpperBound to a fixed summary and
// recommendation list. The last bucket of a scale has no bound.
type Bucket struct {
	UpperBound      *float64 `yaml:"below,omitempty" json:"below,omitempty"`
	Summary         string   `yaml:"summary" json:"summary"`
	Recommendations []string `yaml:"recommendations" json:"recommendations"`
}

func (b Bucket) contains(percentage float64) bool {
	return b.UpperBound == nil || percentage < *b.UpperBound
}

// Definition is an immutable assessment: ordered questions, answer options and
// the threshold table used to interpret the score.
type Definition struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Type        string   `json:"type"`
	Questions   []string `json:"questions"`
	Options     []Option `json:"options"`
	Buckets     []Bucket `json:"-"`
}

func (d *Definition) QuestionCount() int { return len(d.Questions) }

// MaxOptionValue is the highest value any single answer can take.
func (d *Definition) MaxOptionValue() int {
	maxValue := 0
	for _, o := range d.Options {
		maxValue = max(maxValue, o.Value)
	}
	return maxValue
}

func (d *Definition) validOption(value int) bool {
	for _, o := range d.Options {
		if o.Value == value {
			return true
		}
	}
	return false
}

// Classify returns the first bucket, in ascending bound order, whose upper
// bound exceeds percentage.
func (d *Definition) Classify(percentage float64) Bucket {
	for _, b := range d.Buckets {
		if b.contains(percentage) {
			return b
		}
	}
	// Unreachable for a validated definition: the final bucket is unbounded.
	return d.Buckets[len(d.Buckets)-1]
}

func (d *Definition) validate() error {
	if d.ID == "" {
		return fmt.Errorf("assessment without id")
	}
	if len(d.Questions) == 0 {
		return fmt.Errorf("assessment %q has no questions", d.ID)
	}
	if len(d.Options) == 0 {
		return fmt.Errorf("assessment %q has no options", d.ID)
	}
	seen := make(map[int]bool, len(d.Options))
	for _, o := range d.Options {
		if o.Value < 0 {
			return fmt.Errorf("assessment %q: option %q has negative value %d", d.ID, o.Label, o.Value)
		}
		if seen[o.Value] {
			return fmt.Errorf("assessment %q: duplicate option value %d", d.ID, o.Value)
		}
		seen[o.Value] = true
	}
	if d.MaxOptionValue() == 0 {
		return fmt.Errorf("assessment %q: maximum option value must be positive", d.ID)
	}
	if len(d.Buckets) == 0 {
		return fmt.Errorf("assessment %q has no threshold buckets", d.ID)
	}
	prev := 0.0
	for i, b := range d.Buckets {
		last := i == len(d.Buckets)-1
		if b.UpperBound == nil {
			if !last {
				return fmt.Errorf("assessment %q: only the last bucket may be unbounded", d.ID)
			}
			continue
		}
		if last {
			return fmt.Errorf("assessment %q: last bucket must be unbounded", d.ID)
		}
		if *b.UpperBound <= prev || *b.UpperBound > 100 {
			return fmt.Errorf("assessment %q: bucket bound %v out of order or outside (0,100]", d.ID, *b.UpperBound)
		}
		prev = *b.UpperBound
	}
	return nil
}

// catalogFile is the YAML layout. Question sets, option sets and scales are
// declared once and referenced by name from each assessment.
type catalogFile struct {
	QuestionSets map[string][]string `yaml:"question_sets"`
	OptionSets   map[string][]Option `yaml:"option_sets"`
	Scales       map[string][]Bucket `yaml:"scales"`
	Assessments  []struct {
		ID          string `yaml:"id"`
		Title       string `yaml:"title"`
		Description string `yaml:"description"`
		Type        string `yaml:"type"`
		Questions   string `yaml:"questions"`
		Options     string `yaml:"options"`
		Scale       string `yaml:"scale"`
	} `yaml:"assessments"`
}

// Catalog is the ordered set of available assessments.
type Catalog struct {
	ordered []*Definition
	byID    map[string]*Definition
}

// LoadCatalog reads and validates the assessment definitions file.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read assessment file: %w", err)
	}
	return ParseCatalog(data)
}

// ParseCatalog decodes and validates assessment definitions from YAML.
func ParseCatalog(data []byte) (*Catalog, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to unmarshal assessment YAML: %w", err)
	}

	defs := make([]*Definition, 0, len(file.Assessments))
	for _, a := range file.Assessments {
		questions, ok := file.QuestionSets[a.Questions]
		if !ok {
			return nil, fmt.Errorf("assessment %q: unknown question set %q", a.ID, a.Questions)
		}
		options, ok := file.OptionSets[a.Options]
		if !ok {
			return nil, fmt.Errorf("assessment %q: unknown option set %q", a.ID, a.Options)
		}
		buckets, ok := file.Scales[a.Scale]
		if !ok {
			return nil, fmt.Errorf("assessment %q: unknown scale %q", a.ID, a.Scale)
		}
		defs = append(defs, &Definition{
			ID:          a.ID,
			Title:       a.Title,
			Description: a.Description,
			Type:        a.Type,
			Questions:   append([]string(nil), questions...),
			Options:     append([]Option(nil), options...),
			Buckets:     append([]Bucket(nil), buckets...),
		})
	}
	return NewCatalog(defs...)
}

// NewCatalog validates defs and indexes them by id.
func NewCatalog(defs ...*Definition) (*Catalog, error) {
	c := &Catalog{byID: make(map[string]*Definition, len(defs))}
	for _, d := range defs {
		if err := d.validate(); err != nil {
			return nil, err
		}
		if _, dup := c.byID[d.ID]; dup {
			return nil, fmt.Errorf("duplicate assessment id %q", d.ID)
		}
		c.byID[d.ID] = d
		c.ordered = append(c.ordered, d)
	}
	if len(c.ordered) == 0 {
		return nil, fmt.Errorf("assessment catalog is empty")
	}
	return c, nil
}

func (c *Catalog) Get(id string) (*Definition, bool) {
	d, ok := c.byID[id]
	return d, ok
}

func (c *Catalog) All() []*Definition {
	return append([]*Definition(nil), c.ordered...)
}

func (c *Catalog) Len() int { return len(c.ordered) }
