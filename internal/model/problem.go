package model

// Difficulty is the coarse difficulty label of a problem
type Difficulty string

const (
	DifficultyEasy   Difficulty = "Easy"
	DifficultyMedium Difficulty = "Medium"
	DifficultyHard   Difficulty = "Hard"
)

// Valid reports whether d is one of the known labels
func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}

// Example is one worked input/output pair shown with a problem
type Example struct {
	Input       string `json:"input" yaml:"input"`
	Output      string `json:"output" yaml:"output"`
	Explanation string `json:"explanation,omitempty" yaml:"explanation,omitempty"`
}

// Problem is an immutable catalog entry
type Problem struct {
	ID          int        `json:"id" yaml:"id"`
	Title       string     `json:"title" yaml:"title"`
	Difficulty  Difficulty `json:"difficulty" yaml:"difficulty"`
	Description string     `json:"description" yaml:"description"` // HTML fragment
	Examples    []Example  `json:"examples" yaml:"examples"`
	Constraints []string   `json:"constraints" yaml:"constraints"`
	Topics      []string   `json:"topics" yaml:"topics"`
	Companies   []string   `json:"companies" yaml:"companies"`
	HasHint     bool       `json:"hasHint" yaml:"hasHint"`
}

// ProblemSummary is the list view of a problem
type ProblemSummary struct {
	ID         int        `json:"id"`
	Title      string     `json:"title"`
	Difficulty Difficulty `json:"difficulty"`
	Topics     []string   `json:"topics"`
}

// Summary returns the list view of p
func (p *Problem) Summary() ProblemSummary {
	return ProblemSummary{
		ID:         p.ID,
		Title:      p.Title,
		Difficulty: p.Difficulty,
		Topics:     p.Topics,
	}
}

// HasTopic reports whether p is tagged with topic
func (p *Problem) HasTopic(topic string) bool {
	for _, t := range p.Topics {
		if t == topic {
			return true
		}
	}
	return false
}
