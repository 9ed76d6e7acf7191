// Package catalog holds the fixed, ordered problem list served to tests.
package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"codepractice/internal/model"
)

//go:embed problems.yaml
var defaultProblems []byte

// Catalog is read-only after construction and safe for concurrent use.
type Catalog struct {
	problems []model.Problem
	byID     map[int]int // id -> position
}

// Default loads the embedded catalog
func Default() (*Catalog, error) {
	return Parse(defaultProblems)
}

// MustDefault is Default for process start; a broken embedded file is a build defect
func MustDefault() *Catalog {
	c, err := Default()
	if err != nil {
		panic(fmt.Sprintf("catalog: embedded problems invalid: %v", err))
	}
	return c
}

// Parse decodes and validates a YAML problem list
func Parse(data []byte) (*Catalog, error) {
	var problems []model.Problem
	if err := yaml.Unmarshal(data, &problems); err != nil {
		return nil, fmt.Errorf("catalog: decode: %w", err)
	}
	return New(problems)
}

// New builds a catalog from problems in serving order
func New(problems []model.Problem) (*Catalog, error) {
	if len(problems) == 0 {
		return nil, errors.New("catalog: no problems")
	}
	c := &Catalog{
		problems: make([]model.Problem, len(problems)),
		byID:     make(map[int]int, len(problems)),
	}
	for i, p := range problems {
		if strings.TrimSpace(p.Title) == "" {
			return nil, fmt.Errorf("catalog: problem at position %d has no title", i)
		}
		if !p.Difficulty.Valid() {
			return nil, fmt.Errorf("catalog: problem %d has invalid difficulty %q", p.ID, p.Difficulty)
		}
		if _, dup := c.byID[p.ID]; dup {
			return nil, fmt.Errorf("catalog: duplicate problem id %d", p.ID)
		}
		c.byID[p.ID] = i
		c.problems[i] = p
	}
	return c, nil
}

// Len returns the number of problems
func (c *Catalog) Len() int {
	return len(c.problems)
}

// Get returns the problem with id, or nil
func (c *Catalog) Get(id int) *model.Problem {
	i, ok := c.byID[id]
	if !ok {
		return nil
	}
	return c.copyAt(i)
}

// ByIndex returns the problem at position i, or nil when i is out of range
func (c *Catalog) ByIndex(i int) *model.Problem {
	if i < 0 || i >= len(c.problems) {
		return nil
	}
	return c.copyAt(i)
}

// All returns every problem in serving order
func (c *Catalog) All() []model.Problem {
	out := make([]model.Problem, 0, len(c.problems))
	for i := range c.problems {
		out = append(out, *c.copyAt(i))
	}
	return out
}

// ByDifficulty returns problems with difficulty d, in serving order
func (c *Catalog) ByDifficulty(d model.Difficulty) []model.Problem {
	var out []model.Problem
	for i := range c.problems {
		if c.problems[i].Difficulty == d {
			out = append(out, *c.copyAt(i))
		}
	}
	return out
}

// ByTopic returns problems tagged with topic, in serving order
func (c *Catalog) ByTopic(topic string) []model.Problem {
	var out []model.Problem
	for i := range c.problems {
		if c.problems[i].HasTopic(topic) {
			out = append(out, *c.copyAt(i))
		}
	}
	return out
}

// copyAt hands out a deep copy so callers cannot mutate the catalog
func (c *Catalog) copyAt(i int) *model.Problem {
	p := c.problems[i]
	p.Examples = append([]model.Example(nil), p.Examples...)
	p.Constraints = append([]string(nil), p.Constraints...)
	p.Topics = append([]string(nil), p.Topics...)
	p.Companies = append([]string(nil), p.Companies...)
	return &p
}
