package questionnaire

import (
	_ "embed"
	"errors"
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed questions.yaml
var defaultQuestions []byte

var ErrUnknownRole = errors.New("no questionnaire for role")

type Question struct {
	ID       string   `yaml:"id" json:"id"`
	Prompt   string   `yaml:"prompt" json:"prompt"`
	Type     string   `yaml:"type" json:"type"`
	Options  []string `yaml:"options,omitempty" json:"options,omitempty"`
	Required bool     `yaml:"required" json:"required"`
}

type Set struct {
	Role      string     `yaml:"role" json:"role"`
	Questions []Question `yaml:"questions" json:"questions"`
}

type file struct {
	Version string `yaml:"version"`
	Sets    []Set  `yaml:"sets"`
}

// Catalog holds one question set per role.
type Catalog struct {
	sets map[string]Set
}

// Default parses the embedded question sets.
func Default() (*Catalog, error) {
	return Parse(defaultQuestions)
}

func Parse(data []byte) (*Catalog, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse questionnaire: %w", err)
	}

	c := &Catalog{sets: make(map[string]Set, len(f.Sets))}
	for _, s := range f.Sets {
		if s.Role == "" {
			return nil, errors.New("questionnaire set without role")
		}
		seen := make(map[string]bool, len(s.Questions))
		for _, q := range s.Questions {
			if q.ID == "" {
				return nil, fmt.Errorf("questionnaire %s: question without id", s.Role)
			}
			if seen[q.ID] {
				return nil, fmt.Errorf("questionnaire %s: duplicate question %q", s.Role, q.ID)
			}
			if q.Type == "choice" && len(q.Options) == 0 {
				return nil, fmt.Errorf("questionnaire %s: choice question %q has no options", s.Role, q.ID)
			}
			seen[q.ID] = true
		}
		c.sets[s.Role] = s
	}
	return c, nil
}

func (c *Catalog) ForRole(role string) (Set, error) {
	s, ok := c.sets[role]
	if !ok {
		return Set{}, fmt.Errorf("%w %q", ErrUnknownRole, role)
	}
	return s, nil
}

// ValidationError lists the questions whose answers are missing or not allowed.
type ValidationError struct {
	Missing []string
	Invalid []string
	Unknown []string
}

func (e *ValidationError) Error() string {
	var parts []string
	if len(e.Missing) > 0 {
		parts = append(parts, "missing required answers: "+strings.Join(e.Missing, ", "))
	}
	if len(e.Invalid) > 0 {
		parts = append(parts, "invalid choices: "+strings.Join(e.Invalid, ", "))
	}
	if len(e.Unknown) > 0 {
		parts = append(parts, "unknown questions: "+strings.Join(e.Unknown, ", "))
	}
	return strings.Join(parts, "; ")
}

// Validate checks answers against the set. Blank answers count as missing.
func (s Set) Validate(answers map[string]string) error {
	verr := &ValidationError{}
	known := make(map[string]bool, len(s.Questions))

	for _, q := range s.Questions {
		known[q.ID] = true
		answer := strings.TrimSpace(answers[q.ID])
		if answer == "" {
			if q.Required {
				verr.Missing = append(verr.Missing, q.ID)
			}
			continue
		}
		if q.Type == "choice" && !contains(q.Options, answer) {
			verr.Invalid = append(verr.Invalid, q.ID)
		}
	}

	for id := range answers {
		if !known[id] {
			verr.Unknown = append(verr.Unknown, id)
		}
	}
	sort.Strings(verr.Unknown)

	if len(verr.Missing) > 0 || len(verr.Invalid) > 0 || len(verr.Unknown) > 0 {
		return verr
	}
	return nil
}

func contains(options []string, v string) bool {
	for _, o := range options {
		if o == v {
			return true
		}
	}
	return false
}
