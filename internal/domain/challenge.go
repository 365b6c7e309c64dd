package domain

import (
	"sort"
	"strings"
	"time"
)

// Difficulty grades an assessment and its challenges.
type Difficulty string

const (
	DifficultyBeginner     Difficulty = "BEGINNER"
	DifficultyIntermediate Difficulty = "INTERMEDIATE"
	DifficultyAdvanced     Difficulty = "ADVANCED"
)

// DifficultyFromString maps a free-form difficulty value to the enum,
// defaulting to BEGINNER for anything unrecognized.
func DifficultyFromString(s string) Difficulty {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case string(DifficultyIntermediate):
		return DifficultyIntermediate
	case string(DifficultyAdvanced):
		return DifficultyAdvanced
	default:
		return DifficultyBeginner
	}
}

// PromptLabel renders the difficulty the way the completion prompt expects it.
func (d Difficulty) PromptLabel() string {
	return strings.ToLower(string(d))
}

// NormalizeSkill canonicalizes a skill name: trimmed, uppercase.
func NormalizeSkill(skill string) string {
	return strings.ToUpper(strings.TrimSpace(skill))
}

// Challenge is one parsed question/options/answer unit.
type Challenge struct {
	ID           string
	Question     string
	Options      []string
	Answer       string
	Skill        string
	Difficulty   Difficulty
	AssessmentID string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Validate enforces the minimum shape of a materialized challenge.
func (c *Challenge) Validate() error {
	if c.Question == "" {
		return NewInvalidInputError("question is required")
	}
	if len(c.Options) < 2 {
		return NewInvalidInputError("at least two options are required")
	}
	if c.Answer == "" {
		return NewInvalidInputError("answer is required")
	}
	return nil
}

// Key returns a value identity for set semantics: two challenges with the
// same question, answer and option set are the same logical record.
func (c *Challenge) Key() string {
	opts := make([]string, len(c.Options))
	copy(opts, c.Options)
	sort.Strings(opts)
	var b strings.Builder
	b.WriteString(strings.TrimSpace(c.Question))
	b.WriteString("\x1f")
	b.WriteString(strings.TrimSpace(c.Answer))
	for _, o := range opts {
		b.WriteString("\x1f")
		b.WriteString(o)
	}
	return b.String()
}
