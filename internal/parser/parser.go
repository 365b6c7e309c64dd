package parser

import (
	"strings"

	"talentforge/internal/domain"
)

// TextToRecords converts raw completion text into structured challenges.
//
// Parsing never fails: malformed input yields fewer records, worst case
// none. The result has set semantics: value-equal duplicates collapse and
// ordering carries no meaning, since the source ordering of completion
// text is not a reliable signal.
type TextToRecords struct{}

// NewTextToRecords creates a parser instance.
func NewTextToRecords() *TextToRecords {
	return &TextToRecords{}
}

// Parse extracts every complete question/options/answer record from text.
// An end-of-stream sentinel is appended before iterating so that a trailing
// record is committed by the sentinel while a trailing partial is detected
// and discarded rather than silently lost.
func (p *TextToRecords) Parse(text string) []domain.Challenge {
	lines := strings.Split(text, "\n")
	lines = append(lines, endSentinel)

	assembler := newRecordAssembler()
	seen := make(map[string]struct{})
	var challenges []domain.Challenge

	for _, raw := range lines {
		line := raw
		if line != endSentinel {
			line = strings.TrimSpace(raw)
		}
		if line == "" {
			// Whitespace-only lines are skipped entirely: never
			// classified, never counted.
			continue
		}
		challenge, ok := assembler.Feed(Classify(line), line)
		if !ok {
			continue
		}
		if err := challenge.Validate(); err != nil {
			continue
		}
		key := challenge.Key()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		challenges = append(challenges, *challenge)
	}

	return challenges
}
