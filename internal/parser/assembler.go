package parser

import (
	"strings"

	"talentforge/internal/domain"
)

// recordAssembler accumulates classified lines into one challenge.
//
// Lines are buffered per label; a buffer is committed to its field when a
// line with a different (non-FreeText) label arrives. FreeText lines extend
// the open buffer, which is how multi-line option blocks and answers
// survive classification gaps.
type recordAssembler struct {
	question string
	options  map[string]struct{}
	answer   string

	hasQuestion bool
	hasOptions  bool
	hasAnswer   bool

	prevLabel Label
	buffer    strings.Builder
}

func newRecordAssembler() *recordAssembler {
	return &recordAssembler{
		options:   make(map[string]struct{}),
		prevLabel: LabelFreeText,
	}
}

// Feed consumes one classified line. When the line closes a buffer whose
// commit completes the record, the finalized challenge is returned and the
// assembler starts over with the current line as the first line of the
// next record.
func (a *recordAssembler) Feed(label Label, line string) (*domain.Challenge, bool) {
	if label == LabelFreeText {
		// Continuation of the open block; leading free text with no open
		// buffer carries no signal and is dropped.
		if a.prevLabel != LabelFreeText {
			a.buffer.WriteString("\n")
			a.buffer.WriteString(line)
		}
		return nil, false
	}

	var done *domain.Challenge
	if label != a.prevLabel {
		a.commit(a.prevLabel, a.buffer.String())
		if a.complete() {
			done = a.finalize()
		}
		a.buffer.Reset()
		a.buffer.WriteString(line)
		a.prevLabel = label
	} else {
		// Same label again: extend the block (e.g. consecutive option lines).
		a.buffer.WriteString("\n")
		a.buffer.WriteString(line)
	}
	return done, done != nil
}

// Dangling reports whether end-of-input left a partially assembled record.
// Such partials are discarded, never emitted.
func (a *recordAssembler) Dangling() bool {
	return a.hasQuestion || a.hasOptions || a.hasAnswer
}

func (a *recordAssembler) commit(label Label, text string) {
	switch label {
	case LabelQuestion:
		a.question = strings.TrimSpace(text)
		a.hasQuestion = a.question != ""
	case LabelOptions:
		a.commitOptions(text)
	case LabelAnswer:
		a.answer = firstInformativeLine(text)
		a.hasAnswer = a.answer != ""
	}
}

// commitOptions splits an options block on lettered markers, trims the
// fragments, drops blanks and deduplicates. A record needs at least two
// distinct options before the block counts as parsed.
func (a *recordAssembler) commitOptions(text string) {
	for _, fragment := range optionPattern.Split(text, -1) {
		fragment = strings.TrimSpace(fragment)
		if fragment == "" {
			continue
		}
		a.options[fragment] = struct{}{}
	}
	if len(a.options) >= 2 {
		a.hasOptions = true
	}
}

func (a *recordAssembler) complete() bool {
	return a.hasQuestion && a.hasOptions && a.hasAnswer
}

// finalize materializes the accumulated record and resets the field state.
// The open buffer and previous label are left untouched: the line that
// triggered the final commit already belongs to the next record.
func (a *recordAssembler) finalize() *domain.Challenge {
	options := make([]string, 0, len(a.options))
	for option := range a.options {
		options = append(options, option)
	}
	challenge := &domain.Challenge{
		Question: a.question,
		Options:  options,
		Answer:   a.answer,
	}

	a.question = ""
	a.answer = ""
	a.options = make(map[string]struct{})
	a.hasQuestion = false
	a.hasOptions = false
	a.hasAnswer = false

	return challenge
}

// firstInformativeLine reduces a committed answer block to its single
// informative line.
func firstInformativeLine(text string) string {
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			return line
		}
	}
	return ""
}
