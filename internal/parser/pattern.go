package parser

import "regexp"

// Label classifies one line of completion text.
type Label int

const (
	// LabelFreeText is the fallback: continuation of whatever block is open.
	LabelFreeText Label = iota
	// LabelQuestion marks a numbered question line.
	LabelQuestion
	// LabelOptions marks a line carrying at least one lettered option marker.
	LabelOptions
	// LabelAnswer marks an answer declaration line.
	LabelAnswer
	// LabelEnd marks the end-of-stream sentinel.
	LabelEnd
)

func (l Label) String() string {
	switch l {
	case LabelQuestion:
		return "QUESTION"
	case LabelOptions:
		return "OPTIONS"
	case LabelAnswer:
		return "ANSWER"
	case LabelEnd:
		return "END"
	default:
		return "TEXT"
	}
}

// endSentinel terminates the line stream. The EOT control character cannot
// occur in completion text, so the sentinel never collides with content.
const endSentinel = "\x04"

var (
	questionPattern = regexp.MustCompile(`^\d+.*\?`)
	answerPattern   = regexp.MustCompile(`(?i)answer:\s*[A-Za-z]`)
	// An option marker may sit anywhere in the line: completions put
	// several options on one line, separated by spaces or tabs.
	optionPattern = regexp.MustCompile(`[A-Za-z][.)]`)
)

// Classify labels a single trimmed, non-blank line. Rules are evaluated in
// order and the first match wins, so a line that reads as both a question
// and an answer is a question.
func Classify(line string) Label {
	if line == endSentinel {
		return LabelEnd
	}
	if questionPattern.MatchString(line) {
		return LabelQuestion
	}
	if answerPattern.MatchString(line) {
		return LabelAnswer
	}
	if optionPattern.MatchString(line) {
		return LabelOptions
	}
	return LabelFreeText
}
