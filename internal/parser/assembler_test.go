package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func feedLines(t *testing.T, a *recordAssembler, lines [][2]interface{}) {
	t.Helper()
	for _, pair := range lines {
		_, done := a.Feed(pair[0].(Label), pair[1].(string))
		assert.False(t, done)
	}
}

func TestAssemblerBuildsRecordAcrossLabels(t *testing.T) {
	a := newRecordAssembler()

	feedLines(t, a, [][2]interface{}{
		{LabelQuestion, "1. Which layer does TCP live in?"},
		{LabelOptions, "a. Transport"},
		{LabelOptions, "b. Network"},
		{LabelOptions, "c. Session"},
		{LabelAnswer, "Answer: a. Transport"},
	})

	challenge, done := a.Feed(LabelEnd, endSentinel)
	require.True(t, done)
	assert.Equal(t, "1. Which layer does TCP live in?", challenge.Question)
	assert.Equal(t, "Answer: a. Transport", challenge.Answer)
	assert.ElementsMatch(t, []string{"Transport", "Network", "Session"}, challenge.Options)
	assert.False(t, a.Dangling())
}

func TestAssemblerSplitsSingleLineOptions(t *testing.T) {
	a := newRecordAssembler()

	feedLines(t, a, [][2]interface{}{
		{LabelQuestion, "1. Which of these are HTTP methods?"},
		{LabelOptions, "A. GET   B. POST  C. PUT  D. PATCH"},
	})

	challenge, done := a.Feed(LabelAnswer, "Answer: A. GET")
	assert.False(t, done)
	assert.Nil(t, challenge)

	challenge, done = a.Feed(LabelEnd, endSentinel)
	require.True(t, done)
	assert.ElementsMatch(t, []string{"GET", "POST", "PUT", "PATCH"}, challenge.Options)
}

func TestAssemblerDropsLeadingFreeText(t *testing.T) {
	a := newRecordAssembler()

	_, done := a.Feed(LabelFreeText, "Here are some questions for you")
	assert.False(t, done)
	assert.False(t, a.Dangling())
}

func TestAssemblerAnswerReducedToFirstInformativeLine(t *testing.T) {
	a := newRecordAssembler()

	feedLines(t, a, [][2]interface{}{
		{LabelQuestion, "1. What does len return for a nil map?"},
		{LabelOptions, "a. 0  b. panic"},
		{LabelAnswer, "Answer: a. 0"},
		{LabelFreeText, "because nil maps read as empty"},
	})

	challenge, done := a.Feed(LabelEnd, endSentinel)
	require.True(t, done)
	assert.Equal(t, "Answer: a. 0", challenge.Answer)
}

func TestAssemblerSingleOptionNeverCompletes(t *testing.T) {
	a := newRecordAssembler()

	feedLines(t, a, [][2]interface{}{
		{LabelQuestion, "1. Is one option enough?"},
		{LabelOptions, "a. No"},
		{LabelAnswer, "Answer: a. No"},
	})

	challenge, done := a.Feed(LabelEnd, endSentinel)
	assert.False(t, done)
	assert.Nil(t, challenge)
	assert.True(t, a.Dangling())
}

func TestAssemblerDeduplicatesRepeatedOptions(t *testing.T) {
	a := newRecordAssembler()

	feedLines(t, a, [][2]interface{}{
		{LabelQuestion, "1. Which color is the sky?"},
		{LabelOptions, "a. Blue"},
		{LabelOptions, "b. Blue"},
		{LabelOptions, "c. Green"},
		{LabelAnswer, "Answer: a. Blue"},
	})

	challenge, done := a.Feed(LabelEnd, endSentinel)
	require.True(t, done)
	assert.ElementsMatch(t, []string{"Blue", "Green"}, challenge.Options)
}

func TestAssemblerMissingAnswerLeavesDanglingPartial(t *testing.T) {
	a := newRecordAssembler()

	feedLines(t, a, [][2]interface{}{
		{LabelQuestion, "1. Which verb replaces a resource?"},
		{LabelOptions, "a. PUT  b. POST"},
	})

	challenge, done := a.Feed(LabelEnd, endSentinel)
	assert.False(t, done)
	assert.Nil(t, challenge)
	assert.True(t, a.Dangling())
}

func TestAssemblerStartsNextRecordOnQuestionAfterAnswer(t *testing.T) {
	a := newRecordAssembler()

	feedLines(t, a, [][2]interface{}{
		{LabelQuestion, "1. First question?"},
		{LabelOptions, "a. One  b. Two"},
		{LabelAnswer, "Answer: a. One"},
	})

	challenge, done := a.Feed(LabelQuestion, "2. Second question?")
	require.True(t, done)
	assert.Equal(t, "1. First question?", challenge.Question)

	// The triggering line opens the next record; losing it here would
	// drop every even-numbered question.
	feedLines(t, a, [][2]interface{}{
		{LabelOptions, "a. Three  b. Four"},
		{LabelAnswer, "Answer: b. Four"},
	})
	challenge, done = a.Feed(LabelEnd, endSentinel)
	require.True(t, done)
	assert.Equal(t, "2. Second question?", challenge.Question)
}
