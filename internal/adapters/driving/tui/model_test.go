package tui

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/membox-labs/membox-cli/internal/core/domain"
)

type stubAnswerer struct {
	answer *domain.Answer
	err    error
	lastQ  string
}

func (s *stubAnswerer) Ask(_ context.Context, question string, _ []string, _ int) (*domain.Answer, error) {
	s.lastQ = question
	if s.err != nil {
		return nil, s.err
	}
	return s.answer, nil
}

func sized(m Model) Model {
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	return updated.(Model)
}

func TestViewBeforeFirstWindowSize(t *testing.T) {
	m := New(&stubAnswerer{})
	assert.Equal(t, "Loading...", m.View())
}

func TestEnterAsksTypedQuestion(t *testing.T) {
	stub := &stubAnswerer{answer: &domain.Answer{Text: "deploys run on merge", Found: true}}
	m := sized(New(stub))
	m.input.SetValue("  how do deploys work?  ")

	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = updated.(Model)

	require.NotNil(t, cmd)
	assert.True(t, m.asking)

	// The command carries the ask; running it yields the answer message.
	msg := cmd()
	answer, ok := msg.(answerMsg)
	require.True(t, ok)
	assert.Equal(t, "how do deploys work?", stub.lastQ)
	assert.Equal(t, "deploys run on merge", answer.answer.Text)
}

func TestEnterWithEmptyInputDoesNothing(t *testing.T) {
	m := sized(New(&stubAnswerer{}))

	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = updated.(Model)

	assert.Nil(t, cmd)
	assert.False(t, m.asking)
}

func TestAnswerMsgRendersAnswerAndSources(t *testing.T) {
	m := sized(New(&stubAnswerer{}))
	m.asking = true

	answer := &domain.Answer{
		Text:    "the cache is warmed on boot",
		Sources: []string{"Slack: Channel #infra (Sender: dana)"},
		Found:   true,
	}
	updated, _ := m.Update(answerMsg{answer: answer})
	m = updated.(Model)

	assert.False(t, m.asking)
	assert.Contains(t, m.renderAnswer(), "the cache is warmed on boot")
	assert.Contains(t, m.renderAnswer(), "Sources:")
	assert.Contains(t, m.status, "1 sources")
	assert.Empty(t, m.input.Value())
}

func TestAnswerMsgWithoutContext(t *testing.T) {
	m := sized(New(&stubAnswerer{}))

	updated, _ := m.Update(answerMsg{answer: &domain.Answer{Text: domain.NoInformationMessage, Found: false}})
	m = updated.(Model)

	assert.Equal(t, "No relevant context found.", m.status)
	assert.NotContains(t, m.renderAnswer(), "Sources:")
}

func TestAnswerErrMsgSetsStatus(t *testing.T) {
	m := sized(New(&stubAnswerer{}))
	m.asking = true

	updated, _ := m.Update(answerErrMsg{err: errors.New("model overloaded")})
	m = updated.(Model)

	assert.False(t, m.asking)
	assert.Contains(t, m.status, "model overloaded")
}

func TestAskCommandDeliversError(t *testing.T) {
	stub := &stubAnswerer{err: errors.New("embedding quota exceeded")}

	msg := ask(stub, "anything")()

	errMsg, ok := msg.(answerErrMsg)
	require.True(t, ok)
	assert.Contains(t, errMsg.err.Error(), "quota")
}

func TestEscQuits(t *testing.T) {
	m := sized(New(&stubAnswerer{}))

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})

	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestBareQQuitsOnlyWithEmptyInput(t *testing.T) {
	m := sized(New(&stubAnswerer{}))

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())

	m.input.SetValue("what is q")
	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	m = updated.(Model)
	assert.Contains(t, m.input.Value(), "q")
}
