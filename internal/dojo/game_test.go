package dojo

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scamshield/scamshield/internal/core"
)

func scenarios(n int) []core.DojoScenario {
	out := make([]core.DojoScenario, n)
	for i := range out {
		out[i] = core.DojoScenario{
			ID:     strconv.Itoa(i + 1),
			Sender: "AX-TEST",
			Text:   "scenario text",
			IsScam: i%2 == 0,
			Reason: "because",
		}
	}
	return out
}

func TestNewGame_RequiresScenarios(t *testing.T) {
	_, err := NewGame(nil)
	assert.Error(t, err)
}

func TestGame_CorrectAnswerScores(t *testing.T) {
	game, err := NewGame(scenarios(5))
	require.NoError(t, err)

	out, err := game.Answer(true) // scenario 0 is a scam
	require.NoError(t, err)
	assert.True(t, out.Correct)
	assert.Equal(t, 10, out.Points)
	assert.Equal(t, 10, out.Score)
	assert.Equal(t, 1, out.Streak)
	assert.Equal(t, StartingLives, out.Lives)
	assert.False(t, out.Finished)
}

func TestGame_StreakBonusStartsOnThirdCorrect(t *testing.T) {
	game, err := NewGame(scenarios(5))
	require.NoError(t, err)

	first, err := game.Answer(true) // correct
	require.NoError(t, err)
	assert.Equal(t, 10, first.Points)

	second, err := game.Answer(false) // correct
	require.NoError(t, err)
	assert.Equal(t, 10, second.Points)

	third, err := game.Answer(true) // correct, streak bonus kicks in
	require.NoError(t, err)
	assert.Equal(t, 15, third.Points)
	assert.Equal(t, 35, third.Score)
	assert.Equal(t, 3, third.Streak)
}

func TestGame_WrongAnswerCostsLifeAndResetsStreak(t *testing.T) {
	game, err := NewGame(scenarios(5))
	require.NoError(t, err)

	_, err = game.Answer(true) // correct
	require.NoError(t, err)

	out, err := game.Answer(true) // scenario 1 is safe, wrong
	require.NoError(t, err)
	assert.False(t, out.Correct)
	assert.Equal(t, 0, out.Points)
	assert.Equal(t, 10, out.Score)
	assert.Equal(t, 0, out.Streak)
	assert.Equal(t, StartingLives-1, out.Lives)
	assert.Equal(t, "because", out.Reason)
}

func TestGame_OverWhenLivesExhausted(t *testing.T) {
	game, err := NewGame(scenarios(10))
	require.NoError(t, err)

	var out *Outcome
	for i := 0; i < StartingLives; i++ {
		// scenario i%2==0 is a scam, answer the opposite
		out, err = game.Answer(i%2 != 0)
		require.NoError(t, err)
	}

	assert.Equal(t, 0, out.Lives)
	assert.True(t, out.Finished)
	assert.Equal(t, PhaseFinished, game.State())

	_, err = game.Answer(true)
	assert.ErrorIs(t, err, ErrGameOver)
}

func TestGame_CompletesBatch(t *testing.T) {
	game, err := NewGame(scenarios(3))
	require.NoError(t, err)

	answers := []bool{true, false, true} // all correct
	var out *Outcome
	for _, a := range answers {
		out, err = game.Answer(a)
		require.NoError(t, err)
	}

	assert.True(t, out.Finished)
	assert.Equal(t, StartingLives, out.Lives)
	assert.Equal(t, PhaseFinished, game.State())

	_, ok := game.Current()
	assert.False(t, ok)
}

func TestGame_Current(t *testing.T) {
	game, err := NewGame(scenarios(2))
	require.NoError(t, err)

	current, ok := game.Current()
	require.True(t, ok)
	assert.Equal(t, "1", current.ID)

	_, err = game.Answer(true)
	require.NoError(t, err)

	current, ok = game.Current()
	require.True(t, ok)
	assert.Equal(t, "2", current.ID)
}
