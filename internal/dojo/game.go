// Package dojo implements the training-game engine: a scenario quiz with
// score, streak bonus and lives.
package dojo

import (
	"errors"
	"sync"

	"github.com/scamshield/scamshield/internal/core"
)

const (
	// StartingLives is how many wrong answers end the game.
	StartingLives = 3
	basePoints    = 10
	streakBonus   = 5
	// streakBonusAfter is the consecutive-correct count a player must
	// already hold for the bonus to apply, so the bonus starts on the
	// third correct answer in a row.
	streakBonusAfter = 1
)

// Phase is the game lifecycle state.
type Phase string

const (
	PhasePlaying  Phase = "playing"
	PhaseFinished Phase = "finished"
)

// ErrGameOver is returned when an answer is submitted after the game ended.
var ErrGameOver = errors.New("game is already finished")

// Outcome reports the effect of a single answer.
type Outcome struct {
	Correct bool   `json:"correct"`
	Points  int    `json:"points"`
	Score   int    `json:"score"`
	Streak  int    `json:"streak"`
	Lives   int    `json:"lives"`
	Reason  string `json:"reason"`
	// Finished is set when this answer ended the game, either by
	// exhausting lives or by completing every scenario.
	Finished bool `json:"finished"`
}

// Game is one play-through of a scenario batch. Safe for concurrent use.
type Game struct {
	mu        sync.Mutex
	scenarios []core.DojoScenario
	index     int
	score     int
	streak    int
	lives     int
	phase     Phase
}

// NewGame starts a game over the given scenarios.
func NewGame(scenarios []core.DojoScenario) (*Game, error) {
	if len(scenarios) == 0 {
		return nil, errors.New("game requires at least one scenario")
	}
	return &Game{
		scenarios: scenarios,
		lives:     StartingLives,
		phase:     PhasePlaying,
	}, nil
}

// Current returns the scenario awaiting an answer, or false when the game
// is over.
func (g *Game) Current() (core.DojoScenario, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.phase != PhasePlaying {
		return core.DojoScenario{}, false
	}
	return g.scenarios[g.index], true
}

// Answer scores the player's verdict on the current scenario and advances
// the game. A correct answer earns base points plus a bonus once the
// streak is established; a wrong answer costs a life and resets the
// streak. The game ends when lives reach zero or the batch is exhausted,
// checked against the updated counters.
func (g *Game) Answer(saysScam bool) (*Outcome, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.phase != PhasePlaying {
		return nil, ErrGameOver
	}

	scenario := g.scenarios[g.index]
	correct := saysScam == scenario.IsScam

	points := 0
	if correct {
		points = basePoints
		if g.streak > streakBonusAfter {
			points += streakBonus
		}
		g.score += points
		g.streak++
	} else {
		g.lives--
		g.streak = 0
	}

	g.index++
	if g.lives <= 0 || g.index >= len(g.scenarios) {
		g.phase = PhaseFinished
	}

	return &Outcome{
		Correct:  correct,
		Points:   points,
		Score:    g.score,
		Streak:   g.streak,
		Lives:    g.lives,
		Reason:   scenario.Reason,
		Finished: g.phase == PhaseFinished,
	}, nil
}

// Score returns the accumulated score.
func (g *Game) Score() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.score
}

// Lives returns the remaining lives.
func (g *Game) Lives() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.lives
}

// Phase returns the lifecycle state.
func (g *Game) State() Phase {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.phase
}
