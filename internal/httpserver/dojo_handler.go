package httpserver

import (
	"errors"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/scamshield/scamshield/internal/dojo"
)

// dojoSessions holds in-flight quiz games keyed by session ID. Finished
// games are removed on their final answer.
type dojoSessions struct {
	mu    sync.Mutex
	games map[string]*dojo.Game
}

func newDojoSessions() *dojoSessions {
	return &dojoSessions{games: make(map[string]*dojo.Game)}
}

func (d *dojoSessions) put(id string, game *dojo.Game) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.games[id] = game
}

func (d *dojoSessions) get(id string) (*dojo.Game, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	game, ok := d.games[id]
	return game, ok
}

func (d *dojoSessions) remove(id string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.games, id)
}

// dojoScenarioView is a scenario as shown to the player, with the verdict
// and explanation withheld until answered.
type dojoScenarioView struct {
	ID         string `json:"id"`
	Sender     string `json:"sender"`
	Text       string `json:"text"`
	Difficulty string `json:"difficulty"`
}

type dojoAnswerRequest struct {
	SaysScam *bool `json:"says_scam" binding:"required"`
}

// handleDojoStart creates a quiz session over a freshly generated batch.
func (s *Server) handleDojoStart(c *gin.Context) {
	scenarios := s.deps.Service.DojoScenarios(c.Request.Context(), language(c.Query("lang")))

	game, err := dojo.NewGame(scenarios)
	if err != nil {
		s.writeError(c, err)
		return
	}

	id := uuid.New().String()
	s.dojo.put(id, game)

	views := make([]dojoScenarioView, len(scenarios))
	for i, sc := range scenarios {
		views[i] = dojoScenarioView{
			ID:         sc.ID,
			Sender:     sc.Sender,
			Text:       sc.Text,
			Difficulty: string(sc.Difficulty),
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"session_id": id,
		"lives":      dojo.StartingLives,
		"scenarios":  views,
	})
}

// handleDojoAnswer scores one verdict against the session's current
// scenario.
func (s *Server) handleDojoAnswer(c *gin.Context) {
	id := c.Param("id")
	game, ok := s.dojo.get(id)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown dojo session"})
		return
	}

	var req dojoAnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}

	outcome, err := game.Answer(*req.SaysScam)
	if err != nil {
		if errors.Is(err, dojo.ErrGameOver) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		s.writeError(c, err)
		return
	}

	if outcome.Finished {
		s.dojo.remove(id)
	}

	c.JSON(http.StatusOK, outcome)
}
