// Package server hosts games over websockets. Each connection gets its
// own engine goroutine: inputs come in as JSON messages, rendered state
// goes out once per engine frame, and the final score lands in the
// shared high-score store.
package server

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"blockfall/engine"
	"blockfall/highscore"
)

var validActions = map[engine.Action]bool{
	engine.MoveLeft:    true,
	engine.MoveRight:   true,
	engine.MoveDown:    true,
	engine.DropDown:    true,
	engine.RotateRight: true,
	engine.RotateLeft:  true,
	engine.SwapHold:    true,
	engine.TogglePause: true,
}

type inputMessage struct {
	Action string `json:"action"`
}

// stateFrame is one rendered frame for the client. The active piece and
// its ghost are painted into the stack so clients stay dumb.
type stateFrame struct {
	Type      string     `json:"type"`
	Stack     [][]string `json:"stack"`
	Ghost     [][2]int   `json:"ghost,omitempty"`
	Next      string     `json:"next"`
	Hold      string     `json:"hold,omitempty"`
	CanHold   bool       `json:"canHold"`
	Clearing  []int      `json:"clearing,omitempty"`
	Score     int        `json:"score"`
	Lines     int        `json:"lines"`
	Level     int        `json:"level"`
	State     string     `json:"state"`
	HighScore int        `json:"highScore"`
}

type gameOverMessage struct {
	Type  string `json:"type"`
	Score int    `json:"score"`
	Best  int    `json:"best"`
}

type Server struct {
	store    *highscore.Store
	log      zerolog.Logger
	upgrader websocket.Upgrader

	mu     sync.Mutex
	active map[string]bool
}

func New(store *highscore.Store, log zerolog.Logger) *Server {
	return &Server{
		store: store,
		log:   log,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},
		active: make(map[string]bool),
	}
}

// Handler returns the routed HTTP surface.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/healthz", s.handleHealth).Methods("GET")
	r.HandleFunc("/api/highscore", s.handleHighScore).Methods("GET")
	r.HandleFunc("/play", s.handlePlay)
	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleHighScore(w http.ResponseWriter, _ *http.Request) {
	best, err := s.store.Best()
	if err != nil {
		s.log.Error().Err(err).Msg("reading high score")
		http.Error(w, "high score unavailable", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]int{"best": best})
}

func (s *Server) handlePlay(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Error().Err(err).Msg("websocket upgrade")
		return
	}
	defer conn.Close()

	id := uuid.New().String()
	s.track(id, true)
	defer s.track(id, false)
	log := s.log.With().Str("game", id).Logger()
	log.Info().Msg("game started")

	game := engine.NewGame()
	closed := make(chan struct{})

	go s.readInputs(conn, game, closed, log)
	go game.Start()

	for {
		select {
		case snap := <-game.UpdateCh:
			if err := conn.WriteJSON(frameFrom(snap)); err != nil {
				log.Debug().Err(err).Msg("client gone")
				game.Stop()
				return
			}
		case score := <-game.GameOverCh:
			best, err := s.store.Submit(score)
			if err != nil {
				log.Error().Err(err).Msg("submitting score")
				best = score
			}
			log.Info().Int("score", score).Int("best", best).Msg("game over")
			if err := conn.WriteJSON(gameOverMessage{Type: "game-over", Score: score, Best: best}); err != nil {
				log.Debug().Err(err).Msg("client gone before final message")
			}
			return
		case <-closed:
			game.Stop()
			return
		}
	}
}

// readInputs pumps client messages into the game until the connection
// drops.
func (s *Server) readInputs(conn *websocket.Conn, game *engine.Game, closed chan struct{}, log zerolog.Logger) {
	defer close(closed)
	for {
		var msg inputMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Debug().Err(err).Msg("read loop closed")
			}
			return
		}
		a := engine.Action(msg.Action)
		if !validActions[a] {
			log.Warn().Str("action", msg.Action).Msg("ignoring unknown action")
			continue
		}
		game.Action(a)
	}
}

func (s *Server) track(id string, on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if on {
		s.active[id] = true
	} else {
		delete(s.active, id)
	}
}

// ActiveGames reports how many connections are currently playing.
func (s *Server) ActiveGames() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.active)
}

func frameFrom(snap *engine.Snapshot) stateFrame {
	stack := make([][]string, engine.Rows)
	for y := range snap.Stack {
		stack[y] = make([]string, engine.Cols)
		for x, k := range snap.Stack[y] {
			stack[y][x] = string(k)
		}
	}
	f := stateFrame{
		Type:      "state",
		Stack:     stack,
		Next:      string(snap.Next),
		Hold:      string(snap.Hold),
		CanHold:   snap.CanHold,
		Clearing:  snap.Clearing,
		Score:     snap.Score,
		Lines:     snap.Lines,
		Level:     snap.Level,
		State:     snap.State.String(),
		HighScore: snap.HighScore,
	}
	if p := snap.Piece; p != nil {
		for ir, row := range p.Cells {
			for ic, occupied := range row {
				if !occupied {
					continue
				}
				if gy := p.GhostY + ir; gy >= 0 && gy < engine.Rows {
					f.Ghost = append(f.Ghost, [2]int{gy, p.X + ic})
				}
				if y := p.Y + ir; y >= 0 && y < engine.Rows {
					stack[y][p.X+ic] = string(p.Kind)
				}
			}
		}
	}
	return f
}
