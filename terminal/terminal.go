package terminal

import (
	_ "embed"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"strings"
	"sync/atomic"
	"text/template"

	"github.com/eiannone/keyboard"

	"blockfall/engine"
)

const (
	// ASCII colors.
	Cyan    = "36"
	Blue    = "34"
	Orange  = "38;5;214"
	Yellow  = "33"
	Green   = "32"
	Red     = "31"
	Magenta = "35"

	resetPos = "\033[H" // Reset cursor position to 0,0
)

//go:embed "layout.tmpl"
var layout string

var colorMap = map[engine.Kind]string{
	engine.I: Cyan,
	engine.J: Blue,
	engine.L: Orange,
	engine.O: Yellow,
	engine.S: Green,
	engine.Z: Red,
	engine.T: Magenta,
}

// ScoreStore persists the best score across runs.
type ScoreStore interface {
	Best() (int, error)
	Submit(score int) (int, error)
}

type templateData struct {
	Snapshot *engine.Snapshot
	Best     int
	NoGhost  bool
}

type Terminal struct {
	writer       io.Writer
	game         *engine.Game
	template     *template.Template
	logger       *slog.Logger
	keysEventsCh <-chan keyboard.KeyEvent
	doneCh       chan bool
	lobby        atomic.Bool
	noGhost      bool
	store        ScoreStore
	best         int
}

type Options struct {
	Writer  io.Writer
	Logger  *slog.Logger
	NoGhost bool
	Store   ScoreStore
}

func New(o *Options) *Terminal {
	tp, err := loadTemplate()
	if err != nil {
		log.Fatalf("unable to load template: %v\n", err)
	}
	kc, err := keyboard.GetKeys(20)
	if err != nil {
		log.Fatalf("unable to open keyboard: %v\n", err)
	}
	var w io.Writer = os.Stdout
	if o.Writer != nil {
		w = o.Writer
	}
	t := &Terminal{
		writer:       w,
		game:         engine.NewGame(),
		template:     tp,
		keysEventsCh: kc,
		doneCh:       make(chan bool),
		logger:       o.Logger,
		lobby:        atomic.Bool{},
		noGhost:      o.NoGhost,
		store:        o.Store,
	}
	if t.store != nil {
		best, err := t.store.Best()
		if err != nil {
			t.logger.Error("unable to read best score", slog.String("error", err.Error()))
		} else {
			t.best = best
		}
	}
	return t
}

func (t *Terminal) Start() {
	t.render(&engine.Snapshot{State: engine.Menu})
	t.renderLobby()
	go t.listenKB()
	<-t.doneCh
	close(t.doneCh)
}

func (t *Terminal) listenGame() {
	for {
		select {
		case snap := <-t.game.UpdateCh:
			t.render(snap)
		case score := <-t.game.GameOverCh:
			t.finishRound(score)
			return
		}
	}
}

func (t *Terminal) finishRound(score int) {
	if t.store != nil {
		best, err := t.store.Submit(score)
		if err != nil {
			t.logger.Error("unable to save score", slog.String("error", err.Error()))
		} else {
			t.best = best
		}
	} else if score > t.best {
		t.best = score
	}
	t.renderLobby()
	fmt.Fprint(t.writer, "\033[11;9H|              Game Over :)            |")
	fmt.Fprintf(t.writer, "\033[12;9H|       score %6d   best %6d    |", score, t.best)
}

func (t *Terminal) listenKB() {
kbListener:
	for {
		event, ok := <-t.keysEventsCh
		if !ok {
			t.logger.Error("Keyboard events channel closed unexpectedly")
			break
		}
		if event.Err != nil {
			t.logger.Error("keysEvents error", slog.String("error", event.Err.Error()))
			break
		}
		if event.Key == keyboard.KeyCtrlC {
			break
		}
		if t.lobby.Load() {
			switch event.Rune {
			case 'p':
				go t.listenGame()
				t.game.Start()
			case 'q':
				break kbListener
			default:
				continue
			}
			t.lobby.Store(false)
			// clear the screen after the lobby
			fmt.Fprint(t.writer, "\033[2J\033[H")
		} else {
			switch {
			case event.Key == keyboard.KeyArrowDown || event.Rune == 's':
				t.game.Action(engine.MoveDown)
			case event.Key == keyboard.KeyArrowLeft || event.Rune == 'a':
				t.game.Action(engine.MoveLeft)
			case event.Key == keyboard.KeyArrowRight || event.Rune == 'd':
				t.game.Action(engine.MoveRight)
			case event.Key == keyboard.KeyArrowUp || event.Rune == 'e':
				t.game.Action(engine.RotateRight)
			case event.Rune == 'q':
				t.game.Action(engine.RotateLeft)
			case event.Key == keyboard.KeySpace:
				t.game.Action(engine.DropDown)
			case event.Rune == 'c':
				t.game.Action(engine.SwapHold)
			case event.Rune == 'p':
				t.game.Action(engine.TogglePause)
			}
		}
	}
	t.doneCh <- true
}

func (t *Terminal) renderLobby() {
	t.lobby.Store(true)
	fmt.Fprint(t.writer, "\033[10;9H+--------------------------------------+")
	fmt.Fprint(t.writer, "\033[11;9H|        Welcome to Blockfall          |")
	fmt.Fprint(t.writer, "\033[12;9H|                                      |")
	fmt.Fprint(t.writer, "\033[13;9H|          (p)lay    (q)uit            |")
	fmt.Fprint(t.writer, "\033[14;9H+--------------------------------------+")
}

func (t *Terminal) render(snap *engine.Snapshot) {
	td := &templateData{Snapshot: snap, Best: t.best, NoGhost: t.noGhost}
	fmt.Fprint(t.writer, resetPos)
	if err := t.template.Execute(t.writer, td); err != nil {
		t.logger.Error("Unable to execute template", slog.String("error", err.Error()))
	}
}

func loadTemplate() (*template.Template, error) {
	funcMap := template.FuncMap{
		"stack":     stack,
		"row":       row,
		"next":      next,
		"hold":      hold,
		"holdLabel": holdLabel,
		"status":    status,
	}

	// we use the console raw so new lines don't automatically transform into carriage return
	// to fix that we add a carriage return to every new line in the layout.
	layout = strings.ReplaceAll(layout, "\n", "\r\n")
	layout = strings.ReplaceAll(layout, "Blockfall", "\033[1mBlockfall\033[0m")
	return template.New("layout").Funcs(funcMap).Parse(layout)
}

func stack(t *templateData) [engine.Rows][engine.Cols]string {
	rendered := [engine.Rows][engine.Cols]string{}

	clearing := map[int]bool{}
	for _, r := range t.Snapshot.Clearing {
		clearing[r] = true
	}

	// renders the settled stack, flashing the rows about to go
	for y := range engine.Rows {
		for x := range engine.Cols {
			out := "  "
			if clearing[y] {
				out = "\x1b[7m[]\x1b[0m"
			} else if c, ok := colorMap[t.Snapshot.Stack[y][x]]; ok {
				out = fmt.Sprintf("\x1b[7m\x1b[%sm[]\x1b[0m", c)
			}
			rendered[y][x] = out
		}
	}

	// renders the falling piece and its ghost if one is in play
	if p := t.Snapshot.Piece; p != nil {
		for iy, cells := range p.Cells {
			for ix, filled := range cells {
				if !filled {
					continue
				}
				if !t.NoGhost {
					if gy := p.GhostY + iy; gy >= 0 {
						rendered[gy][p.X+ix] = "[]"
					}
				}
				if y := p.Y + iy; y >= 0 {
					rendered[y][p.X+ix] = fmt.Sprintf("\x1b[7m\x1b[%sm[]\x1b[0m", colorMap[p.Kind])
				}
			}
		}
	}
	return rendered
}

func row(s [engine.Rows][engine.Cols]string, y int) string {
	return strings.Join(s[y][:], "")
}

func next(t *templateData) []string {
	return preview(t.Snapshot.Next)
}

func hold(t *templateData) []string {
	return preview(t.Snapshot.Hold)
}

// preview draws the top two rows of the kind's spawn box, which is where
// every kind keeps its cells. The I piece only fills its second row.
func preview(k engine.Kind) []string {
	var rendered []string
	for i := range 2 {
		row := []string{"  ", "  ", "  ", "  "}
		if k != "" {
			for iv, v := range k.Shape()[i] {
				if v {
					row[iv] = fmt.Sprintf("\x1b[7m\x1b[%sm[]\x1b[0m", colorMap[k])
				}
			}
		}
		rendered = append(rendered, strings.Join(row, ""))
	}
	return rendered
}

func holdLabel(t *templateData) string {
	if t.Snapshot.Hold != "" && !t.Snapshot.CanHold {
		return "hold (used)"
	}
	return "hold       "
}

func status(t *templateData) string {
	if t.Snapshot.State == engine.Paused {
		return "paused"
	}
	return "      "
}
