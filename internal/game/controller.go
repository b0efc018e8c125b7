// Package game implements the rules of a hosted Jeopardy session: question selection,
// answer attempts, scoring, the Daily Double wager and game completion.
//
// A Controller is not safe for concurrent use. Callers serialise access and persist the
// board or players whenever the returned Change says they were modified.
package game

import (
	"github.com/victornm/jeopardy/internal/domain"
)

const (
	minWager   = 5
	wagerFloor = 1000
	noPlayer   = 0
)

// Rand is the source of the Daily Double placement. *math/rand/v2.Rand satisfies it.
type Rand interface {
	IntN(n int) int
}

type Config struct {
	Rand       Rand
	Categories []domain.Category
	Players    []domain.Player
}

// Change describes the outcome of an operation. A zero Change means the call was a no-op.
type Change struct {
	Applied    bool
	Categories bool
	Players    bool
	Resolved   *Resolution
	Answer     *Answer
}

type Resolution struct {
	Question domain.Question
	Reason   domain.ResolveReason
	PlayerID int
}

type Answer struct {
	PlayerID    int
	QuestionID  string
	Correct     bool
	Delta       int
	DailyDouble bool
}

// openQuestion exists only while a question is on screen; phase is PhaseHidden or PhaseRevealed.
type openQuestion struct {
	cat, idx int
	token    uint64
	phase    domain.Phase

	answering int
	attempted []int

	wager          int
	wagerSubmitted bool
}

type Controller struct {
	rng Rand

	categories []domain.Category
	players    []domain.Player

	gameStarted   bool
	editMode      bool
	currentPlayer int

	open      *openQuestion
	editing   *domain.QuestionDraft
	lastToken uint64
}

func New(c Config) *Controller {
	ctl := &Controller{
		rng:        c.Rand,
		categories: domain.CloneCategories(c.Categories),
		players:    domain.ClonePlayers(c.Players),
	}

	if len(ctl.players) > 0 {
		ctl.currentPlayer = ctl.players[0].ID
	}

	return ctl
}

// StartGame clears the board flags, places one Daily Double and resets every score.
func (c *Controller) StartGame() Change {
	if len(c.categories) == 0 {
		c.categories = CreateDefaultBoard()
	}

	for ci := range c.categories {
		for qi := range c.categories[ci].Questions {
			q := &c.categories[ci].Questions[qi]
			q.IsDailyDouble = false
			q.IsAnswered = false
		}
	}

	if ci, qi, ok := c.pickDailyDouble(); ok {
		c.categories[ci].Questions[qi].IsDailyDouble = true
	}

	for i := range c.players {
		c.players[i].Score = 0
	}

	c.gameStarted = true
	c.editMode = false
	c.open = nil
	c.editing = nil

	return Change{Applied: true, Categories: true, Players: true}
}

// pickDailyDouble draws a category then a question within it. On a rectangular board this is
// uniform over all cells; otherwise a cell is drawn uniformly from the flattened board.
func (c *Controller) pickDailyDouble() (int, int, bool) {
	width := len(c.categories[0].Questions)
	total, rect := 0, true
	for _, cat := range c.categories {
		total += len(cat.Questions)
		rect = rect && len(cat.Questions) == width
	}

	if total == 0 {
		return 0, 0, false
	}

	if rect {
		ci := c.rng.IntN(len(c.categories))
		qi := c.rng.IntN(width)
		return ci, qi, true
	}

	k := c.rng.IntN(total)
	for ci, cat := range c.categories {
		if k < len(cat.Questions) {
			return ci, k, true
		}
		k -= len(cat.Questions)
	}

	return 0, 0, false
}

// EnterEditMode switches to board authoring, creating a default board if there is none.
func (c *Controller) EnterEditMode() Change {
	ch := Change{Applied: true}
	if len(c.categories) == 0 {
		c.categories = CreateDefaultBoard()
		ch.Categories = true
	}

	c.gameStarted = true
	c.editMode = true
	c.open = nil

	return ch
}

// FinishEditing leaves edit mode and returns to the start screen.
func (c *Controller) FinishEditing() Change {
	if !c.editMode {
		return Change{}
	}

	c.editMode = false
	c.gameStarted = false
	c.editing = nil

	return Change{Applied: true}
}

// ReturnToMenu goes back to the start screen keeping the board and players.
func (c *Controller) ReturnToMenu() Change {
	if !c.gameStarted {
		return Change{}
	}

	c.gameStarted = false
	c.editMode = false
	c.open = nil
	c.editing = nil

	return Change{Applied: true}
}

// IsGameOver is derived from the board on every call.
func (c *Controller) IsGameOver() bool {
	return IsGameOver(c.categories)
}

func (c *Controller) Categories() []domain.Category {
	return domain.CloneCategories(c.categories)
}

func (c *Controller) Players() []domain.Player {
	return domain.ClonePlayers(c.players)
}

// OpenToken returns the identity of the question on screen.
func (c *Controller) OpenToken() (uint64, bool) {
	if c.open == nil {
		return 0, false
	}

	return c.open.token, true
}

// View projects the controller into a renderable state.
func (c *Controller) View() domain.State {
	s := domain.State{
		Categories:       c.Categories(),
		Players:          c.Players(),
		GameStarted:      c.gameStarted,
		EditMode:         c.editMode,
		GameOver:         c.IsGameOver(),
		CurrentPlayer:    c.currentPlayer,
		Phase:            domain.PhaseIdle,
		AttemptedPlayers: []int{},
	}

	if c.editing != nil {
		d := *c.editing
		s.EditingQuestion = &d
	}

	if o := c.open; o != nil {
		s.Phase = o.phase
		s.SelectedQuestion = &domain.SelectedQuestion{
			CategoryIndex: o.cat,
			QuestionIndex: o.idx,
			Token:         o.token,
			Question:      *c.question(o),
		}
		s.ShowAnswer = o.phase == domain.PhaseRevealed
		s.AnsweringPlayer = o.answering
		s.AttemptedPlayers = append([]int{}, o.attempted...)
		s.WagerAmount = o.wager
		s.WagerSubmitted = o.wagerSubmitted

		if c.question(o).IsDailyDouble && o.answering != noPlayer {
			s.MaxWager = c.MaxWager(o.answering)
		}
	}

	return s
}

func (c *Controller) question(o *openQuestion) *domain.Question {
	return &c.categories[o.cat].Questions[o.idx]
}

func (c *Controller) player(id int) (*domain.Player, bool) {
	if id == noPlayer {
		return nil, false
	}

	for i := range c.players {
		if c.players[i].ID == id {
			return &c.players[i], true
		}
	}

	return nil, false
}

func (c *Controller) validCell(ci, qi int) bool {
	return ci >= 0 && ci < len(c.categories) && qi >= 0 && qi < len(c.categories[ci].Questions)
}
