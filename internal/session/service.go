package session

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/victornm/jeopardy/internal/domain"
	"github.com/victornm/jeopardy/internal/event"
	"github.com/victornm/jeopardy/internal/game"
	"github.com/victornm/jeopardy/internal/store"
)

const (
	StartOnSelect = "select"
	StartOnReveal = "reveal"
)

// TimerConfig controls the question countdown. A zero Duration disables it.
type TimerConfig struct {
	Duration time.Duration
	// StartOn is StartOnSelect or StartOnReveal. With StartOnSelect a Daily Double starts
	// counting when its wager is submitted.
	StartOn string
}

type Timer interface {
	Stop() bool
}

type AfterFunc func(d time.Duration, f func()) Timer

type Config struct {
	EventBus  *event.Bus
	Snapshot  *store.Snapshot
	Timer     TimerConfig
	Rand      game.Rand
	AfterFunc AfterFunc
}

// Service is the only entry point to the game. It serialises every operation, publishes the
// resulting changes on the event bus and runs the question timer.
type Service struct {
	mu  sync.Mutex
	ctl *game.Controller
	eb  *event.Bus

	timerCfg  TimerConfig
	afterFunc AfterFunc
	timer     struct {
		t       Timer
		token   uint64
		seq     uint64
		stopped bool
	}
}

// NewService hydrates a session from the snapshot, falling back to the default board and
// players for anything missing. Defaults are written back immediately.
func NewService(ctx context.Context, c Config) *Service {
	s := &Service{
		eb:        c.EventBus,
		timerCfg:  c.Timer,
		afterFunc: c.AfterFunc,
	}

	if s.afterFunc == nil {
		s.afterFunc = func(d time.Duration, f func()) Timer {
			return time.AfterFunc(d, f)
		}
	}

	r := c.Rand
	if r == nil {
		r = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	d := c.Snapshot.Load(ctx)
	ch := game.Change{Applied: true}
	if d.Categories == nil {
		d.Categories = game.CreateDefaultBoard()
		ch.Categories = true
	}
	if d.Players == nil {
		d.Players = game.DefaultPlayers()
		ch.Players = true
	}

	s.ctl = game.New(game.Config{
		Rand:       r,
		Categories: d.Categories,
		Players:    d.Players,
	})

	slog.InfoContext(ctx, "session: loaded",
		"categories", len(d.Categories),
		"players", len(d.Players),
		"defaulted_board", ch.Categories,
		"defaulted_players", ch.Players,
	)

	s.mu.Lock()
	s.commit(ctx, ch)
	s.mu.Unlock()

	return s
}

func (s *Service) State(_ context.Context) domain.State {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.ctl.View()
}

func (s *Service) StartGame(ctx context.Context) domain.State {
	return s.apply(ctx, (*game.Controller).StartGame)
}

func (s *Service) EnterEditMode(ctx context.Context) domain.State {
	return s.apply(ctx, (*game.Controller).EnterEditMode)
}

func (s *Service) FinishEditing(ctx context.Context) domain.State {
	return s.apply(ctx, (*game.Controller).FinishEditing)
}

func (s *Service) ReturnToMenu(ctx context.Context) domain.State {
	return s.apply(ctx, (*game.Controller).ReturnToMenu)
}

type SelectQuestionRequest struct {
	CategoryIndex int
	QuestionIndex int
}

// SelectQuestion opens a question, or its edit form in edit mode.
func (s *Service) SelectQuestion(ctx context.Context, req SelectQuestionRequest) domain.State {
	return s.apply(ctx, func(c *game.Controller) game.Change {
		return c.SelectQuestion(req.CategoryIndex, req.QuestionIndex)
	})
}

func (s *Service) RevealQuestion(ctx context.Context) domain.State {
	return s.apply(ctx, (*game.Controller).RevealQuestion)
}

type SelectPlayerRequest struct {
	PlayerID int
}

// SelectAnsweringPlayer picks who answers a regular question.
func (s *Service) SelectAnsweringPlayer(ctx context.Context, req SelectPlayerRequest) domain.State {
	return s.apply(ctx, func(c *game.Controller) game.Change {
		return c.SelectAnsweringPlayer(req.PlayerID)
	})
}

// SelectWagerer picks who plays the open Daily Double.
func (s *Service) SelectWagerer(ctx context.Context, req SelectPlayerRequest) domain.State {
	return s.apply(ctx, func(c *game.Controller) game.Change {
		return c.SelectWagerer(req.PlayerID)
	})
}

// MaxWager is the largest wager the player may place on a Daily Double.
func (s *Service) MaxWager(_ context.Context, req SelectPlayerRequest) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.ctl.MaxWager(req.PlayerID)
}

type SubmitWagerRequest struct {
	Amount int
}

func (s *Service) SubmitWager(ctx context.Context, req SubmitWagerRequest) domain.State {
	return s.apply(ctx, func(c *game.Controller) game.Change {
		return c.SubmitWager(req.Amount)
	})
}

type RecordAnswerRequest struct {
	Correct bool
}

func (s *Service) RecordAnswer(ctx context.Context, req RecordAnswerRequest) domain.State {
	return s.apply(ctx, func(c *game.Controller) game.Change {
		return c.RecordAnswer(req.Correct)
	})
}

// CloseQuestion takes the open question off the board without scoring, as when the host
// calls time.
func (s *Service) CloseQuestion(ctx context.Context) domain.State {
	return s.apply(ctx, (*game.Controller).Resolve)
}

type EditCategoryTitleRequest struct {
	CategoryIndex int
	Title         string
}

func (s *Service) EditCategoryTitle(ctx context.Context, req EditCategoryTitleRequest) domain.State {
	return s.apply(ctx, func(c *game.Controller) game.Change {
		return c.EditCategoryTitle(req.CategoryIndex, req.Title)
	})
}

type EditQuestionContentRequest struct {
	CategoryIndex int
	QuestionIndex int
	Question      string
	Answer        string
}

func (s *Service) EditQuestionContent(ctx context.Context, req EditQuestionContentRequest) domain.State {
	return s.apply(ctx, func(c *game.Controller) game.Change {
		return c.EditQuestionContent(req.CategoryIndex, req.QuestionIndex, req.Question, req.Answer)
	})
}

func (s *Service) CancelQuestionEdit(ctx context.Context) domain.State {
	return s.apply(ctx, (*game.Controller).CancelQuestionEdit)
}

type RenamePlayerRequest struct {
	PlayerID int
	Name     string
}

func (s *Service) RenamePlayer(ctx context.Context, req RenamePlayerRequest) domain.State {
	return s.apply(ctx, func(c *game.Controller) game.Change {
		return c.RenamePlayer(req.PlayerID, req.Name)
	})
}

type ImportRequest struct {
	Data []byte
}

// Import replaces the board with a question bank. On failure the session is unchanged.
func (s *Service) Import(ctx context.Context, req ImportRequest) (domain.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch, err := s.ctl.Import(req.Data)
	if err != nil {
		slog.WarnContext(ctx, "session: import rejected", "error", err)
		return s.ctl.View(), err
	}

	s.commit(ctx, ch)
	return s.ctl.View(), nil
}

// Export returns the board as a question bank.
func (s *Service) Export(_ context.Context) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.ctl.Export()
}

// Stop cancels the running question timer. Later changes never arm it again.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.disarm()
	s.timer.seq++
	s.timer.stopped = true
}

func (s *Service) apply(ctx context.Context, op func(c *game.Controller) game.Change) domain.State {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.commit(ctx, op(s.ctl))
	return s.ctl.View()
}

// commit publishes the consequences of a change. Callers hold s.mu, so events leave in the
// order the mutations happened.
func (s *Service) commit(ctx context.Context, ch game.Change) {
	if !ch.Applied {
		return
	}

	if ch.Categories {
		s.eb.Publish(ctx, domain.EventCategoriesChanged{Categories: s.ctl.Categories()})
	}
	if ch.Players {
		s.eb.Publish(ctx, domain.EventPlayersChanged{Players: s.ctl.Players()})
	}

	if a := ch.Answer; a != nil {
		s.eb.Publish(ctx, domain.EventAnswerRecorded{
			PlayerID:    a.PlayerID,
			QuestionID:  a.QuestionID,
			Correct:     a.Correct,
			Delta:       a.Delta,
			DailyDouble: a.DailyDouble,
		})
	}

	if r := ch.Resolved; r != nil {
		slog.InfoContext(ctx, "session: question resolved",
			"question", r.Question.ID,
			"reason", r.Reason,
			"player", r.PlayerID,
		)
		s.eb.Publish(ctx, domain.EventQuestionResolved{
			Question: r.Question,
			Reason:   r.Reason,
			PlayerID: r.PlayerID,
		})
	}

	v := s.ctl.View()
	s.arm(v)
	s.eb.Publish(ctx, domain.EventStateChanged{State: v})
}

// arm makes the running timer match the open question: started once its trigger is met,
// stopped when it resolves.
func (s *Service) arm(v domain.State) {
	if s.timer.stopped {
		return
	}

	want := s.timerToken(v)
	if want == s.timer.token {
		return
	}

	s.disarm()
	if want == 0 {
		return
	}

	s.timer.seq++
	seq := s.timer.seq
	s.timer.token = want
	s.timer.t = s.afterFunc(s.timerCfg.Duration, func() {
		s.expire(seq, want)
	})
}

func (s *Service) disarm() {
	if s.timer.t != nil {
		s.timer.t.Stop()
	}
	s.timer.t = nil
	s.timer.token = 0
}

func (s *Service) timerToken(v domain.State) uint64 {
	q := v.SelectedQuestion
	if s.timerCfg.Duration <= 0 || q == nil {
		return 0
	}

	switch s.timerCfg.StartOn {
	case StartOnReveal:
		if v.Phase == domain.PhaseRevealed {
			return q.Token
		}
	default:
		if !q.Question.IsDailyDouble || v.WagerSubmitted {
			return q.Token
		}
	}

	return 0
}

func (s *Service) expire(seq, token uint64) {
	ctx := context.Background()

	s.mu.Lock()
	defer s.mu.Unlock()

	if seq != s.timer.seq {
		return
	}

	s.timer.t = nil
	s.timer.token = 0

	slog.InfoContext(ctx, "session: question timer expired", "token", token)
	s.commit(ctx, s.ctl.Timeout(token))
}
