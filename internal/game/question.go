package game

import (
	"slices"

	"github.com/victornm/jeopardy/internal/domain"
)

// SelectQuestion opens a question in play mode, or opens the edit form in edit mode.
// Answered questions, out of range cells and a second selection while a question is open
// are ignored.
func (c *Controller) SelectQuestion(ci, qi int) Change {
	if !c.gameStarted || !c.validCell(ci, qi) {
		return Change{}
	}

	q := c.categories[ci].Questions[qi]

	if c.editMode {
		c.editing = &domain.QuestionDraft{
			CategoryIndex: ci,
			QuestionIndex: qi,
			Question:      q.Question,
			Answer:        q.Answer,
		}
		return Change{Applied: true}
	}

	if q.IsAnswered || c.open != nil {
		return Change{}
	}

	c.lastToken++
	c.open = &openQuestion{
		cat:   ci,
		idx:   qi,
		token: c.lastToken,
		phase: domain.PhaseHidden,
		wager: q.Value,
	}

	return Change{Applied: true}
}

// RevealQuestion shows the response text. A Daily Double reveals only after its wager.
func (c *Controller) RevealQuestion() Change {
	o := c.open
	if o == nil || o.phase != domain.PhaseHidden {
		return Change{}
	}

	if c.question(o).IsDailyDouble && !o.wagerSubmitted {
		return Change{}
	}

	o.phase = domain.PhaseRevealed

	return Change{Applied: true}
}

// SelectAnsweringPlayer picks who attempts a revealed regular question. Players who
// already missed it are excluded.
func (c *Controller) SelectAnsweringPlayer(playerID int) Change {
	o := c.open
	if o == nil || o.phase != domain.PhaseRevealed || c.question(o).IsDailyDouble {
		return Change{}
	}

	if _, ok := c.player(playerID); !ok || slices.Contains(o.attempted, playerID) {
		return Change{}
	}

	o.answering = playerID

	return Change{Applied: true}
}

// RecordAnswer scores the answering player once the question is revealed. A miss on a
// regular question hands the question to the remaining players; anything else resolves it.
func (c *Controller) RecordAnswer(correct bool) Change {
	o := c.open
	if o == nil || o.phase != domain.PhaseRevealed || o.answering == noPlayer {
		return Change{}
	}

	q := c.question(o)
	if q.IsDailyDouble && !o.wagerSubmitted {
		return Change{}
	}

	p, ok := c.player(o.answering)
	if !ok {
		return Change{}
	}

	delta := q.Value
	if q.IsDailyDouble {
		delta = o.wager
	}
	if !correct {
		delta = -delta
	}

	p.Score += delta

	ch := Change{
		Applied: true,
		Players: true,
		Answer: &Answer{
			PlayerID:    p.ID,
			QuestionID:  q.ID,
			Correct:     correct,
			Delta:       delta,
			DailyDouble: q.IsDailyDouble,
		},
	}

	if !q.IsDailyDouble && !correct {
		o.attempted = append(o.attempted, o.answering)
		o.answering = noPlayer

		if len(o.attempted) >= len(c.players) {
			ch.Categories = true
			ch.Resolved = c.resolve(domain.ResolveExhausted, noPlayer)
		}

		return ch
	}

	reason := domain.ResolveCorrect
	if q.IsDailyDouble {
		reason = domain.ResolveDailyDouble
	}

	c.currentPlayer = p.ID
	ch.Categories = true
	ch.Resolved = c.resolve(reason, p.ID)

	return ch
}

// Resolve closes the open question without changing any score.
func (c *Controller) Resolve() Change {
	if c.open == nil {
		return Change{}
	}

	return Change{
		Applied:    true,
		Categories: true,
		Resolved:   c.resolve(domain.ResolveClosed, noPlayer),
	}
}

// Timeout closes the open question when its countdown expires. A token that does not match
// the open question belongs to an already resolved one and is ignored.
func (c *Controller) Timeout(token uint64) Change {
	if c.open == nil || c.open.token != token {
		return Change{}
	}

	return Change{
		Applied:    true,
		Categories: true,
		Resolved:   c.resolve(domain.ResolveTimeout, noPlayer),
	}
}

func (c *Controller) resolve(reason domain.ResolveReason, playerID int) *Resolution {
	q := c.question(c.open)
	q.IsAnswered = true
	c.open = nil

	return &Resolution{
		Question: *q,
		Reason:   reason,
		PlayerID: playerID,
	}
}
