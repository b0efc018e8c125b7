package game

import (
	"fmt"

	"github.com/victornm/jeopardy/internal/domain"
)

const (
	BoardCategories    = 6
	QuestionsPerColumn = 5
)

var defaultValues = [QuestionsPerColumn]int{200, 400, 600, 800, 1000}

// CreateDefaultBoard returns a 6x5 board filled with placeholder text.
func CreateDefaultBoard() []domain.Category {
	cs := make([]domain.Category, 0, BoardCategories)
	for ci := 0; ci < BoardCategories; ci++ {
		c := domain.Category{
			ID:        fmt.Sprintf("cat-%d", ci),
			Title:     fmt.Sprintf("Category %d", ci+1),
			Questions: make([]domain.Question, 0, QuestionsPerColumn),
		}

		for qi, v := range defaultValues {
			c.Questions = append(c.Questions, domain.Question{
				ID:       fmt.Sprintf("%d-%d", ci, qi),
				Answer:   fmt.Sprintf("Placeholder answer for $%d", v),
				Question: fmt.Sprintf("What is the placeholder question for $%d?", v),
				Value:    v,
			})
		}

		cs = append(cs, c)
	}

	return cs
}

// DefaultPlayers returns the four seats used when nothing was saved.
func DefaultPlayers() []domain.Player {
	ps := make([]domain.Player, 0, 4)
	for id := 1; id <= 4; id++ {
		ps = append(ps, domain.Player{ID: id, Name: fmt.Sprintf("Player %d", id)})
	}

	return ps
}

// IsGameOver reports whether every question on the board has been answered.
func IsGameOver(cs []domain.Category) bool {
	for _, c := range cs {
		for _, q := range c.Questions {
			if !q.IsAnswered {
				return false
			}
		}
	}

	return true
}
