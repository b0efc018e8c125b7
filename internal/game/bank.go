package game

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/victornm/jeopardy/internal/domain"
	"github.com/victornm/jeopardy/internal/errors"
)

const (
	ReasonMalformedJSON  = "MALFORMED_JSON"
	ReasonInvalidBank    = "INVALID_BANK"
	ReasonGameInProgress = "GAME_IN_PROGRESS"

	BankFilename = "jeopardy-questions.json"
	BankMIMEType = "application/json"
)

// A question bank is the board without play flags, so a file can be reused across games.
type (
	bankCategory struct {
		ID        string         `json:"id"`
		Title     string         `json:"title"`
		Questions []bankQuestion `json:"questions"`
	}

	bankQuestion struct {
		ID       string `json:"id"`
		Answer   string `json:"answer"`
		Question string `json:"question"`
		Value    int    `json:"value"`
	}
)

// ExportBank serialises the board as a question bank, indented with two spaces.
func ExportBank(cs []domain.Category) ([]byte, error) {
	bank := make([]bankCategory, 0, len(cs))
	for _, c := range cs {
		bc := bankCategory{
			ID:        c.ID,
			Title:     c.Title,
			Questions: make([]bankQuestion, 0, len(c.Questions)),
		}
		for _, q := range c.Questions {
			bc.Questions = append(bc.Questions, bankQuestion{
				ID:       q.ID,
				Answer:   q.Answer,
				Question: q.Question,
				Value:    q.Value,
			})
		}
		bank = append(bank, bc)
	}

	b, err := json.MarshalIndent(bank, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("export bank: %w", err)
	}

	return b, nil
}

// ParseBank decodes and validates a question bank. The returned questions have both play
// flags cleared.
func ParseBank(data []byte) ([]domain.Category, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var root any
	if err := dec.Decode(&root); err != nil {
		return nil, malformed(err)
	}
	if err := dec.Decode(new(any)); err != io.EOF {
		return nil, malformed(fmt.Errorf("unexpected data after top-level value"))
	}

	items, ok := root.([]any)
	if !ok {
		return nil, invalidBank("top-level value is not an array")
	}

	cs := make([]domain.Category, 0, len(items))
	for i, item := range items {
		c, err := parseCategory(item)
		if err != nil {
			return nil, invalidBank("category %d: %v", i, err)
		}
		cs = append(cs, c)
	}

	return cs, nil
}

func parseCategory(v any) (domain.Category, error) {
	m, ok := v.(map[string]any)
	if !ok {
		return domain.Category{}, fmt.Errorf("not an object")
	}

	var (
		c   domain.Category
		err error
	)
	if c.ID, err = stringField(m, "id"); err != nil {
		return c, err
	}
	if c.Title, err = stringField(m, "title"); err != nil {
		return c, err
	}

	raw, ok := m["questions"]
	if !ok {
		return c, fmt.Errorf("missing field %q", "questions")
	}
	qs, ok := raw.([]any)
	if !ok {
		return c, fmt.Errorf("field %q is not an array", "questions")
	}

	c.Questions = make([]domain.Question, 0, len(qs))
	for i, qv := range qs {
		q, err := parseQuestion(qv)
		if err != nil {
			return c, fmt.Errorf("question %d: %w", i, err)
		}
		c.Questions = append(c.Questions, q)
	}

	return c, nil
}

func parseQuestion(v any) (domain.Question, error) {
	m, ok := v.(map[string]any)
	if !ok {
		return domain.Question{}, fmt.Errorf("not an object")
	}

	var (
		q   domain.Question
		err error
	)
	if q.ID, err = stringField(m, "id"); err != nil {
		return q, err
	}
	if q.Answer, err = stringField(m, "answer"); err != nil {
		return q, err
	}
	if q.Question, err = stringField(m, "question"); err != nil {
		return q, err
	}

	raw, ok := m["value"]
	if !ok {
		return q, fmt.Errorf("missing field %q", "value")
	}
	n, ok := raw.(json.Number)
	if !ok {
		return q, fmt.Errorf("field %q is not a number", "value")
	}
	value, err := n.Int64()
	if err != nil || value <= 0 {
		return q, fmt.Errorf("field %q must be a positive integer, got %s", "value", n)
	}
	q.Value = int(value)

	return q, nil
}

func stringField(m map[string]any, key string) (string, error) {
	raw, ok := m[key]
	if !ok {
		return "", fmt.Errorf("missing field %q", key)
	}

	s, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("field %q is not a string", key)
	}

	return s, nil
}

func malformed(err error) error {
	return errors.New(errors.CodeInvalidArgument,
		errors.WithReason(ReasonMalformedJSON),
		errors.WithMessagef("Error parsing JSON file"),
		errors.WithCause(err),
	)
}

func invalidBank(format string, args ...any) error {
	return errors.New(errors.CodeInvalidArgument,
		errors.WithReason(ReasonInvalidBank),
		errors.WithMessagef("Invalid JSON format for Jeopardy questions: "+format, args...),
	)
}

// Export returns the current board as a question bank.
func (c *Controller) Export() ([]byte, error) {
	return ExportBank(c.categories)
}

// Import replaces the board with a parsed question bank. Players are untouched and the
// board is not playable until the next StartGame. Refused while a game is being played.
func (c *Controller) Import(data []byte) (Change, error) {
	if c.gameStarted && !c.editMode {
		return Change{}, errors.New(errors.CodeFailedPrecondition,
			errors.WithReason(ReasonGameInProgress),
			errors.WithMessagef("cannot import questions while a game is in progress"),
		)
	}

	cs, err := ParseBank(data)
	if err != nil {
		return Change{}, err
	}

	c.categories = cs
	c.editing = nil

	return Change{Applied: true, Categories: true}, nil
}
