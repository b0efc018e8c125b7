package game_test

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/victornm/jeopardy/internal/errors"
	"github.com/victornm/jeopardy/internal/game"
)

func TestExportBank_StripsPlayFlags(t *testing.T) {
	c := newGame(t)
	c.SelectQuestion(0, 0)
	c.Resolve()

	b, err := c.Export()
	require.NoError(t, err)

	assert.NotContains(t, string(b), "isDailyDouble")
	assert.NotContains(t, string(b), "isAnswered")
	assert.True(t, strings.HasPrefix(string(b), "[\n  {\n    \"id\": \"cat-0\""), "indented with two spaces")

	var got []map[string]any
	require.NoError(t, json.Unmarshal(b, &got))
	require.Len(t, got, 6)
	qs := got[0]["questions"].([]any)
	require.Len(t, qs, 5)
	assert.Equal(t, map[string]any{
		"id":       "0-0",
		"answer":   "Placeholder answer for $200",
		"question": "What is the placeholder question for $200?",
		"value":    float64(200),
	}, qs[0])
}

func TestParseBank(t *testing.T) {
	tests := map[string]struct {
		input      string
		wantReason string
		wantTitles []string
	}{
		"well formed bank": {
			input:      `[{"id":"c1","title":"X","questions":[{"id":"q1","answer":"a","question":"q","value":200}]},{"id":"c2","title":"Y","questions":[]}]`,
			wantTitles: []string{"X", "Y"},
		},
		"play flags in the file are ignored": {
			input:      `[{"id":"c1","title":"X","questions":[{"id":"q1","answer":"a","question":"q","value":200,"isAnswered":true,"isDailyDouble":true}]}]`,
			wantTitles: []string{"X"},
		},
		"missing questions": {
			input:      `[{"id":"c1","title":"X"}]`,
			wantReason: game.ReasonInvalidBank,
		},
		"questions is not an array": {
			input:      `[{"id":"c1","title":"X","questions":{}}]`,
			wantReason: game.ReasonInvalidBank,
		},
		"question without value": {
			input:      `[{"id":"c1","title":"X","questions":[{"id":"q1","answer":"a","question":"q"}]}]`,
			wantReason: game.ReasonInvalidBank,
		},
		"non positive value": {
			input:      `[{"id":"c1","title":"X","questions":[{"id":"q1","answer":"a","question":"q","value":0}]}]`,
			wantReason: game.ReasonInvalidBank,
		},
		"top level object": {
			input:      `{"id":"c1","title":"X","questions":[]}`,
			wantReason: game.ReasonInvalidBank,
		},
		"broken json": {
			input:      `[{"id":"c1",`,
			wantReason: game.ReasonMalformedJSON,
		},
		"trailing garbage": {
			input:      `[] []`,
			wantReason: game.ReasonMalformedJSON,
		},
	}

	for name, tt := range tests {
		tt := tt
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			cs, err := game.ParseBank([]byte(tt.input))
			if tt.wantReason != "" {
				require.Error(t, err)
				assert.True(t, errors.HasReason(err, tt.wantReason), "got %v", err)
				assert.True(t, errors.IsCode(err, errors.CodeInvalidArgument))
				return
			}

			require.NoError(t, err)
			titles := make([]string, 0, len(cs))
			for _, c := range cs {
				titles = append(titles, c.Title)
				for _, q := range c.Questions {
					assert.False(t, q.IsAnswered)
					assert.False(t, q.IsDailyDouble)
				}
			}
			assert.Equal(t, tt.wantTitles, titles)
		})
	}
}

func TestController_Import(t *testing.T) {
	t.Run("rejected bank leaves the board unchanged", func(t *testing.T) {
		t.Parallel()

		c := newGame(t)
		c.ReturnToMenu()
		before := c.Categories()

		ch, err := c.Import([]byte(`[{"id":"c1","title":"X"}]`))
		require.Error(t, err)
		assert.False(t, ch.Applied)
		assert.Equal(t, before, c.Categories())
	})

	t.Run("valid bank replaces the board and keeps players", func(t *testing.T) {
		t.Parallel()

		c := newGame(t)
		c.RenamePlayer(1, "Ada")
		c.EnterEditMode()

		ch, err := c.Import([]byte(`[{"id":"c1","title":"X","questions":[{"id":"q1","answer":"a","question":"q","value":300}]}]`))
		require.NoError(t, err)
		assert.True(t, ch.Categories)
		assert.False(t, ch.Players)

		cs := c.Categories()
		require.Len(t, cs, 1)
		assert.Equal(t, "X", cs[0].Title)
		assert.Equal(t, 300, cs[0].Questions[0].Value)
		assert.Equal(t, "Ada", c.Players()[0].Name)
	})

	t.Run("round trips an export", func(t *testing.T) {
		t.Parallel()

		src := newGame(t)
		src.EnterEditMode()
		src.EditCategoryTitle(2, "History")
		b, err := src.Export()
		require.NoError(t, err)

		dst := game.New(game.Config{Rand: &seqRand{}})
		_, err = dst.Import(b)
		require.NoError(t, err)

		want := src.Categories()
		for ci := range want {
			for qi := range want[ci].Questions {
				want[ci].Questions[qi].IsDailyDouble = false
			}
		}
		assert.Equal(t, want, dst.Categories())
	})

	t.Run("refused during play", func(t *testing.T) {
		t.Parallel()

		c := newGame(t)
		_, err := c.Import([]byte(`[]`))
		assert.True(t, errors.HasReason(err, game.ReasonGameInProgress))
		assert.Len(t, c.Categories(), 6)
	})
}
