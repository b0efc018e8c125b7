package store_test

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/victornm/jeopardy/internal/domain"
	"github.com/victornm/jeopardy/internal/event"
	"github.com/victornm/jeopardy/internal/store"
)

func TestSnapshot_Load(t *testing.T) {
	tests := map[string]struct {
		arrange func(t *testing.T, kv *store.Memory)
		assert  func(t *testing.T, d store.Data)
	}{
		"empty store yields nothing": {
			arrange: func(t *testing.T, kv *store.Memory) {},
			assert: func(t *testing.T, d store.Data) {
				assert.Nil(t, d.Categories)
				assert.Nil(t, d.Players)
			},
		},

		"saved values are read back": {
			arrange: func(t *testing.T, kv *store.Memory) {
				require.NoError(t, kv.Set(context.Background(), store.KeyPlayers,
					[]byte(`[{"id":1,"name":"Ada","score":-200}]`)))
				require.NoError(t, kv.Set(context.Background(), store.KeyCategories,
					[]byte(`[{"id":"c","title":"T","questions":[{"id":"q","answer":"a","question":"b","value":200,"isDailyDouble":true,"isAnswered":false}]}]`)))
			},
			assert: func(t *testing.T, d store.Data) {
				assert.Equal(t, []domain.Player{{ID: 1, Name: "Ada", Score: -200}}, d.Players)
				require.Len(t, d.Categories, 1)
				assert.True(t, d.Categories[0].Questions[0].IsDailyDouble)
			},
		},

		"unparseable key is dropped on its own": {
			arrange: func(t *testing.T, kv *store.Memory) {
				require.NoError(t, kv.Set(context.Background(), store.KeyPlayers, []byte(`{not json`)))
				require.NoError(t, kv.Set(context.Background(), store.KeyCategories, []byte(`[{"id":1}]`)))
			},
			assert: func(t *testing.T, d store.Data) {
				assert.Nil(t, d.Players)
				assert.Nil(t, d.Categories)
			},
		},
	}

	for name, tt := range tests {
		tt := tt
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			kv := store.NewMemory()
			tt.arrange(t, kv)

			tt.assert(t, store.NewSnapshot(kv).Load(context.Background()))
		})
	}
}

func TestSnapshot_Subscribe(t *testing.T) {
	kv := store.NewMemory()
	s := store.NewSnapshot(kv)

	eb := event.NewBus()
	s.Subscribe(eb)

	for score := 0; score <= 1000; score += 200 {
		eb.Publish(context.Background(), domain.EventPlayersChanged{
			Players: []domain.Player{{ID: 1, Name: "Ada", Score: score}},
		})
	}
	eb.Publish(context.Background(), domain.EventCategoriesChanged{
		Categories: []domain.Category{{ID: "c", Title: "T", Questions: []domain.Question{}}},
	})
	eb.Stop()

	d := s.Load(context.Background())
	assert.Equal(t, []domain.Player{{ID: 1, Name: "Ada", Score: 1000}}, d.Players, "last published players win")
	assert.Equal(t, []domain.Category{{ID: "c", Title: "T", Questions: []domain.Question{}}}, d.Categories)
}

func TestSnapshot_SaveFailure(t *testing.T) {
	s := store.NewSnapshot(failingKV{})

	err := s.SavePlayers(context.Background(), []domain.Player{{ID: 1}})
	assert.ErrorContains(t, err, "jeopardyPlayers")
}

type failingKV struct{}

func (failingKV) Get(context.Context, string) ([]byte, error) {
	return nil, stderrors.New("down")
}

func (failingKV) Set(context.Context, string, []byte) error {
	return stderrors.New("down")
}
