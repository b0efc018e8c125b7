package leaderboard_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/victornm/jeopardy/internal/domain"
	"github.com/victornm/jeopardy/internal/errors"
	"github.com/victornm/jeopardy/internal/event"
	"github.com/victornm/jeopardy/internal/leaderboard"
)

func TestService_UpdateLeaderboard(t *testing.T) {
	s := makeService(t)

	err := s.UpdateLeaderboard(context.Background(), []domain.Player{
		{ID: 1, Name: "Ada", Score: 400},
		{ID: 2, Name: "Grace", Score: -200},
		{ID: 3, Name: "Linus", Score: 1200},
	})
	require.NoError(t, err)

	resp, err := s.GetLeaderboard(context.Background())
	require.NoError(t, err)

	want := &domain.Leaderboard{
		Entries: []domain.LeaderboardEntry{
			{PlayerID: 3, Name: "Linus", Score: 1200},
			{PlayerID: 1, Name: "Ada", Score: 400},
			{PlayerID: 2, Name: "Grace", Score: -200},
		},
	}
	require.Equal(t, want, resp)
}

func TestService_UpdateLeaderboard_ReplacesPlayers(t *testing.T) {
	s := makeService(t)
	ctx := context.Background()

	require.NoError(t, s.UpdateLeaderboard(ctx, []domain.Player{{ID: 1, Name: "Ada"}, {ID: 2, Name: "Grace"}}))
	require.NoError(t, s.UpdateLeaderboard(ctx, []domain.Player{{ID: 2, Name: "Hopper", Score: 200}}))

	resp, err := s.GetLeaderboard(ctx)
	require.NoError(t, err)
	assert.Equal(t, []domain.LeaderboardEntry{{PlayerID: 2, Name: "Hopper", Score: 200}}, resp.Entries)

	require.NoError(t, s.UpdateLeaderboard(ctx, nil))
	_, err = s.GetLeaderboard(ctx)
	assert.True(t, errors.IsCode(err, errors.CodeNotFound))
}

func TestServer_PublishLeaderboardUpdated(t *testing.T) {
	type (
		inputs struct {
			receivedEvents []domain.EventPlayersChanged
			wait           time.Duration
		}

		outputs struct {
			publishedEvents []domain.EventLeaderboardUpdated
		}
	)

	tests := map[string]struct {
		arrange func() inputs
		assert  func(t *testing.T, out outputs)
	}{
		"should publish leaderboard.updated after receiving players.changed": {
			arrange: func() inputs {
				return inputs{
					receivedEvents: []domain.EventPlayersChanged{
						{Players: []domain.Player{{ID: 1, Name: "Ada", Score: 200}}},
					},
				}
			},

			assert: func(t *testing.T, out outputs) {
				require.Len(t, out.publishedEvents, 1, "should receive 1 leaderboard updated event")
				require.Equal(t, domain.Leaderboard{
					Entries: []domain.LeaderboardEntry{
						{PlayerID: 1, Name: "Ada", Score: 200},
					},
				}, out.publishedEvents[0].Leaderboard)
			},
		},

		"should publish only the first change within the publish interval right away": {
			arrange: func() inputs {
				return inputs{
					receivedEvents: []domain.EventPlayersChanged{
						{Players: []domain.Player{{ID: 1, Name: "Ada", Score: 200}}},
						{Players: []domain.Player{{ID: 1, Name: "Ada", Score: 400}}},
					},
				}
			},

			assert: func(t *testing.T, out outputs) {
				require.Len(t, out.publishedEvents, 1, "should receive 1 leaderboard updated event")
			},
		},

		"should publish again once the interval has passed": {
			arrange: func() inputs {
				return inputs{
					receivedEvents: []domain.EventPlayersChanged{
						{Players: []domain.Player{{ID: 1, Name: "Ada", Score: 200}}},
						{Players: []domain.Player{{ID: 1, Name: "Ada", Score: 400}}},
					},
					wait: time.Second,
				}
			},

			assert: func(t *testing.T, out outputs) {
				require.Len(t, out.publishedEvents, 2, "should receive 2 leaderboard updated event")
				assert.Equal(t, 400, out.publishedEvents[1].Leaderboard.Entries[0].Score)
			},
		},
	}

	for name, tt := range tests {
		tt := tt
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			in, out := tt.arrange(), outputs{}

			eb := event.NewBus()

			var mu sync.Mutex
			eb.Subscribe(domain.EventNameLeaderboardUpdated, func(ctx context.Context, e event.Event) error {
				mu.Lock()
				out.publishedEvents = append(out.publishedEvents, e.(domain.EventLeaderboardUpdated))
				mu.Unlock()
				return nil
			})

			rs := miniredis.RunT(t)
			s := makeService(t,
				withEventBus(eb),
				withRedis(rs),
			)

			for _, e := range in.receivedEvents {
				err := s.UpdateLeaderboard(context.Background(), e.Players)
				require.NoError(t, err)
				rs.FastForward(in.wait)
			}

			s.Stop()
			eb.Stop()

			tt.assert(t, out)
		})
	}
}

func TestService_PublishesLastChangeOfBurst(t *testing.T) {
	eb := event.NewBus()
	t.Cleanup(eb.Stop)

	var (
		mu        sync.Mutex
		published []domain.EventLeaderboardUpdated
	)
	eb.Subscribe(domain.EventNameLeaderboardUpdated, func(ctx context.Context, e event.Event) error {
		mu.Lock()
		published = append(published, e.(domain.EventLeaderboardUpdated))
		mu.Unlock()
		return nil
	})

	s := makeService(t, withEventBus(eb))

	for _, score := range []int{200, 400, 1400} {
		require.NoError(t, s.UpdateLeaderboard(context.Background(), []domain.Player{{ID: 1, Name: "Ada", Score: score}}))
	}

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(published) == 2
	}, 2*time.Second, 20*time.Millisecond, "the burst should end with a trailing publish")

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 200, published[0].Leaderboard.Entries[0].Score)
	assert.Equal(t, 1400, published[1].Leaderboard.Entries[0].Score, "trailing publish carries the latest scores")
}

func TestService_SubscribesToPlayersChanged(t *testing.T) {
	eb := event.NewBus()
	s := makeService(t, withEventBus(eb))

	eb.Publish(context.Background(), domain.EventPlayersChanged{
		Players: []domain.Player{{ID: 7, Name: "Ada", Score: 1000}},
	})
	eb.Stop()

	resp, err := s.GetLeaderboard(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []domain.LeaderboardEntry{{PlayerID: 7, Name: "Ada", Score: 1000}}, resp.Entries)
}

func makeService(t *testing.T, opts ...options) *leaderboard.Service {
	c := leaderboard.Config{
		EventBus: event.NewBus(),
		Prefix:   "test",
	}

	for _, opt := range opts {
		opt(&c)
	}

	if c.Redis == nil {
		withRedis(miniredis.RunT(t))(&c)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, c.Redis.Ping(ctx).Err(), "should be able to ping redis")

	s := leaderboard.NewService(c)
	t.Cleanup(s.Stop)

	return s
}

type options func(c *leaderboard.Config)

func withEventBus(eb *event.Bus) options {
	return func(c *leaderboard.Config) {
		c.EventBus = eb
	}
}

func withRedis(rs *miniredis.Miniredis) options {
	return func(c *leaderboard.Config) {
		c.Redis = redis.NewUniversalClient(&redis.UniversalOptions{
			Addrs: []string{rs.Addr()},
		})
	}
}
