package api

import (
	"context"
	"encoding/json"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/victornm/jeopardy/internal/domain"
)

const maxConcurrent = 100

type (
	Notification struct {
		Event string `json:"event"`
		Data  any    `json:"data"`
	}

	Standing struct {
		Rank        int                `json:"rank"`
		Score       int                `json:"score"`
		Leaderboard domain.Leaderboard `json:"leaderboard"`
	}
)

// PublishStateChanged broadcasts the new session state on the board channel.
func (a *API) PublishStateChanged(ctx context.Context, e domain.EventStateChanged) error {
	return a.publishNotification(ctx, a.boardChannel(), e.Name(), e.State)
}

// PublishLeaderboardUpdated sends every player their own standing on their channel.
func (a *API) PublishLeaderboardUpdated(ctx context.Context, e domain.EventLeaderboardUpdated) error {
	l := e.Leaderboard

	var eg errgroup.Group
	eg.SetLimit(maxConcurrent)

	for i, entry := range l.Entries {
		eg.Go(func() error {
			return a.publishNotification(ctx, a.playerChannel(entry.PlayerID), e.Name(), Standing{
				Rank:        i + 1,
				Score:       entry.Score,
				Leaderboard: l,
			})
		})
	}

	return eg.Wait()
}

func (a *API) publishNotification(ctx context.Context, channel, event string, data any) error {
	n := Notification{
		Event: event,
		Data:  data,
	}

	b, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("pubsub: marshal %s: %v", event, err)
	}

	return a.redis.Publish(ctx, channel, b).Err()
}

func (a *API) boardChannel() string {
	return fmt.Sprintf("%s:board", a.prefix)
}

func (a *API) playerChannel(id int) string {
	return fmt.Sprintf("%s:player:%d", a.prefix, id)
}
