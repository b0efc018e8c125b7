package leaderboard

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/victornm/jeopardy/internal/domain"
	"github.com/victornm/jeopardy/internal/errors"
	"github.com/victornm/jeopardy/internal/event"
)

const (
	publishInterval = 200 * time.Millisecond
)

type Config struct {
	EventBus *event.Bus
	Redis    redis.UniversalClient
	Prefix   string
}

// Service mirrors player scores into a Redis sorted set so any instance can serve the
// standings.
type Service struct {
	eb     *event.Bus
	redis  redis.UniversalClient
	prefix string

	mu       sync.Mutex
	trailing *time.Timer
	stopped  bool
}

func NewService(c Config) *Service {
	s := &Service{
		eb:     c.EventBus,
		redis:  c.Redis,
		prefix: c.Prefix,
	}

	s.eb.Subscribe(domain.EventNamePlayersChanged, func(ctx context.Context, e event.Event) error {
		return s.UpdateLeaderboard(ctx, e.(domain.EventPlayersChanged).Players)
	})

	return s
}

// GetLeaderboard returns every player sorted by score, highest first.
func (s *Service) GetLeaderboard(ctx context.Context) (*domain.Leaderboard, error) {
	res, err := s.redis.ZRevRangeWithScores(ctx, s.getLeaderboardKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("get leaderboard: %w", err)
	}

	if len(res) == 0 {
		return nil, errors.New(errors.CodeNotFound, errors.WithMessagef("leaderboard not found"))
	}

	ids := make([]string, 0, len(res))
	for _, z := range res {
		ids = append(ids, z.Member.(string))
	}

	names, err := s.redis.HMGet(ctx, s.getNamesKey(), ids...).Result()
	if err != nil {
		return nil, fmt.Errorf("get player names: %w", err)
	}

	entries := make([]domain.LeaderboardEntry, 0, len(res))
	for i, z := range res {
		id, err := strconv.Atoi(ids[i])
		if err != nil {
			return nil, fmt.Errorf("parse player id %q: %w", ids[i], err)
		}

		name, _ := names[i].(string)
		entries = append(entries, domain.LeaderboardEntry{
			PlayerID: id,
			Name:     name,
			Score:    int(z.Score),
		})
	}

	return &domain.Leaderboard{Entries: entries}, nil
}

// UpdateLeaderboard replaces the standings with the given players.
func (s *Service) UpdateLeaderboard(ctx context.Context, ps []domain.Player) error {
	_, err := s.redis.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Del(ctx, s.getLeaderboardKey(), s.getNamesKey())
		if len(ps) == 0 {
			return nil
		}

		zs := make([]redis.Z, 0, len(ps))
		names := make(map[string]any, len(ps))
		for _, pl := range ps {
			id := strconv.Itoa(pl.ID)
			zs = append(zs, redis.Z{Score: float64(pl.Score), Member: id})
			names[id] = pl.Name
		}

		p.ZAdd(ctx, s.getLeaderboardKey(), zs...)
		p.HSet(ctx, s.getNamesKey(), names)
		return nil
	})
	if err != nil {
		return fmt.Errorf("update leaderboard: %w", err)
	}

	if len(ps) == 0 {
		return nil
	}

	return s.schedulePublishLeaderboard(ctx)
}

// Stop cancels a pending trailing publish. Call it before stopping the event bus.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopped = true
	if s.trailing != nil {
		s.trailing.Stop()
		s.trailing = nil
	}
}

// schedulePublishLeaderboard publishes at most one leaderboard.updated per interval across
// all instances sharing the Redis prefix. A change that falls inside the interval is published
// when the interval ends.
func (s *Service) schedulePublishLeaderboard(ctx context.Context) error {
	now := time.Now().UnixMilli()
	ok, err := s.redis.SetNX(ctx, s.getLeaderboardTimeKey(), now, publishInterval).Result()
	if err != nil {
		return fmt.Errorf("setnx: %w", err)
	}

	if !ok {
		s.scheduleTrailingPublish(context.WithoutCancel(ctx))
		return nil
	}

	return s.publishLeaderboard(ctx)
}

func (s *Service) scheduleTrailingPublish(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped || s.trailing != nil {
		return
	}

	s.trailing = time.AfterFunc(publishInterval, func() {
		s.mu.Lock()
		defer s.mu.Unlock()

		if s.stopped {
			return
		}
		s.trailing = nil

		if err := s.publishLeaderboard(ctx); err != nil {
			slog.ErrorContext(ctx, "leaderboard: trailing publish failed", "error", err)
		}
	})
}

func (s *Service) publishLeaderboard(ctx context.Context) error {
	l, err := s.GetLeaderboard(ctx)
	if err != nil {
		return fmt.Errorf("get leaderboard failed: %w", err)
	}

	s.eb.Publish(ctx, domain.EventLeaderboardUpdated{
		Leaderboard: *l,
	})

	return nil
}

func (s *Service) getLeaderboardKey() string {
	return fmt.Sprintf("%s:leaderboard", s.prefix)
}

func (s *Service) getNamesKey() string {
	return fmt.Sprintf("%s:leaderboard:names", s.prefix)
}

func (s *Service) getLeaderboardTimeKey() string {
	return fmt.Sprintf("%s:leaderboard:time", s.prefix)
}
