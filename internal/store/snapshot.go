package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/victornm/jeopardy/internal/domain"
	"github.com/victornm/jeopardy/internal/errors"
	"github.com/victornm/jeopardy/internal/event"
	"github.com/victornm/jeopardy/internal/telemetry"
)

const (
	KeyCategories = "jeopardyCategories"
	KeyPlayers    = "jeopardyPlayers"
)

// Snapshot is the persistence adapter of a session: the board and the players, each under
// its own key.
type Snapshot struct {
	kv KV
}

// Data holds whatever Load could read. A nil slice means the key was absent or unreadable.
type Data struct {
	Categories []domain.Category
	Players    []domain.Player
}

func NewSnapshot(kv KV) *Snapshot {
	return &Snapshot{kv: kv}
}

// Load never fails: a missing or unparseable key leaves its field nil for the caller to default.
func (s *Snapshot) Load(ctx context.Context) Data {
	return Data{
		Categories: load[domain.Category](ctx, s.kv, KeyCategories),
		Players:    load[domain.Player](ctx, s.kv, KeyPlayers),
	}
}

func load[T any](ctx context.Context, kv KV, key string) []T {
	b, err := kv.Get(ctx, key)
	if errors.IsCode(err, errors.CodeNotFound) {
		return nil
	}
	if err != nil {
		slog.ErrorContext(ctx, "store: load snapshot failed", "key", key, "error", err)
		return nil
	}

	var v []T
	if err := json.Unmarshal(b, &v); err != nil {
		slog.WarnContext(ctx, "store: discard unparseable snapshot", "key", key, "error", err)
		return nil
	}

	return v
}

func (s *Snapshot) SaveCategories(ctx context.Context, cs []domain.Category) error {
	return s.save(ctx, KeyCategories, cs)
}

func (s *Snapshot) SavePlayers(ctx context.Context, ps []domain.Player) error {
	return s.save(ctx, KeyPlayers, ps)
}

func (s *Snapshot) save(ctx context.Context, key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("store: marshal %s: %w", key, err)
	}

	if err := s.kv.Set(ctx, key, b); err != nil {
		telemetry.PersistenceFailed(key)
		return fmt.Errorf("store: save %s: %w", key, err)
	}

	return nil
}

// Subscribe writes every board and players change through to the store, in publish order.
// Failures are logged by the bus and never reach the session.
func (s *Snapshot) Subscribe(eb *event.Bus) {
	eb.Subscribe(domain.EventNameCategoriesChanged, func(ctx context.Context, e event.Event) error {
		return s.SaveCategories(ctx, e.(domain.EventCategoriesChanged).Categories)
	})

	eb.Subscribe(domain.EventNamePlayersChanged, func(ctx context.Context, e event.Event) error {
		return s.SavePlayers(ctx, e.(domain.EventPlayersChanged).Players)
	})
}
