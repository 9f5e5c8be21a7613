// Package presence tracks which players are online in one world partition.
//
// The tracker is the single writer of the players_online rows for its world.
// Every transition is idempotent: repeated mark-online or mark-offline calls
// for the same player change nothing, so reconnect races and duplicate logout
// events cannot skew the store or the gauge.
package presence

import (
	"context"
	"fmt"
	"sync"

	"go.opentelemetry.io/otel/metric"

	platformotel "github.com/duskhaven/duskhaven/internal/platform/otel"
	"github.com/duskhaven/duskhaven/internal/services/game/storage"
)

// Tracker mirrors in-memory online state to the presence store and reports
// the population through a players_online gauge.
type Tracker struct {
	store   storage.PresenceStore
	worldID uint32
	gauge   metric.Int64UpDownCounter

	mu     sync.Mutex
	online map[uint32]struct{}
}

// NewTracker builds a tracker for one world. The gauge registers against the
// global meter provider; without one it is a no-op.
func NewTracker(store storage.PresenceStore, worldID uint32) (*Tracker, error) {
	meter := platformotel.Meter("duskhaven/game/presence")
	gauge, err := meter.Int64UpDownCounter("players_online",
		metric.WithDescription("Players currently online in this world"))
	if err != nil {
		return nil, fmt.Errorf("create players_online gauge: %w", err)
	}
	return &Tracker{
		store:   store,
		worldID: worldID,
		gauge:   gauge,
		online:  make(map[uint32]struct{}),
	}, nil
}

// MarkOnline records a player as online. A zero id or an already tracked
// player is a no-op.
func (t *Tracker) MarkOnline(ctx context.Context, playerID uint32) error {
	if playerID == 0 {
		return nil
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if _, tracked := t.online[playerID]; tracked {
		return nil
	}
	if err := t.store.InsertOnline(ctx, playerID, t.worldID); err != nil {
		return fmt.Errorf("mark player %d online: %w", playerID, err)
	}
	t.online[playerID] = struct{}{}
	t.gauge.Add(ctx, 1)
	return nil
}

// MarkOffline removes a player's online record. Untracked players are a
// strict no-op: the store row is left alone so a crashed-and-restarted
// process cannot delete presence it never established.
func (t *Tracker) MarkOffline(ctx context.Context, playerID uint32) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, tracked := t.online[playerID]; !tracked {
		return nil
	}
	if err := t.store.DeleteOnline(ctx, playerID, t.worldID); err != nil {
		return fmt.Errorf("mark player %d offline: %w", playerID, err)
	}
	delete(t.online, playerID)
	t.gauge.Add(ctx, -1)
	return nil
}

// IsOnline reports whether the tracker currently holds the player online.
func (t *Tracker) IsOnline(playerID uint32) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, tracked := t.online[playerID]
	return tracked
}

// OnlineCount returns the number of tracked online players.
func (t *Tracker) OnlineCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.online)
}

// Drain marks every tracked player offline, for orderly shutdown. The first
// store failure aborts so operators see which rows survived.
func (t *Tracker) Drain(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	for playerID := range t.online {
		if err := t.store.DeleteOnline(ctx, playerID, t.worldID); err != nil {
			return fmt.Errorf("drain player %d: %w", playerID, err)
		}
		delete(t.online, playerID)
		t.gauge.Add(ctx, -1)
	}
	return nil
}
