package app

import (
	"context"
	"sync"
	"time"

	"labor-quiz-service/internal/domain"
)

// Scoreboard fans the ranked score list out to live subscribers. Loading and
// broadcasting happen under one lock so subscribers never see an older list
// after a newer one.
type Scoreboard struct {
	scores ScoreRepository
	now    func() time.Time

	mu          sync.Mutex
	subscribers map[chan domain.Leaderboard]struct{}
}

func NewScoreboard(scores ScoreRepository) *Scoreboard {
	return newScoreboardWithClock(scores, time.Now)
}

func newScoreboardWithClock(scores ScoreRepository, now func() time.Time) *Scoreboard {
	return &Scoreboard{
		scores:      scores,
		now:         now,
		subscribers: make(map[chan domain.Leaderboard]struct{}),
	}
}

// Subscribe returns a channel primed with the current leaderboard.
// The caller must invoke the returned cancel function to avoid leaks.
func (b *Scoreboard) Subscribe(ctx context.Context) (<-chan domain.Leaderboard, func(), error) {
	ch := make(chan domain.Leaderboard, 8)

	b.mu.Lock()
	initial, err := b.snapshotLocked(ctx)
	if err != nil {
		b.mu.Unlock()
		return nil, nil, err
	}
	b.subscribers[ch] = struct{}{}
	ch <- initial
	b.mu.Unlock()

	cancel := func() {
		b.mu.Lock()
		if _, ok := b.subscribers[ch]; ok {
			delete(b.subscribers, ch)
			close(ch)
		}
		b.mu.Unlock()
	}
	return ch, cancel, nil
}

// Refresh reloads the ranking and pushes it to every subscriber.
func (b *Scoreboard) Refresh(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.subscribers) == 0 {
		return nil
	}
	lb, err := b.snapshotLocked(ctx)
	if err != nil {
		return err
	}
	for ch := range b.subscribers {
		select {
		case ch <- lb:
		default:
			// slow subscriber: replace its stale update with the latest one
			select {
			case <-ch:
			default:
			}
			ch <- lb
		}
	}
	return nil
}

func (b *Scoreboard) snapshotLocked(ctx context.Context) (domain.Leaderboard, error) {
	entries, err := b.scores.List(ctx)
	if err != nil {
		return domain.Leaderboard{}, err
	}
	return domain.Leaderboard{Entries: entries, UpdatedAt: b.now()}, nil
}
