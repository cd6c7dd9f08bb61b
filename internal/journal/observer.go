package journal

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/ai-bank/kgadmin/internal/graph"
	"github.com/ai-bank/kgadmin/internal/session"
)

// recordTimeout bounds a single journal write so a locked database cannot
// stall the session.
const recordTimeout = 5 * time.Second

// Observer records every finished session operation in a Store, tagged
// with the resident graph size at the time the operation ended.
type Observer struct {
	store       *Store
	environment string
	logger      *slog.Logger

	mu   sync.Mutex
	last graph.Stats
}

var _ session.Observer = (*Observer)(nil)

// NewObserver creates an Observer writing to store.
func NewObserver(store *Store, environment string, logger *slog.Logger) *Observer {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Observer{store: store, environment: environment, logger: logger}
}

// ObserveGraph remembers the latest resident graph size.
func (o *Observer) ObserveGraph(stats graph.Stats) {
	o.mu.Lock()
	o.last = stats
	o.mu.Unlock()
}

// ObserveOperation writes one journal entry. Write failures are logged and
// otherwise ignored.
func (o *Observer) ObserveOperation(op string, outcome session.Outcome, d time.Duration) {
	o.mu.Lock()
	stats := o.last
	o.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
	defer cancel()

	err := o.store.Record(ctx, Entry{
		Op:          op,
		Outcome:     string(outcome),
		Duration:    d,
		Environment: o.environment,
		Nodes:       stats.Nodes,
		Edges:       stats.Edges,
		StartedAt:   time.Now().Add(-d),
	})
	if err != nil {
		o.logger.Warn("failed to journal operation", "op", op, "error", err)
	}
}
