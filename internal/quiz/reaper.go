package quiz

import (
	"context"
	"log"
	"time"
)

// Reaper expires sessions that stopped sending heartbeats and evicts
// archived terminal sessions from memory. Expiry is silent; the client
// discovers it on its next request.
type Reaper struct {
	store    Store
	archive  Archiver // may be nil
	timeout  time.Duration
	interval time.Duration
}

func NewReaper(store Store, archive Archiver, timeout, interval time.Duration) *Reaper {
	return &Reaper{store: store, archive: archive, timeout: timeout, interval: interval}
}

// Run sweeps on a fixed interval until ctx is cancelled.
func (r *Reaper) Run(ctx context.Context) {
	t := time.NewTicker(r.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			r.Sweep(ctx, now)
		}
	}
}

// Sweep runs one pass: expire idle active sessions, then drop terminal
// sessions that have sat in memory past the timeout (they live on in the
// archive).
func (r *Reaper) Sweep(ctx context.Context, now time.Time) {
	cutoff := now.Add(-r.timeout)

	for _, s := range r.store.ExpireIdle(cutoff, now) {
		log.Printf("quiz: session %s expired after %s of inactivity", s.ID, r.timeout)
		if r.archive != nil {
			if err := r.archive.SaveTerminal(ctx, s); err != nil {
				log.Printf("quiz: archiving expired session %s failed: %v", s.ID, err)
			}
			if err := r.archive.AppendEvent(ctx, "SessionExpired", s.ID, map[string]any{"answered": s.Answered()}); err != nil {
				log.Printf("quiz: appending SessionExpired event for %s failed: %v", s.ID, err)
			}
		}
	}

	for _, id := range r.store.PruneTerminal(cutoff) {
		log.Printf("quiz: session %s evicted from memory", id)
	}
}
