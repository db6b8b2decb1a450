/*
Copyright (C) 2026 Drerries Community

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package voice

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/drerries/wantedboard/internal/events"
)

// Refresher keeps a cached statistics snapshot and recomputes it whenever a
// session opens or closes. The aggregation itself stays pure; this is the
// explicit refresh trigger around it.
type Refresher struct {
	service *Service
	broker  events.Broker
	logger  zerolog.Logger

	mu      sync.RWMutex
	current Snapshot
	primed  bool
}

// NewRefresher creates a refresher over the service's statistics.
func NewRefresher(service *Service, broker events.Broker, logger zerolog.Logger) *Refresher {
	return &Refresher{
		service: service,
		broker:  broker,
		logger:  logger.With().Str("component", "voice_refresher").Logger(),
	}
}

// Run subscribes to session events and recomputes the snapshot on each,
// blocking until ctx is cancelled.
func (r *Refresher) Run(ctx context.Context) {
	joins := r.broker.Subscribe(events.EventVoiceJoin)
	leaves := r.broker.Subscribe(events.EventVoiceLeave)
	defer r.broker.Unsubscribe(events.EventVoiceJoin, joins)
	defer r.broker.Unsubscribe(events.EventVoiceLeave, leaves)

	r.recompute(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-joins:
			r.recompute(ctx)
		case <-leaves:
			r.recompute(ctx)
		}
	}
}

// Snapshot returns the cached statistics, computing them on first use.
func (r *Refresher) Snapshot(ctx context.Context) (Snapshot, error) {
	r.mu.RLock()
	if r.primed {
		snap := r.current
		r.mu.RUnlock()
		return snap, nil
	}
	r.mu.RUnlock()

	snap, err := r.service.Stats(ctx, DefaultFetchLimit)
	if err != nil {
		return Snapshot{}, err
	}
	r.store(snap)
	return snap, nil
}

func (r *Refresher) recompute(ctx context.Context) {
	snap, err := r.service.Stats(ctx, DefaultFetchLimit)
	if err != nil {
		r.logger.Error().Err(err).Msg("stats recompute failed")
		return
	}
	r.store(snap)
}

func (r *Refresher) store(snap Snapshot) {
	r.mu.Lock()
	r.current = snap
	r.primed = true
	r.mu.Unlock()
}
