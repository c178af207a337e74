package storage

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"github.com/imankii01/docuflow/internal/store"
)

// A version upload writes the artifact before the ledger row, so a
// failed insert leaves an object no row references. The sweep deletes
// those orphans out of band instead of compensating synchronously.

type objectLister interface {
	List(ctx context.Context, prefix string) ([]ObjectInfo, error)
	Remove(ctx context.Context, key string) error
}

type ledgerReader interface {
	ListStoredObjects(ctx context.Context) ([]store.StoredObjectRef, error)
}

type Sweeper struct {
	objects objectLister
	ledger  ledgerReader
	// Objects younger than grace are skipped: they may belong to an
	// upload whose row insert has not happened yet.
	grace time.Duration
}

func NewSweeper(objects objectLister, ledger ledgerReader) *Sweeper {
	return &Sweeper{objects: objects, ledger: ledger, grace: time.Hour}
}

// Sweep removes every stored object older than the grace period that no
// version row references. Returns the number of objects removed.
func (s *Sweeper) Sweep(ctx context.Context) (int, error) {
	refs, err := s.ledger.ListStoredObjects(ctx)
	if err != nil {
		return 0, err
	}
	referenced := make(map[string]struct{}, len(refs))
	for _, ref := range refs {
		referenced[ref.StorageKey] = struct{}{}
	}

	objects, err := s.objects.List(ctx, "doc/")
	if err != nil {
		return 0, err
	}

	cutoff := time.Now().Add(-s.grace)
	removed := 0
	for _, object := range objects {
		if _, ok := referenced[object.Key]; ok {
			continue
		}
		if object.LastModified.After(cutoff) {
			continue
		}
		if err := s.objects.Remove(ctx, object.Key); err != nil {
			log.Warn().Err(err).Str("key", object.Key).Msg("sweep: remove orphan failed")
			continue
		}
		removed++
	}
	return removed, nil
}

// Schedule runs the sweep on the given cron schedule until the returned
// cron is stopped.
func (s *Sweeper) Schedule(schedule string) (*cron.Cron, error) {
	c := cron.New()
	_, err := c.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()
		removed, err := s.Sweep(ctx)
		if err != nil {
			log.Error().Err(err).Msg("sweep failed")
			return
		}
		if removed > 0 {
			log.Info().Int("removed", removed).Msg("sweep reclaimed orphaned artifacts")
		}
	})
	if err != nil {
		return nil, err
	}
	c.Start()
	return c, nil
}
