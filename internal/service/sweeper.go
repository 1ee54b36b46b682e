package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/templui/showcase/internal/db"
	"github.com/templui/showcase/internal/model"
	"github.com/templui/showcase/internal/repository"
	"github.com/templui/showcase/internal/storage"
)

const sweepBatchSize = 500

type SweepResult struct {
	Scanned   int           `json:"scanned"`
	Reclaimed int           `json:"reclaimedCount"`
	Failed    int           `json:"failed"`
	Duration  time.Duration `json:"-"`
}

// Sweeper reclaims uploads that were never claimed by an entity within the
// grace period. Attached media is never touched, whatever its age.
type Sweeper struct {
	db        *sqlx.DB
	mediaRepo repository.MediaRepository
	host      storage.MediaHost
	grace     time.Duration
	now       func() time.Time
}

func NewSweeper(db *sqlx.DB, mediaRepo repository.MediaRepository, host storage.MediaHost, grace time.Duration) *Sweeper {
	return &Sweeper{
		db:        db,
		mediaRepo: mediaRepo,
		host:      host,
		grace:     grace,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// RunOnce performs one full pass. Per-item failures are logged and counted;
// an error is returned only when the registry cannot be queried.
func (s *Sweeper) RunOnce(ctx context.Context) (SweepResult, error) {
	start := time.Now()
	sweeperRunsTotal.Inc()

	cutoff := s.now().Add(-s.grace)
	var result SweepResult
	defer func() {
		result.Duration = time.Since(start)
		sweeperDuration.Observe(result.Duration.Seconds())
	}()

	// Failed rows stay pending and would be returned again; skip past them.
	failed := make(map[string]bool)
	for {
		batch, err := s.mediaRepo.ExpiredPending(ctx, cutoff, sweepBatchSize+len(failed))
		if err != nil {
			return result, fmt.Errorf("failed to query expired media: %w", err)
		}

		progressed := false
		for _, media := range batch {
			if failed[media.ID] {
				continue
			}
			if ctx.Err() != nil {
				return result, nil
			}
			progressed = true
			result.Scanned++

			reclaimed, err := s.reclaim(ctx, media, cutoff)
			if err != nil {
				failed[media.ID] = true
				result.Failed++
				sweeperFailuresTotal.Inc()
				slog.Error("failed to reclaim orphaned media",
					"error", err,
					"media_id", media.ID,
					"storage_id", media.StorageID,
				)
				continue
			}
			if reclaimed {
				result.Reclaimed++
				sweeperReclaimedTotal.Inc()
			}
		}

		if !progressed || len(batch) < sweepBatchSize+len(failed) {
			break
		}
	}

	slog.Info("orphan sweep finished",
		"scanned", result.Scanned,
		"reclaimed", result.Reclaimed,
		"failed", result.Failed,
		"cutoff", cutoff,
	)
	return result, nil
}

// reclaim removes one expired upload inside its own transaction. The row is
// deleted first, conditional on still being pending, so the write lock is held
// before the host is touched and a claim racing the remote delete must wait
// for this transaction. A host failure rolls the row back.
func (s *Sweeper) reclaim(ctx context.Context, candidate *model.Media, cutoff time.Time) (bool, error) {
	reclaimed := false

	err := db.WithTx(ctx, s.db, func(tx *sqlx.Tx) error {
		media, err := s.mediaRepo.WithTx(tx).DeletePending(ctx, candidate.ID, cutoff)
		if errors.Is(err, repository.ErrMediaNotFound) {
			slog.Debug("media no longer reclaimable, skipping", "media_id", candidate.ID)
			return nil
		}
		if err != nil {
			return err
		}

		err = s.host.Delete(ctx, media.StorageID)
		if err != nil && !errors.Is(err, storage.ErrObjectNotFound) {
			return fmt.Errorf("failed to delete from media host: %w", err)
		}

		reclaimed = true
		return nil
	})

	return reclaimed, err
}
