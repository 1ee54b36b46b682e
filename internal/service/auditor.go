package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/templui/showcase/internal/repository"
	"github.com/templui/showcase/internal/storage"
)

const auditBatchSize = 200

type AuditResult struct {
	Listed  int      `json:"listed"`
	Deleted int      `json:"deletedCount"`
	Failed  int      `json:"failed"`
	Keys    []string `json:"keys,omitempty"`
}

// Auditor diffs the media host against the registry and removes objects that
// have no registry row. It covers files whose row was released while the
// remote delete failed, which the Sweeper cannot see.
type Auditor struct {
	mediaRepo repository.MediaRepository
	host      storage.MediaHost
	grace     time.Duration
	now       func() time.Time
}

func NewAuditor(mediaRepo repository.MediaRepository, host storage.MediaHost, grace time.Duration) *Auditor {
	return &Auditor{
		mediaRepo: mediaRepo,
		host:      host,
		grace:     grace,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Run lists every object under the media prefix. Objects younger than the
// grace period are left alone since their upload may not be registered yet.
// With dryRun set, unknown keys are reported but not deleted.
func (a *Auditor) Run(ctx context.Context, dryRun bool) (AuditResult, error) {
	var result AuditResult
	cutoff := a.now().Add(-a.grace)

	var batch []string
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		known, err := a.mediaRepo.KnownStorageIDs(ctx, batch)
		if err != nil {
			return fmt.Errorf("failed to look up storage ids: %w", err)
		}
		for _, key := range batch {
			if known[key] {
				continue
			}
			result.Keys = append(result.Keys, key)
			if dryRun {
				continue
			}
			err := a.host.Delete(ctx, key)
			if err != nil && !errors.Is(err, storage.ErrObjectNotFound) {
				result.Failed++
				slog.Error("failed to delete unregistered object", "error", err, "storage_id", key)
				continue
			}
			result.Deleted++
		}
		batch = batch[:0]
		return nil
	}

	err := a.host.List(ctx, storage.Prefix, func(obj storage.ObjectInfo) error {
		result.Listed++
		if !storage.OwnsKey(obj.Key) || !obj.LastModified.Before(cutoff) {
			return nil
		}
		batch = append(batch, obj.Key)
		if len(batch) >= auditBatchSize {
			return flush()
		}
		return nil
	})
	if err != nil {
		return result, err
	}

	err = flush()
	if err != nil {
		return result, err
	}

	slog.Info("storage audit finished",
		"listed", result.Listed,
		"unregistered", len(result.Keys),
		"deleted", result.Deleted,
		"failed", result.Failed,
		"dry_run", dryRun,
	)
	return result, nil
}
