package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	sweeperRunsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "showcase_sweeper_runs_total",
		Help: "Total number of orphan sweeper runs",
	})

	sweeperReclaimedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "showcase_sweeper_reclaimed_total",
		Help: "Total number of pending media records reclaimed by the sweeper",
	})

	sweeperFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "showcase_sweeper_failures_total",
		Help: "Total number of pending media records the sweeper failed to reclaim",
	})

	sweeperDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "showcase_sweeper_duration_seconds",
		Help:    "Duration of orphan sweeper runs",
		Buckets: prometheus.DefBuckets,
	})

	mediaClaimedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "showcase_media_claimed_total",
		Help: "Total number of media records moved from pending to attached",
	})

	mediaReleasedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "showcase_media_released_total",
		Help: "Total number of media records deleted after losing their last reference",
	})

	mediaRemoteDeleteFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "showcase_media_remote_delete_failures_total",
		Help: "Remote object deletions that failed after the registry row was gone",
	}, []string{"path"})
)
