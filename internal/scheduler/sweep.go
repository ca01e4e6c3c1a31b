package scheduler

import (
	"context"
	"log"
	"time"
)

const (
	SweepJobName      = "orphan-sweep"
	DefaultSweepGrace = time.Hour
)

// OrphanSweeper removes stored images no artwork points at.
type OrphanSweeper interface {
	SweepOrphans(ctx context.Context, grace time.Duration) (int, error)
}

// SweepJob removes blobs left behind by commits that never reached the store.
type SweepJob struct {
	sweeper  OrphanSweeper
	schedule string
	grace    time.Duration
}

func NewSweepJob(sweeper OrphanSweeper, schedule string, grace time.Duration) *SweepJob {
	if grace <= 0 {
		grace = DefaultSweepGrace
	}
	return &SweepJob{sweeper: sweeper, schedule: schedule, grace: grace}
}

func (j *SweepJob) Name() string     { return SweepJobName }
func (j *SweepJob) Schedule() string { return j.schedule }

func (j *SweepJob) Run(ctx context.Context) error {
	removed, err := j.sweeper.SweepOrphans(ctx, j.grace)
	if err != nil {
		return err
	}
	log.Printf("🗑️ [%s] Removed %d orphaned images", SweepJobName, removed)
	return nil
}
