package jobs

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/robfig/cron/v3"
)

const jobTimeout = 2 * time.Minute

type Job struct {
	Name string
	Run  func(ctx context.Context)
}

// Schedule pairs a cron spec with a job.
type Schedule struct {
	Spec string
	Job  Job
}

// NewScheduler builds a cron runner whose jobs never overlap with their own
// previous run and recover from panics.
func NewScheduler(schedules ...Schedule) (*cron.Cron, error) {
	logger := cron.VerbosePrintfLogger(log.New(os.Stdout, "cron: ", log.LstdFlags))
	c := cron.New(cron.WithChain(
		cron.Recover(logger),
		cron.SkipIfStillRunning(logger),
	))

	for _, s := range schedules {
		if _, err := c.AddFunc(s.Spec, s.Job.timed()); err != nil {
			return nil, fmt.Errorf("schedule %s: %w", s.Job.Name, err)
		}
		log.Printf("✅ Cron job %s scheduled (%s)", s.Job.Name, s.Spec)
	}
	return c, nil
}

func (j Job) timed() func() {
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()
		j.Run(ctx)
	}
}
