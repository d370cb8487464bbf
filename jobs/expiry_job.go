package jobs

import (
	"context"
	"log"
)

type staleExpirer interface {
	ExpireStale(ctx context.Context) (int64, error)
}

// ExpireUnpaidSessions cancels sessions whose start time passed before
// they were paid for, freeing the mentor's slot.
func ExpireUnpaidSessions(sessions staleExpirer) Job {
	return Job{
		Name: "expire-unpaid-sessions",
		Run: func(ctx context.Context) {
			n, err := sessions.ExpireStale(ctx)
			if err != nil {
				log.Printf("🔥 Error expiring unpaid sessions: %v", err)
				return
			}
			if n > 0 {
				log.Printf("Cancelled %d unpaid session(s) past their start time", n)
			}
		},
	}
}
