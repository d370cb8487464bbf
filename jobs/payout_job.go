package jobs

import (
	"context"
	"log"
)

type payoutReconciler interface {
	Reconcile(ctx context.Context) (int, error)
}

// ReconcilePayouts retries mentor transfers that failed or never started.
func ReconcilePayouts(payouts payoutReconciler) Job {
	return Job{
		Name: "reconcile-payouts",
		Run: func(ctx context.Context) {
			done, err := payouts.Reconcile(ctx)
			if err != nil {
				log.Printf("🔥 Error reconciling payouts: %v", err)
				return
			}
			if done > 0 {
				log.Printf("✅ Completed %d pending payout(s)", done)
			}
		},
	}
}
