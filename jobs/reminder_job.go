package jobs

import (
	"context"
	"log"
)

type reminderSender interface {
	SendReminders(ctx context.Context) (int, error)
}

// SessionReminders emails and messages both sides of confirmed sessions
// that start within the next hour. Each session is reminded once.
func SessionReminders(sessions reminderSender) Job {
	return Job{
		Name: "session-reminders",
		Run: func(ctx context.Context) {
			sent, err := sessions.SendReminders(ctx)
			if err != nil {
				log.Printf("🔥 Error sending session reminders: %v", err)
				return
			}
			if sent > 0 {
				log.Printf("✅ Sent reminders for %d session(s)", sent)
			}
		},
	}
}
