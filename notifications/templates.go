package notifications

import (
	"fmt"
	"html"
	"time"
)

// Notice is one notification rendered for both channels.
type Notice struct {
	Subject string
	HTML    string
	Text    string
}

const timeLayout = "Mon, 02 Jan 2006 15:04 MST"

// FormatAmount renders minor units as a major-unit amount, e.g. 150000 INR -> "INR 1500.00".
func FormatAmount(minor int64, currency string) string {
	sign := ""
	if minor < 0 {
		sign = "-"
		minor = -minor
	}
	return fmt.Sprintf("%s %s%d.%02d", currency, sign, minor/100, minor%100)
}

func NewMessageNotice(senderName, preview, link string) Notice {
	if len(preview) > 140 {
		preview = preview[:140] + "..."
	}
	return Notice{
		Subject: fmt.Sprintf("New message from %s", senderName),
		HTML: fmt.Sprintf("<h1>You have a new message</h1><p><b>%s</b> wrote:</p><blockquote>%s</blockquote><p><a href='%s'>Reply</a></p>",
			html.EscapeString(senderName), html.EscapeString(preview), html.EscapeString(link)),
		Text: fmt.Sprintf("New message from %s: %s", senderName, preview),
	}
}

func SessionRequestedNotice(menteeName, topic string, start time.Time) Notice {
	return Notice{
		Subject: "New session request",
		HTML: fmt.Sprintf("<h1>New Session Request</h1><p>%s has requested a session on <b>%s</b> starting %s.</p><p>It will be confirmed once payment is completed.</p>",
			html.EscapeString(menteeName), html.EscapeString(topic), start.UTC().Format(timeLayout)),
		Text: fmt.Sprintf("%s requested a session on %s at %s.", menteeName, topic, start.UTC().Format(timeLayout)),
	}
}

func PaymentConfirmedNotice(topic string, start time.Time, amount int64, currency string) Notice {
	return Notice{
		Subject: "Session confirmed: payment received",
		HTML: fmt.Sprintf("<h1>Payment Received</h1><p>Your session on <b>%s</b> starting %s is confirmed.</p><p>Amount paid: %s</p>",
			html.EscapeString(topic), start.UTC().Format(timeLayout), FormatAmount(amount, currency)),
		Text: fmt.Sprintf("Payment of %s received. Your session on %s at %s is confirmed.",
			FormatAmount(amount, currency), topic, start.UTC().Format(timeLayout)),
	}
}

func SessionReminderNotice(topic string, start time.Time, meetingLink *string) Notice {
	link := "The meeting link will be shared by your mentor."
	if meetingLink != nil && *meetingLink != "" {
		link = fmt.Sprintf("<b>Meeting Link:</b> <a href='%s'>Join Session</a>", html.EscapeString(*meetingLink))
	}
	return Notice{
		Subject: "Reminder: Your Session Starts in 1 Hour!",
		HTML: fmt.Sprintf("<h1>Session Reminder</h1><p>Hi there,</p><p>This is a friendly reminder that your session on <b>%s</b> starts at %s.</p><p>%s</p>",
			html.EscapeString(topic), start.UTC().Format(timeLayout), link),
		Text: fmt.Sprintf("Reminder: your session on %s starts at %s.", topic, start.UTC().Format(timeLayout)),
	}
}

func SessionCancelledNotice(topic string, start time.Time) Notice {
	return Notice{
		Subject: "Session cancelled",
		HTML: fmt.Sprintf("<h1>Session Cancelled</h1><p>The session on <b>%s</b> scheduled for %s has been cancelled.</p>",
			html.EscapeString(topic), start.UTC().Format(timeLayout)),
		Text: fmt.Sprintf("The session on %s at %s has been cancelled.", topic, start.UTC().Format(timeLayout)),
	}
}

func PasswordResetNotice(resetLink string) Notice {
	return Notice{
		Subject: "Reset your password",
		HTML: fmt.Sprintf("<h1>Password Reset</h1><p>Click the link below to choose a new password. The link expires in 15 minutes.</p><p><a href='%s'>Reset Password</a></p>",
			html.EscapeString(resetLink)),
		Text: "Use the link in your email to reset your password.",
	}
}

func InterestReceivedNotice(menteeName, message string) Notice {
	return Notice{
		Subject: fmt.Sprintf("%s wants you as a mentor", menteeName),
		HTML: fmt.Sprintf("<h1>New Mentorship Request</h1><p><b>%s</b> is interested in your mentorship.</p><blockquote>%s</blockquote>",
			html.EscapeString(menteeName), html.EscapeString(message)),
		Text: fmt.Sprintf("%s is interested in your mentorship.", menteeName),
	}
}

func InterestRespondedNotice(mentorName, status string) Notice {
	return Notice{
		Subject: fmt.Sprintf("Your mentorship request was %s", status),
		HTML: fmt.Sprintf("<h1>Mentorship Request Update</h1><p>%s has %s your request.</p>",
			html.EscapeString(mentorName), html.EscapeString(status)),
		Text: fmt.Sprintf("%s has %s your mentorship request.", mentorName, status),
	}
}
