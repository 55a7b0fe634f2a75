package services

import "fmt"

type EmailSender interface {
	Send(to string, subject string, body string) error
}

// SendPasswordResetEmail renders the reset message around the raw token URL.
// The link is the only secret in the message; the mail transport is whatever
// EmailSender implementation the caller wired in.
func SendPasswordResetEmail(mailer EmailSender, to string, resetURL string) error {
	subject := "Reset your password"
	body := fmt.Sprintf(
		"You requested a password reset for your portfolio account.\r\n\r\n"+
			"Open this link to set a new password. It expires in 1 hour:\r\n\r\n"+
			"%s\r\n\r\n"+
			"If you didn't request this, you can safely ignore this email.\r\n",
		resetURL,
	)
	return mailer.Send(to, subject, body)
}
