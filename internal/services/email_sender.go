package services

// EmailSender abstracts outbound mail so handlers can be tested without a
// real SMTP server.
type EmailSender interface {
	Send(to string, subject string, body string) error
}
