package mail

import (
	"context"
	"log"
	"strings"
)

// Message is a plain-text mail.
type Message struct {
	Subject string
	Body    string
	From    string
	To      []string
}

// Sender delivers messages to a mail transport.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// LogSender writes messages to the log instead of delivering them.
// It is used when no SMTP host is configured.
type LogSender struct{}

// Send logs the message.
func (LogSender) Send(_ context.Context, msg Message) error {
	log.Printf("[mail] from=%s to=%s subject=%q\n%s", msg.From, strings.Join(msg.To, ","), msg.Subject, msg.Body)
	return nil
}
