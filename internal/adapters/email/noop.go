package email

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"
)

// NoopSender stands in for Resend when no API key is configured. Results
// mails and password notices are logged with their attachment names and
// dropped, so a pool-side laptop runs without a mail account.
type NoopSender struct {
	seq atomic.Int64
}

// NewNoopSender creates a NoopSender.
func NewNoopSender() *NoopSender {
	return &NoopSender{}
}

// Send logs req and reports it accepted.
// POST: each call gets a distinct "noop-N" message ID
func (s *NoopSender) Send(_ context.Context, req SendRequest) (SendResult, error) {
	n := s.seq.Add(1)
	names := make([]string, 0, len(req.Attachments))
	for _, a := range req.Attachments {
		names = append(names, a.Filename)
	}
	slog.Info("mail_dropped", "to", req.To, "subject", req.Subject, "attachments", names, "seq", n)
	return SendResult{MessageID: fmt.Sprintf("noop-%d", n), SentAt: time.Now()}, nil
}

// Dropped reports how many mails were logged instead of delivered.
func (s *NoopSender) Dropped() int64 {
	return s.seq.Load()
}
