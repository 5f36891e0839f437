package email

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"log/slog"
	"time"

	"github.com/avast/retry-go/v4"
)

// Notification kinds, used as log attributes and for toggles.
const (
	KindOrganizerRegistration = "organizer_registration"
	KindPasswordReset         = "password_reset"
	KindCompetitionResult     = "competition_result"
)

// Defaults for delivery retries.
const (
	DefaultAttempts = 3
	DefaultDelay    = 500 * time.Millisecond
)

// Toggles switches individual notification mails on or off.
type Toggles struct {
	OrganizerRegistration bool
	PasswordReset         bool
	CompetitionResult     bool
}

// NotifierConfig configures a Notifier.
type NotifierConfig struct {
	From     string
	ReplyTo  string
	Toggles  Toggles
	Attempts uint
	Delay    time.Duration
}

// Notifier sends the application's transactional mails through a Sender,
// retrying transient delivery failures.
type Notifier struct {
	sender Sender
	cfg    NotifierConfig
}

// NewNotifier wraps sender. Zero Attempts or Delay fall back to the defaults.
// PRE: sender is non-nil
// POST: Returns a ready-to-use notifier
func NewNotifier(sender Sender, cfg NotifierConfig) *Notifier {
	if cfg.Attempts == 0 {
		cfg.Attempts = DefaultAttempts
	}
	if cfg.Delay == 0 {
		cfg.Delay = DefaultDelay
	}
	return &Notifier{sender: sender, cfg: cfg}
}

// Enabled reports whether the notification kind is switched on.
func (n *Notifier) Enabled(kind string) bool {
	switch kind {
	case KindOrganizerRegistration:
		return n.cfg.Toggles.OrganizerRegistration
	case KindPasswordReset:
		return n.cfg.Toggles.PasswordReset
	case KindCompetitionResult:
		return n.cfg.Toggles.CompetitionResult
	}
	return false
}

var (
	welcomeTpl = template.Must(template.New("welcome").Parse(
		`<p>Hi {{.Name}},</p><p>Your SwimTrack organizer account <strong>{{.Login}}</strong> is ready. You can now create competitions and invite referees.</p>`))
	resetTpl = template.Must(template.New("reset").Parse(
		`<p>Hi {{.Name}},</p><p>The password for your SwimTrack account <strong>{{.Login}}</strong> was reset by an administrator. Ask them for the new password and change it after signing in.</p>`))
	resultTpl = template.Must(template.New("result").Parse(
		`<p>{{.Competition}} has finished.</p><p>The results report is attached.</p>`))
)

// OrganizerRegistered sends the welcome mail to a newly registered organizer.
// PRE: login is an e-mail address
// POST: mail delivered, skipped when toggled off, or error after all attempts
func (n *Notifier) OrganizerRegistered(ctx context.Context, login, name string) error {
	if !n.Enabled(KindOrganizerRegistration) {
		return nil
	}
	body, err := render(welcomeTpl, map[string]string{"Name": name, "Login": login})
	if err != nil {
		return err
	}
	return n.deliver(ctx, KindOrganizerRegistration, SendRequest{
		To:      []string{login},
		Subject: "Welcome to SwimTrack",
		HTML:    body,
	})
}

// PasswordReset tells an account holder their password was reset.
// The new password itself is never mailed.
func (n *Notifier) PasswordReset(ctx context.Context, login, name string) error {
	if !n.Enabled(KindPasswordReset) {
		return nil
	}
	body, err := render(resetTpl, map[string]string{"Name": name, "Login": login})
	if err != nil {
		return err
	}
	return n.deliver(ctx, KindPasswordReset, SendRequest{
		To:      []string{login},
		Subject: "Your SwimTrack password was reset",
		HTML:    body,
	})
}

// CompetitionResult mails the results PDF to the organizer.
// PRE: pdf is the rendered report
// POST: mail delivered with one attachment, skipped when toggled off, or error
func (n *Notifier) CompetitionResult(ctx context.Context, to, competitionName, filename string, pdf []byte) error {
	if !n.Enabled(KindCompetitionResult) {
		return nil
	}
	body, err := render(resultTpl, map[string]string{"Competition": competitionName})
	if err != nil {
		return err
	}
	return n.deliver(ctx, KindCompetitionResult, SendRequest{
		To:          []string{to},
		Subject:     fmt.Sprintf("Results: %s", competitionName),
		HTML:        body,
		Attachments: []Attachment{{Filename: filename, Content: pdf}},
	})
}

func (n *Notifier) deliver(ctx context.Context, kind string, req SendRequest) error {
	if req.From == "" {
		req.From = n.cfg.From
	}
	if req.ReplyTo == "" {
		req.ReplyTo = n.cfg.ReplyTo
	}
	err := retry.Do(func() error {
		_, err := n.sender.Send(ctx, req)
		return err
	},
		retry.Context(ctx),
		retry.Attempts(n.cfg.Attempts),
		retry.Delay(n.cfg.Delay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(attempt uint, err error) {
			slog.Warn("notification_retry", "kind", kind, "attempt", attempt+1, "error", err)
		}),
	)
	if err != nil {
		return fmt.Errorf("send %s notification: %w", kind, err)
	}
	slog.Info("notification_event", "event", "notification_sent", "kind", kind, "to", req.To)
	return nil
}

func render(tpl *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := tpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render %s mail: %w", tpl.Name(), err)
	}
	return buf.String(), nil
}
