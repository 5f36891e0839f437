package orchestrators

import (
	"context"
	"fmt"
	"log/slog"

	"swimtrack/internal/adapters/email"
	"swimtrack/internal/domain/competition"
)

// ResultsNotifier mails a rendered results report.
type ResultsNotifier interface {
	Enabled(kind string) bool
	CompetitionResult(ctx context.Context, to, competitionName, filename string, pdf []byte) error
}

// NotifyResultsDeps holds dependencies for NotifyResults.
type NotifyResultsDeps struct {
	AccountStore AccountReader
	Notifier     ResultsNotifier
	// RenderResults returns the PDF bytes and a download filename.
	RenderResults func(ctx context.Context, competitionID string) ([]byte, string, error)
}

// ExecuteNotifyResults e-mails the results PDF to the competition's organizer.
// PRE: competition has finished
// POST: mail sent, or skipped when the toggle is off
func ExecuteNotifyResults(ctx context.Context, comp competition.Competition, deps NotifyResultsDeps) error {
	if deps.Notifier == nil || !deps.Notifier.Enabled(email.KindCompetitionResult) {
		return nil
	}
	if !comp.IsFinished() {
		return fmt.Errorf("competition %s has not finished", comp.ID)
	}
	org, err := deps.AccountStore.GetByID(ctx, comp.OrganizerID)
	if err != nil {
		return lookup("Organizer", err)
	}

	pdf, filename, err := deps.RenderResults(ctx, comp.ID)
	if err != nil {
		return fmt.Errorf("render results: %w", err)
	}
	if err := deps.Notifier.CompetitionResult(ctx, org.Login, comp.Name, filename, pdf); err != nil {
		return fmt.Errorf("mail results: %w", err)
	}
	slog.Info("competition_event", "event", "results_mailed", "competition_id", comp.ID, "to", org.Login, "bytes", len(pdf))
	return nil
}
