package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/pistat/pistat/internal/collector"
	"github.com/pistat/pistat/internal/creds"
	"github.com/pistat/pistat/internal/logging"
	"github.com/pistat/pistat/internal/notify"
	"github.com/pistat/pistat/internal/report"
)

// quotaCmd shows the per-model quota dashboard. The antigravity alias exists
// because that is what the provider is called in the auth file; both names
// run the same handler.
var quotaCmd = &cobra.Command{
	Use:     "quota",
	Aliases: []string{"antigravity", "q"},
	Short:   "Show remaining per-model quota",
	Long: `Fetch the current rate-limit quota for every model available on the
Antigravity provider and print a usage report grouped by model family.

The command reads the pi agent's stored credentials, makes a single bounded
request to the quota endpoint, and renders the result. Nothing is cached or
persisted; run it again for fresh numbers.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		runQuotaReport(defaultQuotaDeps())
	},
}

// quotaDeps are the collaborators of the quota command, injectable in tests.
type quotaDeps struct {
	load  func() *creds.Credential
	fetch func(ctx context.Context, token, projectID string) (*collector.QuotaResponse, error)
	sink  notify.Notifier
	now   func() time.Time
	log   *logging.Logger
}

func defaultQuotaDeps() quotaDeps {
	level := logging.LevelError
	if globalFlags.Verbose {
		level = logging.LevelDebug
	}
	log := logging.NewLogger(logging.WithLevel(level))

	var sink notify.Notifier = notify.NewTerminalNotifier()
	if tg := notify.TelegramFromEnv(); tg != nil {
		sink = notify.MultiNotifier{sink, tg}
	}

	fetcher := collector.NewFetcher(log)
	return quotaDeps{
		load:  creds.Load,
		fetch: fetcher.Fetch,
		sink:  sink,
		now:   time.Now,
		log:   log,
	}
}

// runQuotaReport sequences credential loading, the quota fetch, and
// rendering. Every failure mode ends in a notification; nothing escapes to
// the caller, including panics.
func runQuotaReport(d quotaDeps) {
	ctx := logging.WithCorrelationID(context.Background(), logging.GenerateCorrelationID())

	defer func() {
		if r := recover(); r != nil {
			d.log.ErrorWithContext(ctx, "quota command panicked", "panic", fmt.Sprint(r))
			d.sink.Notify(notify.SeverityError, fmt.Sprintf("unexpected failure: %v", r))
		}
	}()

	cred := d.load()
	if cred == nil {
		d.sink.Notify(notify.SeverityWarning, "no Antigravity credentials found; log in with the pi agent first")
		return
	}

	token := cred.Token()
	if token == "" {
		d.sink.Notify(notify.SeverityWarning, "Antigravity credentials have no usable access token; log in again")
		return
	}

	d.sink.Notify(notify.SeverityInfo, "fetching quota information...")

	resp, err := d.fetch(ctx, token, cred.ProjectID)
	if err != nil || resp == nil || resp.Models == nil {
		d.sink.Notify(notify.SeverityError, "failed to fetch quota information")
		return
	}

	grouped := report.BuildReport(resp, d.now())
	if grouped.Total() == 0 {
		d.sink.Notify(notify.SeverityWarning, "no quota information available")
		return
	}

	d.sink.Notify(notify.SeverityInfo, report.Render(grouped))
}
