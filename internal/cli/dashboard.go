package cli

import (
	"context"
	"io"
	"log"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rileyhilliard/gpumon/internal/api"
	"github.com/rileyhilliard/gpumon/internal/dashboard"
	"github.com/rileyhilliard/gpumon/internal/errors"
	"github.com/rileyhilliard/gpumon/internal/query"
	"github.com/rileyhilliard/gpumon/internal/table"
	"golang.org/x/term"
)

// stdoutIsTerminal is swapped in tests.
var stdoutIsTerminal = func() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// dashboardCommand runs the TUI. When stdout is not a terminal it prints a
// single snapshot of the first metrics page instead.
func dashboardCommand(ctx context.Context, w io.Writer) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if !stdoutIsTerminal() {
		a, err := newApp(ctx, cfg)
		if err != nil {
			return err
		}
		defer a.Close()

		rows, err := fetchPayload[[]api.GPUMetrics](ctx, a, query.KeyMetrics, "GPU metrics")
		if err != nil {
			return err
		}
		view := buildMetricsView(rows, metricsOptions{Page: 1}, table.Sort{}, cfg.PageSize)
		return writeMetrics(w, view, false, time.Now())
	}

	if cfg.LogFile != "" {
		f, err := tea.LogToFile(cfg.LogFile, "gpumon")
		if err != nil {
			return errors.WrapWithCode(err, errors.ErrConfig,
				"Can't open log file: "+cfg.LogFile,
				"Check the directory exists and is writable.")
		}
		defer f.Close()
	} else {
		// The TUI owns the terminal; without a log file, logs are dropped.
		log.SetOutput(io.Discard)
		defer log.SetOutput(os.Stderr)
	}

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	model := dashboard.NewModel(dashboard.Options{
		Client:          a.queries,
		MetricsInterval: cfg.MetricsInterval,
		HealthInterval:  cfg.HealthInterval,
		AutoRefresh:     cfg.AutoRefresh,
		PageSize:        cfg.PageSize,
	})
	model.Start(ctx)
	defer model.Stop()

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err = p.Run()
	if err != nil && ctx.Err() == nil {
		return errors.WrapWithCode(err, errors.ErrExec,
			"Dashboard exited unexpectedly",
			"Run with GPUMON_DEBUG=1 and --log-file to capture details.")
	}
	return nil
}
