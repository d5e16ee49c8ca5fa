package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/rileyhilliard/gpumon/internal/errors"
	"github.com/spf13/cobra"
)

// Global flags shared by every command.
var (
	configPath  string
	apiURLFlag  string
	timeoutFlag string
	noColor     bool
	metricsAddr string
	logFile     string
)

var rootCmd = &cobra.Command{
	Use:   "gpumon",
	Short: "Terminal dashboard for cluster GPU utilization",
	Long: `gpumon polls a GPU-monitoring backend and shows per-GPU utilization,
memory, temperature and power in a live terminal dashboard.

Run without a subcommand to open the dashboard. The other commands fetch a
single endpoint once and print it, which is handy for scripts:

  gpumon metrics --sort utilization:desc
  gpumon nodes --json
  gpumon health`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if noColor {
			lipgloss.SetColorProfile(termenv.Ascii)
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return dashboardCommand(cmd.Context(), cmd.OutOrStdout())
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configPath, "config", "", "config file (default ~/.config/gpumon/config.yaml)")
	pf.StringVar(&apiURLFlag, "api-url", "", "backend API base URL (e.g., http://monitor:8080/api)")
	pf.StringVar(&timeoutFlag, "timeout", "", "request timeout (e.g., 10s, 1m)")
	pf.BoolVar(&noColor, "no-color", false, "disable colored output")
	pf.StringVar(&metricsAddr, "metrics-addr", "", "serve client metrics on this address (e.g., :9400)")
	pf.StringVar(&logFile, "log-file", "", "write logs to this file while the dashboard runs")
}

// Execute runs the root command and exits with a non-zero status on failure.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err == nil {
		return
	}

	if code, ok := errors.GetExitCode(err); ok {
		os.Exit(code)
	}

	if isUnknownCommandError(err) {
		if name := extractUnknownCommand(err); name != "" {
			err = errors.New(errors.ErrConfig,
				fmt.Sprintf("Unknown command '%s'", name),
				"Run 'gpumon --help' to see the available commands.")
		}
	}

	if machineMode {
		_ = WriteJSONFromError(os.Stdout, err)
	} else {
		fmt.Fprint(os.Stderr, err.Error())
	}
	os.Exit(1)
}

// isUnknownCommandError reports whether cobra rejected the command line itself.
func isUnknownCommandError(err error) bool {
	msg := err.Error()
	return strings.HasPrefix(msg, "unknown command") || strings.HasPrefix(msg, "unknown flag")
}

// extractUnknownCommand pulls the command name out of cobra's
// `unknown command "foo" for "gpumon"` message.
func extractUnknownCommand(err error) string {
	msg := err.Error()
	start := strings.Index(msg, `"`)
	if start == -1 {
		return ""
	}
	end := strings.Index(msg[start+1:], `"`)
	if end == -1 {
		return ""
	}
	return msg[start+1 : start+1+end]
}
