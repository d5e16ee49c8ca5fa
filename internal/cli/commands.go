package cli

import (
	"github.com/spf13/cobra"
)

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Open the live GPU dashboard",
	Long: `Open the live GPU dashboard.

Metrics are polled every metrics_interval (default 30s) and backend health
every health_interval (default 60s). Press ? inside the dashboard for keys.

When stdout is not a terminal, one snapshot of the first page is printed
instead, so 'gpumon > snapshot.txt' works.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return dashboardCommand(cmd.Context(), cmd.OutOrStdout())
	},
}

var metricsFlags metricsOptions

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Print current GPU metrics",
	Long: `Fetch GPU metrics once and print them as a table.

Sorting, filtering and paging behave like the dashboard table.

Examples:
  gpumon metrics
  gpumon metrics --sort utilization:desc
  gpumon metrics --filter node-1 --page 2
  gpumon metrics --high-util --json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return metricsCommand(cmd.Context(), cmd.OutOrStdout(), metricsFlags)
	},
}

var nodesFlags OutputFlags

var nodesCmd = &cobra.Command{
	Use:   "nodes",
	Short: "List nodes carrying GPUs",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return nodesCommand(cmd.Context(), cmd.OutOrStdout(), nodesFlags)
	},
}

var utilizationFlags OutputFlags

var utilizationCmd = &cobra.Command{
	Use:   "utilization",
	Short: "Print the lightweight utilization samples",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return utilizationCommand(cmd.Context(), cmd.OutOrStdout(), utilizationFlags)
	},
}

var healthFlags OutputFlags

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check the backend is reachable",
	Long: `Check the backend is reachable and reports itself healthy.

Exits non-zero when the backend can't be reached or reports a failure.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return healthCommand(cmd.Context(), cmd.OutOrStdout(), healthFlags)
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the gpumon config file",
}

var configInitFlags ConfigInitOptions

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a config file",
	Long: `Create a config file at ~/.config/gpumon/config.yaml (or --config).

Prompts for the API location when attached to a terminal.

Examples:
  gpumon config init
  gpumon config init --api-url http://monitor:8080/api --non-interactive`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := configInitFlags
		opts.Path = configPath
		if opts.APIURL == "" {
			opts.APIURL = apiURLFlag
		}
		if !stdoutIsTerminal() {
			opts.NonInteractive = true
		}
		return ConfigInit(cmd.OutOrStdout(), opts)
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return ConfigShow(cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(dashboardCmd)

	AddOutputFlags(metricsCmd, &metricsFlags.OutputFlags)
	metricsCmd.Flags().StringVar(&metricsFlags.Sort, "sort", "", "sort by column, e.g. utilization:desc")
	metricsCmd.Flags().StringVar(&metricsFlags.Filter, "filter", "", "only rows where any column contains this text")
	metricsCmd.Flags().IntVar(&metricsFlags.Page, "page", 1, "page number to print")
	metricsCmd.Flags().IntVar(&metricsFlags.PageSize, "page-size", 0, "rows per page (default from config)")
	metricsCmd.Flags().BoolVar(&metricsFlags.HighUtil, "high-util", false, "only GPUs above 70% utilization")
	rootCmd.AddCommand(metricsCmd)

	AddOutputFlags(nodesCmd, &nodesFlags)
	rootCmd.AddCommand(nodesCmd)

	AddOutputFlags(utilizationCmd, &utilizationFlags)
	rootCmd.AddCommand(utilizationCmd)

	AddOutputFlags(healthCmd, &healthFlags)
	rootCmd.AddCommand(healthCmd)

	configInitCmd.Flags().StringVar(&configInitFlags.Origin, "origin", "", "origin for a relative API URL")
	configInitCmd.Flags().BoolVar(&configInitFlags.Overwrite, "force", false, "overwrite an existing config file")
	configInitCmd.Flags().BoolVar(&configInitFlags.NonInteractive, "non-interactive", false, "skip prompts and use flags and defaults")
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
	rootCmd.AddCommand(configCmd)
}
