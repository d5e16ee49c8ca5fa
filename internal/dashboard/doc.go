// Package dashboard implements the gpumon terminal dashboard.
//
// The dashboard is a Bubble Tea program that renders cluster GPU metrics:
//
//	gpumon  ● connected | auto-refresh on | updated 12s ago
//
//	╭ Total GPUs ╮ ╭ Avg Util ╮ ╭ High Temp ╮ ╭ Active ╮
//	│ 16 (9 act) │ │ 48.5%    │ │ 1         │ │ 56.3%  │
//	╰────────────╯ ╰──────────╯ ╰───────────╯ ╰────────╯
//
//	Node   GPU  Model  Utilization ↓  Memory  ...
//
// Data flows through the query cache: the metrics and health pollers
// revalidate their keys on a timer, and the model subscribes to each key.
// Every cache change arrives as a queryUpdateMsg and the view re-derives
// from the latest snapshots. The model never performs HTTP itself.
//
// Keyboard shortcuts:
//   - q / Ctrl+C: Quit
//   - r: Refresh now
//   - a: Toggle auto-refresh
//   - ← / → (h / l): Select column
//   - s: Cycle sort on the selected column
//   - /: Filter (Enter applies, Esc cancels)
//   - n / p: Next / previous page
//   - Tab: Toggle node inventory
//   - ?: Toggle help
package dashboard
