package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/rileyhilliard/gpumon/internal/api"
	"github.com/rileyhilliard/gpumon/internal/dashboard"
	"github.com/rileyhilliard/gpumon/internal/format"
	"github.com/rileyhilliard/gpumon/internal/query"
)

// withApp loads config, builds the app and hands it to fn.
func withApp(ctx context.Context, fn func(a *app) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(a)
}

func nodesCommand(ctx context.Context, w io.Writer, opts OutputFlags) error {
	machineMode = opts.JSON
	return withApp(ctx, func(a *app) error {
		nodes, err := fetchPayload[[]api.GPUNode](ctx, a, query.KeyNodes, "GPU nodes")
		if err != nil {
			return err
		}
		return writeNodes(w, nodes, opts.JSON)
	})
}

func writeNodes(w io.Writer, nodes []api.GPUNode, asJSON bool) error {
	if asJSON {
		if nodes == nil {
			nodes = []api.GPUNode{}
		}
		return WriteJSONSuccess(w, nodes)
	}
	if len(nodes) == 0 {
		writeLines(w, "No nodes")
		return nil
	}

	t := newTable("Node", "GPUs", "Models")
	total := 0
	for _, n := range nodes {
		t.Row(n.NodeName, strconv.Itoa(n.GPUCount), strings.Join(n.GPUModels, ", "))
		total += n.GPUCount
	}
	writeLines(w, t.Render(), fmt.Sprintf("%d nodes · %d GPUs", len(nodes), total))
	return nil
}

func utilizationCommand(ctx context.Context, w io.Writer, opts OutputFlags) error {
	machineMode = opts.JSON
	return withApp(ctx, func(a *app) error {
		samples, err := fetchPayload[[]api.GPUUtilization](ctx, a, query.KeyUtilization, "GPU utilization")
		if err != nil {
			return err
		}
		return writeUtilization(w, samples, opts.JSON, time.Now())
	})
}

func writeUtilization(w io.Writer, samples []api.GPUUtilization, asJSON bool, now time.Time) error {
	if asJSON {
		if samples == nil {
			samples = []api.GPUUtilization{}
		}
		return WriteJSONSuccess(w, samples)
	}
	if len(samples) == 0 {
		writeLines(w, "No data")
		return nil
	}

	t := newTable("Node", "GPU", "Utilization", "Sampled")
	for _, s := range samples {
		t.Row(s.Node, looseInt(s.GPUIndex), loosePercent(s.Utilization), sampledAt(s, now))
	}
	writeLines(w, t.Render())
	return nil
}

func looseInt(f api.LooseFloat) string {
	if !f.Valid {
		return "-"
	}
	return strconv.Itoa(f.Int())
}

func loosePercent(f api.LooseFloat) string {
	if !f.Valid {
		return "-"
	}
	return format.Percentage(f.Value, 1)
}

func sampledAt(s api.GPUUtilization, now time.Time) string {
	return format.RelativeTime(s.Time(), now)
}

func healthCommand(ctx context.Context, w io.Writer, opts OutputFlags) error {
	machineMode = opts.JSON
	return withApp(ctx, func(a *app) error {
		health, err := fetchPayload[api.Health](ctx, a, query.KeyHealth, "backend health")
		if err != nil {
			return err
		}
		return writeHealth(w, a.api.BaseURL(), health, opts.JSON)
	})
}

// healthResult is the --json payload of 'gpumon health'.
type healthResult struct {
	URL string `json:"url"`
	api.Health
}

func writeHealth(w io.Writer, baseURL string, h api.Health, asJSON bool) error {
	if asJSON {
		return WriteJSONSuccess(w, healthResult{URL: baseURL, Health: h})
	}

	line := dashboard.StatusConnected + " Connected to " + baseURL
	details := []string{}
	if h.Status != "" {
		details = append(details, "status "+h.Status)
	}
	if h.Version != "" {
		details = append(details, "version "+h.Version)
	}
	if len(details) > 0 {
		line += " (" + strings.Join(details, ", ") + ")"
	}
	writeLines(w, line)
	return nil
}
