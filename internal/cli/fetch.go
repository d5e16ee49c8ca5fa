package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/rileyhilliard/gpumon/internal/api"
	"github.com/rileyhilliard/gpumon/internal/errors"
	"github.com/rileyhilliard/gpumon/internal/query"
	"github.com/rileyhilliard/gpumon/internal/ui"
	"golang.org/x/term"
)

// progressWriter is where one-shot commands draw their spinner: stderr when it
// is a terminal and JSON output is off, otherwise nowhere.
var progressWriter = func() io.Writer {
	if machineMode || !term.IsTerminal(int(os.Stderr.Fd())) {
		return nil
	}
	return os.Stderr
}

// fetchPayload runs key through the query cache and unwraps the envelope.
// what names the resource in error messages, e.g. "GPU metrics".
func fetchPayload[T any](ctx context.Context, a *app, key query.Key, what string) (T, error) {
	var zero T

	var v any
	err := ui.Track(progressWriter(), "Fetching "+what, func() error {
		var err error
		v, err = a.queries.Fetch(ctx, key)
		return err
	})
	if err != nil {
		return zero, wrapAPIError(err, what)
	}
	env, ok := v.(*api.Envelope[T])
	if !ok || env == nil {
		return zero, errors.New(errors.ErrAPI,
			fmt.Sprintf("Unexpected response while loading %s", what), "")
	}
	return unwrapEnvelope(env, what)
}

// unwrapEnvelope returns the payload of a successful envelope, or an error
// carrying the backend's own message.
func unwrapEnvelope[T any](env *api.Envelope[T], what string) (T, error) {
	data, ok := env.Payload()
	if ok {
		return data, nil
	}

	reason := env.Error
	if reason == "" {
		reason = env.Message
	}
	if reason == "" {
		reason = "the response was marked unsuccessful"
	}
	return data, errors.New(errors.ErrAPI,
		fmt.Sprintf("Backend could not provide %s: %s", what, reason),
		"Check the backend logs; the request reached it but it reported a failure.")
}

// wrapAPIError turns an api.Error into a CLI error with a suggestion for its kind.
func wrapAPIError(err error, what string) error {
	return errors.WrapWithCode(err, errors.ErrAPI,
		fmt.Sprintf("Failed to load %s", what),
		suggestionForKind(api.KindOf(err)))
}

func suggestionForKind(kind api.Kind) string {
	switch kind {
	case api.KindTimeout:
		return "The backend took too long to answer. Raise --timeout or check its load."
	case api.KindNetwork:
		return "Check the backend is running and --api-url points at it."
	case api.KindNotFound:
		return "The endpoint does not exist. Check --api-url includes the API prefix (usually /api)."
	case api.KindServer:
		return "The backend hit an internal error. Check its logs."
	case api.KindUnavailable:
		return "The backend is temporarily unavailable. Try again shortly."
	case api.KindDecode:
		return "The response was not the expected JSON. Check --api-url points at the GPU monitor API."
	default:
		return ""
	}
}
