package cli

import (
	"encoding/json"
	stderrors "errors"
	"io"
	"strings"

	"github.com/rileyhilliard/gpumon/internal/api"
	"github.com/rileyhilliard/gpumon/internal/errors"
)

// Machine mode flag - when true, outputs JSON and suppresses human-friendly decorations
var machineMode bool

// MachineMode returns true if machine-readable output is enabled
func MachineMode() bool {
	return machineMode
}

// JSONEnvelope wraps command output in a consistent structure for machine parsing.
// All --json output should use this envelope.
type JSONEnvelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *JSONError  `json:"error,omitempty"`
}

// JSONError provides structured error information for machine parsing.
type JSONError struct {
	Code       string      `json:"code"`
	Message    string      `json:"message"`
	Suggestion string      `json:"suggestion,omitempty"`
	Details    interface{} `json:"details,omitempty"`
}

// Error codes for machine-readable output.
const (
	ErrCodeConfigNotFound = "CONFIG_NOT_FOUND"
	ErrCodeConfigInvalid  = "CONFIG_INVALID"
	ErrCodeAPITimeout     = "API_TIMEOUT"
	ErrCodeAPINetwork     = "API_NETWORK"
	ErrCodeAPINotFound    = "API_NOT_FOUND"
	ErrCodeAPIServer      = "API_SERVER"
	ErrCodeAPIUnavailable = "API_UNAVAILABLE"
	ErrCodeAPIHTTP        = "API_HTTP"
	ErrCodeAPIDecode      = "API_DECODE"
	ErrCodeAPIFailed      = "API_FAILED"
	ErrCodeUnknown        = "UNKNOWN"
)

// WriteJSONSuccess writes a successful response with data to the writer.
func WriteJSONSuccess(w io.Writer, data interface{}) error {
	return writeJSONEnvelope(w, JSONEnvelope{
		Success: true,
		Data:    data,
	})
}

// WriteJSONError writes an error response to the writer.
func WriteJSONError(w io.Writer, code, message, suggestion string, details interface{}) error {
	return writeJSONEnvelope(w, JSONEnvelope{
		Success: false,
		Error: &JSONError{
			Code:       code,
			Message:    message,
			Suggestion: suggestion,
			Details:    details,
		},
	})
}

// WriteJSONFromError converts a Go error to a JSON error response.
func WriteJSONFromError(w io.Writer, err error) error {
	return writeJSONEnvelope(w, JSONEnvelope{
		Success: false,
		Error:   ErrorToJSON(err),
	})
}

func writeJSONEnvelope(w io.Writer, env JSONEnvelope) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(env)
}

// ErrorToJSON converts a Go error to a JSONError with appropriate code mapping.
func ErrorToJSON(err error) *JSONError {
	if err == nil {
		return nil
	}

	var apiErr *api.Error
	hasAPIErr := stderrors.As(err, &apiErr)

	var cliErr *errors.Error
	if stderrors.As(err, &cliErr) {
		out := &JSONError{
			Code:       mapErrorCode(cliErr.Code, cliErr.Message),
			Message:    cliErr.Message,
			Suggestion: cliErr.Suggestion,
		}
		if hasAPIErr {
			out.Code = apiErrorCode(apiErr.Kind)
			out.Details = apiErrorDetails(apiErr)
		}
		return out
	}

	if hasAPIErr {
		return &JSONError{
			Code:       apiErrorCode(apiErr.Kind),
			Message:    err.Error(),
			Suggestion: suggestionForKind(apiErr.Kind),
			Details:    apiErrorDetails(apiErr),
		}
	}

	return &JSONError{
		Code:    ErrCodeUnknown,
		Message: err.Error(),
	}
}

// mapErrorCode maps internal error codes to machine-readable codes.
func mapErrorCode(internalCode, message string) string {
	switch internalCode {
	case errors.ErrConfig:
		msgLower := strings.ToLower(message)
		if strings.Contains(msgLower, "not found") {
			return ErrCodeConfigNotFound
		}
		return ErrCodeConfigInvalid
	case errors.ErrAPI:
		return ErrCodeAPIFailed
	}
	return ErrCodeUnknown
}

func apiErrorCode(kind api.Kind) string {
	switch kind {
	case api.KindTimeout:
		return ErrCodeAPITimeout
	case api.KindNetwork:
		return ErrCodeAPINetwork
	case api.KindNotFound:
		return ErrCodeAPINotFound
	case api.KindServer:
		return ErrCodeAPIServer
	case api.KindUnavailable:
		return ErrCodeAPIUnavailable
	case api.KindHTTP:
		return ErrCodeAPIHTTP
	case api.KindDecode:
		return ErrCodeAPIDecode
	default:
		return ErrCodeAPIFailed
	}
}

func apiErrorDetails(e *api.Error) map[string]interface{} {
	details := map[string]interface{}{
		"kind": e.Kind.String(),
	}
	if e.StatusCode != 0 {
		details["status"] = e.StatusCode
	}
	return details
}
