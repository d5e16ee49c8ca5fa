package cli

import (
	"bytes"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func withVersion(t *testing.T, v, c, d string) {
	t.Helper()
	origVersion, origCommit, origDate := version, commit, date
	t.Cleanup(func() {
		version, commit, date = origVersion, origCommit, origDate
	})
	SetVersionInfo(v, c, d)
}

func TestVersionOutput(t *testing.T) {
	withVersion(t, "1.2.3", "abc123", "2024-01-15")

	var buf bytes.Buffer
	writeVersion(&buf, false)
	output := buf.String()

	assert.Contains(t, output, "gpumon v1.2.3")
	assert.Contains(t, output, "commit: abc123")
	assert.Contains(t, output, "built: 2024-01-15")
	assert.Contains(t, output, "go: "+runtime.Version())
	assert.Contains(t, output, "os/arch: "+runtime.GOOS+"/"+runtime.GOARCH)
}

func TestVersionShortOutput(t *testing.T) {
	withVersion(t, "1.2.3", "abc123", "2024-01-15")

	var buf bytes.Buffer
	writeVersion(&buf, true)

	assert.Equal(t, "1.2.3", strings.TrimSpace(buf.String()))
}

func TestFormatVersion(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"1.0.0", "v1.0.0"},
		{"v1.0.0", "v1.0.0"},
		{"dev", "dev"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, formatVersion(tt.input))
		})
	}
}

func TestGetVersion(t *testing.T) {
	withVersion(t, "2.0.0", "def", "today")
	assert.Equal(t, "2.0.0", GetVersion())
}
