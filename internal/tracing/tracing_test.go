package tracing

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTracingFile(t *testing.T) {
	fname := filepath.Join(t.TempDir(), "spans.txt")

	require.NoError(t, Init("go-approvals-test", fname))

	_, span := StartSpan(context.Background(), "test", map[string]string{"k": "v"})
	EndSpan(span, errors.New("failed"))
	require.NoError(t, Shutdown(context.Background()))

	data, err := os.ReadFile(fname)
	require.NoError(t, err)
	require.NotEmpty(t, data, "no data written to trace file")
}
