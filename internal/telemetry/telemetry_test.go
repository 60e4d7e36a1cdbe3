// internal/telemetry/telemetry_test.go
package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupDisabledWithoutEndpoint(t *testing.T) {
	t.Setenv("CKN_OTEL_ENDPOINT", "")
	t.Setenv("CKN_OTEL_ENABLED", "")

	shutdown, err := Setup(context.Background(), "directory-test")
	require.NoError(t, err)
	require.NotNil(t, shutdown)
	assert.NoError(t, shutdown(context.Background()))
}

func TestSetupExplicitlyDisabled(t *testing.T) {
	t.Setenv("CKN_OTEL_ENDPOINT", "http://localhost:4318")
	t.Setenv("CKN_OTEL_ENABLED", "false")

	shutdown, err := Setup(context.Background(), "directory-test")
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}

func TestSetupWithEndpoint(t *testing.T) {
	t.Setenv("CKN_OTEL_ENDPOINT", "http://localhost:4318")
	t.Setenv("CKN_OTEL_ENABLED", "")

	// The exporter connects lazily, so setup succeeds even without a
	// collector listening.
	shutdown, err := Setup(context.Background(), "directory-test")
	require.NoError(t, err)
	require.NotNil(t, shutdown)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	// Shutdown with a cancelled context must still return promptly.
	_ = shutdown(ctx)
}
