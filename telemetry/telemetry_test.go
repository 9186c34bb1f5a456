package telemetry

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/require"
)

func TestTelemetry(t *testing.T) {
	t.Run("disabled", func(t *testing.T) {
		tel := NewTelemetry(TelemetryConfig{}, hclog.NewNullLogger())

		require.False(t, tel.IsEnabled())
		require.NoError(t, tel.Start())
		require.NoError(t, tel.Close(context.Background()))
	})

	t.Run("prometheus exposes relayer metrics", func(t *testing.T) {
		listener, err := net.Listen("tcp", "127.0.0.1:0")
		require.NoError(t, err)

		addr := listener.Addr().String()
		require.NoError(t, listener.Close())

		tel := NewTelemetry(TelemetryConfig{PrometheusAddr: addr}, hclog.NewNullLogger())

		require.True(t, tel.IsEnabled())
		require.NoError(t, tel.Start())

		defer func() {
			require.NoError(t, tel.Close(context.Background()))
		}()

		UpdateRelayerFlushes("bridge", "periodic")
		UpdateRelayerQueueSize("bridge", "source", 3)

		require.Eventually(t, func() bool {
			resp, err := http.Get(fmt.Sprintf("http://%s/metrics", addr)) //nolint:noctx
			if err != nil {
				return false
			}

			defer resp.Body.Close()

			body, err := io.ReadAll(resp.Body)

			return err == nil && resp.StatusCode == http.StatusOK && len(body) > 0
		}, time.Second*5, time.Millisecond*20)
	})
}
