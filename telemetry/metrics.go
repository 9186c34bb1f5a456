package telemetry

import (
	"github.com/armon/go-metrics"
)

const (
	relayerMetricsPrefix  = "relayer"
	registryMetricsPrefix = "registry"
)

func UpdateRelayerEventsObserved(pair string, direction string, cnt int) {
	metrics.IncrCounter([]string{relayerMetricsPrefix, "events_observed", pair, direction}, float32(cnt))
}

func UpdateRelayerEventsConfirmed(pair string, direction string, cnt int) {
	metrics.IncrCounter([]string{relayerMetricsPrefix, "events_confirmed", pair, direction}, float32(cnt))
}

func UpdateRelayerEventsDropped(pair string, direction string, cnt int) {
	metrics.IncrCounter([]string{relayerMetricsPrefix, "events_dropped", pair, direction}, float32(cnt))
}

func UpdateRelayerQueueSize(pair string, direction string, size int) {
	metrics.SetGauge([]string{relayerMetricsPrefix, "queue_size", pair, direction}, float32(size))
}

func UpdateRelayerFlushes(pair string, trigger string) {
	metrics.IncrCounter([]string{relayerMetricsPrefix, "flushes", pair, trigger}, 1)
}

func UpdateRelayerBatchSucceeded(pair string, direction string, delivered int) {
	metrics.IncrCounter([]string{relayerMetricsPrefix, "events_delivered", pair, direction}, float32(delivered))
}

func UpdateRelayerBatchFailed(pair string, direction string) {
	metrics.IncrCounter([]string{relayerMetricsPrefix, "batch_failed", pair, direction}, 1)
}

func UpdateRelayerDeadLetters(pair string, direction string, cnt int) {
	metrics.IncrCounter([]string{relayerMetricsPrefix, "dead_letters", pair, direction}, float32(cnt))
}

func UpdateRegistryRelayersRunning(cnt int) {
	metrics.SetGauge([]string{registryMetricsPrefix, "relayers_running"}, float32(cnt))
}

func UpdateRegistryFaults(pair string) {
	metrics.IncrCounter([]string{registryMetricsPrefix, "faults", pair}, 1)
}

func UpdateRegistryDumps(success bool) {
	result := "succeeded"
	if !success {
		result = "failed"
	}

	metrics.IncrCounter([]string{registryMetricsPrefix, "dumps", result}, 1)
}
