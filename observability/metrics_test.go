package observability

import (
	"net/http"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func gatherFamily(t *testing.T, name string) *dto.MetricFamily {
	t.Helper()
	families, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	for _, family := range families {
		if family.GetName() == name {
			return family
		}
	}
	return nil
}

func labelsMatch(metric *dto.Metric, labels map[string]string) bool {
	if len(metric.GetLabel()) != len(labels) {
		return false
	}
	for _, pair := range metric.GetLabel() {
		if labels[pair.GetName()] != pair.GetValue() {
			return false
		}
	}
	return true
}

func counterValue(t *testing.T, name string, labels map[string]string) float64 {
	t.Helper()
	family := gatherFamily(t, name)
	if family == nil {
		return 0
	}
	for _, metric := range family.Metric {
		if labelsMatch(metric, labels) && metric.Counter != nil {
			return metric.Counter.GetValue()
		}
	}
	return 0
}

func TestLedgerMetricsRecordOutcomes(t *testing.T) {
	m := LedgerMetrics()
	committed := map[string]string{"operation": "transaction", "outcome": "committed"}
	rolledBack := map[string]string{"operation": "transaction", "outcome": "rolled_back"}
	overflow := map[string]string{"operation": "transaction", "kind": "arithmetic_overflow"}

	beforeCommitted := counterValue(t, "loyalty_ledger_operations_total", committed)
	beforeRolledBack := counterValue(t, "loyalty_ledger_operations_total", rolledBack)
	beforeOverflow := counterValue(t, "loyalty_ledger_rollbacks_total", overflow)
	beforeRewards := counterValue(t, "loyalty_ledger_reward_points_minted_total", map[string]string{})

	m.ObserveOperation("transaction", "", 3*time.Millisecond)
	m.ObserveOperation("transaction", "arithmetic_overflow", time.Millisecond)
	m.RecordReward(50)
	m.RecordReward(0)
	m.SetVersion(7)

	if got := counterValue(t, "loyalty_ledger_operations_total", committed) - beforeCommitted; got != 1 {
		t.Fatalf("committed delta = %v, want 1", got)
	}
	if got := counterValue(t, "loyalty_ledger_operations_total", rolledBack) - beforeRolledBack; got != 1 {
		t.Fatalf("rolled back delta = %v, want 1", got)
	}
	if got := counterValue(t, "loyalty_ledger_rollbacks_total", overflow) - beforeOverflow; got != 1 {
		t.Fatalf("rollback kind delta = %v, want 1", got)
	}
	if got := counterValue(t, "loyalty_ledger_reward_points_minted_total", map[string]string{}) - beforeRewards; got != 50 {
		t.Fatalf("reward delta = %v, want 50", got)
	}

	version := gatherFamily(t, "loyalty_ledger_state_version")
	if version == nil || len(version.Metric) != 1 || version.Metric[0].GetGauge().GetValue() != 7 {
		t.Fatalf("state version gauge not published: %v", version)
	}
}

func TestModuleMetricsCountErrorsAndThrottles(t *testing.T) {
	m := ModuleMetrics()
	success := map[string]string{"module": "loyalty", "method": "loyalty_getNonce", "outcome": "success"}
	failed := map[string]string{"module": "loyalty", "method": "loyalty_getMerchant", "status": "404"}
	throttled := map[string]string{"module": "loyalty", "reason": "rate_limit"}

	beforeSuccess := counterValue(t, "loyalty_rpc_requests_total", success)
	beforeFailed := counterValue(t, "loyalty_rpc_errors_total", failed)
	beforeThrottled := counterValue(t, "loyalty_rpc_throttles_total", throttled)

	m.Observe("loyalty", "loyalty_getNonce", http.StatusOK, time.Millisecond)
	m.Observe("loyalty", "loyalty_getMerchant", http.StatusNotFound, time.Millisecond)
	m.RecordThrottle("loyalty", "rate_limit")

	if got := counterValue(t, "loyalty_rpc_requests_total", success) - beforeSuccess; got != 1 {
		t.Fatalf("success delta = %v, want 1", got)
	}
	if got := counterValue(t, "loyalty_rpc_errors_total", failed) - beforeFailed; got != 1 {
		t.Fatalf("error delta = %v, want 1", got)
	}
	if got := counterValue(t, "loyalty_rpc_throttles_total", throttled) - beforeThrottled; got != 1 {
		t.Fatalf("throttle delta = %v, want 1", got)
	}

	var nilMetrics *moduleMetrics
	nilMetrics.Observe("loyalty", "noop", http.StatusOK, 0)
	nilMetrics.RecordThrottle("loyalty", "")
}
