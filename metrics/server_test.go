package metrics

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestStartServerDisabled(t *testing.T) {
	for _, addr := range []string{"", "  ", "off", "Disabled", "false"} {
		srv, errCh := StartServer(context.Background(), addr, nil)
		if srv != nil || errCh != nil {
			t.Errorf("StartServer(%q) should be disabled", addr)
		}
	}
}

func TestRequestsTotalLabels(t *testing.T) {
	counter := RequestsTotal.WithLabelValues("check_url", "success")
	before := testutil.ToFloat64(counter)
	counter.Inc()
	if got := testutil.ToFloat64(counter); got != before+1 {
		t.Errorf("Expected counter to advance by one, got %v -> %v", before, got)
	}
}
