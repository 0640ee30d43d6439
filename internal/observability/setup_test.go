package observability

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestStartUpdateProcessingRecordsByStatus(t *testing.T) {
	StartUpdateProcessing()("ok")
	StartUpdateProcessing()("error")

	if got := testutil.CollectAndCount(updateProcessingDuration); got < 2 {
		t.Fatalf("expected a histogram series per status, got %d", got)
	}
}
