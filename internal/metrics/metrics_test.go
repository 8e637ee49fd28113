package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRegisterIsIdempotent(t *testing.T) {
	assert.NotPanics(t, func() {
		Register()
		Register()
	})
}

func TestPipelineRunCounter(t *testing.T) {
	before := testutil.ToFloat64(pipelineRuns.WithLabelValues(OutcomeMatched))
	IncPipelineRun(OutcomeMatched)
	IncPipelineRun(OutcomeMatched)
	assert.Equal(t, before+2, testutil.ToFloat64(pipelineRuns.WithLabelValues(OutcomeMatched)))
}

func TestCounters(t *testing.T) {
	cases := []struct {
		name string
		inc  func()
		read func() float64
	}{
		{"matches", IncMatchesRecorded, func() float64 { return testutil.ToFloat64(matchesRecorded) }},
		{"notifications", IncNotificationsCreated, func() float64 { return testutil.ToFloat64(notificationsCreated) }},
		{"upsert failures", IncUpsertFailures, func() float64 { return testutil.ToFloat64(upsertFailures) }},
		{"notification failures", IncNotificationFailures, func() float64 { return testutil.ToFloat64(notificationFailures) }},
		{"dispatch dropped", IncDispatchDropped, func() float64 { return testutil.ToFloat64(dispatchDropped) }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			before := tc.read()
			tc.inc()
			assert.Equal(t, before+1, tc.read())
		})
	}
}

func TestQueuedRunsGauge(t *testing.T) {
	SetQueuedRuns(7)
	assert.Equal(t, 7.0, testutil.ToFloat64(queuedRuns))
	SetQueuedRuns(0)
	assert.Equal(t, 0.0, testutil.ToFloat64(queuedRuns))
}

func TestObservePipelineDuration(t *testing.T) {
	ObservePipelineDuration(25 * time.Millisecond)
	assert.Equal(t, 1, testutil.CollectAndCount(pipelineDuration))
}
