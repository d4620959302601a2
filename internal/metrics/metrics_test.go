// binwatch - Smart Bin Inventory Live-State Sync Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/binwatch

package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordBackendRequest(t *testing.T) {
	successBefore := testutil.ToFloat64(BackendRequests.WithLabelValues("list_bins", "success"))
	failureBefore := testutil.ToFloat64(BackendRequests.WithLabelValues("list_bins", "failure"))

	RecordBackendRequest("list_bins", 15*time.Millisecond, nil)
	RecordBackendRequest("list_bins", 20*time.Millisecond, errors.New("connection refused"))
	RecordBackendRequest("list_bins", 5*time.Millisecond, nil)

	if got := testutil.ToFloat64(BackendRequests.WithLabelValues("list_bins", "success")) - successBefore; got != 2 {
		t.Errorf("success delta = %v, want 2", got)
	}
	if got := testutil.ToFloat64(BackendRequests.WithLabelValues("list_bins", "failure")) - failureBefore; got != 1 {
		t.Errorf("failure delta = %v, want 1", got)
	}
}

func TestRecordBackendRejected(t *testing.T) {
	before := testutil.ToFloat64(BackendRequests.WithLabelValues("get_summary", "rejected"))
	RecordBackendRejected("get_summary")
	if got := testutil.ToFloat64(BackendRequests.WithLabelValues("get_summary", "rejected")) - before; got != 1 {
		t.Errorf("rejected delta = %v, want 1", got)
	}
}

func TestRecordPushFrame(t *testing.T) {
	received := testutil.ToFloat64(WSMessagesReceived)
	frames := testutil.ToFloat64(PushFrames.WithLabelValues("bin_update"))
	dropped := testutil.ToFloat64(PushFramesDropped.WithLabelValues("malformed"))

	RecordPushFrame("bin_update")
	RecordPushFrame("bin_update")
	RecordDroppedFrame("malformed")

	if got := testutil.ToFloat64(PushFrames.WithLabelValues("bin_update")) - frames; got != 2 {
		t.Errorf("bin_update delta = %v, want 2", got)
	}
	if got := testutil.ToFloat64(PushFramesDropped.WithLabelValues("malformed")) - dropped; got != 1 {
		t.Errorf("malformed delta = %v, want 1", got)
	}
	if got := testutil.ToFloat64(WSMessagesReceived) - received; got != 3 {
		t.Errorf("received delta = %v, want 3", got)
	}
}

func TestRecordResync(t *testing.T) {
	for _, trigger := range []string{"connect", "inventory_poll", "alert_poll"} {
		before := testutil.ToFloat64(Resyncs.WithLabelValues(trigger))
		RecordResync(trigger)
		if got := testutil.ToFloat64(Resyncs.WithLabelValues(trigger)) - before; got != 1 {
			t.Errorf("%s delta = %v, want 1", trigger, got)
		}
	}
}

func TestChannelStateGauge(t *testing.T) {
	ChannelState.Set(ChannelStateConnected)
	if got := testutil.ToFloat64(ChannelState); got != ChannelStateConnected {
		t.Errorf("ChannelState = %v, want %d", got, ChannelStateConnected)
	}
	ChannelState.Set(ChannelStateDisconnected)
}

func TestTrackActiveRequest(t *testing.T) {
	before := testutil.ToFloat64(APIActiveRequests)
	TrackActiveRequest(true)
	TrackActiveRequest(true)
	TrackActiveRequest(false)
	if got := testutil.ToFloat64(APIActiveRequests) - before; got != 1 {
		t.Errorf("active delta = %v, want 1", got)
	}
	TrackActiveRequest(false)
}

func TestRecordAPIRequest(t *testing.T) {
	before := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("GET", "/api/v1/bins", "200"))
	RecordAPIRequest("GET", "/api/v1/bins", "200", 3*time.Millisecond)
	if got := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("GET", "/api/v1/bins", "200")) - before; got != 1 {
		t.Errorf("request delta = %v, want 1", got)
	}
}

// TestMetricGathering tests that metrics can be gathered using testutil
func TestMetricGathering(t *testing.T) {
	RecordBackendRequest("health", time.Millisecond, nil)

	problems, err := testutil.GatherAndLint(prometheus.DefaultGatherer)
	if err != nil {
		t.Logf("Lint errors (may be expected): %v", err)
	}
	for _, p := range problems {
		t.Logf("Metric lint problem: %s: %s", p.Metric, p.Text)
	}
}
