// binwatch - Smart Bin Inventory Live-State Sync Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/binwatch

package logging

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func newTestFrameLogger(t *testing.T) (*FrameLogger, *bytes.Buffer) {
	t.Helper()
	SetLevelString("debug")
	t.Cleanup(func() { SetLevelString("info") })
	var buf bytes.Buffer
	return NewFrameLoggerWithLogger(NewTestLogger(&buf)), &buf
}

func checkContains(t *testing.T, output string, wants ...string) {
	t.Helper()
	for _, want := range wants {
		if !strings.Contains(output, want) {
			t.Errorf("expected %s in output, got: %s", want, output)
		}
	}
}

func TestFrameLogger_Dispatched(t *testing.T) {
	fl, buf := newTestFrameLogger(t)
	fl.Dispatched("bin_update", "BIN-R2P4")
	checkContains(t, buf.String(),
		`"component":"router"`,
		`"frame_type":"bin_update"`,
		`"key":"BIN-R2P4"`,
		`"level":"debug"`,
	)
}

func TestFrameLogger_Dropped(t *testing.T) {
	fl, buf := newTestFrameLogger(t)
	fl.Dropped("alert", "decode", errors.New("unexpected end of JSON input"))
	checkContains(t, buf.String(),
		`"frame_type":"alert"`,
		`"reason":"decode"`,
		`"error":"unexpected end of JSON input"`,
		`"level":"warn"`,
	)
}

func TestFrameLogger_Unknown(t *testing.T) {
	fl, buf := newTestFrameLogger(t)
	fl.Unknown("restock_order")
	checkContains(t, buf.String(), `"frame_type":"restock_order"`, "Unknown push frame type")
}

func TestFrameLogger_SessionAndBackendError(t *testing.T) {
	fl, buf := newTestFrameLogger(t)
	fl.Session("Connected to inventory stream")
	fl.BackendError("subscription rejected")
	checkContains(t, buf.String(),
		`"server_message":"Connected to inventory stream"`,
		`"server_message":"subscription rejected"`,
		"Backend reported push error",
	)
}
