// binwatch - Smart Bin Inventory Live-State Sync Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/binwatch

/*
Package models defines the wire types shared by the REST client, the push
channel and the local view server.

Field names follow the backend's snake_case JSON exactly. Timestamps stay
strings: the backend emits naive local ISO-8601 values without a zone, and
parsing them would silently pin them to the client's zone.

Push frames arrive as an Envelope whose Type selects the payload type:

	bin_update  -> Bin
	alert       -> Alert
	connection  -> ConnectionPayload
	heartbeat   -> HeartbeatPayload
	error       -> ErrorPayload
*/
package models
