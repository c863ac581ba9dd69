// Copyright (c) 2025 Nishisan. All rights reserved.
// Use of this source code is governed by the N-QuicProxy License (Non-Commercial Evaluation)
// that can be found in the LICENSE file.

package packet

// Serverbound, estado Status.
const (
	SBStatusRequest int32 = 0x00
	SBStatusPing    int32 = 0x01
)

// Clientbound, estado Status.
const (
	CBStatusResponse int32 = 0x00
	CBStatusPong     int32 = 0x01
)

var clientStatusPackets = table{
	SBStatusRequest: {name: "StatusRequest"},
	SBStatusPing:    {name: "PingRequest"},
}

var serverStatusPackets = table{
	CBStatusResponse: {name: "StatusResponse"},
	CBStatusPong:     {name: "PingResponse"},
}
