// Copyright (c) 2025 Nishisan. All rights reserved.
// Use of this source code is governed by the N-QuicProxy License (Non-Commercial Evaluation)
// that can be found in the LICENSE file.

package packet

import (
	"fmt"

	"github.com/nishisan-dev/n-quicproxy/internal/protocol"
)

// Serverbound, estado Handshake.
const (
	SBHandshake int32 = 0x00
)

// Valores do campo next_state do Handshake.
const (
	NextStateStatus int32 = 1
	NextStateLogin  int32 = 2
)

// Handshake é o único pacote do estado Handshake. O campo NextState
// seleciona a próxima transição do protocolo.
type Handshake struct {
	ProtocolVersion int32
	ServerAddress   string
	ServerPort      uint16
	NextState       int32
}

func (h *Handshake) encode(e *protocol.Encoder) {
	e.WriteVarInt(h.ProtocolVersion)
	e.WriteString(h.ServerAddress)
	e.WriteU16(h.ServerPort)
	e.WriteVarInt(h.NextState)
}

func decodeHandshake(d *protocol.Decoder) (Body, error) {
	var h Handshake
	var err error
	if h.ProtocolVersion, err = d.ReadVarInt(); err != nil {
		return nil, err
	}
	if h.ServerAddress, err = d.ReadString(); err != nil {
		return nil, err
	}
	if h.ServerPort, err = d.ReadU16(); err != nil {
		return nil, err
	}
	if h.NextState, err = d.ReadVarInt(); err != nil {
		return nil, err
	}
	if h.NextState != NextStateStatus && h.NextState != NextStateLogin {
		return nil, fmt.Errorf("packet: invalid handshake next_state %d", h.NextState)
	}
	return &h, nil
}

var clientHandshakePackets = table{
	SBHandshake: {name: "Handshake", decode: decodeHandshake},
}
