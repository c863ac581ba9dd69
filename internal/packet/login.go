// Copyright (c) 2025 Nishisan. All rights reserved.
// Use of this source code is governed by the N-QuicProxy License (Non-Commercial Evaluation)
// that can be found in the LICENSE file.

package packet

import "github.com/nishisan-dev/n-quicproxy/internal/protocol"

// Serverbound, estado Login.
const (
	SBLoginStart          int32 = 0x00
	SBEncryptionResponse  int32 = 0x01
	SBLoginPluginResponse int32 = 0x02
	SBLoginAcknowledged   int32 = 0x03
)

// Clientbound, estado Login.
const (
	CBLoginDisconnect    int32 = 0x00
	CBEncryptionRequest  int32 = 0x01
	CBLoginSuccess       int32 = 0x02
	CBSetCompression     int32 = 0x03
	CBLoginPluginRequest int32 = 0x04
)

// SetCompression anuncia o threshold de compressão do codec nativo.
// Observado pelo gateway para habilitar zlib no lado do servidor.
type SetCompression struct {
	Threshold int32
}

func (p *SetCompression) encode(e *protocol.Encoder) {
	e.WriteVarInt(p.Threshold)
}

func decodeSetCompression(d *protocol.Decoder) (Body, error) {
	threshold, err := d.ReadVarInt()
	if err != nil {
		return nil, err
	}
	return &SetCompression{Threshold: threshold}, nil
}

var clientLoginPackets = table{
	SBLoginStart:          {name: "LoginStart"},
	SBEncryptionResponse:  {name: "EncryptionResponse"},
	SBLoginPluginResponse: {name: "LoginPluginResponse"},
	SBLoginAcknowledged:   {name: "LoginAcknowledged"},
}

var serverLoginPackets = table{
	CBLoginDisconnect:    {name: "Disconnect"},
	CBEncryptionRequest:  {name: "EncryptionRequest"},
	CBLoginSuccess:       {name: "LoginSuccess"},
	CBSetCompression:     {name: "SetCompression", decode: decodeSetCompression},
	CBLoginPluginRequest: {name: "LoginPluginRequest"},
}
