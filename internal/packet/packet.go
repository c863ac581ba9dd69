// Copyright (c) 2025 Nishisan. All rights reserved.
// Use of this source code is governed by the N-QuicProxy License (Non-Commercial Evaluation)
// that can be found in the LICENSE file.

// Package packet define o catálogo de pacotes do protocolo 765 por
// (lado, estado). O parsing completo dos pacotes não é implementado:
// apenas os campos necessários para interceptação e alocação de streams
// são decodificados; o restante do frame é carregado como bytes opacos,
// permitindo round-trip sem perda de informação.
package packet

import (
	"errors"
	"fmt"

	"github.com/nishisan-dev/n-quicproxy/internal/protocol"
)

// ProtocolVersion é a versão do protocolo suportada (1.20.4).
const ProtocolVersion int32 = 765

// Side identifica a direção de um pacote.
type Side uint8

const (
	// SideClient marca pacotes enviados pelo cliente (serverbound).
	SideClient Side = iota
	// SideServer marca pacotes enviados pelo servidor (clientbound).
	SideServer
)

// Opposite retorna o lado oposto.
func (s Side) Opposite() Side {
	if s == SideClient {
		return SideServer
	}
	return SideClient
}

func (s Side) String() string {
	switch s {
	case SideClient:
		return "client"
	case SideServer:
		return "server"
	default:
		return fmt.Sprintf("side(%d)", uint8(s))
	}
}

// State é uma fase do protocolo, cada uma com seu próprio vocabulário
// de pacotes.
type State uint8

const (
	StateHandshake State = iota
	StateStatus
	StateLogin
	StateConfiguration
	StatePlay
)

func (s State) String() string {
	switch s {
	case StateHandshake:
		return "handshake"
	case StateStatus:
		return "status"
	case StateLogin:
		return "login"
	case StateConfiguration:
		return "configuration"
	case StatePlay:
		return "play"
	default:
		return fmt.Sprintf("state(%d)", uint8(s))
	}
}

// ErrUnknownPacket indica um discriminante fora do catálogo do (lado, estado).
var ErrUnknownPacket = errors.New("packet: unknown packet id")

// Body carrega os campos tipados de um pacote do subconjunto decodificado.
type Body interface {
	encode(e *protocol.Encoder)
}

// Packet é um pacote do protocolo: o id do wire, o nome resolvido pelo
// catálogo, os campos tipados (nil para pacotes opacos) e os bytes
// restantes do frame.
type Packet struct {
	id   int32
	name string

	Body Body
	Data []byte
}

// ID retorna o identificador do pacote no wire.
func (p *Packet) ID() int32 {
	return p.id
}

// Name retorna o nome do pacote no catálogo.
func (p *Packet) Name() string {
	return p.name
}

// Encode serializa o pacote (discriminante VarInt + campos + bytes opacos).
func (p *Packet) Encode(enc *protocol.Encoder) {
	enc.WriteVarInt(p.id)
	if p.Body != nil {
		p.Body.encode(enc)
	}
	enc.WriteBytes(p.Data)
}

type entry struct {
	name   string
	decode func(d *protocol.Decoder) (Body, error)
}

type table map[int32]entry

type catalogKey struct {
	side  Side
	state State
}

var catalogs = map[catalogKey]table{
	{SideClient, StateHandshake}:     clientHandshakePackets,
	{SideServer, StateHandshake}:     {}, // o servidor não envia pacotes no handshake
	{SideClient, StateStatus}:        clientStatusPackets,
	{SideServer, StateStatus}:        serverStatusPackets,
	{SideClient, StateLogin}:         clientLoginPackets,
	{SideServer, StateLogin}:         serverLoginPackets,
	{SideClient, StateConfiguration}: clientConfigurationPackets,
	{SideServer, StateConfiguration}: serverConfigurationPackets,
	{SideClient, StatePlay}:          clientPlayPackets,
	{SideServer, StatePlay}:          serverPlayPackets,
}

// Decode decodifica um frame completo (discriminante + payload) do
// catálogo do (lado, estado). Discriminantes desconhecidos falham com
// ErrUnknownPacket.
func Decode(side Side, state State, frame []byte) (*Packet, error) {
	dec := protocol.NewDecoder(frame)
	id, err := dec.ReadVarInt()
	if err != nil {
		return nil, fmt.Errorf("packet: reading discriminant: %w", err)
	}

	info, ok := catalogs[catalogKey{side, state}][id]
	if !ok {
		return nil, fmt.Errorf("%w: 0x%02x (%v/%v)", ErrUnknownPacket, id, side, state)
	}

	var body Body
	if info.decode != nil {
		body, err = info.decode(dec)
		if err != nil {
			return nil, fmt.Errorf("packet: decoding %s: %w", info.name, err)
		}
	}

	// Copia o restante: o frame pertence ao buffer interno do codec.
	rest := dec.Remaining()
	data := make([]byte, len(rest))
	copy(data, rest)

	return &Packet{id: id, name: info.name, Body: body, Data: data}, nil
}

// Make constrói um pacote para envio, resolvendo o nome pelo catálogo.
// IDs fora do catálogo são bugs de programação.
func Make(side Side, state State, id int32, body Body, data []byte) *Packet {
	info, ok := catalogs[catalogKey{side, state}][id]
	if !ok {
		panic(fmt.Sprintf("packet: Make with unknown id 0x%02x (%v/%v)", id, side, state))
	}
	return &Packet{id: id, name: info.name, Body: body, Data: data}
}

// Known informa se o id pertence ao catálogo do (lado, estado).
func Known(side Side, state State, id int32) bool {
	_, ok := catalogs[catalogKey{side, state}][id]
	return ok
}
