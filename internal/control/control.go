// Copyright (c) 2025 Nishisan. All rights reserved.
// Use of this source code is governed by the N-QuicProxy License (Non-Commercial Evaluation)
// that can be found in the LICENSE file.

// Package control implementa o protocolo do control stream: o primeiro
// stream (bidirecional) aberto na conexão QUIC, que carrega metadados do
// proxy (destino, autenticação, handoff de criptografia). Não tem relação
// com o encoding do protocolo Minecraft: o framing é um delimitador de
// 4 bytes big-endian seguido de uma união binária etiquetada.
package control

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/quic-go/quic-go"
)

// maxFrameSize limita o corpo de um frame de controle.
const maxFrameSize = 4096

// Tags das mensagens Cliente → Gateway.
const (
	msgConnectTo                byte = 0x00
	msgEnableTerminalEncryption byte = 0x01
)

// Tags das mensagens Gateway → Cliente.
const (
	ackConnectTo                byte = 0x00
	ackEnableTerminalEncryption byte = 0x01
	ackTransitionPlayToConfig   byte = 0x02
)

// Erros do protocolo de controle.
var (
	ErrUnexpectedMessage = errors.New("control: unexpected message")
	ErrWrongAck          = errors.New("control: wrong acknowledgement received from gateway")
)

// ConnectTo indica o servidor de destino desejado pelo cliente.
// A chave de autenticação previne o uso do gateway por terceiros.
type ConnectTo struct {
	AuthKey     string
	Destination string
}

// EnableTerminalEncryption informa ao gateway o segredo simétrico acordado
// entre cliente e servidor. A criptografia é aplicada apenas no trecho
// gateway ↔ destino ("terminal"); sobre QUIC vale o TLS da conexão.
type EnableTerminalEncryption struct {
	Key [16]byte
}

// writeFrame escreve [tamanho u32 BE] [corpo].
func writeFrame(w io.Writer, body []byte) error {
	if len(body) > maxFrameSize {
		return fmt.Errorf("control: frame of %d bytes exceeds limit", len(body))
	}
	var hdr [4]byte
	binary.BigEndian.PutUint32(hdr[:], uint32(len(body)))
	if _, err := w.Write(hdr[:]); err != nil {
		return fmt.Errorf("control: writing frame header: %w", err)
	}
	if _, err := w.Write(body); err != nil {
		return fmt.Errorf("control: writing frame body: %w", err)
	}
	return nil
}

// readFrame lê um frame delimitado.
func readFrame(r io.Reader) ([]byte, error) {
	var hdr [4]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return nil, fmt.Errorf("control: reading frame header: %w", err)
	}
	length := binary.BigEndian.Uint32(hdr[:])
	if length > maxFrameSize {
		return nil, fmt.Errorf("control: frame of %d bytes exceeds limit", length)
	}
	body := make([]byte, length)
	if _, err := io.ReadFull(r, body); err != nil {
		return nil, fmt.Errorf("control: reading frame body: %w", err)
	}
	return body, nil
}

// writeString escreve uma string com prefixo uint16 BE de tamanho.
func writeString(buf []byte, s string) []byte {
	buf = binary.BigEndian.AppendUint16(buf, uint16(len(s)))
	return append(buf, s...)
}

// readString lê uma string com prefixo uint16 BE de tamanho.
func readString(body []byte) (string, []byte, error) {
	if len(body) < 2 {
		return "", nil, io.ErrUnexpectedEOF
	}
	n := int(binary.BigEndian.Uint16(body))
	body = body[2:]
	if len(body) < n {
		return "", nil, io.ErrUnexpectedEOF
	}
	return string(body[:n]), body[n:], nil
}

// ClientSide é a ponta do control stream no cliente.
type ClientSide struct {
	rw io.ReadWriter
}

// OpenClientSide abre o control stream na conexão dada. Deve ser o
// primeiro stream aberto.
func OpenClientSide(ctx context.Context, conn quic.Connection) (*ClientSide, error) {
	stream, err := conn.OpenStreamSync(ctx)
	if err != nil {
		return nil, fmt.Errorf("control: opening stream: %w", err)
	}
	return NewClientSide(stream), nil
}

// NewClientSide cria a ponta do cliente sobre um transporte arbitrário.
func NewClientSide(rw io.ReadWriter) *ClientSide {
	return &ClientSide{rw: rw}
}

// ConnectTo envia a mensagem ConnectTo e bloqueia até o acknowledgement.
func (c *ClientSide) ConnectTo(destination, authKey string) error {
	body := []byte{msgConnectTo}
	body = writeString(body, authKey)
	body = writeString(body, destination)
	if err := writeFrame(c.rw, body); err != nil {
		return err
	}
	return c.waitForAck(ackConnectTo)
}

// EnableTerminalEncryption envia a chave e bloqueia até o acknowledgement.
func (c *ClientSide) EnableTerminalEncryption(key [16]byte) error {
	body := make([]byte, 0, 17)
	body = append(body, msgEnableTerminalEncryption)
	body = append(body, key[:]...)
	if err := writeFrame(c.rw, body); err != nil {
		return err
	}
	return c.waitForAck(ackEnableTerminalEncryption)
}

// WaitTransitionPlayToConfig bloqueia até o gateway confirmar a
// transição Play → Configuration iniciada em banda.
func (c *ClientSide) WaitTransitionPlayToConfig() error {
	return c.waitForAck(ackTransitionPlayToConfig)
}

func (c *ClientSide) waitForAck(expected byte) error {
	body, err := readFrame(c.rw)
	if err != nil {
		return err
	}
	if len(body) != 1 || body[0] != expected {
		return ErrWrongAck
	}
	return nil
}

// GatewaySide é a ponta do control stream no gateway.
type GatewaySide struct {
	rw io.ReadWriter
}

// AcceptGatewaySide espera o cliente abrir o control stream. Deve ser o
// primeiro uso da conexão após o accept.
func AcceptGatewaySide(ctx context.Context, conn quic.Connection) (*GatewaySide, error) {
	stream, err := conn.AcceptStream(ctx)
	if err != nil {
		return nil, fmt.Errorf("control: accepting stream: %w", err)
	}
	return NewGatewaySide(stream), nil
}

// NewGatewaySide cria a ponta do gateway sobre um transporte arbitrário.
func NewGatewaySide(rw io.ReadWriter) *GatewaySide {
	return &GatewaySide{rw: rw}
}

// WaitForConnectTo bloqueia até receber a mensagem ConnectTo.
func (g *GatewaySide) WaitForConnectTo() (*ConnectTo, error) {
	body, err := readFrame(g.rw)
	if err != nil {
		return nil, err
	}
	if len(body) < 1 || body[0] != msgConnectTo {
		return nil, ErrUnexpectedMessage
	}
	authKey, rest, err := readString(body[1:])
	if err != nil {
		return nil, fmt.Errorf("control: reading auth key: %w", err)
	}
	destination, _, err := readString(rest)
	if err != nil {
		return nil, fmt.Errorf("control: reading destination: %w", err)
	}
	return &ConnectTo{AuthKey: authKey, Destination: destination}, nil
}

// WaitForTerminalEncryption bloqueia até receber a chave de criptografia.
func (g *GatewaySide) WaitForTerminalEncryption() (*EnableTerminalEncryption, error) {
	body, err := readFrame(g.rw)
	if err != nil {
		return nil, err
	}
	if len(body) != 17 || body[0] != msgEnableTerminalEncryption {
		return nil, ErrUnexpectedMessage
	}
	var msg EnableTerminalEncryption
	copy(msg.Key[:], body[1:])
	return &msg, nil
}

// AckConnectTo confirma que o gateway completou o ConnectTo.
func (g *GatewaySide) AckConnectTo() error {
	return writeFrame(g.rw, []byte{ackConnectTo})
}

// AckTerminalEncryption confirma que a criptografia terminal foi habilitada.
func (g *GatewaySide) AckTerminalEncryption() error {
	return writeFrame(g.rw, []byte{ackEnableTerminalEncryption})
}

// AckTransitionPlayToConfig confirma a transição Play → Configuration.
func (g *GatewaySide) AckTransitionPlayToConfig() error {
	return writeFrame(g.rw, []byte{ackTransitionPlayToConfig})
}
