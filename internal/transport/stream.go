// Copyright (c) 2025 Nishisan. All rights reserved.
// Use of this source code is governed by the N-QuicProxy License (Non-Commercial Evaluation)
// that can be found in the LICENSE file.

package transport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/quic-go/quic-go"

	"github.com/nishisan-dev/n-quicproxy/internal/codec"
	"github.com/nishisan-dev/n-quicproxy/internal/packet"
)

// streamQueueDepth é a capacidade dos canais de cada stream. Pequena de
// propósito: produz backpressure natural sobre quem envia.
const streamQueueDepth = 4

// recvReadBufferSize é o tamanho do buffer de leitura do reader task.
const recvReadBufferSize = 256

// ErrStreamClosed indica envio em um handle já fechado ou envenenado por
// erro do writer.
var ErrStreamClosed = errors.New("transport: stream closed")

type sendRequest struct {
	pkt  *packet.Packet
	done chan error
}

// SendStream é um handle de envio sobre um stream QUIC unidirecional.
// Um writer task independente é o único dono do stream e do codec; o
// handle se comunica com ele por um canal limitado.
type SendStream struct {
	name     string
	priority Priority

	mu     sync.Mutex
	closed bool
	ch     chan sendRequest
	// dead é fechado pelo writer task quando um erro de escrita envenena
	// o handle. Só o writer fecha dead; só Close fecha ch.
	dead chan struct{}
}

// OpenSendStream abre um novo stream unidirecional na conexão e inicia
// seu writer task.
func OpenSendStream(ctx context.Context, conn quic.Connection, name string, priority Priority,
	side packet.Side, state packet.State, logger *slog.Logger) (*SendStream, error) {

	stream, err := conn.OpenUniStreamSync(ctx)
	if err != nil {
		return nil, fmt.Errorf("transport: opening uni stream %q: %w", name, err)
	}
	return newSendStream(stream, name, priority, side, state, logger), nil
}

// newSendStream inicia o writer task sobre uma ponta de escrita arbitrária.
func newSendStream(w io.WriteCloser, name string, priority Priority,
	side packet.Side, state packet.State, logger *slog.Logger) *SendStream {

	s := &SendStream{
		name:     name,
		priority: priority,
		ch:       make(chan sendRequest, streamQueueDepth),
		dead:     make(chan struct{}),
	}
	go s.writeLoop(w, codec.NewQuic(side, state), logger)
	return s
}

func (s *SendStream) writeLoop(w io.WriteCloser, cod *codec.Quic, logger *slog.Logger) {
	defer close(s.dead)
	for req := range s.ch {
		data, err := cod.EncodePacket(req.pkt)
		if err == nil {
			_, err = w.Write(data)
		}
		req.done <- err
		if err != nil {
			// Envenena o handle: os próximos sends observam dead.
			logger.Debug("send stream poisoned", "stream", s.name, "error", err)
			return
		}
	}
	w.Close()
	logger.Debug("send stream closed", "stream", s.name)
}

// Send entrega o pacote ao writer task e espera o resultado da escrita.
func (s *SendStream) Send(ctx context.Context, p *packet.Packet) error {
	req := sendRequest{pkt: p, done: make(chan error, 1)}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrStreamClosed
	}
	ch := s.ch
	s.mu.Unlock()

	select {
	case ch <- req:
	case <-s.dead:
		return ErrStreamClosed
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case err := <-req.done:
		return err
	case <-s.dead:
		// O writer pode ter respondido este request antes de morrer.
		select {
		case err := <-req.done:
			return err
		default:
			return ErrStreamClosed
		}
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Name retorna o nome dado ao stream na abertura.
func (s *SendStream) Name() string {
	return s.name
}

// Priority retorna a prioridade atribuída na abertura.
func (s *SendStream) Priority() Priority {
	return s.priority
}

// Close encerra o canal do writer; o task escreve o FIN e sai.
// Idempotente.
func (s *SendStream) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.closed = true
		close(s.ch)
	}
}

type recvResult struct {
	pkt *packet.Packet
	err error
}

// RecvStream é um handle de recepção sobre um stream QUIC aceito.
// Um reader task alimenta o codec e drena os pacotes decodificáveis para
// um canal limitado.
type RecvStream struct {
	ch chan recvResult
}

// AcceptRecvStream aceita o próximo stream unidirecional da conexão.
func AcceptRecvStream(ctx context.Context, conn quic.Connection, name string,
	side packet.Side, state packet.State, logger *slog.Logger) (*RecvStream, error) {

	stream, err := conn.AcceptUniStream(ctx)
	if err != nil {
		return nil, fmt.Errorf("transport: accepting uni stream %q: %w", name, err)
	}
	return newRecvStream(stream, name, side, state, logger), nil
}

// newRecvStream inicia o reader task sobre uma ponta de leitura arbitrária.
func newRecvStream(r io.Reader, name string, side packet.Side, state packet.State,
	logger *slog.Logger) *RecvStream {

	s := &RecvStream{ch: make(chan recvResult, streamQueueDepth)}
	go s.readLoop(r, codec.NewQuic(side, state), name, logger)
	return s
}

func (s *RecvStream) readLoop(r io.Reader, cod *codec.Quic, name string, logger *slog.Logger) {
	defer close(s.ch)
	buf := make([]byte, recvReadBufferSize)
	for {
		for {
			p, err := cod.DecodePacket()
			if err != nil {
				s.ch <- recvResult{err: err}
				return
			}
			if p == nil {
				break
			}
			s.ch <- recvResult{pkt: p}
		}

		n, err := r.Read(buf)
		if n > 0 {
			cod.GiveData(buf[:n])
		}
		if err != nil {
			if err != io.EOF {
				s.ch <- recvResult{err: err}
			}
			logger.Debug("recv stream finished", "stream", name)
			return
		}
	}
}

// Recv espera o próximo pacote. Retorna io.EOF quando o stream terminou
// e não há mais pacotes.
func (s *RecvStream) Recv(ctx context.Context) (*packet.Packet, error) {
	select {
	case res, ok := <-s.ch:
		if !ok {
			return nil, io.EOF
		}
		return res.pkt, res.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// OpenBidi abre um stream bidirecional e retorna os dois handles.
// Usado para o stream "configuration" na reentrada mid-session.
func OpenBidi(ctx context.Context, conn quic.Connection, name string,
	side packet.Side, state packet.State, logger *slog.Logger) (*SendStream, *RecvStream, error) {

	stream, err := conn.OpenStreamSync(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("transport: opening bidi stream %q: %w", name, err)
	}
	send := newSendStream(stream, name, PriorityDefault, side, state, logger)
	recv := newRecvStream(stream, name, side.Opposite(), state, logger)
	return send, recv, nil
}

// AcceptBidi aceita um stream bidirecional e retorna os dois handles.
func AcceptBidi(ctx context.Context, conn quic.Connection, name string,
	side packet.Side, state packet.State, logger *slog.Logger) (*SendStream, *RecvStream, error) {

	stream, err := conn.AcceptStream(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("transport: accepting bidi stream %q: %w", name, err)
	}
	send := newSendStream(stream, name, PriorityDefault, side, state, logger)
	recv := newRecvStream(stream, name, side.Opposite(), state, logger)
	return send, recv, nil
}
