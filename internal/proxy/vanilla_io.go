// Copyright (c) 2025 Nishisan. All rights reserved.
// Use of this source code is governed by the N-QuicProxy License (Non-Commercial Evaluation)
// that can be found in the LICENSE file.

package proxy

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"

	"github.com/nishisan-dev/n-quicproxy/internal/codec"
	"github.com/nishisan-dev/n-quicproxy/internal/packet"
)

// ErrEndOfStream indica que a ponta remota fechou a conexão sem erro.
var ErrEndOfStream = errors.New("proxy: end of stream")

type frameResult struct {
	frame []byte
	err   error
}

// VanillaIO é o endpoint de pacotes sobre a conexão TCP nativa.
//
// As metades de leitura e escrita são disjuntas e protegidas por locks
// curtos, então Send e Recv podem prosseguir em paralelo. A extração de
// frames roda em um worker próprio, um frame por pedido: um Recv
// cancelado deixa o frame estacionado para o próximo Recv, sem bytes
// semi-consumidos e sem decodificar com o vocabulário errado: o estado
// só é aplicado na decodificação, já no Recv.
type VanillaIO struct {
	side packet.Side // lado cujos pacotes este endpoint ENVIA
	conn net.Conn

	wmu sync.Mutex
	enc *codec.VanillaEncoder

	rmu       sync.Mutex
	dec       *codec.VanillaDecoder
	recvState packet.State

	reqMu   sync.Mutex
	pending bool
	closed  bool
	reqCh   chan struct{}
	frameCh chan frameResult
}

// NewVanillaIO cria o endpoint sobre uma conexão estabelecida.
// side é o lado cujos pacotes serão enviados por este endpoint: no
// tradutor local envia-se o lado servidor ao cliente do jogo; no gateway
// envia-se o lado cliente ao servidor de destino.
func NewVanillaIO(conn net.Conn, side packet.Side, state packet.State) *VanillaIO {
	v := &VanillaIO{
		side:      side,
		conn:      conn,
		enc:       codec.NewVanillaEncoder(side, state),
		dec:       codec.NewVanillaDecoder(side.Opposite(), state),
		recvState: state,
		reqCh:     make(chan struct{}, 1),
		frameCh:   make(chan frameResult, 1),
	}
	go v.readWorker()
	return v
}

// readWorker extrai um frame por pedido. O Read bloqueante acontece sem
// nenhum lock: bytes só migram da conexão para o codec sob o lock de
// leitura, o que mantém EnableEncryption/SwitchState seguros enquanto o
// worker espera dados.
func (v *VanillaIO) readWorker() {
	buf := make([]byte, 4096)
	for range v.reqCh {
		res := v.nextFrame(buf)
		v.frameCh <- res
		if res.err != nil {
			return
		}
	}
}

func (v *VanillaIO) nextFrame(buf []byte) frameResult {
	for {
		v.rmu.Lock()
		frame, err := v.dec.DecodeFrame()
		v.rmu.Unlock()
		if err != nil {
			return frameResult{err: err}
		}
		if frame != nil {
			return frameResult{frame: frame}
		}

		n, err := v.conn.Read(buf)
		if n > 0 {
			v.rmu.Lock()
			v.dec.GiveData(buf[:n])
			v.rmu.Unlock()
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return frameResult{err: ErrEndOfStream}
			}
			return frameResult{err: fmt.Errorf("proxy: tcp read: %w", err)}
		}
	}
}

// Send serializa e escreve o pacote na conexão.
func (v *VanillaIO) Send(_ context.Context, p *packet.Packet) error {
	v.wmu.Lock()
	defer v.wmu.Unlock()
	data, err := v.enc.EncodePacket(p)
	if err != nil {
		return err
	}
	if _, err := v.conn.Write(data); err != nil {
		return fmt.Errorf("proxy: tcp write: %w", err)
	}
	return nil
}

// Recv espera o próximo pacote da ponta remota.
func (v *VanillaIO) Recv(ctx context.Context) (*packet.Packet, error) {
	v.reqMu.Lock()
	if v.closed {
		v.reqMu.Unlock()
		return nil, ErrEndOfStream
	}
	if !v.pending {
		v.reqCh <- struct{}{}
		v.pending = true
	}
	v.reqMu.Unlock()

	select {
	case res := <-v.frameCh:
		v.reqMu.Lock()
		v.pending = false
		v.reqMu.Unlock()
		if res.err != nil {
			return nil, res.err
		}
		// Compressão e vocabulário são aplicados agora, nunca na extração:
		// um frame estacionado atravessa trocas de estado e a negociação
		// de compressão intacto.
		v.rmu.Lock()
		state := v.recvState
		plain, err := v.dec.UnwrapFrame(res.frame)
		v.rmu.Unlock()
		if err != nil {
			return nil, err
		}
		return packet.Decode(v.side.Opposite(), state, plain)
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// EnableCompression habilita zlib nas duas metades do codec. One-shot.
func (v *VanillaIO) EnableCompression(threshold int) {
	v.wmu.Lock()
	v.rmu.Lock()
	defer v.rmu.Unlock()
	defer v.wmu.Unlock()
	v.enc.EnableCompression(threshold)
	v.dec.EnableCompression()
}

// EnableEncryption habilita AES-128-CFB8 nas duas metades. One-shot.
func (v *VanillaIO) EnableEncryption(key [16]byte) {
	v.wmu.Lock()
	v.rmu.Lock()
	defer v.rmu.Unlock()
	defer v.wmu.Unlock()
	v.enc.EnableEncryption(key)
	v.dec.EnableEncryption(key)
}

// SwitchState troca o vocabulário de pacotes nas duas direções.
func (v *VanillaIO) SwitchState(state packet.State) {
	v.wmu.Lock()
	v.rmu.Lock()
	defer v.rmu.Unlock()
	defer v.wmu.Unlock()
	v.enc.SwitchState(state)
	v.recvState = state
}

// Close fecha a conexão e encerra o worker de leitura. Idempotente.
func (v *VanillaIO) Close() error {
	v.reqMu.Lock()
	if !v.closed {
		v.closed = true
		close(v.reqCh)
	}
	v.reqMu.Unlock()
	return v.conn.Close()
}
