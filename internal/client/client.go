// Copyright (c) 2025 Nishisan. All rights reserved.
// Use of this source code is governed by the N-QuicProxy License (Non-Commercial Evaluation)
// that can be found in the LICENSE file.

// Package client implementa o tradutor local: aceita uma conexão TCP do
// cliente do jogo e a transporta em QUIC até o gateway, dirigindo a
// máquina de estados do protocolo.
package client

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/quic-go/quic-go"

	"github.com/nishisan-dev/n-quicproxy/internal/config"
	"github.com/nishisan-dev/n-quicproxy/internal/control"
	"github.com/nishisan-dev/n-quicproxy/internal/packet"
	"github.com/nishisan-dev/n-quicproxy/internal/pki"
	"github.com/nishisan-dev/n-quicproxy/internal/proxy"
	"github.com/nishisan-dev/n-quicproxy/internal/transport"
)

// configurationTimeout limita cada passo de configuração (control stream
// e fases pré-Play).
const configurationTimeout = 30 * time.Second

// Client é o handle do tradutor local exposto ao programa hospedeiro.
type Client struct {
	logger    *slog.Logger
	conn      quic.Connection
	ctrl      *control.ClientSide
	listener  net.Listener
	boundPort int

	keyMu  sync.Mutex
	keySet bool
	keyCh  chan [16]byte

	cancel context.CancelFunc
	done   chan struct{}
}

// Open conecta ao gateway, negocia o destino pelo control stream e passa
// a aceitar a conexão TCP local. A porta escolhida fica disponível em
// BoundPort.
func Open(ctx context.Context, cfg *config.ClientConfig, logger *slog.Logger) (*Client, error) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, fmt.Errorf("client: binding local listener: %w", err)
	}

	conn, err := quic.DialAddr(ctx, cfg.Gateway.Address(),
		pki.NewClientTLSConfig(cfg.TLS.InsecureSkipVerify), transport.QuicConfig())
	if err != nil {
		listener.Close()
		return nil, fmt.Errorf("client: dialing gateway: %w", err)
	}

	ctrl, err := control.OpenClientSide(ctx, conn)
	if err != nil {
		listener.Close()
		conn.CloseWithError(1, "control stream failed")
		return nil, err
	}
	if err := await(ctx, configurationTimeout, func() error {
		return ctrl.ConnectTo(cfg.Destination, cfg.AuthKey)
	}); err != nil {
		listener.Close()
		conn.CloseWithError(1, "connect-to failed")
		return nil, fmt.Errorf("client: connect-to handshake: %w", err)
	}

	runCtx, cancel := context.WithCancel(context.Background())
	c := &Client{
		logger:    logger,
		conn:      conn,
		ctrl:      ctrl,
		listener:  listener,
		boundPort: listener.Addr().(*net.TCPAddr).Port,
		keyCh:     make(chan [16]byte, 1),
		cancel:    cancel,
		done:      make(chan struct{}),
	}
	go c.run(runCtx)

	logger.Info("client ready", "port", c.boundPort, "destination", cfg.Destination)
	return c, nil
}

// BoundPort retorna a porta TCP local onde o cliente do jogo deve conectar.
func (c *Client) BoundPort() int {
	return c.boundPort
}

// SetEncryptionKey entrega o segredo simétrico de 16 bytes, logo após o
// hospedeiro observar o cliente enviando EncryptionResponse. One-shot:
// a segunda chamada é um bug de programação.
func (c *Client) SetEncryptionKey(key [16]byte) {
	c.keyMu.Lock()
	defer c.keyMu.Unlock()
	if c.keySet {
		panic("client: SetEncryptionKey called twice")
	}
	c.keySet = true
	c.keyCh <- key
}

// Done é fechado quando a sessão proxied termina.
func (c *Client) Done() <-chan struct{} {
	return c.done
}

// Close derruba a sessão e libera os recursos.
func (c *Client) Close() {
	c.cancel()
	c.listener.Close()
	c.conn.CloseWithError(0, "client closed")
	<-c.done
}

// run aceita a conexão TCP local e dirige a sessão até o fim.
func (c *Client) run(ctx context.Context) {
	defer close(c.done)

	tcpConn, err := c.listener.Accept()
	if err != nil {
		c.logger.Warn("failed to accept local connection", "error", err)
		return
	}
	defer tcpConn.Close()

	if err := c.drive(ctx, tcpConn); err != nil && !errors.Is(err, proxy.ErrEndOfStream) && ctx.Err() == nil {
		c.logger.Warn("session ended with error", "error", err)
		return
	}
	c.logger.Info("session finished")
}

// drive executa a máquina de estados Handshake → Status | Login →
// Configuration → Play.
func (c *Client) drive(ctx context.Context, tcpConn net.Conn) error {
	// No tradutor local enviamos pacotes do lado servidor ao cliente do
	// jogo, e pacotes do lado cliente ao gateway.
	tcp := proxy.NewVanillaIO(tcpConn, packet.SideServer, packet.StateHandshake)
	defer tcp.Close()

	gw, err := proxy.NewSingleQuicIO(ctx, c.conn, packet.SideClient, packet.StateHandshake, c.logger)
	if err != nil {
		return err
	}

	// O cliente envia exatamente um Handshake.
	hs, err := tcp.Recv(ctx)
	if err != nil {
		return fmt.Errorf("client: reading handshake: %w", err)
	}
	body, ok := hs.Body.(*packet.Handshake)
	if !ok {
		return fmt.Errorf("client: first packet is %s, expected Handshake", hs.Name())
	}
	if err := gw.Send(ctx, hs); err != nil {
		return err
	}
	// Consome o stream vazio do gateway para o estado Handshake; sem isso
	// ele seria confundido com o stream do próximo estado.
	if err := gw.ConsumeRecvStream(ctx); err != nil {
		return err
	}

	switch body.NextState {
	case packet.NextStateStatus:
		c.logger.Debug("transition to status")
		tcp.SwitchState(packet.StateStatus)
		gw, err = gw.SwitchState(ctx, packet.StateStatus)
		if err != nil {
			return err
		}
		return proxy.New(tcp, gw, c.logger).Run(ctx, passthrough, passthrough)

	case packet.NextStateLogin:
		c.logger.Debug("transition to login")
		tcp.SwitchState(packet.StateLogin)
		gw, err = gw.SwitchState(ctx, packet.StateLogin)
		if err != nil {
			return err
		}
		return c.driveLogin(ctx, tcp, gw)

	default:
		return fmt.Errorf("client: invalid next state %d", body.NextState)
	}
}

// driveLogin proxia o Login observando EncryptionResponse (handoff da
// chave para o gateway) e LoginAcknowledged (fim do Login).
func (c *Client) driveLogin(ctx context.Context, tcp *proxy.VanillaIO, gw *proxy.SingleQuicIO) error {
	p := proxy.New(tcp, gw, c.logger)

	// As duas direções interceptam concorrentemente: as ações pendentes
	// são acumuladas sob o mutex e processadas em lote a cada parada, para
	// que breaks simultâneos não se percam.
	var (
		mu                sync.Mutex
		pendingEncryption bool
		pendingThreshold  *int32
		finished          bool
	)

	for {
		err := p.Run(ctx,
			func(pk *packet.Packet) proxy.Verdict {
				switch pk.ID() {
				case packet.SBEncryptionResponse:
					mu.Lock()
					pendingEncryption = true
					mu.Unlock()
					return proxy.Break
				case packet.SBLoginAcknowledged:
					mu.Lock()
					finished = true
					mu.Unlock()
					return proxy.Break
				default:
					return proxy.Continue
				}
			},
			func(pk *packet.Packet) proxy.Verdict {
				// O cliente do jogo comprime após receber SetCompression;
				// o codec TCP local precisa acompanhar.
				if pk.ID() == packet.CBSetCompression {
					mu.Lock()
					t := pk.Body.(*packet.SetCompression).Threshold
					pendingThreshold = &t
					mu.Unlock()
					return proxy.Break
				}
				return proxy.Continue
			},
		)
		if err != nil {
			return err
		}

		mu.Lock()
		threshold := pendingThreshold
		encryption := pendingEncryption
		done := finished
		pendingThreshold = nil
		pendingEncryption = false
		mu.Unlock()

		if threshold != nil && *threshold >= 0 {
			tcp.EnableCompression(int(*threshold))
			c.logger.Debug("compression enabled", "threshold", *threshold)
		}
		if encryption {
			c.logger.Debug("waiting for terminal encryption key")
			var key [16]byte
			select {
			case key = <-c.keyCh:
			case <-ctx.Done():
				return ctx.Err()
			}
			if err := await(ctx, configurationTimeout, func() error {
				return c.ctrl.EnableTerminalEncryption(key)
			}); err != nil {
				return fmt.Errorf("client: encryption handoff: %w", err)
			}
		}
		if done {
			return c.driveConfiguration(ctx, tcp, gw)
		}
		if threshold == nil && !encryption {
			return fmt.Errorf("client: login loop stopped without status")
		}
	}
}

// driveConfiguration proxia a Configuration até o FinishConfiguration do
// cliente, e então entra no Play.
func (c *Client) driveConfiguration(ctx context.Context, tcp *proxy.VanillaIO, gw *proxy.SingleQuicIO) error {
	c.logger.Debug("transition to configuration")
	tcp.SwitchState(packet.StateConfiguration)
	gw, err := gw.SwitchState(ctx, packet.StateConfiguration)
	if err != nil {
		return err
	}

	if err := c.runConfiguration(ctx, tcp, gw); err != nil {
		return err
	}
	return c.drivePlay(ctx, tcp)
}

// runConfiguration roda um ciclo de Configuration sobre o endpoint QUIC
// dado, até o FinishConfiguration do cliente.
func (c *Client) runConfiguration(ctx context.Context, tcp *proxy.VanillaIO, gw *proxy.SingleQuicIO) error {
	return proxy.New(tcp, gw, c.logger).Run(ctx,
		func(pk *packet.Packet) proxy.Verdict {
			if pk.ID() == packet.SBFinishConfiguration {
				return proxy.Break
			}
			return proxy.Continue
		},
		passthrough,
	)
}

// drivePlay roda o Play com o alocador de streams, tratando a reentrada
// em Configuration disparada por AcknowledgeConfiguration.
func (c *Client) drivePlay(ctx context.Context, tcp *proxy.VanillaIO) error {
	for {
		c.logger.Debug("transition to play")
		tcp.SwitchState(packet.StatePlay)
		play, err := proxy.NewPlayQuicIO(ctx, c.conn, packet.SideClient, nil, c.logger)
		if err != nil {
			return err
		}

		reenter := false
		err = proxy.New(tcp, play, c.logger).Run(ctx,
			func(pk *packet.Packet) proxy.Verdict {
				if pk.ID() == packet.SBAcknowledgeConfiguration {
					reenter = true
					return proxy.Break
				}
				return proxy.Continue
			},
			passthrough,
		)
		play.Close()
		if err != nil {
			return err
		}
		if !reenter {
			return nil
		}

		// Espelha a transição do gateway: espera o ack no control stream e
		// aceita o stream bidirecional "configuration".
		c.logger.Debug("re-entering configuration")
		if err := await(ctx, configurationTimeout, c.ctrl.WaitTransitionPlayToConfig); err != nil {
			return fmt.Errorf("client: play-to-config ack: %w", err)
		}
		send, recv, err := transport.AcceptBidi(ctx, c.conn, "configuration",
			packet.SideClient, packet.StateConfiguration, c.logger)
		if err != nil {
			return err
		}
		cfg := proxy.NewSingleQuicIOFromHandles(c.conn, packet.SideClient, packet.StateConfiguration, send, recv, c.logger)
		tcp.SwitchState(packet.StateConfiguration)
		if err := c.runConfiguration(ctx, tcp, cfg); err != nil {
			return err
		}
	}
}

func passthrough(*packet.Packet) proxy.Verdict {
	return proxy.Continue
}

// await executa op com um limite de tempo.
func await(ctx context.Context, d time.Duration, op func() error) error {
	done := make(chan error, 1)
	go func() { done <- op() }()
	select {
	case err := <-done:
		return err
	case <-time.After(d):
		return fmt.Errorf("timed out after %s", d)
	case <-ctx.Done():
		return ctx.Err()
	}
}
