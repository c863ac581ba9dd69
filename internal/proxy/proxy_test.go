// Copyright (c) 2025 Nishisan. All rights reserved.
// Use of this source code is governed by the N-QuicProxy License (Non-Commercial Evaluation)
// that can be found in the LICENSE file.

package proxy

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/nishisan-dev/n-quicproxy/internal/packet"
)

// vanillaPipe cria um par de endpoints TCP ligados por um net.Pipe.
// O lado "remoto" envia pacotes do lado dado; o endpoint local os recebe.
func vanillaPipe(t *testing.T, localSide packet.Side, state packet.State) (*VanillaIO, *VanillaIO) {
	t.Helper()
	a, b := net.Pipe()
	local := NewVanillaIO(a, localSide, state)
	remote := NewVanillaIO(b, localSide.Opposite(), state)
	t.Cleanup(func() {
		local.Close()
		remote.Close()
	})
	return local, remote
}

func TestVanillaIO_RoundTrip(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// local envia pacotes do servidor; remote é o cliente do jogo.
	local, remote := vanillaPipe(t, packet.SideServer, packet.StateStatus)

	go func() {
		p := packet.Make(packet.SideServer, packet.StateStatus, packet.CBStatusResponse, nil, []byte(`{"version":{}}`))
		if err := local.Send(ctx, p); err != nil {
			t.Errorf("Send: %v", err)
		}
	}()

	got, err := remote.Recv(ctx)
	if err != nil {
		t.Fatalf("Recv: %v", err)
	}
	if got.ID() != packet.CBStatusResponse {
		t.Errorf("unexpected packet %s", got.Name())
	}
}

func TestVanillaIO_CancelledRecvParksPacket(t *testing.T) {
	local, remote := vanillaPipe(t, packet.SideServer, packet.StatePlay)

	// Recv cancelado antes de qualquer dado.
	shortCtx, shortCancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	if _, err := remote.Recv(shortCtx); err == nil {
		t.Fatal("expected cancellation error")
	}
	shortCancel()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	go func() {
		p := packet.Make(packet.SideServer, packet.StatePlay, packet.CBKeepAlive, nil, []byte{0, 0, 0, 0, 0, 0, 0, 1})
		if err := local.Send(ctx, p); err != nil {
			t.Errorf("Send: %v", err)
		}
	}()

	// O frame extraído pelo pedido pendente fica estacionado e é entregue
	// ao próximo Recv, sem perda.
	got, err := remote.Recv(ctx)
	if err != nil {
		t.Fatalf("Recv after cancel: %v", err)
	}
	if got.ID() != packet.CBKeepAlive {
		t.Errorf("unexpected packet %s", got.Name())
	}
}

func TestVanillaIO_StateAppliedAtDecodeTime(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	local, remote := vanillaPipe(t, packet.SideClient, packet.StateLogin)

	// O cliente encerra o Login e já emite um pacote de Configuration.
	go func() {
		ack := packet.Make(packet.SideClient, packet.StateLogin, packet.SBLoginAcknowledged, nil, nil)
		if err := local.Send(ctx, ack); err != nil {
			t.Errorf("Send ack: %v", err)
			return
		}
		local.SwitchState(packet.StateConfiguration)
		finish := packet.Make(packet.SideClient, packet.StateConfiguration, packet.SBFinishConfiguration, nil, nil)
		if err := local.Send(ctx, finish); err != nil {
			t.Errorf("Send finish: %v", err)
		}
	}()

	got, err := remote.Recv(ctx)
	if err != nil {
		t.Fatalf("Recv ack: %v", err)
	}
	if got.ID() != packet.SBLoginAcknowledged {
		t.Fatalf("unexpected packet %s", got.Name())
	}

	// O vocabulário muda ANTES da próxima decodificação; o frame seguinte
	// já buffered deve ser lido como Configuration.
	remote.SwitchState(packet.StateConfiguration)
	got, err = remote.Recv(ctx)
	if err != nil {
		t.Fatalf("Recv finish: %v", err)
	}
	if got.ID() != packet.SBFinishConfiguration || got.Name() != "FinishConfiguration" {
		t.Errorf("unexpected packet %s", got.Name())
	}
}

func TestVanillaIO_CompressionAndEncryptionMidStream(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	local, remote := vanillaPipe(t, packet.SideServer, packet.StateLogin)
	key := [16]byte{9, 8, 7, 6, 5, 4, 3, 2, 1, 0, 1, 2, 3, 4, 5, 6}

	local.EnableCompression(64)
	remote.EnableCompression(64)
	local.EnableEncryption(key)
	remote.EnableEncryption(key)

	go func() {
		p := packet.Make(packet.SideServer, packet.StateLogin, packet.CBLoginSuccess, nil, make([]byte, 300))
		if err := local.Send(ctx, p); err != nil {
			t.Errorf("Send: %v", err)
		}
	}()

	got, err := remote.Recv(ctx)
	if err != nil {
		t.Fatalf("Recv: %v", err)
	}
	if got.ID() != packet.CBLoginSuccess || len(got.Data) != 300 {
		t.Errorf("unexpected packet %s (%d bytes)", got.Name(), len(got.Data))
	}
}

func TestProxy_ForwardsBothDirections(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// Tubo cliente: gameClient ↔ clientEndpoint; tubo servidor: serverEndpoint ↔ dest.
	clientEndpoint, gameClient := vanillaPipe(t, packet.SideServer, packet.StateStatus)
	serverEndpoint, dest := vanillaPipe(t, packet.SideClient, packet.StateStatus)

	pr := New(clientEndpoint, serverEndpoint, testLogger())

	done := make(chan error, 1)
	go func() {
		done <- pr.Run(ctx,
			func(p *packet.Packet) Verdict { return Continue },
			func(p *packet.Packet) Verdict { return Continue },
		)
	}()

	// Cliente → servidor.
	if err := gameClient.Send(ctx, packet.Make(packet.SideClient, packet.StateStatus, packet.SBStatusRequest, nil, nil)); err != nil {
		t.Fatalf("client send: %v", err)
	}
	got, err := dest.Recv(ctx)
	if err != nil {
		t.Fatalf("dest recv: %v", err)
	}
	if got.ID() != packet.SBStatusRequest {
		t.Errorf("unexpected packet %s", got.Name())
	}

	// Servidor → cliente.
	if err := dest.Send(ctx, packet.Make(packet.SideServer, packet.StateStatus, packet.CBStatusResponse, nil, []byte("{}"))); err != nil {
		t.Fatalf("dest send: %v", err)
	}
	got, err = gameClient.Recv(ctx)
	if err != nil {
		t.Fatalf("client recv: %v", err)
	}
	if got.ID() != packet.CBStatusResponse {
		t.Errorf("unexpected packet %s", got.Name())
	}

	cancel()
	<-done
}

func TestProxy_BreakForwardsInterceptedPacket(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	clientEndpoint, gameClient := vanillaPipe(t, packet.SideServer, packet.StateLogin)
	serverEndpoint, dest := vanillaPipe(t, packet.SideClient, packet.StateLogin)

	pr := New(clientEndpoint, serverEndpoint, testLogger())

	var sawAck bool
	done := make(chan error, 1)
	go func() {
		done <- pr.Run(ctx,
			func(p *packet.Packet) Verdict {
				if p.ID() == packet.SBLoginAcknowledged {
					sawAck = true
					return Break
				}
				return Continue
			},
			func(p *packet.Packet) Verdict { return Continue },
		)
	}()

	if err := gameClient.Send(ctx, packet.Make(packet.SideClient, packet.StateLogin, packet.SBLoginAcknowledged, nil, nil)); err != nil {
		t.Fatalf("send: %v", err)
	}

	// O pacote que causou o Break ainda é encaminhado.
	got, err := dest.Recv(ctx)
	if err != nil {
		t.Fatalf("dest recv: %v", err)
	}
	if got.ID() != packet.SBLoginAcknowledged {
		t.Errorf("unexpected packet %s", got.Name())
	}

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run returned error on break: %v", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("Run did not return after break")
	}
	if !sawAck {
		t.Error("interceptor did not run")
	}
}
