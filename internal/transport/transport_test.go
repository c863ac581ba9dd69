// Copyright (c) 2025 Nishisan. All rights reserved.
// Use of this source code is governed by the N-QuicProxy License (Non-Commercial Evaluation)
// that can be found in the LICENSE file.

package transport

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/nishisan-dev/n-quicproxy/internal/packet"
	"github.com/nishisan-dev/n-quicproxy/internal/protocol"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSequence_MonotonicDelivery(t *testing.T) {
	seq := &sequence{}

	// Chegada permutada (0, 2, 1, 3): 1 é obsoleto e deve ser descartado.
	arrivals := []struct {
		ordinal uint64
		deliver bool
	}{
		{0, true},
		{2, true},
		{1, false},
		{3, true},
	}

	for _, a := range arrivals {
		if got := seq.receive(a.ordinal); got != a.deliver {
			t.Errorf("ordinal %d: expected deliver=%v, got %v", a.ordinal, a.deliver, got)
		}
	}
}

func TestSequence_SendOrdinalsAreSequential(t *testing.T) {
	seq := &sequence{}
	for i := uint64(0); i < 10; i++ {
		if got := seq.nextSendOrdinal(); got != i {
			t.Errorf("expected ordinal %d, got %d", i, got)
		}
	}
}

func TestSequences_IndependentKeys(t *testing.T) {
	s := NewSequences(nil, packet.SideServer, testLogger())

	a := SequenceKey{Kind: SeqEntityPosition, EntityID: 1}
	b := SequenceKey{Kind: SeqEntityPosition, EntityID: 2}
	c := SequenceKey{Kind: SeqEntityVelocity, EntityID: 1}

	// Avança a marca d'água de A; B e C não podem ser afetados.
	if !s.get(a).receive(10) {
		t.Fatal("first datagram on A should deliver")
	}
	if s.get(a).receive(3) {
		t.Error("stale datagram on A should drop")
	}
	if !s.get(b).receive(0) {
		t.Error("datagram on B should deliver despite A's high-water")
	}
	if !s.get(c).receive(0) {
		t.Error("velocity sequence for same entity id is independent")
	}
}

// discardWriter é uma ponta de escrita que aceita tudo.
type discardWriter struct{}

func (discardWriter) Write(p []byte) (int, error) { return len(p), nil }
func (discardWriter) Close() error                { return nil }

func testSendStream(name string, priority Priority) *SendStream {
	return newSendStream(discardWriter{}, name, priority, packet.SideServer, packet.StatePlay, testLogger())
}

// newTestAllocator monta um Allocator sem conexão QUIC real.
func newTestAllocator(t *testing.T) *Allocator {
	t.Helper()
	a := &Allocator{
		side:          packet.SideServer,
		logger:        testLogger(),
		chunksStream:  testSendStream("chunks", PriorityDefault),
		chatStream:    testSendStream("chat", PriorityChat),
		miscStream:    testSendStream("misc", PriorityMisc),
		entityStreams: gocache.New(StreamIdleTTL, StreamIdleTTL/3),
		chunkStreams:  gocache.New(StreamIdleTTL, StreamIdleTTL/3),
	}
	a.entityStreams.OnEvicted(evictStream)
	a.chunkStreams.OnEvicted(evictStream)
	a.openStream = func(_ context.Context, name string, priority Priority) (*SendStream, error) {
		return testSendStream(name, priority), nil
	}
	t.Cleanup(a.Close)
	return a
}

func mustAllocate(t *testing.T, a *Allocator, p *packet.Packet) Allocation {
	t.Helper()
	alloc, err := a.Allocate(context.Background(), p)
	if err != nil {
		t.Fatalf("Allocate(%s): %v", p.Name(), err)
	}
	return alloc
}

func TestAllocator_SameEntitySharesStream(t *testing.T) {
	a := newTestAllocator(t)

	p1 := packet.Make(packet.SideServer, packet.StatePlay, packet.CBEntityAnimation, &packet.EntityBound{EntityID: 7}, nil)
	p2 := packet.Make(packet.SideServer, packet.StatePlay, packet.CBHurtAnimation, &packet.EntityBound{EntityID: 7}, nil)
	p3 := packet.Make(packet.SideServer, packet.StatePlay, packet.CBEntityAnimation, &packet.EntityBound{EntityID: 8}, nil)

	s1 := mustAllocate(t, a, p1).Stream
	s2 := mustAllocate(t, a, p2).Stream
	s3 := mustAllocate(t, a, p3).Stream

	if s1 == nil || s1 != s2 {
		t.Error("packets for entity 7 should share one stream")
	}
	if s3 == s1 {
		t.Error("entity 8 should get its own stream")
	}
	if s1.Priority() != PriorityGameUpdates {
		t.Errorf("entity stream priority: expected %d, got %d", PriorityGameUpdates, s1.Priority())
	}
}

func TestAllocator_BlockUpdatesShareChunkStream(t *testing.T) {
	a := newTestAllocator(t)

	// Bloco (20, 64, 5) está no chunk (1, 0); a seção (1, 0) idem.
	bu := packet.Make(packet.SideServer, packet.StatePlay, packet.CBBlockUpdate,
		&packet.BlockUpdate{Position: blockPos(20, 64, 5)}, nil)
	section := (int64(1)&0x3fffff)<<42 | (int64(0)&0x3fffff)<<20 | 4
	usb := packet.Make(packet.SideServer, packet.StatePlay, packet.CBUpdateSectionBlocks,
		&packet.UpdateSectionBlocks{SectionPosition: section}, nil)

	s1 := mustAllocate(t, a, bu).Stream
	s2 := mustAllocate(t, a, usb).Stream
	if s1 == nil || s1 != s2 {
		t.Error("block update and section update of same chunk should share a stream")
	}
}

func TestAllocator_CategoriesDoNotMix(t *testing.T) {
	a := newTestAllocator(t)

	chat := mustAllocate(t, a, packet.Make(packet.SideServer, packet.StatePlay, packet.CBSystemChatMessage, nil, nil)).Stream
	keepalive1 := mustAllocate(t, a, packet.Make(packet.SideServer, packet.StatePlay, packet.CBKeepAlive, nil, nil)).Stream
	keepalive2 := mustAllocate(t, a, packet.Make(packet.SideServer, packet.StatePlay, packet.CBKeepAlive, nil, nil)).Stream
	chunks := mustAllocate(t, a, packet.Make(packet.SideServer, packet.StatePlay, packet.CBChunkBatchStart, nil, nil)).Stream
	misc := mustAllocate(t, a, packet.Make(packet.SideServer, packet.StatePlay, packet.CBUpdateTime, nil, nil)).Stream

	if chat == keepalive1 || chat == chunks || chat == misc {
		t.Error("chat stream should be dedicated")
	}
	if keepalive1 == keepalive2 {
		t.Error("each keepalive should get a fresh stream")
	}
	if keepalive1.Priority() != PriorityKeepalive {
		t.Errorf("keepalive priority: got %d", keepalive1.Priority())
	}
	if chunks == misc {
		t.Error("chunks and misc should be separate streams")
	}
}

func TestAllocator_MotionAlwaysSequence(t *testing.T) {
	a := newTestAllocator(t)

	motion := []*packet.Packet{
		packet.Make(packet.SideServer, packet.StatePlay, packet.CBUpdateEntityPosition,
			&packet.UpdateEntityPosition{EntityID: 5}, nil),
		packet.Make(packet.SideServer, packet.StatePlay, packet.CBUpdateEntityPositionAndRot,
			&packet.UpdateEntityPositionAndRotation{EntityID: 5}, nil),
		packet.Make(packet.SideServer, packet.StatePlay, packet.CBUpdateEntityRotation,
			&packet.UpdateEntityRotation{EntityID: 5}, nil),
		packet.Make(packet.SideServer, packet.StatePlay, packet.CBTeleportEntity,
			&packet.TeleportEntity{EntityID: 5}, nil),
	}
	for _, p := range motion {
		alloc := mustAllocate(t, a, p)
		if alloc.Stream != nil || alloc.Sequence == nil {
			t.Errorf("%s: expected sequence allocation", p.Name())
			continue
		}
		if alloc.Sequence.Kind != SeqEntityPosition || alloc.Sequence.EntityID != 5 {
			t.Errorf("%s: unexpected key %+v", p.Name(), alloc.Sequence)
		}
	}

	velocity := packet.Make(packet.SideServer, packet.StatePlay, packet.CBSetEntityVelocity,
		&packet.SetEntityVelocity{EntityID: 5}, nil)
	alloc := mustAllocate(t, a, velocity)
	if alloc.Sequence == nil || alloc.Sequence.Kind != SeqEntityVelocity {
		t.Errorf("velocity: unexpected allocation %+v", alloc)
	}
}

func TestAllocator_RemoveEntities(t *testing.T) {
	a := newTestAllocator(t)

	// Singleton: vai para o stream da entidade.
	entity := mustAllocate(t, a, packet.Make(packet.SideServer, packet.StatePlay, packet.CBEntityAnimation,
		&packet.EntityBound{EntityID: 9}, nil)).Stream
	single := mustAllocate(t, a, packet.Make(packet.SideServer, packet.StatePlay, packet.CBRemoveEntities,
		&packet.RemoveEntities{EntityIDs: []int32{9}}, nil)).Stream
	if single != entity {
		t.Error("singleton RemoveEntities should use the entity stream")
	}

	// Multi-id: cai no misc.
	multi := mustAllocate(t, a, packet.Make(packet.SideServer, packet.StatePlay, packet.CBRemoveEntities,
		&packet.RemoveEntities{EntityIDs: []int32{1, 2}}, nil)).Stream
	if multi != a.miscStream {
		t.Error("multi-id RemoveEntities should fall through to misc")
	}
}

func TestAllocator_ClientSide(t *testing.T) {
	a := newTestAllocator(t)
	a.side = packet.SideClient

	chat := mustAllocate(t, a, packet.Make(packet.SideClient, packet.StatePlay, packet.SBChatMessage, nil, nil)).Stream
	if chat != a.chatStream {
		t.Error("client chat should use the chat stream")
	}
	ka := mustAllocate(t, a, packet.Make(packet.SideClient, packet.StatePlay, packet.SBKeepAlive, nil, nil)).Stream
	if ka == a.chatStream || ka == a.miscStream || ka == a.chunksStream {
		t.Error("client keepalive should get a fresh stream")
	}
	move := mustAllocate(t, a, packet.Make(packet.SideClient, packet.StatePlay, packet.SBSetPlayerPosition, nil, nil)).Stream
	if move != a.miscStream {
		t.Error("client movement goes to misc")
	}
}

func TestSendStream_PipeRoundTrip(t *testing.T) {
	pr, pw := io.Pipe()
	send := newSendStream(pw, "test", PriorityMisc, packet.SideServer, packet.StatePlay, testLogger())
	recv := newRecvStream(pr, "test", packet.SideServer, packet.StatePlay, testLogger())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	go func() {
		for i := 0; i < 3; i++ {
			p := packet.Make(packet.SideServer, packet.StatePlay, packet.CBTeleportEntity, &packet.TeleportEntity{
				EntityID: int32(i), X: float64(i), Y: 64, Z: 0,
			}, nil)
			if err := send.Send(ctx, p); err != nil {
				t.Errorf("Send %d: %v", i, err)
			}
		}
		send.Close()
	}()

	for i := 0; i < 3; i++ {
		p, err := recv.Recv(ctx)
		if err != nil {
			t.Fatalf("Recv %d: %v", i, err)
		}
		if p.Body.(*packet.TeleportEntity).EntityID != int32(i) {
			t.Errorf("packet %d out of order: %+v", i, p.Body)
		}
	}

	if _, err := recv.Recv(ctx); err != io.EOF {
		t.Errorf("expected io.EOF after close, got %v", err)
	}
}

func TestSendStream_SendAfterClose(t *testing.T) {
	send := testSendStream("test", PriorityMisc)
	send.Close()

	err := send.Send(context.Background(), packet.Make(packet.SideServer, packet.StatePlay, packet.CBKeepAlive, nil, nil))
	if err != ErrStreamClosed {
		t.Errorf("expected ErrStreamClosed, got %v", err)
	}
}

// blockPos é um helper de construção.
func blockPos(x, y, z int32) protocol.BlockPosition {
	return protocol.BlockPosition{X: x, Y: y, Z: z}
}
