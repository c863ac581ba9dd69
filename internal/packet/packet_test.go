// Copyright (c) 2025 Nishisan. All rights reserved.
// Use of this source code is governed by the N-QuicProxy License (Non-Commercial Evaluation)
// that can be found in the LICENSE file.

package packet

import (
	"bytes"
	"errors"
	"testing"

	"github.com/nishisan-dev/n-quicproxy/internal/protocol"
)

func encodeFrame(t *testing.T, p *Packet) []byte {
	t.Helper()
	enc := protocol.NewEncoder()
	p.Encode(enc)
	return enc.Bytes()
}

func TestHandshake_RoundTrip(t *testing.T) {
	original := Make(SideClient, StateHandshake, SBHandshake, &Handshake{
		ProtocolVersion: ProtocolVersion,
		ServerAddress:   "play.example.com",
		ServerPort:      25565,
		NextState:       NextStateLogin,
	}, nil)

	decoded, err := Decode(SideClient, StateHandshake, encodeFrame(t, original))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	hs, ok := decoded.Body.(*Handshake)
	if !ok {
		t.Fatalf("expected *Handshake body, got %T", decoded.Body)
	}
	if hs.ProtocolVersion != ProtocolVersion || hs.ServerAddress != "play.example.com" ||
		hs.ServerPort != 25565 || hs.NextState != NextStateLogin {
		t.Errorf("unexpected handshake: %+v", hs)
	}
}

func TestHandshake_InvalidNextState(t *testing.T) {
	enc := protocol.NewEncoder()
	enc.WriteVarInt(SBHandshake)
	enc.WriteVarInt(ProtocolVersion)
	enc.WriteString("example")
	enc.WriteU16(25565)
	enc.WriteVarInt(3)

	if _, err := Decode(SideClient, StateHandshake, enc.Bytes()); err == nil {
		t.Error("expected error for next_state=3")
	}
}

func TestDecode_UnknownDiscriminant(t *testing.T) {
	enc := protocol.NewEncoder()
	enc.WriteVarInt(0x75)

	_, err := Decode(SideServer, StatePlay, enc.Bytes())
	if !errors.Is(err, ErrUnknownPacket) {
		t.Errorf("expected ErrUnknownPacket, got %v", err)
	}
}

func TestDecode_ServerSendsNothingInHandshake(t *testing.T) {
	enc := protocol.NewEncoder()
	enc.WriteVarInt(0x00)

	_, err := Decode(SideServer, StateHandshake, enc.Bytes())
	if !errors.Is(err, ErrUnknownPacket) {
		t.Errorf("expected ErrUnknownPacket, got %v", err)
	}
}

func TestOpaquePacket_RoundTrip(t *testing.T) {
	payload := []byte{0xde, 0xad, 0xbe, 0xef, 0x00, 0x01}
	original := Make(SideClient, StatePlay, SBChatMessage, nil, payload)

	frame := encodeFrame(t, original)
	decoded, err := Decode(SideClient, StatePlay, frame)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	if decoded.ID() != SBChatMessage {
		t.Errorf("expected id 0x%02x, got 0x%02x", SBChatMessage, decoded.ID())
	}
	if decoded.Name() != "ChatMessage" {
		t.Errorf("expected name ChatMessage, got %s", decoded.Name())
	}
	if !bytes.Equal(decoded.Data, payload) {
		t.Errorf("payload mismatch: % x", decoded.Data)
	}
	if !bytes.Equal(encodeFrame(t, decoded), frame) {
		t.Error("re-encoded frame differs from original")
	}
}

func TestSetCompression_RoundTrip(t *testing.T) {
	original := Make(SideServer, StateLogin, CBSetCompression, &SetCompression{Threshold: 256}, nil)

	decoded, err := Decode(SideServer, StateLogin, encodeFrame(t, original))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	body, ok := decoded.Body.(*SetCompression)
	if !ok {
		t.Fatalf("expected *SetCompression, got %T", decoded.Body)
	}
	if body.Threshold != 256 {
		t.Errorf("expected threshold 256, got %d", body.Threshold)
	}
}

func TestTeleportEntity_RoundTrip(t *testing.T) {
	original := Make(SideServer, StatePlay, CBTeleportEntity, &TeleportEntity{
		EntityID: 7,
		X:        100.5,
		Y:        64,
		Z:        -8.25,
		Yaw:      90,
		Pitch:    45,
		OnGround: true,
	}, nil)

	decoded, err := Decode(SideServer, StatePlay, encodeFrame(t, original))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	tp := decoded.Body.(*TeleportEntity)
	if tp.EntityID != 7 || tp.X != 100.5 || tp.Y != 64 || tp.Z != -8.25 || !tp.OnGround {
		t.Errorf("unexpected body: %+v", tp)
	}
	// Ângulos viajam como fixed-point de 1 byte.
	const tolerance = 360.0 / 256.0
	if diff := tp.Yaw - 90; diff > tolerance || diff < -tolerance {
		t.Errorf("yaw out of tolerance: %v", tp.Yaw)
	}
}

func TestUpdateEntityPosition_RoundTrip(t *testing.T) {
	original := Make(SideServer, StatePlay, CBUpdateEntityPosition, &UpdateEntityPosition{
		EntityID: 42,
		DeltaX:   4096,
		DeltaY:   -2048,
		DeltaZ:   1,
		OnGround: false,
	}, nil)

	decoded, err := Decode(SideServer, StatePlay, encodeFrame(t, original))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	up := decoded.Body.(*UpdateEntityPosition)
	if *up != *original.Body.(*UpdateEntityPosition) {
		t.Errorf("unexpected body: %+v", up)
	}
}

func TestRemoveEntities_RoundTrip(t *testing.T) {
	original := Make(SideServer, StatePlay, CBRemoveEntities, &RemoveEntities{
		EntityIDs: []int32{1, -5, 300000},
	}, nil)

	decoded, err := Decode(SideServer, StatePlay, encodeFrame(t, original))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	re := decoded.Body.(*RemoveEntities)
	if len(re.EntityIDs) != 3 || re.EntityIDs[0] != 1 || re.EntityIDs[1] != -5 || re.EntityIDs[2] != 300000 {
		t.Errorf("unexpected ids: %v", re.EntityIDs)
	}
}

func TestUpdateSectionBlocks_ChunkPosition(t *testing.T) {
	section := (int64(9)&0x3fffff)<<42 | (int64(-12)&0x3fffff)<<20 | 4
	p := &UpdateSectionBlocks{SectionPosition: section}

	chunk := p.ChunkPosition()
	if chunk.X != 9 || chunk.Z != -12 {
		t.Errorf("expected chunk {9 -12}, got %+v", chunk)
	}
}

func TestBlockUpdate_KeepsTrailingData(t *testing.T) {
	pos := protocol.BlockPosition{X: 100, Y: 64, Z: -200}
	original := Make(SideServer, StatePlay, CBBlockUpdate, &BlockUpdate{Position: pos}, []byte{0x09})

	frame := encodeFrame(t, original)
	decoded, err := Decode(SideServer, StatePlay, frame)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	bu := decoded.Body.(*BlockUpdate)
	if bu.Position != pos {
		t.Errorf("expected %+v, got %+v", pos, bu.Position)
	}
	if !bytes.Equal(decoded.Data, []byte{0x09}) {
		t.Errorf("trailing data lost: % x", decoded.Data)
	}
	if !bytes.Equal(encodeFrame(t, decoded), frame) {
		t.Error("re-encoded frame differs")
	}
}

func TestUnloadChunk_FieldOrder(t *testing.T) {
	// No wire 765 o UnloadChunk carrega z antes de x.
	original := Make(SideServer, StatePlay, CBUnloadChunk, &UnloadChunk{ChunkZ: -2, ChunkX: 5}, nil)
	frame := encodeFrame(t, original)

	dec := protocol.NewDecoder(frame)
	if id, _ := dec.ReadVarInt(); id != CBUnloadChunk {
		t.Fatalf("unexpected id %#x", id)
	}
	z, _ := dec.ReadI32()
	x, _ := dec.ReadI32()
	if z != -2 || x != 5 {
		t.Errorf("expected z=-2 x=5, got z=%d x=%d", z, x)
	}
}

func TestKnown(t *testing.T) {
	if !Known(SideServer, StatePlay, CBUpdateTags) {
		t.Error("0x74 should be known for server/play")
	}
	if Known(SideServer, StatePlay, 0x75) {
		t.Error("0x75 should be unknown for server/play")
	}
	if Known(SideServer, StateHandshake, 0x00) {
		t.Error("server/handshake catalog should be empty")
	}
}
