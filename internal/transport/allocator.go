// Copyright (c) 2025 Nishisan. All rights reserved.
// Use of this source code is governed by the N-QuicProxy License (Non-Commercial Evaluation)
// that can be found in the LICENSE file.

package transport

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/quic-go/quic-go"

	"github.com/nishisan-dev/n-quicproxy/internal/packet"
	"github.com/nishisan-dev/n-quicproxy/internal/protocol"
)

// O ganho do QUIC sobre TCP vem do fato de dados em streams separados não
// precisarem chegar em ordem. Ao alocar pacotes a streams, o cuidado é
// garantir que dados que PRECISAM chegar em ordem compartilhem um stream:
// pacotes sequencialmente relacionados a um mesmo sujeito lógico (uma
// entidade, um chunk, o log de chat) viajam no stream daquele sujeito, de
// modo que perda entre sujeitos distintos não os atrase. Pacotes cujo único
// requisito é frescor eventual (movimento de entidades) usam datagramas
// sequenciados não-confiáveis.

// StreamIdleTTL é o tempo mínimo que um stream keyed fica vivo sem uso.
// A eviction quebra o ciclo cache → handle → writer task: o cache solta a
// referência, o canal fecha, o writer observa fim de entrada e libera o
// stream QUIC. Tecnicamente isso permite que pacotes do mesmo sujeito
// cheguem fora de ordem se o stream for recriado, mas com um idle alto a
// situação é rara.
const StreamIdleTTL = 90 * time.Second

// Allocation diz ao proxy como transmitir um pacote: por um stream
// (confiável, ordenado só em relação àquele stream) ou como datagrama em
// uma sequência (não-confiável, não-ordenado).
type Allocation struct {
	Stream   *SendStream
	Sequence *SequenceKey

	// OneShot marca streams recém-abertos para um único pacote; quem envia
	// fecha o stream logo após a escrita.
	OneShot bool
}

// Allocator guarda os streams de transmissão de uma conexão no estado
// Play: três streams compartilhados sempre abertos e dois caches keyed
// (por entidade e por chunk) com eviction por inatividade.
type Allocator struct {
	conn   quic.Connection
	side   packet.Side
	logger *slog.Logger

	chunksStream *SendStream
	chatStream   *SendStream
	miscStream   *SendStream

	// mu protege apenas lookup/insert nos caches; nenhum lock atravessa
	// a abertura de um stream.
	mu            sync.Mutex
	entityStreams *gocache.Cache // "e:<id>" → *SendStream
	chunkStreams  *gocache.Cache // "c:<x>:<z>" → *SendStream

	// openStream abre um stream de envio; substituível em testes.
	openStream func(ctx context.Context, name string, priority Priority) (*SendStream, error)
}

// NewAllocator abre os três streams compartilhados e prepara os caches.
func NewAllocator(ctx context.Context, conn quic.Connection, side packet.Side, logger *slog.Logger) (*Allocator, error) {
	chunks, err := OpenSendStream(ctx, conn, "chunks", PriorityDefault, side, packet.StatePlay, logger)
	if err != nil {
		return nil, err
	}
	chat, err := OpenSendStream(ctx, conn, "chat", PriorityChat, side, packet.StatePlay, logger)
	if err != nil {
		chunks.Close()
		return nil, err
	}
	misc, err := OpenSendStream(ctx, conn, "misc", PriorityMisc, side, packet.StatePlay, logger)
	if err != nil {
		chunks.Close()
		chat.Close()
		return nil, err
	}

	a := &Allocator{
		conn:          conn,
		side:          side,
		logger:        logger,
		chunksStream:  chunks,
		chatStream:    chat,
		miscStream:    misc,
		entityStreams: gocache.New(StreamIdleTTL, StreamIdleTTL/3),
		chunkStreams:  gocache.New(StreamIdleTTL, StreamIdleTTL/3),
	}
	a.entityStreams.OnEvicted(evictStream)
	a.chunkStreams.OnEvicted(evictStream)
	a.openStream = func(ctx context.Context, name string, priority Priority) (*SendStream, error) {
		return OpenSendStream(ctx, conn, name, priority, side, packet.StatePlay, logger)
	}
	return a, nil
}

func evictStream(_ string, v interface{}) {
	v.(*SendStream).Close()
}

// Allocate decide como o pacote Play dado deve ser transmitido.
func (a *Allocator) Allocate(ctx context.Context, p *packet.Packet) (Allocation, error) {
	if a.side == packet.SideClient {
		return a.allocateClient(ctx, p)
	}
	return a.allocateServer(ctx, p)
}

// allocateClient cobre os pacotes Cliente → Gateway.
func (a *Allocator) allocateClient(ctx context.Context, p *packet.Packet) (Allocation, error) {
	switch p.ID() {
	case packet.SBChatCommand, packet.SBChatMessage, packet.SBAcknowledgeMessage:
		return Allocation{Stream: a.chatStream}, nil

	case packet.SBKeepAlive, packet.SBPingRequest, packet.SBPong:
		return a.oneShotStream(ctx)

	default:
		return Allocation{Stream: a.miscStream}, nil
	}
}

// allocateServer cobre os pacotes Gateway → Cliente.
func (a *Allocator) allocateServer(ctx context.Context, p *packet.Packet) (Allocation, error) {
	switch p.ID() {
	// Família de chat: ordenada em relação ao log de chat.
	case packet.CBChatSuggestions, packet.CBDisguisedChatMessage, packet.CBPlayerChatMessage,
		packet.CBSystemChatMessage, packet.CBBossBar, packet.CBClearTitles,
		packet.CBCommandSuggestions, packet.CBDeleteMessage, packet.CBSetActionBarText,
		packet.CBSetSubtitleText, packet.CBSetTitleText, packet.CBSetTitleAnimationTimes:
		return Allocation{Stream: a.chatStream}, nil

	// Efêmeros confiáveis-não-ordenados: um stream novo por pacote.
	case packet.CBParticle, packet.CBExplosion, packet.CBSoundEffect, packet.CBStopSound,
		packet.CBSetHealth, packet.CBKeepAlive, packet.CBPing, packet.CBPingResponse:
		return a.oneShotStream(ctx)

	// Volume de chunks: um stream compartilhado de prioridade default.
	case packet.CBUnloadChunk, packet.CBChunkAndLightData, packet.CBUpdateLight,
		packet.CBChunkBatchFinished, packet.CBChunkBatchStart, packet.CBChunkBiomes:
		return Allocation{Stream: a.chunksStream}, nil

	case packet.CBUpdateSectionBlocks:
		return a.chunkStream(ctx, p.Body.(*packet.UpdateSectionBlocks).ChunkPosition())

	case packet.CBBlockUpdate:
		return a.chunkStream(ctx, p.Body.(*packet.BlockUpdate).Position.Chunk())

	case packet.CBEntityAnimation, packet.CBHurtAnimation, packet.CBSetHeadRotation,
		packet.CBEntityEffect, packet.CBDamageEvent:
		return a.entityStream(ctx, p.Body.(*packet.EntityBound).EntityID)

	case packet.CBEntityEvent:
		return a.entityStream(ctx, p.Body.(*packet.EntityEvent).EntityID)

	case packet.CBRemoveEntities:
		ids := p.Body.(*packet.RemoveEntities).EntityIDs
		if len(ids) == 1 {
			return a.entityStream(ctx, ids[0])
		}
		// Remoções multi-id caem no misc: a remoção não fica ordenada em
		// relação ao stream dedicado de cada entidade.
		return Allocation{Stream: a.miscStream}, nil

	// Movimento: frescor eventual via datagramas sequenciados.
	case packet.CBUpdateEntityPosition:
		return sequenceAllocation(SeqEntityPosition, p.Body.(*packet.UpdateEntityPosition).EntityID), nil
	case packet.CBUpdateEntityPositionAndRot:
		return sequenceAllocation(SeqEntityPosition, p.Body.(*packet.UpdateEntityPositionAndRotation).EntityID), nil
	case packet.CBUpdateEntityRotation:
		return sequenceAllocation(SeqEntityPosition, p.Body.(*packet.UpdateEntityRotation).EntityID), nil
	case packet.CBTeleportEntity:
		return sequenceAllocation(SeqEntityPosition, p.Body.(*packet.TeleportEntity).EntityID), nil
	case packet.CBSetEntityVelocity:
		return sequenceAllocation(SeqEntityVelocity, p.Body.(*packet.SetEntityVelocity).EntityID), nil

	default:
		return Allocation{Stream: a.miscStream}, nil
	}
}

func sequenceAllocation(kind SequenceKind, entityID int32) Allocation {
	return Allocation{Sequence: &SequenceKey{Kind: kind, EntityID: entityID}}
}

// oneShotStream abre um stream novo, usado para um único pacote.
func (a *Allocator) oneShotStream(ctx context.Context) (Allocation, error) {
	stream, err := a.openStream(ctx, "keepalive", PriorityKeepalive)
	if err != nil {
		return Allocation{}, err
	}
	return Allocation{Stream: stream, OneShot: true}, nil
}

// entityStream devolve o stream dedicado da entidade, criando no miss.
func (a *Allocator) entityStream(ctx context.Context, entityID int32) (Allocation, error) {
	return a.keyedStream(ctx, a.entityStreams, "e:"+strconv.Itoa(int(entityID)), "entity")
}

// chunkStream devolve o stream dedicado do chunk, criando no miss.
func (a *Allocator) chunkStream(ctx context.Context, pos protocol.ChunkPosition) (Allocation, error) {
	key := "c:" + strconv.Itoa(int(pos.X)) + ":" + strconv.Itoa(int(pos.Z))
	return a.keyedStream(ctx, a.chunkStreams, key, "chunk")
}

// keyedStream faz o lookup com renovação de TTL; no miss abre o stream
// fora do lock e resolve corridas de dupla abertura fechando a duplicata.
func (a *Allocator) keyedStream(ctx context.Context, cache *gocache.Cache, key, name string) (Allocation, error) {
	a.mu.Lock()
	if v, ok := cache.Get(key); ok {
		stream := v.(*SendStream)
		cache.Set(key, stream, StreamIdleTTL)
		a.mu.Unlock()
		return Allocation{Stream: stream}, nil
	}
	a.mu.Unlock()

	stream, err := a.openStream(ctx, name, PriorityGameUpdates)
	if err != nil {
		return Allocation{}, fmt.Errorf("transport: opening %s stream: %w", name, err)
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if v, ok := cache.Get(key); ok {
		// Outro Allocate ganhou a corrida; descarta a duplicata.
		existing := v.(*SendStream)
		cache.Set(key, existing, StreamIdleTTL)
		stream.Close()
		return Allocation{Stream: existing}, nil
	}
	cache.Set(key, stream, StreamIdleTTL)
	return Allocation{Stream: stream}, nil
}

// Close encerra os streams compartilhados e evicta os keyed, fechando
// seus writer tasks.
func (a *Allocator) Close() {
	a.chunksStream.Close()
	a.chatStream.Close()
	a.miscStream.Close()

	a.mu.Lock()
	defer a.mu.Unlock()
	for key := range a.entityStreams.Items() {
		a.entityStreams.Delete(key)
	}
	for key := range a.chunkStreams.Items() {
		a.chunkStreams.Delete(key)
	}
}
