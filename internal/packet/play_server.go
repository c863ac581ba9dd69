// Copyright (c) 2025 Nishisan. All rights reserved.
// Use of this source code is governed by the N-QuicProxy License (Non-Commercial Evaluation)
// that can be found in the LICENSE file.

package packet

import "github.com/nishisan-dev/n-quicproxy/internal/protocol"

// Clientbound, estado Play. O subconjunto com campos tipados é o
// inspecionado pelo tradutor e pelo alocador de streams; o restante
// viaja como blob opaco.
const (
	CBBundleDelimiter               int32 = 0x00
	CBSpawnEntity                   int32 = 0x01
	CBSpawnExperienceOrb            int32 = 0x02
	CBEntityAnimation               int32 = 0x03
	CBAwardStatistics               int32 = 0x04
	CBAcknowledgeBlockChange        int32 = 0x05
	CBSetBlockDestroyStage          int32 = 0x06
	CBBlockEntityData               int32 = 0x07
	CBBlockAction                   int32 = 0x08
	CBBlockUpdate                   int32 = 0x09
	CBBossBar                       int32 = 0x0a
	CBChangeDifficulty              int32 = 0x0b
	CBChunkBatchFinished            int32 = 0x0c
	CBChunkBatchStart               int32 = 0x0d
	CBChunkBiomes                   int32 = 0x0e
	CBClearTitles                   int32 = 0x0f
	CBCommandSuggestions            int32 = 0x10
	CBCommands                      int32 = 0x11
	CBCloseContainer                int32 = 0x12
	CBSetContainerContents          int32 = 0x13
	CBSetContainerProperty          int32 = 0x14
	CBSetContainerSlot              int32 = 0x15
	CBSetCooldown                   int32 = 0x16
	CBChatSuggestions               int32 = 0x17
	CBPluginMessage                 int32 = 0x18
	CBDamageEvent                   int32 = 0x19
	CBDeleteMessage                 int32 = 0x1a
	CBDisconnect                    int32 = 0x1b
	CBDisguisedChatMessage          int32 = 0x1c
	CBEntityEvent                   int32 = 0x1d
	CBExplosion                     int32 = 0x1e
	CBUnloadChunk                   int32 = 0x1f
	CBGameEvent                     int32 = 0x20
	CBOpenHorseScreen               int32 = 0x21
	CBHurtAnimation                 int32 = 0x22
	CBInitializeWorldBorder         int32 = 0x23
	CBKeepAlive                     int32 = 0x24
	CBChunkAndLightData             int32 = 0x25
	CBWorldEvent                    int32 = 0x26
	CBParticle                      int32 = 0x27
	CBUpdateLight                   int32 = 0x28
	CBLogin                         int32 = 0x29
	CBMapData                       int32 = 0x2a
	CBMerchantOffers                int32 = 0x2b
	CBUpdateEntityPosition          int32 = 0x2c
	CBUpdateEntityPositionAndRot    int32 = 0x2d
	CBUpdateEntityRotation          int32 = 0x2e
	CBMoveVehicle                   int32 = 0x2f
	CBOpenBook                      int32 = 0x30
	CBOpenScreen                    int32 = 0x31
	CBOpenSignEditor                int32 = 0x32
	CBPing                          int32 = 0x33
	CBPingResponse                  int32 = 0x34
	CBPlaceGhostRecipe              int32 = 0x35
	CBPlayerAbilities               int32 = 0x36
	CBPlayerChatMessage             int32 = 0x37
	CBEndCombat                     int32 = 0x38
	CBEnterCombat                   int32 = 0x39
	CBCombatDeath                   int32 = 0x3a
	CBPlayerInfoRemove              int32 = 0x3b
	CBPlayerInfoUpdate              int32 = 0x3c
	CBLookAt                        int32 = 0x3d
	CBSynchronizePlayerPosition     int32 = 0x3e
	CBUpdateRecipeBook              int32 = 0x3f
	CBRemoveEntities                int32 = 0x40
	CBRemoveEntityEffect            int32 = 0x41
	CBResetScore                    int32 = 0x42
	CBRemoveResourcePack            int32 = 0x43
	CBAddResourcePack               int32 = 0x44
	CBRespawn                       int32 = 0x45
	CBSetHeadRotation               int32 = 0x46
	CBUpdateSectionBlocks           int32 = 0x47
	CBSelectAdvancementsTab         int32 = 0x48
	CBServerData                    int32 = 0x49
	CBSetActionBarText              int32 = 0x4a
	CBSetWorldBorderCenter          int32 = 0x4b
	CBSetWorldBorderLerpSize        int32 = 0x4c
	CBSetWorldBorderSize            int32 = 0x4d
	CBSetWorldBorderWarningDelay    int32 = 0x4e
	CBSetWorldBorderWarningDistance int32 = 0x4f
	CBSetCamera                     int32 = 0x50
	CBSetHeldItem                   int32 = 0x51
	CBSetCenterChunk                int32 = 0x52
	CBSetViewDistance               int32 = 0x53
	CBSetDefaultSpawnPosition       int32 = 0x54
	CBDisplayObjective              int32 = 0x55
	CBSetEntityMetadata             int32 = 0x56
	CBLinkEntities                  int32 = 0x57
	CBSetEntityVelocity             int32 = 0x58
	CBSetEquipment                  int32 = 0x59
	CBSetExperience                 int32 = 0x5a
	CBSetHealth                     int32 = 0x5b
	CBUpdateObjectives              int32 = 0x5c
	CBSetPassengers                 int32 = 0x5d
	CBUpdateTeams                   int32 = 0x5e
	CBUpdateScore                   int32 = 0x5f
	CBSetSimulationDistance         int32 = 0x60
	CBSetSubtitleText               int32 = 0x61
	CBUpdateTime                    int32 = 0x62
	CBSetTitleText                  int32 = 0x63
	CBSetTitleAnimationTimes        int32 = 0x64
	CBEntitySoundEffect             int32 = 0x65
	CBSoundEffect                   int32 = 0x66
	CBStartConfiguration            int32 = 0x67
	CBStopSound                     int32 = 0x68
	CBSystemChatMessage             int32 = 0x69
	CBSetTabListHeaderAndFooter     int32 = 0x6a
	CBTagQueryResponse              int32 = 0x6b
	CBPickUpItem                    int32 = 0x6c
	CBTeleportEntity                int32 = 0x6d
	CBSetTickingState               int32 = 0x6e
	CBStepTick                      int32 = 0x6f
	CBUpdateAdvancements            int32 = 0x70
	CBUpdateAttributes              int32 = 0x71
	CBEntityEffect                  int32 = 0x72
	CBUpdateRecipes                 int32 = 0x73
	CBUpdateTags                    int32 = 0x74
)

// SpawnEntity registra a posição absoluta inicial de uma entidade.
type SpawnEntity struct {
	EntityID  int32
	UUIDHi    uint64
	UUIDLo    uint64
	Kind      int32
	X         float64
	Y         float64
	Z         float64
	Pitch     float32
	Yaw       float32
	HeadYaw   float32
	Data      int32
	VelocityX int16
	VelocityY int16
	VelocityZ int16
}

func (p *SpawnEntity) encode(e *protocol.Encoder) {
	e.WriteVarInt(p.EntityID)
	e.WriteUUID(p.UUIDHi, p.UUIDLo)
	e.WriteVarInt(p.Kind)
	e.WriteF64(p.X)
	e.WriteF64(p.Y)
	e.WriteF64(p.Z)
	e.WriteAngle(p.Pitch)
	e.WriteAngle(p.Yaw)
	e.WriteAngle(p.HeadYaw)
	e.WriteVarInt(p.Data)
	e.WriteI16(p.VelocityX)
	e.WriteI16(p.VelocityY)
	e.WriteI16(p.VelocityZ)
}

func decodeSpawnEntity(d *protocol.Decoder) (Body, error) {
	var p SpawnEntity
	var err error
	if p.EntityID, err = d.ReadVarInt(); err != nil {
		return nil, err
	}
	if p.UUIDHi, p.UUIDLo, err = d.ReadUUID(); err != nil {
		return nil, err
	}
	if p.Kind, err = d.ReadVarInt(); err != nil {
		return nil, err
	}
	if p.X, err = d.ReadF64(); err != nil {
		return nil, err
	}
	if p.Y, err = d.ReadF64(); err != nil {
		return nil, err
	}
	if p.Z, err = d.ReadF64(); err != nil {
		return nil, err
	}
	if p.Pitch, err = d.ReadAngle(); err != nil {
		return nil, err
	}
	if p.Yaw, err = d.ReadAngle(); err != nil {
		return nil, err
	}
	if p.HeadYaw, err = d.ReadAngle(); err != nil {
		return nil, err
	}
	if p.Data, err = d.ReadVarInt(); err != nil {
		return nil, err
	}
	if p.VelocityX, err = d.ReadI16(); err != nil {
		return nil, err
	}
	if p.VelocityY, err = d.ReadI16(); err != nil {
		return nil, err
	}
	if p.VelocityZ, err = d.ReadI16(); err != nil {
		return nil, err
	}
	return &p, nil
}

// SpawnExperienceOrb também registra posição absoluta.
type SpawnExperienceOrb struct {
	EntityID int32
	X        float64
	Y        float64
	Z        float64
	Amount   uint16
}

func (p *SpawnExperienceOrb) encode(e *protocol.Encoder) {
	e.WriteVarInt(p.EntityID)
	e.WriteF64(p.X)
	e.WriteF64(p.Y)
	e.WriteF64(p.Z)
	e.WriteU16(p.Amount)
}

func decodeSpawnExperienceOrb(d *protocol.Decoder) (Body, error) {
	var p SpawnExperienceOrb
	var err error
	if p.EntityID, err = d.ReadVarInt(); err != nil {
		return nil, err
	}
	if p.X, err = d.ReadF64(); err != nil {
		return nil, err
	}
	if p.Y, err = d.ReadF64(); err != nil {
		return nil, err
	}
	if p.Z, err = d.ReadF64(); err != nil {
		return nil, err
	}
	if p.Amount, err = d.ReadU16(); err != nil {
		return nil, err
	}
	return &p, nil
}

// BlockUpdate expõe a posição do bloco; o restante do frame é opaco.
type BlockUpdate struct {
	Position protocol.BlockPosition
}

func (p *BlockUpdate) encode(e *protocol.Encoder) {
	e.WriteBlockPosition(p.Position)
}

func decodeBlockUpdate(d *protocol.Decoder) (Body, error) {
	pos, err := d.ReadBlockPosition()
	if err != nil {
		return nil, err
	}
	return &BlockUpdate{Position: pos}, nil
}

// UnloadChunk carrega as coordenadas do chunk (z antes de x no wire, 765).
type UnloadChunk struct {
	ChunkZ int32
	ChunkX int32
}

func (p *UnloadChunk) encode(e *protocol.Encoder) {
	e.WriteI32(p.ChunkZ)
	e.WriteI32(p.ChunkX)
}

func decodeUnloadChunk(d *protocol.Decoder) (Body, error) {
	var p UnloadChunk
	var err error
	if p.ChunkZ, err = d.ReadI32(); err != nil {
		return nil, err
	}
	if p.ChunkX, err = d.ReadI32(); err != nil {
		return nil, err
	}
	return &p, nil
}

// ChunkAndLightData expõe as coordenadas do chunk; o volume de dados é opaco.
type ChunkAndLightData struct {
	ChunkX int32
	ChunkZ int32
}

func (p *ChunkAndLightData) encode(e *protocol.Encoder) {
	e.WriteI32(p.ChunkX)
	e.WriteI32(p.ChunkZ)
}

func decodeChunkAndLightData(d *protocol.Decoder) (Body, error) {
	var p ChunkAndLightData
	var err error
	if p.ChunkX, err = d.ReadI32(); err != nil {
		return nil, err
	}
	if p.ChunkZ, err = d.ReadI32(); err != nil {
		return nil, err
	}
	return &p, nil
}

// UpdateLight expõe as coordenadas do chunk (VarInt no wire).
type UpdateLight struct {
	ChunkX int32
	ChunkZ int32
}

func (p *UpdateLight) encode(e *protocol.Encoder) {
	e.WriteVarInt(p.ChunkX)
	e.WriteVarInt(p.ChunkZ)
}

func decodeUpdateLight(d *protocol.Decoder) (Body, error) {
	var p UpdateLight
	var err error
	if p.ChunkX, err = d.ReadVarInt(); err != nil {
		return nil, err
	}
	if p.ChunkZ, err = d.ReadVarInt(); err != nil {
		return nil, err
	}
	return &p, nil
}

// UpdateEntityPosition é um movimento relativo (delta fixed-point 1/4096).
type UpdateEntityPosition struct {
	EntityID int32
	DeltaX   int16
	DeltaY   int16
	DeltaZ   int16
	OnGround bool
}

func (p *UpdateEntityPosition) encode(e *protocol.Encoder) {
	e.WriteVarInt(p.EntityID)
	e.WriteI16(p.DeltaX)
	e.WriteI16(p.DeltaY)
	e.WriteI16(p.DeltaZ)
	e.WriteBool(p.OnGround)
}

func decodeUpdateEntityPosition(d *protocol.Decoder) (Body, error) {
	var p UpdateEntityPosition
	var err error
	if p.EntityID, err = d.ReadVarInt(); err != nil {
		return nil, err
	}
	if p.DeltaX, err = d.ReadI16(); err != nil {
		return nil, err
	}
	if p.DeltaY, err = d.ReadI16(); err != nil {
		return nil, err
	}
	if p.DeltaZ, err = d.ReadI16(); err != nil {
		return nil, err
	}
	if p.OnGround, err = d.ReadBool(); err != nil {
		return nil, err
	}
	return &p, nil
}

// UpdateEntityPositionAndRotation combina delta relativo e rotação.
type UpdateEntityPositionAndRotation struct {
	EntityID int32
	DeltaX   int16
	DeltaY   int16
	DeltaZ   int16
	Yaw      float32
	Pitch    float32
	OnGround bool
}

func (p *UpdateEntityPositionAndRotation) encode(e *protocol.Encoder) {
	e.WriteVarInt(p.EntityID)
	e.WriteI16(p.DeltaX)
	e.WriteI16(p.DeltaY)
	e.WriteI16(p.DeltaZ)
	e.WriteAngle(p.Yaw)
	e.WriteAngle(p.Pitch)
	e.WriteBool(p.OnGround)
}

func decodeUpdateEntityPositionAndRotation(d *protocol.Decoder) (Body, error) {
	var p UpdateEntityPositionAndRotation
	var err error
	if p.EntityID, err = d.ReadVarInt(); err != nil {
		return nil, err
	}
	if p.DeltaX, err = d.ReadI16(); err != nil {
		return nil, err
	}
	if p.DeltaY, err = d.ReadI16(); err != nil {
		return nil, err
	}
	if p.DeltaZ, err = d.ReadI16(); err != nil {
		return nil, err
	}
	if p.Yaw, err = d.ReadAngle(); err != nil {
		return nil, err
	}
	if p.Pitch, err = d.ReadAngle(); err != nil {
		return nil, err
	}
	if p.OnGround, err = d.ReadBool(); err != nil {
		return nil, err
	}
	return &p, nil
}

// UpdateEntityRotation atualiza apenas yaw/pitch.
type UpdateEntityRotation struct {
	EntityID int32
	Yaw      float32
	Pitch    float32
	OnGround bool
}

func (p *UpdateEntityRotation) encode(e *protocol.Encoder) {
	e.WriteVarInt(p.EntityID)
	e.WriteAngle(p.Yaw)
	e.WriteAngle(p.Pitch)
	e.WriteBool(p.OnGround)
}

func decodeUpdateEntityRotation(d *protocol.Decoder) (Body, error) {
	var p UpdateEntityRotation
	var err error
	if p.EntityID, err = d.ReadVarInt(); err != nil {
		return nil, err
	}
	if p.Yaw, err = d.ReadAngle(); err != nil {
		return nil, err
	}
	if p.Pitch, err = d.ReadAngle(); err != nil {
		return nil, err
	}
	if p.OnGround, err = d.ReadBool(); err != nil {
		return nil, err
	}
	return &p, nil
}

// RemoveEntities remove um conjunto de entidades.
type RemoveEntities struct {
	EntityIDs []int32
}

func (p *RemoveEntities) encode(e *protocol.Encoder) {
	e.WriteVarInt(int32(len(p.EntityIDs)))
	for _, id := range p.EntityIDs {
		e.WriteVarInt(id)
	}
}

func decodeRemoveEntities(d *protocol.Decoder) (Body, error) {
	length, err := d.ReadVarInt()
	if err != nil {
		return nil, err
	}
	if length < 0 {
		return nil, protocol.ErrNegativeLen
	}
	ids := make([]int32, 0, length)
	for i := int32(0); i < length; i++ {
		id, err := d.ReadVarInt()
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return &RemoveEntities{EntityIDs: ids}, nil
}

// UpdateSectionBlocks expõe a posição empacotada da seção de chunk.
type UpdateSectionBlocks struct {
	SectionPosition int64
}

func (p *UpdateSectionBlocks) encode(e *protocol.Encoder) {
	e.WriteI64(p.SectionPosition)
}

func decodeUpdateSectionBlocks(d *protocol.Decoder) (Body, error) {
	v, err := d.ReadI64()
	if err != nil {
		return nil, err
	}
	return &UpdateSectionBlocks{SectionPosition: v}, nil
}

// ChunkPosition retorna a coluna de chunk da seção.
func (p *UpdateSectionBlocks) ChunkPosition() protocol.ChunkPosition {
	return protocol.UnpackChunkSectionPosition(p.SectionPosition)
}

// EntityBound expõe apenas o entity id inicial (VarInt) de pacotes
// roteados pelo alocador para o stream da entidade; o restante é opaco.
type EntityBound struct {
	EntityID int32
}

func (p *EntityBound) encode(e *protocol.Encoder) {
	e.WriteVarInt(p.EntityID)
}

func decodeLeadingEntityID(d *protocol.Decoder) (Body, error) {
	id, err := d.ReadVarInt()
	if err != nil {
		return nil, err
	}
	return &EntityBound{EntityID: id}, nil
}

// EntityEvent é o único pacote por-entidade cujo id no wire é um i32 cru.
type EntityEvent struct {
	EntityID int32
}

func (p *EntityEvent) encode(e *protocol.Encoder) {
	e.WriteI32(p.EntityID)
}

func decodeEntityEvent(d *protocol.Decoder) (Body, error) {
	id, err := d.ReadI32()
	if err != nil {
		return nil, err
	}
	return &EntityEvent{EntityID: id}, nil
}

// SetEntityVelocity carrega a velocidade de uma entidade.
type SetEntityVelocity struct {
	EntityID  int32
	VelocityX int16
	VelocityY int16
	VelocityZ int16
}

func (p *SetEntityVelocity) encode(e *protocol.Encoder) {
	e.WriteVarInt(p.EntityID)
	e.WriteI16(p.VelocityX)
	e.WriteI16(p.VelocityY)
	e.WriteI16(p.VelocityZ)
}

func decodeSetEntityVelocity(d *protocol.Decoder) (Body, error) {
	var p SetEntityVelocity
	var err error
	if p.EntityID, err = d.ReadVarInt(); err != nil {
		return nil, err
	}
	if p.VelocityX, err = d.ReadI16(); err != nil {
		return nil, err
	}
	if p.VelocityY, err = d.ReadI16(); err != nil {
		return nil, err
	}
	if p.VelocityZ, err = d.ReadI16(); err != nil {
		return nil, err
	}
	return &p, nil
}

// TeleportEntity é um movimento absoluto. Também é o pacote sintetizado
// pelo tradutor no lugar de movimentos relativos.
type TeleportEntity struct {
	EntityID int32
	X        float64
	Y        float64
	Z        float64
	Yaw      float32
	Pitch    float32
	OnGround bool
}

func (p *TeleportEntity) encode(e *protocol.Encoder) {
	e.WriteVarInt(p.EntityID)
	e.WriteF64(p.X)
	e.WriteF64(p.Y)
	e.WriteF64(p.Z)
	e.WriteAngle(p.Yaw)
	e.WriteAngle(p.Pitch)
	e.WriteBool(p.OnGround)
}

func decodeTeleportEntity(d *protocol.Decoder) (Body, error) {
	var p TeleportEntity
	var err error
	if p.EntityID, err = d.ReadVarInt(); err != nil {
		return nil, err
	}
	if p.X, err = d.ReadF64(); err != nil {
		return nil, err
	}
	if p.Y, err = d.ReadF64(); err != nil {
		return nil, err
	}
	if p.Z, err = d.ReadF64(); err != nil {
		return nil, err
	}
	if p.Yaw, err = d.ReadAngle(); err != nil {
		return nil, err
	}
	if p.Pitch, err = d.ReadAngle(); err != nil {
		return nil, err
	}
	if p.OnGround, err = d.ReadBool(); err != nil {
		return nil, err
	}
	return &p, nil
}

var serverPlayPackets = table{
	CBBundleDelimiter:               {name: "BundleDelimiter"},
	CBSpawnEntity:                   {name: "SpawnEntity", decode: decodeSpawnEntity},
	CBSpawnExperienceOrb:            {name: "SpawnExperienceOrb", decode: decodeSpawnExperienceOrb},
	CBEntityAnimation:               {name: "EntityAnimation", decode: decodeLeadingEntityID},
	CBAwardStatistics:               {name: "AwardStatistics"},
	CBAcknowledgeBlockChange:        {name: "AcknowledgeBlockChange"},
	CBSetBlockDestroyStage:          {name: "SetBlockDestroyStage"},
	CBBlockEntityData:               {name: "BlockEntityData"},
	CBBlockAction:                   {name: "BlockAction"},
	CBBlockUpdate:                   {name: "BlockUpdate", decode: decodeBlockUpdate},
	CBBossBar:                       {name: "BossBar"},
	CBChangeDifficulty:              {name: "ChangeDifficulty"},
	CBChunkBatchFinished:            {name: "ChunkBatchFinished"},
	CBChunkBatchStart:               {name: "ChunkBatchStart"},
	CBChunkBiomes:                   {name: "ChunkBiomes"},
	CBClearTitles:                   {name: "ClearTitles"},
	CBCommandSuggestions:            {name: "CommandSuggestions"},
	CBCommands:                      {name: "Commands"},
	CBCloseContainer:                {name: "CloseContainer"},
	CBSetContainerContents:          {name: "SetContainerContents"},
	CBSetContainerProperty:          {name: "SetContainerProperty"},
	CBSetContainerSlot:              {name: "SetContainerSlot"},
	CBSetCooldown:                   {name: "SetCooldown"},
	CBChatSuggestions:               {name: "ChatSuggestions"},
	CBPluginMessage:                 {name: "PluginMessage"},
	CBDamageEvent:                   {name: "DamageEvent", decode: decodeLeadingEntityID},
	CBDeleteMessage:                 {name: "DeleteMessage"},
	CBDisconnect:                    {name: "Disconnect"},
	CBDisguisedChatMessage:          {name: "DisguisedChatMessage"},
	CBEntityEvent:                   {name: "EntityEvent", decode: decodeEntityEvent},
	CBExplosion:                     {name: "Explosion"},
	CBUnloadChunk:                   {name: "UnloadChunk", decode: decodeUnloadChunk},
	CBGameEvent:                     {name: "GameEvent"},
	CBOpenHorseScreen:               {name: "OpenHorseScreen"},
	CBHurtAnimation:                 {name: "HurtAnimation", decode: decodeLeadingEntityID},
	CBInitializeWorldBorder:         {name: "InitializeWorldBorder"},
	CBKeepAlive:                     {name: "KeepAlive"},
	CBChunkAndLightData:             {name: "ChunkAndLightData", decode: decodeChunkAndLightData},
	CBWorldEvent:                    {name: "WorldEvent"},
	CBParticle:                      {name: "Particle"},
	CBUpdateLight:                   {name: "UpdateLight", decode: decodeUpdateLight},
	CBLogin:                         {name: "Login"},
	CBMapData:                       {name: "MapData"},
	CBMerchantOffers:                {name: "MerchantOffers"},
	CBUpdateEntityPosition:          {name: "UpdateEntityPosition", decode: decodeUpdateEntityPosition},
	CBUpdateEntityPositionAndRot:    {name: "UpdateEntityPositionAndRotation", decode: decodeUpdateEntityPositionAndRotation},
	CBUpdateEntityRotation:          {name: "UpdateEntityRotation", decode: decodeUpdateEntityRotation},
	CBMoveVehicle:                   {name: "MoveVehicle"},
	CBOpenBook:                      {name: "OpenBook"},
	CBOpenScreen:                    {name: "OpenScreen"},
	CBOpenSignEditor:                {name: "OpenSignEditor"},
	CBPing:                          {name: "Ping"},
	CBPingResponse:                  {name: "PingResponse"},
	CBPlaceGhostRecipe:              {name: "PlaceGhostRecipe"},
	CBPlayerAbilities:               {name: "PlayerAbilities"},
	CBPlayerChatMessage:             {name: "PlayerChatMessage"},
	CBEndCombat:                     {name: "EndCombat"},
	CBEnterCombat:                   {name: "EnterCombat"},
	CBCombatDeath:                   {name: "CombatDeath"},
	CBPlayerInfoRemove:              {name: "PlayerInfoRemove"},
	CBPlayerInfoUpdate:              {name: "PlayerInfoUpdate"},
	CBLookAt:                        {name: "LookAt"},
	CBSynchronizePlayerPosition:     {name: "SynchronizePlayerPosition"},
	CBUpdateRecipeBook:              {name: "UpdateRecipeBook"},
	CBRemoveEntities:                {name: "RemoveEntities", decode: decodeRemoveEntities},
	CBRemoveEntityEffect:            {name: "RemoveEntityEffect"},
	CBResetScore:                    {name: "ResetScore"},
	CBRemoveResourcePack:            {name: "RemoveResourcePack"},
	CBAddResourcePack:               {name: "AddResourcePack"},
	CBRespawn:                       {name: "Respawn"},
	CBSetHeadRotation:               {name: "SetHeadRotation", decode: decodeLeadingEntityID},
	CBUpdateSectionBlocks:           {name: "UpdateSectionBlocks", decode: decodeUpdateSectionBlocks},
	CBSelectAdvancementsTab:         {name: "SelectAdvancementsTab"},
	CBServerData:                    {name: "ServerData"},
	CBSetActionBarText:              {name: "SetActionBarText"},
	CBSetWorldBorderCenter:          {name: "SetWorldBorderCenter"},
	CBSetWorldBorderLerpSize:        {name: "SetWorldBorderLerpSize"},
	CBSetWorldBorderSize:            {name: "SetWorldBorderSize"},
	CBSetWorldBorderWarningDelay:    {name: "SetWorldBorderWarningDelay"},
	CBSetWorldBorderWarningDistance: {name: "SetWorldBorderWarningDistance"},
	CBSetCamera:                     {name: "SetCamera"},
	CBSetHeldItem:                   {name: "SetHeldItem"},
	CBSetCenterChunk:                {name: "SetCenterChunk"},
	CBSetViewDistance:               {name: "SetViewDistance"},
	CBSetDefaultSpawnPosition:       {name: "SetDefaultSpawnPosition"},
	CBDisplayObjective:              {name: "DisplayObjective"},
	CBSetEntityMetadata:             {name: "SetEntityMetadata"},
	CBLinkEntities:                  {name: "LinkEntities"},
	CBSetEntityVelocity:             {name: "SetEntityVelocity", decode: decodeSetEntityVelocity},
	CBSetEquipment:                  {name: "SetEquipment"},
	CBSetExperience:                 {name: "SetExperience"},
	CBSetHealth:                     {name: "SetHealth"},
	CBUpdateObjectives:              {name: "UpdateObjectives"},
	CBSetPassengers:                 {name: "SetPassengers"},
	CBUpdateTeams:                   {name: "UpdateTeams"},
	CBUpdateScore:                   {name: "UpdateScore"},
	CBSetSimulationDistance:         {name: "SetSimulationDistance"},
	CBSetSubtitleText:               {name: "SetSubtitleText"},
	CBUpdateTime:                    {name: "UpdateTime"},
	CBSetTitleText:                  {name: "SetTitleText"},
	CBSetTitleAnimationTimes:        {name: "SetTitleAnimationTimes"},
	CBEntitySoundEffect:             {name: "EntitySoundEffect"},
	CBSoundEffect:                   {name: "SoundEffect"},
	CBStartConfiguration:            {name: "StartConfiguration"},
	CBStopSound:                     {name: "StopSound"},
	CBSystemChatMessage:             {name: "SystemChatMessage"},
	CBSetTabListHeaderAndFooter:     {name: "SetTabListHeaderAndFooter"},
	CBTagQueryResponse:              {name: "TagQueryResponse"},
	CBPickUpItem:                    {name: "PickUpItem"},
	CBTeleportEntity:                {name: "TeleportEntity", decode: decodeTeleportEntity},
	CBSetTickingState:               {name: "SetTickingState"},
	CBStepTick:                      {name: "StepTick"},
	CBUpdateAdvancements:            {name: "UpdateAdvancements"},
	CBUpdateAttributes:              {name: "UpdateAttributes"},
	CBEntityEffect:                  {name: "EntityEffect", decode: decodeLeadingEntityID},
	CBUpdateRecipes:                 {name: "UpdateRecipes"},
	CBUpdateTags:                    {name: "UpdateTags"},
}
