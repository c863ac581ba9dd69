// Copyright (c) 2025 Nishisan. All rights reserved.
// Use of this source code is governed by the N-QuicProxy License (Non-Commercial Evaluation)
// that can be found in the LICENSE file.

package packet

// Serverbound, estado Play. Todos os pacotes são carregados como blobs
// opacos: nenhum campo serverbound é inspecionado pelo multiplexador.
const (
	SBConfirmTeleportation          int32 = 0x00
	SBQueryBlockEntityTag           int32 = 0x01
	SBChangeDifficulty              int32 = 0x02
	SBAcknowledgeMessage            int32 = 0x03
	SBChatCommand                   int32 = 0x04
	SBChatMessage                   int32 = 0x05
	SBPlayerSession                 int32 = 0x06
	SBChunkBatchReceived            int32 = 0x07
	SBClientStatus                  int32 = 0x08
	SBClientInformation             int32 = 0x09
	SBRequestCommandSuggestions     int32 = 0x0a
	SBAcknowledgeConfiguration      int32 = 0x0b
	SBClickContainerButton          int32 = 0x0c
	SBClickContainer                int32 = 0x0d
	SBCloseContainer                int32 = 0x0e
	SBChangeContainerSlotState      int32 = 0x0f
	SBPluginMessage                 int32 = 0x10
	SBEditBook                      int32 = 0x11
	SBQueryEntityTag                int32 = 0x12
	SBInteract                      int32 = 0x13
	SBJigsawGenerate                int32 = 0x14
	SBKeepAlive                     int32 = 0x15
	SBLockDifficulty                int32 = 0x16
	SBSetPlayerPosition             int32 = 0x17
	SBSetPlayerPositionAndRotation  int32 = 0x18
	SBSetPlayerRotation             int32 = 0x19
	SBSetPlayerOnGround             int32 = 0x1a
	SBMoveVehicle                   int32 = 0x1b
	SBPaddleBoat                    int32 = 0x1c
	SBPickItem                      int32 = 0x1d
	SBPingRequest                   int32 = 0x1e
	SBPlaceRecipe                   int32 = 0x1f
	SBPlayerAbilityState            int32 = 0x20
	SBPlayerAction                  int32 = 0x21
	SBPlayerCommand                 int32 = 0x22
	SBPlayerInput                   int32 = 0x23
	SBPong                          int32 = 0x24
	SBChangeRecipeBookSettings      int32 = 0x25
	SBSetSeenRecipe                 int32 = 0x26
	SBRenameItem                    int32 = 0x27
	SBResourcePackResponse          int32 = 0x28
	SBSeenAdvancements              int32 = 0x29
	SBSelectTrade                   int32 = 0x2a
	SBSetBeaconEffect               int32 = 0x2b
	SBSetHeldItem                   int32 = 0x2c
	SBProgramCommandBlock           int32 = 0x2d
	SBProgramCommandBlockMinecart   int32 = 0x2e
	SBSetCreativeModeSlot           int32 = 0x2f
	SBProgramJigsawBlock            int32 = 0x30
	SBProgramStructureBlock         int32 = 0x31
	SBUpdateSign                    int32 = 0x32
	SBSwingArm                      int32 = 0x33
	SBSpectatorTeleportToEntity     int32 = 0x34
	SBUseItemOn                     int32 = 0x35
	SBUseItem                       int32 = 0x36
)

var clientPlayPackets = table{
	SBConfirmTeleportation:         {name: "ConfirmTeleportation"},
	SBQueryBlockEntityTag:          {name: "QueryBlockEntityTag"},
	SBChangeDifficulty:             {name: "ChangeDifficulty"},
	SBAcknowledgeMessage:           {name: "AcknowledgeMessage"},
	SBChatCommand:                  {name: "ChatCommand"},
	SBChatMessage:                  {name: "ChatMessage"},
	SBPlayerSession:                {name: "PlayerSession"},
	SBChunkBatchReceived:           {name: "ChunkBatchReceived"},
	SBClientStatus:                 {name: "ClientStatus"},
	SBClientInformation:            {name: "ClientInformation"},
	SBRequestCommandSuggestions:    {name: "RequestCommandSuggestions"},
	SBAcknowledgeConfiguration:     {name: "AcknowledgeConfiguration"},
	SBClickContainerButton:         {name: "ClickContainerButton"},
	SBClickContainer:               {name: "ClickContainer"},
	SBCloseContainer:               {name: "CloseContainer"},
	SBChangeContainerSlotState:     {name: "ChangeContainerSlotState"},
	SBPluginMessage:                {name: "PluginMessage"},
	SBEditBook:                     {name: "EditBook"},
	SBQueryEntityTag:               {name: "QueryEntityTag"},
	SBInteract:                     {name: "Interact"},
	SBJigsawGenerate:               {name: "JigsawGenerate"},
	SBKeepAlive:                    {name: "KeepAlive"},
	SBLockDifficulty:               {name: "LockDifficulty"},
	SBSetPlayerPosition:            {name: "SetPlayerPosition"},
	SBSetPlayerPositionAndRotation: {name: "SetPlayerPositionAndRotation"},
	SBSetPlayerRotation:            {name: "SetPlayerRotation"},
	SBSetPlayerOnGround:            {name: "SetPlayerOnGround"},
	SBMoveVehicle:                  {name: "MoveVehicle"},
	SBPaddleBoat:                   {name: "PaddleBoat"},
	SBPickItem:                     {name: "PickItem"},
	SBPingRequest:                  {name: "PingRequest"},
	SBPlaceRecipe:                  {name: "PlaceRecipe"},
	SBPlayerAbilityState:           {name: "PlayerAbilityState"},
	SBPlayerAction:                 {name: "PlayerAction"},
	SBPlayerCommand:                {name: "PlayerCommand"},
	SBPlayerInput:                  {name: "PlayerInput"},
	SBPong:                         {name: "Pong"},
	SBChangeRecipeBookSettings:     {name: "ChangeRecipeBookSettings"},
	SBSetSeenRecipe:                {name: "SetSeenRecipe"},
	SBRenameItem:                   {name: "RenameItem"},
	SBResourcePackResponse:         {name: "ResourcePackResponse"},
	SBSeenAdvancements:             {name: "SeenAdvancements"},
	SBSelectTrade:                  {name: "SelectTrade"},
	SBSetBeaconEffect:              {name: "SetBeaconEffect"},
	SBSetHeldItem:                  {name: "SetHeldItem"},
	SBProgramCommandBlock:          {name: "ProgramCommandBlock"},
	SBProgramCommandBlockMinecart:  {name: "ProgramCommandBlockMinecart"},
	SBSetCreativeModeSlot:          {name: "SetCreativeModeSlot"},
	SBProgramJigsawBlock:           {name: "ProgramJigsawBlock"},
	SBProgramStructureBlock:        {name: "ProgramStructureBlock"},
	SBUpdateSign:                   {name: "UpdateSign"},
	SBSwingArm:                     {name: "SwingArm"},
	SBSpectatorTeleportToEntity:    {name: "SpectatorTeleportToEntity"},
	SBUseItemOn:                    {name: "UseItemOn"},
	SBUseItem:                      {name: "UseItem"},
}
