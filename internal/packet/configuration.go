// Copyright (c) 2025 Nishisan. All rights reserved.
// Use of this source code is governed by the N-QuicProxy License (Non-Commercial Evaluation)
// that can be found in the LICENSE file.

package packet

// Serverbound, estado Configuration.
const (
	SBConfigClientInformation    int32 = 0x00
	SBConfigPluginMessage        int32 = 0x01
	SBFinishConfiguration        int32 = 0x02
	SBConfigKeepAlive            int32 = 0x03
	SBConfigPong                 int32 = 0x04
	SBConfigResourcePackResponse int32 = 0x05
)

// Clientbound, estado Configuration.
const (
	CBConfigPluginMessage      int32 = 0x00
	CBConfigDisconnect         int32 = 0x01
	CBFinishConfiguration      int32 = 0x02
	CBConfigKeepAlive          int32 = 0x03
	CBConfigPing               int32 = 0x04
	CBConfigRegistryData       int32 = 0x05
	CBConfigRemoveResourcePack int32 = 0x06
	CBConfigAddResourcePack    int32 = 0x07
	CBConfigFeatureFlags       int32 = 0x08
	CBConfigUpdateTags         int32 = 0x09
)

var clientConfigurationPackets = table{
	SBConfigClientInformation:    {name: "ClientInformation"},
	SBConfigPluginMessage:        {name: "PluginMessage"},
	SBFinishConfiguration:        {name: "FinishConfiguration"},
	SBConfigKeepAlive:            {name: "KeepAlive"},
	SBConfigPong:                 {name: "Pong"},
	SBConfigResourcePackResponse: {name: "ResourcePackResponse"},
}

var serverConfigurationPackets = table{
	CBConfigPluginMessage:      {name: "PluginMessage"},
	CBConfigDisconnect:         {name: "Disconnect"},
	CBFinishConfiguration:      {name: "FinishConfiguration"},
	CBConfigKeepAlive:          {name: "KeepAlive"},
	CBConfigPing:               {name: "Ping"},
	CBConfigRegistryData:       {name: "RegistryData"},
	CBConfigRemoveResourcePack: {name: "RemoveResourcePack"},
	CBConfigAddResourcePack:    {name: "AddResourcePack"},
	CBConfigFeatureFlags:       {name: "FeatureFlags"},
	CBConfigUpdateTags:         {name: "UpdateTags"},
}
