package generator

import (
	"encoding/json"
	"fmt"
)

// SeedSettings renders the baseline placeholder settings document for a new
// instance. Operators edit it after scaffolding.
func SeedSettings(name string, port int) ([]byte, error) {
	settings := map[string]any{
		"name":     name,
		"port":     port,
		"logLevel": "info",
	}
	return json.MarshalIndent(settings, "", "  ")
}

// SeedPersona renders the placeholder persona document.
func SeedPersona(name string) []byte {
	return []byte(fmt.Sprintf("# Persona: %s\n\nDescribe how this instance should behave.\n", name))
}

// ChannelRecord is one entry of a channel-discovery export. The helper that
// produces these lives outside this tool; only its output contract is
// consumed here, as configuration-seeding input.
type ChannelRecord struct {
	GuildID     string `json:"guildId"`
	GuildName   string `json:"guildName"`
	ChannelID   string `json:"channelId"`
	ChannelName string `json:"channelName"`
}

// ParseChannelExport decodes and validates a channel-discovery export.
func ParseChannelExport(data []byte) ([]ChannelRecord, error) {
	var records []ChannelRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("channel export is not a JSON array: %w", err)
	}

	for i, rec := range records {
		if rec.GuildID == "" || rec.ChannelID == "" {
			return nil, fmt.Errorf("channel export entry %d missing guildId or channelId", i)
		}
	}

	return records, nil
}

// SeedChannels re-encodes a validated channel export for the instance's
// configuration directory.
func SeedChannels(records []ChannelRecord) ([]byte, error) {
	return json.MarshalIndent(records, "", "  ")
}
