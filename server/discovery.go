package server

import (
	"encoding/json"
	"fmt"
	"os"
)

// discoveryFile mirrors the .mcp.json layout clients read to find the server.
type discoveryFile struct {
	MCPServers map[string]discoveryEntry `json:"mcpServers"`
}

type discoveryEntry struct {
	Type string `json:"type"`
	URL  string `json:"url"`
}

// WriteDiscoveryFile writes a .mcp.json at path pointing MCP clients at the
// HTTP endpoint. Clients look the server up under the "rstudio" key.
func WriteDiscoveryFile(path, url string) error {
	body, err := json.MarshalIndent(discoveryFile{
		MCPServers: map[string]discoveryEntry{
			"rstudio": {Type: "http", URL: url},
		},
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("server: encode discovery file: %w", err)
	}
	body = append(body, '\n')
	if err := os.WriteFile(path, body, 0o644); err != nil {
		return fmt.Errorf("server: write discovery file: %w", err)
	}
	return nil
}
