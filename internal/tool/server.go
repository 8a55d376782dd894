// SPDX-License-Identifier: Apache-2.0

// Package tool exposes the evidence locator as MCP tools.
package tool

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// NewServer creates an MCP server with every tool registered.
func NewServer(h *Handlers, version string) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{Name: "evidence-locator", Version: version}, nil)
	mcp.AddTool(server, MetadataLocateEvidence, h.LocateEvidence)
	mcp.AddTool(server, MetadataRenderResults, h.RenderResults)
	return server
}
