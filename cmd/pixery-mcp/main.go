package main

import (
	"context"
	"log"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"pixery/internal/adapters/archive"
	mcpadapter "pixery/internal/adapters/mcp"
	"pixery/internal/adapters/providers"
	"pixery/internal/adapters/sqlite"
	"pixery/internal/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("pixery-mcp: %v", err)
	}

	store, err := sqlite.Open(cfg.DatabasePath())
	if err != nil {
		log.Fatalf("pixery-mcp: %v", err)
	}
	defer store.Close()

	arch, err := archive.New(cfg.Archive.Root)
	if err != nil {
		log.Fatalf("pixery-mcp: %v", err)
	}

	generators := providers.New(providers.Config{
		OpenAIKey:     cfg.Providers.OpenAIKey,
		FalKey:        cfg.Providers.FalKey,
		GeminiKey:     cfg.Providers.GeminiKey,
		SelfHostedURL: cfg.Providers.SelfHostedURL,
	})

	mcpServer := server.NewMCPServer(
		"pixery-mcp",
		"0.1.0",
		server.WithToolCapabilities(true),
	)

	mcpServer.AddTool(
		mcp.NewTool("ping",
			mcp.WithDescription("Health check, returns pong"),
		),
		func(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return mcp.NewToolResultText("pong"), nil
		},
	)

	mcpadapter.RegisterReadTools(mcpServer, store, store)
	mcpadapter.RegisterWriteTools(mcpServer, mcpadapter.WriteDeps{
		Gallery:    store,
		Jobs:       store,
		Archive:    arch,
		Generators: generators,
	})

	if err := server.ServeStdio(mcpServer); err != nil {
		log.Fatalf("pixery-mcp: %v", err)
	}
}
