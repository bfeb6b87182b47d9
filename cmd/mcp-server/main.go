// mcp-server exposes the aggregated job store to MCP clients over stdio.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/server"

	"jobmate/aggregator-service/internal/config"
	"jobmate/aggregator-service/internal/jobs"
	"jobmate/aggregator-service/internal/mcptools"
	"jobmate/aggregator-service/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	st, err := store.Open(context.Background(), cfg.DatabaseURL)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Store error: %v\n", err)
		os.Exit(1)
	}
	defer st.Close()

	s := server.NewMCPServer("jobmate-aggregator", "1.0.0")
	mcptools.Register(s, jobs.NewService(st))

	if err := server.ServeStdio(s); err != nil {
		fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
		os.Exit(1)
	}
}
