// Command minenorm converts mine production, area and coordinate values from
// the command line, checks regression fixtures, and serves the normalizer as
// MCP tools.
//
// Usage:
//
//	minenorm convert production "2,4 Mt/Jahr"
//	minenorm record data/mock/mine_records.json --json
//	minenorm verify cmd/minenorm/testdata/fixtures.yaml
//	minenorm mcp serve
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
