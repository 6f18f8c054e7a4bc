package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dragonsmp/dragonsmp"
	"github.com/dragonsmp/dragonsmp/internal/metrics"
)

func main() {
	// start mock status API (see mock_server.go)
	go StartMockStatusAPI(":9999")
	time.Sleep(100 * time.Millisecond)

	site, err := dragonsmp.NewSite(
		dragonsmp.WithStatusAPI("http://localhost:9999/3/"),
		dragonsmp.WithServerAddress("dragonsmp.shock.gg"),
		dragonsmp.WithPollingInterval(5*time.Second),
		dragonsmp.WithPort(3001),
		dragonsmp.WithMetrics(metrics.NewRegistry()),
	)
	if err != nil {
		slog.Error("failed to create site", "error", err)
		os.Exit(1)
	}

	fmt.Println()
	fmt.Println("  ╔═══════════════════════════════════════════════════════╗")
	fmt.Println("  ║                                                       ║")
	fmt.Println("  ║   DragonSMP Demo                                      ║")
	fmt.Println("  ║                                                       ║")
	fmt.Println("  ║   API:     http://localhost:3001/api/status           ║")
	fmt.Println("  ║   Live:    http://localhost:3001/api/sse              ║")
	fmt.Println("  ║   Metrics: http://localhost:3001/metrics              ║")
	fmt.Println("  ║                                                       ║")
	fmt.Println("  ║   Terminal UI against the same mock:                  ║")
	fmt.Println("  ║   dragonsmp tui -c example/config.yaml                ║")
	fmt.Println("  ║                                                       ║")
	fmt.Println("  ║   Press Ctrl+C to stop                                ║")
	fmt.Println("  ║                                                       ║")
	fmt.Println("  ╚═══════════════════════════════════════════════════════╝")
	fmt.Println()

	// set up context with signal handling for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := site.Start(ctx); err != nil {
		slog.Error("site error", "error", err)
		os.Exit(1)
	}
}
