// Package dragonsmp provides the status and interaction controller of the
// DragonSMP Minecraft server front end, and the companion HTTP backend.
//
// # Controller
//
// A [Controller] polls the server status API, keeps the single toast
// notification, detects the secret key sequence, resolves the secret panel
// and tracks the application form modal. Front ends feed it events and
// render its [Snapshot]:
//
//	c, _ := dragonsmp.NewController(dragonsmp.WithLogger(logger))
//
//	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
//	defer stop()
//	go c.Run(ctx)
//
//	for snap := range c.Subscribe() {
//	    render(snap)
//	}
//
// Poll results are applied only when they belong to the most recently issued
// poll, so a slow response can never overwrite a newer one. Timers are
// cancellable: a second [Controller.Notify] within 3000 ms cancels the first
// dismissal, and closing the secret panel cancels a pending link.
//
// # Site
//
// A [Site] runs the companion HTTP service: /, /api/stats, /api/health,
// /api/status and /api/sse behind secure headers, CORS for one origin and a
// per-address fixed-window rate limit on /api.
//
//	site, _ := dragonsmp.NewSite(
//	    dragonsmp.WithPort(3001),
//	    dragonsmp.WithAllowedOrigin("https://dragonsmp.example"),
//	)
//	site.Start(ctx) // blocks until context is cancelled
//
// # Configuration
//
// Both use the functional options pattern; options that do not concern the
// value being built are ignored:
//
//	c, err := dragonsmp.NewController(
//	    dragonsmp.WithServerAddress("play.example.net"),
//	    dragonsmp.WithPollingInterval(time.Minute),
//	    dragonsmp.WithMetrics(reg),
//	)
package dragonsmp
