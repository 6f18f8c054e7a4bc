// Package server provides the DragonSMP companion HTTP service.
//
// Routes:
//
//   - GET /: plain text liveness message
//   - GET /api/stats: site statistics as JSON
//   - GET /api/health: health probe with the current timestamp
//   - GET /api/status: latest Minecraft server status record
//   - GET /api/sse: Server-Sent Events stream of status records
//   - GET /metrics: Prometheus exposition, when a registry is configured
//
// Every response carries hardened security headers and the CORS policy for
// the one allowed browser origin. Requests under /api are limited per client
// address by a fixed window; requests over the limit get 429 with a fixed
// message.
//
// The server supports graceful shutdown via context cancellation, with a
// 5-second timeout for in-flight requests.
package server
