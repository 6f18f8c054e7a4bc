// Package poller periodically fetches the game server's status document.
//
// The main components are:
//
//   - [Client]: HTTP client wrapper with size limits and an optional timeout
//   - [Scheduler]: polls one status URL immediately and then at a fixed
//     interval, numbering every poll tick
//   - [Result]: outcome of one poll tick
//
// Each tick carries a monotonically increasing sequence number and cancels
// the request of the tick before it. Consumers apply a result only when its
// sequence number equals [Scheduler.Issued], so a slow response can never
// overwrite the answer to a later request.
package poller
