// Package store keeps the latest server status record for the companion
// HTTP service.
//
// The main components are:
//
//   - [Store]: interface for the record and its subscriptions
//   - [MemoryStore]: in-memory implementation with pub/sub
//   - [StatusRecord]: JSON representation of the latest poll
//
// Records are ordered by poll sequence number: an outcome older than the
// stored one is rejected, so the record always reflects the most recently
// issued poll that completed. Subscribers receive updates via channels with
// non-blocking sends (slow subscribers miss updates rather than block).
package store
