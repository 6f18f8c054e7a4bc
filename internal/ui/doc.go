// Package ui holds the interaction state of the DragonSMP site controller
// and the pure transition functions that act on it.
//
// Nothing in this package touches clocks, the network, or the clipboard.
// Transitions return the next [State] together with a list of [Effect]
// values; the owner of the state (the root Controller) is responsible for
// executing them, for example by arming the toast dismissal timer.
package ui
