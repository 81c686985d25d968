// Package transport provides the HTTP plumbing cloud chat providers share:
// a bounded REST adapter and the error envelopes provider calls surface.
package transport
