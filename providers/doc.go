// Package providers contains built-in chat provider implementations.
//
// Local providers (eliza) answer in-process and carry no credential. Cloud
// providers (gemini, openaicompat) speak JSON over HTTP through the transport
// package and expose credential validation to the switch coordinator.
package providers
