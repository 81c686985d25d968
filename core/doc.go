// Package core contains the canonical chat domain contracts, entities, and
// the provider-switch orchestration logic. Lower-level adapters must depend
// on this package; core must not depend on provider-specific or
// transport-specific adapters.
package core
