package core

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrProviderNotFound   = errors.New("core: provider not registered")
	ErrCredentialMissing  = errors.New("core: credential missing")
	ErrCredentialRejected = errors.New("core: credential rejected by provider")
	ErrTransportFailure   = errors.New("core: provider transport failure")
	ErrSwitchSuperseded   = errors.New("core: switch attempt superseded")
)

type MessageRole string

const (
	MessageRoleUser      MessageRole = "user"
	MessageRoleAssistant MessageRole = "assistant"
)

type Message struct {
	ID         string
	Role       MessageRole
	ProviderID string
	Body       string
	CreatedAt  time.Time
}

// SwitchPhase names the coordinator state for observability. Confirmed and
// Reverted are resting states equivalent to Idle with a known active provider.
type SwitchPhase string

const (
	SwitchPhaseIdle               SwitchPhase = "idle"
	SwitchPhaseAwaitingCredential SwitchPhase = "awaiting_credential"
	SwitchPhaseValidating         SwitchPhase = "validating"
	SwitchPhaseRetrying           SwitchPhase = "retrying"
	SwitchPhaseConfirmed          SwitchPhase = "confirmed"
	SwitchPhaseReverted           SwitchPhase = "reverted"
)

type ProviderStateKind string

const (
	ProviderStateTentative ProviderStateKind = "tentative"
	ProviderStateConfirmed ProviderStateKind = "confirmed"
	ProviderStateReverted  ProviderStateKind = "reverted"
)

type SwitchFailureReason string

const (
	ReasonNone               SwitchFailureReason = ""
	ReasonUnknownProvider    SwitchFailureReason = "unknown_provider"
	ReasonMissingCredential  SwitchFailureReason = "missing_credential"
	ReasonCredentialRejected SwitchFailureReason = "credential_rejected"
	ReasonTransportFailure   SwitchFailureReason = "transport_failure"
)

// ProviderStateEvent is delivered to the UI capability on every state change
// the attempt owns. Exactly one terminal event (confirmed or reverted) is
// emitted per owned switch attempt; a tentative event may or may not precede
// it depending on whether the target requires a credential.
type ProviderStateEvent struct {
	Kind       ProviderStateKind
	ProviderID string
	Reason     SwitchFailureReason
	Message    string
}

type SwitchOutcome string

const (
	OutcomeConfirmed  SwitchOutcome = "confirmed"
	OutcomeReverted   SwitchOutcome = "reverted"
	OutcomeSuperseded SwitchOutcome = "superseded"
)

type SwitchResult struct {
	Outcome        SwitchOutcome
	ActiveProvider string
	Reason         SwitchFailureReason
	Epoch          uint64
}

// switchAttempt is the transient record of one in-progress provider switch.
// It is created when a switch is requested and discarded at a terminal
// transition; the epoch is the staleness-detection mechanism.
type switchAttempt struct {
	epoch        uint64
	target       string
	previous     string
	candidateKey string
	retriesUsed  int
}

func normalizeProviderID(id string) string {
	return strings.TrimSpace(id)
}
