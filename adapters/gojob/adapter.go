// Package gojob wires the credential revalidation sweep into a go-job queue
// so hosts can schedule it.
package gojob

import (
	"context"
	"fmt"
	"strings"
	"time"

	job "github.com/goliatone/go-job"
	"github.com/goliatone/go-job/queue"
	glog "github.com/goliatone/go-logger/glog"

	"github.com/goliatone/go-chat/core"
)

const JobIDRevalidateCredentials = "chat.credentials.revalidate"

// CredentialRevalidator is the slice of the chat service the sweep job needs.
type CredentialRevalidator interface {
	RevalidateCredentials(ctx context.Context) (core.RevalidationResult, error)
}

// RetryPolicy bounds nack behavior so a failing sweep cannot requeue forever.
type RetryPolicy struct {
	MaxAttempts     int
	MaxDelay        time.Duration
	DeadLetterOnMax bool
}

// NormalizeAttempt enforces the retry bounds on a nack.
func (p RetryPolicy) NormalizeAttempt(opts queue.NackOptions, attempt int) queue.NackOptions {
	out := opts
	out.Reason = strings.TrimSpace(out.Reason)
	if out.Delay < 0 {
		out.Delay = 0
	}
	if p.MaxDelay > 0 && out.Delay > p.MaxDelay {
		out.Delay = p.MaxDelay
	}
	if out.DeadLetter {
		out.Requeue = false
	}
	if p.MaxAttempts > 0 && attempt >= p.MaxAttempts {
		out.Requeue = false
		if p.DeadLetterOnMax || out.DeadLetter {
			out.DeadLetter = true
		}
	}
	if !out.Requeue && !out.DeadLetter {
		out.Requeue = true
	}
	return out
}

// NewRevalidationMessage builds the execution message hosts enqueue to run a
// sweep. The idempotency key collapses duplicate schedules of the same tick.
func NewRevalidationMessage(idempotencyKey string) *job.ExecutionMessage {
	return &job.ExecutionMessage{
		JobID:          JobIDRevalidateCredentials,
		IdempotencyKey: strings.TrimSpace(idempotencyKey),
		Parameters:     map[string]any{},
	}
}

// EnqueueRevalidation pushes a sweep message onto the queue.
func EnqueueRevalidation(ctx context.Context, enqueuer queue.Enqueuer, idempotencyKey string) error {
	if enqueuer == nil {
		return fmt.Errorf("gojob: enqueuer is required")
	}
	return enqueuer.Enqueue(ctx, NewRevalidationMessage(idempotencyKey))
}

// RevalidationHandler consumes sweep deliveries and runs the credential
// revalidation against the chat service.
type RevalidationHandler struct {
	service CredentialRevalidator
	policy  RetryPolicy
	logger  glog.Logger
}

func NewRevalidationHandler(service CredentialRevalidator, policy RetryPolicy, logger glog.Logger) (*RevalidationHandler, error) {
	if service == nil {
		return nil, fmt.Errorf("gojob: revalidation service is required")
	}
	return &RevalidationHandler{
		service: service,
		policy:  policy,
		logger:  glog.Ensure(logger),
	}, nil
}

// Handle runs one delivery to completion: ack on success, bounded nack on
// failure, dead-letter on a job id the handler does not own.
func (h *RevalidationHandler) Handle(ctx context.Context, delivery queue.Delivery, attempt int) error {
	if h == nil || h.service == nil {
		return fmt.Errorf("gojob: revalidation handler is not configured")
	}
	if delivery == nil {
		return fmt.Errorf("gojob: delivery is required")
	}
	msg := delivery.Message()
	if msg == nil || strings.TrimSpace(msg.JobID) != JobIDRevalidateCredentials {
		return delivery.Nack(ctx, queue.NackOptions{
			DeadLetter: true,
			Reason:     "gojob: unexpected job id",
		})
	}

	result, err := h.service.RevalidateCredentials(ctx)
	if err != nil {
		h.logger.Error("credential revalidation sweep failed", "error", err)
		return delivery.Nack(ctx, h.policy.NormalizeAttempt(queue.NackOptions{
			Requeue: true,
			Reason:  err.Error(),
		}, attempt))
	}

	h.logger.Info("credential revalidation sweep finished",
		"checked", result.Checked,
		"cleared", result.Cleared,
		"aborted", result.Aborted,
	)
	return delivery.Ack(ctx)
}
