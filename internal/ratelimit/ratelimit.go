// Package ratelimit implements the per-identity pre-check every settlement
// entry point runs before doing mutating work.
package ratelimit

import (
	"context"
	"time"
)

// Settlement buckets. Each bucket is limited independently.
const (
	BucketDirect       = "settle_direct"
	BucketGatewayBegin = "gateway_begin"
	BucketConfirm      = "gateway_confirm"
)

// Decision is the outcome of a rate-limit check.
type Decision struct {
	Allowed    bool
	Remaining  int
	RetryAfter time.Duration
}

// Limiter checks whether identity may perform one more action in bucket.
type Limiter interface {
	Check(ctx context.Context, identity, bucket string) (Decision, error)
}

// Allow is a Limiter that admits everything.
type Allow struct{}

// Check always allows.
func (Allow) Check(context.Context, string, string) (Decision, error) {
	return Decision{Allowed: true}, nil
}
