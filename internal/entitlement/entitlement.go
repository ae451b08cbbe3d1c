package entitlement

import (
	"context"
	"errors"
	"fmt"
)

// Plan is the entitlement tier of an identity.
type Plan string

const (
	PlanFree    Plan = "free"
	PlanPremium Plan = "premium"
)

// FreeLimit is the number of actions a free-tier identity may consume.
const FreeLimit = 10

// ErrQuotaExceeded is returned by the gate check when a free-tier
// identity has used up its allowance.
var ErrQuotaExceeded = errors.New("free usage limit reached")

// Usage is the free-tier counter as read from identity metadata.
// Present distinguishes "stored value is 0" from "never stored" — the
// two must not be conflated, or a legitimate zero count would look like
// a fresh quota period.
type Usage struct {
	Count   int
	Present bool
}

// Store is the narrow capability interface over the identity provider's
// metadata. Implementations own where the counter actually lives
// (metadata bag, dedicated table, cache); callers only see these three
// operations.
type Store interface {
	// GetPlanAndUsage resolves the identity's plan and, for free-tier
	// identities, its stored usage counter.
	GetPlanAndUsage(ctx context.Context, userID int64) (Plan, Usage, error)

	// InitUsage writes a 0 counter for the identity, preserving any
	// sibling metadata. Called once when no counter exists yet.
	InitUsage(ctx context.Context, userID int64) error

	// IncrementUsage adds 1 to the stored counter. A missing or
	// non-numeric stored value counts as 0 before the increment.
	IncrementUsage(ctx context.Context, userID int64) error
}

// Entitlement is the per-request resolution result: the caller's plan
// and, for free-tier callers, the working usage count.
type Entitlement struct {
	Plan      Plan
	FreeUsage int
}

// Allowed is the gate check every paid action runs before touching an
// external generation API. Premium always passes; free passes while the
// working count is under the limit.
func (e Entitlement) Allowed() bool {
	if e.Plan == PlanPremium {
		return true
	}
	return e.FreeUsage < FreeLimit
}

// Resolver decides whether a paid action may proceed and maintains the
// free-tier usage counter.
type Resolver struct {
	store Store
}

func NewResolver(store Store) *Resolver {
	return &Resolver{store: store}
}

// Resolve determines the caller's plan and working usage count.
//
// For free-tier identities with no stored counter, the counter is
// initialized to 0 in the store (sibling metadata preserved) and 0 is
// adopted as the working count. A stored counter is adopted as-is,
// including a stored 0 — presence, not truthiness, decides.
//
// Any store failure is fatal to the request; the resolver does not retry.
func (r *Resolver) Resolve(ctx context.Context, userID int64) (Entitlement, error) {
	plan, usage, err := r.store.GetPlanAndUsage(ctx, userID)
	if err != nil {
		return Entitlement{}, fmt.Errorf("resolving plan for user %d: %w", userID, err)
	}

	if plan == PlanPremium {
		// Premium identities are not metered.
		return Entitlement{Plan: PlanPremium}, nil
	}

	if !usage.Present {
		// Fresh quota period: persist the zero so later reads see it.
		if err := r.store.InitUsage(ctx, userID); err != nil {
			return Entitlement{}, fmt.Errorf("initializing usage for user %d: %w", userID, err)
		}
		usage.Count = 0
	}

	return Entitlement{Plan: PlanFree, FreeUsage: usage.Count}, nil
}

// RecordUsage increments the stored counter after a successful action.
// Callers treat failures as best-effort: log and move on — the
// generation and the creation write already succeeded.
func (r *Resolver) RecordUsage(ctx context.Context, userID int64) error {
	if err := r.store.IncrementUsage(ctx, userID); err != nil {
		return fmt.Errorf("incrementing usage for user %d: %w", userID, err)
	}
	return nil
}
