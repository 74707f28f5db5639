package update

import (
	"context"
	"errors"
	"fmt"

	"holoupdate/internal/debug"
	appErrors "holoupdate/internal/errors"
)

// ErrAllStrategiesFailed is matched when every step of a cascade failed.
var ErrAllStrategiesFailed = errors.New("all checkout strategies failed")

// Strategy is one attempt in a fallback cascade.
type Strategy struct {
	Name    string
	Attempt func(ctx context.Context) error
}

// Checkouter is the subset of git operations the checkout cascade needs.
type Checkouter interface {
	Checkout(ctx context.Context, ref string) error
	ResetHard(ctx context.Context, ref string) error
	FetchRefspec(ctx context.Context, refspec string) error
	FetchAll(ctx context.Context) error
}

// RunCascade runs strategies in order and stops at the first success,
// returning its name. Later strategies are never attempted once one
// succeeds. Context cancellation stops the cascade between attempts.
func RunCascade(ctx context.Context, strategies []Strategy) (string, error) {
	errs := make([]error, 0, len(strategies))
	for _, s := range strategies {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		err := s.Attempt(ctx)
		if err == nil {
			debug.Logf("cascade: %s succeeded", s.Name)
			return s.Name, nil
		}
		debug.Logf("cascade: %s failed: %v", s.Name, err)
		errs = append(errs, fmt.Errorf("%s: %w", s.Name, err))
	}
	joined := errors.Join(append([]error{ErrAllStrategiesFailed}, errs...)...)
	return "", appErrors.New(appErrors.CodeAllStrategiesFailed, joined.Error(), joined)
}

// CheckoutStrategies returns the ordered fallbacks for moving the working
// tree onto tag:
//
//  1. plain checkout
//  2. fetch the single tag ref, then hard reset to it
//  3. fetch everything, then hard reset to the tag
//  4. hard reset to tags/<tag>
func CheckoutStrategies(g Checkouter, tag string) []Strategy {
	return []Strategy{
		{
			Name: "checkout",
			Attempt: func(ctx context.Context) error {
				return g.Checkout(ctx, tag)
			},
		},
		{
			Name: "fetch-tag-reset",
			Attempt: func(ctx context.Context) error {
				refspec := fmt.Sprintf("refs/tags/%s:refs/tags/%s", tag, tag)
				if err := g.FetchRefspec(ctx, refspec); err != nil {
					return err
				}
				return g.ResetHard(ctx, tag)
			},
		},
		{
			Name: "fetch-all-reset",
			Attempt: func(ctx context.Context) error {
				if err := g.FetchAll(ctx); err != nil {
					return err
				}
				return g.ResetHard(ctx, tag)
			},
		},
		{
			Name: "reset-tags-ref",
			Attempt: func(ctx context.Context) error {
				return g.ResetHard(ctx, "tags/"+tag)
			},
		},
	}
}
