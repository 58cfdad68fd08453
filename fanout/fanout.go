// Package fanout runs independent read-only calls in parallel and gathers
// their results by position.
package fanout

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"
)

type Policy int

const (
	// FailFast cancels the batch on the first error and returns no results.
	FailFast Policy = iota
	// CollectAll lets every call finish and reports each failure.
	CollectAll
)

func (p Policy) String() string {
	switch p {
	case FailFast:
		return "failfast"
	case CollectAll:
		return "collectall"
	default:
		return fmt.Sprintf("Policy(%d)", int(p))
	}
}

func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(s) {
	case "failfast":
		return FailFast, nil
	case "collectall":
		return CollectAll, nil
	default:
		return 0, fmt.Errorf("unknown fanout policy %q", s)
	}
}

// UnmarshalText lets a Policy be read straight from configuration.
func (p *Policy) UnmarshalText(text []byte) error {
	parsed, err := ParsePolicy(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// ItemError ties a failure back to the input that caused it.
type ItemError struct {
	Index int
	Err   error
}

func (e *ItemError) Error() string {
	return fmt.Sprintf("item %d: %v", e.Index, e.Err)
}

func (e *ItemError) Unwrap() error { return e.Err }

// Gather calls fn once per input, with at most limit calls in flight
// (limit <= 0 means unbounded). out[i] always belongs to inputs[i].
//
// Under FailFast the first error is returned alone and out is nil. Under
// CollectAll out holds every successful result, failed slots keep the zero
// value, and the error combines one *ItemError per failure.
func Gather[In, Out any](ctx context.Context, inputs []In, limit int, policy Policy, fn func(context.Context, In) (Out, error)) ([]Out, error) {
	out := make([]Out, len(inputs))

	switch policy {
	case FailFast:
		g, gctx := errgroup.WithContext(ctx)
		if limit > 0 {
			g.SetLimit(limit)
		}
		for i, in := range inputs {
			g.Go(func() error {
				res, err := fn(gctx, in)
				if err != nil {
					return &ItemError{Index: i, Err: err}
				}
				out[i] = res
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
		return out, nil

	case CollectAll:
		var g errgroup.Group
		if limit > 0 {
			g.SetLimit(limit)
		}
		errs := make([]error, len(inputs))
		for i, in := range inputs {
			g.Go(func() error {
				res, err := fn(ctx, in)
				if err != nil {
					errs[i] = &ItemError{Index: i, Err: err}
					return nil
				}
				out[i] = res
				return nil
			})
		}
		_ = g.Wait()
		return out, multierr.Combine(errs...)

	default:
		return nil, fmt.Errorf("unknown fanout policy %v", policy)
	}
}

// Failed lists the indices that failed in an error returned by Gather.
func Failed(err error) []int {
	var idx []int
	for _, e := range multierr.Errors(err) {
		if ie, ok := e.(*ItemError); ok {
			idx = append(idx, ie.Index)
		}
	}
	return idx
}
