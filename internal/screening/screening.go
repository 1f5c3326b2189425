// Package screening ranks sanction records by name similarity to a query.
// It is a pure pipeline: validate, score every candidate, filter by
// threshold, stable-sort by score, truncate. No I/O, no logging, no retries.
package screening

import (
	"context"
	"errors"
	"sort"

	"github.com/go-playground/validator/v10"
	"github.com/rotisserie/eris"
	"golang.org/x/sync/errgroup"

	"github.com/kesiliance/screening-cli/internal/matcher"
	"github.com/kesiliance/screening-cli/internal/model"
)

// parallelMin is the candidate count below which sharding is not worth the
// goroutine overhead.
const parallelMin = 256

var validate = validator.New()

// Request holds the caller-supplied screening parameters. Threshold and
// Limit have no implicit defaults here; callers (HTTP layer, CLI) apply
// theirs before building the request.
type Request struct {
	QueryName string
	Threshold int `validate:"gte=0,lte=100"`
	Limit     int `validate:"gt=0"`

	// Workers shards candidate scoring across this many goroutines when
	// positive. Output is identical to the serial path; ties keep the
	// candidate slice's original order either way.
	Workers int
}

// Validate checks Threshold and Limit, returning *InvalidParameterError on
// the first violation.
func (r Request) Validate() error {
	err := validate.Struct(r)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return eris.Wrap(err, "screening: validate request")
	}

	switch verrs[0].Field() {
	case "Threshold":
		return &InvalidParameterError{Param: "threshold", Value: r.Threshold, Reason: "must be in [0,100]"}
	case "Limit":
		return &InvalidParameterError{Param: "limit", Value: r.Limit, Reason: "must be positive"}
	}
	return eris.Wrap(err, "screening: validate request")
}

// Screen scores every candidate against the query name, keeps those at or
// above the threshold, and returns them ordered by score descending,
// truncated to the limit. Candidates with equal scores stay in their input
// order. The candidate slice is never mutated.
func Screen(ctx context.Context, req Request, candidates []model.Sanction) ([]model.Match, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	scores, err := scoreAll(ctx, req, candidates)
	if err != nil {
		return nil, err
	}

	matches := make([]model.Match, 0, len(candidates))
	for i, c := range candidates {
		if scores[i] >= float64(req.Threshold) {
			matches = append(matches, model.Match{
				SanctionID: c.ID,
				Name:       c.Name,
				Country:    c.Country,
				Source:     c.Source,
				Score:      scores[i],
			})
		}
	}

	// Stable keeps input order among equal scores; that ordering is part of
	// the observable contract.
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})

	if len(matches) > req.Limit {
		matches = matches[:req.Limit]
	}
	return matches, nil
}

// scoreAll fills one score per candidate, indexed identically to the input.
func scoreAll(ctx context.Context, req Request, candidates []model.Sanction) ([]float64, error) {
	scores := make([]float64, len(candidates))

	if req.Workers <= 1 || len(candidates) < parallelMin {
		for i, c := range candidates {
			if err := ctx.Err(); err != nil {
				return nil, eris.Wrap(err, "screening: cancelled")
			}
			scores[i] = matcher.WRatio(req.QueryName, c.Name)
		}
		return scores, nil
	}

	g, ctx := errgroup.WithContext(ctx)
	chunk := (len(candidates) + req.Workers - 1) / req.Workers
	for start := 0; start < len(candidates); start += chunk {
		end := min(start+chunk, len(candidates))
		g.Go(func() error {
			for i := start; i < end; i++ {
				if err := ctx.Err(); err != nil {
					return eris.Wrap(err, "screening: cancelled")
				}
				scores[i] = matcher.WRatio(req.QueryName, candidates[i].Name)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return scores, nil
}
