package gateway

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Load fetches one collection as part of a LoadAll.
type Load func(ctx context.Context) error

// Into returns a Load that stores g's records in dst. dst is written only
// when the load succeeds.
func Into[T Entity[T]](g *Gateway[T], dst *[]T) Load {
	return func(ctx context.Context) error {
		res := g.GetAll(ctx)
		if !res.OK() {
			return res.Err()
		}
		*dst = res.Records()
		return nil
	}
}

// LoadAll runs loads concurrently and waits for all of them. The first
// failure cancels the rest and is returned; callers must then discard any
// partially filled destinations.
func LoadAll(ctx context.Context, loads ...Load) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, l := range loads {
		l := l
		g.Go(func() error { return l(ctx) })
	}
	return g.Wait()
}
