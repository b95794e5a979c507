package quadstore

import (
	"context"

	"github.com/roach88/quadstore/internal/rdf"
)

// AddStream drains quads until the channel closes, then adds them in one call.
// If ctx ends first nothing is written and ctx's error is returned.
func (s *Store) AddStream(ctx context.Context, quads <-chan rdf.Quad) (int, error) {
	batch, err := drain(ctx, quads)
	if err != nil {
		return 0, err
	}
	return s.Add(ctx, batch...)
}

// DeleteStream drains quads until the channel closes, then deletes them in one call.
func (s *Store) DeleteStream(ctx context.Context, quads <-chan rdf.Quad) (int, error) {
	batch, err := drain(ctx, quads)
	if err != nil {
		return 0, err
	}
	return s.Delete(ctx, batch...)
}

func drain(ctx context.Context, quads <-chan rdf.Quad) ([]rdf.Quad, error) {
	var batch []rdf.Quad
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case q, ok := <-quads:
			if !ok {
				return batch, nil
			}
			batch = append(batch, q)
		}
	}
}
