// Package batch splits large identifier sets into store-sized lookups.
package batch

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency bounds the number of chunks fetched at the same time.
const DefaultConcurrency = 4

// FetchFunc loads the records for one chunk of keys. Keys missing from the
// returned map are treated as misses, not errors.
type FetchFunc[K comparable, V any] func(ctx context.Context, keys []K) (map[K]V, error)

// Options tunes a Fetch call.
type Options struct {
	ChunkSize   int
	Concurrency int
}

// Unique returns keys without duplicates and zero values, preserving first-seen order.
func Unique[K comparable](keys []K) []K {
	var zero K
	seen := make(map[K]struct{}, len(keys))
	out := make([]K, 0, len(keys))
	for _, k := range keys {
		if k == zero {
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	return out
}

// Chunk partitions keys into consecutive slices of at most size elements.
func Chunk[K any](keys []K, size int) [][]K {
	if size <= 0 || len(keys) == 0 {
		return nil
	}
	chunks := make([][]K, 0, (len(keys)+size-1)/size)
	for start := 0; start < len(keys); start += size {
		end := start + size
		if end > len(keys) {
			end = len(keys)
		}
		chunks = append(chunks, keys[start:end])
	}
	return chunks
}

// Fetch deduplicates keys, fetches them in chunks concurrently and merges the
// partial results. A failing chunk does not stop the others: the merged map is
// always returned together with the joined chunk errors.
func Fetch[K comparable, V any](ctx context.Context, keys []K, opts Options, fetch FetchFunc[K, V]) (map[K]V, error) {
	if fetch == nil {
		return nil, errors.New("batch: fetch func required")
	}
	if opts.ChunkSize <= 0 {
		return nil, fmt.Errorf("batch: invalid chunk size %d", opts.ChunkSize)
	}
	concurrency := opts.Concurrency
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}

	chunks := Chunk(Unique(keys), opts.ChunkSize)
	merged := make(map[K]V)
	if len(chunks) == 0 {
		return merged, nil
	}

	var (
		mu   sync.Mutex
		errs []error
	)
	var g errgroup.Group
	g.SetLimit(concurrency)
	for i, chunk := range chunks {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
				return nil
			}
			found, err := fetch(ctx, chunk)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, fmt.Errorf("batch: chunk %d: %w", i, err))
				return nil
			}
			for k, v := range found {
				merged[k] = v
			}
			return nil
		})
	}
	_ = g.Wait()
	return merged, errors.Join(errs...)
}
