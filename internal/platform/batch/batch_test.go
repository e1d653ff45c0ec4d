package batch

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestChunkSplitsIntoBoundedSlices(t *testing.T) {
	keys := make([]int, 65)
	for i := range keys {
		keys[i] = i + 1
	}
	chunks := Chunk(keys, 30)
	require.Len(t, chunks, 3)
	require.Len(t, chunks[0], 30)
	require.Len(t, chunks[1], 30)
	require.Len(t, chunks[2], 5)
	require.Nil(t, Chunk(keys, 0))
	require.Nil(t, Chunk([]int{}, 30))
}

func TestUniqueDropsDuplicatesAndZeroValues(t *testing.T) {
	require.Equal(t, []string{"b", "a"}, Unique([]string{"b", "", "a", "b", "a"}))
}

func TestFetchMergesChunksAndToleratesMisses(t *testing.T) {
	keys := make([]string, 0, 70)
	for i := 0; i < 70; i++ {
		keys = append(keys, string(rune('A'+i%26))+string(rune('a'+i/26)))
	}
	var (
		mu    sync.Mutex
		sizes []int
	)
	fetch := func(ctx context.Context, chunk []string) (map[string]int, error) {
		mu.Lock()
		sizes = append(sizes, len(chunk))
		mu.Unlock()
		out := make(map[string]int)
		for i, k := range chunk {
			if i%2 == 0 {
				out[k] = len(k)
			}
		}
		return out, nil
	}
	got, err := Fetch(context.Background(), keys, Options{ChunkSize: 30}, fetch)
	require.NoError(t, err)
	require.Len(t, sizes, 3)
	for _, n := range sizes {
		require.LessOrEqual(t, n, 30)
	}
	require.Len(t, got, 15+15+5)
}

func TestFetchReturnsPartialResultOnChunkFailure(t *testing.T) {
	boom := errors.New("boom")
	keys := []int{1, 2, 3, 4}
	fetch := func(ctx context.Context, chunk []int) (map[int]string, error) {
		if chunk[0] == 3 {
			return nil, boom
		}
		out := make(map[int]string)
		for _, k := range chunk {
			out[k] = "ok"
		}
		return out, nil
	}
	got, err := Fetch(context.Background(), keys, Options{ChunkSize: 2, Concurrency: 1}, fetch)
	require.ErrorIs(t, err, boom)
	require.Equal(t, map[int]string{1: "ok", 2: "ok"}, got)
}

func TestFetchRejectsInvalidChunkSize(t *testing.T) {
	_, err := Fetch(context.Background(), []int{1}, Options{}, func(ctx context.Context, chunk []int) (map[int]int, error) {
		return nil, nil
	})
	require.Error(t, err)
}
