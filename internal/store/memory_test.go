package store

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()

	require.NoError(t, s.Create(ctx, "b", "k", []byte("v1")))

	rec, err := s.Get(ctx, "b", "k")
	require.NoError(t, err)
	assert.Equal(t, "k", rec.Key)
	assert.Equal(t, []byte("v1"), rec.Value)
	assert.Equal(t, int64(1), rec.Version)

	err = s.Create(ctx, "b", "k", []byte("v2"))
	assert.ErrorIs(t, err, ErrAlreadyExists)
}

func TestMemory_GetMissing(t *testing.T) {
	s := NewMemory()
	_, err := s.Get(context.Background(), "b", "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemory_CompareAndSwap(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()
	require.NoError(t, s.Create(ctx, "b", "k", []byte("v1")))

	require.NoError(t, s.CompareAndSwap(ctx, "b", "k", []byte("v2"), 1))

	rec, err := s.Get(ctx, "b", "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v2"), rec.Value)
	assert.Equal(t, int64(2), rec.Version)

	// Stale version loses.
	err = s.CompareAndSwap(ctx, "b", "k", []byte("v3"), 1)
	assert.ErrorIs(t, err, ErrVersionConflict)

	// Missing key is not a conflict.
	err = s.CompareAndSwap(ctx, "b", "missing", []byte("v"), 1)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemory_List(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()
	require.NoError(t, s.Create(ctx, "b", "c1/u2", []byte("b")))
	require.NoError(t, s.Create(ctx, "b", "c1/u1", []byte("a")))
	require.NoError(t, s.Create(ctx, "b", "c2/u1", []byte("c")))

	recs, err := s.List(ctx, "b", "c1/")
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "c1/u1", recs[0].Key)
	assert.Equal(t, "c1/u2", recs[1].Key)

	all, err := s.List(ctx, "b", "")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	none, err := s.List(ctx, "missing-bucket", "")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestMemory_ValueIsolated(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()
	val := []byte("original")
	require.NoError(t, s.Create(ctx, "b", "k", val))

	val[0] = 'X'
	rec, err := s.Get(ctx, "b", "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("original"), rec.Value)

	rec.Value[0] = 'Y'
	again, err := s.Get(ctx, "b", "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("original"), again.Value)
}

// Under concurrent CAS on one key, exactly one writer per version wins.
func TestMemory_ConcurrentCAS(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()
	require.NoError(t, s.Create(ctx, "b", "k", []byte("0")))

	const writers = 16
	var wg sync.WaitGroup
	wins := make(chan int, writers)

	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			err := s.CompareAndSwap(ctx, "b", "k", []byte(fmt.Sprintf("w%d", i)), 1)
			if err == nil {
				wins <- i
			} else {
				assert.ErrorIs(t, err, ErrVersionConflict)
			}
		}(i)
	}
	wg.Wait()
	close(wins)

	var winners int
	for range wins {
		winners++
	}
	assert.Equal(t, 1, winners)

	rec, err := s.Get(ctx, "b", "k")
	require.NoError(t, err)
	assert.Equal(t, int64(2), rec.Version)
}

func TestMemory_ConcurrentCreate(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()

	const creators = 16
	var wg sync.WaitGroup
	var successes int
	var mu sync.Mutex

	for i := 0; i < creators; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := s.Create(ctx, "b", "k", []byte("v")); err == nil {
				mu.Lock()
				successes++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
}
