package filetable_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lancs-net/vfspoll/internal/filetable"
)

func TestInsertResolveRelease(t *testing.T) {
	ft := filetable.New()
	require.NoError(t, ft.Insert(3, "payload"))

	h, err := ft.Resolve(3)
	require.NoError(t, err)
	assert.Equal(t, "payload", h.Object())
	assert.Equal(t, 3, h.Fd())
	assert.Equal(t, 1, ft.RefCount(3))

	h.Release()
	assert.Equal(t, 0, ft.RefCount(3))
}

func TestInsertDuplicateFails(t *testing.T) {
	ft := filetable.New()
	require.NoError(t, ft.Insert(1, "a"))
	err := ft.Insert(1, "b")
	assert.ErrorIs(t, err, filetable.ErrExists)
}

func TestResolveMissingFails(t *testing.T) {
	ft := filetable.New()
	_, err := ft.Resolve(7)
	assert.ErrorIs(t, err, filetable.ErrNotFound)
}

func TestRemoveDropsEntry(t *testing.T) {
	ft := filetable.New()
	require.NoError(t, ft.Insert(1, "a"))
	ft.Remove(1)
	_, err := ft.Resolve(1)
	assert.ErrorIs(t, err, filetable.ErrNotFound)
}

func TestConcurrentResolveRelease(t *testing.T) {
	ft := filetable.New()
	require.NoError(t, ft.Insert(1, "shared"))

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			h, err := ft.Resolve(1)
			if err != nil {
				return
			}
			defer h.Release()
			_ = h.Object()
		}()
	}
	wg.Wait()
	assert.Equal(t, 0, ft.RefCount(1))
}
