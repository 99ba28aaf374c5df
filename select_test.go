package vfspoll_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lancs-net/vfspoll"
	"github.com/lancs-net/vfspoll/internal/filetable"
	"github.com/lancs-net/vfspoll/internal/vol"
)

func TestFdSetBasic(t *testing.T) {
	s := vfspoll.NewFdSet(8)
	assert.False(t, s.IsSet(3))
	s.Set(3)
	assert.True(t, s.IsSet(3))
	s.Clear(3)
	assert.False(t, s.IsSet(3))

	s.Set(2)
	s.Set(70) // beyond the initial capacity, must grow
	assert.True(t, s.IsSet(70))
	s.Zero()
	assert.False(t, s.IsSet(2))
	assert.False(t, s.IsSet(70))
}

// TestSelectBitsetEquivalence covers the Bitset<->array equivalence
// testable property of spec.md §8: Select must report the same readiness
// Poll would for an equivalent FdRequest array.
func TestSelectBitsetEquivalence(t *testing.T) {
	ft := filetable.New()
	readablePipe := vol.NewPipe(16)
	_, err := readablePipe.Write([]byte("x"))
	require.NoError(t, err)
	writablePipe := vol.NewPipe(16)
	require.NoError(t, ft.Insert(0, readablePipe))
	require.NoError(t, ft.Insert(1, writablePipe))

	mux := vfspoll.New(ft)

	read := vfspoll.NewFdSet(2)
	write := vfspoll.NewFdSet(2)
	read.Set(0)
	write.Set(1)

	timeout := 100 * time.Millisecond
	total, err := mux.Select(2, read, write, nil, &timeout)
	require.NoError(t, err)

	assert.Equal(t, 2, total)
	assert.True(t, read.IsSet(0))
	assert.True(t, write.IsSet(1))
}

// TestSelectTimeoutLeavesSetsEmpty exercises the nothing-ready path: the
// bitsets are cleared even though nothing became ready.
func TestSelectTimeoutLeavesSetsEmpty(t *testing.T) {
	ft := filetable.New()
	p0 := vol.NewPipe(16)
	require.NoError(t, ft.Insert(0, p0))

	mux := vfspoll.New(ft)
	read := vfspoll.NewFdSet(1)
	read.Set(0)

	timeout := 30 * time.Millisecond
	total, err := mux.Select(1, read, nil, nil, &timeout)
	require.NoError(t, err)
	assert.Equal(t, 0, total)
	assert.False(t, read.IsSet(0))
}

// TestSelectBadDescriptorLeavesSetsUnchanged covers the error path: on
// failure the caller's bitsets must be left exactly as given.
func TestSelectBadDescriptorLeavesSetsUnchanged(t *testing.T) {
	ft := filetable.New()
	mux := vfspoll.New(ft)

	read := vfspoll.NewFdSet(4)
	read.Set(3)

	timeout := 100 * time.Millisecond
	total, err := mux.Select(4, read, nil, nil, &timeout)
	assert.Equal(t, -1, total)
	assert.ErrorIs(t, err, vfspoll.ErrBadFd)
	assert.True(t, read.IsSet(3), "bitset must be untouched on error")
}
