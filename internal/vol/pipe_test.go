package vol_test

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lancs-net/vfspoll"
	"github.com/lancs-net/vfspoll/internal/vol"
)

func TestPipeReadWriteRoundTrip(t *testing.T) {
	p := vol.NewPipe(8)

	n, err := p.Write([]byte("hello"))
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	buf := make([]byte, 8)
	n, err = p.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(buf[:n]))
}

func TestPipeWriteWouldBlockWhenFull(t *testing.T) {
	p := vol.NewPipe(4)
	_, err := p.Write([]byte("abcd"))
	require.NoError(t, err)

	_, err = p.Write([]byte("e"))
	assert.ErrorIs(t, err, vol.ErrWouldBlock)
}

func TestPipeReadWouldBlockWhenEmpty(t *testing.T) {
	p := vol.NewPipe(4)
	buf := make([]byte, 4)
	_, err := p.Read(buf)
	assert.ErrorIs(t, err, vol.ErrWouldBlock)
}

func TestPipeReadEOFAfterCloseAndDrain(t *testing.T) {
	p := vol.NewPipe(4)
	_, err := p.Write([]byte("ab"))
	require.NoError(t, err)
	require.NoError(t, p.Close())

	buf := make([]byte, 4)
	n, err := p.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, "ab", string(buf[:n]))

	_, err = p.Read(buf)
	assert.ErrorIs(t, err, io.EOF)
}

func TestPipePollReportsReadWriteHup(t *testing.T) {
	p := vol.NewPipe(4)

	ready, err := p.Poll(vfspoll.Read|vfspoll.Write, nil, false)
	require.NoError(t, err)
	assert.True(t, ready.Any(vfspoll.Write))
	assert.False(t, ready.Any(vfspoll.Read))

	_, err = p.Write([]byte("x"))
	require.NoError(t, err)
	ready, err = p.Poll(vfspoll.Read|vfspoll.Write, nil, false)
	require.NoError(t, err)
	assert.True(t, ready.Any(vfspoll.Read))
	assert.True(t, ready.Any(vfspoll.Write))

	require.NoError(t, p.Close())
	ready, err = p.Poll(vfspoll.Read|vfspoll.Write, nil, false)
	require.NoError(t, err)
	assert.True(t, ready.Any(vfspoll.Hup))
	assert.True(t, ready.Any(vfspoll.Read), "a closed pipe with buffered data still reports Read")
	assert.False(t, ready.Any(vfspoll.Write), "a closed pipe is never writable")
}
