package waitqueue_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/lancs-net/vfspoll/internal/waitqueue"
)

func TestRecordFireIsIdempotent(t *testing.T) {
	rec := waitqueue.NewRecord()
	select {
	case <-rec.C():
		t.Fatal("record fired before Fire was called")
	default:
	}

	rec.Fire()
	rec.Fire() // must not panic on double-close

	select {
	case <-rec.C():
	case <-time.After(time.Second):
		t.Fatal("record never fired")
	}
}

func TestQueueLinkWakeUnlink(t *testing.T) {
	q := waitqueue.New()
	rec1 := waitqueue.NewRecord()
	rec2 := waitqueue.NewRecord()

	e1 := q.Link(rec1)
	_ = q.Link(rec2)
	assert.Equal(t, 2, q.Len())

	q.Unlink(e1)
	assert.Equal(t, 1, q.Len())

	q.Wake()
	select {
	case <-rec1.C():
		t.Fatal("unlinked record must not be woken")
	default:
	}
	select {
	case <-rec2.C():
	default:
		t.Fatal("linked record must be woken")
	}
}

func TestQueueUnlinkNilIsNoOp(t *testing.T) {
	q := waitqueue.New()
	assert.NotPanics(t, func() { q.Unlink(nil) })
}

func TestQueueDuplicateLinkTolerated(t *testing.T) {
	q := waitqueue.New()
	rec := waitqueue.NewRecord()
	q.Link(rec)
	q.Link(rec)
	assert.Equal(t, 2, q.Len())
}
