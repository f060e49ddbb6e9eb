package cluster

import (
	"context"
	goerrors "errors"
	"testing"
	"time"

	"github.com/go-sif/sjoin/errors"
	"github.com/stretchr/testify/require"
)

func TestMailboxCollectsInRankOrder(t *testing.T) {
	m := newMailbox(3)
	require.Nil(t, m.deliver(0, 2, []byte("c")))
	require.Nil(t, m.deliver(0, 0, []byte("a")))
	// a peer may run a round ahead
	require.Nil(t, m.deliver(1, 1, []byte("next")))
	require.Nil(t, m.deliver(0, 1, []byte("b")))
	parts, err := m.collect(context.Background(), 0)
	require.Nil(t, err)
	require.Equal(t, [][]byte{[]byte("a"), []byte("b"), []byte("c")}, parts)
	require.Equal(t, 1, m.pending())
}

func TestMailboxWaitsForAllParts(t *testing.T) {
	m := newMailbox(2)
	require.Nil(t, m.deliver(0, 0, []byte{1}))
	done := make(chan [][]byte)
	go func() {
		parts, _ := m.collect(context.Background(), 0)
		done <- parts
	}()
	select {
	case <-done:
		t.Fatal("collect returned before every rank delivered")
	case <-time.After(20 * time.Millisecond):
	}
	require.Nil(t, m.deliver(0, 1, []byte{2}))
	require.Equal(t, [][]byte{{1}, {2}}, <-done)
	require.Equal(t, 0, m.pending())
}

func TestMailboxRejectsBadDeliveries(t *testing.T) {
	m := newMailbox(2)
	require.Nil(t, m.deliver(4, 1, nil))
	err := m.deliver(4, 1, nil)
	var ierr errors.InvariantError
	require.True(t, goerrors.As(err, &ierr))
	require.True(t, goerrors.As(m.deliver(4, 2, nil), &ierr))
	require.True(t, goerrors.As(m.deliver(4, -1, nil), &ierr))
}

func TestMailboxCollectHonoursContext(t *testing.T) {
	m := newMailbox(2)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err := m.collect(ctx, 0)
	require.True(t, goerrors.Is(err, context.DeadlineExceeded))
}
