package cluster

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/docker/docker/pkg/locker"
	"github.com/go-sif/sjoin/errors"
)

// a slot gathers the parts of one collective round
type slot struct {
	parts     [][]byte
	received  []bool
	remaining int
	ready     chan struct{}
}

// mailbox holds the parts delivered to this rank, keyed by collective round. Peers may run ahead
// by a round, so parts for several rounds can be pending at once.
type mailbox struct {
	size      int
	slotsLock sync.Mutex
	slots     map[uint64]*slot
	fillLocks *locker.Locker
}

func newMailbox(size int) *mailbox {
	return &mailbox{
		size:      size,
		slots:     make(map[uint64]*slot),
		fillLocks: locker.New(),
	}
}

func (m *mailbox) slot(seq uint64) *slot {
	m.slotsLock.Lock()
	defer m.slotsLock.Unlock()
	s, ok := m.slots[seq]
	if !ok {
		s = &slot{
			parts:     make([][]byte, m.size),
			received:  make([]bool, m.size),
			remaining: m.size,
			ready:     make(chan struct{}),
		}
		m.slots[seq] = s
	}
	return s
}

// deliver stores the part rank from sent for round seq
func (m *mailbox) deliver(seq uint64, from int, data []byte) error {
	if from < 0 || from >= m.size {
		return errors.InvariantError{Message: fmt.Sprintf("delivery from rank %d in a group of %d", from, m.size)}
	}
	key := strconv.FormatUint(seq, 10)
	m.fillLocks.Lock(key)
	defer m.fillLocks.Unlock(key)
	s := m.slot(seq)
	if s.received[from] {
		return errors.InvariantError{Message: fmt.Sprintf("rank %d delivered twice for round %d", from, seq)}
	}
	s.parts[from] = data
	s.received[from] = true
	s.remaining--
	if s.remaining == 0 {
		close(s.ready)
	}
	return nil
}

// collect blocks until every rank has delivered its part for round seq, and returns them in rank order
func (m *mailbox) collect(ctx context.Context, seq uint64) ([][]byte, error) {
	s := m.slot(seq)
	select {
	case <-s.ready:
		m.slotsLock.Lock()
		delete(m.slots, seq)
		m.slotsLock.Unlock()
		return s.parts, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// pending returns the number of rounds which have not been collected yet
func (m *mailbox) pending() int {
	m.slotsLock.Lock()
	defer m.slotsLock.Unlock()
	return len(m.slots)
}
