package workers

import (
	"context"
	"sync"

	kafkago "github.com/segmentio/kafka-go"
)

// offsetCommitter is the commit half of *kafkago.Reader.
type offsetCommitter interface {
	CommitMessages(ctx context.Context, msgs ...kafkago.Message) error
}

// offsetTracker orders commits within a partition. Lanes finish messages out
// of order, and committing an offset in Kafka commits everything below it,
// so a message is only handed back for commit once every message fetched
// before it on the same partition has finished.
type offsetTracker struct {
	mu         sync.Mutex
	partitions map[int]*partitionOffsets
}

type partitionOffsets struct {
	// inFlight holds fetched offsets in fetch order.
	inFlight []int64
	finished map[int64]kafkago.Message
}

func newOffsetTracker() *offsetTracker {
	return &offsetTracker{partitions: make(map[int]*partitionOffsets)}
}

// track registers msg as in flight. Call it in fetch order.
func (t *offsetTracker) track(msg kafkago.Message) {
	t.mu.Lock()
	defer t.mu.Unlock()

	p, ok := t.partitions[msg.Partition]
	if !ok {
		p = &partitionOffsets{finished: make(map[int64]kafkago.Message)}
		t.partitions[msg.Partition] = p
	}
	p.inFlight = append(p.inFlight, msg.Offset)
}

// finish marks msg done and returns the highest message of its partition
// that is now safe to commit, if any.
func (t *offsetTracker) finish(msg kafkago.Message) (kafkago.Message, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	p, ok := t.partitions[msg.Partition]
	if !ok || len(p.inFlight) == 0 || msg.Offset < p.inFlight[0] {
		return kafkago.Message{}, false
	}
	p.finished[msg.Offset] = msg

	var (
		commit kafkago.Message
		ready  bool
	)
	for len(p.inFlight) > 0 {
		head, done := p.finished[p.inFlight[0]]
		if !done {
			break
		}
		delete(p.finished, p.inFlight[0])
		p.inFlight = p.inFlight[1:]
		commit, ready = head, true
	}
	return commit, ready
}

// pending counts tracked messages not yet released for commit.
func (t *offsetTracker) pending() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	n := 0
	for _, p := range t.partitions {
		n += len(p.inFlight)
	}
	return n
}
