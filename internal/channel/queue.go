package channel

import (
	"sync"
	"sync/atomic"
	"unsafe"

	"github.com/lattice-lang/lattice/internal/value"
)

// Queue is the concrete backing store behind a value.Channel. Capacity
// 0 means unbounded (spec §4.8): bounded queues are a native Go channel
// directly; unbounded queues add a pump goroutine implementing the
// standard unbounded-channel pattern — a growable slice buffer that
// proxies into a bounded rendezvous channel recv always reads from.
type Queue struct {
	capacity int

	mu     sync.RWMutex // held for read while Send checks closed and picks its target, for write by Close
	closed bool

	ch chan value.Value // always the channel Recv and select-recv read from
	in chan value.Value // Send target for an unbounded Queue; nil when bounded

	refCount int32
}

// New creates a Queue with no references yet; wrapping it with
// value.NewChannel performs the first Retain, matching value.NewRef's
// convention that a fresh resource starts unowned until a Value claims
// it. capacity <= 0 means unbounded.
func New(capacity int) *Queue {
	if capacity <= 0 {
		q := &Queue{capacity: 0, ch: make(chan value.Value), in: make(chan value.Value)}
		go q.pump()
		return q
	}
	return &Queue{capacity: capacity, ch: make(chan value.Value, capacity)}
}

// pump implements the unbounded buffer: it never blocks a Send (beyond
// the brief critical section already held by the RWMutex), draining
// into ch as fast as a receiver is ready for it.
func (q *Queue) pump() {
	var buf []value.Value
	for {
		if len(buf) == 0 {
			v, ok := <-q.in
			if !ok {
				close(q.ch)
				return
			}
			buf = append(buf, v)
			continue
		}
		select {
		case v, ok := <-q.in:
			if !ok {
				for _, bv := range buf {
					q.ch <- bv
				}
				close(q.ch)
				return
			}
			buf = append(buf, v)
		case q.ch <- buf[0]:
			buf = buf[1:]
		}
	}
}

func (q *Queue) sendTarget() chan value.Value {
	if q.capacity == 0 {
		return q.in
	}
	return q.ch
}

// Send enqueues a deep clone of v (the caller, internal/vm, is
// responsible for the clone per spec §4.8; Queue only moves Values).
// It blocks until space is available, the channel closes, or done
// fires; the last two report ErrClosedSend.
func (q *Queue) Send(v value.Value, done <-chan struct{}) (err error) {
	defer func() {
		if recover() != nil {
			// Close ran while this send was blocked on the native channel.
			err = ErrClosedSend
		}
	}()

	q.mu.RLock()
	if q.closed {
		q.mu.RUnlock()
		return ErrClosedSend
	}
	target := q.sendTarget()
	q.mu.RUnlock()

	select {
	case target <- v:
		return nil
	case <-done:
		return ErrClosedSend
	}
}

// Recv dequeues the head value, blocking until one is available or the
// channel is closed and drained (ok reports which: false means closed
// and empty, matching spec §4.8's "returns Nil if closed and empty").
func (q *Queue) Recv(done <-chan struct{}) (value.Value, bool) {
	select {
	case v, ok := <-q.ch:
		return v, ok
	case <-done:
		return value.Value{}, false
	}
}

// Close marks the queue closed: subsequent Sends fail, subsequent Recvs
// drain whatever is already buffered and then report closed.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	q.closed = true
	if q.capacity == 0 {
		close(q.in)
	} else {
		close(q.ch)
	}
}

func (q *Queue) Retain() value.ChannelRef {
	atomic.AddInt32(&q.refCount, 1)
	return q
}

func (q *Queue) Release() {
	if atomic.AddInt32(&q.refCount, -1) == 0 {
		q.Close()
	}
}

func (q *Queue) ID() uintptr { return uintptr(unsafe.Pointer(q)) }

var _ value.ChannelRef = (*Queue)(nil)
