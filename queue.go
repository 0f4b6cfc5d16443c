package strq

import (
	"bytes"
	"iter"
	"reflect"
	"strings"

	"deedles.dev/strq/internal/list"
	"github.com/hashicorp/go-hclog"
)

var (
	handleSize = int(reflect.TypeFor[Queue]().Size())
	nodeSize   = int(reflect.TypeFor[list.SingleNode[[]byte]]().Size())
)

// A Queue holds strings in a singly-linked list. A nil *Queue is
// treated as an absent queue: every method is safe to call on it and
// reports failure or does nothing.
//
// Each string is copied into storage owned by the queue when it is
// inserted and that storage is released when the string is removed,
// so the caller's data is never retained.
type Queue struct {
	_ noCopy

	ls    list.Single[[]byte]
	alloc Allocator
	log   hclog.Logger
	freed bool
}

// Option configures a Queue created by [New].
type Option func(*Queue)

// WithAllocator makes the queue request all of its storage from a.
func WithAllocator(a Allocator) Option {
	return func(q *Queue) {
		q.alloc = a
	}
}

// WithLogger sets the logger that the queue reports refused
// allocations to.
func WithLogger(l hclog.Logger) Option {
	return func(q *Queue) {
		q.log = l
	}
}

// New returns a new, empty queue. It returns nil if the allocator
// refuses the storage for the queue itself.
func New(opts ...Option) *Queue {
	q := Queue{
		alloc: Heap{},
		log:   hclog.NewNullLogger(),
	}
	for _, opt := range opts {
		opt(&q)
	}

	if !q.alloc.Alloc(BlockHandle, handleSize) {
		q.log.Debug("handle allocation refused", "size", handleSize)
		return nil
	}

	return &q
}

func (q *Queue) usable() bool {
	return q != nil && !q.freed
}

// Free releases every node in the queue along with its payload and
// then the queue itself. After Free returns, q behaves as though it
// were nil. Calling Free more than once is a no-op.
func (q *Queue) Free() {
	if !q.usable() {
		return
	}

	n := q.ls.Len()
	q.ls.Clear(q.release)
	q.alloc.Free(BlockHandle, handleSize)
	q.freed = true

	q.log.Trace("queue freed", "nodes", n)
}

func (q *Queue) release(p []byte) {
	q.alloc.Free(BlockPayload, len(p))
	q.alloc.Free(BlockNode, nodeSize)
}

// payload copies s into newly allocated storage with a trailing zero
// byte. Copying stops at the first zero byte in s. If either the node
// or the payload can't be allocated, nothing remains allocated and it
// returns false.
func (q *Queue) payload(s string) ([]byte, bool) {
	if i := strings.IndexByte(s, 0); i >= 0 {
		s = s[:i]
	}

	if !q.alloc.Alloc(BlockNode, nodeSize) {
		q.log.Debug("node allocation refused", "size", nodeSize)
		return nil, false
	}

	size := len(s) + 1
	if !q.alloc.Alloc(BlockPayload, size) {
		q.log.Debug("payload allocation refused", "size", size)
		q.alloc.Free(BlockNode, nodeSize)
		return nil, false
	}

	p := make([]byte, size)
	copy(p, s)
	return p, true
}

// InsertHead inserts a copy of s at the head of the queue. It returns
// false, leaving the queue unchanged, if q is nil or the storage for
// the new element could not be allocated.
func (q *Queue) InsertHead(s string) bool {
	if !q.usable() {
		return false
	}

	p, ok := q.payload(s)
	if !ok {
		return false
	}

	q.ls.PushFront(p)
	return true
}

// InsertTail inserts a copy of s at the tail of the queue. It fails
// under the same conditions as [Queue.InsertHead].
func (q *Queue) InsertTail(s string) bool {
	if !q.usable() {
		return false
	}

	p, ok := q.payload(s)
	if !ok {
		return false
	}

	q.ls.PushBack(p)
	return true
}

// RemoveHead removes the element at the head of the queue. It returns
// false if q is nil or empty.
//
// If buf is not empty, the removed string is copied into it followed
// by a zero byte. A string that doesn't fit is truncated to len(buf)-1
// bytes so that the terminator always lands inside buf. Use [Text] to
// read the result back.
func (q *Queue) RemoveHead(buf []byte) bool {
	if !q.usable() {
		return false
	}

	p, ok := q.ls.PopFront()
	if !ok {
		return false
	}

	if len(buf) > 0 {
		n := copy(buf, p)
		if n < len(p) {
			buf[n-1] = 0
		}
	}

	q.release(p)
	return true
}

// Size returns the number of elements in the queue, or 0 if q is nil.
func (q *Queue) Size() int {
	if !q.usable() {
		return 0
	}
	return q.ls.Len()
}

// Reverse reverses the order of the elements in the queue. It has no
// effect on a nil or empty queue.
func (q *Queue) Reverse() {
	if !q.usable() {
		return
	}
	q.ls.Reverse()
}

// Sort sorts the elements of the queue into ascending order as
// defined by [Compare]. Equal elements may end up in any order
// relative to each other. It has no effect on a nil queue or on a
// queue with fewer than two elements.
func (q *Queue) Sort() {
	if !q.usable() {
		return
	}
	q.ls.Sort(Compare)
}

// Head returns the string at the head of the queue without removing
// it.
func (q *Queue) Head() (string, bool) {
	if !q.usable() {
		return "", false
	}

	p, ok := q.ls.Front()
	if !ok {
		return "", false
	}
	return string(content(p)), true
}

// All returns an iterator over the strings in the queue from head to
// tail. The queue must not be modified during iteration.
func (q *Queue) All() iter.Seq[string] {
	return func(yield func(string) bool) {
		if !q.usable() {
			return
		}

		for p := range q.ls.All() {
			if !yield(string(content(p))) {
				return
			}
		}
	}
}

// Compare orders two payloads byte by byte, treating bytes as
// unsigned. A payload that is a strict prefix of the other sorts
// first. A trailing zero terminator, if present, is not part of the
// comparison.
func Compare(a, b []byte) int {
	return bytes.Compare(content(a), content(b))
}

// Text returns the string held in buf up to, but not including, the
// first zero byte. If buf has no zero byte, all of it is returned.
func Text(buf []byte) string {
	return string(content(buf))
}

func content(p []byte) []byte {
	if i := bytes.IndexByte(p, 0); i >= 0 {
		return p[:i]
	}
	return p
}
