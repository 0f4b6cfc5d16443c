package strq

import (
	"fmt"
	"math/rand/v2"
)

// Block identifies what a piece of storage requested from an
// [Allocator] is for.
type Block int

const (
	BlockHandle Block = iota
	BlockNode
	BlockPayload

	numBlocks
)

func (b Block) String() string {
	switch b {
	case BlockHandle:
		return "handle"
	case BlockNode:
		return "node"
	case BlockPayload:
		return "payload"
	default:
		return fmt.Sprintf("Block(%d)", int(b))
	}
}

// An Allocator decides whether storage for a queue handle, a node or
// a payload can be obtained. Every successful Alloc is eventually
// matched by exactly one Free with the same arguments.
type Allocator interface {
	// Alloc reports whether size bytes of storage for b are available.
	Alloc(b Block, size int) bool

	// Free returns storage previously granted by Alloc.
	Free(b Block, size int)
}

// Heap is an Allocator that always succeeds. It is the default for
// queues created without [WithAllocator].
type Heap struct{}

func (Heap) Alloc(Block, int) bool { return true }
func (Heap) Free(Block, int)       {}

// Tracker wraps another Allocator and keeps count of the storage that
// is currently live. A zero Tracker wraps [Heap].
type Tracker struct {
	Allocator Allocator

	live   [numBlocks]int
	bytes  int
	allocs int
	frees  int
}

func (t *Tracker) next() Allocator {
	if t.Allocator == nil {
		return Heap{}
	}
	return t.Allocator
}

func (t *Tracker) Alloc(b Block, size int) bool {
	if !t.next().Alloc(b, size) {
		return false
	}

	t.live[b]++
	t.bytes += size
	t.allocs++
	return true
}

func (t *Tracker) Free(b Block, size int) {
	t.next().Free(b, size)

	t.live[b]--
	t.bytes -= size
	t.frees++
}

// Live returns the number of blocks of kind b that have been
// allocated but not yet freed.
func (t *Tracker) Live(b Block) int {
	return t.live[b]
}

// Bytes returns the total size of all live blocks.
func (t *Tracker) Bytes() int {
	return t.bytes
}

// Allocs returns the number of successful allocations so far.
func (t *Tracker) Allocs() int {
	return t.allocs
}

// Frees returns the number of frees so far.
func (t *Tracker) Frees() int {
	return t.frees
}

// Leaked reports whether any block is still live.
func (t *Tracker) Leaked() bool {
	for _, n := range t.live {
		if n != 0 {
			return true
		}
	}
	return t.bytes != 0
}

// Faulty wraps another Allocator and refuses some of the requests
// made to it. A zero Faulty never refuses anything.
type Faulty struct {
	Allocator Allocator

	// Percent is the chance, from 0 to 100, that any given Alloc is
	// refused.
	Percent int

	// FailOn lists block kinds for which Alloc is always refused.
	FailOn []Block

	// Rand is the source used for Percent. If it is nil, the global
	// source from math/rand/v2 is used.
	Rand *rand.Rand
}

func (f *Faulty) next() Allocator {
	if f.Allocator == nil {
		return Heap{}
	}
	return f.Allocator
}

func (f *Faulty) refuse(b Block) bool {
	for _, fail := range f.FailOn {
		if fail == b {
			return true
		}
	}

	if f.Percent <= 0 {
		return false
	}
	if f.Rand != nil {
		return f.Rand.IntN(100) < f.Percent
	}
	return rand.IntN(100) < f.Percent
}

func (f *Faulty) Alloc(b Block, size int) bool {
	if f.refuse(b) {
		return false
	}
	return f.next().Alloc(b, size)
}

func (f *Faulty) Free(b Block, size int) {
	f.next().Free(b, size)
}
