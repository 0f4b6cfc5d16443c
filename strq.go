// Package strq implements a queue of strings backed by a singly-linked
// list. Strings can be inserted at either end of the queue and removed
// from the head, and the queue can be reversed or sorted in place
// without allocating or releasing any of its nodes.
//
// All storage a queue uses is requested from an [Allocator], which
// makes it possible to account for every node and payload and to
// simulate allocation failure. A Queue is not safe for concurrent use.
package strq

type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}
