package list

import "iter"

// Single is a singly-linked list that also contains a reference to
// the last node for quick inserts at the head and tail and removals
// at the head. The zero value is an empty list.
//
// Reverse and Sort rearrange the existing nodes. They never create or
// drop a node.
type Single[T any] struct {
	head, tail *SingleNode[T]
	len        int
}

// Len returns the number of nodes in the list.
func (ls *Single[T]) Len() int {
	return ls.len
}

// PushFront adds v as a new node at the head of the list.
func (ls *Single[T]) PushFront(v T) {
	n := &SingleNode[T]{Val: v, next: ls.head}
	ls.head = n
	if ls.tail == nil {
		ls.tail = n
	}
	ls.len++
}

// PushBack adds v as a new node at the tail of the list.
func (ls *Single[T]) PushBack(v T) {
	n := ls.tail.insert()
	n.Val = v
	ls.tail = n

	if ls.head == nil {
		ls.head = n
	}
	ls.len++
}

// Front returns the value of the head node. It returns false if the
// list is empty.
func (ls *Single[T]) Front() (v T, ok bool) {
	if ls.head == nil {
		return v, false
	}
	return ls.head.Val, true
}

// PopFront unlinks the current head node and returns its value. It
// returns false if the list was already empty.
func (ls *Single[T]) PopFront() (v T, ok bool) {
	if ls.head == nil {
		return v, false
	}

	n := ls.head
	ls.head = n.next
	if ls.head == nil {
		ls.tail = nil
	}
	ls.len--

	n.next = nil
	return n.Val, true
}

// Clear unlinks every node, calling release with each value in order
// from head to tail.
func (ls *Single[T]) Clear(release func(T)) {
	cur := ls.head
	for cur != nil {
		next := cur.next
		cur.next = nil
		if release != nil {
			release(cur.Val)
		}
		cur = next
	}

	ls.head = nil
	ls.tail = nil
	ls.len = 0
}

// Reverse reverses the order of the list in a single pass.
func (ls *Single[T]) Reverse() {
	var prev *SingleNode[T]
	cur := ls.head
	for cur != nil {
		next := cur.next
		cur.next = prev
		prev = cur
		cur = next
	}

	ls.head, ls.tail = ls.tail, ls.head
}

// Sort sorts the list into ascending order as defined by cmp, which
// should return a negative number when a < b, a positive number when
// a > b and zero when they are equal. The sort is not stable.
func (ls *Single[T]) Sort(cmp func(a, b T) int) {
	if ls.len < 2 {
		return
	}

	ls.head = mergeSort(ls.head, cmp)

	tail := ls.head
	for tail.next != nil {
		tail = tail.next
	}
	ls.tail = tail
}

// All returns an iterator over the elements of the list.
func (ls *Single[T]) All() iter.Seq[T] {
	return func(yield func(T) bool) {
		cur := ls.head
		for cur != nil {
			if !yield(cur.Val) {
				return
			}
			cur = cur.next
		}
	}
}

// SingleNode is a node of a [Single].
type SingleNode[T any] struct {
	Val  T
	next *SingleNode[T]
}

func (n *SingleNode[T]) insert() *SingleNode[T] {
	if n == nil {
		return new(SingleNode[T])
	}

	n.next = &SingleNode[T]{next: n.next}
	return n.next
}

func mergeSort[T any](head *SingleNode[T], cmp func(a, b T) int) *SingleNode[T] {
	if head == nil || head.next == nil {
		return head
	}

	back := split(head)
	return merge(mergeSort(head, cmp), mergeSort(back, cmp), cmp)
}

// split cuts the chain starting at head after its middle node and
// returns the start of the second half. The first half keeps the extra
// node when the length is odd.
func split[T any](head *SingleNode[T]) *SingleNode[T] {
	slow, fast := head, head.next
	for fast != nil && fast.next != nil {
		slow = slow.next
		fast = fast.next.next
	}

	back := slow.next
	slow.next = nil
	return back
}

func merge[T any](a, b *SingleNode[T], cmp func(a, b T) int) *SingleNode[T] {
	var head *SingleNode[T]
	last := &head
	for a != nil && b != nil {
		if cmp(a.Val, b.Val) <= 0 {
			*last = a
			a = a.next
		} else {
			*last = b
			b = b.next
		}
		last = &(*last).next
	}

	if a != nil {
		*last = a
	} else {
		*last = b
	}
	return head
}
