package strq_test

import (
	"fmt"
	"math/rand/v2"
	"slices"
	"strings"
	"testing"

	"deedles.dev/strq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func contents(q *strq.Queue) []string {
	return slices.Collect(q.All())
}

func drain(t *testing.T, q *strq.Queue) []string {
	t.Helper()

	var got []string
	buf := make([]byte, 1024)
	for q.Size() > 0 {
		require.True(t, q.RemoveHead(buf))
		got = append(got, strq.Text(buf))
	}
	require.False(t, q.RemoveHead(buf))
	return got
}

func TestNilQueue(t *testing.T) {
	var q *strq.Queue

	assert.False(t, q.InsertHead("a"))
	assert.False(t, q.InsertTail("a"))
	assert.False(t, q.RemoveHead(make([]byte, 8)))
	assert.False(t, q.RemoveHead(nil))
	assert.Equal(t, 0, q.Size())
	assert.Empty(t, contents(q))

	_, ok := q.Head()
	assert.False(t, ok)

	assert.NotPanics(t, func() {
		q.Reverse()
		q.Sort()
		q.Free()
	})
}

func TestFreedQueue(t *testing.T) {
	var tr strq.Tracker
	q := strq.New(strq.WithAllocator(&tr))
	require.True(t, q.InsertTail("a"))
	q.Free()
	q.Free()

	assert.False(t, tr.Leaked())
	assert.False(t, q.InsertTail("b"))
	assert.False(t, q.RemoveHead(nil))
	assert.Equal(t, 0, q.Size())
	assert.False(t, tr.Leaked())
}

func TestInsertHead(t *testing.T) {
	q := strq.New()
	defer q.Free()

	for _, s := range []string{"a", "b", "c"} {
		require.True(t, q.InsertHead(s))
	}
	require.Equal(t, 3, q.Size())

	head, ok := q.Head()
	require.True(t, ok)
	require.Equal(t, "c", head)

	require.Equal(t, []string{"c", "b", "a"}, drain(t, q))
	require.Equal(t, 0, q.Size())
}

func TestInsertTail(t *testing.T) {
	q := strq.New()
	defer q.Free()

	for _, s := range []string{"a", "b", "c"} {
		require.True(t, q.InsertTail(s))
	}
	require.Equal(t, []string{"a", "b", "c"}, contents(q))
	require.Equal(t, []string{"a", "b", "c"}, drain(t, q))

	require.True(t, q.InsertTail("d"))
	require.True(t, q.InsertHead("e"))
	require.Equal(t, []string{"e", "d"}, contents(q))
}

func TestInsertCopies(t *testing.T) {
	q := strq.New()
	defer q.Free()

	b := []byte("mutable")
	require.True(t, q.InsertTail(string(b)))
	b[0] = 'M'

	head, _ := q.Head()
	require.Equal(t, "mutable", head)
}

func TestInsertStopsAtZero(t *testing.T) {
	q := strq.New()
	defer q.Free()

	require.True(t, q.InsertTail("abc\x00def"))
	buf := make([]byte, 16)
	require.True(t, q.RemoveHead(buf))
	require.Equal(t, "abc", strq.Text(buf))
}

func TestRemoveHeadTruncation(t *testing.T) {
	const payload = "abcdef"

	tests := []struct {
		cap  int
		want string
	}{
		{1, ""},
		{2, "a"},
		{6, "abcde"},
		{7, "abcdef"},
		{8, "abcdef"},
		{64, "abcdef"},
	}

	for _, test := range tests {
		t.Run(fmt.Sprint(test.cap), func(t *testing.T) {
			q := strq.New()
			defer q.Free()

			require.True(t, q.InsertTail(payload))

			buf := make([]byte, test.cap+1)
			for i := range buf {
				buf[i] = 'X'
			}
			require.True(t, q.RemoveHead(buf[:test.cap]))
			require.Equal(t, test.want, strq.Text(buf[:test.cap]))
			require.Equal(t, byte('X'), buf[test.cap], "wrote past capacity")

			n := min(len(payload)+1, test.cap)
			require.Equal(t, byte(0), buf[n-1], "missing terminator")
			require.Equal(t, 0, q.Size())
		})
	}
}

func TestRemoveHeadNoBuffer(t *testing.T) {
	q := strq.New()
	defer q.Free()

	require.True(t, q.InsertTail("a"))
	require.True(t, q.InsertTail("b"))
	require.True(t, q.RemoveHead(nil))
	require.True(t, q.RemoveHead([]byte{}))
	require.False(t, q.RemoveHead(nil))
	require.Equal(t, 0, q.Size())
}

func TestSizeAccounting(t *testing.T) {
	r := rand.New(rand.NewPCG(3, 4))
	q := strq.New()
	defer q.Free()

	var want int
	for i := range 1000 {
		switch r.IntN(3) {
		case 0:
			require.True(t, q.InsertHead(fmt.Sprint(i)))
			want++
		case 1:
			require.True(t, q.InsertTail(fmt.Sprint(i)))
			want++
		case 2:
			if q.RemoveHead(nil) {
				want--
			} else {
				require.Equal(t, 0, want)
			}
		}
		require.Equal(t, want, q.Size())
	}
}

func TestReverse(t *testing.T) {
	t.Run("Empty", func(t *testing.T) {
		q := strq.New()
		defer q.Free()

		q.Reverse()
		require.Equal(t, 0, q.Size())
		require.Empty(t, contents(q))
	})

	t.Run("Involution", func(t *testing.T) {
		q := strq.New()
		defer q.Free()

		want := []string{"one", "two", "three", "four", "five"}
		for _, s := range want {
			require.True(t, q.InsertTail(s))
		}

		q.Reverse()
		require.Equal(t, []string{"five", "four", "three", "two", "one"}, contents(q))
		require.Equal(t, len(want), q.Size())

		q.Reverse()
		require.Equal(t, want, contents(q))
	})

	t.Run("TailFollows", func(t *testing.T) {
		q := strq.New()
		defer q.Free()

		require.True(t, q.InsertTail("a"))
		require.True(t, q.InsertTail("b"))
		q.Reverse()
		require.True(t, q.InsertTail("c"))
		require.True(t, q.InsertHead("z"))
		require.Equal(t, []string{"z", "b", "a", "c"}, drain(t, q))
	})
}

func TestSort(t *testing.T) {
	t.Run("Example", func(t *testing.T) {
		q := strq.New()
		defer q.Free()

		for _, s := range []string{"banana", "apple", "cherry"} {
			require.True(t, q.InsertTail(s))
		}
		require.Equal(t, 3, q.Size())

		q.Sort()
		require.Equal(t, []string{"apple", "banana", "cherry"}, drain(t, q))
		require.Equal(t, 0, q.Size())
	})

	t.Run("EmptyAndSingle", func(t *testing.T) {
		q := strq.New()
		defer q.Free()

		q.Sort()
		require.Equal(t, 0, q.Size())

		require.True(t, q.InsertTail("only"))
		q.Sort()
		require.Equal(t, []string{"only"}, contents(q))
	})

	t.Run("Idempotent", func(t *testing.T) {
		q := strq.New()
		defer q.Free()

		for _, s := range []string{"d", "a", "c", "b", "a"} {
			require.True(t, q.InsertHead(s))
		}
		q.Sort()
		first := contents(q)
		q.Sort()
		require.Equal(t, first, contents(q))
		require.Equal(t, []string{"a", "a", "b", "c", "d"}, first)
	})

	t.Run("Permutations", func(t *testing.T) {
		words := strings.Fields("gopher zebra apple app a b ab ba zz z aardvark mango")
		want := slices.Clone(words)
		slices.Sort(want)

		r := rand.New(rand.NewPCG(5, 6))
		for range 50 {
			q := strq.New()
			for _, i := range r.Perm(len(words)) {
				if r.IntN(2) == 0 {
					require.True(t, q.InsertHead(words[i]))
				} else {
					require.True(t, q.InsertTail(words[i]))
				}
			}

			q.Sort()
			require.Equal(t, want, contents(q))
			require.Equal(t, len(words), q.Size())
			q.Free()
		}
	})

	t.Run("Multiset", func(t *testing.T) {
		q := strq.New()
		defer q.Free()

		r := rand.New(rand.NewPCG(7, 8))
		var before []string
		for range 200 {
			s := fmt.Sprint(r.IntN(20))
			before = append(before, s)
			require.True(t, q.InsertTail(s))
		}

		q.Sort()
		after := contents(q)
		require.ElementsMatch(t, before, after)
		require.True(t, slices.IsSorted(after))
		require.Equal(t, len(before), q.Size())
	})

	t.Run("TailFollows", func(t *testing.T) {
		q := strq.New()
		defer q.Free()

		for _, s := range []string{"c", "a", "b"} {
			require.True(t, q.InsertTail(s))
		}
		q.Sort()
		require.True(t, q.InsertTail("0"))
		require.Equal(t, []string{"a", "b", "c", "0"}, contents(q))
	})
}

func TestCompare(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"abc", "abc", 0},
		{"ab", "abc", -1},
		{"abc", "ab", 1},
		{"abd", "abc", 1},
		{"a\xff", "a\x01", 1},
		{"B", "a", -1},
	}

	for _, test := range tests {
		got := strq.Compare([]byte(test.a), []byte(test.b))
		assert.Equal(t, test.want, got, "Compare(%q, %q)", test.a, test.b)

		got = strq.Compare([]byte(test.a+"\x00"), []byte(test.b+"\x00"))
		assert.Equal(t, test.want, got, "Compare(%q, %q) terminated", test.a, test.b)
	}
}

func BenchmarkSort(b *testing.B) {
	for _, size := range []int{10, 100, 1000, 10000} {
		b.Run(fmt.Sprint(size), func(b *testing.B) {
			r := rand.New(rand.NewPCG(uint64(size), 1))
			words := make([]string, size)
			for i := range words {
				words[i] = fmt.Sprintf("%08x", r.Uint32())
			}

			for range b.N {
				b.StopTimer()
				q := strq.New()
				for _, w := range words {
					q.InsertTail(w)
				}
				b.StartTimer()

				q.Sort()

				b.StopTimer()
				q.Free()
				b.StartTimer()
			}
		})
	}
}

func BenchmarkInsertRemove(b *testing.B) {
	q := strq.New()
	defer q.Free()

	buf := make([]byte, 16)
	for range b.N {
		q.InsertTail("benchmark")
		q.RemoveHead(buf)
	}
}
