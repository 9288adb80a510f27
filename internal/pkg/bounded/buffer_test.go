package bounded

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuffer_AppendEvictsOldest(t *testing.T) {
	buf := New[int](3, Append)
	for i := 1; i <= 5; i++ {
		buf.Push(i)
	}

	assert.Equal(t, []int{3, 4, 5}, buf.Items())
	assert.Equal(t, 3, buf.Len())
}

func TestBuffer_PrependKeepsNewestFirst(t *testing.T) {
	buf := New[string](3, Prepend)
	for _, s := range []string{"a", "b", "c", "d"} {
		buf.Push(s)
	}

	assert.Equal(t, []string{"d", "c", "b"}, buf.Items())
}

func TestBuffer_NeverExceedsCapacity(t *testing.T) {
	for _, mode := range []Mode{Append, Prepend} {
		for capacity := 1; capacity <= 8; capacity++ {
			t.Run(fmt.Sprintf("mode=%d/cap=%d", mode, capacity), func(t *testing.T) {
				buf := New[int](capacity, mode)
				for i := 0; i < capacity*3+1; i++ {
					buf.Push(i)
					require.LessOrEqual(t, buf.Len(), capacity)
				}

				// 保留的恰好是最近推入的 capacity 個
				items := buf.Items()
				last := capacity*3 + 1
				for idx, v := range items {
					if mode == Append {
						assert.Equal(t, last-capacity+idx, v)
					} else {
						assert.Equal(t, last-1-idx, v)
					}
				}
			})
		}
	}
}

func TestBuffer_ItemsIsACopy(t *testing.T) {
	buf := New[int](2, Append)
	buf.Push(1)
	buf.Push(2)

	items := buf.Items()
	items[0] = 99

	assert.Equal(t, []int{1, 2}, buf.Items())
}

func TestBuffer_HistoryScenario(t *testing.T) {
	buf := New[string](20, Prepend)
	for i := 1; i <= 20; i++ {
		buf.Push(fmt.Sprintf("event %d", i))
	}
	oldest := buf.Items()[19]

	buf.Push("21st event")

	items := buf.Items()
	require.Len(t, items, 20)
	assert.Equal(t, "21st event", items[0])
	assert.NotContains(t, items, oldest)
}

func TestBuffer_CapacityClamp(t *testing.T) {
	buf := New[int](0, Append)
	assert.Equal(t, 1, buf.Cap())

	buf.Push(1)
	buf.Push(2)
	assert.Equal(t, []int{2}, buf.Items())

	buf.Reset()
	assert.Equal(t, 0, buf.Len())
	assert.Empty(t, buf.Items())
}
