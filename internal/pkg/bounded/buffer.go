package bounded

// Mode 決定新元素插入的位置
type Mode int

const (
	// Append 追加到尾部，溢出時淘汰頭部 (終端日誌)
	Append Mode = iota
	// Prepend 插入到頭部，溢出時淘汰尾部 (歷史記錄，最新在 index 0)
	Prepend
)

// Buffer 固定容量的有界緩衝區
// 非併發安全：由單一事件循環持有並寫入
type Buffer[T any] struct {
	items    []T
	capacity int
	mode     Mode
}

// New 創建緩衝區，容量小於 1 時按 1 處理
func New[T any](capacity int, mode Mode) *Buffer[T] {
	if capacity < 1 {
		capacity = 1
	}
	return &Buffer[T]{
		items:    make([]T, 0, capacity),
		capacity: capacity,
		mode:     mode,
	}
}

// Push 按模式插入元素，超出容量時從另一端淘汰一個
func (b *Buffer[T]) Push(item T) {
	switch b.mode {
	case Prepend:
		if len(b.items) < b.capacity {
			b.items = append(b.items, item)
		}
		// 整體後移一位，溢出時最後一個自然被覆蓋
		copy(b.items[1:], b.items[:len(b.items)-1])
		b.items[0] = item
	default:
		if len(b.items) == b.capacity {
			copy(b.items, b.items[1:])
			b.items[len(b.items)-1] = item
			return
		}
		b.items = append(b.items, item)
	}
}

// Items 返回顯示順序的副本，調用方修改不影響緩衝區
func (b *Buffer[T]) Items() []T {
	out := make([]T, len(b.items))
	copy(out, b.items)
	return out
}

// Len 當前元素數量
func (b *Buffer[T]) Len() int { return len(b.items) }

// Cap 固定容量
func (b *Buffer[T]) Cap() int { return b.capacity }

// Mode 插入模式
func (b *Buffer[T]) Mode() Mode { return b.mode }

// Reset 清空
func (b *Buffer[T]) Reset() {
	var zero T
	for i := range b.items {
		b.items[i] = zero
	}
	b.items = b.items[:0]
}
