package completion

// RecentCapacity is how many executed commands the engine remembers.
const RecentCapacity = 10

// recentBuffer is a bounded FIFO of executed commands, oldest first.
type recentBuffer struct {
	items    []string
	capacity int
}

func newRecentBuffer(capacity int) *recentBuffer {
	return &recentBuffer{
		items:    make([]string, 0, capacity),
		capacity: capacity,
	}
}

func (b *recentBuffer) push(command string) {
	if len(b.items) == b.capacity {
		copy(b.items, b.items[1:])
		b.items = b.items[:len(b.items)-1]
	}
	b.items = append(b.items, command)
}

func (b *recentBuffer) last() string {
	if len(b.items) == 0 {
		return ""
	}
	return b.items[len(b.items)-1]
}

func (b *recentBuffer) snapshot() []string {
	out := make([]string, len(b.items))
	copy(out, b.items)
	return out
}
