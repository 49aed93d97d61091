package session

// PageList is the cached result of the most recent query plus the browse
// index into it. Set replaces the list wholesale; Navigate is the only
// mutation of the index and never lets it leave [0, len-1].
type PageList[T any] struct {
	items []T
	index int
}

// Set replaces the cached list and resets the index to 0.
func (p *PageList[T]) Set(items []T) {
	p.items = items
	p.index = 0
}

// Navigate moves the index by delta. Out-of-range requests (including any
// navigation on an empty or absent list) are rejected without touching state.
func (p *PageList[T]) Navigate(delta int) bool {
	next := p.index + delta
	if next < 0 || next >= len(p.items) {
		return false
	}
	p.index = next
	return true
}

// Current returns the item at the browse index, or false when nothing is
// cached.
func (p *PageList[T]) Current() (T, bool) {
	if len(p.items) == 0 {
		var zero T
		return zero, false
	}
	return p.items[p.index], true
}

func (p *PageList[T]) Index() int { return p.index }
func (p *PageList[T]) Len() int   { return len(p.items) }

// AtStart and AtEnd drive which navigation buttons the card offers; the
// boundary card simply lacks the button pointing off the list.
func (p *PageList[T]) AtStart() bool { return p.index == 0 }
func (p *PageList[T]) AtEnd() bool   { return p.index >= len(p.items)-1 }
