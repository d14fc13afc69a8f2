// Package events carries "something changed" notifications from the store to
// whoever needs to re-resolve.
package events

import "sync"

type Collection string

const (
	Profile     Collection = "profile"
	Settings    Collection = "settings"
	Penalties   Collection = "penalties"
	Sets        Collection = "activity_sets"
	Assignments Collection = "assignments"
	Instances   Collection = "activity_instances"
	Mailbox     Collection = "mailbox_messages"
)

// Change names the collection a committed write touched.
type Change struct {
	Collection Collection
}

// Bus fans changes out to subscribers. Publish never blocks: a subscriber whose
// buffer is full misses the change, which is fine because every change means
// the same thing ("re-read").
type Bus struct {
	mu     sync.RWMutex
	subs   map[int]chan Change
	nextID int
}

func NewBus() *Bus {
	return &Bus{subs: make(map[int]chan Change)}
}

// Subscribe returns a channel of changes and a func that unsubscribes and closes it.
func (b *Bus) Subscribe(buffer int) (<-chan Change, func()) {
	if buffer < 1 {
		buffer = 1
	}
	ch := make(chan Change, buffer)

	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.subs[id] = ch
	b.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, id)
			b.mu.Unlock()
			close(ch)
		})
	}
}

func (b *Bus) Publish(c Change) {
	if b == nil {
		return
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, ch := range b.subs {
		select {
		case ch <- c:
		default:
		}
	}
}
