// Package transcript holds the ordered, append-only log of chat messages
// shown to the user.
package transcript

import (
	"sync"
)

// Sender identifies who produced a message.
type Sender string

const (
	SenderUser      Sender = "user"
	SenderAssistant Sender = "assistant"
)

// Message is one transcript entry.
type Message struct {
	Text   string
	Sender Sender
}

// Handle refers to an entry previously appended to a Renderer.
type Handle struct {
	id uint64
}

// Renderer is the display surface consumed by the send and reset controllers.
type Renderer interface {
	// Append inserts a finished message at the end of the log.
	Append(msg Message) Handle

	// AppendPlaceholder inserts an empty assistant entry that grows via Mutate.
	AppendPlaceholder() Handle

	// Mutate appends delta to the entry behind h, keeping prior content.
	// Unknown or removed handles are ignored.
	Mutate(h Handle, delta string)

	// TruncateToGreeting removes every entry except the first one.
	TruncateToGreeting()
}

type entry struct {
	id  uint64
	msg Message
}

// Log is the in-memory Renderer. It is safe for concurrent use; every
// change is announced to subscribers after the lock is released.
type Log struct {
	mu      sync.Mutex
	entries []entry
	nextID  uint64

	subMu       sync.Mutex
	subscribers []func()
}

var _ Renderer = (*Log)(nil)

// NewLog creates a log seeded with the static greeting as its first entry.
func NewLog(greeting string) *Log {
	l := &Log{}
	l.entries = append(l.entries, entry{id: l.allocID(), msg: Message{
		Text:   greeting,
		Sender: SenderAssistant,
	}})
	return l
}

// allocID returns a fresh entry ID. Caller must hold the lock or own l exclusively.
func (l *Log) allocID() uint64 {
	l.nextID++
	return l.nextID
}

// Subscribe registers fn to run after every change.
func (l *Log) Subscribe(fn func()) {
	l.subMu.Lock()
	defer l.subMu.Unlock()
	l.subscribers = append(l.subscribers, fn)
}

func (l *Log) notify() {
	l.subMu.Lock()
	subs := make([]func(), len(l.subscribers))
	copy(subs, l.subscribers)
	l.subMu.Unlock()

	for _, fn := range subs {
		fn()
	}
}

func (l *Log) Append(msg Message) Handle {
	l.mu.Lock()
	id := l.allocID()
	l.entries = append(l.entries, entry{id: id, msg: msg})
	l.mu.Unlock()

	l.notify()
	return Handle{id: id}
}

func (l *Log) AppendPlaceholder() Handle {
	return l.Append(Message{Sender: SenderAssistant})
}

func (l *Log) Mutate(h Handle, delta string) {
	l.mu.Lock()
	found := false
	for i := len(l.entries) - 1; i >= 0; i-- {
		if l.entries[i].id == h.id {
			l.entries[i].msg.Text += delta
			found = true
			break
		}
	}
	l.mu.Unlock()

	if found {
		l.notify()
	}
}

func (l *Log) TruncateToGreeting() {
	l.mu.Lock()
	if len(l.entries) > 1 {
		l.entries = l.entries[:1]
	}
	l.mu.Unlock()

	l.notify()
}

// Entries returns a snapshot of the log in display order.
func (l *Log) Entries() []Message {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]Message, len(l.entries))
	for i, e := range l.entries {
		out[i] = e.msg
	}
	return out
}

// Len returns the number of entries, greeting included.
func (l *Log) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
