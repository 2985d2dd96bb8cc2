package transcript

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLog_SeedsGreeting(t *testing.T) {
	l := NewLog("Hello, how can I help?")

	require.Equal(t, []Message{{Text: "Hello, how can I help?", Sender: SenderAssistant}}, l.Entries())
	assert.Equal(t, 1, l.Len())
}

func TestLog_AppendKeepsOrder(t *testing.T) {
	l := NewLog("hi")
	l.Append(Message{Text: "one", Sender: SenderUser})
	l.Append(Message{Text: "two", Sender: SenderAssistant})
	l.Append(Message{Text: "three", Sender: SenderUser})

	entries := l.Entries()
	require.Len(t, entries, 4)
	assert.Equal(t, "one", entries[1].Text)
	assert.Equal(t, "two", entries[2].Text)
	assert.Equal(t, "three", entries[3].Text)
}

func TestLog_MutatePlaceholder(t *testing.T) {
	l := NewLog("hi")
	h := l.AppendPlaceholder()
	l.Append(Message{Text: "later", Sender: SenderUser})

	l.Mutate(h, "Hel")
	l.Mutate(h, "lo")
	l.Mutate(h, "  there\n")

	entries := l.Entries()
	require.Len(t, entries, 3)
	assert.Equal(t, Message{Text: "Hello  there\n", Sender: SenderAssistant}, entries[1])
	assert.Equal(t, "later", entries[2].Text)
}

func TestLog_TruncateToGreeting(t *testing.T) {
	tests := []struct {
		name  string
		extra []string
	}{
		{name: "only greeting"},
		{name: "several entries", extra: []string{"a", "b", "c"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := NewLog("greeting")
			for _, text := range tt.extra {
				l.Append(Message{Text: text, Sender: SenderUser})
			}

			l.TruncateToGreeting()

			require.Equal(t, []Message{{Text: "greeting", Sender: SenderAssistant}}, l.Entries())
		})
	}
}

func TestLog_MutateRemovedHandleIsIgnored(t *testing.T) {
	l := NewLog("greeting")
	h := l.AppendPlaceholder()
	l.TruncateToGreeting()

	l.Mutate(h, "ghost")

	require.Equal(t, []Message{{Text: "greeting", Sender: SenderAssistant}}, l.Entries())

	// New entries after a truncate never reuse the removed handle.
	h2 := l.AppendPlaceholder()
	l.Mutate(h, "ghost")
	l.Mutate(h2, "real")
	assert.Equal(t, "real", l.Entries()[1].Text)
}

func TestLog_SubscribersNotified(t *testing.T) {
	l := NewLog("greeting")
	calls := 0
	l.Subscribe(func() { calls++ })

	h := l.AppendPlaceholder()
	l.Mutate(h, "x")
	l.Mutate(Handle{id: 999}, "nothing")
	l.TruncateToGreeting()

	assert.Equal(t, 3, calls)
}

func TestLog_SubscriberMayReadLog(t *testing.T) {
	l := NewLog("greeting")
	var seen []int
	l.Subscribe(func() { seen = append(seen, l.Len()) })

	l.Append(Message{Text: "a", Sender: SenderUser})
	l.Append(Message{Text: "b", Sender: SenderUser})

	assert.Equal(t, []int{2, 3}, seen)
}

func TestLog_ConcurrentMutate(t *testing.T) {
	l := NewLog("greeting")
	h := l.AppendPlaceholder()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			l.Mutate(h, "x")
			_ = l.Entries()
		}()
	}
	wg.Wait()

	assert.Len(t, l.Entries()[1].Text, 50)
}
