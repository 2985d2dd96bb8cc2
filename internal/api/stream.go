package api

import (
	"io"
	"iter"
	"sync"
	"unicode/utf8"

	"github.com/pkg/errors"
)

// ErrStreamConsumed is yielded when Chunks is iterated a second time.
var ErrStreamConsumed = errors.New("stream already consumed")

const defaultChunkSize = 4096

// Stream is a chunked reply body. Each Read from the body becomes one text
// chunk, so chunk boundaries follow network arrival.
type Stream struct {
	body      io.ReadCloser
	chunkSize int

	mu       sync.Mutex
	consumed bool
	closed   bool
}

// NewStream wraps a response body.
func NewStream(body io.ReadCloser) *Stream {
	return &Stream{body: body, chunkSize: defaultChunkSize}
}

// Chunks returns the body as a lazy, forward-only sequence of text chunks.
// A chunk that ends inside a multi-byte UTF-8 sequence holds the trailing
// bytes back until the next read completes them. Iteration ends at EOF or
// after yielding a read error. The sequence is not restartable.
func (s *Stream) Chunks() iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		s.mu.Lock()
		if s.consumed {
			s.mu.Unlock()
			yield("", ErrStreamConsumed)
			return
		}
		s.consumed = true
		s.mu.Unlock()

		buf := make([]byte, s.chunkSize)
		var pending []byte

		for {
			n, err := s.body.Read(buf)
			if n > 0 {
				data := append(pending, buf[:n]...)
				cut := completePrefix(data)
				text := string(data[:cut])
				pending = append([]byte(nil), data[cut:]...)

				if text != "" && !yield(text, nil) {
					return
				}
			}

			if err == io.EOF {
				if len(pending) > 0 {
					yield(string(pending), nil)
				}
				return
			}
			if err != nil {
				yield("", errors.Wrap(err, "failed to read reply stream"))
				return
			}
		}
	}
}

// Close releases the body. It is safe to call more than once.
func (s *Stream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	return s.body.Close()
}

// completePrefix returns the length of the longest prefix of b that does
// not end in a truncated UTF-8 sequence. Invalid bytes count as complete.
func completePrefix(b []byte) int {
	for i := len(b) - 1; i >= 0 && i >= len(b)-utf8.UTFMax; i-- {
		if !utf8.RuneStart(b[i]) {
			continue
		}
		if utf8.FullRune(b[i:]) {
			return len(b)
		}
		return i
	}
	return len(b)
}
