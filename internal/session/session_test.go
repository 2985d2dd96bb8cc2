package session

import (
	"regexp"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var idPattern = regexp.MustCompile(`^session_\d+_[0-9a-f]{9}$`)

func TestNew_Format(t *testing.T) {
	id := New()
	require.Regexp(t, idPattern, id.String())
}

func TestGenerator_UsesSources(t *testing.T) {
	g := Generator{
		Now: func() time.Time { return time.UnixMilli(1700000000123) },
		Random: func() uuid.UUID {
			return uuid.MustParse("0123abcd-ef45-4678-9abc-def012345678")
		},
	}

	assert.Equal(t, ID("session_1700000000123_0123abcde"), g.New())
}

func TestNew_Distinct(t *testing.T) {
	seen := make(map[ID]bool)
	for i := 0; i < 1000; i++ {
		id := New()
		if seen[id] {
			t.Fatalf("duplicate session id %q after %d generations", id, i)
		}
		seen[id] = true
	}
}

func TestNew_TimeComponentNonDecreasing(t *testing.T) {
	tests := []struct {
		name  string
		times []int64
	}{
		{name: "same millisecond", times: []int64{10, 10, 10}},
		{name: "increasing", times: []int64{10, 11, 250}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			i := 0
			g := Generator{Now: func() time.Time {
				ms := tt.times[i]
				i++
				return time.UnixMilli(ms)
			}}

			var prev int64 = -1
			for range tt.times {
				parts := strings.Split(g.New().String(), "_")
				require.Len(t, parts, 3)
				ms, err := strconv.ParseInt(parts[1], 10, 64)
				require.NoError(t, err)
				if ms < prev {
					t.Errorf("time component = %d, want >= %d", ms, prev)
				}
				prev = ms
			}
		})
	}
}
