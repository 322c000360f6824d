package coordinator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCompletionPercentage(t *testing.T) {
	tests := []struct {
		name  string
		done  int64
		total int64
		want  int
	}{
		{name: "empty document", done: 0, total: 0, want: 0},
		{name: "nothing done", done: 0, total: 4, want: 0},
		{name: "one of three rounds up", done: 1, total: 3, want: 33},
		{name: "two of three rounds up", done: 2, total: 3, want: 67},
		{name: "one of seven", done: 1, total: 7, want: 14},
		{name: "half", done: 2, total: 4, want: 50},
		{name: "all done", done: 5, total: 5, want: 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CompletionPercentage(tt.done, tt.total))
		})
	}
}
