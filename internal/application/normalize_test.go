package application

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeLog(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{
			"strips job and step columns",
			"build\tRun tests\t2024-01-01T00:00:00.000Z collecting results",
			"2024-01-01T00:00:00.000Z collecting results",
		},
		{
			"keeps tabs inside the message",
			"build\tRun tests\tcol1\tcol2",
			"col1\tcol2",
		},
		{
			"line with one tab passes through",
			"build\tno second tab here",
			"build\tno second tab here",
		},
		{
			"line with no tab passes through",
			"plain line",
			"plain line",
		},
		{
			"empty input",
			"",
			"",
		},
		{
			"mixed lines keep count and order",
			"a\tb\tfirst\nplain\na\tb\tsecond",
			"first\nplain\nsecond",
		},
		{
			"trailing newline preserved",
			"a\tb\tbody\n",
			"body\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeLog(tt.raw)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, strings.Count(tt.raw, "\n"), strings.Count(got, "\n"))
		})
	}
}
