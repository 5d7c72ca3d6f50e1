package challenge

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLocateOccurrence(t *testing.T) {
	const url = "https://anilist.co/anime/1"
	text := strings.Join([]string{
		"01) header",
		url + " " + url,
		"02) header",
		url,
	}, "\n")
	lines := splitLines(text)

	first := strings.Index(text, url)
	second := first + len(url) + 1
	third := strings.LastIndex(text, url)

	tests := []struct {
		name     string
		position int
		wantLine int
		wantOK   bool
	}{
		{"first copy", first, 1, true},
		{"second copy on same line", second, 1, true},
		{"copy on later line", third, 3, true},
		{"negative position clamps to start", -5, 1, true},
		{"position past end finds nothing", len(text), -1, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			line, ok := locateOccurrence(text, lines, url, tt.position)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantLine, line)
		})
	}
}

func TestLocateOccurrence_EmptyURL(t *testing.T) {
	_, ok := locateOccurrence("abc", []string{"abc"}, "", 0)
	assert.False(t, ok)
}

func TestFindHeaderLine_NearestFirst(t *testing.T) {
	lines := []string{"01) outer", "02) inner", "link"}

	idx, token, ok := findHeaderLine(lines, 2, 5)

	assert.True(t, ok)
	assert.Equal(t, 1, idx)
	assert.Equal(t, "02)", token)
}

func TestFindDateLine_RequiresBothLabels(t *testing.T) {
	lines := []string{"link", "Start: 2023-01-01", "Start: x Finish: y"}

	idx, ok := findDateLine(lines, 0, 3)

	assert.True(t, ok)
	assert.Equal(t, 2, idx)
}

func TestSplitJoinLines_PreservesCarriageReturns(t *testing.T) {
	text := "a\r\nb\r\n"
	assert.Equal(t, text, joinLines(splitLines(text)))
}
