package challenge

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func record(mediaType MediaType, start, finish *string) CompletedMedia {
	return CompletedMedia{Title: "X", MediaType: mediaType, StartDate: start, FinishDate: finish}
}

func TestReconcile_CompletesFromMap(t *testing.T) {
	cm := CompletionMap{
		"anime-23273": record(MediaAnime, strPtr("2023-01-01"), strPtr("2023-02-01")),
	}

	result := Reconcile(romanceChallenge, Extract(romanceChallenge), cm)

	want := "01. ⚜️ Watch a romance anime\n" +
		"https://anilist.co/anime/23273/\n" +
		"Start: 2023-01-01 Finish: 2023-02-01"
	assert.Equal(t, want, result.Text)
	assert.Equal(t, 1, result.Stats.CompletedCount)
	assert.Equal(t, 1, result.Stats.TotalCount)
	assert.Equal(t, 100, result.Stats.CompletionPercentage)
	require.NotNil(t, result.Stats.FinishDate)
	assert.Equal(t, "2023-02-01", *result.Stats.FinishDate)
	assert.Equal(t, []string{}, result.Stats.RemainingMedia)
}

func TestReconcile_NotCompleted(t *testing.T) {
	result := Reconcile(romanceChallenge, Extract(romanceChallenge), CompletionMap{})

	assert.Equal(t, romanceChallenge, result.Text)
	assert.Equal(t, 0, result.Stats.CompletedCount)
	assert.Equal(t, 1, result.Stats.TotalCount)
	assert.Equal(t, 0, result.Stats.CompletionPercentage)
	assert.Nil(t, result.Stats.FinishDate)
	assert.Equal(t, []string{"Watch a romance anime"}, result.Stats.RemainingMedia)
}

func TestReconcile_Idempotent(t *testing.T) {
	text := strings.Join([]string{
		"Challenge Finish Date: YYYY-MM-DD",
		"",
		"01) ❌ Watch a romance anime",
		"https://anilist.co/anime/23273/",
		"Start: YYYY-MM-DD Finish: YYYY-MM-DD (rewatch)",
		"",
		"02) ❌ Read a manga",
		"https://anilist.co/manga/30013",
		"Start: YYYY-MM-DD Finish: YYYY-MM-DD",
	}, "\n")
	cm := CompletionMap{
		"anime-23273": record(MediaAnime, strPtr("2023-01-01"), strPtr("2023-02-01")),
		"manga-30013": record(MediaManga, strPtr("2023-01-10"), strPtr("2023-03-15")),
	}

	first := Reconcile(text, Extract(text), cm)
	second := Reconcile(first.Text, Extract(first.Text), cm)

	assert.Contains(t, first.Text, "Challenge Finish Date: 2023-03-15")
	assert.Contains(t, first.Text, "Start: 2023-01-01 Finish: 2023-02-01 (rewatch)")
	assert.Equal(t, first.Text, second.Text)
	assert.Equal(t, first.Stats, second.Stats)
}

func TestReconcile_NullDatesKeepRealDateLine(t *testing.T) {
	text := "01) ❌ Title\nhttps://anilist.co/anime/7\nStart: 2022-05-05 Finish: 2022-06-06 notes"
	entries := []Entry{{
		EntryNum:  "01)",
		MediaID:   "7",
		MediaType: MediaAnime,
		URL:       "https://anilist.co/anime/7",
		Position:  strings.Index(text, "https://"),
	}}
	cm := CompletionMap{"anime-7": record(MediaAnime, nil, nil)}

	result := Reconcile(text, entries, cm)

	assert.Equal(t, "01) ⚜️ Title\nhttps://anilist.co/anime/7\nStart: 2022-05-05 Finish: 2022-06-06 notes", result.Text)
}

func TestReconcile_MapDatesOverrideOnlyWhenPresent(t *testing.T) {
	text := "01) ❌ Title\nhttps://anilist.co/anime/7\nStart: 2022-05-05 Finish: YYYY-MM-DD"
	cm := CompletionMap{"anime-7": record(MediaAnime, nil, strPtr("2022-07-01"))}

	result := Reconcile(text, Extract(text), cm)

	assert.Equal(t, "01) ⚜️ Title\nhttps://anilist.co/anime/7\nStart: 2022-05-05 Finish: 2022-07-01", result.Text)
}

func TestReconcile_OwnFinishDateCompletes(t *testing.T) {
	text := "01) ❌ Title\nhttps://anilist.co/anime/7\nStart: 2022-05-05 Finish: 2022-06-06"

	result := Reconcile(text, Extract(text), nil)

	assert.Equal(t, "01) ⚜️ Title\nhttps://anilist.co/anime/7\nStart: 2022-05-05 Finish: 2022-06-06", result.Text)
	assert.Equal(t, 100, result.Stats.CompletionPercentage)
	assert.Equal(t, "2022-06-06", *result.Stats.FinishDate)
}

func TestReconcile_ClearsStaleCompletedGlyph(t *testing.T) {
	text := "01) ⚜️ Title\nhttps://anilist.co/anime/7\nStart: YYYY-MM-DD Finish: YYYY-MM-DD"

	result := Reconcile(text, Extract(text), CompletionMap{})

	assert.Equal(t, "01) ❌ Title\nhttps://anilist.co/anime/7\nStart: YYYY-MM-DD Finish: YYYY-MM-DD", result.Text)
	// The parse-time glyph still counts toward the completed total.
	assert.Equal(t, 1, result.Stats.CompletedCount)
	assert.Equal(t, 100, result.Stats.CompletionPercentage)
	assert.Nil(t, result.Stats.FinishDate)
	assert.Equal(t, []string{"Title"}, result.Stats.RemainingMedia)
}

func TestReconcile_RepeatedURLIndependent(t *testing.T) {
	text := strings.Join([]string{
		"01) ❌ First",
		"https://anilist.co/anime/5",
		"Start: YYYY-MM-DD Finish: YYYY-MM-DD",
		"02) ❌ Second",
		"https://anilist.co/anime/5",
		"Start: 2023-03-01 Finish: 2023-03-02",
	}, "\n")

	result := Reconcile(text, Extract(text), CompletionMap{})

	want := strings.Join([]string{
		"01) ❌ First",
		"https://anilist.co/anime/5",
		"Start: YYYY-MM-DD Finish: YYYY-MM-DD",
		"02) ⚜️ Second",
		"https://anilist.co/anime/5",
		"Start: 2023-03-01 Finish: 2023-03-02",
	}, "\n")
	assert.Equal(t, want, result.Text)
	assert.Equal(t, []string{"First"}, result.Stats.RemainingMedia)
	assert.Equal(t, 50, result.Stats.CompletionPercentage)
}

func TestReconcile_ChallengeFinishDate(t *testing.T) {
	text := strings.Join([]string{
		"Challenge Finish Date: YYYY-MM-DD",
		"01) ❌ A",
		"https://anilist.co/anime/1",
		"Start: YYYY-MM-DD Finish: YYYY-MM-DD",
		"02) ❌ B",
		"https://anilist.co/anime/2",
		"Start: YYYY-MM-DD Finish: YYYY-MM-DD",
	}, "\n")

	t.Run("all completed uses latest date", func(t *testing.T) {
		cm := CompletionMap{
			"anime-1": record(MediaAnime, nil, strPtr("2023-05-01")),
			"anime-2": record(MediaAnime, nil, strPtr("2023-04-01")),
		}

		result := Reconcile(text, Extract(text), cm)

		assert.True(t, strings.HasPrefix(result.Text, "Challenge Finish Date: 2023-05-01\n"))
		assert.Equal(t, "2023-05-01", *result.Stats.FinishDate)
	})

	t.Run("partial leaves marker", func(t *testing.T) {
		cm := CompletionMap{
			"anime-1": record(MediaAnime, nil, strPtr("2023-05-01")),
		}

		result := Reconcile(text, Extract(text), cm)

		assert.True(t, strings.HasPrefix(result.Text, "Challenge Finish Date: YYYY-MM-DD\n"))
		assert.Nil(t, result.Stats.FinishDate)
		assert.Equal(t, []string{"B"}, result.Stats.RemainingMedia)
	})

	t.Run("completed without dates leaves marker", func(t *testing.T) {
		cm := CompletionMap{
			"anime-1": record(MediaAnime, nil, nil),
			"anime-2": record(MediaAnime, nil, nil),
		}

		result := Reconcile(text, Extract(text), cm)

		assert.True(t, strings.HasPrefix(result.Text, "Challenge Finish Date: YYYY-MM-DD\n"))
		assert.Equal(t, 100, result.Stats.CompletionPercentage)
		assert.Nil(t, result.Stats.FinishDate)
	})
}

func TestReconcile_RemainingLabels(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "title after glyph",
			text: "03. ❌ Watch a sports anime\nhttps://anilist.co/anime/9",
			want: []string{"Watch a sports anime"},
		},
		{
			name: "no-break space after glyph",
			text: "01. ❌\u00a0Title\nhttps://anilist.co/anime/8",
			want: []string{"Title"},
		},
		{
			name: "no-break space after completed glyph",
			text: "01. ⚜️\u00a0Title\nhttps://anilist.co/anime/8",
			want: []string{"Title"},
		},
		{
			name: "no glyph falls back to entry number",
			text: "03. Watch a sports anime\nhttps://anilist.co/anime/9",
			want: []string{"Entry 03."},
		},
		{
			name: "gap between header and link yields no label",
			text: "03. ❌ Watch a sports anime\n\nhttps://anilist.co/anime/9",
			want: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Reconcile(tt.text, Extract(tt.text), nil)

			assert.Equal(t, 1, result.Stats.TotalCount)
			assert.Equal(t, tt.want, result.Stats.RemainingMedia)
		})
	}
}

func TestReconcile_EntryWithoutDateLineKeepsMarker(t *testing.T) {
	text := "01) ❌ Title\nhttps://anilist.co/anime/7"
	cm := CompletionMap{"anime-7": record(MediaAnime, nil, strPtr("2022-07-01"))}

	result := Reconcile(text, Extract(text), cm)

	assert.Equal(t, text, result.Text)
	assert.Equal(t, 1, result.Stats.CompletedCount)
}

func TestReconcile_NoEntries(t *testing.T) {
	text := "Challenge Finish Date: YYYY-MM-DD\nnothing here"

	result := Reconcile(text, nil, nil)

	assert.Equal(t, text, result.Text)
	assert.Equal(t, Stats{RemainingMedia: []string{}}, result.Stats)
}

func TestReconcile_StatsJSON(t *testing.T) {
	result := Reconcile(romanceChallenge, Extract(romanceChallenge), nil)

	data, err := json.Marshal(result.Stats)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"completedCount": 0,
		"totalCount": 1,
		"completionPercentage": 0,
		"finishDate": null,
		"remainingMedia": ["Watch a romance anime"]
	}`, string(data))
}

func TestPercentage(t *testing.T) {
	tests := []struct {
		part, total, want int
	}{
		{0, 0, 0},
		{0, 4, 0},
		{1, 3, 33},
		{2, 3, 67},
		{1, 8, 13},
		{3, 3, 100},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, percentage(tt.part, tt.total), "percentage(%d, %d)", tt.part, tt.total)
	}
}

func TestRewriteDateLine(t *testing.T) {
	tests := []struct {
		name   string
		line   string
		start  *string
		finish *string
		want   string
	}{
		{
			name:   "fills placeholders",
			line:   "Start: YYYY-MM-DD Finish: YYYY-MM-DD",
			start:  strPtr("2023-01-01"),
			finish: strPtr("2023-01-02"),
			want:   "Start: 2023-01-01 Finish: 2023-01-02",
		},
		{
			name:   "keeps trailing annotation",
			line:   "Start: YYYY-MM-DD Finish: YYYY-MM-DD | rewatch",
			start:  strPtr("2023-01-01"),
			finish: strPtr("2023-01-02"),
			want:   "Start: 2023-01-01 Finish: 2023-01-02 | rewatch",
		},
		{
			name:  "missing finish stays placeholder",
			line:  "Start: YYYY-MM-DD Finish: YYYY-MM-DD",
			start: strPtr("2023-01-01"),
			want:  "Start: 2023-01-01 Finish: YYYY-MM-DD",
		},
		{
			name:   "replaces real dates",
			line:   "Start: 2020-01-01 Finish: 2020-02-02 ok",
			start:  strPtr("2023-01-01"),
			finish: strPtr("2023-01-02"),
			want:   "Start: 2023-01-01 Finish: 2023-01-02 ok",
		},
		{
			name:   "loose spacing",
			line:   "Start:  YYYY-MM-DD  Finish: YYYY-MM-DD",
			finish: strPtr("2023-01-02"),
			want:   "Start: YYYY-MM-DD Finish: 2023-01-02",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, rewriteDateLine(tt.line, tt.start, tt.finish))
		})
	}
}

func TestRewriteMarker(t *testing.T) {
	tests := []struct {
		name      string
		line      string
		completed bool
		want      string
	}{
		{"mark completed", "01) ❌ Title", true, "01) ⚜️ Title"},
		{"mark not completed", "01) ⚜️ Title", false, "01) ❌ Title"},
		{"already completed", "01) ⚜️ Title", true, "01) ⚜️ Title"},
		{"no glyph", "01) Title", true, "01) Title"},
		{"first glyph only", "01) ❌ Title ❌", true, "01) ⚜️ Title ❌"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, rewriteMarker(tt.line, tt.completed))
		})
	}
}

func TestStats_Summary(t *testing.T) {
	assert.Equal(t, "3/5 completed (60%)", Stats{CompletedCount: 3, TotalCount: 5, CompletionPercentage: 60}.Summary())
	assert.Equal(t, "2/2 completed (100%), finished 2023-02-01",
		Stats{CompletedCount: 2, TotalCount: 2, CompletionPercentage: 100, FinishDate: strPtr("2023-02-01")}.Summary())
}
