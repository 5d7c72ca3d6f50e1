package challenge

import "regexp"

const (
	// CompletedGlyph marks a finished entry.
	CompletedGlyph = "⚜️"
	// NotCompletedGlyph marks an unfinished entry.
	NotCompletedGlyph = "❌"

	// DatePlaceholder stands in for a date that has not been filled in.
	DatePlaceholder = "YYYY-MM-DD"

	challengeFinishLabel = "Challenge Finish Date: "
	challengeFinishLine  = challengeFinishLabel + DatePlaceholder

	startLabel  = "Start: "
	finishLabel = "Finish: "
)

var (
	// Link patterns. Group 1 is the numeric media ID; anything up to whitespace,
	// a closing paren or a quote belongs to the link. Whitespace includes
	// Unicode separators such as NBSP, which pasted forum text often carries.
	linkPatterns = map[MediaType]*regexp.Regexp{
		MediaAnime: regexp.MustCompile(`https://anilist\.co/anime/(\d+)(?:[^\s\p{Z}\x{FEFF})"']*)?`),
		MediaManga: regexp.MustCompile(`https://anilist\.co/manga/(\d+)(?:[^\s\p{Z}\x{FEFF})"']*)?`),
	}

	// Entry headers at line start: "A1)", "B12.)", "01.", "7)".
	headerPattern = regexp.MustCompile(`(?i)^([A-Z]\d+[.)]\)?|[A-Z]\d[.)]|\d+[.)])`)

	datePattern = regexp.MustCompile(`Start: (\d{4}-\d{2}-\d{2}|YYYY-MM-DD) Finish: (\d{4}-\d{2}-\d{2}|YYYY-MM-DD)`)

	// Finish token inside the text that follows "Finish: ".
	finishTokenPattern = regexp.MustCompile(`\d{4}-\d{2}-\d{2}|YYYY-MM-DD`)

	// Title text after a status glyph. The class holds both glyphs and the
	// emoji variation selector that trails ⚜.
	titlePattern = regexp.MustCompile(`[❌⚜\x{FE0F}][\s\p{Z}\x{FEFF}]+([^\r]*)`)
)

// dateOrNil converts a captured date token to a pointer, mapping the placeholder to nil.
func dateOrNil(token string) *string {
	if token == "" || token == DatePlaceholder {
		return nil
	}
	return strPtr(token)
}
