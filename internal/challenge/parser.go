package challenge

// Parser extracts and reconciles challenge entries.
// A Parser holds no per-run state and is safe for concurrent use.
type Parser struct {
	windows Windows
}

// NewParser creates a parser with the given search windows.
// Non-positive window sizes fall back to DefaultWindows.
func NewParser(w Windows) *Parser {
	return &Parser{windows: w.withDefaults()}
}

// Windows returns the search windows in effect.
func (p *Parser) Windows() Windows {
	return p.windows
}

var defaultParser = NewParser(DefaultWindows())

// Extract parses text with the default windows.
func Extract(text string) []Entry {
	return defaultParser.Extract(text)
}

// Reconcile updates text with the default windows.
func Reconcile(text string, entries []Entry, completed CompletionMap) Result {
	return defaultParser.Reconcile(text, entries, completed)
}

// Extract scans text for AniList links and returns one Entry per link that has
// an entry header above it. Anime links come first, then manga links, each in
// document order.
func (p *Parser) Extract(text string) []Entry {
	lines := splitLines(text)
	var entries []Entry

	for _, mediaType := range AllMediaTypes() {
		pattern := linkPatterns[mediaType]
		for _, loc := range pattern.FindAllStringSubmatchIndex(text, -1) {
			url := text[loc[0]:loc[1]]
			mediaID := text[loc[2]:loc[3]]

			// A link on the first line has no room for a header above it.
			lineIdx, ok := locateOccurrence(text, lines, url, loc[0])
			if !ok || lineIdx == 0 {
				continue
			}

			headerIdx, entryNum, ok := findHeaderLine(lines, lineIdx, p.windows.HeaderLookBack)
			if !ok {
				continue
			}

			entry := Entry{
				EntryNum:  entryNum,
				MediaID:   mediaID,
				MediaType: mediaType,
				URL:       url,
				Position:  loc[0],
				Completed: containsGlyph(lines[headerIdx], CompletedGlyph),
			}
			if start, finish, ok := findDateTokens(lines, lineIdx, p.windows.DateLookAhead); ok {
				entry.StartDate = dateOrNil(start)
				entry.FinishDate = dateOrNil(finish)
			}

			entries = append(entries, entry)
		}
	}

	return entries
}
