package challenge

import (
	"math"
	"strings"
)

// resolution is the reconciled state of one entry.
type resolution struct {
	completed  bool
	startDate  *string
	finishDate *string
	inMap      bool
}

// Reconcile rewrites status glyphs and date lines in text to match the
// completion data and returns the new text with progress statistics.
//
// Each entry is resolved on its own, so one title may back several entries.
// Entries whose header or date line cannot be found again are left untouched.
func (p *Parser) Reconcile(text string, entries []Entry, completed CompletionMap) Result {
	original := splitLines(text)
	lines := splitLines(text)
	allCompleted := true
	var latest *string
	remaining := make([]string, 0)

	for _, entry := range entries {
		res := resolve(entry, completed)

		if !res.completed {
			allCompleted = false
			if !res.inMap {
				if label, ok := remainingLabel(text, original, entry); ok {
					remaining = append(remaining, label)
				}
			}
		}

		// ISO dates order lexicographically.
		if res.finishDate != nil && (latest == nil || *res.finishDate > *latest) {
			latest = res.finishDate
		}

		p.rewriteEntry(text, lines, entry, res)
	}

	updated := joinLines(lines)
	if allCompleted && latest != nil {
		updated = strings.Replace(updated, challengeFinishLine, challengeFinishLabel+*latest, 1)
	}

	return Result{
		Text:  updated,
		Stats: buildStats(entries, completed, allCompleted, latest, remaining),
	}
}

// resolve decides whether an entry is completed and which dates it carries.
func resolve(entry Entry, completed CompletionMap) resolution {
	res := resolution{
		startDate:  entry.StartDate,
		finishDate: entry.FinishDate,
	}

	media, ok := completed[entry.Key()]
	if !ok {
		res.completed = entry.FinishDate != nil
		return res
	}

	res.inMap = true
	res.completed = true
	if media.StartDate != nil {
		res.startDate = media.StartDate
	}
	if media.FinishDate != nil {
		res.finishDate = media.FinishDate
	}
	return res
}

// remainingLabel recovers a display label for an unfinished entry from the
// line directly above its link. That line must mention the entry number;
// otherwise no label is produced, even when the header sits further up.
func remainingLabel(source string, lines []string, entry Entry) (string, bool) {
	idx, ok := locateOccurrence(source, lines, entry.URL, entry.Position)
	if !ok {
		return "", false
	}

	prev := lines[max(0, idx-1)]
	if !strings.Contains(prev, entry.EntryNum) {
		return "", false
	}

	if m := titlePattern.FindStringSubmatch(prev); m != nil {
		return m[1], true
	}
	return "Entry " + entry.EntryNum, true
}

// rewriteEntry applies the resolved state to the entry's header and date lines.
func (p *Parser) rewriteEntry(source string, lines []string, entry Entry, res resolution) {
	linkIdx, ok := locateOccurrence(source, lines, entry.URL, entry.Position)
	if !ok {
		return
	}

	headerIdx, _, ok := findHeaderLine(lines, linkIdx, p.windows.HeaderLookBack)
	if !ok {
		return
	}
	dateIdx, ok := findDateLine(lines, linkIdx, p.windows.DateLookAhead)
	if !ok {
		return
	}

	lines[headerIdx] = rewriteMarker(lines[headerIdx], res.completed)

	if res.startDate != nil || res.finishDate != nil {
		lines[dateIdx] = rewriteDateLine(lines[dateIdx], res.startDate, res.finishDate)
	}
}

// rewriteMarker swaps the status glyph on a header line to match completed.
func rewriteMarker(line string, completed bool) string {
	switch {
	case completed && containsGlyph(line, NotCompletedGlyph):
		return strings.Replace(line, NotCompletedGlyph, CompletedGlyph, 1)
	case !completed && containsGlyph(line, CompletedGlyph):
		return strings.Replace(line, CompletedGlyph, NotCompletedGlyph, 1)
	default:
		return line
	}
}

// rewriteDateLine rebuilds a date line, keeping whatever followed the finish token.
func rewriteDateLine(line string, start, finish *string) string {
	rebuilt := startLabel + orPlaceholder(start) + " " + finishLabel + orPlaceholder(finish)

	_, after, found := strings.Cut(line, finishLabel)
	if !found {
		return rebuilt
	}

	var trailing string
	if loc := finishTokenPattern.FindStringIndex(after); loc != nil {
		trailing = after[loc[1]:]
	} else if runes := []rune(after); len(runes) > len(DatePlaceholder) {
		trailing = string(runes[len(DatePlaceholder):])
	}
	return rebuilt + trailing
}

func orPlaceholder(date *string) string {
	if date == nil {
		return DatePlaceholder
	}
	return *date
}

func containsGlyph(line, glyph string) bool {
	return strings.Contains(line, glyph)
}

// buildStats counts an entry as completed if any signal says so: a completion
// record, a filled-in finish date, or a completed glyph at parse time.
func buildStats(entries []Entry, completed CompletionMap, allCompleted bool, latest *string, remaining []string) Stats {
	stats := Stats{
		TotalCount:     len(entries),
		RemainingMedia: remaining,
	}

	for _, e := range entries {
		_, inMap := completed[e.Key()]
		if e.Completed || e.FinishDate != nil || inMap {
			stats.CompletedCount++
		}
	}

	stats.CompletionPercentage = percentage(stats.CompletedCount, stats.TotalCount)

	if allCompleted && stats.TotalCount > 0 {
		stats.FinishDate = latest
	}

	return stats
}

func percentage(part, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(part) / float64(total) * 100))
}
