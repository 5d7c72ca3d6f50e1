package challenge

import "strings"

// splitLines splits text on "\n". A trailing "\r" stays part of its line so
// that joining the lines back reproduces the input byte for byte.
func splitLines(text string) []string {
	return strings.Split(text, "\n")
}

func joinLines(lines []string) string {
	return strings.Join(lines, "\n")
}

// findHeaderLine searches up to lookBack lines above idx, nearest first, for an
// entry header. It returns the line index and the header token.
func findHeaderLine(lines []string, idx, lookBack int) (int, string, bool) {
	for i := idx - 1; i >= max(0, idx-lookBack); i-- {
		if m := headerPattern.FindStringSubmatch(strings.TrimSpace(lines[i])); m != nil {
			return i, m[1], true
		}
	}
	return -1, "", false
}

// findDateTokens searches up to lookAhead lines below idx for a well-formed
// date line and returns its start and finish tokens.
func findDateTokens(lines []string, idx, lookAhead int) (start, finish string, ok bool) {
	for i := idx + 1; i < min(len(lines), idx+lookAhead+1); i++ {
		if m := datePattern.FindStringSubmatch(lines[i]); m != nil {
			return m[1], m[2], true
		}
	}
	return "", "", false
}

// findDateLine searches up to lookAhead lines below idx for any line carrying
// both date labels. Rewriting only needs the labels, not well-formed dates.
func findDateLine(lines []string, idx, lookAhead int) (int, bool) {
	for i := idx + 1; i < min(len(lines), idx+lookAhead+1); i++ {
		if strings.Contains(lines[i], "Start:") && strings.Contains(lines[i], "Finish:") {
			return i, true
		}
	}
	return -1, false
}

// locateOccurrence finds the line holding a specific physical occurrence of url.
//
// The occurrence is identified by its byte offset in source: the number of
// earlier copies of url in source is the index of the copy to find. Lines are
// then walked in order, counting copies, until that index is reached.
// Every caller that needs "which line is this link on" goes through here.
func locateOccurrence(source string, lines []string, url string, position int) (int, bool) {
	if url == "" {
		return -1, false
	}
	position = max(0, min(position, len(source)))
	target := strings.Count(source[:position], url)

	seen := 0
	for i, line := range lines {
		seen += strings.Count(line, url)
		if seen > target {
			return i, true
		}
	}
	return -1, false
}
