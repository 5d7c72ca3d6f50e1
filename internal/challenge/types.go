// Package challenge parses AniList Watching Club challenge text and reconciles it
// against a user's completed anime and manga.
//
// The text is treated as a flat list of lines. Entries are located by proximity:
// a link line, an entry header at most a few lines above it, and an optional
// "Start: ... Finish: ..." date line a few lines below it.
package challenge

import "fmt"

// MediaType identifies which AniList catalog a link points into.
type MediaType string

const (
	MediaAnime MediaType = "anime"
	MediaManga MediaType = "manga"
)

// AllMediaTypes returns the media types in extraction order.
func AllMediaTypes() []MediaType {
	return []MediaType{MediaAnime, MediaManga}
}

// Valid returns true if this is a recognized media type.
func (t MediaType) Valid() bool {
	switch t {
	case MediaAnime, MediaManga:
		return true
	}
	return false
}

// MediaKey builds the completion map key for a media item, e.g. "anime-21".
func MediaKey(t MediaType, mediaID string) string {
	return fmt.Sprintf("%s-%s", t, mediaID)
}

// Entry is one checklist item referencing one AniList link.
type Entry struct {
	EntryNum   string    `json:"entryNum"`
	MediaID    string    `json:"mediaId"`
	MediaType  MediaType `json:"mediaType"`
	URL        string    `json:"url"`
	Position   int       `json:"position"` // Byte offset of the link in the source text
	Completed  bool      `json:"completed"`
	StartDate  *string   `json:"startDate"`
	FinishDate *string   `json:"finishDate"`
}

// Key returns the completion map key for this entry.
func (e Entry) Key() string {
	return MediaKey(e.MediaType, e.MediaID)
}

// CompletedMedia is a completed list entry as reported by the data source.
// Dates are nil when the source has no year for them.
type CompletedMedia struct {
	Title      string    `json:"title"`
	MediaType  MediaType `json:"mediaType"`
	StartDate  *string   `json:"startDate"`
	FinishDate *string   `json:"finishDate"`
}

// CompletionMap maps MediaKey values to completed media.
type CompletionMap map[string]CompletedMedia

// Merge copies every record of other into m, overwriting duplicates.
func (m CompletionMap) Merge(other CompletionMap) {
	for k, v := range other {
		m[k] = v
	}
}

// Stats summarizes challenge progress after reconciliation.
type Stats struct {
	CompletedCount       int      `json:"completedCount"`
	TotalCount           int      `json:"totalCount"`
	CompletionPercentage int      `json:"completionPercentage"`
	FinishDate           *string  `json:"finishDate"`
	RemainingMedia       []string `json:"remainingMedia"`
}

// Summary returns a short human-readable progress line.
func (s Stats) Summary() string {
	line := fmt.Sprintf("%d/%d completed (%d%%)", s.CompletedCount, s.TotalCount, s.CompletionPercentage)
	if s.FinishDate != nil {
		line += ", finished " + *s.FinishDate
	}
	return line
}

// Result is the output of a reconciliation run.
type Result struct {
	Text  string `json:"text"`
	Stats Stats  `json:"stats"`
}

// Windows bounds the proximity searches around a link line.
type Windows struct {
	HeaderLookBack int // Lines searched above the link for the entry header
	DateLookAhead  int // Lines searched below the link for the date line
}

// DefaultWindows returns the window sizes used by AWC challenge templates.
func DefaultWindows() Windows {
	return Windows{
		HeaderLookBack: 5,
		DateLookAhead:  3,
	}
}

// withDefaults replaces non-positive sizes with the defaults.
func (w Windows) withDefaults() Windows {
	def := DefaultWindows()
	if w.HeaderLookBack <= 0 {
		w.HeaderLookBack = def.HeaderLookBack
	}
	if w.DateLookAhead <= 0 {
		w.DateLookAhead = def.DateLookAhead
	}
	return w
}

// FilterByType returns the entries of the given media type, preserving order.
func FilterByType(entries []Entry, t MediaType) []Entry {
	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if e.MediaType == t {
			out = append(out, e)
		}
	}
	return out
}

func strPtr(s string) *string {
	return &s
}
