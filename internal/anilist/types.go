package anilist

import (
	"fmt"
	"strconv"

	"github.com/eydough/awc-code-updater/internal/challenge"
)

// Raw API types (internal)

type graphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

type graphQLResponse struct {
	Data   *rawData       `json:"data"`
	Errors []graphQLError `json:"errors"`
}

type graphQLError struct {
	Message string `json:"message"`
	Status  int    `json:"status"`
}

type rawData struct {
	MediaListCollection *rawCollection `json:"MediaListCollection"`
}

type rawCollection struct {
	Lists []rawList `json:"lists"`
}

type rawList struct {
	Entries []rawEntry `json:"entries"`
}

type rawEntry struct {
	Media       rawMedia  `json:"media"`
	StartedAt   fuzzyDate `json:"startedAt"`
	CompletedAt fuzzyDate `json:"completedAt"`
}

type rawMedia struct {
	ID    int      `json:"id"`
	Title rawTitle `json:"title"`
}

type rawTitle struct {
	Romaji  *string `json:"romaji"`
	English *string `json:"english"`
}

// fuzzyDate is AniList's partial date; any component may be null.
type fuzzyDate struct {
	Year  *int `json:"year"`
	Month *int `json:"month"`
	Day   *int `json:"day"`
}

// format renders the date as YYYY-MM-DD. A date without a year is nil;
// a missing month or day renders as 00.
func (d fuzzyDate) format() *string {
	if d.Year == nil || *d.Year == 0 {
		return nil
	}
	s := fmt.Sprintf("%04d-%02d-%02d", *d.Year, deref(d.Month), deref(d.Day))
	return &s
}

// preferred returns the English title, falling back to romaji.
func (t rawTitle) preferred() string {
	if t.English != nil && *t.English != "" {
		return *t.English
	}
	if t.Romaji != nil {
		return *t.Romaji
	}
	return ""
}

// firstMessage returns the first error message, or a generic one.
func firstMessage(errs []graphQLError) string {
	if len(errs) > 0 && errs[0].Message != "" {
		return errs[0].Message
	}
	return unknownAPIError
}

// toCompletionMap flattens every list of a collection into completion records.
func (c *rawCollection) toCompletionMap(mediaType challenge.MediaType) challenge.CompletionMap {
	out := make(challenge.CompletionMap)
	for _, list := range c.Lists {
		for _, e := range list.Entries {
			id := strconv.Itoa(e.Media.ID)
			out[challenge.MediaKey(mediaType, id)] = challenge.CompletedMedia{
				Title:      e.Media.Title.preferred(),
				MediaType:  mediaType,
				StartDate:  e.StartedAt.format(),
				FinishDate: e.CompletedAt.format(),
			}
		}
	}
	return out
}

// graphQLType maps a media type to AniList's MediaType enum.
func graphQLType(t challenge.MediaType) string {
	switch t {
	case challenge.MediaManga:
		return "MANGA"
	default:
		return "ANIME"
	}
}

func deref(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}
