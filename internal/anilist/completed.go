package anilist

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/eydough/awc-code-updater/internal/challenge"
)

const completedListQuery = `query ($username: String, $type: MediaType) {
  MediaListCollection(userName: $username, type: $type, status: COMPLETED) {
    lists {
      entries {
        media {
          id
          title {
            romaji
            english
          }
        }
        startedAt {
          year
          month
          day
        }
        completedAt {
          year
          month
          day
        }
      }
    }
  }
}`

// FetchCompleted returns the user's completed list for one media type.
func (c *Client) FetchCompleted(ctx context.Context, username string, mediaType challenge.MediaType) (challenge.CompletionMap, error) {
	username = strings.TrimSpace(username)
	if !mediaType.Valid() {
		return nil, wrapError("fetchCompleted", username, mediaType, ErrInvalidMediaType)
	}

	c.logger.Debug("anilist request",
		"username", username,
		"type", mediaType,
	)

	body, err := c.doRequest(ctx, graphQLRequest{
		Query: completedListQuery,
		Variables: map[string]any{
			"username": username,
			"type":     graphQLType(mediaType),
		},
	})
	if err != nil {
		return nil, wrapError("fetchCompleted", username, mediaType, err)
	}

	var resp graphQLResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, wrapError("fetchCompleted", username, mediaType, fmt.Errorf("%w: %v", ErrMalformed, err))
	}
	if len(resp.Errors) > 0 {
		return nil, wrapError("fetchCompleted", username, mediaType,
			&responseError{err: ErrGraphQL, message: firstMessage(resp.Errors)})
	}
	if resp.Data == nil || resp.Data.MediaListCollection == nil {
		return nil, wrapError("fetchCompleted", username, mediaType, ErrMalformed)
	}

	completed := resp.Data.MediaListCollection.toCompletionMap(mediaType)
	c.logger.Debug("anilist completed list fetched",
		"username", username,
		"type", mediaType,
		"count", len(completed),
	)
	return completed, nil
}

// FetchAllCompleted returns the user's completed anime and manga in one map.
// Both lists are requested concurrently; if either fails, the whole call
// fails and the other request is canceled.
func (c *Client) FetchAllCompleted(ctx context.Context, username string) (challenge.CompletionMap, error) {
	types := challenge.AllMediaTypes()
	results := make([]challenge.CompletionMap, len(types))

	g, gctx := errgroup.WithContext(ctx)
	for i, mediaType := range types {
		g.Go(func() error {
			m, err := c.FetchCompleted(gctx, username, mediaType)
			if err != nil {
				return err
			}
			results[i] = m
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	all := make(challenge.CompletionMap)
	for _, m := range results {
		all.Merge(m)
	}
	return all, nil
}
