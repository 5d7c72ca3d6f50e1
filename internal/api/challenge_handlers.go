package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/eydough/awc-code-updater/internal/challenge"
	"github.com/eydough/awc-code-updater/internal/service"
)

func (s *Server) registerChallengeRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID:  "updateChallenge",
		Method:       http.MethodPost,
		Path:         "/api/v1/challenge/update",
		Summary:      "Update challenge",
		Description:  "Marks completed entries and fills in dates from the user's AniList lists",
		Tags:         []string{"Challenge"},
		MaxBodyBytes: MaxBodyBytes,
	}, s.handleUpdateChallenge)

	huma.Register(s.api, huma.Operation{
		OperationID:  "parseChallenge",
		Method:       http.MethodPost,
		Path:         "/api/v1/challenge/parse",
		Summary:      "Parse challenge",
		Description:  "Lists the entries found in the challenge text without contacting AniList",
		Tags:         []string{"Challenge"},
		MaxBodyBytes: MaxBodyBytes,
	}, s.handleParseChallenge)
}

// === DTOs ===

// UpdateChallengeRequest is the request body for a challenge update.
// Emptiness and the media type are checked by the service so the user sees its messages.
type UpdateChallengeRequest struct {
	Username  string `json:"username" required:"false" doc:"AniList username"`
	Text      string `json:"text" required:"false" doc:"Challenge text copied from the forum post"`
	Refresh   bool   `json:"refresh,omitempty" doc:"Ignore cached completion data"`
	MediaType string `json:"mediaType,omitempty" doc:"Restrict the update to anime or manga entries"`
}

// UpdateChallengeInput wraps the update request for Huma.
type UpdateChallengeInput struct {
	Body UpdateChallengeRequest
}

// UpdateChallengeOutput wraps the update result for Huma.
type UpdateChallengeOutput struct {
	Body service.UpdateResult
}

// ParseChallengeRequest is the request body for a parse-only call.
type ParseChallengeRequest struct {
	Text string `json:"text" required:"false" doc:"Challenge text copied from the forum post"`
}

// ParseChallengeInput wraps the parse request for Huma.
type ParseChallengeInput struct {
	Body ParseChallengeRequest
}

// ParseChallengeResponse lists the entries found in the text.
type ParseChallengeResponse struct {
	Entries []challenge.Entry `json:"entries" doc:"Entries in extraction order: anime first, then manga"`
}

// ParseChallengeOutput wraps the parse response for Huma.
type ParseChallengeOutput struct {
	Body ParseChallengeResponse
}

// === Handlers ===

func (s *Server) handleUpdateChallenge(ctx context.Context, input *UpdateChallengeInput) (*UpdateChallengeOutput, error) {
	result, err := s.services.Challenge.Update(ctx, service.UpdateRequest{
		Username:  input.Body.Username,
		Text:      input.Body.Text,
		Refresh:   input.Body.Refresh,
		MediaType: challenge.MediaType(input.Body.MediaType),
	})
	if err != nil {
		return nil, apiError(err)
	}
	return &UpdateChallengeOutput{Body: *result}, nil
}

func (s *Server) handleParseChallenge(_ context.Context, input *ParseChallengeInput) (*ParseChallengeOutput, error) {
	entries, err := s.services.Challenge.Parse(input.Body.Text)
	if err != nil {
		return nil, apiError(err)
	}
	return &ParseChallengeOutput{Body: ParseChallengeResponse{Entries: entries}}, nil
}
