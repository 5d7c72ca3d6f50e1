package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/eydough/awc-code-updater/internal/anilist"
	"github.com/eydough/awc-code-updater/internal/challenge"
	domainerrors "github.com/eydough/awc-code-updater/internal/errors"
	"github.com/eydough/awc-code-updater/internal/id"
	"github.com/eydough/awc-code-updater/internal/validation"
)

// NoEntriesMessage is shown when a challenge has no recognizable entries.
const NoEntriesMessage = "No anime or manga entries found in the challenge text. " +
	"Make sure you have entries in the correct format with AniList URLs."

// CompletionSource supplies a user's completed anime and manga.
type CompletionSource interface {
	FetchAllCompleted(ctx context.Context, username string) (challenge.CompletionMap, error)
}

// refresher is implemented by sources that can bypass their cache.
type refresher interface {
	RefreshAllCompleted(ctx context.Context, username string) (challenge.CompletionMap, error)
}

// UpdateRequest is the input of one update run.
type UpdateRequest struct {
	Username string `json:"username" validate:"notblank" message:"Please enter your AniList username"`
	Text     string `json:"text" validate:"notblank" message:"Please paste your challenge text"`
	Refresh  bool   `json:"refresh"` // Skip cached completion data

	// MediaType restricts the run to anime or manga entries; empty means both.
	MediaType challenge.MediaType `json:"mediaType,omitempty" validate:"omitempty,oneof=anime manga" message:"Media type must be anime or manga"`
}

// UpdateResult is the output of one update run.
type UpdateResult struct {
	RunID   string            `json:"runId"`
	Text    string            `json:"text"`
	Stats   challenge.Stats   `json:"stats"`
	Entries []challenge.Entry `json:"entries"`
}

// ChallengeService runs the update pipeline: validate, extract, fetch, reconcile.
type ChallengeService struct {
	parser    *challenge.Parser
	source    CompletionSource
	validator *validation.Validator
	logger    *slog.Logger
}

// NewChallengeService creates a new challenge service.
func NewChallengeService(parser *challenge.Parser, source CompletionSource, validator *validation.Validator, logger *slog.Logger) *ChallengeService {
	return &ChallengeService{
		parser:    parser,
		source:    source,
		validator: validator,
		logger:    logger,
	}
}

// Update reconciles the challenge text against the user's completed lists.
//
// Nothing is parsed or fetched when the request is invalid, and nothing is
// fetched when the text has no entries. Completion data is fetched once and
// must arrive in full before any line is rewritten.
func (s *ChallengeService) Update(ctx context.Context, req UpdateRequest) (*UpdateResult, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	runID := id.NewRunID()
	logger := s.logger.With("run_id", runID, "username", req.Username)
	start := time.Now()

	entries := s.parser.Extract(req.Text)
	if req.MediaType != "" {
		entries = challenge.FilterByType(entries, req.MediaType)
	}
	if len(entries) == 0 {
		logger.Info("no challenge entries found")
		return nil, domainerrors.NoEntries(NoEntriesMessage)
	}
	logger.Debug("challenge entries extracted", "entries", len(entries))

	completed, err := s.fetch(ctx, req)
	if err != nil {
		logger.Warn("completion fetch failed", "error", err)
		return nil, domainerrors.Upstream(err, anilist.Reason(err))
	}

	result := s.parser.Reconcile(req.Text, entries, completed)

	logger.Info("challenge updated",
		"entries", len(entries),
		"completed", result.Stats.CompletedCount,
		"percentage", result.Stats.CompletionPercentage,
		"duration", time.Since(start),
	)

	return &UpdateResult{
		RunID:   runID,
		Text:    result.Text,
		Stats:   result.Stats,
		Entries: entries,
	}, nil
}

// Parse extracts entries without fetching completion data.
// Text without entries yields an empty list, not an error.
func (s *ChallengeService) Parse(text string) ([]challenge.Entry, error) {
	if err := s.validator.Validate(parseRequest{Text: text}); err != nil {
		return nil, err
	}
	entries := s.parser.Extract(text)
	if entries == nil {
		entries = []challenge.Entry{}
	}
	return entries, nil
}

type parseRequest struct {
	Text string `json:"text" validate:"notblank" message:"Please paste your challenge text"`
}

func (s *ChallengeService) fetch(ctx context.Context, req UpdateRequest) (challenge.CompletionMap, error) {
	if r, ok := s.source.(refresher); ok && req.Refresh {
		return r.RefreshAllCompleted(ctx, req.Username)
	}
	return s.source.FetchAllCompleted(ctx, req.Username)
}
