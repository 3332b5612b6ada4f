// EnsembleData statistics [Resolver] implementation
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/sheetstats/internal/models"
	"github.com/desertthunder/sheetstats/internal/shared"
)

const (
	defaultStatsBaseURL  string        = "https://ensembledata.com/apis"
	defaultStatsEndpoint string        = "/tt/post/info"
	defaultStatsTimeout  time.Duration = 12 * time.Second
)

var canonicalPattern = regexp.MustCompile(`https://www\.tiktok\.com/@[^/]+/video/\d+`)

// CanonicalURL extracts the canonical video URL from raw.
//
// The input is returned unchanged when it does not contain one.
func CanonicalURL(raw string) string {
	if match := canonicalPattern.FindString(raw); match != "" {
		return match
	}
	return raw
}

// postStatistics mirrors the statistics object of a post-info result.
//
// Pointers distinguish a missing counter from a zero one.
type postStatistics struct {
	PlayCount    *int64 `json:"play_count"`
	CommentCount *int64 `json:"comment_count"`
	ShareCount   *int64 `json:"share_count"`
	DiggCount    *int64 `json:"digg_count"`
}

type postInfo struct {
	Statistics *postStatistics `json:"statistics"`
}

type postInfoResponse struct {
	Data []postInfo `json:"data"`
}

// StatsOpts configures a [StatsService].
type StatsOpts struct {
	BaseURL    string
	Endpoint   string
	Token      string
	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     *log.Logger
}

// StatsService resolves video links to engagement counters via the EnsembleData API.
type StatsService struct {
	baseURL    string
	endpoint   string
	token      string
	httpClient *http.Client
	logger     *log.Logger
}

// NewStatsService creates a new statistics resolver.
//
// A nil HTTPClient gets a dedicated client bounded by Timeout (12s by default).
func NewStatsService(opts StatsOpts) *StatsService {
	if opts.BaseURL == "" {
		opts.BaseURL = defaultStatsBaseURL
	}
	if opts.Endpoint == "" {
		opts.Endpoint = defaultStatsEndpoint
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultStatsTimeout
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: opts.Timeout}
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}

	return &StatsService{
		baseURL:    opts.BaseURL,
		endpoint:   opts.Endpoint,
		token:      opts.Token,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
	}
}

// Name returns the service name.
func (s *StatsService) Name() string {
	return "EnsembleData"
}

// Resolve looks up the counters of the video behind raw.
//
// Failures are logged and returned as [models.Unavailable].
func (s *StatsService) Resolve(ctx context.Context, raw string) models.StatsResult {
	canonical := CanonicalURL(raw)

	result, err := s.Lookup(ctx, canonical)
	if err != nil {
		s.logger.Warn("stats lookup failed", "url", canonical, "error", err)
		return models.Unavailable()
	}
	return result
}

// Lookup queries the statistics endpoint for an already canonical URL.
func (s *StatsService) Lookup(ctx context.Context, videoURL string) (models.StatsResult, error) {
	params := url.Values{}
	params.Set("url", videoURL)
	params.Set("token", s.token)
	params.Set("new_version", "false")
	params.Set("download_video", "false")

	apiURL := s.baseURL + s.endpoint + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return models.Unavailable(), fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return models.Unavailable(), fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return models.Unavailable(), fmt.Errorf("%w: status %d: %s", shared.ErrAPIRequest, resp.StatusCode, string(body))
	}

	var payload postInfoResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return models.Unavailable(), fmt.Errorf("failed to decode response: %w", err)
	}

	return payload.result()
}

func (p postInfoResponse) result() (models.StatsResult, error) {
	if len(p.Data) == 0 {
		return models.Unavailable(), fmt.Errorf("%w: empty data list", shared.ErrStatsUnavailable)
	}

	st := p.Data[0].Statistics
	if st == nil {
		return models.Unavailable(), fmt.Errorf("%w: missing statistics", shared.ErrStatsUnavailable)
	}
	if st.PlayCount == nil || st.CommentCount == nil || st.ShareCount == nil || st.DiggCount == nil {
		return models.Unavailable(), fmt.Errorf("%w: incomplete statistics", shared.ErrStatsUnavailable)
	}
	if *st.PlayCount < 0 || *st.CommentCount < 0 || *st.ShareCount < 0 || *st.DiggCount < 0 {
		return models.Unavailable(), fmt.Errorf("%w: negative counter", shared.ErrStatsUnavailable)
	}

	return models.NewStatsResult(*st.PlayCount, *st.CommentCount, *st.ShareCount, *st.DiggCount), nil
}
