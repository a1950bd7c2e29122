package wayback

import (
	"context"
	"encoding/json"
	"net/url"
	"strconv"
	"strings"

	"github.com/aleister1102/adstrace/internal/common"
	"github.com/aleister1102/adstrace/internal/config"
	"github.com/aleister1102/adstrace/internal/httpclient"
	"github.com/aleister1102/adstrace/internal/models"
	"github.com/rs/zerolog"
)

// Sleeper enforces politeness pacing between consecutive outbound fetches.
// This is distinct from, and in addition to, the retry backoff inside the
// HTTP client.
type Sleeper interface {
	Sleep()
}

// NopSleeper performs no pacing. Used in tests.
type NopSleeper struct{}

func (NopSleeper) Sleep() {}

// Client talks to the archive discovery (CDX) and replay endpoints.
type Client struct {
	httpClient *httpclient.HTTPClient
	cfg        config.ArchiveConfig
	sleeper    Sleeper
	logger     zerolog.Logger
}

// NewClient creates an archive client.
func NewClient(cfg config.ArchiveConfig, httpClient *httpclient.HTTPClient, sleeper Sleeper, logger zerolog.Logger) *Client {
	if sleeper == nil {
		sleeper = NopSleeper{}
	}
	return &Client{
		httpClient: httpClient,
		cfg:        cfg,
		sleeper:    sleeper,
		logger:     logger.With().Str("component", "WaybackClient").Logger(),
	}
}

// queryIndex runs one CDX query and parses the JSON row-array response.
// Degraded outcomes (unreachable service, non-200, malformed payload) yield an
// empty list, not an error: the index is best-effort by design.
func (c *Client) queryIndex(ctx context.Context, urlPattern, fromTS, toTS string) []models.Observation {
	params := url.Values{}
	params.Set("url", urlPattern)
	params.Set("output", "json")
	params.Set("fl", "timestamp,original,statuscode,digest,length")
	params.Set("limit", strconv.Itoa(c.cfg.QueryLimit))
	for _, filter := range c.cfg.StatusFilters {
		params.Add("filter", "statuscode:"+filter)
	}
	if fromTS != "" {
		params.Set("from", fromTS)
	}
	if toTS != "" {
		params.Set("to", toTS)
	}

	c.sleeper.Sleep()
	resp, err := c.httpClient.Fetch(ctx, c.cfg.CDXAPIURL, &httpclient.HTTPRequest{Params: params})
	if err != nil {
		c.logger.Warn().Err(err).Str("pattern", urlPattern).Msg("Index query failed")
		return nil
	}
	if resp.StatusCode != 200 {
		c.logger.Warn().
			Err(common.NewHTTPErrorWithURL(resp.StatusCode, "index query rejected", c.cfg.CDXAPIURL)).
			Str("pattern", urlPattern).
			Msg("Index query returned non-OK status")
		return nil
	}

	var rows [][]string
	if err := json.Unmarshal(resp.Body, &rows); err != nil {
		c.logger.Warn().Err(err).Str("pattern", urlPattern).Msg("Index query returned non-JSON payload")
		return nil
	}
	if len(rows) < 2 {
		return nil
	}

	// First row is the field header.
	observations := make([]models.Observation, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if len(row) < 5 {
			continue
		}
		obs := models.Observation{
			Timestamp:   row[0],
			OriginalURL: row[1],
			StatusCode:  row[2],
			Digest:      row[3],
		}
		if row[4] != "" {
			if length, err := strconv.ParseInt(row[4], 10, 64); err == nil {
				obs.Length = &length
			}
		}
		observations = append(observations, obs)
	}

	return observations
}

// FetchSnapshot retrieves the raw content of one observation from the replay
// endpoint. The returned response is nil when the service could not be
// reached at all.
func (c *Client) FetchSnapshot(ctx context.Context, obs models.Observation) (*httpclient.HTTPResponse, error) {
	replayURL := strings.TrimRight(c.cfg.ReplayURL, "/") + "/" + obs.Timestamp + "/" + obs.OriginalURL

	c.sleeper.Sleep()
	resp, err := c.httpClient.Fetch(ctx, replayURL, nil)
	if err != nil {
		c.logger.Warn().Err(err).Str("timestamp", obs.Timestamp).Str("original_url", obs.OriginalURL).Msg("Snapshot fetch failed")
		return nil, err
	}
	return resp, nil
}
