// Package events wraps the remote events catalog. The adapter translates a
// (category, date spec) pair into a 24-hour catalog query and degrades every
// failure mode into an empty result: callers only ever distinguish "some
// events" from "nothing found", while the underlying fault is logged.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/keepsake-bot/keepsake/pkg/dates"
)

// DateSpec selects the day to browse: DateToday, DateTomorrow, or a literal
// DD.MM.YYYY string.
type DateSpec string

const (
	DateToday    DateSpec = "today"
	DateTomorrow DateSpec = "tomorrow"
)

type ClientConfig struct {
	BaseURL  string `json:"base_url"`
	Location string `json:"location"`
	PageSize int    `json:"page_size"`
	Language string `json:"language"`
	Timeout  int    `json:"timeout"`
}

type Client struct {
	cfg    ClientConfig
	http   *http.Client
	logger *slog.Logger
	now    func() time.Time
}

func NewClient(cfg ClientConfig) *Client {
	if cfg.PageSize <= 0 {
		cfg.PageSize = 20
	}
	timeout := time.Duration(cfg.Timeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		cfg:    cfg,
		http:   &http.Client{Timeout: timeout},
		logger: slog.Default().With("component", "events"),
		now:    time.Now,
	}
}

// Fetch returns the events for a category and day. Provider errors, non-200
// responses, malformed payloads and empty result sets all come back as an
// empty slice; the distinction is kept internally for the log line only.
func (c *Client) Fetch(ctx context.Context, category Category, spec DateSpec) []Event {
	evs, err := c.fetch(ctx, category, spec)
	if err != nil {
		c.logger.Warn("catalog fetch failed",
			"category", string(category), "date", string(spec), "error", err)
		return nil
	}
	return evs
}

func (c *Client) fetch(ctx context.Context, category Category, spec DateSpec) ([]Event, error) {
	since, until, err := c.window(spec)
	if err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("location", c.cfg.Location)
	params.Set("page_size", strconv.Itoa(c.cfg.PageSize))
	params.Set("lang", c.cfg.Language)
	params.Set("fields", "id,title,place,price,images,site_url,description")
	params.Set("expand", "place")
	params.Set("text_format", "plain")
	params.Set("categories", catalogCategory(category))
	params.Set("actual_since", strconv.FormatInt(since.Unix(), 10))
	params.Set("actual_until", strconv.FormatInt(until.Unix(), 10))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build catalog request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("catalog request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("catalog returned status %d", resp.StatusCode)
	}

	var payload catalogResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode catalog response: %w", err)
	}

	evs := make([]Event, 0, len(payload.Results))
	for _, r := range payload.Results {
		evs = append(evs, r.toEvent())
	}
	return evs, nil
}

// window resolves a date spec to the [midnight, midnight+24h) range.
func (c *Client) window(spec DateSpec) (time.Time, time.Time, error) {
	var day time.Time
	switch spec {
	case DateToday:
		day = dates.Day(c.now())
	case DateTomorrow:
		day = dates.Day(c.now()).AddDate(0, 0, 1)
	default:
		parsed, err := dates.Parse(string(spec))
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("parse date spec %q: %w", spec, err)
		}
		day = parsed
	}
	return day, day.AddDate(0, 0, 1), nil
}
