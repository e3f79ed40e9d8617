package hiscores

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/weirdgloop/hiscorebot/internal/proxy"
)

const (
	mainURL    = "https://services.runescape.com/m=hiscore/ranking"
	ironmanURL = "https://services.runescape.com/m=hiscore_ironman/ranking"

	userAgent = "RuneScape Wiki Hiscores Counts Updater (+https://github.com/weirdgloop/hiscorebot)"

	// PageSize is the number of ranked rows per ladder page.
	PageSize = 25

	maxAttempts    = 10
	requestTimeout = 30 * time.Second
)

var (
	// ErrExhausted means a page could not be fetched within the retry budget.
	ErrExhausted = errors.New("retry budget exhausted")
	// ErrMalformed means a ranking row did not have the expected cell layout.
	ErrMalformed = errors.New("malformed ranking page")

	errRateLimited = errors.New("rate limit detected")
	errNoTable     = errors.New("ranking table missing from response")
)

// Direction selects one of the two ranked ladders.
type Direction int

const (
	Main Direction = iota
	Ironman
)

// BaseURL returns the ranking endpoint for the ladder.
func (d Direction) BaseURL() string {
	if d == Ironman {
		return ironmanURL
	}
	return mainURL
}

func (d Direction) String() string {
	if d == Ironman {
		return "ironman"
	}
	return "main"
}

// Column identifies a value column of a ranking row by its cell index.
type Column int

const (
	ColumnLevel Column = 2
	ColumnXP    Column = 3
)

func (c Column) String() string {
	if c == ColumnLevel {
		return "level"
	}
	return "xp"
}

// Row is one ranked entry of a ladder page.
type Row struct {
	Rank   int
	Player string
	Level  int
	XP     int
}

// Value returns the row's entry in the given column.
func (r Row) Value(col Column) int {
	if col == ColumnLevel {
		return r.Level
	}
	return r.XP
}

// LowestRank is the tail of a ladder: the last ranked player's rank and level.
type LowestRank struct {
	Rank  int `json:"rank"`
	Level int `json:"level"`
}

// Page is one parsed ladder page. LastPage is the highest page number shown
// in the pagination strip, or 0 when the strip is absent.
type Page struct {
	Rows     []Row
	LastPage int
}

// Client fetches ladder pages through the proxy rotator. It retries
// transient failures, rotates away from rate-limited proxies, and validates
// the structure of every response.
type Client struct {
	rotator    *proxy.Rotator
	httpClient *http.Client
	logger     *slog.Logger
	baseURL    string

	totalRequests atomic.Int64
	errorRequests atomic.Int64
}

// NewClient creates a Client that issues every request through rot.
func NewClient(rot *proxy.Rotator) *Client {
	return &Client{
		rotator: rot,
		httpClient: &http.Client{
			Timeout: requestTimeout,
		},
		logger: slog.Default(),
	}
}

// NewClientWithBaseURL creates a client whose ladder URLs are rooted at
// baseURL/<direction> instead of the live site (for testing).
func NewClientWithBaseURL(rot *proxy.Rotator, baseURL string) *Client {
	c := NewClient(rot)
	c.baseURL = strings.TrimRight(baseURL, "/")
	return c
}

// TotalRequests returns the number of HTTP responses received so far.
func (c *Client) TotalRequests() int64 { return c.totalRequests.Load() }

// ErrorRequests returns the number of rate-limit or structural failures seen.
func (c *Client) ErrorRequests() int64 { return c.errorRequests.Load() }

// Cooldown returns the rotator's current per-proxy cool-down.
func (c *Client) Cooldown() time.Duration { return c.rotator.Cooldown() }

// Fetch retrieves one ladder page for (dir, skill). Pages are numbered from
// 1. Transient failures and rate limits are retried with a fresh proxy up to
// the retry budget; a malformed row fails immediately.
func (c *Client) Fetch(ctx context.Context, dir Direction, skill Skill, page int) (*Page, error) {
	target := c.pageURL(dir, skill, page)

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		endpoint, err := c.rotator.Next(ctx)
		if err != nil {
			return nil, err
		}

		doc, err := c.get(ctx, endpoint, target)
		if err != nil {
			lastErr = err
			c.logger.Warn("hiscores request failed",
				"url", target, "attempt", attempt, "error", err)
			continue
		}

		if doc.Find("#errorContent").Length() > 0 {
			lastErr = errRateLimited
			c.rateLimited(target, lastErr)
			continue
		}

		rows := doc.Find("div.tableWrap tbody tr")
		if rows.Length() == 0 {
			// Treated like a rate limit: the page exists but the site
			// served it without the ranking table.
			lastErr = errNoTable
			c.rateLimited(target, lastErr)
			continue
		}

		parsed, err := parsePage(doc, rows)
		if err != nil {
			return nil, fmt.Errorf("parsing %s: %w", target, err)
		}
		c.logger.Debug("fetched ladder page",
			"direction", dir.String(), "skill", skill.String(), "page", page)
		return parsed, nil
	}

	return nil, fmt.Errorf("fetching %s: %w after %d attempts: %v",
		target, ErrExhausted, maxAttempts, lastErr)
}

// rateLimited records a rate-limit event and lengthens the per-proxy
// cool-down by one second before the next attempt rotates to a new proxy.
func (c *Client) rateLimited(target string, cause error) {
	c.errorRequests.Add(1)
	c.rotator.ExtendCooldown(c.rotator.Cooldown() + time.Second)
	c.logger.Warn("assuming rate limit, rotating proxy",
		"url", target, "cause", cause, "cooldown", c.rotator.Cooldown().Seconds())
}

func (c *Client) get(ctx context.Context, endpoint, target string) (*goquery.Document, error) {
	reqURL, err := requestURL(endpoint, target)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	c.totalRequests.Add(1)

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parsing response body: %w", err)
	}
	return doc, nil
}

func (c *Client) pageURL(dir Direction, skill Skill, page int) string {
	base := dir.BaseURL()
	if c.baseURL != "" {
		base = c.baseURL + "/" + dir.String()
	}
	v := url.Values{}
	v.Set("category_type", "0")
	v.Set("table", strconv.Itoa(skill.TableID()))
	v.Set("page", strconv.Itoa(page))
	return base + "?" + v.Encode()
}

// requestURL routes target through the proxy's query-forwarding convention:
// the proxy receives the full upstream URL as its `url` parameter and
// returns the upstream body verbatim.
func requestURL(endpoint, target string) (string, error) {
	if endpoint == proxy.Direct {
		return target, nil
	}
	u, err := url.Parse(endpoint)
	if err != nil {
		return "", fmt.Errorf("parsing proxy endpoint %q: %w", endpoint, err)
	}
	q := u.Query()
	q.Set("url", target)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func parsePage(doc *goquery.Document, rows *goquery.Selection) (*Page, error) {
	page := &Page{Rows: make([]Row, 0, rows.Length())}

	var rowErr error
	rows.EachWithBreak(func(i int, tr *goquery.Selection) bool {
		// Children() walks element nodes only, so whitespace text nodes
		// between cells are skipped.
		cells := tr.Children()
		if cells.Length() < 4 {
			rowErr = fmt.Errorf("%w: row %d has %d cells", ErrMalformed, i, cells.Length())
			return false
		}

		row := Row{}
		var err error
		if row.Rank, err = cellInt(cells.Eq(0)); err != nil {
			rowErr = fmt.Errorf("row %d rank: %w", i, err)
			return false
		}
		if row.Player, err = cellText(cells.Eq(1)); err != nil {
			rowErr = fmt.Errorf("row %d player: %w", i, err)
			return false
		}
		if row.Level, err = cellInt(cells.Eq(2)); err != nil {
			rowErr = fmt.Errorf("row %d level: %w", i, err)
			return false
		}
		if row.XP, err = cellInt(cells.Eq(3)); err != nil {
			rowErr = fmt.Errorf("row %d xp: %w", i, err)
			return false
		}
		page.Rows = append(page.Rows, row)
		return true
	})
	if rowErr != nil {
		return nil, rowErr
	}

	if nav := doc.Find(".pageNumbers li a"); nav.Length() > 0 {
		if n, err := parseNumber(nav.Last().Text()); err == nil {
			page.LastPage = n
		}
	}

	return page, nil
}

func cellText(cell *goquery.Selection) (string, error) {
	a := cell.Find("a").First()
	if a.Length() == 0 {
		return "", fmt.Errorf("%w: cell missing anchor", ErrMalformed)
	}
	return strings.TrimSpace(a.Text()), nil
}

func cellInt(cell *goquery.Selection) (int, error) {
	text, err := cellText(cell)
	if err != nil {
		return 0, err
	}
	return parseNumber(text)
}

// parseNumber parses a comma-grouped non-negative integer, the only numeric
// shape the ranking site emits.
func parseNumber(s string) (int, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a number", ErrMalformed, s)
	}
	if n < 0 {
		return 0, fmt.Errorf("%w: negative value %d", ErrMalformed, n)
	}
	return n, nil
}
