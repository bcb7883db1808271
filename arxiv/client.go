// Package arxiv is a minimal client for the arXiv Atom API.
package arxiv

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const (
	defaultBaseURL = "https://export.arxiv.org/api/query"
	defaultTimeout = 30 * time.Second
	userAgent      = "paperpilot/1.0"

	// arXiv asks clients for no more than one request every three
	// seconds on the query endpoint.
	requestsPerSecond = 1.0 / 3.0

	maxBodyBytes = 10 << 20
)

// ErrNoResults means the query executed but matched nothing.
var ErrNoResults = errors.New("arxiv: no results")

var idPattern = regexp.MustCompile(`arxiv\.org/abs/(.+?)(?:v\d+)?$`)

// Client talks to the arXiv export API. The zero value is not usable;
// construct with NewClient.
type Client struct {
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
	now     func() time.Time
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API endpoint, mainly for tests.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// NewClient builds a rate-limited arXiv client.
func NewClient(opts ...Option) *Client {
	c := &Client{
		baseURL: defaultBaseURL,
		http:    &http.Client{Timeout: defaultTimeout},
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), 1),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Search runs a compiled query and returns up to maxResults papers in
// the order chosen by sort. Returns ErrNoResults when the feed is
// empty.
func (c *Client) Search(ctx context.Context, query string, maxResults int, sort SortCriterion) ([]Paper, error) {
	if maxResults <= 0 {
		maxResults = 10
	}
	by, order := sort.params()
	vals := url.Values{}
	vals.Set("search_query", query)
	vals.Set("start", "0")
	vals.Set("max_results", strconv.Itoa(maxResults))
	vals.Set("sortBy", by)
	vals.Set("sortOrder", order)

	f, err := c.fetch(ctx, vals)
	if err != nil {
		return nil, err
	}
	papers := entriesToPapers(f.Entries)
	if len(papers) == 0 {
		return nil, ErrNoResults
	}
	return papers, nil
}

// latestWindow is how far back Latest looks.
const latestWindow = 7 * 24 * time.Hour

// Latest returns papers submitted in the past week, newest first. An
// empty categoryID searches all of arXiv.
func (c *Client) Latest(ctx context.Context, categoryID string, maxResults int) ([]Paper, error) {
	to := c.now().UTC()
	from := to.Add(-latestWindow)
	query := fmt.Sprintf("submittedDate:[%s TO %s]",
		from.Format("200601021504"), to.Format("200601021504"))
	if categoryID != "" {
		query += " AND cat:" + categoryID
	}
	return c.Search(ctx, query, maxResults, SortSubmittedDesc)
}

// FetchByID retrieves one paper by its arXiv identifier, with or
// without a version suffix.
func (c *Client) FetchByID(ctx context.Context, id string) (*Paper, error) {
	vals := url.Values{}
	vals.Set("id_list", id)
	vals.Set("max_results", "1")

	f, err := c.fetch(ctx, vals)
	if err != nil {
		return nil, err
	}
	papers := entriesToPapers(f.Entries)
	if len(papers) == 0 {
		return nil, fmt.Errorf("%w: id %s", ErrNoResults, id)
	}
	return &papers[0], nil
}

// DownloadPDF streams the paper's PDF into w. The caller bounds the
// wait through ctx.
func (c *Client) DownloadPDF(ctx context.Context, p *Paper, w io.Writer) (int64, error) {
	pdfURL := p.PDFURL
	if pdfURL == "" {
		pdfURL = "https://export.arxiv.org/pdf/" + p.ID
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pdfURL, nil)
	if err != nil {
		return 0, fmt.Errorf("build pdf request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("fetch pdf: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("fetch pdf: unexpected status %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.Contains(ct, "pdf") {
		return 0, fmt.Errorf("fetch pdf: unexpected content type %q", ct)
	}
	return io.Copy(w, resp.Body)
}

func (c *Client) fetch(ctx context.Context, vals url.Values) (*feed, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+vals.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("query arxiv: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("query arxiv: unexpected status %d", resp.StatusCode)
	}

	var f feed
	if err := xml.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(&f); err != nil {
		return nil, fmt.Errorf("decode feed: %w", err)
	}
	return &f, nil
}

func entriesToPapers(entries []entry) []Paper {
	papers := make([]Paper, 0, len(entries))
	for i := range entries {
		if p, ok := entryToPaper(&entries[i]); ok {
			papers = append(papers, p)
		}
	}
	return papers
}

func entryToPaper(e *entry) (Paper, bool) {
	id := extractID(e.ID)
	if id == "" {
		return Paper{}, false
	}

	p := Paper{
		ID:              id,
		Title:           collapseWhitespace(e.Title),
		Abstract:        collapseWhitespace(e.Summary),
		PrimaryCategory: e.PrimaryCategory.Term,
		JournalRef:      strings.TrimSpace(e.JournalRef),
		DOI:             strings.TrimSpace(e.DOI),
		AbsURL:          e.ID,
	}
	if t, err := time.Parse(time.RFC3339, e.Published); err == nil {
		p.Published = t
	}
	for _, a := range e.Authors {
		if name := strings.TrimSpace(a.Name); name != "" {
			p.Authors = append(p.Authors, name)
		}
	}
	for _, cat := range e.Categories {
		if cat.Term != "" {
			p.Categories = append(p.Categories, cat.Term)
		}
	}
	if p.PrimaryCategory == "" && len(p.Categories) > 0 {
		p.PrimaryCategory = p.Categories[0]
	}
	for _, l := range e.Links {
		if l.Title == "pdf" || l.Type == "application/pdf" {
			p.PDFURL = l.Href
			break
		}
	}
	if p.PDFURL == "" {
		p.PDFURL = "https://export.arxiv.org/pdf/" + id
	}
	return p, true
}

func extractID(entryURL string) string {
	m := idPattern.FindStringSubmatch(entryURL)
	if len(m) < 2 {
		return ""
	}
	return m[1]
}

// collapseWhitespace trims and folds the newline-wrapped text arXiv
// returns for titles and abstracts.
func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
