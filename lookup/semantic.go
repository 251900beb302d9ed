package lookup

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bobinette/paperlog"
	"github.com/bobinette/paperlog/log"
)

// DefaultURL is the base of the Semantic Scholar graph API.
const DefaultURL = "https://api.semanticscholar.org/graph/v1"

const fields = "title,year,authors,citationCount,url"

type Client struct {
	client *http.Client
	url    string
	apiKey string
	logger log.Logger
}

type Option func(*Client)

// WithURL changes the base url of the API.
func WithURL(u string) Option {
	return func(c *Client) { c.url = strings.TrimSuffix(u, "/") }
}

// WithAPIKey sets the key sent in the x-api-key header.
func WithAPIKey(key string) Option {
	return func(c *Client) { c.apiKey = key }
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.client.Timeout = d }
}

func NewClient(logger log.Logger, opts ...Option) *Client {
	c := &Client{
		client: &http.Client{Timeout: 10 * time.Second},
		url:    DefaultURL,
		logger: logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Lookup returns the metadata of the paper designated by q: by arXiv
// identifier when q contains one, first search hit otherwise. Every
// failure, including finding nothing, gives nil. Failures are logged.
func (c *Client) Lookup(ctx context.Context, q string) *Metadata {
	q = strings.TrimSpace(q)
	if q == "" {
		return nil
	}

	var (
		p   *semanticPaper
		err error
	)
	if id, ok := ExtractArxivID(q); ok {
		p, err = c.byArxivID(ctx, id)
	} else {
		p, err = c.search(ctx, q)
	}

	if err != nil {
		c.logger.Errorf("lookup %q: %v", q, err)
		return nil
	}
	if p == nil {
		c.logger.Debugf("lookup %q: nothing found", q)
		return nil
	}
	return p.metadata()
}

func (c *Client) byArxivID(ctx context.Context, id string) (*semanticPaper, error) {
	u := fmt.Sprintf("%s/paper/ARXIV:%s?fields=%s", c.url, id, fields)

	var p semanticPaper
	if err := c.get(ctx, u, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) search(ctx context.Context, q string) (*semanticPaper, error) {
	params := url.Values{
		"query":  {q},
		"limit":  {"1"},
		"fields": {fields},
	}
	u := c.url + "/paper/search?" + params.Encode()

	var sr semanticResponse
	if err := c.get(ctx, u, &sr); err != nil {
		return nil, err
	}

	if sr.Total == 0 || len(sr.Data) == 0 {
		return nil, nil
	}
	return &sr.Data[0], nil
}

func (c *Client) get(ctx context.Context, u string, v interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	if c.apiKey != "" {
		req.Header.Set("x-api-key", c.apiKey)
	}

	resp, err := doWithRetry(ctx, c.client, req)
	if err != nil {
		return fmt.Errorf("Semantic Scholar API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("Semantic Scholar API returned HTTP %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("parsing Semantic Scholar response: %w", err)
	}
	return nil
}

// Semantic Scholar API JSON structures.
type semanticResponse struct {
	Total int             `json:"total"`
	Data  []semanticPaper `json:"data"`
}

type semanticPaper struct {
	Title         string           `json:"title"`
	Year          *int             `json:"year"`
	Authors       []semanticAuthor `json:"authors"`
	CitationCount *int             `json:"citationCount"`
	URL           string           `json:"url"`
}

type semanticAuthor struct {
	Name string `json:"name"`
}

func (p semanticPaper) metadata() *Metadata {
	authors := make([]paperlog.Author, 0, len(p.Authors))
	for _, a := range p.Authors {
		if name := strings.TrimSpace(a.Name); name != "" {
			authors = append(authors, paperlog.Author{Name: name})
		}
	}

	return &Metadata{
		Title:         titlePipe(p.Title),
		Authors:       authors,
		URL:           p.URL,
		Year:          p.Year,
		CitationCount: p.CitationCount,
	}
}
