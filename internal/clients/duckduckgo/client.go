// Package duckduckgo provides web search against the DuckDuckGo HTML
// endpoint. No API key is required.
package duckduckgo

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/net/html"

	"github.com/smail-Lamrani/finassist/internal/domain"
)

const defaultBaseURL = "https://html.duckduckgo.com/html/"

// Client for DuckDuckGo HTML search.
type Client struct {
	baseURL    string
	client     *http.Client
	maxResults int
	log        zerolog.Logger
}

// NewClient creates a new search client returning up to maxResults hits.
func NewClient(maxResults int, timeout time.Duration, log zerolog.Logger) *Client {
	return &Client{
		baseURL:    defaultBaseURL,
		client:     &http.Client{Timeout: timeout},
		maxResults: maxResults,
		log:        log.With().Str("client", "duckduckgo").Logger(),
	}
}

// NewClientWithBaseURL creates a client against a custom endpoint. Used by
// tests with httptest servers.
func NewClientWithBaseURL(baseURL string, maxResults int, timeout time.Duration, log zerolog.Logger) *Client {
	c := NewClient(maxResults, timeout, log)
	c.baseURL = baseURL
	return c
}

// Search runs a free-text search. An empty slice means no usable results.
func (c *Client) Search(ctx context.Context, query string) ([]domain.SearchResult, error) {
	endpoint := c.baseURL + "?q=" + url.QueryEscape(query)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	c.log.Debug().Str("query", query).Msg("Searching")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search returned status %d", resp.StatusCode)
	}

	doc, err := html.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse search response: %w", err)
	}

	results := c.extractResults(doc)
	c.log.Debug().Int("results", len(results)).Msg("Search complete")
	return results, nil
}

// extractResults walks the parsed document collecting result anchors
// (class "result__a") and their sibling snippets (class "result__snippet").
func (c *Client) extractResults(doc *html.Node) []domain.SearchResult {
	var results []domain.SearchResult

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if len(results) >= c.maxResults {
			return
		}

		if n.Type == html.ElementNode && n.Data == "a" && hasClass(n, "result__a") {
			link := resolveRedirect(attr(n, "href"))
			result := domain.SearchResult{
				Title:  strings.TrimSpace(textContent(n)),
				Link:   link,
				Source: sourceDomain(link),
			}
			if snippet := findSnippet(n); snippet != nil {
				result.Snippet = strings.TrimSpace(textContent(snippet))
			}
			if result.Title != "" {
				results = append(results, result)
			}
			return
		}

		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(doc)

	return results
}

// findSnippet looks for the snippet element near a result anchor: it scans
// the anchor's ancestors' subtrees for the first "result__snippet" node.
func findSnippet(anchor *html.Node) *html.Node {
	for parent := anchor.Parent; parent != nil; parent = parent.Parent {
		if found := findByClass(parent, "result__snippet"); found != nil {
			return found
		}
	}
	return nil
}

func findByClass(n *html.Node, class string) *html.Node {
	if n.Type == html.ElementNode && hasClass(n, class) {
		return n
	}
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		if found := findByClass(child, class); found != nil {
			return found
		}
	}
	return nil
}

func hasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(attr(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}

func attr(n *html.Node, name string) string {
	for _, a := range n.Attr {
		if a.Key == name {
			return a.Val
		}
	}
	return ""
}

func textContent(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var b strings.Builder
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		b.WriteString(textContent(child))
	}
	return b.String()
}

// resolveRedirect unwraps DuckDuckGo's redirect links (//duckduckgo.com/l/
// ?uddg=<encoded target>) to the target URL. Direct links pass through.
func resolveRedirect(link string) string {
	parsed, err := url.Parse(link)
	if err != nil {
		return link
	}
	if target := parsed.Query().Get("uddg"); target != "" {
		if decoded, err := url.QueryUnescape(target); err == nil {
			return decoded
		}
	}
	return link
}

// sourceDomain extracts the publishing domain from a URL, stripping "www.".
func sourceDomain(link string) string {
	parsed, err := url.Parse(link)
	if err != nil {
		return "Unknown"
	}
	host := parsed.Host
	host = strings.TrimPrefix(host, "www.")
	if host == "" {
		return "Unknown"
	}
	return host
}
