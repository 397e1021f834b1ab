package sources

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/net/html"

	"github.com/crystaldash/crystaldash/internal/dashboard"
)

// ReportSource scrapes the human-readable mountain pass report page. The
// page is not an API, so callers are expected to cache results aggressively.
type ReportSource struct {
	client  *Client
	baseURL string
	circuit *gobreaker.CircuitBreaker
}

func NewReportSource(client *Client, baseURL string) *ReportSource {
	return &ReportSource{
		client:  client,
		baseURL: strings.TrimRight(baseURL, "/"),
		circuit: newBreaker("passreport"),
	}
}

// FetchPassReport fetches and parses the report page for one pass slug.
func (s *ReportSource) FetchPassReport(ctx context.Context, id string) (*dashboard.PassReport, error) {
	if s.baseURL == "" {
		return nil, fmt.Errorf("pass report url not configured")
	}

	body, err := s.client.getBody(ctx, s.circuit, s.baseURL+"/"+id)
	if err != nil {
		return nil, err
	}

	report, err := parsePassReport(id, body)
	if err != nil {
		return nil, err
	}
	return report, nil
}

// parsePassReport pulls the page title and every label/value pair found in
// definition lists and two-cell table rows. The page layout shifts between
// seasons, so the parse is deliberately loose.
func parsePassReport(id string, body []byte) (*dashboard.PassReport, error) {
	doc, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse report page: %w", err)
	}

	report := &dashboard.PassReport{
		ID:         id,
		Conditions: []dashboard.ReportRow{},
		FetchedAt:  time.Now().UTC(),
	}

	var pendingLabel string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "h1":
				if report.Name == "" {
					report.Name = nodeText(n)
				}
			case "dt", "th":
				pendingLabel = nodeText(n)
			case "dd", "td":
				if pendingLabel != "" {
					value := nodeText(n)
					if value != "" {
						report.Conditions = append(report.Conditions, dashboard.ReportRow{
							Label: pendingLabel,
							Value: value,
						})
					}
					pendingLabel = ""
				}
			case "tr", "dl":
				pendingLabel = ""
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	if report.Name == "" && len(report.Conditions) == 0 {
		return nil, fmt.Errorf("report page for %q had no recognizable content", id)
	}
	return report, nil
}

func nodeText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.TrimSpace(strings.Join(strings.Fields(b.String()), " "))
}
