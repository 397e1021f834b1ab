package sources

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/net/html"

	"github.com/crystaldash/crystaldash/internal/dashboard"
)

// AvalancheSource fetches the current avalanche forecast product for one
// zone from the avalanche.org public API. Without a configured zone the
// fetch yields nothing.
type AvalancheSource struct {
	client  *Client
	baseURL string
	center  string
	zone    string
	circuit *gobreaker.CircuitBreaker
}

func NewAvalancheSource(client *Client, center, zone string) *AvalancheSource {
	return &AvalancheSource{
		client:  client,
		baseURL: "https://api.avalanche.org/v2/public/product",
		center:  center,
		zone:    zone,
		circuit: newBreaker("avalanche"),
	}
}

// FetchForecast returns the current danger ratings, or nil when no zone is
// configured or the product has no danger block.
func (s *AvalancheSource) FetchForecast(ctx context.Context) (*dashboard.AvalancheDanger, error) {
	if s.center == "" || s.zone == "" {
		return nil, nil
	}

	var payload struct {
		PublishedTime string `json:"published_time"`
		ExpiresTime   string `json:"expires_time"`
		BottomLine    string `json:"bottom_line"`
		Danger        []struct {
			ValidDay string `json:"valid_day"`
			Lower    int    `json:"lower"`
			Middle   int    `json:"middle"`
			Upper    int    `json:"upper"`
		} `json:"danger"`
	}

	q := url.Values{}
	q.Set("type", "forecast")
	q.Set("center_id", s.center)
	q.Set("zone_id", s.zone)
	u := fmt.Sprintf("%s?%s", s.baseURL, q.Encode())

	if err := s.client.getJSON(ctx, s.circuit, u, &payload); err != nil {
		return nil, err
	}

	danger := dashboard.AvalancheDanger{
		Center:     s.center,
		Zone:       s.zone,
		BottomLine: stripHTML(payload.BottomLine),
	}

	if ts, err := time.Parse(time.RFC3339, payload.PublishedTime); err == nil {
		ts = ts.UTC()
		danger.PublishedAt = &ts
	}
	if ts, err := time.Parse(time.RFC3339, payload.ExpiresTime); err == nil {
		ts = ts.UTC()
		danger.ExpiresAt = &ts
	}

	// The product carries one danger row per valid day; "current" is the one
	// the dashboard shows.
	found := false
	for _, d := range payload.Danger {
		if d.ValidDay != "current" && found {
			continue
		}
		danger.Danger = dashboard.DangerScale{Lower: d.Lower, Middle: d.Middle, Upper: d.Upper}
		found = true
		if d.ValidDay == "current" {
			break
		}
	}
	if !found {
		return nil, nil
	}

	danger.DangerLabel = dangerLabel(max(danger.Danger.Lower, danger.Danger.Middle, danger.Danger.Upper))
	return &danger, nil
}

// dangerLabel maps the 1-5 North American danger scale to its label.
func dangerLabel(level int) string {
	switch level {
	case 1:
		return "Low"
	case 2:
		return "Moderate"
	case 3:
		return "Considerable"
	case 4:
		return "High"
	case 5:
		return "Extreme"
	default:
		return ""
	}
}

// stripHTML flattens the markup avalanche.org embeds in its text fields
// into plain text.
func stripHTML(s string) string {
	if !strings.Contains(s, "<") {
		return strings.TrimSpace(s)
	}

	node, err := html.Parse(strings.NewReader(s))
	if err != nil {
		return strings.TrimSpace(s)
	}

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
	walk(node)

	return strings.TrimSpace(strings.Join(strings.Fields(b.String()), " "))
}
