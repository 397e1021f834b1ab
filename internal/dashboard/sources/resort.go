package sources

import (
	"context"

	"github.com/sony/gobreaker"

	"github.com/crystaldash/crystaldash/internal/dashboard"
)

// ResortSource fetches lift and run status from the resort's public status
// feed. The feed URL is optional; without one the fetch yields empty lists.
type ResortSource struct {
	client  *Client
	feedURL string
	circuit *gobreaker.CircuitBreaker
}

func NewResortSource(client *Client, feedURL string) *ResortSource {
	return &ResortSource{
		client:  client,
		feedURL: feedURL,
		circuit: newBreaker("resort"),
	}
}

// FetchStatus returns lift and run status in feed order.
func (s *ResortSource) FetchStatus(ctx context.Context) ([]dashboard.LiftStatus, []dashboard.RunStatus, error) {
	if s.feedURL == "" {
		return nil, nil, nil
	}

	var payload struct {
		Lifts []struct {
			Name   string `json:"Name"`
			Status string `json:"Status"`
		} `json:"Lifts"`
		Trails []struct {
			Name       string `json:"Name"`
			Status     string `json:"Status"`
			Difficulty string `json:"Difficulty"`
			Groomed    bool   `json:"Groomed"`
		} `json:"Trails"`
	}

	if err := s.client.getJSON(ctx, s.circuit, s.feedURL, &payload); err != nil {
		return nil, nil, err
	}

	lifts := make([]dashboard.LiftStatus, 0, len(payload.Lifts))
	for _, l := range payload.Lifts {
		lifts = append(lifts, dashboard.LiftStatus{Name: l.Name, Status: l.Status})
	}

	runs := make([]dashboard.RunStatus, 0, len(payload.Trails))
	for _, t := range payload.Trails {
		runs = append(runs, dashboard.RunStatus{
			Name:       t.Name,
			Status:     t.Status,
			Difficulty: t.Difficulty,
			Groomed:    t.Groomed,
		})
	}

	return lifts, runs, nil
}
