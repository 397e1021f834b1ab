package sources

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/sony/gobreaker"

	"github.com/crystaldash/crystaldash/internal/dashboard"
)

const metersToFeet = 3.28084

// OpenMeteoSource fetches the hourly freezing-level height series from the
// keyless Open-Meteo forecast API.
type OpenMeteoSource struct {
	client  *Client
	baseURL string
	lat     float64
	lon     float64
	circuit *gobreaker.CircuitBreaker
}

func NewOpenMeteoSource(client *Client, lat, lon float64) *OpenMeteoSource {
	return &OpenMeteoSource{
		client:  client,
		baseURL: "https://api.open-meteo.com/v1/forecast",
		lat:     lat,
		lon:     lon,
		circuit: newBreaker("openmeteo"),
	}
}

// FetchFreezingLevel returns up to two days of hourly freezing-level samples
// converted to feet.
func (s *OpenMeteoSource) FetchFreezingLevel(ctx context.Context) ([]dashboard.FreezingPoint, error) {
	values := url.Values{}
	values.Set("latitude", fmt.Sprintf("%f", s.lat))
	values.Set("longitude", fmt.Sprintf("%f", s.lon))
	values.Set("hourly", "freezing_level_height")
	values.Set("forecast_days", "2")
	values.Set("timeformat", "iso8601")
	values.Set("timezone", "UTC")

	u := fmt.Sprintf("%s?%s", s.baseURL, values.Encode())

	var payload struct {
		Hourly struct {
			Time                []string  `json:"time"`
			FreezingLevelHeight []float64 `json:"freezing_level_height"`
		} `json:"hourly"`
	}

	if err := s.client.getJSON(ctx, s.circuit, u, &payload); err != nil {
		return nil, err
	}

	n := len(payload.Hourly.Time)
	if len(payload.Hourly.FreezingLevelHeight) < n {
		n = len(payload.Hourly.FreezingLevelHeight)
	}

	series := make([]dashboard.FreezingPoint, 0, n)
	for i := 0; i < n; i++ {
		// Open-Meteo emits minute-resolution ISO stamps without a zone suffix.
		ts, err := time.Parse("2006-01-02T15:04", payload.Hourly.Time[i])
		if err != nil {
			continue
		}
		series = append(series, dashboard.FreezingPoint{
			Time:     ts.UTC(),
			HeightFt: payload.Hourly.FreezingLevelHeight[i] * metersToFeet,
		})
	}

	return series, nil
}
