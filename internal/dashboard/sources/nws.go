package sources

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sony/gobreaker"

	"github.com/crystaldash/crystaldash/internal/common"
	"github.com/crystaldash/crystaldash/internal/dashboard"
)

const maxHourlyPeriods = 48

// NWSSource fetches the National Weather Service point forecast (daily and
// hourly products) for a fixed coordinate. The gridpoint URLs are resolved
// once through the points endpoint and reused for the process lifetime.
type NWSSource struct {
	client  *Client
	baseURL string
	lat     float64
	lon     float64
	circuit *gobreaker.CircuitBreaker

	mu          sync.Mutex
	forecastURL string
	hourlyURL   string
}

func NewNWSSource(client *Client, lat, lon float64) *NWSSource {
	return &NWSSource{
		client:  client,
		baseURL: "https://api.weather.gov",
		lat:     lat,
		lon:     lon,
		circuit: newBreaker("nws"),
	}
}

// nwsPeriod is one period of the NWS forecast products.
type nwsPeriod struct {
	Number                     int     `json:"number"`
	Name                       string  `json:"name"`
	StartTime                  string  `json:"startTime"`
	IsDaytime                  bool    `json:"isDaytime"`
	Temperature                float64 `json:"temperature"`
	WindSpeed                  string  `json:"windSpeed"`
	ShortForecast              string  `json:"shortForecast"`
	DetailedForecast           string  `json:"detailedForecast"`
	ProbabilityOfPrecipitation struct {
		Value *float64 `json:"value"`
	} `json:"probabilityOfPrecipitation"`
}

type nwsForecastPayload struct {
	Properties struct {
		Periods []nwsPeriod `json:"periods"`
	} `json:"properties"`
}

// resolveGrid looks up the gridpoint forecast URLs for the configured point.
func (s *NWSSource) resolveGrid(ctx context.Context) (string, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.forecastURL != "" && s.hourlyURL != "" {
		return s.forecastURL, s.hourlyURL, nil
	}

	var payload struct {
		Properties struct {
			Forecast       string `json:"forecast"`
			ForecastHourly string `json:"forecastHourly"`
		} `json:"properties"`
	}

	u := fmt.Sprintf("%s/points/%.4f,%.4f", s.baseURL, s.lat, s.lon)
	if err := s.client.getJSON(ctx, s.circuit, u, &payload); err != nil {
		return "", "", err
	}
	if payload.Properties.Forecast == "" || payload.Properties.ForecastHourly == "" {
		return "", "", fmt.Errorf("points lookup returned no gridpoint urls")
	}

	s.forecastURL = payload.Properties.Forecast
	s.hourlyURL = payload.Properties.ForecastHourly
	return s.forecastURL, s.hourlyURL, nil
}

// FetchDaily returns the day/night periods paired into daily entries.
func (s *NWSSource) FetchDaily(ctx context.Context) ([]dashboard.DailyForecast, error) {
	forecastURL, _, err := s.resolveGrid(ctx)
	if err != nil {
		return nil, err
	}

	var payload nwsForecastPayload
	if err := s.client.getJSON(ctx, s.circuit, forecastURL, &payload); err != nil {
		return nil, err
	}

	return pairPeriods(payload.Properties.Periods), nil
}

// FetchHourly returns up to maxHourlyPeriods entries of the hourly product.
func (s *NWSSource) FetchHourly(ctx context.Context) ([]dashboard.HourlyForecast, error) {
	_, hourlyURL, err := s.resolveGrid(ctx)
	if err != nil {
		return nil, err
	}

	var payload nwsForecastPayload
	if err := s.client.getJSON(ctx, s.circuit, hourlyURL, &payload); err != nil {
		return nil, err
	}

	periods := payload.Properties.Periods
	if len(periods) > maxHourlyPeriods {
		periods = periods[:maxHourlyPeriods]
	}

	hourly := make([]dashboard.HourlyForecast, 0, len(periods))
	for _, p := range periods {
		entry := dashboard.HourlyForecast{
			ShortForecast: p.ShortForecast,
		}

		if ts, err := time.Parse(time.RFC3339, p.StartTime); err == nil {
			entry.Time = ts.UTC()
		}

		temp := p.Temperature
		entry.TempF = &temp
		if mph, ok := parseWindSpeed(p.WindSpeed); ok {
			entry.WindMph = &mph
		}
		if p.ProbabilityOfPrecipitation.Value != nil {
			pct := *p.ProbabilityOfPrecipitation.Value
			entry.PrecipPct = &pct
		}

		hourly = append(hourly, entry)
	}

	return hourly, nil
}

// pairPeriods groups the alternating day/night periods into daily entries:
// the daytime temperature becomes the high, the following night's the low.
// A leading night period opens its own entry with only a low.
func pairPeriods(periods []nwsPeriod) []dashboard.DailyForecast {
	daily := make([]dashboard.DailyForecast, 0, (len(periods)+1)/2)

	for _, p := range periods {
		temp := p.Temperature

		if p.IsDaytime {
			daily = append(daily, dashboard.DailyForecast{
				Name:             p.Name,
				Date:             periodDate(p.StartTime),
				HighF:            &temp,
				Wind:             p.WindSpeed,
				ShortForecast:    p.ShortForecast,
				DetailedForecast: p.DetailedForecast,
				IsSnow:           looksLikeSnow(p.ShortForecast),
			})
			continue
		}

		// Night period: close out the preceding day entry when it is still
		// missing a low, otherwise open a night-only entry.
		if n := len(daily); n > 0 && daily[n-1].LowF == nil {
			daily[n-1].LowF = &temp
			if !daily[n-1].IsSnow {
				daily[n-1].IsSnow = looksLikeSnow(p.ShortForecast)
			}
			continue
		}

		daily = append(daily, dashboard.DailyForecast{
			Name:             p.Name,
			Date:             periodDate(p.StartTime),
			LowF:             &temp,
			Wind:             p.WindSpeed,
			ShortForecast:    p.ShortForecast,
			DetailedForecast: p.DetailedForecast,
			IsSnow:           looksLikeSnow(p.ShortForecast),
		})
	}

	return daily
}

func periodDate(startTime string) string {
	ts, err := time.Parse(time.RFC3339, startTime)
	if err != nil {
		return ""
	}
	return ts.Format("2006-01-02")
}

func looksLikeSnow(text string) bool {
	return common.HasAny(text, "snow", "flurr", "wintry mix", "blizzard")
}

// parseWindSpeed extracts the upper bound of NWS wind strings such as
// "10 mph" or "5 to 15 mph".
func parseWindSpeed(s string) (float64, bool) {
	var low, high float64
	if n, _ := fmt.Sscanf(s, "%f to %f mph", &low, &high); n == 2 {
		return high, true
	}
	if n, _ := fmt.Sscanf(s, "%f mph", &low); n == 1 {
		return low, true
	}
	return 0, false
}
