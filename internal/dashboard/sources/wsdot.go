package sources

import (
	"context"
	"fmt"
	"math"
	"net/url"
	"regexp"
	"strconv"
	"time"

	"github.com/sony/gobreaker"

	"github.com/crystaldash/crystaldash/internal/dashboard"
	"github.com/crystaldash/crystaldash/internal/geo"
)

// WSDOTSource fetches highway cameras, roadside weather stations, and
// mountain pass conditions from the WSDOT traveler information API. All
// three endpoints share one access code; when no code is configured every
// fetch returns empty without a network call.
type WSDOTSource struct {
	client      *Client
	baseURL     string
	accessCode  string
	refLat      float64
	refLon      float64
	radiusMiles float64
	circuit     *gobreaker.CircuitBreaker
}

func NewWSDOTSource(client *Client, accessCode string, refLat, refLon, radiusMiles float64) *WSDOTSource {
	return &WSDOTSource{
		client:      client,
		baseURL:     "https://wsdot.wa.gov",
		accessCode:  accessCode,
		refLat:      refLat,
		refLon:      refLon,
		radiusMiles: radiusMiles,
		circuit:     newBreaker("wsdot"),
	}
}

func (s *WSDOTSource) endpoint(path string) string {
	return fmt.Sprintf("%s%s?AccessCode=%s", s.baseURL, path, url.QueryEscape(s.accessCode))
}

// FetchCameras returns highway cameras within the configured radius.
func (s *WSDOTSource) FetchCameras(ctx context.Context) ([]dashboard.Camera, error) {
	if s.accessCode == "" {
		return nil, nil
	}

	var payload []struct {
		CameraID       int    `json:"CameraID"`
		Title          string `json:"Title"`
		ImageURL       string `json:"ImageURL"`
		CameraOwner    string `json:"CameraOwner"`
		CameraLocation struct {
			Latitude  float64 `json:"Latitude"`
			Longitude float64 `json:"Longitude"`
		} `json:"CameraLocation"`
	}

	u := s.endpoint("/Traffic/api/HighwayCameras/HighwayCamerasREST.svc/GetCamerasAsJson")
	if err := s.client.getJSON(ctx, s.circuit, u, &payload); err != nil {
		return nil, err
	}

	var cams []dashboard.Camera
	for _, c := range payload {
		miles := geo.Miles(s.refLat, s.refLon, c.CameraLocation.Latitude, c.CameraLocation.Longitude)
		if miles > s.radiusMiles {
			continue
		}
		cams = append(cams, dashboard.Camera{
			ID:        c.CameraID,
			Title:     c.Title,
			Latitude:  c.CameraLocation.Latitude,
			Longitude: c.CameraLocation.Longitude,
			ImageURL:  c.ImageURL,
			Owner:     c.CameraOwner,
			MilesAway: roundTenth(miles),
		})
	}
	return cams, nil
}

// FetchStations returns current readings from roadside weather stations
// within the configured radius.
func (s *WSDOTSource) FetchStations(ctx context.Context) ([]dashboard.StationReading, error) {
	if s.accessCode == "" {
		return nil, nil
	}

	var payload []struct {
		StationID               int      `json:"StationID"`
		StationName             string   `json:"StationName"`
		Latitude                float64  `json:"Latitude"`
		Longitude               float64  `json:"Longitude"`
		TemperatureInFahrenheit *float64 `json:"TemperatureInFahrenheit"`
		WindSpeedInMPH          *float64 `json:"WindSpeedInMPH"`
		WindGustSpeedInMPH      *float64 `json:"WindGustSpeedInMPH"`
		ReadingTime             string   `json:"ReadingTime"`
	}

	u := s.endpoint("/Traffic/api/WeatherInformation/WeatherInformationREST.svc/GetCurrentWeatherInformationAsJson")
	if err := s.client.getJSON(ctx, s.circuit, u, &payload); err != nil {
		return nil, err
	}

	var stations []dashboard.StationReading
	for _, st := range payload {
		miles := geo.Miles(s.refLat, s.refLon, st.Latitude, st.Longitude)
		if miles > s.radiusMiles {
			continue
		}

		reading := dashboard.StationReading{
			ID:        st.StationID,
			Name:      st.StationName,
			Latitude:  st.Latitude,
			Longitude: st.Longitude,
			TempF:     st.TemperatureInFahrenheit,
			WindMph:   st.WindSpeedInMPH,
			GustMph:   st.WindGustSpeedInMPH,
			MilesAway: roundTenth(miles),
		}
		if ts, err := parseDotNetDate(st.ReadingTime); err == nil {
			reading.ReadingTime = &ts
		}

		stations = append(stations, reading)
	}
	return stations, nil
}

// FetchPasses returns mountain pass conditions within the configured radius.
func (s *WSDOTSource) FetchPasses(ctx context.Context) ([]dashboard.PassCondition, error) {
	if s.accessCode == "" {
		return nil, nil
	}

	var payload []struct {
		MountainPassId          int      `json:"MountainPassId"`
		MountainPassName        string   `json:"MountainPassName"`
		Latitude                float64  `json:"Latitude"`
		Longitude               float64  `json:"Longitude"`
		ElevationInFeet         int      `json:"ElevationInFeet"`
		RoadCondition           string   `json:"RoadCondition"`
		WeatherCondition        string   `json:"WeatherCondition"`
		TemperatureInFahrenheit *float64 `json:"TemperatureInFahrenheit"`
		DateUpdated             string   `json:"DateUpdated"`
		RestrictionOne          struct {
			RestrictionText string `json:"RestrictionText"`
			TravelDirection string `json:"TravelDirection"`
		} `json:"RestrictionOne"`
		RestrictionTwo struct {
			RestrictionText string `json:"RestrictionText"`
			TravelDirection string `json:"TravelDirection"`
		} `json:"RestrictionTwo"`
	}

	u := s.endpoint("/Traffic/api/MountainPassConditions/MountainPassConditionsREST.svc/GetMountainPassConditionsAsJson")
	if err := s.client.getJSON(ctx, s.circuit, u, &payload); err != nil {
		return nil, err
	}

	var passes []dashboard.PassCondition
	for _, p := range payload {
		miles := geo.Miles(s.refLat, s.refLon, p.Latitude, p.Longitude)
		if miles > s.radiusMiles {
			continue
		}

		cond := dashboard.PassCondition{
			ID:            p.MountainPassId,
			Name:          p.MountainPassName,
			ElevationFt:   p.ElevationInFeet,
			RoadCondition: p.RoadCondition,
			Weather:       p.WeatherCondition,
			Restrictions:  []string{},
			TempF:         p.TemperatureInFahrenheit,
			MilesAway:     roundTenth(miles),
		}
		if ts, err := parseDotNetDate(p.DateUpdated); err == nil {
			cond.DateUpdated = &ts
		}
		for _, r := range []struct{ text, dir string }{
			{p.RestrictionOne.RestrictionText, p.RestrictionOne.TravelDirection},
			{p.RestrictionTwo.RestrictionText, p.RestrictionTwo.TravelDirection},
		} {
			if r.text == "" {
				continue
			}
			if r.dir != "" {
				cond.Restrictions = append(cond.Restrictions, fmt.Sprintf("%s: %s", r.dir, r.text))
			} else {
				cond.Restrictions = append(cond.Restrictions, r.text)
			}
		}

		passes = append(passes, cond)
	}
	return passes, nil
}

var dotNetDateRe = regexp.MustCompile(`^/Date\((-?\d+)(?:[+-]\d{4})?\)/$`)

// parseDotNetDate parses the legacy WCF date format WSDOT uses, e.g.
// "/Date(1368738000000-0700)/" (milliseconds since the Unix epoch).
func parseDotNetDate(s string) (time.Time, error) {
	m := dotNetDateRe.FindStringSubmatch(s)
	if m == nil {
		return time.Time{}, fmt.Errorf("not a .NET date: %q", s)
	}
	ms, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return time.Time{}, err
	}
	return time.UnixMilli(ms).UTC(), nil
}

func roundTenth(v float64) float64 {
	return math.Round(v*10) / 10
}
