package dashboard

import (
	"time"
)

// Snapshot is the aggregated view of all upstream sources at a point in time.
// Every list field is always non-nil so the JSON shape stays well-formed no
// matter which upstreams were unavailable; object fields are null when their
// source yielded nothing.
type Snapshot struct {
	GeneratedAt time.Time        `json:"generatedAt"` // always UTC
	BuildID     string           `json:"buildId"`
	Forecast    ForecastSection  `json:"forecast"`
	Cams        []Camera         `json:"cams"`
	Weather     []StationReading `json:"weather"`
	Roads       RoadsSection     `json:"roads"`
	Aval        *AvalancheDanger `json:"aval"`
	Snow        *SnowEstimate    `json:"snow"`
	Lifts       []LiftStatus     `json:"lifts"`
	Runs        []RunStatus      `json:"runs"`
}

// ForecastSection groups the point-forecast products.
type ForecastSection struct {
	Daily         []DailyForecast  `json:"daily"`
	Hourly        []HourlyForecast `json:"hourly"`
	FreezingLevel []FreezingPoint  `json:"freezingLevel"`
}

// RoadsSection groups pass conditions with the scraped pass report.
type RoadsSection struct {
	Passes []PassCondition `json:"passes"`
	Report *PassReport     `json:"report"`
}

// DailyForecast is one day/night pair from the point forecast. HighF comes
// from the daytime period, LowF from the following night; either may be
// absent at the edges of the forecast window.
type DailyForecast struct {
	Name             string   `json:"name"`
	Date             string   `json:"date"` // YYYY-MM-DD, local to the forecast point
	HighF            *float64 `json:"highF"`
	LowF             *float64 `json:"lowF"`
	Wind             string   `json:"wind,omitempty"`
	ShortForecast    string   `json:"shortForecast,omitempty"`
	DetailedForecast string   `json:"detailedForecast,omitempty"`
	IsSnow           bool     `json:"isSnow"`
}

// HourlyForecast is a single hour from the hourly point forecast.
type HourlyForecast struct {
	Time          time.Time `json:"time"`
	TempF         *float64  `json:"tempF"`
	WindMph       *float64  `json:"windMph"`
	PrecipPct     *float64  `json:"precipPct"`
	ShortForecast string    `json:"shortForecast,omitempty"`
}

// FreezingPoint is one sample of the freezing-level height series.
type FreezingPoint struct {
	Time     time.Time `json:"time"`
	HeightFt float64   `json:"heightFt"`
}

// Camera describes one road camera within the configured radius.
type Camera struct {
	ID        int     `json:"id"`
	Title     string  `json:"title"`
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lon"`
	ImageURL  string  `json:"imageUrl,omitempty"`
	Owner     string  `json:"owner,omitempty"`
	MilesAway float64 `json:"milesAway"`
}

// StationReading is the latest observation from one roadside weather station.
type StationReading struct {
	ID          int        `json:"id"`
	Name        string     `json:"name"`
	Latitude    float64    `json:"lat"`
	Longitude   float64    `json:"lon"`
	TempF       *float64   `json:"tempF"`
	WindMph     *float64   `json:"windMph"`
	GustMph     *float64   `json:"gustMph"`
	MilesAway   float64    `json:"milesAway"`
	ReadingTime *time.Time `json:"readingTime"`
}

// PassCondition is the official condition record for one mountain pass.
type PassCondition struct {
	ID            int        `json:"id"`
	Name          string     `json:"name"`
	ElevationFt   int        `json:"elevationFt"`
	RoadCondition string     `json:"roadCondition,omitempty"`
	Weather       string     `json:"weather,omitempty"`
	Restrictions  []string   `json:"restrictions"`
	TempF         *float64   `json:"tempF"`
	DateUpdated   *time.Time `json:"dateUpdated"`
	MilesAway     float64    `json:"milesAway"`
}

// ReportRow is one label/value line scraped from a pass-report page.
type ReportRow struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// PassReport is the scraped human-readable pass report. It is cached with a
// longer TTL than the snapshot because the page is not meant to be polled.
type PassReport struct {
	ID         string      `json:"id"`
	Name       string      `json:"name"`
	Conditions []ReportRow `json:"conditions"`
	FetchedAt  time.Time   `json:"fetchedAt"`
}

// DangerScale holds avalanche danger ratings by elevation band on the
// standard 1 (low) to 5 (extreme) scale; 0 means no rating.
type DangerScale struct {
	Lower  int `json:"lower"`
	Middle int `json:"middle"`
	Upper  int `json:"upper"`
}

// AvalancheDanger is the current avalanche forecast for the configured zone.
type AvalancheDanger struct {
	Center      string      `json:"center"`
	Zone        string      `json:"zone"`
	PublishedAt *time.Time  `json:"publishedAt"`
	ExpiresAt   *time.Time  `json:"expiresAt"`
	BottomLine  string      `json:"bottomLine,omitempty"`
	Danger      DangerScale `json:"danger"`
	DangerLabel string      `json:"dangerLabel,omitempty"` // label for the highest band
}

// SnowEstimate is a heuristic accumulation estimate derived from forecast
// text, not a measured value.
type SnowEstimate struct {
	Next24hMinIn float64   `json:"next24hMinIn"`
	Next24hMaxIn float64   `json:"next24hMaxIn"`
	Source       string    `json:"source"`
	DerivedAt    time.Time `json:"derivedAt"`
}

// LiftStatus is one lift from the resort status feed.
type LiftStatus struct {
	Name   string `json:"name"`
	Status string `json:"status"`
}

// RunStatus is one run from the resort status feed.
type RunStatus struct {
	Name       string `json:"name"`
	Status     string `json:"status"`
	Difficulty string `json:"difficulty,omitempty"`
	Groomed    bool   `json:"groomed"`
}
