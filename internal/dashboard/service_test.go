package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errUpstream = errors.New("upstream unavailable")

type failingSources struct{}

func (failingSources) FetchDaily(ctx context.Context) ([]DailyForecast, error) {
	return nil, errUpstream
}
func (failingSources) FetchHourly(ctx context.Context) ([]HourlyForecast, error) {
	return nil, errUpstream
}
func (failingSources) FetchCameras(ctx context.Context) ([]Camera, error) {
	return nil, errUpstream
}
func (failingSources) FetchStations(ctx context.Context) ([]StationReading, error) {
	return nil, errUpstream
}
func (failingSources) FetchPasses(ctx context.Context) ([]PassCondition, error) {
	return nil, errUpstream
}
func (failingSources) FetchForecast(ctx context.Context) (*AvalancheDanger, error) {
	return nil, errUpstream
}
func (failingSources) FetchStatus(ctx context.Context) ([]LiftStatus, []RunStatus, error) {
	return nil, nil, errUpstream
}
func (failingSources) FetchFreezingLevel(ctx context.Context) ([]FreezingPoint, error) {
	return nil, errUpstream
}
func (failingSources) FetchPassReport(ctx context.Context, id string) (*PassReport, error) {
	return nil, errUpstream
}

type workingForecast struct{}

func (workingForecast) FetchDaily(ctx context.Context) ([]DailyForecast, error) {
	high, low := 30.0, 22.0
	return []DailyForecast{{
		Name:             "Today",
		HighF:            &high,
		LowF:             &low,
		IsSnow:           true,
		DetailedForecast: "Snow. New snow accumulation of 2 to 4 inches possible.",
	}}, nil
}

func (workingForecast) FetchHourly(ctx context.Context) ([]HourlyForecast, error) {
	return []HourlyForecast{{ShortForecast: "Snow"}}, nil
}

type countingReport struct {
	calls atomic.Int64
}

func (r *countingReport) FetchPassReport(ctx context.Context, id string) (*PassReport, error) {
	r.calls.Add(1)
	return &PassReport{
		ID:         id,
		Name:       "Chinook Pass",
		Conditions: []ReportRow{{Label: "Status", Value: "Closed for the season"}},
		FetchedAt:  time.Now().UTC(),
	}, nil
}

func allFailing() Sources {
	f := failingSources{}
	return Sources{Forecast: f, Roads: f, Avalanche: f, Resort: f, Freezing: f, Report: f}
}

func TestGetStateAllUpstreamsFailing(t *testing.T) {
	svc := NewService(allFailing(), Options{PrimaryPassID: "chinook"})

	snap, err := svc.GetState(context.Background())
	require.NoError(t, err, "fetcher failures must never abort aggregation")

	assert.NotEmpty(t, snap.BuildID)
	assert.False(t, snap.GeneratedAt.IsZero())

	// Every list field defaults to empty, every object field to nil.
	assert.Empty(t, snap.Forecast.Daily)
	assert.Empty(t, snap.Forecast.Hourly)
	assert.Empty(t, snap.Forecast.FreezingLevel)
	assert.Empty(t, snap.Cams)
	assert.Empty(t, snap.Weather)
	assert.Empty(t, snap.Roads.Passes)
	assert.Nil(t, snap.Roads.Report)
	assert.Nil(t, snap.Aval)
	assert.Nil(t, snap.Snow)
	assert.Empty(t, snap.Lifts)
	assert.Empty(t, snap.Runs)
}

func TestSnapshotJSONShapeWithDefaults(t *testing.T) {
	svc := NewService(allFailing(), Options{})

	snap, err := svc.GetState(context.Background())
	require.NoError(t, err)

	raw, err := json.Marshal(snap)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &decoded))

	// Lists marshal as [], never null.
	assert.Equal(t, []interface{}{}, decoded["cams"])
	assert.Equal(t, []interface{}{}, decoded["weather"])
	assert.Equal(t, []interface{}{}, decoded["lifts"])
	assert.Equal(t, []interface{}{}, decoded["runs"])

	roads := decoded["roads"].(map[string]interface{})
	assert.Equal(t, []interface{}{}, roads["passes"])
	assert.Nil(t, roads["report"])

	assert.Nil(t, decoded["aval"])
	assert.Nil(t, decoded["snow"])
}

func TestGetStateCacheWithinTTL(t *testing.T) {
	svc := NewService(allFailing(), Options{StateTTL: time.Minute})

	first, err := svc.GetState(context.Background())
	require.NoError(t, err)

	second, err := svc.GetState(context.Background())
	require.NoError(t, err)

	assert.Equal(t, first.GeneratedAt, second.GeneratedAt, "cache hit must return the snapshot unchanged")
	assert.Equal(t, first.BuildID, second.BuildID)
}

func TestGetStateRebuildsAfterExpiry(t *testing.T) {
	svc := NewService(allFailing(), Options{StateTTL: 10 * time.Millisecond})

	first, err := svc.GetState(context.Background())
	require.NoError(t, err)

	time.Sleep(20 * time.Millisecond)

	second, err := svc.GetState(context.Background())
	require.NoError(t, err)

	assert.NotEqual(t, first.BuildID, second.BuildID, "expired cache must trigger a rebuild")
}

func TestGetStateDerivesSnowFromForecast(t *testing.T) {
	svc := NewService(Sources{Forecast: workingForecast{}}, Options{})

	snap, err := svc.GetState(context.Background())
	require.NoError(t, err)

	require.Len(t, snap.Forecast.Daily, 1)
	require.NotNil(t, snap.Snow)
	assert.Equal(t, 2.0, snap.Snow.Next24hMinIn)
	assert.Equal(t, 4.0, snap.Snow.Next24hMaxIn)
}

func TestPassReportUsesItsOwnCache(t *testing.T) {
	report := &countingReport{}
	svc := NewService(Sources{Report: report}, Options{
		StateTTL:      time.Nanosecond, // state cache effectively disabled
		ReportTTL:     time.Minute,
		PrimaryPassID: "chinook",
	})

	for i := 0; i < 3; i++ {
		r, err := svc.PassReport(context.Background(), "chinook")
		require.NoError(t, err)
		assert.Equal(t, "Chinook Pass", r.Name)
	}

	assert.Equal(t, int64(1), report.calls.Load(), "report must be served from its own longer-lived cache")
}

func TestPassReportUnconfigured(t *testing.T) {
	svc := NewService(Sources{}, Options{})

	_, err := svc.PassReport(context.Background(), "chinook")
	assert.Error(t, err)
}

func TestGetStateWithNoSources(t *testing.T) {
	svc := NewService(Sources{}, Options{})

	snap, err := svc.GetState(context.Background())
	require.NoError(t, err)
	assert.Empty(t, snap.Cams)
	assert.Nil(t, snap.Aval)
}
