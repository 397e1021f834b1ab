package sources

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testLat = 46.932517
	testLon = -121.48067
)

func TestWSDOTMissingAccessCodeSkipsNetwork(t *testing.T) {
	var requests atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		fmt.Fprint(w, `[]`)
	}))
	t.Cleanup(srv.Close)

	src := NewWSDOTSource(NewClient(srv.Client(), "test-agent"), "", testLat, testLon, 40)
	src.baseURL = srv.URL

	cams, err := src.FetchCameras(context.Background())
	require.NoError(t, err)
	assert.Empty(t, cams)

	stations, err := src.FetchStations(context.Background())
	require.NoError(t, err)
	assert.Empty(t, stations)

	passes, err := src.FetchPasses(context.Background())
	require.NoError(t, err)
	assert.Empty(t, passes)

	assert.Equal(t, int64(0), requests.Load(), "no access code must mean no upstream calls")
}

func TestWSDOTFetchCamerasDistanceFilter(t *testing.T) {
	// One camera ~0.1 miles north of the reference point, one ~200 miles.
	nearLat := testLat + 0.1/69.0
	farLat := testLat + 200.0/69.0

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "secret", r.URL.Query().Get("AccessCode"))
		fmt.Fprintf(w, `[
			{"CameraID":1,"Title":"Near Cam","ImageURL":"https://example.com/1.jpg","CameraOwner":"WSDOT","CameraLocation":{"Latitude":%f,"Longitude":%f}},
			{"CameraID":2,"Title":"Far Cam","ImageURL":"https://example.com/2.jpg","CameraOwner":"WSDOT","CameraLocation":{"Latitude":%f,"Longitude":%f}}
		]`, nearLat, testLon, farLat, testLon)
	}))
	t.Cleanup(srv.Close)

	src := NewWSDOTSource(NewClient(srv.Client(), "test-agent"), "secret", testLat, testLon, 40)
	src.baseURL = srv.URL

	cams, err := src.FetchCameras(context.Background())
	require.NoError(t, err)
	require.Len(t, cams, 1, "only the camera within the radius appears")

	assert.Equal(t, 1, cams[0].ID)
	assert.Equal(t, "Near Cam", cams[0].Title)
	assert.LessOrEqual(t, cams[0].MilesAway, 0.2)
}

func TestWSDOTFetchStations(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `[
			{"StationID":10,"StationName":"Crystal Base","Latitude":%f,"Longitude":%f,
			 "TemperatureInFahrenheit":28.4,"WindSpeedInMPH":12,"WindGustSpeedInMPH":25,
			 "ReadingTime":"/Date(1736100000000-0800)/"}
		]`, testLat, testLon)
	}))
	t.Cleanup(srv.Close)

	src := NewWSDOTSource(NewClient(srv.Client(), "test-agent"), "secret", testLat, testLon, 40)
	src.baseURL = srv.URL

	stations, err := src.FetchStations(context.Background())
	require.NoError(t, err)
	require.Len(t, stations, 1)

	st := stations[0]
	assert.Equal(t, "Crystal Base", st.Name)
	require.NotNil(t, st.TempF)
	assert.Equal(t, 28.4, *st.TempF)
	require.NotNil(t, st.ReadingTime)
	assert.Equal(t, time.UnixMilli(1736100000000).UTC(), *st.ReadingTime)
}

func TestWSDOTFetchPasses(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `[
			{"MountainPassId":2,"MountainPassName":"Chinook Pass","Latitude":%f,"Longitude":%f,
			 "ElevationInFeet":5430,"RoadCondition":"Closed for the season","WeatherCondition":"Snowing",
			 "TemperatureInFahrenheit":25,"DateUpdated":"/Date(1736100000000-0800)/",
			 "RestrictionOne":{"RestrictionText":"Closed","TravelDirection":"Both"},
			 "RestrictionTwo":{"RestrictionText":"","TravelDirection":""}}
		]`, testLat, testLon)
	}))
	t.Cleanup(srv.Close)

	src := NewWSDOTSource(NewClient(srv.Client(), "test-agent"), "secret", testLat, testLon, 40)
	src.baseURL = srv.URL

	passes, err := src.FetchPasses(context.Background())
	require.NoError(t, err)
	require.Len(t, passes, 1)

	p := passes[0]
	assert.Equal(t, "Chinook Pass", p.Name)
	assert.Equal(t, 5430, p.ElevationFt)
	assert.Equal(t, []string{"Both: Closed"}, p.Restrictions)
	require.NotNil(t, p.DateUpdated)
}

func TestWSDOTMalformedPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"not":"a list"}`)
	}))
	t.Cleanup(srv.Close)

	src := NewWSDOTSource(NewClient(srv.Client(), "test-agent"), "secret", testLat, testLon, 40)
	src.baseURL = srv.URL

	_, err := src.FetchCameras(context.Background())
	assert.Error(t, err)
}

func TestParseDotNetDate(t *testing.T) {
	ts, err := parseDotNetDate("/Date(1368738000000-0700)/")
	require.NoError(t, err)
	assert.Equal(t, time.UnixMilli(1368738000000).UTC(), ts)

	ts, err = parseDotNetDate("/Date(0)/")
	require.NoError(t, err)
	assert.Equal(t, time.UnixMilli(0).UTC(), ts)

	_, err = parseDotNetDate("2024-01-01T00:00:00Z")
	assert.Error(t, err)

	_, err = parseDotNetDate("")
	assert.Error(t, err)
}
