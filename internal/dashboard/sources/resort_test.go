package sources

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResortNoFeedConfigured(t *testing.T) {
	src := NewResortSource(NewClient(http.DefaultClient, "test-agent"), "")

	lifts, runs, err := src.FetchStatus(context.Background())
	require.NoError(t, err)
	assert.Empty(t, lifts)
	assert.Empty(t, runs)
}

func TestResortFetchStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{
			"Lifts":[
				{"Name":"Mt. Rainier Gondola","Status":"Open"},
				{"Name":"Chinook Express","Status":"On Hold"}
			],
			"Trails":[
				{"Name":"Green Valley","Status":"Open","Difficulty":"Intermediate","Groomed":true},
				{"Name":"Powder Bowl","Status":"Closed","Difficulty":"Expert","Groomed":false}
			]
		}`)
	}))
	t.Cleanup(srv.Close)

	src := NewResortSource(NewClient(srv.Client(), "test-agent"), srv.URL)

	lifts, runs, err := src.FetchStatus(context.Background())
	require.NoError(t, err)

	require.Len(t, lifts, 2)
	assert.Equal(t, "Mt. Rainier Gondola", lifts[0].Name)
	assert.Equal(t, "Open", lifts[0].Status)

	require.Len(t, runs, 2)
	assert.Equal(t, "Green Valley", runs[0].Name)
	assert.True(t, runs[0].Groomed)
	assert.Equal(t, "Expert", runs[1].Difficulty)
}

func TestResortUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	t.Cleanup(srv.Close)

	src := NewResortSource(NewClient(srv.Client(), "test-agent"), srv.URL)

	_, _, err := src.FetchStatus(context.Background())
	assert.Error(t, err)
}
