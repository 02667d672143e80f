package sse_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/stockmirror/pkg/sse"
)

func TestPipeForwardsUntilChannelCloses(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/events", nil)

	stream := sse.New(rec, req)
	require.NotNil(t, stream)

	events := make(chan interface{}, 2)
	events <- map[string]string{"collection": "products"}
	events <- map[string]string{"collection": "sales"}
	close(events)

	require.NoError(t, stream.Pipe("changed", events, 0))

	body := rec.Body.String()
	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))
	assert.Contains(t, body, "event: changed\ndata: {\"collection\":\"products\"}\n\n")
	assert.Contains(t, body, "data: {\"collection\":\"sales\"}")
}

func TestPipeStopsOnDisconnect(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/events", nil).WithContext(ctx)

	stream := sse.New(rec, req)
	cancel()

	assert.True(t, stream.Closed())
	assert.NoError(t, stream.Pipe("changed", make(chan interface{}), 0))
}
