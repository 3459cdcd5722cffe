package loki

import (
	"compress/gzip"
	"encoding/json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"
)

type recordingLogger struct {
	mu       sync.Mutex
	messages []string
}

func (l *recordingLogger) Error(msg string, _ ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.messages = append(l.messages, msg)
}

func Test_New_WhenUrlMissing_ShouldFail(t *testing.T) {
	_, err := New(Config{}, &recordingLogger{})
	assert.Error(t, err)
}

func Test_New_ShouldApplyDefaults(t *testing.T) {
	shipper, err := New(Config{Url: "http://localhost:3100/loki/api/v1/push"}, &recordingLogger{})
	require.NoError(t, err)
	defer shipper.Stop()

	assert.Equal(t, 500, shipper.config.BatchMaxSize)
	assert.Equal(t, 5*time.Second, shipper.config.BatchMaxWait)
	assert.Equal(t, map[string]string{}, shipper.config.Labels)
}

func Test_Stop_ShouldFlushQueuedLines(t *testing.T) {
	var (
		mu       sync.Mutex
		received []pushRequest
		header   http.Header
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reader, err := gzip.NewReader(r.Body)
		require.NoError(t, err)
		var request pushRequest
		require.NoError(t, json.NewDecoder(reader).Decode(&request))

		mu.Lock()
		received = append(received, request)
		header = r.Header.Clone()
		mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	shipper, err := New(Config{
		Url:          server.URL,
		Labels:       map[string]string{"app": "portal"},
		BatchMaxWait: time.Hour,
		TenantKey:    "X-Scope-OrgID",
		TenantValue:  "club",
	}, &recordingLogger{})
	require.NoError(t, err)

	shipper.Push(Entry{Level: "error", Message: "db down", Fields: map[string]string{"error_type": "db"}})
	shipper.Push(Entry{Level: "info", Message: "started"})
	shipper.Stop()

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, received, 1)
	require.Len(t, received[0].Streams, 1)
	assert.Equal(t, "portal", received[0].Streams[0].Stream["app"])
	assert.Len(t, received[0].Streams[0].Values, 2)
	assert.Contains(t, received[0].Streams[0].Values[0][1], `"error_type":"db"`)
	assert.Equal(t, "club", header.Get("X-Scope-OrgID"))
}

func Test_Send_WhenSinkRejects_ShouldReportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	errs := &recordingLogger{}
	shipper, err := New(Config{Url: server.URL, BatchMaxWait: time.Hour}, errs)
	require.NoError(t, err)

	shipper.Push(Entry{Level: "warning", Message: "slow query"})
	shipper.Stop()

	errs.mu.Lock()
	defer errs.mu.Unlock()
	assert.Equal(t, []string{"failed to ship logs"}, errs.messages)
}

func Test_Push_WhenBufferFull_ShouldDropWithoutBlocking(t *testing.T) {
	shipper := &Shipper{
		config:  Config{BufferSize: 1},
		entries: make(chan Entry, 1),
	}

	shipper.Push(Entry{Message: "first"})
	shipper.Push(Entry{Message: "second"})

	assert.Equal(t, int64(1), shipper.Dropped())
}
