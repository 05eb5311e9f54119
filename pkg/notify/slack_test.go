package notify

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
)

func TestNotifySignup(t *testing.T) {
	var received atomic.Int32
	var gotText string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]string
		json.NewDecoder(r.Body).Decode(&payload)
		gotText = payload["text"]
		received.Add(1)
	}))
	defer server.Close()

	metrics := NewMetrics(prometheus.NewRegistry())
	queue := NewQueue(2, 16, fastPolicy(3), testLogger(), metrics)
	queue.Start()

	notifier := NewSlackNotifier(server.URL, "", queue, testLogger())
	notifier.NotifySignup("Jane Doe", "jane@example.com")
	queue.Close()

	assert.Equal(t, int32(1), received.Load())
	assert.Equal(t, "🚀 New OnCall Chat signup: *Jane Doe* (jane@example.com)", gotText)
}

func TestNotifyLead(t *testing.T) {
	var gotText string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]string
		json.NewDecoder(r.Body).Decode(&payload)
		gotText = payload["text"]
	}))
	defer server.Close()

	metrics := NewMetrics(prometheus.NewRegistry())
	queue := NewQueue(2, 16, fastPolicy(3), testLogger(), metrics)
	queue.Start()

	notifier := NewSlackNotifier("", server.URL, queue, testLogger())
	notifier.NotifyLead("Acme Support Bot", "John Smith", "john@example.com")
	queue.Close()

	assert.Equal(t, "🎯 New lead from *Acme Support Bot*: John Smith (john@example.com)", gotText)
}

func TestNotifySkipsUnconfiguredWebhook(t *testing.T) {
	var received atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		received.Add(1)
	}))
	defer server.Close()

	metrics := NewMetrics(prometheus.NewRegistry())
	queue := NewQueue(1, 16, fastPolicy(3), testLogger(), metrics)
	queue.Start()

	// Leads channel configured, signups not
	notifier := NewSlackNotifier("", server.URL, queue, testLogger())
	notifier.NotifySignup("Jane Doe", "jane@example.com")
	queue.Close()

	assert.Equal(t, int32(0), received.Load())
}

func TestNotifySignupRetriesFailures(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 2 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
	}))
	defer server.Close()

	metrics := NewMetrics(prometheus.NewRegistry())
	queue := NewQueue(1, 16, fastPolicy(5), testLogger(), metrics)
	queue.Start()

	notifier := NewSlackNotifier(server.URL, "", queue, testLogger())
	notifier.NotifySignup("Jane Doe", "jane@example.com")

	deadline := time.After(time.Second)
	for calls.Load() < 2 {
		select {
		case <-deadline:
			t.Fatal("slack webhook was never retried")
		case <-time.After(5 * time.Millisecond):
		}
	}
	queue.Close()
	assert.GreaterOrEqual(t, calls.Load(), int32(2))
}
