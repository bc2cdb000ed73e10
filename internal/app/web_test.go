package app

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"github.com/relabs-tech/sample_relay/internal/sample"
)

func TestStatusHandler(t *testing.T) {
	c := filledCache(t, 8, 1, 2, 3)
	stats := &Stats{}
	stats.produced.Add(5)
	stats.overruns.Add(1)
	stats.lost.Add(1)
	n := &mockNotifier{ready: true}

	srv := httptest.NewServer(NewStatusHandler(c, c.Cap(), stats, n, nil, zap.NewNop()))
	defer srv.Close()

	get := func(t *testing.T, path string) (*http.Response, []byte) {
		t.Helper()
		resp, err := http.Get(srv.URL + path)
		if err != nil {
			t.Fatalf("GET %s: %v", path, err)
		}
		defer resp.Body.Close()
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			t.Fatalf("read %s: %v", path, err)
		}
		return resp, body
	}

	t.Run("count", func(t *testing.T) {
		resp, body := get(t, "/api/samples/count")
		if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
			t.Fatalf("Content-Type = %q", ct)
		}
		var got countResponse
		if err := json.Unmarshal(body, &got); err != nil {
			t.Fatalf("decode: %v (%s)", err, body)
		}
		if got.Count != 3 || got.Capacity != 8 {
			t.Fatalf("count = %+v, want count=3 capacity=8", got)
		}
	})

	t.Run("count binary", func(t *testing.T) {
		_, body := get(t, "/api/samples/count.bin")
		if len(body) != sample.CountSize {
			t.Fatalf("len = %d, want %d", len(body), sample.CountSize)
		}
		if want := []byte{3, 0, 0, 0}; string(body) != string(want) {
			t.Fatalf("body = %v, want %v", body, want)
		}
	})

	t.Run("status", func(t *testing.T) {
		_, body := get(t, "/api/status")
		var got statusResponse
		if err := json.Unmarshal(body, &got); err != nil {
			t.Fatalf("decode: %v (%s)", err, body)
		}
		if got.Queued != 3 || !got.NotifierReady {
			t.Fatalf("status = %+v", got)
		}
		want := StatsSnapshot{Produced: 5, Overruns: 1, Lost: 1}
		if got.Stats != want {
			t.Fatalf("stats = %+v, want %+v", got.Stats, want)
		}
	})

	t.Run("websocket not mounted", func(t *testing.T) {
		resp, _ := get(t, "/ws/samples")
		if resp.StatusCode != http.StatusNotFound {
			t.Fatalf("status = %d, want 404", resp.StatusCode)
		}
	})
}
