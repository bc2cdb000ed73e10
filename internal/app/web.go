package app

import (
	"net/http"

	"github.com/sugawarayuuta/sonnet"
	"go.uber.org/zap"

	"github.com/relabs-tech/sample_relay/internal/notify"
	"github.com/relabs-tech/sample_relay/internal/sample"
)

type countResponse struct {
	Count    int `json:"count"`
	Capacity int `json:"capacity"`
}

type statusResponse struct {
	Queued        int           `json:"queued"`
	Capacity      int           `json:"capacity"`
	NotifierReady bool          `json:"notifier_ready"`
	Stats         StatsSnapshot `json:"stats"`
}

// NewStatusHandler serves the queued-sample count and relay counters.
// hub, when non-nil, is mounted at /ws/samples.
func NewStatusHandler(queue SampleQueue, capacity int, stats *Stats, notifier notify.Notifier, hub http.Handler, logger *zap.Logger) http.Handler {
	mux := http.NewServeMux()

	writeJSON := func(w http.ResponseWriter, v any) {
		payload, err := sonnet.Marshal(v)
		if err != nil {
			logger.Warn("[web] json encode error", zap.Error(err))
			http.Error(w, "encode error", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(payload)
	}

	mux.HandleFunc("GET /api/samples/count", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, countResponse{Count: queue.Count(), Capacity: capacity})
	})

	// Raw 4-byte little-endian count, the same payload published on the count topic.
	mux.HandleFunc("GET /api/samples/count.bin", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/octet-stream")
		_, _ = w.Write(sample.EncodeCount(uint32(queue.Count())))
	})

	mux.HandleFunc("GET /api/status", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, statusResponse{
			Queued:        queue.Count(),
			Capacity:      capacity,
			NotifierReady: notifier.Ready(),
			Stats:         stats.Snapshot(),
		})
	})

	if hub != nil {
		mux.Handle("GET /ws/samples", hub)
	}

	return mux
}
