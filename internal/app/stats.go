package app

import "sync/atomic"

// Stats counts what happened to samples. Overruns (the producer found
// the cache full) and losses (a failed delivery could not be requeued)
// are kept apart because they point at different problems.
type Stats struct {
	produced  atomic.Uint64
	overruns  atomic.Uint64
	delivered atomic.Uint64
	requeued  atomic.Uint64
	lost      atomic.Uint64
}

type StatsSnapshot struct {
	Produced  uint64 `json:"produced"`
	Overruns  uint64 `json:"overruns"`
	Delivered uint64 `json:"delivered"`
	Requeued  uint64 `json:"requeued"`
	Lost      uint64 `json:"lost"`
}

func (s *Stats) Snapshot() StatsSnapshot {
	return StatsSnapshot{
		Produced:  s.produced.Load(),
		Overruns:  s.overruns.Load(),
		Delivered: s.delivered.Load(),
		Requeued:  s.requeued.Load(),
		Lost:      s.lost.Load(),
	}
}
