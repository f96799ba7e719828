package timesync

import "github.com/jonboulle/clockwork"

// Service answers client time probes with the server's current instant.
// It keeps no per-client state: the client computes its own offset as
// serverTime - localReceiveTime + roundTrip/2 and is free to re-probe at
// any point. Server-side auction decisions never use client-reported time.
type Service struct {
	clock clockwork.Clock
}

// New creates a time sync service on the given clock.
func New(clock clockwork.Clock) *Service {
	return &Service{clock: clock}
}

// NowMillis returns the server's current instant as epoch milliseconds.
func (s *Service) NowMillis() int64 {
	return s.clock.Now().UnixMilli()
}
