// Package timesync keeps a local clock aligned with the authenticator
// service's notion of time.
//
// The service exposes a single time endpoint per region returning eight
// bytes: a big-endian uint64 of Unix milliseconds. A Synchronizer performs
// one bounded GET, derives the signed millisecond offset between server and
// local clocks, and stores it for code computation. Failures are absorbed:
// the offset degrades to zero and a five minute cooldown suppresses further
// attempts, so one unreachable region cannot stall every code request in
// the process.
//
// # Usage
//
//	sync := timesync.NewSynchronizer(timesync.Options{})
//	offset, err := sync.Sync(ctx, "US")
//	if err != nil {
//	    // degraded: offset is 0, cooldown armed; codes still work
//	}
//
// The cooldown gate defaults to a process-wide singleton, matching the
// original authenticator's static field. Pass a dedicated Gate in Options
// to scope the cooldown per region or per instance instead.
package timesync
