package timesync

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/jeremyhahn/go-mobileauth/pkg/region"
)

const (
	// TimeEndpoint is the path queried for authoritative server time.
	TimeEndpoint = "/enrollment/time.htm"
	// DefaultTimeout bounds the time request round trip.
	DefaultTimeout = 5 * time.Second

	// The response body is exactly one big-endian uint64 of Unix millis.
	timeBodyLength = 8
)

var (
	// ErrTransport indicates a network failure, timeout or non-OK status.
	ErrTransport = errors.New("timesync: transport failure")
	// ErrProtocol indicates a well-delivered response that violates the
	// time service contract (wrong body length).
	ErrProtocol = errors.New("timesync: protocol violation")
)

// Options configures a Synchronizer. Every field may be left zero: nil
// Client gets a default client with DefaultTimeout, nil Gate means the
// process-wide shared gate, nil Clock the wall clock, nil Logger
// slog.Default(), nil Resolver the region package lookup.
type Options struct {
	Client   *http.Client
	Gate     *Gate
	Clock    clock.Clock
	Logger   *slog.Logger
	Resolver func(regionCode string) string
}

// Synchronizer obtains authoritative server time from the regional mobile
// service and maintains the millisecond offset between server and local
// clocks. It is safe for concurrent use; racing syncs are last-writer-wins
// on the stored offset.
type Synchronizer struct {
	client  *http.Client
	gate    *Gate
	clk     clock.Clock
	log     *slog.Logger
	resolve func(string) string

	mu       sync.Mutex
	offset   int64
	synced   bool
	lastSync time.Time
}

// NewSynchronizer constructs a Synchronizer, applying defaults for any
// zero Options field.
func NewSynchronizer(opts Options) *Synchronizer {
	if opts.Client == nil {
		opts.Client = &http.Client{Timeout: DefaultTimeout}
	}
	if opts.Gate == nil {
		opts.Gate = sharedGate
	}
	if opts.Clock == nil {
		opts.Clock = clock.New()
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Resolver == nil {
		opts.Resolver = region.Resolve
	}
	return &Synchronizer{
		client:  opts.Client,
		gate:    opts.Gate,
		clk:     opts.Clock,
		log:     opts.Logger,
		resolve: opts.Resolver,
	}
}

// Offset returns the current server time offset in milliseconds. Zero means
// unsynchronized or degraded.
func (s *Synchronizer) Offset() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.offset
}

// Synced reports whether a successful synchronization has established the
// current offset. A failed attempt resets it, making the next code request
// eligible to retry once the cooldown allows.
func (s *Synchronizer) Synced() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.synced
}

// LastSync returns the local time of the last successful synchronization.
// Informational only; it plays no part in code computation.
func (s *Synchronizer) LastSync() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSync
}

// Sync performs one synchronization attempt against the region's time
// endpoint. While a cooldown is active the attempt is skipped and the
// current offset is returned unchanged. On success the derived offset is
// stored and returned. On any transport or protocol failure the offset is
// reset to zero, the cooldown is armed, and the wrapped error is returned;
// callers that only need a code may ignore it and proceed degraded.
func (s *Synchronizer) Sync(ctx context.Context, regionCode string) (int64, error) {
	now := s.clk.Now()
	if !s.gate.Allow(now) {
		s.log.Debug("time sync suppressed by cooldown", "region", regionCode)
		return s.Offset(), nil
	}

	url := s.resolve(regionCode) + TimeEndpoint
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return s.fail(regionCode, fmt.Errorf("%w: %v", ErrTransport, err))
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return s.fail(regionCode, fmt.Errorf("%w: %v", ErrTransport, err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return s.fail(regionCode, fmt.Errorf("%w: unexpected status %d", ErrTransport, resp.StatusCode))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, timeBodyLength+1))
	if err != nil {
		return s.fail(regionCode, fmt.Errorf("%w: reading body: %v", ErrTransport, err))
	}
	if len(body) != timeBodyLength {
		// A 200 with the wrong length means an incompatible server
		// contract, not a retryable glitch; cooldown applies all the same.
		return s.fail(regionCode, fmt.Errorf("%w: body length %d, want %d", ErrProtocol, len(body), timeBodyLength))
	}

	serverMillis := int64(binary.BigEndian.Uint64(body))
	local := s.clk.Now()
	offset := serverMillis - local.UnixMilli()

	s.mu.Lock()
	s.offset = offset
	s.synced = true
	s.lastSync = local
	s.mu.Unlock()
	s.gate.Clear()

	s.log.Info("time sync complete", "region", regionCode, "offset_ms", offset)
	return offset, nil
}

// fail resets the offset and arms the cooldown. Discarding a previously
// valid offset on a transient failure is questionable but matches the
// long-standing authenticator behavior; keep it until the service contract
// says otherwise.
func (s *Synchronizer) fail(regionCode string, err error) (int64, error) {
	now := s.clk.Now()
	s.mu.Lock()
	s.offset = 0
	s.synced = false
	s.mu.Unlock()
	s.gate.Arm(now)

	s.log.Warn("time sync failed", "region", regionCode, "error", err)
	return 0, err
}
