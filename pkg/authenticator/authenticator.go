package authenticator

import (
	"context"
	"encoding/base32"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/jeremyhahn/go-mobileauth/pkg/hotp"
	"github.com/jeremyhahn/go-mobileauth/pkg/secret"
	"github.com/jeremyhahn/go-mobileauth/pkg/timesync"
)

// Common errors returned by the authenticator.
var (
	// ErrInvalidConfig indicates the configuration is invalid.
	ErrInvalidConfig = errors.New("authenticator: invalid configuration")
	// ErrNilAuthenticator indicates a nil authenticator was used.
	ErrNilAuthenticator = errors.New("authenticator: authenticator is nil")
)

// Authenticator produces time-based one-time codes from a provisioned
// secret, keeping its clock aligned with the regional service through a
// timesync.Synchronizer. It is safe for concurrent use.
type Authenticator struct {
	cfg    Config
	sync   *timesync.Synchronizer
	clk    clock.Clock
	region string
}

// NewAuthenticator constructs an authenticator from a validated
// configuration. A nil synchronizer gets a default one sharing the
// process-wide cooldown gate, matching how multiple accounts behaved in the
// original client.
func NewAuthenticator(cfg Config, sync *timesync.Synchronizer) (*Authenticator, error) {
	cfg, err := cfg.resolve()
	if err != nil {
		return nil, err
	}
	if sync == nil {
		sync = timesync.NewSynchronizer(timesync.Options{Clock: cfg.Clock})
	}
	clk := cfg.Clock
	if clk == nil {
		clk = clock.New()
	}

	region := cfg.Region
	if len(cfg.Serial) >= 2 {
		// A serial number encodes its issuing region in the first two
		// characters, e.g. "US-1402-24530-12345".
		region = cfg.Serial[:2]
	}

	return &Authenticator{
		cfg:    cfg,
		sync:   sync,
		clk:    clk,
		region: region,
	}, nil
}

// CurrentCode returns the code for the current time step. The first call
// (and any call after a failed sync) triggers a synchronization attempt
// whose outcome is deliberately ignored: an unreachable time service
// degrades accuracy, never availability.
func (a *Authenticator) CurrentCode(ctx context.Context) (string, error) {
	if a == nil {
		return "", ErrNilAuthenticator
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	if !a.sync.Synced() {
		// Sync outcome is intentionally discarded; a failure leaves
		// offset 0 and the code is computed from the local clock.
		_, _ = a.sync.Sync(ctx, a.region)
	}

	counter := hotp.TimeCounter(a.clk.Now().UnixMilli(), a.sync.Offset(), a.cfg.Period)
	return hotp.ComputeCode(a.cfg.Secret, a.cfg.Algorithm, a.cfg.Digits, counter)
}

// Resync forces a synchronization attempt regardless of prior state and
// returns the resulting offset. The cooldown still applies.
func (a *Authenticator) Resync(ctx context.Context) (int64, error) {
	if a == nil {
		return 0, ErrNilAuthenticator
	}
	if ctx == nil {
		ctx = context.Background()
	}
	return a.sync.Sync(ctx, a.region)
}

// Remaining returns how long the current code stays valid. Never more than
// one period: an adjusted time before the epoch is clamped to zero, the
// same way the counter derivation treats it.
func (a *Authenticator) Remaining() time.Duration {
	if a == nil {
		return 0
	}
	adjusted := a.clk.Now().UnixMilli() + a.sync.Offset()
	if adjusted < 0 {
		adjusted = 0
	}
	step := int64(a.cfg.Period) * 1000
	return time.Duration(step-adjusted%step) * time.Millisecond
}

// ExpiresAt returns the local time at which the current code rolls over to
// the next period bucket.
func (a *Authenticator) ExpiresAt() time.Time {
	if a == nil {
		return time.Time{}
	}
	return a.clk.Now().Add(a.Remaining())
}

// Region returns the region this authenticator synchronizes against, either
// configured directly or derived from the serial prefix.
func (a *Authenticator) Region() string {
	if a == nil {
		return ""
	}
	return a.region
}

// Serial returns the provisioned serial number, if any.
func (a *Authenticator) Serial() string {
	if a == nil {
		return ""
	}
	return a.cfg.Serial
}

// RestoreCode serializes the provisioned bundle for persistence or
// transfer, in the current secret codec format.
func (a *Authenticator) RestoreCode() string {
	if a == nil {
		return ""
	}
	return secret.Encode(secret.Bundle{
		Secret:    a.cfg.Secret,
		Digits:    a.cfg.Digits,
		Algorithm: a.cfg.Algorithm,
		Period:    a.cfg.Period,
		Serial:    a.cfg.Serial,
	})
}

// ProvisioningURI returns the otpauth:// URI for QR code generation, so the
// same secret can be imported into a standard authenticator app.
func (a *Authenticator) ProvisioningURI() string {
	if a == nil {
		return ""
	}

	v := url.Values{}
	v.Set("secret", base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString(a.cfg.Secret))
	v.Set("algorithm", string(a.cfg.Algorithm))
	v.Set("digits", fmt.Sprintf("%d", a.cfg.Digits))
	v.Set("period", fmt.Sprintf("%d", a.cfg.Period))
	if a.cfg.Issuer != "" {
		v.Set("issuer", a.cfg.Issuer)
	}

	label := url.PathEscape(a.cfg.AccountName)
	if a.cfg.Issuer != "" {
		label = url.PathEscape(fmt.Sprintf("%s:%s", a.cfg.Issuer, a.cfg.AccountName))
	}
	return fmt.Sprintf("otpauth://totp/%s?%s", label, v.Encode())
}
