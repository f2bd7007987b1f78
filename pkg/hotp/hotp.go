package hotp

import (
	"crypto/hmac"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/binary"
	"errors"
	"fmt"
	"hash"
)

// Algorithm selects the hash function used inside the HMAC.
type Algorithm string

const (
	// AlgorithmSHA1 uses HMAC-SHA1 (the RFC 4226 default).
	AlgorithmSHA1 Algorithm = "SHA1"
	// AlgorithmSHA256 uses HMAC-SHA256.
	AlgorithmSHA256 Algorithm = "SHA256"
	// AlgorithmSHA512 uses HMAC-SHA512.
	AlgorithmSHA512 Algorithm = "SHA512"
)

// Common errors returned by the code calculator.
var (
	// ErrEmptySecret indicates an empty HMAC key was supplied.
	ErrEmptySecret = errors.New("hotp: secret must not be empty")
	// ErrInvalidDigits indicates a digit count outside 1..9.
	ErrInvalidDigits = errors.New("hotp: digits must be between 1 and 9")
	// ErrUnsupportedAlgorithm indicates an algorithm outside SHA1/SHA256/SHA512.
	ErrUnsupportedAlgorithm = errors.New("hotp: unsupported algorithm")
)

// hashFunc returns the hash constructor for the algorithm, or an error for
// anything outside the supported set. An unknown algorithm is a programming
// defect, never silently defaulted.
func hashFunc(algorithm Algorithm) (func() hash.Hash, error) {
	switch algorithm {
	case AlgorithmSHA1, "":
		return sha1.New, nil
	case AlgorithmSHA256:
		return sha256.New, nil
	case AlgorithmSHA512:
		return sha512.New, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedAlgorithm, algorithm)
	}
}

// pow10 avoids math.Pow float rounding for the truncation modulus.
func pow10(n int) uint32 {
	v := uint32(1)
	for i := 0; i < n; i++ {
		v *= 10
	}
	return v
}

// ComputeCode derives an RFC 4226 one-time code from a raw secret key and a
// counter value. The counter is encoded as 8 big-endian bytes, HMACed with
// the secret, dynamically truncated to a 31-bit value and reduced modulo
// 10^digits. The result is zero-padded to exactly digits characters.
//
// The function is pure: no I/O, no clock access. TOTP callers derive the
// counter with TimeCounter first.
func ComputeCode(secret []byte, algorithm Algorithm, digits int, counter uint64) (string, error) {
	if len(secret) == 0 {
		return "", ErrEmptySecret
	}
	if digits < 1 || digits > 9 {
		return "", fmt.Errorf("%w: got %d", ErrInvalidDigits, digits)
	}

	newHash, err := hashFunc(algorithm)
	if err != nil {
		return "", err
	}

	var msg [8]byte
	binary.BigEndian.PutUint64(msg[:], counter)

	mac := hmac.New(newHash, secret)
	mac.Write(msg[:])
	sum := mac.Sum(nil)

	// Dynamic truncation per RFC 4226 section 5.3: the low nibble of the
	// final byte selects a 4-byte window, masked to a non-negative 31-bit
	// integer.
	offset := sum[len(sum)-1] & 0x0f
	fullCode := binary.BigEndian.Uint32(sum[offset:offset+4]) & 0x7fffffff

	code := fullCode % pow10(digits)
	return fmt.Sprintf("%0*d", digits, code), nil
}

// TimeCounter derives the TOTP counter for a wall-clock instant expressed in
// Unix milliseconds, adjusted by a server offset in milliseconds. A
// non-positive period falls back to the 30 second default.
func TimeCounter(unixMillis, offsetMillis int64, periodSeconds int) uint64 {
	if periodSeconds <= 0 {
		periodSeconds = DefaultPeriod
	}
	adjusted := unixMillis + offsetMillis
	if adjusted < 0 {
		adjusted = 0
	}
	return uint64(adjusted) / uint64(periodSeconds*1000)
}

// Defaults shared by callers configuring a code generator.
const (
	// DefaultDigits is the conventional 6 digit code length.
	DefaultDigits = 6
	// DefaultPeriod is the conventional 30 second TOTP step.
	DefaultPeriod = 30
)
