package secret

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jeremyhahn/go-mobileauth/pkg/hotp"
)

// ErrSecretFormat indicates the secret portion of an encoded bundle is
// missing or not valid hex. Every other field degrades to the supplied
// defaults instead of failing the decode.
var ErrSecretFormat = errors.New("secret: invalid secret encoding")

// legacySecretHexLen is the fixed split point of the oldest serialization:
// the first 40 hex characters (a 20 byte key) are the secret, everything
// after is the hex of the serial bytes.
const legacySecretHexLen = 40

// Bundle is the provisioning tuple carried by the serialized form.
type Bundle struct {
	Secret    []byte
	Digits    int
	Algorithm hotp.Algorithm
	Period    int
	Serial    string
}

// Format identifies which serialization shape a decode recognised.
type Format int

const (
	// FormatUnknown is returned alongside decode errors.
	FormatUnknown Format = iota
	// FormatLegacyJoined is the oldest shape: hex(secret) and hex(serial)
	// concatenated with no delimiter, split at a fixed 40 hex characters.
	FormatLegacyJoined
	// FormatCurrent is the tab-delimited field encoding with no serial.
	FormatCurrent
	// FormatExtended appends "|" + hex(serial) to the field encoding.
	FormatExtended
	// FormatExtendedLegacy carries three "|" segments; the middle one is
	// obsolete and ignored, the last is hex(serial).
	FormatExtendedLegacy
)

func (f Format) String() string {
	switch f {
	case FormatLegacyJoined:
		return "legacy-joined"
	case FormatCurrent:
		return "current"
	case FormatExtended:
		return "extended"
	case FormatExtendedLegacy:
		return "extended-legacy"
	default:
		return "unknown"
	}
}

// Encode serializes a bundle. The base encoding is
// hex(secret) TAB digits TAB algorithm TAB period; when a serial is present
// its UTF-8 bytes are appended as "|" + hex.
func Encode(b Bundle) string {
	algorithm := b.Algorithm
	if algorithm == "" {
		algorithm = hotp.AlgorithmSHA1
	}

	var sb strings.Builder
	sb.WriteString(hex.EncodeToString(b.Secret))
	sb.WriteByte('\t')
	sb.WriteString(strconv.Itoa(b.Digits))
	sb.WriteByte('\t')
	sb.WriteString(string(algorithm))
	sb.WriteByte('\t')
	sb.WriteString(strconv.Itoa(b.Period))

	if b.Serial != "" {
		sb.WriteByte('|')
		sb.WriteString(hex.EncodeToString([]byte(b.Serial)))
	}
	return sb.String()
}

// Decode parses any of the recognised serialization shapes, reporting which
// one matched. Fields other than the secret that are absent or unparsable
// retain the value from defaults; an absent or malformed secret is a hard
// ErrSecretFormat.
func Decode(text string, defaults Bundle) (Bundle, Format, error) {
	segments := strings.Split(text, "|")

	switch len(segments) {
	case 1:
		if strings.ContainsRune(segments[0], '\t') {
			b, err := decodeFields(segments[0], defaults)
			if err != nil {
				return Bundle{}, FormatUnknown, err
			}
			b.Serial = defaults.Serial
			return b, FormatCurrent, nil
		}
		b, err := decodeLegacyJoined(segments[0], defaults)
		if err != nil {
			return Bundle{}, FormatUnknown, err
		}
		return b, FormatLegacyJoined, nil

	case 2:
		b, err := decodeFields(segments[0], defaults)
		if err != nil {
			return Bundle{}, FormatUnknown, err
		}
		b.Serial = decodeSerial(segments[1], defaults.Serial)
		return b, FormatExtended, nil

	case 3:
		// The middle segment carried device state in very old exports;
		// nothing consumes it anymore.
		b, err := decodeFields(segments[0], defaults)
		if err != nil {
			return Bundle{}, FormatUnknown, err
		}
		b.Serial = decodeSerial(segments[2], defaults.Serial)
		return b, FormatExtendedLegacy, nil

	default:
		return Bundle{}, FormatUnknown, fmt.Errorf("%w: %d segments", ErrSecretFormat, len(segments))
	}
}

// decodeFields parses the tab-delimited base encoding. Only the secret is
// mandatory.
func decodeFields(base string, defaults Bundle) (Bundle, error) {
	fields := strings.Split(base, "\t")

	secretHex := fields[0]
	if secretHex == "" {
		return Bundle{}, fmt.Errorf("%w: empty secret field", ErrSecretFormat)
	}
	key, err := hex.DecodeString(secretHex)
	if err != nil {
		return Bundle{}, fmt.Errorf("%w: %v", ErrSecretFormat, err)
	}

	b := Bundle{
		Secret:    key,
		Digits:    defaults.Digits,
		Algorithm: defaults.Algorithm,
		Period:    defaults.Period,
	}

	if len(fields) > 1 {
		if digits, err := strconv.Atoi(fields[1]); err == nil && digits > 0 {
			b.Digits = digits
		}
	}
	if len(fields) > 2 {
		switch algorithm := hotp.Algorithm(fields[2]); algorithm {
		case hotp.AlgorithmSHA1, hotp.AlgorithmSHA256, hotp.AlgorithmSHA512:
			b.Algorithm = algorithm
		}
	}
	if len(fields) > 3 {
		if period, err := strconv.Atoi(fields[3]); err == nil && period > 0 {
			b.Period = period
		}
	}
	return b, nil
}

// decodeLegacyJoined splits the undelimited hex blob at the fixed secret
// length.
func decodeLegacyJoined(blob string, defaults Bundle) (Bundle, error) {
	if len(blob) < legacySecretHexLen {
		return Bundle{}, fmt.Errorf("%w: %d hex characters, need at least %d",
			ErrSecretFormat, len(blob), legacySecretHexLen)
	}

	key, err := hex.DecodeString(blob[:legacySecretHexLen])
	if err != nil {
		return Bundle{}, fmt.Errorf("%w: %v", ErrSecretFormat, err)
	}

	b := Bundle{
		Secret:    key,
		Digits:    defaults.Digits,
		Algorithm: defaults.Algorithm,
		Period:    defaults.Period,
		Serial:    decodeSerial(blob[legacySecretHexLen:], defaults.Serial),
	}
	return b, nil
}

// decodeSerial converts a hex serial segment back to its UTF-8 string,
// falling back to the default when empty or malformed.
func decodeSerial(segment, fallback string) string {
	if segment == "" {
		return fallback
	}
	raw, err := hex.DecodeString(segment)
	if err != nil {
		return fallback
	}
	return string(raw)
}
