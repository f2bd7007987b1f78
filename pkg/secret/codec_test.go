package secret

import (
	"bytes"
	"encoding/hex"
	"errors"
	"strings"
	"testing"

	"github.com/jeremyhahn/go-mobileauth/pkg/hotp"
)

var codecDefaults = Bundle{
	Digits:    hotp.DefaultDigits,
	Algorithm: hotp.AlgorithmSHA1,
	Period:    hotp.DefaultPeriod,
}

func TestEncodeDecode_RoundTrip(t *testing.T) {
	tests := []struct {
		name   string
		bundle Bundle
	}{
		{
			name: "with serial",
			bundle: Bundle{
				Secret:    []byte("12345678901234567890"),
				Digits:    8,
				Algorithm: hotp.AlgorithmSHA256,
				Period:    60,
				Serial:    "US-1402-24530-12345",
			},
		},
		{
			name: "empty serial",
			bundle: Bundle{
				Secret:    []byte{0xde, 0xad, 0xbe, 0xef},
				Digits:    6,
				Algorithm: hotp.AlgorithmSHA1,
				Period:    30,
			},
		},
		{
			name: "sha512 seven digits",
			bundle: Bundle{
				Secret:    []byte("another-secret-key!!"),
				Digits:    7,
				Algorithm: hotp.AlgorithmSHA512,
				Period:    30,
				Serial:    "EU-0001-00001-00001",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			encoded := Encode(tt.bundle)
			decoded, format, err := Decode(encoded, codecDefaults)
			if err != nil {
				t.Fatalf("Decode failed: %v", err)
			}

			wantFormat := FormatExtended
			if tt.bundle.Serial == "" {
				wantFormat = FormatCurrent
			}
			if format != wantFormat {
				t.Errorf("format = %v, want %v", format, wantFormat)
			}

			if !bytes.Equal(decoded.Secret, tt.bundle.Secret) {
				t.Errorf("secret = %x, want %x", decoded.Secret, tt.bundle.Secret)
			}
			if decoded.Digits != tt.bundle.Digits {
				t.Errorf("digits = %d, want %d", decoded.Digits, tt.bundle.Digits)
			}
			if decoded.Algorithm != tt.bundle.Algorithm {
				t.Errorf("algorithm = %q, want %q", decoded.Algorithm, tt.bundle.Algorithm)
			}
			if decoded.Period != tt.bundle.Period {
				t.Errorf("period = %d, want %d", decoded.Period, tt.bundle.Period)
			}
			if decoded.Serial != tt.bundle.Serial {
				t.Errorf("serial = %q, want %q", decoded.Serial, tt.bundle.Serial)
			}
		})
	}
}

// TestDecode_LegacyShapesAgree feeds the same underlying secret and serial
// through the zero-delimiter and two-delimiter shapes and expects identical
// results.
func TestDecode_LegacyShapesAgree(t *testing.T) {
	key := []byte("12345678901234567890") // 20 bytes, the legacy fixed length
	serial := "KR-8800-11111-22222"

	joined := hex.EncodeToString(key) + hex.EncodeToString([]byte(serial))
	extended := Encode(Bundle{
		Secret:    key,
		Digits:    codecDefaults.Digits,
		Algorithm: codecDefaults.Algorithm,
		Period:    codecDefaults.Period,
		Serial:    serial,
	})

	fromJoined, jf, err := Decode(joined, codecDefaults)
	if err != nil {
		t.Fatalf("legacy decode failed: %v", err)
	}
	fromExtended, ef, err := Decode(extended, codecDefaults)
	if err != nil {
		t.Fatalf("extended decode failed: %v", err)
	}

	if jf != FormatLegacyJoined {
		t.Errorf("joined format = %v, want %v", jf, FormatLegacyJoined)
	}
	if ef != FormatExtended {
		t.Errorf("extended format = %v, want %v", ef, FormatExtended)
	}

	if !bytes.Equal(fromJoined.Secret, fromExtended.Secret) {
		t.Errorf("secrets differ: %x vs %x", fromJoined.Secret, fromExtended.Secret)
	}
	if fromJoined.Serial != fromExtended.Serial {
		t.Errorf("serials differ: %q vs %q", fromJoined.Serial, fromExtended.Serial)
	}
	if fromJoined.Serial != serial {
		t.Errorf("serial = %q, want %q", fromJoined.Serial, serial)
	}
}

func TestDecode_ThreeSegmentIgnoresMiddle(t *testing.T) {
	key := []byte("abcdefghij0123456789")
	serial := "US-1111-22222-33333"

	text := Encode(Bundle{
		Secret:    key,
		Digits:    6,
		Algorithm: hotp.AlgorithmSHA1,
		Period:    30,
	}) + "|obsolete-device-state|" + hex.EncodeToString([]byte(serial))

	b, format, err := Decode(text, codecDefaults)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if format != FormatExtendedLegacy {
		t.Errorf("format = %v, want %v", format, FormatExtendedLegacy)
	}
	if !bytes.Equal(b.Secret, key) {
		t.Errorf("secret = %x, want %x", b.Secret, key)
	}
	if b.Serial != serial {
		t.Errorf("serial = %q, want %q", b.Serial, serial)
	}
}

func TestDecode_DefaultsForMissingFields(t *testing.T) {
	key := []byte{0x01, 0x02, 0x03}

	// Secret only, via a trailing tab so the shape is field-delimited.
	text := hex.EncodeToString(key) + "\t"
	b, format, err := Decode(text, codecDefaults)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if format != FormatCurrent {
		t.Errorf("format = %v, want %v", format, FormatCurrent)
	}
	if b.Digits != codecDefaults.Digits || b.Algorithm != codecDefaults.Algorithm || b.Period != codecDefaults.Period {
		t.Errorf("defaults not applied: %+v", b)
	}
}

func TestDecode_UnparsableFieldsKeepDefaults(t *testing.T) {
	key := []byte("some-secret-material")
	text := hex.EncodeToString(key) + "\tnot-a-number\tMD5\t-7"

	b, _, err := Decode(text, codecDefaults)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if !bytes.Equal(b.Secret, key) {
		t.Errorf("secret = %x, want %x", b.Secret, key)
	}
	if b.Digits != codecDefaults.Digits {
		t.Errorf("digits = %d, want default %d", b.Digits, codecDefaults.Digits)
	}
	if b.Algorithm != codecDefaults.Algorithm {
		t.Errorf("algorithm = %q, want default %q", b.Algorithm, codecDefaults.Algorithm)
	}
	if b.Period != codecDefaults.Period {
		t.Errorf("period = %d, want default %d", b.Period, codecDefaults.Period)
	}
}

func TestDecode_Errors(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"empty input", ""},
		{"bad secret hex", "zz\t6\tSHA1\t30"},
		{"short legacy blob", "deadbeef"},
		{"bad legacy secret hex", strings.Repeat("zz", 20) + "aabb"},
		{"too many segments", "aa\t6\tSHA1\t30|x|y|z"},
		{"empty secret field", "\t6\tSHA1\t30"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, format, err := Decode(tt.text, codecDefaults)
			if !errors.Is(err, ErrSecretFormat) {
				t.Errorf("got error %v, want ErrSecretFormat", err)
			}
			if format != FormatUnknown {
				t.Errorf("format = %v, want %v", format, FormatUnknown)
			}
		})
	}
}

func TestDecode_SerialOverridesDefault(t *testing.T) {
	key := []byte("12345678901234567890")
	defaults := codecDefaults
	defaults.Serial = "EU-9999-00000-11111"

	// Extended form with malformed serial hex keeps the default serial.
	text := Encode(Bundle{Secret: key, Digits: 6, Algorithm: hotp.AlgorithmSHA1, Period: 30}) + "|not-hex!"
	b, _, err := Decode(text, defaults)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if b.Serial != defaults.Serial {
		t.Errorf("serial = %q, want default %q", b.Serial, defaults.Serial)
	}
}

func TestFormatString(t *testing.T) {
	tests := []struct {
		format Format
		want   string
	}{
		{FormatUnknown, "unknown"},
		{FormatLegacyJoined, "legacy-joined"},
		{FormatCurrent, "current"},
		{FormatExtended, "extended"},
		{FormatExtendedLegacy, "extended-legacy"},
	}
	for _, tt := range tests {
		if got := tt.format.String(); got != tt.want {
			t.Errorf("Format(%d).String() = %q, want %q", tt.format, got, tt.want)
		}
	}
}
