// Package hotp implements the RFC 4226 HOTP code calculation used by both
// counter-based and time-based one-time password generators.
//
// The package is deliberately minimal: a single pure function turns a raw
// secret key, hash algorithm, digit count and counter into a zero-padded
// decimal code string. Time-based callers derive the counter from a
// (possibly server-corrected) clock with TimeCounter and feed it to
// ComputeCode.
//
// # Example
//
//	secret := []byte("12345678901234567890")
//	code, err := hotp.ComputeCode(secret, hotp.AlgorithmSHA1, 6, 0)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(code) // "755224", the first RFC 4226 reference code
//
// # TOTP
//
//	counter := hotp.TimeCounter(time.Now().UnixMilli(), serverOffset, 30)
//	code, err := hotp.ComputeCode(secret, hotp.AlgorithmSHA1, 6, counter)
package hotp
