// Package authenticator generates the one-time codes used to answer a
// two-factor login challenge, from a secret provisioned out of band.
//
// An Authenticator owns the secret and its parameters (digits, period, hash
// algorithm, optional device serial), keeps its clock aligned with the
// regional service via pkg/timesync, and delegates the actual code math to
// pkg/hotp. Synchronization failures are absorbed: CurrentCode always
// returns a code when the configuration is valid, falling back to the
// uncorrected local clock.
//
// # Usage
//
//	auth, err := authenticator.NewAuthenticator(authenticator.Config{
//	    Secret: secretKey,
//	    Serial: "US-1402-24530-12345",
//	}, nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	code, err := auth.CurrentCode(ctx)
//
// A serial-carrying authenticator derives its sync region from the serial's
// two-letter prefix. Without a serial, Config.Region applies, defaulting to
// US resolution in pkg/region.
//
// # Restoring
//
// The provisioning bundle round-trips through the pkg/secret text format:
//
//	auth, err := authenticator.NewAuthenticator(authenticator.Config{
//	    RestoreText: savedText,
//	}, nil)
//	...
//	savedText = auth.RestoreCode()
package authenticator
