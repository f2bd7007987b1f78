// Package region maps two-letter authenticator region codes to the base URL
// of the mobile service endpoint serving that region. China is served from a
// dedicated host; every other region shares the default host. Resolution
// never fails: unknown or empty codes fall back to the US entry.
package region

import (
	"sort"
	"strings"
)

const (
	// DefaultHost serves the US, EU and KR regions.
	DefaultHost = "http://mobile-service.blizzard.com"
	// ChinaHost serves the CN region.
	ChinaHost = "http://mobile-service.battlenet.com.cn"
)

var baseURLs = map[string]string{
	"US": DefaultHost,
	"EU": DefaultHost,
	"KR": DefaultHost,
	"CN": ChinaHost,
}

// Resolve returns the base service URL for a region code. Input is
// case-insensitive and truncated to its first two characters, so a full
// serial number may be passed directly. Unknown codes resolve to US.
func Resolve(code string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	if len(code) > 2 {
		code = code[:2]
	}
	if url, ok := baseURLs[code]; ok {
		return url
	}
	return baseURLs["US"]
}

// Known returns the recognised region codes in sorted order.
func Known() []string {
	codes := make([]string, 0, len(baseURLs))
	for code := range baseURLs {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}
