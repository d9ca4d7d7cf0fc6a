package crawl

import (
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"golang.org/x/net/publicsuffix"
)

// staticExtensions are file extensions to skip during crawling.
var staticExtensions = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true,
	".svg": true, ".webp": true, ".ico": true, ".bmp": true,
	".css": true, ".js": true, ".mjs": true, ".json": true, ".xml": true,
	".woff": true, ".woff2": true, ".ttf": true, ".eot": true,
	".mp4": true, ".webm": true, ".mp3": true, ".wav": true,
	".zip": true, ".tar": true, ".gz": true,
	".pdf": true, ".doc": true, ".docx": true, ".xls": true, ".xlsx": true,
}

// Rules decides which discovered URLs join the frontier.
type Rules struct {
	hosts    map[string]bool
	sites    map[string]bool
	sameSite bool
	patterns []string
}

// NewRules scopes the crawl to the hosts of startURLs, or to their
// registrable domains when sameSite is set. Non-empty patterns further
// restrict URLs to those matching at least one glob.
func NewRules(startURLs []string, sameSite bool, patterns []string) (*Rules, error) {
	r := &Rules{
		hosts:    make(map[string]bool),
		sites:    make(map[string]bool),
		sameSite: sameSite,
	}

	for _, raw := range startURLs {
		u, err := url.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("parsing start URL %s: %w", raw, err)
		}
		r.hosts[strings.ToLower(u.Host)] = true
		r.sites[RegistrableDomain(u.Hostname())] = true
	}

	for _, p := range patterns {
		if !doublestar.ValidatePattern(p) {
			return nil, fmt.Errorf("invalid URL pattern %q", p)
		}
		r.patterns = append(r.patterns, p)
	}
	return r, nil
}

// Allow reports whether rawURL may be crawled.
func (r *Rules) Allow(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return false
	}
	if IsStaticAsset(rawURL) {
		return false
	}

	if r.sameSite {
		if !r.sites[RegistrableDomain(u.Hostname())] {
			return false
		}
	} else if !r.hosts[strings.ToLower(u.Host)] {
		return false
	}

	return r.MatchPattern(rawURL)
}

// MatchPattern reports whether rawURL matches any configured glob. With no
// patterns every URL matches.
func (r *Rules) MatchPattern(rawURL string) bool {
	if len(r.patterns) == 0 {
		return true
	}
	for _, p := range r.patterns {
		if ok, _ := doublestar.Match(p, rawURL); ok {
			return true
		}
	}
	return false
}

// RegistrableDomain returns the eTLD+1 of host, or host itself when it has
// none (IP addresses, localhost).
func RegistrableDomain(host string) string {
	host = strings.ToLower(strings.TrimSuffix(host, "."))
	site, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		return host
	}
	return site
}

// IsSameDomain checks if the given URL belongs to the specified host.
func IsSameDomain(rawURL string, domain string) bool {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	return strings.EqualFold(parsed.Host, domain)
}

// IsStaticAsset checks if a URL points to a static asset (image, CSS, JS, etc.).
func IsStaticAsset(rawURL string) bool {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	ext := strings.ToLower(path.Ext(parsed.Path))
	return staticExtensions[ext]
}

// NormalizeURL strips fragments and trailing slashes for deduplication.
func NormalizeURL(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}

	parsed.Fragment = ""
	parsed.RawFragment = ""
	parsed.Host = strings.ToLower(parsed.Host)

	// Keep root "/".
	if parsed.Path != "/" {
		parsed.Path = strings.TrimSuffix(parsed.Path, "/")
		parsed.RawPath = ""
	}
	if parsed.Path == "" {
		parsed.Path = "/"
	}

	return parsed.String()
}
