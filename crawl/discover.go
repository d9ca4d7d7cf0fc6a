// Package crawl walks a site breadth-first from its start URLs and feeds
// every fetched page through the page processor into the sinks.
package crawl

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/gaurav-prasanna/pagechunk/core"
)

// maxSitemapFiles bounds how many nested sitemaps one index may pull in.
const maxSitemapFiles = 20

type sitemapURL struct {
	Loc string `xml:"loc"`
}

// sitemapDoc covers both <urlset> and <sitemapindex> roots.
type sitemapDoc struct {
	XMLName  xml.Name
	URLs     []sitemapURL `xml:"url"`
	Sitemaps []sitemapURL `xml:"sitemap"`
}

// DiscoverSitemap returns the page URLs listed in /sitemap.xml of startURL's
// host, following one level of sitemap index. URLs are normalized and
// deduplicated; order follows the sitemap.
func DiscoverSitemap(ctx context.Context, fetcher core.Fetcher, startURL string) ([]string, error) {
	parsed, err := url.Parse(startURL)
	if err != nil {
		return nil, fmt.Errorf("parsing base URL: %w", err)
	}
	root := fmt.Sprintf("%s://%s/sitemap.xml", parsed.Scheme, parsed.Host)

	doc, err := fetchSitemap(ctx, fetcher, root)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var urls []string
	collect := func(d *sitemapDoc) {
		for _, u := range d.URLs {
			loc := strings.TrimSpace(u.Loc)
			if loc == "" || !IsSameDomain(loc, parsed.Host) {
				continue
			}
			n := NormalizeURL(loc)
			if !seen[n] {
				seen[n] = true
				urls = append(urls, n)
			}
		}
	}

	collect(doc)
	for i, sm := range doc.Sitemaps {
		if i == maxSitemapFiles {
			break
		}
		nested, err := fetchSitemap(ctx, fetcher, strings.TrimSpace(sm.Loc))
		if err != nil {
			continue
		}
		collect(nested)
	}
	return urls, nil
}

func fetchSitemap(ctx context.Context, fetcher core.Fetcher, sitemapURL string) (*sitemapDoc, error) {
	res, err := fetcher.Fetch(ctx, sitemapURL)
	if err != nil {
		return nil, fmt.Errorf("fetching sitemap: %w", err)
	}
	var doc sitemapDoc
	if err := xml.Unmarshal([]byte(res.HTML), &doc); err != nil {
		return nil, fmt.Errorf("parsing sitemap %s: %w", sitemapURL, err)
	}
	return &doc, nil
}

// ExtractLinks extracts all href values from <a> tags, resolving relative
// URLs against baseURL and dropping fragments. A <base href> in the page
// takes precedence over baseURL.
func ExtractLinks(html string, baseURL string) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, err
	}

	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing base URL: %w", err)
	}
	if href, ok := doc.Find("base[href]").First().Attr("href"); ok {
		if b, err := url.Parse(strings.TrimSpace(href)); err == nil {
			base = base.ResolveReference(b)
		}
	}

	var links []string
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, exists := s.Attr("href")
		if !exists {
			return
		}
		if resolved := resolveURL(strings.TrimSpace(href), base); resolved != "" {
			links = append(links, resolved)
		}
	})
	return links, nil
}

// resolveURL resolves a potentially relative URL against a base.
func resolveURL(href string, base *url.URL) string {
	if href == "" || strings.HasPrefix(href, "#") {
		return ""
	}
	lower := strings.ToLower(href)
	for _, scheme := range []string{"mailto:", "javascript:", "tel:", "data:"} {
		if strings.HasPrefix(lower, scheme) {
			return ""
		}
	}

	parsed, err := url.Parse(href)
	if err != nil {
		return ""
	}

	resolved := base.ResolveReference(parsed)
	resolved.Fragment = ""
	resolved.RawFragment = ""
	return resolved.String()
}
