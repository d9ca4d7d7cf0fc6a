package config

import (
	"fmt"
	"io"
	"time"

	"gopkg.in/yaml.v3"
)

type field struct {
	key     string
	value   any
	comment string
}

// fields lists every setting in file order with its description.
func fields(c Config) []field {
	return []field{
		{"startUrls", c.StartURLs, "Pages the crawl starts from (depth 0)."},
		{"maxPages", c.MaxPages, "Upper bound on fetch attempts per run. 0 means unlimited."},
		{"maxDepth", c.MaxDepth, "Link hops followed from a start URL."},
		{"outputFormat", c.OutputFormat, "markdown, text or json."},
		{"chunkSize", c.ChunkSize, "Target characters per chunk. 0 or less disables chunking."},
		{"chunkOverlap", c.ChunkOverlap, "Overlap budget in characters, carried as floor(n/5) words."},
		{"includeMetadata", c.IncludeMetadata, "Attach the metadata block to each record."},
		{"removeNavigation", c.RemoveNavigation, "Drop nav, header and footer before conversion."},
		{"followLinks", c.FollowLinks, "Enqueue same-host links found on each page."},
		{"urlPatterns", c.URLPatterns, "Glob patterns a discovered URL must match. Empty allows all."},
		{"sameSite", c.SameSite, "Follow links across subdomains of the start URL's registrable domain."},
		{"useSitemap", c.UseSitemap, "Seed the frontier from /sitemap.xml of each start host."},
		{"concurrency", c.Concurrency, "Pages fetched in parallel within one crawl level."},
		{"fetchTimeout", c.FetchTimeout, "Per-request timeout."},
		{"maxContentSize", c.MaxContentSize, "Largest accepted response body in bytes."},
		{"userAgent", c.UserAgent, "User-Agent header sent with every request."},
		{"sinks", c.Sinks, "Record destinations: dataset, files, pdf, sqlite, postgres, nats, stdout."},
		{"outputDir", c.OutputDir, "Directory for the dataset, files and pdf sinks."},
		{"sqlitePath", c.SQLitePath, "SQLite database file. Empty means <outputDir>/pagechunk.db."},
		{"postgresDSN", c.PostgresDSN, "PostgreSQL connection string for the postgres sink."},
		{"natsURL", c.NATSURL, "NATS server for the nats sink."},
		{"natsSubject", c.NATSSubject, "Subject records are published on."},
		{"metricsAddr", c.MetricsAddr, "Address serving /metrics during a crawl. Empty disables it."},
		{"listenAddr", c.ListenAddr, "Address of the HTTP API started by serve."},
		{"logLevel", c.LogLevel, "panic, fatal, error, warn, info, debug or trace."},
		{"logFormat", c.LogFormat, "text or json."},
	}
}

// WriteYAML writes c as a commented YAML config file.
func WriteYAML(w io.Writer, c Config) error {
	doc := &yaml.Node{Kind: yaml.MappingNode}

	for _, f := range fields(c) {
		value := f.value
		if d, ok := value.(time.Duration); ok {
			value = d.String()
		}

		var v yaml.Node
		if err := v.Encode(value); err != nil {
			return fmt.Errorf("encoding %s: %w", f.key, err)
		}
		doc.Content = append(doc.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Value: f.key, HeadComment: f.comment},
			&v,
		)
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return enc.Close()
}
