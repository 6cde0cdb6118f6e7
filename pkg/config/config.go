// Package config loads hostql configuration: hash cache switch, disabled tables and named queries.
// The file is yaml or toml, picked by extension, and can be loaded from a local path or http(s) url.
package config

import (
	"bytes"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/mitchellh/go-homedir"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// ErrUnknownQuery returned for a named query not defined in config
var ErrUnknownQuery = errors.New("unknown query")

// Config defines the top-level config object
type Config struct {
	HashCache      *bool        `yaml:"hash_cache" toml:"hash_cache"`           // enables hash result cache, on if not set
	Concurrency    int          `yaml:"concurrency" toml:"concurrency"`         // concurrent process probes
	DisabledTables []string     `yaml:"disabled_tables" toml:"disabled_tables"` // tables not registered
	Queries        []NamedQuery `yaml:"queries" toml:"queries"`                 // named queries

	location string
	hash     string
}

// NamedQuery is a query stored in config under a name
type NamedQuery struct {
	Name        string `yaml:"name" toml:"name"` // name of query, mandatory
	Description string `yaml:"description" toml:"description"`
	Query       string `yaml:"query" toml:"query"`
}

// Load reads config from a file or url. Leading "~" of a file path is expanded to the home directory.
func Load(loc string) (*Config, error) {
	log.Printf("[DEBUG] request to load config %q", loc)
	if !strings.HasPrefix(loc, "http://") && !strings.HasPrefix(loc, "https://") {
		expanded, err := homedir.Expand(loc)
		if err != nil {
			return nil, fmt.Errorf("can't expand config path %s: %w", loc, err)
		}
		loc = expanded
	}

	data, err := read(loc)
	if err != nil {
		return nil, err
	}
	res, err := Parse(loc, data)
	if err != nil {
		return nil, err
	}
	log.Printf("[INFO] config loaded from %s with %d queries", loc, len(res.Queries))
	return res, nil
}

// Parse makes config from data, format is picked by the name extension, yaml if no extension.
func Parse(name string, data []byte) (*Config, error) {
	res := &Config{location: name}
	if err := unmarshal(name, data, res); err != nil {
		return nil, fmt.Errorf("can't unmarshal config: %w", err)
	}
	if err := res.Validate(); err != nil {
		return nil, fmt.Errorf("config %s is invalid: %w", name, err)
	}
	res.hash = fmt.Sprintf("%x", sha256.Sum256(data))
	return res, nil
}

func read(loc string) ([]byte, error) {
	var rdr io.ReadCloser
	switch {
	case strings.HasPrefix(loc, "http://") || strings.HasPrefix(loc, "https://"):
		client := &http.Client{Timeout: 10 * time.Second}
		resp, err := client.Get(loc) // nolint
		if err != nil {
			return nil, fmt.Errorf("can't get config from http %s: %w", loc, err)
		}
		if resp.StatusCode != http.StatusOK {
			_ = resp.Body.Close()
			return nil, fmt.Errorf("can't get config from http %s, status: %s", loc, resp.Status)
		}
		rdr = resp.Body
	default:
		f, err := os.Open(loc) // nolint
		if err != nil {
			return nil, fmt.Errorf("can't open config file %s: %w", loc, err)
		}
		rdr = f
	}
	defer rdr.Close() // nolint

	data, err := io.ReadAll(rdr)
	if err != nil {
		return nil, fmt.Errorf("can't read config %s: %w", loc, err)
	}
	return data, nil
}

// unmarshal parses yaml in strict mode, failing on unknown fields, or toml for ".toml" names
func unmarshal(name string, data []byte, v any) error {
	base := name
	if i := strings.IndexAny(base, "?#"); i >= 0 {
		base = base[:i] // query and fragment of urls are not a part of the extension
	}
	switch {
	case strings.HasSuffix(base, ".toml"):
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(v); err != nil {
			return fmt.Errorf("can't unmarshal toml config %s: %w", name, err)
		}
	case strings.HasSuffix(base, ".yml") || strings.HasSuffix(base, ".yaml") || !strings.Contains(lastSegment(base), "."):
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("can't unmarshal yaml config %s: %w", name, err)
		}
	default:
		return fmt.Errorf("unknown config format %s", name)
	}
	return nil
}

func lastSegment(loc string) string {
	if i := strings.LastIndexAny(loc, `/\`); i >= 0 {
		return loc[i+1:]
	}
	return loc
}

// Validate checks queries have unique names and text, disabled tables are named
func (c *Config) Validate() error {
	errs := new(multierror.Error)
	names := make(map[string]bool, len(c.Queries))
	for i, q := range c.Queries {
		if strings.TrimSpace(q.Name) == "" {
			errs = multierror.Append(errs, fmt.Errorf("query %d has no name", i))
			continue
		}
		if names[q.Name] {
			errs = multierror.Append(errs, fmt.Errorf("duplicate query name %q", q.Name))
		}
		names[q.Name] = true
		if strings.TrimSpace(q.Query) == "" {
			errs = multierror.Append(errs, fmt.Errorf("query %q is empty", q.Name))
		}
	}
	for i, t := range c.DisabledTables {
		if strings.TrimSpace(t) == "" {
			errs = multierror.Append(errs, fmt.Errorf("disabled table %d has no name", i))
		}
	}
	if c.Concurrency < 0 {
		errs = multierror.Append(errs, fmt.Errorf("negative concurrency %d", c.Concurrency))
	}
	return errs.ErrorOrNil()
}

// Query returns the named query
func (c *Config) Query(name string) (NamedQuery, error) {
	for _, q := range c.Queries {
		if q.Name == name {
			return q, nil
		}
	}
	return NamedQuery{}, fmt.Errorf("%w %q", ErrUnknownQuery, name)
}

// QueryNames returns names of all queries in config order
func (c *Config) QueryNames() []string {
	res := make([]string, 0, len(c.Queries))
	for _, q := range c.Queries {
		res = append(res, q.Name)
	}
	return res
}

// HashCacheEnabled reports the hash cache setting, def if config doesn't set it
func (c *Config) HashCacheEnabled(def bool) bool {
	if c.HashCache == nil {
		return def
	}
	return *c.HashCache
}

// Hash returns sha256 of the config content, empty for config not loaded from data
func (c *Config) Hash() string { return c.hash }

// Location returns file path or url config loaded from
func (c *Config) Location() string { return c.location }
