// Package greenhost answers whether a site appears to run on green hosting.
// It matches hostnames against a bundled dataset of providers known to run
// on renewable energy; this is a placeholder dataset, not a live registry
// lookup, and operators can extend it from a YAML file.
package greenhost

import (
	"fmt"
	"net/url"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// defaultHosts are providers and platforms widely reported as running on
// renewable or offset energy.
var defaultHosts = []string{
	"netlify.com",
	"netlify.app",
	"vercel.com",
	"vercel.app",
	"cloudflare.com",
	"pages.dev",
	"google.com",
	"wikipedia.org",
	"wordpress.com",
	"automattic.com",
	"squarespace.com",
	"shopify.com",
	"github.io",
	"gitlab.io",
	"webflow.com",
	"infomaniak.com",
	"greengeeks.com",
}

// hostsFile is the YAML shape for operator-provided additions.
type hostsFile struct {
	Hosts []string `yaml:"hosts"`
}

// Checker reports whether a URL's host appears in the green hosting dataset.
type Checker struct {
	hosts map[string]bool
}

// New returns a Checker with the bundled dataset.
func New() *Checker {
	c := &Checker{hosts: make(map[string]bool, len(defaultHosts))}
	c.Add(defaultHosts...)
	return c
}

// Load reads extra hosts from a YAML file and merges them with the bundled
// dataset. An empty path or a missing file returns the defaults.
func Load(path string) (*Checker, error) {
	c := New()
	if path == "" {
		return c, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return c, nil
		}
		return nil, fmt.Errorf("reading green hosts file: %w", err)
	}

	var f hostsFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing green hosts file: %w", err)
	}
	c.Add(f.Hosts...)

	return c, nil
}

// Add registers additional hosts with the checker.
func (c *Checker) Add(hosts ...string) {
	for _, h := range hosts {
		h = strings.ToLower(strings.TrimSpace(h))
		h = strings.TrimPrefix(h, "www.")
		if h != "" {
			c.hosts[h] = true
		}
	}
}

// IsGreen reports whether the URL's hostname, or a parent domain of it,
// is in the dataset. A leading www. never affects the answer.
func (c *Checker) IsGreen(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	host := strings.ToLower(u.Hostname())
	if host == "" {
		// Bare hostnames parse with an empty Host; treat the input itself
		// as the hostname.
		host = strings.ToLower(strings.TrimSpace(rawURL))
	}
	host = strings.TrimPrefix(host, "www.")

	if c.hosts[host] {
		return true
	}
	for {
		i := strings.Index(host, ".")
		if i < 0 {
			return false
		}
		host = host[i+1:]
		if c.hosts[host] {
			return true
		}
	}
}
