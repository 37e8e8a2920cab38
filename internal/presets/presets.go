// Package presets holds the catalog of audiences, rapid experiment designs,
// features and channels that experiments are configured from.
package presets

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"gopkg.in/yaml.v3"
)

// DefaultDesign is the design used when a bucket request names none.
const DefaultDesign = "empty_aa"

//go:embed presets.yaml
var defaultCatalog []byte

type Audience struct {
	Slug        string `yaml:"slug" json:"slug"`
	Name        string `yaml:"name" json:"name"`
	Description string `yaml:"description" json:"description"`
	Targeting   string `yaml:"targeting" json:"targeting"`
}

type BucketConfig struct {
	Count             int    `yaml:"count" json:"count"`
	Namespace         string `yaml:"namespace" json:"namespace"`
	RandomizationUnit string `yaml:"randomization_unit" json:"randomizationUnit"`
	Start             int    `yaml:"start" json:"start"`
	Total             int    `yaml:"total" json:"total"`
}

type Design struct {
	Slug         string       `yaml:"slug" json:"slug"`
	Name         string       `yaml:"name" json:"name"`
	Description  string       `yaml:"description" json:"description"`
	BucketConfig BucketConfig `yaml:"bucket_config" json:"bucketConfig"`
}

type Feature struct {
	Slug        string `yaml:"slug" json:"slug"`
	Name        string `yaml:"name" json:"name"`
	Description string `yaml:"description" json:"description"`
}

type Catalog struct {
	Audiences []Audience `yaml:"audiences" json:"audiences"`
	Designs   []Design   `yaml:"designs" json:"designs"`
	Features  []Feature  `yaml:"features" json:"features"`
	Channels  []string   `yaml:"channels" json:"channels"`
}

// Load decodes and validates a catalog. Unknown keys are rejected.
func Load(r io.Reader) (*Catalog, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var c Catalog
	if err := dec.Decode(&c); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("empty presets catalog")
		}
		return nil, fmt.Errorf("failed to decode presets: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// LoadFile reads a catalog from path.
func LoadFile(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open presets: %w", err)
	}
	defer f.Close()
	return Load(f)
}

var (
	defaultOnce sync.Once
	defaultCat  *Catalog
	defaultErr  error
)

// Default returns the embedded catalog.
func Default() (*Catalog, error) {
	defaultOnce.Do(func() {
		defaultCat, defaultErr = Load(bytes.NewReader(defaultCatalog))
	})
	return defaultCat, defaultErr
}

// Resolve loads path when set, the embedded catalog otherwise.
func Resolve(path string) (*Catalog, error) {
	if path == "" {
		return Default()
	}
	return LoadFile(path)
}

func (c *Catalog) Validate() error {
	seen := make(map[string]bool)
	for _, a := range c.Audiences {
		if a.Slug == "" || a.Targeting == "" {
			return fmt.Errorf("audience %q needs a slug and a targeting expression", a.Slug)
		}
		if seen["audience:"+a.Slug] {
			return fmt.Errorf("duplicate audience %q", a.Slug)
		}
		seen["audience:"+a.Slug] = true
	}
	for _, d := range c.Designs {
		if d.Slug == "" {
			return fmt.Errorf("design without slug")
		}
		if seen["design:"+d.Slug] {
			return fmt.Errorf("duplicate design %q", d.Slug)
		}
		seen["design:"+d.Slug] = true
		bc := d.BucketConfig
		if bc.Total <= 0 || bc.Count < 0 || bc.Count > bc.Total {
			return fmt.Errorf("design %q: bucket count %d outside 0..%d", d.Slug, bc.Count, bc.Total)
		}
	}
	for _, f := range c.Features {
		if seen["feature:"+f.Slug] {
			return fmt.Errorf("duplicate feature %q", f.Slug)
		}
		seen["feature:"+f.Slug] = true
	}
	return nil
}

func (c *Catalog) Audience(slug string) (Audience, bool) {
	for _, a := range c.Audiences {
		if a.Slug == slug {
			return a, true
		}
	}
	return Audience{}, false
}

// Targeting returns the targeting expression of an audience.
func (c *Catalog) Targeting(audience string) (string, bool) {
	a, ok := c.Audience(audience)
	return a.Targeting, ok
}

func (c *Catalog) Design(slug string) (Design, bool) {
	for _, d := range c.Designs {
		if d.Slug == slug {
			return d, true
		}
	}
	return Design{}, false
}

func (c *Catalog) Feature(slug string) (Feature, bool) {
	for _, f := range c.Features {
		if f.Slug == slug {
			return f, true
		}
	}
	return Feature{}, false
}

// UnknownFeatures returns the slugs not present in the catalog.
func (c *Catalog) UnknownFeatures(slugs []string) []string {
	var unknown []string
	for _, s := range slugs {
		if _, ok := c.Feature(s); !ok {
			unknown = append(unknown, s)
		}
	}
	return unknown
}
