// Package catalog holds the fixed set of playable samples.
package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// PlaceholderArt is shown while a question is open and for samples without art.
const PlaceholderArt = "question_mark"

var (
	ErrEmptyCatalog = errors.New("catalog has no samples")
	ErrDuplicateID  = errors.New("duplicate sample id")
	ErrInvalidEntry = errors.New("invalid sample entry")
)

//go:embed samples.yaml
var defaultCatalog []byte

type Sample struct {
	ID       int    `yaml:"id" json:"id"`
	Composer string `yaml:"composer" json:"composer"`
	Title    string `yaml:"title" json:"title"`
	Locator  string `yaml:"uri" json:"uri"`
	Art      string `yaml:"art" json:"art"`
}

// Artwork references the composer image for a sample.
type Artwork struct {
	Name        string
	Placeholder bool
}

type document struct {
	Samples []Sample `yaml:"samples"`
}

// Catalog is immutable after load and safe for concurrent reads.
type Catalog struct {
	ids     []int
	samples map[int]Sample
}

// Default loads the embedded catalog.
func Default(mediaDir string) (*Catalog, error) {
	return Parse(defaultCatalog, mediaDir)
}

// Load reads a catalog file. An empty path loads the embedded catalog.
func Load(path, mediaDir string) (*Catalog, error) {
	if strings.TrimSpace(path) == "" {
		return Default(mediaDir)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	return Parse(data, mediaDir)
}

func Parse(data []byte, mediaDir string) (*Catalog, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	if len(doc.Samples) == 0 {
		return nil, ErrEmptyCatalog
	}

	c := &Catalog{
		ids:     make([]int, 0, len(doc.Samples)),
		samples: make(map[int]Sample, len(doc.Samples)),
	}
	for idx, sample := range doc.Samples {
		sample.Composer = strings.TrimSpace(sample.Composer)
		sample.Locator = strings.TrimSpace(sample.Locator)
		if sample.Composer == "" || sample.Locator == "" {
			return nil, fmt.Errorf("%w: entry %d needs composer and uri", ErrInvalidEntry, idx)
		}
		if _, exists := c.samples[sample.ID]; exists {
			return nil, fmt.Errorf("%w: %d", ErrDuplicateID, sample.ID)
		}

		sample.Locator = ResolveLocator(sample.Locator, mediaDir)
		c.samples[sample.ID] = sample
		c.ids = append(c.ids, sample.ID)
	}

	return c, nil
}

// AllSampleIDs returns a fresh copy of every id in catalog order.
func (c *Catalog) AllSampleIDs() []int {
	ids := make([]int, len(c.ids))
	copy(ids, c.ids)
	return ids
}

func (c *Catalog) SampleByID(id int) (Sample, bool) {
	sample, ok := c.samples[id]
	return sample, ok
}

func (c *Catalog) Len() int {
	return len(c.ids)
}

func (c *Catalog) ComposerArt(id int) Artwork {
	sample, ok := c.samples[id]
	if !ok || strings.TrimSpace(sample.Art) == "" {
		return Artwork{Name: PlaceholderArt, Placeholder: true}
	}
	return Artwork{Name: sample.Art}
}

// ResolveLocator joins relative file locators onto mediaDir. URLs and
// absolute paths are returned unchanged.
func ResolveLocator(locator, mediaDir string) string {
	if strings.Contains(locator, "://") || filepath.IsAbs(locator) {
		return locator
	}
	if strings.TrimSpace(mediaDir) == "" {
		return locator
	}
	return filepath.Join(mediaDir, locator)
}
