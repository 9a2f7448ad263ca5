package telemetry

import (
	"fmt"
	"io/fs"
	"sync"

	customlog "github.com/rocket-telemetry/dashboard/pkg/log"
)

// Entry names one bundled dataset file.
type Entry struct {
	Name string `yaml:"name" json:"name"`
	File string `yaml:"file" json:"file"`
}

// Summary is what the dataset selector shows for an entry.
type Summary struct {
	Name    string `json:"name"`
	Records int    `json:"records"`
	Error   string `json:"error,omitempty"`
}

// DefaultEntries are the two recordings shipped with the dashboard.
func DefaultEntries() []Entry {
	return []Entry{
		{Name: "Ideal Launch", File: "ideal_rocket_launch.csv"},
		{Name: "Sensor Data", File: "sensor_data_mock.csv"},
	}
}

// Catalog serves bundled datasets by name. Each file is parsed once and the
// resulting Dataset is shared read-only by every session that selects it.
type Catalog struct {
	fsys    fs.FS
	entries []Entry
	logger  customlog.Logger

	mu    sync.Mutex
	cache map[string]*Dataset
}

// NewCatalog creates a catalog reading entries from fsys.
func NewCatalog(fsys fs.FS, entries []Entry, logger customlog.Logger) *Catalog {
	if len(entries) == 0 {
		entries = DefaultEntries()
	}
	return &Catalog{
		fsys:    fsys,
		entries: entries,
		logger:  logger,
		cache:   make(map[string]*Dataset),
	}
}

// Names returns the dataset names in selector order.
func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.entries))
	for _, e := range c.entries {
		names = append(names, e.Name)
	}
	return names
}

// Default is the dataset selected for a fresh session.
func (c *Catalog) Default() string {
	return c.entries[0].Name
}

func (c *Catalog) entry(name string) (Entry, bool) {
	for _, e := range c.entries {
		if e.Name == name {
			return e, true
		}
	}
	return Entry{}, false
}

// Load returns the parsed dataset for name.
func (c *Catalog) Load(name string) (*Dataset, error) {
	e, ok := c.entry(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownDataset, name)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if ds, ok := c.cache[name]; ok {
		return ds, nil
	}

	f, err := c.fsys.Open(e.File)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset %q (%s): %w", name, e.File, err)
	}
	defer func() { _ = f.Close() }()

	ds, err := Parse(name, SourceBundled, f)
	if err != nil {
		c.logger.Errorf("Failed to parse bundled dataset '%s' from %s: %v", name, e.File, err)
		return nil, fmt.Errorf("failed to parse dataset %q: %w", name, err)
	}

	c.cache[name] = ds
	c.logger.Infof("Loaded bundled dataset '%s' (%d records) from %s", name, ds.Len(), e.File)
	return ds, nil
}

// Summaries loads every entry and reports its record count.
func (c *Catalog) Summaries() []Summary {
	out := make([]Summary, 0, len(c.entries))
	for _, e := range c.entries {
		s := Summary{Name: e.Name}
		ds, err := c.Load(e.Name)
		if err != nil {
			s.Error = err.Error()
		} else {
			s.Records = ds.Len()
		}
		out = append(out, s)
	}
	return out
}

// Cached returns how many datasets have been parsed so far.
func (c *Catalog) Cached() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.cache)
}
