package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sync/atomic"

	"github.com/adrg/xdg"
	"github.com/pelletier/go-toml/v2"

	"github.com/stripwm/stripwm/internal/wmerr"
)

// envOverride is the environment variable that, if set to an existing
// file path, takes precedence over the XDG search path.
const envOverride = "STRIPWM_CONFIG"

const configRelPath = "stripwm/config.toml"

// Config wraps a loaded Document behind an atomic pointer so a
// hot-reload can swap the whole document in one store, readable by any
// number of concurrent readers without a lock — the same no-mutex,
// single-writer discipline the core uses everywhere else.
type Config struct {
	inner atomic.Pointer[resolved]
}

type resolved struct {
	doc     Document
	windows []compiledWindowParams
}

type compiledWindowParams struct {
	params WindowParams
	title  *regexp.Regexp
}

// ResolveConfigPath returns the path for Load to read: the
// envOverride variable if it names an existing file, else the XDG
// config search path, else the XDG default location (which may not
// exist yet).
func ResolveConfigPath() string {
	if p := os.Getenv(envOverride); p != "" {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	if p, err := xdg.SearchConfigFile(configRelPath); err == nil {
		return p
	}
	p, err := xdg.ConfigFile(configRelPath)
	if err != nil {
		return filepath.Join(".", configRelPath)
	}
	return p
}

// Load reads and parses the TOML document at path. A missing file is
// not an error: it yields DefaultConfig(), treating config as optional.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return DefaultConfig(), nil
	}
	if err != nil {
		return nil, wmerr.Wrap(wmerr.InvalidConfig, "config.Load", err)
	}

	var doc Document
	if err := toml.Unmarshal(data, &doc); err != nil {
		return nil, wmerr.Wrap(wmerr.InvalidConfig, "config.Load", err)
	}
	fillDefaults(&doc)

	if errs := Validate(&doc); len(errs) > 0 {
		return nil, wmerr.Wrap(wmerr.InvalidConfig, "config.Load", combineErrors(errs))
	}

	c := &Config{}
	if err := c.set(doc); err != nil {
		return nil, err
	}
	return c, nil
}

// DefaultConfig returns a Config with upstream defaults and no
// keybindings or window rules, used when no config file is present.
func DefaultConfig() *Config {
	var doc Document
	fillDefaults(&doc)
	c := &Config{}
	_ = c.set(doc)
	return c
}

func fillDefaults(doc *Document) {
	if doc.Options.PresetColumnWidths == nil {
		doc.Options.PresetColumnWidths = defaultPresetColumnWidths()
	}
}

func (c *Config) set(doc Document) error {
	r := &resolved{doc: doc}
	for name, wp := range doc.Windows {
		re, err := regexp.Compile(wp.Title)
		if err != nil {
			return wmerr.Wrap(wmerr.InvalidConfig, fmt.Sprintf("config.set[%s]", name), err)
		}
		r.windows = append(r.windows, compiledWindowParams{params: wp, title: re})
	}
	c.inner.Store(r)
	return nil
}

// Reload re-parses path and swaps it in, leaving the previous document
// in place on failure (§7 InvalidConfig: "current config retained").
func (c *Config) Reload(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return wmerr.Wrap(wmerr.InvalidConfig, "Config.Reload", err)
	}
	var doc Document
	if err := toml.Unmarshal(data, &doc); err != nil {
		return wmerr.Wrap(wmerr.InvalidConfig, "Config.Reload", err)
	}
	fillDefaults(&doc)
	if errs := Validate(&doc); len(errs) > 0 {
		return wmerr.Wrap(wmerr.InvalidConfig, "Config.Reload", combineErrors(errs))
	}
	return c.set(doc)
}

func (c *Config) options() *MainOptions { return &c.inner.Load().doc.Options }

// FocusFollowsMouse defaults to true when unset.
func (c *Config) FocusFollowsMouse() bool {
	if v := c.options().FocusFollowsMouse; v != nil {
		return *v
	}
	return true
}

// MouseFollowsFocus defaults to true when unset.
func (c *Config) MouseFollowsFocus() bool {
	if v := c.options().MouseFollowsFocus; v != nil {
		return *v
	}
	return true
}

// AutoCenter defaults to false when unset.
func (c *Config) AutoCenter() bool {
	v := c.options().AutoCenter
	return v != nil && *v
}

// FreeSlide defaults to false when unset (Open Question decision #2).
func (c *Config) FreeSlide() bool {
	v := c.options().FreeSlide
	return v != nil && *v
}

// SwipeGestureFingers returns the configured finger count, if any.
func (c *Config) SwipeGestureFingers() (int, bool) {
	if v := c.options().SwipeGestureFingers; v != nil {
		return *v, true
	}
	return 0, false
}

// SliverHeight clamps to [0.1, 1.0], defaulting to 1.0.
func (c *Config) SliverHeight() float64 {
	v := 1.0
	if sh := c.options().SliverHeight; sh != nil {
		v = *sh
	}
	if v < 0.1 {
		return 0.1
	}
	if v > 1.0 {
		return 1.0
	}
	return v
}

// SliverWidth defaults to 5, floored at 1.
func (c *Config) SliverWidth() int {
	v := 5
	if sw := c.options().SliverWidth; sw != nil {
		v = *sw
	}
	if v < 1 {
		return 1
	}
	return v
}

// EdgePadding returns (top, right, bottom, left), defaulting to 0.
func (c *Config) EdgePadding() (top, right, bottom, left int) {
	o := c.options()
	get := func(p *int) int {
		if p == nil {
			return 0
		}
		return *p
	}
	return get(o.PaddingTop), get(o.PaddingRight), get(o.PaddingBottom), get(o.PaddingLeft)
}

// PresetColumnWidths returns the resize cycle.
func (c *Config) PresetColumnWidths() []float64 {
	return c.options().PresetColumnWidths
}

// AnimationSpeed returns the configured speed, or a very large value
// when unset so animation effectively jumps to target immediately.
func (c *Config) AnimationSpeed() float64 {
	if v := c.options().AnimationSpeed; v != nil {
		if *v < 5 {
			return 5
		}
		return *v
	}
	return 1_000_000.0
}

// FindWindowProperties returns every WindowParams rule matching title
// and bundleID. The rules are collected from the map of rule names, so
// the order of the returned matches is not defined; where several
// matches set the same field, which one the caller's last-write-wins
// fold keeps is not defined either.
func (c *Config) FindWindowProperties(title, bundleID string) []WindowParams {
	var out []WindowParams
	for _, w := range c.inner.Load().windows {
		if w.params.BundleID != nil && *w.params.BundleID != bundleID {
			continue
		}
		if !w.title.MatchString(title) {
			continue
		}
		out = append(out, w.params)
	}
	return out
}

func combineErrors(errs []error) error {
	msg := ""
	for i, e := range errs {
		if i > 0 {
			msg += "; "
		}
		msg += e.Error()
	}
	return fmt.Errorf("%s", msg)
}
