package main

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"gopkg.in/yaml.v3"
)

var errUnknownBlock = errors.New("unknown block type")

// Deps are the shared resources blocks may need. They are built once in
// main and handed to every factory.
type Deps struct {
	Logger   *slog.Logger
	Hyprland *HyprlandClient
	Now      func() time.Time
}

type blockFactory func(name string, body *yaml.Node, deps Deps) (Block, error)

// optioner is satisfied by every options struct through its embedded Common.
type optioner interface {
	common() *Common
}

func (c *Common) common() *Common { return c }

var registry = map[string]blockFactory{
	"Raw":            newRawBlock,
	"Clock":          newClockBlock,
	"Volume":         newVolumeBlock,
	"WorkspacesDots": newWorkspacesBlock,
	"Memory":         newMemoryBlock,
	"CPU":            newCPUBlock,
	"Disk":           newDiskBlock,
	"IPAddress":      newIPAddressBlock,
	"Ping":           newPingBlock,
	"Music":          newMusicBlock,
	"Battery":        newBatteryBlock,
	"Wifi":           newWifiBlock,
}

// BlockTypes lists the registered block names.
func BlockTypes() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func decodeOptions(body *yaml.Node, opts optioner) error {
	if err := decodeStrict(body, opts); err != nil {
		return err
	}
	return opts.common().validate()
}

// NewBlock builds one configured block. Failures come back as *ConfigError.
func NewBlock(entry BlockEntry, deps Deps) (Block, error) {
	factory, ok := registry[entry.Name]
	if !ok {
		return nil, &ConfigError{Block: entry.Name, Err: errUnknownBlock}
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	b, err := factory(entry.Name, entry.Body, deps)
	if err != nil {
		return nil, &ConfigError{Block: entry.Name, Err: err}
	}
	return b, nil
}

// BuildLayout builds every configured block. Blocks that fail are skipped
// and their errors returned alongside the usable layout.
func BuildLayout(cfg BlocksConfig, deps Deps) (Layout, []error) {
	layout := Layout{}
	var errs []error
	for _, a := range alignments {
		for _, entry := range cfg[a] {
			b, err := NewBlock(entry, deps)
			if err != nil {
				errs = append(errs, err)
				continue
			}
			layout[a] = append(layout[a], b)
		}
	}
	return layout, errs
}

func polled(name string, c Common, p Producer, deps Deps) *PolledBlock {
	b := NewPolledBlock(name, c, p, deps.Logger)
	b.now = deps.Now
	return b
}

type rawOptions struct {
	Common `yaml:",inline"`
	Text   string `yaml:"text"`
}

func newRawBlock(name string, body *yaml.Node, deps Deps) (Block, error) {
	var opts rawOptions
	if err := decodeOptions(body, &opts); err != nil {
		return nil, err
	}
	return NewStaticBlock(opts.Text, opts.Common), nil
}

const defaultClockLayout = "02 Jan 2006 15:04:05"

type clockOptions struct {
	Common `yaml:",inline"`
	Layout string `yaml:"layout"`
}

func newClockBlock(name string, body *yaml.Node, deps Deps) (Block, error) {
	opts := clockOptions{Common: Common{Interval: 1}, Layout: defaultClockLayout}
	if err := decodeOptions(body, &opts); err != nil {
		return nil, err
	}
	return polled(name, opts.Common, clockProducer(opts.Layout, deps.Now), deps), nil
}

type volumeOptions struct {
	Common  `yaml:",inline"`
	Control string `yaml:"control"`
}

func newVolumeBlock(name string, body *yaml.Node, deps Deps) (Block, error) {
	opts := volumeOptions{Common: Common{Interval: 1}, Control: "Master"}
	if err := decodeOptions(body, &opts); err != nil {
		return nil, err
	}
	return polled(name, opts.Common, volumeProducer(opts.Control), deps), nil
}

type workspaceIcons struct {
	Empty    Icon `yaml:"empty"`
	NonEmpty Icon `yaml:"nonempty"`
	Visible  Icon `yaml:"visible"`
}

type workspacesOptions struct {
	Common    `yaml:",inline"`
	Icons     workspaceIcons `yaml:"icons"`
	Underline string         `yaml:"underline"`
	Spacing   int            `yaml:"spacing"`
	Count     int            `yaml:"count"`
}

func newWorkspacesBlock(name string, body *yaml.Node, deps Deps) (Block, error) {
	if deps.Hyprland == nil {
		return nil, errors.New("hyprland is not available")
	}
	opts := workspacesOptions{
		Common: Common{Interval: 1},
		Icons: workspaceIcons{
			Empty:    Icon{Str: "o"},
			NonEmpty: Icon{Str: "0"},
			Visible:  Icon{Str: "x"},
		},
		Count: 10,
	}
	if err := decodeOptions(body, &opts); err != nil {
		return nil, err
	}
	if opts.Count <= 0 {
		return nil, fmt.Errorf("count must be positive, got %d", opts.Count)
	}
	if opts.Spacing < 0 {
		return nil, fmt.Errorf("spacing must not be negative")
	}
	dots := workspaceDots{
		empty:     formatIcon(opts.Icons.Empty),
		nonEmpty:  formatIcon(opts.Icons.NonEmpty),
		visible:   formatIcon(opts.Icons.Visible),
		underline: opts.Underline,
		spacing:   opts.Spacing,
		count:     opts.Count,
	}
	return polled(name, opts.Common, workspacesProducer(deps.Hyprland, dots), deps), nil
}

type memoryOptions struct {
	Common     `yaml:",inline"`
	Percentage bool `yaml:"percentage"`
}

func newMemoryBlock(name string, body *yaml.Node, deps Deps) (Block, error) {
	opts := memoryOptions{Common: Common{Interval: 5}}
	if err := decodeOptions(body, &opts); err != nil {
		return nil, err
	}
	return polled(name, opts.Common, memoryProducer(opts.Percentage), deps), nil
}

type cpuOptions struct {
	Common `yaml:",inline"`
}

func newCPUBlock(name string, body *yaml.Node, deps Deps) (Block, error) {
	opts := cpuOptions{Common: Common{Interval: 2}}
	if err := decodeOptions(body, &opts); err != nil {
		return nil, err
	}
	return polled(name, opts.Common, cpuProducer, deps), nil
}

type diskOptions struct {
	Common `yaml:",inline"`
	Path   string `yaml:"path"`
}

func newDiskBlock(name string, body *yaml.Node, deps Deps) (Block, error) {
	opts := diskOptions{Common: Common{Interval: 30}, Path: "/"}
	if err := decodeOptions(body, &opts); err != nil {
		return nil, err
	}
	return polled(name, opts.Common, diskProducer(opts.Path), deps), nil
}

type ipAddressOptions struct {
	Common    `yaml:",inline"`
	Interface string `yaml:"interface"`
}

func newIPAddressBlock(name string, body *yaml.Node, deps Deps) (Block, error) {
	opts := ipAddressOptions{Common: Common{Interval: 900}, Interface: "eth0"}
	if err := decodeOptions(body, &opts); err != nil {
		return nil, err
	}
	return polled(name, opts.Common, ipAddressProducer(opts.Interface), deps), nil
}

type pingOptions struct {
	Common `yaml:",inline"`
	Host   string `yaml:"host"`
}

func newPingBlock(name string, body *yaml.Node, deps Deps) (Block, error) {
	opts := pingOptions{Common: Common{Interval: 5}, Host: "8.8.8.8"}
	if err := decodeOptions(body, &opts); err != nil {
		return nil, err
	}
	if opts.Host == "" {
		return nil, errors.New("host must not be empty")
	}
	return polled(name, opts.Common, pingProducer(opts.Host), deps), nil
}

type musicOptions struct {
	Common `yaml:",inline"`
	Player string `yaml:"player"`
}

func newMusicBlock(name string, body *yaml.Node, deps Deps) (Block, error) {
	opts := musicOptions{Common: Common{Interval: 1}}
	if err := decodeOptions(body, &opts); err != nil {
		return nil, err
	}
	return polled(name, opts.Common, musicProducer(opts.Player), deps), nil
}

type batteryIcons struct {
	Charging    string `yaml:"charging"`
	Discharging string `yaml:"discharging"`
}

type batteryOptions struct {
	Common `yaml:",inline"`
	Index  int          `yaml:"index"`
	Icons  batteryIcons `yaml:"icons"`
}

func newBatteryBlock(name string, body *yaml.Node, deps Deps) (Block, error) {
	opts := batteryOptions{
		Common: Common{Interval: 1},
		Icons:  batteryIcons{Charging: chargingGlyph, Discharging: dischargeGlyphs},
	}
	if err := decodeOptions(body, &opts); err != nil {
		return nil, err
	}
	if opts.Index < 0 {
		return nil, fmt.Errorf("index must not be negative")
	}
	if opts.Icons.Discharging == "" {
		return nil, errors.New("icons.discharging must not be empty")
	}
	return polled(name, opts.Common, batteryProducer(opts.Index, opts.Icons), deps), nil
}

type wifiOptions struct {
	Common    `yaml:",inline"`
	Interface string `yaml:"interface"`
}

func newWifiBlock(name string, body *yaml.Node, deps Deps) (Block, error) {
	opts := wifiOptions{Common: Common{Interval: 1}, Interface: "wlan0"}
	if err := decodeOptions(body, &opts); err != nil {
		return nil, err
	}
	return polled(name, opts.Common, wifiProducer(opts.Interface), deps), nil
}
