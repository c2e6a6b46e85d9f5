// Command auvalidate opens one of the bundled plugins through the host entry
// points and runs it through the checks a host performs before it trusts a
// unit: property and parameter queries, format negotiation, rendering,
// bypass, preset recall and teardown.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/justyntemme/augo/examples/gain"
	"github.com/justyntemme/augo/examples/tonegen"
	"github.com/justyntemme/augo/pkg/framework/config"
	"github.com/justyntemme/augo/pkg/framework/debug"
	"github.com/justyntemme/augo/pkg/plugin"
)

type entry struct {
	descriptor func() *config.Descriptor
	build      func(*config.Descriptor) plugin.Plugin
}

var catalog = map[string]entry{
	"gain":    {gain.Descriptor, gain.New},
	"tonegen": {tonegen.Descriptor, tonegen.New},
}

type options struct {
	plugin      string
	configPath  string
	sampleRate  float64
	frames      uint32
	blocks      int
	logLevel    string
	loadPreset  string
	savePreset  string
	showMetrics bool
}

func pluginNames() string {
	names := make([]string, 0, len(catalog))
	for name := range catalog {
		names = append(names, name)
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}

func main() {
	var opts options
	var frames uint
	flag.StringVar(&opts.plugin, "plugin", "gain", "Plugin to validate ("+pluginNames()+")")
	flag.StringVar(&opts.configPath, "config", "", "Descriptor file overriding the embedded one")
	flag.Float64Var(&opts.sampleRate, "rate", 48000, "Sample rate")
	flag.UintVar(&frames, "frames", 0, "Maximum frames per slice (default from the descriptor)")
	flag.IntVar(&opts.blocks, "blocks", 16, "Blocks rendered by the render checks")
	flag.StringVar(&opts.logLevel, "log", "warn", "Log level (debug, info, warn, error, off)")
	flag.StringVar(&opts.loadPreset, "load-preset", "", "Preset file applied before the checks")
	flag.StringVar(&opts.savePreset, "save-preset", "", "Write the validated instance's state to this preset file")
	flag.BoolVar(&opts.showMetrics, "metrics", false, "Print the bridge metrics after the checks")
	flag.Parse()
	opts.frames = uint32(frames)

	ok, err := run(opts, os.Stdout, os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}
	if !ok {
		os.Exit(1)
	}
}

// run validates the selected plugin and writes the report to out. It returns
// false when a check failed and an error when validation could not start.
func run(opts options, out, logOut io.Writer) (bool, error) {
	e, found := catalog[opts.plugin]
	if !found {
		return false, fmt.Errorf("unknown plugin %q (have %s)", opts.plugin, pluginNames())
	}

	desc := e.descriptor()
	if opts.configPath != "" {
		d, err := config.Load(opts.configPath)
		if err != nil {
			return false, err
		}
		desc = d
	}

	level, valid := debug.ParseLevel(opts.logLevel)
	if !valid {
		return false, fmt.Errorf("unknown log level %q", opts.logLevel)
	}
	log := debug.New(level, logOut)
	defer func() { _ = log.Sync() }()
	debug.SetLogger(log)

	if opts.frames == 0 {
		opts.frames = uint32(desc.MaxFrames)
	}
	if opts.blocks < 1 {
		opts.blocks = 1
	}

	v := newValidator(e.build(desc), desc, opts, log)
	v.run()

	if _, err := io.WriteString(out, v.report()); err != nil {
		return false, err
	}
	return !v.failed(), nil
}
