package main

import (
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"

	"github.com/firewire-audio/dice"
	"github.com/firewire-audio/dice/fw"
)

var (
	modelName string
	timeoutMs int
)

var rootCmd = &cobra.Command{
	Use:   "dicectl",
	Short: "Control DICE firewire audio interfaces",
	Long: `dicectl is a command-line tool for controlling audio interfaces built on
the TCAT DICE chipset family via the Linux firewire character device.

It provides access to clock selection, the routing matrix, the mixer,
standalone configuration, and signal metering.`,
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List firewire devices",
	RunE: func(cmd *cobra.Command, args []string) error {
		paths, err := fw.DevicePaths()
		if err != nil {
			return err
		}

		fmt.Println("available firewire devices:")
		for _, path := range paths {
			dev, err := fw.Open(path)
			if err != nil {
				fmt.Printf("  %s: %v\n", path, err)
				continue
			}

			fmt.Printf("  %s: GUID %016x\n", path, dev.GUID())
			dev.Close()
		}

		return nil
	},
}

var infoCmd = &cobra.Command{
	Use:   "info <device>",
	Short: "Show device identity, clock state and capabilities",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dev, unit, err := openUnit(args[0])
		if err != nil {
			return err
		}
		defer dev.Close()

		fmt.Printf("device:   %s (GUID %016x)\n", dev.Path(), dev.GUID())

		if nickname, err := unit.ReadNickname(timeoutMs); err == nil {
			fmt.Printf("nickname: %s\n", nickname)
		}
		if version, err := unit.ReadVersion(timeoutMs); err == nil {
			fmt.Printf("version:  %d.%d.%d.%d\n",
				version>>24, (version>>16)&0xff, (version>>8)&0xff, version&0xff)
		}

		if err := printClockState(unit); err != nil {
			return err
		}

		if err := unit.ReadExtensionSections(timeoutMs); err != nil {
			fmt.Println("extension: not present")
			return nil
		}
		if err := unit.ReadCaps(timeoutMs); err != nil {
			return err
		}

		caps := unit.Caps
		fmt.Printf("asic:     %s\n", caps.General.Asic)
		fmt.Printf("router:   %d entries max, readonly=%v\n",
			caps.Router.MaximumEntryCount, caps.Router.IsReadonly)
		fmt.Printf("mixer:    %d inputs, %d outputs, readonly=%v\n",
			caps.Mixer.InputCount, caps.Mixer.OutputCount, caps.Mixer.IsReadonly)
		fmt.Printf("streams:  %d tx, %d rx max\n",
			caps.General.MaxTxStreams, caps.General.MaxRxStreams)

		return nil
	},
}

var clockCmd = &cobra.Command{
	Use:   "clock",
	Short: "Inspect or change the sampling clock",
}

var clockGetCmd = &cobra.Command{
	Use:   "get <device>",
	Short: "Show the current clock configuration",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dev, unit, err := openUnit(args[0])
		if err != nil {
			return err
		}
		defer dev.Close()

		return printClockState(unit)
	},
}

var clockSetCmd = &cobra.Command{
	Use:   "set <device> <rate-hz> <source>",
	Short: "Select sampling rate and clock source",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		dev, unit, err := openUnit(args[0])
		if err != nil {
			return err
		}
		defer dev.Close()

		freq, err := strconv.ParseUint(args[1], 10, 32)
		if err != nil {
			return fmt.Errorf("invalid rate: %s", args[1])
		}
		rate, err := dice.ClockRateFromFrequency(uint32(freq))
		if err != nil {
			return err
		}

		src, err := findClockSource(unit, args[2])
		if err != nil {
			return err
		}

		config, err := unit.ReadClockConfig(timeoutMs)
		if err != nil {
			return err
		}
		config.Rate = rate
		config.Source = src

		if err := unit.WriteClockConfig(config, timeoutMs); err != nil {
			return err
		}

		return printClockState(unit)
	},
}

var routingCmd = &cobra.Command{
	Use:   "routing",
	Short: "Inspect or change the routing matrix",
}

var routingShowCmd = &cobra.Command{
	Use:   "show <device>",
	Short: "Show the active routing entries",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dev, _, t, err := openTcd22xx(args[0])
		if err != nil {
			return err
		}
		defer dev.Close()

		fmt.Printf("routing at %s rate mode:\n", t.State.RateMode())
		for _, entry := range t.State.RouterEntries {
			fmt.Printf("  %-12s <- %s\n", entry.Dst, entry.Src)
		}
		fmt.Printf("\ntotal: %d entries\n", len(t.State.RouterEntries))

		return nil
	},
}

var routingSetCmd = &cobra.Command{
	Use:   "set <device> <destination> <source>",
	Short: "Route a source block to a destination block",
	Long: `Route a source block to a destination block. Blocks are named as shown
by 'routing show', e.g. 'Ins-0-3' or 'Stream-A-1'. A source of 'None'
removes the route.`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		dev, _, t, err := openTcd22xx(args[0])
		if err != nil {
			return err
		}
		defer dev.Close()

		dst, err := dice.ParseDstBlk(args[1])
		if err != nil {
			return err
		}
		src, err := dice.ParseSrcBlk(args[2])
		if err != nil {
			return err
		}

		entries := slices.Clone(t.State.RouterEntries)
		pos := slices.IndexFunc(entries, func(e dice.RouterEntry) bool {
			return e.Dst == dst
		})
		if pos >= 0 {
			entries[pos].Src = src
		} else {
			entries = append(entries, dice.RouterEntry{Dst: dst, Src: src})
		}

		if err := t.UpdateRouterEntries(entries, timeoutMs); err != nil {
			return err
		}

		fmt.Printf("routing updated: %s <- %s\n", dst, src)

		return nil
	},
}

var mixerCmd = &cobra.Command{
	Use:   "mixer",
	Short: "Inspect or change the mixer coefficients",
}

var mixerShowCmd = &cobra.Command{
	Use:   "show <device>",
	Short: "Show the mixer coefficient matrix",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dev, _, t, err := openTcd22xx(args[0])
		if err != nil {
			return err
		}
		defer dev.Close()

		for out, row := range t.State.MixerCache {
			fmt.Printf("out %2d:", out)
			for _, coef := range row {
				fmt.Printf(" %6d", coef)
			}
			fmt.Println()
		}

		return nil
	},
}

var mixerSetCmd = &cobra.Command{
	Use:   "set <device> <output> <input> <coefficient>",
	Short: "Set one mixer coefficient",
	Args:  cobra.ExactArgs(4),
	RunE: func(cmd *cobra.Command, args []string) error {
		dev, _, t, err := openTcd22xx(args[0])
		if err != nil {
			return err
		}
		defer dev.Close()

		out, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid output number: %s", args[1])
		}
		in, err := strconv.Atoi(args[2])
		if err != nil {
			return fmt.Errorf("invalid input number: %s", args[2])
		}
		coef, err := strconv.ParseInt(args[3], 10, 16)
		if err != nil {
			return fmt.Errorf("invalid coefficient: %s", args[3])
		}

		if out < 0 || out >= len(t.State.MixerCache) {
			return fmt.Errorf("output %d out of range", out)
		}
		row := slices.Clone(t.State.MixerCache[out])
		if in < 0 || in >= len(row) {
			return fmt.Errorf("input %d out of range", in)
		}
		row[in] = int16(coef)

		if err := t.UpdateMixerRow(out, row, timeoutMs); err != nil {
			return err
		}

		fmt.Printf("mixer updated: out %d in %d = %d\n", out, in, coef)

		return nil
	},
}

var standaloneCmd = &cobra.Command{
	Use:   "standalone",
	Short: "Inspect or change the standalone configuration",
}

var standaloneShowCmd = &cobra.Command{
	Use:   "show <device>",
	Short: "Show the standalone configuration",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dev, unit, err := openExtension(args[0])
		if err != nil {
			return err
		}
		defer dev.Close()

		labels, err := unit.ReadClockSourceLabels(timeoutMs)
		if err != nil {
			return err
		}

		if src, err := unit.ReadStandaloneClockSource(timeoutMs); err == nil {
			fmt.Printf("clock-source:    %s\n", dice.SourceLabel(src, labels))
		}
		if high, err := unit.ReadStandaloneAesHighRate(timeoutMs); err == nil {
			fmt.Printf("aes-high-rate:   %v\n", high)
		}
		if mode, err := unit.ReadStandaloneAdatMode(timeoutMs); err == nil {
			fmt.Printf("adat-mode:       %s\n", mode)
		}
		if mode, rate, err := unit.ReadStandaloneWordClockParams(timeoutMs); err == nil {
			fmt.Printf("word-clock:      %s, rate %d/%d\n", mode, rate.Numerator, rate.Denominator)
		}
		if rate, err := unit.ReadStandaloneInternalRate(timeoutMs); err == nil {
			fmt.Printf("internal-rate:   %s\n", rate)
		}

		return nil
	},
}

var standaloneSetCmd = &cobra.Command{
	Use:   "set <device> <parameter> <value>",
	Short: "Set one standalone parameter",
	Long: `Set one standalone parameter. Parameters:

  clock-source <source>        clock source when no host is attached
  aes-high-rate <on|off>       S/PDIF high rate mode
  adat-mode <normal|smux2|smux4|auto>
  word-clock-mode <normal|low|middle|high>
  word-clock-rate <num>/<den>  rational word clock multiplier
  internal-rate <rate-hz>      rate under the internal clock`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		dev, unit, err := openExtension(args[0])
		if err != nil {
			return err
		}
		defer dev.Close()

		value := args[2]
		switch args[1] {
		case "clock-source":
			src, err := findClockSource(unit, value)
			if err != nil {
				return err
			}

			return unit.WriteStandaloneClockSource(src, timeoutMs)

		case "aes-high-rate":
			enable, err := parseOnOff(value)
			if err != nil {
				return err
			}

			return unit.WriteStandaloneAesHighRate(enable, timeoutMs)

		case "adat-mode":
			mode, err := parseAdatMode(value)
			if err != nil {
				return err
			}

			return unit.WriteStandaloneAdatMode(mode, timeoutMs)

		case "word-clock-mode":
			mode, err := parseWordClockMode(value)
			if err != nil {
				return err
			}
			_, rate, err := unit.ReadStandaloneWordClockParams(timeoutMs)
			if err != nil {
				return err
			}

			return unit.WriteStandaloneWordClockParams(mode, rate, timeoutMs)

		case "word-clock-rate":
			rate, err := parseWordClockRate(value)
			if err != nil {
				return err
			}
			mode, _, err := unit.ReadStandaloneWordClockParams(timeoutMs)
			if err != nil {
				return err
			}

			return unit.WriteStandaloneWordClockParams(mode, rate, timeoutMs)

		case "internal-rate":
			freq, err := strconv.ParseUint(value, 10, 32)
			if err != nil {
				return fmt.Errorf("invalid rate: %s", value)
			}
			rate, err := dice.ClockRateFromFrequency(uint32(freq))
			if err != nil {
				return err
			}

			return unit.WriteStandaloneInternalRate(rate, timeoutMs)
		}

		return fmt.Errorf("unknown parameter %q", args[1])
	},
}

var meterCmd = &cobra.Command{
	Use:   "meter <device>",
	Short: "Show per-route peak levels and mixer saturation",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dev, unit, t, err := openTcd22xx(args[0])
		if err != nil {
			return err
		}
		defer dev.Close()

		if err := t.CachePeaks(timeoutMs); err != nil {
			return err
		}

		for _, entry := range t.State.RouterEntries {
			fmt.Printf("  %-12s <- %-12s %4d\n", entry.Dst, entry.Src, entry.Peak)
		}

		if saturation, err := unit.ReadMixerSaturation(timeoutMs); err == nil {
			saturated := make([]string, 0)
			for out, sat := range saturation {
				if sat {
					saturated = append(saturated, strconv.Itoa(out))
				}
			}
			if len(saturated) > 0 {
				fmt.Printf("\nmixer saturation on outputs: %s\n", strings.Join(saturated, ", "))
			}
		}

		return nil
	},
}

// snapshot is the TOML document written by 'snapshot save'.
type snapshot struct {
	Model  string          `toml:"model"`
	RateHz uint32          `toml:"rate_hz"`
	Source string          `toml:"source"`
	Router []routeSnapshot `toml:"router"`
	Mixer  [][]int16       `toml:"mixer"`
}

type routeSnapshot struct {
	Dst string `toml:"dst"`
	Src string `toml:"src"`
}

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Save or restore clock, routing and mixer state",
}

var snapshotSaveCmd = &cobra.Command{
	Use:   "save <device> <file>",
	Short: "Save the device state to a TOML file",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		dev, unit, t, err := openTcd22xx(args[0])
		if err != nil {
			return err
		}
		defer dev.Close()

		config, err := unit.ReadClockConfig(timeoutMs)
		if err != nil {
			return err
		}
		freq, err := config.Rate.Frequency()
		if err != nil {
			return err
		}
		labels, err := unit.ReadClockSourceLabels(timeoutMs)
		if err != nil {
			return err
		}

		snap := snapshot{
			Model:  t.Spec().Name,
			RateHz: freq,
			Source: dice.SourceLabel(config.Source, labels),
			Mixer:  t.State.MixerCache,
		}
		for _, entry := range t.State.RouterEntries {
			snap.Router = append(snap.Router, routeSnapshot{
				Dst: entry.Dst.String(),
				Src: entry.Src.String(),
			})
		}

		data, err := toml.Marshal(snap)
		if err != nil {
			return err
		}
		if err := os.WriteFile(args[1], data, 0o644); err != nil {
			return err
		}

		fmt.Printf("saved %d routes, %d mixer rows to %s\n",
			len(snap.Router), len(snap.Mixer), args[1])

		return nil
	},
}

var snapshotLoadCmd = &cobra.Command{
	Use:   "load <device> <file>",
	Short: "Restore device state from a TOML file",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[1])
		if err != nil {
			return err
		}

		var snap snapshot
		if err := toml.Unmarshal(data, &snap); err != nil {
			return fmt.Errorf("parse %s: %w", args[1], err)
		}

		if modelName == "" {
			modelName = snap.Model
		}

		dev, unit, t, err := openTcd22xx(args[0])
		if err != nil {
			return err
		}
		defer dev.Close()

		rate, err := dice.ClockRateFromFrequency(snap.RateHz)
		if err != nil {
			return err
		}
		src, err := findClockSource(unit, snap.Source)
		if err != nil {
			return err
		}

		config, err := unit.ReadClockConfig(timeoutMs)
		if err != nil {
			return err
		}
		if config.Rate != rate || config.Source != src {
			config.Rate = rate
			config.Source = src
			if err := unit.WriteClockConfig(config, timeoutMs); err != nil {
				return err
			}
			if err := t.Cache(rate.Mode(), timeoutMs); err != nil {
				return err
			}
		}

		entries := make([]dice.RouterEntry, 0, len(snap.Router))
		for _, route := range snap.Router {
			dst, err := dice.ParseDstBlk(route.Dst)
			if err != nil {
				return err
			}
			src, err := dice.ParseSrcBlk(route.Src)
			if err != nil {
				return err
			}
			entries = append(entries, dice.RouterEntry{Dst: dst, Src: src})
		}
		if err := t.UpdateRouterEntries(entries, timeoutMs); err != nil {
			return err
		}

		for out, row := range snap.Mixer {
			if out >= len(t.State.MixerCache) {
				break
			}
			if err := t.UpdateMixerRow(out, row, timeoutMs); err != nil {
				return err
			}
		}

		fmt.Printf("restored %d routes, %d mixer rows from %s\n",
			len(snap.Router), len(snap.Mixer), args[1])

		return nil
	},
}

func openUnit(path string) (*fw.Device, *dice.Unit, error) {
	dev, err := fw.Open(path)
	if err != nil {
		return nil, nil, err
	}

	unit := dice.NewUnit(dev)
	if err := unit.ReadSections(timeoutMs); err != nil {
		dev.Close()
		return nil, nil, err
	}

	return dev, unit, nil
}

func openExtension(path string) (*fw.Device, *dice.Unit, error) {
	dev, unit, err := openUnit(path)
	if err != nil {
		return nil, nil, err
	}

	if err := unit.ReadExtensionSections(timeoutMs); err != nil {
		dev.Close()
		return nil, nil, err
	}
	if err := unit.ReadCaps(timeoutMs); err != nil {
		dev.Close()
		return nil, nil, err
	}

	return dev, unit, nil
}

func openTcd22xx(path string) (*fw.Device, *dice.Unit, *dice.Tcd22xx, error) {
	dev, unit, err := openExtension(path)
	if err != nil {
		return nil, nil, nil, err
	}

	config, err := unit.ReadClockConfig(timeoutMs)
	if err != nil {
		dev.Close()
		return nil, nil, nil, err
	}

	t := dice.NewTcd22xx(unit, dice.ModelByName(modelName))
	if err := t.Cache(config.Rate.Mode(), timeoutMs); err != nil {
		dev.Close()
		return nil, nil, nil, err
	}

	return dev, unit, t, nil
}

func printClockState(unit *dice.Unit) error {
	config, err := unit.ReadClockConfig(timeoutMs)
	if err != nil {
		return err
	}
	status, err := unit.ReadClockStatus(timeoutMs)
	if err != nil {
		return err
	}
	labels, err := unit.ReadClockSourceLabels(timeoutMs)
	if err != nil {
		return err
	}

	locked := "unlocked"
	if status.SourceIsLocked {
		locked = "locked"
	}
	fmt.Printf("clock:    %s from %s (%s)\n",
		config.Rate, dice.SourceLabel(config.Source, labels), locked)

	if rate, err := unit.ReadCurrentRate(timeoutMs); err == nil {
		fmt.Printf("measured: %d Hz\n", rate)
	}

	return nil
}

func findClockSource(unit *dice.Unit, name string) (dice.ClockSource, error) {
	caps, err := unit.ReadClockCaps(timeoutMs)
	if err != nil {
		return 0, err
	}
	labels, err := unit.ReadClockSourceLabels(timeoutMs)
	if err != nil {
		return 0, err
	}

	for _, src := range caps.SrcEntries(labels) {
		if strings.EqualFold(dice.SourceLabel(src, labels), name) ||
			strings.EqualFold(src.String(), name) {
			return src, nil
		}
	}

	return 0, fmt.Errorf("clock source %q not supported by the device", name)
}

func parseOnOff(value string) (bool, error) {
	switch strings.ToLower(value) {
	case "on", "true", "1", "yes":
		return true, nil
	case "off", "false", "0", "no":
		return false, nil
	}

	return false, fmt.Errorf("invalid value: %s (use on/off)", value)
}

func parseAdatMode(value string) (dice.AdatMode, error) {
	switch strings.ToLower(value) {
	case "normal":
		return dice.AdatModeNormal, nil
	case "smux2":
		return dice.AdatModeSmux2, nil
	case "smux4":
		return dice.AdatModeSmux4, nil
	case "auto":
		return dice.AdatModeAuto, nil
	}

	return 0, fmt.Errorf("invalid ADAT mode: %s", value)
}

func parseWordClockMode(value string) (dice.WordClockMode, error) {
	switch strings.ToLower(value) {
	case "normal":
		return dice.WordClockModeNormal, nil
	case "low":
		return dice.WordClockModeLow, nil
	case "middle":
		return dice.WordClockModeMiddle, nil
	case "high":
		return dice.WordClockModeHigh, nil
	}

	return 0, fmt.Errorf("invalid word clock mode: %s", value)
}

func parseWordClockRate(value string) (dice.WordClockRate, error) {
	num, den, ok := strings.Cut(value, "/")
	if !ok {
		return dice.WordClockRate{}, fmt.Errorf("invalid rate: %s (use <num>/<den>)", value)
	}

	numerator, err := strconv.ParseUint(num, 10, 16)
	if err != nil || numerator == 0 {
		return dice.WordClockRate{}, fmt.Errorf("invalid numerator: %s", num)
	}
	denominator, err := strconv.ParseUint(den, 10, 16)
	if err != nil || denominator == 0 {
		return dice.WordClockRate{}, fmt.Errorf("invalid denominator: %s", den)
	}

	return dice.WordClockRate{
		Numerator:   uint16(numerator),
		Denominator: uint16(denominator),
	}, nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&modelName, "model", "", "Model catalog to use (defaults to the generic catalog)")
	rootCmd.PersistentFlags().IntVar(&timeoutMs, "timeout", 200, "Transaction timeout in milliseconds")

	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(infoCmd)
	rootCmd.AddCommand(clockCmd)
	rootCmd.AddCommand(routingCmd)
	rootCmd.AddCommand(mixerCmd)
	rootCmd.AddCommand(standaloneCmd)
	rootCmd.AddCommand(meterCmd)
	rootCmd.AddCommand(snapshotCmd)

	clockCmd.AddCommand(clockGetCmd)
	clockCmd.AddCommand(clockSetCmd)
	routingCmd.AddCommand(routingShowCmd)
	routingCmd.AddCommand(routingSetCmd)
	mixerCmd.AddCommand(mixerShowCmd)
	mixerCmd.AddCommand(mixerSetCmd)
	standaloneCmd.AddCommand(standaloneShowCmd)
	standaloneCmd.AddCommand(standaloneSetCmd)
	snapshotCmd.AddCommand(snapshotSaveCmd)
	snapshotCmd.AddCommand(snapshotLoadCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
