package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/firewire-audio/dice"
	"github.com/firewire-audio/dice/fw"
)

func main() {
	var (
		device  string
		timeout int
		rom     bool
	)

	flag.StringVar(&device, "device", "/dev/fw1", "The firewire character device.")
	flag.IntVar(&timeout, "timeout", 200, "Transaction timeout in milliseconds.")
	flag.BoolVar(&rom, "rom", false, "Dump the configuration ROM quadlets.")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		fmt.Fprintln(os.Stderr, "Dumps the register section tables of a DICE firewire device.")
		fmt.Fprintln(os.Stderr, "\nOptions:")
		flag.PrintDefaults()
	}

	flag.Parse()

	dev, err := fw.Open(device)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening device: %v\n", err)
		os.Exit(1)
	}
	defer dev.Close()

	fmt.Printf("%s: GUID %016x, node 0x%04x, generation %d, card %d\n",
		dev.Path(), dev.GUID(), dev.NodeID(), dev.Generation(), dev.Card())

	if rom {
		fmt.Println("\nconfiguration ROM:")
		for i, quad := range dev.ConfigROM() {
			fmt.Printf("  %3d: 0x%08x\n", i, quad)
		}
	}

	unit := dice.NewUnit(dev)
	if err := unit.ReadSections(timeout); err != nil {
		fmt.Fprintf(os.Stderr, "Error reading section table: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("\ngeneral sections:")
	printSection("global", unit.Sections.Global)
	printSection("tx stream format", unit.Sections.TxStreamFormat)
	printSection("rx stream format", unit.Sections.RxStreamFormat)
	printSection("ext sync", unit.Sections.ExtSync)
	printSection("reserved", unit.Sections.Reserved)

	if err := unit.ReadExtensionSections(timeout); err != nil {
		fmt.Println("\nextension: not present")
		return
	}

	fmt.Println("\nextension sections:")
	printSection("caps", unit.Ext.Caps)
	printSection("cmd", unit.Ext.Cmd)
	printSection("mixer", unit.Ext.Mixer)
	printSection("peak", unit.Ext.Peak)
	printSection("router", unit.Ext.Router)
	printSection("stream format", unit.Ext.StreamFormat)
	printSection("current config", unit.Ext.CurrentConfig)
	printSection("standalone", unit.Ext.Standalone)
	printSection("application", unit.Ext.Application)

	if err := unit.ReadCaps(timeout); err != nil {
		fmt.Fprintf(os.Stderr, "Error reading capability section: %v\n", err)
		os.Exit(1)
	}

	caps := unit.Caps
	fmt.Println("\ncapabilities:")
	fmt.Printf("  asic:   %s\n", caps.General.Asic)
	fmt.Printf("  router: exposed=%v readonly=%v storable=%v max=%d\n",
		caps.Router.IsExposed, caps.Router.IsReadonly, caps.Router.IsStorable,
		caps.Router.MaximumEntryCount)
	fmt.Printf("  mixer:  exposed=%v readonly=%v in=%d out=%d\n",
		caps.Mixer.IsExposed, caps.Mixer.IsReadonly,
		caps.Mixer.InputCount, caps.Mixer.OutputCount)
	fmt.Printf("  general: tx=%d rx=%d dynamic-format=%v peak=%v\n",
		caps.General.MaxTxStreams, caps.General.MaxRxStreams,
		caps.General.DynamicStreamFormat, caps.General.PeakAvail)
}

func printSection(name string, section dice.Section) {
	fmt.Printf("  %-16s offset 0x%08x size 0x%06x\n", name, section.Offset, section.Size)
}
