package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"midi2keys/config"
	"midi2keys/debug"
	"midi2keys/dispatch"
	"midi2keys/keymap"
	"midi2keys/midi"
	"midi2keys/presser"
	"midi2keys/tui"
)

func main() {
	verbose := flag.Bool("v", false, "verbose logging")
	deviceName := flag.String("device", "", "prefer MIDI input ports matching this name")
	mappingFile := flag.String("mapping", "", "load the key mapping from a JSON file")
	flag.Parse()

	if err := debug.Enable(*verbose); err != nil {
		fmt.Printf("Error: logging: %v\n", err)
		os.Exit(1)
	}
	defer debug.Disable()
	log := debug.Logger()

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Error: config: %v\n", err)
		os.Exit(1)
	}
	if *mappingFile != "" {
		cfg.MappingFile = *mappingFile
	}

	table := keymap.Builtin()
	if cfg.MappingFile != "" {
		table, err = keymap.Load(cfg.MappingFile)
		if err != nil {
			fmt.Printf("Error: mapping: %v\n", err)
			os.Exit(1)
		}
	}

	kb, err := presser.NewUinputKeyboard("midi2keys", table)
	if err != nil {
		fmt.Printf("Error: virtual keyboard: %v (is /dev/uinput accessible?)\n", err)
		os.Exit(1)
	}
	defer kb.Close()

	settings := config.NewSettings(cfg)
	pr := presser.New(kb, table, log.Named("presser"))
	disp := dispatch.New(settings, pr, table, log.Named("dispatch"))

	preferred := cfg.MIDI.PreferredPorts
	if *deviceName != "" {
		preferred = append([]string{*deviceName}, preferred...)
	}

	// On port loss everything believed held comes up immediately.
	watcher := midi.NewWatcher(preferred, cfg.MIDI.ExcludedPorts, disp.Handle, pr.ReleaseAll, log.Named("midi"))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go watcher.Run(ctx)

	m := tui.NewModel(settings, pr, disp, watcher)
	p := tea.NewProgram(m, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	// Keep toggles made in the TUI for the next run.
	cfg.Capture(settings)
	if err := cfg.Save(); err != nil {
		log.Warn("config save failed", zap.Error(err))
	}

	pr.ReleaseAll()
}
