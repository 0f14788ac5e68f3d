package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv"

	"midi2keys/keymap"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		return
	}

	arg := ""
	if len(os.Args) > 2 {
		arg = os.Args[2]
	}

	switch os.Args[1] {
	case "list":
		listPorts()
	case "dump":
		dumpEvents(arg)
	case "keys":
		printTable(arg)
	default:
		usage()
	}
}

func usage() {
	fmt.Println("midiprobe - MIDI input checks")
	fmt.Println("")
	fmt.Println("Commands:")
	fmt.Println("  list          - List MIDI input ports")
	fmt.Println("  dump [name]   - Print note events from a port (first port if no name)")
	fmt.Println("  keys [file]   - Print the key mapping table (builtin if no file)")
}

func listPorts() {
	fmt.Println("=== MIDI Input Ports ===")
	fmt.Println("(waiting up to 3 seconds...)")

	ch := make(chan []drivers.In, 1)
	go func() {
		ch <- midi.GetInPorts()
	}()

	select {
	case ins := <-ch:
		if len(ins) == 0 {
			fmt.Println("  none")
			return
		}
		for i, p := range ins {
			fmt.Printf("  %d: %s\n", i, p.String())
		}
	case <-time.After(3 * time.Second):
		fmt.Println("\nTIMEOUT! The MIDI backend is hung.")
	}
}

func dumpEvents(name string) {
	ins := midi.GetInPorts()
	var port drivers.In
	for _, p := range ins {
		if name == "" || strings.Contains(strings.ToLower(p.String()), strings.ToLower(name)) {
			port = p
			break
		}
	}
	if port == nil {
		fmt.Println("No matching MIDI input found")
		return
	}

	fmt.Printf("Listening on %s (Ctrl+C to exit)\n", port.String())
	if err := port.Open(); err != nil {
		fmt.Printf("Error opening port: %v\n", err)
		return
	}

	stop, err := midi.ListenTo(port, func(msg midi.Message, timestampms int32) {
		raw := msg.Bytes()
		if len(raw) < 3 {
			return
		}
		status := raw[0] & 0xF0
		channel := raw[0] & 0x0F
		note := raw[1]
		velocity := raw[2]
		ts := time.Now().Format("15:04:05.000")

		switch {
		case status == 0x90 && velocity > 0:
			fmt.Printf("[%s] ch:%2d on   note:%3d (%-3s) vel:%3d\n", ts, channel, note, noteName(note), velocity)
		case status == 0x80 || (status == 0x90 && velocity == 0):
			fmt.Printf("[%s] ch:%2d off  note:%3d (%-3s)\n", ts, channel, note, noteName(note))
		}
	})
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer stop()

	select {}
}

func printTable(path string) {
	table := keymap.Builtin()
	if path != "" {
		var err error
		table, err = keymap.Load(path)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			return
		}
	}

	fmt.Println("note        stroke")
	for _, m := range table {
		mod := ""
		if m.Shift {
			mod = "shift+"
		}
		if m.Ctrl {
			mod = "ctrl+"
		}
		fmt.Printf("%3d (%-3s)   %s%s\n", m.Note, noteName(m.Note), mod, m.Key)
	}
}

var noteNames = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

func noteName(n uint8) string {
	return fmt.Sprintf("%s%d", noteNames[n%12], int(n)/12-1)
}
