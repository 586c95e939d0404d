package main

import (
	"fmt"
	"os"
	"time"

	"chordloop/config"
	"chordloop/midi"
	"chordloop/theme"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		return
	}
	defer midi.CloseDriver()

	switch os.Args[1] {
	case "list":
		listPorts()
	case "click":
		port := ""
		if len(os.Args) > 2 {
			port = os.Args[2]
		}
		testClick(port)
	case "leds":
		testLEDs()
	default:
		usage()
	}
}

func usage() {
	fmt.Println("MIDI Test Scripts")
	fmt.Println("")
	fmt.Println("Commands:")
	fmt.Println("  list          - List all MIDI ports")
	fmt.Println("  click [port]  - Play one accented bar of clicks")
	fmt.Println("  leds          - Light the Launchpad with the palette")
}

func scan() midi.Ports {
	fmt.Println("(waiting up to 3 seconds...)")
	ports, err := midi.Scan(midi.ScanTimeout)
	if err != nil {
		fmt.Println("\nTIMEOUT! CoreMIDI is hung.")
		fmt.Println("Fix: sudo killall coreaudiod midiserver")
		os.Exit(1)
	}
	return ports
}

func listPorts() {
	ports := scan()
	fmt.Println("=== MIDI Input Ports ===")
	for i, name := range ports.InNames() {
		fmt.Printf("  %d: %s\n", i, name)
	}
	fmt.Println("\n=== MIDI Output Ports ===")
	for i, name := range ports.OutNames() {
		fmt.Printf("  %d: %s\n", i, name)
	}
}

func testClick(port string) {
	send, name, err := scan().OpenOut(port)
	if err != nil {
		fmt.Printf("ERROR: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Clicking on %s\n", name)

	click := midi.NewClick(send, config.DefaultConfig().Click)
	for beat := 0; beat < 4; beat++ {
		click.Click(beat == 0)
		time.Sleep(500 * time.Millisecond)
	}
}

func testLEDs() {
	in, out, ok := scan().FindLaunchpad()
	if !ok {
		fmt.Println("No Launchpad found")
		os.Exit(1)
	}
	lp, err := midi.OpenLaunchpad(in, out)
	if err != nil {
		fmt.Printf("ERROR: %v\n", err)
		os.Exit(1)
	}
	defer lp.Close()

	th := theme.New(nil)
	var updates []midi.LEDUpdate
	for row := 0; row < 8; row++ {
		for col := 0; col < 8; col++ {
			c := th.RGB(float64(row*8+col) / 63)
			updates = append(updates, midi.LEDUpdate{Row: row, Col: col, Color: c})
		}
	}
	if err := lp.SetLEDBatch(updates); err != nil {
		fmt.Printf("ERROR: %v\n", err)
		return
	}
	fmt.Println("Palette on the grid. Press pads (5 seconds)...")

	timeout := time.After(5 * time.Second)
	for {
		select {
		case p := <-lp.Pads():
			fmt.Printf("  pad %d,%d vel=%d\n", p.Row, p.Col, p.Velocity)
		case <-timeout:
			return
		}
	}
}
