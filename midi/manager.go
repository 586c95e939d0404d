package midi

import (
	"errors"
	"fmt"
	"strings"
	"time"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv" // Register MIDI driver
)

// ScanTimeout bounds a port scan. CoreMIDI can hang; when it does the user
// needs to run: sudo killall coreaudiod midiserver
const ScanTimeout = 3 * time.Second

var ErrScanTimeout = errors.New("midi: port scan timed out")

// Ports is the result of one scan
type Ports struct {
	Ins  []drivers.In
	Outs []drivers.Out
}

// InNames lists the input port names
func (p Ports) InNames() []string {
	names := make([]string, len(p.Ins))
	for i, in := range p.Ins {
		names[i] = in.String()
	}
	return names
}

// OutNames lists the output port names
func (p Ports) OutNames() []string {
	names := make([]string, len(p.Outs))
	for i, out := range p.Outs {
		names[i] = out.String()
	}
	return names
}

// Scan lists the ports, giving up after timeout.
func Scan(timeout time.Duration) (Ports, error) {
	ch := make(chan Ports, 1)
	go func() {
		ch <- Ports{Ins: gomidi.GetInPorts(), Outs: gomidi.GetOutPorts()}
	}()

	select {
	case p := <-ch:
		return p, nil
	case <-time.After(timeout):
		return Ports{}, ErrScanTimeout
	}
}

// FindOut picks the output named name: an exact match wins, otherwise the
// first case-insensitive substring match. An empty name takes the first
// port that is not a Launchpad.
func (p Ports) FindOut(name string) (drivers.Out, error) {
	idx := matchPort(p.OutNames(), name)
	if idx < 0 {
		if name == "" {
			return nil, errors.New("midi: no output ports")
		}
		return nil, fmt.Errorf("midi: no output port matching %q", name)
	}
	return p.Outs[idx], nil
}

// FindLaunchpad returns the first Launchpad's input and output ports.
func (p Ports) FindLaunchpad() (drivers.In, drivers.Out, bool) {
	var in drivers.In
	for _, port := range p.Ins {
		if isLaunchpad(port.String()) {
			in = port
			break
		}
	}
	if in == nil {
		return nil, nil, false
	}
	name := strings.ToLower(in.String())
	for _, port := range p.Outs {
		if strings.ToLower(port.String()) == name {
			return in, port, true
		}
	}
	return in, nil, true
}

// OpenOut opens the named output for sending.
func (p Ports) OpenOut(name string) (Sender, string, error) {
	out, err := p.FindOut(name)
	if err != nil {
		return nil, "", err
	}
	send, err := gomidi.SendTo(out)
	if err != nil {
		return nil, "", fmt.Errorf("open %s: %w", out.String(), err)
	}
	return send, out.String(), nil
}

// CloseDriver releases the MIDI driver. Call it once on the way out.
func CloseDriver() {
	gomidi.CloseDriver()
}

func matchPort(names []string, name string) int {
	if name == "" {
		for i, n := range names {
			if !isLaunchpad(n) {
				return i
			}
		}
		return -1
	}
	for i, n := range names {
		if n == name {
			return i
		}
	}
	want := strings.ToLower(name)
	for i, n := range names {
		if strings.Contains(strings.ToLower(n), want) {
			return i
		}
	}
	return -1
}

func isLaunchpad(name string) bool {
	name = strings.ToLower(name)
	return strings.Contains(name, "launchpad") && strings.Contains(name, "midi")
}
