package theme

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

type RGB [3]uint8

// Palette is an ordered colour ramp. Roles pick a position along it.
type Palette struct {
	Name   string
	Colors []RGB
}

// Plasma is the built-in palette, sampled from the matplotlib colormap
func Plasma() *Palette {
	return &Palette{
		Name: "plasma",
		Colors: []RGB{
			{13, 8, 135},
			{75, 3, 161},
			{125, 3, 168},
			{168, 34, 150},
			{203, 70, 121},
			{229, 107, 93},
			{248, 148, 65},
			{253, 195, 40},
			{240, 249, 33},
		},
	}
}

// LoadOrDefault loads the GIMP palette at path, falling back to Plasma when
// path is empty or unreadable.
func LoadOrDefault(path string) (*Palette, error) {
	if path == "" {
		return Plasma(), nil
	}
	p, err := LoadGPL(path)
	if err != nil {
		return Plasma(), err
	}
	return p, nil
}

func LoadGPL(path string) (*Palette, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	p, err := ParseGPL(f)
	if err != nil {
		return nil, fmt.Errorf("palette %s: %w", path, err)
	}
	return p, nil
}

// ParseGPL reads a GIMP .gpl palette: a header, then one "R G B [name]"
// line per colour.
func ParseGPL(r io.Reader) (*Palette, error) {
	p := &Palette{}
	scanner := bufio.NewScanner(r)

	for n := 1; scanner.Scan(); n++ {
		line := strings.TrimSpace(scanner.Text())

		if name, ok := strings.CutPrefix(line, "Name:"); ok {
			p.Name = strings.TrimSpace(name)
			continue
		}
		if line == "" || line[0] == '#' || strings.HasPrefix(line, "GIMP") || strings.HasPrefix(line, "Columns") {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) < 3 {
			continue
		}
		var c RGB
		ok := true
		for i := range c {
			v, err := strconv.Atoi(fields[i])
			if err != nil {
				ok = false
				break
			}
			if v < 0 || v > 255 {
				return nil, fmt.Errorf("line %d: %d out of range", n, v)
			}
			c[i] = uint8(v)
		}
		if ok {
			p.Colors = append(p.Colors, c)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(p.Colors) == 0 {
		return nil, fmt.Errorf("no colors found")
	}
	return p, nil
}

// Lookup returns the colour at norm (0-1) along the ramp, blending the two
// nearest entries.
func (p *Palette) Lookup(norm float64) RGB {
	last := len(p.Colors) - 1
	switch {
	case norm <= 0:
		return p.Colors[0]
	case norm >= 1:
		return p.Colors[last]
	}

	pos := norm * float64(last)
	i := int(pos)
	t := pos - float64(i)

	var out RGB
	for ch := range out {
		a, b := float64(p.Colors[i][ch]), float64(p.Colors[i+1][ch])
		out[ch] = uint8(a + (b-a)*t)
	}
	return out
}
