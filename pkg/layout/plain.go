package layout

import (
	"bufio"
	"bytes"
	"fmt"
	"strconv"
	"strings"
)

// Plain is the parsed Graphviz "plain" output. Only graph and node
// statements are kept; edge splines are not needed for node positions.
type Plain struct {
	Scale  float64
	Width  float64
	Height float64
	Nodes  []PlainNode
}

// PlainNode is one "node" statement. Positions and sizes are in inches.
type PlainNode struct {
	Name   string
	X, Y   float64
	Width  float64
	Height float64
}

// ParsePlain parses Graphviz plain output:
//
//	graph scale width height
//	node name x y width height label style shape color fillcolor
//	edge tail head n x1 y1 ... xn yn [label xl yl] style color
//	stop
func ParsePlain(data []byte) (*Plain, error) {
	var p Plain
	sawGraph := false

	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for line := 1; sc.Scan(); line++ {
		fields, err := splitPlain(sc.Text())
		if err != nil {
			return nil, fmt.Errorf("plain line %d: %w", line, err)
		}
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "graph":
			if len(fields) < 4 {
				return nil, fmt.Errorf("plain line %d: short graph statement", line)
			}
			v, err := floats(fields[1:4])
			if err != nil {
				return nil, fmt.Errorf("plain line %d: %w", line, err)
			}
			p.Scale, p.Width, p.Height = v[0], v[1], v[2]
			sawGraph = true
		case "node":
			if len(fields) < 6 {
				return nil, fmt.Errorf("plain line %d: short node statement", line)
			}
			v, err := floats(fields[2:6])
			if err != nil {
				return nil, fmt.Errorf("plain line %d: %w", line, err)
			}
			p.Nodes = append(p.Nodes, PlainNode{Name: fields[1], X: v[0], Y: v[1], Width: v[2], Height: v[3]})
		case "edge":
		case "stop":
			return &p, nil
		default:
			return nil, fmt.Errorf("plain line %d: unknown statement %q", line, fields[0])
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if !sawGraph {
		return nil, fmt.Errorf("plain output has no graph statement")
	}
	return &p, nil
}

func floats(fields []string) ([]float64, error) {
	out := make([]float64, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// splitPlain splits a plain-format line on blanks. Double-quoted fields may
// contain blanks and backslash-escaped quotes.
func splitPlain(line string) ([]string, error) {
	var (
		fields []string
		cur    strings.Builder
		quoted bool
		inTok  bool
	)
	for i := 0; i < len(line); i++ {
		c := line[i]
		switch {
		case quoted && c == '\\' && i+1 < len(line):
			i++
			cur.WriteByte(line[i])
		case quoted && c == '"':
			quoted = false
		case quoted:
			cur.WriteByte(c)
		case c == '"':
			quoted, inTok = true, true
		case c == ' ' || c == '\t' || c == '\r':
			if inTok {
				fields = append(fields, cur.String())
				cur.Reset()
				inTok = false
			}
		default:
			cur.WriteByte(c)
			inTok = true
		}
	}
	if quoted {
		return nil, fmt.Errorf("unterminated quote")
	}
	if inTok {
		fields = append(fields, cur.String())
	}
	return fields, nil
}
