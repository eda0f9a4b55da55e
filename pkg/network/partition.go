package network

import (
	"fmt"
	"strconv"
	"strings"
)

// ModuleRange assigns Name to every integer identifier in [From, To].
type ModuleRange struct {
	Name string `json:"name" toml:"name" yaml:"name"`
	From int    `json:"from" toml:"from" yaml:"from"`
	To   int    `json:"to" toml:"to" yaml:"to"`
}

// ParseModuleRange parses the command-line form "name=from-to", for
// example "core=1-10". A single identifier "name=7" is also accepted.
func ParseModuleRange(s string) (ModuleRange, error) {
	name, span, ok := strings.Cut(s, "=")
	name = strings.TrimSpace(name)
	if !ok || name == "" {
		return ModuleRange{}, fmt.Errorf("module range %q: want name=from-to", s)
	}
	lo, hi, isSpan := strings.Cut(span, "-")
	if !isSpan {
		hi = lo
	}
	from, err := strconv.Atoi(strings.TrimSpace(lo))
	if err != nil {
		return ModuleRange{}, fmt.Errorf("module range %q: bad start: %w", s, err)
	}
	to, err := strconv.Atoi(strings.TrimSpace(hi))
	if err != nil {
		return ModuleRange{}, fmt.Errorf("module range %q: bad end: %w", s, err)
	}
	return ModuleRange{Name: name, From: from, To: to}, nil
}

// Contains reports whether the identifier value v falls inside the range.
func (r ModuleRange) Contains(v int) bool { return v >= r.From && v <= r.To }

// Partition is an ordered list of module ranges. The first matching range wins.
type Partition []ModuleRange

// Assign returns the module for a node identifier and whether any range
// matched. Non-integer identifiers never match.
func (p Partition) Assign(id string) (string, bool) {
	v, err := strconv.Atoi(strings.TrimSpace(id))
	if err != nil {
		return Unassigned, false
	}
	for _, r := range p {
		if r.Contains(v) {
			return r.Name, true
		}
	}
	return Unassigned, false
}

// Validate checks that every range is named, well-ordered, and that no two
// ranges overlap.
func (p Partition) Validate() error {
	for i, r := range p {
		if strings.TrimSpace(r.Name) == "" {
			return fmt.Errorf("module range %d: name must not be empty", i)
		}
		if r.From > r.To {
			return fmt.Errorf("module range %q: from (%d) is greater than to (%d)", r.Name, r.From, r.To)
		}
		for _, other := range p[:i] {
			if r.From <= other.To && other.From <= r.To {
				return fmt.Errorf("module ranges %q and %q overlap", other.Name, r.Name)
			}
		}
	}
	return nil
}

// Names returns the module names in partition order, followed by
// [Unassigned]. Renderers use it as the categorical level order.
func (p Partition) Names() []string {
	out := make([]string, 0, len(p)+1)
	for _, r := range p {
		out = append(out, r.Name)
	}
	return append(out, Unassigned)
}
