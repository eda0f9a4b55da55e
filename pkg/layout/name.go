package layout

import (
	"slices"
	"strings"

	gmerrors "github.com/matzehuels/graphmorph/pkg/errors"
)

// Name identifies a layout algorithm.
type Name string

// Supported layout names.
const (
	Circle   Name = "circle"
	Star     Name = "star"
	KK       Name = "kk"
	MDS      Name = "mds"
	FR       Name = "fr"
	GEM      Name = "gem"
	Stress   Name = "stress"
	Tree     Name = "tree"
	Sugiyama Name = "sugiyama"
)

// DisplayOrder is the categorical order of layouts in panels and tables.
// It is independent of the order in which layouts are computed.
var DisplayOrder = []Name{Circle, Star, KK, MDS, FR, GEM, Stress, Tree, Sugiyama}

func (n Name) String() string { return string(n) }

// Known reports whether n is one of the supported names.
func (n Name) Known() bool { return slices.Contains(DisplayOrder, n) }

// Rank returns the position of n in [DisplayOrder]. Unknown names sort last.
func Rank(n Name) int {
	if i := slices.Index(DisplayOrder, n); i >= 0 {
		return i
	}
	return len(DisplayOrder)
}

// SortByDisplay sorts names in place by [DisplayOrder], keeping unknown
// names at the end in their original relative order.
func SortByDisplay(names []Name) {
	slices.SortStableFunc(names, func(a, b Name) int { return Rank(a) - Rank(b) })
}

// Names returns the supported names as strings, in display order.
func Names() []string {
	out := make([]string, len(DisplayOrder))
	for i, n := range DisplayOrder {
		out[i] = string(n)
	}
	return out
}

// ParseNames converts user input to names. Entries are trimmed and lowercased,
// and empty entries are skipped. An unknown name gives an
// *errors.UnsupportedLayoutError and a repeated one a *errors.ValidationError.
func ParseNames(in []string) ([]Name, error) {
	seen := make(map[Name]bool, len(in))
	out := make([]Name, 0, len(in))
	for _, s := range in {
		n := Name(strings.ToLower(strings.TrimSpace(s)))
		if n == "" {
			continue
		}
		if !n.Known() {
			return nil, &gmerrors.UnsupportedLayoutError{Name: string(n), Supported: Names()}
		}
		if seen[n] {
			return nil, gmerrors.Invalid("layouts", string(n), "listed more than once")
		}
		seen[n] = true
		out = append(out, n)
	}
	return out, nil
}
