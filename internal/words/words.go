// Package words supplies candidate words for the selection phase. The
// list content itself is not load-bearing; deployments can swap it out.
package words

import "math/rand"

var defaultList = []string{
	"apple", "banana", "bridge", "castle", "cloud", "dragon", "elephant",
	"guitar", "island", "jungle", "kite", "lantern", "mountain", "ocean",
	"pencil", "pirate", "rainbow", "robot", "rocket", "sandwich",
	"snowman", "spider", "telescope", "tiger", "train", "umbrella",
	"volcano", "whale", "windmill", "wizard",
}

type Picker struct {
	list []string
}

// NewPicker uses the default list when none is supplied.
func NewPicker(list []string) *Picker {
	if len(list) == 0 {
		list = defaultList
	}
	return &Picker{list: list}
}

// Candidates returns n distinct random words, or the whole list when it
// is shorter than n.
func (p *Picker) Candidates(n int) []string {
	if n >= len(p.list) {
		out := make([]string, len(p.list))
		copy(out, p.list)
		return out
	}
	picks := rand.Perm(len(p.list))[:n]
	out := make([]string, 0, n)
	for _, i := range picks {
		out = append(out, p.list[i])
	}
	return out
}
