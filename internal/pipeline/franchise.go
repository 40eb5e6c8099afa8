package pipeline

import (
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// FranchiseMatcher maps an agency office label to the agency it belongs to.
type FranchiseMatcher interface {
	MainAgency(label string) string
}

// DefaultFranchises are multi-office brands whose offices are not named
// with a " - " suffix.
var DefaultFranchises = []string{
	"belle property",
	"ray white",
	"lj hooker",
	"century 21",
	"mcgrath",
	"raine & horne",
	"first national",
	"harcourts",
}

// FranchiseTable matches labels against a list of franchise name fragments.
type FranchiseTable struct {
	fragments []string
}

// NewFranchiseTable builds a table from fragments. An empty list uses
// DefaultFranchises.
func NewFranchiseTable(fragments []string) *FranchiseTable {
	t := &FranchiseTable{}
	for _, f := range fragments {
		if f = strings.ToLower(strings.TrimSpace(f)); f != "" {
			t.fragments = append(t.fragments, f)
		}
	}
	if len(t.fragments) == 0 {
		t.fragments = append(t.fragments, DefaultFranchises...)
	}
	return t
}

type franchiseFile struct {
	Franchises []string `yaml:"franchises"`
}

// LoadFranchiseTable reads a YAML file with a top-level "franchises" list.
func LoadFranchiseTable(path string) (*FranchiseTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "franchise: read %s", path)
	}
	var f franchiseFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, eris.Wrapf(err, "franchise: parse %s", path)
	}
	if len(f.Franchises) == 0 {
		return nil, eris.Errorf("franchise: %s lists no franchises", path)
	}
	return NewFranchiseTable(f.Franchises), nil
}

// Fragments returns the lowercase fragments in match order.
func (t *FranchiseTable) Fragments() []string {
	return append([]string(nil), t.fragments...)
}

// MainAgency lowercases the label and returns, in order of preference, the
// text before the first " - ", the first franchise fragment it contains, or
// its first two words.
func (t *FranchiseTable) MainAgency(label string) string {
	l := strings.ToLower(strings.TrimSpace(label))
	if before, _, ok := strings.Cut(l, " - "); ok {
		return strings.TrimSpace(before)
	}
	for _, f := range t.fragments {
		if strings.Contains(l, f) {
			return f
		}
	}
	words := strings.Fields(l)
	if len(words) > 2 {
		words = words[:2]
	}
	return strings.Join(words, " ")
}
