package roster

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	ErrUnknownName   = errors.New("unknown roster name")
	ErrUnknownSeason = errors.New("no roster for season")
)

// Kind separates the two independent pick families.
type Kind string

const (
	KindDriver Kind = "driver"
	KindTeam   Kind = "team"
)

// Entry is one canonical roster member with the spellings that resolve to it.
type Entry struct {
	Canonical string
	Aliases   []string
}

// Roster is the closed set of drivers and teams for a season.
type Roster struct {
	Season  int
	Drivers []Entry
	Teams   []Entry

	index map[Kind]map[string]string
}

// Catalog resolves names per season.
type Catalog struct {
	seasons map[int]*Roster
}

func NewCatalog(rosters ...Roster) *Catalog {
	c := &Catalog{seasons: make(map[int]*Roster, len(rosters))}
	for _, r := range rosters {
		built := r
		built.buildIndex()
		c.seasons[r.Season] = &built
	}
	return c
}

// Season returns the roster of a season.
func (c *Catalog) Season(season int) (*Roster, error) {
	if c == nil {
		return nil, fmt.Errorf("%w: %d", ErrUnknownSeason, season)
	}
	r, ok := c.seasons[season]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownSeason, season)
	}
	return r, nil
}

// Canonicalize maps a free-form name to the season's canonical spelling.
func (c *Catalog) Canonicalize(season int, kind Kind, raw string) (string, error) {
	r, err := c.Season(season)
	if err != nil {
		return "", err
	}
	return r.Canonicalize(kind, raw)
}

func (r *Roster) Canonicalize(kind Kind, raw string) (string, error) {
	key := normalizeKey(raw)
	if key == "" {
		return "", fmt.Errorf("%w: empty %s name", ErrUnknownName, kind)
	}
	if r.index == nil {
		r.buildIndex()
	}
	canonical, ok := r.index[kind][key]
	if !ok || canonical == "" {
		return "", fmt.Errorf("%w: %s %q is not on the %d grid", ErrUnknownName, kind, strings.TrimSpace(raw), r.Season)
	}
	return canonical, nil
}

// Members lists canonical names of a kind in roster order.
func (r *Roster) Members(kind Kind) []string {
	entries := r.Drivers
	if kind == KindTeam {
		entries = r.Teams
	}
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Canonical)
	}
	return out
}

func (r *Roster) Size(kind Kind) int {
	if kind == KindTeam {
		return len(r.Teams)
	}
	return len(r.Drivers)
}

func (r *Roster) buildIndex() {
	r.index = map[Kind]map[string]string{
		KindDriver: indexEntries(r.Drivers, true),
		KindTeam:   indexEntries(r.Teams, false),
	}
}

// indexEntries registers canonical names and aliases. Driver surnames are
// registered as well unless two drivers share one; an empty value marks an
// ambiguous key.
func indexEntries(entries []Entry, withSurname bool) map[string]string {
	out := make(map[string]string, len(entries)*3)
	for _, e := range entries {
		out[normalizeKey(e.Canonical)] = e.Canonical
		for _, alias := range e.Aliases {
			out[normalizeKey(alias)] = e.Canonical
		}
	}
	if !withSurname {
		return out
	}

	surnames := make(map[string]string, len(entries))
	for _, e := range entries {
		fields := strings.Fields(normalizeKey(e.Canonical))
		if len(fields) < 2 {
			continue
		}
		surname := fields[len(fields)-1]
		if prev, seen := surnames[surname]; seen && prev != e.Canonical {
			surnames[surname] = ""
			continue
		}
		surnames[surname] = e.Canonical
	}
	for surname, canonical := range surnames {
		if _, taken := out[surname]; taken {
			continue
		}
		out[surname] = canonical
	}
	return out
}

func normalizeKey(raw string) string {
	// transformers carry state, so each call builds its own chain.
	fold := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(fold, strings.TrimSpace(raw))
	if err != nil {
		folded = raw
	}

	var b strings.Builder
	b.Grow(len(folded))
	space := false
	for _, r := range strings.ToLower(folded) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if space && b.Len() > 0 {
				b.WriteByte(' ')
			}
			space = false
			b.WriteRune(r)
			continue
		}
		space = true
	}
	return b.String()
}
