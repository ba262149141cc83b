package costs

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/gustav-de-Mando/KuratorV1/internal/models"
)

// UnboundArea is the area value units must be recruited with; they are not
// tied to a region of the realm.
const UnboundArea = 0

var (
	ErrUnknownDevelopment  = errors.New("unknown development type")
	ErrAreaNotUnbound      = errors.New("military units must use the unbound area")
	ErrInvalidUnitCount    = errors.New("unit count must be positive")
	ErrInfrastructureCount = errors.New("infrastructure allows exactly one build")
)

// LevelUnavailableError reports a level outside the table range.
type LevelUnavailableError struct {
	Development Development
	Level       int
	Min, Max    int
}

func (e *LevelUnavailableError) Error() string {
	return fmt.Sprintf("level %d unavailable for %s: valid %d-%d", e.Level, e.Development, e.Min, e.Max)
}

// Vector maps a resource to a non-negative quantity.
type Vector map[models.Resource]int64

// Clone returns an independent copy.
func (v Vector) Clone() Vector {
	c := make(Vector, len(v))
	for r, q := range v {
		c[r] = q
	}
	return c
}

// Scale returns a copy with every quantity multiplied by n.
func (v Vector) Scale(n int64) Vector {
	c := make(Vector, len(v))
	for r, q := range v {
		c[r] = q * n
	}
	return c
}

// Request is one ausbau cost query.
type Request struct {
	Type  Development
	Level int
	Area  int
	Count int
}

// ParseDevelopment matches a development by name, case-insensitively.
func ParseDevelopment(s string) (Development, error) {
	s = strings.TrimSpace(s)
	for _, d := range Developments {
		if strings.EqualFold(string(d), s) {
			return d, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownDevelopment, s)
}

// Levels returns the lowest and highest level defined for d.
func Levels(d Development) (min, max int, ok bool) {
	entries, ok := table[d]
	if !ok {
		return 0, 0, false
	}
	levels := make([]int, 0, len(entries))
	for l := range entries {
		levels = append(levels, l)
	}
	sort.Ints(levels)
	return levels[0], levels[len(levels)-1], true
}

// Lookup validates r and returns its cost. The table itself is never
// handed out; callers always receive a copy.
func Lookup(r Request) (Vector, error) {
	entries, ok := table[r.Type]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownDevelopment, r.Type)
	}

	base, ok := entries[r.Level]
	if !ok {
		min, max, _ := Levels(r.Type)
		return nil, &LevelUnavailableError{Development: r.Type, Level: r.Level, Min: min, Max: max}
	}

	if r.Type.Military() {
		if r.Area != UnboundArea {
			return nil, ErrAreaNotUnbound
		}
		if r.Count <= 0 {
			return nil, ErrInvalidUnitCount
		}
		return base.Scale(int64(r.Count)), nil
	}

	if r.Count != 1 {
		return nil, ErrInfrastructureCount
	}
	return base.Clone(), nil
}

// FormatAmount renders n with a dot as thousands separator: 1500000 -> 1.500.000.
func FormatAmount(n int64) string {
	neg := n < 0
	if neg {
		n = -n
	}
	s := fmt.Sprint(n)
	var b strings.Builder
	for i, c := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(c)
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}
