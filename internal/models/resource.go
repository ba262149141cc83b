package models

import (
	"fmt"
	"strings"
)

// Resource is one of the tradable goods of the game.
type Resource int

const (
	Wood Resource = iota + 1
	Stone
	Iron
	Cloth
	Food
	Ducats
)

// Resources lists every resource in display order.
var Resources = []Resource{Wood, Stone, Iron, Cloth, Food, Ducats}

var resourceNames = map[Resource]string{
	Wood:   "Holz",
	Stone:  "Stein",
	Iron:   "Eisen",
	Cloth:  "Stoff",
	Food:   "Nahrung",
	Ducats: "Dukaten",
}

func (r Resource) String() string {
	if n, ok := resourceNames[r]; ok {
		return n
	}
	return fmt.Sprintf("Resource(%d)", int(r))
}

// ParseResource accepts the German display name or the English name,
// case-insensitively. "Gold" is accepted as an alias for Ducats.
func ParseResource(s string) (Resource, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "holz", "wood":
		return Wood, nil
	case "stein", "stone":
		return Stone, nil
	case "eisen", "iron":
		return Iron, nil
	case "stoff", "cloth":
		return Cloth, nil
	case "nahrung", "food":
		return Food, nil
	case "dukaten", "gold", "ducats", "currency":
		return Ducats, nil
	}
	return 0, fmt.Errorf("unknown resource %q", s)
}
