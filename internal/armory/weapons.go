// Package armory holds the static weapon and agent data the round core reads.
// The tables are owned by an external collaborator; the defaults here mirror
// the shipped data closely enough for simulation and validation.
package armory

import (
	"fmt"
	"sort"

	"github.com/phil-holland/spike-round-sim/internal/timeline"
)

// Band holds per-location damage for distances up to MaxDistance
type Band struct {
	MaxDistance float64 `json:"maxDistance"`
	Head        int     `json:"head"`
	Body        int     `json:"body"`
	Leg         int     `json:"leg"`
}

// Weapon describes a single gun and its damage falloff table. Bands are
// ordered by increasing MaxDistance; the last band covers every distance
// beyond it.
type Weapon struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Cost     int     `json:"cost"`
	FireRate float64 `json:"fireRate"`
	Bands    []Band  `json:"bands"`
}

// Band returns the damage band covering the given distance
func (w Weapon) Band(distance float64) Band {
	for _, b := range w.Bands {
		if distance <= b.MaxDistance {
			return b
		}
	}
	return w.Bands[len(w.Bands)-1]
}

// HitDamage returns the damage a single hit at the given distance deals
func (w Weapon) HitDamage(distance float64, loc timeline.HitLocation) int {
	b := w.Band(distance)
	switch loc {
	case timeline.HitHead:
		return b.Head
	case timeline.HitLeg:
		return b.Leg
	default:
		return b.Body
	}
}

// Expected returns the raw damage a set of hits at the given distance deals,
// before shields are taken into account
func (w Weapon) Expected(distance float64, hits []timeline.Hit) int {
	total := 0
	for _, h := range hits {
		total += w.HitDamage(distance, h.Location)
	}
	return total
}

// Weapons is a lookup table keyed by weapon ID
type Weapons map[string]Weapon

// Lookup returns the weapon with the given ID
func (ws Weapons) Lookup(id string) (Weapon, error) {
	w, ok := ws[id]
	if !ok {
		return Weapon{}, fmt.Errorf("unknown weapon %q", id)
	}
	return w, nil
}

// IDs returns every weapon ID in sorted order
func (ws Weapons) IDs() []string {
	ids := make([]string, 0, len(ws))
	for id := range ws {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

const (
	Classic  = "classic"
	Ghost    = "ghost"
	Sheriff  = "sheriff"
	Spectre  = "spectre"
	Vandal   = "vandal"
	Phantom  = "phantom"
	Operator = "operator"
)

// DefaultWeapons returns the reference weapon table
func DefaultWeapons() Weapons {
	return Weapons{
		Classic: {ID: Classic, Name: "Classic", Cost: 0, FireRate: 6.75, Bands: []Band{
			{MaxDistance: 30, Head: 78, Body: 26, Leg: 22},
			{MaxDistance: 50, Head: 66, Body: 22, Leg: 18},
		}},
		Ghost: {ID: Ghost, Name: "Ghost", Cost: 500, FireRate: 6.75, Bands: []Band{
			{MaxDistance: 30, Head: 105, Body: 30, Leg: 25},
			{MaxDistance: 50, Head: 88, Body: 25, Leg: 21},
		}},
		Sheriff: {ID: Sheriff, Name: "Sheriff", Cost: 800, FireRate: 4, Bands: []Band{
			{MaxDistance: 30, Head: 159, Body: 55, Leg: 46},
			{MaxDistance: 50, Head: 145, Body: 50, Leg: 42},
		}},
		Spectre: {ID: Spectre, Name: "Spectre", Cost: 1600, FireRate: 13.33, Bands: []Band{
			{MaxDistance: 20, Head: 78, Body: 26, Leg: 22},
			{MaxDistance: 50, Head: 66, Body: 22, Leg: 18},
		}},
		Vandal: {ID: Vandal, Name: "Vandal", Cost: 2900, FireRate: 9.75, Bands: []Band{
			{MaxDistance: 50, Head: 160, Body: 40, Leg: 34},
		}},
		Phantom: {ID: Phantom, Name: "Phantom", Cost: 2900, FireRate: 11, Bands: []Band{
			{MaxDistance: 15, Head: 156, Body: 39, Leg: 33},
			{MaxDistance: 30, Head: 140, Body: 35, Leg: 29},
			{MaxDistance: 50, Head: 124, Body: 31, Leg: 26},
		}},
		Operator: {ID: Operator, Name: "Operator", Cost: 4700, FireRate: 0.6, Bands: []Band{
			{MaxDistance: 50, Head: 255, Body: 150, Leg: 127},
		}},
	}
}
