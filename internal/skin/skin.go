// Package skin holds the cosmetic nose skins. A skin changes the catch radius and
// may carry a gameplay ability.
package skin

import (
	"errors"
	"fmt"
	"sync"

	"github.com/tomz197/nosecatch/internal/draw"
)

// ErrUnknownSkin is returned for skin ids missing from the registry.
var ErrUnknownSkin = errors.New("unknown skin")

// ErrNotOwned is returned when equipping a skin that is not in the inventory.
var ErrNotOwned = errors.New("skin not owned")

// Ability is a skin's gameplay modifier.
type Ability int

const (
	AbilityNone Ability = iota
	AbilityShield
	AbilityMultiplier
)

func (a Ability) String() string {
	switch a {
	case AbilityShield:
		return "shield"
	case AbilityMultiplier:
		return "multiplier"
	default:
		return "none"
	}
}

// Shape is how renderers draw the control point.
type Shape int

const (
	ShapeCircle Shape = iota
	ShapeSquare
)

// Skin is one registry entry. Only HitboxMultiplier and Ability affect gameplay.
type Skin struct {
	ID               string
	Name             string
	Price            int
	Color            draw.Color
	Shape            Shape
	HitboxMultiplier float64
	Ability          Ability
	Description      string
}

// DefaultID is the skin every player owns.
const DefaultID = "default"

// Registry is a read-only, ordered set of skins.
type Registry struct {
	skins []Skin
	byID  map[string]int
}

// NewRegistry builds a registry. The first skin is the fallback for unknown ids.
func NewRegistry(skins ...Skin) (*Registry, error) {
	if len(skins) == 0 {
		return nil, errors.New("skin registry: no skins")
	}
	r := &Registry{skins: skins, byID: make(map[string]int, len(skins))}
	for i, s := range skins {
		if _, dup := r.byID[s.ID]; dup {
			return nil, fmt.Errorf("skin registry: duplicate id %q", s.ID)
		}
		if s.HitboxMultiplier <= 0 {
			return nil, fmt.Errorf("skin registry: %q has non-positive hitbox multiplier", s.ID)
		}
		r.byID[s.ID] = i
	}
	return r, nil
}

// DefaultRegistry returns the four shipped skins.
func DefaultRegistry() *Registry {
	r, err := NewRegistry(
		Skin{ID: DefaultID, Name: "Neon Dot", Price: 0, Color: draw.Cyan, Shape: ShapeCircle,
			HitboxMultiplier: 1.0, Ability: AbilityNone, Description: "Classic cyan glow"},
		Skin{ID: "clown", Name: "Clown Nose", Price: 500, Color: draw.Red, Shape: ShapeCircle,
			HitboxMultiplier: 1.3, Ability: AbilityShield, Description: "10% bomb shield"},
		Skin{ID: "cyborg", Name: "Cyborg", Price: 1000, Color: draw.Green, Shape: ShapeSquare,
			HitboxMultiplier: 1.6, Ability: AbilityNone, Description: "Tech precision"},
		Skin{ID: "gold", Name: "Golden Touch", Price: 2000, Color: draw.Gold, Shape: ShapeCircle,
			HitboxMultiplier: 2.0, Ability: AbilityMultiplier, Description: "1.2x score boost"},
	)
	if err != nil {
		panic(err)
	}
	return r
}

// Lookup returns the skin with the given id.
func (r *Registry) Lookup(id string) (Skin, error) {
	i, ok := r.byID[id]
	if !ok {
		return Skin{}, fmt.Errorf("%w: %q", ErrUnknownSkin, id)
	}
	return r.skins[i], nil
}

// Default returns the fallback skin.
func (r *Registry) Default() Skin {
	return r.skins[0]
}

// All returns the skins in registry order.
func (r *Registry) All() []Skin {
	out := make([]Skin, len(r.skins))
	copy(out, r.skins)
	return out
}

// Equipment provides the skin currently in use.
type Equipment interface {
	Equipped() Skin
}

// Static is an Equipment that always returns the same skin.
type Static Skin

func (s Static) Equipped() Skin { return Skin(s) }

// Wardrobe tracks which skins a player owns and which one is equipped. It is safe
// for concurrent use: the game reads it while a front-end may change it.
type Wardrobe struct {
	mu       sync.RWMutex
	registry *Registry
	owned    map[string]bool
	equipped string
}

// NewWardrobe creates a wardrobe owning the default skin plus owned.
// Unknown ids in owned are ignored; an unknown or unowned equipped id falls back
// to the registry default.
func NewWardrobe(r *Registry, owned []string, equipped string) *Wardrobe {
	w := &Wardrobe{registry: r, owned: map[string]bool{r.Default().ID: true}}
	for _, id := range owned {
		if _, err := r.Lookup(id); err == nil {
			w.owned[id] = true
		}
	}
	w.equipped = r.Default().ID
	if w.owned[equipped] {
		w.equipped = equipped
	}
	return w
}

// Equipped returns the equipped skin.
func (w *Wardrobe) Equipped() Skin {
	w.mu.RLock()
	defer w.mu.RUnlock()
	s, err := w.registry.Lookup(w.equipped)
	if err != nil {
		return w.registry.Default()
	}
	return s
}

// Equip switches to an owned skin.
func (w *Wardrobe) Equip(id string) error {
	if _, err := w.registry.Lookup(id); err != nil {
		return err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.owned[id] {
		return fmt.Errorf("equip %q: %w", id, ErrNotOwned)
	}
	w.equipped = id
	return nil
}

// Grant adds a skin to the inventory.
func (w *Wardrobe) Grant(id string) error {
	if _, err := w.registry.Lookup(id); err != nil {
		return err
	}
	w.mu.Lock()
	w.owned[id] = true
	w.mu.Unlock()
	return nil
}

// Owned returns the owned skin ids in registry order.
func (w *Wardrobe) Owned() []string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	var ids []string
	for _, s := range w.registry.skins {
		if w.owned[s.ID] {
			ids = append(ids, s.ID)
		}
	}
	return ids
}
