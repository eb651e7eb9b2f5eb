package character

import (
	"fmt"
	"slices"
	"sync"

	"github.com/cory-johannsen/battlecore/internal/game/attribute"
	"github.com/cory-johannsen/battlecore/internal/game/equipment"
)

// PlayerState is the persistent state of one player character, held by the
// shared GameState rather than by the Player handle.
type PlayerState struct {
	Name       string
	Level      int
	Experience int
	Gold       int
	Attributes *attribute.Aggregator
	Loadout    *equipment.Loadout
	Abilities  []string

	selected string
}

// GameState is the central store player handles resolve their state through.
type GameState struct {
	mu      sync.RWMutex
	players map[string]*PlayerState
}

// NewGameState returns an empty GameState.
func NewGameState() *GameState {
	return &GameState{players: make(map[string]*PlayerState)}
}

// AddPlayer anchors st under id and returns a handle to it.
//
// Precondition: id must be non-empty; st must be non-nil with a non-nil Attributes aggregator.
// Postcondition: Player(id) returns a handle to st.
func (g *GameState) AddPlayer(id string, st *PlayerState) (*Player, error) {
	if id == "" {
		return nil, fmt.Errorf("character: GameState.AddPlayer: id must not be empty")
	}
	if st == nil || st.Attributes == nil {
		return nil, fmt.Errorf("character: GameState.AddPlayer: player %q has no attributes", id)
	}
	if st.Loadout == nil {
		st.Loadout = equipment.NewLoadout()
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, exists := g.players[id]; exists {
		return nil, fmt.Errorf("character: GameState.AddPlayer: player %q already present", id)
	}
	g.players[id] = st
	return &Player{id: id, game: g}, nil
}

// Player returns a handle to the player stored under id.
func (g *GameState) Player(id string) (*Player, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if _, ok := g.players[id]; !ok {
		return nil, false
	}
	return &Player{id: id, game: g}, true
}

// State returns the stored state for id, or nil.
func (g *GameState) State(id string) *PlayerState {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.players[id]
}

// Update runs fn against the state stored under id while holding the write
// lock. It reports false when no such player exists.
func (g *GameState) Update(id string, fn func(st *PlayerState)) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	st, ok := g.players[id]
	if !ok {
		return false
	}
	fn(st)
	return true
}

// Player is a handle onto a PlayerState anchored in a GameState.
type Player struct {
	id   string
	game *GameState
}

// State returns the player's central state.
func (p *Player) State() *PlayerState { return p.game.State(p.id) }

// Update runs fn against the player's central state under the GameState lock.
func (p *Player) Update(fn func(st *PlayerState)) bool { return p.game.Update(p.id, fn) }

// Combatant implementation.

func (p *Player) ID() string { return p.id }
func (p *Player) Name() string { return p.State().Name }
func (p *Player) Kind() Kind { return KindPlayer }
func (p *Player) Attributes() *attribute.Aggregator { return p.State().Attributes }
func (p *Player) Equipment() *equipment.Loadout { return p.State().Loadout }
func (p *Player) NaturalWeapon() *equipment.WeaponDef { return nil }
func (p *Player) SelectedAbility() string { return p.State().selected }
func (p *Player) SelectAbility(id string) { p.State().selected = id }
func (p *Player) KnownAbilities() []string { return slices.Clone(p.State().Abilities) }
func (p *Player) IsDefeated() bool { return defeated(p.State().Attributes) }
func (p *Player) TakeDamage(amount int) int { return takeDamage(p.State().Attributes, amount) }
