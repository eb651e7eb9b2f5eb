package ability

import "sync"

type cooldownKey struct {
	owner   string
	ability string
}

// CooldownTable holds remaining cooldown rounds per (owner, ability) pair.
// Absent entries have no cooldown. It is safe for concurrent use.
type CooldownTable struct {
	mu        sync.Mutex
	remaining map[cooldownKey]int
}

// NewCooldownTable returns an empty table.
func NewCooldownTable() *CooldownTable {
	return &CooldownTable{remaining: make(map[cooldownKey]int)}
}

// Set starts a cooldown of rounds for owner's ability. rounds <= 0 clears it.
func (t *CooldownTable) Set(owner, ability string, rounds int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	k := cooldownKey{owner, ability}
	if rounds <= 0 {
		delete(t.remaining, k)
		return
	}
	t.remaining[k] = rounds
}

// Remaining returns the rounds left on owner's ability, or 0.
func (t *CooldownTable) Remaining(owner, ability string) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.remaining[cooldownKey{owner, ability}]
}

// Tick decrements every cooldown by one round, regardless of owner. Entries
// reaching zero are dropped.
//
// Postcondition: every remaining entry is >= 1.
func (t *CooldownTable) Tick() {
	t.mu.Lock()
	defer t.mu.Unlock()
	for k, v := range t.remaining {
		if v <= 1 {
			delete(t.remaining, k)
			continue
		}
		t.remaining[k] = v - 1
	}
}

// TickOwner decrements owner's cooldowns by one round, dropping entries that
// reach zero.
func (t *CooldownTable) TickOwner(owner string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for k, v := range t.remaining {
		if k.owner != owner {
			continue
		}
		if v <= 1 {
			delete(t.remaining, k)
			continue
		}
		t.remaining[k] = v - 1
	}
}

// Clear drops every cooldown held by owner.
func (t *CooldownTable) Clear(owner string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for k := range t.remaining {
		if k.owner == owner {
			delete(t.remaining, k)
		}
	}
}

// Active returns a copy of owner's cooldowns keyed by ability ID.
func (t *CooldownTable) Active(owner string) map[string]int {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make(map[string]int)
	for k, v := range t.remaining {
		if k.owner == owner {
			out[k.ability] = v
		}
	}
	return out
}
