// Package combat enumerates a combatant's attacks and resolves them against a
// defender: hit or miss, critical or fumble, damage. It never decides how a
// battle ends; callers read the Report.
package combat

import (
	"fmt"

	"github.com/cory-johannsen/battlecore/internal/game/ability"
)

// Formulas used when a weapon does not supply its own.
const (
	DefaultAttackFormula = "1d20+strengthMod"
	UnarmedDamageFormula = "1d4+max(0,strengthMod)"
)

// AttackSource is where an attack comes from.
type AttackSource int

const (
	SourceNatural AttackSource = iota
	SourceEquipped
	SourceAbility
	SourceUnarmed
)

// String returns a human-readable source label.
func (s AttackSource) String() string {
	switch s {
	case SourceNatural:
		return "natural"
	case SourceEquipped:
		return "equipped"
	case SourceAbility:
		return "ability"
	case SourceUnarmed:
		return "unarmed"
	default:
		return "unknown"
	}
}

// Attack is one enumerated attack step. It is built fresh on every
// enumeration and never stored.
type Attack struct {
	Source        AttackSource
	Name          string
	DamageFormula string
	AttackFormula string // empty for ability attacks, which always hit
	IsMain        bool
	IsOffhand     bool
	Ability       *ability.Definition
}

// LogType classifies a log entry.
type LogType string

const (
	LogHit     LogType = "hit"
	LogCrit    LogType = "crit"
	LogMiss    LogType = "miss"
	LogFumble  LogType = "fumble"
	LogKill    LogType = "kill"
	LogAbility LogType = "ability"
	LogInfo    LogType = "info"
)

// LogEntry is one human-readable line of a resolution.
type LogEntry struct {
	Message string
	Type    LogType
}

// ConditionApplication is a condition an ability asks the caller to apply.
type ConditionApplication struct {
	TargetID string
	Effect   ability.ConditionEffect
}

// Splash is area-ability damage the caller applies to the defender's allies.
// Damage is before each ally's damage reduction.
type Splash struct {
	AbilityID string
	Damage    int
}

// Report is the outcome of ResolveAttacks. All numeric fields are 0 when
// nothing happened.
type Report struct {
	Log              []LogEntry
	TotalDamage      int
	Healing          int
	DefenderDefeated bool
	Commitments      []ability.Commitment
	Conditions       []ConditionApplication
	Splash           []Splash
}

func (r *Report) logf(t LogType, format string, args ...any) {
	r.Log = append(r.Log, LogEntry{Message: fmt.Sprintf(format, args...), Type: t})
}
