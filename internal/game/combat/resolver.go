package combat

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/cory-johannsen/battlecore/internal/game/ability"
	"github.com/cory-johannsen/battlecore/internal/game/attribute"
	"github.com/cory-johannsen/battlecore/internal/game/character"
	"github.com/cory-johannsen/battlecore/internal/game/dice"
	"github.com/cory-johannsen/battlecore/internal/game/equipment"
)

// Resolver enumerates and resolves attacks.
type Resolver struct {
	abilities *ability.Service
	dice      *dice.Engine
	logger    *zap.Logger
}

// NewResolver creates a Resolver.
//
// Precondition: abilities and engine must be non-nil. A nil logger discards output.
func NewResolver(abilities *ability.Service, engine *dice.Engine, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{abilities: abilities, dice: engine, logger: logger}
}

// Plan is the result of enumerating a combatant's attacks.
type Plan struct {
	Attacks []Attack
	// Commitment is set when the selected ability passed its check and its
	// cost and cooldown were spent.
	Commitment *ability.Commitment
	Log        []LogEntry
}

// Enumerate lists attacker's attacks in resolution order:
//
//  1. main hand: the natural weapon when the main hand is empty, else the equipped weapon
//  2. an attacking off-hand weapon
//  3. the selected ability, if CanUse passes; its cost and cooldown are committed here
//  4. unarmed, when steps 1-3 produced nothing
//  5. unarmed (or natural) appended when the ability is the only attack
func (r *Resolver) Enumerate(attacker character.Combatant) Plan {
	var plan Plan
	loadout := attacker.Equipment()
	if loadout == nil {
		loadout = equipment.NewLoadout()
	}
	natural := attacker.NaturalWeapon()

	physical := 0
	if main := loadout.Main(); main == nil && natural != nil {
		plan.Attacks = append(plan.Attacks, weaponAttack(SourceNatural, natural, true, false))
		physical++
	} else if main != nil {
		plan.Attacks = append(plan.Attacks, weaponAttack(SourceEquipped, main, true, false))
		physical++
	}
	if off := loadout.OffhandWeapon(); off != nil {
		plan.Attacks = append(plan.Attacks, weaponAttack(SourceEquipped, off, false, true))
		physical++
	}

	if id := attacker.SelectedAbility(); id != "" {
		def, ok := r.abilities.Lookup(id)
		switch {
		case !ok:
			plan.Log = append(plan.Log, LogEntry{Message: fmt.Sprintf("%s reaches for an unknown ability.", attacker.Name()), Type: LogInfo})
		default:
			check := r.abilities.CanUse(attacker, def)
			if !check.Success {
				plan.Log = append(plan.Log, LogEntry{Message: check.Reason, Type: LogInfo})
				break
			}
			c := r.abilities.Commit(attacker, def)
			plan.Commitment = &c
			plan.Attacks = append(plan.Attacks, Attack{
				Source:        SourceAbility,
				Name:          def.Name,
				DamageFormula: def.DamageFormula,
				Ability:       def,
			})
		}
	}

	switch {
	case len(plan.Attacks) == 0:
		plan.Attacks = append(plan.Attacks, unarmedAttack())
	case physical == 0:
		if natural != nil {
			plan.Attacks = append(plan.Attacks, weaponAttack(SourceNatural, natural, true, false))
		} else {
			plan.Attacks = append(plan.Attacks, unarmedAttack())
		}
	}
	return plan
}

func weaponAttack(src AttackSource, w *equipment.WeaponDef, main, off bool) Attack {
	atk := w.AttackFormula
	if atk == "" {
		atk = DefaultAttackFormula
	}
	return Attack{
		Source:        src,
		Name:          w.Name,
		DamageFormula: w.DamageFormula,
		AttackFormula: atk,
		IsMain:        main,
		IsOffhand:     off,
	}
}

func unarmedAttack() Attack {
	return Attack{
		Source:        SourceUnarmed,
		Name:          "fists",
		DamageFormula: UnarmedDamageFormula,
		AttackFormula: DefaultAttackFormula,
		IsMain:        true,
	}
}

// ResolveAttacks enumerates attacker's attacks and resolves them in order
// against defender, stopping as soon as the defender's health reaches zero.
// Invalid targets degrade to an informational log entry.
//
// Postcondition: never panics; DefenderDefeated reports defender.IsDefeated() after resolution.
func (r *Resolver) ResolveAttacks(attacker, defender character.Combatant) Report {
	var rep Report
	switch {
	case attacker == nil || attacker.IsDefeated():
		rep.logf(LogInfo, "No one is able to attack.")
		return rep
	case defender == nil || defender.IsDefeated():
		rep.logf(LogInfo, "%s has no valid target.", attacker.Name())
		return rep
	}

	plan := r.Enumerate(attacker)
	rep.Log = append(rep.Log, plan.Log...)
	if plan.Commitment != nil {
		rep.Commitments = append(rep.Commitments, *plan.Commitment)
	}

	for _, atk := range plan.Attacks {
		if atk.Source == SourceAbility {
			r.resolveAbility(&rep, attacker, defender, atk.Ability)
		} else {
			r.resolveWeapon(&rep, attacker, defender, atk)
		}
		if defender.IsDefeated() {
			rep.DefenderDefeated = true
			rep.logf(LogKill, "%s is defeated!", defender.Name())
			break
		}
	}
	return rep
}

func (r *Resolver) resolveWeapon(rep *Report, attacker, defender character.Combatant, atk Attack) {
	ctx := character.NewDamageContext(attacker, true)
	roll := r.dice.Roll(atk.AttackFormula, ctx)
	natural := roll.Natural()
	ac := int(defender.Attributes().Get(attribute.ArmorClass))

	crit := natural == 20
	fumble := natural == 1
	hit := crit || (!fumble && roll.Total >= ac)
	r.logger.Debug("attack roll",
		zap.String("attacker", attacker.ID()),
		zap.String("defender", defender.ID()),
		zap.String("attack", atk.Name),
		zap.Int("natural", natural),
		zap.Int("total", roll.Total),
		zap.Int("armor_class", ac),
		zap.Bool("hit", hit),
		zap.Bool("crit", crit),
	)
	switch {
	case fumble:
		rep.logf(LogFumble, "%s fumbles with %s and misses %s.", attacker.Name(), atk.Name, defender.Name())
		return
	case !hit:
		rep.logf(LogMiss, "%s misses %s with %s (%d vs AC %d).", attacker.Name(), defender.Name(), atk.Name, roll.Total, ac)
		return
	}

	dmgRoll := r.dice.Roll(atk.DamageFormula, ctx)
	dmg := dmgRoll.Total
	if crit {
		dmg = dmgRoll.CriticalTotal()
	}
	dmg = Mitigate(defender, dmg)
	defender.TakeDamage(dmg)
	rep.TotalDamage += dmg

	if crit {
		rep.logf(LogCrit, "%s critically hits %s with %s for %d damage.", attacker.Name(), defender.Name(), atk.Name, dmg)
		return
	}
	rep.logf(LogHit, "%s hits %s with %s for %d damage.", attacker.Name(), defender.Name(), atk.Name, dmg)
}

func (r *Resolver) resolveAbility(rep *Report, attacker, defender character.Combatant, def *ability.Definition) {
	if def.Target == ability.TargetSelf {
		amount := r.abilities.ResolveDamage(attacker, def, attacker)
		before := attacker.Attributes().Resource(attribute.ResourceHealth)
		after := attacker.Attributes().ModifyResource(attribute.ResourceHealth, float64(amount))
		healed := int(after - before)
		rep.Healing += healed
		rep.logf(LogAbility, "%s uses %s and recovers %d health.", attacker.Name(), def.Name, healed)
		if def.Condition != nil {
			rep.Conditions = append(rep.Conditions, ConditionApplication{TargetID: attacker.ID(), Effect: *def.Condition})
		}
		return
	}

	raw := r.abilities.ResolveDamage(attacker, def, defender)
	dmg := Mitigate(defender, raw)
	defender.TakeDamage(dmg)
	rep.TotalDamage += dmg
	rep.logf(LogAbility, "%s uses %s on %s for %d damage.", attacker.Name(), def.Name, defender.Name(), dmg)
	if def.Target == ability.TargetArea && raw > 0 {
		rep.Splash = append(rep.Splash, Splash{AbilityID: def.ID, Damage: raw})
	}
	if def.Condition != nil {
		rep.Conditions = append(rep.Conditions, ConditionApplication{TargetID: defender.ID(), Effect: *def.Condition})
	}
}

// Mitigate subtracts defender's damage reduction from dmg, never going below zero.
func Mitigate(defender character.Combatant, dmg int) int {
	dr := int(defender.Attributes().Get(attribute.DamageReduction))
	return max(dmg-dr, 0)
}
