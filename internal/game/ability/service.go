package ability

import (
	"fmt"
	"math"
	"sort"

	"go.uber.org/zap"

	"github.com/cory-johannsen/battlecore/internal/game/attribute"
	"github.com/cory-johannsen/battlecore/internal/game/character"
	"github.com/cory-johannsen/battlecore/internal/game/dice"
)

// Code classifies why an ability cannot be used.
type Code string

const (
	CodeOK                   Code = ""
	CodeUnknownAbility       Code = "ConfigurationMissing"
	CodeResourceInsufficient Code = "ResourceInsufficient"
	CodeRequirementUnmet     Code = "RequirementUnmet"
	CodeOnCooldown           Code = "OnCooldown"
)

// Check is the outcome of a usability check.
type Check struct {
	Success bool
	Reason  string
	Code    Code
}

// Commitment records what a Commit spent.
type Commitment struct {
	OwnerID        string
	AbilityID      string
	ResourcesSpent map[attribute.Resource]float64
	CooldownSet    int
}

// Service gates and commits abilities and resolves their damage. Cooldown
// state is kept per (owner, ability) in its CooldownTable.
type Service struct {
	registry  *Registry
	cooldowns *CooldownTable
	dice      *dice.Engine
	logger    *zap.Logger
}

// NewService creates a Service.
//
// Precondition: registry and engine must be non-nil. A nil cooldowns gets a
// fresh table; a nil logger discards output.
func NewService(registry *Registry, cooldowns *CooldownTable, engine *dice.Engine, logger *zap.Logger) *Service {
	if cooldowns == nil {
		cooldowns = NewCooldownTable()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{registry: registry, cooldowns: cooldowns, dice: engine, logger: logger}
}

// Cooldowns returns the service's cooldown table.
func (s *Service) Cooldowns() *CooldownTable { return s.cooldowns }

// Lookup returns the definition for id. A missing id is logged and reported
// as (nil, false) so one bad content reference cannot halt a battle.
func (s *Service) Lookup(id string) (*Definition, bool) {
	d, ok := s.registry.Get(id)
	if !ok {
		s.logger.Warn("ability not found", zap.String("ability", id))
	}
	return d, ok
}

// CanUse checks, in order, resource sufficiency, attribute requirements, and
// cooldown, and reports the first failure.
//
// Postcondition: Success is true iff Code == CodeOK.
func (s *Service) CanUse(c character.Combatant, def *Definition) Check {
	if def == nil {
		return Check{Reason: "Unknown ability", Code: CodeUnknownAbility}
	}
	agg := c.Attributes()
	for _, cost := range def.Costs {
		have := agg.Resource(cost.Resource)
		if have < cost.Amount {
			return Check{
				Reason: fmt.Sprintf("Not enough %s for %s (need %g, have %g)", cost.Resource, def.Name, cost.Amount, have),
				Code:   CodeResourceInsufficient,
			}
		}
	}
	names := make([]string, 0, len(def.Requirements))
	for name := range def.Requirements {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		need := def.Requirements[name]
		if agg.Get(name) < need {
			return Check{
				Reason: fmt.Sprintf("%s requires %s %g", def.Name, name, need),
				Code:   CodeRequirementUnmet,
			}
		}
	}
	if left := s.cooldowns.Remaining(c.ID(), def.ID); left > 0 {
		return Check{
			Reason: fmt.Sprintf("%s is on cooldown for %d more round(s)", def.Name, left),
			Code:   CodeOnCooldown,
		}
	}
	return Check{Success: true}
}

// Commit spends def's costs from c and starts its cooldown. It does not
// re-validate; callers must get a successful CanUse first.
//
// Postcondition: Remaining(c, def.ID) == def.Cooldown.
func (s *Service) Commit(c character.Combatant, def *Definition) Commitment {
	agg := c.Attributes()
	spent := make(map[attribute.Resource]float64, len(def.Costs))
	for _, cost := range def.Costs {
		before := agg.Resource(cost.Resource)
		after := agg.ModifyResource(cost.Resource, -cost.Amount)
		spent[cost.Resource] += before - after
	}
	s.cooldowns.Set(c.ID(), def.ID, def.Cooldown)
	s.logger.Debug("ability committed",
		zap.String("owner", c.ID()),
		zap.String("ability", def.ID),
		zap.Int("cooldown", def.Cooldown),
	)
	return Commitment{
		OwnerID:        c.ID(),
		AbilityID:      def.ID,
		ResourcesSpent: spent,
		CooldownSet:    def.Cooldown,
	}
}

// Roll evaluates def's damage formula for caster. Equipment terms are part of
// the context only when def.UsesEquipment. A formula with a dice term is
// rolled; one without is evaluated as plain arithmetic.
func (s *Service) Roll(caster character.Combatant, def *Definition) dice.Result {
	ctx := character.NewDamageContext(caster, def.UsesEquipment())
	if dice.HasDice(def.DamageFormula) {
		return s.dice.Roll(def.DamageFormula, ctx)
	}
	v := s.dice.Evaluator().Evaluate(def.DamageFormula, ctx)
	total := int(math.Floor(v))
	return dice.Result{Formula: def.DamageFormula, Total: total, Modifier: total, Details: fmt.Sprintf("%s = %d", def.DamageFormula, total)}
}

// ResolveDamage returns def's damage for caster against target, floored and
// never negative. target may be nil.
func (s *Service) ResolveDamage(caster character.Combatant, def *Definition, target character.Combatant) int {
	res := s.Roll(caster, def)
	dmg := max(res.Total, 0)
	fields := []zap.Field{
		zap.String("caster", caster.ID()),
		zap.String("ability", def.ID),
		zap.Int("damage", dmg),
	}
	if target != nil {
		fields = append(fields, zap.String("target", target.ID()))
	}
	s.logger.Debug("ability damage", fields...)
	return dmg
}

// TickCooldowns advances the cooldowns of owners by one round. With no owners
// every cooldown in the table advances.
func (s *Service) TickCooldowns(owners ...string) {
	if len(owners) == 0 {
		s.cooldowns.Tick()
		return
	}
	for _, o := range owners {
		s.cooldowns.TickOwner(o)
	}
}

// Remaining returns the rounds left on c's ability id.
func (s *Service) Remaining(c character.Combatant, id string) int {
	return s.cooldowns.Remaining(c.ID(), id)
}
