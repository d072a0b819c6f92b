package combat

import (
	"sort"
	"strings"

	"github.com/andrescamacho/tradewars-server/internal/domain/world"
)

// Tuning holds the combat math constants. The values are external
// reference data; the resolver only fixes the ordering of phases and the
// determinism of rolls.
type Tuning struct {
	// Fraction of max shields regained before damage, rounds 2+.
	ShieldRechargeFraction float64
	// Most fighters a garrison commits in one offensive burst.
	GarrisonBurst int
	// Incoming shield damage multiplier while bracing.
	BraceShieldFactor float64
	// Fighter-loss multiplier for shield overflow while bracing.
	BraceFighterFactor float64
	// Damage efficacy against a target that chose flee this round.
	FleeTargetFactor float64
	// Flee success probability: base + warp*ratio - threat*ratio.
	FleeBase         float64
	FleeWarpWeight   float64
	FleeThreatWeight float64
	// Attacker fighter losses: commit * (base + weight*defShieldRatio) * roll.
	AttackerLossBase         float64
	AttackerLossShieldWeight float64
}

// DefaultTuning returns the stock combat constants.
func DefaultTuning() Tuning {
	return Tuning{
		ShieldRechargeFraction:   0.10,
		GarrisonBurst:            50,
		BraceShieldFactor:        0.5,
		BraceFighterFactor:       0.5,
		FleeTargetFactor:         0.5,
		FleeBase:                 0.4,
		FleeWarpWeight:           0.4,
		FleeThreatWeight:         0.3,
		AttackerLossBase:         0.05,
		AttackerLossShieldWeight: 0.25,
	}
}

// FleeResult records one flee attempt.
type FleeResult struct {
	CombatantID string
	Destination int
	Probability float64
	Success     bool
}

// CombatantReport carries one participant's pre/post stats for the round.
type CombatantReport struct {
	CombatantID  string
	PreFighters  int
	PreShields   int
	PostFighters int
	PostShields  int
	FighterLoss  int
	ShieldDamage int
	Defeated     bool
	Fled         bool
}

// Outcome is everything the application layer needs to persist and
// announce a resolved round.
type Outcome struct {
	Round              int
	Actions            map[string]Action
	Reports            map[string]*CombatantReport
	FleeResults        []FleeResult
	DefeatedCharacters []string
	DestroyedGarrisons []string
	Ended              bool
	Result             string
}

// Resolver closes combat rounds. It mutates combatant state inside the
// encounter; callers hold the sector's combat lock and write the results
// back to the world afterwards.
type Resolver struct {
	tuning Tuning
	roller Roller
}

// NewResolver creates a resolver with the given tuning and roll source.
func NewResolver(tuning Tuning, roller Roller) *Resolver {
	return &Resolver{tuning: tuning, roller: roller}
}

// Resolve closes the current round. Phases, in order: normalize actions,
// shield recharge (rounds 2+), damage, flee, destruction, end-state.
func (r *Resolver) Resolve(e *Encounter) *Outcome {
	e.State = StateResolving

	outcome := &Outcome{
		Round:   e.Round,
		Actions: r.normalizeActions(e),
		Reports: map[string]*CombatantReport{},
	}

	for id, c := range e.Participants {
		outcome.Reports[id] = &CombatantReport{
			CombatantID: id,
			PreFighters: c.Fighters,
			PreShields:  c.Shields,
		}
	}

	if e.Round > 1 {
		r.rechargeShields(e)
	}

	r.applyDamage(e, outcome)
	r.resolveFlees(e, outcome)
	r.resolveDestruction(e, outcome)

	for id, c := range e.Participants {
		report := outcome.Reports[id]
		report.PostFighters = c.Fighters
		report.PostShields = c.Shields
		report.FighterLoss = report.PreFighters - c.Fighters
		report.Defeated = c.Defeated
		report.Fled = c.Fled
	}

	if e.LiveSides() <= 1 {
		outcome.Ended = true
		outcome.Result = r.endResult(e, outcome)
	}
	return outcome
}

// normalizeActions fills in orders for silent participants and synthesizes
// garrison behaviour from their standing mode.
func (r *Resolver) normalizeActions(e *Encounter) map[string]Action {
	actions := map[string]Action{}

	for _, id := range sortedLiveIDs(e) {
		c := e.Participants[id]
		if c.Kind == CombatantGarrison {
			continue
		}
		action, ok := e.Pending[id]
		if !ok || action.Kind == ActionPay {
			// Pay is short-circuited before resolution; one that slips
			// through (partial toll coverage) degrades to brace.
			action = Brace()
		}
		if action.Kind == ActionAttack && action.Commit > c.Fighters {
			action.Commit = c.Fighters
		}
		actions[id] = action
	}

	for _, id := range sortedLiveIDs(e) {
		c := e.Participants[id]
		if c.Kind != CombatantGarrison {
			continue
		}
		actions[id] = r.garrisonAction(e, c, actions)
	}
	return actions
}

// garrisonAction derives a garrison's order for the round from its mode.
func (r *Resolver) garrisonAction(e *Encounter, g *Combatant, actions map[string]Action) Action {
	switch g.GarrisonMode {
	case world.GarrisonDefensive:
		// Return fire at the first non-owner attacking this garrison.
		for _, id := range sortedKeys(actions) {
			action := actions[id]
			attacker := e.Participants[id]
			if action.Kind == ActionAttack && action.TargetID == g.ID &&
				attacker.OwnerCharacterID != g.OwnerCharacterID {
				return Action{Kind: ActionAttack, TargetID: id, Commit: g.Fighters}
			}
		}
		return Brace()
	default:
		// Offensive, and toll garrisons whose toll went unpaid: hit the
		// strongest hostile.
		target := r.strongestHostile(e, g)
		if target == "" {
			return Brace()
		}
		commit := g.Fighters
		if r.tuning.GarrisonBurst > 0 && commit > r.tuning.GarrisonBurst {
			commit = r.tuning.GarrisonBurst
		}
		if commit <= 0 {
			return Brace()
		}
		return Action{Kind: ActionAttack, TargetID: target, Commit: commit}
	}
}

func (r *Resolver) strongestHostile(e *Encounter, g *Combatant) string {
	best := ""
	bestFighters := -1
	for _, id := range sortedLiveIDs(e) {
		c := e.Participants[id]
		if c.ID == g.ID || !c.Targetable() {
			continue
		}
		if c.OwnerCharacterID != "" && c.OwnerCharacterID == g.OwnerCharacterID {
			continue
		}
		if c.Fighters > bestFighters {
			best = id
			bestFighters = c.Fighters
		}
	}
	return best
}

func (r *Resolver) rechargeShields(e *Encounter) {
	for _, c := range e.Participants {
		if !c.Live() || c.Shields >= c.MaxShields {
			continue
		}
		c.Shields += int(float64(c.MaxShields) * r.tuning.ShieldRechargeFraction)
		if c.Shields > c.MaxShields {
			c.Shields = c.MaxShields
		}
	}
}

// applyDamage computes every attack against the phase-start snapshot and
// applies the accumulated totals at once, so simultaneous exchanges are
// order-independent.
func (r *Resolver) applyDamage(e *Encounter, outcome *Outcome) {
	type snapshot struct{ fighters, shields int }
	pre := map[string]snapshot{}
	for id, c := range e.Participants {
		pre[id] = snapshot{fighters: c.Fighters, shields: c.Shields}
	}

	incoming := map[string]float64{}
	attackerLoss := map[string]float64{}

	for _, attackerID := range sortedKeys(outcome.Actions) {
		action := outcome.Actions[attackerID]
		if action.Kind != ActionAttack || action.Commit <= 0 {
			continue
		}
		attacker := e.Participants[attackerID]
		defender, ok := e.Participants[action.TargetID]
		if !ok || !defender.Targetable() {
			continue
		}

		hitRoll := 0.8 + 0.4*r.roller.Roll(e.ID, e.Round, attackerID, defender.ID)
		offense := float64(action.Commit) * hitRoll

		defAction := outcome.Actions[defender.ID]
		if defAction.Kind == ActionFlee {
			offense *= r.tuning.FleeTargetFactor
		}
		if defAction.Kind == ActionBrace {
			offense *= r.tuning.BraceShieldFactor
		}
		incoming[defender.ID] += offense

		shieldRatio := 0.0
		if defender.MaxShields > 0 {
			shieldRatio = float64(pre[defender.ID].shields) / float64(defender.MaxShields)
		}
		lossRoll := 0.8 + 0.4*r.roller.Roll(e.ID, e.Round, attackerID+"#loss", defender.ID)
		loss := float64(action.Commit) * (r.tuning.AttackerLossBase + r.tuning.AttackerLossShieldWeight*shieldRatio) * lossRoll
		if loss > float64(action.Commit) {
			loss = float64(action.Commit)
		}
		attackerLoss[attacker.ID] += loss
	}

	for _, id := range sortedKeys(incoming) {
		c := e.Participants[id]
		total := int(incoming[id])
		absorbed := total
		if absorbed > pre[id].shields {
			absorbed = pre[id].shields
		}
		overflow := total - absorbed

		fighterLoss := float64(overflow)
		if outcome.Actions[id].Kind == ActionBrace {
			fighterLoss *= r.tuning.BraceFighterFactor
		}

		c.Shields = pre[id].shields - absorbed
		c.Fighters -= int(fighterLoss)
		if c.Fighters < 0 {
			c.Fighters = 0
		}
		outcome.Reports[id].ShieldDamage = absorbed
	}

	for _, id := range sortedKeys(attackerLoss) {
		c := e.Participants[id]
		c.Fighters -= int(attackerLoss[id])
		if c.Fighters < 0 {
			c.Fighters = 0
		}
	}
}

// resolveFlees rolls each flee attempt after damage has landed. Failures
// simply stay; their action already counted as non-bracing for damage.
func (r *Resolver) resolveFlees(e *Encounter, outcome *Outcome) {
	enemyFighters := map[string]int{}
	total := 0
	for _, c := range e.Participants {
		if c.Live() {
			total += c.Fighters
		}
	}
	for _, c := range e.Participants {
		if c.Live() {
			enemyFighters[c.Side()] = total - sideFighters(e, c.Side())
		}
	}

	for _, id := range sortedKeys(outcome.Actions) {
		action := outcome.Actions[id]
		if action.Kind != ActionFlee {
			continue
		}
		c := e.Participants[id]
		if !c.Live() {
			continue
		}

		warpRatio := 0.0
		if c.WarpCapacity > 0 {
			warpRatio = float64(c.WarpPower) / float64(c.WarpCapacity)
		}
		threatRatio := 0.0
		if total > 0 {
			threatRatio = float64(enemyFighters[c.Side()]) / float64(total)
		}
		p := r.tuning.FleeBase + r.tuning.FleeWarpWeight*warpRatio - r.tuning.FleeThreatWeight*threatRatio
		if p > 1 {
			p = 1
		}
		if p < 0 {
			p = 0
		}

		roll := r.roller.Roll(e.ID, e.Round, id, "flee")
		success := roll < p
		if success {
			c.Fled = true
		}
		outcome.FleeResults = append(outcome.FleeResults, FleeResult{
			CombatantID: id,
			Destination: action.DestinationSector,
			Probability: p,
			Success:     success,
		})
	}
}

func (r *Resolver) resolveDestruction(e *Encounter, outcome *Outcome) {
	for _, id := range sortedKeys(e.Participants) {
		c := e.Participants[id]
		if c.Defeated || c.Fled {
			continue
		}
		switch c.Kind {
		case CombatantCharacter:
			if c.Fighters <= 0 && c.Shields <= 0 {
				c.Defeated = true
				outcome.DefeatedCharacters = append(outcome.DefeatedCharacters, id)
			}
		case CombatantGarrison:
			if c.Fighters <= 0 {
				c.Defeated = true
				outcome.DestroyedGarrisons = append(outcome.DestroyedGarrisons, id)
			}
		}
	}
}

func (r *Resolver) endResult(e *Encounter, outcome *Outcome) string {
	if len(outcome.DefeatedCharacters) > 0 {
		names := make([]string, 0, len(outcome.DefeatedCharacters))
		for _, id := range outcome.DefeatedCharacters {
			names = append(names, e.Participants[id].Name)
		}
		sort.Strings(names)
		return strings.Join(names, ",") + "_defeated"
	}
	return "resolved"
}

func sideFighters(e *Encounter, side string) int {
	total := 0
	for _, c := range e.Participants {
		if c.Live() && c.Side() == side {
			total += c.Fighters
		}
	}
	return total
}

func sortedLiveIDs(e *Encounter) []string {
	ids := make([]string, 0, len(e.Participants))
	for id, c := range e.Participants {
		if c.Live() {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
