package analyzer

import (
	"math"

	"NiftyPulse/internal/model"
)

// Confidence modifiers per velocity pattern. Building patterns add,
// fading patterns subtract; the scorer sums the relevant side's modifier
// into signal confidence.
const (
	monsterModifier      = 15
	accelerationModifier = 8
	decelerationModifier = -8
	exhaustionModifier   = -12
)

// classifyVelocity buckets one side's OI development using the 15m and
// 30m magnitudes. Monster loading is checked first: both windows hot is
// a stronger pattern than acceleration's narrower 15m-over-30m test, and
// exhaustion before deceleration since it is its degenerate case.
func (e *Engine) classifyVelocity(d model.OIDelta) model.Velocity {
	if !d.Valid15m || !d.Valid30m {
		return model.Velocity{Pattern: model.VelocityNormal, Strength: "WEAK"}
	}
	m15 := math.Abs(d.Change15m)
	m30 := math.Abs(d.Change30m)
	cfg := e.cfg.Velocity

	switch {
	case m15 >= cfg.MonsterFloor && m30 >= cfg.MonsterFloor:
		return model.Velocity{Pattern: model.VelocityMonsterLoad, Strength: "STRONG", Modifier: monsterModifier}
	case m30 >= cfg.ExhaustHigh && m15 <= cfg.ExhaustLow:
		return model.Velocity{Pattern: model.VelocityExhaustion, Strength: "STRONG", Modifier: exhaustionModifier}
	case m15 > m30 && m15 >= cfg.AccelFloor:
		return model.Velocity{Pattern: model.VelocityAcceleration, Strength: "MEDIUM", Modifier: accelerationModifier}
	case m30 > m15 && m30 >= cfg.AccelFloor:
		return model.Velocity{Pattern: model.VelocityDeceleration, Strength: "MEDIUM", Modifier: decelerationModifier}
	default:
		return model.Velocity{Pattern: model.VelocityNormal, Strength: "WEAK"}
	}
}
