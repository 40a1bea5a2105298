package strategy

import (
	"time"

	"github.com/rs/zerolog/log"

	"NiftyPulse/internal/config"
	"NiftyPulse/internal/model"
)

// Validator enforces temporal re-entry protection independent of
// scoring, so cooldown policy can change without touching the scorer.
// It remembers the last executed signal and refreshes that memory from
// exit events, since re-entry risk is measured from when a trade ended,
// not when it began.
type Validator struct {
	cfg *config.Config

	has        bool
	lastTime   time.Time
	lastDir    model.Direction
	lastStrike int
}

// NewValidator creates a validator with empty history; the first signal
// always passes.
func NewValidator(cfg *config.Config) *Validator {
	return &Validator{cfg: cfg}
}

// Validate reports whether the candidate may execute at now, with a
// human-readable rejection reason for the debug log.
func (v *Validator) Validate(sig *model.Signal, now time.Time) (bool, string) {
	if !v.has {
		return true, ""
	}
	elapsed := now.Sub(v.lastTime)

	if elapsed < time.Duration(v.cfg.Cooldown.GlobalSeconds)*time.Second {
		return false, "global cooldown"
	}
	if sig.Direction == v.lastDir && sig.Strike == v.lastStrike &&
		elapsed < time.Duration(v.cfg.Cooldown.SameStrikeMinutes)*time.Minute {
		return false, "same-strike cooldown"
	}
	if sig.Direction == v.lastDir &&
		elapsed < time.Duration(v.cfg.Cooldown.SameDirectionMinutes)*time.Minute {
		return false, "same-direction cooldown"
	}
	if sig.Direction != v.lastDir &&
		elapsed < time.Duration(v.cfg.Cooldown.OppositeMinutes)*time.Minute {
		return false, "opposite-direction cooldown"
	}
	return true, ""
}

// Commit records an executed signal.
func (v *Validator) Commit(sig *model.Signal) {
	v.has = true
	v.lastTime = sig.Timestamp
	v.lastDir = sig.Direction
	v.lastStrike = sig.Strike
}

// HandleExit consumes a position-close event and restarts the cooldown
// clock from the close, keyed to the closed trade's direction and strike.
func (v *Validator) HandleExit(evt model.ExitEvent) {
	v.has = true
	v.lastTime = evt.ClosedAt
	v.lastDir = evt.Direction
	v.lastStrike = evt.Strike
	log.Debug().Str("dir", string(evt.Direction)).Int("strike", evt.Strike).
		Time("closed_at", evt.ClosedAt).Msg("validator: cooldown rebased on exit")
}
