package strategy

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"NiftyPulse/internal/analyzer"
	"NiftyPulse/internal/config"
	"NiftyPulse/internal/market"
	"NiftyPulse/internal/model"
)

// Scoring weights. The gate thresholds are configuration; the point
// values the gates unlock are fixed by the strategy itself.
const (
	baseScore     = 40
	primaryPoints = 10
	strongBonus   = 5
	otmPoints     = 5
	pcrPoints     = 5
	maxConfidence = 98 // never 100, the market owes nobody certainty
	bonusCap      = 10
	expiryPenalty = 5

	// PCR readings beyond these are one-sided crowding; further bets in
	// the crowded direction get shaved even when the gates pass.
	pcrOverheated = 2.0
	pcrOversold   = 0.5
)

// Scorer turns an IndicatorSet into at most one directional Signal per
// cycle. CE is evaluated first by convention; the first direction that
// survives every gate and clears the confidence floor wins.
type Scorer struct {
	cfg *config.Config
}

// NewScorer creates a scorer bound to an immutable config.
func NewScorer(cfg *config.Config) *Scorer {
	return &Scorer{cfg: cfg}
}

// Evaluate runs the gated scoring pipeline. A nil return is the normal
// no-trade outcome, not an error.
func (s *Scorer) Evaluate(ind *model.IndicatorSet, now time.Time) *model.Signal {
	// Session-close buffer: fresh entries this late cannot reach their
	// minimum hold time.
	if market.MinutesToClose(now) < s.cfg.Market.CloseBufferMinutes {
		log.Debug().Msg("scorer: inside close buffer, no entries")
		return nil
	}
	if !ind.Warm() {
		log.Debug().Msg("scorer: history not warmed up")
		return nil
	}
	// Universal vetoes before any directional work.
	if ind.Reversal {
		log.Debug().Msg("scorer: both-side ATM unwinding, reversal veto")
		return nil
	}
	if ind.BullTrap || ind.BearTrap {
		log.Debug().Bool("bull", ind.BullTrap).Bool("bear", ind.BearTrap).Msg("scorer: trap veto")
		return nil
	}

	if sig := s.evaluateDirection(ind, model.CEBuy, now); sig != nil {
		return sig
	}
	return s.evaluateDirection(ind, model.PEBuy, now)
}

// side returns the indicators for the option side whose unwinding powers
// the given direction: calls for CE, puts for PE.
func side(ind *model.IndicatorSet, dir model.Direction) *model.SideIndicators {
	if dir == model.CEBuy {
		return &ind.Call
	}
	return &ind.Put
}

func (s *Scorer) evaluateDirection(ind *model.IndicatorSet, dir model.Direction, now time.Time) *model.Signal {
	sd := side(ind, dir)

	vwapScore, ok := analyzer.ValidateVWAP(ind, dir, s.cfg)
	if !ok {
		log.Debug().Str("dir", string(dir)).Msg("scorer: VWAP side/band reject")
		return nil
	}
	if vwapScore < s.cfg.VWAP.MinScore {
		log.Debug().Str("dir", string(dir)).Int("score", vwapScore).Msg("scorer: VWAP score below floor")
		return nil
	}

	switch sd.Velocity.Pattern {
	case model.VelocityDeceleration, model.VelocityExhaustion:
		log.Debug().Str("dir", string(dir)).Str("pattern", string(sd.Velocity.Pattern)).
			Msg("scorer: fading velocity reject")
		return nil
	}

	primary, strong, tags := s.primaryChecks(sd)
	if primary < s.cfg.Score.MinPrimary {
		log.Debug().Str("dir", string(dir)).Int("passed", primary).Msg("scorer: primary quorum not met")
		return nil
	}

	confidence := baseScore
	confidence += primary * primaryPoints
	if strong {
		confidence += strongBonus
		tags = append(tags, "STRONG_UNWINDING")
	}

	// VWAP-derived term: 0 at the floor, up to +10 at a perfect band
	// center reading.
	confidence += (vwapScore - s.cfg.VWAP.MinScore) * 10 / (100 - s.cfg.VWAP.MinScore)

	confidence += sd.Velocity.Modifier
	if sd.Velocity.Modifier != 0 {
		tags = append(tags, string(sd.Velocity.Pattern))
	}

	if sd.OTMSupport {
		confidence += otmPoints
		tags = append(tags, "OTM_SUPPORT")
	}
	if sd.OTMBlock {
		confidence -= otmPoints
		tags = append(tags, "OTM_WALL")
	}

	confidence += s.pcrModifier(ind, dir, &tags)

	bonus, bonusChecks := s.bonusChecks(ind, sd, dir, &tags)
	confidence += bonus

	if ind.ExpiryDay {
		confidence -= expiryPenalty
		tags = append(tags, "EXPIRY_DAY")
	}

	if confidence > maxConfidence {
		confidence = maxConfidence
	}
	if confidence < 0 {
		confidence = 0
	}

	floor := s.cfg.Score.MinConfidence
	if !ind.FullyWarm() {
		// Early-session regime: the 30m horizon is still dark, so only
		// exceptionally clean setups trade.
		floor = s.cfg.Score.EarlyConfidence
	}
	if confidence < floor {
		log.Debug().Str("dir", string(dir)).Int("confidence", confidence).Int("floor", floor).
			Msg("scorer: below confidence floor")
		return nil
	}

	sig := &model.Signal{
		Direction:     dir,
		Timestamp:     now,
		Strike:        ind.ATMStrike,
		Confidence:    confidence,
		PrimaryChecks: primary,
		BonusChecks:   bonusChecks,
		VWAPScore:     vwapScore,
		Tags:          tags,
	}
	s.applyLevels(sig, ind)

	log.Info().Str("dir", string(dir)).Int("confidence", confidence).
		Int("strike", sig.Strike).Strs("tags", tags).Msg("signal generated")
	return sig
}

// primaryChecks counts the quorum predicates: multi-timeframe total OI
// unwinding, ATM-scoped unwinding, and ATM volume confirmation. Strong
// is set when both short horizons punch through the strong thresholds.
func (s *Scorer) primaryChecks(sd *model.SideIndicators) (count int, strong bool, tags []string) {
	oi := s.cfg.OI
	if sd.Total.Change5m <= -oi.Min5m && sd.Total.Change15m <= -oi.Min15m {
		count++
		tags = append(tags, "MULTI_TF_UNWINDING")
		if sd.Total.Change5m <= -oi.Strong5m && sd.Total.Change15m <= -oi.Strong15m {
			strong = true
		}
	}
	if sd.ATM.Valid15m && sd.ATM.Change15m <= -oi.ATM {
		count++
		tags = append(tags, "ATM_UNWINDING")
	}
	if sd.VolumeSpike >= s.cfg.Volume.SpikeMultiplier {
		count++
		tags = append(tags, "VOLUME_SPIKE")
	}
	return count, strong, tags
}

func (s *Scorer) pcrModifier(ind *model.IndicatorSet, dir model.Direction, tags *[]string) int {
	aligned := (dir == model.CEBuy && ind.PCRBias == "BULLISH") ||
		(dir == model.PEBuy && ind.PCRBias == "BEARISH")
	if aligned {
		*tags = append(*tags, "PCR_ALIGNED")
		mod := pcrPoints
		if dir == model.CEBuy && ind.PCR > pcrOverheated {
			mod -= pcrPoints * 2
			*tags = append(*tags, "PCR_OVERHEATED")
		}
		if dir == model.PEBuy && ind.PCR < pcrOversold {
			mod -= pcrPoints * 2
			*tags = append(*tags, "PCR_OVERSOLD")
		}
		return mod
	}
	return 0
}

// bonusChecks sums the secondary predicates, capped so no pile of weak
// confirmations can outvote a primary gate.
func (s *Scorer) bonusChecks(ind *model.IndicatorSet, sd *model.SideIndicators, dir model.Direction, tags *[]string) (int, int) {
	bonus, checks := 0, 0

	candleAligned := (dir == model.CEBuy && ind.CandleShape == model.CandleBullish) ||
		(dir == model.PEBuy && ind.CandleShape == model.CandleBearish)
	if candleAligned && ind.CandleSize >= s.cfg.Candle.MinSize {
		bonus += 3
		checks++
		*tags = append(*tags, "CANDLE_ALIGNED")
	}

	streakAligned := (dir == model.CEBuy && ind.Streak >= 3) ||
		(dir == model.PEBuy && ind.Streak <= -3)
	if streakAligned {
		bonus += 3
		checks++
		*tags = append(*tags, "MOMENTUM_STREAK")
	}

	if sd.VolumeSpike >= s.cfg.Volume.SpikeStrong {
		bonus += 3
		checks++
		*tags = append(*tags, "ORDER_FLOW")
	}

	if sd.Total.Valid30m && sd.Total.Change30m <= -s.cfg.OI.Significant {
		bonus += 4
		checks++
		*tags = append(*tags, "30M_CONFIRMATION")
	}

	if bonus > bonusCap {
		bonus = bonusCap
	}
	return bonus, checks
}

// Describe renders a compact audit line for logs.
func Describe(sig *model.Signal) string {
	return fmt.Sprintf("%s %d @ %.1f (target %.1f, stop %.1f, conf %d)",
		sig.Direction, sig.Strike, sig.Entry, sig.Target, sig.StopLoss, sig.Confidence)
}
