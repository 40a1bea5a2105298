package strategy

import (
	"testing"
	"time"

	"NiftyPulse/internal/config"
	"NiftyPulse/internal/market"
	"NiftyPulse/internal/model"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Load("testdata/absent.yaml")
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	return cfg
}

// midSession is a Wednesday 11:00 IST: no expiry penalty, well clear of
// the close buffer.
var midSession = time.Date(2025, 6, 4, 11, 0, 0, 0, market.IST)

func warm(c5, c15, c30 float64) model.OIDelta {
	return model.OIDelta{
		Change5m: c5, Change15m: c15, Change30m: c30,
		Valid5m: true, Valid15m: true, Valid30m: true,
	}
}

// ceSetup builds an indicator set where every CE gate passes: unwinding
// calls on all horizons, ATM confirmation, a volume spike, price above
// VWAP at one ATR, and a bullish PCR.
func ceSetup() *model.IndicatorSet {
	ind := &model.IndicatorSet{
		Price:        25000,
		ATMStrike:    25000,
		PCR:          1.3,
		PCRBias:      "BULLISH",
		VWAP:         24970,
		VWAPDistance: 30,
		ATR:          30,
		ATRMultiple:  1.0,
		CandleShape:  model.CandleNeutral,
	}
	ind.Call.Total = warm(-3, -4, -3)
	ind.Call.ATM = warm(-2, -4, -3)
	ind.Call.VolumeSpike = 2.5
	ind.Call.OTMSupport = true
	ind.Put.Total = warm(0.5, 1, 1.5)
	ind.Put.ATM = warm(0.5, 1, 1.5)
	return ind
}

func TestEvaluateCESignal(t *testing.T) {
	cfg := testConfig(t)
	s := NewScorer(cfg)
	ind := ceSetup()

	sig := s.Evaluate(ind, midSession)
	if sig == nil {
		t.Fatal("expected a CE signal")
	}
	if sig.Direction != model.CEBuy {
		t.Fatalf("expected CE_BUY, got %s", sig.Direction)
	}
	if sig.Strike != 25000 {
		t.Errorf("expected ATM strike 25000, got %d", sig.Strike)
	}
	if sig.PrimaryChecks != 3 {
		t.Errorf("expected all 3 primary checks, got %d", sig.PrimaryChecks)
	}
	// base 40 + 3 primaries (30) + VWAP term (9) + OTM support (5) +
	// aligned PCR (5) + 30m confirmation bonus (4) = 93.
	if sig.Confidence != 93 {
		t.Errorf("expected confidence 93, got %d", sig.Confidence)
	}
	if sig.VWAPScore != 98 {
		t.Errorf("signal must carry the band score it traded on, got %d", sig.VWAPScore)
	}
	if sig.Entry != 25000 {
		t.Errorf("expected entry at futures price, got %.1f", sig.Entry)
	}
	if sig.Target != 25075 {
		t.Errorf("expected target entry+2.5*ATR, got %.1f", sig.Target)
	}
	if sig.StopLoss != 24955 {
		t.Errorf("expected stop entry-1.5*ATR, got %.1f", sig.StopLoss)
	}
	if sig.Confidence > 98 {
		t.Error("confidence must never exceed 98")
	}
}

func TestEvaluateCloseBuffer(t *testing.T) {
	s := NewScorer(testConfig(t))
	late := time.Date(2025, 6, 4, 15, 15, 0, 0, market.IST)
	if sig := s.Evaluate(ceSetup(), late); sig != nil {
		t.Error("no entries inside the close buffer")
	}
}

func TestEvaluateWarmupGate(t *testing.T) {
	s := NewScorer(testConfig(t))
	ind := ceSetup()
	ind.Call.Total.Valid15m = false
	if sig := s.Evaluate(ind, midSession); sig != nil {
		t.Error("no signals before the short horizons are warm")
	}
}

func TestEvaluateReversalVeto(t *testing.T) {
	s := NewScorer(testConfig(t))
	ind := ceSetup()
	ind.Reversal = true
	if sig := s.Evaluate(ind, midSession); sig != nil {
		t.Error("reversal must veto the whole cycle")
	}
}

func TestEvaluateTrapVeto(t *testing.T) {
	s := NewScorer(testConfig(t))
	ind := ceSetup()
	ind.BullTrap = true
	if sig := s.Evaluate(ind, midSession); sig != nil {
		t.Error("a trap must veto the whole cycle")
	}
}

func TestEvaluateVWAPSideGate(t *testing.T) {
	s := NewScorer(testConfig(t))
	ind := ceSetup()
	// Below VWAP: structurally wrong side for a CE, and the put side has
	// no unwinding case, so the cycle trades nothing.
	ind.VWAPDistance = -30
	if sig := s.Evaluate(ind, midSession); sig != nil {
		t.Errorf("expected no signal below VWAP, got %s", sig.Direction)
	}
}

func TestEvaluateFadingVelocityGate(t *testing.T) {
	s := NewScorer(testConfig(t))
	ind := ceSetup()
	ind.Call.Velocity = model.Velocity{Pattern: model.VelocityExhaustion, Modifier: -12}
	if sig := s.Evaluate(ind, midSession); sig != nil {
		t.Error("exhaustion velocity must reject the direction")
	}
}

func TestEvaluatePrimaryQuorum(t *testing.T) {
	s := NewScorer(testConfig(t))
	ind := ceSetup()
	// Leave only the multi-timeframe check standing.
	ind.Call.ATM = warm(0, 0, 0)
	ind.Call.VolumeSpike = 1.0
	if sig := s.Evaluate(ind, midSession); sig != nil {
		t.Error("one primary check cannot meet the quorum of two")
	}
}

func TestEvaluateEarlyConfidenceFloor(t *testing.T) {
	s := NewScorer(testConfig(t))
	ind := ceSetup()
	// Dark 30m horizon raises the floor to 85; without the 30m bonus and
	// the OTM support this setup lands at 84.
	ind.Call.Total.Valid30m = false
	ind.Put.Total.Valid30m = false
	ind.Call.OTMSupport = false
	sig := s.Evaluate(ind, midSession)
	if sig != nil {
		t.Error("expected the early-session floor to reject a mid-80s setup")
	}
}

func TestValidatorCooldowns(t *testing.T) {
	cfg := testConfig(t)
	v := NewValidator(cfg)
	t0 := midSession

	first := &model.Signal{Direction: model.CEBuy, Strike: 25000, Timestamp: t0}
	if ok, reason := v.Validate(first, t0); !ok {
		t.Fatalf("first signal must pass, got %s", reason)
	}
	v.Commit(first)

	again := &model.Signal{Direction: model.CEBuy, Strike: 25000, Timestamp: t0.Add(2 * time.Minute)}
	if ok, reason := v.Validate(again, t0.Add(2*time.Minute)); ok || reason != "global cooldown" {
		t.Errorf("expected global cooldown at +2m, got ok=%v reason=%q", ok, reason)
	}

	if ok, reason := v.Validate(again, t0.Add(4*time.Minute)); ok || reason != "same-strike cooldown" {
		t.Errorf("expected same-strike cooldown at +4m, got ok=%v reason=%q", ok, reason)
	}

	otherStrike := &model.Signal{Direction: model.CEBuy, Strike: 25050}
	if ok, reason := v.Validate(otherStrike, t0.Add(4*time.Minute)); !ok {
		t.Errorf("different strike past the direction cooldown should pass, got %s", reason)
	}

	opposite := &model.Signal{Direction: model.PEBuy, Strike: 25000}
	if ok, reason := v.Validate(opposite, t0.Add(4*time.Minute)); ok || reason != "opposite-direction cooldown" {
		t.Errorf("expected opposite-direction cooldown at +4m, got ok=%v reason=%q", ok, reason)
	}
	if ok, reason := v.Validate(opposite, t0.Add(6*time.Minute)); !ok {
		t.Errorf("opposite direction past its cooldown should pass, got %s", reason)
	}

	if ok, _ := v.Validate(again, t0.Add(11*time.Minute)); !ok {
		t.Error("same strike past its cooldown should pass")
	}
}

func TestValidatorRebasesOnExit(t *testing.T) {
	v := NewValidator(testConfig(t))
	t0 := midSession

	sig := &model.Signal{Direction: model.CEBuy, Strike: 25000, Timestamp: t0}
	v.Commit(sig)

	closed := t0.Add(20 * time.Minute)
	v.HandleExit(model.ExitEvent{Direction: model.CEBuy, Strike: 25000, ClosedAt: closed})

	// 21 minutes after entry, but only one minute after the exit.
	candidate := &model.Signal{Direction: model.PEBuy, Strike: 25000}
	if ok, reason := v.Validate(candidate, closed.Add(time.Minute)); ok || reason != "global cooldown" {
		t.Errorf("cooldown must restart from the close, got ok=%v reason=%q", ok, reason)
	}
}
