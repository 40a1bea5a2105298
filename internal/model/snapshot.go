package model

import "time"

// Snapshot is one immutable per-cycle measurement of the option chain.
// Snapshots enter the store in non-decreasing timestamp order and are
// never mutated afterwards.
type Snapshot struct {
	Timestamp   time.Time `json:"timestamp"`
	TotalCallOI int64     `json:"total_call_oi"`
	TotalPutOI  int64     `json:"total_put_oi"`
	ATMStrike   int       `json:"atm_strike"`
	ATMCallOI   int64     `json:"atm_call_oi"`
	ATMPutOI    int64     `json:"atm_put_oi"`
	Price       float64   `json:"price"`
}

// PricePoint is one per-cycle price observation for the momentum tracker.
type PricePoint struct {
	Timestamp time.Time `json:"timestamp"`
	Price     float64   `json:"price"`
}
