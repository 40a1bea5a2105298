package recorder

import (
	"NiftyPulse/internal/model"
)

// ScanEvent summarizes one completed scan cycle.
type ScanEvent struct {
	Timestamp   int64
	Price       float64
	ATMStrike   int
	TotalCallOI int64
	TotalPutOI  int64
	PCR         float64
	VWAPDist    float64
	ATR         float64
	CallVel     string
	PutVel      string
	Rejection   string // cooldown rejection reason, empty otherwise
}

// SignalEvent records an accepted, validated signal.
type SignalEvent struct {
	Signal    *model.Signal
	ExpiryDay bool
	FullyWarm bool
}

// SummaryEvent records the end of session tally.
type SummaryEvent struct {
	Date    string
	Signals int
	Wins    int
	Losses  int
	Points  float64
}

// Recorder persists historical data for analysis.
type Recorder interface {
	RecordScan(evt *ScanEvent) error
	RecordSignal(evt *SignalEvent) error
	RecordExit(evt *model.ExitEvent) error
	RecordSummary(evt *SummaryEvent) error
	Close() error
}
