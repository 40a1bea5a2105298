package recorder

import (
	"path/filepath"
	"testing"
	"time"

	"NiftyPulse/internal/model"
)

func openTestRecorder(t *testing.T) *SQLiteRecorder {
	t.Helper()
	r, err := NewSQLiteRecorder(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open recorder: %v", err)
	}
	t.Cleanup(func() { r.Close() })
	return r
}

func TestRecordScanKeepsRejection(t *testing.T) {
	r := openTestRecorder(t)

	if err := r.RecordScan(&ScanEvent{
		Timestamp: 1749012300,
		Price:     25000,
		ATMStrike: 25000,
		PCR:       1.2,
		Rejection: "global cooldown",
	}); err != nil {
		t.Fatalf("record scan: %v", err)
	}

	var rejection string
	if err := r.db.QueryRow("SELECT rejection FROM scans").Scan(&rejection); err != nil {
		t.Fatalf("query scan: %v", err)
	}
	if rejection != "global cooldown" {
		t.Errorf("expected rejection reason persisted, got %q", rejection)
	}
}

func TestRecordSignalKeepsVWAPScore(t *testing.T) {
	r := openTestRecorder(t)

	sig := &model.Signal{
		Direction:  model.CEBuy,
		Timestamp:  time.Date(2025, 6, 4, 11, 0, 0, 0, time.UTC),
		Strike:     25000,
		Entry:      25000,
		Target:     25075,
		StopLoss:   24955,
		Confidence: 93,
		VWAPScore:  98,
		Tags:       []string{"MULTI_TF_UNWINDING"},
	}
	if err := r.RecordSignal(&SignalEvent{Signal: sig, FullyWarm: true}); err != nil {
		t.Fatalf("record signal: %v", err)
	}

	var score, warm int
	if err := r.db.QueryRow("SELECT vwap_score, fully_warm FROM signals").Scan(&score, &warm); err != nil {
		t.Fatalf("query signal: %v", err)
	}
	if score != 98 {
		t.Errorf("expected vwap_score 98, got %d", score)
	}
	if warm != 1 {
		t.Errorf("expected fully_warm flag set, got %d", warm)
	}
}
