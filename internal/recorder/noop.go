package recorder

import "NiftyPulse/internal/model"

// NoopRecorder is a no-op implementation used when SQLite is not configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordScan(_ *ScanEvent) error       { return nil }
func (n *NoopRecorder) RecordSignal(_ *SignalEvent) error   { return nil }
func (n *NoopRecorder) RecordExit(_ *model.ExitEvent) error { return nil }
func (n *NoopRecorder) RecordSummary(_ *SummaryEvent) error { return nil }
func (n *NoopRecorder) Close() error                        { return nil }
