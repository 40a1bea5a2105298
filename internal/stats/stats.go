package stats

import (
	"encoding/json"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"NiftyPulse/internal/market"
	"NiftyPulse/internal/model"
)

// DayState is the per-day trading tally, persisted so a restart midday
// does not reset the daily signal cap.
type DayState struct {
	Date        string    `json:"date"` // YYYY-MM-DD in IST
	Signals     int       `json:"signals"`
	Wins        int       `json:"wins"`
	Losses      int       `json:"losses"`
	PointsTotal float64   `json:"points_total"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Manager tracks the day tally with concurrency safety.
type Manager struct {
	mu       sync.Mutex
	state    *DayState
	filePath string
}

// NewManager creates a Manager, loading or initializing state from disk.
// Stale state from a previous session day is discarded.
func NewManager(filePath string) (*Manager, error) {
	state, err := loadState(filePath)
	if err != nil {
		return nil, err
	}
	m := &Manager{state: state, filePath: filePath}
	m.rollDayLocked(market.Now())
	if err := m.save(); err != nil {
		return nil, err
	}
	return m, nil
}

// State returns a copy of the current day tally.
func (m *Manager) State() DayState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return *m.state
}

// SignalsToday returns the number of signals fired so far today.
func (m *Manager) SignalsToday() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.Signals
}

// RecordSignal bumps the day's signal count.
func (m *Manager) RecordSignal(now time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rollDayLocked(now)
	m.state.Signals++
	if err := m.save(); err != nil {
		log.Error().Err(err).Msg("stats: save after signal")
	}
}

// RecordExit tallies a closed trade's outcome.
func (m *Manager) RecordExit(evt *model.ExitEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rollDayLocked(evt.ClosedAt)
	if evt.Win() {
		m.state.Wins++
	} else {
		m.state.Losses++
	}
	points := evt.Exit - evt.Entry
	if evt.Direction == model.PEBuy {
		points = evt.Entry - evt.Exit
	}
	m.state.PointsTotal += points
	if err := m.save(); err != nil {
		log.Error().Err(err).Msg("stats: save after exit")
	}
}

// Reset clears the tally for a fresh session day.
func (m *Manager) Reset(now time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	*m.state = DayState{Date: dayKey(now)}
	if err := m.save(); err != nil {
		log.Error().Err(err).Msg("stats: save after reset")
	}
}

func (m *Manager) rollDayLocked(now time.Time) {
	key := dayKey(now)
	if m.state.Date != key {
		*m.state = DayState{Date: key}
	}
}

func dayKey(t time.Time) string {
	return t.In(market.IST).Format("2006-01-02")
}

func (m *Manager) save() error {
	m.state.UpdatedAt = time.Now()
	data, err := json.MarshalIndent(m.state, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(m.filePath, data, 0644)
}

func loadState(filePath string) (*DayState, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return &DayState{}, nil
		}
		return nil, err
	}
	var state DayState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, err
	}
	return &state, nil
}
