// Package session implements the encounter lifecycle boundary: uuid-keyed
// sessions over the combat core, AI turn driving, and per-session adaptive
// difficulty. It is the only concurrency boundary in the engine; everything
// below it is single-threaded per encounter.
package session

import (
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/duskfall/engine/internal/game/ability"
	"github.com/duskfall/engine/internal/game/actor"
	"github.com/duskfall/engine/internal/game/ai"
	"github.com/duskfall/engine/internal/game/combat"
	"github.com/duskfall/engine/internal/game/dice"
	"github.com/duskfall/engine/internal/game/effect"
	"github.com/duskfall/engine/internal/game/grid"
)

// ErrSessionNotFound reports an unknown encounter id.
var ErrSessionNotFound = errors.New("session: encounter not found")

// Config carries the immutable reference data and knobs a Manager needs.
//
// Precondition: Abilities, Effects, Profiles, Logger, and NewSource must be
// non-nil.
type Config struct {
	Abilities *ability.Registry
	Effects   *effect.Registry
	Profiles  *ai.Registry
	// Hooks is wired into every participant's effect set; nil disables
	// scripted effect hooks.
	Hooks  effect.HookRunner
	Logger *zap.Logger
	Tuning combat.Tuning
	// NewSource supplies one randomness source per encounter, so seeded
	// runs replay exactly and production runs stay independent.
	NewSource func() dice.Source
	// BaseDifficulty seeds each new session's difficulty parameter.
	BaseDifficulty float64
	// DifficultyStep bounds per-encounter difficulty movement; 0 uses
	// ai.DefaultDifficultyStep.
	DifficultyStep float64
	// TopK is the AI sampling pool size; 0 uses ai.DefaultTopK.
	TopK int
}

// session pairs one encounter with its own lock and difficulty value.
// The per-session mutex serializes actions within an encounter while
// letting independent encounters run concurrently.
type session struct {
	mu         sync.Mutex
	enc        *combat.Encounter
	difficulty float64
}

// Manager owns all live encounter sessions.
// All methods are safe for concurrent use.
type Manager struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*session

	cfg    Config
	engine *ai.Engine
	logger *zap.Logger
}

// NewManager creates a Manager.
//
// Precondition: cfg's required fields are non-nil; see Config.
func NewManager(cfg Config) *Manager {
	if cfg.Abilities == nil || cfg.Effects == nil || cfg.Profiles == nil {
		panic("session.NewManager: catalogs must not be nil")
	}
	if cfg.Logger == nil {
		panic("session.NewManager: logger must not be nil")
	}
	if cfg.NewSource == nil {
		panic("session.NewManager: NewSource must not be nil")
	}
	return &Manager{
		sessions: make(map[uuid.UUID]*session),
		cfg:      cfg,
		engine:   ai.NewEngine(cfg.Profiles, cfg.NewSource(), cfg.TopK),
		logger:   cfg.Logger,
	}
}

// CreateEncounter validates participants, resolves every AI profile
// reference, wires the scripted hook runner into each participant, and
// starts a new encounter session.
//
// Postcondition: on nil error the returned id addresses a live session
// whose first actor is active.
func (m *Manager) CreateEncounter(participants []*actor.Participant, terrain *grid.Terrain) (uuid.UUID, error) {
	// Profile references are configuration: fail here, never mid-combat.
	for _, p := range participants {
		if p.Control != actor.ControlAI {
			continue
		}
		if _, ok := m.cfg.Profiles.Get(p.ProfileID); !ok {
			return uuid.Nil, fmt.Errorf("session: participant %q references unknown profile %q", p.ID, p.ProfileID)
		}
	}
	for _, p := range participants {
		if p.Effects == nil {
			p.Effects = effect.NewActiveSet(p.ID, m.cfg.Hooks)
		} else {
			p.Effects.SetHooks(m.cfg.Hooks)
		}
	}

	id := uuid.New()
	enc, err := combat.NewEncounter(id.String(), participants, terrain, m.cfg.Abilities, m.cfg.Effects, m.cfg.NewSource(), m.cfg.Tuning)
	if err != nil {
		return uuid.Nil, err
	}

	m.mu.Lock()
	m.sessions[id] = &session{enc: enc, difficulty: m.cfg.BaseDifficulty}
	m.mu.Unlock()

	m.logger.Info("encounter created",
		zap.String("encounter", id.String()),
		zap.Int("participants", len(participants)),
	)
	return id, nil
}

// SubmitAction resolves one caller-supplied action for the encounter.
// Rejections come back on the ActionResult; only unknown sessions and
// corrupted encounters return an error.
func (m *Manager) SubmitAction(id uuid.UUID, spec combat.ActionSpec) (*combat.ActionResult, error) {
	s, err := m.get(id)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := s.enc.AdvanceTurn(spec)
	if err != nil {
		m.logger.Error("encounter corrupted",
			zap.String("encounter", id.String()),
			zap.Error(err),
		)
		return nil, err
	}
	m.logResult(id, spec, result)
	return result, nil
}

// AdvanceIfAI decides and resolves one action when the active participant
// is AI-controlled. The second return is false when the active participant
// is player-controlled or the encounter is terminal; the caller then either
// submits a player action or reads the final state.
func (m *Manager) AdvanceIfAI(id uuid.UUID) (*combat.ActionResult, bool, error) {
	s, err := m.get(id)
	if err != nil {
		return nil, false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	active := s.enc.ActiveParticipant()
	if active == nil || active.Control != actor.ControlAI {
		return nil, false, nil
	}

	spec, err := m.engine.Decide(s.enc, active.ID, s.difficulty)
	if err != nil {
		return nil, false, fmt.Errorf("session: deciding for %q: %w", active.ID, err)
	}
	result, err := s.enc.AdvanceTurn(spec)
	if err != nil {
		return nil, false, err
	}
	if !result.OK() {
		// The engine only proposes legal actions; a rejection here means
		// the board changed under it. Fall back to the always-legal wait.
		m.logger.Warn("ai action rejected, waiting instead",
			zap.String("encounter", id.String()),
			zap.String("actor", active.ID),
			zap.String("reason", result.Rejected.String()),
		)
		result, err = s.enc.AdvanceTurn(combat.ActionSpec{ActorID: active.ID, Type: combat.ActionWait})
		if err != nil {
			return nil, false, err
		}
	}
	m.logResult(id, result.Action, result)
	return result, true, nil
}

// State returns a read-only projection of the encounter.
func (m *Manager) State(id uuid.UUID) (*EncounterStateView, error) {
	s, err := m.get(id)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return buildView(s.enc, s.difficulty), nil
}

// Difficulty returns the session's current difficulty parameter.
func (m *Manager) Difficulty(id uuid.UUID) (float64, error) {
	s, err := m.get(id)
	if err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.difficulty, nil
}

// ReportPerformance folds a finished encounter's player-performance summary
// into the session's difficulty with a bounded step, and returns the new
// value. The session stays addressable until CloseEncounter.
func (m *Manager) ReportPerformance(id uuid.UUID, perf ai.PerformanceSummary) (float64, error) {
	s, err := m.get(id)
	if err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	before := s.difficulty
	s.difficulty = ai.NextDifficulty(s.difficulty, perf, m.cfg.DifficultyStep)
	m.logger.Info("difficulty adjusted",
		zap.String("encounter", id.String()),
		zap.Float64("from", before),
		zap.Float64("to", s.difficulty),
	)
	return s.difficulty, nil
}

// CloseEncounter removes the session. Returns ErrSessionNotFound for an
// unknown id.
func (m *Manager) CloseEncounter(id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[id]; !ok {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	delete(m.sessions, id)
	return nil
}

// SessionCount returns the number of live sessions.
func (m *Manager) SessionCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

func (m *Manager) get(id uuid.UUID) (*session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return s, nil
}

func (m *Manager) logResult(id uuid.UUID, spec combat.ActionSpec, result *combat.ActionResult) {
	if !result.OK() {
		m.logger.Debug("action rejected",
			zap.String("encounter", id.String()),
			zap.String("actor", spec.ActorID),
			zap.String("reason", result.Rejected.String()),
		)
		return
	}
	fields := []zap.Field{
		zap.String("encounter", id.String()),
		zap.String("actor", spec.ActorID),
		zap.String("action", spec.Type.String()),
	}
	if spec.AbilityID != "" {
		fields = append(fields, zap.String("ability", spec.AbilityID))
	}
	if result.Outcome != combat.OutcomeOngoing {
		fields = append(fields, zap.String("outcome", result.Outcome.String()))
	}
	m.logger.Debug("action resolved", fields...)
}
