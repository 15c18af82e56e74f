package game

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"chessbot/internal/chess"
	"chessbot/internal/engine"
)

var ErrNotFound = errors.New("game not found")

type Manager struct {
	mu     sync.RWMutex
	games  map[string]*GameState
	cfg    engine.Config
	logger zerolog.Logger
}

func NewManager(cfg engine.Config, logger zerolog.Logger) *Manager {
	return &Manager{
		games:  make(map[string]*GameState),
		cfg:    cfg,
		logger: logger,
	}
}

func (m *Manager) Config() engine.Config {
	return m.cfg
}

// NewGame 开新局；fen 为空时从初始局面开始
func (m *Manager) NewGame(fen string) (*GameState, error) {
	pos := chess.NewInitialPosition()
	if fen != "" {
		var err error
		if pos, err = chess.DecodePosition(fen); err != nil {
			return nil, err
		}
	}

	id := uuid.NewString()
	now := time.Now()
	g := &GameState{
		ID:        id,
		CreatedAt: now,
		pos:       pos,
		eng:       engine.NewEngine(m.cfg, m.logger.With().Str("game", id).Logger()),
		updatedAt: now,
	}

	m.mu.Lock()
	m.games[id] = g
	m.mu.Unlock()
	m.logger.Info().Str("game", id).Str("fen", pos.Encode()).Msg("new game")
	return g, nil
}

func (m *Manager) Get(id string) (*GameState, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	g, ok := m.games[id]
	if !ok {
		return nil, errors.Wrapf(ErrNotFound, "id %q", id)
	}
	return g, nil
}

func (m *Manager) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.games[id]; !ok {
		return errors.Wrapf(ErrNotFound, "id %q", id)
	}
	delete(m.games, id)
	return nil
}

func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.games)
}
