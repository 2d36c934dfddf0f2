package machine

import (
	"fmt"
	"sync"

	"go.uber.org/zap"

	"ink_goban/internal/domain/game"
	errs "ink_goban/internal/errors"
)

// Engine — подмножество GTP-команд для игры человека против движка.
type Engine interface {
	SetBoardSize(size int) error
	ClearBoard() error
	Play(colour string, spot game.Stone) error
	GenMove(colour string) (string, error)
	ListStones(colour string) ([]game.Stone, error)
}

// MachineUseCase — партия против движка: человек играет белыми, движок
// отвечает чёрными через genmove. Как и в атари-режиме, правила целиком
// на стороне движка.
type MachineUseCase struct {
	mu          sync.Mutex
	engine      Engine
	log         *zap.SugaredLogger
	boardSize   int
	machineMove string // последний ответ движка: вершина, PASS или resign
	resigned    bool
}

type State struct {
	BoardSize       int          `json:"board_size"`
	LastMachineMove string       `json:"last_machine_move,omitempty"`
	MachineResigned bool         `json:"machine_resigned"`
	WhiteStones     []game.Stone `json:"white_stones"`
	BlackStones     []game.Stone `json:"black_stones"`
}

func NewMachineUseCase(engine Engine, boardSize int, log *zap.SugaredLogger) (*MachineUseCase, error) {
	uc := &MachineUseCase{
		engine:    engine,
		log:       log,
		boardSize: boardSize,
	}
	if err := uc.Reset(); err != nil {
		return nil, err
	}
	return uc, nil
}

// Reset начинает новую партию: движок делает первый ход чёрными.
func (m *MachineUseCase) Reset() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.engine.SetBoardSize(m.boardSize); err != nil {
		return err
	}
	if err := m.engine.ClearBoard(); err != nil {
		return err
	}
	m.resigned = false
	m.machineMove = ""

	return m.machineMoveLocked()
}

// Move — ход человека белыми; в ответ движок сразу генерирует свой.
func (m *MachineUseCase) Move(spot game.Stone) (State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.resigned {
		return State{}, errs.ErrGameOver
	}
	if spot.X < 1 || spot.X > m.boardSize || spot.Y < 1 || spot.Y > m.boardSize {
		return State{}, fmt.Errorf("%w: %d,%d", errs.ErrBadMove, spot.X, spot.Y)
	}

	if err := m.engine.Play(game.ColorWhite, spot); err != nil {
		m.log.Debugw("engine rejected human move", "spot", spot, "error", err)
		return State{}, fmt.Errorf("%w: %v", errs.ErrBadMove, err)
	}

	if err := m.machineMoveLocked(); err != nil {
		return State{}, err
	}
	return m.stateLocked()
}

func (m *MachineUseCase) State() (State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stateLocked()
}

func (m *MachineUseCase) machineMoveLocked() error {
	vertex, err := m.engine.GenMove(game.ColorBlack)
	if err != nil {
		return err
	}
	m.machineMove = vertex
	if isResign(vertex) {
		m.resigned = true
	}
	m.log.Infow("machine move", "vertex", vertex)
	return nil
}

func (m *MachineUseCase) stateLocked() (State, error) {
	white, err := m.engine.ListStones(game.ColorWhite)
	if err != nil {
		return State{}, err
	}
	black, err := m.engine.ListStones(game.ColorBlack)
	if err != nil {
		return State{}, err
	}

	return State{
		BoardSize:       m.boardSize,
		LastMachineMove: m.machineMove,
		MachineResigned: m.resigned,
		WhiteStones:     white,
		BlackStones:     black,
	}, nil
}

func isResign(vertex string) bool {
	return vertex == "resign" || vertex == "RESIGN"
}
