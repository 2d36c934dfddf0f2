package atari

import (
	"fmt"
	"sync"

	"go.uber.org/zap"

	"ink_goban/internal/domain/game"
	errs "ink_goban/internal/errors"
)

// Engine — подмножество GTP-команд, нужное атари-го.
type Engine interface {
	SetBoardSize(size int) error
	ClearBoard() error
	Play(colour string, spot game.Stone) error
	Captures(colour string) (int, error)
	ListStones(colour string) ([]game.Stone, error)
	Undo() error
}

// AtariUseCase — упрощённый вариант го: выигрывает первый взявший
// камень. Всю механику доски ведёт движок, здесь только очерёдность
// ходов и условие победы.
type AtariUseCase struct {
	mu        sync.Mutex
	engine    Engine
	log       *zap.SugaredLogger
	boardSize int
	turn      string
	winner    string
}

type State struct {
	BoardSize   int          `json:"board_size"`
	CurrentTurn string       `json:"current_turn"`
	Winner      string       `json:"winner,omitempty"`
	WhiteStones []game.Stone `json:"white_stones"`
	BlackStones []game.Stone `json:"black_stones"`
}

func NewAtariUseCase(engine Engine, boardSize int, log *zap.SugaredLogger) (*AtariUseCase, error) {
	uc := &AtariUseCase{
		engine:    engine,
		log:       log,
		boardSize: boardSize,
	}
	if err := uc.Reset(); err != nil {
		return nil, err
	}
	return uc, nil
}

func (a *AtariUseCase) Reset() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.engine.SetBoardSize(a.boardSize); err != nil {
		return err
	}
	if err := a.engine.ClearBoard(); err != nil {
		return err
	}

	a.turn = game.ColorBlack
	a.winner = ""
	return nil
}

// Move делает ход за того, чья очередь. Первый же захват заканчивает
// партию победой сходившего.
func (a *AtariUseCase) Move(spot game.Stone) (State, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.winner != "" {
		return State{}, errs.ErrGameOver
	}
	if spot.X < 1 || spot.X > a.boardSize || spot.Y < 1 || spot.Y > a.boardSize {
		return State{}, fmt.Errorf("%w: %d,%d", errs.ErrBadMove, spot.X, spot.Y)
	}

	mover := a.turn
	if err := a.engine.Play(mover, spot); err != nil {
		a.log.Debugw("engine rejected move", "colour", mover, "spot", spot, "error", err)
		return State{}, fmt.Errorf("%w: %v", errs.ErrBadMove, err)
	}

	captured, err := a.engine.Captures(mover)
	if err != nil {
		return State{}, err
	}
	if captured > 0 {
		a.winner = mover
		a.log.Infow("atari game over", "winner", mover, "captured", captured)
	} else {
		a.turn = opponent(mover)
	}

	return a.stateLocked()
}

// Undo откатывает последний ход и возвращает очередь сходившему.
func (a *AtariUseCase) Undo() (State, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.engine.Undo(); err != nil {
		return State{}, fmt.Errorf("%w: %v", errs.ErrNothingToUndo, err)
	}

	if a.winner != "" {
		// откат выигравшего хода возобновляет партию
		a.winner = ""
	} else {
		a.turn = opponent(a.turn)
	}

	return a.stateLocked()
}

func (a *AtariUseCase) State() (State, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.stateLocked()
}

func (a *AtariUseCase) stateLocked() (State, error) {
	white, err := a.engine.ListStones(game.ColorWhite)
	if err != nil {
		return State{}, err
	}
	black, err := a.engine.ListStones(game.ColorBlack)
	if err != nil {
		return State{}, err
	}

	return State{
		BoardSize:   a.boardSize,
		CurrentTurn: a.turn,
		Winner:      a.winner,
		WhiteStones: white,
		BlackStones: black,
	}, nil
}

func opponent(colour string) string {
	if colour == game.ColorBlack {
		return game.ColorWhite
	}
	return game.ColorBlack
}
