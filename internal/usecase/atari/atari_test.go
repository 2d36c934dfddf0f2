package atari

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"ink_goban/internal/domain/game"
	errs "ink_goban/internal/errors"
)

// stubEngine имитирует движок: держит камни в памяти и отдаёт захваты
// по сценарию теста.
type stubEngine struct {
	stones     map[string][]game.Stone
	captures   map[string]int
	playErr    error
	undoErr    error
	playedLog  []string
	undoCalled int
}

func newStubEngine() *stubEngine {
	return &stubEngine{
		stones:   map[string][]game.Stone{},
		captures: map[string]int{},
	}
}

func (s *stubEngine) SetBoardSize(int) error { return nil }
func (s *stubEngine) ClearBoard() error {
	s.stones = map[string][]game.Stone{}
	return nil
}

func (s *stubEngine) Play(colour string, spot game.Stone) error {
	if s.playErr != nil {
		return s.playErr
	}
	s.stones[colour] = append(s.stones[colour], spot)
	s.playedLog = append(s.playedLog, colour)
	return nil
}

func (s *stubEngine) Captures(colour string) (int, error) { return s.captures[colour], nil }

func (s *stubEngine) ListStones(colour string) ([]game.Stone, error) {
	out := s.stones[colour]
	if out == nil {
		out = []game.Stone{}
	}
	return out, nil
}

func (s *stubEngine) Undo() error {
	s.undoCalled++
	return s.undoErr
}

func newTestGame(t *testing.T, engine Engine) *AtariUseCase {
	t.Helper()
	uc, err := NewAtariUseCase(engine, 9, zap.NewNop().Sugar())
	require.NoError(t, err)
	return uc
}

func TestBlackMovesFirstAndTurnsAlternate(t *testing.T) {
	engine := newStubEngine()
	uc := newTestGame(t, engine)

	st, err := uc.Move(game.Stone{X: 3, Y: 3})
	require.NoError(t, err)
	assert.Equal(t, game.ColorWhite, st.CurrentTurn)

	st, err = uc.Move(game.Stone{X: 5, Y: 5})
	require.NoError(t, err)
	assert.Equal(t, game.ColorBlack, st.CurrentTurn)

	assert.Equal(t, []string{game.ColorBlack, game.ColorWhite}, engine.playedLog)
}

func TestFirstCaptureWins(t *testing.T) {
	engine := newStubEngine()
	uc := newTestGame(t, engine)

	engine.captures[game.ColorBlack] = 1
	st, err := uc.Move(game.Stone{X: 3, Y: 3})
	require.NoError(t, err)
	assert.Equal(t, game.ColorBlack, st.Winner)

	_, err = uc.Move(game.Stone{X: 4, Y: 4})
	require.ErrorIs(t, err, errs.ErrGameOver)
}

func TestIllegalMoveRejected(t *testing.T) {
	engine := newStubEngine()
	uc := newTestGame(t, engine)

	engine.playErr = errors.New("illegal move")
	_, err := uc.Move(game.Stone{X: 3, Y: 3})
	require.ErrorIs(t, err, errs.ErrBadMove)

	// очередь не передаётся после отклонённого хода
	engine.playErr = nil
	st, err := uc.Move(game.Stone{X: 3, Y: 3})
	require.NoError(t, err)
	assert.Equal(t, game.ColorWhite, st.CurrentTurn)
}

func TestOffBoardMoveRejectedLocally(t *testing.T) {
	engine := newStubEngine()
	uc := newTestGame(t, engine)

	for _, spot := range []game.Stone{{X: 0, Y: 1}, {X: 1, Y: 0}, {X: 10, Y: 1}, {X: 1, Y: 10}} {
		_, err := uc.Move(spot)
		require.ErrorIs(t, err, errs.ErrBadMove, "spot %+v", spot)
	}
	assert.Empty(t, engine.playedLog)
}

func TestUndoFlipsTurnBack(t *testing.T) {
	engine := newStubEngine()
	uc := newTestGame(t, engine)

	_, err := uc.Move(game.Stone{X: 3, Y: 3})
	require.NoError(t, err)

	st, err := uc.Undo()
	require.NoError(t, err)
	assert.Equal(t, game.ColorBlack, st.CurrentTurn)
	assert.Equal(t, 1, engine.undoCalled)
}

func TestUndoWinningMoveResumesGame(t *testing.T) {
	engine := newStubEngine()
	uc := newTestGame(t, engine)

	engine.captures[game.ColorBlack] = 1
	_, err := uc.Move(game.Stone{X: 3, Y: 3})
	require.NoError(t, err)

	engine.captures[game.ColorBlack] = 0
	st, err := uc.Undo()
	require.NoError(t, err)
	assert.Empty(t, st.Winner)
	assert.Equal(t, game.ColorBlack, st.CurrentTurn)
}

func TestUndoWithoutMoves(t *testing.T) {
	engine := newStubEngine()
	uc := newTestGame(t, engine)

	engine.undoErr = errors.New("cannot undo")
	_, err := uc.Undo()
	require.ErrorIs(t, err, errs.ErrNothingToUndo)
}

func TestResetClearsWinner(t *testing.T) {
	engine := newStubEngine()
	uc := newTestGame(t, engine)

	engine.captures[game.ColorBlack] = 1
	_, err := uc.Move(game.Stone{X: 3, Y: 3})
	require.NoError(t, err)

	require.NoError(t, uc.Reset())
	st, err := uc.State()
	require.NoError(t, err)
	assert.Empty(t, st.Winner)
	assert.Equal(t, game.ColorBlack, st.CurrentTurn)
	assert.Empty(t, st.WhiteStones)
	assert.Empty(t, st.BlackStones)
}
