package machine

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"ink_goban/internal/domain/game"
	errs "ink_goban/internal/errors"
)

type stubEngine struct {
	moves     []string // очередь ответов genmove
	played    []game.Stone
	playErr   error
	genCalled int
}

func (s *stubEngine) SetBoardSize(int) error { return nil }
func (s *stubEngine) ClearBoard() error      { return nil }

func (s *stubEngine) Play(colour string, spot game.Stone) error {
	if s.playErr != nil {
		return s.playErr
	}
	s.played = append(s.played, spot)
	return nil
}

func (s *stubEngine) GenMove(colour string) (string, error) {
	if s.genCalled >= len(s.moves) {
		return "PASS", nil
	}
	move := s.moves[s.genCalled]
	s.genCalled++
	return move, nil
}

func (s *stubEngine) ListStones(string) ([]game.Stone, error) {
	return []game.Stone{}, nil
}

func TestMachineOpensTheGame(t *testing.T) {
	engine := &stubEngine{moves: []string{"C3"}}
	_, err := NewMachineUseCase(engine, 9, zap.NewNop().Sugar())
	require.NoError(t, err)
	assert.Equal(t, 1, engine.genCalled)
}

func TestHumanMoveTriggersMachineReply(t *testing.T) {
	engine := &stubEngine{moves: []string{"C3", "D4"}}
	uc, err := NewMachineUseCase(engine, 9, zap.NewNop().Sugar())
	require.NoError(t, err)

	st, err := uc.Move(game.Stone{X: 5, Y: 5})
	require.NoError(t, err)
	assert.Equal(t, "D4", st.LastMachineMove)
	assert.Equal(t, []game.Stone{{X: 5, Y: 5}}, engine.played)
}

func TestMachineResignEndsGame(t *testing.T) {
	engine := &stubEngine{moves: []string{"C3", "resign"}}
	uc, err := NewMachineUseCase(engine, 9, zap.NewNop().Sugar())
	require.NoError(t, err)

	st, err := uc.Move(game.Stone{X: 5, Y: 5})
	require.NoError(t, err)
	assert.True(t, st.MachineResigned)

	_, err = uc.Move(game.Stone{X: 6, Y: 6})
	require.ErrorIs(t, err, errs.ErrGameOver)
}

func TestBadHumanMove(t *testing.T) {
	engine := &stubEngine{moves: []string{"C3"}}
	uc, err := NewMachineUseCase(engine, 9, zap.NewNop().Sugar())
	require.NoError(t, err)

	engine.playErr = errors.New("illegal move")
	_, err = uc.Move(game.Stone{X: 5, Y: 5})
	require.ErrorIs(t, err, errs.ErrBadMove)
	// ответа движка после отклонённого хода нет
	assert.Equal(t, 1, engine.genCalled)

	_, err = uc.Move(game.Stone{X: 0, Y: 5})
	require.ErrorIs(t, err, errs.ErrBadMove)
}
