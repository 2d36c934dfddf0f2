package game

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"ink_goban/internal/domain/game"
	"ink_goban/internal/domain/sgf"
	errs "ink_goban/internal/errors"
	"ink_goban/internal/statuses"
	"ink_goban/internal/usecase/record"
)

// fakeStore держит партии и SGF в памяти.
type fakeStore struct {
	games map[string]game.Game // by secret key
	sgfs  map[string]string
	seq   int
}

func newFakeStore() *fakeStore {
	return &fakeStore{games: map[string]game.Game{}, sgfs: map[string]string{}}
}

func (f *fakeStore) GenerateGameKeys(_ context.Context) (string, string) {
	f.seq++
	return "secret-" + string(rune('0'+f.seq)), "0000" + string(rune('0'+f.seq))
}

func (f *fakeStore) PutGame(_ context.Context, g game.Game) error {
	f.games[g.GameKeySecret] = g
	return nil
}

func (f *fakeStore) AddPlayer(_ context.Context, playerID, secret string) (game.Game, error) {
	g, ok := f.games[secret]
	if !ok {
		return game.Game{}, errs.ErrGameNotFound
	}
	if g.PlayerBlack == "" {
		g.PlayerBlack = playerID
	} else if g.PlayerWhite == "" {
		g.PlayerWhite = playerID
	} else {
		return game.Game{}, errs.ErrJoinGameFailed
	}
	g.Status = statuses.StatusInProgress
	f.games[secret] = g
	return g, nil
}

func (f *fakeStore) GetGameByPublicKey(_ context.Context, pub string) (game.Game, error) {
	for _, g := range f.games {
		if g.GameKeyPublic == pub {
			return g, nil
		}
	}
	return game.Game{}, errs.ErrGameNotFound
}

func (f *fakeStore) GetGameBySecretKey(_ context.Context, secret string) (game.Game, error) {
	g, ok := f.games[secret]
	if !ok {
		return game.Game{}, errs.ErrGameNotFound
	}
	return g, nil
}

func (f *fakeStore) ArchiveGame(_ context.Context, secret string) error {
	g := f.games[secret]
	g.Status = statuses.StatusArchived
	f.games[secret] = g
	return nil
}

func (f *fakeStore) SaveSGFToRedis(_ context.Context, key, sgfText string) error {
	f.sgfs[key] = sgfText
	return nil
}

func (f *fakeStore) LoadSGFFromRedis(_ context.Context, key string) (string, error) {
	s, ok := f.sgfs[key]
	if !ok {
		return "", errs.ErrGameNotFound
	}
	return s, nil
}

func newTestUseCase() (*GameUseCase, *fakeStore) {
	store := newFakeStore()
	log := zap.NewNop().Sugar()
	return NewGameUseCase(store, record.NewInterpreter(log), log), store
}

func TestCreateGameWritesInitialSGF(t *testing.T) {
	uc, store := newTestUseCase()

	created, err := uc.CreateGame(context.Background(), game.CreateGameRequest{
		BoardSize:      9,
		Komi:           6.5,
		IsCreatorBlack: true,
		PlayerID:       "tablet-1",
	})
	require.NoError(t, err)
	assert.Equal(t, statuses.StatusWaitOpponent, created.Status)
	assert.Equal(t, "tablet-1", created.PlayerBlack)

	raw := store.sgfs[created.GameKeySecret]
	require.NotEmpty(t, raw)

	doc, err := sgf.Parse(raw)
	require.NoError(t, err)

	props := doc.Trees[0].Nodes[0].Properties
	assert.Equal(t, sgf.Property{Name: "FF", Values: []string{"4"}}, props[0])
	assert.Equal(t, sgf.Property{Name: "SZ", Values: []string{"9"}}, props[2])
	assert.Equal(t, sgf.Property{Name: "KM", Values: []string{"6.5"}}, props[6])
}

func TestJoinGameFillsFreeColour(t *testing.T) {
	uc, _ := newTestUseCase()

	created, err := uc.CreateGame(context.Background(), game.CreateGameRequest{
		BoardSize: 9, IsCreatorBlack: true, PlayerID: "tablet-1",
	})
	require.NoError(t, err)

	joined, err := uc.JoinGame(context.Background(), created.GameKeyPublic, "tablet-2")
	require.NoError(t, err)
	assert.Equal(t, "tablet-2", joined.PlayerWhite)
	assert.Equal(t, statuses.StatusInProgress, joined.Status)

	// игрок не может зайти в собственную партию вторым
	_, err = uc.JoinGame(context.Background(), created.GameKeyPublic, "tablet-1")
	require.ErrorIs(t, err, errs.ErrJoinGameFailed)
}

func TestAddMoveAndBoardState(t *testing.T) {
	uc, _ := newTestUseCase()

	created, err := uc.CreateGame(context.Background(), game.CreateGameRequest{
		BoardSize: 9, IsCreatorBlack: true, PlayerID: "tablet-1",
	})
	require.NoError(t, err)

	key := created.GameKeySecret

	_, err = uc.AddMoveToGameSgf(context.Background(), key, game.Move{Color: "B", Coordinates: "dd"})
	require.NoError(t, err)
	updated, err := uc.AddMoveToGameSgf(context.Background(), key, game.Move{Color: "W", Coordinates: "ff"})
	require.NoError(t, err)
	assert.Contains(t, updated, ";B[dd];W[ff])")

	board, err := uc.BoardState(context.Background(), key)
	require.NoError(t, err)
	assert.Equal(t, 9, board.Size)
	assert.Equal(t, []game.Stone{{X: 4, Y: 4}}, board.BlackStones)
	assert.Equal(t, []game.Stone{{X: 6, Y: 6}}, board.WhiteStones)
}

func TestAddMoveRejectsUnknownColour(t *testing.T) {
	uc, store := newTestUseCase()
	store.sgfs["k"] = "(;FF[4]GM[1]SZ[9])"

	_, err := uc.AddMoveToGameSgf(context.Background(), "k", game.Move{Color: "X", Coordinates: "aa"})
	require.ErrorIs(t, err, errs.ErrBadMove)
}

func TestAppendMoveToSgf(t *testing.T) {
	out := AppendMoveToSgf("(;FF[4]SZ[9])", game.Move{Color: "B", Coordinates: "dd"})
	assert.Equal(t, "(;FF[4]SZ[9];B[dd])", out)

	// пас дописывается пустыми скобками
	out = AppendMoveToSgf(out, game.Move{Color: "W", Coordinates: ""})
	assert.Equal(t, "(;FF[4]SZ[9];B[dd];W[])", out)
}

func TestPrepareSgfFileRoundTripsThroughParser(t *testing.T) {
	g := game.Game{
		BoardSize:   13,
		Komi:        0.5,
		PlayerBlack: "a",
		PlayerWhite: "b",
		CreatedAt:   time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC),
	}
	minSGF := PrepareSgfFile(g)
	raw := sgf.Serialize(&minSGF)

	doc, err := sgf.Parse(raw)
	require.NoError(t, err)
	assert.Len(t, doc.Trees[0].Nodes, 1)
}
