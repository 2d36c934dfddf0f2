package record

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"ink_goban/internal/domain/game"
	errs "ink_goban/internal/errors"
)

func newTestInterpreter() *Interpreter {
	return NewInterpreter(zap.NewNop().Sugar())
}

func loadFixture(t *testing.T, name string) game.GameData {
	t.Helper()
	raw, err := os.ReadFile(filepath.Join("testdata", name+".sgf"))
	require.NoError(t, err)

	data, err := newTestInterpreter().FromSGF(string(raw))
	require.NoError(t, err)
	return data
}

func stones(pairs ...[2]int) []game.Stone {
	out := make([]game.Stone, 0, len(pairs))
	for _, p := range pairs {
		out = append(out, game.Stone{X: p[0], Y: p[1]})
	}
	return out
}

func TestBasicLoad(t *testing.T) {
	data := loadFixture(t, "basic")

	require.Equal(t, 13, data.Size)
	assert.Equal(t, stones([2]int{7, 9}), data.WhiteStones)
	assert.Equal(t, stones([2]int{4, 4}, [2]int{4, 10}, [2]int{10, 4}, [2]int{10, 10}), data.BlackStones)
}

func TestCaptureLoad(t *testing.T) {
	data := loadFixture(t, "one-capture")

	require.Equal(t, 9, data.Size)
	assert.Equal(t, stones(
		[2]int{4, 5}, [2]int{4, 6}, [2]int{4, 7},
		[2]int{5, 3},
		[2]int{6, 5}, [2]int{6, 6},
		[2]int{7, 4}, [2]int{7, 6},
		[2]int{8, 5},
	), data.WhiteStones)
	assert.Equal(t, stones(
		[2]int{3, 3}, [2]int{3, 5}, [2]int{3, 7},
		[2]int{4, 3},
		[2]int{5, 2}, [2]int{5, 7},
		[2]int{7, 3}, [2]int{7, 7},
		[2]int{8, 6}, [2]int{8, 7},
	), data.BlackStones)

	// the captured stone is gone from both lists
	captured := game.Stone{X: 7, Y: 5}
	assert.NotContains(t, data.WhiteStones, captured)
	assert.NotContains(t, data.BlackStones, captured)
}

func TestMoveBeforeBoardSizeRejected(t *testing.T) {
	_, err := newTestInterpreter().FromSGF("(;FF[4];B[aa])")
	require.ErrorIs(t, err, errs.ErrNoBoardSize)

	_, err = newTestInterpreter().FromSGF("(;AB[aa][bb])")
	require.ErrorIs(t, err, errs.ErrNoBoardSize)
}

func TestOffBoardCoordinateRejected(t *testing.T) {
	_, err := newTestInterpreter().FromSGF("(;SZ[9];B[jj])")
	require.ErrorIs(t, err, errs.ErrCoordinateOffBoard)

	_, err = newTestInterpreter().FromSGF("(;SZ[9]AW[aa][aj])")
	require.ErrorIs(t, err, errs.ErrCoordinateOffBoard)
}

func TestMalformedInputRejected(t *testing.T) {
	for _, raw := range []string{"", "not an sgf", "(;SZ[9]", "(;SZ[nine];B[aa])"} {
		_, err := newTestInterpreter().FromSGF(raw)
		require.ErrorIs(t, err, errs.ErrMalformedSGF, "input %q", raw)
	}
}

func TestPassMovesPlaceNothing(t *testing.T) {
	data, err := newTestInterpreter().FromSGF("(;SZ[9];B[dd];W[];B[tt])")
	require.NoError(t, err)

	assert.Empty(t, data.WhiteStones)
	assert.Equal(t, stones([2]int{4, 4}), data.BlackStones)
}

func TestCornerCapture(t *testing.T) {
	// B surrounds the white stone in the a1 corner with two stones
	data, err := newTestInterpreter().FromSGF("(;SZ[9];W[aa];B[ab];B[ba])")
	require.NoError(t, err)

	assert.Empty(t, data.WhiteStones)
	assert.Equal(t, stones([2]int{1, 2}, [2]int{2, 1}), data.BlackStones)
}

func TestGroupCapture(t *testing.T) {
	// two connected white stones lose their last liberty at once
	data, err := newTestInterpreter().FromSGF(
		"(;SZ[9];W[ba];W[bb];B[aa];B[ab];B[ca];B[cb];B[bc])")
	require.NoError(t, err)

	assert.Empty(t, data.WhiteStones)
	assert.Len(t, data.BlackStones, 5)
}

func TestDisjointDeadGroupsRemovedByOneSweep(t *testing.T) {
	// setup leaves two separate libertyless white corners; the sweep after
	// the first single move removes both at once
	data, err := newTestInterpreter().FromSGF(
		"(;SZ[9]AW[aa][ia]AB[ab][ba][ha][ib];B[ee])")
	require.NoError(t, err)

	assert.Empty(t, data.WhiteStones)
	assert.Len(t, data.BlackStones, 5)
}

func TestMoverColourAnalyzedFirst(t *testing.T) {
	// a stone played into its own last liberty dies immediately, even
	// though the surrounding opponent group is short of liberties too
	data, err := newTestInterpreter().FromSGF("(;SZ[9];W[ab];W[ba];B[aa])")
	require.NoError(t, err)

	assert.Empty(t, data.BlackStones)
	assert.Equal(t, stones([2]int{1, 2}, [2]int{2, 1}), data.WhiteStones)
}

func TestStoneWithLibertyNeverDies(t *testing.T) {
	// capture of the corner must not touch the capturing stones
	data, err := newTestInterpreter().FromSGF("(;SZ[5];W[aa];B[ba];B[ab])")
	require.NoError(t, err)

	assert.Empty(t, data.WhiteStones)
	for _, s := range stones([2]int{1, 2}, [2]int{2, 1}) {
		assert.Contains(t, data.BlackStones, s)
	}
}

func TestBulkAddsAreSymmetric(t *testing.T) {
	// AW is not shifted differently from AB
	data, err := newTestInterpreter().FromSGF("(;SZ[9]AB[cc]AW[dd];B[ff])")
	require.NoError(t, err)

	assert.Equal(t, stones([2]int{4, 4}), data.WhiteStones)
	assert.Equal(t, stones([2]int{3, 3}, [2]int{6, 6}), data.BlackStones)
}

func TestVariationsFlattenedInDocumentOrder(t *testing.T) {
	// both branches of the record are replayed depth first
	data, err := newTestInterpreter().FromSGF("(;SZ[9];B[aa](;W[bb])(;W[cc]))")
	require.NoError(t, err)

	assert.Equal(t, stones([2]int{1, 1}), data.BlackStones)
	assert.Equal(t, stones([2]int{2, 2}, [2]int{3, 3}), data.WhiteStones)
}

func TestOutputSortedByCanonicalKey(t *testing.T) {
	data := loadFixture(t, "one-capture")

	for _, list := range [][]game.Stone{data.WhiteStones, data.BlackStones} {
		for i := 1; i < len(list); i++ {
			prev := list[i-1].X*data.Size + list[i-1].Y
			cur := list[i].X*data.Size + list[i].Y
			assert.LessOrEqual(t, prev, cur)
		}
	}
}

func TestSortStonesIdempotent(t *testing.T) {
	unsorted := stones([2]int{5, 1}, [2]int{0, 3}, [2]int{2, 2}, [2]int{0, 0}, [2]int{2, 8})

	once := make([]game.Stone, len(unsorted))
	copy(once, unsorted)
	SortStones(once, 9)

	twice := make([]game.Stone, len(once))
	copy(twice, once)
	SortStones(twice, 9)

	assert.Equal(t, once, twice)
}

func TestCoordinateShiftIsPlusOne(t *testing.T) {
	data, err := newTestInterpreter().FromSGF("(;SZ[3];B[ac])")
	require.NoError(t, err)

	// internal (0,2) comes out as (1,3)
	assert.Equal(t, stones([2]int{1, 3}), data.BlackStones)
}
