package game

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"ink_goban/internal/domain/game"
	"ink_goban/internal/domain/sgf"
	errs "ink_goban/internal/errors"
	"ink_goban/internal/statuses"
	"ink_goban/internal/usecase/record"
)

type GameStore interface {
	GenerateGameKeys(ctx context.Context) (gameKeySecret string, gameKeyPublic string)
	PutGame(ctx context.Context, gameData game.Game) error
	AddPlayer(ctx context.Context, playerID string, gameKeySecret string) (game.Game, error)
	GetGameByPublicKey(ctx context.Context, gameKeyPublic string) (game.Game, error)
	GetGameBySecretKey(ctx context.Context, gameKeySecret string) (game.Game, error)
	ArchiveGame(ctx context.Context, gameKeySecret string) error
	SaveSGFToRedis(ctx context.Context, key string, sgfText string) error
	LoadSGFFromRedis(ctx context.Context, key string) (string, error)
}

// GameUseCase ведёт живые партии двух планшетов: ключи, SGF-снимок,
// добавление ходов и готовое состояние доски для отрисовки.
type GameUseCase struct {
	store  GameStore
	interp *record.Interpreter
	log    *zap.SugaredLogger
}

func NewGameUseCase(store GameStore, interp *record.Interpreter, log *zap.SugaredLogger) *GameUseCase {
	return &GameUseCase{store: store, interp: interp, log: log}
}

func (g *GameUseCase) CreateGame(ctx context.Context, req game.CreateGameRequest) (game.Game, error) {
	gameKeySecret, gameKeyPublic := g.store.GenerateGameKeys(ctx)

	newGame := game.Game{
		BoardSize:     req.BoardSize,
		Komi:          req.Komi,
		GameKeySecret: gameKeySecret,
		GameKeyPublic: gameKeyPublic,
		Status:        statuses.StatusWaitOpponent,
		WhoIsNext:     game.ColorBlack,
		CreatedAt:     time.Now(),
	}

	if req.IsCreatorBlack {
		newGame.PlayerBlack = req.PlayerID
	} else {
		newGame.PlayerWhite = req.PlayerID
	}

	minSGF := PrepareSgfFile(newGame)
	if err := g.store.SaveSGFToRedis(ctx, gameKeySecret, sgf.Serialize(&minSGF)); err != nil {
		return game.Game{}, err
	}

	if err := g.store.PutGame(ctx, newGame); err != nil {
		return game.Game{}, err
	}
	return newGame, nil
}

func (g *GameUseCase) JoinGame(ctx context.Context, gameKeyPublic string, playerID string) (game.Game, error) {
	found, err := g.store.GetGameByPublicKey(ctx, gameKeyPublic)
	if err != nil {
		return game.Game{}, err
	}
	if found.PlayerBlack == playerID || found.PlayerWhite == playerID {
		return game.Game{}, errs.ErrJoinGameFailed
	}

	return g.store.AddPlayer(ctx, playerID, found.GameKeySecret)
}

func (g *GameUseCase) GetGameByPublicKey(ctx context.Context, gameKeyPublic string) (game.Game, error) {
	found, err := g.store.GetGameByPublicKey(ctx, gameKeyPublic)
	if err != nil {
		return game.Game{}, err
	}

	sgfString, err := g.store.LoadSGFFromRedis(ctx, found.GameKeySecret)
	if err == nil {
		found.Sgf = sgfString
	}
	return found, nil
}

func (g *GameUseCase) GetGameBySecretKey(ctx context.Context, gameKeySecret string) (game.Game, error) {
	return g.store.GetGameBySecretKey(ctx, gameKeySecret)
}

// BoardState прогоняет текущий SGF партии через интерпретатор записи.
func (g *GameUseCase) BoardState(ctx context.Context, gameKeySecret string) (game.GameData, error) {
	sgfString, err := g.store.LoadSGFFromRedis(ctx, gameKeySecret)
	if err != nil {
		return game.GameData{}, err
	}
	return g.interp.FromSGF(sgfString)
}

// AddMoveToGameSgf дописывает ход в снимок и возвращает обновлённый SGF.
func (g *GameUseCase) AddMoveToGameSgf(ctx context.Context, gameKeySecret string, move game.Move) (string, error) {
	if move.Color != "B" && move.Color != "W" {
		return "", fmt.Errorf("%w: color %q", errs.ErrBadMove, move.Color)
	}

	sgfString, err := g.store.LoadSGFFromRedis(ctx, gameKeySecret)
	if err != nil {
		return "", err
	}

	newSgfString := AppendMoveToSgf(sgfString, move)
	if err = g.store.SaveSGFToRedis(ctx, gameKeySecret, newSgfString); err != nil {
		return "", err
	}
	return newSgfString, nil
}

func (g *GameUseCase) FinishGame(ctx context.Context, gameKeySecret string) error {
	return g.store.ArchiveGame(ctx, gameKeySecret)
}

// PrepareSgfFile собирает минимальный корневой узел новой партии.
func PrepareSgfFile(gameData game.Game) sgf.SGF {
	return sgf.SGF{
		Trees: []*sgf.GameTree{
			{
				Nodes: []sgf.Node{
					{
						Properties: []sgf.Property{
							{Name: "FF", Values: []string{"4"}},
							{Name: "GM", Values: []string{"1"}},
							{Name: "SZ", Values: []string{strconv.Itoa(gameData.BoardSize)}},
							{Name: "PB", Values: []string{gameData.PlayerBlack}},
							{Name: "PW", Values: []string{gameData.PlayerWhite}},
							{Name: "DT", Values: []string{gameData.CreatedAt.Format("2006-01-02")}},
							{Name: "KM", Values: []string{strconv.FormatFloat(gameData.Komi, 'f', 1, 64)}},
							{Name: "RU", Values: []string{"Chinese"}},
						},
					},
				},
			},
		},
	}
}

// AppendMoveToSgf дописывает ";B[xy]" перед закрывающей скобкой.
func AppendMoveToSgf(sgfText string, move game.Move) string {
	if strings.HasSuffix(sgfText, ")") {
		sgfText = sgfText[:len(sgfText)-1]
	}
	return sgfText + fmt.Sprintf(";%s[%s])", move.Color, move.Coordinates)
}
