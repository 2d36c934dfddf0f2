package dragon

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"ink_goban/internal/domain/dragon"
	"ink_goban/internal/domain/game"
	errs "ink_goban/internal/errors"
	"ink_goban/internal/usecase/record"
)

// DragonStore — то, что нам нужно от репозитория Dragon Go Server.
type DragonStore interface {
	LoadLoginInfo() (dragon.LoginInfo, error)
	SaveLoginInfo(info dragon.LoginInfo) error
	Login(ctx context.Context, info dragon.LoginInfo) error
	QuickStatus(ctx context.Context, username string) ([]dragon.GameRecord, error)
	FetchSGF(ctx context.Context, gameID string) (string, error)
	SubmitMove(ctx context.Context, gameID string, moveID int, sgfCoord string) error
}

// DragonUseCase — заочные партии на Dragon Go Server: список партий,
// доска по SGF-записи и отправка хода.
type DragonUseCase struct {
	store  DragonStore
	interp *record.Interpreter
	log    *zap.SugaredLogger
}

func NewDragonUseCase(store DragonStore, interp *record.Interpreter, log *zap.SugaredLogger) *DragonUseCase {
	return &DragonUseCase{store: store, interp: interp, log: log}
}

// Login логинится данными из файла. Пустой файл (только что записанная
// болванка) — это ещё не настроенный планшет, не ходим на сервер вовсе.
func (d *DragonUseCase) Login(ctx context.Context) (dragon.LoginInfo, error) {
	info, err := d.store.LoadLoginInfo()
	if err != nil {
		return dragon.LoginInfo{}, err
	}
	if info.Username == "" {
		return dragon.LoginInfo{}, fmt.Errorf("%w: login file is empty", errs.ErrLoginFailed)
	}
	if err := d.store.Login(ctx, info); err != nil {
		return dragon.LoginInfo{}, err
	}
	return info, nil
}

// SetLogin сохраняет новые учётные данные и сразу проверяет их логином.
func (d *DragonUseCase) SetLogin(ctx context.Context, info dragon.LoginInfo) error {
	if err := d.store.Login(ctx, info); err != nil {
		return err
	}
	return d.store.SaveLoginInfo(info)
}

// Games возвращает список партий текущего пользователя.
func (d *DragonUseCase) Games(ctx context.Context) ([]dragon.GameRecord, error) {
	info, err := d.store.LoadLoginInfo()
	if err != nil {
		return nil, err
	}
	if info.Username == "" {
		return nil, fmt.Errorf("%w: login file is empty", errs.ErrLoginFailed)
	}
	return d.store.QuickStatus(ctx, info.Username)
}

// Board выгружает SGF партии и поднимает из неё позицию.
func (d *DragonUseCase) Board(ctx context.Context, gameID string) (game.GameData, error) {
	raw, err := d.store.FetchSGF(ctx, gameID)
	if err != nil {
		return game.GameData{}, err
	}
	return d.interp.FromSGF(raw)
}

// Move отправляет ход на сервер. Координаты на входе 1-базные, как и
// везде наружу; в SGF-пару переводим здесь.
func (d *DragonUseCase) Move(ctx context.Context, gameID string, moveID int, spot game.Stone) error {
	coord, err := sgfCoord(spot)
	if err != nil {
		return err
	}
	if err := d.store.SubmitMove(ctx, gameID, moveID, coord); err != nil {
		return err
	}
	d.log.Infow("dragon move submitted", "game_id", gameID, "move_id", moveID, "coord", coord)
	return nil
}

func sgfCoord(spot game.Stone) (string, error) {
	if spot.X < 1 || spot.X > 26 || spot.Y < 1 || spot.Y > 26 {
		return "", fmt.Errorf("%w: %d,%d", errs.ErrBadMove, spot.X, spot.Y)
	}
	return string([]byte{byte('a' + spot.X - 1), byte('a' + spot.Y - 1)}), nil
}
