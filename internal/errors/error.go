package errors

import "errors"

var (
	ErrMalformedSGF       = errors.New("malformed sgf record")
	ErrNoBoardSize        = errors.New("move before board size declaration")
	ErrCoordinateOffBoard = errors.New("coordinate outside the board")
	ErrBadMove            = errors.New("illegal move")
	ErrGameOver           = errors.New("game is already over")
	ErrNothingToUndo      = errors.New("nothing to undo")
	ErrEngineCommand      = errors.New("engine rejected command")
	ErrGameNotFound       = errors.New("game not found")
	ErrCreateGameFailed   = errors.New("create game failed")
	ErrJoinGameFailed     = errors.New("join game failed")
	ErrLoginFailed        = errors.New("dragon go server login failed")
	ErrInternal           = errors.New("internal error")
)
