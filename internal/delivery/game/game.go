package game

import (
	"errors"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"ink_goban/internal/domain/game"
	errs "ink_goban/internal/errors"
	"ink_goban/internal/httpresponse"
	gameuc "ink_goban/internal/usecase/game"
	"ink_goban/internal/utils"
)

type GameHandler struct {
	log    *zap.SugaredLogger
	gameUC *gameuc.GameUseCase
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// живые партии: секретный ключ -> игра с ws-соединениями сторон
var activeGames = make(map[string]*game.Game)
var activeGamesMu sync.RWMutex

func NewGameHandler(log *zap.SugaredLogger, gameUC *gameuc.GameUseCase) *GameHandler {
	return &GameHandler{log: log, gameUC: gameUC}
}

func (g *GameHandler) HandleNewGame(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		g.log.Error("Only POST method is allowed")
		httpresponse.WriteResponseWithStatus(w, http.StatusMethodNotAllowed, "Only POST method is allowed")
		return
	}

	var req game.CreateGameRequest
	if err := utils.DecodeJSONRequest(r, &req); err != nil {
		g.log.Error("JSON decode error:", err)
		httpresponse.WriteResponseWithStatus(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.PlayerID == "" || req.BoardSize < 2 {
		g.log.Error("неверный json")
		httpresponse.WriteResponseWithStatus(w, http.StatusBadRequest, "player_id and board_size are required")
		return
	}

	created, err := g.gameUC.CreateGame(r.Context(), req)
	if err != nil {
		g.log.Error(err)
		httpresponse.WriteResponseWithStatus(w, http.StatusBadRequest, err.Error())
		return
	}

	resp := game.GameCreateResponse{
		GameKeyPublic: created.GameKeyPublic,
		GameKeySecret: created.GameKeySecret,
	}

	g.log.Info("New game created with key: " + created.GameKeyPublic)
	httpresponse.WriteResponseWithStatus(w, http.StatusOK, resp)
}

func (g *GameHandler) HandleJoinGame(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		g.log.Error("Only POST method is allowed")
		httpresponse.WriteResponseWithStatus(w, http.StatusMethodNotAllowed, "Only POST method is allowed")
		return
	}

	var req game.GameJoinRequest
	if err := utils.DecodeJSONRequest(r, &req); err != nil {
		g.log.Error("JSON decode error:", err)
		httpresponse.WriteResponseWithStatus(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.GameKeyPublic == "" || req.PlayerID == "" {
		g.log.Error("неверный json")
		httpresponse.WriteResponseWithStatus(w, http.StatusBadRequest, "game_key_public and player_id are required")
		return
	}

	joined, err := g.gameUC.JoinGame(r.Context(), req.GameKeyPublic, req.PlayerID)
	if err != nil {
		g.log.Error(err)
		httpresponse.WriteResponseWithStatus(w, joinErrorStatus(err), err.Error())
		return
	}

	g.log.Infof("Player %s joined game %s", req.PlayerID, req.GameKeyPublic)
	httpresponse.WriteResponseWithStatus(w, http.StatusOK, joined)
}

func (g *GameHandler) HandleGameState(w http.ResponseWriter, r *http.Request) {
	gameKeyPublic := r.URL.Query().Get("game_key_public")
	if gameKeyPublic == "" {
		g.log.Error("game_key_public is required")
		httpresponse.WriteResponseWithStatus(w, http.StatusBadRequest, "game_key_public is required")
		return
	}

	ctx := r.Context()

	found, err := g.gameUC.GetGameByPublicKey(ctx, gameKeyPublic)
	if err != nil {
		g.log.Error(err)
		httpresponse.WriteResponseWithStatus(w, joinErrorStatus(err), err.Error())
		return
	}

	board, err := g.gameUC.BoardState(ctx, found.GameKeySecret)
	if err != nil {
		g.log.Error(err)
		httpresponse.WriteResponseWithStatus(w, http.StatusInternalServerError, err.Error())
		return
	}

	resp := game.GameStateResponse{
		SGF:   found.Sgf,
		Board: board,
	}
	httpresponse.WriteResponseWithStatus(w, http.StatusOK, resp)
}

func (g *GameHandler) HandleFinishGame(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		g.log.Error("Only POST method is allowed")
		httpresponse.WriteResponseWithStatus(w, http.StatusMethodNotAllowed, "Only POST method is allowed")
		return
	}

	gameKeySecret := r.URL.Query().Get("game_key_secret")
	if gameKeySecret == "" {
		g.log.Error("game_key_secret is required")
		httpresponse.WriteResponseWithStatus(w, http.StatusBadRequest, "game_key_secret is required")
		return
	}

	if err := g.gameUC.FinishGame(r.Context(), gameKeySecret); err != nil {
		g.log.Error(err)
		httpresponse.WriteResponseWithStatus(w, joinErrorStatus(err), err.Error())
		return
	}

	activeGamesMu.Lock()
	delete(activeGames, gameKeySecret)
	activeGamesMu.Unlock()

	httpresponse.WriteResponseWithStatus(w, http.StatusOK, "game archived")
}

// HandleLiveGame — ws-канал живой партии. Каждый присланный ход
// дописывается в SGF, позиция пересчитывается и уходит оппоненту.
func (g *GameHandler) HandleLiveGame(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	gameKeySecret := r.URL.Query().Get("game_key_secret")
	colour := r.URL.Query().Get("color")

	if gameKeySecret == "" || (colour != game.ColorBlack && colour != game.ColorWhite) {
		g.log.Error("отсутствуют поля game_key_secret или color")
		httpresponse.WriteResponseWithStatus(w, http.StatusBadRequest, "game_key_secret and color=black|white are required")
		return
	}

	activeGamesMu.Lock()
	ag, ok := activeGames[gameKeySecret]
	if !ok {
		foundGame, err := g.gameUC.GetGameBySecretKey(ctx, gameKeySecret)
		if err != nil {
			activeGamesMu.Unlock()
			g.log.Error(err)
			httpresponse.WriteResponseWithStatus(w, joinErrorStatus(err), err.Error())
			return
		}
		ag = &foundGame
		activeGames[gameKeySecret] = ag
	}
	activeGamesMu.Unlock()

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		g.log.Error("upgrade error:", err)
		return
	}

	var playerWS **websocket.Conn
	var opponentWS **websocket.Conn

	if colour == game.ColorBlack {
		playerWS, opponentWS = &ag.PlayerBlackWS, &ag.PlayerWhiteWS
	} else {
		playerWS, opponentWS = &ag.PlayerWhiteWS, &ag.PlayerBlackWS
	}

	activeGamesMu.Lock()
	if *playerWS != nil {
		(*playerWS).WriteMessage(websocket.TextMessage, []byte("Вы были отключены, новое соединение создано."))
		(*playerWS).Close()
	}
	*playerWS = conn
	activeGamesMu.Unlock()

	defer func() {
		conn.Close()
		activeGamesMu.Lock()
		if *playerWS == conn {
			*playerWS = nil
		}
		activeGamesMu.Unlock()
	}()

	for {
		var move game.Move
		if err = conn.ReadJSON(&move); err != nil {
			g.log.Error("read error:", err)
			return
		}

		g.log.Info("Получен ход: ", move)

		sgfString, err := g.gameUC.AddMoveToGameSgf(ctx, gameKeySecret, move)
		if err != nil {
			g.log.Error(err)
			conn.WriteMessage(websocket.TextMessage, []byte(err.Error()))
			continue
		}

		board, err := g.gameUC.BoardState(ctx, gameKeySecret)
		if err != nil {
			g.log.Error(err)
			conn.WriteMessage(websocket.TextMessage, []byte(err.Error()))
			continue
		}

		resp := game.GameStateResponse{
			Move:  move,
			SGF:   sgfString,
			Board: board,
		}

		activeGamesMu.RLock()
		opponent := *opponentWS
		activeGamesMu.RUnlock()

		if opponent != nil {
			if err := opponent.WriteJSON(resp); err != nil {
				g.log.Error("Write to opponent error:", err)
				opponent.Close()
				activeGamesMu.Lock()
				if *opponentWS == opponent {
					*opponentWS = nil
				}
				activeGamesMu.Unlock()
			}
		} else {
			conn.WriteMessage(websocket.TextMessage, []byte("Оппонент не подключен"))
		}
	}
}

func joinErrorStatus(err error) int {
	switch {
	case errors.Is(err, errs.ErrGameNotFound):
		return http.StatusNotFound
	case errors.Is(err, errs.ErrJoinGameFailed):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
