package dragon

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	dragondom "ink_goban/internal/domain/dragon"
	"ink_goban/internal/domain/game"
	errs "ink_goban/internal/errors"
	"ink_goban/internal/httpresponse"
	dragonuc "ink_goban/internal/usecase/dragon"
	"ink_goban/internal/utils"
)

type DragonHandler struct {
	log *zap.SugaredLogger
	uc  *dragonuc.DragonUseCase
}

type moveRequest struct {
	GameID string `json:"game_id"`
	MoveID int    `json:"move_id"`
	X      int    `json:"x"`
	Y      int    `json:"y"`
}

func NewDragonHandler(log *zap.SugaredLogger, uc *dragonuc.DragonUseCase) *DragonHandler {
	return &DragonHandler{log: log, uc: uc}
}

// HandleLogin без тела логинится сохранёнными данными; с телом —
// сохраняет новые и проверяет их.
func (h *DragonHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.log.Error("Only POST method is allowed")
		httpresponse.WriteResponseWithStatus(w, http.StatusMethodNotAllowed, "Only POST method is allowed")
		return
	}

	body, err := utils.ReadRequestBody(r)
	if err != nil {
		h.log.Error("Failed to read body:", err)
		httpresponse.WriteResponseWithStatus(w, http.StatusBadRequest, "Failed to read request body")
		return
	}

	ctx := r.Context()

	if len(body) == 0 {
		info, err := h.uc.Login(ctx)
		if err != nil {
			h.log.Error("dragon login failed:", err)
			httpresponse.WriteResponseWithStatus(w, dragonErrorStatus(err), err.Error())
			return
		}
		httpresponse.WriteResponseWithStatus(w, http.StatusOK, info.Username)
		return
	}

	var info dragondom.LoginInfo
	if err := json.Unmarshal(body, &info); err != nil {
		h.log.Error("JSON decode error:", err)
		httpresponse.WriteResponseWithStatus(w, http.StatusBadRequest, "Invalid JSON: "+err.Error())
		return
	}

	if err := h.uc.SetLogin(ctx, info); err != nil {
		h.log.Error("dragon login failed:", err)
		httpresponse.WriteResponseWithStatus(w, dragonErrorStatus(err), err.Error())
		return
	}
	httpresponse.WriteResponseWithStatus(w, http.StatusOK, info.Username)
}

func (h *DragonHandler) HandleGames(w http.ResponseWriter, r *http.Request) {
	games, err := h.uc.Games(r.Context())
	if err != nil {
		h.log.Error("dragon games failed:", err)
		httpresponse.WriteResponseWithStatus(w, dragonErrorStatus(err), err.Error())
		return
	}
	httpresponse.WriteResponseWithStatus(w, http.StatusOK, games)
}

func (h *DragonHandler) HandleBoard(w http.ResponseWriter, r *http.Request) {
	gameID := r.URL.Query().Get("game_id")
	if gameID == "" {
		h.log.Error("game_id is required")
		httpresponse.WriteResponseWithStatus(w, http.StatusBadRequest, "game_id is required")
		return
	}

	data, err := h.uc.Board(r.Context(), gameID)
	if err != nil {
		h.log.Error("dragon board failed:", err)
		httpresponse.WriteResponseWithStatus(w, dragonErrorStatus(err), err.Error())
		return
	}
	httpresponse.WriteResponseWithStatus(w, http.StatusOK, data)
}

func (h *DragonHandler) HandleMove(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.log.Error("Only POST method is allowed")
		httpresponse.WriteResponseWithStatus(w, http.StatusMethodNotAllowed, "Only POST method is allowed")
		return
	}

	var req moveRequest
	if err := utils.DecodeJSONRequest(r, &req); err != nil {
		h.log.Error("JSON decode error:", err)
		httpresponse.WriteResponseWithStatus(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.GameID == "" {
		h.log.Error("game_id is required")
		httpresponse.WriteResponseWithStatus(w, http.StatusBadRequest, "game_id is required")
		return
	}

	err := h.uc.Move(r.Context(), req.GameID, req.MoveID, game.Stone{X: req.X, Y: req.Y})
	if err != nil {
		h.log.Error("dragon move failed:", err)
		httpresponse.WriteResponseWithStatus(w, dragonErrorStatus(err), err.Error())
		return
	}
	httpresponse.WriteResponseWithStatus(w, http.StatusOK, "move submitted")
}

func dragonErrorStatus(err error) int {
	switch {
	case errors.Is(err, errs.ErrLoginFailed):
		return http.StatusUnauthorized
	case errors.Is(err, errs.ErrBadMove),
		errors.Is(err, errs.ErrMalformedSGF),
		errors.Is(err, errs.ErrNoBoardSize),
		errors.Is(err, errs.ErrCoordinateOffBoard):
		return http.StatusBadRequest
	default:
		return http.StatusBadGateway
	}
}
