package atari

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"ink_goban/internal/domain/game"
	errs "ink_goban/internal/errors"
	"ink_goban/internal/httpresponse"
	atariuc "ink_goban/internal/usecase/atari"
	"ink_goban/internal/utils"
)

type AtariHandler struct {
	log *zap.SugaredLogger
	uc  *atariuc.AtariUseCase
}

func NewAtariHandler(log *zap.SugaredLogger, uc *atariuc.AtariUseCase) *AtariHandler {
	return &AtariHandler{log: log, uc: uc}
}

func (h *AtariHandler) HandleNew(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.log.Error("Only POST method is allowed")
		httpresponse.WriteResponseWithStatus(w, http.StatusMethodNotAllowed, "Only POST method is allowed")
		return
	}

	if err := h.uc.Reset(); err != nil {
		h.log.Error("atari reset failed:", err)
		httpresponse.WriteInternalErrorResponse(w)
		return
	}
	h.writeState(w)
}

func (h *AtariHandler) HandleMove(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.log.Error("Only POST method is allowed")
		httpresponse.WriteResponseWithStatus(w, http.StatusMethodNotAllowed, "Only POST method is allowed")
		return
	}

	var spot game.Stone
	if err := utils.DecodeJSONRequest(r, &spot); err != nil {
		h.log.Error("JSON decode error:", err)
		httpresponse.WriteResponseWithStatus(w, http.StatusBadRequest, err.Error())
		return
	}

	st, err := h.uc.Move(spot)
	if err != nil {
		h.log.Error("atari move rejected:", err)
		httpresponse.WriteResponseWithStatus(w, gameErrorStatus(err), err.Error())
		return
	}
	httpresponse.WriteResponseWithStatus(w, http.StatusOK, st)
}

func (h *AtariHandler) HandleUndo(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.log.Error("Only POST method is allowed")
		httpresponse.WriteResponseWithStatus(w, http.StatusMethodNotAllowed, "Only POST method is allowed")
		return
	}

	st, err := h.uc.Undo()
	if err != nil {
		h.log.Error("atari undo rejected:", err)
		httpresponse.WriteResponseWithStatus(w, gameErrorStatus(err), err.Error())
		return
	}
	httpresponse.WriteResponseWithStatus(w, http.StatusOK, st)
}

func (h *AtariHandler) HandleState(w http.ResponseWriter, r *http.Request) {
	h.writeState(w)
}

func (h *AtariHandler) writeState(w http.ResponseWriter) {
	st, err := h.uc.State()
	if err != nil {
		h.log.Error("atari state failed:", err)
		httpresponse.WriteInternalErrorResponse(w)
		return
	}
	httpresponse.WriteResponseWithStatus(w, http.StatusOK, st)
}

func gameErrorStatus(err error) int {
	switch {
	case errors.Is(err, errs.ErrBadMove),
		errors.Is(err, errs.ErrGameOver),
		errors.Is(err, errs.ErrNothingToUndo):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
