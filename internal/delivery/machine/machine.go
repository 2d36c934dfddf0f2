package machine

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"ink_goban/internal/domain/game"
	errs "ink_goban/internal/errors"
	"ink_goban/internal/httpresponse"
	machineuc "ink_goban/internal/usecase/machine"
	"ink_goban/internal/utils"
)

type MachineHandler struct {
	log *zap.SugaredLogger
	uc  *machineuc.MachineUseCase
}

func NewMachineHandler(log *zap.SugaredLogger, uc *machineuc.MachineUseCase) *MachineHandler {
	return &MachineHandler{log: log, uc: uc}
}

func (h *MachineHandler) HandleNew(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.log.Error("Only POST method is allowed")
		httpresponse.WriteResponseWithStatus(w, http.StatusMethodNotAllowed, "Only POST method is allowed")
		return
	}

	if err := h.uc.Reset(); err != nil {
		h.log.Error("machine reset failed:", err)
		httpresponse.WriteInternalErrorResponse(w)
		return
	}
	h.writeState(w)
}

func (h *MachineHandler) HandleMove(w http.ResponseWriter, r *http.Request) {
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
		h.log.Error("machine move rejected:", err)
		status := http.StatusInternalServerError
		if errors.Is(err, errs.ErrBadMove) || errors.Is(err, errs.ErrGameOver) {
			status = http.StatusBadRequest
		}
		httpresponse.WriteResponseWithStatus(w, status, err.Error())
		return
	}
	httpresponse.WriteResponseWithStatus(w, http.StatusOK, st)
}

func (h *MachineHandler) HandleState(w http.ResponseWriter, r *http.Request) {
	h.writeState(w)
}

func (h *MachineHandler) writeState(w http.ResponseWriter) {
	st, err := h.uc.State()
	if err != nil {
		h.log.Error("machine state failed:", err)
		httpresponse.WriteInternalErrorResponse(w)
		return
	}
	httpresponse.WriteResponseWithStatus(w, http.StatusOK, st)
}
