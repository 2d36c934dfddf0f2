package record

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	errs "ink_goban/internal/errors"
	"ink_goban/internal/httpresponse"
	recorduc "ink_goban/internal/usecase/record"
	"ink_goban/internal/utils"
)

type RecordHandler struct {
	log    *zap.SugaredLogger
	interp *recorduc.Interpreter
}

func NewRecordHandler(log *zap.SugaredLogger, interp *recorduc.Interpreter) *RecordHandler {
	return &RecordHandler{log: log, interp: interp}
}

// HandleParse принимает сырой SGF в теле запроса и возвращает позицию.
func (h *RecordHandler) HandleParse(w http.ResponseWriter, r *http.Request) {
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

	data, err := h.interp.FromSGF(string(body))
	if err != nil {
		h.log.Error("record parse failed:", err)
		httpresponse.WriteResponseWithStatus(w, recordErrorStatus(err), err.Error())
		return
	}

	httpresponse.WriteResponseWithStatus(w, http.StatusOK, data)
}

func recordErrorStatus(err error) int {
	switch {
	case errors.Is(err, errs.ErrMalformedSGF),
		errors.Is(err, errs.ErrNoBoardSize),
		errors.Is(err, errs.ErrCoordinateOffBoard):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
