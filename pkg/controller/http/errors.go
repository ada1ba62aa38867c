package http

import (
	"errors"
	"net/http"

	"github.com/m-mizutani/goerr/v2"

	"github.com/fusa-lab/talos/pkg/domain/model"
	"github.com/fusa-lab/talos/pkg/domain/types"
	"github.com/fusa-lab/talos/pkg/usecase"
	"github.com/fusa-lab/talos/pkg/utils/errutil"
)

// errBadRequest covers malformed request bodies and missing fields that no
// domain error describes.
var errBadRequest = goerr.New("bad request")

// statusOf maps domain and use case errors to HTTP status codes. Anything
// unrecognized is a server-side failure.
func statusOf(err error) int {
	switch {
	case errors.Is(err, usecase.ErrSessionNotFound),
		errors.Is(err, usecase.ErrHazardNotFound),
		errors.Is(err, model.ErrSituationNotFound):
		return http.StatusNotFound

	case errors.Is(err, types.ErrStagePrerequisite):
		return http.StatusPreconditionFailed

	case errors.Is(err, types.ErrInvalidSeverity),
		errors.Is(err, types.ErrInvalidExposure),
		errors.Is(err, types.ErrInvalidControllability),
		errors.Is(err, types.ErrInvalidStage),
		errors.Is(err, types.ErrInvalidSituationGroup),
		errors.Is(err, types.ErrEmptyExposureSet),
		errors.Is(err, usecase.ErrItemNameRequired),
		errors.Is(err, errBadRequest):
		return http.StatusBadRequest

	case errors.Is(err, usecase.ErrLLMNotConfigured):
		return http.StatusServiceUnavailable

	default:
		return http.StatusInternalServerError
	}
}

// handleError writes the error response with the mapped status code
func handleError(w http.ResponseWriter, r *http.Request, err error) {
	errutil.HandleHTTP(r.Context(), w, err, statusOf(err))
}
