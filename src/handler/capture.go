package handler

import (
	"context"
	"encoding/json"

	logger "github.com/sirupsen/logrus"

	"github.com/psychoder05/chartworm-backend/src/model"
	"github.com/psychoder05/chartworm-backend/src/repository"
)

// Capture records a system exception, logs it locally, and persists it in
// the exceptions table for later reconciliation. Persisting is best-effort:
// a failure to record the exception is itself only logged.
func Capture(
	ctx context.Context,
	repo *repository.ExceptionRepository,
	module string,
	method string,
	level string,
	err error,
	contextData map[string]interface{},
) {

	if err == nil || repo == nil {
		return
	}

	var ctxJSON string
	if len(contextData) > 0 {
		if b, marshalErr := json.Marshal(contextData); marshalErr == nil {
			ctxJSON = string(b)
		}
	}

	exc := &model.Exception{
		Module:  module,
		Method:  method,
		Message: err.Error(),
		Level:   level,
		Context: ctxJSON,
	}

	if createErr := repo.Create(ctx, exc); createErr != nil {
		logger.WithError(createErr).
			WithField("original_error", err.Error()).
			Error("Failed to persist exception")
	}
}
