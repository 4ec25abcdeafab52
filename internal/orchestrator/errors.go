package orchestrator

import (
	"errors"

	dErrors "claimchain/pkg/domain-errors"
	"claimchain/pkg/platform/sentinel"
)

// storeError translates store sentinels into domain errors. Errors that
// already carry a domain code pass through unchanged.
func storeError(err error, notFoundMsg string) error {
	var domainErr *dErrors.Error
	switch {
	case errors.As(err, &domainErr):
		return err
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, notFoundMsg)
	case errors.Is(err, sentinel.ErrInvalidState), errors.Is(err, sentinel.ErrAlreadyUsed):
		return dErrors.Wrap(err, dErrors.CodeConflict, "state changed concurrently")
	case errors.Is(err, sentinel.ErrInvalidInput):
		return dErrors.Wrap(err, dErrors.CodeValidation, err.Error())
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, "storage failure")
	}
}

func missing(field string) error {
	return dErrors.New(dErrors.CodeMissingField, field+" is required")
}
