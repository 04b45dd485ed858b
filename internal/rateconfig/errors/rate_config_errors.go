package errors

import (
	"net/http"

	"go-payroll/internal/shared/apperror"
)

var (
	ErrRateNotFound = apperror.New(
		apperror.CodeNotFound,
		"Rate definition not found",
		http.StatusNotFound,
	)

	ErrDuplicateRate = apperror.New(
		apperror.CodeConflict,
		"A rate definition with this category and effective date already exists",
		http.StatusConflict,
	)

	ErrOverlappingWindow = apperror.New(
		apperror.CodeConflict,
		"Effective window overlaps an existing rate definition",
		http.StatusConflict,
	)

	ErrMalformedParameters = apperror.New(
		apperror.CodeInvalidInput,
		"Rate parameters do not match the declared rate shape",
		http.StatusBadRequest,
	)
)
