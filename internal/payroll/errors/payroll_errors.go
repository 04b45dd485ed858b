package payrollerrors

import (
	"net/http"

	"go-payroll/internal/shared/apperror"
)

var (
	ErrWorkerNotFound = apperror.New(apperror.CodeNotFound, "worker not found", http.StatusNotFound)
	ErrEmptyBatch     = apperror.New(apperror.CodeInvalidInput, "no salaries to calculate", http.StatusBadRequest)
)
