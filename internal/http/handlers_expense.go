package http

import (
	"errors"
	"net/http"

	"expensetracker/internal/core"
	"expensetracker/internal/idempotency"
	applog "expensetracker/internal/log"
)

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	q := ParseListQuery(r.URL.Query())

	items, err := s.expenses.ListExpenses(r.Context(), q)
	if err != nil {
		s.writeServiceError(w, r, applog.OpList, err)
		return
	}

	applog.FromContext(r.Context()).DebugContext(r.Context(), "Listed expenses",
		applog.FieldOperation, applog.OpList,
		applog.FieldCategory, q.Category,
		applog.FieldSort, string(q.Sort),
		applog.FieldCount, len(items))

	NewJSONResponse().Data(toExpenseResponses(items)).Write(w)
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxBodyBytes)

	req, err := ParseCreateExpense(r)
	if err != nil {
		s.writeRequestError(w, r, err)
		return
	}

	e, outcome, err := s.expenses.CreateExpense(r.Context(), req)
	if err != nil {
		s.writeServiceError(w, r, applog.OpCreate, err)
		return
	}

	if outcome == idempotency.OutcomeReplayed {
		NewJSONResponse().
			Status(http.StatusOK).
			Replayed().
			Body(toExpenseResponse(e)).
			Write(w)
		return
	}

	NewJSONResponse().
		Status(http.StatusCreated).
		Header("Location", "/expenses/"+e.ID).
		Body(toExpenseResponse(e)).
		Write(w)
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		NotFoundError("expense not found").Write(w)
		return
	}

	if err := s.expenses.DeleteExpense(r.Context(), id); err != nil {
		s.writeServiceError(w, r, applog.OpDelete, err)
		return
	}

	NewJSONResponse().
		Body(deleteResponse{Message: "Expense deleted", ID: id}).
		Write(w)
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	q := ParseListQuery(r.URL.Query())

	sum, err := s.expenses.Summary(r.Context(), q)
	if err != nil {
		s.writeServiceError(w, r, applog.OpSummary, err)
		return
	}
	NewJSONResponse().Body(toSummaryResponse(sum)).Write(w)
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := s.expenses.Categories(r.Context())
	if err != nil {
		s.writeServiceError(w, r, applog.OpList, err)
		return
	}
	NewJSONResponse().Data(cats).Write(w)
}

// writeRequestError answers body decoding failures.
func (s *Server) writeRequestError(w http.ResponseWriter, r *http.Request, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		ErrorResponse(http.StatusRequestEntityTooLarge, applog.ErrorTypeValidation, "request body too large").Write(w)
		return
	}
	var verr *core.ValidationError
	if errors.As(err, &verr) {
		validationResponse(verr).Write(w)
		return
	}

	applog.FromContext(r.Context()).WarnContext(r.Context(), "Malformed request body",
		applog.FieldErrorType, applog.ErrorTypeValidation,
		applog.FieldError, err)
	BadRequestError("invalid JSON body").Write(w)
}

// writeServiceError maps domain error kinds to HTTP statuses. It is the only
// place that makes that decision.
func (s *Server) writeServiceError(w http.ResponseWriter, r *http.Request, op string, err error) {
	ctx := r.Context()
	logger := applog.FromContext(ctx)

	var (
		verr     *core.ValidationError
		conflict *core.ConflictError
	)
	switch {
	case errors.As(err, &verr):
		validationResponse(verr).Write(w)
	case errors.As(err, &conflict):
		logger.WarnContext(ctx, "Idempotency conflict",
			applog.FieldOperation, op,
			applog.FieldErrorType, applog.ErrorTypeConflict,
			applog.FieldIdempotencyKey, conflict.Key)
		ConflictError(conflict.Error()).Write(w)
	case errors.Is(err, core.ErrDuplicateKey):
		ConflictError("duplicate request for idempotency key").Write(w)
	case errors.Is(err, core.ErrNotFound):
		NotFoundError("expense not found").Write(w)
	default:
		errorType := applog.ErrorTypeInternal
		if errors.Is(err, core.ErrStoreUnavailable) {
			errorType = applog.ErrorTypeDatabase
		}
		logger.ErrorContext(ctx, "Request failed",
			applog.FieldOperation, op,
			applog.FieldErrorType, errorType,
			applog.FieldError, err)
		InternalServerError("internal server error").Write(w)
	}
}

func validationResponse(verr *core.ValidationError) *JSONResponseBuilder {
	return NewJSONResponse().
		Status(http.StatusBadRequest).
		Body(errorBody{Error: verr.Error(), Kind: applog.ErrorTypeValidation, Fields: verr.Fields})
}
