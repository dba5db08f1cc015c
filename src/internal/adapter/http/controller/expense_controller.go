package controller

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/sente-books/ledger-service/src/internal/adapter/http/models"
	"github.com/sente-books/ledger-service/src/internal/commons"
	"github.com/sente-books/ledger-service/src/internal/logger"
)

type ExpenseService interface {
	RecordExpense(ctx context.Context, req models.RecordExpenseRequest) (commons.Response[models.TransactionResponse], error)
}

type ExpenseController struct {
	service ExpenseService
}

func NewExpenseController(service ExpenseService) *ExpenseController {
	return &ExpenseController{service: service}
}

func (c *ExpenseController) RegisterRoutes(mux *http.ServeMux, authMiddleware func(http.Handler) http.Handler) {
	handler := http.HandlerFunc(c.recordExpense)
	if authMiddleware != nil {
		mux.Handle("/expenses", authMiddleware(handler))
		return
	}
	mux.Handle("/expenses", handler)
}

func (c *ExpenseController) recordExpense(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logRequest(r, nil)

	if r.Method != http.MethodPost {
		response := commons.ErrorResponse[models.TransactionResponse]("method not allowed")
		writeJSON(w, http.StatusMethodNotAllowed, response)
		logResponse(r, http.StatusMethodNotAllowed, response, start)
		return
	}

	var req models.RecordExpenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logError(r, err, nil)
		response := commons.ErrorResponse[models.TransactionResponse]("invalid request body", err.Error())
		writeJSON(w, http.StatusBadRequest, response)
		logResponse(r, http.StatusBadRequest, response, start)
		return
	}
	logRequest(r, req)

	response, err := c.service.RecordExpense(r.Context(), req)
	if err != nil {
		status := transactionErrorStatus(err, response.Message)
		logError(r, err, logger.Fields{"message": response.Message})
		writeJSON(w, status, response)
		logResponse(r, status, response, start)
		return
	}

	writeJSON(w, http.StatusCreated, response)
	logResponse(r, http.StatusCreated, response, start)
}
