package controller

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/sente-books/ledger-service/src/internal/adapter/http/models"
	"github.com/sente-books/ledger-service/src/internal/commons"
	"github.com/sente-books/ledger-service/src/internal/domain"
	"github.com/sente-books/ledger-service/src/internal/logger"
)

type JournalService interface {
	CreateJournal(ctx context.Context, req models.CreateJournalRequest) (commons.Response[models.TransactionResponse], error)
	PostJournal(ctx context.Context, req models.PostJournalRequest) (commons.Response[models.TransactionResponse], error)
	CancelJournal(ctx context.Context, req models.CancelJournalRequest) (commons.Response[models.TransactionResponse], error)
	VoidTransaction(ctx context.Context, req models.VoidTransactionRequest) (commons.Response[models.TransactionResponse], error)
	GetTransaction(ctx context.Context, id string) (commons.Response[models.TransactionResponse], error)
	ListScheduledReversals(ctx context.Context, onOrBefore time.Time) (commons.Response[models.ScheduledReversalsResponse], error)
}

type JournalController struct {
	service JournalService
}

func NewJournalController(service JournalService) *JournalController {
	return &JournalController{service: service}
}

func (c *JournalController) RegisterRoutes(mux *http.ServeMux, authMiddleware func(http.Handler) http.Handler) {
	wrap := func(handler http.HandlerFunc) http.Handler {
		if authMiddleware != nil {
			return authMiddleware(handler)
		}
		return handler
	}

	mux.Handle("/journals", wrap(c.createJournal))
	mux.Handle("/journals/post", wrap(c.postJournal))
	mux.Handle("/journals/cancel", wrap(c.cancelJournal))
	mux.Handle("/transactions", wrap(c.getTransaction))
	mux.Handle("/transactions/void", wrap(c.voidTransaction))
	mux.Handle("/transactions/scheduled-reversals", wrap(c.listScheduledReversals))
}

func (c *JournalController) createJournal(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logRequest(r, nil)

	if r.Method != http.MethodPost {
		response := commons.ErrorResponse[models.TransactionResponse]("method not allowed")
		writeJSON(w, http.StatusMethodNotAllowed, response)
		logResponse(r, http.StatusMethodNotAllowed, response, start)
		return
	}

	var req models.CreateJournalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logError(r, err, nil)
		response := commons.ErrorResponse[models.TransactionResponse]("invalid request body", err.Error())
		writeJSON(w, http.StatusBadRequest, response)
		logResponse(r, http.StatusBadRequest, response, start)
		return
	}
	logRequest(r, req)

	response, err := c.service.CreateJournal(r.Context(), req)
	if err != nil {
		status := transactionErrorStatus(err, response.Message)
		logError(r, err, logger.Fields{"message": response.Message})
		writeJSON(w, status, response)
		logResponse(r, status, response, start)
		return
	}

	status := http.StatusCreated
	writeJSON(w, status, response)
	logResponse(r, status, response, start)
}

func (c *JournalController) postJournal(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logRequest(r, nil)

	if r.Method != http.MethodPost {
		response := commons.ErrorResponse[models.TransactionResponse]("method not allowed")
		writeJSON(w, http.StatusMethodNotAllowed, response)
		logResponse(r, http.StatusMethodNotAllowed, response, start)
		return
	}

	var req models.PostJournalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logError(r, err, nil)
		response := commons.ErrorResponse[models.TransactionResponse]("invalid request body", err.Error())
		writeJSON(w, http.StatusBadRequest, response)
		logResponse(r, http.StatusBadRequest, response, start)
		return
	}
	logRequest(r, req)

	response, err := c.service.PostJournal(r.Context(), req)
	if err != nil {
		status := transactionErrorStatus(err, response.Message)
		logError(r, err, logger.Fields{"message": response.Message})
		writeJSON(w, status, response)
		logResponse(r, status, response, start)
		return
	}

	writeJSON(w, http.StatusOK, response)
	logResponse(r, http.StatusOK, response, start)
}

func (c *JournalController) cancelJournal(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logRequest(r, nil)

	if r.Method != http.MethodPost {
		response := commons.ErrorResponse[models.TransactionResponse]("method not allowed")
		writeJSON(w, http.StatusMethodNotAllowed, response)
		logResponse(r, http.StatusMethodNotAllowed, response, start)
		return
	}

	var req models.CancelJournalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logError(r, err, nil)
		response := commons.ErrorResponse[models.TransactionResponse]("invalid request body", err.Error())
		writeJSON(w, http.StatusBadRequest, response)
		logResponse(r, http.StatusBadRequest, response, start)
		return
	}
	logRequest(r, req)

	response, err := c.service.CancelJournal(r.Context(), req)
	if err != nil {
		status := transactionErrorStatus(err, response.Message)
		logError(r, err, logger.Fields{"message": response.Message})
		writeJSON(w, status, response)
		logResponse(r, status, response, start)
		return
	}

	writeJSON(w, http.StatusOK, response)
	logResponse(r, http.StatusOK, response, start)
}

func (c *JournalController) voidTransaction(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logRequest(r, nil)

	if r.Method != http.MethodPost {
		response := commons.ErrorResponse[models.TransactionResponse]("method not allowed")
		writeJSON(w, http.StatusMethodNotAllowed, response)
		logResponse(r, http.StatusMethodNotAllowed, response, start)
		return
	}

	var req models.VoidTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logError(r, err, nil)
		response := commons.ErrorResponse[models.TransactionResponse]("invalid request body", err.Error())
		writeJSON(w, http.StatusBadRequest, response)
		logResponse(r, http.StatusBadRequest, response, start)
		return
	}
	logRequest(r, req)

	response, err := c.service.VoidTransaction(r.Context(), req)
	if err != nil {
		status := transactionErrorStatus(err, response.Message)
		logError(r, err, logger.Fields{"message": response.Message})
		writeJSON(w, status, response)
		logResponse(r, status, response, start)
		return
	}

	writeJSON(w, http.StatusOK, response)
	logResponse(r, http.StatusOK, response, start)
}

func (c *JournalController) getTransaction(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logRequest(r, nil)

	if r.Method != http.MethodGet {
		response := commons.ErrorResponse[models.TransactionResponse]("method not allowed")
		writeJSON(w, http.StatusMethodNotAllowed, response)
		logResponse(r, http.StatusMethodNotAllowed, response, start)
		return
	}

	response, err := c.service.GetTransaction(r.Context(), r.URL.Query().Get("transactionId"))
	if err != nil {
		status := transactionErrorStatus(err, response.Message)
		logError(r, err, logger.Fields{"message": response.Message})
		writeJSON(w, status, response)
		logResponse(r, status, response, start)
		return
	}

	writeJSON(w, http.StatusOK, response)
	logResponse(r, http.StatusOK, response, start)
}

func (c *JournalController) listScheduledReversals(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logRequest(r, nil)

	if r.Method != http.MethodGet {
		response := commons.ErrorResponse[models.ScheduledReversalsResponse]("method not allowed")
		writeJSON(w, http.StatusMethodNotAllowed, response)
		logResponse(r, http.StatusMethodNotAllowed, response, start)
		return
	}

	onOrBefore := time.Now().UTC()
	if raw := strings.TrimSpace(r.URL.Query().Get("onOrBefore")); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			response := commons.ErrorResponse[models.ScheduledReversalsResponse]("validation failed", "onOrBefore must be formatted as YYYY-MM-DD")
			writeJSON(w, http.StatusBadRequest, response)
			logResponse(r, http.StatusBadRequest, response, start)
			return
		}
		onOrBefore = parsed
	}

	response, err := c.service.ListScheduledReversals(r.Context(), onOrBefore)
	if err != nil {
		logError(r, err, logger.Fields{"message": response.Message})
		writeJSON(w, http.StatusInternalServerError, response)
		logResponse(r, http.StatusInternalServerError, response, start)
		return
	}

	writeJSON(w, http.StatusOK, response)
	logResponse(r, http.StatusOK, response, start)
}

// transactionErrorStatus maps the posting engine's sentinel errors to
// HTTP statuses. Validation failures on the request shape itself come
// back as 400; ledger rule rejections carry the full violation list
// and surface as 422.
func transactionErrorStatus(err error, message string) int {
	switch {
	case errors.Is(err, domain.ErrPostingRejected):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrInvalidState):
		return http.StatusConflict
	case errors.Is(err, domain.ErrRecordNotFound), errors.Is(err, domain.ErrAccountNotFound):
		return http.StatusNotFound
	case message == "validation failed":
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
