package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/tokenledger/internal/adapter/http/dto"
	"github.com/iho/tokenledger/internal/domain"
	"github.com/iho/tokenledger/internal/infrastructure/metrics"
	"github.com/iho/tokenledger/internal/usecase"
)

// LedgerService defines the behavior needed by LedgerHandler.
type LedgerService interface {
	CreateAccount(ctx context.Context, input usecase.CreateAccountInput) (*domain.Account, error)
	CreditAccount(ctx context.Context, accountID string, amount int64) (*domain.Account, error)
	DebitAccount(ctx context.Context, accountID string, amount int64) (*domain.Account, error)
	GetAccount(ctx context.Context, accountID string) (*domain.Account, error)
	ListAccounts(ctx context.Context, input usecase.ListAccountsInput) (*usecase.ListAccountsOutput, error)
}

// LedgerHandler handles account and balance HTTP requests.
type LedgerHandler struct {
	ledgerUC LedgerService
	metrics  *metrics.Metrics
}

// NewLedgerHandler creates a new LedgerHandler. Metrics may be nil in tests.
func NewLedgerHandler(ledgerUC LedgerService, m *metrics.Metrics) *LedgerHandler {
	return &LedgerHandler{ledgerUC: ledgerUC, metrics: m}
}

// Create creates a new account with the initial grant.
func (h *LedgerHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	account, err := h.ledgerUC.CreateAccount(r.Context(), req.ToUseCaseInput())
	if err != nil {
		h.countFailure(err)
		writeError(w, mapDomainError(err), "failed to create account", err.Error())
		return
	}

	if h.metrics != nil {
		h.metrics.AccountsCreated.Inc()
	}

	writeJSON(w, http.StatusCreated, dto.AccountFromDomain(account))
}

// Get retrieves the current account state.
func (h *LedgerHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing account ID", "")
		return
	}

	account, err := h.ledgerUC.GetAccount(r.Context(), id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get account", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.AccountFromDomain(account))
}

// List returns one page of the account listing.
func (h *LedgerHandler) List(w http.ResponseWriter, r *http.Request) {
	out, err := h.ledgerUC.ListAccounts(r.Context(), usecase.ListAccountsInput{
		PageSize: parseIntQuery(r, "limit", 0),
		Cursor:   r.URL.Query().Get("cursor"),
	})
	if err != nil {
		writeError(w, mapDomainError(err), "failed to list accounts", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ListAccountsResponse{
		Accounts:   dto.ListingFromDomain(out.Entries),
		NextCursor: out.NextCursor,
	})
}

// Credit adds tokens to an account.
func (h *LedgerHandler) Credit(w http.ResponseWriter, r *http.Request) {
	h.adjust(w, r, domain.EventCredited)
}

// Debit removes tokens from an account.
func (h *LedgerHandler) Debit(w http.ResponseWriter, r *http.Request) {
	h.adjust(w, r, domain.EventDebited)
}

func (h *LedgerHandler) adjust(w http.ResponseWriter, r *http.Request, kind domain.EventKind) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing account ID", "")
		return
	}

	var req dto.AdjustmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	op := h.ledgerUC.CreditAccount
	failMsg := "failed to credit account"
	if kind == domain.EventDebited {
		op = h.ledgerUC.DebitAccount
		failMsg = "failed to debit account"
	}

	account, err := op(r.Context(), id, req.Amount)
	if err != nil {
		h.countFailure(err)
		writeError(w, mapDomainError(err), failMsg, err.Error())
		return
	}

	if h.metrics != nil {
		if kind == domain.EventCredited {
			h.metrics.CreditsApplied.Inc()
		} else {
			h.metrics.DebitsApplied.Inc()
		}
	}

	writeJSON(w, http.StatusOK, dto.AccountFromDomain(account))
}

func (h *LedgerHandler) countFailure(err error) {
	if h.metrics == nil {
		return
	}

	switch {
	case isConflict(err):
		h.metrics.VersionConflicts.Inc()
	case isInsufficient(err):
		h.metrics.InsufficientBalance.Inc()
	}
}
