// Package web exposes the wallet ledger over a JSON HTTP API.
package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"bitwallet/internal/domain"
)

type accountStore interface {
	Create(username, email, name string) (domain.Account, error)
	Get(id string) (domain.Account, error)
	UpdateProfile(id string, upd domain.ProfileUpdate) (domain.Account, error)
}

type rateStore interface {
	Get() (domain.ExchangeRate, error)
	Set(price decimal.Decimal) (domain.ExchangeRate, error)
}

type ledgerService interface {
	ExecuteCash(ctx context.Context, id string, action domain.CashAction, amount decimal.Decimal) (domain.Account, error)
	ExecuteCoin(ctx context.Context, id string, action domain.CoinAction, amount decimal.Decimal) (domain.Account, error)
	TotalBalance(ctx context.Context, id string) (decimal.Decimal, error)
}

// Server routes HTTP requests to the ledger and maps domain errors to
// status codes.
type Server struct {
	addr     string
	accounts accountStore
	rates    rateStore
	ledger   ledgerService
	logger   *zap.Logger
}

// NewServer creates a new web server instance.
func NewServer(addr string, accounts accountStore, rates rateStore, ledger ledgerService, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{addr: addr, accounts: accounts, rates: rates, ledger: ledger, logger: logger}
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /users", s.handleCreateUser)
	mux.HandleFunc("GET /users/{id}", s.handleGetUser)
	mux.HandleFunc("PUT /users/{id}", s.handleUpdateUser)
	mux.HandleFunc("POST /users/{id}/usd", s.handleUsdTransaction)
	mux.HandleFunc("POST /users/{id}/bitcoins", s.handleBitcoinTransaction)
	mux.HandleFunc("GET /users/{id}/balance", s.handleGetBalance)
	mux.HandleFunc("GET /bitcoin", s.handleGetRate)
	mux.HandleFunc("PUT /bitcoin", s.handleUpdateRate)
	return mux
}

// Start runs the HTTP server (blocking) and shuts it down when ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	server := &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	s.logger.Info("http server listening", zap.String("addr", s.addr))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

type createUserRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Name     string `json:"name"`
}

type updateUserRequest struct {
	Name  *string `json:"name"`
	Email *string `json:"email"`
}

type transactionRequest struct {
	Action string      `json:"action"`
	Amount json.Number `json:"amount"`
}

type rateRequest struct {
	Price json.Number `json:"price"`
}

type accountResponse struct {
	ID            string    `json:"id"`
	Username      string    `json:"username"`
	Email         string    `json:"email"`
	Name          string    `json:"name"`
	UsdBalance    string    `json:"usdBalance"`
	BitcoinAmount string    `json:"bitcoinAmount"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

type rateResponse struct {
	Price     string    `json:"price"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type balanceResponse struct {
	TotalBalance string `json:"total_balance"`
}

type errorResponse struct {
	Status string `json:"status"`
	Msg    string `json:"msg"`
}

func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Username == "" || req.Name == "" || !validEmail(req.Email) {
		s.writeError(w, http.StatusBadRequest, "username, email and name are required")
		return
	}

	acc, err := s.accounts.Create(req.Username, req.Email, req.Name)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	s.logger.Info("user created", zap.String("id", acc.ID), zap.String("username", acc.Username))
	s.writeJSON(w, http.StatusCreated, toAccountResponse(acc))
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	acc, err := s.accounts.Get(r.PathValue("id"))
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, toAccountResponse(acc))
}

func (s *Server) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	var req updateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Email != nil && !validEmail(*req.Email) {
		s.writeError(w, http.StatusBadRequest, "invalid email")
		return
	}

	acc, err := s.accounts.UpdateProfile(r.PathValue("id"), domain.ProfileUpdate{Name: req.Name, Email: req.Email})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	s.logger.Info("user updated", zap.String("id", acc.ID))
	s.writeJSON(w, http.StatusOK, toAccountResponse(acc))
}

func (s *Server) handleUsdTransaction(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	req, amount, ok := s.decodeTransaction(w, r)
	if !ok {
		return
	}
	action, ok := domain.ParseCashAction(req.Action)
	if !ok {
		s.writeError(w, http.StatusBadRequest, "invalid action")
		return
	}

	acc, err := s.ledger.ExecuteCash(r.Context(), id, action, amount)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, toAccountResponse(acc))
}

func (s *Server) handleBitcoinTransaction(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	req, amount, ok := s.decodeTransaction(w, r)
	if !ok {
		return
	}
	action, ok := domain.ParseCoinAction(req.Action)
	if !ok {
		s.writeError(w, http.StatusBadRequest, "invalid action")
		return
	}

	acc, err := s.ledger.ExecuteCoin(r.Context(), id, action, amount)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, toAccountResponse(acc))
}

func (s *Server) handleGetBalance(w http.ResponseWriter, r *http.Request) {
	total, err := s.ledger.TotalBalance(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, balanceResponse{TotalBalance: total.String()})
}

func (s *Server) handleGetRate(w http.ResponseWriter, r *http.Request) {
	rate, err := s.rates.Get()
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, rateResponse{Price: rate.Price.String(), UpdatedAt: rate.UpdatedAt})
}

func (s *Server) handleUpdateRate(w http.ResponseWriter, r *http.Request) {
	var req rateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	price, err := decimal.NewFromString(req.Price.String())
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid bitcoin rate")
		return
	}

	rate, err := s.rates.Set(price)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	s.logger.Info("bitcoin rate updated", zap.String("price", rate.Price.String()))
	s.writeJSON(w, http.StatusOK, rateResponse{Price: rate.Price.String(), UpdatedAt: rate.UpdatedAt})
}

func (s *Server) decodeTransaction(w http.ResponseWriter, r *http.Request) (transactionRequest, decimal.Decimal, bool) {
	var req transactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return req, decimal.Decimal{}, false
	}
	amount, err := decimal.NewFromString(req.Amount.String())
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid amount")
		return req, decimal.Decimal{}, false
	}
	return req, amount, true
}

// statusFor maps domain errors to HTTP status codes, mirroring the
// taxonomy the ledger returns.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrAccountNotFound), errors.Is(err, domain.ErrRateNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrAccountExists):
		return http.StatusConflict
	case errors.Is(err, domain.ErrInsufficientFunds):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrLimitExceeded),
		errors.Is(err, domain.ErrInvalidRate):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err))
		s.writeError(w, status, "internal error")
		return
	}
	s.writeError(w, status, err.Error())
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, errorResponse{Status: "error", Msg: msg})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("encode response", zap.Error(err))
	}
}

func toAccountResponse(acc domain.Account) accountResponse {
	return accountResponse{
		ID:            acc.ID,
		Username:      acc.Username,
		Email:         acc.Email,
		Name:          acc.Name,
		UsdBalance:    acc.UsdBalance.String(),
		BitcoinAmount: acc.BitcoinAmount.String(),
		CreatedAt:     acc.CreatedAt,
		UpdatedAt:     acc.UpdatedAt,
	}
}

func validEmail(email string) bool {
	at := strings.Index(email, "@")
	return at > 0 && strings.Contains(email[at+1:], ".")
}
