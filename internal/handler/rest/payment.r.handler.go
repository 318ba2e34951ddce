package rest

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"settlement-service/internal/domain"
	"settlement-service/internal/usecase"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	defaultPage = 0
	defaultSize = 5
)

type PaymentHandler struct {
	payments *usecase.PaymentUsecase
	logger   *zap.Logger
}

func NewPaymentHandler(payments *usecase.PaymentUsecase, logger *zap.Logger) *PaymentHandler {
	return &PaymentHandler{payments: payments, logger: logger}
}

type cardDataRequest struct {
	CardNumber string `json:"card_number"`
	ExpDate    string `json:"exp_date"`
	CVV        string `json:"cvv"`
}

type customerRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Country   string `json:"country"`
}

type paymentRequest struct {
	PaymentMethod   string          `json:"payment_method"`
	Amount          decimal.Decimal `json:"amount"`
	Currency        string          `json:"currency"`
	CardData        cardDataRequest `json:"card_data"`
	Language        string          `json:"language"`
	NotificationURL string          `json:"notification_url"`
	Customer        customerRequest `json:"customer"`
}

type paymentResponse struct {
	TransactionID uuid.UUID     `json:"transaction_id"`
	Status        domain.Status `json:"status"`
	Message       string        `json:"message"`
}

type transactionResponse struct {
	PaymentMethod   string              `json:"payment_method"`
	Amount          decimal.Decimal     `json:"amount"`
	Currency        string              `json:"currency"`
	TransactionID   uuid.UUID           `json:"transactionId"`
	CreatedAt       time.Time           `json:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at"`
	NotificationURL string              `json:"notification_url"`
	CardData        domain.CardData     `json:"card_data"`
	Language        string              `json:"language"`
	Customer        domain.CustomerData `json:"customer"`
	Status          domain.Status       `json:"status"`
	Message         string              `json:"message"`
}

type statusResponse struct {
	TransactionID uuid.UUID     `json:"transaction_id"`
	Status        domain.Status `json:"status"`
}

func (h *PaymentHandler) Deposit(w http.ResponseWriter, r *http.Request) {
	h.initiate(w, r, h.payments.TopUp)
}

func (h *PaymentHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	h.initiate(w, r, h.payments.PayOut)
}

func (h *PaymentHandler) initiate(w http.ResponseWriter, r *http.Request,
	fn func(ctx context.Context, merchantID uuid.UUID, cmd usecase.PaymentCommand) (*usecase.PaymentResult, error)) {
	merchantID, ok := MerchantID(r.Context())
	if !ok {
		respondError(w, domain.ErrUnauthorized)
		return
	}

	var req paymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, errorResponse{Message: "invalid request body"})
		return
	}
	if req.Amount.LessThanOrEqual(decimal.Zero) {
		respondJSON(w, http.StatusBadRequest, errorResponse{Message: "amount must be positive"})
		return
	}

	cmd := usecase.PaymentCommand{
		Currency:        req.Currency,
		Amount:          req.Amount,
		NotificationURL: req.NotificationURL,
		Language:        req.Language,
		Card: usecase.CardCommand{
			CardNumber: req.CardData.CardNumber,
			ExpDate:    req.CardData.ExpDate,
			CVV:        req.CardData.CVV,
		},
		Customer: usecase.CustomerCommand{
			FirstName: req.Customer.FirstName,
			LastName:  req.Customer.LastName,
			Country:   req.Customer.Country,
		},
	}

	result, err := fn(r.Context(), merchantID, cmd)
	if err != nil {
		h.logger.Warn("payment initiation failed",
			zap.String("merchant_id", merchantID.String()),
			zap.Error(err))
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, paymentResponse{
		TransactionID: result.TransactionID,
		Status:        result.Status,
		Message:       result.Message,
	})
}

func (h *PaymentHandler) ListTopUps(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, domain.TypeTopUp)
}

func (h *PaymentHandler) ListPayOuts(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, domain.TypePayOut)
}

func (h *PaymentHandler) TopUpByID(w http.ResponseWriter, r *http.Request) {
	h.details(w, r, domain.TypeTopUp)
}

func (h *PaymentHandler) PayOutByID(w http.ResponseWriter, r *http.Request) {
	h.details(w, r, domain.TypePayOut)
}

func (h *PaymentHandler) TransactionStatus(w http.ResponseWriter, r *http.Request) {
	transactionID, err := uuid.Parse(chi.URLParam(r, "transactionID"))
	if err != nil {
		respondError(w, domain.ErrNotFound)
		return
	}

	status, err := h.payments.TransactionStatus(r.Context(), transactionID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, statusResponse{TransactionID: transactionID, Status: status})
}

func (h *PaymentHandler) list(w http.ResponseWriter, r *http.Request, txType domain.Type) {
	merchantID, ok := MerchantID(r.Context())
	if !ok {
		respondError(w, domain.ErrUnauthorized)
		return
	}

	opts := usecase.ListOptions{Page: defaultPage, Size: defaultSize}
	query := r.URL.Query()
	if v, err := strconv.ParseInt(query.Get("start_date"), 10, 64); err == nil {
		opts.StartDate = &v
	}
	if v, err := strconv.ParseInt(query.Get("end_date"), 10, 64); err == nil {
		opts.EndDate = &v
	}
	if v, err := strconv.Atoi(query.Get("page")); err == nil {
		opts.Page = v
	}
	if v, err := strconv.Atoi(query.Get("size")); err == nil {
		opts.Size = v
	}

	details, err := h.payments.Transactions(r.Context(), merchantID, txType, opts)
	if err != nil {
		respondError(w, err)
		return
	}

	responses := make([]transactionResponse, 0, len(details))
	for _, d := range details {
		responses = append(responses, toTransactionResponse(d))
	}
	respondJSON(w, http.StatusOK, responses)
}

func (h *PaymentHandler) details(w http.ResponseWriter, r *http.Request, txType domain.Type) {
	merchantID, ok := MerchantID(r.Context())
	if !ok {
		respondError(w, domain.ErrUnauthorized)
		return
	}

	transactionID, err := uuid.Parse(chi.URLParam(r, "transactionID"))
	if err != nil {
		respondError(w, domain.ErrNotFound)
		return
	}

	d, err := h.payments.TransactionByID(r.Context(), merchantID, transactionID, txType)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, toTransactionResponse(d))
}

func toTransactionResponse(d *usecase.TransactionDetails) transactionResponse {
	return transactionResponse{
		PaymentMethod:   "CARD",
		Amount:          d.Transaction.Amount,
		Currency:        d.Transaction.Currency,
		TransactionID:   d.Transaction.ID,
		CreatedAt:       d.Transaction.CreatedAt,
		UpdatedAt:       d.Transaction.UpdatedAt,
		NotificationURL: d.Transaction.NotificationURL,
		CardData:        domain.CardData{CardNumber: d.Card.CardNumber},
		Language:        d.Transaction.Language,
		Customer:        domain.CustomerData{FirstName: d.Customer.FirstName, LastName: d.Customer.LastName},
		Status:          d.Transaction.Status,
		Message:         "OK",
	}
}
