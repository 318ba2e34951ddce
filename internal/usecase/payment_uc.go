package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"settlement-service/internal/domain"
	"settlement-service/internal/repository"
	"settlement-service/pkg/utils"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CustomerCommand identifies a customer; customers are matched by full name
// and country.
type CustomerCommand struct {
	FirstName string
	LastName  string
	Country   string
}

type CardCommand struct {
	CardNumber string
	ExpDate    string // MM/yy
	CVV        string
}

type PaymentCommand struct {
	Currency        string
	Amount          decimal.Decimal
	NotificationURL string
	Language        string
	Card            CardCommand
	Customer        CustomerCommand
}

type PaymentResult struct {
	TransactionID uuid.UUID
	Status        domain.Status
	Message       string
}

// TransactionDetails joins a transaction with its card and customer for
// merchant-facing responses.
type TransactionDetails struct {
	Transaction *domain.Transaction
	Card        *domain.Card
	Customer    *domain.Customer
}

type ListOptions struct {
	StartDate *int64 // unix seconds
	EndDate   *int64
	Page      int
	Size      int
}

// PaymentUsecase covers payment initiation and merchant queries. Initiation
// takes the money from the paying entity up front, under repeatable read,
// and creates the transaction IN_PROCESS; settlement later credits the
// beneficiary or refunds the payer.
type PaymentUsecase struct {
	store       repository.Store
	ledger      *LedgerUsecase
	statusCache *StatusCache
	logger      *zap.Logger
}

func NewPaymentUsecase(store repository.Store, ledger *LedgerUsecase, statusCache *StatusCache, logger *zap.Logger) *PaymentUsecase {
	return &PaymentUsecase{
		store:       store,
		ledger:      ledger,
		statusCache: statusCache,
		logger:      logger,
	}
}

// TopUp funds a merchant account from a customer card. An unknown customer
// or card is registered on the fly; a freshly registered card starts with a
// zero balance, so the funding debit then fails with ErrInsufficientFunds.
func (uc *PaymentUsecase) TopUp(ctx context.Context, merchantID uuid.UUID, cmd PaymentCommand) (*PaymentResult, error) {
	account, err := uc.store.Accounts().GetByMerchantAndCurrency(ctx, merchantID, cmd.Currency)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("merchant account for currency %s: %w", cmd.Currency, err)
		}
		return nil, err
	}

	customer, err := uc.store.Customers().GetByNameAndCountry(ctx, cmd.Customer.FirstName, cmd.Customer.LastName, cmd.Customer.Country)
	if errors.Is(err, domain.ErrNotFound) {
		customer, err = uc.registerCustomer(ctx, cmd.Customer)
	}
	if err != nil {
		return nil, err
	}

	card, err := uc.store.Cards().GetByNumberAndCurrency(ctx, cmd.Card.CardNumber, cmd.Currency)
	if errors.Is(err, domain.ErrNotFound) {
		// The card is unknown to us: register it so future top-ups can find
		// it, and reject this one for lack of funds.
		if _, regErr := uc.registerCard(ctx, cmd, customer.ID); regErr != nil {
			return nil, regErr
		}
		return nil, domain.ErrInsufficientFunds
	}
	if err != nil {
		return nil, err
	}

	var txn *domain.Transaction
	err = uc.store.WithinRepeatableRead(ctx, func(ctx context.Context, s repository.Store) error {
		if _, err := uc.ledger.DebitCard(ctx, s, card.ID, cmd.Amount); err != nil {
			return err
		}
		txn = newTransaction(cmd, domain.TypeTopUp, card.ID, account.ID)
		return s.Transactions().Create(ctx, txn)
	})
	if err != nil {
		return nil, err
	}

	uc.logger.Info("top-up initiated",
		zap.String("transaction_id", txn.ID.String()),
		zap.String("merchant_id", merchantID.String()),
		zap.String("amount", cmd.Amount.String()))

	return &PaymentResult{TransactionID: txn.ID, Status: txn.Status, Message: "OK"}, nil
}

// PayOut pays a customer card out of a merchant account. Unlike TopUp,
// customer and card must already exist.
func (uc *PaymentUsecase) PayOut(ctx context.Context, merchantID uuid.UUID, cmd PaymentCommand) (*PaymentResult, error) {
	if _, err := uc.store.Customers().GetByNameAndCountry(ctx, cmd.Customer.FirstName, cmd.Customer.LastName, cmd.Customer.Country); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("customer %s %s: %w", cmd.Customer.FirstName, cmd.Customer.LastName, err)
		}
		return nil, err
	}

	card, err := uc.store.Cards().GetByNumberAndCurrency(ctx, cmd.Card.CardNumber, cmd.Currency)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("card: %w", err)
		}
		return nil, err
	}

	account, err := uc.store.Accounts().GetByMerchantAndCurrency(ctx, merchantID, cmd.Currency)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("merchant account for currency %s: %w", cmd.Currency, err)
		}
		return nil, err
	}

	var txn *domain.Transaction
	err = uc.store.WithinRepeatableRead(ctx, func(ctx context.Context, s repository.Store) error {
		if _, err := uc.ledger.DebitAccount(ctx, s, account.ID, cmd.Amount); err != nil {
			return err
		}
		txn = newTransaction(cmd, domain.TypePayOut, card.ID, account.ID)
		return s.Transactions().Create(ctx, txn)
	})
	if err != nil {
		return nil, err
	}

	uc.logger.Info("payout initiated",
		zap.String("transaction_id", txn.ID.String()),
		zap.String("merchant_id", merchantID.String()),
		zap.String("amount", cmd.Amount.String()))

	return &PaymentResult{TransactionID: txn.ID, Status: txn.Status, Message: "OK"}, nil
}

// Transactions lists a merchant's transactions of one type across all its
// accounts, optionally restricted to a unix-seconds date range with paging.
func (uc *PaymentUsecase) Transactions(ctx context.Context, merchantID uuid.UUID, txType domain.Type, opts ListOptions) ([]*TransactionDetails, error) {
	accounts, err := uc.store.Accounts().ListByMerchant(ctx, merchantID)
	if err != nil {
		return nil, err
	}
	if len(accounts) == 0 {
		return nil, fmt.Errorf("merchant accounts: %w", domain.ErrNotFound)
	}

	var details []*TransactionDetails
	for _, account := range accounts {
		var txns []*domain.Transaction
		if opts.StartDate != nil && opts.EndDate != nil {
			start := time.Unix(*opts.StartDate, 0)
			end := time.Unix(*opts.EndDate, 0)
			offset := int64(opts.Page) * int64(opts.Size)
			txns, err = uc.store.Transactions().ListByAccountTypeAndRange(ctx, account.ID, txType, start, end, opts.Size, offset)
		} else {
			txns, err = uc.store.Transactions().ListByAccountAndType(ctx, account.ID, txType)
		}
		if err != nil {
			return nil, err
		}

		for _, txn := range txns {
			d, err := uc.joinDetails(ctx, txn)
			if err != nil {
				return nil, err
			}
			details = append(details, d)
		}
	}

	if len(details) == 0 {
		return nil, fmt.Errorf("transactions: %w", domain.ErrNotFound)
	}
	return details, nil
}

// TransactionByID returns one transaction of the given type, provided the
// merchant holds an account in the transaction's currency.
func (uc *PaymentUsecase) TransactionByID(ctx context.Context, merchantID, transactionID uuid.UUID, txType domain.Type) (*TransactionDetails, error) {
	txn, err := uc.store.Transactions().GetByIDAndType(ctx, transactionID, txType)
	if err != nil {
		return nil, err
	}
	if _, err := uc.store.Accounts().GetByMerchantAndCurrency(ctx, merchantID, txn.Currency); err != nil {
		return nil, err
	}
	return uc.joinDetails(ctx, txn)
}

// TransactionStatus answers from the Redis cache when the settlement job has
// already published the outcome, falling back to the database.
func (uc *PaymentUsecase) TransactionStatus(ctx context.Context, transactionID uuid.UUID) (domain.Status, error) {
	if status, ok := uc.statusCache.Get(ctx, transactionID); ok {
		return status, nil
	}

	for _, txType := range []domain.Type{domain.TypeTopUp, domain.TypePayOut} {
		txn, err := uc.store.Transactions().GetByIDAndType(ctx, transactionID, txType)
		if err == nil {
			return txn.Status, nil
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return "", err
		}
	}
	return "", domain.ErrNotFound
}

func (uc *PaymentUsecase) joinDetails(ctx context.Context, txn *domain.Transaction) (*TransactionDetails, error) {
	card, err := uc.store.Cards().GetByID(ctx, txn.CardID)
	if err != nil {
		return nil, fmt.Errorf("card for transaction %s: %w", txn.ID, err)
	}
	customer, err := uc.store.Customers().GetByID(ctx, card.CustomerID)
	if err != nil {
		return nil, fmt.Errorf("customer for transaction %s: %w", txn.ID, err)
	}
	return &TransactionDetails{Transaction: txn, Card: card, Customer: customer}, nil
}

func (uc *PaymentUsecase) registerCustomer(ctx context.Context, cmd CustomerCommand) (*domain.Customer, error) {
	customer := &domain.Customer{
		ID:        uuid.New(),
		FirstName: cmd.FirstName,
		LastName:  cmd.LastName,
		Country:   cmd.Country,
	}
	if err := uc.store.Customers().Create(ctx, customer); err != nil {
		return nil, err
	}
	uc.logger.Info("customer registered", zap.String("customer_id", customer.ID.String()))
	return customer, nil
}

func (uc *PaymentUsecase) registerCard(ctx context.Context, cmd PaymentCommand, customerID uuid.UUID) (*domain.Card, error) {
	expDate, err := utils.ParseExpDate(cmd.Card.ExpDate)
	if err != nil {
		return nil, err
	}

	card := &domain.Card{
		ID:         uuid.New(),
		CardNumber: cmd.Card.CardNumber,
		ExpDate:    expDate,
		CVV:        cmd.Card.CVV,
		Currency:   cmd.Currency,
		Balance:    decimal.Zero,
		CustomerID: customerID,
	}
	if err := uc.store.Cards().Create(ctx, card); err != nil {
		return nil, err
	}
	uc.logger.Info("card registered", zap.String("card_id", card.ID.String()))
	return card, nil
}

func newTransaction(cmd PaymentCommand, txType domain.Type, cardID, accountID uuid.UUID) *domain.Transaction {
	now := time.Now()
	return &domain.Transaction{
		ID:              uuid.New(),
		CreatedAt:       now,
		UpdatedAt:       now,
		Currency:        cmd.Currency,
		Amount:          cmd.Amount,
		NotificationURL: cmd.NotificationURL,
		Language:        cmd.Language,
		Status:          domain.StatusInProcess,
		Type:            txType,
		CardID:          cardID,
		AccountID:       accountID,
	}
}
