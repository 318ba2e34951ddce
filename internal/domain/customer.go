package domain

import (
	"time"

	"github.com/google/uuid"
)

type Customer struct {
	ID        uuid.UUID `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Country   string    `json:"country"`
}

// Merchant owns accounts and authenticates API calls with its secret key.
type Merchant struct {
	ID          uuid.UUID `json:"id"`
	SecretKey   string    `json:"-"`
	CreatedAt   time.Time `json:"created_at"`
	CompanyName string    `json:"company_name"`
	Country     string    `json:"country"`
}
