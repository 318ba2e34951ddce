package rest

import (
	"context"
	"encoding/base64"
	"net/http"
	"strings"

	"settlement-service/internal/domain"
	"settlement-service/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type contextKey string

const merchantIDKey contextKey = "merchant_id"

// MerchantID extracts the authenticated merchant from the request context.
func MerchantID(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(merchantIDKey).(uuid.UUID)
	return id, ok
}

// MerchantAuth authenticates requests with a Basic merchantId:secretKey
// Authorization header against the merchants table.
func MerchantAuth(merchants repository.MerchantRepository, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			merchantID, err := authenticate(r.Context(), merchants, r.Header.Get("Authorization"))
			if err != nil {
				logger.Warn("merchant authentication failed", zap.Error(err))
				respondError(w, domain.ErrUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), merchantIDKey, merchantID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func authenticate(ctx context.Context, merchants repository.MerchantRepository, header string) (uuid.UUID, error) {
	const prefix = "Basic "
	if !strings.HasPrefix(header, prefix) {
		return uuid.Nil, domain.ErrUnauthorized
	}

	decoded, err := base64.StdEncoding.DecodeString(strings.TrimSpace(header[len(prefix):]))
	if err != nil {
		return uuid.Nil, domain.ErrUnauthorized
	}

	idAndSecret := strings.SplitN(string(decoded), ":", 2)
	if len(idAndSecret) != 2 {
		return uuid.Nil, domain.ErrUnauthorized
	}

	merchantID, err := uuid.Parse(idAndSecret[0])
	if err != nil {
		return uuid.Nil, domain.ErrUnauthorized
	}

	merchant, err := merchants.GetByID(ctx, merchantID)
	if err != nil {
		return uuid.Nil, domain.ErrUnauthorized
	}
	if merchant.SecretKey != idAndSecret[1] {
		return uuid.Nil, domain.ErrUnauthorized
	}
	return merchantID, nil
}
