package ports

import (
	"context"

	"github.com/shopspring/decimal"
)

// EventPublisher publishes domain events for other services
type EventPublisher interface {
	PublishIdentityVerified(ctx context.Context, userID, nullifierHash, level string) error
	PublishWalletLinked(ctx context.Context, userID, address string) error
	PublishContribution(ctx context.Context, contributionID, userID, botID, content string) error
	PublishClaim(ctx context.Context, claimID, userID string, amount decimal.Decimal) error
}
