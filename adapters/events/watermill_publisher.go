package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/shopspring/decimal"
)

const (
	TopicIdentityVerified = "seedvault.identity.verified"
	TopicWalletLinked     = "seedvault.wallet.linked"
	TopicContribution     = "seedvault.contribution.submitted"
	TopicClaim            = "seedvault.reward.claimed"
)

// IdentityVerifiedEvent is published after a successful World ID login
type IdentityVerifiedEvent struct {
	UserID        string    `json:"user_id"`
	NullifierHash string    `json:"nullifier_hash"`
	Level         string    `json:"verification_level"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// WalletLinkedEvent is published after a SIWE completion
type WalletLinkedEvent struct {
	UserID     string    `json:"user_id"`
	Address    string    `json:"address"`
	OccurredAt time.Time `json:"occurred_at"`
}

// ContributionEvent carries a submitted knowledge node
type ContributionEvent struct {
	ContributionID string    `json:"contribution_id"`
	UserID         string    `json:"user_id"`
	BotID          string    `json:"bot_id"`
	Content        string    `json:"content"`
	OccurredAt     time.Time `json:"occurred_at"`
}

// ClaimEvent asks the relayer to pay out a reward
type ClaimEvent struct {
	ClaimID    string          `json:"claim_id"`
	UserID     string          `json:"user_id"`
	Amount     decimal.Decimal `json:"amount"`
	OccurredAt time.Time       `json:"occurred_at"`
}

// WatermillPublisher implements the EventPublisher port using Watermill
type WatermillPublisher struct {
	publisher message.Publisher
	now       func() time.Time
}

// NewWatermillPublisher creates a new Watermill publisher
func NewWatermillPublisher(publisher message.Publisher) *WatermillPublisher {
	return &WatermillPublisher{
		publisher: publisher,
		now:       time.Now,
	}
}

// PublishIdentityVerified publishes an identity verification event
func (p *WatermillPublisher) PublishIdentityVerified(ctx context.Context, userID, nullifierHash, level string) error {
	return p.publish(ctx, TopicIdentityVerified, IdentityVerifiedEvent{
		UserID:        userID,
		NullifierHash: nullifierHash,
		Level:         level,
		OccurredAt:    p.now().UTC(),
	})
}

// PublishWalletLinked publishes a wallet link event
func (p *WatermillPublisher) PublishWalletLinked(ctx context.Context, userID, address string) error {
	return p.publish(ctx, TopicWalletLinked, WalletLinkedEvent{
		UserID:     userID,
		Address:    address,
		OccurredAt: p.now().UTC(),
	})
}

// PublishContribution publishes a contribution event
func (p *WatermillPublisher) PublishContribution(ctx context.Context, contributionID, userID, botID, content string) error {
	return p.publish(ctx, TopicContribution, ContributionEvent{
		ContributionID: contributionID,
		UserID:         userID,
		BotID:          botID,
		Content:        content,
		OccurredAt:     p.now().UTC(),
	})
}

// PublishClaim publishes a reward claim event
func (p *WatermillPublisher) PublishClaim(ctx context.Context, claimID, userID string, amount decimal.Decimal) error {
	return p.publish(ctx, TopicClaim, ClaimEvent{
		ClaimID:    claimID,
		UserID:     userID,
		Amount:     amount,
		OccurredAt: p.now().UTC(),
	})
}

func (p *WatermillPublisher) publish(ctx context.Context, topic string, event interface{}) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.SetContext(ctx)

	if err := p.publisher.Publish(topic, msg); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	return nil
}

// NopPublisher drops every event. Used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) PublishIdentityVerified(context.Context, string, string, string) error {
	return nil
}

func (NopPublisher) PublishWalletLinked(context.Context, string, string) error { return nil }

func (NopPublisher) PublishContribution(context.Context, string, string, string, string) error {
	return nil
}

func (NopPublisher) PublishClaim(context.Context, string, string, decimal.Decimal) error { return nil }
