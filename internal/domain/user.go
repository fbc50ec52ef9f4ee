// Package domain contains core business types and interfaces.
//
// This file defines the User domain type and related types for authentication.
// These types are decoupled from the repository layer so business logic never
// leaks database concerns.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// SubscriptionStatus represents the possible states of a user's subscription.
type SubscriptionStatus string

const (
	SubscriptionStatusInactive SubscriptionStatus = "inactive"
	SubscriptionStatusTrialing SubscriptionStatus = "trialing"
	SubscriptionStatusActive   SubscriptionStatus = "active"
	SubscriptionStatusPastDue  SubscriptionStatus = "past_due"
	SubscriptionStatusCanceled SubscriptionStatus = "canceled"
)

// User represents a registered user of the PM Pathfinder platform.
type User struct {
	ID                 uuid.UUID
	Email              string
	PasswordHash       string // Never expose this in API responses
	Name               string
	StripeCustomerID   string
	SubscriptionStatus SubscriptionStatus
	SubscriptionTier   PlanTier
	SubscriptionID     string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// IsActive returns true if the user has an active subscription or is trialing.
func (u *User) IsActive() bool {
	return u.SubscriptionStatus == SubscriptionStatusActive ||
		u.SubscriptionStatus == SubscriptionStatusTrialing
}

// EffectiveTier returns the plan tier that governs the user's quota.
// Users without an active paid subscription fall back to the free tier.
func (u *User) EffectiveTier() PlanTier {
	if u.SubscriptionTier == "" || u.SubscriptionTier == PlanTierFree {
		return PlanTierFree
	}
	if !u.IsActive() {
		return PlanTierFree
	}
	return u.SubscriptionTier
}

// DisplayName returns the user's name or email if name is empty.
func (u *User) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	return u.Email
}

// Session represents an authenticated session.
//
// Sessions are stored in the database with a hashed token.
// The raw token is only given to the client once (at login).
type Session struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	TokenHash string // SHA-256 hash of the session token
	ExpiresAt time.Time
	CreatedAt time.Time
}

// IsExpired returns true if the session has expired.
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

// RegisterParams contains the validated parameters for user registration.
type RegisterParams struct {
	Email    string
	Password string // Raw password, will be hashed by service
	Name     string
}

// LoginResult contains the result of a successful login.
type LoginResult struct {
	User  *User
	Token string // Raw session token (not hashed) - only returned once
}
