// This file implements billing/subscription management handlers backed by Stripe.
//
// Routes handled:
//   - GET  /api/billing/subscription -> GetSubscription
//   - POST /api/billing/checkout     -> CreateCheckout
//   - POST /api/billing/portal       -> OpenPortal
//   - POST /api/billing/cancel       -> CancelSubscription
//   - POST /api/billing/reactivate   -> ReactivateSubscription
package handler

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/ValayAI/pm-pathfinder/internal/auth"
	"github.com/ValayAI/pm-pathfinder/internal/billing"
	"github.com/ValayAI/pm-pathfinder/internal/domain"
	"github.com/ValayAI/pm-pathfinder/internal/metrics"
	"github.com/ValayAI/pm-pathfinder/internal/service"
)

// BillingHandler handles billing and subscription management HTTP requests.
type BillingHandler struct {
	billing     billing.Service
	userService service.UserService
	baseURL     string
	logger      *slog.Logger
}

// NewBillingHandler creates a new BillingHandler.
// billingService may be nil when Stripe is not configured (development mode).
func NewBillingHandler(billingService billing.Service, userService service.UserService, baseURL string, logger *slog.Logger) *BillingHandler {
	return &BillingHandler{
		billing:     billingService,
		userService: userService,
		baseURL:     baseURL,
		logger:      logger,
	}
}

// subscriptionResponse is the JSON view of the user's current plan.
type subscriptionResponse struct {
	Tier        string `json:"tier"`
	Status      string `json:"status"`
	PeriodEnd   string `json:"period_end,omitempty"`
	CancelAtEnd bool   `json:"cancel_at_end"`
}

// GetSubscription returns the current subscription info, enriched with live
// Stripe details when available.
func (h *BillingHandler) GetSubscription(w http.ResponseWriter, r *http.Request) {
	user := auth.GetUser(r.Context())
	if user == nil {
		UnauthorizedResponse(w, r, h.logger)
		return
	}

	resp := subscriptionResponse{
		Tier:   string(user.EffectiveTier()),
		Status: string(user.SubscriptionStatus),
	}

	if h.billing != nil && user.SubscriptionID != "" {
		sub, err := h.billing.GetSubscription(user.SubscriptionID)
		if err != nil {
			h.logger.Warn("failed to fetch stripe subscription", "error", err, "subscription_id", user.SubscriptionID)
		} else {
			resp.PeriodEnd = time.Unix(sub.CurrentPeriodEnd, 0).Format(time.RFC3339)
			resp.CancelAtEnd = sub.CancelAtPeriodEnd
			resp.Status = string(sub.Status)
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

// CreateCheckout creates a Stripe Checkout session and returns its URL.
func (h *BillingHandler) CreateCheckout(w http.ResponseWriter, r *http.Request) {
	const op = "BillingHandler.CreateCheckout"

	user := auth.GetUser(r.Context())
	if user == nil {
		UnauthorizedResponse(w, r, h.logger)
		return
	}

	if h.billing == nil {
		h.logger.Warn("checkout attempted but Stripe is not configured")
		ErrorResponse(w, r, h.logger, domain.Errorf(domain.EUNAVAILABLE, op, "Billing is not configured"))
		return
	}

	var req struct {
		PriceID string `json:"price_id"`
	}
	if err := decodeJSON(r, &req); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	if req.PriceID == "" {
		ErrorResponse(w, r, h.logger, domain.Invalid(op, "price_id is required"))
		return
	}
	if h.billing.TierForPriceID(req.PriceID) == "" {
		ErrorResponse(w, r, h.logger, domain.Invalid(op, "Unknown price_id"))
		return
	}

	// Ensure user has a Stripe customer
	customerID := user.StripeCustomerID
	if customerID == "" {
		var err error
		customerID, err = h.billing.CreateCustomer(user.Email, user.Name)
		if err != nil {
			h.logger.Error("failed to create stripe customer", "error", err, "user_id", user.ID)
			InternalErrorResponse(w, r, h.logger, err)
			return
		}
		if err := h.userService.UpdateStripeCustomer(r.Context(), user.ID, customerID); err != nil {
			h.logger.Error("failed to save stripe customer ID", "error", err, "user_id", user.ID)
		}
	}

	successURL := fmt.Sprintf("%s/billing/success?session_id={CHECKOUT_SESSION_ID}", h.baseURL)
	cancelURL := fmt.Sprintf("%s/pricing", h.baseURL)

	checkoutURL, err := h.billing.CreateCheckoutSession(customerID, req.PriceID, successURL, cancelURL)
	if err != nil {
		h.logger.Error("failed to create checkout session", "error", err, "user_id", user.ID)
		InternalErrorResponse(w, r, h.logger, err)
		return
	}

	metrics.CheckoutSessionsCreated.Inc()
	writeJSON(w, http.StatusOK, map[string]string{"url": checkoutURL})
}

// OpenPortal creates a Stripe Customer Portal session and returns its URL.
func (h *BillingHandler) OpenPortal(w http.ResponseWriter, r *http.Request) {
	const op = "BillingHandler.OpenPortal"

	user := auth.GetUser(r.Context())
	if user == nil {
		UnauthorizedResponse(w, r, h.logger)
		return
	}

	if h.billing == nil {
		h.logger.Warn("portal requested but Stripe is not configured")
		ErrorResponse(w, r, h.logger, domain.Errorf(domain.EUNAVAILABLE, op, "Billing is not configured"))
		return
	}

	if user.StripeCustomerID == "" {
		ErrorResponse(w, r, h.logger, domain.Invalid(op, "No billing account for this user"))
		return
	}

	returnURL := fmt.Sprintf("%s/settings", h.baseURL)
	portalURL, err := h.billing.CreatePortalSession(user.StripeCustomerID, returnURL)
	if err != nil {
		h.logger.Error("failed to create portal session", "error", err, "user_id", user.ID)
		InternalErrorResponse(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"url": portalURL})
}

// CancelSubscription sets the subscription to cancel at period end.
func (h *BillingHandler) CancelSubscription(w http.ResponseWriter, r *http.Request) {
	const op = "BillingHandler.CancelSubscription"

	user := auth.GetUser(r.Context())
	if user == nil {
		UnauthorizedResponse(w, r, h.logger)
		return
	}

	if h.billing == nil {
		ErrorResponse(w, r, h.logger, domain.Errorf(domain.EUNAVAILABLE, op, "Billing is not configured"))
		return
	}

	if user.SubscriptionID == "" {
		ErrorResponse(w, r, h.logger, domain.Invalid(op, "No active subscription to cancel"))
		return
	}

	if err := h.billing.CancelSubscription(user.SubscriptionID); err != nil {
		h.logger.Error("failed to cancel subscription", "error", err, "user_id", user.ID)
		InternalErrorResponse(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "cancel_scheduled"})
}

// ReactivateSubscription removes the cancel-at-period-end flag.
func (h *BillingHandler) ReactivateSubscription(w http.ResponseWriter, r *http.Request) {
	const op = "BillingHandler.ReactivateSubscription"

	user := auth.GetUser(r.Context())
	if user == nil {
		UnauthorizedResponse(w, r, h.logger)
		return
	}

	if h.billing == nil {
		ErrorResponse(w, r, h.logger, domain.Errorf(domain.EUNAVAILABLE, op, "Billing is not configured"))
		return
	}

	if user.SubscriptionID == "" {
		ErrorResponse(w, r, h.logger, domain.Invalid(op, "No subscription to reactivate"))
		return
	}

	if err := h.billing.ReactivateSubscription(user.SubscriptionID); err != nil {
		h.logger.Error("failed to reactivate subscription", "error", err, "user_id", user.ID)
		InternalErrorResponse(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "reactivated"})
}
