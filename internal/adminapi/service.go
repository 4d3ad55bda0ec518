// Package adminapi provides typed access to the EcomBuddha admin
// endpoints. Every operation is a thin wrapper over the gateway client;
// endpoint-specific behavior lives here, transport behavior never does.
package adminapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/ecombuddha/console-core/internal/gateway"
)

// Caller is the gateway surface the service needs. *gateway.Client
// satisfies it; tests may substitute their own.
type Caller interface {
	Call(ctx context.Context, method, endpoint string, params map[string]string, body interface{}, opts ...gateway.CallOption) (json.RawMessage, error)
}

// Service wraps the admin REST endpoints.
type Service struct {
	gw Caller
}

// NewService creates the admin API service over a gateway client.
func NewService(gw Caller) *Service {
	return &Service{gw: gw}
}

// Login exchanges credentials for the operator's identity record. A 401
// here means the credentials were rejected, not that a session expired,
// so the gateway's forced-logout reaction is suppressed: a failed login
// never touches the session the operator already has.
func (s *Service) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	payload, err := s.gw.Call(ctx, http.MethodPost, "/auth/login", nil, map[string]string{
		"email":    email,
		"password": password,
	}, gateway.WithoutForcedLogout())
	if err != nil {
		return nil, err
	}

	var result LoginResult
	if err := json.Unmarshal(payload, &result); err != nil {
		return nil, fmt.Errorf("unexpected login response: %w", err)
	}
	if result.Email == "" {
		result.Email = email
	}
	return &result, nil
}

// CurrentUser fetches the authenticated user's record.
func (s *Service) CurrentUser(ctx context.Context) (*User, error) {
	return s.fetchUser(ctx, "/auth/user")
}

// Profile fetches the operator's profile.
func (s *Service) Profile(ctx context.Context) (*User, error) {
	return s.fetchUser(ctx, "/auth/profile")
}

func (s *Service) fetchUser(ctx context.Context, endpoint string) (*User, error) {
	payload, err := s.gw.Call(ctx, http.MethodGet, endpoint, nil, nil)
	if err != nil {
		return nil, err
	}

	var envelope struct {
		User *User `json:"user"`
	}
	if err := json.Unmarshal(payload, &envelope); err != nil || envelope.User == nil {
		return nil, fmt.Errorf("unexpected user response from %s", endpoint)
	}
	return envelope.User, nil
}

// CreditRequests lists credit requests, optionally filtered by status
// ("pending", "approved", "rejected"). Empty status means all.
func (s *Service) CreditRequests(ctx context.Context, status string) ([]CreditRequest, error) {
	var params map[string]string
	if status != "" && status != "all" {
		params = map[string]string{"status": status}
	}

	payload, err := s.gw.Call(ctx, http.MethodGet, "/auth/credit_requests", params, nil)
	if err != nil {
		return nil, err
	}

	var envelope struct {
		CreditRequests []CreditRequest `json:"credit_requests"`
	}
	if err := json.Unmarshal(payload, &envelope); err != nil {
		return nil, fmt.Errorf("unexpected credit_requests response: %w", err)
	}

	requests := envelope.CreditRequests
	for i := range requests {
		normalizeCreditRequest(&requests[i])
	}
	return requests, nil
}

// ApproveCreditRequest approves a pending request, with optional notes.
func (s *Service) ApproveCreditRequest(ctx context.Context, requestID, notes string) (*Ack, error) {
	return s.process(ctx, requestID, "approve", notes)
}

// RejectCreditRequest rejects a pending request, with optional notes.
func (s *Service) RejectCreditRequest(ctx context.Context, requestID, notes string) (*Ack, error) {
	return s.process(ctx, requestID, "reject", notes)
}

func (s *Service) process(ctx context.Context, requestID, action, notes string) (*Ack, error) {
	endpoint := fmt.Sprintf("/auth/credit_requests/%s/%s", requestID, action)
	payload, err := s.gw.Call(ctx, http.MethodPost, endpoint, nil, map[string]string{"notes": notes})
	if err != nil {
		return nil, err
	}

	var ack Ack
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &ack); err != nil {
			return nil, fmt.Errorf("unexpected %s response: %w", action, err)
		}
	}
	return &ack, nil
}

// Statistics fetches the admin dashboard counters.
func (s *Service) Statistics(ctx context.Context) (*Statistics, error) {
	payload, err := s.gw.Call(ctx, http.MethodGet, "/auth/statistics", nil, nil)
	if err != nil {
		return nil, err
	}

	var stats Statistics
	if err := json.Unmarshal(payload, &stats); err != nil {
		return nil, fmt.Errorf("unexpected statistics response: %w", err)
	}
	return &stats, nil
}

// Feedback lists all end-user feedback.
func (s *Service) Feedback(ctx context.Context) ([]Feedback, error) {
	payload, err := s.gw.Call(ctx, http.MethodGet, "/auth/feedback", nil, nil)
	if err != nil {
		return nil, err
	}

	var envelope struct {
		Feedback []Feedback `json:"feedback"`
	}
	if err := json.Unmarshal(payload, &envelope); err != nil {
		return nil, fmt.Errorf("unexpected feedback response: %w", err)
	}
	return envelope.Feedback, nil
}

// Referrals lists all referral records.
func (s *Service) Referrals(ctx context.Context) ([]Referral, error) {
	payload, err := s.gw.Call(ctx, http.MethodGet, "/auth/referrals", nil, nil)
	if err != nil {
		return nil, err
	}

	var envelope struct {
		Referrals []Referral `json:"referrals"`
	}
	if err := json.Unmarshal(payload, &envelope); err != nil {
		return nil, fmt.Errorf("unexpected referrals response: %w", err)
	}
	return envelope.Referrals, nil
}

// Health checks the backend through the gateway (deduplicated like any
// other GET). For the retrying startup probe see gateway.Probe.
func (s *Service) Health(ctx context.Context) error {
	_, err := s.gw.Call(ctx, http.MethodGet, "/health", nil, nil)
	return err
}

// normalizeCreditRequest fills the defaults the backend sometimes omits,
// so table rows never render with holes.
func normalizeCreditRequest(r *CreditRequest) {
	if r.Username == "" {
		r.Username = "Unknown User"
	}
	if r.Status == "" {
		r.Status = "unknown"
	}
}
