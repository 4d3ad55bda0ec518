package adminapi

// User is the operator/end-user record returned by /auth/user and
// /auth/profile.
type User struct {
	UUID     string  `json:"uuid"`
	Username string  `json:"username"`
	Email    string  `json:"email"`
	Role     string  `json:"role"`
	Credits  float64 `json:"credits"`
}

// LoginResult is the backend's answer to POST /auth/login.
type LoginResult struct {
	UUID  string `json:"uuid"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// CreditRequest is one row of the credit-approval table. Timestamps stay
// as wire strings; rendering is the UI layer's concern.
type CreditRequest struct {
	UserUUID        string  `json:"user_uuid"`
	Username        string  `json:"username"`
	CurrentCredit   float64 `json:"current_credit"`
	RequestedCredit float64 `json:"requested_credit"`
	Status          string  `json:"status"`
	RequestedAt     string  `json:"requested_at"`
	ProcessedAt     string  `json:"processed_at"`
	ProcessedBy     string  `json:"processed_by"`
	Notes           string  `json:"notes"`
}

// Statistics aggregates the admin dashboard counters.
type Statistics struct {
	TotalUsers       int `json:"total_users"`
	TotalRequests    int `json:"total_requests"`
	PendingRequests  int `json:"pending_requests"`
	ApprovedRequests int `json:"approved_requests"`
	RejectedRequests int `json:"rejected_requests"`
	TotalFeedback    int `json:"total_feedback"`
	TotalReferrals   int `json:"total_referrals"`
}

// Feedback is one end-user feedback entry.
type Feedback struct {
	UserUUID  string `json:"user_uuid"`
	Username  string `json:"username"`
	Message   string `json:"message"`
	Rating    int    `json:"rating"`
	CreatedAt string `json:"created_at"`
}

// Referral is one referral record.
type Referral struct {
	ReferrerUUID  string `json:"referrer_uuid"`
	ReferrerName  string `json:"referrer_name"`
	ReferredEmail string `json:"referred_email"`
	Status        string `json:"status"`
	CreatedAt     string `json:"created_at"`
}

// Ack is the backend's acknowledgement of a processed write.
type Ack struct {
	Message string `json:"message"`
	Status  string `json:"status"`
}
