package gateway

// Token is a stored provider credential as reported by the backend. The
// active flag and capability flags are backend-computed; is_public is the
// only field the client may change after creation.
type Token struct {
	ID             int64  `json:"id"`
	Email          string `json:"email,omitempty"`
	IsActive       bool   `json:"is_active"`
	IsPublic       bool   `json:"is_public"`
	SupportsClaude bool   `json:"supports_claude"`
	SupportsGemini bool   `json:"supports_gemini"`
	SuccessCount   int64  `json:"success_count"`
	FailureCount   int64  `json:"failure_count"`
	LastUsed       string `json:"last_used,omitempty"`
	LastError      string `json:"last_error,omitempty"`
	CreatedAt      string `json:"created_at,omitempty"`
}

// PoolTokenStats counts donated tokens in the public pool.
type PoolTokenStats struct {
	Total  int64 `json:"total"`
	Valid  int64 `json:"valid"`
	Claude int64 `json:"claude"`
	Gemini int64 `json:"gemini"`
}

type PoolStats struct {
	Users         int64          `json:"users"`
	Tokens        PoolTokenStats `json:"tokens"`
	TodayRequests int64          `json:"today_requests"`
	TotalRequests int64          `json:"total_requests"`
}

type Announcement struct {
	Enabled bool   `json:"enabled"`
	Title   string `json:"title,omitempty"`
	Content string `json:"content,omitempty"`
}

// UploadResult is the response to a direct token upload; the capability
// flags tell the user what the verified token can serve.
type UploadResult struct {
	Message        string   `json:"message"`
	SupportsClaude bool     `json:"supports_claude"`
	SupportsGemini bool     `json:"supports_gemini"`
	Models         []string `json:"models,omitempty"`
}

// ExchangeResult is the response to an OAuth callback exchange or a manual
// token registration.
type ExchangeResult struct {
	Message        string `json:"message"`
	Email          string `json:"email,omitempty"`
	SupportsClaude bool   `json:"supports_claude"`
	SupportsGemini bool   `json:"supports_gemini"`
}

// ManualTokenInput carries a hand-entered access/refresh token pair.
type ManualTokenInput struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ProjectID    string `json:"project_id,omitempty"`
	ExpiresIn    int64  `json:"expires_in"`
	IsPublic     bool   `json:"is_public"`
}
