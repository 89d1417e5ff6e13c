package dashboard

import "strings"

const maskedKeyCredentialSlice = 32

// MaskedKey derives the display-only API key shown on the dashboard: a fixed
// prefix plus a truncated slice of the session credential. It is cosmetic;
// the real key for the /v1 surface is the full session credential.
func MaskedKey(credential string) string {
	credential = strings.TrimSpace(credential)
	if credential == "" {
		return ""
	}
	if len(credential) > maskedKeyCredentialSlice {
		credential = credential[:maskedKeyCredentialSlice]
	}
	return "sk-" + credential
}

// BaseEndpoint is the externally documented OpenAI-compatible endpoint for
// the pool: the server origin plus the versioned path suffix.
func BaseEndpoint(serverBase string) string {
	return strings.TrimSuffix(strings.TrimSpace(serverBase), "/") + "/v1"
}
