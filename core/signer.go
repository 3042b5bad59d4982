package core

import (
	"context"
	"fmt"
	"net/http"
	"strings"
)

const APIKeyHeader = "X-API-KEY"

// APIKeySigner injects the NEO API key header.
type APIKeySigner struct{}

func (APIKeySigner) Sign(_ context.Context, req *http.Request, cred Credentials) error {
	if req == nil {
		return fmt.Errorf("core: http request is required")
	}
	key := strings.TrimSpace(cred.APIKey)
	if key == "" {
		return fmt.Errorf("core: api key is required for request signing")
	}
	req.Header.Set(APIKeyHeader, key)
	return nil
}
