package requester

import (
	"fmt"
	"net/http"

	"github.com/brizzai/social-manager/internal/auth/constants"
)

// AuthManager handles request authentication
type AuthManager interface {
	ApplyAuth(req *http.Request) error
}

// BearerAuth sends the access token in the Authorization header
type BearerAuth struct {
	Token string
}

// ApplyAuth adds the Authorization header
func (a BearerAuth) ApplyAuth(req *http.Request) error {
	if a.Token == "" {
		return fmt.Errorf("bearer auth needs a token")
	}
	req.Header.Set(constants.AuthHeaderName, constants.AuthHeaderPrefix+a.Token)
	return nil
}

// QueryTokenAuth sends the access token as a query parameter, the way the
// Instagram Graph API expects it
type QueryTokenAuth struct {
	Param string
	Token string
}

// ApplyAuth adds the token to the query string
func (a QueryTokenAuth) ApplyAuth(req *http.Request) error {
	if a.Param == "" || a.Token == "" {
		return fmt.Errorf("query token auth needs a parameter name and a token")
	}
	q := req.URL.Query()
	q.Set(a.Param, a.Token)
	req.URL.RawQuery = q.Encode()
	return nil
}

// NewAccessTokenAuth picks the placement: a query parameter when one is
// named, the Authorization header otherwise
func NewAccessTokenAuth(queryParam, token string) AuthManager {
	if queryParam != "" {
		return QueryTokenAuth{Param: queryParam, Token: token}
	}
	return BearerAuth{Token: token}
}
