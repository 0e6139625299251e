// Package google implements the remote calendar and spreadsheet contracts on
// top of the Google Workspace APIs, plus the OAuth flow that authorizes them.
package google

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/oauth2"
	googleoauth "golang.org/x/oauth2/google"
	calendarapi "google.golang.org/api/calendar/v3"
	driveapi "google.golang.org/api/drive/v3"
	sheetsapi "google.golang.org/api/sheets/v4"
)

// SignInTimeout bounds how long an interactive sign-in waits for the token
// exchange before reporting soft success. The session is marked usable and
// the token lands whenever the exchange completes.
const SignInTimeout = 10 * time.Second

// Scopes requested at sign-in. DriveFile limits discovery to files the app
// itself created.
var Scopes = []string{
	calendarapi.CalendarScope,
	sheetsapi.SpreadsheetsScope,
	driveapi.DriveFileScope,
}

// OAuth wraps the authorization-code flow against Google's endpoints.
type OAuth struct {
	config *oauth2.Config
}

// NewOAuth creates the OAuth helper. redirectURL must match one registered on
// the Google Cloud client.
func NewOAuth(clientID, clientSecret, redirectURL string) *OAuth {
	return &OAuth{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Scopes:       Scopes,
			Endpoint:     googleoauth.Endpoint,
		},
	}
}

// AuthCodeURL returns the consent URL. Offline access is requested so a
// refresh token arrives and sessions survive access-token expiry.
func (o *OAuth) AuthCodeURL(state string) string {
	return o.config.AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("prompt", "consent"),
	)
}

// Exchange trades an authorization code for tokens, bounded by SignInTimeout.
func (o *OAuth) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	ctx, cancel := context.WithTimeout(ctx, SignInTimeout)
	defer cancel()

	token, err := o.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange authorization code: %w", err)
	}
	return token, nil
}

// TokenSource returns a refreshing token source seeded from stored session
// tokens.
func (o *OAuth) TokenSource(ctx context.Context, token *oauth2.Token) oauth2.TokenSource {
	return o.config.TokenSource(ctx, token)
}
