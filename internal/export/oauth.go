// Package export sends a finished marketing kit to the artisan's own Google
// Drive. Access is scoped to files the app creates; the artisan signs in with
// Google and can revoke at any time.
package export

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	drive "google.golang.org/api/drive/v3"
	oauthapi "google.golang.org/api/oauth2/v2"
	"google.golang.org/api/option"
)

// Profile is the minimal identity shown in the UI after sign-in.
type Profile struct {
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture,omitempty"`
}

// Authenticator wraps the Google OAuth authorization-code flow.
type Authenticator struct {
	cfg *oauth2.Config
}

// NewAuthenticator builds the flow for the configured client. The Drive scope
// is limited to app-created files.
func NewAuthenticator(clientID, clientSecret, redirectURL string) (*Authenticator, error) {
	if clientID == "" || clientSecret == "" {
		return nil, errors.New("export: oauth client credentials are required")
	}
	return &Authenticator{cfg: &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURL,
		Scopes: []string{
			drive.DriveFileScope,
			oauthapi.UserinfoEmailScope,
			oauthapi.UserinfoProfileScope,
			oauthapi.OpenIDScope,
		},
		Endpoint: google.Endpoint,
	}}, nil
}

// AuthURL returns the consent page URL carrying the given anti-forgery state.
// Offline access is requested so a refresh token comes back.
func (a *Authenticator) AuthURL(state string) string {
	return a.cfg.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.SetAuthURLParam("prompt", "consent"))
}

// Exchange trades the callback code for a token.
func (a *Authenticator) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	if code == "" {
		return nil, errors.New("export: authorization code is required")
	}
	tok, err := a.cfg.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("export: code exchange: %w", err)
	}
	return tok, nil
}

// TokenSource returns a source that refreshes the token in place as needed.
func (a *Authenticator) TokenSource(ctx context.Context, tok *oauth2.Token) oauth2.TokenSource {
	return a.cfg.TokenSource(ctx, tok)
}

// Client returns an HTTP client that authenticates and refreshes with tok.
func (a *Authenticator) Client(ctx context.Context, tok *oauth2.Token) *http.Client {
	return a.cfg.Client(ctx, tok)
}

// Profile fetches the signed-in user's identity.
func (a *Authenticator) Profile(ctx context.Context, tok *oauth2.Token) (Profile, error) {
	svc, err := oauthapi.NewService(ctx, option.WithHTTPClient(a.Client(ctx, tok)))
	if err != nil {
		return Profile{}, fmt.Errorf("export: userinfo service: %w", err)
	}
	info, err := svc.Userinfo.Get().Context(ctx).Do()
	if err != nil {
		return Profile{}, fmt.Errorf("export: fetch userinfo: %w", err)
	}
	return Profile{Email: info.Email, Name: info.Name, Picture: info.Picture}, nil
}
