package oauth

import (
	"context"
	"time"

	"pnrdesk-service/pkg/logger"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/gmail/v1"
)

// GmailOAuth builds token sources for the PNR inbox poller. The service only
// ever reads confirmation mail, so the readonly scope is the whole grant;
// obtaining the initial refresh token is a one-off done with cmd/utils.
type GmailOAuth struct {
	config       *oauth2.Config
	refreshToken string
	logger       logger.Logger
}

// NewGmailOAuth creates a new Gmail OAuth handler for the agency mailbox
func NewGmailOAuth(clientID, clientSecret, refreshToken string, logger logger.Logger) *GmailOAuth {
	config := &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Endpoint:     google.Endpoint,
		Scopes:       []string{gmail.GmailReadonlyScope},
	}

	return &GmailOAuth{
		config:       config,
		refreshToken: refreshToken,
		logger:       logger,
	}
}

// GetTokenSource returns a self-refreshing token source for the Gmail API.
// The expiry is set in the past so the stored refresh token is exchanged for
// an access token on first use instead of waiting for a 401.
func (o *GmailOAuth) GetTokenSource(ctx context.Context) oauth2.TokenSource {
	token := &oauth2.Token{
		RefreshToken: o.refreshToken,
		Expiry:       time.Now(),
	}

	o.logger.Debug("Gmail token source initialized for inbox polling")

	return o.config.TokenSource(ctx, token)
}
