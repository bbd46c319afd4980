package oauth

import (
	"golang.org/x/oauth2"

	"github.com/garrettladley/whoopsync/internal/config"
)

var scopes = []string{
	"offline",
	"read:recovery",
	"read:cycles",
	"read:sleep",
	"read:workout",
	"read:profile",
}

// NewConfig builds the OAuth client. Credentials travel in the form body
// because WHOOP rejects HTTP basic auth on its token endpoint.
func NewConfig(whoop config.Whoop) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     whoop.ClientID,
		ClientSecret: whoop.ClientSecret,
		RedirectURL:  whoop.RedirectURI,
		Scopes:       scopes,
		Endpoint: oauth2.Endpoint{
			AuthURL:   whoop.AuthURL,
			TokenURL:  whoop.TokenURL,
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}
}
