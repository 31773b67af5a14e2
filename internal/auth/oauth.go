package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"
)

const githubAPI = "https://api.github.com"

// GitHubUser is the slice of the GitHub profile used to find or create the
// local account. Accounts are linked by email, so Email is always filled:
// when the public profile hides it, the primary verified address from
// /user/emails is used instead.
type GitHubUser struct {
	ID        int64  `json:"id"`
	Login     string `json:"login"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	AvatarURL string `json:"avatar_url"`
}

// GitHubProvider runs the OAuth 2.0 authorization-code flow against GitHub.
type GitHubProvider struct {
	config  *oauth2.Config
	apiBase string
}

func NewGitHubProvider(clientID, clientSecret, callbackURL string) *GitHubProvider {
	return &GitHubProvider{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  callbackURL,
			Scopes:       []string{"read:user", "user:email"},
			Endpoint:     github.Endpoint,
		},
		apiBase: githubAPI,
	}
}

// AuthURL is where the browser is sent to approve access. state is echoed
// back on the callback for CSRF protection.
func (p *GitHubProvider) AuthURL(state string) string {
	return p.config.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

// Exchange trades the callback code for the user's GitHub profile.
func (p *GitHubProvider) Exchange(ctx context.Context, code string) (*GitHubUser, error) {
	oauthToken, err := p.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("auth: exchanging OAuth code: %w", err)
	}

	// Client adds "Authorization: Bearer <token>" to every request.
	client := p.config.Client(ctx, oauthToken)
	return p.fetchUser(client)
}

func (p *GitHubProvider) fetchUser(client *http.Client) (*GitHubUser, error) {
	var ghUser GitHubUser
	if err := getJSON(client, p.apiBase+"/user", &ghUser); err != nil {
		return nil, err
	}
	if ghUser.ID == 0 {
		return nil, fmt.Errorf("auth: GitHub returned an invalid user (ID = 0)")
	}

	if ghUser.Email == "" {
		var emails []struct {
			Email    string `json:"email"`
			Primary  bool   `json:"primary"`
			Verified bool   `json:"verified"`
		}
		if err := getJSON(client, p.apiBase+"/user/emails", &emails); err != nil {
			return nil, err
		}
		for _, e := range emails {
			if e.Primary && e.Verified {
				ghUser.Email = e.Email
				break
			}
		}
	}
	if ghUser.Email == "" {
		return nil, fmt.Errorf("auth: GitHub account %s has no verified email", ghUser.Login)
	}
	if ghUser.Name == "" {
		ghUser.Name = ghUser.Login
	}

	return &ghUser, nil
}

func getJSON(client *http.Client, url string, v any) error {
	resp, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("auth: calling %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("auth: %s returned status %d", url, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("auth: decoding %s: %w", url, err)
	}
	return nil
}
