package auth

import (
	"context"
	"encoding/json"
	"fmt"

	"golang.org/x/oauth2"
)

// OAuthProvider enveloppe une config oauth2 pour le flux mobile : le client
// envoie le code d'autorisation, le serveur fait l'échange.
type OAuthProvider struct {
	Name        string
	Config      *oauth2.Config
	UserInfoURL string
}

func (p *OAuthProvider) GetAuthURL(state string) string {
	return p.Config.AuthCodeURL(state, oauth2.AccessTypeOffline)
}

func (p *OAuthProvider) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	return p.Config.Exchange(ctx, code)
}

// UserInfo est le profil minimal commun aux providers.
type UserInfo struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// FetchUserInfo interroge l'endpoint userinfo du provider avec le token
// fraîchement échangé.
func (p *OAuthProvider) FetchUserInfo(ctx context.Context, token *oauth2.Token) (*UserInfo, error) {
	client := p.Config.Client(ctx, token)

	resp, err := client.Get(p.UserInfoURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		return nil, fmt.Errorf("userinfo %s: statut %d", p.Name, resp.StatusCode)
	}

	var info UserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, err
	}
	if info.Email == "" {
		return nil, fmt.Errorf("userinfo %s: email manquant", p.Name)
	}
	return &info, nil
}
