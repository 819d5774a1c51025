package handlers

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"
	"github.com/google/uuid"
	"github.com/markbates/goth/gothic"

	"kasuwa_back_end/internal/checkout"
	"kasuwa_back_end/internal/config"
	"kasuwa_back_end/internal/database"
	"kasuwa_back_end/internal/models"
	"kasuwa_back_end/internal/utils"
)

type ctxKey string

const ProviderKey ctxKey = "provider"

// BeginAuth démarre le flux OAuth web (redirection vers le provider).
func BeginAuth(c *gin.Context) {
	provider := c.Param("provider")
	if provider == "" {
		utils.RespondError(c, checkout.E(checkout.KindValidation, "No provider specified"))
		return
	}

	c.Request = c.Request.WithContext(
		context.WithValue(c.Request.Context(), ProviderKey, provider),
	)

	gothic.BeginAuthHandler(c.Writer, c.Request)
}

// CallbackAuth termine le flux web : upsert du compte puis redirection vers
// le front avec les tokens en fragment.
func CallbackAuth(c *gin.Context) {
	provider := c.Param("provider")
	if provider == "" {
		utils.RespondError(c, checkout.E(checkout.KindValidation, "No provider specified"))
		return
	}

	c.Request = c.Request.WithContext(
		context.WithValue(c.Request.Context(), ProviderKey, provider),
	)

	gothUser, err := gothic.CompleteUserAuth(c.Writer, c.Request)
	if err != nil {
		log.Println("❌ Erreur callback OAuth:", err)
		utils.RespondError(c, checkout.E(checkout.KindUnauthorized, "Authentication failed"))
		return
	}

	user, err := upsertOAuthUser(gothUser.Email, gothUser.Name, provider, gothUser.UserID)
	if err != nil {
		log.Println("❌ Erreur upsert OAuth user:", err)
		utils.RespondInternal(c, "Could not complete sign in")
		return
	}

	tokens, err := issueTokens(c.Request.Context(), *user)
	if err != nil {
		utils.RespondInternal(c, "Could not generate session tokens")
		return
	}

	utils.LogAction(c, utils.ACTION_LOGIN_SUCCESS, utils.RESOURCE_AUTH, user.ID, nil, gin.H{"provider": provider})

	redirect := fmt.Sprintf("%s/auth/callback#access_token=%s&refresh_token=%s",
		config.FrontendURL(), tokens["access_token"], tokens["refresh_token"])
	c.Redirect(http.StatusTemporaryRedirect, redirect)
}

// MobileExchange : flux mobile, le client natif envoie le code
// d'autorisation et reçoit la paire de tokens en JSON.
func MobileExchange(c *gin.Context) {
	provider := c.Param("provider")

	p, ok := Providers[provider]
	if !ok {
		utils.RespondError(c, checkout.Ef(checkout.KindValidation, "Unknown provider: %s", provider))
		return
	}

	var req struct {
		Code string `json:"code" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, checkout.E(checkout.KindValidation, "code is required"))
		return
	}

	token, err := p.Exchange(c.Request.Context(), req.Code)
	if err != nil {
		log.Println("❌ Échec échange code OAuth:", err)
		utils.RespondError(c, checkout.E(checkout.KindUnauthorized, "Authorization code rejected"))
		return
	}

	info, err := p.FetchUserInfo(c.Request.Context(), token)
	if err != nil {
		log.Println("❌ Échec userinfo OAuth:", err)
		utils.RespondError(c, checkout.E(checkout.KindUpstream, "Could not fetch profile from provider"))
		return
	}

	user, err := upsertOAuthUser(info.Email, info.Name, provider, info.ID)
	if err != nil {
		log.Println("❌ Erreur upsert OAuth user:", err)
		utils.RespondInternal(c, "Could not complete sign in")
		return
	}

	tokens, err := issueTokens(c.Request.Context(), *user)
	if err != nil {
		utils.RespondInternal(c, "Could not generate session tokens")
		return
	}

	utils.LogAction(c, utils.ACTION_LOGIN_SUCCESS, utils.RESOURCE_AUTH, user.ID, nil, gin.H{"provider": provider})
	utils.RespondOK(c, http.StatusOK, "Logged in", gin.H{
		"user":   user,
		"tokens": tokens,
	})
}

// upsertOAuthUser retrouve le compte par email ou le crée. Un compte OAuth
// est vérifié d'office, l'email appartient au provider.
func upsertOAuthUser(email, name, provider, providerID string) (*models.User, error) {
	if existing, err := findUserByEmail(email); err == nil {
		return existing, nil
	} else if err != gocql.ErrNotFound {
		return nil, err
	}

	now := time.Now()
	user := models.User{
		ID:         uuid.NewString(),
		Name:       name,
		Email:      email,
		Role:       "user",
		Provider:   provider,
		ProviderID: providerID,
		IsVerified: true,
	}

	if err := database.GetPreparedInsertUser().Bind(
		user.ID, user.Email, user.Password, user.Name, user.Role,
		user.Provider, user.ProviderID, user.Phone, user.IsVerified, now, now,
	).Exec(); err != nil {
		return nil, err
	}
	if err := database.GetPreparedInsertUserByEmail().Bind(user.Email, user.ID).Exec(); err != nil {
		return nil, err
	}

	log.Println("✅ Compte OAuth créé :", user.Email, "via", provider)
	return &user, nil
}
