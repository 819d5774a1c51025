package handlers

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"
	"github.com/google/uuid"

	"kasuwa_back_end/internal/cache"
	"kasuwa_back_end/internal/checkout"
	"kasuwa_back_end/internal/config"
	"kasuwa_back_end/internal/database"
	"kasuwa_back_end/internal/models"
	"kasuwa_back_end/internal/utils"
)

const refreshTokenTTL = 7 * 24 * time.Hour

// Register crée un compte local (email + mot de passe).
func Register(c *gin.Context) {
	var req struct {
		Name     string `json:"name" binding:"required,min=2"`
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required,min=8"`
		Phone    string `json:"phone"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, checkout.E(checkout.KindValidation, "Invalid registration payload"))
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))

	// Unicité email via la table de lookup
	var existingID string
	if err := database.GetPreparedGetUserByEmail().Bind(email).Scan(&existingID); err == nil {
		utils.RespondError(c, checkout.E(checkout.KindConflict, "An account with this email already exists"))
		return
	} else if err != gocql.ErrNotFound {
		log.Println("❌ Erreur lookup email:", err)
		utils.RespondInternal(c, "Could not create account")
		return
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		log.Println("❌ Erreur hash mot de passe:", err)
		utils.RespondInternal(c, "Could not create account")
		return
	}

	now := time.Now()
	user := models.User{
		ID:       uuid.NewString(),
		Name:     req.Name,
		Email:    email,
		Password: hash,
		Role:     "user",
		Provider: "local",
		Phone:    req.Phone,
	}

	if err := database.GetPreparedInsertUser().Bind(
		user.ID, user.Email, user.Password, user.Name, user.Role,
		user.Provider, user.ProviderID, user.Phone, user.IsVerified, now, now,
	).Exec(); err != nil {
		log.Println("❌ Erreur insertion user:", err)
		utils.RespondInternal(c, "Could not create account")
		return
	}
	if err := database.GetPreparedInsertUserByEmail().Bind(user.Email, user.ID).Exec(); err != nil {
		log.Println("❌ Erreur insertion users_by_email:", err)
		utils.RespondInternal(c, "Could not create account")
		return
	}

	utils.LogAction(c, utils.ACTION_USER_CREATE, utils.RESOURCE_USER, user.ID, nil, gin.H{"email": user.Email})

	tokens, err := issueTokens(c.Request.Context(), user)
	if err != nil {
		utils.RespondInternal(c, "Account created but token generation failed, please log in")
		return
	}

	log.Println("✅ Compte créé :", user.Email)
	utils.RespondOK(c, http.StatusCreated, "Account created", gin.H{
		"user":   user,
		"tokens": tokens,
	})
}

// Login authentifie un compte local et émet la paire JWT + refresh.
func Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, checkout.E(checkout.KindValidation, "Email and password are required"))
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))

	user, err := findUserByEmail(email)
	if err != nil {
		utils.LogFailedAction(c, utils.ACTION_LOGIN_FAILED, utils.RESOURCE_AUTH, email, "unknown email")
		utils.RespondError(c, checkout.E(checkout.KindUnauthorized, "Invalid email or password"))
		return
	}

	if !utils.VerifyPassword(req.Password, user.Password) {
		utils.LogFailedAction(c, utils.ACTION_LOGIN_FAILED, utils.RESOURCE_AUTH, user.ID, "bad password")
		utils.RespondError(c, checkout.E(checkout.KindUnauthorized, "Invalid email or password"))
		return
	}

	tokens, err := issueTokens(c.Request.Context(), *user)
	if err != nil {
		utils.RespondInternal(c, "Could not generate session tokens")
		return
	}

	utils.LogAction(c, utils.ACTION_LOGIN_SUCCESS, utils.RESOURCE_AUTH, user.ID, nil, nil)
	log.Println("✅ Connexion :", user.Email)

	utils.RespondOK(c, http.StatusOK, "Logged in", gin.H{
		"user":   user,
		"tokens": tokens,
	})
}

// RefreshToken fait tourner la paire de tokens. Le refresh présenté doit
// correspondre à celui stocké dans Redis, sinon la session est révoquée.
func RefreshToken(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, checkout.E(checkout.KindValidation, "refresh_token is required"))
		return
	}

	userID, ok := utils.ParseRefreshToken(req.RefreshToken)
	if !ok {
		utils.RespondError(c, checkout.E(checkout.KindUnauthorized, "Invalid refresh token"))
		return
	}

	valid, err := cache.ValidateRefreshToken(c.Request.Context(), userID, req.RefreshToken)
	if err != nil {
		log.Println("❌ Erreur validation refresh token:", err)
		utils.RespondInternal(c, "Could not validate session")
		return
	}
	if !valid {
		utils.RespondError(c, checkout.E(checkout.KindUnauthorized, "Session expired, please log in again"))
		return
	}

	user, err := findUserByID(userID)
	if err != nil {
		utils.RespondError(c, checkout.E(checkout.KindUnauthorized, "Account no longer exists"))
		return
	}

	tokens, err := issueTokens(c.Request.Context(), *user)
	if err != nil {
		utils.RespondInternal(c, "Could not rotate session tokens")
		return
	}

	utils.RespondOK(c, http.StatusOK, "Tokens refreshed", gin.H{"tokens": tokens})
}

// Logout révoque le refresh token courant.
func Logout(c *gin.Context) {
	userID := c.GetString("user_id")

	if err := cache.DeleteRefreshToken(c.Request.Context(), userID); err != nil {
		log.Println("⚠️ Erreur suppression refresh token:", err)
	}

	utils.LogAction(c, utils.ACTION_LOGOUT, utils.RESOURCE_AUTH, userID, nil, nil)
	utils.RespondOK(c, http.StatusOK, "Logged out", nil)
}

// Me renvoie le profil du porteur du token.
func Me(c *gin.Context) {
	user, err := findUserByID(c.GetString("user_id"))
	if err != nil {
		utils.RespondError(c, checkout.E(checkout.KindNotFound, "Account not found"))
		return
	}
	utils.RespondOK(c, http.StatusOK, "Profile", gin.H{"user": user})
}

//
// --- Helpers partagés par l'auth locale et OAuth ---
//

func issueTokens(ctx context.Context, user models.User) (gin.H, error) {
	access, err := utils.GenerateJWT(user)
	if err != nil {
		return nil, err
	}
	refresh, err := utils.GenerateRefreshToken(user)
	if err != nil {
		return nil, err
	}
	if err := cache.StoreRefreshToken(ctx, user.ID, refresh, refreshTokenTTL); err != nil {
		return nil, err
	}
	return gin.H{
		"access_token":  access,
		"refresh_token": refresh,
		"expires_in":    config.GetInt("JWT_EXPIRY_HOURS", 24) * 3600,
	}, nil
}

func findUserByEmail(email string) (*models.User, error) {
	var userID string
	if err := database.GetPreparedGetUserByEmail().Bind(email).Scan(&userID); err != nil {
		return nil, err
	}
	return findUserByID(userID)
}

func findUserByID(userID string) (*models.User, error) {
	user := models.User{ID: userID}
	if err := database.GetPreparedGetUserByID().Bind(userID).Scan(
		&user.Email, &user.Password, &user.Name, &user.Role,
		&user.Provider, &user.ProviderID, &user.Phone, &user.IsVerified,
	); err != nil {
		return nil, err
	}
	return &user, nil
}
