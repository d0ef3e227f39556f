package handlers

import (
	"encoding/json"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/google/uuid"

	"github.com/faqdesk/supportbot/internal/core"
	"github.com/faqdesk/supportbot/internal/models"
)

type AuthHandler struct {
	dbclient core.DbClient
}

func NewAuthHandler(dbclient core.DbClient) *AuthHandler {
	return &AuthHandler{dbclient: dbclient}
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// AdminRegister creates an admin account (no bot scope).
func (h *AuthHandler) AdminRegister(w http.ResponseWriter, r *http.Request) {
	h.register(w, r, nil)
}

// BotRegister creates an end-user account scoped to one bot.
func (h *AuthHandler) BotRegister(w http.ResponseWriter, r *http.Request) {
	botID := chi.URLParam(r, "botID")
	bot, err := h.dbclient.GetBotByID(r.Context(), botID)
	if err != nil {
		http.Error(w, "failed to look up bot", http.StatusInternalServerError)
		return
	}
	if bot == nil {
		http.Error(w, "bot not found", http.StatusNotFound)
		return
	}
	h.register(w, r, &botID)
}

func (h *AuthHandler) register(w http.ResponseWriter, r *http.Request, botID *string) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" || req.Password == "" {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	existing, err := h.dbclient.GetUserByEmailAndBot(r.Context(), req.Email, botID)
	if err != nil {
		http.Error(w, "failed to look up user", http.StatusInternalServerError)
		return
	}
	if existing != nil {
		http.Error(w, "email already registered", http.StatusBadRequest)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		http.Error(w, "failed to hash password", http.StatusInternalServerError)
		return
	}

	user := &models.User{
		ID:           uuid.NewString(),
		Email:        req.Email,
		PasswordHash: string(hash),
		BotID:        botID,
		CreatedAt:    time.Now().UTC(),
	}
	if err := h.dbclient.CreateUser(r.Context(), user); err != nil {
		http.Error(w, "user exists", http.StatusConflict)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(user)
}

// AdminLogin authenticates an admin account.
func (h *AuthHandler) AdminLogin(w http.ResponseWriter, r *http.Request) {
	h.login(w, r, nil)
}

// BotLogin authenticates an end-user against one bot.
func (h *AuthHandler) BotLogin(w http.ResponseWriter, r *http.Request) {
	botID := chi.URLParam(r, "botID")
	h.login(w, r, &botID)
}

func (h *AuthHandler) login(w http.ResponseWriter, r *http.Request, botID *string) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	user, err := h.dbclient.GetUserByEmailAndBot(r.Context(), req.Email, botID)
	if err != nil {
		http.Error(w, "failed to look up user", http.StatusInternalServerError)
		return
	}
	if user == nil || bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		http.Error(w, "incorrect email or password", http.StatusUnauthorized)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(tokenResponse{
		AccessToken: generateJWT(user.ID, user.BotID),
		TokenType:   "bearer",
	})
}

// generateJWT creates a signed token with the user ID claim, plus the bot ID
// for end-user tokens.
func generateJWT(userID string, botID *string) string {
	secret := os.Getenv("JWT_SECRET")
	claims := jwt.MapClaims{
		"user_id": userID,
		"exp":     time.Now().Add(24 * time.Hour).Unix(),
	}
	if botID != nil {
		claims["bot_id"] = *botID
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	token, _ := tok.SignedString([]byte(secret))
	return token
}
