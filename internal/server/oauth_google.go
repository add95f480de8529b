package server

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/findr-ai/findr/internal/config"
)

const oauthStateCookie = "findr_oauth_state"

// googleUserInfo is the subset of Google's userinfo response we consume.
type googleUserInfo struct {
	Sub     string `json:"id"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

// GoogleAuthHandler implements the Google sign-in flow.
type GoogleAuthHandler struct {
	oauthConfig *oauth2.Config
	userService *UserService
	jwtService  *JWTService
	frontendURL string
	userInfoURL string
	logger      *zap.Logger
}

// NewGoogleAuthHandler builds the Google sign-in handler. It returns nil when
// no client ID is configured, which disables the routes.
func NewGoogleAuthHandler(cfg config.OAuthConfig, userService *UserService, jwtService *JWTService, logger *zap.Logger) *GoogleAuthHandler {
	if cfg.GoogleClientID == "" {
		return nil
	}
	return &GoogleAuthHandler{
		oauthConfig: &oauth2.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     google.Endpoint,
		},
		userService: userService,
		jwtService:  jwtService,
		frontendURL: cfg.FrontendURL,
		userInfoURL: "https://www.googleapis.com/oauth2/v2/userinfo",
		logger:      logger,
	}
}

// Begin redirects the browser to Google's consent screen.
func (h *GoogleAuthHandler) Begin(w http.ResponseWriter, r *http.Request) {
	state, err := randomState()
	if err != nil {
		http.Error(w, "Failed to start sign-in", http.StatusInternalServerError)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     oauthStateCookie,
		Value:    state,
		Path:     "/",
		MaxAge:   300,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, h.oauthConfig.AuthCodeURL(state), http.StatusTemporaryRedirect)
}

// Callback exchanges the authorization code, loads the Google identity, and
// signs the user in.
func (h *GoogleAuthHandler) Callback(w http.ResponseWriter, r *http.Request) {
	stateCookie, err := r.Cookie(oauthStateCookie)
	if err != nil || stateCookie.Value == "" || stateCookie.Value != r.URL.Query().Get("state") {
		http.Error(w, "Invalid sign-in state", http.StatusBadRequest)
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		http.Error(w, "Missing authorization code", http.StatusBadRequest)
		return
	}

	token, err := h.oauthConfig.Exchange(r.Context(), code)
	if err != nil {
		h.logger.Warn("google code exchange failed", zap.Error(err))
		http.Error(w, "Sign-in failed", http.StatusUnauthorized)
		return
	}

	info, err := h.fetchUserInfo(r, token)
	if err != nil {
		h.logger.Warn("google userinfo fetch failed", zap.Error(err))
		http.Error(w, "Sign-in failed", http.StatusUnauthorized)
		return
	}

	user, err := h.userService.LoginWithGoogle(r.Context(), info.Sub, info.Email, info.Name, info.Picture)
	if err != nil {
		h.logger.Error("google sign-in failed", zap.Error(err))
		http.Error(w, err.Error(), HTTPStatus(err))
		return
	}

	sessionToken, err := h.jwtService.GenerateToken(user.ID, user.Role)
	if err != nil {
		http.Error(w, "Failed to generate token", http.StatusInternalServerError)
		return
	}
	h.jwtService.SetSessionCookie(w, sessionToken)

	// Accounts without a role yet get sent to role selection.
	redirect := h.frontendURL
	if user.Role == "" {
		redirect += "/choose-role"
	}
	http.Redirect(w, r, redirect, http.StatusTemporaryRedirect)
}

func (h *GoogleAuthHandler) fetchUserInfo(r *http.Request, token *oauth2.Token) (*googleUserInfo, error) {
	client := h.oauthConfig.Client(r.Context(), token)
	resp, err := client.Get(h.userInfoURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch userinfo: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("userinfo returned status %d", resp.StatusCode)
	}

	var info googleUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("failed to decode userinfo: %w", err)
	}
	if info.Sub == "" || info.Email == "" {
		return nil, fmt.Errorf("userinfo response missing id or email")
	}
	return &info, nil
}

func randomState() (string, error) {
	buf := make([]byte, 24)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
