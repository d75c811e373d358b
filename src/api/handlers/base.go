package handlers

import (
	"encoding/json"
	"net/http"

	"server/src/api/controllers"
	"server/src/utils"

	"github.com/go-chi/jwtauth"
)

type Handler struct {
	Registration controllers.RegistrationControllerI
	Connections  controllers.ConnectionsControllerI
	Sync         controllers.SyncControllerI
	Assets       controllers.AssetsControllerI
	Prices       controllers.PricesControllerI

	TokenAuth *jwtauth.JWTAuth
	// ClientConfigured and KeyConfigured feed the debug endpoint only.
	ClientConfigured bool
	KeyConfigured    bool
}

func NewHandler(tokenAuth *jwtauth.JWTAuth,
	registration controllers.RegistrationControllerI,
	connections controllers.ConnectionsControllerI,
	sync controllers.SyncControllerI,
	assets controllers.AssetsControllerI,
	prices controllers.PricesControllerI) *Handler {
	return &Handler{
		Registration: registration,
		Connections:  connections,
		Sync:         sync,
		Assets:       assets,
		Prices:       prices,
		TokenAuth:    tokenAuth,
	}
}

func (h *Handler) respond(w http.ResponseWriter, _ *http.Request, data interface{}, status int) {
	res, err := json.Marshal(data)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	_, _ = w.Write(res)
}

func (h *Handler) HandleErrors(w http.ResponseWriter, err error) {
	utils.WriteError(w, err)
}

// NoCache marks every data response uncacheable; stale portfolio numbers
// confuse users more than slow ones.
func NoCache(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-store, max-age=0, must-revalidate")
		w.Header().Set("Pragma", "no-cache")
		w.Header().Set("Expires", "0")
		next.ServeHTTP(w, r)
	})
}

// sessionIdentity extracts the verified user id and email from the session
// token, taken from the Authorization header or the session cookie. Returns
// empty strings when no valid token is present.
func (h *Handler) sessionIdentity(r *http.Request) (string, string) {
	tokenString := jwtauth.TokenFromHeader(r)
	if tokenString == "" {
		tokenString = jwtauth.TokenFromCookie(r)
	}
	if tokenString == "" {
		return "", ""
	}

	token, err := h.TokenAuth.Decode(tokenString)
	if err != nil || token == nil {
		return "", ""
	}

	email := ""
	if raw, ok := token.Get("email"); ok {
		email, _ = raw.(string)
	}
	return token.Subject(), email
}

// requireUser enforces that a valid session exists and, when userID is
// non-empty, that it belongs to that user. Writes the error response itself
// and reports whether the request may proceed.
func (h *Handler) requireUser(w http.ResponseWriter, r *http.Request, userID string) bool {
	sessionUser, _ := h.sessionIdentity(r)
	if sessionUser == "" {
		h.HandleErrors(w, utils.Unauthorized("User not authenticated"))
		return false
	}
	if userID != "" && sessionUser != userID {
		h.HandleErrors(w, utils.Forbidden("User ID mismatch"))
		return false
	}
	return true
}
