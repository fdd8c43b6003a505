package main

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/brokerdeck/go-broker-client/trading"
)

// Server is the development backend: the /api/v1 contract the client SDK
// talks to, with in-memory users and canned trading data.
type Server struct {
	users  *UserStore
	tokens *TokenService
}

func NewServer(secret []byte) *Server {
	return &Server{
		users:  NewUserStore(),
		tokens: NewTokenService(secret),
	}
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/api/v1/health", s.handleHealth)

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Post("/signup", s.handleSignup)
		r.Post("/login", s.handleLogin)
		r.Post("/refresh", s.handleRefresh)
		r.Post("/logout", s.handleLogout)
	})

	r.Group(func(r chi.Router) {
		r.Use(s.requireAuth)
		r.Get("/api/v1/holdings", s.handleHoldings)
		r.Get("/api/v1/orderbook", s.handleOrderbook)
		r.Get("/api/v1/positions", s.handlePositions)
		r.Post("/api/v1/orders", s.handlePlaceOrder)
	})

	return r
}

// requireAuth rejects requests without a valid bearer token.
func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			writeError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}
		if _, err := s.tokens.ValidateAccess(strings.TrimPrefix(header, "Bearer ")); err != nil {
			writeError(w, http.StatusUnauthorized, err.Error())
			return
		}
		next.ServeHTTP(w, r)
	})
}

type credentialsBody struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenResponseBody struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
	User         *User  `json:"user,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var body credentialsBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := s.users.Create(body.Email, body.Password)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.respondWithTokens(w, user)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var body credentialsBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := s.users.Authenticate(body.Email, body.Password)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid email or password")
		return
	}
	s.respondWithTokens(w, user)
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var body struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.RefreshToken == "" {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	accessToken, refreshToken, expiresIn, err := s.tokens.Rotate(body.RefreshToken, s.users)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "invalid refresh token")
		return
	}
	writeJSON(w, http.StatusOK, tokenResponseBody{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    expiresIn,
	})
}

func (s *Server) handleLogout(w http.ResponseWriter, _ *http.Request) {
	// Best-effort by contract; the client clears its own state regardless.
	writeJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}

func (s *Server) handleHoldings(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, trading.HoldingsResponse{
		Holdings: fixtureHoldings,
		PNLCard:  fixturePNL,
	})
}

func (s *Server) handleOrderbook(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, trading.OrderbookResponse{
		Orders:  fixtureOrders,
		PNLCard: fixturePNL,
	})
}

func (s *Server) handlePositions(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, trading.PositionsResponse{
		Positions: fixturePositions,
		PNLCard:   fixturePNL,
	})
}

func (s *Server) handlePlaceOrder(w http.ResponseWriter, r *http.Request) {
	var order trading.OrderRequest
	if err := json.NewDecoder(r.Body).Decode(&order); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := order.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	placed := trading.Order{
		ID:        "ord-" + uuid.New().String()[:8],
		Symbol:    order.Symbol,
		OrderType: order.OrderType,
		Quantity:  order.Quantity,
		Price:     order.Price,
		Status:    trading.OrderStatusPending,
		OrderTime: NowTimeFunc().UTC().Format(time.RFC3339),
	}
	writeJSON(w, http.StatusCreated, trading.OrderResponse{
		Order:   placed,
		Message: "Order placed successfully!",
	})
}

func (s *Server) respondWithTokens(w http.ResponseWriter, user *User) {
	accessToken, refreshToken, expiresIn, err := s.tokens.IssueTokens(user)
	if err != nil {
		log.Error().Err(err).Msg("failed to issue tokens")
		writeError(w, http.StatusInternalServerError, "failed to issue tokens")
		return
	}
	writeJSON(w, http.StatusOK, tokenResponseBody{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    expiresIn,
		User:         user,
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
