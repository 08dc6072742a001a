package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/aussiebroadwan/teller/internal/teller/service"
	"github.com/aussiebroadwan/teller/internal/teller/store"
	"github.com/aussiebroadwan/teller/pkg/httpx"
	"github.com/aussiebroadwan/teller/pkg/slogx"
	"github.com/redis/go-redis/v9"

	_ "github.com/aussiebroadwan/teller/api/teller" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// RateLimits are the per-route limit profiles.
type RateLimits struct {
	Strict   httpx.RateLimitConfig
	Moderate httpx.RateLimitConfig
	Lenient  httpx.RateLimitConfig
}

// DefaultRateLimits returns the profiles from httpx, including any
// RATELIMIT_* overrides.
func DefaultRateLimits() RateLimits {
	return RateLimits{
		Strict:   httpx.StrictLimit,
		Moderate: httpx.ModerateLimit,
		Lenient:  httpx.LenientLimit,
	}
}

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	buildVersion string
	startTime    time.Time
	logger       *slog.Logger
	store        store.Store

	Sessions      *service.SessionService
	UserService   *service.UserService
	AuthService   *service.AuthService
	MFAService    *service.MFAService
	ResetService  *service.ResetService
	LedgerService *service.LedgerService

	// Redis is optional; when set, readiness includes it.
	Redis *redis.Client

	Limits       RateLimits
	CookieSecure bool
	AdminToken   string // empty disables the admin endpoints
}

func NewRouter(st store.Store, buildVersion string, logger *slog.Logger) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		buildVersion: buildVersion,
		startTime:    time.Now(),
		logger:       logger,
		store:        st,
		Limits:       DefaultRateLimits(),
	}

	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerMFA()
	r.registerReset()
	r.registerBalance()
	r.registerAdmin()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title						Teller API
//	@version					0.1.0
//	@description				Authentication core of the Teller banking demo: signup, login with optional TOTP, password reset and account balances.
//	@description
//	@description				Session tokens are EdDSA-signed JWTs carried in the "token" cookie or an Authorization Bearer header.
//
//	@contact.name				AussieBroadWAN Team
//	@contact.url				https://github.com/aussiebroadwan/teller
//
//	@license.name				MIT
//	@license.url				https://opensource.org/licenses/MIT
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Session token. Format: "Bearer {token}".
//
//	@securityDefinitions.apikey	AdminToken
//	@in							header
//	@name						X-Admin-Token
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) authn() httpx.Middleware {
	return httpx.AuthnMiddleware(r.Sessions)
}

func (r *Router) registerAuth() {
	h := &AuthHandler{
		UserService:  r.UserService,
		AuthService:  r.AuthService,
		Sessions:     r.Sessions,
		CookieSecure: r.CookieSecure,
	}

	// Credential endpoints - strict rate limit by IP
	r.Mux.Handle("POST /api/auth/signup",
		httpx.Chain(http.HandlerFunc(h.HandleSignup), httpx.RateLimitByIP(r.Limits.Strict)))
	r.Mux.Handle("POST /api/auth/login",
		httpx.Chain(http.HandlerFunc(h.HandleLogin), httpx.RateLimitByIP(r.Limits.Strict)))
	r.Mux.Handle("POST /api/auth/verify-mfa",
		httpx.Chain(http.HandlerFunc(h.HandleVerifyMFA), httpx.RateLimitByIP(r.Limits.Strict)))
	r.Mux.Handle("POST /api/auth/setup-mfa",
		httpx.Chain(http.HandlerFunc(h.HandleSetupMFA), httpx.RateLimitByIP(r.Limits.Strict)))
	r.Mux.Handle("POST /api/auth/verify-mfa-setup",
		httpx.Chain(http.HandlerFunc(h.HandleVerifyMFASetup), httpx.RateLimitByIP(r.Limits.Strict)))

	// Logout accepts any token, valid or not
	r.Mux.Handle("POST /api/auth/logout",
		httpx.Chain(http.HandlerFunc(h.HandleLogout), httpx.RateLimitByIP(r.Limits.Moderate)))

	r.Mux.Handle("GET /api/auth/check-auth",
		httpx.Chain(http.HandlerFunc(h.HandleCheckAuth),
			r.authn(),
			httpx.RateLimitByUser(r.Limits.Lenient),
		),
	)
}

func (r *Router) registerMFA() {
	h := &MFAHandler{MFAService: r.MFAService}

	r.Mux.Handle("POST /api/auth/mfa/enroll",
		httpx.Chain(http.HandlerFunc(h.HandleEnroll),
			r.authn(),
			httpx.RateLimitByUser(r.Limits.Moderate),
		),
	)

	// Code checks - strict rate limit by user (prevent brute force of TOTP codes)
	r.Mux.Handle("POST /api/auth/mfa/verify",
		httpx.Chain(http.HandlerFunc(h.HandleVerify),
			r.authn(),
			httpx.RateLimitByUser(r.Limits.Strict),
		),
	)
	r.Mux.Handle("DELETE /api/auth/mfa",
		httpx.Chain(http.HandlerFunc(h.HandleDisable),
			r.authn(),
			httpx.RateLimitByUser(r.Limits.Strict),
		),
	)
}

func (r *Router) registerReset() {
	h := &ResetHandler{ResetService: r.ResetService}

	r.Mux.Handle("POST /api/auth/forgot-password",
		httpx.Chain(http.HandlerFunc(h.HandleForgotPassword), httpx.RateLimitByIP(r.Limits.Strict)))
	r.Mux.Handle("POST /api/auth/reset-password/{token}",
		httpx.Chain(http.HandlerFunc(h.HandleResetPassword), httpx.RateLimitByIP(r.Limits.Strict)))
}

func (r *Router) registerBalance() {
	h := &BalanceHandler{LedgerService: r.LedgerService}

	r.Mux.Handle("PUT /api/auth/balance",
		httpx.Chain(http.HandlerFunc(h.HandleUpdate),
			r.authn(),
			httpx.RateLimitByUser(r.Limits.Moderate),
		),
	)
	r.Mux.Handle("GET /api/auth/balance",
		httpx.Chain(http.HandlerFunc(h.HandleGet),
			r.authn(),
			httpx.RateLimitByUser(r.Limits.Lenient),
		),
	)
	r.Mux.Handle("GET /api/auth/transactions/{userId}",
		httpx.Chain(http.HandlerFunc(h.HandleTransactions),
			r.authn(),
			httpx.RateLimitByUser(r.Limits.Lenient),
		),
	)
}

func (r *Router) registerAdmin() {
	h := &AdminHandler{UserService: r.UserService, Token: r.AdminToken}

	r.Mux.Handle("POST /api/admin/users/{id}/approve",
		httpx.Chain(http.HandlerFunc(h.HandleApprove), httpx.RateLimitByIP(r.Limits.Moderate)))
}

func (r *Router) registerSystem() {
	// Health check endpoints - lenient rate limits (monitoring systems may poll frequently)
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(r.Limits.Lenient),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store, r.Redis),
			httpx.RateLimitByIP(r.Limits.Lenient),
		),
	)
}
