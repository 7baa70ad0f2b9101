package http

import (
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"meridian/internal/config"
	"meridian/internal/domain"
	"meridian/internal/infra/db"
	"meridian/internal/infra/ratelimit"
	"meridian/internal/infra/token"
	"meridian/internal/usecase"

	"github.com/gin-gonic/gin"
)

const devSecret = "dev-secret-key"

type Server struct {
	cfg config.Config
	r   *gin.Engine

	directory domain.Directory
	codec     domain.TokenCodec
	auth      *usecase.AuthService

	rateLimiter         domain.RateLimiter
	rateLimitRequests   int
	rateLimitWindow     time.Duration
	rateLimitFailClosed bool

	bindings    []domain.RouteBinding
	proxyClient *http.Client
}

func NewServer(cfg config.Config, store *db.Store) (*Server, error) {
	secret := cfg.JWTSecret
	if secret == "" {
		if cfg.IsProduction() {
			return nil, errors.New("JWT_SECRET is required")
		}
		log.Printf("JWT_SECRET not set; using the development secret")
		secret = devSecret
	}

	directory := db.NewUserRepository(store.DB)
	codec := token.NewCodec(secret, cfg.TokenLifetime(), cfg.TokenRefreshWindow(), nil)

	var guard domain.ReplayGuard
	var limiter domain.RateLimiter
	if cfg.RedisAddr != "" {
		if l, err := ratelimit.NewRedisLimiter(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, nil); err == nil {
			limiter = l
		}
		if g, err := ratelimit.NewRedisGuard(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB); err == nil {
			guard = g
		}
	}
	if limiter == nil {
		limiter = ratelimit.NewMemoryLimiter(ratelimit.MemoryLimiterConfig{MaxKeys: cfg.RateLimitMaxKeys})
	}
	if guard == nil {
		guard = ratelimit.NewMemoryGuard(nil, cfg.RateLimitMaxKeys)
	}

	return newServer(cfg, ServerDeps{
		Directory:   directory,
		Codec:       codec,
		Guard:       guard,
		RateLimiter: limiter,
		Bindings:    BindingsFromConfig(cfg),
	}), nil
}

// ServerDeps lets tests assemble a server from fakes.
type ServerDeps struct {
	Directory   domain.Directory
	Codec       domain.TokenCodec
	Guard       domain.ReplayGuard
	RateLimiter domain.RateLimiter
	Bindings    []domain.RouteBinding
	ProxyClient *http.Client
	Now         func() time.Time
}

func NewServerWithDeps(cfg config.Config, deps ServerDeps) *Server {
	return newServer(cfg, deps)
}

func newServer(cfg config.Config, deps ServerDeps) *Server {
	s := &Server{
		cfg:       cfg,
		r:         gin.New(),
		directory: deps.Directory,
		codec:     deps.Codec,
		bindings:  deps.Bindings,
	}
	s.auth = &usecase.AuthService{
		Directory: deps.Directory,
		Codec:     deps.Codec,
		Guard:     deps.Guard,
		Now:       deps.Now,
	}
	s.rateLimiter = deps.RateLimiter
	s.rateLimitRequests = cfg.RateLimitRequests
	s.rateLimitWindow = cfg.RateLimitWindow()
	s.rateLimitFailClosed = cfg.RateLimitFailClosed
	s.proxyClient = deps.ProxyClient
	if s.proxyClient == nil {
		s.proxyClient = &http.Client{Timeout: cfg.ProxyTimeout()}
	}
	s.routes()
	return s
}

// BindingsFromConfig builds the static route table. Prefixes without a
// configured base address are left out; their paths fall through to 404.
func BindingsFromConfig(cfg config.Config) []domain.RouteBinding {
	all := []domain.RouteBinding{
		{Name: "goals", Prefix: "/api/goals", BaseURL: cfg.GoalsURL, Access: domain.AccessOrganization},
		{Name: "metrics", Prefix: "/api/metrics", BaseURL: cfg.MetricsURL, Access: domain.AccessOrganization},
		{Name: "changes", Prefix: "/api/changes", BaseURL: cfg.ChangesURL, Access: domain.AccessOrganization},
		{Name: "processes", Prefix: "/api/processes", BaseURL: cfg.ProcessesURL, Access: domain.AccessOrganization},
		{Name: "scenarios", Prefix: "/api/scenarios", BaseURL: cfg.ScenariosURL, Access: domain.AccessOrganization},
	}
	out := make([]domain.RouteBinding, 0, len(all))
	for _, b := range all {
		if b.BaseURL != "" {
			out = append(out, domain.RouteBinding{
				Name:    b.Name,
				Prefix:  b.Prefix,
				BaseURL: strings.TrimSuffix(b.BaseURL, "/"),
				Access:  b.Access,
			})
		}
	}
	return out
}

func (s *Server) Run() error {
	return s.r.Run(s.cfg.HTTPAddr)
}

func (s *Server) routes() {
	s.r.Use(s.recovery(), s.requestID(), s.cors())

	s.r.GET("/healthz", s.handleHealth)

	// Rate limiting covers everything under /api, login included, so
	// credential stuffing is blunted before any expensive check runs.
	api := s.r.Group("/api", s.rateLimit())

	api.GET("/meta", s.authOptional(), s.handleMeta)

	auth := api.Group("/auth")
	{
		auth.POST("/login", s.handleLogin)
		auth.POST("/refresh", s.handleRefresh)
		auth.POST("/logout", s.authRequired(), s.handleLogout)
		auth.GET("/session", s.authRequired(), s.handleSession)
		auth.GET("/users/:id", s.authRequired(), s.requireRoles(domain.RoleAdmin), s.handleGetUser)
	}

	for _, binding := range s.bindings {
		group := api.Group(strings.TrimPrefix(binding.Prefix, "/api"))
		switch binding.Access {
		case domain.AccessAuthenticated:
			group.Use(s.authRequired())
		case domain.AccessOrganization:
			group.Use(s.authRequired(), s.requireOrganization())
		}
		// The bare prefix is registered too, so it proxies instead of
		// taking the trailing-slash redirect.
		group.Any("", s.proxyHandler(binding))
		group.Any("/*path", s.proxyHandler(binding))
	}

	s.r.NoRoute(func(c *gin.Context) {
		writeErrorCode(c, http.StatusNotFound, "NOT_FOUND", "route not found")
	})
}
