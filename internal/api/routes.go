package api

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/shankarium/plm/internal/auth"
	"github.com/shankarium/plm/internal/logging"
)

// Route binds a method and path to a handler and the roles allowed to call it.
// A nil Roles means the route is open to everyone.
type Route struct {
	Method  string
	Path    string
	Roles   auth.RoleSet
	Handler gin.HandlerFunc
	// Listed routes appear as links on the landing page
	Listed bool
	Title  string
}

// Routes is the full route policy table
func (h *Handler) Routes() []Route {
	return []Route{
		{Method: http.MethodGet, Path: "/", Handler: h.Home},
		{Method: http.MethodGet, Path: "/login", Handler: h.LoginPage},
		{Method: http.MethodPost, Path: "/login", Handler: h.Login},
		{Method: http.MethodGet, Path: "/logout", Handler: h.Logout},

		{Method: http.MethodGet, Path: "/pm/briefs", Roles: auth.Authors, Handler: h.ListBriefs, Listed: true, Title: "Market briefs"},
		{Method: http.MethodGet, Path: "/pm/briefs/new", Roles: auth.Authors, Handler: h.NewBriefForm, Listed: true, Title: "New brief"},
		{Method: http.MethodPost, Path: "/pm/briefs/new", Roles: auth.Authors, Handler: h.CreateBrief},
		{Method: http.MethodPost, Path: "/pm/briefs/submit/:id", Roles: auth.Authors, Handler: h.SubmitBrief},

		{Method: http.MethodGet, Path: "/brief/:id", Roles: auth.Viewers, Handler: h.GetBrief},
		{Method: http.MethodPost, Path: "/brief/:id/comments", Roles: auth.Viewers, Handler: h.AddBriefComment},

		{Method: http.MethodGet, Path: "/npd/briefs", Roles: auth.Intake, Handler: h.ListSubmittedBriefs, Listed: true, Title: "Submitted briefs"},
		{Method: http.MethodGet, Path: "/npd/concepts", Roles: auth.Intake, Handler: h.ListConcepts, Listed: true, Title: "Concepts"},
		{Method: http.MethodGet, Path: "/npd/concepts/new/:brief_id", Roles: auth.Intake, Handler: h.NewConceptForm},
		{Method: http.MethodPost, Path: "/npd/concepts/new/:brief_id", Roles: auth.Intake, Handler: h.CreateConcept},

		{Method: http.MethodGet, Path: "/pm/finalize", Roles: auth.Finalizers, Handler: h.ListFinalizeQueue, Listed: true, Title: "Ready for PM"},
		{Method: http.MethodGet, Path: "/pm/finalize/:concept_id", Roles: auth.Finalizers, Handler: h.FinalizeForm},
		{Method: http.MethodPost, Path: "/pm/finalize/:concept_id", Roles: auth.Finalizers, Handler: h.FinalizeConcept},

		{Method: http.MethodGet, Path: "/sales/catalog", Roles: auth.Viewers, Handler: h.SalesCatalog, Listed: true, Title: "Sales catalog"},
		{Method: http.MethodGet, Path: "/concept/:id", Roles: auth.Viewers, Handler: h.GetConcept},
		{Method: http.MethodPost, Path: "/concept/:id/comments", Roles: auth.Viewers, Handler: h.AddConceptComment},

		{Method: http.MethodGet, Path: "/admin", Roles: auth.AdminOnly, Handler: h.AdminDashboard, Listed: true, Title: "Admin"},
		{Method: http.MethodPost, Path: "/admin/delete/:kind/:id", Roles: auth.AdminOnly, Handler: h.AdminDelete},
		{Method: http.MethodPost, Path: "/admin/clear_all", Roles: auth.AdminOnly, Handler: h.AdminClearAll},
	}
}

// RouterOptions configures SetupRouter
type RouterOptions struct {
	// UploadDir is served under UploadURLPrefix when set (local upload backend only)
	UploadDir       string
	UploadURLPrefix string
	SecureCookies   bool
	AllowedOrigins  []string
}

// SetupRouter builds the gin engine with the middleware chain and route table
func SetupRouter(h *Handler, opts RouterOptions) *gin.Engine {
	router := gin.New()

	router.Use(logging.RequestID())
	router.Use(logging.JSONLogger())
	router.Use(gin.Recovery())
	router.Use(cors.New(corsConfig(opts.AllowedOrigins)))
	router.Use(AuthMiddleware(h.issuer, opts.SecureCookies))

	// Health and readiness endpoints (no auth required)
	router.GET("/live", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/health", h.Health)

	if opts.UploadDir != "" {
		prefix := opts.UploadURLPrefix
		if prefix == "" {
			prefix = "/static/uploads"
		}
		router.Static(prefix, opts.UploadDir)
	}

	for _, r := range h.Routes() {
		if r.Roles == nil {
			router.Handle(r.Method, r.Path, r.Handler)
			continue
		}
		router.Handle(r.Method, r.Path, Require(r.Roles), r.Handler)
	}
	return router
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", logging.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", logging.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(origins) == 0 {
		cfg.AllowOriginFunc = func(string) bool { return true }
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}
