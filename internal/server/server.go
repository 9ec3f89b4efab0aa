package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/vendly/vendly/internal/analytics"
	"github.com/vendly/vendly/internal/asset"
	assetdomain "github.com/vendly/vendly/internal/asset/domain"
	"github.com/vendly/vendly/internal/auth"
	authdomain "github.com/vendly/vendly/internal/auth/domain"
	"github.com/vendly/vendly/internal/auth/session"
	"github.com/vendly/vendly/internal/billing"
	billingdomain "github.com/vendly/vendly/internal/billing/domain"
	"github.com/vendly/vendly/internal/cache"
	"github.com/vendly/vendly/internal/config"
	"github.com/vendly/vendly/internal/customer"
	customerdomain "github.com/vendly/vendly/internal/customer/domain"
	"github.com/vendly/vendly/internal/dashboard"
	dashboarddomain "github.com/vendly/vendly/internal/dashboard/domain"
	"github.com/vendly/vendly/internal/guard"
	"github.com/vendly/vendly/internal/observability"
	obslogger "github.com/vendly/vendly/internal/observability/logger"
	obsmetrics "github.com/vendly/vendly/internal/observability/metrics"
	obstracing "github.com/vendly/vendly/internal/observability/tracing"
	"github.com/vendly/vendly/internal/organization"
	organizationdomain "github.com/vendly/vendly/internal/organization/domain"
	"github.com/vendly/vendly/internal/plan"
	plandomain "github.com/vendly/vendly/internal/plan/domain"
	"github.com/vendly/vendly/internal/product"
	productdomain "github.com/vendly/vendly/internal/product/domain"
	"github.com/vendly/vendly/internal/providers/pdf"
	"github.com/vendly/vendly/internal/purchase"
	purchasedomain "github.com/vendly/vendly/internal/purchase/domain"
	"github.com/vendly/vendly/internal/ratelimit"
	"github.com/vendly/vendly/internal/sale"
	saledomain "github.com/vendly/vendly/internal/sale/domain"
	"github.com/vendly/vendly/internal/subscription"
	subscriptiondomain "github.com/vendly/vendly/internal/subscription/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	cache.Module,
	session.Module,
	auth.Module,
	organization.Module,
	plan.Module,
	subscription.Module,
	customer.Module,
	product.Module,
	purchase.Module,
	sale.Module,
	dashboard.Module,
	billing.Module,
	asset.Module,
	analytics.Module,
	pdf.Module,
	ratelimit.Module,
	guard.Module,
	fx.Provide(NewEngine),
	fx.Provide(NewServer),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config, m *obsmetrics.Metrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obslogger.GinMiddleware(obslogger.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware())
	r.Use(m.GinMiddleware())
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func run(lc fx.Lifecycle, s *Server) {
	srv := &http.Server{
		Addr:    s.cfg.HTTPAddr,
		Handler: s.engine,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					s.log.Fatal("http server failed", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine          *gin.Engine
	cfg             config.Config
	log             *zap.Logger
	sessions        *session.Manager
	authSvc         authdomain.Service
	organizationSvc organizationdomain.Service
	customerSvc     customerdomain.Service
	productSvc      productdomain.Service
	purchaseSvc     purchasedomain.Service
	saleSvc         saledomain.Service
	dashboardSvc    dashboarddomain.Service
	planSvc         plandomain.Service
	subscriptionSvc subscriptiondomain.Service
	billingSvc      billingdomain.Service
	assetSvc        assetdomain.Service
	receipts        pdf.Provider
	pageViews       *analytics.Recorder
	guards          *guard.Guards
	roleCache       cache.RoleCache
	loginLimiter    *ratelimit.LoginLimiter
}

type ServerParams struct {
	fx.In

	Gin             *gin.Engine
	Cfg             config.Config
	Log             *zap.Logger
	Sessions        *session.Manager
	AuthSvc         authdomain.Service
	OrganizationSvc organizationdomain.Service
	CustomerSvc     customerdomain.Service
	ProductSvc      productdomain.Service
	PurchaseSvc     purchasedomain.Service
	SaleSvc         saledomain.Service
	DashboardSvc    dashboarddomain.Service
	PlanSvc         plandomain.Service
	SubscriptionSvc subscriptiondomain.Service
	BillingSvc      billingdomain.Service
	AssetSvc        assetdomain.Service
	Receipts        pdf.Provider
	PageViews       *analytics.Recorder
	Guards          *guard.Guards
	RoleCache       cache.RoleCache
	LoginLimiter    *ratelimit.LoginLimiter
}

func NewServer(p ServerParams) *Server {
	s := &Server{
		engine:          p.Gin,
		cfg:             p.Cfg,
		log:             p.Log,
		sessions:        p.Sessions,
		authSvc:         p.AuthSvc,
		organizationSvc: p.OrganizationSvc,
		customerSvc:     p.CustomerSvc,
		productSvc:      p.ProductSvc,
		purchaseSvc:     p.PurchaseSvc,
		saleSvc:         p.SaleSvc,
		dashboardSvc:    p.DashboardSvc,
		planSvc:         p.PlanSvc,
		subscriptionSvc: p.SubscriptionSvc,
		billingSvc:      p.BillingSvc,
		assetSvc:        p.AssetSvc,
		receipts:        p.Receipts,
		pageViews:       p.PageViews,
		guards:          p.Guards,
		roleCache:       p.RoleCache,
		loginLimiter:    p.LoginLimiter,
	}

	s.registerAuthRoutes()
	s.registerAPIRoutes()
	s.registerBillingRoutes()
	s.registerPublicRoutes()
	s.registerUIRoutes()
	s.registerFallback()

	return s
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAuthRoutes() {
	authGroup := s.engine.Group("/auth")
	authGroup.Use(s.SessionContext())

	authGroup.POST("/sign-up", s.Guard(s.guards.Guest), s.SignUp)
	authGroup.POST("/sign-in", s.loginLimiter.Middleware(), s.Guard(s.guards.Guest), s.SignIn)
	authGroup.POST("/sign-out", s.SignOut)
	authGroup.GET("/me", s.Me)
	authGroup.GET("/orgs", s.ListUserOrgs)
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api")
	api.Use(s.SessionContext())

	// Organization creation needs a user but no existing organization.
	api.POST("/organizations", s.CreateOrganization)

	org := api.Group("/orgs/:orgId", s.OrgContext())
	org.Use(s.Guard(s.guards.Org))

	org.GET("", s.GetOrganization)
	org.GET("/dashboard", s.GetDashboard)

	org.GET("/customers", s.ListCustomers)
	org.POST("/customers", s.CreateCustomer)
	org.GET("/customers/:id", s.GetCustomer)
	org.PUT("/customers/:id", s.UpdateCustomer)
	org.DELETE("/customers/:id", s.DeleteCustomer)

	org.GET("/products", s.ListProducts)
	org.POST("/products", s.CreateProduct)
	org.POST("/products/images", s.UploadProductImage)
	org.GET("/products/:id", s.GetProduct)
	org.PUT("/products/:id", s.UpdateProduct)
	org.DELETE("/products/:id", s.DeleteProduct)

	org.GET("/purchases", s.ListPurchases)
	org.POST("/purchases", s.CreatePurchase)
	org.GET("/purchases/:id", s.GetPurchase)
	org.PUT("/purchases/:id", s.UpdatePurchase)
	org.DELETE("/purchases/:id", s.DeletePurchase)

	org.GET("/sales", s.ListSales)
	org.POST("/sales", s.CreateSale)
	org.GET("/sales/:id", s.GetSale)
	org.PUT("/sales/:id", s.UpdateSale)
	org.DELETE("/sales/:id", s.DeleteSale)
	org.GET("/sales/:id/receipt", s.DownloadSaleReceipt)

	org.GET("/plans", s.ListPlans)
	org.GET("/subscription", s.GetSubscription)

	// Settings mutations require the admin role.
	admin := org.Group("", s.Guard(s.guards.Admin))
	admin.PATCH("/settings", s.UpdateOrganizationSettings)
	admin.POST("/members", s.AddOrganizationMember)
	admin.GET("/subscriptions", s.ListSubscriptions)
}

func (s *Server) registerBillingRoutes() {
	billingGroup := s.engine.Group("/billing")

	billingGroup.POST("/webhooks/stripe", s.HandleStripeWebhook)

	// The hosted-session endpoints answer preflight before any other
	// check and reject non-POST methods themselves.
	billingGroup.Any("/checkout-session", s.SessionContext(), s.CreateCheckoutSession)
	billingGroup.Any("/portal-session", s.SessionContext(), s.CreatePortalSession)
}

func (s *Server) registerPublicRoutes() {
	public := s.engine.Group("/p")

	public.GET("/org/:orgId/products", s.OrgContext(), s.Guard(s.guards.PublicProducts), s.ListPublicProducts)
}

// registerUIRoutes serves the SPA index behind the same guard
// pipelines the client router uses, so a cold navigation lands on the
// right page instead of a flash of the wrong one.
func (s *Server) registerUIRoutes() {
	ui := s.engine.Group("", s.SessionContext())

	ui.GET("/", s.GuardPage(s.guards.App), serveIndex)
	ui.GET("/auth/sign-in", s.GuardPage(s.guards.Guest), serveIndex)
	ui.GET("/auth/sign-up", s.GuardPage(s.guards.Guest), serveIndex)
	ui.GET("/no-organizations", serveIndex)
	ui.GET("/unauthorized", serveIndex)

	org := ui.Group("/org/:orgId", s.OrgContext(), s.GuardPage(s.guards.Org))
	org.GET("", serveIndex)
	org.GET("/*page", serveIndex)

	admin := ui.Group("/admin/:orgId", s.OrgContext(), s.GuardPage(s.guards.Admin))
	admin.GET("", serveIndex)
	admin.GET("/*page", serveIndex)
}

func (s *Server) registerFallback() {
	s.engine.Static("/assets", "./public/assets")
	s.engine.NoRoute(serveIndex)
}

func serveIndex(c *gin.Context) {
	c.File("./public/index.html")
}
