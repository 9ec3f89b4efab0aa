package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	authdomain "github.com/vendly/vendly/internal/auth/domain"
	authrepository "github.com/vendly/vendly/internal/auth/repository"
	authservice "github.com/vendly/vendly/internal/auth/service"
	"github.com/vendly/vendly/internal/auth/session"
	billingdomain "github.com/vendly/vendly/internal/billing/domain"
	"github.com/vendly/vendly/internal/cache"
	"github.com/vendly/vendly/internal/config"
	customerdomain "github.com/vendly/vendly/internal/customer/domain"
	customerrepository "github.com/vendly/vendly/internal/customer/repository"
	customerservice "github.com/vendly/vendly/internal/customer/service"
	"github.com/vendly/vendly/internal/guard"
	organizationdomain "github.com/vendly/vendly/internal/organization/domain"
	organizationrepository "github.com/vendly/vendly/internal/organization/repository"
	organizationservice "github.com/vendly/vendly/internal/organization/service"
	"github.com/vendly/vendly/internal/orgcontext"
	plandomain "github.com/vendly/vendly/internal/plan/domain"
	planrepository "github.com/vendly/vendly/internal/plan/repository"
	productdomain "github.com/vendly/vendly/internal/product/domain"
	"github.com/vendly/vendly/internal/ratelimit"
	subscriptiondomain "github.com/vendly/vendly/internal/subscription/domain"
	subscriptionrepository "github.com/vendly/vendly/internal/subscription/repository"
	subscriptionservice "github.com/vendly/vendly/internal/subscription/service"
	"github.com/vendly/vendly/pkg/db"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type stubBillingService struct {
	webhookOutcome string
	webhookErr     error
	session        *billingdomain.Session
}

func (s *stubBillingService) HandleWebhook(ctx context.Context, payload []byte, headers http.Header) (string, error) {
	return s.webhookOutcome, s.webhookErr
}

func (s *stubBillingService) CreateCheckoutSession(ctx context.Context, orgID int64, req billingdomain.CheckoutSessionRequest) (*billingdomain.Session, error) {
	return s.session, nil
}

func (s *stubBillingService) CreatePortalSession(ctx context.Context, orgID int64, req billingdomain.PortalSessionRequest) (*billingdomain.Session, error) {
	return s.session, nil
}

type serverFixture struct {
	t       *testing.T
	db      *gorm.DB
	node    *snowflake.Node
	server  *Server
	billing *stubBillingService
}

func newServerFixture(t *testing.T) *serverFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dbConn, err := db.NewTest()
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	err = dbConn.AutoMigrate(
		&authdomain.User{},
		&authdomain.Session{},
		&organizationdomain.Organization{},
		&organizationdomain.Member{},
		&plandomain.Plan{},
		&subscriptiondomain.Subscription{},
		&customerdomain.Customer{},
		&productdomain.Product{},
	)
	if err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("failed to create snowflake node: %v", err)
	}

	plans := []plandomain.Plan{
		{ID: node.Generate().Int64(), Name: plandomain.PlanFreemium, MaxProducts: 50, MaxCustomers: 50, Active: true},
		{ID: node.Generate().Int64(), Name: plandomain.PlanPremium, Active: true},
	}
	for i := range plans {
		if err := dbConn.Create(&plans[i]).Error; err != nil {
			t.Fatalf("failed to seed plan: %v", err)
		}
	}

	log := zap.NewNop()
	cfg := config.Config{Environment: "test", LowStockThreshold: 3}

	userRepo, sessionRepo := authrepository.New(dbConn)
	orgRepo := organizationrepository.NewRepository(dbConn)
	subsSvc := subscriptionservice.New(log, subscriptionrepository.New(dbConn), planrepository.New(dbConn), node)

	billing := &stubBillingService{
		webhookOutcome: billingdomain.OutcomeProcessed,
		session:        &billingdomain.Session{ID: "cs_test", URL: "https://checkout.example/cs_test"},
	}

	engine := gin.New()
	engine.Use(ErrorHandlingMiddleware())

	roles := cache.NewRoleCache()
	s := &Server{
		engine:          engine,
		cfg:             cfg,
		log:             log,
		sessions:        session.NewManager(cfg),
		authSvc:         authservice.New(log, userRepo, sessionRepo, node),
		organizationSvc: organizationservice.NewService(dbConn, log, orgRepo, node),
		customerSvc:     customerservice.New(log, customerrepository.New(dbConn), subsSvc, node),
		subscriptionSvc: subsSvc,
		billingSvc:      billing,
		guards:          guard.NewGuards(orgRepo, subsSvc, roles, nil),
		roleCache:       roles,
		loginLimiter:    ratelimit.NewLoginLimiter(log, cfg),
	}

	s.registerAuthRoutes()
	s.registerAPIRoutes()
	s.registerBillingRoutes()
	s.registerPublicRoutes()
	s.registerUIRoutes()

	return &serverFixture{t: t, db: dbConn, node: node, server: s, billing: billing}
}

func (f *serverFixture) do(req *http.Request) *httptest.ResponseRecorder {
	f.t.Helper()
	rec := httptest.NewRecorder()
	f.server.engine.ServeHTTP(rec, req)
	return rec
}

func jsonRequest(method, target string, body any) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

// signUp registers a user through the HTTP surface and returns the
// session cookie plus the user id.
func (f *serverFixture) signUp(email string) (*http.Cookie, int64) {
	f.t.Helper()

	rec := f.do(jsonRequest(http.MethodPost, "/auth/sign-up", gin.H{
		"email":     email,
		"password":  "hunter2-hunter2",
		"full_name": "Test User",
	}))
	if rec.Code != http.StatusCreated {
		f.t.Fatalf("signup failed with status %d: %s", rec.Code, rec.Body.String())
	}

	var parsed struct {
		User struct {
			ID string `json:"id"`
		} `json:"user"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &parsed); err != nil {
		f.t.Fatalf("failed to decode signup response: %v", err)
	}
	userID, err := strconv.ParseInt(parsed.User.ID, 10, 64)
	if err != nil {
		f.t.Fatalf("unexpected user id %q", parsed.User.ID)
	}

	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == session.DefaultCookieName && cookie.Value != "" {
			return cookie, userID
		}
	}
	f.t.Fatal("signup did not set a session cookie")
	return nil, 0
}

func (f *serverFixture) createOrg(cookie *http.Cookie, name string) int64 {
	f.t.Helper()

	req := jsonRequest(http.MethodPost, "/api/organizations", gin.H{"name": name})
	req.AddCookie(cookie)
	rec := f.do(req)
	if rec.Code != http.StatusCreated {
		f.t.Fatalf("create organization failed with status %d: %s", rec.Code, rec.Body.String())
	}

	var parsed struct {
		Organization struct {
			ID string `json:"id"`
		} `json:"organization"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &parsed); err != nil {
		f.t.Fatalf("failed to decode organization response: %v", err)
	}
	orgID, err := strconv.ParseInt(parsed.Organization.ID, 10, 64)
	if err != nil {
		f.t.Fatalf("unexpected organization id %q", parsed.Organization.ID)
	}
	return orgID
}

func TestSignUpThenMe(t *testing.T) {
	f := newServerFixture(t)
	cookie, _ := f.signUp("owner@example.com")

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req.AddCookie(cookie)
	rec := f.do(req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 from /auth/me, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = f.do(httptest.NewRequest(http.MethodGet, "/auth/me", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without a session, got %d", rec.Code)
	}
}

func TestOrgRoutesRequireMembership(t *testing.T) {
	f := newServerFixture(t)
	ownerCookie, _ := f.signUp("owner@example.com")
	orgID := f.createOrg(ownerCookie, "Warung Maju")
	outsiderCookie, _ := f.signUp("outsider@example.com")
	f.createOrg(outsiderCookie, "Another Shop")

	target := "/api/orgs/" + strconv.FormatInt(orgID, 10) + "/customers"

	req := httptest.NewRequest(http.MethodGet, target, nil)
	req.AddCookie(ownerCookie)
	rec := f.do(req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for a member, got %d: %s", rec.Code, rec.Body.String())
	}

	req = httptest.NewRequest(http.MethodGet, target, nil)
	req.AddCookie(outsiderCookie)
	rec = f.do(req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for a non-member, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestAnonymousOrgRouteRedirectsToLogin(t *testing.T) {
	f := newServerFixture(t)
	ownerCookie, _ := f.signUp("owner@example.com")
	orgID := f.createOrg(ownerCookie, "Warung Maju")

	rec := f.do(httptest.NewRequest(http.MethodGet, "/api/orgs/"+strconv.FormatInt(orgID, 10)+"/customers", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for anonymous request, got %d", rec.Code)
	}
	if rec.Header().Get("Location") != "/auth/sign-in" {
		t.Fatalf("expected sign-in redirect hint, got %q", rec.Header().Get("Location"))
	}
}

func TestPageGuardRedirectsBrowser(t *testing.T) {
	f := newServerFixture(t)

	rec := f.do(httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected 303 for anonymous page load, got %d", rec.Code)
	}
	if rec.Header().Get("Location") != "/auth/sign-in" {
		t.Fatalf("expected redirect to sign-in, got %q", rec.Header().Get("Location"))
	}

	// Signed in but without an organization yet.
	cookie, _ := f.signUp("newbie@example.com")
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookie)
	rec = f.do(req)
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected 303 for org-less user, got %d", rec.Code)
	}
	if rec.Header().Get("Location") != "/no-organizations" {
		t.Fatalf("expected redirect to /no-organizations, got %q", rec.Header().Get("Location"))
	}
}

func TestCustomerCreateAndList(t *testing.T) {
	f := newServerFixture(t)
	cookie, _ := f.signUp("owner@example.com")
	orgID := f.createOrg(cookie, "Warung Maju")
	base := "/api/orgs/" + strconv.FormatInt(orgID, 10)

	req := jsonRequest(http.MethodPost, base+"/customers", gin.H{"name": "Maria", "phone": "0812"})
	req.AddCookie(cookie)
	rec := f.do(req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	req = jsonRequest(http.MethodPost, base+"/customers", gin.H{"name": ""})
	req.AddCookie(cookie)
	rec = f.do(req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for an empty name, got %d: %s", rec.Code, rec.Body.String())
	}

	req = httptest.NewRequest(http.MethodGet, base+"/customers?search=mar", nil)
	req.AddCookie(cookie)
	rec = f.do(req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var listed struct {
		Items []customerdomain.Customer `json:"items"`
		Total int64                     `json:"total"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &listed); err != nil {
		t.Fatalf("failed to decode list response: %v", err)
	}
	if listed.Total != 1 || len(listed.Items) != 1 || listed.Items[0].Name != "Maria" {
		t.Fatalf("unexpected list response: %+v", listed)
	}
}

func TestCheckoutSessionPreflight(t *testing.T) {
	f := newServerFixture(t)

	rec := f.do(httptest.NewRequest(http.MethodOptions, "/billing/checkout-session", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for preflight, got %d", rec.Code)
	}
	if rec.Header().Get("Access-Control-Allow-Origin") == "" {
		t.Fatal("expected CORS headers on preflight response")
	}
}

func TestCheckoutSessionRejectsNonPost(t *testing.T) {
	f := newServerFixture(t)

	rec := f.do(httptest.NewRequest(http.MethodGet, "/billing/checkout-session", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rec.Code)
	}
}

func TestCheckoutSessionMissingFields(t *testing.T) {
	f := newServerFixture(t)

	rec := f.do(jsonRequest(http.MethodPost, "/billing/checkout-session", gin.H{"email": "owner@example.com"}))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing fields, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestCheckoutSessionForMember(t *testing.T) {
	f := newServerFixture(t)
	cookie, _ := f.signUp("owner@example.com")
	orgID := f.createOrg(cookie, "Warung Maju")

	req := jsonRequest(http.MethodPost, "/billing/checkout-session", gin.H{
		"org_id":      strconv.FormatInt(orgID, 10),
		"price_id":    "price_123",
		"email":       "owner@example.com",
		"success_url": "https://app.example/billing/success",
		"cancel_url":  "https://app.example/billing",
	})
	req.AddCookie(cookie)
	rec := f.do(req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var sess billingdomain.Session
	if err := json.Unmarshal(rec.Body.Bytes(), &sess); err != nil {
		t.Fatalf("failed to decode session: %v", err)
	}
	if sess.URL == "" {
		t.Fatalf("expected a session url, got %+v", sess)
	}
}

func TestWebhookBadSignature(t *testing.T) {
	f := newServerFixture(t)
	f.billing.webhookOutcome = ""
	f.billing.webhookErr = billingdomain.ErrInvalidSignature

	req := httptest.NewRequest(http.MethodPost, "/billing/webhooks/stripe", bytes.NewBufferString(`{"type":"invoice.paid"}`))
	rec := f.do(req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for a bad signature, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestPublicProductsPageRequiresFlag(t *testing.T) {
	f := newServerFixture(t)
	cookie, _ := f.signUp("owner@example.com")
	orgID := f.createOrg(cookie, "Warung Maju")

	rec := f.do(httptest.NewRequest(http.MethodGet, "/p/org/"+strconv.FormatInt(orgID, 10)+"/products", nil))
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 while the page is disabled, got %d", rec.Code)
	}
	if rec.Header().Get("Location") != "/unauthorized" {
		t.Fatalf("expected unauthorized redirect hint, got %q", rec.Header().Get("Location"))
	}
}

func TestAdminSubscriptionsList(t *testing.T) {
	f := newServerFixture(t)
	ownerCookie, _ := f.signUp("owner@example.com")
	orgID := f.createOrg(ownerCookie, "Warung Maju")
	base := "/api/orgs/" + strconv.FormatInt(orgID, 10)

	// Reading the subscription provisions the freemium row.
	req := httptest.NewRequest(http.MethodGet, base+"/subscription", nil)
	req.AddCookie(ownerCookie)
	if rec := f.do(req); rec.Code != http.StatusOK {
		t.Fatalf("failed to read subscription: %d: %s", rec.Code, rec.Body.String())
	}

	req = httptest.NewRequest(http.MethodGet, base+"/subscriptions?search=free", nil)
	req.AddCookie(ownerCookie)
	rec := f.do(req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for the admin list, got %d: %s", rec.Code, rec.Body.String())
	}
	var parsed struct {
		Items []struct {
			PlanName string `json:"plan_name"`
		} `json:"items"`
		Total int64 `json:"total"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &parsed); err != nil {
		t.Fatalf("failed to decode list: %v", err)
	}
	if parsed.Total != 1 || len(parsed.Items) != 1 || parsed.Items[0].PlanName != plandomain.PlanFreemium {
		t.Fatalf("expected the freemium row, got %s", rec.Body.String())
	}

	// A plain member is kept off the admin surface.
	memberCookie, memberID := f.signUp("staff@example.com")
	req = jsonRequest(http.MethodPost, base+"/members", gin.H{
		"user_id": strconv.FormatInt(memberID, 10),
		"role":    organizationdomain.RoleUser,
	})
	req.AddCookie(ownerCookie)
	if rec := f.do(req); rec.Code != http.StatusCreated {
		t.Fatalf("failed to add member: %d: %s", rec.Code, rec.Body.String())
	}

	req = httptest.NewRequest(http.MethodGet, base+"/subscriptions", nil)
	req.AddCookie(memberCookie)
	if rec := f.do(req); rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for a non-admin, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestGuardAllowStampsResolvedRole(t *testing.T) {
	f := newServerFixture(t)

	f.server.roleCache.SetRole(7, 11, organizationdomain.RoleAdmin)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	f.server.stampRole(c, guard.Subject{UserID: 11, OrgID: 7})

	role, ok := orgcontext.RoleFromContext(c.Request.Context())
	if !ok || role != organizationdomain.RoleAdmin {
		t.Fatalf("expected the cached role in the request context, got %q (%v)", role, ok)
	}
}
