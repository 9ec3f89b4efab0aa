package guard

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/vendly/vendly/internal/cache"
	organizationdomain "github.com/vendly/vendly/internal/organization/domain"
	organizationrepository "github.com/vendly/vendly/internal/organization/repository"
	plandomain "github.com/vendly/vendly/internal/plan/domain"
	planrepository "github.com/vendly/vendly/internal/plan/repository"
	subscriptiondomain "github.com/vendly/vendly/internal/subscription/domain"
	subscriptionrepository "github.com/vendly/vendly/internal/subscription/repository"
	subscriptionservice "github.com/vendly/vendly/internal/subscription/service"
	"github.com/vendly/vendly/pkg/db"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type denialCounter struct {
	byPredicate map[string]int
}

func (c *denialCounter) RecordGuardDenial(predicate string) {
	if c.byPredicate == nil {
		c.byPredicate = map[string]int{}
	}
	c.byPredicate[predicate]++
}

type stubPredicate struct {
	name     string
	decision Decision
	err      error
	calls    int
}

func (p *stubPredicate) Name() string { return p.name }

func (p *stubPredicate) Check(ctx context.Context, subject Subject) (Decision, error) {
	p.calls++
	return p.decision, p.err
}

type guardFixture struct {
	t             *testing.T
	db            *gorm.DB
	node          *snowflake.Node
	orgs          organizationdomain.Repository
	subs          subscriptiondomain.Service
	roles         cache.RoleCache
	premiumPlanID int64
}

func newGuardFixture(t *testing.T) *guardFixture {
	t.Helper()

	dbConn, err := db.NewTest()
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	err = dbConn.AutoMigrate(
		&organizationdomain.Organization{},
		&organizationdomain.Member{},
		&plandomain.Plan{},
		&subscriptiondomain.Subscription{},
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

	return &guardFixture{
		t:             t,
		db:            dbConn,
		node:          node,
		orgs:          organizationrepository.NewRepository(dbConn),
		subs:          subscriptionservice.New(zap.NewNop(), subscriptionrepository.New(dbConn), planrepository.New(dbConn), node),
		roles:         cache.NewRoleCache(),
		premiumPlanID: plans[1].ID,
	}
}

func (f *guardFixture) createOrg(publicProducts bool) int64 {
	f.t.Helper()
	id := f.node.Generate().Int64()
	org := organizationdomain.Organization{
		ID:                        id,
		Name:                      "Vendly Test",
		Slug:                      fmt.Sprintf("vendly-test-%d", id),
		PublicProductsPageEnabled: publicProducts,
	}
	if err := f.orgs.CreateOrganization(context.Background(), org); err != nil {
		f.t.Fatalf("failed to create organization: %v", err)
	}
	return org.ID
}

func (f *guardFixture) addMember(orgID, userID int64, role string) {
	f.t.Helper()
	member := organizationdomain.Member{
		ID:     f.node.Generate().Int64(),
		OrgID:  orgID,
		UserID: userID,
		Role:   role,
	}
	if err := f.orgs.AddMember(context.Background(), member); err != nil {
		f.t.Fatalf("failed to add member: %v", err)
	}
}

func (f *guardFixture) makePremium(orgID int64) {
	f.t.Helper()
	sub := subscriptiondomain.Subscription{
		ID:     f.node.Generate().Int64(),
		OrgID:  orgID,
		PlanID: f.premiumPlanID,
		Status: "active",
	}
	if err := f.db.Create(&sub).Error; err != nil {
		f.t.Fatalf("failed to seed subscription: %v", err)
	}
}

func TestPipelineFirstDenyWins(t *testing.T) {
	recorder := &denialCounter{}
	first := &stubPredicate{name: "first", decision: Allowed()}
	second := &stubPredicate{name: "second", decision: Decision{Status: 403}}
	third := &stubPredicate{name: "third", decision: Allowed()}

	pipeline := NewPipeline(recorder, first, second, third)
	decision, err := pipeline.Evaluate(context.Background(), Subject{UserID: 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if decision.Allow {
		t.Fatal("expected denial")
	}
	if decision.Predicate != "second" {
		t.Fatalf("expected denial from second predicate, got %q", decision.Predicate)
	}
	if third.calls != 0 {
		t.Fatalf("expected later predicates to be skipped, third ran %d times", third.calls)
	}
	if recorder.byPredicate["second"] != 1 {
		t.Fatalf("expected one recorded denial for second, got %d", recorder.byPredicate["second"])
	}
}

func TestPipelineSurfacesEvaluationErrors(t *testing.T) {
	boom := errors.New("membership read failed")
	pipeline := NewPipeline(nil, &stubPredicate{name: "broken", err: boom})

	_, err := pipeline.Evaluate(context.Background(), Subject{UserID: 1})
	if !errors.Is(err, boom) {
		t.Fatalf("expected evaluation error to surface, got %v", err)
	}
}

func TestPipelineDefaultsDenialStatus(t *testing.T) {
	pipeline := NewPipeline(nil, &stubPredicate{name: "bare", decision: Decision{}})

	decision, err := pipeline.Evaluate(context.Background(), Subject{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if decision.Status != 403 {
		t.Fatalf("expected default 403, got %d", decision.Status)
	}
}

func TestRequiresAuthRedirectsAnonymous(t *testing.T) {
	pipeline := NewPipeline(nil, RequiresAuth{})

	decision, err := pipeline.Evaluate(context.Background(), Subject{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if decision.Allow || decision.RedirectTo != "/auth/sign-in" {
		t.Fatalf("expected redirect to the sign-in page, got %+v", decision)
	}
}

func TestRedirectIfLoggedIn(t *testing.T) {
	pipeline := NewPipeline(nil, RedirectIfLoggedIn{})

	decision, err := pipeline.Evaluate(context.Background(), Subject{UserID: 7})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if decision.Allow || decision.RedirectTo != "/" {
		t.Fatalf("expected redirect home for logged-in user, got %+v", decision)
	}

	decision, err = pipeline.Evaluate(context.Background(), Subject{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !decision.Allow {
		t.Fatalf("expected anonymous user to pass, got %+v", decision)
	}
}

func TestRequiresOrganizationRedirectsWithoutMembership(t *testing.T) {
	f := newGuardFixture(t)
	pipeline := NewPipeline(nil, RequiresOrganization{Orgs: f.orgs})

	decision, err := pipeline.Evaluate(context.Background(), Subject{UserID: 7})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if decision.Allow || decision.RedirectTo != "/no-organizations" {
		t.Fatalf("expected redirect to organization creation, got %+v", decision)
	}

	orgID := f.createOrg(false)
	f.addMember(orgID, 7, organizationdomain.RoleUser)

	decision, err = pipeline.Evaluate(context.Background(), Subject{UserID: 7})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !decision.Allow {
		t.Fatalf("expected member to pass, got %+v", decision)
	}
}

func TestBelongsToOrganizationDeniesOutsiders(t *testing.T) {
	f := newGuardFixture(t)
	orgID := f.createOrg(false)
	f.addMember(orgID, 7, organizationdomain.RoleUser)

	pipeline := NewPipeline(nil, BelongsToOrganization{Orgs: f.orgs})

	decision, err := pipeline.Evaluate(context.Background(), Subject{UserID: 99, OrgID: orgID})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if decision.Allow || decision.Status != 403 {
		t.Fatalf("expected 403 for non-member, got %+v", decision)
	}

	decision, err = pipeline.Evaluate(context.Background(), Subject{UserID: 7, OrgID: orgID})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !decision.Allow {
		t.Fatalf("expected member to pass, got %+v", decision)
	}
}

func TestHasAdminRole(t *testing.T) {
	f := newGuardFixture(t)
	orgID := f.createOrg(false)
	f.addMember(orgID, 7, organizationdomain.RoleAdmin)
	f.addMember(orgID, 8, organizationdomain.RoleUser)

	pipeline := NewPipeline(nil, HasAdminRole{Orgs: f.orgs, Roles: f.roles})

	decision, err := pipeline.Evaluate(context.Background(), Subject{UserID: 7, OrgID: orgID})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !decision.Allow {
		t.Fatalf("expected admin to pass, got %+v", decision)
	}

	decision, err = pipeline.Evaluate(context.Background(), Subject{UserID: 8, OrgID: orgID})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if decision.Allow || decision.Status != 403 {
		t.Fatalf("expected 403 for non-admin, got %+v", decision)
	}

	decision, err = pipeline.Evaluate(context.Background(), Subject{UserID: 99, OrgID: orgID})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if decision.Allow || decision.Status != 403 {
		t.Fatalf("expected 403 for stranger, got %+v", decision)
	}
}

func TestHasAdminRoleUsesCachedRole(t *testing.T) {
	f := newGuardFixture(t)
	orgID := f.createOrg(false)
	f.addMember(orgID, 7, organizationdomain.RoleAdmin)

	pipeline := NewPipeline(nil, HasAdminRole{Orgs: f.orgs, Roles: f.roles})

	decision, err := pipeline.Evaluate(context.Background(), Subject{UserID: 7, OrgID: orgID})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !decision.Allow {
		t.Fatalf("expected admin to pass, got %+v", decision)
	}

	// The membership row is gone but the cached role still admits the
	// user until the entry expires.
	err = f.db.Where("org_id = ? AND user_id = ?", orgID, int64(7)).
		Delete(&organizationdomain.Member{}).Error
	if err != nil {
		t.Fatalf("failed to delete member: %v", err)
	}

	decision, err = pipeline.Evaluate(context.Background(), Subject{UserID: 7, OrgID: orgID})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !decision.Allow {
		t.Fatalf("expected cached role to pass, got %+v", decision)
	}

	f.roles.Invalidate(orgID, 7)

	decision, err = pipeline.Evaluate(context.Background(), Subject{UserID: 7, OrgID: orgID})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if decision.Allow {
		t.Fatalf("expected denial after cache invalidation, got %+v", decision)
	}
}

func TestPublicProductsPageGate(t *testing.T) {
	f := newGuardFixture(t)
	pipeline := NewPipeline(nil, RequiresPublicProductsPageEnabled{Orgs: f.orgs, Subs: f.subs})

	// Unknown organizations 404 rather than reveal their absence.
	decision, err := pipeline.Evaluate(context.Background(), Subject{OrgID: 12345})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if decision.Allow || decision.Status != 404 {
		t.Fatalf("expected 404 for unknown org, got %+v", decision)
	}

	flagOff := f.createOrg(false)
	decision, err = pipeline.Evaluate(context.Background(), Subject{OrgID: flagOff})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if decision.Allow || decision.RedirectTo != "/unauthorized" {
		t.Fatalf("expected unauthorized redirect when the flag is off, got %+v", decision)
	}

	freemium := f.createOrg(true)
	decision, err = pipeline.Evaluate(context.Background(), Subject{OrgID: freemium})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if decision.Allow || decision.RedirectTo != "/unauthorized" {
		t.Fatalf("expected unauthorized redirect for a freemium plan, got %+v", decision)
	}

	premium := f.createOrg(true)
	f.makePremium(premium)
	decision, err = pipeline.Evaluate(context.Background(), Subject{OrgID: premium})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !decision.Allow {
		t.Fatalf("expected premium org with flag on to pass, got %+v", decision)
	}
}
