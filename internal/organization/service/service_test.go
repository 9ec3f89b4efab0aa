package service

import (
	"context"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/vendly/vendly/internal/organization/domain"
	"github.com/vendly/vendly/internal/organization/repository"
	"github.com/vendly/vendly/pkg/db"
	"go.uber.org/zap"
)

func newTestService(t *testing.T) domain.Service {
	t.Helper()

	dbConn, err := db.NewTest()
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	if err := dbConn.AutoMigrate(&domain.Organization{}, &domain.Member{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("failed to create snowflake node: %v", err)
	}

	return NewService(dbConn, zap.NewNop(), repository.NewRepository(dbConn), node)
}

func TestCreateAssignsAdminRole(t *testing.T) {
	svc := newTestService(t)

	org, err := svc.Create(context.Background(), 42, domain.CreateOrganizationRequest{Name: "Corner Shop"})
	if err != nil {
		t.Fatalf("failed to create org: %v", err)
	}
	if org.Slug != "corner-shop" {
		t.Fatalf("expected slug corner-shop, got %s", org.Slug)
	}

	role, err := svc.MemberRole(context.Background(), org.ID, 42)
	if err != nil {
		t.Fatalf("failed to get role: %v", err)
	}
	if role != domain.RoleAdmin {
		t.Fatalf("expected admin role, got %s", role)
	}
}

func TestCreateDuplicateNameGetsUniqueSlug(t *testing.T) {
	svc := newTestService(t)

	first, err := svc.Create(context.Background(), 1, domain.CreateOrganizationRequest{Name: "Shop"})
	if err != nil {
		t.Fatalf("failed to create first org: %v", err)
	}
	second, err := svc.Create(context.Background(), 1, domain.CreateOrganizationRequest{Name: "Shop"})
	if err != nil {
		t.Fatalf("failed to create second org: %v", err)
	}
	if first.Slug == second.Slug {
		t.Fatalf("expected distinct slugs, both were %s", first.Slug)
	}
}

func TestMemberRoleForNonMember(t *testing.T) {
	svc := newTestService(t)

	org, err := svc.Create(context.Background(), 1, domain.CreateOrganizationRequest{Name: "Shop"})
	if err != nil {
		t.Fatalf("failed to create org: %v", err)
	}

	_, err = svc.MemberRole(context.Background(), org.ID, 99)
	if err != domain.ErrNotMember {
		t.Fatalf("expected ErrNotMember, got %v", err)
	}
}

func TestListOrganizationsByUser(t *testing.T) {
	svc := newTestService(t)

	if _, err := svc.Create(context.Background(), 7, domain.CreateOrganizationRequest{Name: "Alpha"}); err != nil {
		t.Fatalf("failed to create org: %v", err)
	}
	if _, err := svc.Create(context.Background(), 7, domain.CreateOrganizationRequest{Name: "Beta"}); err != nil {
		t.Fatalf("failed to create org: %v", err)
	}
	if _, err := svc.Create(context.Background(), 8, domain.CreateOrganizationRequest{Name: "Gamma"}); err != nil {
		t.Fatalf("failed to create org: %v", err)
	}

	items, err := svc.ListOrganizationsByUser(context.Background(), 7)
	if err != nil {
		t.Fatalf("failed to list orgs: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 orgs, got %d", len(items))
	}
}

func TestUpdateSettingsTogglesPublicPage(t *testing.T) {
	svc := newTestService(t)

	org, err := svc.Create(context.Background(), 1, domain.CreateOrganizationRequest{Name: "Shop"})
	if err != nil {
		t.Fatalf("failed to create org: %v", err)
	}
	if org.PublicProductsPageEnabled {
		t.Fatal("expected public page disabled by default")
	}

	enabled := true
	updated, err := svc.UpdateSettings(context.Background(), org.ID, domain.UpdateSettingsRequest{
		PublicProductsPageEnabled: &enabled,
	})
	if err != nil {
		t.Fatalf("failed to update settings: %v", err)
	}
	if !updated.PublicProductsPageEnabled {
		t.Fatal("expected public page enabled")
	}
}
