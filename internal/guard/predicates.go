package guard

import (
	"context"
	"errors"
	"net/http"

	"github.com/vendly/vendly/internal/cache"
	organizationdomain "github.com/vendly/vendly/internal/organization/domain"
	subscriptiondomain "github.com/vendly/vendly/internal/subscription/domain"
)

// RequiresAuth denies anonymous subjects with a redirect to the login
// page.
type RequiresAuth struct{}

func (RequiresAuth) Name() string { return "requires_auth" }

func (RequiresAuth) Check(ctx context.Context, subject Subject) (Decision, error) {
	if subject.UserID == 0 {
		return Decision{RedirectTo: "/auth/sign-in", Status: http.StatusUnauthorized}, nil
	}
	return Allowed(), nil
}

// RedirectIfLoggedIn keeps authenticated users away from guest-only
// pages such as login and signup.
type RedirectIfLoggedIn struct{}

func (RedirectIfLoggedIn) Name() string { return "redirect_if_logged_in" }

func (RedirectIfLoggedIn) Check(ctx context.Context, subject Subject) (Decision, error) {
	if subject.UserID != 0 {
		return Decision{RedirectTo: "/"}, nil
	}
	return Allowed(), nil
}

// RequiresOrganization loads the subject's organization list before
// deciding, so a slow membership read never produces a spurious
// redirect, and denies users without any organization.
type RequiresOrganization struct {
	Orgs organizationdomain.Repository
}

func (RequiresOrganization) Name() string { return "requires_organization" }

func (p RequiresOrganization) Check(ctx context.Context, subject Subject) (Decision, error) {
	memberships, err := p.Orgs.ListOrganizationsByUser(ctx, subject.UserID)
	if err != nil {
		return Decision{}, err
	}
	if len(memberships) == 0 {
		return Decision{RedirectTo: "/no-organizations"}, nil
	}
	return Allowed(), nil
}

// BelongsToOrganization denies subjects that are not members of the
// organization addressed by the route.
type BelongsToOrganization struct {
	Orgs organizationdomain.Repository
}

func (BelongsToOrganization) Name() string { return "belongs_to_organization" }

func (p BelongsToOrganization) Check(ctx context.Context, subject Subject) (Decision, error) {
	if subject.OrgID == 0 {
		return Decision{RedirectTo: "/unauthorized", Status: http.StatusForbidden}, nil
	}
	member, err := p.Orgs.IsMember(ctx, subject.OrgID, subject.UserID)
	if err != nil {
		return Decision{}, err
	}
	if !member {
		return Decision{RedirectTo: "/unauthorized", Status: http.StatusForbidden}, nil
	}
	return Allowed(), nil
}

// HasAdminRole requires the admin role within the organization. A
// successful lookup is cached so repeated admin requests skip the
// membership query.
type HasAdminRole struct {
	Orgs  organizationdomain.Repository
	Roles cache.RoleCache
}

func (HasAdminRole) Name() string { return "has_admin_role" }

func (p HasAdminRole) Check(ctx context.Context, subject Subject) (Decision, error) {
	if subject.OrgID == 0 {
		return Decision{RedirectTo: "/unauthorized", Status: http.StatusForbidden}, nil
	}

	role, ok := p.Roles.GetRole(subject.OrgID, subject.UserID)
	if !ok {
		var err error
		role, err = p.Orgs.GetMemberRole(ctx, subject.OrgID, subject.UserID)
		if errors.Is(err, organizationdomain.ErrNotMember) {
			return Decision{RedirectTo: "/unauthorized", Status: http.StatusForbidden}, nil
		}
		if err != nil {
			return Decision{}, err
		}
		p.Roles.SetRole(subject.OrgID, subject.UserID, role)
	}

	if role != organizationdomain.RoleAdmin {
		return Decision{RedirectTo: "/unauthorized", Status: http.StatusForbidden}, nil
	}
	return Allowed(), nil
}

// RequiresPublicProductsPageEnabled gates the public products page: the
// organization must have the flag on and the plan must allow it.
type RequiresPublicProductsPageEnabled struct {
	Orgs organizationdomain.Repository
	Subs subscriptiondomain.Service
}

func (RequiresPublicProductsPageEnabled) Name() string { return "requires_public_products_page" }

func (p RequiresPublicProductsPageEnabled) Check(ctx context.Context, subject Subject) (Decision, error) {
	org, err := p.Orgs.GetByID(ctx, subject.OrgID)
	if errors.Is(err, organizationdomain.ErrInvalidOrganization) {
		return Decision{Status: http.StatusNotFound}, nil
	}
	if err != nil {
		return Decision{}, err
	}
	if !org.PublicProductsPageEnabled {
		return Decision{RedirectTo: "/unauthorized", Status: http.StatusForbidden}, nil
	}

	ent, err := p.Subs.Entitlements(ctx, subject.OrgID)
	if err != nil {
		return Decision{}, err
	}
	if !ent.CanEnablePublicProductsPage() {
		return Decision{RedirectTo: "/unauthorized", Status: http.StatusForbidden}, nil
	}
	return Allowed(), nil
}
