package guard

import (
	"github.com/vendly/vendly/internal/cache"
	"github.com/vendly/vendly/internal/observability/metrics"
	organizationdomain "github.com/vendly/vendly/internal/organization/domain"
	subscriptiondomain "github.com/vendly/vendly/internal/subscription/domain"
	"go.uber.org/fx"
)

var Module = fx.Module("guard",
	fx.Provide(NewGuards),
)

// Guards bundles the pipelines the HTTP layer attaches to route groups.
type Guards struct {
	Guest          *Pipeline
	App            *Pipeline
	Org            *Pipeline
	Admin          *Pipeline
	PublicProducts *Pipeline
}

func NewGuards(
	orgs organizationdomain.Repository,
	subs subscriptiondomain.Service,
	roles cache.RoleCache,
	m *metrics.Metrics,
) *Guards {
	return &Guards{
		Guest: NewPipeline(m,
			RedirectIfLoggedIn{},
		),
		App: NewPipeline(m,
			RequiresAuth{},
			RequiresOrganization{Orgs: orgs},
		),
		Org: NewPipeline(m,
			RequiresAuth{},
			RequiresOrganization{Orgs: orgs},
			BelongsToOrganization{Orgs: orgs},
		),
		Admin: NewPipeline(m,
			RequiresAuth{},
			RequiresOrganization{Orgs: orgs},
			BelongsToOrganization{Orgs: orgs},
			HasAdminRole{Orgs: orgs, Roles: roles},
		),
		PublicProducts: NewPipeline(m,
			RequiresPublicProductsPageEnabled{Orgs: orgs, Subs: subs},
		),
	}
}
