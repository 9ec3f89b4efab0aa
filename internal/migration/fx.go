package migration

import (
	"strings"

	"github.com/vendly/vendly/internal/analytics"
	authdomain "github.com/vendly/vendly/internal/auth/domain"
	"github.com/vendly/vendly/internal/config"
	customerdomain "github.com/vendly/vendly/internal/customer/domain"
	organizationdomain "github.com/vendly/vendly/internal/organization/domain"
	plandomain "github.com/vendly/vendly/internal/plan/domain"
	productdomain "github.com/vendly/vendly/internal/product/domain"
	purchasedomain "github.com/vendly/vendly/internal/purchase/domain"
	saledomain "github.com/vendly/vendly/internal/sale/domain"
	"github.com/vendly/vendly/internal/seed"
	subscriptiondomain "github.com/vendly/vendly/internal/subscription/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config, log *zap.Logger) error {
		if strings.EqualFold(cfg.DBType, "postgres") {
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			version, err := RunMigrations(sqlDB)
			if err != nil {
				return err
			}
			log.Info("database schema is up to date", zap.Uint("version", version))
		} else {
			if err := AutoMigrate(conn); err != nil {
				return err
			}
		}

		return seed.EnsurePlans(conn)
	}),
)

// AutoMigrate creates the schema from the model definitions. The embedded SQL
// migrations are postgres-only, so other dialects go through GORM.
func AutoMigrate(conn *gorm.DB) error {
	return conn.AutoMigrate(
		&authdomain.User{},
		&authdomain.Session{},
		&organizationdomain.Organization{},
		&organizationdomain.Member{},
		&plandomain.Plan{},
		&subscriptiondomain.Subscription{},
		&customerdomain.Customer{},
		&productdomain.Product{},
		&saledomain.Sale{},
		&saledomain.SaleProduct{},
		&purchasedomain.Purchase{},
		&analytics.PageView{},
	)
}
