// Package seed bootstraps reference data so a fresh install is usable.
package seed

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	authdomain "github.com/vendly/vendly/internal/auth/domain"
	"github.com/vendly/vendly/internal/auth/password"
	organizationdomain "github.com/vendly/vendly/internal/organization/domain"
	plandomain "github.com/vendly/vendly/internal/plan/domain"
	"gorm.io/gorm"
)

const (
	defaultOrgName       = "Main"
	defaultOrgSlug       = "main"
	defaultAdminEmail    = "admin@vendly.local"
	defaultAdminPassword = "admin"
	defaultAdminName     = "Vendly Admin"

	freemiumMaxProducts  = 30
	freemiumMaxCustomers = 100
)

// EnsurePlans seeds the freemium and premium plans. Zero limits mean unlimited.
func EnsurePlans(db *gorm.DB) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	ctx := context.Background()
	plans := []plandomain.Plan{
		{
			Name:         plandomain.PlanFreemium,
			Amount:       0,
			Currency:     "usd",
			Interval:     "month",
			MaxProducts:  freemiumMaxProducts,
			MaxCustomers: freemiumMaxCustomers,
			Active:       true,
		},
		{
			Name:         plandomain.PlanPremium,
			Amount:       990,
			Currency:     "usd",
			Interval:     "month",
			MaxProducts:  0,
			MaxCustomers: 0,
			Active:       true,
		},
	}

	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, plan := range plans {
			var existing plandomain.Plan
			err := tx.WithContext(ctx).Where("name = ?", plan.Name).First(&existing).Error
			if err == nil {
				continue
			}
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}

			now := time.Now().UTC()
			plan.ID = node.Generate().Int64()
			plan.CreatedAt = now
			plan.UpdatedAt = now
			if err := tx.WithContext(ctx).Create(&plan).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// EnsureMainOrgAndAdmin seeds a default organization with an admin user for
// self-hosted installs.
func EnsureMainOrgAndAdmin(db *gorm.DB) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		org, err := ensureMainOrgTx(ctx, tx, node)
		if err != nil {
			return err
		}

		var user authdomain.User
		err = tx.WithContext(ctx).
			Where("email = ?", strings.ToLower(defaultAdminEmail)).
			First(&user).Error
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			hashed, err := password.Hash(defaultAdminPassword)
			if err != nil {
				return err
			}
			now := time.Now().UTC()
			user = authdomain.User{
				ID:           node.Generate().Int64(),
				Email:        strings.ToLower(defaultAdminEmail),
				PasswordHash: hashed,
				FullName:     defaultAdminName,
				CreatedAt:    now,
				UpdatedAt:    now,
			}
			if err := tx.WithContext(ctx).Create(&user).Error; err != nil {
				return err
			}
		}

		var member organizationdomain.Member
		err = tx.WithContext(ctx).
			Where("org_id = ? AND user_id = ?", org.ID, user.ID).
			First(&member).Error
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		member = organizationdomain.Member{
			ID:        node.Generate().Int64(),
			OrgID:     org.ID,
			UserID:    user.ID,
			Role:      organizationdomain.RoleAdmin,
			CreatedAt: time.Now().UTC(),
		}
		return tx.WithContext(ctx).Create(&member).Error
	})
}

func ensureMainOrgTx(ctx context.Context, tx *gorm.DB, node *snowflake.Node) (*organizationdomain.Organization, error) {
	var org organizationdomain.Organization
	err := tx.WithContext(ctx).Where("slug = ?", defaultOrgSlug).First(&org).Error
	if err == nil {
		return &org, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	now := time.Now().UTC()
	org = organizationdomain.Organization{
		ID:        node.Generate().Int64(),
		Name:      defaultOrgName,
		Slug:      defaultOrgSlug,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := tx.WithContext(ctx).Create(&org).Error; err != nil {
		return nil, err
	}
	return &org, nil
}
