package db

import (
	"fmt"
	"strings"

	"github.com/diewo77/go-repairs/internal/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// SeedOptions controls the optional bootstrap administrator.
type SeedOptions struct {
	AdminEmail    string
	AdminPassword string
}

// Seed creates permissions, the system profiles and, when configured, an admin account.
func Seed(db *gorm.DB, opts SeedOptions) error {
	if err := SeedProfiles(db); err != nil {
		return err
	}
	if opts.AdminEmail != "" && opts.AdminPassword != "" {
		if _, err := SeedUser(db, opts.AdminEmail, "Administrator", opts.AdminPassword, "admin"); err != nil {
			return err
		}
	}
	return nil
}

var permissions = []struct {
	ResourceType string
	Action       string
	Description  string
}{
	{"*", "*", "Full system access"},
	{"shop", "staff", "Front desk and managing staff"},
	{"repair", "*", "All repair actions"},
	{"repair", "list", "List repairs"},
	{"repair", "view", "View repair details and ledger"},
	{"repair", "create", "Book a gadget in for repair"},
	{"repair", "update", "Change status and technician of a repair"},
	{"repair", "assign", "Reassign the technician of a repair"},
	{"repair", "work", "Work on assigned repairs"},
	{"repair_log", "*", "All cost log actions"},
	{"repair_log", "create", "Add cost logs"},
	{"repair_log", "update", "Edit cost logs"},
	{"repair_log", "delete", "Delete cost logs"},
	{"payment", "*", "All payment actions"},
	{"payment", "create", "Record payments"},
	{"payment", "view", "View payments"},
	{"receipt", "*", "All receipt actions"},
	{"receipt", "create", "Issue receipts"},
	{"receipt", "view", "View receipts"},
	{"gadget", "view", "View gadgets"},
	{"report", "view", "View monthly reports"},
	{"user", "*", "All user management"},
	{"user", "list", "List users"},
	{"user", "update", "Assign profiles to users"},
}

var profiles = []struct {
	Name        string
	Description string
	Permissions []string
}{
	{
		Name:        "admin",
		Description: "Full system administrator with all permissions",
		Permissions: []string{"*:*"},
	},
	{
		Name:        "staff",
		Description: "Shop staff: bookings, payments, receipts and reports",
		Permissions: []string{
			"shop:staff",
			"repair:*",
			"repair_log:create",
			"repair_log:update",
			"payment:*",
			"receipt:*",
			"gadget:view",
			"report:view",
		},
	},
	{
		Name:        "secretary",
		Description: "Front desk: bookings, assignment, payments and receipts",
		Permissions: []string{
			"repair:list",
			"repair:view",
			"repair:create",
			"repair:update",
			"repair:assign",
			"repair_log:create",
			"payment:*",
			"receipt:*",
			"gadget:view",
		},
	},
	{
		Name:        "technician",
		Description: "Works on assigned repairs and logs costs",
		Permissions: []string{
			"repair:list",
			"repair:view",
			"repair:work",
			"repair_log:create",
			"repair_log:update",
			"gadget:view",
		},
	},
}

// SeedPermissions creates the core permissions.
func SeedPermissions(db *gorm.DB) error {
	for _, p := range permissions {
		perm := models.Permission{
			ResourceType: p.ResourceType,
			Action:       p.Action,
			Description:  p.Description,
		}
		result := db.Where("resource_type = ? AND action = ?", p.ResourceType, p.Action).
			FirstOrCreate(&perm)
		if result.Error != nil {
			return result.Error
		}
	}
	return nil
}

// SeedProfiles creates the system profiles and (re)assigns their permissions.
func SeedProfiles(db *gorm.DB) error {
	if err := SeedPermissions(db); err != nil {
		return err
	}
	for _, p := range profiles {
		var profile models.Profile
		found := db.Where("name = ?", p.Name).Limit(1).Find(&profile)
		if found.Error != nil {
			return found.Error
		}
		if found.RowsAffected == 0 {
			profile = models.Profile{Name: p.Name, Description: p.Description, IsSystem: true}
			if err := db.Create(&profile).Error; err != nil {
				return err
			}
		}

		var perms []models.Permission
		for _, code := range p.Permissions {
			resource, action, ok := strings.Cut(code, ":")
			if !ok {
				return fmt.Errorf("malformed permission %q", code)
			}
			var perm models.Permission
			if err := db.Where("resource_type = ? AND action = ?", resource, action).First(&perm).Error; err != nil {
				return fmt.Errorf("permission %s: %w", code, err)
			}
			perms = append(perms, perm)
		}
		if err := db.Model(&profile).Association("Permissions").Replace(perms); err != nil {
			return err
		}
	}
	return nil
}

// SeedUser creates a user with a bcrypt-hashed password and the named
// profile. An existing user with the same email is returned unchanged.
func SeedUser(db *gorm.DB, email, name, password, profileName string) (*models.User, error) {
	var user models.User
	found := db.Where("email = ?", email).Limit(1).Find(&user)
	if found.Error != nil {
		return nil, found.Error
	}
	if found.RowsAffected > 0 {
		return &user, nil
	}

	var profile models.Profile
	if err := db.Where("name = ?", profileName).First(&profile).Error; err != nil {
		return nil, fmt.Errorf("profile %s: %w", profileName, err)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	user = models.User{
		Email:     email,
		Name:      name,
		Password:  string(hash),
		Active:    true,
		ProfileID: &profile.ID,
	}
	if err := db.Create(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}
