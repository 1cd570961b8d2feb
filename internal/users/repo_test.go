package users

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/harborline/sms-backend/pkg/db/models"
	"github.com/harborline/sms-backend/pkg/enums"
)

func setupUsersTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	users := `
CREATE TABLE IF NOT EXISTS users (
  id TEXT PRIMARY KEY,
  company_id TEXT NOT NULL,
  email TEXT NOT NULL UNIQUE,
  first_name TEXT NOT NULL,
  last_name TEXT NOT NULL,
  role TEXT NOT NULL,
  is_active INTEGER NOT NULL DEFAULT 1,
  last_login_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(users).Error)
	return db
}

func seedUser(t *testing.T, db *gorm.DB, companyID uuid.UUID, role enums.UserRole, active bool) models.User {
	t.Helper()
	user := models.User{
		ID:        uuid.New(),
		CompanyID: companyID,
		Email:     fmt.Sprintf("%s@harborline.test", uuid.NewString()),
		FirstName: "Test",
		LastName:  "User",
		Role:      role,
		IsActive:  active,
	}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func TestListActiveDecisionMakers(t *testing.T) {
	db := setupUsersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	companyID := uuid.New()
	manager := seedUser(t, db, companyID, enums.UserRoleManager, true)
	admin := seedUser(t, db, companyID, enums.UserRoleAdmin, true)
	superAdmin := seedUser(t, db, companyID, enums.UserRoleSuperAdmin, true)
	seedUser(t, db, companyID, enums.UserRoleTechnician, true)      // wrong role
	seedUser(t, db, companyID, enums.UserRoleManager, false)        // inactive
	seedUser(t, db, uuid.New(), enums.UserRoleManager, true)        // other tenant

	rows, err := repo.ListActiveDecisionMakers(ctx, companyID)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	ids := make([]uuid.UUID, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ID)
	}
	assert.Contains(t, ids, manager.ID)
	assert.Contains(t, ids, admin.ID)
	assert.Contains(t, ids, superAdmin.ID)
}

func TestListActiveDecisionMakersEmptyCompany(t *testing.T) {
	db := setupUsersTestDB(t)
	repo := NewRepository(db)

	rows, err := repo.ListActiveDecisionMakers(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestFindByID(t *testing.T) {
	db := setupUsersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	user := seedUser(t, db, uuid.New(), enums.UserRoleTechnician, true)

	found, err := repo.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.Email, found.Email)

	_, err = repo.FindByID(ctx, uuid.New())
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
