package seed

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eduhealth/schoolhealth/internal/app/models"
	"github.com/eduhealth/schoolhealth/internal/app/repositories/memstore"
)

func TestCreateDefaultData_IsRepeatable(t *testing.T) {
	store := memstore.New()
	stores := Stores{Users: store.Users(), Students: store.Students(), Classes: store.Classes()}
	opts := Options{AdminEmail: "admin@school.edu", AdminPassword: "Admin12345", Grades: 2, ClassesPerGrade: 2}
	ctx := context.Background()

	require.NoError(t, CreateDefaultData(ctx, stores, opts, zerolog.Nop()))
	require.NoError(t, CreateDefaultData(ctx, stores, opts, zerolog.Nop()))

	admin, err := store.Users().GetByEmail(ctx, "admin@school.edu")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, admin.RoleType)

	classes, err := store.Classes().List(ctx)
	require.NoError(t, err)
	names := make([]string, 0, len(classes))
	for _, c := range classes {
		names = append(names, c.Name)
	}
	assert.ElementsMatch(t, []string{"1A", "1B", "2A", "2B"}, names)
}

func TestCreateDefaultData_SkipsAdminWithoutPassword(t *testing.T) {
	store := memstore.New()
	stores := Stores{Users: store.Users(), Students: store.Students(), Classes: store.Classes()}

	require.NoError(t, CreateDefaultData(context.Background(), stores, Options{AdminEmail: "admin@school.edu"}, zerolog.Nop()))

	users, err := store.Users().ListByRole(context.Background(), models.RoleAdmin)
	require.NoError(t, err)
	assert.Empty(t, users)
}
