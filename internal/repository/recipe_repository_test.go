package repository

import (
	"context"
	"path/filepath"
	"testing"

	"recipehub/internal/authz"
	"recipehub/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Recipe{},
		&models.Rating{},
		&models.RefreshToken{},
	))
	return db
}

type visibilityFixture struct {
	db    *gorm.DB
	repo  RecipeRepository
	alice models.User
	bob   models.User

	alicePending  models.Recipe
	aliceApproved models.Recipe
	aliceDeclined models.Recipe
	bobApproved   models.Recipe
	bobPending    models.Recipe
}

// newVisibilityFixture seeds two authors with recipes in every status.
func newVisibilityFixture(t *testing.T) *visibilityFixture {
	t.Helper()
	db := openTestDB(t)

	f := &visibilityFixture{db: db, repo: NewRecipeRepository(db)}

	f.alice = models.User{Username: "alice", Email: "alice@example.com", Password: "x"}
	f.bob = models.User{Username: "bob", Email: "bob@example.com", Password: "x"}
	require.NoError(t, db.Create(&f.alice).Error)
	require.NoError(t, db.Create(&f.bob).Error)

	seed := func(dst *models.Recipe, title, authorID, status string) {
		*dst = models.Recipe{Title: title, AuthorID: authorID, Status: status}
		require.NoError(t, db.Create(dst).Error)
	}
	seed(&f.alicePending, "alice pending", f.alice.ID, models.StatusPending)
	seed(&f.aliceApproved, "alice approved", f.alice.ID, models.StatusApproved)
	seed(&f.aliceDeclined, "alice declined", f.alice.ID, models.StatusDeclined)
	seed(&f.bobApproved, "bob approved", f.bob.ID, models.StatusApproved)
	seed(&f.bobPending, "bob pending", f.bob.ID, models.StatusPending)

	return f
}

func asUser(u models.User) *authz.Identity {
	return &authz.Identity{ID: u.ID, Role: authz.RoleUser}
}

func titles(recipes []models.Recipe) []string {
	out := make([]string, 0, len(recipes))
	for _, r := range recipes {
		out = append(out, r.Title)
	}
	return out
}

func TestRecipeList_AnonymousSeesApprovedOnly(t *testing.T) {
	f := newVisibilityFixture(t)

	recipes, err := f.repo.List(context.Background(), nil)

	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"alice approved", "bob approved"}, titles(recipes))
}

func TestRecipeList_OwnerSeesOwnAnyStatusPlusOthersApproved(t *testing.T) {
	f := newVisibilityFixture(t)

	recipes, err := f.repo.List(context.Background(), asUser(f.alice))

	require.NoError(t, err)
	assert.ElementsMatch(t, []string{
		"alice pending", "alice approved", "alice declined", "bob approved",
	}, titles(recipes))
}

func TestRecipeList_NonOwnerDoesNotSeeOthersPending(t *testing.T) {
	f := newVisibilityFixture(t)

	recipes, err := f.repo.List(context.Background(), asUser(f.bob))

	require.NoError(t, err)
	assert.ElementsMatch(t, []string{
		"alice approved", "bob approved", "bob pending",
	}, titles(recipes))
}

func TestRecipeList_AdminSeesEveryStatus(t *testing.T) {
	f := newVisibilityFixture(t)
	admin := &authz.Identity{ID: "admin-1", Role: authz.RoleAdmin}

	recipes, err := f.repo.List(context.Background(), admin)

	require.NoError(t, err)
	assert.Len(t, recipes, 5)
}

func TestRecipeGetByID_OutOfScopeReadsAsMissing(t *testing.T) {
	f := newVisibilityFixture(t)

	_, err := f.repo.GetByID(context.Background(), f.alicePending.ID, nil)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	_, err = f.repo.GetByID(context.Background(), f.aliceDeclined.ID, asUser(f.bob))
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRecipeGetByID_OwnerReadsOwnDeclined(t *testing.T) {
	f := newVisibilityFixture(t)

	recipe, err := f.repo.GetByID(context.Background(), f.aliceDeclined.ID, asUser(f.alice))

	require.NoError(t, err)
	assert.Equal(t, "alice declined", recipe.Title)
	assert.Equal(t, "alice", recipe.Author.Username)
}

func TestRecipeGetByID_AdminReadsAnyStatus(t *testing.T) {
	f := newVisibilityFixture(t)
	admin := &authz.Identity{ID: "admin-1", Role: authz.RoleSuperAdmin}

	recipe, err := f.repo.GetByID(context.Background(), f.bobPending.ID, admin)

	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, recipe.Status)
}

func TestRecipeGetByID_AnonymousReadsApprovedWithRatings(t *testing.T) {
	f := newVisibilityFixture(t)

	require.NoError(t, NewRatingRepository(f.db).Upsert(context.Background(), &models.Rating{
		RecipeID: f.aliceApproved.ID,
		UserID:   f.bob.ID,
		Score:    5,
	}))

	recipe, err := f.repo.GetByID(context.Background(), f.aliceApproved.ID, nil)

	require.NoError(t, err)
	require.Len(t, recipe.Ratings, 1)
	assert.Equal(t, "bob", recipe.Ratings[0].User.Username)
}
