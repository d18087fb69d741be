package repository

import (
	"context"
	"testing"

	"github.com/ddproperty/ddproperty-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestMessageLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	repo := NewMessageRepository(f.db)

	p, err := f.repo.Create(ctx, f.input("Inquired", 1))
	require.NoError(t, err)

	m := &models.Message{Name: "Somchai", Phone: "0812345678", PropertyID: p.ID}
	require.NoError(t, repo.Create(ctx, m))
	assert.Equal(t, models.MessageNew, m.Status)

	stored, err := repo.FindByID(ctx, m.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.Property)
	assert.Equal(t, p.PropertyCode, stored.Property.PropertyCode)

	updated, err := repo.UpdateStatus(ctx, m.ID, models.MessageContacted)
	require.NoError(t, err)
	assert.Equal(t, models.MessageContacted, updated.Status)

	// same status again is not an error
	_, err = repo.UpdateStatus(ctx, m.ID, models.MessageContacted)
	require.NoError(t, err)

	_, err = repo.UpdateStatus(ctx, 999, models.MessageWon)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestMessageCreateUnknownPropertyFails(t *testing.T) {
	f := newFixture(t)
	err := NewMessageRepository(f.db).Create(context.Background(), &models.Message{Name: "A", Phone: "0812345678", PropertyID: 404})
	assert.ErrorIs(t, err, gorm.ErrForeignKeyViolated)
}

func TestMessageFindAllScopes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	repo := NewMessageRepository(f.db)

	a, err := f.repo.Create(ctx, f.input("A", 1))
	require.NoError(t, err)
	b, err := f.repo.Create(ctx, f.input("B", 1))
	require.NoError(t, err)
	for _, id := range []uint{a.ID, a.ID, b.ID} {
		require.NoError(t, repo.Create(ctx, &models.Message{Name: "X", Phone: "0812345678", PropertyID: id}))
	}

	rows, total, err := repo.FindAll(ctx, nil, 0, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, rows, 3)
	assert.Greater(t, rows[0].ID, rows[2].ID)

	_, total, err = repo.FindAll(ctx, []uint{a.ID}, 0, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)

	rows, total, err = repo.FindAll(ctx, []uint{}, 0, 20)
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, rows)

	byProperty, err := repo.ByProperty(ctx, b.ID)
	require.NoError(t, err)
	assert.Len(t, byProperty, 1)
}

func TestDashboardStatsScopes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	messages := NewMessageRepository(f.db)

	condo, err := f.repo.Create(ctx, f.input("Condo", 1))
	require.NoError(t, err)
	house := f.input("House", 1)
	house.PropertyType = models.TypeHouse
	house.Status = models.StatusSold
	_, err = f.repo.Create(ctx, house)
	require.NoError(t, err)

	other := models.User{Name: "Other", Email: "other@example.com", Password: "x"}
	require.NoError(t, f.db.Create(&other).Error)
	theirs := f.input("Theirs", 1)
	theirs.UserID = other.ID
	otherProperty, err := f.repo.Create(ctx, theirs)
	require.NoError(t, err)

	require.NoError(t, messages.Create(ctx, &models.Message{Name: "A", Phone: "0812345678", PropertyID: condo.ID}))
	require.NoError(t, messages.Create(ctx, &models.Message{Name: "B", Phone: "0812345678", PropertyID: condo.ID, Status: models.MessageWon}))
	require.NoError(t, messages.Create(ctx, &models.Message{Name: "C", Phone: "0812345678", PropertyID: otherProperty.ID}))

	repo := NewDashboardRepository(f.db)

	all, err := repo.Stats(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(3), all.TotalProperties)
	assert.Equal(t, int64(3), all.TotalMessages)
	assert.Equal(t, int64(2), all.NewMessages)
	assert.Len(t, all.RecentMessages, 3)

	own, err := repo.Stats(ctx, &f.owner.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), own.TotalProperties)
	assert.Equal(t, int64(2), own.TotalMessages)
	assert.Equal(t, int64(1), own.NewMessages)
	assert.ElementsMatch(t, []StatusTally{{Status: "ACTIVE", Count: 1}, {Status: "SOLD", Count: 1}}, own.PropertiesByStatus)
	assert.Equal(t, []TypeTally{{PropertyType: models.TypeCondo, Count: 2}}, own.MessagesByType)
	require.Len(t, own.RecentMessages, 2)
	assert.NotNil(t, own.RecentMessages[0].Property)
}

func TestUserRepository(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	repo := NewUserRepository(f.db)

	u := &models.User{Name: "Agent Smith", Email: "  Smith@Example.COM ", Password: "hash", Role: models.RoleAgent}
	require.NoError(t, repo.Create(ctx, u))
	assert.Equal(t, "smith@example.com", u.Email)

	found, err := repo.FindByEmail(ctx, "SMITH@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, found.ID)

	dup := &models.User{Name: "Again", Email: "smith@example.com", Password: "hash"}
	assert.ErrorIs(t, repo.Create(ctx, dup), gorm.ErrDuplicatedKey)

	users, total, err := repo.FindAll(ctx, UserFilter{Search: "smith", Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Len(t, users, 1)

	updated, err := repo.Update(ctx, u.ID, map[string]interface{}{"name": "Mr Smith"})
	require.NoError(t, err)
	assert.Equal(t, "Mr Smith", updated.Name)

	// the fixture owner still has properties
	_, err = f.repo.Create(ctx, f.input("Owned", 1))
	require.NoError(t, err)
	assert.ErrorIs(t, repo.Delete(ctx, f.owner.ID), gorm.ErrForeignKeyViolated)

	require.NoError(t, repo.Delete(ctx, u.ID))
	assert.ErrorIs(t, repo.Delete(ctx, u.ID), gorm.ErrRecordNotFound)
}

func TestZoneRepository(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	repo := NewZoneRepository(f.db)

	n, err := repo.Upsert(ctx, []models.Zone{
		{Name: "Sukhumvit", NameEn: "Sukhumvit", City: "Bangkok", Province: "Bangkok"},
		{Name: "Patong", NameEn: "Patong", City: "Kathu", Province: "Phuket"},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	_, err = repo.Upsert(ctx, []models.Zone{{Name: "Patong", NameEn: "Patong Beach", City: "Kathu", Province: "Phuket"}})
	require.NoError(t, err)

	zones, err := repo.FindAll(ctx, ZoneFilter{Province: "Phuket"})
	require.NoError(t, err)
	require.Len(t, zones, 1)
	assert.Equal(t, "Patong Beach", zones[0].NameEn)

	zones, err = repo.FindAll(ctx, ZoneFilter{Search: "SUKHU", Sort: "bogus"})
	require.NoError(t, err)
	require.Len(t, zones, 1)

	byCity, err := repo.ByCity(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Bangkok", byCity[0].City)

	require.NoError(t, f.db.Create(&[]models.Icon{
		{Prefix: "amenity", Name: "Pool", Key: "POOL", SubName: "Leisure", Active: true},
		{Prefix: "amenity", Name: "Gym", Key: "GYM", SubName: "Sport", Active: true},
		{Prefix: "view", Name: "Sea", Key: "SEA_VIEW", Active: false},
	}).Error)
	icons, err := repo.ActiveIcons(ctx, "amenity")
	require.NoError(t, err)
	require.Len(t, icons, 2)
	assert.Equal(t, "Gym", icons[0].Name)

	icons, err = repo.ActiveIcons(ctx, "")
	require.NoError(t, err)
	assert.Len(t, icons, 2)
}
