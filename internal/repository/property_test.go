package repository

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/ddproperty/ddproperty-api/internal/media"
	"github.com/ddproperty/ddproperty-api/internal/models"
	"github.com/ddproperty/ddproperty-api/internal/query"
	"github.com/ddproperty/ddproperty-api/internal/taxonomy"
	"github.com/ddproperty/ddproperty-api/internal/testdb"
	"github.com/ddproperty/ddproperty-api/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fixture struct {
	db    *gorm.DB
	root  string
	repo  *PropertyRepository
	owner models.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testdb.NewSQLite(t)
	root := t.TempDir()
	repo := NewPropertyRepository(db, taxonomy.NewNormalizer(nil), media.NewRelocator(root, "/images", nil), nil)

	owner := models.User{Name: "Owner", Email: "owner@example.com", Password: "x", Role: models.RoleAgent}
	require.NoError(t, db.Create(&owner).Error)

	return &fixture{db: db, root: root, repo: repo, owner: owner}
}

func (f *fixture) stage(t *testing.T, name string) string {
	t.Helper()
	dir := filepath.Join(f.root, "properties", "temp")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("img"), 0o644))
	return "/images/properties/temp/" + name
}

func (f *fixture) input(title string, prices ...float64) PropertyInput {
	in := PropertyInput{
		PropertyType: models.TypeCondo,
		Title:        title,
		City:         "Bangkok",
		UserID:       f.owner.ID,
	}
	for _, p := range prices {
		in.Listings = append(in.Listings, ListingInput{ListingType: models.ListingSale, Price: p})
	}
	return in
}

func (f *fixture) count(t *testing.T, model interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(model).Count(&n).Error)
	return n
}

func TestCreateAggregate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	in := f.input("Sukhumvit condo", 50000)
	in.Taxonomy = taxonomy.Raw{Features: types.FlagsOf(map[string]bool{"wifi": true, "parking": false})}
	in.Images = []MediaInput{{URL: f.stage(t, "a.jpg")}, {URL: f.stage(t, "b.jpg")}}

	p, err := f.repo.Create(ctx, in)
	require.NoError(t, err)

	assert.Equal(t, "DP00001", p.PropertyCode)
	require.Len(t, p.Features, 1)
	assert.Equal(t, "WIFI", p.Features[0].Type)
	assert.True(t, p.Features[0].Active)
	require.Len(t, p.Listings, 1)
	assert.Equal(t, 50000.0, p.Listings[0].Price)

	require.Len(t, p.Images, 2)
	dir := f.repo.relocator.PropertyDir(p.ID)
	for _, img := range p.Images {
		assert.NotContains(t, img.URL, "/properties/temp/")
		assert.FileExists(t, filepath.Join(dir, filepath.Base(img.URL)))
	}
	assert.Equal(t, "/images/properties/1/a.jpg", p.Images[0].URL)
	assert.True(t, p.Images[0].IsFeatured)
	assert.False(t, p.Images[1].IsFeatured)
	assert.NoFileExists(t, filepath.Join(f.root, "properties", "temp", "a.jpg"))
}

func TestCreateGeneratesSequentialCodes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	custom := f.input("Imported", 1)
	custom.PropertyCode = "EXT-77"
	_, err := f.repo.Create(ctx, custom)
	require.NoError(t, err)

	first, err := f.repo.Create(ctx, f.input("One", 1))
	require.NoError(t, err)
	second, err := f.repo.Create(ctx, f.input("Two", 1))
	require.NoError(t, err)

	assert.Equal(t, "DP00001", first.PropertyCode)
	assert.Equal(t, "DP00002", second.PropertyCode)
}

func TestCreateDuplicateSuppliedCodeConflicts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	in := f.input("One", 1)
	in.PropertyCode = "EXT-10"
	_, err := f.repo.Create(ctx, in)
	require.NoError(t, err)

	_, err = f.repo.Create(ctx, in)
	require.Error(t, err)
	assert.True(t, errors.Is(err, gorm.ErrDuplicatedKey))
	assert.Equal(t, int64(1), f.count(t, &models.Property{}))
}

func TestCreateSkipsSuppliedCodesAboveTheSequence(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// DPX... sorts above every generated code; DP0A... also passes the SQL
	// range and must be skipped across more than one scan batch.
	var supplied []string
	for i := 0; i < 20; i++ {
		supplied = append(supplied, fmt.Sprintf("DPX%03d", i))
	}
	for i := 0; i < codeScanBatch+10; i++ {
		supplied = append(supplied, fmt.Sprintf("DP0A%03d", i))
	}
	for _, code := range supplied {
		in := f.input(code, 1)
		in.PropertyCode = code
		_, err := f.repo.Create(ctx, in)
		require.NoError(t, err, code)
	}

	first, err := f.repo.Create(ctx, f.input("One", 1))
	require.NoError(t, err)
	second, err := f.repo.Create(ctx, f.input("Two", 1))
	require.NoError(t, err)

	assert.Equal(t, "DP00001", first.PropertyCode)
	assert.Equal(t, "DP00002", second.PropertyCode)
}

func TestCreateRejectsReservedCode(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	in := f.input("Squatter", 1)
	in.PropertyCode = "DP99999"
	_, err := f.repo.Create(ctx, in)
	assert.ErrorIs(t, err, ErrReservedCode)
	assert.Equal(t, int64(0), f.count(t, &models.Property{}))

	p, err := f.repo.Create(ctx, f.input("Generated", 1))
	require.NoError(t, err)
	assert.Equal(t, "DP00001", p.PropertyCode)
}

func TestCreateRequiresListing(t *testing.T) {
	f := newFixture(t)
	_, err := f.repo.Create(context.Background(), f.input("No listing"))
	assert.ErrorIs(t, err, ErrNoListings)
}

func TestCreateRollsBackOnFailure(t *testing.T) {
	f := newFixture(t)

	in := f.input("Broken", 100, -1)
	in.Taxonomy = taxonomy.Raw{Features: types.FlagsOf(map[string]bool{"wifi": true})}
	_, err := f.repo.Create(context.Background(), in)
	require.Error(t, err)

	assert.Zero(t, f.count(t, &models.Property{}))
	assert.Zero(t, f.count(t, &models.Listing{}))
	assert.Zero(t, f.count(t, &models.Feature{}))
}

func TestCreateMissingStagedFileIsNotFatal(t *testing.T) {
	f := newFixture(t)

	in := f.input("Lost upload", 10)
	in.Images = []MediaInput{{URL: "/images/properties/temp/never-uploaded.jpg"}}
	p, err := f.repo.Create(context.Background(), in)
	require.NoError(t, err)

	require.Len(t, p.Images, 1)
	assert.Equal(t, "/images/properties/temp/never-uploaded.jpg", p.Images[0].URL)
}

func TestBuildImagesKeepsOneFeatured(t *testing.T) {
	images := buildImages(1, []MediaInput{
		{URL: "a"}, {URL: "b", IsFeatured: true}, {URL: "c", IsFeatured: true}, {URL: ""},
	})
	require.Len(t, images, 3)
	assert.False(t, images[0].IsFeatured)
	assert.True(t, images[1].IsFeatured)
	assert.False(t, images[2].IsFeatured)
	assert.Equal(t, 2, images[2].SortOrder)
}

func TestUpdateRunsGuardBeforeWriting(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p, err := f.repo.Create(ctx, f.input("Original", 1))
	require.NoError(t, err)

	denied := types.Forbidden("not yours")
	_, err = f.repo.Update(ctx, p.ID, func(*models.Property) error { return denied }, map[string]interface{}{"title": "Changed"})
	assert.ErrorIs(t, err, denied)

	stored, err := f.repo.FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Original", stored.Title)

	updated, err := f.repo.Update(ctx, p.ID, nil, map[string]interface{}{"title": "Changed"})
	require.NoError(t, err)
	assert.Equal(t, "Changed", updated.Title)
}

func TestReplaceTaxonomyTouchesSubmittedKindsOnly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	in := f.input("Villa", 1)
	in.Taxonomy = taxonomy.Raw{
		Features: types.FlagsOf(map[string]bool{"wifi": true}),
		Views:    types.FlagsOf(map[string]bool{"seaView": true}),
	}
	p, err := f.repo.Create(ctx, in)
	require.NoError(t, err)

	out, err := f.repo.ReplaceTaxonomy(ctx, p.ID, nil, taxonomy.Raw{
		Features: types.FlagsOf(map[string]bool{"parking": true, "tv": true}),
	})
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"PARKING", "TV"}, []string{out.Features[0].Type, out.Features[1].Type})
	require.Len(t, out.Views, 1)
	assert.Equal(t, "SEA_VIEW", out.Views[0].Type)

	out, err = f.repo.ReplaceTaxonomy(ctx, p.ID, nil, taxonomy.Raw{Views: types.FlagSet{}})
	require.NoError(t, err)
	assert.Empty(t, out.Views)
	assert.Len(t, out.Features, 2)
}

func TestDeleteRemovesAggregate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	in := f.input("Townhouse", 1, 2)
	in.Taxonomy = taxonomy.Raw{Features: types.FlagsOf(map[string]bool{"wifi": true})}
	in.Images = []MediaInput{{URL: "https://cdn.example.com/x.jpg"}}
	p, err := f.repo.Create(ctx, in)
	require.NoError(t, err)
	require.NoError(t, f.db.Create(&models.Message{Name: "A", Phone: "0812345678", PropertyID: p.ID}).Error)

	require.NoError(t, f.repo.Delete(ctx, p.ID, nil))

	assert.Zero(t, f.count(t, &models.Property{}))
	assert.Zero(t, f.count(t, &models.Listing{}))
	assert.Zero(t, f.count(t, &models.Image{}))
	assert.Zero(t, f.count(t, &models.Feature{}))
	assert.Zero(t, f.count(t, &models.Message{}))

	err = f.repo.Delete(ctx, p.ID, nil)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestImageFeaturedInvariant(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p, err := f.repo.Create(ctx, f.input("Gallery", 1))
	require.NoError(t, err)

	first, err := f.repo.AddImage(ctx, p.ID, nil, MediaInput{URL: "https://cdn.example.com/1.jpg"})
	require.NoError(t, err)
	assert.True(t, first.IsFeatured)

	second, err := f.repo.AddImage(ctx, p.ID, nil, MediaInput{URL: "https://cdn.example.com/2.jpg"})
	require.NoError(t, err)
	assert.False(t, second.IsFeatured)
	assert.Equal(t, first.SortOrder+1, second.SortOrder)

	third, err := f.repo.AddImage(ctx, p.ID, nil, MediaInput{URL: f.stage(t, "3.jpg"), IsFeatured: true})
	require.NoError(t, err)
	assert.True(t, third.IsFeatured)
	assert.Equal(t, "/images/properties/1/3.jpg", third.URL)

	var featured int64
	require.NoError(t, f.db.Model(&models.Image{}).Where("is_featured = ?", true).Count(&featured).Error)
	assert.Equal(t, int64(1), featured)

	_, err = f.repo.DeleteImage(ctx, third.ID, nil)
	require.NoError(t, err)

	stored, err := f.repo.FindByID(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, stored.Images, 2)
	assert.Equal(t, first.ID, stored.Images[0].ID)
	assert.True(t, stored.Images[0].IsFeatured)
}

func TestAddFeatureIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p, err := f.repo.Create(ctx, f.input("Loft", 1))
	require.NoError(t, err)

	a, err := f.repo.AddFeature(ctx, p.ID, nil, "WIFI")
	require.NoError(t, err)
	b, err := f.repo.AddFeature(ctx, p.ID, nil, "WIFI")
	require.NoError(t, err)
	assert.Equal(t, a.ID, b.ID)

	require.NoError(t, f.repo.DeleteFeature(ctx, a.ID, nil))
	assert.Zero(t, f.count(t, &models.Feature{}))
}

func TestFindAllAppliesFiltersAndMeta(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	for i := 0; i < 25; i++ {
		_, err := f.repo.Create(ctx, f.input("Unit", float64(100+i)))
		require.NoError(t, err)
	}
	rent := f.input("Rental", 100)
	rent.Listings[0].ListingType = models.ListingRent
	_, err := f.repo.Create(ctx, rent)
	require.NoError(t, err)

	params := query.ParseListParams(map[string]string{"page": "2", "limit": "10", "listingType": "sale"})
	rows, total, err := f.repo.FindAll(ctx, params)
	require.NoError(t, err)
	assert.Equal(t, int64(25), total)
	assert.Len(t, rows, 10)

	meta := query.NewMeta(total, params.Page, params.Limit)
	assert.Equal(t, query.Meta{Total: 25, Page: 2, Limit: 10, TotalPages: 3, HasNext: true, HasPrev: true}, meta)
}

func TestGetRandomFallsBack(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	withImage := f.input("Pictured", 1)
	withImage.Images = []MediaInput{{URL: "https://cdn.example.com/p.jpg"}}
	_, err := f.repo.Create(ctx, withImage)
	require.NoError(t, err)
	_, err = f.repo.Create(ctx, f.input("Bare", 1))
	require.NoError(t, err)

	rows, err := f.repo.GetRandom(ctx, 1)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Pictured", rows[0].Title)

	rows, err = f.repo.GetRandom(ctx, 4)
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}

func TestFindByUserCountsInquiries(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p, err := f.repo.Create(ctx, f.input("Mine", 1))
	require.NoError(t, err)
	for i := 0; i < 2; i++ {
		require.NoError(t, f.db.Create(&models.Message{Name: "A", Phone: "0812345678", PropertyID: p.ID}).Error)
	}

	other := models.User{Name: "Other", Email: "other@example.com", Password: "x"}
	require.NoError(t, f.db.Create(&other).Error)
	theirs := f.input("Theirs", 1)
	theirs.UserID = other.ID
	_, err = f.repo.Create(ctx, theirs)
	require.NoError(t, err)

	rows, total, err := f.repo.FindByUser(ctx, f.owner.ID, query.ParseListParams(map[string]string{"status": "ALL"}))
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, rows, 1)
	assert.Equal(t, int64(2), rows[0].InquiryCount)
}

func TestPriceStats(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.repo.Create(ctx, f.input("A", 100, 300))
	require.NoError(t, err)
	_, err = f.repo.Create(ctx, f.input("B", 200))
	require.NoError(t, err)

	stats, err := f.repo.PriceStats(ctx)
	require.NoError(t, err)
	require.Len(t, stats, 1)
	assert.Equal(t, models.TypeCondo, stats[0].PropertyType)
	assert.Equal(t, int64(2), stats[0].Count)
	assert.Equal(t, 100.0, stats[0].MinPrice)
	assert.Equal(t, 300.0, stats[0].MaxPrice)
	assert.InDelta(t, 200.0, stats[0].AvgPrice, 0.001)

	counts, err := f.repo.TypeCounts(ctx)
	require.NoError(t, err)
	assert.Equal(t, []TypeCount{{PropertyType: models.TypeCondo, Count: 2}}, counts)
}
