package services

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/ddproperty/ddproperty-api/data"
	"github.com/ddproperty/ddproperty-api/internal/cache"
	"github.com/ddproperty/ddproperty-api/internal/media"
	"github.com/ddproperty/ddproperty-api/internal/models"
	"github.com/ddproperty/ddproperty-api/internal/repository"
	"github.com/ddproperty/ddproperty-api/internal/taxonomy"
	"github.com/ddproperty/ddproperty-api/internal/testdb"
	"github.com/ddproperty/ddproperty-api/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type env struct {
	db       *gorm.DB
	root     string
	repo     *repository.PropertyRepository
	props    *PropertyService
	messages *MessageService
	users    *UserService
	auth     *AuthService
	tokens   *TokenIssuer
	dash     *DashboardService

	owner, other, admin Actor
}

func newEnv(t *testing.T, c cache.Cache) *env {
	t.Helper()
	db := testdb.NewSQLite(t)
	root := t.TempDir()

	relocator := media.NewRelocator(root, "/images", nil)
	repo := repository.NewPropertyRepository(db, taxonomy.NewNormalizer(nil), relocator, nil)
	catalog, err := LoadCatalog(data.PropertyTypes)
	require.NoError(t, err)

	userRepo := repository.NewUserRepository(db)
	tokens := NewTokenIssuer("test-secret", time.Hour)
	e := &env{
		db:       db,
		root:     root,
		repo:     repo,
		props:    NewPropertyService(repo, media.NewStore(relocator, 1<<20), c, catalog, "http://api.test/", nil),
		messages: NewMessageService(repository.NewMessageRepository(db), repo, nil),
		users:    NewUserService(userRepo, nil),
		auth:     NewAuthService(userRepo, tokens, nil),
		tokens:   tokens,
		dash:     NewDashboardService(repository.NewDashboardRepository(db)),
	}
	e.owner = e.addUser(t, "owner@example.com", "secret1", models.RoleAgent)
	e.other = e.addUser(t, "other@example.com", "secret2", models.RoleUser)
	e.admin = e.addUser(t, "admin@example.com", "secret3", models.RoleAdmin)
	return e
}

func (e *env) addUser(t *testing.T, email, password, role string) Actor {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	u := models.User{Name: email, Email: email, Password: string(hash), Role: role}
	require.NoError(t, e.db.Create(&u).Error)
	return Actor{ID: u.ID, Role: u.Role}
}

func (e *env) stage(t *testing.T, name string) string {
	t.Helper()
	dir := filepath.Join(e.root, "properties", "temp")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("img"), 0o644))
	return "/images/properties/temp/" + name
}

func decodePayload(t *testing.T, body string) PropertyPayload {
	t.Helper()
	var p PropertyPayload
	require.NoError(t, json.Unmarshal([]byte(body), &p))
	return p
}

func (e *env) create(t *testing.T, actor Actor, title string) *models.Property {
	t.Helper()
	p, err := e.props.Create(context.Background(), actor, decodePayload(t,
		`{"propertyType":"CONDO","title":"`+title+`","city":"Bangkok","price":1000000}`))
	require.NoError(t, err)
	return p
}

func TestCreateFromFormValues(t *testing.T) {
	e := newEnv(t, nil)
	img := e.stage(t, "a.jpg")

	payload := decodePayload(t, `{
		"propertyType": "condo",
		"title": "Sky Residence",
		"price": "1500000",
		"bedrooms": "2",
		"area": "45.5",
		"features": "{\"wifi\":true,\"parking\":false}",
		"images": "[\"`+img+`\"]"
	}`)

	p, err := e.props.Create(context.Background(), e.owner, payload)
	require.NoError(t, err)

	assert.Equal(t, "DP00001", p.PropertyCode)
	assert.Equal(t, models.TypeCondo, p.PropertyType)
	require.NotNil(t, p.Bedrooms)
	assert.Equal(t, 2, *p.Bedrooms)
	require.Len(t, p.Listings, 1)
	assert.Equal(t, models.ListingSale, p.Listings[0].ListingType)
	assert.Equal(t, 1500000.0, p.Listings[0].Price)
	require.Len(t, p.Features, 1)
	assert.Equal(t, "WIFI", p.Features[0].Type)
	require.Len(t, p.Images, 1)
	assert.Equal(t, "/images/properties/1/a.jpg", p.Images[0].URL)
	assert.True(t, p.Images[0].IsFeatured)
}

func TestCreateRejectsInvalidPayload(t *testing.T) {
	e := newEnv(t, nil)
	ctx := context.Background()

	cases := map[string]string{
		"unknown type":   `{"propertyType":"CASTLE","title":"x","price":1}`,
		"missing title":  `{"propertyType":"CONDO","price":1}`,
		"no listing":     `{"propertyType":"CONDO","title":"x"}`,
		"negative price": `{"propertyType":"CONDO","title":"x","price":-5}`,
		"bad status":     `{"propertyType":"CONDO","title":"x","price":1,"status":"GONE"}`,
		"reserved code":  `{"propertyType":"CONDO","title":"x","price":1,"propertyCode":"DP99999"}`,
		"reserved lower": `{"propertyType":"CONDO","title":"x","price":1,"propertyCode":"dp00002"}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := e.props.Create(ctx, e.owner, decodePayload(t, body))
			require.Error(t, err)
			assert.Equal(t, http.StatusBadRequest, types.StatusOf(err))
		})
	}

	_, err := e.props.Create(ctx, Actor{}, decodePayload(t, `{"propertyType":"CONDO","title":"x","price":1}`))
	assert.Equal(t, http.StatusUnauthorized, types.StatusOf(err))
}

func TestUpdateIsLimitedToOwnerAndAdmin(t *testing.T) {
	e := newEnv(t, nil)
	ctx := context.Background()
	p := e.create(t, e.owner, "Before")

	title := "After"
	_, err := e.props.Update(ctx, e.other, p.ID, PropertyUpdate{Title: &title})
	assert.Equal(t, http.StatusForbidden, types.StatusOf(err))

	updated, err := e.props.Update(ctx, e.admin, p.ID, PropertyUpdate{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "After", updated.Title)

	_, err = e.props.Update(ctx, e.owner, 999, PropertyUpdate{Title: &title})
	assert.Equal(t, http.StatusNotFound, types.StatusOf(err))
}

func TestDeleteRemovesMediaDirectory(t *testing.T) {
	e := newEnv(t, nil)
	ctx := context.Background()
	img := e.stage(t, "b.jpg")
	p, err := e.props.Create(ctx, e.owner, decodePayload(t,
		`{"propertyType":"HOUSE","title":"Garden","price":5,"images":["`+img+`"]}`))
	require.NoError(t, err)
	assert.DirExists(t, filepath.Join(e.root, "properties", "1"))

	assert.Equal(t, http.StatusForbidden, types.StatusOf(e.props.Delete(ctx, e.other, p.ID)))
	require.NoError(t, e.props.Delete(ctx, e.owner, p.ID))
	assert.NoDirExists(t, filepath.Join(e.root, "properties", "1"))

	_, err = e.props.Get(ctx, p.ID)
	assert.Equal(t, http.StatusNotFound, types.StatusOf(err))
}

func TestGetCountsViews(t *testing.T) {
	e := newEnv(t, nil)
	ctx := context.Background()
	p := e.create(t, e.owner, "Viewed")

	_, err := e.props.Get(ctx, p.ID)
	require.NoError(t, err)
	got, err := e.props.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.ViewCount)
}

func TestRandomReturnsAbsoluteURLs(t *testing.T) {
	e := newEnv(t, nil)
	img := e.stage(t, "c.jpg")
	_, err := e.props.Create(context.Background(), e.owner, decodePayload(t,
		`{"propertyType":"VILLA","title":"Pool villa","price":9,"images":[{"url":"`+img+`","caption":"front"}]}`))
	require.NoError(t, err)

	feed, err := e.props.Random(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, feed, 1)
	require.NotNil(t, feed[0].FeaturedImage)
	assert.Equal(t, "http://api.test/images/properties/1/c.jpg", *feed[0].FeaturedImage)
}

func TestAbsoluteURL(t *testing.T) {
	e := newEnv(t, nil)
	assert.Equal(t, "http://api.test/images/x.jpg", e.props.AbsoluteURL("/images/x.jpg"))
	assert.Equal(t, "https://cdn.example.com/x.jpg", e.props.AbsoluteURL("https://cdn.example.com/x.jpg"))
	assert.Equal(t, "", e.props.AbsoluteURL(""))
}

func TestListIsCachedUntilMutation(t *testing.T) {
	mr := miniredis.RunT(t)
	c := cache.NewRedis(cache.Dial(mr.Addr(), "", 0), time.Minute, nil)
	t.Cleanup(func() { c.Close() })

	e := newEnv(t, c)
	ctx := context.Background()
	e.create(t, e.owner, "First")

	page, err := e.props.List(ctx, map[string]string{})
	require.NoError(t, err)
	assert.EqualValues(t, 1, page.Meta.Total)

	// written behind the service's back, so the cached page still answers
	_, err = e.repo.Create(ctx, repository.PropertyInput{
		PropertyType: models.TypeLand,
		Title:        "Hidden",
		UserID:       e.owner.ID,
		Listings:     []repository.ListingInput{{ListingType: models.ListingSale, Price: 1}},
	})
	require.NoError(t, err)
	page, err = e.props.List(ctx, map[string]string{})
	require.NoError(t, err)
	assert.EqualValues(t, 1, page.Meta.Total)

	e.create(t, e.owner, "Third")
	page, err = e.props.List(ctx, map[string]string{})
	require.NoError(t, err)
	assert.EqualValues(t, 3, page.Meta.Total)
	assert.Len(t, page.Data, 3)
}

func TestTypesIncludeEveryCatalogEntry(t *testing.T) {
	e := newEnv(t, nil)
	e.create(t, e.owner, "One")
	e.create(t, e.owner, "Two")

	summary, err := e.props.Types(context.Background())
	require.NoError(t, err)
	require.Len(t, summary, len(models.PropertyTypes))
	for _, s := range summary {
		if s.Value == models.TypeCondo {
			assert.EqualValues(t, 2, s.Count)
			assert.Equal(t, "Condominium", s.Names["en"])
		} else {
			assert.Zero(t, s.Count, s.Value)
		}
	}

	prices, err := e.props.PriceTypes(context.Background())
	require.NoError(t, err)
	require.Len(t, prices, len(models.PropertyTypes))
	assert.Equal(t, 1000000.0, prices[0].MinPrice)
}

func TestMyPropertiesAndExportAreOwnerScoped(t *testing.T) {
	e := newEnv(t, nil)
	ctx := context.Background()
	mine := e.create(t, e.owner, "Mine")
	e.create(t, e.other, "Theirs")

	status := models.StatusInactive
	_, err := e.props.Update(ctx, e.owner, mine.ID, PropertyUpdate{Status: &status})
	require.NoError(t, err)

	page, err := e.props.MyProperties(ctx, e.owner, map[string]string{})
	require.NoError(t, err)
	require.Len(t, page.Data, 1)
	assert.Equal(t, "Mine", page.Data[0].Title)

	book, err := e.props.Export(ctx, e.owner, map[string]string{})
	require.NoError(t, err)
	assert.NotEmpty(t, book)
}

func TestFeatureOperations(t *testing.T) {
	e := newEnv(t, nil)
	ctx := context.Background()
	p := e.create(t, e.owner, "Features")

	_, err := e.props.AddFeature(ctx, e.owner, p.ID, "no-such-feature")
	assert.Equal(t, http.StatusBadRequest, types.StatusOf(err))

	f, err := e.props.AddFeature(ctx, e.owner, p.ID, "wifi")
	require.NoError(t, err)
	assert.Equal(t, "WIFI", f.Type)

	assert.Equal(t, http.StatusForbidden, types.StatusOf(e.props.DeleteFeature(ctx, e.other, f.ID)))
	require.NoError(t, e.props.DeleteFeature(ctx, e.owner, f.ID))
}

func TestMessageWorkflow(t *testing.T) {
	e := newEnv(t, nil)
	ctx := context.Background()
	p := e.create(t, e.owner, "Inquired")

	_, err := e.messages.Create(ctx, MessageInput{Name: "Ann", Phone: "12ab", PropertyID: types.FlexInt{Value: int(p.ID), Set: true}})
	assert.Equal(t, http.StatusBadRequest, types.StatusOf(err))
	_, err = e.messages.Create(ctx, MessageInput{Name: "Ann", Phone: "0812345678"})
	assert.Equal(t, http.StatusBadRequest, types.StatusOf(err))
	_, err = e.messages.Create(ctx, MessageInput{Name: "Ann", Phone: "0812345678", PropertyID: types.FlexInt{Value: 404, Set: true}})
	assert.Equal(t, http.StatusNotFound, types.StatusOf(err))

	m, err := e.messages.Create(ctx, MessageInput{Name: "Ann", Phone: "0812345678", PropertyID: types.FlexInt{Value: int(p.ID), Set: true}})
	require.NoError(t, err)
	assert.Equal(t, models.MessageNew, m.Status)

	_, err = e.messages.ByProperty(ctx, e.other, p.ID)
	assert.Equal(t, http.StatusForbidden, types.StatusOf(err))
	rows, err := e.messages.ByProperty(ctx, e.owner, p.ID)
	require.NoError(t, err)
	assert.Len(t, rows, 1)

	_, err = e.messages.UpdateStatus(ctx, e.owner, m.ID, "MAYBE")
	assert.Equal(t, http.StatusBadRequest, types.StatusOf(err))
	_, err = e.messages.UpdateStatus(ctx, e.other, m.ID, "contacted")
	assert.Equal(t, http.StatusForbidden, types.StatusOf(err))
	updated, err := e.messages.UpdateStatus(ctx, e.owner, m.ID, "contacted")
	require.NoError(t, err)
	assert.Equal(t, models.MessageContacted, updated.Status)

	_, err = e.messages.List(ctx, e.owner, 1, 10)
	assert.Equal(t, http.StatusForbidden, types.StatusOf(err))
	all, err := e.messages.List(ctx, e.admin, 0, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 1, all.Meta.Total)
	assert.Equal(t, defaultMessageLimit, all.Meta.Limit)

	none, err := e.messages.ListForUser(ctx, e.other, 1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 0, none.Meta.Total)
	assert.NotNil(t, none.Data)
}

func TestRegisterAndLogin(t *testing.T) {
	e := newEnv(t, nil)
	ctx := context.Background()

	res, err := e.auth.Register(ctx, RegisterInput{Name: "New", Email: "New@Example.com", Password: "hunter22"})
	require.NoError(t, err)
	assert.Equal(t, "new@example.com", res.User.Email)
	assert.Equal(t, models.RoleUser, res.User.Role)

	_, err = e.auth.Register(ctx, RegisterInput{Name: "Dup", Email: "new@example.com", Password: "hunter22"})
	assert.Equal(t, http.StatusConflict, types.StatusOf(err))
	_, err = e.auth.Register(ctx, RegisterInput{Name: "Short", Email: "s@example.com", Password: "abc"})
	assert.Equal(t, http.StatusBadRequest, types.StatusOf(err))

	_, err = e.auth.Login(ctx, LoginInput{Email: "new@example.com", Password: "wrong-pass"})
	assert.Equal(t, http.StatusUnauthorized, types.StatusOf(err))
	_, err = e.auth.Login(ctx, LoginInput{Email: "nobody@example.com", Password: "hunter22"})
	assert.Equal(t, http.StatusUnauthorized, types.StatusOf(err))

	login, err := e.auth.Login(ctx, LoginInput{Email: "new@example.com", Password: "hunter22"})
	require.NoError(t, err)
	actor, err := e.tokens.Parse(login.Token)
	require.NoError(t, err)
	assert.Equal(t, Actor{ID: res.User.ID, Role: models.RoleUser}, actor)
}

func TestTokenExpiry(t *testing.T) {
	issuer := NewTokenIssuer("secret", time.Minute)
	token, _, err := issuer.Issue(&models.User{ID: 7, Role: models.RoleAgent})
	require.NoError(t, err)

	issuer.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	_, err = issuer.Parse(token)
	assert.Error(t, err)

	_, err = NewTokenIssuer("another-secret", time.Minute).Parse(token)
	assert.Error(t, err)
}

func TestUserAdministration(t *testing.T) {
	e := newEnv(t, nil)
	ctx := context.Background()
	e.create(t, e.owner, "Owned")

	_, err := e.users.List(ctx, e.owner, map[string]string{})
	assert.Equal(t, http.StatusForbidden, types.StatusOf(err))

	page, err := e.users.List(ctx, e.admin, map[string]string{"role": "agent"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, page.Meta.Total)

	name, email, password, role := "Agent", "agent@example.com", "agentpw", "agent"
	u, err := e.users.Create(ctx, e.admin, UserInput{Name: &name, Email: &email, Password: &password, Role: &role,
		SocialMedia: &models.SocialMedia{Line: "@agent"}})
	require.NoError(t, err)
	assert.Equal(t, models.RoleAgent, u.Role)
	assert.Equal(t, "@agent", u.Social().Line)

	_, err = e.users.Create(ctx, e.admin, UserInput{Name: &name, Email: &email, Password: &password})
	assert.Equal(t, http.StatusConflict, types.StatusOf(err))

	bad := "OWNER"
	_, err = e.users.Update(ctx, e.admin, u.ID, UserInput{Role: &bad})
	assert.Equal(t, http.StatusBadRequest, types.StatusOf(err))

	assert.Equal(t, http.StatusConflict, types.StatusOf(e.users.Delete(ctx, e.admin, e.owner.ID)))
	assert.Equal(t, http.StatusBadRequest, types.StatusOf(e.users.Delete(ctx, e.admin, e.admin.ID)))
	require.NoError(t, e.users.Delete(ctx, e.admin, u.ID))
}

func TestChangePassword(t *testing.T) {
	e := newEnv(t, nil)
	ctx := context.Background()

	err := e.users.ChangePassword(ctx, e.other, PasswordChange{CurrentPassword: "nope", NewPassword: "newsecret"})
	assert.Equal(t, http.StatusUnauthorized, types.StatusOf(err))

	require.NoError(t, e.users.ChangePassword(ctx, e.other, PasswordChange{CurrentPassword: "secret2", NewPassword: "newsecret"}))
	_, err = e.auth.Login(ctx, LoginInput{Email: "other@example.com", Password: "newsecret"})
	assert.NoError(t, err)
}

func TestDashboardScope(t *testing.T) {
	e := newEnv(t, nil)
	ctx := context.Background()
	e.create(t, e.owner, "A")
	e.create(t, e.owner, "B")

	mine, err := e.dash.Stats(ctx, e.other)
	require.NoError(t, err)
	assert.Zero(t, mine.TotalProperties)

	all, err := e.dash.Stats(ctx, e.admin)
	require.NoError(t, err)
	assert.EqualValues(t, 2, all.TotalProperties)

	_, err = e.dash.Stats(ctx, Actor{})
	assert.Equal(t, http.StatusUnauthorized, types.StatusOf(err))
}

func TestOwnerOrAdmin(t *testing.T) {
	p := &models.Property{UserID: 5}
	assert.NoError(t, OwnerOrAdmin(Actor{ID: 5, Role: models.RoleUser}, "edit")(p))
	assert.NoError(t, OwnerOrAdmin(Actor{ID: 9, Role: models.RoleAdmin}, "edit")(p))

	err := OwnerOrAdmin(Actor{ID: 9, Role: models.RoleAgent}, "edit this property")(p)
	require.Error(t, err)
	assert.Equal(t, http.StatusForbidden, types.StatusOf(err))
	assert.Contains(t, err.Error(), "You are not authorized to edit this property")

	assert.Error(t, OwnerOrAdmin(Actor{}, "edit")(&models.Property{}))
}

func TestZonesAndIcons(t *testing.T) {
	e := newEnv(t, nil)
	ctx := context.Background()
	zones := NewZoneService(repository.NewZoneRepository(e.db))

	seed, err := LoadZones(data.Zones)
	require.NoError(t, err)
	n, err := zones.Seed(ctx, seed)
	require.NoError(t, err)
	assert.EqualValues(t, len(seed), n)

	cities, err := zones.Cities(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, cities)
	assert.Equal(t, "Bangkok", cities[0].City)
	assert.Len(t, cities[0].Zones, 3)

	list, err := zones.List(ctx, map[string]string{"search": "jomtien"})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "จอมเทียน", list[0].Names.Get("th"))

	_, err = zones.Get(ctx, 999)
	assert.Equal(t, http.StatusNotFound, types.StatusOf(err))

	require.NoError(t, e.db.Create(&[]models.Icon{
		{Prefix: "facility", Name: "Pool", SubName: "Sports", Active: true},
		{Prefix: "facility", Name: "Gym", SubName: "Sports", Active: true},
		{Prefix: "facility", Name: "Lobby", Active: true},
		{Prefix: "facility", Name: "Old", Active: false},
	}).Error)
	groups, err := zones.IconsByPrefix(ctx, "facility")
	require.NoError(t, err)
	assert.Len(t, groups["Sports"], 2)
	assert.Len(t, groups["default"], 1)
}
