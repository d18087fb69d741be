package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/ddproperty/ddproperty-api/internal/media"
	"github.com/ddproperty/ddproperty-api/internal/metrics"
	"github.com/ddproperty/ddproperty-api/internal/models"
	"github.com/ddproperty/ddproperty-api/internal/taxonomy"
	gomysql "github.com/go-sql-driver/mysql"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newMySQLMock(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	return db, mock
}

func TestCreateRollsBackOnMySQL(t *testing.T) {
	db, mock := newMySQLMock(t)
	repo := NewPropertyRepository(db, taxonomy.NewNormalizer(nil), media.NewRelocator(t.TempDir(), "/images", nil), nil)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT `property_code` FROM `properties`").
		WillReturnRows(sqlmock.NewRows([]string{"property_code"}).AddRow("DP00041"))
	mock.ExpectExec("INSERT INTO `properties`").
		WillReturnResult(sqlmock.NewResult(42, 1))
	mock.ExpectExec("INSERT INTO `listings`").
		WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	_, err := repo.Create(context.Background(), PropertyInput{
		PropertyType: models.TypeHouse,
		Title:        "Rolled back",
		UserID:       1,
		Listings:     []ListingInput{{ListingType: models.ListingSale, Price: 10}},
	})

	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateLocksRowOnMySQL(t *testing.T) {
	db, mock := newMySQLMock(t)
	repo := NewPropertyRepository(db, taxonomy.NewNormalizer(nil), media.NewRelocator(t.TempDir(), "/images", nil), nil)

	denied := errors.New("denied")
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT \\* FROM `properties` WHERE `properties`.`id` = \\? .*FOR UPDATE").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id"}).AddRow(7, 3))
	mock.ExpectRollback()

	_, err := repo.Update(context.Background(), 7, func(p *models.Property) error {
		assert.Equal(t, uint(3), p.UserID)
		return denied
	}, map[string]interface{}{"title": "x"})

	assert.ErrorIs(t, err, denied)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func retries(t *testing.T) float64 {
	t.Helper()
	var m dto.Metric
	require.NoError(t, metrics.PropertyCodeRetries.Write(&m))
	return m.GetCounter().GetValue()
}

func duplicateEntry(code string) error {
	return &gomysql.MySQLError{Number: 1062, Message: "Duplicate entry '" + code + "' for key 'idx_properties_property_code'"}
}

func TestCreateRetriesGeneratedCodeCollision(t *testing.T) {
	db, mock := newMySQLMock(t)
	repo := NewPropertyRepository(db, taxonomy.NewNormalizer(nil), media.NewRelocator(t.TempDir(), "/images", nil), nil)
	before := retries(t)

	// a concurrent writer took DP00008 between our read and our insert
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT `property_code` FROM `properties`").
		WillReturnRows(sqlmock.NewRows([]string{"property_code"}).AddRow("DP00007"))
	mock.ExpectExec("INSERT INTO `properties`").
		WillReturnError(duplicateEntry("DP00008"))
	mock.ExpectRollback()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT `property_code` FROM `properties`").
		WillReturnRows(sqlmock.NewRows([]string{"property_code"}).AddRow("DP00008"))
	mock.ExpectExec("INSERT INTO `properties`").
		WillReturnResult(sqlmock.NewResult(9, 1))
	mock.ExpectExec("INSERT INTO `listings`").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	p, err := repo.insert(context.Background(), PropertyInput{
		PropertyType: models.TypeCondo,
		Title:        "Raced",
		UserID:       1,
		Listings:     []ListingInput{{ListingType: models.ListingSale, Price: 10}},
	})

	require.NoError(t, err)
	assert.Equal(t, "DP00009", p.PropertyCode)
	assert.Equal(t, uint(9), p.ID)
	assert.Equal(t, before+1, retries(t))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateGivesUpAfterRepeatedCollisions(t *testing.T) {
	db, mock := newMySQLMock(t)
	repo := NewPropertyRepository(db, taxonomy.NewNormalizer(nil), media.NewRelocator(t.TempDir(), "/images", nil), nil)
	before := retries(t)

	for i := 0; i < maxCodeAttempts; i++ {
		mock.ExpectBegin()
		mock.ExpectQuery("SELECT `property_code` FROM `properties`").
			WillReturnRows(sqlmock.NewRows([]string{"property_code"}))
		mock.ExpectExec("INSERT INTO `properties`").
			WillReturnError(duplicateEntry("DP00001"))
		mock.ExpectRollback()
	}

	_, err := repo.insert(context.Background(), PropertyInput{
		PropertyType: models.TypeCondo,
		Title:        "Always late",
		UserID:       1,
		Listings:     []ListingInput{{ListingType: models.ListingSale, Price: 10}},
	})

	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)
	assert.Equal(t, before+maxCodeAttempts, retries(t))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateNeverRetriesSuppliedCode(t *testing.T) {
	db, mock := newMySQLMock(t)
	repo := NewPropertyRepository(db, taxonomy.NewNormalizer(nil), media.NewRelocator(t.TempDir(), "/images", nil), nil)
	before := retries(t)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `properties`").
		WillReturnError(duplicateEntry("EXT-1"))
	mock.ExpectRollback()

	_, err := repo.insert(context.Background(), PropertyInput{
		PropertyCode: "EXT-1",
		PropertyType: models.TypeCondo,
		Title:        "Imported twice",
		UserID:       1,
		Listings:     []ListingInput{{ListingType: models.ListingSale, Price: 10}},
	})

	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)
	assert.Equal(t, before, retries(t))
	assert.NoError(t, mock.ExpectationsWereMet())
}
