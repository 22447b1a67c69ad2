package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/ignite/newsletter-dispatch/internal/domain"
	"github.com/ignite/newsletter-dispatch/internal/service/subscriber"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return db, mock, func() { db.Close() }
}

var subscriberCols = []string{"id", "email", "first_name", "last_name", "is_active", "subscribed_at"}

func TestListActiveOrdersByID(t *testing.T) {
	db, mock, cleanup := setupTestDB(t)
	defer cleanup()

	now := time.Now()
	mock.ExpectQuery(`SELECT id, email, first_name, last_name, is_active, subscribed_at\s+FROM subscribers\s+WHERE is_active = true\s+ORDER BY id`).
		WillReturnRows(sqlmock.NewRows(subscriberCols).
			AddRow("a1", "a@example.com", "Ann", "Ames", true, now).
			AddRow("b2", "b@example.com", "Bob", "Burns", true, now))

	repo := NewSubscriberRepo(db)
	subs, err := repo.ListActive(context.Background())
	require.NoError(t, err)
	require.Len(t, subs, 2)
	assert.Equal(t, "a1", subs[0].ID)
	assert.Equal(t, "b@example.com", subs[1].Email)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByEmailNormalizesAndMapsNotFound(t *testing.T) {
	db, mock, cleanup := setupTestDB(t)
	defer cleanup()

	mock.ExpectQuery(`SELECT id, email, first_name, last_name, is_active, subscribed_at\s+FROM subscribers\s+WHERE email = \$1`).
		WithArgs("jane@example.com").
		WillReturnError(sql.ErrNoRows)

	repo := NewSubscriberRepo(db)
	_, err := repo.GetByEmail(context.Background(), "  Jane@Example.COM ")
	assert.ErrorIs(t, err, subscriber.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsertReactivates(t *testing.T) {
	db, mock, cleanup := setupTestDB(t)
	defer cleanup()

	now := time.Now()
	mock.ExpectQuery(`INSERT INTO subscribers .*ON CONFLICT \(email\) DO UPDATE`).
		WithArgs(sqlmock.AnyArg(), "jane@example.com", "Jane", "Roe").
		WillReturnRows(sqlmock.NewRows(subscriberCols).
			AddRow("a1", "jane@example.com", "Jane", "Roe", true, now))

	repo := NewSubscriberRepo(db)
	s, err := repo.Upsert(context.Background(), "Jane@Example.com", "Jane", "Roe")
	require.NoError(t, err)
	assert.True(t, s.IsActive)
	assert.Equal(t, "jane@example.com", s.Email)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeactivate(t *testing.T) {
	db, mock, cleanup := setupTestDB(t)
	defer cleanup()

	mock.ExpectExec(`UPDATE subscribers SET is_active = false`).
		WithArgs("jane@example.com").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE subscribers SET is_active = false`).
		WithArgs("ghost@example.com").
		WillReturnResult(sqlmock.NewResult(0, 0))

	repo := NewSubscriberRepo(db)

	ok, err := repo.Deactivate(context.Background(), "jane@example.com")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.Deactivate(context.Background(), "ghost@example.com")
	require.NoError(t, err)
	assert.False(t, ok, "already-inactive address reports false")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordOutcomeSentCarriesProduct(t *testing.T) {
	db, mock, cleanup := setupTestDB(t)
	defer cleanup()

	productID, productName := "6E92ZMYYFZ", "Mug"
	outcomeCols := []string{"id", "subscriber_id", "subject", "product_id", "product_name", "sent_at", "status"}

	mock.ExpectQuery(`INSERT INTO email_history`).
		WithArgs(sqlmock.AnyArg(), "a1", "Hot Deal Alert! - Mug", &productID, &productName, domain.OutcomeSent).
		WillReturnRows(sqlmock.NewRows(outcomeCols).
			AddRow("o1", "a1", "Hot Deal Alert! - Mug", productID, productName, time.Now(), "sent"))

	repo := NewSubscriberRepo(db)
	o, err := repo.RecordOutcome(context.Background(), subscriber.OutcomeRecord{
		SubscriberID: "a1",
		Subject:      "Hot Deal Alert! - Mug",
		ProductID:    &productID,
		ProductName:  &productName,
		Status:       domain.OutcomeSent,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeSent, o.Status)
	require.NotNil(t, o.ProductName)
	assert.Equal(t, "Mug", *o.ProductName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordOutcomeFailedHasNilProduct(t *testing.T) {
	db, mock, cleanup := setupTestDB(t)
	defer cleanup()

	outcomeCols := []string{"id", "subscriber_id", "subject", "product_id", "product_name", "sent_at", "status"}
	mock.ExpectQuery(`INSERT INTO email_history`).
		WithArgs(sqlmock.AnyArg(), "a1", "Failed", (*string)(nil), (*string)(nil), domain.OutcomeFailed).
		WillReturnRows(sqlmock.NewRows(outcomeCols).
			AddRow("o2", "a1", "Failed", nil, nil, time.Now(), "failed"))

	repo := NewSubscriberRepo(db)
	o, err := repo.RecordOutcome(context.Background(), subscriber.OutcomeRecord{
		SubscriberID: "a1",
		Subject:      "Failed",
		Status:       domain.OutcomeFailed,
	})
	require.NoError(t, err)
	assert.Nil(t, o.ProductID)
	assert.Nil(t, o.ProductName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStats(t *testing.T) {
	db, mock, cleanup := setupTestDB(t)
	defer cleanup()

	mock.ExpectQuery(`SELECT COUNT\(\*\),`).
		WillReturnRows(sqlmock.NewRows([]string{"total", "unique", "sent", "failed"}).
			AddRow(10, 4, 7, 3))

	repo := NewSubscriberRepo(db)
	stats, err := repo.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 10, stats.TotalEmails)
	assert.Equal(t, 4, stats.UniqueSubscribers)
	assert.Equal(t, 7, stats.Successful)
	assert.Equal(t, 3, stats.Failed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnsureSchema(t *testing.T) {
	db, mock, cleanup := setupTestDB(t)
	defer cleanup()

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS subscribers`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS email_history`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`CREATE INDEX IF NOT EXISTS idx_email_history_subscriber`).WillReturnResult(sqlmock.NewResult(0, 0))

	repo := NewSubscriberRepo(db)
	require.NoError(t, repo.EnsureSchema(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}
