package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/phrazzld/dmo-api/internal/domain"
	"github.com/phrazzld/dmo-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestPostgresUserStore_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("hashes the password", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer func() { _ = db.Close() }()

		user, err := domain.NewUser("Lan@Example.com", "correct horse battery", "Lan")
		require.NoError(t, err)

		mock.ExpectExec("INSERT INTO users").
			WithArgs(user.ID, "lan@example.com", "Lan", sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 1))

		s := NewPostgresUserStore(db, bcrypt.MinCost)
		require.NoError(t, s.Create(ctx, user))

		assert.Empty(t, user.Password, "plaintext is cleared")
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte("correct horse battery")))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("duplicate email", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer func() { _ = db.Close() }()

		user, err := domain.NewUser("lan@example.com", "correct horse battery", "")
		require.NoError(t, err)

		mock.ExpectExec("INSERT INTO users").
			WillReturnError(&pgconn.PgError{Code: uniqueViolationCode, ConstraintName: "idx_users_email"})

		err = NewPostgresUserStore(db, bcrypt.MinCost).Create(ctx, user)
		assert.ErrorIs(t, err, store.ErrEmailExists)
	})

	t.Run("invalid user never reaches the database", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer func() { _ = db.Close() }()

		user := &domain.User{ID: uuid.New(), Email: "not-an-email", Password: "correct horse battery"}
		err = NewPostgresUserStore(db, bcrypt.MinCost).Create(ctx, user)
		assert.ErrorIs(t, err, domain.ErrInvalidEmail)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPostgresUserStore_GetByEmail(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	s := NewPostgresUserStore(db, bcrypt.MinCost)
	id := uuid.New()
	now := time.Now().UTC()
	cols := []string{"id", "email", "full_name", "hashed_password", "created_at", "updated_at"}

	mock.ExpectQuery("FROM users WHERE LOWER").
		WithArgs("lan@example.com").
		WillReturnRows(sqlmock.NewRows(cols).AddRow(id.String(), "lan@example.com", "Lan", "$2a$04$hash", now, now))
	mock.ExpectQuery("FROM users WHERE LOWER").
		WithArgs("nobody@example.com").
		WillReturnRows(sqlmock.NewRows(cols))

	user, err := s.GetByEmail(context.Background(), " lan@example.com ")
	require.NoError(t, err)
	assert.Equal(t, id, user.ID)
	assert.Equal(t, "Lan", user.FullName)

	_, err = s.GetByEmail(context.Background(), "nobody@example.com")
	assert.ErrorIs(t, err, store.ErrUserNotFound)
}

func TestBucketlistTagIDs(t *testing.T) {
	a, b := uuid.New(), uuid.New()

	joined := joinUUIDs([]uuid.UUID{a, b})
	assert.Equal(t, a.String()+","+b.String(), joined)

	ids, err := splitUUIDs(joined)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{a, b}, ids)

	empty, err := splitUUIDs("")
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	_, err = splitUUIDs("not-a-uuid")
	assert.ErrorIs(t, err, store.ErrInvalidEntity)
}
