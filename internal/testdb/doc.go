//go:build integration

// Package testdb provides helpers for tests that run against a real
// PostgreSQL database.
//
// The database comes from DMO_TEST_DATABASE_URL or DATABASE_URL. When neither
// is set, a PostgreSQL container is started with testcontainers-go, and the
// tests are skipped if Docker is not reachable.
//
// The schema is migrated once per process with the embedded goose
// migrations, and every test runs inside a transaction that is rolled back
// when the test function returns:
//
//	db := testdb.GetTestDBWithT(t)
//	testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
//		store := postgres.NewPostgresTagStore(tx, nil)
//		// ...
//	})
package testdb
