package database

import (
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Notifuse/emailbuilder/internal/database/schema"
)

func TestInitializeDatabase(t *testing.T) {
	t.Run("creates tables successfully", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		for range schema.TableDefinitions {
			mock.ExpectExec("").WillReturnResult(sqlmock.NewResult(0, 0))
		}

		err = InitializeDatabase(db)
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns error when table creation fails", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectExec("CREATE TABLE IF NOT EXISTS email_documents").
			WillReturnError(errors.New("permission denied"))

		err = InitializeDatabase(db)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to create table")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestCleanDatabase(t *testing.T) {
	t.Run("drops tables", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectExec("DROP TABLE IF EXISTS email_documents CASCADE").
			WillReturnResult(sqlmock.NewResult(0, 0))

		assert.NoError(t, CleanDatabase(db))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns error when drop fails", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectExec("DROP TABLE").WillReturnError(errors.New("locked"))

		err = CleanDatabase(db)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to drop table email_documents")
	})
}
