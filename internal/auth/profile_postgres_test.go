package auth

import (
	"context"
	"encoding/json"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var listProfilesQuery = regexp.QuoteMeta(`SELECT ` + profileColumns + ` FROM profiles ORDER BY full_name NULLS LAST, id`)

func TestPostgresProfiles_ListEmptyEncodesAsArray(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	mock.ExpectQuery(listProfilesQuery).
		WillReturnRows(sqlmock.NewRows([]string{"id", "full_name", "avatar_url", "role"}))

	got, err := NewPostgresProfiles(sqlDB).List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)

	body, err := json.Marshal(map[string]any{"data": got})
	require.NoError(t, err)
	assert.JSONEq(t, `{"data":[]}`, string(body))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresProfiles_List(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	id := uuid.New()
	mock.ExpectQuery(listProfilesQuery).
		WillReturnRows(sqlmock.NewRows([]string{"id", "full_name", "avatar_url", "role"}).
			AddRow(id.String(), "Ada", nil, "editor"))

	got, err := NewPostgresProfiles(sqlDB).List(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, id, got[0].ID)
	assert.Equal(t, "Ada", *got[0].FullName)
	assert.Nil(t, got[0].AvatarURL)
	assert.Equal(t, RoleEditor, got[0].Role)
}
