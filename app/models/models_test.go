package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateUser_HashesPasswordAndDefaultsRole(t *testing.T) {
	u, err := CreateUser("alice", "alice@example.com", "secret123")
	require.NoError(t, err)

	assert.Equal(t, ROLE_USER, u.Role)
	assert.NotEqual(t, "secret123", u.Password)
	assert.True(t, u.CheckPassword("secret123"))
	assert.False(t, u.CheckPassword("wrong"))
	assert.False(t, u.IsAdmin())
}

func TestCreateUser_RejectsInvalidInput(t *testing.T) {
	_, err := CreateUser("al", "alice@example.com", "secret123")
	assert.Error(t, err, "username too short")

	_, err = CreateUser("alice", "not-an-email", "secret123")
	assert.Error(t, err, "invalid email")

	_, err = CreateUser("alice", "alice@example.com", "123")
	assert.Error(t, err, "password too short")
}

func TestImage_URLAndCaptions(t *testing.T) {
	owner := uint(7)
	img := &Image{ID: 1, FilePath: "abc_cat.png", UserID: &owner}

	assert.Equal(t, "/api/images/file/abc_cat.png", img.URL())

	img.AppendCaption("first")
	img.AppendCaption("second")
	assert.Equal(t, []string{"first", "second"}, img.Captions)
}

func TestIsKnownReportStatus(t *testing.T) {
	assert.True(t, IsKnownReportStatus(ReportStatusPending))
	assert.True(t, IsKnownReportStatus(ReportStatusResolved))
	assert.False(t, IsKnownReportStatus("escalated"))
}
