package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestArtworkOwnership(t *testing.T) {
	explicit := Artwork{OwnerID: "20250101", Artist: ArtistLabel("20250101")}
	assert.True(t, explicit.OwnedBy("20250101"))
	assert.False(t, explicit.OwnedBy("20250102"))
	assert.False(t, explicit.OwnedBy(""))

	legacy := Artwork{Artist: "Student_1234567"}
	assert.True(t, legacy.OwnedBy("1234567"))
	assert.Equal(t, "1234567", legacy.Owner())

	curated := Artwork{Artist: "Claude Monet"}
	assert.False(t, curated.OwnedBy("Claude Monet"))
	assert.Equal(t, "", curated.Owner())
}

func TestUserRemoveUploadAndView(t *testing.T) {
	u := &User{ID: "20250101", CredentialSecret: "hash", UploadIDs: []string{"a", "b", "a", "c"}}
	u.RemoveUpload("a")
	assert.Equal(t, []string{"b", "c"}, u.UploadIDs)

	view := u.View()
	view.UploadIDs[0] = "mutated"
	assert.Equal(t, "b", u.UploadIDs[0])
}

func TestRoleValid(t *testing.T) {
	assert.True(t, RoleStudent.Valid())
	assert.True(t, RoleTeacher.Valid())
	assert.True(t, RoleAdmin.Valid())
	assert.False(t, Role("guest").Valid())
}
