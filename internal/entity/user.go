package entity

import "time"

type Role string

const (
	RoleStudent Role = "student"
	RoleTeacher Role = "teacher"
	RoleAdmin   Role = "admin"
)

// AdminID is the account id that carries the admin override for deletions.
const AdminID = "admin"

func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleTeacher, RoleAdmin:
		return true
	}
	return false
}

// User is persisted under the keys the original db.json used.
type User struct {
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	Role             Role      `json:"userType"`
	CredentialSecret string    `json:"password"`
	JoinedAt         time.Time `json:"joined"`
	UploadIDs        []string  `json:"uploads"`
}

// UserView is a User without its credential.
type UserView struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Role      Role      `json:"userType"`
	JoinedAt  time.Time `json:"joined"`
	UploadIDs []string  `json:"uploads"`
}

func (u *User) View() *UserView {
	uploads := make([]string, len(u.UploadIDs))
	copy(uploads, u.UploadIDs)
	return &UserView{
		ID:        u.ID,
		Name:      u.Name,
		Role:      u.Role,
		JoinedAt:  u.JoinedAt,
		UploadIDs: uploads,
	}
}

// RemoveUpload drops every occurrence of artworkID from the upload list.
func (u *User) RemoveUpload(artworkID string) {
	kept := u.UploadIDs[:0]
	for _, id := range u.UploadIDs {
		if id != artworkID {
			kept = append(kept, id)
		}
	}
	u.UploadIDs = kept
}
