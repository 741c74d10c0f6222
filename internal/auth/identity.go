package auth

// Identity is the only view of authentication the data layer needs: who is
// signed in, if anyone, and whether they may edit content.
type Identity interface {
	UserID() (string, bool)
	IsAdmin() bool
}

type anonymous struct{}

func (anonymous) UserID() (string, bool) { return "", false }
func (anonymous) IsAdmin() bool          { return false }

// Anonymous is the identity of a visitor who has not signed in.
var Anonymous Identity = anonymous{}

// User is a fixed signed-in identity.
type User struct {
	ID    string
	Admin bool
}

func (u User) UserID() (string, bool) { return u.ID, u.ID != "" }
func (u User) IsAdmin() bool          { return u.ID != "" && u.Admin }
