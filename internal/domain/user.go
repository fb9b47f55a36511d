package domain

const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

type User struct {
	ID        string `db:"id" json:"id"`
	Email     string `db:"email" json:"email"`
	Name      string `db:"name" json:"name"`
	Phone     string `db:"phone" json:"phone,omitempty"`
	Hash      string `db:"password_hash" json:"-"`
	Role      string `db:"role" json:"role"`
	CreatedAt string `db:"created_at" json:"createdAt"`
}

// Principal is the verified caller of a request. Handlers build it from the
// bearer token and hand it to services explicitly.
type Principal struct {
	UserID string
	Email  string
	Role   string
}

func (p Principal) IsAdmin() bool { return p.Role == RoleAdmin }

// Owns reports whether the principal may act on a record owned by userID.
func (p Principal) Owns(userID *string) bool {
	if p.IsAdmin() {
		return true
	}
	return userID != nil && *userID != "" && *userID == p.UserID
}
