package schema

// AuthIdentityTable represents the 'auth.identity' table
type AuthIdentityTable struct {
	Table        string
	ID           string
	Email        string
	Password     string
	TokenVersion string
	Extra        string
	CreatedAt    string
	UpdatedAt    string
}

// AuthIdentity is the schema definition for auth.identity
var AuthIdentity = AuthIdentityTable{
	Table:        "auth.identity",
	ID:           "id",
	Email:        "email",
	Password:     "passwordhash",
	TokenVersion: "tokenversion",
	Extra:        "extra",
	CreatedAt:    "createdat",
	UpdatedAt:    "updatedat",
}

// Columns returns all standard column names
func (t AuthIdentityTable) Columns() []string {
	return []string{
		t.ID, t.Email, t.Password, t.TokenVersion, t.Extra, t.CreatedAt, t.UpdatedAt,
	}
}
