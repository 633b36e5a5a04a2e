package domain

// Role is the backend account role of a user.
type Role string

const (
	RoleUser  Role = "USER"
	RoleAgent Role = "AGENT"
	RoleAdmin Role = "ADMIN"
)

// CapabilityType is a tag denoting which marketplace actions a user may take.
// A user may hold several (a host can also book as a client).
type CapabilityType string

const (
	CapabilityClient CapabilityType = "CLIENT"
	CapabilityHost   CapabilityType = "HOST"
)

// Identity is the minimal descriptor of an authenticated user.
type Identity struct {
	UserID string           `json:"userId"`
	Email  string           `json:"email"`
	Role   Role             `json:"role,omitempty"`
	Types  []CapabilityType `json:"types,omitempty"`
}

// Has reports whether the identity carries the given capability tag.
func (i *Identity) Has(c CapabilityType) bool {
	if i == nil {
		return false
	}
	for _, t := range i.Types {
		if t == c {
			return true
		}
	}
	return false
}

// Clone returns a deep copy so snapshots never share the Types slice.
func (i *Identity) Clone() *Identity {
	if i == nil {
		return nil
	}
	c := *i
	if i.Types != nil {
		c.Types = append([]CapabilityType(nil), i.Types...)
	}
	return &c
}

// LoginData carries sign-in credentials.
type LoginData struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterData carries a new account request.
type RegisterData struct {
	Firstname string `json:"firstname"`
	Lastname  string `json:"lastname"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

// VerifyOtpData carries an email verification code.
type VerifyOtpData struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

// ResetPasswordData carries a password reset confirmation.
type ResetPasswordData struct {
	Email       string `json:"email"`
	Code        string `json:"code"`
	NewPassword string `json:"newPassword"`
}

// Credentials is what the backend returns when it issues a session.
type Credentials struct {
	Token string
	User  Identity
}
