package domain

// Profile is the full user record fetched from the backend.
type Profile struct {
	UserID        string           `json:"userId"`
	Email         string           `json:"email"`
	Firstname     string           `json:"firstname,omitempty"`
	Lastname      string           `json:"lastname,omitempty"`
	Phone         string           `json:"phone,omitempty"`
	Country       string           `json:"country,omitempty"`
	City          string           `json:"city,omitempty"`
	State         string           `json:"state,omitempty"`
	DateOfBirth   string           `json:"date_of_birth,omitempty"`
	Address       string           `json:"address,omitempty"`
	ProfileImage  string           `json:"profile_image,omitempty"`
	WalletAddress string           `json:"walletAddress,omitempty"`
	Role          Role             `json:"role,omitempty"`
	Types         []CapabilityType `json:"types,omitempty"`
}

// Clone returns a deep copy of the profile.
func (p *Profile) Clone() *Profile {
	if p == nil {
		return nil
	}
	c := *p
	if p.Types != nil {
		c.Types = append([]CapabilityType(nil), p.Types...)
	}
	return &c
}

// ProfileUpdate holds the editable profile fields. Nil fields are left untouched.
type ProfileUpdate struct {
	Firstname    *string `json:"firstname,omitempty"`
	Lastname     *string `json:"lastname,omitempty"`
	Phone        *string `json:"phone,omitempty"`
	Country      *string `json:"country,omitempty"`
	City         *string `json:"city,omitempty"`
	State        *string `json:"state,omitempty"`
	DateOfBirth  *string `json:"date_of_birth,omitempty"`
	Address      *string `json:"address,omitempty"`
	ProfileImage *string `json:"profile_image,omitempty"`
}
