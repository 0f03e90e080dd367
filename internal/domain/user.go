package domain

// User is a registered account. PasswordHash never leaves the service layer.
type User struct {
	Meta
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
	IsAdmin      bool
}

// NewUser validates the profile fields of a user. The email is expected normalized.
func NewUser(email, passwordHash, firstName, lastName string, isAdmin bool) (*User, error) {
	if err := ValidateEmail(email); err != nil {
		return nil, err
	}
	if err := validatePersonName("first_name", firstName); err != nil {
		return nil, err
	}
	if err := validatePersonName("last_name", lastName); err != nil {
		return nil, err
	}
	return &User{
		Email:        email,
		PasswordHash: passwordHash,
		FirstName:    firstName,
		LastName:     lastName,
		IsAdmin:      isAdmin,
	}, nil
}

func (u *User) Matches(attr string, value any) (bool, error) {
	switch attr {
	case "id":
		return matchString(value, u.ID, false), nil
	case "email":
		return matchString(value, u.Email, true), nil
	case "is_admin":
		b, ok := value.(bool)
		return ok && b == u.IsAdmin, nil
	default:
		return false, unknownAttribute("user", attr)
	}
}

func (u *User) Clone() *User {
	c := *u
	return &c
}

// UserPatch lists the mutable user fields.
type UserPatch struct {
	Email        *string
	PasswordHash *string
	FirstName    *string
	LastName     *string
	IsAdmin      *bool
}

// Validate checks every supplied field before any of them is applied.
func (p UserPatch) Validate() error {
	if p.Email != nil {
		if err := ValidateEmail(*p.Email); err != nil {
			return err
		}
	}
	if p.FirstName != nil {
		if err := validatePersonName("first_name", *p.FirstName); err != nil {
			return err
		}
	}
	if p.LastName != nil {
		if err := validatePersonName("last_name", *p.LastName); err != nil {
			return err
		}
	}
	return nil
}

func (p UserPatch) Apply(u *User) {
	if p.Email != nil {
		u.Email = *p.Email
	}
	if p.PasswordHash != nil {
		u.PasswordHash = *p.PasswordHash
	}
	if p.FirstName != nil {
		u.FirstName = *p.FirstName
	}
	if p.LastName != nil {
		u.LastName = *p.LastName
	}
	if p.IsAdmin != nil {
		u.IsAdmin = *p.IsAdmin
	}
}
