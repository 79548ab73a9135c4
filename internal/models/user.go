package models

import (
	"encoding/json"
	"fmt"

	"github.com/mitchellh/mapstructure"
)

type Role string

const (
	RoleAdmin       Role = "admin"
	RoleStudent     Role = "student"
	RoleDonor       Role = "donor"
	RoleInvigilator Role = "invigilator"
)

// User is the identity record returned by the gateway. Fields the portal does
// not model are kept in Extra so a round trip through session storage keeps them.
type User struct {
	ID           string         `mapstructure:"id"`
	FullName     string         `mapstructure:"full_name"`
	Email        string         `mapstructure:"email"`
	Role         Role           `mapstructure:"role"`
	Verified     bool           `mapstructure:"verified"`
	IsActive     *bool          `mapstructure:"is_active"`
	ProfileImage string         `mapstructure:"profile_image"`
	Phone        string         `mapstructure:"phone"`
	Address      string         `mapstructure:"address"`
	DOB          string         `mapstructure:"dob"`
	Gender       string         `mapstructure:"gender"`
	Bio          string         `mapstructure:"bio"`
	Organization string         `mapstructure:"organization"`
	Extra        map[string]any `mapstructure:",remain"`
}

func (u User) HasRole(roles ...Role) bool {
	for _, r := range roles {
		if u.Role == r {
			return true
		}
	}
	return false
}

// Active reports false only when the gateway explicitly marked the account inactive.
func (u User) Active() bool {
	return u.IsActive == nil || *u.IsActive
}

// DecodeUser converts a loosely typed gateway record into a User. Numeric ids
// and 0/1 flags are accepted.
func DecodeUser(raw map[string]any) (User, error) {
	var u User
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "mapstructure",
		WeaklyTypedInput: true,
		Result:           &u,
	})
	if err != nil {
		return User{}, err
	}
	if err := dec.Decode(raw); err != nil {
		return User{}, fmt.Errorf("decode user: %w", err)
	}
	return u, nil
}

// Map flattens the user back into the gateway's snake_case shape.
func (u User) Map() map[string]any {
	out := make(map[string]any, 13+len(u.Extra))
	for k, v := range u.Extra {
		out[k] = v
	}
	out["id"] = u.ID
	out["full_name"] = u.FullName
	out["email"] = u.Email
	out["role"] = string(u.Role)
	out["verified"] = u.Verified
	if u.IsActive != nil {
		out["is_active"] = *u.IsActive
	}
	setIfNotEmpty(out, "profile_image", u.ProfileImage)
	setIfNotEmpty(out, "phone", u.Phone)
	setIfNotEmpty(out, "address", u.Address)
	setIfNotEmpty(out, "dob", u.DOB)
	setIfNotEmpty(out, "gender", u.Gender)
	setIfNotEmpty(out, "bio", u.Bio)
	setIfNotEmpty(out, "organization", u.Organization)
	return out
}

func (u User) MarshalJSON() ([]byte, error) {
	return json.Marshal(u.Map())
}

func (u *User) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	decoded, err := DecodeUser(raw)
	if err != nil {
		return err
	}
	*u = decoded
	return nil
}

func setIfNotEmpty(m map[string]any, key, value string) {
	if value != "" {
		m[key] = value
	}
}
