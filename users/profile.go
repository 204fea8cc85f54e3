package users

import (
	"strconv"
	"strings"

	"github.com/jrsteele09/go-admin-console/internal/utils"
)

// Profile is the loosely typed user record returned by the backend.
// Field names vary between deployments, so accessors try the common spellings.
type Profile map[string]any

// FromAny coerces a decoded JSON value into a Profile. Non-objects yield nil.
func FromAny(v any) Profile {
	m := utils.AsMap(v)
	if m == nil {
		return nil
	}
	return Profile(m)
}

func (p Profile) ID() string {
	switch id := p["id"].(type) {
	case string:
		return id
	case float64:
		return strconv.FormatFloat(id, 'f', -1, 64)
	}
	return ""
}

func (p Profile) Email() string {
	return utils.FirstString(p, "email", "email_address")
}

// DisplayName prefers a full name, then first/last names, then the email.
func (p Profile) DisplayName() string {
	if name := utils.FirstString(p, "name", "full_name", "username"); name != "" {
		return name
	}
	first := utils.FirstString(p, "first_name", "firstName")
	last := utils.FirstString(p, "last_name", "lastName")
	if full := strings.TrimSpace(first + " " + last); full != "" {
		return full
	}
	return p.Email()
}

// Avatar returns the raw image path, which may be relative to the API host.
func (p Profile) Avatar() string {
	return utils.FirstString(p, "avatar", "image", "profile_image", "photo")
}

// Roles accepts either a list of role names or a list of {"name": ...} objects.
func (p Profile) Roles() []string {
	raw, _ := p["roles"].([]any)
	roles := utils.ToStringSlice(raw)
	for _, r := range raw {
		if name := utils.FirstString(utils.AsMap(r), "name", "slug"); name != "" {
			roles = append(roles, name)
		}
	}
	if role := utils.FirstString(p, "role"); role != "" {
		roles = append(roles, role)
	}
	return roles
}

func (p Profile) HasRole(role string) bool {
	for _, r := range p.Roles() {
		if strings.EqualFold(r, role) {
			return true
		}
	}
	return false
}
