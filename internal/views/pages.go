package views

import (
	"github.com/rahulgadekar07/ankur-scholorhub-frontend/internal/datatable"
	"github.com/rahulgadekar07/ankur-scholorhub-frontend/internal/models"
	"github.com/rahulgadekar07/ankur-scholorhub-frontend/internal/validation"
)

type StaticPage struct {
	Layout
}

type ContactPage struct {
	Layout
	Form   validation.ContactForm
	Errors []string
}

type DonatePage struct {
	Layout
	Presets      []int
	MinAmount    int
	Currency     string
	MerchantName string
	Name         string
	Email        string
}

type LoginPage struct {
	Layout
	Email string
	Error string
}

type SignupPage struct {
	Layout
	Form   validation.SignupForm
	Roles  []models.Role
	Errors []string
}

type ProfilePage struct {
	Layout
	Profile  models.User
	ImageURL string
	Errors   []string
	MaxMB    int64
}

type AdminUsersPage struct {
	Layout
	Table     datatable.View
	Selected  map[string]any
	CanManage bool
	LoadError string
}
