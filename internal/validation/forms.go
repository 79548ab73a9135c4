package validation

import "strings"

type LoginForm struct {
	Email    string `form:"email" binding:"required,email"`
	Password string `form:"password" binding:"required"`
}

type SignupForm struct {
	FullName     string `form:"full_name" binding:"required,max=120"`
	Email        string `form:"email" binding:"required,email"`
	Password     string `form:"password" binding:"required,min=6"`
	Role         string `form:"role" binding:"required,oneof=student admin donor invigilator"`
	Phone        string `form:"phone" binding:"omitempty,mobile"`
	Address      string `form:"address" binding:"max=300"`
	DOB          string `form:"dob" binding:"omitempty,datetime=2006-01-02"`
	Gender       string `form:"gender" binding:"omitempty,oneof=male female other"`
	Bio          string `form:"bio" binding:"max=500"`
	Organization string `form:"organization" binding:"max=120"`
}

// Fields returns the non-empty values keyed by their gateway field names.
func (f SignupForm) Fields() map[string]string {
	out := map[string]string{
		"full_name": strings.TrimSpace(f.FullName),
		"email":     strings.TrimSpace(f.Email),
		"password":  f.Password,
		"role":      f.Role,
	}
	setIfNotEmpty(out, "phone", f.Phone)
	setIfNotEmpty(out, "address", f.Address)
	setIfNotEmpty(out, "dob", f.DOB)
	setIfNotEmpty(out, "gender", f.Gender)
	setIfNotEmpty(out, "bio", f.Bio)
	setIfNotEmpty(out, "organization", f.Organization)
	return out
}

type ProfileForm struct {
	FullName     string `form:"full_name" binding:"required,max=120"`
	Phone        string `form:"phone" binding:"omitempty,mobile"`
	Address      string `form:"address" binding:"max=300"`
	DOB          string `form:"dob" binding:"omitempty,datetime=2006-01-02"`
	Gender       string `form:"gender" binding:"omitempty,oneof=male female other"`
	Bio          string `form:"bio" binding:"max=500"`
	Organization string `form:"organization" binding:"max=120"`
}

// Fields returns every profile field, including blanks, so a cleared value
// reaches the gateway.
func (f ProfileForm) Fields() map[string]string {
	return map[string]string{
		"full_name":    strings.TrimSpace(f.FullName),
		"phone":        strings.TrimSpace(f.Phone),
		"address":      strings.TrimSpace(f.Address),
		"dob":          f.DOB,
		"gender":       f.Gender,
		"bio":          strings.TrimSpace(f.Bio),
		"organization": strings.TrimSpace(f.Organization),
	}
}

type ContactForm struct {
	Name    string `form:"name" binding:"required,max=120"`
	Email   string `form:"email" binding:"required,email"`
	Mobile  string `form:"mobile" binding:"required,mobile"`
	Message string `form:"message" binding:"required,max=2000"`
	// Website is a honeypot: people never see it, bots fill it in.
	Website string `form:"website"`
}

func (f ContactForm) IsSpam() bool {
	return strings.TrimSpace(f.Website) != ""
}

type DonationForm struct {
	Amount  int    `form:"amount" json:"amount" binding:"required,gte=1"`
	Name    string `form:"name" json:"name" binding:"required,max=120"`
	Email   string `form:"email" json:"email" binding:"required,email"`
	PAN     string `form:"pan" json:"pan" binding:"omitempty,len=10,alphanum"`
	Address string `form:"address" json:"address" binding:"max=300"`
}

func setIfNotEmpty(m map[string]string, key, value string) {
	if v := strings.TrimSpace(value); v != "" {
		m[key] = v
	}
}
