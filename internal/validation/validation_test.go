package validation

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	if err := Register(); err != nil {
		panic(err)
	}
	m.Run()
}

func bindForm(t *testing.T, values url.Values, out any) error {
	t.Helper()
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	c.Request = req
	return c.ShouldBind(out)
}

func TestValidMobile(t *testing.T) {
	for _, ok := range []string{"9876543210", "6000000000", " 7123456789 "} {
		if !ValidMobile(ok) {
			t.Errorf("expected %q to be valid", ok)
		}
	}
	for _, bad := range []string{"5876543210", "98765", "98765432101", "98765abcde", ""} {
		if ValidMobile(bad) {
			t.Errorf("expected %q to be invalid", bad)
		}
	}
}

func TestContactForm(t *testing.T) {
	var f ContactForm
	err := bindForm(t, url.Values{
		"name": {"Asha"}, "email": {"asha@example.org"}, "mobile": {"9876543210"}, "message": {"Hello"},
	}, &f)
	if err != nil {
		t.Fatalf("bind: %v", err)
	}
	if f.IsSpam() {
		t.Fatal("empty honeypot flagged as spam")
	}

	var bad ContactForm
	err = bindForm(t, url.Values{"name": {"Asha"}, "email": {"asha@example.org"}, "mobile": {"12345"}, "message": {"Hi"}}, &bad)
	if got := First(err); got != "Enter a valid 10-digit mobile number." {
		t.Fatalf("unexpected message %q (%v)", got, err)
	}

	var spam ContactForm
	_ = bindForm(t, url.Values{"website": {"http://spam"}}, &spam)
	if !spam.IsSpam() {
		t.Fatal("filled honeypot not detected")
	}
}

func TestSignupMessagesUseFormNames(t *testing.T) {
	var f SignupForm
	err := bindForm(t, url.Values{"email": {"not-an-email"}, "password": {"123"}, "role": {"wizard"}}, &f)
	msgs := Messages(err)
	want := []string{
		"Full Name is required.",
		"Enter a valid email.",
		"Password must be at least 6 characters.",
		"Role must be one of: student, admin, donor, invigilator.",
	}
	if len(msgs) != len(want) {
		t.Fatalf("expected %d messages, got %v", len(want), msgs)
	}
	for i := range want {
		if msgs[i] != want[i] {
			t.Errorf("message %d: expected %q, got %q", i, want[i], msgs[i])
		}
	}
}

func TestSignupFieldsDropBlanks(t *testing.T) {
	f := SignupForm{FullName: " Ravi ", Email: "r@x.io", Password: "secret", Role: "donor", Bio: "  "}
	fields := f.Fields()
	if fields["full_name"] != "Ravi" {
		t.Fatalf("name not trimmed: %q", fields["full_name"])
	}
	if _, ok := fields["bio"]; ok {
		t.Fatal("blank bio should be omitted")
	}
}

func TestMessagesForNonValidatorError(t *testing.T) {
	var f DonationForm
	err := bindForm(t, url.Values{"amount": {"lots"}, "name": {"N"}, "email": {"n@x.io"}}, &f)
	if err == nil {
		t.Fatal("expected bind error for non-numeric amount")
	}
	if got := First(err); got != "Please check the form and try again." {
		t.Fatalf("unexpected message %q", got)
	}
}
