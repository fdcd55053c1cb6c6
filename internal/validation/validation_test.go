package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidatePassword(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{"Valid", "Sup3r$ecret1", false},
		{"Exactly Min Length", "Abcde1!x", false},
		{"Exactly Max Length", "A" + strings.Repeat("b", 29) + "1!", false},
		{"Too Short", "Ab1!", true},
		{"Too Long", "A" + strings.Repeat("b", 30) + "1!", true},
		{"No Upper", "secure12!", true},
		{"No Lower", "SECURE12!", true},
		{"No Digit", "SecurePass!!", true},
		{"No Special", "SecurePass123", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePassword(tt.password)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestPasswordViolations_EnumeratesEveryRule(t *testing.T) {
	t.Parallel()
	v := PasswordViolations("abc")

	assert.ElementsMatch(t, Violations{
		"Password must be at least 8 characters long",
		"Password must contain at least one uppercase letter",
		"Password must contain at least one number",
		"Password must contain at least one special character",
	}, v)
}

func TestValidateUsername(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		username string
		wantErr  bool
	}{
		{"Valid", "alice", false},
		{"Min Length", "abcd", false},
		{"Max Length", strings.Repeat("a", 15), false},
		{"Too Short", "abc", true},
		{"Too Long", strings.Repeat("a", 16), true},
		{"Slash", "al/ice", true},
		{"Space", "al ice", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateUsername(tt.username)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateEmail(t *testing.T) {
	t.Parallel()
	emailAt254 := strings.Repeat("a", 64) + "@" + strings.Repeat("b", 185) + ".com"
	tests := []struct {
		name    string
		email   string
		wantErr bool
	}{
		{"Valid", "alice@x.com", false},
		{"Exactly 254 Characters", emailAt254, false},
		{"Invalid Format", "not-an-email", true},
		{"Missing Domain", "user@", true},
		{"Multiple At Symbols", "user@@example.com", true},
		{"Display Name Form", "Alice <alice@x.com>", true},
		{"Trailing Dot In Domain", "user@example.com.", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateEmail(tt.email)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateProjectName(t *testing.T) {
	t.Parallel()
	assert.NoError(t, ValidateProjectName("repo"))
	assert.NoError(t, ValidateProjectName("my-repo_v2.0"))
	assert.Error(t, ValidateProjectName(""))
	assert.Error(t, ValidateProjectName("a/b"))
	assert.Error(t, ValidateProjectName(".."))
	assert.Error(t, ValidateProjectName(strings.Repeat("x", 101)))
}

func TestSignup(t *testing.T) {
	t.Parallel()

	t.Run("valid input", func(t *testing.T) {
		v := Signup(SignupInput{Email: "alice@x.com", Username: "alice", Password: "Sup3r$ecret1"})
		assert.Empty(t, v)
		assert.NoError(t, v.Err())
	})

	t.Run("reports failures across fields", func(t *testing.T) {
		v := Signup(SignupInput{Email: "bad", Username: "al", Name: "Al", Password: "password"})
		assert.Contains(t, v, "Invalid email")
		assert.Contains(t, v, "Username must be at least 4 characters long")
		assert.Contains(t, v, "Name must be at least 3 characters long")
		assert.Contains(t, v, "Password must contain at least one uppercase letter")

		var verr ViolationError
		assert.ErrorAs(t, v.Err(), &verr)
		assert.Len(t, verr, len(v))
	})
}

func TestSignin(t *testing.T) {
	t.Parallel()
	assert.Empty(t, Signin(SigninInput{Username: "alice", Password: "x"}))
	assert.Empty(t, Signin(SigninInput{Email: "alice@x.com", Password: "x"}))
	assert.Contains(t, Signin(SigninInput{Password: "x"}), "enter a username or email")
	assert.Contains(t, Signin(SigninInput{Username: "alice"}), "Password is required")
	assert.Contains(t, Signin(SigninInput{Email: "nope", Password: "x"}), "Invalid email")
}
