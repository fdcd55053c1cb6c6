package validation

// SignupInput mirrors the fields accepted at registration.
type SignupInput struct {
	Email    string
	Username string
	Name     string
	Password string
	PfpURL   string
}

// Signup checks every field and returns all failures together.
func Signup(in SignupInput) Violations {
	var v Violations
	v = append(v, EmailViolations(in.Email)...)
	v = append(v, UsernameViolations(in.Username)...)
	v = append(v, NameViolations(in.Name)...)
	v = append(v, PasswordViolations(in.Password)...)
	return v
}

// SigninInput mirrors the fields accepted at login.
type SigninInput struct {
	Email    string
	Username string
	Password string
}

// Signin requires a password and at least one identifier. Email syntax is
// only checked when an email was supplied.
func Signin(in SigninInput) Violations {
	var v Violations
	if in.Email == "" && in.Username == "" {
		v.add("enter a username or email")
	}
	if in.Email != "" {
		v = append(v, EmailViolations(in.Email)...)
	}
	if in.Password == "" {
		v.add("Password is required")
	}
	return v
}
