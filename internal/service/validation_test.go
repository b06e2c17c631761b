package service

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Baragji/Blueprint-creator/internal/domain"
)

func TestSlugify(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Acme Inc!", "acme-inc"},
		{"  --Hello__World--  ", "hello-world"},
		{"ACME", "acme"},
		{"a   b   c", "a-b-c"},
		{"!!!", ""},
		{"", ""},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, slugify(tc.in), "slugify(%q)", tc.in)
	}
}

func TestValidateEmail(t *testing.T) {
	require.NoError(t, ValidateEmail("user@example.com"))
	require.NoError(t, ValidateEmail("first.last+tag@sub.example.co"))

	for _, bad := range []string{"", "user", "user@", "@example.com", "user @example.com", "user@example"} {
		err := ValidateEmail(bad)
		require.Error(t, err, "email %q", bad)
		requireCode(t, err, domain.CodeInvalidEmail)
	}
}

func TestValidatePassword(t *testing.T) {
	require.NoError(t, ValidatePassword("Str0ng!pass"))

	cases := []string{
		"Sh0rt!",       // too short
		"alllower1!",   // no uppercase
		"ALLUPPER1!",   // no lowercase
		"NoDigits!!",   // no number
		"NoSpecial11",  // no special character
		"Password123!", // forbidden substring
		"Qwerty!2345",  // forbidden substring
	}
	for _, bad := range cases {
		err := ValidatePassword(bad)
		require.Error(t, err, "password %q", bad)
		requireCode(t, err, domain.CodeWeakPassword)
	}
}

func TestRegisterRequestValidateNormalizes(t *testing.T) {
	req := RegisterRequest{
		Email:            "  User@Example.COM ",
		Password:         "Str0ng!pass",
		FirstName:        " Ada ",
		LastName:         " Lovelace ",
		OrganizationName: " Analytical Engines ",
	}
	require.NoError(t, req.Validate())
	require.Equal(t, "user@example.com", req.Email)
	require.Equal(t, "Ada", req.FirstName)
	require.Equal(t, "Lovelace", req.LastName)
	require.Equal(t, "Analytical Engines", req.OrganizationName)
}

func TestLoginRequestValidate(t *testing.T) {
	req := LoginRequest{Email: "User@Example.com", Password: "whatever"}
	require.NoError(t, req.Validate())
	require.Equal(t, "user@example.com", req.Email)

	bad := LoginRequest{Email: "user@example.com"}
	err := bad.Validate()
	requireCode(t, err, domain.CodeInvalidCredentials)
}

func requireCode(t *testing.T, err error, code domain.ErrorCode) {
	t.Helper()
	var authErr *domain.AuthError
	require.True(t, errors.As(err, &authErr), "expected AuthError, got %v", err)
	require.Equal(t, code, authErr.Code)
}
