package auth

import (
	"context"
	"testing"
	"time"

	"homelinks-backend/internal/domain"
	"homelinks-backend/internal/pkg/validation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validSignup() SignupInput {
	return SignupInput{
		Email:        "Priya@Example.com",
		Password:     "secret1",
		FirstName:    "Priya",
		LastName:     "Nair",
		MobileNumber: "9876543210",
	}
}

func TestValidateSignup(t *testing.T) {
	assert.NoError(t, ValidateSignup(validSignup()))

	in := validSignup()
	in.FirstName = " "
	in.MobileNumber = "12345"
	in.Password = "123"
	err := ValidateSignup(in)
	var errs validation.Errors
	require.ErrorAs(t, err, &errs)
	assert.Contains(t, errs, "firstName")
	assert.Contains(t, errs, "mobileNumber")
	assert.Contains(t, errs, "password")
	assert.NotContains(t, errs, "email")
}

func TestSignupAndLogin(t *testing.T) {
	db := setupAuthDB(t)
	l := &LocalAccounts{DB: db, Issuer: &Issuer{Secret: testSecret, TTL: time.Hour}}
	ctx := context.Background()

	u, err := l.Signup(ctx, validSignup())
	require.NoError(t, err)
	assert.Equal(t, "priya@example.com", u.Email)
	assert.NotEqual(t, "secret1", u.PasswordHash)

	var p domain.UserProfile
	require.NoError(t, db.First(&p, "id = ?", u.ID).Error)
	assert.Equal(t, "Priya", *p.FirstName)
	assert.Equal(t, "9876543210", *p.MobileNumber)

	// Duplicate email
	_, err = l.Signup(ctx, validSignup())
	assert.Equal(t, ErrEmailTaken, err)

	// Duplicate mobile with different email
	dup := validSignup()
	dup.Email = "other@example.com"
	_, err = l.Signup(ctx, dup)
	assert.Equal(t, ErrMobileTaken, err)

	_, err = l.Login(ctx, "priya@example.com", "wrong-pass")
	assert.Equal(t, ErrInvalidCredentials, err)
	_, err = l.Login(ctx, "", "")
	assert.Equal(t, ErrEmailPasswordRequired, err)

	res, err := l.Login(ctx, "PRIYA@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "bearer", res.TokenType)

	a := &Authenticator{DB: db, Verifier: &JWTVerifier{Secret: testSecret}}
	s, err := a.Authenticate(ctx, res.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, u.ID, s.UserID)
}

func TestLogin_Blocked(t *testing.T) {
	db := setupAuthDB(t)
	l := &LocalAccounts{DB: db, Issuer: &Issuer{Secret: testSecret}}
	ctx := context.Background()
	u, err := l.Signup(ctx, validSignup())
	require.NoError(t, err)
	until := domain.PermanentBanUntil
	require.NoError(t, db.Model(u).Update("banned_until", &until).Error)

	_, err = l.Login(ctx, "priya@example.com", "secret1")
	assert.Equal(t, ErrAccountBlocked, err)
}
