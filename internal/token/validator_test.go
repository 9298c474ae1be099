package token

import (
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/skylink-gateway/internal/domain"
)

var testNow = time.Unix(1700000000, 0)

func fixedClock() time.Time { return testNow }

func mintCredential(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString([]byte("upstream-secret"))
	require.NoError(t, err)
	return signed
}

func TestValidateExpiryBoundary(t *testing.T) {
	v := NewValidator(fixedClock)

	cases := []struct {
		name   string
		offset time.Duration
		valid  bool
	}{
		{"one second in the past", -time.Second, false},
		{"exactly now", 0, false},
		{"one second in the future", time.Second, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			credential := mintCredential(t, jwt.MapClaims{
				"sub":  "passenger@skylink.test",
				"role": "passenger",
				"exp":  testNow.Add(tc.offset).Unix(),
			})

			identity, err := v.Validate(credential)
			if tc.valid {
				require.NoError(t, err)
				assert.Equal(t, domain.RolePassenger, identity.Role)
			} else {
				assert.ErrorIs(t, err, ErrCredentialExpired)
				assert.Nil(t, identity)
			}
		})
	}
}

func TestValidateAbsent(t *testing.T) {
	v := NewValidator(fixedClock)

	for _, credential := range []string{"", "   "} {
		identity, err := v.Validate(credential)
		assert.ErrorIs(t, err, ErrCredentialAbsent)
		assert.Nil(t, identity)
	}
}

func TestValidateMalformed(t *testing.T) {
	v := NewValidator(fixedClock)

	cases := map[string]string{
		"not a token":      "garbage",
		"bad segments":     "a.b.c",
		"tampered padding": "eyJhbGciOiJIUzI1NiJ9.!!!.sig",
	}

	for name, credential := range cases {
		t.Run(name, func(t *testing.T) {
			identity, err := v.Validate(credential)
			assert.ErrorIs(t, err, ErrCredentialMalformed)
			assert.Nil(t, identity)
		})
	}
}

func TestValidateMissingExpiry(t *testing.T) {
	v := NewValidator(fixedClock)

	credential := mintCredential(t, jwt.MapClaims{
		"sub":  "passenger@skylink.test",
		"role": "passenger",
	})

	_, err := v.Validate(credential)
	assert.ErrorIs(t, err, ErrCredentialMalformed)
}

func TestValidateUnknownRole(t *testing.T) {
	v := NewValidator(fixedClock)

	credential := mintCredential(t, jwt.MapClaims{
		"sub":  "pilot@skylink.test",
		"role": "pilot",
		"exp":  testNow.Add(time.Hour).Unix(),
	})

	_, err := v.Validate(credential)
	assert.ErrorIs(t, err, ErrCredentialMalformed)
}

func TestValidateExtractsClaims(t *testing.T) {
	v := NewValidator(fixedClock)

	credential := mintCredential(t, jwt.MapClaims{
		"sub":         "staff@skylink.test",
		"role":        "staff",
		"full_name":   "Ada Cross",
		"employee_id": "SL-0042",
		"user_id":     int64(17),
		"iat":         testNow.Add(-time.Minute).Unix(),
		"exp":         testNow.Add(time.Hour).Unix(),
	})

	identity, err := v.Validate(credential)
	require.NoError(t, err)
	assert.Equal(t, "staff@skylink.test", identity.Subject)
	assert.Equal(t, domain.RoleStaff, identity.Role)
	assert.Equal(t, "Ada Cross", identity.FullName)
	assert.Equal(t, "SL-0042", identity.EmployeeID)
	assert.Equal(t, int64(17), identity.UserID)
	assert.Equal(t, testNow.Add(time.Hour).Unix(), identity.ExpiresAt.Unix())
}

func TestValidateIsDeterministic(t *testing.T) {
	v := NewValidator(fixedClock)
	credential := mintCredential(t, jwt.MapClaims{
		"sub":  "passenger@skylink.test",
		"role": "passenger",
		"exp":  testNow.Add(time.Hour).Unix(),
	})

	first, err := v.Validate(credential)
	require.NoError(t, err)
	second, err := v.Validate(credential)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
