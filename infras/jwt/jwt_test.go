package jwt_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"innkeep/config"
	"innkeep/infras/jwt"
)

func testConfig(secret string, expireMin int) *config.Config {
	cfg := &config.Config{}
	cfg.App.Name = "innkeep-test"
	cfg.JWT.AccessSecret = secret
	cfg.JWT.AccessExpireMin = expireMin

	return cfg
}

func TestJWT_GenerateAndValidate(t *testing.T) {
	svc := jwt.New(testConfig("test-secret", 60))

	token, err := svc.GenerateAccessToken("user-1", "user@example.com")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.ValidateAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "user@example.com", claims.Email)
	assert.Equal(t, "user-1", claims.Subject)
}

func TestJWT_ExpiredToken(t *testing.T) {
	svc := jwt.New(testConfig("test-secret", -1))

	token, err := svc.GenerateAccessToken("user-1", "user@example.com")
	require.NoError(t, err)

	_, err = svc.ValidateAccessToken(token)
	assert.ErrorIs(t, err, jwt.ErrExpiredToken)
}

func TestJWT_WrongSecret(t *testing.T) {
	svc := jwt.New(testConfig("test-secret", 60))

	token, err := svc.GenerateAccessToken("user-1", "user@example.com")
	require.NoError(t, err)

	other := jwt.New(testConfig("another-secret", 60))

	_, err = other.ValidateAccessToken(token)
	assert.ErrorIs(t, err, jwt.ErrInvalidToken)
}

func TestExtractTokenFromHeader(t *testing.T) {
	tests := []struct {
		name    string
		header  string
		want    string
		wantErr bool
	}{
		{
			name:   "valid bearer header",
			header: "Bearer abc.def.ghi",
			want:   "abc.def.ghi",
		},
		{
			name:    "empty header",
			header:  "",
			wantErr: true,
		},
		{
			name:    "missing bearer prefix",
			header:  "Basic abc",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := jwt.ExtractTokenFromHeader(tt.header)

			if tt.wantErr {
				assert.Error(t, err)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
