package jwt

import (
	"testing"
	"time"
)

func TestGenerateToken(t *testing.T) {
	tests := []struct {
		name       string
		userID     string
		role       string
		expiration time.Duration
		secret     string
	}{
		{
			name:       "owner token",
			userID:     "user-123",
			role:       "OWNER",
			expiration: 15 * time.Minute,
			secret:     "test-secret-key-32-characters!",
		},
		{
			name:       "viewer token short expiration",
			userID:     "user-456",
			role:       "VIEWER",
			expiration: 1 * time.Second,
			secret:     "test-secret",
		},
		{
			name:       "no role",
			userID:     "user-789",
			role:       "",
			expiration: 24 * time.Hour,
			secret:     "test-secret",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := GenerateToken(tt.userID, tt.role, tt.expiration, tt.secret)
			if err != nil {
				t.Errorf("GenerateToken() error = %v", err)
				return
			}
			if token == "" {
				t.Error("GenerateToken() returned empty token")
			}
			if len(token) < 100 {
				t.Errorf("GenerateToken() token too short, len = %d", len(token))
			}
		})
	}
}

func TestValidateToken(t *testing.T) {
	userID := "test-user-id"
	secret := "validation-secret-key-32-chars"

	validToken, _ := GenerateToken(userID, "OWNER", 1*time.Hour, secret)
	expiredToken, _ := GenerateToken(userID, "OWNER", -1*time.Hour, secret)

	tests := []struct {
		name    string
		token   string
		secret  string
		wantErr bool
	}{
		{name: "valid token", token: validToken, secret: secret, wantErr: false},
		{name: "expired token", token: expiredToken, secret: secret, wantErr: true},
		{name: "wrong secret", token: validToken, secret: "wrong-secret", wantErr: true},
		{name: "invalid token format", token: "invalid.token.format", secret: secret, wantErr: true},
		{name: "empty token", token: "", secret: secret, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := ValidateToken(tt.token, tt.secret)

			if tt.wantErr {
				if err == nil {
					t.Error("ValidateToken() expected error but got none")
				}
				return
			}

			if err != nil {
				t.Errorf("ValidateToken() error = %v", err)
				return
			}
			if claims.UserID != userID {
				t.Errorf("ValidateToken() userID = %v, want %v", claims.UserID, userID)
			}
			if claims.Role != "OWNER" {
				t.Errorf("ValidateToken() role = %v, want OWNER", claims.Role)
			}
		})
	}
}

func TestTokenExpiration(t *testing.T) {
	userID := "expiration-test-user"
	secret := "expiration-test-secret"

	token, err := GenerateToken(userID, "OWNER", 1*time.Second, secret)
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}

	claims, err := ValidateToken(token, secret)
	if err != nil {
		t.Fatalf("ValidateToken() immediate validation error = %v", err)
	}
	if claims.UserID != userID {
		t.Errorf("ValidateToken() userID = %v, want %v", claims.UserID, userID)
	}

	time.Sleep(2 * time.Second)

	if _, err = ValidateToken(token, secret); err == nil {
		t.Error("ValidateToken() expected error for expired token")
	}
}
