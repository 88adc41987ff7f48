package service

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestTokenRoundTrip(t *testing.T) {
	iss := NewTokenIssuer("secret", time.Hour)
	token, err := iss.Generate(42)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	id, err := iss.Parse(token)
	if err != nil || id != 42 {
		t.Fatalf("Parse = %d, %v; want 42", id, err)
	}
}

func TestTokenRejected(t *testing.T) {
	iss := NewTokenIssuer("secret", 24*time.Hour)

	expired := NewTokenIssuer("secret", time.Hour)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	old, _ := expired.Generate(1)

	other, _ := NewTokenIssuer("another-secret", time.Hour).Generate(1)

	none, _ := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"user_id": 1,
		"exp":     time.Now().Add(time.Hour).Unix(),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)

	noUser, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte("secret"))

	noExp, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": 1,
	}).SignedString([]byte("secret"))

	cases := map[string]string{
		"empty":          "",
		"garbage":        "not.a.token",
		"expired":        old,
		"wrong secret":   other,
		"alg none":       none,
		"missing user":   noUser,
		"missing expiry": noExp,
	}
	for name, tok := range cases {
		if _, err := iss.Parse(tok); !errors.Is(err, ErrInvalidToken) {
			t.Fatalf("%s: err = %v; want ErrInvalidToken", name, err)
		}
	}
}

func TestPasswordHasher(t *testing.T) {
	h := PasswordHasher{Cost: 4}
	hash, err := h.Hash("pw")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if !h.Check("pw", hash) || h.Check("PW", hash) {
		t.Fatalf("Check mismatch")
	}
	again, _ := h.Hash("pw")
	if again == hash {
		t.Fatalf("hashes should be salted")
	}
}
