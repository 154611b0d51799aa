package user

import (
	"testing"
	"time"

	"github.com/volatiletech/null/v8"
)

func TestMakeVerifyToken(t *testing.T) {
	gen := newTokenGenerator("secret", 3*24*time.Hour)

	now := time.Now()
	usr := User{
		ID:        1,
		FirstName: "T",
		Username:  null.StringFrom("t"),
		Email:     "t@test.test",
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
		LastLogin: null.TimeFrom(now),
	}
	_ = usr.SetPassword("pwd")

	validToken := gen.makeToken(usr)

	// generate an expired token
	dayLate := gen.timeout + (24 * time.Hour)
	gen.now = func() time.Time { return time.Now().Add(-dayLate) }
	expiredToken := gen.makeToken(usr)
	gen.now = time.Now // reset

	// the token is bound to the password hash
	changedUsr := usr
	_ = changedUsr.SetPassword("new-pwd")

	tests := []struct {
		name    string
		usr     User
		token   string
		wantErr error
	}{
		{name: "no token", usr: usr, wantErr: errInvalidToken},
		{name: "invalid parts len", usr: usr, token: "lmaooolol", wantErr: errInvalidToken},
		{name: "invalid base32", usr: usr, token: "hahaha-sigsig-sig", wantErr: errInvalidToken},
		{name: "invalid timestamp", usr: usr, token: "NRXWY-sigsig-sig", wantErr: errInvalidToken},
		{name: "invalid token", usr: usr, token: "HE4TS-sigsig-sig", wantErr: errInvalidToken},
		{name: "expired token", usr: usr, token: expiredToken, wantErr: errTokenExpired},
		{name: "password changed", usr: changedUsr, token: validToken, wantErr: errInvalidToken},
		{name: "valid token", usr: usr, token: validToken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := gen.verifyToken(tt.usr, tt.token); err != tt.wantErr {
				t.Errorf("verifyToken() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestEncodeDecodeUID(t *testing.T) {
	uid := EncodeUID(User{ID: 42})
	id, err := decodeUID(uid)
	if err != nil {
		t.Fatalf("decodeUID() failed: %v", err)
	}
	if id != 42 {
		t.Errorf("decodeUID() = %d, want 42", id)
	}
	if _, err := decodeUID("!!"); err == nil {
		t.Error("decodeUID() expected an error")
	}
}
