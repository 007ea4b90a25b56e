package models

import "testing"

func TestCreateUserHashesPassword(t *testing.T) {
	u, err := CreateUser("Asha Nair", "asha@example.com", "drip-or-drown")
	if err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}

	if u.Password == "drip-or-drown" {
		t.Fatal("password stored in plaintext")
	}
	if !u.CheckPassword("drip-or-drown") {
		t.Error("CheckPassword() rejected the correct password")
	}
	if u.CheckPassword("wrong") {
		t.Error("CheckPassword() accepted a wrong password")
	}
	if u.Role != ROLE_USER || u.Status != STATUS_ACTIVE {
		t.Errorf("CreateUser() role=%q status=%q, want %q/%q", u.Role, u.Status, ROLE_USER, STATUS_ACTIVE)
	}
}

func TestCreateUserValidation(t *testing.T) {
	tests := []struct {
		name     string
		userName string
		email    string
		password string
	}{
		{"bad email", "Asha Nair", "not-an-email", "drip-or-drown"},
		{"short password", "Asha Nair", "asha@example.com", "abc"},
		{"short name", "A", "asha@example.com", "drip-or-drown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := CreateUser(tt.userName, tt.email, tt.password); err == nil {
				t.Error("CreateUser() accepted invalid input")
			}
		})
	}
}
