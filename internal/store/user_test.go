package store

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"

	"inkwell/internal/models"
)

func TestUserStoreCreate(t *testing.T) {
	db := testDB(t)
	u := newTestUser(t, db)

	if u.ID == uuid.Nil {
		t.Error("expected non-nil UUID")
	}
	if u.Role != models.RoleUser {
		t.Errorf("role: got %q, want user", u.Role)
	}
	if u.Image != models.DefaultUserImage {
		t.Errorf("image: got %q, want default", u.Image)
	}
	if u.PasswordHash == "" || u.PasswordHash == "secret123" {
		t.Error("password must be stored hashed")
	}
}

func TestUserStoreCreateDuplicate(t *testing.T) {
	db := testDB(t)
	s := NewUserStore(db)
	ctx := context.Background()
	u := newTestUser(t, db)

	tests := []struct {
		name string
		in   models.NewUser
	}{
		{"same email", models.NewUser{Name: "X", Username: uniq("other"), Email: u.Email, Password: "p"}},
		{"same email different case", models.NewUser{Name: "X", Username: uniq("other"), Email: " " + strings.ToUpper(u.Email), Password: "p"}},
		{"same username", models.NewUser{Name: "X", Username: u.Username, Email: uniq("other") + "@store-test.local", Password: "p"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Create(ctx, tt.in)
			if !errors.Is(err, ErrUserExists) {
				t.Errorf("got %v, want ErrUserExists", err)
			}
		})
	}
}

func TestUserStoreFind(t *testing.T) {
	db := testDB(t)
	s := NewUserStore(db)
	ctx := context.Background()
	u := newTestUser(t, db)

	byEmail, err := s.FindByEmail(ctx, u.Email)
	if err != nil || byEmail == nil || byEmail.ID != u.ID {
		t.Errorf("FindByEmail: %v, %v", byEmail, err)
	}
	byName, err := s.FindByUsername(ctx, u.Username)
	if err != nil || byName == nil || byName.ID != u.ID {
		t.Errorf("FindByUsername: %v, %v", byName, err)
	}
	byID, err := s.FindByID(ctx, u.ID)
	if err != nil || byID == nil || byID.Email != u.Email {
		t.Errorf("FindByID: %v, %v", byID, err)
	}

	none, err := s.FindByEmail(ctx, "nobody-"+uuid.NewString()+"@store-test.local")
	if err != nil || none != nil {
		t.Errorf("FindByEmail unknown: got %v, %v", none, err)
	}
}

func TestUserStoreValidateCredentials(t *testing.T) {
	db := testDB(t)
	s := NewUserStore(db)
	ctx := context.Background()
	u := newTestUser(t, db)

	got, err := s.ValidateCredentials(ctx, u.Email, "secret123")
	if err != nil || got == nil || got.ID != u.ID {
		t.Errorf("valid credentials: got %v, %v", got, err)
	}

	got, err = s.ValidateCredentials(ctx, u.Email, "wrong")
	if err != nil || got != nil {
		t.Errorf("wrong password: got %v, %v", got, err)
	}

	got, err = s.ValidateCredentials(ctx, "unknown-"+uuid.NewString()+"@store-test.local", "secret123")
	if err != nil || got != nil {
		t.Errorf("unknown email: got %v, %v", got, err)
	}

	if !s.VerifyPassword(u.PasswordHash, "secret123") {
		t.Error("VerifyPassword rejected the right password")
	}
}

func TestUserStoreUpdateProfile(t *testing.T) {
	db := testDB(t)
	s := NewUserStore(db)
	ctx := context.Background()
	u := newTestUser(t, db)
	other := newTestUser(t, db)

	newName := uniq("renamed")
	got, err := s.UpdateProfile(ctx, u.ID, models.ProfileUpdate{Name: "New Name", Username: newName, Bio: "Hello"})
	if err != nil {
		t.Fatalf("UpdateProfile: %v", err)
	}
	if got.Name != "New Name" || got.Username != newName || got.Bio != "Hello" {
		t.Errorf("got %+v", got)
	}
	if got.Image != u.Image {
		t.Errorf("empty image should keep the old one, got %q", got.Image)
	}

	_, err = s.UpdateProfile(ctx, u.ID, models.ProfileUpdate{Name: "X", Username: other.Username})
	if !errors.Is(err, ErrUsernameTaken) {
		t.Errorf("taken username: got %v, want ErrUsernameTaken", err)
	}

	missing, err := s.UpdateProfile(ctx, uuid.New(), models.ProfileUpdate{Name: "X", Username: uniq("ghost")})
	if err != nil || missing != nil {
		t.Errorf("missing user: got %v, %v", missing, err)
	}
}

func TestUserStoreSetPassword(t *testing.T) {
	db := testDB(t)
	s := NewUserStore(db)
	ctx := context.Background()
	u := newTestUser(t, db)

	if err := s.SetPassword(ctx, u.ID, "brand-new-pass"); err != nil {
		t.Fatalf("SetPassword: %v", err)
	}
	if got, _ := s.ValidateCredentials(ctx, u.Email, "secret123"); got != nil {
		t.Error("old password still accepted")
	}
	if got, _ := s.ValidateCredentials(ctx, u.Email, "brand-new-pass"); got == nil {
		t.Error("new password rejected")
	}
}
