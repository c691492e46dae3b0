package application

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/example/deskbooker/internal/persistence"
)

type userRepoStub struct {
	user        User
	created     User
	createdHash string
	updated     User
	err         error
	createErr   error
	list        []User
}

func (u *userRepoStub) CreateUser(ctx context.Context, user User, passwordHash string) (User, error) {
	if u.createErr != nil {
		return User{}, u.createErr
	}
	u.created = user
	u.createdHash = passwordHash
	return user, nil
}

func (u *userRepoStub) GetUser(ctx context.Context, id string) (User, error) {
	if u.err != nil {
		return User{}, u.err
	}
	if u.user.ID == "" || u.user.ID != id {
		return User{}, persistence.ErrNotFound
	}
	return u.user, nil
}

func (u *userRepoStub) UpdateUser(ctx context.Context, user User) (User, error) {
	if u.err != nil {
		return User{}, u.err
	}
	u.updated = user
	return user, nil
}

func (u *userRepoStub) DeleteUser(ctx context.Context, id string) error {
	return u.err
}

func (u *userRepoStub) ListUsers(ctx context.Context) ([]User, error) {
	if u.err != nil {
		return nil, u.err
	}
	out := make([]User, len(u.list))
	copy(out, u.list)
	return out, nil
}

func TestUserService_CreateUser(t *testing.T) {
	t.Parallel()

	repo := &userRepoStub{}
	svc := NewUserService(repo, func() string { return "user-1" }, fixedNow)

	user, err := svc.CreateUser(context.Background(), UserInput{
		Name:     "Ada",
		Surname:  "Lovelace",
		Email:    " Ada.Lovelace@Example.COM ",
		Password: "correct horse battery",
	})
	if err != nil {
		t.Fatalf("CreateUser returned error: %v", err)
	}
	if user.ID != "user-1" {
		t.Fatalf("expected generated ID, got %q", user.ID)
	}
	if user.Email != "ada.lovelace@example.com" {
		t.Fatalf("expected normalized email, got %q", user.Email)
	}
	if repo.createdHash == "" || !strings.HasPrefix(repo.createdHash, "$argon2id$") {
		t.Fatalf("expected argon2id hash persisted, got %q", repo.createdHash)
	}
	if repo.createdHash == "correct horse battery" {
		t.Fatal("plaintext password reached the repository")
	}
}

func TestUserService_CreateUser_KeepsCallerID(t *testing.T) {
	t.Parallel()

	repo := &userRepoStub{}
	svc := NewUserService(repo, func() string { return "generated" }, fixedNow)

	user, err := svc.CreateUser(context.Background(), UserInput{
		ID:       "badge-42",
		Name:     "Grace",
		Surname:  "Hopper",
		Email:    "grace@example.com",
		Password: "password123",
	})
	if err != nil {
		t.Fatalf("CreateUser returned error: %v", err)
	}
	if user.ID != "badge-42" {
		t.Fatalf("expected caller-supplied ID kept, got %q", user.ID)
	}
}

func TestUserService_CreateUser_Validation(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name  string
		input UserInput
		field string
	}{
		{name: "missing name", input: UserInput{Surname: "H", Email: "a@b.test", Password: "password123"}, field: "name"},
		{name: "missing surname", input: UserInput{Name: "G", Email: "a@b.test", Password: "password123"}, field: "surname"},
		{name: "malformed email", input: UserInput{Name: "G", Surname: "H", Email: "not-an-address", Password: "password123"}, field: "email"},
		{name: "short password", input: UserInput{Name: "G", Surname: "H", Email: "a@b.test", Password: "short"}, field: "password"},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			svc := NewUserService(&userRepoStub{}, func() string { return "user-1" }, fixedNow)
			_, err := svc.CreateUser(context.Background(), tc.input)

			var vErr *ValidationError
			if !errors.As(err, &vErr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if _, ok := vErr.FieldErrors[tc.field]; !ok {
				t.Fatalf("expected %s field error, got %v", tc.field, vErr.FieldErrors)
			}
		})
	}
}

func TestUserService_CreateUser_DuplicateEmail(t *testing.T) {
	t.Parallel()

	repo := &userRepoStub{createErr: persistence.ErrDuplicate}
	svc := NewUserService(repo, func() string { return "user-1" }, fixedNow)

	_, err := svc.CreateUser(context.Background(), UserInput{
		Name:     "Ada",
		Surname:  "Lovelace",
		Email:    "ada@example.com",
		Password: "password123",
	})
	if !errors.Is(err, ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}
}

func TestUserService_UpdateUser_IgnoresPassword(t *testing.T) {
	t.Parallel()

	repo := &userRepoStub{user: User{ID: "user-1", Name: "Ada", Surname: "Lovelace", Email: "ada@example.com"}}
	svc := NewUserService(repo, func() string { return "" }, fixedNow)

	user, err := svc.UpdateUser(context.Background(), "user-1", UserInput{
		Name:    "Ada",
		Surname: "King",
		Email:   "ada.king@example.com",
	})
	if err != nil {
		t.Fatalf("UpdateUser returned error: %v", err)
	}
	if user.Surname != "King" || user.Email != "ada.king@example.com" {
		t.Fatalf("unexpected updated user: %+v", user)
	}
}

func TestUserService_ListUsers_SortsBySurname(t *testing.T) {
	t.Parallel()

	repo := &userRepoStub{list: []User{
		{ID: "u-1", Name: "Grace", Surname: "hopper"},
		{ID: "u-2", Name: "Ada", Surname: "Lovelace"},
		{ID: "u-3", Name: "Alan", Surname: "Hopper"},
	}}
	svc := NewUserService(repo, func() string { return "" }, fixedNow)

	users, err := svc.ListUsers(context.Background())
	if err != nil {
		t.Fatalf("ListUsers returned error: %v", err)
	}
	got := []string{users[0].ID, users[1].ID, users[2].ID}
	want := []string{"u-3", "u-1", "u-2"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected order %v, got %v", want, got)
		}
	}
}

func TestVerifyPassword_RoundTrip(t *testing.T) {
	t.Parallel()

	hash, err := CreatePasswordHash("hunter2hunter2", DefaultArgon2idParams)
	if err != nil {
		t.Fatalf("CreatePasswordHash returned error: %v", err)
	}
	if err := VerifyPassword(hash, "hunter2hunter2"); err != nil {
		t.Fatalf("VerifyPassword rejected the correct password: %v", err)
	}
	if err := VerifyPassword(hash, "wrong password"); !errors.Is(err, ErrPasswordMismatch) {
		t.Fatalf("expected ErrPasswordMismatch, got %v", err)
	}
}
