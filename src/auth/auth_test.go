package auth

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/elee1766/naochat/src/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) (*Service, *storage.DB, *storage.Project) {
	t.Helper()
	db, err := storage.Open(filepath.Join(t.TempDir(), "naochat.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	project, err := storage.EnsureDefaultProject(context.Background(), db.DB(), "default", "")
	require.NoError(t, err)

	svc, err := New(db.DB(), "test-secret", time.Hour, nil)
	require.NoError(t, err)
	return svc, db, project
}

func TestNewRequiresSecret(t *testing.T) {
	_, err := New(nil, "", time.Hour, nil)
	assert.ErrorIs(t, err, ErrNoSecret)
}

func TestPasswordHash(t *testing.T) {
	hash, err := HashPassword("correct horse")
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse", hash)
	assert.True(t, CheckPassword(hash, "correct horse"))
	assert.False(t, CheckPassword(hash, "wrong horse"))
}

func TestSignUpAndIn(t *testing.T) {
	ctx := context.Background()
	svc, db, project := newTestService(t)

	first, err := svc.SignUp(ctx, "Ada", "Ada@Example.com", "password1")
	require.NoError(t, err)
	assert.NotEmpty(t, first.Token)
	assert.Equal(t, "ada@example.com", first.User.Email)

	second, err := svc.SignUp(ctx, "Bob", "bob@example.com", "password2")
	require.NoError(t, err)

	member, err := storage.GetProjectMember(ctx, db.DB(), project.ID, first.User.ID)
	require.NoError(t, err)
	require.NotNil(t, member)
	assert.Equal(t, storage.RoleAdmin, member.Role, "first user administers the project")

	member, err = storage.GetProjectMember(ctx, db.DB(), project.ID, second.User.ID)
	require.NoError(t, err)
	require.NotNil(t, member)
	assert.Equal(t, storage.RoleUser, member.Role)

	_, err = svc.SignUp(ctx, "Ada again", "ada@example.com", "password3")
	assert.ErrorIs(t, err, ErrEmailTaken)

	session, err := svc.SignIn(ctx, "ADA@example.com", "password1")
	require.NoError(t, err)
	assert.Equal(t, first.User.ID, session.User.ID)

	_, err = svc.SignIn(ctx, "ada@example.com", "nope")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.SignIn(ctx, "nobody@example.com", "password1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestSignUpValidation(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)

	tests := []struct {
		name, user, email, password string
	}{
		{"missing name", "", "a@example.com", "password1"},
		{"bad email", "Ada", "not-an-email", "password1"},
		{"short password", "Ada", "a@example.com", "short"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.SignUp(ctx, tt.user, tt.email, tt.password)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestTokens(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)

	session, err := svc.SignUp(ctx, "Ada", "ada@example.com", "password1")
	require.NoError(t, err)

	user, err := svc.Authenticate(ctx, session.Token)
	require.NoError(t, err)
	assert.Equal(t, session.User.ID, user.ID)

	_, err = svc.VerifyToken("garbage")
	assert.ErrorIs(t, err, ErrInvalidToken)

	other, err := New(nil, "other-secret", time.Hour, nil)
	require.NoError(t, err)
	_, err = other.VerifyToken(session.Token)
	assert.ErrorIs(t, err, ErrInvalidToken, "signed with another secret")

	svc.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = svc.VerifyToken(session.Token)
	assert.ErrorIs(t, err, ErrInvalidToken, "expired")

	svc.now = time.Now
	ghost, _, err := svc.IssueToken(&storage.User{ID: "gone", Email: "gone@example.com"})
	require.NoError(t, err)
	_, err = svc.Authenticate(ctx, ghost)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestGeneratePassword(t *testing.T) {
	a, err := GeneratePassword()
	require.NoError(t, err)
	b, err := GeneratePassword()
	require.NoError(t, err)

	assert.Len(t, a, GeneratedPasswordLength)
	assert.NotEqual(t, a, b)
	for _, r := range a {
		assert.Contains(t, passwordAlphabet, string(r))
	}
}

func TestCreateUser(t *testing.T) {
	ctx := context.Background()
	svc, db, project := newTestService(t)

	_, err := svc.SignUp(ctx, "Ada", "ada@example.com", "password1")
	require.NoError(t, err)

	created, err := svc.CreateUser(ctx, "  Grace ", "Grace@Example.com")
	require.NoError(t, err)
	assert.Equal(t, "Grace", created.User.Name)
	assert.Equal(t, "grace@example.com", created.User.Email)
	assert.Len(t, created.Password, GeneratedPasswordLength)
	assert.NotEqual(t, created.Password, created.User.PasswordHash)

	session, err := svc.SignIn(ctx, "grace@example.com", created.Password)
	require.NoError(t, err, "the generated password signs in")
	assert.Equal(t, created.User.ID, session.User.ID)

	member, err := storage.GetProjectMember(ctx, db.DB(), project.ID, created.User.ID)
	require.NoError(t, err)
	require.NotNil(t, member)
	assert.Equal(t, storage.RoleUser, member.Role)

	_, err = svc.CreateUser(ctx, "Grace", "grace@example.com")
	assert.ErrorIs(t, err, ErrEmailTaken)

	tests := []struct {
		name, userName, email string
	}{
		{"short name", "G", "g@example.com"},
		{"missing name", "  ", "g@example.com"},
		{"bad email", "Grace", "grace"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateUser(ctx, tt.userName, tt.email)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestRename(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)

	session, err := svc.SignUp(ctx, "Ada", "ada@example.com", "password1")
	require.NoError(t, err)

	user, err := svc.Rename(ctx, session.User.ID, "  Ada Lovelace ")
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", user.Name)
	assert.Equal(t, "ada@example.com", user.Email)

	_, err = svc.Rename(ctx, session.User.ID, "   ")
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.Rename(ctx, "missing", "Nobody")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
