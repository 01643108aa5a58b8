package services

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/libdesk/internal/common"
	"github.com/dmitrijs2005/libdesk/internal/dbx"
	"github.com/dmitrijs2005/libdesk/internal/server/auth"
	"github.com/dmitrijs2005/libdesk/internal/server/config"
	"github.com/dmitrijs2005/libdesk/internal/server/models"
	"github.com/dmitrijs2005/libdesk/internal/server/repositories/library"
	refreshtokensrepo "github.com/dmitrijs2005/libdesk/internal/server/repositories/refreshtokens"
	usersrepo "github.com/dmitrijs2005/libdesk/internal/server/repositories/users"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type errBoom struct{}

func (errBoom) Error() string { return "boom" }

func newSQLMockDB(t *testing.T) *sql.DB {
	t.Helper()
	db, _, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func newUserService(t *testing.T, rm *fakeRepoManager) *UserService {
	t.Helper()
	cfg := &config.Config{
		SecretKey:                    "k",
		AccessTokenValidityDuration:  time.Hour,
		RefreshTokenValidityDuration: 2 * time.Hour,
	}
	return NewUserService(newSQLMockDB(t), rm, cfg)
}

type fakeUsersRepo struct {
	users     map[string]*models.User
	getErr    error
	createErr error
	created   []*models.User
}

func (f *fakeUsersRepo) Create(_ context.Context, u *models.User) (*models.User, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	u.ID = int64(len(f.created) + 100)
	f.created = append(f.created, u)
	return u, nil
}

func (f *fakeUsersRepo) GetUserByLogin(_ context.Context, userName string) (*models.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	if u, ok := f.users[userName]; ok {
		return u, nil
	}
	return nil, common.ErrorNotFound
}

func (f *fakeUsersRepo) GetUserByID(context.Context, int64) (*models.User, error) {
	return nil, common.ErrorNotFound
}

type fakeRefreshRepo struct {
	findOut   *models.RefreshToken
	findErr   error
	createErr error

	created []string
	deleted []string
}

func (f *fakeRefreshRepo) Create(_ context.Context, _ int64, token string, _ time.Duration) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created = append(f.created, token)
	return nil
}

func (f *fakeRefreshRepo) Find(context.Context, string) (*models.RefreshToken, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	return f.findOut, nil
}

func (f *fakeRefreshRepo) Delete(_ context.Context, token string) error {
	f.deleted = append(f.deleted, token)
	return nil
}

type fakeRepoManager struct {
	u *fakeUsersRepo
	r *fakeRefreshRepo
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error         { return nil }
func (m *fakeRepoManager) Users(dbx.DBTX) usersrepo.Repository                  { return m.u }
func (m *fakeRepoManager) RefreshTokens(dbx.DBTX) refreshtokensrepo.Repository  { return m.r }
func (m *fakeRepoManager) Authors(dbx.DBTX) *library.AuthorRepository           { return nil }
func (m *fakeRepoManager) Books(dbx.DBTX) *library.BookRepository               { return nil }
func (m *fakeRepoManager) Students(dbx.DBTX) *library.StudentRepository         { return nil }
func (m *fakeRepoManager) Transactions(dbx.DBTX) *library.TransactionRepository { return nil }
func (m *fakeRepoManager) Dashboard(dbx.DBTX) *library.DashboardRepository      { return nil }

func aliceRepo(t *testing.T) *fakeUsersRepo {
	t.Helper()
	hash, err := auth.HashPassword("correct")
	require.NoError(t, err)
	return &fakeUsersRepo{users: map[string]*models.User{
		"alice": {ID: 1, UserName: "alice", PasswordHash: hash},
	}}
}

func TestLogin_Success(t *testing.T) {
	rm := &fakeRepoManager{u: aliceRepo(t), r: &fakeRefreshRepo{}}
	s := newUserService(t, rm)

	pair, user, err := s.Login(context.Background(), "alice", "correct")
	require.NoError(t, err)
	assert.Equal(t, int64(1), user.ID)
	assert.Equal(t, []string{pair.RefreshToken}, rm.r.created)

	id, err := auth.GetUserIDFromToken(pair.AccessToken, []byte("k"))
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)
}

func TestLogin_Rejected(t *testing.T) {
	tests := []struct {
		name, user, password string
	}{
		{"wrong password", "alice", "nope"},
		{"unknown user", "mallory", "correct"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rm := &fakeRepoManager{u: aliceRepo(t), r: &fakeRefreshRepo{}}
			_, _, err := newUserService(t, rm).Login(context.Background(), tt.user, tt.password)
			require.ErrorIs(t, err, common.ErrInvalidCredentials)
			assert.Empty(t, rm.r.created)
		})
	}
}

func TestLogin_StorageErrors(t *testing.T) {
	rm := &fakeRepoManager{u: &fakeUsersRepo{getErr: errBoom{}}, r: &fakeRefreshRepo{}}
	_, _, err := newUserService(t, rm).Login(context.Background(), "alice", "correct")
	require.ErrorIs(t, err, errBoom{})

	rm = &fakeRepoManager{u: aliceRepo(t), r: &fakeRefreshRepo{createErr: errBoom{}}}
	_, _, err = newUserService(t, rm).Login(context.Background(), "alice", "correct")
	require.ErrorIs(t, err, errBoom{})
}

func TestRefreshToken_Success(t *testing.T) {
	rm := &fakeRepoManager{r: &fakeRefreshRepo{
		findOut: &models.RefreshToken{UserID: 5, Expires: time.Now().Add(10 * time.Minute)},
	}}
	s := newUserService(t, rm)

	access, err := s.RefreshToken(context.Background(), "refresh-xyz")
	require.NoError(t, err)

	id, err := auth.GetUserIDFromToken(access, []byte("k"))
	require.NoError(t, err)
	assert.Equal(t, int64(5), id)
	assert.Empty(t, rm.r.deleted)
}

func TestRefreshToken_Expired(t *testing.T) {
	rm := &fakeRepoManager{r: &fakeRefreshRepo{
		findOut: &models.RefreshToken{UserID: 5, Expires: time.Now().Add(-time.Minute)},
	}}

	_, err := newUserService(t, rm).RefreshToken(context.Background(), "r")
	require.ErrorIs(t, err, common.ErrRefreshTokenExpired)
	assert.Equal(t, []string{"r"}, rm.r.deleted)
}

func TestRefreshToken_Unknown(t *testing.T) {
	rm := &fakeRepoManager{r: &fakeRefreshRepo{findErr: common.ErrorNotFound}}
	_, err := newUserService(t, rm).RefreshToken(context.Background(), "r")
	require.ErrorIs(t, err, common.ErrInvalidToken)

	rm = &fakeRepoManager{r: &fakeRefreshRepo{findErr: errBoom{}}}
	_, err = newUserService(t, rm).RefreshToken(context.Background(), "r")
	require.True(t, errors.Is(err, errBoom{}))
}

func TestEnsureUser(t *testing.T) {
	repo := aliceRepo(t)
	s := newUserService(t, &fakeRepoManager{u: repo, r: &fakeRefreshRepo{}})

	u, created, err := s.EnsureUser(context.Background(), "alice", "other")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, int64(1), u.ID)

	u, created, err = s.EnsureUser(context.Background(), "admin", "admin")
	require.NoError(t, err)
	assert.True(t, created)
	assert.True(t, auth.CheckPassword(u.PasswordHash, "admin"))
	assert.Len(t, repo.created, 1)
}
