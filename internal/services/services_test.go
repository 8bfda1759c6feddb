package services

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"

	"panda/internal/config"
	"panda/internal/db"
	"panda/internal/models"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

// newTestDB opens a private in-memory sqlite store with the schema applied.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	conn, err := db.Open(context.Background(), config.Database{
		Driver: config.DriverSQLite,
		Name:   "file:" + name + "?mode=memory&cache=shared",
	}, quiet)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close(conn) })
	require.NoError(t, db.Migrate(conn))
	return conn
}

type fixture struct {
	db    *gorm.DB
	users *UserService
	posts *PostService
	votes *VoteService
}

func newFixture(t *testing.T) *fixture {
	conn := newTestDB(t)
	votes := NewVoteService(conn, quiet)
	return &fixture{
		db:    conn,
		users: NewUserService(conn, nil, quiet),
		posts: NewPostService(conn, votes, quiet),
		votes: votes,
	}
}

func (f *fixture) user(t *testing.T, email string) *models.User {
	t.Helper()
	u, err := f.users.Create(context.Background(), UserInput{Email: email, Password: "password123"})
	require.NoError(t, err)
	return u
}

func (f *fixture) post(t *testing.T, owner *models.User, title, content string) *models.Post {
	t.Helper()
	p, err := f.posts.Create(context.Background(), PostInput{Title: title, Content: content}, owner)
	require.NoError(t, err)
	return p
}
