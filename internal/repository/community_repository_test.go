package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bitconnect/vault-api/internal/models"
)

var postCols = []string{"id", "title", "body", "branch", "author_alias", "created_at", "reply_count"}

func TestCommunityRepositoryListPostsAlwaysBoundsWindow(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewCommunityRepository(db)
	since := time.Date(2026, 8, 16, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE p.created_at >= $1 ORDER BY p.created_at DESC LIMIT 200")).
		WithArgs(since).
		WillReturnRows(sqlmock.NewRows(postCols).AddRow("p1", "t", "b", "cse-data-science", "Anonymous", since.Add(time.Hour), 2))
	mock.ExpectQuery(regexp.QuoteMeta("WHERE p.created_at >= $1 AND p.branch = $2 ORDER BY p.created_at DESC")).
		WithArgs(since, "cse-data-science").
		WillReturnRows(sqlmock.NewRows(postCols))

	posts, err := repo.ListPosts(context.Background(), models.PostFilter{Since: since})
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, 2, posts[0].ReplyCount)

	posts, err = repo.ListPosts(context.Background(), models.PostFilter{Since: since, Branch: "cse-data-science"})
	require.NoError(t, err)
	assert.Empty(t, posts)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCommunityRepositoryReplies(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewCommunityRepository(db)
	const postID = "9d2e4f61-7a3b-4c8d-b1e5-0f6a2c9d8e13"
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO community_replies")).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectQuery(regexp.QuoteMeta("FROM community_replies WHERE post_id = $1 ORDER BY created_at ASC")).
		WithArgs(postID).
		WillReturnRows(sqlmock.NewRows([]string{"id", "post_id", "reply_text", "author_alias", "created_at"}).
			AddRow("r1", postID, "first", "A", time.Now().Add(-time.Minute)).
			AddRow("r2", postID, "second", "B", time.Now()))

	reply := &models.CommunityReply{PostID: postID, ReplyText: "first", AuthorAlias: "A"}
	require.NoError(t, repo.CreateReply(context.Background(), reply))
	assert.NotEmpty(t, reply.ID)

	replies, err := repo.ListReplies(context.Background(), postID)
	require.NoError(t, err)
	require.Len(t, replies, 2)
	assert.Equal(t, "r1", replies[0].ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCommunityRepositoryMalformedPostID(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewCommunityRepository(db)
	_, err := repo.GetPost(context.Background(), "p9")
	assert.ErrorIs(t, err, sql.ErrNoRows)

	replies, err := repo.ListReplies(context.Background(), "p9")
	require.NoError(t, err)
	assert.Empty(t, replies)
	require.NoError(t, mock.ExpectationsWereMet())
}
