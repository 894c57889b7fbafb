package service

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bitconnect/vault-api/internal/dto"
	"github.com/bitconnect/vault-api/internal/models"
	appErrors "github.com/bitconnect/vault-api/pkg/errors"
)

type communityRepoStub struct {
	posts   map[string]*models.CommunityPost
	replies []models.CommunityReply
	clock   func() time.Time
	filter  models.PostFilter
}

func newCommunityRepoStub(clock func() time.Time) *communityRepoStub {
	return &communityRepoStub{posts: make(map[string]*models.CommunityPost), clock: clock}
}

func (r *communityRepoStub) CreatePost(ctx context.Context, post *models.CommunityPost) error {
	post.ID = fmt.Sprintf("post-%d", len(r.posts)+1)
	post.CreatedAt = r.clock()
	copy := *post
	r.posts[post.ID] = &copy
	return nil
}

func (r *communityRepoStub) GetPost(ctx context.Context, id string) (*models.CommunityPost, error) {
	post, ok := r.posts[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copy := *post
	return &copy, nil
}

func (r *communityRepoStub) ListPosts(ctx context.Context, filter models.PostFilter) ([]models.CommunityPost, error) {
	r.filter = filter
	result := make([]models.CommunityPost, 0, len(r.posts))
	for _, p := range r.posts {
		if filter.Branch != "" && p.Branch != filter.Branch {
			continue
		}
		result = append(result, *p)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	return result, nil
}

func (r *communityRepoStub) CreateReply(ctx context.Context, reply *models.CommunityReply) error {
	reply.ID = fmt.Sprintf("reply-%d", len(r.replies)+1)
	reply.CreatedAt = r.clock()
	r.replies = append(r.replies, *reply)
	return nil
}

func (r *communityRepoStub) ListReplies(ctx context.Context, postID string) ([]models.CommunityReply, error) {
	result := make([]models.CommunityReply, 0)
	for _, reply := range r.replies {
		if reply.PostID == postID {
			result = append(result, reply)
		}
	}
	return result, nil
}

type wordDetector struct{ words []string }

func (d wordDetector) IsProfane(s string) bool {
	lower := strings.ToLower(s)
	for _, w := range d.words {
		if strings.Contains(lower, w) {
			return true
		}
	}
	return false
}

func newTestCommunity(now *time.Time) (*CommunityService, *communityRepoStub, *publisherStub) {
	clock := func() time.Time { return *now }
	repo := newCommunityRepoStub(clock)
	events := &publisherStub{}
	svc := NewCommunityService(repo, NewScreeningServiceWith(wordDetector{words: []string{"darn"}}), events, nil, nil, 0)
	svc.now = clock
	return svc, repo, events
}

func TestCreatePostSanitizesAndDefaults(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc, _, events := newTestCommunity(&now)

	post, err := svc.CreatePost(context.Background(), dto.CreatePostRequest{
		Title: " <script>x()</script>Exam tips ", Body: "<p>Any <b>advice</b>?</p>", Branch: "computer-science-engineering",
	})
	require.NoError(t, err)
	assert.Equal(t, "Exam tips", post.Title)
	assert.Equal(t, "Any advice?", post.Body)
	assert.Equal(t, models.DefaultAlias, post.AuthorAlias)
	assert.Equal(t, []string{models.TopicPostCreated}, events.topics)
}

func TestCreatePostRejections(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc, repo, _ := newTestCommunity(&now)
	ctx := context.Background()

	_, err := svc.CreatePost(ctx, dto.CreatePostRequest{Title: "<b></b>", Body: "body", Branch: "computer-science-engineering"})
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	_, err = svc.CreatePost(ctx, dto.CreatePostRequest{Title: "t", Body: "b", Branch: "astrology"})
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	_, err = svc.CreatePost(ctx, dto.CreatePostRequest{Title: "Darn labs", Body: "b", Branch: "computer-science-engineering"})
	assert.ErrorIs(t, err, appErrors.ErrContent)

	assert.Empty(t, repo.posts)
}

func TestListPostsHonoursWindow(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	svc, repo, _ := newTestCommunity(&now)
	ctx := context.Background()

	old, err := svc.CreatePost(ctx, dto.CreatePostRequest{Title: "old", Body: "b", Branch: "computer-science-engineering"})
	require.NoError(t, err)
	now = now.Add(30 * 24 * time.Hour)
	_, err = svc.CreatePost(ctx, dto.CreatePostRequest{Title: "mid", Body: "b", Branch: "mechanical-engineering"})
	require.NoError(t, err)
	now = now.Add(31 * 24 * time.Hour)

	posts, err := svc.ListPosts(ctx, "")
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, "mid", posts[0].Title)
	assert.Equal(t, now.Add(-60*24*time.Hour), repo.filter.Since)

	posts, err = svc.ListPosts(ctx, "computer-science-engineering")
	require.NoError(t, err)
	assert.Empty(t, posts)

	replies, err := svc.ListReplies(ctx, old.ID)
	require.NoError(t, err)
	assert.Empty(t, replies)
}

func TestRepliesAppendInOrder(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc, _, events := newTestCommunity(&now)
	ctx := context.Background()

	post, err := svc.CreatePost(ctx, dto.CreatePostRequest{Title: "Q", Body: "?", Branch: "civil-engineering", AuthorAlias: "asker"})
	require.NoError(t, err)

	_, err = svc.CreateReply(ctx, post.ID, dto.CreateReplyRequest{ReplyText: "first"})
	require.NoError(t, err)
	now = now.Add(time.Minute)
	_, err = svc.CreateReply(ctx, post.ID, dto.CreateReplyRequest{ReplyText: "second", AuthorAlias: "helper"})
	require.NoError(t, err)

	replies, err := svc.ListReplies(ctx, post.ID)
	require.NoError(t, err)
	require.Len(t, replies, 2)
	assert.Equal(t, "first", replies[0].ReplyText)
	assert.Equal(t, models.DefaultAlias, replies[0].AuthorAlias)
	assert.Equal(t, "helper", replies[1].AuthorAlias)
	assert.Equal(t, []string{models.TopicPostCreated, models.TopicReplyCreated, models.TopicReplyCreated}, events.topics)

	_, err = svc.CreateReply(ctx, post.ID, dto.CreateReplyRequest{ReplyText: "  "})
	assert.ErrorIs(t, err, appErrors.ErrValidation)
	_, err = svc.CreateReply(ctx, "missing", dto.CreateReplyRequest{ReplyText: "hello"})
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
	_, err = svc.ListReplies(ctx, "missing")
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}
