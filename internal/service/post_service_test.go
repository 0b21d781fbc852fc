package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"blogcms/internal/models"
	"blogcms/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// postRepoStub is a stub for repository.PostRepository.
type postRepoStub struct {
	repository.PostRepository
	listActiveFn func(context.Context) ([]models.Post, error)
	softDeleteFn func(context.Context, uint, time.Time) (bool, error)
}

func (s *postRepoStub) ListActive(ctx context.Context) ([]models.Post, error) {
	return s.listActiveFn(ctx)
}

func (s *postRepoStub) SoftDelete(ctx context.Context, id uint, at time.Time) (bool, error) {
	return s.softDeleteFn(ctx, id, at)
}

func newPostService(t *testing.T) *PostService {
	t.Helper()
	return NewPostService(repository.NewPostRepository(newTestDB(t), testTimeout), nil)
}

func activeIDs(t *testing.T, s *PostService) []uint {
	t.Helper()
	posts, err := s.ListActive(context.Background())
	require.NoError(t, err)
	ids := []uint{}
	for _, p := range posts {
		ids = append(ids, p.ID)
	}
	return ids
}

func trashedIDs(t *testing.T, s *PostService) []uint {
	t.Helper()
	posts, err := s.ListTrashed(context.Background())
	require.NoError(t, err)
	ids := []uint{}
	for _, p := range posts {
		ids = append(ids, p.ID)
	}
	return ids
}

func TestPostService_Create(t *testing.T) {
	s := newPostService(t)
	ctx := context.Background()

	post, err := s.Create(ctx, CreatePostInput{
		Title:    "  Hello  ",
		Content:  "body",
		Tags:     []string{"go", " go ", ""},
		AuthorID: 3,
	})
	require.NoError(t, err)
	assert.Equal(t, "Hello", post.Title)
	assert.Equal(t, []string{"go"}, post.Tags)
	assert.Equal(t, uint(3), post.CreatedBy)
	assert.False(t, post.Deleted)
	assert.Nil(t, post.DeletedAt)

	_, err = s.Create(ctx, CreatePostInput{Title: "   ", AuthorID: 3})
	assert.True(t, models.IsCode(err, models.CodeValidation))

	_, err = s.Create(ctx, CreatePostInput{Title: "no author"})
	assert.True(t, models.IsCode(err, models.CodeUnauthorized))

	assert.Equal(t, []uint{post.ID}, activeIDs(t, s))
}

func TestPostService_TrashVisibility(t *testing.T) {
	s := newPostService(t)
	ctx := context.Background()

	post, err := s.Create(ctx, CreatePostInput{Title: "p", AuthorID: 1})
	require.NoError(t, err)

	_, err = s.GetActive(ctx, post.ID)
	require.NoError(t, err)
	assert.Contains(t, activeIDs(t, s), post.ID)
	assert.NotContains(t, trashedIDs(t, s), post.ID)

	trashed, err := s.SoftDelete(ctx, post.ID)
	require.NoError(t, err)
	assert.True(t, trashed.Deleted)
	require.NotNil(t, trashed.DeletedAt)

	_, err = s.GetActive(ctx, post.ID)
	assert.True(t, models.IsCode(err, models.CodeNotFound))
	assert.NotContains(t, activeIDs(t, s), post.ID)
	assert.Contains(t, trashedIDs(t, s), post.ID)

	again, err := s.SoftDelete(ctx, post.ID)
	require.NoError(t, err)
	require.NotNil(t, again.DeletedAt)
	assert.WithinDuration(t, *trashed.DeletedAt, *again.DeletedAt, time.Second)
}

func TestPostService_DeleteRestoreSequencesEndActive(t *testing.T) {
	sequences := [][]string{
		{"delete", "restore"},
		{"delete", "delete", "restore"},
		{"restore"},
		{"delete", "restore", "delete", "restore"},
		{"restore", "restore"},
	}

	for _, seq := range sequences {
		s := newPostService(t)
		ctx := context.Background()
		post, err := s.Create(ctx, CreatePostInput{Title: "p", AuthorID: 1})
		require.NoError(t, err)

		for _, step := range seq {
			switch step {
			case "delete":
				_, err = s.SoftDelete(ctx, post.ID)
			case "restore":
				_, err = s.Restore(ctx, post.ID)
			}
			require.NoError(t, err, "%v", seq)
		}

		got, err := s.GetActive(ctx, post.ID)
		require.NoError(t, err, "%v", seq)
		assert.False(t, got.Deleted)
		assert.Nil(t, got.DeletedAt)
	}
}

func TestPostService_PermanentDeleteIsTerminal(t *testing.T) {
	for _, trashFirst := range []bool{false, true} {
		s := newPostService(t)
		ctx := context.Background()
		post, err := s.Create(ctx, CreatePostInput{Title: "p", AuthorID: 1})
		require.NoError(t, err)
		if trashFirst {
			_, err = s.SoftDelete(ctx, post.ID)
			require.NoError(t, err)
		}

		require.NoError(t, s.PermanentDelete(ctx, post.ID))

		_, err = s.GetActive(ctx, post.ID)
		assert.True(t, models.IsCode(err, models.CodeNotFound))
		_, err = s.Update(ctx, post.ID, UpdatePostInput{Title: ptr("x")})
		assert.True(t, models.IsCode(err, models.CodeNotFound))
		_, err = s.Restore(ctx, post.ID)
		assert.True(t, models.IsCode(err, models.CodeNotFound))
		_, err = s.SoftDelete(ctx, post.ID)
		assert.True(t, models.IsCode(err, models.CodeNotFound))
		err = s.PermanentDelete(ctx, post.ID)
		assert.True(t, models.IsCode(err, models.CodeNotFound))
		assert.Empty(t, trashedIDs(t, s))
	}
}

func TestPostService_Update(t *testing.T) {
	s := newPostService(t)
	ctx := context.Background()

	post, err := s.Create(ctx, CreatePostInput{Title: "t", Content: "c", Excerpt: "e", AuthorID: 4})
	require.NoError(t, err)
	_, err = s.RecordView(ctx, post.ID)
	require.NoError(t, err)

	updated, err := s.Update(ctx, post.ID, UpdatePostInput{
		Content: ptr("new body"),
		Excerpt: ptr(""),
		Tags:    ptr([]string{"x", "x", "y"}),
	})
	require.NoError(t, err)
	assert.Equal(t, "t", updated.Title)
	assert.Equal(t, "new body", updated.Content)
	assert.Equal(t, "", updated.Excerpt)
	assert.Equal(t, []string{"x", "y"}, updated.Tags)
	assert.Equal(t, uint(4), updated.CreatedBy)
	assert.Equal(t, int64(1), updated.Views)

	_, err = s.Update(ctx, post.ID, UpdatePostInput{Title: ptr(" ")})
	assert.True(t, models.IsCode(err, models.CodeValidation))

	// Trashed posts can be edited and stay in the trash.
	_, err = s.SoftDelete(ctx, post.ID)
	require.NoError(t, err)
	updated, err = s.Update(ctx, post.ID, UpdatePostInput{Title: ptr("renamed")})
	require.NoError(t, err)
	assert.Equal(t, "renamed", updated.Title)
	assert.True(t, updated.Deleted)

	_, err = s.Update(ctx, 999, UpdatePostInput{})
	assert.True(t, models.IsCode(err, models.CodeNotFound))
}

func TestPostService_RecordView(t *testing.T) {
	s := newPostService(t)
	ctx := context.Background()

	post, err := s.Create(ctx, CreatePostInput{Title: "p", AuthorID: 1})
	require.NoError(t, err)

	views, err := s.RecordView(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), views)

	_, err = s.RecordView(ctx, 404)
	assert.True(t, models.IsCode(err, models.CodeNotFound))
}

func TestPostService_StorageFailures(t *testing.T) {
	boom := errors.New("connection refused")
	s := NewPostService(&postRepoStub{
		listActiveFn: func(context.Context) ([]models.Post, error) { return nil, boom },
		softDeleteFn: func(context.Context, uint, time.Time) (bool, error) { return false, boom },
	}, nil)

	_, err := s.ListActive(context.Background())
	assert.True(t, models.IsCode(err, models.CodeStorage))
	assert.ErrorIs(t, err, boom)

	_, err = s.SoftDelete(context.Background(), 1)
	assert.True(t, models.IsCode(err, models.CodeStorage))
}
