package memory

import (
	"context"
	"net/http"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/bookreview/internal/domain/book"
	"github.com/xiebiao/bookreview/internal/domain/review"
	"github.com/xiebiao/bookreview/internal/domain/user"
	apperrors "github.com/xiebiao/bookreview/pkg/errors"
)

func seedBooks(t *testing.T, repo book.Repository, books ...*book.Book) {
	t.Helper()
	for _, b := range books {
		require.NoError(t, repo.Create(context.Background(), b))
	}
}

func TestBookRepository_ListFilters(t *testing.T) {
	ctx := context.Background()
	repo := NewBookRepository(NewStore())
	seedBooks(t, repo,
		book.NewBook("Dune", "Frank Herbert", "SciFi", 1965),
		book.NewBook("Children of Dune", "Frank Herbert", "scifi", 1976),
		book.NewBook("Emma", "Jane Austen", "Romance", 1815),
	)

	cases := []struct {
		name      string
		params    book.ListParams
		wantTotal int64
		wantIDs   []uint
	}{
		{"无过滤", book.ListParams{Page: 1, Limit: 10}, 3, []uint{1, 2, 3}},
		{"作者包含且不区分大小写", book.ListParams{Page: 1, Limit: 10, Author: "herb"}, 2, []uint{1, 2}},
		{"类型相等且不区分大小写", book.ListParams{Page: 1, Limit: 10, Genre: "SCIFI"}, 2, []uint{1, 2}},
		{"类型不做包含匹配", book.ListParams{Page: 1, Limit: 10, Genre: "sci"}, 0, []uint{}},
		{"组合过滤", book.ListParams{Page: 1, Limit: 10, Author: "austen", Genre: "romance"}, 1, []uint{3}},
		{"第二页", book.ListParams{Page: 2, Limit: 2}, 3, []uint{3}},
		{"超出范围", book.ListParams{Page: 5, Limit: 2}, 3, []uint{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			books, total, err := repo.List(ctx, tc.params)
			require.NoError(t, err)
			assert.Equal(t, tc.wantTotal, total)
			ids := make([]uint, 0, len(books))
			for _, b := range books {
				ids = append(ids, b.ID)
			}
			assert.Equal(t, tc.wantIDs, ids)
		})
	}
}

func TestBookRepository_Search(t *testing.T) {
	ctx := context.Background()
	repo := NewBookRepository(NewStore())
	seedBooks(t, repo,
		book.NewBook("Dune", "Frank Herbert", "SciFi", 1965),
		book.NewBook("Emma", "Jane Austen", "Romance", 1815),
	)

	books, err := repo.Search(ctx, "DUNE")
	require.NoError(t, err)
	require.Len(t, books, 1)
	assert.Equal(t, "Dune", books[0].Title)

	books, err = repo.Search(ctx, "austen")
	require.NoError(t, err)
	require.Len(t, books, 1)
	assert.Equal(t, "Emma", books[0].Title)

	_, err = repo.FindByID(ctx, 42)
	assert.ErrorIs(t, err, book.ErrBookNotFound)
}

func seedUser(t *testing.T, s *Store, name string) uint {
	t.Helper()
	u := user.NewUser(name, "x")
	require.NoError(t, NewUserRepository(s).Create(context.Background(), u))
	return u.ID
}

func TestReviewRepository_Constraints(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	seedBooks(t, NewBookRepository(s), book.NewBook("Dune", "Frank Herbert", "SciFi", 1965))
	alice := seedUser(t, s, "alice")
	repo := NewReviewRepository(s)

	first := review.NewReview(1, alice, 3, "ok")
	require.NoError(t, repo.Create(ctx, first))

	err := repo.Create(ctx, review.NewReview(1, alice, 5, "again"))
	assert.ErrorIs(t, err, review.ErrDuplicateReview)

	err = repo.Create(ctx, review.NewReview(99, alice, 5, "no book"))
	assert.ErrorIs(t, err, review.ErrBookReference)

	err = repo.Create(ctx, review.NewReview(1, 42, 5, "no user"))
	assert.ErrorIs(t, err, review.ErrUserReference)

	stored, err := repo.FindByID(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, stored.Rating, "重复提交不影响第一条评论")
}

func TestReviewRepository_ListAndAverage(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	seedBooks(t, NewBookRepository(s), book.NewBook("Dune", "Frank Herbert", "SciFi", 1965))
	users := NewUserRepository(s)
	alice, bob := user.NewUser("alice", "x"), user.NewUser("bob", "x")
	require.NoError(t, users.Create(ctx, alice))
	require.NoError(t, users.Create(ctx, bob))
	repo := NewReviewRepository(s)

	avg, err := repo.AverageRating(ctx, 1)
	require.NoError(t, err)
	assert.Nil(t, avg)

	require.NoError(t, repo.Create(ctx, review.NewReview(1, alice.ID, 3, "ok")))
	require.NoError(t, repo.Create(ctx, review.NewReview(1, bob.ID, 5, "great")))

	avg, err = repo.AverageRating(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, avg)
	assert.InDelta(t, 4.0, *avg, 1e-9)

	page, err := repo.ListByBook(ctx, 1, 1, 5)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "bob", page[0].Username)
}

func TestUserRepository_UniqueUsername(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(NewStore())

	require.NoError(t, repo.Create(ctx, user.NewUser("alice", "x")))
	err := repo.Create(ctx, user.NewUser("alice", "y"))
	assert.ErrorIs(t, err, apperrors.ErrUsernameDuplicate)

	_, err = repo.FindByUsername(ctx, "ghost")
	assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
}

// 并发提交同一(user, book)只有一条成功
func TestReviewRepository_ConcurrentDuplicate(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	seedBooks(t, NewBookRepository(s), book.NewBook("Dune", "Frank Herbert", "SciFi", 1965))
	alice := seedUser(t, s, "alice")
	repo := NewReviewRepository(s)

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		created int
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := repo.Create(ctx, review.NewReview(1, alice, 4, "race")); err == nil {
				mu.Lock()
				created++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, created)
}

func TestTxManager_Nested(t *testing.T) {
	tx := NewTxManager(NewStore())
	calls := 0
	err := tx.Transaction(context.Background(), func(ctx context.Context) error {
		calls++
		return tx.Transaction(ctx, func(context.Context) error {
			calls++
			return nil
		})
	})
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestTxManager_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := NewTxManager(NewStore()).Transaction(ctx, func(context.Context) error {
		t.Fatal("不应执行")
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
}

// 取消的请求按存储错误返回(400)，与MySQL驱动一致
func TestCancelledContextIsStoreError(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s := NewStore()

	_, err := NewBookRepository(s).FindByID(ctx, 1)
	assertStoreError(t, err)

	err = NewReviewRepository(s).Create(ctx, review.NewReview(1, 1, 5, "x"))
	assertStoreError(t, err)

	_, err = NewUserRepository(s).FindByUsername(ctx, "alice")
	assertStoreError(t, err)

	err = NewTxManager(s).Transaction(ctx, func(context.Context) error { return nil })
	assertStoreError(t, err)
}

func assertStoreError(t *testing.T, err error) {
	t.Helper()
	require.ErrorIs(t, err, context.Canceled)
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.ErrCodeDatabaseError, appErr.Code)
	assert.Equal(t, http.StatusBadRequest, appErr.HTTPStatus())
}
