package book

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xiebiao/bookreview/internal/domain/book"
	"github.com/xiebiao/bookreview/internal/domain/review"
	"github.com/xiebiao/bookreview/internal/domain/user"
	"github.com/xiebiao/bookreview/internal/infrastructure/persistence"
)

// mapCache 内存版平均分缓存，记录调用次数
type mapCache struct {
	values   map[uint]*float64
	versions map[uint]int64
	gets     int
	sets     int
	getErr   error
}

func newMapCache() *mapCache {
	return &mapCache{values: map[uint]*float64{}, versions: map[uint]int64{}}
}

func (c *mapCache) Get(_ context.Context, id uint) (*float64, int64, bool, error) {
	c.gets++
	if c.getErr != nil {
		return nil, 0, false, c.getErr
	}
	v, ok := c.values[id]
	return v, c.versions[id], ok, nil
}

func (c *mapCache) Set(_ context.Context, id uint, version int64, avg *float64) (bool, error) {
	if c.versions[id] != version {
		return false, nil
	}
	c.sets++
	c.values[id] = avg
	return true, nil
}

func (c *mapCache) Invalidate(_ context.Context, id uint) error {
	c.versions[id]++
	delete(c.values, id)
	return nil
}

// racingReviews 在聚合平均分之后、回写缓存之前插入一次评论写入
type racingReviews struct {
	review.Service
	beforeReturn func()
}

func (r *racingReviews) AverageRating(ctx context.Context, bookID uint) (*float64, error) {
	avg, err := r.Service.AverageRating(ctx, bookID)
	if r.beforeReturn != nil {
		r.beforeReturn()
		r.beforeReturn = nil
	}
	return avg, err
}

type fixture struct {
	storage *persistence.Storage
	books   book.Service
	reviews review.Service
	cache   *mapCache
}

func newFixture() *fixture {
	s := persistence.OpenMemory()
	return &fixture{
		storage: s,
		books:   book.NewService(s.Books),
		reviews: review.NewService(s.Reviews, s.Tx),
		cache:   newMapCache(),
	}
}

func (f *fixture) addUser(t *testing.T, name string) uint {
	t.Helper()
	u := user.NewUser(name, "hash")
	require.NoError(t, f.storage.Users.Create(context.Background(), u))
	return u.ID
}

func TestCreateAndGetBook(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	created, err := NewCreateBookUseCase(f.books, zap.NewNop()).Execute(ctx, CreateBookRequest{
		Title: "Dune", Author: "Frank Herbert", Genre: "SciFi", PublishedYear: 1965,
	})
	require.NoError(t, err)
	assert.Equal(t, BookDTO{ID: 1, Title: "Dune", Author: "Frank Herbert", Genre: "SciFi", PublishedYear: 1965}, *created)

	detail, err := NewGetBookUseCase(f.books, f.reviews, f.cache, zap.NewNop()).Execute(ctx, GetBookRequest{ID: created.ID})
	require.NoError(t, err)
	assert.Equal(t, *created, detail.BookDTO)
	assert.Nil(t, detail.AverageRating, "没有评论时平均分为null")
	assert.NotNil(t, detail.Reviews)
	assert.Empty(t, detail.Reviews)
}

func TestGetBook_NotFound(t *testing.T) {
	f := newFixture()
	_, err := NewGetBookUseCase(f.books, f.reviews, f.cache, zap.NewNop()).
		Execute(context.Background(), GetBookRequest{ID: 42})
	assert.ErrorIs(t, err, book.ErrBookNotFound)
}

func TestGetBook_AverageAndReviewPaging(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	b, err := f.books.CreateBook(ctx, "Dune", "Frank Herbert", "SciFi", 1965)
	require.NoError(t, err)

	alice, bob := f.addUser(t, "alice"), f.addUser(t, "bob")
	_, err = f.reviews.CreateReview(ctx, b.ID, alice, 3, "ok")
	require.NoError(t, err)
	_, err = f.reviews.CreateReview(ctx, b.ID, bob, 5, "great")
	require.NoError(t, err)

	uc := NewGetBookUseCase(f.books, f.reviews, f.cache, zap.NewNop())
	detail, err := uc.Execute(ctx, GetBookRequest{ID: b.ID, ReviewPage: 2, ReviewLimit: 1})
	require.NoError(t, err)

	require.NotNil(t, detail.AverageRating)
	assert.InDelta(t, 4.0, *detail.AverageRating, 1e-9, "平均分覆盖全部评论而不是当前页")
	require.Len(t, detail.Reviews, 1)
	assert.Equal(t, "bob", detail.Reviews[0].User.Username)
	assert.Equal(t, 1, f.cache.sets)

	// 第二次命中缓存，不再回写
	_, err = uc.Execute(ctx, GetBookRequest{ID: b.ID})
	require.NoError(t, err)
	assert.Equal(t, 1, f.cache.sets)
}

func TestGetBook_ConcurrentReviewDiscardsStaleAverage(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	b, err := f.books.CreateBook(ctx, "Dune", "Frank Herbert", "SciFi", 1965)
	require.NoError(t, err)
	alice, bob := f.addUser(t, "alice"), f.addUser(t, "bob")
	_, err = f.reviews.CreateReview(ctx, b.ID, alice, 3, "ok")
	require.NoError(t, err)

	reviews := &racingReviews{Service: f.reviews}
	reviews.beforeReturn = func() {
		_, err := f.reviews.CreateReview(ctx, b.ID, bob, 5, "great")
		require.NoError(t, err)
		require.NoError(t, f.cache.Invalidate(ctx, b.ID))
	}
	uc := NewGetBookUseCase(f.books, reviews, f.cache, zap.NewNop())

	// 本次请求在写入前完成聚合，返回旧值但不能回写
	first, err := uc.Execute(ctx, GetBookRequest{ID: b.ID})
	require.NoError(t, err)
	require.NotNil(t, first.AverageRating)
	assert.InDelta(t, 3.0, *first.AverageRating, 1e-9)
	assert.Equal(t, 0, f.cache.sets)

	second, err := uc.Execute(ctx, GetBookRequest{ID: b.ID})
	require.NoError(t, err)
	require.NotNil(t, second.AverageRating)
	assert.InDelta(t, 4.0, *second.AverageRating, 1e-9)
	assert.Len(t, second.Reviews, 2)
	assert.Equal(t, 1, f.cache.sets)
}

func TestGetBook_CacheFailureFallsBack(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	f.cache.getErr = errors.New("redis down")
	b, err := f.books.CreateBook(ctx, "Dune", "Frank Herbert", "SciFi", 1965)
	require.NoError(t, err)

	detail, err := NewGetBookUseCase(f.books, f.reviews, f.cache, zap.NewNop()).
		Execute(ctx, GetBookRequest{ID: b.ID})
	require.NoError(t, err)
	assert.Nil(t, detail.AverageRating)
}

func TestListBooks_Pagination(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	for _, title := range []string{"A", "B", "C"} {
		_, err := f.books.CreateBook(ctx, title, "Author", "Genre", 2000)
		require.NoError(t, err)
	}
	uc := NewListBooksUseCase(f.books)

	cases := []struct {
		name      string
		req       ListBooksRequest
		wantLen   int
		wantPage  int
		wantLimit int
	}{
		{"默认值", ListBooksRequest{}, 3, 1, 10},
		{"page小于1按1处理", ListBooksRequest{Page: -3, Limit: 2}, 2, 1, 2},
		{"最后一页", ListBooksRequest{Page: 2, Limit: 2}, 1, 2, 2},
		{"limit不设上限", ListBooksRequest{Page: 1, Limit: 1000}, 3, 1, 1000},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp, err := uc.Execute(ctx, tc.req)
			require.NoError(t, err)
			assert.Len(t, resp.Data, tc.wantLen)
			assert.Equal(t, PageMeta{Total: 3, Page: tc.wantPage, Limit: tc.wantLimit}, resp.Meta)
		})
	}
}

func TestSearchBooks(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	_, err := f.books.CreateBook(ctx, "Dune", "Frank Herbert", "SciFi", 1965)
	require.NoError(t, err)
	uc := NewSearchBooksUseCase(f.books)

	empty, err := uc.Execute(ctx, "")
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	found, err := uc.Execute(ctx, "herb")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Dune", found[0].Title)
}
