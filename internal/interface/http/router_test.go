package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	nethttp "net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	appbook "github.com/xiebiao/bookreview/internal/application/book"
	appreview "github.com/xiebiao/bookreview/internal/application/review"
	appuser "github.com/xiebiao/bookreview/internal/application/user"
	"github.com/xiebiao/bookreview/internal/domain/book"
	"github.com/xiebiao/bookreview/internal/domain/review"
	"github.com/xiebiao/bookreview/internal/domain/user"
	"github.com/xiebiao/bookreview/internal/infrastructure/config"
	"github.com/xiebiao/bookreview/internal/infrastructure/persistence"
	"github.com/xiebiao/bookreview/internal/interface/http/handler"
	"github.com/xiebiao/bookreview/internal/interface/http/middleware"
	"github.com/xiebiao/bookreview/pkg/jwt"
)

const testSecret = "router-test-secret"

// newTestRouter 使用内存存储组装完整的依赖链
func newTestRouter(t *testing.T, cfg *config.Config) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	log := zap.NewNop()

	storage := persistence.OpenMemory()
	t.Cleanup(func() { storage.Close() })

	jwtManager := jwt.NewManager(testSecret, time.Hour)
	bookService := book.NewService(storage.Books)
	reviewService := review.NewService(storage.Reviews, storage.Tx)
	userService := user.NewService(storage.Users)
	cache := book.NopRatingCache{}
	publisher := review.NopPublisher{}

	bookHandler := handler.NewBookHandler(
		appbook.NewCreateBookUseCase(bookService, log),
		appbook.NewListBooksUseCase(bookService),
		appbook.NewGetBookUseCase(bookService, reviewService, cache, log),
		appbook.NewSearchBooksUseCase(bookService),
	)
	reviewHandler := handler.NewReviewHandler(
		appreview.NewCreateReviewUseCase(reviewService, cache, publisher, log),
		appreview.NewUpdateReviewUseCase(reviewService, cache, publisher, log),
		appreview.NewDeleteReviewUseCase(reviewService, cache, publisher, log),
	)
	userHandler := handler.NewUserHandler(
		appuser.NewRegisterUseCase(userService, log),
		appuser.NewLoginUseCase(userService, jwtManager, appuser.NopSessionRecorder{}, log),
	)

	return NewRouter(cfg, log, middleware.NewAuthMiddleware(jwtManager), bookHandler, reviewHandler, userHandler)
}

type client struct {
	t *testing.T
	r *gin.Engine
}

func (c *client) do(method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	c.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(c.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	c.r.ServeHTTP(w, req)
	return w
}

// login 注册并登录，返回token
func (c *client) login(username string) string {
	c.t.Helper()
	creds := map[string]string{"username": username, "password": "secret123"}
	w := c.do("POST", "/auth/signup", creds, "")
	require.Equal(c.t, nethttp.StatusCreated, w.Code, w.Body.String())

	w = c.do("POST", "/auth/login", creds, "")
	require.Equal(c.t, nethttp.StatusOK, w.Code, w.Body.String())
	var resp appuser.LoginResponse
	decode(c.t, w, &resp)
	return resp.Token
}

func (c *client) createBook(token string, b map[string]interface{}) appbook.BookDTO {
	c.t.Helper()
	w := c.do("POST", "/books", b, token)
	require.Equal(c.t, nethttp.StatusCreated, w.Code, w.Body.String())
	var created appbook.BookDTO
	decode(c.t, w, &created)
	return created
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

func message(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Message string `json:"message"`
	}
	decode(t, w, &body)
	return body.Message
}

func dune() map[string]interface{} {
	return map[string]interface{}{"title": "Dune", "author": "Frank Herbert", "genre": "SciFi", "publishedYear": 1965}
}

func newClient(t *testing.T) *client {
	return &client{t: t, r: newTestRouter(t, &config.Config{})}
}

func TestIndex(t *testing.T) {
	c := newClient(t)
	w := c.do("GET", "/", nil, "")
	assert.Equal(t, nethttp.StatusOK, w.Code)
	assert.Equal(t, "Book Review API is running.", w.Body.String())
}

func TestAuth(t *testing.T) {
	c := newClient(t)
	token := c.login("alice")
	assert.NotEmpty(t, token)

	t.Run("重复用户名", func(t *testing.T) {
		w := c.do("POST", "/auth/signup", map[string]string{"username": "alice", "password": "another1"}, "")
		assert.Equal(t, nethttp.StatusBadRequest, w.Code)
		assert.Equal(t, "Username already taken", message(t, w))
	})

	t.Run("密码错误", func(t *testing.T) {
		w := c.do("POST", "/auth/login", map[string]string{"username": "alice", "password": "wrong-pass"}, "")
		assert.Equal(t, nethttp.StatusUnauthorized, w.Code)
		assert.Equal(t, "Invalid username or password", message(t, w))
	})

	t.Run("缺少Token", func(t *testing.T) {
		w := c.do("POST", "/books", dune(), "")
		assert.Equal(t, nethttp.StatusUnauthorized, w.Code)
		assert.Equal(t, "No token provided", message(t, w))
	})

	t.Run("Token无效", func(t *testing.T) {
		w := c.do("POST", "/books", dune(), "not-a-jwt")
		assert.Equal(t, nethttp.StatusUnauthorized, w.Code)
		assert.Equal(t, "Invalid or expired token", message(t, w))
	})

	t.Run("其他密钥签发的Token", func(t *testing.T) {
		forged, err := jwt.NewManager("other-secret", time.Hour).GenerateToken(1, "alice")
		require.NoError(t, err)
		w := c.do("POST", "/books", dune(), forged.AccessToken)
		assert.Equal(t, nethttp.StatusUnauthorized, w.Code)
	})

	t.Run("过期Token", func(t *testing.T) {
		expired, err := jwt.NewManager(testSecret, -time.Minute).GenerateToken(1, "alice")
		require.NoError(t, err)
		w := c.do("POST", "/books", dune(), expired.AccessToken)
		assert.Equal(t, nethttp.StatusUnauthorized, w.Code)
		assert.Equal(t, "Invalid or expired token", message(t, w))
	})
}

func TestBooks(t *testing.T) {
	c := newClient(t)
	token := c.login("alice")

	created := c.createBook(token, dune())
	assert.Equal(t, appbook.BookDTO{ID: created.ID, Title: "Dune", Author: "Frank Herbert", Genre: "SciFi", PublishedYear: 1965}, created)
	c.createBook(token, map[string]interface{}{"title": "Children of Dune", "author": "Frank Herbert", "genre": "scifi", "publishedYear": 1976})
	c.createBook(token, map[string]interface{}{"title": "Emma", "author": "Jane Austen", "genre": "Romance", "publishedYear": 1815})

	t.Run("缺少字段", func(t *testing.T) {
		w := c.do("POST", "/books", map[string]interface{}{"title": "Untitled"}, token)
		assert.Equal(t, nethttp.StatusBadRequest, w.Code)
		assert.NotEmpty(t, message(t, w))
	})

	t.Run("字段类型错误", func(t *testing.T) {
		w := c.do("POST", "/books", map[string]interface{}{"title": "X", "author": "Y", "genre": "Z", "publishedYear": "1965"}, token)
		assert.Equal(t, nethttp.StatusBadRequest, w.Code)
	})

	t.Run("详情与创建一致", func(t *testing.T) {
		w := c.do("GET", fmt.Sprintf("/books/%d", created.ID), nil, "")
		require.Equal(t, nethttp.StatusOK, w.Code)

		var raw map[string]interface{}
		decode(t, w, &raw)
		assert.Equal(t, "Dune", raw["title"])
		assert.Equal(t, float64(1965), raw["publishedYear"])
		assert.Contains(t, raw, "averageRating")
		assert.Nil(t, raw["averageRating"])
		assert.Equal(t, []interface{}{}, raw["reviews"])
	})

	t.Run("详情404和400", func(t *testing.T) {
		w := c.do("GET", "/books/999", nil, "")
		assert.Equal(t, nethttp.StatusNotFound, w.Code)
		assert.Equal(t, "Book not found", message(t, w))

		w = c.do("GET", "/books/abc", nil, "")
		assert.Equal(t, nethttp.StatusBadRequest, w.Code)
	})

	t.Run("分页与过滤", func(t *testing.T) {
		w := c.do("GET", "/books?page=1&limit=2", nil, "")
		require.Equal(t, nethttp.StatusOK, w.Code)
		var page struct {
			Data []appbook.BookDTO `json:"data"`
			Meta appbook.PageMeta  `json:"meta"`
		}
		decode(t, w, &page)
		assert.Len(t, page.Data, 2)
		assert.Equal(t, appbook.PageMeta{Total: 3, Page: 1, Limit: 2}, page.Meta)

		w = c.do("GET", "/books?author=HERBERT&genre=SCIFI", nil, "")
		decode(t, w, &page)
		assert.Len(t, page.Data, 2)
		assert.Equal(t, int64(2), page.Meta.Total)
		assert.Equal(t, 10, page.Meta.Limit)

		w = c.do("GET", "/books?page=abc", nil, "")
		assert.Equal(t, nethttp.StatusBadRequest, w.Code)
	})

	t.Run("搜索", func(t *testing.T) {
		for _, path := range []string{"/books/search", "/books/search?query="} {
			w := c.do("GET", path, nil, "")
			require.Equal(t, nethttp.StatusOK, w.Code)
			assert.JSONEq(t, "[]", w.Body.String())
		}

		w := c.do("GET", "/books/search?query=austen", nil, "")
		var found []appbook.BookDTO
		decode(t, w, &found)
		require.Len(t, found, 1)
		assert.Equal(t, "Emma", found[0].Title)
	})
}

func TestReviews(t *testing.T) {
	c := newClient(t)
	alice, bob := c.login("alice"), c.login("bob")
	b := c.createBook(alice, dune())
	reviewsPath := fmt.Sprintf("/books/%d/reviews", b.ID)

	w := c.do("POST", reviewsPath, map[string]interface{}{"rating": 3, "comment": "ok"}, alice)
	require.Equal(t, nethttp.StatusCreated, w.Code, w.Body.String())
	var first appreview.ReviewDTO
	decode(t, w, &first)
	assert.Equal(t, 3, first.Rating)
	assert.Equal(t, b.ID, first.BookID)

	t.Run("重复评论", func(t *testing.T) {
		w := c.do("POST", reviewsPath, map[string]interface{}{"rating": 1, "comment": "again"}, alice)
		assert.Equal(t, nethttp.StatusBadRequest, w.Code)
		assert.Equal(t, "Already reviewed this book", message(t, w))
	})

	t.Run("评分越界", func(t *testing.T) {
		w := c.do("POST", reviewsPath, map[string]interface{}{"rating": 6}, bob)
		assert.Equal(t, nethttp.StatusBadRequest, w.Code)
	})

	t.Run("图书不存在", func(t *testing.T) {
		w := c.do("POST", "/books/999/reviews", map[string]interface{}{"rating": 4}, bob)
		assert.Equal(t, nethttp.StatusBadRequest, w.Code)
	})

	t.Run("非作者修改和删除", func(t *testing.T) {
		path := fmt.Sprintf("/reviews/%d", first.ID)
		w := c.do("PUT", path, map[string]interface{}{"rating": 1}, bob)
		assert.Equal(t, nethttp.StatusNotFound, w.Code)
		assert.Equal(t, "Review not found or not yours", message(t, w))

		w = c.do("DELETE", path, nil, bob)
		assert.Equal(t, nethttp.StatusNotFound, w.Code)
	})

	t.Run("平均分覆盖全部评论", func(t *testing.T) {
		w := c.do("POST", reviewsPath, map[string]interface{}{"rating": 5, "comment": "great"}, bob)
		require.Equal(t, nethttp.StatusCreated, w.Code)

		w = c.do("GET", fmt.Sprintf("/books/%d?reviewLimit=1", b.ID), nil, "")
		var detail appbook.BookDetailDTO
		decode(t, w, &detail)
		require.NotNil(t, detail.AverageRating)
		assert.Equal(t, 4.0, *detail.AverageRating)
		require.Len(t, detail.Reviews, 1)
		assert.Equal(t, 3, detail.Reviews[0].Rating, "第一条评论未被修改")
		assert.Equal(t, "alice", detail.Reviews[0].User.Username)
	})

	t.Run("作者修改和删除", func(t *testing.T) {
		path := fmt.Sprintf("/reviews/%d", first.ID)
		w := c.do("PUT", path, map[string]interface{}{"comment": "better on re-read"}, alice)
		require.Equal(t, nethttp.StatusOK, w.Code)
		var updated appreview.ReviewDTO
		decode(t, w, &updated)
		assert.Equal(t, 3, updated.Rating)
		assert.Equal(t, "better on re-read", updated.Comment)

		w = c.do("DELETE", path, nil, alice)
		require.Equal(t, nethttp.StatusOK, w.Code)
		assert.Equal(t, "Review deleted", message(t, w))

		w = c.do("DELETE", path, nil, alice)
		assert.Equal(t, nethttp.StatusNotFound, w.Code)
	})
}

func TestRateLimit(t *testing.T) {
	cfg := &config.Config{Server: config.ServerConfig{RateLimitRPS: 0.001, RateLimitBurst: 1}}
	c := &client{t: t, r: newTestRouter(t, cfg)}

	assert.Equal(t, nethttp.StatusOK, c.do("GET", "/", nil, "").Code)
	w := c.do("GET", "/", nil, "")
	assert.Equal(t, nethttp.StatusTooManyRequests, w.Code)
	assert.Equal(t, "Too many requests", message(t, w))
}

func TestMetricsEndpoint(t *testing.T) {
	c := newClient(t)
	c.do("GET", "/books", nil, "")

	w := c.do("GET", "/metrics", nil, "")
	require.Equal(t, nethttp.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "http_requests_total")
}


func TestCORSPreflight(t *testing.T) {
	cfg := &config.Config{CORS: config.CORSConfig{
		Enabled:      true,
		AllowOrigins: []string{"http://localhost:5173"},
		AllowMethods: []string{"GET", "POST"},
		AllowHeaders: []string{"Authorization", "Content-Type"},
		MaxAge:       time.Hour,
	}}
	r := newTestRouter(t, cfg)

	req := httptest.NewRequest(nethttp.MethodOptions, "/books", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, nethttp.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "3600", w.Header().Get("Access-Control-Max-Age"))
}
