package api_test

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/hal-books-api/api"
	"github.com/AntonStoeckl/hal-books-api/bookstore"
	"github.com/AntonStoeckl/hal-books-api/hal"
	. "github.com/AntonStoeckl/hal-books-api/testutil/helper"            //nolint:revive
	. "github.com/AntonStoeckl/hal-books-api/testutil/helper/sqlwrapper" //nolint:revive
)

type bookResponse struct {
	ID     int64     `json:"id"`
	Title  string    `json:"title"`
	Author string    `json:"author"`
	Links  hal.Links `json:"_links"`
}

func givenHandler(t *testing.T, repo api.BookRepository, options ...api.Option) http.Handler {
	server, err := api.NewServer(repo, options...)
	require.NoError(t, err)

	handler, err := server.Handler()
	require.NoError(t, err)

	return handler
}

func givenStore(t *testing.T) api.BookRepository {
	wrapper := CreateWrapperWithTestConfig(t)
	CleanUp(t, wrapper)

	return wrapper.GetBookStore()
}

func serve(handler http.Handler, method, target, body string) *httptest.ResponseRecorder {
	var request *http.Request
	if body == "" {
		request = httptest.NewRequest(method, target, nil)
	} else {
		request = httptest.NewRequest(method, target, strings.NewReader(body))
		request.Header.Set("Content-Type", "application/json")
	}

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)

	return recorder
}

func assertResponsePolicy(t *testing.T, recorder *httptest.ResponseRecorder, maxAge int) {
	t.Helper()

	assert.Equal(t, "application/json+hal", recorder.Header().Get("Content-Type"))
	assert.Equal(t, "public, max-age="+strconv.Itoa(maxAge), recorder.Header().Get("Cache-Control"))
}

func Test_PostBook_ThenGetLocation_ReturnsTheBook(t *testing.T) {
	// setup
	handler := givenHandler(t, givenStore(t))

	// act
	created := serve(handler, http.MethodPost, "/books", `{"title":"Dune","author":"Herbert"}`)
	location := created.Header().Get("Location")
	fetched := serve(handler, http.MethodGet, location, "")

	// assert
	assert.Equal(t, http.StatusCreated, created.Code)
	assert.Empty(t, created.Body.String())
	assert.Regexp(t, `^/books/[1-9][0-9]*$`, location)
	assertResponsePolicy(t, created, 3600)

	require.Equal(t, http.StatusOK, fetched.Code)
	assertResponsePolicy(t, fetched, 3600)

	var book bookResponse
	require.NoError(t, hal.Unmarshal(fetched.Body.Bytes(), &book))
	assert.Equal(t, "Dune", book.Title)
	assert.Equal(t, "Herbert", book.Author)
	assert.Equal(t, location, book.Links.Self.Href)
	assert.Equal(t, location, "/books/"+strconv.FormatInt(book.ID, 10))
}

func Test_GetBook_RendersHALRepresentation(t *testing.T) {
	// setup
	ctx := context.Background()
	store := givenStore(t)
	handler := givenHandler(t, store)

	// arrange
	book := GivenBookWasSaved(t, ctx, store, FixtureBook())
	id := strconv.FormatInt(book.ID, 10)

	// act
	recorder := serve(handler, http.MethodGet, "/books/"+id, "")

	// assert
	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.JSONEq(t,
		`{"id":`+id+`,"title":"Learning Domain-Driven Design","author":"Vlad Khononov","_links":{"self":{"href":"/books/`+id+`"}}}`,
		recorder.Body.String())
}

func Test_GetBook_Returns404_WhenBookDoesNotExist(t *testing.T) {
	// setup
	handler := givenHandler(t, givenStore(t))

	for _, token := range []string{"999", "0", "-1", "abc", "1.5"} {
		t.Run(token, func(t *testing.T) {
			// act
			recorder := serve(handler, http.MethodGet, "/books/"+token, "")

			// assert
			assert.Equal(t, http.StatusNotFound, recorder.Code)
			assert.Empty(t, recorder.Body.String())
			assertResponsePolicy(t, recorder, 3600)
		})
	}
}

func Test_ListBooks_EmbedsAllBooks_WithMatchingCountAndTotal(t *testing.T) {
	// setup
	ctx := context.Background()
	store := givenStore(t)
	handler := givenHandler(t, store)

	// arrange
	_ = GivenBookWasSaved(t, ctx, store, FixtureBook())
	_ = GivenBookWasSaved(t, ctx, store, FixtureOtherBook())

	// act
	recorder := serve(handler, http.MethodGet, "/books", "")

	// assert
	require.Equal(t, http.StatusOK, recorder.Code)
	assertResponsePolicy(t, recorder, 60)

	var collection hal.Collection[bookResponse]
	require.NoError(t, hal.Unmarshal(recorder.Body.Bytes(), &collection))
	assert.Equal(t, 2, collection.Count)
	assert.Equal(t, collection.Count, collection.Total)
	assert.Len(t, collection.Embedded["books"], collection.Count)
	assert.Equal(t, "/books", collection.Links.Self.Href)

	for _, book := range collection.Embedded["books"] {
		assert.Equal(t, "/books/"+strconv.FormatInt(book.ID, 10), book.Links.Self.Href)
	}
}

func Test_ListBooks_RendersEmptyCollection(t *testing.T) {
	// setup
	handler := givenHandler(t, givenStore(t))

	// act
	recorder := serve(handler, http.MethodGet, "/books", "")

	// assert
	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.JSONEq(t, `{"count":0,"total":0,"_embedded":{"books":[]},"_links":{"self":{"href":"/books"}}}`, recorder.Body.String())
}

func Test_PutBook_ChangesTitleAndAuthor_AndKeepsID(t *testing.T) {
	// setup
	ctx := context.Background()
	store := givenStore(t)
	handler := givenHandler(t, store)

	// arrange
	book := GivenBookWasSaved(t, ctx, store, FixtureBook())
	target := "/books/" + strconv.FormatInt(book.ID, 10)

	// act
	updated := serve(handler, http.MethodPut, target, `{"title":"Dune Messiah","author":"Frank Herbert"}`)

	// assert
	assert.Equal(t, http.StatusOK, updated.Code)
	assert.Empty(t, updated.Body.String())
	assertResponsePolicy(t, updated, 3600)

	loaded, found, err := store.Get(ctx, book.ID)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, bookstore.BuildBook(book.ID, "Dune Messiah", "Frank Herbert"), loaded)
}

func Test_PutBook_Returns404_WhenBookDoesNotExist(t *testing.T) {
	// setup
	handler := givenHandler(t, givenStore(t))

	// act
	recorder := serve(handler, http.MethodPut, "/books/4711", `{"title":"x","author":"y"}`)

	// assert
	assert.Equal(t, http.StatusNotFound, recorder.Code)
	assert.Empty(t, recorder.Body.String())
}

func Test_DeleteBook_Returns204_ThenSecondDeleteReturns404(t *testing.T) {
	// setup
	ctx := context.Background()
	store := givenStore(t)
	handler := givenHandler(t, store)

	// arrange
	book := GivenBookWasSaved(t, ctx, store, FixtureBook())
	target := "/books/" + strconv.FormatInt(book.ID, 10)

	// act
	first := serve(handler, http.MethodDelete, target, "")
	second := serve(handler, http.MethodDelete, target, "")
	fetched := serve(handler, http.MethodGet, target, "")

	// assert
	assert.Equal(t, http.StatusNoContent, first.Code)
	assert.Empty(t, first.Body.String())
	assertResponsePolicy(t, first, 3600)
	assert.Equal(t, http.StatusNotFound, second.Code)
	assert.Equal(t, http.StatusNotFound, fetched.Code)
}

func Test_PostBook_WithMalformedOrForeignBody_CreatesBookWithEmptyFields(t *testing.T) {
	testCases := []struct {
		name        string
		contentType string
		body        string
	}{
		{name: "malformed json", contentType: "application/json", body: `{"title":`},
		{name: "json array", contentType: "application/json", body: `["Dune","Herbert"]`},
		{name: "form body", contentType: "application/x-www-form-urlencoded", body: "title=Dune&author=Herbert"},
		{name: "no body", contentType: "", body: ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// setup
			ctx := context.Background()
			store := givenStore(t)
			handler := givenHandler(t, store)

			request := httptest.NewRequest(http.MethodPost, "/books", strings.NewReader(tc.body))
			if tc.contentType != "" {
				request.Header.Set("Content-Type", tc.contentType)
			}

			// act
			recorder := httptest.NewRecorder()
			handler.ServeHTTP(recorder, request)

			// assert
			require.Equal(t, http.StatusCreated, recorder.Code)
			id, err := strconv.ParseInt(strings.TrimPrefix(recorder.Header().Get("Location"), "/books/"), 10, 64)
			require.NoError(t, err)

			loaded, found, err := store.Get(ctx, id)
			require.NoError(t, err)
			assert.True(t, found)
			assert.Equal(t, "", loaded.Title)
			assert.Equal(t, "", loaded.Author)
		})
	}
}

func Test_PostBook_AcceptsJSONContentTypeWithParameters(t *testing.T) {
	// setup
	ctx := context.Background()
	store := givenStore(t)
	handler := givenHandler(t, store)

	request := httptest.NewRequest(http.MethodPost, "/books", strings.NewReader(`{"title":"Dune","author":1965}`))
	request.Header.Set("Content-Type", "application/json; charset=utf-8")

	// act
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)

	// assert
	require.Equal(t, http.StatusCreated, recorder.Code)
	books, err := store.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, books, 1)
	assert.Equal(t, "Dune", books[0].Title)
	assert.Equal(t, "1965", books[0].Author)
}

func Test_Router_RendersStatusOnly_ForUnknownRoutesAndMethods(t *testing.T) {
	// setup
	handler := givenHandler(t, givenStore(t))

	// act
	unknown := serve(handler, http.MethodGet, "/authors", "")
	wrongMethod := serve(handler, http.MethodPatch, "/books/1", "")
	trailingSlash := serve(handler, http.MethodGet, "/books/", "")
	wrongCase := serve(handler, http.MethodGet, "/BOOKS", "")

	// assert
	assert.Equal(t, http.StatusNotFound, unknown.Code)
	assert.Empty(t, unknown.Body.String())
	assertResponsePolicy(t, unknown, 3600)
	assert.Equal(t, http.StatusMethodNotAllowed, wrongMethod.Code)
	assert.Empty(t, wrongMethod.Body.String())
	assertResponsePolicy(t, wrongMethod, 3600)

	for _, recorder := range []*httptest.ResponseRecorder{trailingSlash, wrongCase} {
		assert.Equal(t, http.StatusNotFound, recorder.Code)
		assert.Empty(t, recorder.Body.String())
		assert.Empty(t, recorder.Header().Get("Location"))
		assertResponsePolicy(t, recorder, 3600)
	}
}

func Test_Server_WithBasePath_PrefixesRoutesAndLinks(t *testing.T) {
	// setup
	handler := givenHandler(t, givenStore(t), api.WithBasePath("/api/"))

	// act
	created := serve(handler, http.MethodPost, "/api/books", `{"title":"Dune","author":"Herbert"}`)
	location := created.Header().Get("Location")
	fetched := serve(handler, http.MethodGet, location, "")
	unprefixed := serve(handler, http.MethodGet, "/books", "")

	// assert
	assert.Equal(t, http.StatusCreated, created.Code)
	assert.True(t, strings.HasPrefix(location, "/api/books/"), location)
	assert.Equal(t, http.StatusOK, fetched.Code)
	assert.Equal(t, http.StatusNotFound, unprefixed.Code)
}

func Test_Server_URLs_UsesTheBasePath(t *testing.T) {
	// setup
	server, err := api.NewServer(&failingRepository{}, api.WithBasePath("/api"))
	require.NoError(t, err)

	// act
	location, generateErr := server.URLs().Generate(api.RouteBook, api.RouteParams{api.ParamBook: "7"})

	// assert
	require.NoError(t, generateErr)
	assert.Equal(t, "/api/books/7", location)
}

func Test_NewServer_ShouldFail_WithInvalidArguments(t *testing.T) {
	_, nilRepoErr := api.NewServer(nil)
	_, basePathErr := api.NewServer(&failingRepository{}, api.WithBasePath("api"))

	assert.ErrorIs(t, nilRepoErr, api.ErrNilRepository)
	assert.ErrorIs(t, basePathErr, api.ErrInvalidBasePath)
}

func Test_Server_PropagatesRequestID(t *testing.T) {
	// setup
	handler := givenHandler(t, givenStore(t))

	request := httptest.NewRequest(http.MethodGet, "/books", nil)
	request.Header.Set("X-Request-ID", "req-42")

	// act
	withID := httptest.NewRecorder()
	handler.ServeHTTP(withID, request)
	withoutID := serve(handler, http.MethodGet, "/books", "")

	// assert
	assert.Equal(t, "req-42", withID.Header().Get("X-Request-ID"))
	assert.NotEmpty(t, withoutID.Header().Get("X-Request-ID"))
}

// === Storage failures ===

var errStorageDown = errors.New("storage is down")

type failingRepository struct {
	book        bookstore.Book
	saveErr     error
	getCalls    int
	failOnRead  bool
	failOnWrite bool
	panicOnList bool
}

func (r *failingRepository) GetAll(_ context.Context) (bookstore.Books, error) {
	if r.panicOnList {
		panic("books table cursor corrupted")
	}

	if r.failOnRead {
		return nil, errors.Join(bookstore.ErrQueryingBooksFailed, errStorageDown)
	}

	return bookstore.Books{r.book}, nil
}

func (r *failingRepository) Get(_ context.Context, id bookstore.BookID) (bookstore.Book, bool, error) {
	r.getCalls++

	if r.failOnRead {
		return bookstore.Book{}, false, errors.Join(bookstore.ErrQueryingBooksFailed, errStorageDown)
	}

	if id != r.book.ID {
		return bookstore.Book{}, false, nil
	}

	return r.book, true, nil
}

func (r *failingRepository) Save(_ context.Context, book bookstore.Book) (bookstore.BookID, error) {
	if r.saveErr != nil {
		return 0, r.saveErr
	}

	if r.failOnWrite {
		return 0, errors.Join(bookstore.ErrSavingBookFailed, errStorageDown)
	}

	return book.ID, nil
}

func (r *failingRepository) Delete(_ context.Context, _ bookstore.Book) error {
	if r.failOnWrite {
		return errors.Join(bookstore.ErrDeletingBookFailed, errStorageDown)
	}

	return nil
}

func Test_Server_Returns500WithEmptyBody_WhenStorageFails(t *testing.T) {
	// setup
	testHandler := NewLogHandlerSpy(false)
	logger := slog.New(testHandler)

	readFailing := givenHandler(t, &failingRepository{failOnRead: true}, api.WithLogger(logger))
	writeFailing := givenHandler(t, &failingRepository{book: bookstore.BuildBook(1, "t", "a"), failOnWrite: true}, api.WithLogger(logger))

	testCases := []struct {
		name    string
		handler http.Handler
		method  string
		target  string
		body    string
	}{
		{name: "list", handler: readFailing, method: http.MethodGet, target: "/books"},
		{name: "show", handler: readFailing, method: http.MethodGet, target: "/books/1"},
		{name: "create", handler: writeFailing, method: http.MethodPost, target: "/books", body: `{"title":"t"}`},
		{name: "update", handler: writeFailing, method: http.MethodPut, target: "/books/1", body: `{"title":"t"}`},
		{name: "delete", handler: writeFailing, method: http.MethodDelete, target: "/books/1"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			testHandler.Reset()

			// act
			recorder := serve(tc.handler, tc.method, tc.target, tc.body)

			// assert
			assert.Equal(t, http.StatusInternalServerError, recorder.Code)
			assert.Empty(t, recorder.Body.String(), "no internal detail may leak into the body")
			assertResponsePolicy(t, recorder, 3600)
			assert.True(t, testHandler.HasErrorLog("storage operation failed"))
		})
	}
}

func Test_Server_Returns404_WhenUpdateMatchesNoRow(t *testing.T) {
	// setup
	repo := &failingRepository{book: bookstore.BuildBook(1, "t", "a"), saveErr: bookstore.ErrBookNotFound}
	handler := givenHandler(t, repo)

	// act
	recorder := serve(handler, http.MethodPut, "/books/1", `{"title":"x"}`)

	// assert
	assert.Equal(t, http.StatusNotFound, recorder.Code)
	assert.Empty(t, recorder.Body.String())
}

func Test_ResolveBook_LooksUpTheBookOncePerRequest(t *testing.T) {
	// setup
	repo := &failingRepository{book: bookstore.BuildBook(1, "t", "a")}
	handler := givenHandler(t, repo)

	// act
	_ = serve(handler, http.MethodGet, "/books/1", "")
	_ = serve(handler, http.MethodPut, "/books/1", `{"title":"x"}`)
	_ = serve(handler, http.MethodDelete, "/books/1", "")

	// assert
	assert.Equal(t, 3, repo.getCalls)
}

func Test_ResolveBook_LogsTheNotFoundMessage(t *testing.T) {
	// setup
	testHandler := NewLogHandlerSpy(false)
	handler := givenHandler(t, &failingRepository{}, api.WithLogger(slog.New(testHandler)))

	// act
	recorder := serve(handler, http.MethodGet, "/books/12", "")

	// assert
	assert.Equal(t, http.StatusNotFound, recorder.Code)
	assert.True(t,
		testHandler.HasInfoLogWithMessage("book could not be resolved").
			WithAttr("error", "Book 12 not found").
			Assert())
	assert.True(t,
		testHandler.HasInfoLogWithMessage("http request handled").
			WithAttr("status", "404").
			WithDurationMS().
			Assert())
}
