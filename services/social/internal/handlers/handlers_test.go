package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	jwt "github.com/golang-jwt/jwt/v5"

	"github.com/example/movie-platform/internal/platform/api"
	"github.com/example/movie-platform/internal/platform/auth"
	"github.com/example/movie-platform/services/social/internal/social"
	"github.com/example/movie-platform/services/social/internal/store"
)

var testSecret = []byte("test-secret-key-32-bytes-long!!!")

// setupReq builds a request with chi URL params and optional user_id in context.
func setupReq(method, url string, body string, params map[string]string, userID string) *http.Request {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, url, bytes.NewBufferString(body))
	} else {
		req = httptest.NewRequest(method, url, nil)
	}
	rctx := chi.NewRouteContext()
	for k, v := range params {
		rctx.URLParams.Add(k, v)
	}
	ctx := context.WithValue(req.Context(), chi.RouteCtxKey, rctx)
	if userID != "" {
		ctx = auth.WithUserID(ctx, userID)
	}
	return req.WithContext(ctx)
}

func newServices() (Services, *store.Memory) {
	mem := store.NewMemory()
	dir := mem.Directory()
	dir.AddUser("user-a", "user-b", "user-c")
	dir.AddMovie("movie-1")
	return Services{
		Graph:     social.NewRelationshipGraph(mem.Relationships(), social.Options{}),
		Comments:  social.NewCommentThread(mem.Comments(), dir, social.Options{}),
		Reactions: social.NewReactionStore(mem.Reactions(), social.Options{}),
		Ratings:   social.NewRatingStore(mem.Ratings(), dir, social.Options{}),
	}, mem
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) api.APIError {
	t.Helper()
	var resp api.ErrorResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	return resp.Error
}

func TestCreateComment(t *testing.T) {
	svc, _ := newServices()
	handler := CreateComment(svc.Comments)

	req := setupReq(http.MethodPost, "/v1/subjects/Movie/movie-1/comments", `{"content":"Great film"}`,
		map[string]string{"subject_type": "Movie", "subject_id": "movie-1"}, "user-a")

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
	var c commentCreatedResponse
	if err := json.NewDecoder(rr.Body).Decode(&c); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if c.ID != 1 || c.Depth != 0 {
		t.Fatalf("expected id=1 depth=0, got %+v", c)
	}
}

func TestCreateComment_Unauthenticated(t *testing.T) {
	svc, _ := newServices()
	handler := CreateComment(svc.Comments)

	req := setupReq(http.MethodPost, "/v1/subjects/Movie/movie-1/comments", `{"content":"hi"}`,
		map[string]string{"subject_type": "Movie", "subject_id": "movie-1"}, "")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}
}

func TestCreateComment_Validation(t *testing.T) {
	svc, _ := newServices()
	handler := CreateComment(svc.Comments)

	req := setupReq(http.MethodPost, "/v1/subjects/Movie/movie-1/comments", `{"content":"   "}`,
		map[string]string{"subject_type": "Movie", "subject_id": "movie-1"}, "user-a")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
	if e := decodeError(t, rr); e.Code != "INVALID_CONTENT" {
		t.Fatalf("expected INVALID_CONTENT, got %q", e.Code)
	}
}

func TestCreateComment_InvalidJSON(t *testing.T) {
	svc, _ := newServices()
	handler := CreateComment(svc.Comments)

	req := setupReq(http.MethodPost, "/v1/subjects/Movie/movie-1/comments", `{not json`,
		map[string]string{"subject_type": "Movie", "subject_id": "movie-1"}, "user-a")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

func TestReplyAndListReplies(t *testing.T) {
	svc, _ := newServices()
	ctx := context.Background()
	root, err := svc.Comments.CreateComment(ctx, "user-a", social.SubjectMovie, "movie-1", "root")
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	req := setupReq(http.MethodPost, "/v1/comments/1/replies", `{"content":"Agree"}`,
		map[string]string{"comment_id": "1"}, "user-b")
	rr := httptest.NewRecorder()
	ReplyToComment(svc.Comments).ServeHTTP(rr, req)
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
	var reply commentCreatedResponse
	if err := json.NewDecoder(rr.Body).Decode(&reply); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if reply.Depth != 1 || reply.ParentID == nil || *reply.ParentID != root.ID {
		t.Fatalf("unexpected reply %+v", reply)
	}

	req = setupReq(http.MethodGet, "/v1/comments/1/replies", "", map[string]string{"comment_id": "1"}, "")
	rr = httptest.NewRecorder()
	ListReplies(svc.Comments).ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var page pageResponse[social.CommentView]
	if err := json.NewDecoder(rr.Body).Decode(&page); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if page.Total != 1 || len(page.Items) != 1 || page.Items[0].Content != "Agree" {
		t.Fatalf("unexpected page %+v", page)
	}
	if page.PageSize != social.DefaultPageSize || page.HasNext {
		t.Fatalf("unexpected paging %+v", page)
	}
}

func TestGetComment_BadID(t *testing.T) {
	svc, _ := newServices()

	req := setupReq(http.MethodGet, "/v1/comments/abc", "", map[string]string{"comment_id": "abc"}, "")
	rr := httptest.NewRecorder()
	GetComment(svc.Comments).ServeHTTP(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

func TestGetComment_NotFound(t *testing.T) {
	svc, _ := newServices()

	req := setupReq(http.MethodGet, "/v1/comments/9", "", map[string]string{"comment_id": "9"}, "")
	rr := httptest.NewRecorder()
	GetComment(svc.Comments).ServeHTTP(rr, req)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
	if e := decodeError(t, rr); e.Code != "COMMENT_NOT_FOUND" {
		t.Fatalf("expected COMMENT_NOT_FOUND, got %q", e.Code)
	}
}

func TestUpdateComment_NotAuthor(t *testing.T) {
	svc, _ := newServices()
	if _, err := svc.Comments.CreateComment(context.Background(), "user-a", social.SubjectMovie, "movie-1", "root"); err != nil {
		t.Fatalf("seed: %v", err)
	}

	req := setupReq(http.MethodPut, "/v1/comments/1", `{"content":"mine now"}`,
		map[string]string{"comment_id": "1"}, "user-b")
	rr := httptest.NewRecorder()
	UpdateComment(svc.Comments).ServeHTTP(rr, req)
	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rr.Code)
	}
}

func TestUpdateComment(t *testing.T) {
	svc, _ := newServices()
	if _, err := svc.Comments.CreateComment(context.Background(), "user-a", social.SubjectMovie, "movie-1", "root"); err != nil {
		t.Fatalf("seed: %v", err)
	}

	req := setupReq(http.MethodPut, "/v1/comments/1", `{"content":"edited"}`,
		map[string]string{"comment_id": "1"}, "user-a")
	rr := httptest.NewRecorder()
	UpdateComment(svc.Comments).ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	var view social.CommentView
	if err := json.NewDecoder(rr.Body).Decode(&view); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if view.Content != "edited" || !view.IsEdited {
		t.Fatalf("unexpected view %+v", view)
	}
}

func TestDeleteComment(t *testing.T) {
	svc, _ := newServices()
	if _, err := svc.Comments.CreateComment(context.Background(), "user-a", social.SubjectMovie, "movie-1", "root"); err != nil {
		t.Fatalf("seed: %v", err)
	}

	req := setupReq(http.MethodDelete, "/v1/comments/1", "", map[string]string{"comment_id": "1"}, "user-a")
	rr := httptest.NewRecorder()
	DeleteComment(svc.Comments).ServeHTTP(rr, req)
	if rr.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rr.Code)
	}

	rr = httptest.NewRecorder()
	DeleteComment(svc.Comments).ServeHTTP(rr, setupReq(http.MethodDelete, "/v1/comments/1", "", map[string]string{"comment_id": "1"}, "user-a"))
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404 on second delete, got %d", rr.Code)
	}
}

func TestSetReaction_ConflictOnSameKind(t *testing.T) {
	svc, _ := newServices()
	if _, err := svc.Comments.CreateComment(context.Background(), "user-a", social.SubjectMovie, "movie-1", "root"); err != nil {
		t.Fatalf("seed: %v", err)
	}
	handler := SetReaction(svc.Reactions)
	params := map[string]string{"comment_id": "1"}

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, setupReq(http.MethodPut, "/v1/comments/1/reaction", `{"kind":"upvote"}`, params, "user-c"))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}

	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, setupReq(http.MethodPut, "/v1/comments/1/reaction", `{"kind":"UPVOTE"}`, params, "user-c"))
	if rr.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rr.Code)
	}
	if e := decodeError(t, rr); e.Code != "ALREADY_REACTED" {
		t.Fatalf("expected ALREADY_REACTED, got %q", e.Code)
	}

	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, setupReq(http.MethodPut, "/v1/comments/1/reaction", `{"kind":"downvote"}`, params, "user-c"))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 on toggle, got %d", rr.Code)
	}

	rr = httptest.NewRecorder()
	GetReactions(svc.Reactions).ServeHTTP(rr, setupReq(http.MethodGet, "/v1/comments/1/reactions", "", params, ""))
	var agg social.ReactionAggregate
	if err := json.NewDecoder(rr.Body).Decode(&agg); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if agg != (social.ReactionAggregate{Upvotes: 0, Downvotes: 1, Total: 1}) {
		t.Fatalf("unexpected aggregate %+v", agg)
	}
}

func TestGetMyReaction_None(t *testing.T) {
	svc, _ := newServices()

	rr := httptest.NewRecorder()
	GetMyReaction(svc.Reactions).ServeHTTP(rr, setupReq(http.MethodGet, "/v1/comments/1/reaction", "", map[string]string{"comment_id": "1"}, "user-a"))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var resp userReactionResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Reaction != nil {
		t.Fatalf("expected no reaction, got %+v", resp.Reaction)
	}
}

func TestPutRating(t *testing.T) {
	svc, _ := newServices()
	handler := PutRating(svc.Ratings)
	params := map[string]string{"movie_id": "movie-1"}

	for _, body := range []string{`{"score":7}`, `{"score":9}`} {
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, setupReq(http.MethodPut, "/v1/movies/movie-1/rating", body, params, "user-a"))
		if rr.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
		}
	}

	rr := httptest.NewRecorder()
	GetRatings(svc.Ratings).ServeHTTP(rr, setupReq(http.MethodGet, "/v1/movies/movie-1/ratings", "", params, ""))
	var agg social.RatingAggregate
	if err := json.NewDecoder(rr.Body).Decode(&agg); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if agg.Total != 1 || agg.Average != 9 || agg.Distribution[9] != 1 || len(agg.Distribution) != 10 {
		t.Fatalf("unexpected aggregate %+v", agg)
	}
}

func TestPutRating_OutOfRange(t *testing.T) {
	svc, _ := newServices()

	rr := httptest.NewRecorder()
	PutRating(svc.Ratings).ServeHTTP(rr, setupReq(http.MethodPut, "/v1/movies/movie-1/rating", `{"score":11}`,
		map[string]string{"movie_id": "movie-1"}, "user-a"))
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

func TestDeleteRating_NotFound(t *testing.T) {
	svc, _ := newServices()

	rr := httptest.NewRecorder()
	DeleteRating(svc.Ratings).ServeHTTP(rr, setupReq(http.MethodDelete, "/v1/movies/movie-1/rating", "",
		map[string]string{"movie_id": "movie-1"}, "user-a"))
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
}

func TestFollowBlockFlow(t *testing.T) {
	svc, _ := newServices()
	params := map[string]string{"user_id": "user-b"}

	rr := httptest.NewRecorder()
	Follow(svc.Graph).ServeHTTP(rr, setupReq(http.MethodPost, "/v1/users/user-b/follow", "", params, "user-a"))
	if rr.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d: %s", rr.Code, rr.Body.String())
	}

	rr = httptest.NewRecorder()
	Follow(svc.Graph).ServeHTTP(rr, setupReq(http.MethodPost, "/v1/users/user-b/follow", "", params, "user-a"))
	if rr.Code != http.StatusConflict {
		t.Fatalf("expected 409 on second follow, got %d", rr.Code)
	}

	rr = httptest.NewRecorder()
	Block(svc.Graph).ServeHTTP(rr, setupReq(http.MethodPost, "/v1/users/user-b/block", "", params, "user-a"))
	if rr.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rr.Code)
	}

	rr = httptest.NewRecorder()
	Follow(svc.Graph).ServeHTTP(rr, setupReq(http.MethodPost, "/v1/users/user-b/follow", "", params, "user-a"))
	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403 after block, got %d", rr.Code)
	}

	rr = httptest.NewRecorder()
	Relationship(svc.Graph).ServeHTTP(rr, setupReq(http.MethodGet, "/v1/users/user-b/relationship", "", params, "user-a"))
	var rel relationshipResponse
	if err := json.NewDecoder(rr.Body).Decode(&rel); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if rel.Following || !rel.Blocked {
		t.Fatalf("unexpected relationship %+v", rel)
	}
}

func TestUnfollow_NotFound(t *testing.T) {
	svc, _ := newServices()

	rr := httptest.NewRecorder()
	Unfollow(svc.Graph).ServeHTTP(rr, setupReq(http.MethodDelete, "/v1/users/user-b/follow", "",
		map[string]string{"user_id": "user-b"}, "user-a"))
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
}

func TestListFollowers_Paging(t *testing.T) {
	svc, _ := newServices()
	ctx := context.Background()
	for _, u := range []string{"user-a", "user-c"} {
		if err := svc.Graph.Follow(ctx, u, "user-b"); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	rr := httptest.NewRecorder()
	ListFollowers(svc.Graph).ServeHTTP(rr, setupReq(http.MethodGet, "/v1/users/user-b/followers?page=1&page_size=1", "",
		map[string]string{"user_id": "user-b"}, ""))
	var page pageResponse[store.FollowEdge]
	if err := json.NewDecoder(rr.Body).Decode(&page); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if page.Total != 2 || len(page.Items) != 1 || !page.HasNext {
		t.Fatalf("unexpected page %+v", page)
	}
}

func makeToken(subject, role string) string {
	claims := auth.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		Role: role,
	}
	signed, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(testSecret)
	return signed
}

func TestMount_AuthBoundaries(t *testing.T) {
	svc, _ := newServices()
	r := chi.NewRouter()
	Mount(r, svc, auth.JWTVerifier{Secret: testSecret})

	cases := []struct {
		name   string
		method string
		path   string
		token  string
		body   string
		want   int
	}{
		{"public read", http.MethodGet, "/v1/movies/movie-1/ratings", "", "", http.StatusOK},
		{"write without token", http.MethodPut, "/v1/movies/movie-1/rating", "", `{"score":5}`, http.StatusUnauthorized},
		{"write with token", http.MethodPut, "/v1/movies/movie-1/rating", makeToken("user-a", "user"), `{"score":5}`, http.StatusOK},
		{"admin route as user", http.MethodGet, "/v1/admin/users/user-a/blocked", makeToken("user-a", "user"), "", http.StatusForbidden},
		{"admin route as admin", http.MethodGet, "/v1/admin/users/user-a/blocked", makeToken("user-c", "admin"), "", http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var body *bytes.Buffer
			if tc.body != "" {
				body = bytes.NewBufferString(tc.body)
			} else {
				body = &bytes.Buffer{}
			}
			req := httptest.NewRequest(tc.method, tc.path, body)
			if tc.token != "" {
				req.Header.Set("Authorization", "Bearer "+tc.token)
			}
			rr := httptest.NewRecorder()
			r.ServeHTTP(rr, req)
			if rr.Code != tc.want {
				t.Fatalf("expected %d, got %d: %s", tc.want, rr.Code, rr.Body.String())
			}
		})
	}
}
