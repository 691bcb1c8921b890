package services

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/tbourn/go-storefront-gateway/internal/apierror"
	"github.com/tbourn/go-storefront-gateway/internal/dispatch"
	"github.com/tbourn/go-storefront-gateway/internal/domain"
	"github.com/tbourn/go-storefront-gateway/internal/routes"
)

// ----- Fake dispatcher -----

type call struct {
	key    routes.Key
	params map[string]string
	query  url.Values
	body   any
}

type fakeDispatcher struct {
	calls []call
	reply string // JSON decoded into out
	err   error
}

func (f *fakeDispatcher) Invoke(ctx context.Context, key routes.Key, params map[string]string, body, out any) error {
	return f.InvokeQuery(ctx, key, params, nil, body, out)
}

func (f *fakeDispatcher) InvokeQuery(_ context.Context, key routes.Key, params map[string]string, query url.Values, body, out any) error {
	f.calls = append(f.calls, call{key: key, params: params, query: query, body: body})
	if f.err != nil {
		return f.err
	}
	if out != nil && f.reply != "" {
		return json.Unmarshal([]byte(f.reply), out)
	}
	return nil
}

func (f *fakeDispatcher) last(t *testing.T) call {
	t.Helper()
	if len(f.calls) == 0 {
		t.Fatalf("no dispatch recorded")
	}
	return f.calls[len(f.calls)-1]
}

func wantInvalidArgument(t *testing.T, err error) {
	t.Helper()
	var ae *apierror.APIError
	if !errors.As(err, &ae) || ae.Status() != http.StatusBadRequest || ae.Code() != CodeInvalidArgument {
		t.Fatalf("want 400 invalid_argument, got %v", err)
	}
}

// ----- Tests -----

func TestBlankIDsFailLocally(t *testing.T) {
	fd := &fakeDispatcher{}
	s := New(fd)
	ctx := context.Background()

	checks := []func() error{
		func() error { return s.Auth.ChangePassword(ctx, " ", domain.ChangePasswordRequest{}) },
		func() error { _, err := s.Auth.UpdateUser(ctx, "", domain.UserPatch{}); return err },
		func() error { _, err := s.Brand.Update(ctx, "", domain.BrandInput{}); return err },
		func() error { return s.Brand.Delete(ctx, "") },
		func() error { _, err := s.Inventory.ByProduct(ctx, ""); return err },
		func() error { _, err := s.Inventory.Update(ctx, "", domain.InventoryPatch{}); return err },
		func() error { _, err := s.Returns.Get(ctx, ""); return err },
		func() error { _, err := s.Returns.ListForUser(ctx, ""); return err },
		func() error { _, err := s.Returns.Update(ctx, "", domain.ReturnPatch{}); return err },
		func() error { _, err := s.Reviews.ByProduct(ctx, ""); return err },
		func() error { return s.Reviews.Delete(ctx, "") },
		func() error { _, err := s.OrderItems.List(ctx, ""); return err },
		func() error { _, err := s.OrderItems.Add(ctx, "", domain.OrderItemInput{}); return err },
		func() error { return s.OrderItems.Remove(ctx, "o1", "") },
		func() error { return s.RecentlyViewed.Record(ctx, "") },
	}
	for i, fn := range checks {
		err := fn()
		if err == nil {
			t.Fatalf("check %d: expected error", i)
		}
		wantInvalidArgument(t, err)
	}
	if len(fd.calls) != 0 {
		t.Fatalf("validation failures must not dispatch, got %d calls", len(fd.calls))
	}
}

func TestWrappersResolveKeysAndParams(t *testing.T) {
	fd := &fakeDispatcher{reply: `{"id":"x"}`}
	s := New(fd)
	ctx := context.Background()

	if _, err := s.Brand.Update(ctx, "b1", domain.BrandInput{Name: "n"}); err != nil {
		t.Fatal(err)
	}
	c := fd.last(t)
	if c.key != brandUpdate || c.params["id"] != "b1" {
		t.Fatalf("brand update call %+v", c)
	}
	if in, ok := c.body.(domain.BrandInput); !ok || in.Name != "n" {
		t.Fatalf("body forwarded as %#v", c.body)
	}

	if err := s.OrderItems.Remove(ctx, "o1", "i2"); err != nil {
		t.Fatal(err)
	}
	c = fd.last(t)
	if c.key != orderItemsRemove || c.params["id"] != "o1" || c.params["itemId"] != "i2" {
		t.Fatalf("order item remove call %+v", c)
	}

	if err := s.RecentlyViewed.Record(ctx, "p9"); err != nil {
		t.Fatal(err)
	}
	if v, ok := fd.last(t).body.(domain.ViewInput); !ok || v.ProductID != "p9" {
		t.Fatalf("record body %#v", fd.last(t).body)
	}

	fd.reply = `[]`
	if _, err := s.Returns.List(ctx, "pending"); err != nil {
		t.Fatal(err)
	}
	if q := fd.last(t).query; q.Get("status") != "pending" {
		t.Fatalf("returns list query %v", q)
	}
	if _, err := s.Returns.List(ctx, ""); err != nil {
		t.Fatal(err)
	}
	if q := fd.last(t).query; q != nil {
		t.Fatalf("unfiltered list should send no query, got %v", q)
	}
	if _, err := s.Reviews.List(ctx, 2, 0); err != nil {
		t.Fatal(err)
	}
	if q := fd.last(t).query; q.Get("page") != "2" || q.Has("pageSize") {
		t.Fatalf("reviews list query %v", q)
	}
	if _, err := s.Metadata.Categories(ctx); err != nil {
		t.Fatal(err)
	}
	if k := fd.last(t).key; k != (routes.Key{Domain: routes.DomainMetadata, Operation: "categories"}) {
		t.Fatalf("metadata key %v", k)
	}
}

// Every key a wrapper uses must exist in the default registry.
func TestWrapperKeysAreRegistered(t *testing.T) {
	reg := routes.MustNew(routes.Defaults()...)
	keys := []routes.Key{
		authRegister, authLogin, authLogout, authMe, authValidate, authChangePassword, authUpdateUser,
		brandList, brandCreate, brandUpdate, brandDelete,
		inventoryByProduct, inventoryCreate, inventoryUpdate,
		returnsCreate, returnsList, returnsGet, returnsListForUser, returnsUpdate,
		reviewsCreate, reviewsList, reviewsByProduct, reviewsDelete,
		orderItemsList, orderItemsAdd, orderItemsRemove,
		recentlyViewedList, recentlyViewedRecord,
	}
	for _, op := range []string{"colors", "sizes", "ratings", "brands", "categories", "products"} {
		keys = append(keys, routes.Key{Domain: routes.DomainMetadata, Operation: op})
	}
	for _, k := range keys {
		if _, err := reg.Route(k); err != nil {
			t.Fatalf("%v", err)
		}
	}
}

func TestErrorsPassThroughUnchanged(t *testing.T) {
	want := apierror.New("brand not found", 404, "not_found", nil)
	s := New(&fakeDispatcher{err: want})
	_, err := s.Brand.List(context.Background())
	if err != want {
		t.Fatalf("got %v, want the dispatcher's error", err)
	}
}

func TestEndToEndWithDispatchClient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/api/auth/login":
			var in domain.Credentials
			_ = json.NewDecoder(r.Body).Decode(&in)
			if in.Password != "pw" {
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = io.WriteString(w, `{"message":"bad credentials"}`)
				return
			}
			_, _ = io.WriteString(w, `{"token":"t-1","user":{"id":"u1","username":"ada","createdAt":"2026-01-01T00:00:00Z"}}`)
		case r.Method == http.MethodGet && r.URL.Path == "/api/inventory/product/p1":
			if r.Header.Get("Authorization") != "Bearer t-1" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			_, _ = io.WriteString(w, `[{"id":"i1","productId":"p1","quantity":4,"updatedAt":"2026-01-01T00:00:00Z"}]`)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	client, err := dispatch.New(dispatch.Config{DefaultBaseURL: srv.URL}, dispatch.WithRegistry(routes.MustNew(routes.Defaults()...)))
	if err != nil {
		t.Fatalf("dispatch.New: %v", err)
	}
	s := New(client)
	ctx := context.Background()

	_, err = s.Auth.Login(ctx, domain.Credentials{Username: "ada", Password: "nope"})
	if got := apierror.UserMessage(err); got != apierror.MsgAuthentication {
		t.Fatalf("UserMessage = %q", got)
	}

	res, err := s.Auth.Login(ctx, domain.Credentials{Username: "ada", Password: "pw"})
	if err != nil || res.Token != "t-1" || res.User == nil || res.User.ID != "u1" {
		t.Fatalf("login: %+v %v", res, err)
	}

	items, err := s.Inventory.ByProduct(dispatch.WithBearerToken(ctx, res.Token), "p1")
	if err != nil || len(items) != 1 || items[0].Quantity != 4 {
		t.Fatalf("inventory: %+v %v", items, err)
	}
}
