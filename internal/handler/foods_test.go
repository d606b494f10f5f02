package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/novo-pos/api/internal/handler"
	"github.com/novo-pos/api/internal/store"
)

type mockFoodStore struct {
	createFoodFn func(ctx context.Context, arg store.CreateFoodParams) (store.Food, error)
	listFoodsFn  func(ctx context.Context) ([]store.Food, error)
	updateFoodFn func(ctx context.Context, arg store.UpdateFoodParams) (store.Food, error)
	deleteFoodFn func(ctx context.Context, id int64) (int64, error)
}

func (m *mockFoodStore) CreateFood(ctx context.Context, arg store.CreateFoodParams) (store.Food, error) {
	return m.createFoodFn(ctx, arg)
}
func (m *mockFoodStore) ListFoods(ctx context.Context) ([]store.Food, error) {
	return m.listFoodsFn(ctx)
}
func (m *mockFoodStore) UpdateFood(ctx context.Context, arg store.UpdateFoodParams) (store.Food, error) {
	return m.updateFoodFn(ctx, arg)
}
func (m *mockFoodStore) DeleteFood(ctx context.Context, id int64) (int64, error) {
	return m.deleteFoodFn(ctx, id)
}

func makePrice(t *testing.T, val string) pgtype.Numeric {
	t.Helper()
	var n pgtype.Numeric
	if err := n.Scan(val); err != nil {
		t.Fatalf("scan numeric %q: %v", val, err)
	}
	return n
}

func newFoodRouter(st handler.FoodStore) chi.Router {
	h := handler.NewFoodHandler(st)
	r := chi.NewRouter()
	r.Route("/foods", func(r chi.Router) {
		h.RegisterPublicRoutes(r)
		h.RegisterAdminRoutes(r)
	})
	return r
}

func TestCreateFoodHandler(t *testing.T) {
	var got store.CreateFoodParams
	st := &mockFoodStore{
		createFoodFn: func(ctx context.Context, arg store.CreateFoodParams) (store.Food, error) {
			got = arg
			return store.Food{
				ID:        1,
				Name:      arg.Name,
				Price:     arg.Price,
				SectionID: arg.SectionID,
				CreatedAt: time.Now(),
			}, nil
		},
	}
	r := newFoodRouter(st)

	rr := doJSON(t, r, "POST", "/foods", map[string]interface{}{
		"name":      "Shashlik",
		"price":     "950.50",
		"sectionId": 2,
	}, "")

	if rr.Code != http.StatusCreated {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusCreated, rr.Body.String())
	}
	if got.Name != "Shashlik" {
		t.Errorf("name: got %s, want Shashlik", got.Name)
	}
	if !got.SectionID.Valid || got.SectionID.Int64 != 2 {
		t.Errorf("section: got %+v, want 2", got.SectionID)
	}

	resp := decodeResponse(t, rr)
	if resp["price"] != "950.50" {
		t.Errorf("price: got %v, want 950.50", resp["price"])
	}
}

func TestCreateFoodHandler_Validation(t *testing.T) {
	r := newFoodRouter(&mockFoodStore{})

	rr := doJSON(t, r, "POST", "/foods", map[string]interface{}{"price": "100"}, "")
	if rr.Code != http.StatusBadRequest {
		t.Errorf("missing name: got %d, want %d", rr.Code, http.StatusBadRequest)
	}

	rr = doJSON(t, r, "POST", "/foods", map[string]interface{}{
		"name":  "Broken",
		"price": "-5",
	}, "")
	if rr.Code != http.StatusBadRequest {
		t.Errorf("negative price: got %d, want %d", rr.Code, http.StatusBadRequest)
	}
}

func TestListFoodsHandler(t *testing.T) {
	st := &mockFoodStore{
		listFoodsFn: func(ctx context.Context) ([]store.Food, error) {
			return []store.Food{
				{ID: 1, Name: "Kebab", Price: makePrice(t, "1500"), CreatedAt: time.Now()},
				{ID: 2, Name: "Tea", Price: makePrice(t, "250"), CreatedAt: time.Now()},
			}, nil
		},
	}
	r := newFoodRouter(st)

	rr := doJSON(t, r, "GET", "/foods", nil, "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusOK)
	}

	var list []map[string]interface{}
	if err := json.Unmarshal(rr.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("len: got %d, want 2", len(list))
	}
	if list[1]["price"] != "250.00" {
		t.Errorf("price: got %v, want 250.00", list[1]["price"])
	}
}
