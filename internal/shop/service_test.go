package shop

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/pixalium/backend/internal/store"
)

// fakeStore is an in-memory RecordStore with merge/create patch semantics.
type fakeStore struct {
	recs       map[string][]store.Record
	nextID     int
	failCreate bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{recs: map[string][]store.Record{}}
}

func (f *fakeStore) add(collection, id string, v any) {
	data, _ := json.Marshal(v)
	f.recs[collection] = append(f.recs[collection], store.Record{ID: id, Data: data})
}

func (f *fakeStore) Create(_ context.Context, collection string, v any) (string, error) {
	if f.failCreate {
		return "", errors.New("store unavailable")
	}
	f.nextID++
	id := fmt.Sprintf("id-%d", f.nextID)
	f.add(collection, id, v)
	return id, nil
}

func (f *fakeStore) GetAll(_ context.Context, collection string) ([]store.Record, error) {
	return f.recs[collection], nil
}

func (f *fakeStore) Patch(_ context.Context, path string, fields map[string]any) error {
	collection, id, _ := strings.Cut(path, "/")
	for i, rec := range f.recs[collection] {
		if rec.ID != id {
			continue
		}
		m := map[string]any{}
		_ = json.Unmarshal(rec.Data, &m)
		for k, v := range fields {
			m[k] = v
		}
		data, _ := json.Marshal(m)
		f.recs[collection][i].Data = data
		return nil
	}
	f.add(collection, id, fields)
	return nil
}

func testProduct(fs *fakeStore, id string, p Product) {
	fs.add(ProductsCollection, id, p)
}

func TestPlaceOrder(t *testing.T) {
	ctx := context.Background()

	newSvc := func() (*Service, *fakeStore) {
		fs := newFakeStore()
		testProduct(fs, "p1", Product{Name: "Site vitrine", Price: "10 000 FCFA"})
		testProduct(fs, "p2", Product{Name: "Template e-commerce", Price: "25 000 FCFA", IsSourceCode: true})
		testProduct(fs, "p3", Product{Name: "Architecture 3D", Price: "Sur commande"})
		return &Service{Store: fs, WhatsAppNumber: "22872122191", DownloadPath: "/download"}, fs
	}

	t.Run("creates pending order and whatsapp hand-off", func(t *testing.T) {
		svc, fs := newSvc()
		h, err := svc.PlaceOrder(ctx, PlaceOrderRequest{ProductID: "p1", Quantity: 2})
		if err != nil {
			t.Fatal(err)
		}
		if h.FinalPrice != "10 000 FCFA" {
			t.Errorf("final price = %q", h.FinalPrice)
		}
		if !strings.HasPrefix(h.WhatsAppURL, "https://wa.me/22872122191?text=") {
			t.Errorf("whatsapp url = %q", h.WhatsAppURL)
		}
		if h.DownloadPath != "" {
			t.Errorf("unexpected download hand-off: %q", h.DownloadPath)
		}
		orders := fs.recs[OrdersCollection]
		if len(orders) != 1 {
			t.Fatalf("got %d orders", len(orders))
		}
		o, _ := store.Decode[Order](orders[0])
		if o.Status != StatusPending || o.Quantity != 2 || o.ProductName != "Site vitrine" {
			t.Errorf("order = %+v", o)
		}
	})

	t.Run("applies discount to final price", func(t *testing.T) {
		svc, fs := newSvc()
		h, err := svc.PlaceOrder(ctx, PlaceOrderRequest{ProductID: "p1", Quantity: 1, DiscountPercent: 10, DiscountCode: "SAVE10"})
		if err != nil {
			t.Fatal(err)
		}
		if h.FinalPrice != "9 000 FCFA" {
			t.Errorf("final price = %q, want 9 000 FCFA", h.FinalPrice)
		}
		o, _ := store.Decode[Order](fs.recs[OrdersCollection][0])
		if o.Price != "9 000 FCFA" {
			t.Errorf("persisted price = %q", o.Price)
		}
	})

	t.Run("non-numeric price unaffected by discount", func(t *testing.T) {
		svc, _ := newSvc()
		h, err := svc.PlaceOrder(ctx, PlaceOrderRequest{ProductID: "p3", Quantity: 1, DiscountPercent: 15})
		if err != nil {
			t.Fatal(err)
		}
		if h.FinalPrice != "Sur commande" {
			t.Errorf("final price = %q, want pass-through", h.FinalPrice)
		}
	})

	t.Run("source code product hands off to download page", func(t *testing.T) {
		svc, _ := newSvc()
		h, err := svc.PlaceOrder(ctx, PlaceOrderRequest{ProductID: "p2", Quantity: 1})
		if err != nil {
			t.Fatal(err)
		}
		if h.DownloadPath != "/download" || h.WhatsAppURL != "" {
			t.Errorf("hand-off = %+v", h)
		}
	})

	t.Run("hand-off proceeds when order write fails", func(t *testing.T) {
		svc, fs := newSvc()
		fs.failCreate = true
		h, err := svc.PlaceOrder(ctx, PlaceOrderRequest{ProductID: "p1", Quantity: 1})
		if err != nil {
			t.Fatal(err)
		}
		if h.WhatsAppURL == "" {
			t.Error("expected whatsapp hand-off despite write failure")
		}
	})

	t.Run("quantity defaults to one", func(t *testing.T) {
		svc, fs := newSvc()
		if _, err := svc.PlaceOrder(ctx, PlaceOrderRequest{ProductID: "p1"}); err != nil {
			t.Fatal(err)
		}
		o, _ := store.Decode[Order](fs.recs[OrdersCollection][0])
		if o.Quantity != 1 {
			t.Errorf("quantity = %d", o.Quantity)
		}
	})

	t.Run("unknown product", func(t *testing.T) {
		svc, _ := newSvc()
		if _, err := svc.PlaceOrder(ctx, PlaceOrderRequest{ProductID: "nope"}); !errors.Is(err, ErrProductNotFound) {
			t.Fatalf("err = %v", err)
		}
	})
}

func TestUpdateOrderStatus(t *testing.T) {
	fs := newFakeStore()
	fs.add(OrdersCollection, "o1", Order{ProductName: "x", Status: StatusPending, CreatedAt: time.Now()})
	svc := &Service{Store: fs}

	if err := svc.UpdateOrderStatus(context.Background(), "o1", StatusCancelled); err != nil {
		t.Fatal(err)
	}
	o, _ := store.Decode[Order](fs.recs[OrdersCollection][0])
	if o.Status != StatusCancelled {
		t.Errorf("status = %s", o.Status)
	}

	if err := svc.UpdateOrderStatus(context.Background(), "o1", Status("shipped")); err == nil {
		t.Error("expected error for unknown status")
	}
}
