package catalog

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"

	"farmstore.GO/core/cache"
)

type fakeSource struct {
	units   []Record
	weights []Record
	calls   int32
	err     error
}

func (f *fakeSource) page(recs []Record, p Page) *Listing {
	p = p.Normalize()
	from := p.Offset()
	if from > len(recs) {
		from = len(recs)
	}
	to := from + p.Size
	if to > len(recs) {
		to = len(recs)
	}
	return &Listing{Records: recs[from:to], Total: int64(len(recs)), Page: p.Number, PageSize: p.Size}
}

func (f *fakeSource) ListUnitProducts(ctx context.Context, p Page) (*Listing, error) {
	atomic.AddInt32(&f.calls, 1)
	if f.err != nil {
		return nil, f.err
	}
	return f.page(f.units, p), nil
}

func (f *fakeSource) ListWeightProducts(ctx context.Context, p Page) (*Listing, error) {
	atomic.AddInt32(&f.calls, 1)
	if f.err != nil {
		return nil, f.err
	}
	return f.page(f.weights, p), nil
}

func (f *fakeSource) FindRecord(ctx context.Context, id string) (Record, error) {
	atomic.AddInt32(&f.calls, 1)
	for _, r := range append(append([]Record{}, f.units...), f.weights...) {
		if r.RecordID() == id {
			return r, nil
		}
	}
	return nil, ErrNotFound
}

func TestService_ListCachesPages(t *testing.T) {
	src := &fakeSource{units: []Record{unitFixture()}}
	svc := NewService(src, cache.NewCache(), 0, nil)

	for i := 0; i < 3; i++ {
		page, err := svc.List(context.Background(), KindUnit, Page{})
		if err != nil {
			t.Fatalf("List: %v", err)
		}
		if len(page.Products) != 1 || page.Products[0].ID != "u1" {
			t.Fatalf("Products = %+v", page.Products)
		}
	}
	if src.calls != 1 {
		t.Errorf("source calls = %d, want 1", src.calls)
	}

	svc.Invalidate(KindUnit)
	if _, err := svc.List(context.Background(), KindUnit, Page{}); err != nil {
		t.Fatal(err)
	}
	if src.calls != 2 {
		t.Errorf("source calls after invalidate = %d, want 2", src.calls)
	}
}

func TestService_FetchAllOrder(t *testing.T) {
	src := &fakeSource{units: []Record{unitFixture()}, weights: []Record{weightFixture()}}
	svc := NewService(src, nil, 0, nil)
	all, err := svc.FetchAll(context.Background(), Page{})
	if err != nil {
		t.Fatalf("FetchAll: %v", err)
	}
	if len(all) != 2 || all[0].ID != "u1" || all[1].ID != "w1" {
		t.Errorf("FetchAll = %+v", all)
	}
}

func TestService_FetchAllError(t *testing.T) {
	src := &fakeSource{err: errors.New("boom")}
	svc := NewService(src, nil, 0, nil)
	if _, err := svc.FetchAll(context.Background(), Page{}); err == nil || !strings.Contains(err.Error(), "boom") {
		t.Errorf("err = %v, want boom", err)
	}
}

func TestService_Product(t *testing.T) {
	src := &fakeSource{weights: []Record{weightFixture()}}
	svc := NewService(src, cache.NewCache(), 60, nil)

	p, err := svc.Product(context.Background(), "w1")
	if err != nil {
		t.Fatalf("Product: %v", err)
	}
	if p.DisplayPrice != 500 {
		t.Errorf("DisplayPrice = %v, want 500", p.DisplayPrice)
	}
	svc.Product(context.Background(), "w1")
	if src.calls != 1 {
		t.Errorf("source calls = %d, want 1", src.calls)
	}

	if _, err := svc.Product(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestService_CachedResultsAreCopies(t *testing.T) {
	w := weightFixture()
	w.SizeCategories[1].Status = "active"
	src := &fakeSource{weights: []Record{w}}
	svc := NewService(src, cache.NewCache(), 0, nil)
	ctx := context.Background()

	p, err := svc.Product(ctx, "w1")
	if err != nil {
		t.Fatalf("Product: %v", err)
	}
	p.Options[0].Price = 1
	p.PriceRange.Max = 1
	*p.DefaultOptionID = "changed"

	again, _ := svc.Product(ctx, "w1")
	if again.Options[0].Price != 500 || again.PriceRange.Max != 650 || *again.DefaultOptionID != "small" {
		t.Errorf("cached product was mutated: %+v", again)
	}

	page, err := svc.List(ctx, KindWeight, Page{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	page.Products[0].Options[0].Price = 1
	page.Products = nil

	page, _ = svc.List(ctx, KindWeight, Page{})
	if len(page.Products) != 1 || page.Products[0].Options[0].Price != 500 {
		t.Errorf("cached page was mutated: %+v", page.Products)
	}
	if src.calls != 2 {
		t.Errorf("source calls = %d, want 2", src.calls)
	}
}

func TestPage_Normalize(t *testing.T) {
	p := Page{Number: 0, Size: 1000}.Normalize()
	if p.Number != 1 || p.Size != MaxPageSize {
		t.Errorf("Normalize = %+v", p)
	}
	if off := (Page{Number: 3, Size: 10}).Offset(); off != 20 {
		t.Errorf("Offset = %d, want 20", off)
	}
}
