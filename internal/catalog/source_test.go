package catalog

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/lukman83/campusfair/internal/models"
)

func TestBatches(t *testing.T) {
	ids := []string{"a", "b", "c", "d", "e"}
	got := Batches(ids, 2)
	if len(got) != 3 {
		t.Fatalf("want 3 batches, got %d", len(got))
	}
	if strings.Join(got[2], ",") != "e" {
		t.Errorf("last batch = %v", got[2])
	}
	if Batches(nil, 2) != nil {
		t.Error("empty input should give no batches")
	}
	// Appending to a batch must not clobber the next one.
	_ = append(got[0], "x")
	if got[1][0] != "c" {
		t.Errorf("batch aliasing: %v", got[1])
	}
}

func TestFetchfWrapsOnce(t *testing.T) {
	base := errors.New("connection refused")
	err := Fetchf("mongo", "find products", base)
	var fe *FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("want *FetchError, got %T", err)
	}
	if !errors.Is(err, base) {
		t.Error("FetchError should unwrap to the cause")
	}
	again := Fetchf("cache", "get", err)
	if again != err {
		t.Error("an existing FetchError should pass through unchanged")
	}
	if Fetchf("x", "y", nil) != nil {
		t.Error("nil error should stay nil")
	}
}

func TestSellerCode(t *testing.T) {
	if got := SellerCode(7); got != "CF-007" {
		t.Errorf("SellerCode(7) = %q", got)
	}
	if got := SellerCode(1234); got != "CF-1234" {
		t.Errorf("SellerCode(1234) = %q", got)
	}
}

func TestReportProgressWithoutCallback(t *testing.T) {
	ReportProgress(context.Background(), "ignored")

	var got string
	ctx := WithProgress(context.Background(), func(msg string) { got = msg })
	ReportProgress(ctx, "loading")
	if got != "loading" {
		t.Errorf("got %q", got)
	}
}

type stubSource struct{}

func (stubSource) Name() string { return "stub" }
func (stubSource) FetchAllProducts(context.Context) ([]models.Product, error) { return nil, nil }
func (stubSource) FetchSellersByIDs(context.Context, []string) (map[string]models.Seller, error) {
	return nil, nil
}
func (stubSource) FindSellerBySlug(context.Context, string) (*models.Seller, error) { return nil, nil }
func (stubSource) FetchProductsBySeller(context.Context, string) ([]models.Product, error) {
	return nil, nil
}

func TestRegistry(t *testing.T) {
	opened := 0
	Register("stub-b", func(context.Context) (Source, func(), error) {
		opened++
		return stubSource{}, func() {}, nil
	})
	Register("stub-a", func(context.Context) (Source, func(), error) { return stubSource{}, func() {}, nil })

	names := List()
	ia, ib := -1, -1
	for i, n := range names {
		switch n {
		case "stub-a":
			ia = i
		case "stub-b":
			ib = i
		}
	}
	if ia < 0 || ib < 0 || ia > ib {
		t.Fatalf("List() = %v, want stub-a before stub-b", names)
	}

	open, err := Get("stub-b")
	if err != nil {
		t.Fatal(err)
	}
	if _, closeFn, err := open(context.Background()); err != nil || closeFn == nil {
		t.Fatalf("open: %v", err)
	}
	if opened != 1 {
		t.Errorf("opened = %d, want 1", opened)
	}

	if _, err := Get("sqlite"); err == nil || !strings.Contains(err.Error(), `"sqlite" not registered`) {
		t.Errorf("Get(sqlite) err = %v", err)
	}
}
