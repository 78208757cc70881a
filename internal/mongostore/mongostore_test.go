package mongostore

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/lukman83/campusfair/internal/catalog"
	"github.com/lukman83/campusfair/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func TestNewestFirstSort(t *testing.T) {
	sort, ok := newestFirst().Sort.(bson.D)
	if !ok || len(sort) != 1 || sort[0].Key != "createdAt" || sort[0].Value != -1 {
		t.Errorf("sort = %#v", newestFirst().Sort)
	}
}

func TestSellersFilter(t *testing.T) {
	f := sellersFilter([]string{"a", "b"})
	in := f["_id"].(bson.M)["$in"].([]string)
	if len(in) != 2 || in[0] != "a" {
		t.Errorf("filter = %#v", f)
	}
}

// The bson layout must match the field names the web client writes.
func TestProductDocumentLayout(t *testing.T) {
	p := models.Product{
		ID: "p1", Name: "Mug", Price: 800, SellerID: "s1", ImageURL: "products/s1/mug.jpg",
		CreatedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
	raw, err := bson.Marshal(p)
	if err != nil {
		t.Fatal(err)
	}
	var doc bson.M
	if err := bson.Unmarshal(raw, &doc); err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{"_id", "name", "price", "sellerId", "imageUrl", "createdAt"} {
		if _, ok := doc[key]; !ok {
			t.Errorf("missing %q in %v", key, doc)
		}
	}

	var back models.Product
	if err := bson.Unmarshal(raw, &back); err != nil {
		t.Fatal(err)
	}
	if !back.CreatedAt.Equal(p.CreatedAt) || back.SellerID != "s1" {
		t.Errorf("decoded = %+v", back)
	}
}

func mockStore(mt *mtest.T) *Store {
	return &Store{client: mt.Client, db: mt.DB}
}

func TestMockedReads(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()
	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	mt.Run("missing slug", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "campusfair.sellers", mtest.FirstBatch))
		_, err := mockStore(mt).FindSellerBySlug(ctx, "nobody")
		if !errors.Is(err, catalog.ErrNotFound) {
			t.Errorf("err = %v, want ErrNotFound", err)
		}
	})

	mt.Run("slug found", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "campusfair.sellers", mtest.FirstBatch, bson.D{
			{Key: "_id", Value: "s1"},
			{Key: "storeName", Value: "Gadget Hub"},
			{Key: "storeSlug", Value: "gadget-hub"},
			{Key: "phone", Value: "08031234567"},
		}))
		sel, err := mockStore(mt).FindSellerBySlug(ctx, "gadget-hub")
		if err != nil {
			t.Fatal(err)
		}
		if sel.ID != "s1" || sel.StoreName != "Gadget Hub" || sel.Phone != "08031234567" {
			t.Errorf("seller = %+v", sel)
		}
	})

	mt.Run("products keep server order", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "campusfair.products", mtest.FirstBatch,
			bson.D{{Key: "_id", Value: "new"}, {Key: "name", Value: "Charger"}, {Key: "price", Value: int64(2500)}, {Key: "sellerId", Value: "s1"}, {Key: "createdAt", Value: created}},
			bson.D{{Key: "_id", Value: "old"}, {Key: "name", Value: "Case"}, {Key: "price", Value: int64(1500)}, {Key: "sellerId", Value: "s2"}, {Key: "createdAt", Value: created.Add(-time.Hour)}},
		))
		products, err := mockStore(mt).FetchAllProducts(ctx)
		if err != nil {
			t.Fatal(err)
		}
		if len(products) != 2 || products[0].ID != "new" || products[1].SellerID != "s2" {
			t.Fatalf("products = %+v", products)
		}
		if !products[0].CreatedAt.Equal(created) || products[0].Price != 2500 {
			t.Errorf("first = %+v", products[0])
		}
	})

	mt.Run("empty catalog is not nil", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "campusfair.products", mtest.FirstBatch))
		products, err := mockStore(mt).FetchProductsBySeller(ctx, "s1")
		if err != nil || products == nil || len(products) != 0 {
			t.Errorf("products = %#v, err = %v", products, err)
		}
	})

	mt.Run("server error is a fetch error", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code: 13, Name: "Unauthorized", Message: "not authorized",
		}))
		_, err := mockStore(mt).FetchAllProducts(ctx)
		var fe *catalog.FetchError
		if !errors.As(err, &fe) || fe.Source != "mongo" || fe.Op != "find products" {
			t.Errorf("err = %v", err)
		}
	})
}

func TestMockedWrites(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()

	mt.Run("seller code counter", func(mt *mtest.T) {
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(bson.E{Key: "value", Value: bson.D{
				{Key: "_id", Value: sellerCodeDoc},
				{Key: "currentNumber", Value: 7},
			}}),
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}, bson.E{Key: "nModified", Value: 1}),
		)
		code, err := mockStore(mt).NextSellerCode(ctx)
		if err != nil {
			t.Fatal(err)
		}
		if code != "CF-007" {
			t.Errorf("code = %q, want CF-007", code)
		}
	})

	mt.Run("duplicate store name", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index: 0, Code: 11000, Message: "E11000 duplicate key error collection: campusfair.sellers index: storeNameLower_1",
		}))
		err := mockStore(mt).CreateSeller(ctx, models.Seller{ID: "s9", StoreName: "Gadget Hub"})
		if err == nil || !strings.Contains(err.Error(), "already taken") || !mongo.IsDuplicateKeyError(err) {
			t.Errorf("err = %v", err)
		}
	})

	mt.Run("update of another seller's product", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}, bson.E{Key: "nModified", Value: 0}))
		err := mockStore(mt).UpdateProduct(ctx, models.Product{ID: "p1", SellerID: "s2", Name: "Mine"})
		if !errors.Is(err, catalog.ErrNotFound) {
			t.Errorf("err = %v, want ErrNotFound", err)
		}
	})

	mt.Run("delete lowers the counter", func(mt *mtest.T) {
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}),
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}, bson.E{Key: "nModified", Value: 1}),
		)
		if err := mockStore(mt).DeleteProduct(ctx, "s1", "p1"); err != nil {
			t.Fatal(err)
		}
	})

	mt.Run("delete of a missing product", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}))
		if err := mockStore(mt).DeleteProduct(ctx, "s1", "ghost"); !errors.Is(err, catalog.ErrNotFound) {
			t.Errorf("err = %v, want ErrNotFound", err)
		}
	})

	mt.Run("rename onto a taken name", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{Index: 0, Code: 11000, Message: "duplicate key"}))
		err := mockStore(mt).UpdateSeller(ctx, models.Seller{ID: "s1", StoreName: "Book Nook", StoreNameLower: "book nook"})
		if err == nil || !mongo.IsDuplicateKeyError(err) {
			t.Errorf("err = %v", err)
		}
	})

	mt.Run("store name taken", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "campusfair.sellers", mtest.FirstBatch, bson.D{{Key: "n", Value: int32(1)}}))
		taken, err := mockStore(mt).StoreNameTaken(ctx, "gadget hub")
		if err != nil || !taken {
			t.Errorf("taken = %v, err = %v", taken, err)
		}
	})
}
