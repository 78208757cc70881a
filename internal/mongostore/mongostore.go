// Package mongostore keeps the catalog in MongoDB using the same document
// layout as the original Firestore collections: "products", "sellers" and
// a "meta" collection for the seller code counter.
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/lukman83/campusfair/internal/catalog"
	"github.com/lukman83/campusfair/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	productsCollection = "products"
	sellersCollection  = "sellers"
	metaCollection     = "meta"
	sellerCodeDoc      = "sellerCode"
)

type Store struct {
	client *mongo.Client
	db     *mongo.Database
}

var (
	_ catalog.Source = (*Store)(nil)
	_ catalog.Writer = (*Store)(nil)
	_ catalog.Editor = (*Store)(nil)
)

// Connect dials uri and pings the server before returning.
func Connect(ctx context.Context, uri, database string) (*Store, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	return &Store{client: client, db: client.Database(database)}, nil
}

func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func (s *Store) Name() string { return "mongo" }

// EnsureIndexes creates the indexes the feed and the uniqueness checks
// rely on.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.db.Collection(productsCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "sellerId", Value: 1}, {Key: "createdAt", Value: -1}}},
	})
	if err != nil {
		return fmt.Errorf("product indexes: %w", err)
	}
	_, err = s.db.Collection(sellersCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "storeSlug", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "storeNameLower", Value: 1}}, Options: options.Index().SetUnique(true)},
	})
	if err != nil {
		return fmt.Errorf("seller indexes: %w", err)
	}
	return nil
}

func (s *Store) FetchAllProducts(ctx context.Context) ([]models.Product, error) {
	return s.findProducts(ctx, bson.M{})
}

func (s *Store) FetchProductsBySeller(ctx context.Context, sellerID string) ([]models.Product, error) {
	return s.findProducts(ctx, bson.M{"sellerId": sellerID})
}

func (s *Store) FetchSellersByIDs(ctx context.Context, ids []string) (map[string]models.Seller, error) {
	out := make(map[string]models.Seller, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	cursor, err := s.db.Collection(sellersCollection).Find(ctx, sellersFilter(ids))
	if err != nil {
		return nil, catalog.Fetchf(s.Name(), "find sellers", err)
	}
	var sellers []models.Seller
	if err := cursor.All(ctx, &sellers); err != nil {
		return nil, catalog.Fetchf(s.Name(), "decode sellers", err)
	}
	for _, sel := range sellers {
		out[sel.ID] = sel
	}
	return out, nil
}

func (s *Store) FindSellerBySlug(ctx context.Context, slug string) (*models.Seller, error) {
	var sel models.Seller
	err := s.db.Collection(sellersCollection).FindOne(ctx, bson.M{"storeSlug": slug}).Decode(&sel)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, catalog.ErrNotFound
	}
	if err != nil {
		return nil, catalog.Fetchf(s.Name(), "find seller by slug", err)
	}
	return &sel, nil
}

func (s *Store) CreateSeller(ctx context.Context, sel models.Seller) error {
	_, err := s.db.Collection(sellersCollection).InsertOne(ctx, sel)
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("seller %s: store name or slug already taken: %w", sel.ID, err)
	}
	return err
}

// AddProduct inserts p and bumps the owner's advisory product counter.
func (s *Store) AddProduct(ctx context.Context, p models.Product) error {
	if _, err := s.db.Collection(productsCollection).InsertOne(ctx, p); err != nil {
		return err
	}
	_, err := s.db.Collection(sellersCollection).UpdateOne(ctx,
		bson.M{"_id": p.SellerID},
		bson.M{"$inc": bson.M{"productCount": 1}},
	)
	return err
}

func (s *Store) SlugTaken(ctx context.Context, slug string) (bool, error) {
	return s.exists(ctx, bson.M{"storeSlug": slug})
}

func (s *Store) StoreNameTaken(ctx context.Context, lower string) (bool, error) {
	return s.exists(ctx, bson.M{"storeNameLower": lower})
}

// NextSellerCode atomically advances the registration counter.
func (s *Store) NextSellerCode(ctx context.Context) (string, error) {
	var counter struct {
		CurrentNumber int `bson:"currentNumber"`
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	err := s.db.Collection(metaCollection).FindOneAndUpdate(ctx,
		bson.M{"_id": sellerCodeDoc},
		bson.M{"$inc": bson.M{"currentNumber": 1}},
		opts,
	).Decode(&counter)
	if err != nil {
		return "", fmt.Errorf("advance seller code: %w", err)
	}
	code := catalog.SellerCode(counter.CurrentNumber)
	_, err = s.db.Collection(metaCollection).UpdateOne(ctx,
		bson.M{"_id": sellerCodeDoc},
		bson.M{"$set": bson.M{"currentCode": code}},
	)
	return code, err
}

func (s *Store) FindProduct(ctx context.Context, id string) (*models.Product, error) {
	var p models.Product
	err := s.db.Collection(productsCollection).FindOne(ctx, bson.M{"_id": id}).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, catalog.ErrNotFound
	}
	if err != nil {
		return nil, catalog.Fetchf(s.Name(), "find product", err)
	}
	return &p, nil
}

// UpdateProduct rewrites the editable fields of a product its seller owns.
func (s *Store) UpdateProduct(ctx context.Context, p models.Product) error {
	res, err := s.db.Collection(productsCollection).UpdateOne(ctx,
		bson.M{"_id": p.ID, "sellerId": p.SellerID},
		bson.M{"$set": bson.M{
			"name":        p.Name,
			"description": p.Description,
			"price":       p.Price,
			"imageUrl":    p.ImageURL,
			"keywords":    p.Keywords,
		}},
	)
	if err != nil {
		return fmt.Errorf("update product %s: %w", p.ID, err)
	}
	if res.MatchedCount == 0 {
		return catalog.ErrNotFound
	}
	return nil
}

// DeleteProduct removes a product its seller owns and lowers the advisory
// product counter, which never goes below zero.
func (s *Store) DeleteProduct(ctx context.Context, sellerID, productID string) error {
	res, err := s.db.Collection(productsCollection).DeleteOne(ctx, bson.M{"_id": productID, "sellerId": sellerID})
	if err != nil {
		return fmt.Errorf("delete product %s: %w", productID, err)
	}
	if res.DeletedCount == 0 {
		return catalog.ErrNotFound
	}
	_, err = s.db.Collection(sellersCollection).UpdateOne(ctx,
		bson.M{"_id": sellerID, "productCount": bson.M{"$gt": 0}},
		bson.M{"$inc": bson.M{"productCount": -1}},
	)
	return err
}

func (s *Store) UpdateSeller(ctx context.Context, sel models.Seller) error {
	res, err := s.db.Collection(sellersCollection).UpdateOne(ctx,
		bson.M{"_id": sel.ID},
		bson.M{"$set": bson.M{
			"ownerName":        sel.OwnerName,
			"storeName":        sel.StoreName,
			"storeNameLower":   sel.StoreNameLower,
			"storeDescription": sel.StoreDescription,
			"phone":            sel.Phone,
			"email":            sel.Email,
		}},
	)
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("seller %s: store name already taken: %w", sel.ID, err)
	}
	if err != nil {
		return fmt.Errorf("update seller %s: %w", sel.ID, err)
	}
	if res.MatchedCount == 0 {
		return catalog.ErrNotFound
	}
	return nil
}

func (s *Store) findProducts(ctx context.Context, filter bson.M) ([]models.Product, error) {
	cursor, err := s.db.Collection(productsCollection).Find(ctx, filter, newestFirst())
	if err != nil {
		return nil, catalog.Fetchf(s.Name(), "find products", err)
	}
	products := make([]models.Product, 0)
	if err := cursor.All(ctx, &products); err != nil {
		return nil, catalog.Fetchf(s.Name(), "decode products", err)
	}
	return products, nil
}

func (s *Store) exists(ctx context.Context, filter bson.M) (bool, error) {
	n, err := s.db.Collection(sellersCollection).CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func newestFirst() *options.FindOptions {
	return options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
}

func sellersFilter(ids []string) bson.M {
	return bson.M{"_id": bson.M{"$in": ids}}
}
