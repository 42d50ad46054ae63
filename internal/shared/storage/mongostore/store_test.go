package mongostore

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"clothing-store/internal/shared/model"
	"clothing-store/internal/shared/storage"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// testStore 创建测试用 Store，使用独立数据库避免污染
func testStore(t *testing.T) *Store {
	t.Helper()

	uri := os.Getenv("MONGO_TEST_URI")
	if uri == "" {
		uri = "mongodb://localhost:27017"
	}

	s, err := NewStore(uri, "clothing_store_test")
	if err != nil {
		t.Skipf("MongoDB not available: %v", err)
	}

	ctx := context.Background()
	if err := s.db.Drop(ctx); err != nil {
		t.Fatalf("Failed to drop test database: %v", err)
	}
	if err := s.ensureIndexes(ctx); err != nil {
		t.Fatalf("Failed to create indexes: %v", err)
	}

	t.Cleanup(func() {
		s.db.Drop(context.Background())
		s.Close()
	})

	return s
}

func TestMonthlySalesPipeline_Stages(t *testing.T) {
	start := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
	p := monthlySalesPipeline(start, start.AddDate(0, 1, 0))

	want := []string{"$match", "$addFields", "$match", "$sort", "$group", "$lookup", "$unwind", "$project", "$sort"}
	if len(p) != len(want) {
		t.Fatalf("stages = %d, want %d", len(p), len(want))
	}
	for i, stage := range p {
		if stage[0].Key != want[i] {
			t.Errorf("stage %d = %s, want %s", i, stage[0].Key, want[i])
		}
	}

	window := p[0][0].Value.(bson.D)[0].Value.(bson.D)
	if got := window[0].Value.(time.Time); !got.Equal(start) {
		t.Errorf("window start = %v, want %v", got, start)
	}
}

func TestUserCRUD(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Millisecond)

	u := &model.User{ID: model.NewID(), UserName: "alice", PasswordHash: "h",
		Role: model.UserRoleAdmin, CreatedAt: now, UpdatedAt: now}
	if err := s.CreateUser(ctx, u); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	dup := *u
	dup.ID = model.NewID()
	if err := s.CreateUser(ctx, &dup); !errors.Is(err, storage.ErrDuplicate) {
		t.Errorf("duplicate userName err = %v, want ErrDuplicate", err)
	}

	got, err := s.GetUserByUserName(ctx, "alice")
	if err != nil || got == nil {
		t.Fatalf("GetUserByUserName: %v, %v", got, err)
	}
	if got.PasswordHash != "h" || got.Role != model.UserRoleAdmin {
		t.Errorf("got %+v", got)
	}

	got, err = s.GetUserByID(ctx, "missing")
	if err != nil || got != nil {
		t.Errorf("GetUserByID(missing) = %v, %v; want nil, nil", got, err)
	}
}

func TestItemAndCart(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Millisecond)

	it := &model.Item{ID: model.NewID(), ItemName: "Shirt", ItemPrice: 50, Gender: model.GenderMen,
		Material: "Cotton", Subcategory: "Shirts", CreatedAt: now, UpdatedAt: now}
	if err := s.CreateItem(ctx, it); err != nil {
		t.Fatalf("CreateItem: %v", err)
	}
	if err := s.SetItemImage(ctx, it.ID, 2, "http://img/2.png"); err != nil {
		t.Fatalf("SetItemImage: %v", err)
	}
	if err := s.UpdateItem(ctx, it.ID, model.ItemUpdate{ItemName: "Tee", ItemPrice: 40,
		Gender: model.GenderWomen, Material: "Cotton", Subcategory: "Tops"}); err != nil {
		t.Fatalf("UpdateItem: %v", err)
	}
	got, _ := s.GetItem(ctx, it.ID)
	if got == nil || got.ItemName != "Tee" || got.Url2 != "http://img/2.png" {
		t.Errorf("GetItem = %+v", got)
	}
	if err := s.UpdateItem(ctx, "missing", model.ItemUpdate{}); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("UpdateItem(missing) err = %v", err)
	}

	userID := model.NewID()
	for i := 0; i < 2; i++ {
		c := &model.CartItem{ID: model.NewID(), UserID: userID, ItemID: it.ID, ItemName: "Tee",
			CreatedAt: now.Add(time.Duration(i) * time.Second)}
		if err := s.AddCartItem(ctx, c); err != nil {
			t.Fatalf("AddCartItem: %v", err)
		}
	}
	cart, _ := s.ListCartItems(ctx, userID)
	if len(cart) != 2 {
		t.Fatalf("cart len = %d, want 2", len(cart))
	}
	deleted, err := s.DeleteCartItem(ctx, it.ID, userID)
	if err != nil || deleted.ID != cart[0].ID {
		t.Errorf("DeleteCartItem = %v, %v", deleted, err)
	}
	if _, err := s.DeleteCartItem(ctx, it.ID, "other"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("DeleteCartItem(other) err = %v", err)
	}

	if err := s.DeleteItem(ctx, it.ID); err != nil {
		t.Fatalf("DeleteItem: %v", err)
	}
	if err := s.DeleteItem(ctx, it.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("second DeleteItem err = %v", err)
	}
}

func TestAggregateMonthlySales(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	march := time.Date(2024, time.March, 10, 12, 0, 0, 0, time.UTC)

	shirt := &model.Item{ID: model.NewID(), ItemName: "Shirt", ItemPrice: 50, Gender: model.GenderMen,
		Material: "Cotton", Url1: "http://img/shirt.png", CreatedAt: march, UpdatedAt: march}
	if err := s.CreateItem(ctx, shirt); err != nil {
		t.Fatalf("CreateItem: %v", err)
	}

	payments := []model.Payment{
		{ItemID: shirt.ID, Quantity: "2", Price: 100, Material: "Cotton", CreatedAt: march},
		{ItemID: shirt.ID, Quantity: "3", Price: 150, Material: "Linen", CreatedAt: march.Add(time.Hour)},
		{ItemID: shirt.ID, Quantity: "lots", Price: 999, Material: "Wool", CreatedAt: march},
		{ItemID: model.NewID(), Quantity: "1", Price: 10, Material: "Wool", CreatedAt: march},
		{ItemID: shirt.ID, Quantity: "7", Price: 350, Material: "Wool", CreatedAt: march.AddDate(0, 1, 0)},
	}
	for i := range payments {
		payments[i].ID = model.NewID()
		payments[i].Size = model.SizeM
		if err := s.CreatePayment(ctx, &payments[i]); err != nil {
			t.Fatalf("CreatePayment: %v", err)
		}
	}

	start := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
	rows, err := s.AggregateMonthlySales(ctx, start, start.AddDate(0, 1, 0))
	if err != nil {
		t.Fatalf("AggregateMonthlySales: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("rows = %d, want 1: %+v", len(rows), rows)
	}
	r := rows[0]
	if r.ItemID != shirt.ID || r.TotalQuantity != 5 || r.TotalPrice != 250 {
		t.Errorf("row = %+v", r)
	}
	if r.Material != "Cotton" || r.ItemName != "Shirt" || r.URL != shirt.Url1 || r.Gender != model.GenderMen {
		t.Errorf("row = %+v", r)
	}

	details, err := s.ListPaymentDetails(ctx)
	if err != nil {
		t.Fatalf("ListPaymentDetails: %v", err)
	}
	if len(details) != len(payments) {
		t.Fatalf("details = %d, want %d", len(details), len(payments))
	}
	if details[0].UserName != model.NotAvailable || details[0].ItemName != "Shirt" {
		t.Errorf("details[0] = %+v", details[0])
	}

	empty, err := s.AggregateMonthlySales(ctx, start.AddDate(0, 2, 0), start.AddDate(0, 3, 0))
	if err != nil || len(empty) != 0 {
		t.Errorf("empty month = %v, %v", empty, err)
	}
}
