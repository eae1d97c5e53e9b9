package gifts

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/blissevent/invitation/internal/apperr"
	"github.com/blissevent/invitation/internal/auth"
	"github.com/blissevent/invitation/internal/db"
	"github.com/blissevent/invitation/internal/models"
	"gorm.io/gorm"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	conn, err := db.Open("file:" + filepath.Join(t.TempDir(), "gifts-test.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if errMigrate := db.Migrate(conn); errMigrate != nil {
		t.Fatalf("migrate: %v", errMigrate)
	}
	t.Cleanup(func() { _ = db.Close(conn) })
	return conn
}

func strPtr(s string) *string { return &s }

func TestService_CreateListDelete(t *testing.T) {
	svc := NewService(openTestDB(t), nil)
	ctx := context.Background()

	toaster, err := svc.Create(ctx, CreateInput{Name: "Toaster<script>x</script>", Price: "$30", Image: "toaster.jpg", Description: strPtr(`<b onclick="x">Four</b> slots`)})
	if err != nil {
		t.Fatalf("create toaster: %v", err)
	}
	if toaster.Name != "Toaster" {
		t.Fatalf("expected sanitized name, got %q", toaster.Name)
	}
	if toaster.Description == nil || *toaster.Description != "<b>Four</b> slots" {
		t.Fatalf("unexpected description %v", toaster.Description)
	}
	if _, err = svc.Create(ctx, CreateInput{Name: "Blender", Price: "$80", Image: "blender.jpg", URL: strPtr("https://example.com/blender")}); err != nil {
		t.Fatalf("create blender: %v", err)
	}

	if _, errInvalid := svc.Create(ctx, CreateInput{Name: "<i></i>", Price: "", Image: " "}); !errors.Is(errInvalid, apperr.ErrValidation) {
		t.Fatalf("expected validation error, got %v", errInvalid)
	}

	list, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 || list[0].Name != "Blender" || list[1].Name != "Toaster" {
		t.Fatalf("expected gifts ordered by name, got %+v", list)
	}

	if errDelete := svc.Delete(ctx, toaster.ID); errDelete != nil {
		t.Fatalf("delete: %v", errDelete)
	}
	if errDelete := svc.Delete(ctx, toaster.ID); !errors.Is(errDelete, apperr.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", errDelete)
	}
}

func TestService_Purchase(t *testing.T) {
	now := time.Date(2026, 6, 20, 15, 0, 0, 0, time.UTC)
	svc := NewService(openTestDB(t), func() time.Time { return now })
	ctx := context.Background()

	gift, err := svc.Create(ctx, CreateInput{Name: "Kettle", Price: "$40", Image: "kettle.jpg"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	ann := auth.Principal{ID: "u-ann", Name: "Ann", Role: models.RoleGuest}
	bought, err := svc.Purchase(ctx, ann, gift.ID)
	if err != nil {
		t.Fatalf("purchase: %v", err)
	}
	if !bought.Purchased || bought.PurchasedBy == nil || *bought.PurchasedBy != "Ann" {
		t.Fatalf("expected purchase by Ann, got %+v", bought)
	}
	if bought.PurchasedByID == nil || *bought.PurchasedByID != "u-ann" {
		t.Fatalf("expected purchaser id from principal, got %v", bought.PurchasedByID)
	}
	if bought.PurchasedAt == nil || !bought.PurchasedAt.Equal(now) {
		t.Fatalf("expected purchase time %s, got %v", now, bought.PurchasedAt)
	}

	bob := auth.Principal{ID: "u-bob", Name: "Bob", Role: models.RoleGuest}
	if _, errAgain := svc.Purchase(ctx, bob, gift.ID); !errors.Is(errAgain, apperr.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", errAgain)
	}
	if _, errMissing := svc.Purchase(ctx, bob, "missing"); !errors.Is(errMissing, apperr.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", errMissing)
	}

	nameless, err := svc.Create(ctx, CreateInput{Name: "Vase", Price: "$20", Image: "vase.jpg"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	anon, err := svc.Purchase(ctx, auth.Principal{ID: "u-x", Role: models.RoleGuest}, nameless.ID)
	if err != nil {
		t.Fatalf("purchase: %v", err)
	}
	if *anon.PurchasedBy != anonymousPurchaser {
		t.Fatalf("expected anonymous purchaser, got %q", *anon.PurchasedBy)
	}
}

func TestService_ConcurrentPurchaseHasOneWinner(t *testing.T) {
	svc := NewService(openTestDB(t), nil)
	ctx := context.Background()
	gift, err := svc.Create(ctx, CreateInput{Name: "Mixer", Price: "$300", Image: "mixer.jpg"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	const buyers = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		wins      int
		conflicts int
	)
	for i := 0; i < buyers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errBuy := svc.Purchase(ctx, auth.Principal{ID: "u-" + string(rune('a'+i)), Name: "Buyer", Role: models.RoleGuest}, gift.ID)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case errBuy == nil:
				wins++
			case errors.Is(errBuy, apperr.ErrConflict):
				conflicts++
			default:
				t.Errorf("unexpected error: %v", errBuy)
			}
		}(i)
	}
	wg.Wait()
	if wins != 1 || conflicts != buyers-1 {
		t.Fatalf("expected 1 win and %d conflicts, got %d and %d", buyers-1, wins, conflicts)
	}
}
