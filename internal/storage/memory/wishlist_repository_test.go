package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/leathric/storefront/internal/domain"
)

func TestWishlistRepositoryCreateAndGet(t *testing.T) {
	repo := NewWishlistRepository()
	ctx := context.Background()

	_, found, err := repo.GetByUser(ctx, "user-1")
	if err != nil {
		t.Fatalf("GetByUser: %v", err)
	}
	if found {
		t.Fatal("did not expect a wishlist before Create")
	}

	if err := repo.Create(ctx, domain.Wishlist{ID: "wl-1", UserID: "user-1"}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := repo.Create(ctx, domain.Wishlist{ID: "wl-2", UserID: "user-1"}); !errors.Is(err, domain.ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists for second wishlist of the same user, got %v", err)
	}

	got, found, err := repo.GetByUser(ctx, "user-1")
	if err != nil {
		t.Fatalf("GetByUser: %v", err)
	}
	if !found {
		t.Fatal("expected wishlist to be found")
	}
	if got.ID != "wl-1" {
		t.Fatalf("unexpected wishlist id: %s", got.ID)
	}
}

func TestWishlistRepositoryAddItemRejectsDuplicate(t *testing.T) {
	repo := NewWishlistRepository()
	ctx := context.Background()

	if err := repo.Create(ctx, domain.Wishlist{ID: "wl-1", UserID: "user-1"}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := repo.AddItem(ctx, "wl-1", domain.WishlistItem{ProductID: "belt"}); err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	if err := repo.AddItem(ctx, "wl-1", domain.WishlistItem{ProductID: "belt"}); !errors.Is(err, domain.ErrWishlistDuplicate) {
		t.Fatalf("expected ErrWishlistDuplicate, got %v", err)
	}
	if err := repo.AddItem(ctx, "missing", domain.WishlistItem{ProductID: "belt"}); err == nil {
		t.Fatal("expected error for unknown wishlist")
	}
}

func TestWishlistRepositoryRemoveAndClear(t *testing.T) {
	repo := NewWishlistRepository()
	ctx := context.Background()

	if err := repo.Create(ctx, domain.Wishlist{ID: "wl-1", UserID: "user-1"}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := repo.AddItem(ctx, "wl-1", domain.WishlistItem{ProductID: "belt"}); err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	if err := repo.AddItem(ctx, "wl-1", domain.WishlistItem{ProductID: "wallet"}); err != nil {
		t.Fatalf("AddItem: %v", err)
	}

	removed, err := repo.RemoveItem(ctx, "wl-1", "belt")
	if err != nil {
		t.Fatalf("RemoveItem: %v", err)
	}
	if !removed {
		t.Fatal("expected belt to be removed")
	}
	removed, err = repo.RemoveItem(ctx, "wl-1", "belt")
	if err != nil {
		t.Fatalf("RemoveItem repeat: %v", err)
	}
	if removed {
		t.Fatal("second removal must report missing item")
	}

	if err := repo.Clear(ctx, "wl-1"); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	wishlist, found, err := repo.GetByUser(ctx, "user-1")
	if err != nil || !found {
		t.Fatalf("GetByUser after Clear: found=%v err=%v", found, err)
	}
	if len(wishlist.Items) != 0 {
		t.Fatalf("expected empty wishlist after Clear, got %d items", len(wishlist.Items))
	}
}
