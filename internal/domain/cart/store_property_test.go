package cart

import (
	"context"
	"testing"

	"github.com/example/tg-storefront/internal/infrastructure/store"
	"github.com/shopspring/decimal"
	"pgregory.net/rapid"
)

type cartOp struct {
	kind  int
	id    int64
	packs int
}

func genOp() *rapid.Generator[cartOp] {
	return rapid.Custom(func(t *rapid.T) cartOp {
		return cartOp{
			kind:  rapid.IntRange(0, 3).Draw(t, "kind"),
			id:    rapid.Int64Range(1, 6).Draw(t, "id"),
			packs: rapid.IntRange(-3, 20).Draw(t, "packs"),
		}
	})
}

func applyOp(ctx context.Context, s *Store, op cartOp) {
	p := testProduct(op.id, "2.5", int(op.id))
	switch op.kind {
	case 0:
		_ = s.AddProduct(ctx, p, op.packs)
	case 1:
		_ = s.UpdateQuantity(ctx, op.id, op.packs)
	case 2:
		_ = s.RemoveItem(ctx, op.id)
	case 3:
		_ = s.AddProduct(ctx, p, 1)
	}
}

func TestStore_Properties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		ctx := context.Background()
		blobs := store.NewMemoryBlobStore()
		s := NewStore(blobs)

		ops := rapid.SliceOfN(genOp(), 0, 40).Draw(t, "ops")
		for _, op := range ops {
			applyOp(ctx, s, op)
		}

		lines := s.Lines()
		seen := make(map[int64]bool)
		expectedTotal := decimal.Zero
		expectedCount := 0
		for _, l := range lines {
			if seen[l.Product.ID] {
				t.Fatalf("duplicate line for product %d", l.Product.ID)
			}
			seen[l.Product.ID] = true
			if l.Packs < 1 {
				t.Fatalf("line %d has %d packs", l.Product.ID, l.Packs)
			}
			expectedTotal = expectedTotal.Add(decimal.RequireFromString("2.5").Mul(decimal.NewFromInt(int64(l.Packs) * l.Product.ID)))
			expectedCount += l.Packs
		}

		if !s.Total().Equal(expectedTotal) {
			t.Fatalf("total %s, expected %s", s.Total(), expectedTotal)
		}
		if s.ItemsCount() != expectedCount {
			t.Fatalf("count %d, expected %d", s.ItemsCount(), expectedCount)
		}

		restored := Open(ctx, blobs)
		got := restored.Lines()
		if len(got) != len(lines) {
			t.Fatalf("restored %d lines, expected %d", len(got), len(lines))
		}
		for i := range lines {
			if got[i].Product.ID != lines[i].Product.ID || got[i].Packs != lines[i].Packs {
				t.Fatalf("line %d restored as %+v, expected %+v", i, got[i], lines[i])
			}
		}
	})
}
