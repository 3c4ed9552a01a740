// Coindeck - Coin Listing and Voting Platform Backend
// Copyright 2026 Coindeck Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/coindeck/coindeck

package trending

import (
	"context"
	"testing"
	"time"

	"github.com/coindeck/coindeck/internal/cache"
	"github.com/coindeck/coindeck/internal/models"
	"github.com/coindeck/coindeck/internal/store"
)

func newEngine(t *testing.T) (*Engine, *store.MemCoinStore, *store.MemViewStore, *cache.Memory) {
	t.Helper()
	mem := cache.NewMemory()
	t.Cleanup(func() { _ = mem.Close() })
	coins := store.NewMemCoinStore()
	views := store.NewMemViewStore(0)
	return New(mem, coins, views), coins, views, mem
}

func approve(t *testing.T, coins *store.MemCoinStore, c models.Coin) {
	t.Helper()
	c.Status = models.StatusApproved
	if err := coins.Insert(context.Background(), c); err != nil {
		t.Fatal(err)
	}
}

func recordViews(t *testing.T, views *store.MemViewStore, coinID string, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		v := models.CoinView{
			ID:        coinID + "-" + time.Now().Format("150405.000000000") + string(rune('a'+i%26)),
			CoinID:    coinID,
			IPAddress: ipFor(i),
			CreatedAt: time.Now(),
		}
		if _, err := views.Record(context.Background(), v, time.Hour); err != nil {
			t.Fatal(err)
		}
	}
}

// ipFor generates n distinct addresses.
func ipFor(i int) string {
	return "10." + itoa(i/65536%256) + "." + itoa(i/256%256) + "." + itoa(i%256)
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	var b [4]byte
	p := len(b)
	for n > 0 {
		p--
		b[p] = byte('0' + n%10)
		n /= 10
	}
	return string(b[p:])
}

func TestScoreTermsAndThresholds(t *testing.T) {
	cases := []struct {
		name  string
		coin  models.Coin
		views int64
		want  float64
	}{
		{"views only", models.Coin{}, 100, 50},
		{"votes below threshold excluded", models.Coin{TodayVotes: 100}, 0, 0},
		{"votes above threshold", models.Coin{TodayVotes: 150}, 0, 45},
		{"price needs liquidity", models.Coin{Price24h: 50, Liquidity: 9999}, 0, 0},
		{"price needs gain above 10", models.Coin{Price24h: 10, Liquidity: 20000}, 0, 0},
		{"price term active", models.Coin{Price24h: 50, Liquidity: 10000}, 0, 10},
		{"all terms", models.Coin{TodayVotes: 200, Price24h: 20, Liquidity: 15000}, 40, 20 + 60 + 4},
	}
	for _, tc := range cases {
		if got := Score(tc.coin, tc.views); got != tc.want {
			t.Errorf("%s: score = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestViewHeavyBeatsVoteHeavy(t *testing.T) {
	// Coin A: 1000 distinct views, no votes, liquidity below the
	// price threshold, +50% move. Score = 500.
	// Coin B: 10 views, 150 votes today, 20k liquidity, +50% move.
	// Score = 5 + 45 + 10 = 60. A must rank above B.
	engine, coins, views, _ := newEngine(t)
	ctx := context.Background()

	approve(t, coins, models.Coin{ID: "a", Name: "Alpha", Liquidity: 5000, Price24h: 50})
	approve(t, coins, models.Coin{ID: "b", Name: "Beta", TodayVotes: 150, Liquidity: 20000, Price24h: 50})
	recordViews(t, views, "a", 1000)
	recordViews(t, views, "b", 10)

	top, _, err := engine.Top(ctx, 10)
	if err != nil {
		t.Fatalf("Top: %v", err)
	}
	if len(top) != 2 {
		t.Fatalf("got %d coins, want 2", len(top))
	}
	if top[0].ID != "a" || top[1].ID != "b" {
		t.Errorf("order = [%s %s], want [a b]", top[0].ID, top[1].ID)
	}
}

func TestTopSharesSnapshotAcrossLimits(t *testing.T) {
	engine, coins, views, _ := newEngine(t)
	ctx := context.Background()

	for _, id := range []string{"c1", "c2", "c3"} {
		approve(t, coins, models.Coin{ID: id, Name: id})
	}
	recordViews(t, views, "c2", 8)
	recordViews(t, views, "c3", 4)

	full, cached, err := engine.Top(ctx, 10)
	if err != nil {
		t.Fatal(err)
	}
	if cached {
		t.Error("first call must be a rebuild")
	}
	if len(full) != 3 || full[0].ID != "c2" {
		t.Fatalf("unexpected ranking: %+v", full)
	}

	// Smaller limit is a slice of the same cached snapshot, even
	// though the underlying data changed since.
	recordViews(t, views, "c1", 100)
	top2, cached, err := engine.Top(ctx, 2)
	if err != nil {
		t.Fatal(err)
	}
	if !cached {
		t.Error("second call must hit the cached snapshot")
	}
	if len(top2) != 2 || top2[0].ID != "c2" || top2[1].ID != "c3" {
		t.Errorf("slice of snapshot = %+v, want [c2 c3]", top2)
	}
}

func TestTopExcludesUnapprovedCoins(t *testing.T) {
	engine, coins, views, _ := newEngine(t)
	ctx := context.Background()

	approve(t, coins, models.Coin{ID: "ok", Name: "Listed"})
	pending := models.Coin{ID: "nope", Name: "Waiting", Status: models.StatusPending}
	if err := coins.Insert(ctx, pending); err != nil {
		t.Fatal(err)
	}
	recordViews(t, views, "nope", 500)

	top, _, err := engine.Top(ctx, 10)
	if err != nil {
		t.Fatal(err)
	}
	for _, c := range top {
		if c.ID == "nope" {
			t.Error("pending coin must not appear in trending")
		}
	}
}

func TestTopRebuildAfterInvalidation(t *testing.T) {
	engine, coins, views, mem := newEngine(t)
	ctx := context.Background()

	approve(t, coins, models.Coin{ID: "c1", Name: "One"})
	approve(t, coins, models.Coin{ID: "c2", Name: "Two"})
	recordViews(t, views, "c1", 5)

	if _, _, err := engine.Top(ctx, 10); err != nil {
		t.Fatal(err)
	}

	recordViews(t, views, "c2", 50)
	if _, err := mem.DeleteByPrefix(ctx, cache.KindTrending); err != nil {
		t.Fatal(err)
	}

	top, cached, err := engine.Top(ctx, 10)
	if err != nil {
		t.Fatal(err)
	}
	if cached {
		t.Error("invalidated snapshot must force a rebuild")
	}
	if top[0].ID != "c2" {
		t.Errorf("top = %s, want c2 after new views", top[0].ID)
	}
}

func TestTopZeroLimit(t *testing.T) {
	engine, _, _, _ := newEngine(t)
	top, cached, err := engine.Top(context.Background(), 0)
	if err != nil {
		t.Fatal(err)
	}
	if cached || len(top) != 0 {
		t.Error("limit 0 returns empty without touching the cache")
	}
}
