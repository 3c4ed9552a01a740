// Coindeck - Coin Listing and Voting Platform Backend
// Copyright 2026 Coindeck Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/coindeck/coindeck

package store

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/coindeck/coindeck/internal/models"
)

var day0 = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

func seedCoin(t *testing.T, s *MemCoinStore, id string, status models.CoinStatus) {
	t.Helper()
	err := s.Insert(context.Background(), models.Coin{
		ID: id, Name: id, Symbol: id, Chain: "eth", Status: status, CreatedAt: day0,
	})
	if err != nil {
		t.Fatal(err)
	}
}

func TestCoinStoreFindByIDReturnsCopy(t *testing.T) {
	s := NewMemCoinStore()
	seedCoin(t, s, "c1", models.StatusApproved)

	coin, err := s.FindByID(context.Background(), "c1")
	if err != nil {
		t.Fatal(err)
	}
	coin.Votes = 999

	again, _ := s.FindByID(context.Background(), "c1")
	if again.Votes != 0 {
		t.Fatal("mutation through returned pointer reached the store")
	}
}

func TestCoinStoreFindByIDUnknown(t *testing.T) {
	s := NewMemCoinStore()
	if _, err := s.FindByID(context.Background(), "ghost"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestIncrementVotesIsAtomicUnderConcurrency(t *testing.T) {
	s := NewMemCoinStore()
	seedCoin(t, s, "c1", models.StatusApproved)

	const n = 100
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := s.IncrementVotes(context.Background(), "c1", 1, 1); err != nil {
				t.Error(err)
			}
		}()
	}
	wg.Wait()

	coin, _ := s.FindByID(context.Background(), "c1")
	if coin.Votes != n || coin.TodayVotes != n {
		t.Fatalf("votes = %d, todayVotes = %d, want %d", coin.Votes, coin.TodayVotes, n)
	}
}

func TestResetTodayVotesKeepsTotals(t *testing.T) {
	s := NewMemCoinStore()
	seedCoin(t, s, "c1", models.StatusApproved)
	seedCoin(t, s, "c2", models.StatusApproved)
	if _, err := s.IncrementVotes(context.Background(), "c1", 3, 3); err != nil {
		t.Fatal(err)
	}

	if err := s.ResetTodayVotes(context.Background()); err != nil {
		t.Fatal(err)
	}

	coin, _ := s.FindByID(context.Background(), "c1")
	if coin.Votes != 3 || coin.TodayVotes != 0 {
		t.Fatalf("votes = %d, todayVotes = %d, want 3/0", coin.Votes, coin.TodayVotes)
	}
}

func TestUpdatePriceTouchesOnlyMarketFields(t *testing.T) {
	s := NewMemCoinStore()
	seedCoin(t, s, "c1", models.StatusApproved)
	if _, err := s.IncrementVotes(context.Background(), "c1", 2, 2); err != nil {
		t.Fatal(err)
	}

	err := s.UpdatePrice(context.Background(), "c1", models.PriceData{
		Price: 1.5, Price24h: 12, Mkap: 1e6, Liquidity: 5e4,
	})
	if err != nil {
		t.Fatal(err)
	}

	coin, _ := s.FindByID(context.Background(), "c1")
	if coin.Price != 1.5 || coin.Liquidity != 5e4 {
		t.Fatalf("price fields not applied: %+v", coin)
	}
	if coin.Votes != 2 {
		t.Fatalf("votes = %d changed by price update", coin.Votes)
	}
}

func TestListApprovedSkipsOtherStatuses(t *testing.T) {
	s := NewMemCoinStore()
	seedCoin(t, s, "a", models.StatusApproved)
	seedCoin(t, s, "p", models.StatusPending)
	seedCoin(t, s, "d", models.StatusDenied)

	coins, err := s.ListApproved(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(coins) != 1 || coins[0].ID != "a" {
		t.Fatalf("coins = %v", coins)
	}
}

func TestVoteStoreExistsSinceBoundary(t *testing.T) {
	s := NewMemVoteStore()
	midnight := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)

	err := s.Insert(context.Background(), models.Vote{
		ID: "v1", CoinID: "c1", IPAddress: "1.2.3.4",
		CreatedAt: midnight.Add(-time.Second),
	})
	if err != nil {
		t.Fatal(err)
	}

	// A vote from 23:59:59 yesterday does not block today.
	voted, err := s.ExistsSince(context.Background(), "c1", "1.2.3.4", midnight)
	if err != nil {
		t.Fatal(err)
	}
	if voted {
		t.Fatal("yesterday's vote counted against today")
	}

	err = s.Insert(context.Background(), models.Vote{
		ID: "v2", CoinID: "c1", IPAddress: "1.2.3.4", CreatedAt: midnight,
	})
	if err != nil {
		t.Fatal(err)
	}
	voted, _ = s.ExistsSince(context.Background(), "c1", "1.2.3.4", midnight)
	if !voted {
		t.Fatal("a vote exactly at midnight belongs to today")
	}
}

func TestVoteStoreCoinIDsVotedSinceFiltersByCandidates(t *testing.T) {
	s := NewMemVoteStore()
	for _, id := range []string{"c1", "c2", "c3"} {
		err := s.Insert(context.Background(), models.Vote{
			ID: "v-" + id, CoinID: id, IPAddress: "1.2.3.4", CreatedAt: day0,
		})
		if err != nil {
			t.Fatal(err)
		}
	}

	got, err := s.CoinIDsVotedSince(context.Background(), "1.2.3.4", []string{"c1", "c3", "c9"}, day0.Add(-time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	want := map[string]bool{"c1": true, "c3": true}
	if len(got) != len(want) {
		t.Fatalf("got = %v", got)
	}
	for _, id := range got {
		if !want[id] {
			t.Fatalf("unexpected id %s in %v", id, got)
		}
	}
}

func TestFavoriteStoreToggleShape(t *testing.T) {
	s := NewMemFavoriteStore()
	ctx := context.Background()

	if _, err := s.Find(ctx, "u1", "c1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound before insert", err)
	}

	err := s.Insert(ctx, models.Favorite{ID: "f1", UserID: "u1", CoinID: "c1", CreatedAt: day0})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.Find(ctx, "u1", "c1"); err != nil {
		t.Fatalf("find after insert: %v", err)
	}
	// Another user's favorite is invisible.
	if _, err := s.Find(ctx, "u2", "c1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("cross-user find: %v", err)
	}

	if err := s.Delete(ctx, "u1", "c1"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Find(ctx, "u1", "c1"); !errors.Is(err, ErrNotFound) {
		t.Fatal("favorite survived delete")
	}
}

func TestFavoriteStoreCoinIDsForUser(t *testing.T) {
	s := NewMemFavoriteStore()
	ctx := context.Background()
	for _, id := range []string{"c1", "c2"} {
		err := s.Insert(ctx, models.Favorite{ID: "f-" + id, UserID: "u1", CoinID: id, CreatedAt: day0})
		if err != nil {
			t.Fatal(err)
		}
	}

	// Restricted to a candidate set.
	got, err := s.CoinIDsForUser(ctx, "u1", []string{"c2", "c9"})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0] != "c2" {
		t.Fatalf("got = %v, want [c2]", got)
	}

	// Nil candidates returns the full favorite set.
	got, err = s.CoinIDsForUser(ctx, "u1", nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("got = %v, want both favorites", got)
	}
}

func TestViewStoreDedupWindow(t *testing.T) {
	s := NewMemViewStore(30 * 24 * time.Hour)
	ctx := context.Background()
	window := 24 * time.Hour

	counted, err := s.Record(ctx, models.CoinView{
		ID: "w1", CoinID: "c1", IPAddress: "1.2.3.4", CreatedAt: day0,
	}, window)
	if err != nil || !counted {
		t.Fatalf("first view: counted=%v err=%v", counted, err)
	}

	counted, _ = s.Record(ctx, models.CoinView{
		ID: "w2", CoinID: "c1", IPAddress: "1.2.3.4", CreatedAt: day0.Add(time.Hour),
	}, window)
	if counted {
		t.Fatal("repeat view inside the window counted")
	}

	// A different IP counts, and the same IP counts again after the
	// window has passed.
	counted, _ = s.Record(ctx, models.CoinView{
		ID: "w3", CoinID: "c1", IPAddress: "5.6.7.8", CreatedAt: day0.Add(time.Hour),
	}, window)
	if !counted {
		t.Fatal("view from a different IP deduped")
	}
	counted, _ = s.Record(ctx, models.CoinView{
		ID: "w4", CoinID: "c1", IPAddress: "1.2.3.4", CreatedAt: day0.Add(25 * time.Hour),
	}, window)
	if !counted {
		t.Fatal("view outside the window deduped")
	}
}

func TestViewStoreRetentionExpiry(t *testing.T) {
	s := NewMemViewStore(48 * time.Hour)
	ctx := context.Background()

	if _, err := s.Record(ctx, models.CoinView{
		ID: "w1", CoinID: "c1", IPAddress: "1.2.3.4", CreatedAt: day0,
	}, 24*time.Hour); err != nil {
		t.Fatal(err)
	}

	// A write three days later expires the old record.
	if _, err := s.Record(ctx, models.CoinView{
		ID: "w2", CoinID: "c2", IPAddress: "1.2.3.4", CreatedAt: day0.Add(72 * time.Hour),
	}, 24*time.Hour); err != nil {
		t.Fatal(err)
	}

	counts, err := s.DistinctViewCounts(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if counts["c1"] != 0 {
		t.Fatalf("expired view still counted: %v", counts)
	}
	if counts["c2"] != 1 {
		t.Fatalf("counts = %v", counts)
	}
}

func TestDistinctViewCountsDedupsPerIP(t *testing.T) {
	s := NewMemViewStore(0)
	ctx := context.Background()

	// Dedup at read time guards against records written with different
	// windows; two records from one IP still count once.
	views := []models.CoinView{
		{ID: "w1", CoinID: "c1", IPAddress: "1.1.1.1", CreatedAt: day0},
		{ID: "w2", CoinID: "c1", IPAddress: "1.1.1.1", CreatedAt: day0.Add(time.Hour)},
		{ID: "w3", CoinID: "c1", IPAddress: "2.2.2.2", CreatedAt: day0},
	}
	for _, v := range views {
		if _, err := s.Record(ctx, v, time.Minute); err != nil {
			t.Fatal(err)
		}
	}

	counts, _ := s.DistinctViewCounts(ctx)
	if counts["c1"] != 2 {
		t.Fatalf("c1 = %d, want 2 distinct IPs", counts["c1"])
	}
}
