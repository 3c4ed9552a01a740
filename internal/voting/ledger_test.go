// Coindeck - Coin Listing and Voting Platform Backend
// Copyright 2026 Coindeck Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/coindeck/coindeck

package voting

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/coindeck/coindeck/internal/cache"
	"github.com/coindeck/coindeck/internal/models"
	"github.com/coindeck/coindeck/internal/store"
)

type fixture struct {
	ledger *Ledger
	coins  *store.MemCoinStore
	votes  *store.MemVoteStore
	cache  *cache.Memory
	clock  *fakeClock
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	mem := cache.NewMemory()
	t.Cleanup(func() { _ = mem.Close() })

	coins := store.NewMemCoinStore()
	votes := store.NewMemVoteStore()
	inv := cache.NewInvalidator(mem, cache.DefaultTable())
	clock := &fakeClock{now: time.Date(2026, 3, 14, 15, 0, 0, 0, time.UTC)}

	ledger := NewLedger(coins, votes, inv, Options{SerializePerVoter: true}).WithClock(clock.Now)

	err := coins.Insert(context.Background(), models.Coin{
		ID: "c1", Name: "Alpha", Symbol: "ALP", Chain: "eth",
		Status: models.StatusApproved,
	})
	if err != nil {
		t.Fatal(err)
	}

	return &fixture{ledger: ledger, coins: coins, votes: votes, cache: mem, clock: clock}
}

func TestCastVoteIncrementsBothCounters(t *testing.T) {
	f := newFixture(t)

	vote, coin, err := f.ledger.CastVote(context.Background(), "c1", "1.2.3.4")
	if err != nil {
		t.Fatal(err)
	}
	if vote.CoinID != "c1" || vote.IPAddress != "1.2.3.4" {
		t.Fatalf("vote = %+v", vote)
	}
	if coin.Votes != 1 || coin.TodayVotes != 1 {
		t.Fatalf("votes = %d, todayVotes = %d, want 1/1", coin.Votes, coin.TodayVotes)
	}
}

func TestSecondVoteSameDayRejected(t *testing.T) {
	f := newFixture(t)

	if _, _, err := f.ledger.CastVote(context.Background(), "c1", "1.2.3.4"); err != nil {
		t.Fatal(err)
	}

	_, _, err := f.ledger.CastVote(context.Background(), "c1", "1.2.3.4")
	var already *AlreadyVotedError
	if !errors.As(err, &already) {
		t.Fatalf("err = %v, want AlreadyVotedError", err)
	}
	if already.CoinName != "Alpha" {
		t.Fatalf("CoinName = %q", already.CoinName)
	}

	coin, _ := f.coins.FindByID(context.Background(), "c1")
	if coin.Votes != 1 {
		t.Fatalf("votes = %d after rejected duplicate, want 1", coin.Votes)
	}
}

func TestVoteAllowedAgainAfterUTCMidnight(t *testing.T) {
	f := newFixture(t)

	if _, _, err := f.ledger.CastVote(context.Background(), "c1", "1.2.3.4"); err != nil {
		t.Fatal(err)
	}

	// 15:00 + 8h59m is still the same UTC day.
	f.clock.Advance(8*time.Hour + 59*time.Minute)
	if _, _, err := f.ledger.CastVote(context.Background(), "c1", "1.2.3.4"); err == nil {
		t.Fatal("vote accepted before midnight")
	}

	f.clock.Advance(2 * time.Minute)
	if _, _, err := f.ledger.CastVote(context.Background(), "c1", "1.2.3.4"); err != nil {
		t.Fatalf("vote after midnight rejected: %v", err)
	}
}

func TestDistinctIPsVoteIndependently(t *testing.T) {
	f := newFixture(t)

	for i := 0; i < 5; i++ {
		ip := fmt.Sprintf("10.0.0.%d", i)
		if _, _, err := f.ledger.CastVote(context.Background(), "c1", ip); err != nil {
			t.Fatalf("ip %s: %v", ip, err)
		}
	}

	coin, _ := f.coins.FindByID(context.Background(), "c1")
	if coin.Votes != 5 {
		t.Fatalf("votes = %d, want 5", coin.Votes)
	}
}

func TestVoteForUnknownCoin(t *testing.T) {
	f := newFixture(t)

	_, _, err := f.ledger.CastVote(context.Background(), "ghost", "1.2.3.4")
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestVoteWithMissingIdentity(t *testing.T) {
	f := newFixture(t)

	if _, _, err := f.ledger.CastVote(context.Background(), "", "1.2.3.4"); !errors.Is(err, ErrInvalid) {
		t.Fatalf("empty coin: err = %v", err)
	}
	if _, _, err := f.ledger.CastVote(context.Background(), "c1", ""); !errors.Is(err, ErrInvalid) {
		t.Fatalf("empty ip: err = %v", err)
	}
}

func TestConcurrentSameVoterAcceptsExactlyOne(t *testing.T) {
	f := newFixture(t)

	const attempts = 32
	var wg sync.WaitGroup
	accepted := make(chan struct{}, attempts)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, _, err := f.ledger.CastVote(context.Background(), "c1", "1.2.3.4"); err == nil {
				accepted <- struct{}{}
			}
		}()
	}
	wg.Wait()
	close(accepted)

	n := 0
	for range accepted {
		n++
	}
	if n != 1 {
		t.Fatalf("accepted = %d concurrent votes from one voter, want 1", n)
	}

	coin, _ := f.coins.FindByID(context.Background(), "c1")
	if coin.Votes != 1 {
		t.Fatalf("votes = %d, want 1", coin.Votes)
	}
}

func TestConcurrentDistinctVotersAllCount(t *testing.T) {
	f := newFixture(t)

	const voters = 50
	var wg sync.WaitGroup
	for i := 0; i < voters; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			ip := fmt.Sprintf("10.1.%d.%d", n/256, n%256)
			if _, _, err := f.ledger.CastVote(context.Background(), "c1", ip); err != nil {
				t.Errorf("ip %s: %v", ip, err)
			}
		}(i)
	}
	wg.Wait()

	coin, _ := f.coins.FindByID(context.Background(), "c1")
	if coin.Votes != voters || coin.TodayVotes != voters {
		t.Fatalf("votes = %d, todayVotes = %d, want %d", coin.Votes, coin.TodayVotes, voters)
	}
}

func TestVotePurgesListingEntries(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	key := cache.Key(cache.KindCoinsApproved, map[string]int{"page": 1})
	if err := f.cache.Set(ctx, key, []byte(`{}`), time.Minute); err != nil {
		t.Fatal(err)
	}
	if err := f.cache.Set(ctx, cache.KeyTrending, []byte(`[]`), time.Minute); err != nil {
		t.Fatal(err)
	}

	if _, _, err := f.ledger.CastVote(ctx, "c1", "1.2.3.4"); err != nil {
		t.Fatal(err)
	}

	if _, found, _ := f.cache.Get(ctx, key); found {
		t.Fatal("approved listing entry survived a vote")
	}
	if _, found, _ := f.cache.Get(ctx, cache.KeyTrending); found {
		t.Fatal("trending snapshot survived a vote")
	}
}

func TestTodayStartUTC(t *testing.T) {
	tests := []struct {
		in   time.Time
		want time.Time
	}{
		{
			time.Date(2026, 3, 14, 23, 59, 59, 999999999, time.UTC),
			time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC),
		},
		{
			time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC),
			time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC),
		},
		{
			// 01:30+05:00 is 20:30 UTC of the previous day.
			time.Date(2026, 3, 15, 1, 30, 0, 0, time.FixedZone("UTC+5", 5*3600)),
			time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC),
		},
	}
	for _, tt := range tests {
		if got := TodayStartUTC(tt.in); !got.Equal(tt.want) {
			t.Errorf("TodayStartUTC(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
