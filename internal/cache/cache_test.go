package cache

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis.Run: %v", err)
	}
	t.Cleanup(mr.Close)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return New(client), mr
}

type payload struct {
	ZipCode string `json:"zip_code"`
}

func TestGetMissWhenUnset(t *testing.T) {
	c, _ := newTestCache(t)
	var dest payload
	if c.Get(context.Background(), "postal:zip:9999999", &dest) {
		t.Fatal("expected a miss for an unset key")
	}
}

func TestSetThenGetRoundTrips(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()
	c.SetWithTTL(ctx, "postal:zip:1000001", payload{ZipCode: "1000001"}, 300)

	var dest payload
	if !c.Get(ctx, "postal:zip:1000001", &dest) {
		t.Fatal("expected a hit after SetWithTTL")
	}
	if dest.ZipCode != "1000001" {
		t.Fatalf("dest.ZipCode = %q, want 1000001", dest.ZipCode)
	}
}

func TestDisabledCacheIsAlwaysAMiss(t *testing.T) {
	c := New(nil)
	var dest payload
	if c.Get(context.Background(), "postal:zip:1000001", &dest) {
		t.Fatal("disabled cache should never report a hit")
	}
	c.SetWithTTL(context.Background(), "postal:zip:1000001", payload{}, 300) // must not panic
}

func TestInvalidateAllRemovesPrefixedKeys(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()
	c.SetWithTTL(ctx, "postal:zip:1000001", payload{ZipCode: "1000001"}, 300)
	c.SetWithTTL(ctx, "postal:prefectures", payload{}, 300)
	mr.Set("unrelated:key", "value")

	c.InvalidateAll(ctx)

	if mr.Exists("postal:zip:1000001") {
		t.Error("expected postal:zip:1000001 to be invalidated")
	}
	if mr.Exists("postal:prefectures") {
		t.Error("expected postal:prefectures to be invalidated")
	}
	if !mr.Exists("unrelated:key") {
		t.Error("unrelated:key should not have been touched")
	}
}

func TestResolveStateTruthTable(t *testing.T) {
	cases := []struct {
		name              string
		enabled, pingOK   bool
		readyRequireCache bool
		wantState         string
		wantReady         bool
	}{
		{"disabled", false, false, false, "disabled", true},
		{"ok", true, true, false, "ok", true},
		{"ping fail not required", true, false, false, "error", true},
		{"ping fail required", true, false, true, "error", false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			state, ready := ResolveState(c.enabled, c.pingOK, c.readyRequireCache)
			if state != c.wantState || ready != c.wantReady {
				t.Errorf("ResolveState(%v,%v,%v) = (%q,%v), want (%q,%v)",
					c.enabled, c.pingOK, c.readyRequireCache, state, ready, c.wantState, c.wantReady)
			}
		})
	}
}
