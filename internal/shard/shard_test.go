package shard

import (
	"strings"
	"testing"
)

func TestIndex_SingleShard(t *testing.T) {
	for _, key := range []string{"task", "note", "", "日本語"} {
		if got := Index(key, 1); got != 0 {
			t.Errorf("Index(%q, 1) = %d, want 0", key, got)
		}
	}
}

func TestIndex_ZeroShards(t *testing.T) {
	// Zero or negative shards should be treated as 1
	if got := Index("task", 0); got != 0 {
		t.Errorf("expected 0, got %d", got)
	}
	if got := Index("task", -1); got != 0 {
		t.Errorf("expected 0, got %d", got)
	}
}

func TestIndex_Deterministic(t *testing.T) {
	first := Index("task", 16)
	for i := 0; i < 100; i++ {
		if got := Index("task", 16); got != first {
			t.Fatalf("Index not deterministic: %d then %d", first, got)
		}
	}
}

func TestIndex_InRange(t *testing.T) {
	for _, n := range []int{2, 7, 16, 256} {
		for i := 0; i < 500; i++ {
			key := "type" + string(rune('a'+i%26)) + string(rune('0'+i%10))
			got := Index(key, n)
			if got < 0 || got >= n {
				t.Fatalf("Index(%q, %d) = %d out of range", key, n, got)
			}
		}
	}
}

func TestIndex_Distribution(t *testing.T) {
	numShards := 16
	counts := make(map[int]int)
	for i := 0; i < 1000; i++ {
		key := "type-" + string(rune('a'+i%26)) + string(rune('a'+(i/26)%26)) + string(rune('0'+i%10))
		counts[Index(key, numShards)]++
	}
	if len(counts) < numShards/2 {
		t.Errorf("expected keys spread over at least %d stripes, got %d", numShards/2, len(counts))
	}
}

func TestLabel(t *testing.T) {
	if got := Label("task", 1); got != "task#00" {
		t.Errorf("expected 'task#00', got %q", got)
	}
	got := Label("task", 256)
	if !strings.HasPrefix(got, "task#") || len(got) != len("task#")+2 {
		t.Errorf("unexpected label format %q", got)
	}
}
