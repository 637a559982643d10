// Package shard maps slot keys onto a fixed set of lock stripes.
package shard

import (
	"fmt"
	"hash/fnv"
)

// Index returns the stripe for key.
// With numShards<=1, every key maps to stripe 0.
// With numShards>1, keys are distributed across stripes by FNV-1a hash.
func Index(key string, numShards int) int {
	if numShards <= 1 {
		return 0
	}
	h := fnv.New32a()
	h.Write([]byte(key))
	return int(h.Sum32() % uint32(numShards))
}

// Label formats a stripe number for log output (e.g. "type#0a").
func Label(key string, numShards int) string {
	return fmt.Sprintf("%s#%02x", key, Index(key, numShards))
}
