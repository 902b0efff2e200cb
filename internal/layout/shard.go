package layout

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Sharded file naming follows the record-file convention used by the
// toolchain: a write spec "base@N" expands to N files named
// "base-IIIII-of-NNNNN" with 5-digit zero-padded index and total.

const shardDigits = 5

// ShardedName returns the sharded write spec, e.g. "data@20". The count is
// not padded in the spec form; padding applies to the expanded file names.
func ShardedName(base string, shards int) string {
	return fmt.Sprintf("%s@%d", base, shards)
}

// ShardFile returns the name of shard i of the set, e.g. "data-00007-of-00020".
func ShardFile(base string, i, shards int) string {
	return fmt.Sprintf("%s-%0*d-of-%0*d", base, shardDigits, i, shardDigits, shards)
}

// ShardGlob returns a glob matching every shard of the set,
// e.g. "data-?????-of-00020".
func ShardGlob(base string, shards int) string {
	return fmt.Sprintf("%s-%s-of-%0*d", base, strings.Repeat("?", shardDigits), shardDigits, shards)
}

// ShardNames expands the set to its full file list in index order.
func ShardNames(base string, shards int) []string {
	names := make([]string, shards)
	for i := 0; i < shards; i++ {
		names[i] = ShardFile(base, i, shards)
	}
	return names
}

var shardedSpecRe = regexp.MustCompile(`^(.+)@(\d+)$`)

// ParseShardedName splits a "base@N" spec back into base and count.
func ParseShardedName(spec string) (base string, shards int, err error) {
	m := shardedSpecRe.FindStringSubmatch(spec)
	if m == nil {
		return "", 0, fmt.Errorf("not a sharded spec: %q", spec)
	}
	shards, err = strconv.Atoi(m[2])
	if err != nil || shards <= 0 {
		return "", 0, fmt.Errorf("invalid shard count in %q", spec)
	}
	return m[1], shards, nil
}
