package hash

import (
	"encoding/binary"
	"encoding/hex"

	"github.com/cespare/xxhash/v2"
	"github.com/spaolacci/murmur3"
)

// Hash returns the hash value of data.
func Hash(data []byte) uint64 {
	return murmur3.Sum64(data)
}

// Shard maps key onto one of n shards. n must be positive.
func Shard(key string, n int) int {
	return int(Hash([]byte(key)) % uint64(n))
}

// Digest returns a stable hex fingerprint of an ordered list of lines.
func Digest(lines []string) string {
	d := xxhash.New()
	for _, line := range lines {
		_, _ = d.WriteString(line)
		_, _ = d.Write([]byte{'\n'})
	}
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, d.Sum64())
	return hex.EncodeToString(buf)
}
