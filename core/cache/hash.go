package cache

import (
	"github.com/minio/highwayhash"
)

var hashKey = []byte("depcheck:content:highwayhash:key")

// Hash returns the 64-bit HighwayHash of data.
func Hash(data []byte) (uint64, error) {
	hash, err := highwayhash.New64(hashKey)
	if err != nil {
		return 0, err
	}
	_, err = hash.Write(data)
	return hash.Sum64(), err
}
