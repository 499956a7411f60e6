package config

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// StudentSnapshotKey returns the cache key holding the JSON snapshot of all students
func (r *CacheKeyStruct) StudentSnapshotKey() string {
	return "students:snapshot"
}

var CacheKey = NewCacheKeyStruct()
