package cache

import "testing"

func BenchmarkCacheGet(b *testing.B) {
	c := New[uint32, uint64](1000)
	for i := uint32(0); i < 100; i++ {
		c.Set(i, uint64(i))
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c.Get(50)
	}
}

func BenchmarkCacheSetEvict(b *testing.B) {
	c := New[uint32, uint64](64)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c.Set(uint32(i), uint64(i))
	}
}
