package atomix

import (
	"strconv"
	"testing"
)

var benchKeys [128]string

func init() {
	for i := range benchKeys {
		benchKeys[i] = strconv.Itoa(i)
	}
}

func BenchmarkDictFind(b *testing.B) {
	b.ReportAllocs()
	d := NewDict[string, int](WithBuckets(64))
	for i := range benchKeys {
		d.InsertOrAssign(benchKeys[i], i)
	}
	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		i := 0
		for pb.Next() {
			_, _ = d.Find(benchKeys[i])
			i++
			if i >= len(benchKeys) {
				i = 0
			}
		}
	})
}

func BenchmarkDictInsertOrAssign(b *testing.B) {
	b.ReportAllocs()
	d := NewDict[string, int](WithBuckets(64))
	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		i := 0
		for pb.Next() {
			d.InsertOrAssign(benchKeys[i], i)
			i++
			if i >= len(benchKeys) {
				i = 0
			}
		}
	})
}

func BenchmarkDictTryInsertRemove(b *testing.B) {
	b.ReportAllocs()
	d := NewDict[int, int](WithBuckets(64))
	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		i := 0
		for pb.Next() {
			d.TryInsert(i, i)
			d.Remove(i)
			i++
			if i >= 1024 {
				i = 0
			}
		}
	})
}

func BenchmarkStackPushPop(b *testing.B) {
	b.ReportAllocs()
	s := NewStack[int](1024)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		s.Push(i)
		s.Pop()
	}
}

func BenchmarkSequenceNext(b *testing.B) {
	b.ReportAllocs()
	var s Sequence[uint64]
	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			_ = s.Next()
		}
	})
}

func BenchmarkRingPushPop(b *testing.B) {
	b.ReportAllocs()
	r := NewRing[int](1024)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		r.Push(i)
		r.Pop()
	}
}
