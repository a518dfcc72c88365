// Package pool 提供基于 sync.Pool 的泛型对象池，用于复用转码缓冲区.
package pool

import (
	"bytes"
	"sync"
	"sync/atomic"
)

// Pool 是带统计的泛型对象池.
type Pool[T any] struct {
	pool  sync.Pool
	reset func(*T)
	// keep 返回 false 的对象不放回池中
	keep func(T) bool

	gets    atomic.Int64
	puts    atomic.Int64
	news    atomic.Int64
	dropped atomic.Int64
}

// NewPool 创建对象池，reset 与 keep 可为 nil.
func NewPool[T any](newFunc func() T, reset func(*T), keep func(T) bool) *Pool[T] {
	p := &Pool[T]{reset: reset, keep: keep}
	p.pool.New = func() any {
		p.news.Add(1)
		return newFunc()
	}
	return p
}

// Get 取出一个对象.
func (p *Pool[T]) Get() T {
	p.gets.Add(1)
	return p.pool.Get().(T)
}

// Put 归还对象.
func (p *Pool[T]) Put(obj T) {
	if p.keep != nil && !p.keep(obj) {
		p.dropped.Add(1)
		return
	}
	p.puts.Add(1)
	if p.reset != nil {
		p.reset(&obj)
	}
	p.pool.Put(obj)
}

// Stats 返回统计信息.
func (p *Pool[T]) Stats() Stats {
	return Stats{
		Gets:    p.gets.Load(),
		Puts:    p.puts.Load(),
		News:    p.news.Load(),
		Dropped: p.dropped.Load(),
	}
}

// Stats 是对象池统计.
type Stats struct {
	Gets    int64 `json:"gets"`
	Puts    int64 `json:"puts"`
	News    int64 `json:"news"`
	Dropped int64 `json:"dropped"`
}

// HitRate 返回复用率.
func (s Stats) HitRate() float64 {
	if s.Gets == 0 {
		return 0
	}
	return float64(s.Gets-s.News) / float64(s.Gets)
}

// =============================================================================
// 🧱 缓冲区池
// =============================================================================

// NewBufferPool 创建 bytes.Buffer 池.
// 容量超过 maxRetained 的缓冲区不回收，避免单个大帧长期占用内存.
func NewBufferPool(initialSize, maxRetained int) *Pool[*bytes.Buffer] {
	return NewPool(
		func() *bytes.Buffer {
			return bytes.NewBuffer(make([]byte, 0, initialSize))
		},
		func(b **bytes.Buffer) {
			(*b).Reset()
		},
		func(b *bytes.Buffer) bool {
			return b != nil && (maxRetained <= 0 || b.Cap() <= maxRetained)
		},
	)
}
