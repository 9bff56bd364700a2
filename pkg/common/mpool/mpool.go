// Copyright 2021 - 2024 Matrix Origin
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package mpool

import (
	"fmt"
	"math"
	"math/bits"
	"sync/atomic"
	"unsafe"

	"go.uber.org/zap"

	"github.com/matrixorigin/levec/pkg/common/moerr"
	"github.com/matrixorigin/levec/pkg/logutil"
)

// Any single allocation is limited to the addressable range of the
// platform. Requests above this, or whose byte size does not fit after
// alignment rounding, fail with ErrCapacityOverflow before touching the
// allocator.
const maxAllocBytes = uint64(math.MaxInt)

// MPoolStats tracks allocation traffic of one pool. All counters are
// atomics, the pool may be shared between goroutines.
type MPoolStats struct {
	NumAlloc      atomic.Int64 // number of allocations
	NumFree       atomic.Int64 // number of frees
	NumCurrBytes  atomic.Int64 // bytes currently held
	HighWaterMark atomic.Int64 // max of NumCurrBytes over pool lifetime
}

func (s *MPoolStats) Report(tab string) string {
	return fmt.Sprintf("%salloc: %d, free: %d, current bytes: %d, high water mark: %d",
		tab,
		s.NumAlloc.Load(),
		s.NumFree.Load(),
		s.NumCurrBytes.Load(),
		s.HighWaterMark.Load(),
	)
}

// RecordAlloc accounts a new allocation of sz bytes.
func (s *MPoolStats) RecordAlloc(sz int64) int64 {
	s.NumAlloc.Add(1)
	curr := s.NumCurrBytes.Add(sz)
	for {
		hwm := s.HighWaterMark.Load()
		if curr <= hwm {
			break
		}
		if s.HighWaterMark.CompareAndSwap(hwm, curr) {
			break
		}
	}
	return curr
}

// RecordFree accounts a free of sz bytes.
func (s *MPoolStats) RecordFree(sz int64) int64 {
	s.NumFree.Add(1)
	return s.NumCurrBytes.Add(-sz)
}

// MPool is the allocator capability: hand out blocks, resize them with the
// old contents preserved, take them back, and account every byte while at
// it. A pool with cap 0 is unlimited; a positive cap turns exhaustion into
// an ErrOOM failure, which is what a failed growth step looks like to a
// container built on top.
type MPool struct {
	name  string
	cap   int64
	stats MPoolStats
}

// NewMPool creates a pool. cap is the byte budget, 0 for unlimited.
func NewMPool(name string, cap int64) (*MPool, error) {
	if name == "" {
		return nil, moerr.NewInvalidArgNoCtx("mpool name", name)
	}
	if cap < 0 {
		return nil, moerr.NewInvalidArgNoCtx("mpool cap", cap)
	}
	m := &MPool{name: name, cap: cap}
	logutil.Debug("mpool create",
		zap.String("name", name),
		zap.Int64("cap", cap),
	)
	return m, nil
}

// MustNew is NewMPool for callers that treat failure as a programmer error.
func MustNew(name string) *MPool {
	m, err := NewMPool(name, 0)
	if err != nil {
		panic(err)
	}
	return m
}

// MustNewZero creates an unlimited pool for tests.
func MustNewZero() *MPool {
	return MustNew("zero-cap-pool")
}

func (m *MPool) Name() string {
	return m.name
}

func (m *MPool) Cap() int64 {
	if m.cap == 0 {
		return math.MaxInt64
	}
	return m.cap
}

// CurrNB returns the bytes currently held from this pool.
func (m *MPool) CurrNB() int64 {
	return m.stats.NumCurrBytes.Load()
}

func (m *MPool) Stats() *MPoolStats {
	return &m.stats
}

func (m *MPool) Report() string {
	return fmt.Sprintf("mpool %s: \n%s", m.name, m.stats.Report("    "))
}

// reserve accounts sz bytes, failing with OOM when the budget would be
// exceeded. Nothing is held on failure.
func (m *MPool) reserve(sz int64) error {
	curr := m.stats.NumCurrBytes.Add(sz)
	if m.cap > 0 && curr > m.cap {
		m.stats.NumCurrBytes.Add(-sz)
		return moerr.NewOOMNoCtx()
	}
	m.stats.NumAlloc.Add(1)
	for {
		hwm := m.stats.HighWaterMark.Load()
		if curr <= hwm {
			break
		}
		if m.stats.HighWaterMark.CompareAndSwap(hwm, curr) {
			break
		}
	}
	return nil
}

// Alloc returns a fresh zeroed block of sz bytes.
func (m *MPool) Alloc(sz int) ([]byte, error) {
	if sz < 0 {
		return nil, moerr.NewInvalidArgNoCtx("alloc size", sz)
	}
	if sz == 0 {
		return nil, nil
	}
	if uint64(sz) > maxAllocBytes {
		return nil, moerr.NewCapacityOverflowNoCtx(uint64(sz), 1)
	}
	if err := m.reserve(int64(sz)); err != nil {
		return nil, err
	}
	return make([]byte, sz), nil
}

// Realloc moves old to a block of sz bytes, preserving the old contents as
// the prefix and zeroing the extension. On success the old block is
// released; on failure it is untouched and still owned by the caller.
func (m *MPool) Realloc(old []byte, sz int) ([]byte, error) {
	if sz <= len(old) {
		return nil, moerr.NewInvalidArgNoCtx("realloc size", sz)
	}
	buf, err := m.Alloc(sz)
	if err != nil {
		return nil, err
	}
	copy(buf, old)
	m.Free(old)
	return buf, nil
}

// Free returns a block to the pool. It never fails; freeing nil is a no-op.
func (m *MPool) Free(buf []byte) {
	if len(buf) == 0 {
		return
	}
	m.stats.RecordFree(int64(len(buf)))
}

// checkedSliceSize computes the byte size of a block of n elements with the
// given size and alignment, rejecting any arithmetic overflow and any
// result beyond the platform limit rounded down to a multiple of the
// alignment.
func checkedSliceSize(n int, size, align uintptr) (int64, error) {
	hi, bytes := bits.Mul64(uint64(n), uint64(size))
	alignedLimit := maxAllocBytes - maxAllocBytes%uint64(align)
	if hi != 0 || bytes > alignedLimit {
		return 0, moerr.NewCapacityOverflowNoCtx(uint64(n), uint64(size))
	}
	return int64(bytes), nil
}

// Alloc hands out a block of n slots of T. Slots hold the zero value but
// the caller must treat them as uninitialized storage: nothing in the
// block is live until the caller writes it.
//
// Typed blocks are real []T allocations so the garbage collector keeps
// tracing whatever the caller stores in them; byte blocks cannot be
// reinterpreted for that.
func Alloc[T any](m *MPool, n int) ([]T, error) {
	var zero T
	size, align := unsafe.Sizeof(zero), unsafe.Alignof(zero)
	if size == 0 {
		return nil, moerr.NewZeroSizeTypeNoCtx()
	}
	if n < 0 {
		return nil, moerr.NewInvalidArgNoCtx("alloc count", n)
	}
	if n == 0 {
		return nil, nil
	}
	sz, err := checkedSliceSize(n, size, align)
	if err != nil {
		return nil, err
	}
	if err := m.reserve(sz); err != nil {
		return nil, err
	}
	return make([]T, n), nil
}

// Realloc moves old to a block of n slots, preserving the old slots as the
// prefix. Same failure contract as MPool.Realloc: on error the old block
// is untouched.
func Realloc[T any](m *MPool, old []T, n int) ([]T, error) {
	if n <= len(old) {
		return nil, moerr.NewInvalidArgNoCtx("realloc count", n)
	}
	buf, err := Alloc[T](m, n)
	if err != nil {
		return nil, err
	}
	copy(buf, old)
	Free(m, old)
	return buf, nil
}

// Free returns a typed block. The block is cleared first so no element
// stays reachable through pool-owned storage.
func Free[T any](m *MPool, buf []T) {
	if len(buf) == 0 {
		return
	}
	var zero T
	clear(buf)
	m.stats.RecordFree(int64(len(buf)) * int64(unsafe.Sizeof(zero)))
}
