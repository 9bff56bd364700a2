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

// Package vec implements a growable array over an mpool block.
//
// A Vec owns a single contiguous block sized for capacity elements, of
// which the first length are live values. Slots at [length, capacity) are
// reserved storage: they are never read and nothing in them is considered
// a value. Every allocating operation takes the pool to charge, the same
// pool must be used for the whole life of one Vec.
//
// A Vec is not safe for concurrent use. One owner mutates it at a time.
package vec

import (
	"fmt"
	"math"
	"strings"
	"unsafe"

	"github.com/matrixorigin/levec/pkg/common/moerr"
	"github.com/matrixorigin/levec/pkg/common/mpool"
)

const initCapacity = 4

// Vec is a dynamically sized contiguous sequence of T.
// The zero value is an empty vector with no block allocated.
type Vec[T any] struct {
	// data is the owned block, nil iff capacity == 0. Its length is always
	// the full capacity; the length field below tracks the live prefix.
	data     []T
	length   int
	capacity int
}

// New returns an empty vector. No allocation happens until the first push.
func New[T any]() *Vec[T] {
	return &Vec[T]{}
}

func (v *Vec[T]) Length() int {
	return v.length
}

func (v *Vec[T]) Capacity() int {
	return v.capacity
}

func (v *Vec[T]) IsEmpty() bool {
	return v.length == 0
}

// checkPush guards every allocating mutation. Zero-size element types are
// rejected outright: the pool cannot account them and the block math below
// divides by the element size.
func (v *Vec[T]) checkPush(mp *mpool.MPool) {
	var zero T
	if unsafe.Sizeof(zero) == 0 {
		panic(moerr.NewZeroSizeTypeNoCtx())
	}
	if mp == nil {
		panic(moerr.NewInternalErrorNoCtx("vec push does not have an mpool"))
	}
}

// Push appends val, growing the block when full. On a failed growth the
// vector is unchanged: same block, same length, same capacity, every live
// value intact.
func (v *Vec[T]) Push(val T, mp *mpool.MPool) error {
	v.checkPush(mp)
	if v.length == v.capacity {
		if err := v.extend(1, mp); err != nil {
			return err
		}
	}
	v.data[v.length] = val
	v.length++
	return nil
}

// PreExtend ensures room for rows more elements without further
// allocation. The length does not change.
func (v *Vec[T]) PreExtend(rows int, mp *mpool.MPool) error {
	if rows <= 0 {
		return nil
	}
	v.checkPush(mp)
	return v.extend(rows, mp)
}

// extend grows the block so that length+rows elements fit, doubling from
// the initial capacity. Capacity and byte-size arithmetic is
// overflow-checked here and in the pool.
func (v *Vec[T]) extend(rows int, mp *mpool.MPool) error {
	var zero T
	if rows > math.MaxInt-v.length {
		return moerr.NewCapacityOverflowNoCtx(uint64(math.MaxInt), uint64(unsafe.Sizeof(zero)))
	}
	target := v.length + rows
	if target <= v.capacity {
		return nil
	}
	newCap := v.capacity
	if newCap == 0 {
		newCap = initCapacity
	}
	for newCap < target {
		if newCap > math.MaxInt/2 {
			return moerr.NewCapacityOverflowNoCtx(uint64(target), uint64(unsafe.Sizeof(zero)))
		}
		newCap *= 2
	}

	var data []T
	var err error
	if v.capacity == 0 {
		data, err = mpool.Alloc[T](mp, newCap)
	} else {
		data, err = mpool.Realloc(mp, v.data, newCap)
	}
	if err != nil {
		return err
	}
	v.data = data
	v.capacity = newCap
	return nil
}

// Get returns the element at position i, or false when i is out of the
// live prefix.
func (v *Vec[T]) Get(i int) (T, bool) {
	var zero T
	if i < 0 || i >= v.length {
		return zero, false
	}
	return v.data[i], true
}

// At returns the element at position i. Indexing outside the live prefix
// is a programmer error and panics.
func (v *Vec[T]) At(i int) T {
	if i < 0 || i >= v.length {
		panic(moerr.NewIndexOutOfRangeNoCtx(i, v.length))
	}
	return v.data[i]
}

// Pop removes and returns the last element. The vacated slot rejoins the
// reserved suffix and holds no value. Capacity never shrinks.
func (v *Vec[T]) Pop() (T, bool) {
	var zero T
	if v.length == 0 {
		return zero, false
	}
	v.length--
	val := v.data[v.length]
	v.data[v.length] = zero
	return val, true
}

// Reset discards all live elements but keeps the block for reuse.
func (v *Vec[T]) Reset() {
	clear(v.data[:v.length])
	v.length = 0
}

// Free discards all live elements and releases the block back to mp.
// A vector that never allocated makes no release call. Free leaves the
// vector in the empty state, so it is safe to defer unconditionally and
// safe to call twice.
func (v *Vec[T]) Free(mp *mpool.MPool) {
	if v.capacity == 0 {
		v.length = 0
		return
	}
	mpool.Free(mp, v.data)
	v.data = nil
	v.length = 0
	v.capacity = 0
}

// Dup returns a copy of v with its own tightly sized block charged to mp.
func (v *Vec[T]) Dup(mp *mpool.MPool) (*Vec[T], error) {
	w := New[T]()
	if v.length == 0 {
		return w, nil
	}
	data, err := mpool.Alloc[T](mp, v.length)
	if err != nil {
		return nil, err
	}
	copy(data, v.data[:v.length])
	w.data = data
	w.length = v.length
	w.capacity = v.length
	return w, nil
}

// ToSlice returns the live prefix as a freshly copied slice.
func (v *Vec[T]) ToSlice() []T {
	if v.length == 0 {
		return nil
	}
	values := make([]T, v.length)
	copy(values, v.data[:v.length])
	return values
}

func (v *Vec[T]) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "vec[%d/%d][", v.length, v.capacity)
	for i := 0; i < v.length; i++ {
		if i > 0 {
			sb.WriteString(" ")
		}
		fmt.Fprintf(&sb, "%v", v.data[i])
	}
	sb.WriteString("]")
	return sb.String()
}
