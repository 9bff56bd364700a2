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

package vec

import "iter"

// Drain returns a consuming iterator. Every yielded element is removed
// from the vector by the same mechanics as Pop, so values arrive in
// reverse insertion order: last pushed, first yielded. Breaking out early
// keeps the remaining prefix live; resuming a new Drain continues where
// the previous one stopped. The block is not released, use Free for that.
func (v *Vec[T]) Drain() iter.Seq[T] {
	return func(yield func(T) bool) {
		for {
			val, ok := v.Pop()
			if !ok {
				return
			}
			if !yield(val) {
				return
			}
		}
	}
}

// Iter returns a read-only iterator over the live prefix in position
// order. The sequence is restartable and never touches slots at or beyond
// the current length. The vector must not be mutated during iteration.
func (v *Vec[T]) Iter() iter.Seq[T] {
	return func(yield func(T) bool) {
		for i := 0; i < v.length; i++ {
			if !yield(v.data[i]) {
				return
			}
		}
	}
}

// All is Iter with positions.
func (v *Vec[T]) All() iter.Seq2[int, T] {
	return func(yield func(int, T) bool) {
		for i := 0; i < v.length; i++ {
			if !yield(i, v.data[i]) {
				return
			}
		}
	}
}
