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

package moerr

import (
	"context"
	"fmt"
)

const (
	// 0 is OK, not an error.
	Ok uint16 = 0

	// Internal errors.
	ErrInternal uint16 = 20101
	ErrOOM      uint16 = 20103

	// Size and bounds errors.
	ErrCapacityOverflow uint16 = 20201
	ErrIndexOutOfRange  uint16 = 20202

	// Invalid input.
	ErrInvalidArg   uint16 = 20301
	ErrZeroSizeType uint16 = 20302
)

type errorMsgItem struct {
	errorMsgOrFormat string
}

var errorMsgRefer = map[uint16]errorMsgItem{
	ErrInternal:         {"internal error: %s"},
	ErrOOM:              {"error: out of memory"},
	ErrCapacityOverflow: {"capacity overflow: %d elements of size %d"},
	ErrIndexOutOfRange:  {"index %d out of range [0, %d)"},
	ErrInvalidArg:       {"invalid argument %s, bad value %s"},
	ErrZeroSizeType:     {"zero-size element types are not supported"},
}

type Error struct {
	code    uint16
	message string
	detail  string
}

func (e *Error) Error() string {
	return e.message
}

func (e *Error) Detail() string {
	return e.detail
}

func (e *Error) Display() string {
	if len(e.detail) == 0 {
		return e.message
	}
	return fmt.Sprintf("%s: %s", e.message, e.detail)
}

// WithDetail returns a copy of e carrying extra context for Display.
func (e *Error) WithDetail(detail string) *Error {
	ne := *e
	ne.detail = detail
	return &ne
}

func (e *Error) ErrorCode() uint16 {
	return e.code
}

func (e *Error) Succeeded() bool {
	return e.code == Ok
}

func newError(code uint16, args ...any) *Error {
	item, has := errorMsgRefer[code]
	if !has {
		panic(NewInternalErrorNoCtx("missing error code: %d", code))
	}
	if len(args) == 0 {
		return &Error{
			code:    code,
			message: item.errorMsgOrFormat,
		}
	}
	return &Error{
		code:    code,
		message: fmt.Sprintf(item.errorMsgOrFormat, args...),
	}
}

// IsMoErrCode reports whether err is a moerr with the given code.
// A nil error matches Ok.
func IsMoErrCode(err error, rc uint16) bool {
	if err == nil {
		return rc == Ok
	}
	me, ok := err.(*Error)
	if !ok {
		return false
	}
	return me.code == rc
}

func NewInternalError(ctx context.Context, msg string, args ...any) *Error {
	return newError(ErrInternal, fmt.Sprintf(msg, args...))
}

func NewInternalErrorNoCtx(msg string, args ...any) *Error {
	return newError(ErrInternal, fmt.Sprintf(msg, args...))
}

func NewOOM(ctx context.Context) *Error {
	return newError(ErrOOM)
}

func NewOOMNoCtx() *Error {
	return newError(ErrOOM)
}

func NewCapacityOverflow(ctx context.Context, count, size uint64) *Error {
	return newError(ErrCapacityOverflow, count, size)
}

func NewCapacityOverflowNoCtx(count, size uint64) *Error {
	return newError(ErrCapacityOverflow, count, size)
}

func NewIndexOutOfRange(ctx context.Context, idx, length int) *Error {
	return newError(ErrIndexOutOfRange, idx, length)
}

func NewIndexOutOfRangeNoCtx(idx, length int) *Error {
	return newError(ErrIndexOutOfRange, idx, length)
}

func NewInvalidArg(ctx context.Context, arg string, val any) *Error {
	return newError(ErrInvalidArg, arg, fmt.Sprintf("%v", val))
}

func NewInvalidArgNoCtx(arg string, val any) *Error {
	return newError(ErrInvalidArg, arg, fmt.Sprintf("%v", val))
}

func NewZeroSizeType(ctx context.Context) *Error {
	return newError(ErrZeroSizeType)
}

func NewZeroSizeTypeNoCtx() *Error {
	return newError(ErrZeroSizeType)
}
