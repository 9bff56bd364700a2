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
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestErrorCodes(t *testing.T) {
	err := NewOOMNoCtx()
	require.Equal(t, ErrOOM, err.ErrorCode())
	require.Equal(t, "error: out of memory", err.Error())
	require.True(t, IsMoErrCode(err, ErrOOM))
	require.False(t, IsMoErrCode(err, ErrInternal))

	err = NewIndexOutOfRangeNoCtx(7, 5)
	require.Equal(t, "index 7 out of range [0, 5)", err.Error())
	require.True(t, IsMoErrCode(err, ErrIndexOutOfRange))

	err = NewCapacityOverflow(context.Background(), 1<<62, 8)
	require.True(t, IsMoErrCode(err, ErrCapacityOverflow))

	err = NewInternalErrorNoCtx("bad state %d", 42)
	require.Equal(t, "internal error: bad state 42", err.Error())
}

func TestIsMoErrCodeNonMoErr(t *testing.T) {
	require.True(t, IsMoErrCode(nil, Ok))
	require.False(t, IsMoErrCode(nil, ErrOOM))
	require.False(t, IsMoErrCode(errors.New("plain"), ErrOOM))
}

func TestDisplay(t *testing.T) {
	err := NewZeroSizeTypeNoCtx()
	require.Equal(t, err.Error(), err.Display())
	require.False(t, err.Succeeded())

	detailed := err.WithDetail("while pushing the first element")
	require.Equal(t, err.Error()+": while pushing the first element", detailed.Display())
	require.Equal(t, "while pushing the first element", detailed.Detail())
	require.Empty(t, err.Detail())
}
