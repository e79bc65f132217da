// Copyright (C) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package cache

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSetAddAndContains(t *testing.T) {
	require := require.New(t)

	set := NewSet[string](4)
	require.True(set.Add("a"))
	require.False(set.Add("a"), "second add of the same member reports present")
	require.True(set.Contains("a"))
	require.False(set.Contains("b"))
	require.Equal(1, set.Len())
}

func TestSetFIFOEviction(t *testing.T) {
	require := require.New(t)

	set := NewSet[string](2)
	require.True(set.Add("a"))
	require.True(set.Add("b"))
	require.True(set.Add("c"), "exceeding capacity evicts the oldest member")

	require.False(set.Contains("a"))
	require.True(set.Contains("b"))
	require.True(set.Contains("c"))
	require.Equal(2, set.Len())

	// An evicted member can be re-added.
	require.True(set.Add("a"))
	require.False(set.Contains("b"))
}
