package util

import (
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMergeInt(t *testing.T) {
	assert.Equal(t, []int{1, 2, 3, 5, 8, 9, 10}, MergeInt([]int{1, 3, 5, 9}, []int{2, 3, 8, 10}))
	assert.Equal(t, []int{1, 2, 3, 4, 5}, MergeInt([]int{1, 2}, []int{3, 4, 5}))
	assert.Equal(t, []int{1, 2, 3, 4, 5}, MergeInt([]int{3, 4, 5}, []int{1, 2}))
	assert.Equal(t, []int{7}, MergeInt(nil, []int{7}))
	assert.Equal(t, []int{7}, MergeInt([]int{7}, []int{}))
	assert.Empty(t, MergeInt(nil, nil))
}

func TestIfElseInt(t *testing.T) {
	assert.Equal(t, 1, IfElseInt(true, 1, 2))
	assert.Equal(t, 2, IfElseInt(false, 1, 2))
}

func TestGetLocalIP(t *testing.T) {
	ip, err := GetLocalIP()
	if err != nil {
		t.Skip("no network interface:", err)
	}
	parsed := net.ParseIP(ip)
	assert.NotNil(t, parsed)
	assert.False(t, parsed.IsLoopback())
}
