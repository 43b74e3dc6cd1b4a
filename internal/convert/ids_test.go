package convert

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIDAllocatorStartsAtOne(t *testing.T) {
	var ids IDAllocator

	assert.Equal(t, int64(1), ids.NextChanID())
	assert.Equal(t, int64(2), ids.NextChanID())
	assert.Equal(t, int64(3), ids.NextChanID())
}

func TestIDAllocatorCountersAreIndependent(t *testing.T) {
	var ids IDAllocator

	assert.Equal(t, int64(1), ids.NextChanID())
	assert.Equal(t, int64(2), ids.NextChanID())
	assert.Equal(t, int64(1), ids.NextInstID())
	assert.Equal(t, int64(1), ids.NextWfID())
	assert.Equal(t, int64(2), ids.NextWfID())
	assert.Equal(t, int64(3), ids.NextChanID())
}
