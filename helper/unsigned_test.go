package helper

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRemoveAccents(t *testing.T) {
	assert.Equal(t, "nguyen van an", RemoveAccents("Nguyễn Văn An"))
	assert.Equal(t, "tran thi bich", RemoveAccents("  Trần Thị Bích "))
	assert.Equal(t, "don dep nha cua", RemoveAccents("Dọn dẹp nhà cửa"))
	assert.Equal(t, "", RemoveAccents(""))
	assert.Equal(t, "abc 123", RemoveAccents("ABC 123"))
}
