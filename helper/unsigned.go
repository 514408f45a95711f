package helper

import (
	"strings"

	"github.com/gosimple/unidecode"
)

// RemoveAccents chuyển tên có dấu về lowercase không dấu, dùng cho cột name_unsigned
func RemoveAccents(s string) string {
	return strings.ToLower(strings.TrimSpace(unidecode.Unidecode(s)))
}
