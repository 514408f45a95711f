package repository

import (
	"database/sql"

	"gorm.io/gorm"
)

// TxManager mở một transaction bao quanh mọi thao tác ghi của một request.
// *gorm.DB thỏa interface này; test thay bằng mock gọi thẳng fc(nil).
type TxManager interface {
	Transaction(fc func(tx *gorm.DB) error, opts ...*sql.TxOptions) error
}
