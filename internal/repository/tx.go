package repository

import (
	trmgorm "github.com/avito-tech/go-transaction-manager/drivers/gorm/v2"
	"github.com/avito-tech/go-transaction-manager/trm/v2/manager"
	"gorm.io/gorm"
)

// NewGormTransactor returns a Transactor whose transactions are picked up by
// the Postgres stores through trmgorm.DefaultCtxGetter.
func NewGormTransactor(db *gorm.DB) Transactor {
	return manager.Must(trmgorm.NewDefaultFactory(db))
}
