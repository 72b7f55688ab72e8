package postgres

import (
	"fmt"

	"gorm.io/gorm"
)

// getDB resolves the handle for a query: the transaction when one is in
// flight, the base connection otherwise.
func getDB(db, tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return db
}

// handleDBError wraps database errors with the failed operation. The original
// error stays in the chain so callers can still test for
// gorm.ErrRecordNotFound with errors.Is.
func handleDBError(err error, operation string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s failed: %w", operation, err)
}

// inTransaction reports whether the handle is bound to an open transaction,
// either passed explicitly or through a WithTransaction-bound aggregate.
func inTransaction(db *gorm.DB) bool {
	if db.Statement == nil {
		return false
	}
	_, ok := db.Statement.ConnPool.(gorm.TxCommitter)
	return ok
}

// applyPagination applies limit/offset when set.
func applyPagination(query *gorm.DB, limit, offset int) *gorm.DB {
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}
	return query
}
