// Package txn runs multi-document MongoDB operations atomically, falling
// back to non-transactional execution on deployments that don't support
// transactions (standalone servers, some DocumentDB configurations).
package txn

import (
	"context"
	"strings"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Func receives a context that is a mongo.SessionContext when running inside
// a transaction and the original context otherwise. Use it for every database
// operation in the body.
type Func func(ctx context.Context) error

// Run executes fn within a MongoDB transaction if possible. If transactions
// are not supported it runs fn without one, logging a warning when log is
// non-nil.
func Run(ctx context.Context, db *mongo.Database, log *zap.Logger, fn Func) error {
	client := db.Client()

	session, err := client.StartSession()
	if err != nil {
		if log != nil {
			log.Warn("failed to start session, running without transaction",
				zap.Error(err))
		}
		return fn(ctx)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})

	if err != nil {
		if IsNotSupported(err) {
			if log != nil {
				log.Warn("transactions not supported, running without transaction",
					zap.Error(err))
			}
			return fn(ctx)
		}
		return err
	}

	return nil
}

// IsNotSupported reports whether err indicates the deployment cannot run
// multi-document transactions.
//
// Known error codes:
//   - 20: "Transaction numbers are only allowed on a replica set member or mongos"
//   - 51: IllegalOperation
//   - 263: "Cannot run 'aggregate' in a multi-document transaction"
func IsNotSupported(err error) bool {
	if err == nil {
		return false
	}

	if cmdErr, ok := err.(mongo.CommandError); ok {
		switch cmdErr.Code {
		case 20, 51, 263:
			return true
		}
	}

	// Message-based detection covers MongoDB and DocumentDB variations.
	// Require two keyword matches to avoid false positives.
	errStr := strings.ToLower(err.Error())
	transactionKeywords := []string{
		"transaction",
		"replica set",
		"session",
		"not supported",
		"illegal operation",
	}

	matchCount := 0
	for _, kw := range transactionKeywords {
		if strings.Contains(errStr, kw) {
			matchCount++
		}
	}

	return matchCount >= 2
}
