// Package storeutil has helpers shared by the Mongo-backed stores.
package storeutil

import "go.mongodb.org/mongo-driver/mongo/options"

// DefaultPageSize applies when a caller does not supply a limit.
const DefaultPageSize = 20

// Paginate builds find options selecting a 1-based page of results.
// Non-positive limit and page fall back to DefaultPageSize and page 1.
func Paginate(limit, page int64) *options.FindOptions {
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if page < 1 {
		page = 1
	}
	return options.Find().SetLimit(limit).SetSkip((page - 1) * limit)
}
