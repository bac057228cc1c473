package repository

import (
	"context"

	"cloud.google.com/go/firestore"
	"cloud.google.com/go/firestore/apiv1/firestorepb"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"marketplace/pkg/errors"
)

const (
	itemsCollection = "items"
	usersCollection = "users"
)

// translate maps Firestore status codes onto application errors.
func translate(err error, resource, action string) error {
	if err == nil {
		return nil
	}
	if _, ok := errors.As(err); ok {
		return err
	}
	switch status.Code(err) {
	case codes.NotFound:
		return errors.NotFound(resource, err)
	case codes.AlreadyExists:
		return errors.Conflict(resource + " already exists")
	}
	return errors.Internal("Failed to "+action, err)
}

// rawEntries reads an embedded review array straight from document data so
// that entries which no longer decode into the typed structs still count.
func rawEntries(data map[string]interface{}, field string) []map[string]interface{} {
	list, ok := data[field].([]interface{})
	if !ok {
		return nil
	}
	entries := make([]map[string]interface{}, 0, len(list))
	for _, v := range list {
		if m, ok := v.(map[string]interface{}); ok {
			entries = append(entries, m)
		}
	}
	return entries
}

func count(ctx context.Context, query firestore.Query) (int64, error) {
	results, err := query.NewAggregationQuery().WithCount("all").Get(ctx)
	if err != nil {
		return 0, err
	}
	v, ok := results["all"].(*firestorepb.Value)
	if !ok {
		return 0, nil
	}
	return v.GetIntegerValue(), nil
}
