package storage

import (
	"context"
	"io"
	"time"
)

// Package storage holds the object store abstraction used for generated
// report workbooks. Implementations stream content and never touch local disk.

// XLSXContentType is the content type for uploaded workbooks.
const XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// PutOptions define optional parameters for uploading objects.
// Size should be the exact number of bytes if known; -1 lets the backend
// buffer or chunk as it supports.
type PutOptions struct {
	Size        int64
	ContentType string
	Metadata    map[string]string
}

// ObjectInfo contains basic information about a stored object.
type ObjectInfo struct {
	Key          string
	Size         int64
	ETag         string
	ContentType  string
	LastModified time.Time
}

// ObjectStore is an S3-compatible object storage client.
type ObjectStore interface {
	// Put uploads an object under the given key from the reader.
	Put(ctx context.Context, key string, r io.Reader, opt PutOptions) (ObjectInfo, error)
	// Get retrieves an object's content as a streaming reader alongside its info.
	Get(ctx context.Context, key string) (io.ReadCloser, ObjectInfo, error)
	// Delete removes an object by key.
	Delete(ctx context.Context, key string) error
	// PresignGet returns a time-limited download URL for the object.
	PresignGet(ctx context.Context, key string, expiry time.Duration) (string, error)
}

// ReportKey builds the object key for a report workbook.
func ReportKey(reportID string) string {
	return "reports/" + reportID + ".xlsx"
}
