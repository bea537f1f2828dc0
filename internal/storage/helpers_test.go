// ABOUTME: Shared test helpers for storage tests.
// ABOUTME: Provides per-backend setup functions and record builders.
package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/dgraph-io/badger/v3"
	"github.com/harperreed/healthlog/internal/models"
)

// setupTestDB creates a SQLite store in a temp directory.
func setupTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := Open(filepath.Join(t.TempDir(), "healthlog.db"))
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	return db
}

// setupCSVStore creates a CSV store in a temp directory.
func setupCSVStore(t *testing.T) *CSVStore {
	t.Helper()

	s, err := NewCSVStore(filepath.Join(t.TempDir(), CSVFileName))
	if err != nil {
		t.Fatalf("Failed to create CSV store: %v", err)
	}
	return s
}

// setupBadgerStore creates an in-memory Badger store.
func setupBadgerStore(t *testing.T) *BadgerStore {
	t.Helper()

	s, err := openBadger(badger.DefaultOptions("").WithInMemory(true))
	if err != nil {
		t.Fatalf("Failed to open badger: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// setupS3Store creates an S3 store over an in-memory fake client.
func setupS3Store(t *testing.T) (*S3Store, *fakeS3) {
	t.Helper()

	client := newFakeS3()
	return NewS3Store(client, "test-bucket", ""), client
}

// day parses a YYYY-MM-DD date or fails the test.
func day(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := models.ParseDate(s)
	if err != nil {
		t.Fatalf("bad test date %q: %v", s, err)
	}
	return d
}

// rec builds a record for a test date.
func rec(t *testing.T, date string, exercise int, sleep float64, mood models.Mood, memo string) models.Record {
	t.Helper()
	return models.NewRecord(day(t, date), exercise, sleep, mood, memo)
}

// fakeS3 is an in-memory stand-in for the S3 GetObject/PutObject calls.
type fakeS3 struct {
	mu      sync.Mutex
	objects map[string][]byte
	getErr  error
	putErr  error
	puts    int
}

func newFakeS3() *fakeS3 {
	return &fakeS3{objects: make(map[string][]byte)}
}

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.getErr != nil {
		return nil, f.getErr
	}
	data, ok := f.objects[*in.Bucket+"/"+*in.Key]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.putErr != nil {
		return nil, f.putErr
	}
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	f.objects[*in.Bucket+"/"+*in.Key] = data
	f.puts++
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) object(bucket, key string) ([]byte, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.objects[bucket+"/"+key]
	return data, ok
}
