package kv

import (
	"os"
	"testing"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dir, err := os.MkdirTemp("", "kv-test-*")
	if err != nil {
		t.Fatalf("mkdir temp: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(dir) })

	s, err := Open(Config{DataDir: dir, FileName: "test.db"})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestPutGet(t *testing.T) {
	s := newTestStore(t)

	key := []byte("key-one")
	value := []byte("value-one")
	if err := s.Put(key, value); err != nil {
		t.Fatalf("put: %v", err)
	}

	got, ok, err := s.Get(key)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !ok {
		t.Fatal("expected key to exist")
	}
	if string(got) != string(value) {
		t.Fatalf("got %q, want %q", got, value)
	}
}

func TestGetMissing(t *testing.T) {
	s := newTestStore(t)
	_, ok, err := s.Get([]byte("missing"))
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if ok {
		t.Fatal("expected key to be missing")
	}
}

func TestPutOverwrites(t *testing.T) {
	s := newTestStore(t)
	key := []byte("key")
	if err := s.Put(key, []byte("first")); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := s.Put(key, []byte("second")); err != nil {
		t.Fatalf("put: %v", err)
	}
	got, _, err := s.Get(key)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(got) != "second" {
		t.Fatalf("got %q, want %q", got, "second")
	}
}

func TestScanIsOrdered(t *testing.T) {
	s := newTestStore(t)
	keys := [][]byte{{0x03}, {0x01}, {0x02}}
	for _, k := range keys {
		if err := s.Put(k, []byte("v")); err != nil {
			t.Fatalf("put: %v", err)
		}
	}

	entries, err := s.Scan()
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("got %d entries, want 3", len(entries))
	}
	for i, want := range [][]byte{{0x01}, {0x02}, {0x03}} {
		if string(entries[i].Key) != string(want) {
			t.Fatalf("entry %d: got key %x, want %x", i, entries[i].Key, want)
		}
	}
}
