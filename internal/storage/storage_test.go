// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"
)

// exerciseKV runs the common contract checks against any KV backend.
func exerciseKV(t *testing.T, kv KV) {
	t.Helper()

	// Missing key.
	if _, ok, err := kv.Get("absent"); err != nil || ok {
		t.Fatalf("Get(absent) = ok=%v err=%v, want miss", ok, err)
	}

	// Set then get.
	if err := kv.Set("conversation", `[{"role":"user"}]`); err != nil {
		t.Fatalf("Set: %v", err)
	}
	val, ok, err := kv.Get("conversation")
	if err != nil || !ok {
		t.Fatalf("Get after Set = ok=%v err=%v", ok, err)
	}
	if val != `[{"role":"user"}]` {
		t.Errorf("Get = %q, want stored value", val)
	}

	// Overwrite.
	if err := kv.Set("conversation", "[]"); err != nil {
		t.Fatalf("Set overwrite: %v", err)
	}
	if val, _, _ := kv.Get("conversation"); val != "[]" {
		t.Errorf("Get after overwrite = %q, want %q", val, "[]")
	}

	// Delete is idempotent.
	if err := kv.Delete("conversation"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, ok, _ := kv.Get("conversation"); ok {
		t.Error("Get after Delete reported a hit")
	}
	if err := kv.Delete("conversation"); err != nil {
		t.Fatalf("Delete of missing key: %v", err)
	}
}

func TestMemoryContract(t *testing.T) {
	exerciseKV(t, NewMemory())
}

func TestMemoryClosed(t *testing.T) {
	m := NewMemory()
	if err := m.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := m.Set("k", "v"); !errors.Is(err, ErrClosed) {
		t.Errorf("Set after Close = %v, want ErrClosed", err)
	}
	if _, _, err := m.Get("k"); !errors.Is(err, ErrClosed) {
		t.Errorf("Get after Close = %v, want ErrClosed", err)
	}
}

func TestSQLiteContract(t *testing.T) {
	db, err := OpenSQLite(filepath.Join(t.TempDir(), "state.db"))
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	defer db.Close()

	exerciseKV(t, db)
}

func TestSQLitePersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.db")

	db, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	if err := db.Set("title", "Board Game Night"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := db.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	db, err = OpenSQLite(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer db.Close()

	val, ok, err := db.Get("title")
	if err != nil || !ok {
		t.Fatalf("Get after reopen = ok=%v err=%v", ok, err)
	}
	if val != "Board Game Night" {
		t.Errorf("Get after reopen = %q", val)
	}
}

func TestEncryptedRoundTrip(t *testing.T) {
	inner := NewMemory()
	kv := NewEncryptedKV(inner, "correct horse battery staple")

	exerciseKV(t, kv)

	if err := kv.Set("title", "Dragon Campaign"); err != nil {
		t.Fatalf("Set: %v", err)
	}

	// Underlying store must not hold plaintext.
	raw, ok, err := inner.Get("title")
	if err != nil || !ok {
		t.Fatalf("inner.Get = ok=%v err=%v", ok, err)
	}
	if !strings.HasPrefix(raw, encryptedPrefix) {
		t.Errorf("stored value %q lacks %q prefix", raw, encryptedPrefix)
	}
	if strings.Contains(raw, "Dragon") {
		t.Error("stored value leaks plaintext")
	}

	val, ok, err := kv.Get("title")
	if err != nil || !ok {
		t.Fatalf("Get = ok=%v err=%v", ok, err)
	}
	if val != "Dragon Campaign" {
		t.Errorf("Get = %q", val)
	}
}

func TestEncryptedWrongPassphrase(t *testing.T) {
	inner := NewMemory()
	if err := NewEncryptedKV(inner, "right").Set("k", "secret"); err != nil {
		t.Fatalf("Set: %v", err)
	}

	_, _, err := NewEncryptedKV(inner, "wrong").Get("k")
	if !errors.Is(err, ErrDecryptionFailed) {
		t.Errorf("Get with wrong passphrase = %v, want ErrDecryptionFailed", err)
	}
}

func TestEncryptedPlaintextPassthrough(t *testing.T) {
	inner := NewMemory()
	if err := inner.Set("legacy", "written before encryption"); err != nil {
		t.Fatalf("Set: %v", err)
	}

	val, ok, err := NewEncryptedKV(inner, "pw").Get("legacy")
	if err != nil || !ok {
		t.Fatalf("Get = ok=%v err=%v", ok, err)
	}
	if val != "written before encryption" {
		t.Errorf("Get = %q", val)
	}
}

func TestEncryptedCorruptCiphertext(t *testing.T) {
	inner := NewMemory()
	if err := inner.Set("k", encryptedPrefix+"not-base64!!"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if _, _, err := NewEncryptedKV(inner, "pw").Get("k"); !errors.Is(err, ErrInvalidCiphertext) {
		t.Errorf("Get corrupt = %v, want ErrInvalidCiphertext", err)
	}
}
