package logging

import (
	"compress/gzip"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewRotatingWriter(t *testing.T) {
	t.Run("appends to an existing file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "test.log")
		if err := os.WriteFile(path, []byte("existing\n"), 0644); err != nil {
			t.Fatal(err)
		}

		rw, err := NewRotatingWriter(path, DefaultRotationConfig())
		if err != nil {
			t.Fatalf("NewRotatingWriter failed: %v", err)
		}
		defer rw.Close()

		if rw.CurrentSize() != int64(len("existing\n")) {
			t.Errorf("CurrentSize() = %d, want %d", rw.CurrentSize(), len("existing\n"))
		}
		if rw.Path() != path {
			t.Errorf("Path() = %q, want %q", rw.Path(), path)
		}
	})

	t.Run("creates parent directories", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "a", "b", "test.log")

		rw, err := NewRotatingWriter(path, DefaultRotationConfig())
		if err != nil {
			t.Fatalf("NewRotatingWriter failed: %v", err)
		}
		defer rw.Close()

		if _, err := os.Stat(path); err != nil {
			t.Errorf("log file not created: %v", err)
		}
	})
}

func TestRotatingWriterRotation(t *testing.T) {
	msg := []byte("this message is long enough to trigger rotation\n")

	t.Run("rotates when size exceeds max", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "test.log")
		rw, err := NewRotatingWriter(path, RotationConfig{MaxBackups: 3})
		if err != nil {
			t.Fatalf("NewRotatingWriter failed: %v", err)
		}
		rw.maxBytes = 100

		for range 5 {
			if _, err := rw.Write(msg); err != nil {
				t.Fatalf("Write failed: %v", err)
			}
		}
		rw.Close()

		if _, err := os.Stat(path + ".1"); err != nil {
			t.Error("backup file .1 was not created")
		}
		info, err := os.Stat(path)
		if err != nil {
			t.Fatalf("current log file missing: %v", err)
		}
		if info.Size() > 100 {
			t.Errorf("current log is %d bytes, want <= 100", info.Size())
		}
	})

	t.Run("keeps only MaxBackups files", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "test.log")
		rw, err := NewRotatingWriter(path, RotationConfig{MaxBackups: 2})
		if err != nil {
			t.Fatalf("NewRotatingWriter failed: %v", err)
		}
		rw.maxBytes = 60

		for range 10 {
			rw.Write(msg)
		}
		rw.Close()

		for _, suffix := range []string{".1", ".2"} {
			if _, err := os.Stat(path + suffix); err != nil {
				t.Errorf("backup %s should exist", suffix)
			}
		}
		if _, err := os.Stat(path + ".3"); err == nil {
			t.Error("backup .3 should not exist")
		}
	})

	t.Run("no backups discards old content", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "test.log")
		rw, err := NewRotatingWriter(path, RotationConfig{MaxBackups: 0})
		if err != nil {
			t.Fatalf("NewRotatingWriter failed: %v", err)
		}
		rw.maxBytes = 40

		rw.Write([]byte("first\n"))
		rw.Write(msg)
		rw.Close()

		if _, err := os.Stat(path + ".1"); err == nil {
			t.Error("backup .1 should not exist with MaxBackups=0")
		}
		data, _ := os.ReadFile(path)
		if strings.Contains(string(data), "first") {
			t.Error("rotated content was kept in the active file")
		}
	})

	t.Run("no rotation when disabled", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "test.log")
		rw, err := NewRotatingWriter(path, RotationConfig{MaxBackups: 3})
		if err != nil {
			t.Fatalf("NewRotatingWriter failed: %v", err)
		}

		for range 100 {
			rw.Write(msg)
		}
		rw.Close()

		if _, err := os.Stat(path + ".1"); err == nil {
			t.Error("backup file should not exist when rotation is disabled")
		}
	})
}

func TestRotatingWriterCompression(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.log")
	rw, err := NewRotatingWriter(path, RotationConfig{MaxBackups: 2, Compress: true})
	if err != nil {
		t.Fatalf("NewRotatingWriter failed: %v", err)
	}
	rw.maxBytes = 20

	rw.Write([]byte("compress me please\n"))
	rw.Write([]byte("second line here\n"))
	rw.Close()

	if _, err := os.Stat(path + ".1"); err == nil {
		t.Error("uncompressed backup should have been removed")
	}

	f, err := os.Open(path + ".1.gz")
	if err != nil {
		t.Fatalf("compressed backup missing: %v", err)
	}
	defer f.Close()
	zr, err := gzip.NewReader(f)
	if err != nil {
		t.Fatalf("gzip.NewReader failed: %v", err)
	}
	data, err := io.ReadAll(zr)
	if err != nil {
		t.Fatalf("reading compressed backup failed: %v", err)
	}
	if string(data) != "compress me please\n" {
		t.Errorf("compressed content = %q", data)
	}
}

func TestRotatingWriterClose(t *testing.T) {
	rw, err := NewRotatingWriter(filepath.Join(t.TempDir(), "test.log"), DefaultRotationConfig())
	if err != nil {
		t.Fatalf("NewRotatingWriter failed: %v", err)
	}

	if err := rw.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if err := rw.Close(); err != nil {
		t.Errorf("second Close failed: %v", err)
	}
	if _, err := rw.Write([]byte("x")); err == nil {
		t.Error("Write after Close should fail")
	}
	if err := rw.Sync(); err != nil {
		t.Errorf("Sync after Close = %v, want nil", err)
	}
}

func TestNewLoggerWithRotation(t *testing.T) {
	t.Run("writes through the rotating writer", func(t *testing.T) {
		dir := t.TempDir()
		logger, err := NewLoggerWithRotation(dir, LevelDebug, DefaultRotationConfig())
		if err != nil {
			t.Fatalf("NewLoggerWithRotation failed: %v", err)
		}
		logger.Debug("step dispatched", "step", "C")
		if err := logger.Close(); err != nil {
			t.Fatalf("Close failed: %v", err)
		}

		data, err := os.ReadFile(filepath.Join(dir, LogFileName))
		if err != nil {
			t.Fatalf("failed to read log: %v", err)
		}
		entries := readEntries(t, data)
		if len(entries) != 1 || entries[0]["step"] != "C" {
			t.Errorf("unexpected entries: %v", entries)
		}
	})

	t.Run("empty dir logs to stderr", func(t *testing.T) {
		logger, err := NewLoggerWithRotation("", LevelInfo, DefaultRotationConfig())
		if err != nil {
			t.Fatalf("NewLoggerWithRotation failed: %v", err)
		}
		if err := logger.Close(); err != nil {
			t.Errorf("Close = %v", err)
		}
	})
}

func TestDefaultRotationConfig(t *testing.T) {
	cfg := DefaultRotationConfig()
	if cfg.MaxSizeMB != 10 || cfg.MaxBackups != 3 || cfg.Compress {
		t.Errorf("DefaultRotationConfig() = %+v", cfg)
	}
}
