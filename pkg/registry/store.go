package registry

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"

	"github.com/chatbox-community/mcpsync/pkg/errors"
)

const (
	// BackupSuffix is appended to the registry path for the pre-write copy.
	BackupSuffix = ".bak"

	filePermissions = 0o644
	dirPermissions  = 0o755
)

// Load parses the registry document at path. A missing file is not an
// error: the first run starts from a bootstrapped empty document. Malformed
// JSON is a content error; any other read failure is an access error.
func Load(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return New(), nil
		}
		return nil, errors.WrapIO("read", path, err)
	}

	reg := &Registry{}
	if err := json.Unmarshal(data, reg); err != nil {
		return nil, errors.WrapParse("json", path, err)
	}
	return reg, nil
}

// Backup copies the file at path to path+".bak", clobbering any previous
// backup and carrying the file mode over. A missing source is a no-op.
// Callers treat a backup failure as non-fatal: losing the merge result is a
// worse outcome than losing the backup.
func Backup(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return errors.WrapIO("stat", path, err)
	}

	src, err := os.Open(path)
	if err != nil {
		return errors.WrapIO("read", path, err)
	}
	defer func() { _ = src.Close() }()

	backupPath := path + BackupSuffix
	dst, err := os.OpenFile(backupPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return errors.WrapIO("create", backupPath, err)
	}

	if _, err := io.Copy(dst, src); err != nil {
		_ = dst.Close()
		return errors.WrapIO("copy", backupPath, err)
	}
	if err := dst.Close(); err != nil {
		return errors.WrapIO("write", backupPath, err)
	}

	// copy2-style metadata preservation, best effort
	_ = os.Chmod(backupPath, info.Mode().Perm())
	_ = os.Chtimes(backupPath, info.ModTime(), info.ModTime())
	return nil
}

// Save persists the registry to path, creating parent directories as
// needed. The document is fully serialized in memory before any byte hits
// the disk, so an interrupted save never leaves a partially written file
// growing in place of the registry. Output is 2-space indented UTF-8 with
// non-ASCII characters kept verbatim.
func Save(reg *Registry, path string) error {
	data, err := Encode(reg)
	if err != nil {
		return err
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, dirPermissions); err != nil {
			return errors.WrapIO("create", dir, err)
		}
	}

	if err := os.WriteFile(path, data, filePermissions); err != nil {
		return errors.WrapIO("write", path, err)
	}
	return nil
}

// Encode serializes the registry in the on-disk format.
func Encode(reg *Registry) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(reg); err != nil {
		return nil, errors.WrapParse("json", "registry", err)
	}
	return buf.Bytes(), nil
}
