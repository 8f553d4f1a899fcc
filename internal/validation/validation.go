// Package validation checks user inputs and the internal consistency of
// extracted ledgers.
package validation

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"fjacquet/pdf-ledger/internal/fileutils"
)

// IsValidPath checks that path exists and is a regular file or a directory.
func IsValidPath(path string) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return fmt.Errorf("path does not exist: %s", path)
	}
	if err != nil {
		return fmt.Errorf("error checking path %s: %w", path, err)
	}
	if !info.IsDir() && !info.Mode().IsRegular() {
		return fmt.Errorf("path %s is neither a file nor a directory", path)
	}
	return nil
}

// IsStatementFile checks that path is a non-empty statement file.
func IsStatementFile(path string) error {
	if err := IsValidPath(path); err != nil {
		return err
	}
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("error checking path %s: %w", path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory, expected a %s statement", path, fileutils.StatementExt)
	}
	if !strings.EqualFold(filepath.Ext(path), fileutils.StatementExt) {
		return fmt.Errorf("%s is not a %s statement", path, fileutils.StatementExt)
	}
	if info.Size() == 0 {
		return fmt.Errorf("statement %s is empty", path)
	}
	return nil
}

// IsValidOutputFormat checks if the given format is supported.
func IsValidOutputFormat(format string) error {
	switch format {
	case "json", "yaml", "text":
		return nil
	default:
		return fmt.Errorf("unsupported output format: %s. Supported formats are 'json', 'yaml', 'text'", format)
	}
}
