// Package common contains shared functionality for command handlers
package common

import (
	"context"
	"errors"
	"fmt"

	"fjacquet/pdf-ledger/internal/logging"
	"fjacquet/pdf-ledger/internal/parser"
)

// ErrInvalidFormat is returned when validation rejects the input file.
var ErrInvalidFormat = errors.New("the file is not in a valid format")

// ProcessFile converts inputFile to outputFile with p, validating the input
// first when validate is set.
func ProcessFile(ctx context.Context, p parser.FullParser, inputFile, outputFile string, validate bool, log logging.Logger) error {
	log = logging.OrDefault(log)
	p.SetLogger(log)

	if validate {
		log.Info("Validating format...", logging.F(logging.FieldInputFile, inputFile))
		valid, err := p.ValidateFormat(ctx, inputFile)
		if err != nil {
			return fmt.Errorf("error validating file: %w", err)
		}
		if !valid {
			return fmt.Errorf("%s: %w", inputFile, ErrInvalidFormat)
		}
		log.Info("Validation successful.")
	}

	if err := p.ConvertToCSV(ctx, inputFile, outputFile); err != nil {
		return fmt.Errorf("error converting to CSV: %w", err)
	}
	log.Info("Conversion completed successfully!",
		logging.F(logging.FieldInputFile, inputFile),
		logging.F(logging.FieldOutputFile, outputFile))
	return nil
}
