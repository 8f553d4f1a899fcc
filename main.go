// Package main provides the entry point for the pdf-ledger CLI application.
package main

import (
	"os"

	"fjacquet/pdf-ledger/cmd/analyze"
	"fjacquet/pdf-ledger/cmd/ask"
	"fjacquet/pdf-ledger/cmd/batch"
	"fjacquet/pdf-ledger/cmd/categorize"
	"fjacquet/pdf-ledger/cmd/convert"
	"fjacquet/pdf-ledger/cmd/extract"
	"fjacquet/pdf-ledger/cmd/root"
	"fjacquet/pdf-ledger/cmd/serve"
)

func init() {
	root.Init()

	root.Cmd.AddCommand(extract.Cmd)
	root.Cmd.AddCommand(convert.Cmd)
	root.Cmd.AddCommand(batch.Cmd)
	root.Cmd.AddCommand(categorize.Cmd)
	root.Cmd.AddCommand(analyze.Cmd)
	root.Cmd.AddCommand(ask.Cmd)
	root.Cmd.AddCommand(serve.Cmd)
}

func main() {
	if err := root.Cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
