package main

import (
	"github.com/go-go-golems/turncheck/pkg/analysis/turnfieldlint"
	"golang.org/x/tools/go/analysis/singlechecker"
)

// turncheck-lint is a vettool for code that handles turn records:
//
//	go vet -vettool=$(which turncheck-lint) ./...
func main() {
	singlechecker.Main(turnfieldlint.Analyzer)
}
