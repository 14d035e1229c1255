package turnfieldlint

import (
	"go/ast"
	"go/token"
	"go/types"
	"strings"

	"golang.org/x/tools/go/analysis"
	"golang.org/x/tools/go/analysis/passes/inspect"
	"golang.org/x/tools/go/ast/inspector"
)

// DefaultTurnType is the fully-qualified named type of a turn record.
const DefaultTurnType = "github.com/go-go-golems/turncheck/pkg/turns.Turn"

var turnTypeFlag string

// fieldMethods are the Turn accessors whose first argument is a field name.
var fieldMethods = map[string]bool{
	"Has":    true,
	"Get":    true,
	"String": true,
	"Int":    true,
	"Map":    true,
}

// Analyzer reports raw string literals used as turn field names.
//
// Field names are spelled once as constants in the turns package (turns.FieldTurnID,
// ...). A typo in a literal like turn["speeker"] compiles and silently reads nothing,
// so every field name used with the turn type must be a constant or a variable.
var Analyzer = &analysis.Analyzer{
	Name:     "turnfieldlint",
	Doc:      "require turn field names to be constants or variables, not raw string literals",
	Requires: []*analysis.Analyzer{inspect.Analyzer},
	Run:      run,
}

func init() {
	Analyzer.Flags.StringVar(
		&turnTypeFlag,
		"turntype",
		DefaultTurnType,
		`fully-qualified named type like "github.com/go-go-golems/turncheck/pkg/turns.Turn"`,
	)
}

func run(pass *analysis.Pass) (any, error) {
	wantPkgPath, wantName, ok := splitQualifiedType(turnTypeFlag)
	if !ok {
		return nil, nil
	}
	isTurn := func(e ast.Expr) bool {
		return namedTypeMatches(pass.TypesInfo.TypeOf(e), wantPkgPath, wantName)
	}

	insp := pass.ResultOf[inspect.Analyzer].(*inspector.Inspector)
	nodeFilter := []ast.Node{
		(*ast.IndexExpr)(nil),
		(*ast.CallExpr)(nil),
		(*ast.CompositeLit)(nil),
	}

	insp.Preorder(nodeFilter, func(n ast.Node) {
		switch n := n.(type) {
		case *ast.IndexExpr:
			if isTurn(n.X) && isStringLiteral(n.Index) {
				pass.Reportf(n.Lbrack, `turn field %s must be a constant, not a string literal`, literalValue(n.Index))
			}

		case *ast.CallExpr:
			sel, ok := n.Fun.(*ast.SelectorExpr)
			if !ok || !fieldMethods[sel.Sel.Name] || len(n.Args) == 0 {
				return
			}
			selection := pass.TypesInfo.Selections[sel]
			if selection == nil || selection.Kind() != types.MethodVal || !isTurn(sel.X) {
				return
			}
			if isStringLiteral(n.Args[0]) {
				pass.Reportf(n.Args[0].Pos(), `turn field %s must be a constant, not a string literal`, literalValue(n.Args[0]))
			}

		case *ast.CompositeLit:
			if !isTurn(n) {
				return
			}
			for _, elt := range n.Elts {
				kv, ok := elt.(*ast.KeyValueExpr)
				if ok && isStringLiteral(kv.Key) {
					pass.Reportf(kv.Key.Pos(), `turn field %s must be a constant, not a string literal`, literalValue(kv.Key))
				}
			}
		}
	})

	return nil, nil
}

func isStringLiteral(e ast.Expr) bool {
	lit, ok := unwrapParens(e).(*ast.BasicLit)
	return ok && lit.Kind == token.STRING
}

func literalValue(e ast.Expr) string {
	if lit, ok := unwrapParens(e).(*ast.BasicLit); ok {
		return lit.Value
	}
	return ""
}

func namedTypeMatches(t types.Type, wantPkgPath, wantName string) bool {
	if p, ok := t.(*types.Pointer); ok {
		t = p.Elem()
	}
	named, ok := t.(*types.Named)
	if !ok {
		return false
	}

	if wantName != "" && named.Obj().Name() != wantName {
		return false
	}

	if wantPkgPath == "" {
		return true
	}

	p := named.Obj().Pkg()
	return p != nil && p.Path() == wantPkgPath
}

func unwrapParens(e ast.Expr) ast.Expr {
	for {
		p, ok := e.(*ast.ParenExpr)
		if !ok {
			return e
		}
		e = p.X
	}
}

func splitQualifiedType(s string) (string, string, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", "", false
	}
	i := strings.LastIndex(s, ".")
	if i <= 0 || i >= len(s)-1 {
		return "", "", false
	}
	return s[:i], s[i+1:], true
}
