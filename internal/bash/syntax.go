package bash

import (
	"bytes"
	"strings"

	"mvdan.cc/sh/v3/syntax"
)

// Export is a single NAME=value pair from an export statement.
type Export struct {
	Name  string
	Value string
}

func parse(line string) (*syntax.File, error) {
	return syntax.NewParser(syntax.Variant(syntax.LangBash)).Parse(strings.NewReader(line), "")
}

// CommandName returns the program name of the first simple command in line.
// Lines that fail to parse fall back to their first whitespace-separated field.
func CommandName(line string) string {
	file, err := parse(line)
	if err == nil && len(file.Stmts) > 0 {
		switch cmd := file.Stmts[0].Cmd.(type) {
		case *syntax.CallExpr:
			if len(cmd.Args) > 0 {
				if lit := cmd.Args[0].Lit(); lit != "" {
					return lit
				}
			}
		case *syntax.DeclClause:
			if cmd.Variant != nil {
				return cmd.Variant.Value
			}
		}
	}

	fields := strings.Fields(line)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// ParseExports returns the NAME=value assignments of every export statement
// in line. Values are returned as written, without expansion.
func ParseExports(line string) []Export {
	file, err := parse(line)
	if err != nil {
		return nil
	}

	var exports []Export
	syntax.Walk(file, func(node syntax.Node) bool {
		decl, ok := node.(*syntax.DeclClause)
		if !ok || decl.Variant == nil || decl.Variant.Value != "export" {
			return true
		}
		for _, assign := range decl.Args {
			if assign.Name == nil || assign.Naked || assign.Value == nil {
				continue
			}
			exports = append(exports, Export{
				Name:  assign.Name.Value,
				Value: printWord(assign.Value),
			})
		}
		return false
	})
	return exports
}

func printWord(word *syntax.Word) string {
	if lit := word.Lit(); lit != "" {
		return lit
	}
	var buf bytes.Buffer
	if err := syntax.NewPrinter().Print(&buf, word); err != nil {
		return ""
	}
	return buf.String()
}
