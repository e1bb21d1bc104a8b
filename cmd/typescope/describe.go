package main

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/ifabos/typescope/symtab"
)

func (a *app) describeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "describe [TYPE...]",
		Short: "Describe the symbol table or individual types",
		Long: `Describe the symbol table or individual types.

Types are given by canonical name, or by simple name when only one
type in the symbol table has that name.`,
		RunE: func(_ *cobra.Command, args []string) error {
			if err := a.load(); err != nil {
				return err
			}
			if len(args) == 0 {
				return a.describeRepository()
			}
			for _, arg := range args {
				if err := a.describeType(arg); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func (a *app) describeRepository() error {
	if _, err := fmt.Fprintln(a.out, a.repo.Describe()); err != nil {
		return err
	}
	for _, pkg := range a.repo.Packages() {
		fmt.Fprintf(a.out, "package %s\n", pkg.Name())
		for _, t := range pkg.Types() {
			printTree(a, t, 1)
		}
	}
	return nil
}

func printTree(a *app, t *symtab.TypeDef, depth int) {
	fmt.Fprintf(a.out, "%s%s %s\n", strings.Repeat("  ", depth), t.Kind().Keyword(), t.Name())
	for _, nested := range t.NestedTypes() {
		printTree(a, nested, depth+1)
	}
}

// lookupType finds a type by canonical name, falling back to a search of
// the whole symbol table for a unique simple name.
func (a *app) lookupType(name string) (*symtab.TypeDef, error) {
	t, err := a.repo.LookupTypeDef(name)
	if err == nil || strings.Contains(name, ".") {
		return t, err
	}

	var ids []string
	for _, obj := range a.repo.LookupName(name, -1, symtab.DK_ALL) {
		if found, ok := obj.(*symtab.TypeDef); ok {
			t = found
			ids = append(ids, found.Id())
		}
	}
	switch len(ids) {
	case 0:
		return nil, err
	case 1:
		return t, nil
	}
	return nil, errors.Errorf("type name %s is ambiguous: %s", name, strings.Join(ids, ", "))
}

func (a *app) describeType(name string) error {
	t, err := a.lookupType(name)
	if err != nil {
		return err
	}
	ancestors, err := a.repo.Ancestors(t.Id())
	if err != nil {
		return err
	}

	fmt.Fprintln(a.out, t.Describe())
	if len(ancestors) > 0 {
		fmt.Fprintf(a.out, "  ancestors: %s\n", strings.Join(ancestors, ", "))
	}
	for _, nested := range t.NestedTypes() {
		fmt.Fprintf(a.out, "  nested: %s\n", nested.Describe())
	}
	return nil
}
