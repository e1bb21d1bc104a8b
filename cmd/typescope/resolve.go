package main

import (
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/ifabos/typescope/naming"
	"github.com/ifabos/typescope/scope"
)

func (a *app) resolveCommand() *cobra.Command {
	var (
		pkg    string
		scoped string
		render bool
	)

	cmd := &cobra.Command{
		Use:   "resolve TYPE...",
		Short: "Report whether types are in scope, hidden or importable",
		Example: `  typescope resolve --stubs ./stubs --package com.gen java.util.List
  typescope resolve --manifest symbols.yaml --scope com.foo.Widget com.foo.Base.Part`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("package") == (scoped != "") {
				return errors.New("exactly one of --package or --scope is required")
			}
			if err := a.load(); err != nil {
				return err
			}

			h := a.handler()
			p := &printer{w: a.out, format: a.cfg.Output}
			var sh *naming.Shortener
			if render {
				sh = naming.NewShortener(h, pkg, naming.NewImports())
			}

			q := query{Package: pkg, Scope: scoped}
			for _, arg := range args {
				q.Type = arg
				r, err := a.run(h, sh, q)
				if err != nil {
					return err
				}
				if err := p.result(r); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&pkg, "package", "", "resolve at package level in this package")
	cmd.Flags().StringVar(&scoped, "scope", "", "resolve inside the body of this type")
	cmd.Flags().BoolVar(&render, "render", false, "also print the shortest valid reference")
	return cmd
}

// query is one visibility question, at package level or in a type body
type query struct {
	Package string `yaml:"package"`
	Scope   string `yaml:"scope"`
	Type    string `yaml:"type"`
}

// run answers q. With a shortener, the reference spelling is included;
// scoped queries spell references from inside the scope's package.
func (a *app) run(h *scope.Handler, sh *naming.Shortener, q query) (*result, error) {
	if q.Type == "" {
		return nil, errors.New("query without type")
	}
	t, err := a.name(q.Type)
	if err != nil {
		return nil, err
	}

	r := &result{Package: q.Package, Scope: q.Scope, Type: t.String()}
	var st scope.State
	if q.Scope != "" {
		s, err := a.name(q.Scope)
		if err != nil {
			return nil, err
		}
		if st, err = h.VisibilityIn(s, t); err != nil {
			return nil, err
		}
		if sh != nil {
			sh = naming.NewShortener(h, s.Package(), sh.Imports()).In(s)
		}
	} else if st, err = h.VisibilityInPackage(q.Package, t); err != nil {
		return nil, err
	}
	r.State = st.String()

	if sh != nil {
		if r.Reference, err = sh.Reference(t); err != nil {
			return nil, err
		}
	}
	return r, nil
}
