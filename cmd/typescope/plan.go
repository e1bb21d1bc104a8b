package main

import (
	"io"
	"os"
	"sort"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ifabos/typescope/naming"
	"github.com/ifabos/typescope/scope"
)

// Plan declares the types a generation pass will emit and the references
// it needs to spell.
//
//	package: com.gen
//	generated:
//	  - name: com.gen.Model
//	    visibility: public
//	    supertypes: [com.foo.Base]
//	queries:
//	  - scope: com.gen.Model
//	    type: com.foo.Base.Part
//	  - type: java.util.List
type Plan struct {
	Package   string          `yaml:"package"`
	Generated []generatedType `yaml:"generated"`
	Queries   []query         `yaml:"queries"`
}

type generatedType struct {
	Name       string   `yaml:"name"`
	Visibility string   `yaml:"visibility"`
	Supertypes []string `yaml:"supertypes"`
}

func readPlan(r io.Reader) (*Plan, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var p Plan
	if err := dec.Decode(&p); err != nil && err != io.EOF {
		return nil, errors.Wrap(err, "failed to decode plan")
	}
	for i := range p.Queries {
		if p.Queries[i].Scope == "" && p.Queries[i].Package == "" {
			p.Queries[i].Package = p.Package
		}
	}
	return &p, nil
}

func (a *app) planCommand() *cobra.Command {
	var render bool

	cmd := &cobra.Command{
		Use:   "plan FILE",
		Short: "Declare generated types and answer the queries of a plan file",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return errors.Wrap(err, "failed to open plan")
			}
			defer f.Close()

			plan, err := readPlan(f)
			if err != nil {
				return errors.Wrapf(err, "plan %s", args[0])
			}
			if err := a.load(); err != nil {
				return err
			}
			return a.runPlan(plan, render)
		},
	}

	cmd.Flags().BoolVar(&render, "render", false, "print reference spellings and unit headers")
	return cmd
}

func (a *app) runPlan(plan *Plan, render bool) error {
	h := a.handler()
	if err := a.declare(h, plan.Generated); err != nil {
		return err
	}

	p := &printer{w: a.out, format: a.cfg.Output}
	units := make(map[string]*naming.Unit)
	for _, q := range plan.Queries {
		var sh *naming.Shortener
		if render {
			pkg := q.Package
			if q.Scope != "" {
				s, err := a.name(q.Scope)
				if err != nil {
					return err
				}
				pkg = s.Package()
			}
			if units[pkg] == nil {
				units[pkg] = naming.NewUnit(pkg)
			}
			sh = units[pkg].Shortener(h)
		}

		r, err := a.run(h, sh, q)
		if err != nil {
			return err
		}
		if err := p.result(r); err != nil {
			return err
		}
	}

	pkgs := make([]string, 0, len(units))
	for pkg := range units {
		pkgs = append(pkgs, pkg)
	}
	sort.Strings(pkgs)
	for _, pkg := range pkgs {
		text, err := units[pkg].Header()
		if err != nil {
			return err
		}
		if err := p.header(&header{Package: pkg, Text: text}); err != nil {
			return err
		}
	}
	return nil
}

// declare registers the generated types in order.
func (a *app) declare(h *scope.Handler, types []generatedType) error {
	for _, g := range types {
		v, err := scope.ParseVisibility(g.Visibility)
		if err != nil {
			return errors.Wrapf(err, "generated type %s", g.Name)
		}
		t, err := a.name(g.Name)
		if err != nil {
			return err
		}
		if err := h.DeclareGeneratedType(v, t, g.Supertypes); err != nil {
			return err
		}
		a.log.Debug().Str("type", t.String()).Str("visibility", v.String()).Msg("generated type declared")
	}
	return nil
}
