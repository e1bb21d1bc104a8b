package main

import (
	"fmt"
	"io"

	"github.com/francoispqt/gojay"
)

// result is the answer to one visibility query
type result struct {
	Scope     string
	Package   string
	Type      string
	State     string
	Reference string
}

// MarshalJSONObject implements gojay.MarshalerJSONObject
func (r *result) MarshalJSONObject(enc *gojay.Encoder) {
	if r.Scope != "" {
		enc.StringKey("scope", r.Scope)
	} else {
		enc.StringKey("package", r.Package)
	}
	enc.StringKey("type", r.Type)
	enc.StringKey("state", r.State)
	enc.StringKeyOmitEmpty("reference", r.Reference)
}

// IsNil implements gojay.MarshalerJSONObject
func (r *result) IsNil() bool {
	return r == nil
}

func (r *result) location() string {
	if r.Scope != "" {
		return r.Scope
	}
	if r.Package == "" {
		return "<unnamed>"
	}
	return r.Package
}

// header is the rendered header of one generated compilation unit
type header struct {
	Package string
	Text    string
}

// MarshalJSONObject implements gojay.MarshalerJSONObject
func (h *header) MarshalJSONObject(enc *gojay.Encoder) {
	enc.StringKey("package", h.Package)
	enc.StringKey("header", h.Text)
}

// IsNil implements gojay.MarshalerJSONObject
func (h *header) IsNil() bool {
	return h == nil
}

// printer writes results either as aligned text lines or as one JSON
// object per line.
type printer struct {
	w      io.Writer
	format string
}

func (p *printer) result(r *result) error {
	if p.format == outputJSON {
		return p.json(r)
	}
	var err error
	if r.Reference != "" {
		_, err = fmt.Fprintf(p.w, "%s\t%s\t%s\t%s\n", r.location(), r.Type, r.State, r.Reference)
	} else {
		_, err = fmt.Fprintf(p.w, "%s\t%s\t%s\n", r.location(), r.Type, r.State)
	}
	return err
}

func (p *printer) header(h *header) error {
	if p.format == outputJSON {
		return p.json(h)
	}
	_, err := fmt.Fprintf(p.w, "\n%s", h.Text)
	return err
}

func (p *printer) json(obj gojay.MarshalerJSONObject) error {
	b, err := gojay.MarshalJSONObject(obj)
	if err != nil {
		return err
	}
	_, err = p.w.Write(append(b, '\n'))
	return err
}
