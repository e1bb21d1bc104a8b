package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var stubs = filepath.Join("testdata", "stubs.txtar")

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	root := newRootCommand(&out, &errOut)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), errOut.String(), err
}

func TestResolve(t *testing.T) {
	out, _, err := execute(t, "resolve", "--stubs", stubs, "--log-level", "warn",
		"--scope", "com.foo.Widget", "com.foo.Base.Part", "com.foo.Base.Secret", "java.lang.String")
	require.NoError(t, err)
	assert.Equal(t, strings.Join([]string{
		"com.foo.Widget\tcom.foo.Base.Part\tIN_SCOPE",
		"com.foo.Widget\tcom.foo.Base.Secret\tIMPORTABLE",
		"com.foo.Widget\tjava.lang.String\tIN_SCOPE",
	}, "\n")+"\n", out)
}

func TestResolvePackageJSON(t *testing.T) {
	out, _, err := execute(t, "resolve", "--stubs", stubs, "--log-level", "warn", "-o", "json", "--render",
		"--package", "com.gen", "java.util.List", "com.foo.Widget")
	require.NoError(t, err)
	assert.Equal(t,
		`{"package":"com.gen","type":"java.util.List","state":"IMPORTABLE","reference":"List"}`+"\n"+
			`{"package":"com.gen","type":"com.foo.Widget","state":"IMPORTABLE","reference":"Widget"}`+"\n",
		out)
}

func TestResolveRequiresLocation(t *testing.T) {
	_, _, err := execute(t, "resolve", "--stubs", stubs, "java.lang.String")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exactly one of --package or --scope")

	_, _, err = execute(t, "resolve", "--stubs", stubs, "--package", "p", "--scope", "p.A", "java.lang.String")
	require.Error(t, err)
}

func TestPlan(t *testing.T) {
	out, _, err := execute(t, "plan", "--stubs", stubs, "--log-level", "warn",
		filepath.Join("testdata", "plan.yaml"))
	require.NoError(t, err)
	assert.Equal(t, strings.Join([]string{
		"com.gen.Model\tcom.foo.Base.Part\tIN_SCOPE",
		"com.gen.Model\tcom.gen.Model.Inner\tIN_SCOPE",
		"com.gen\tjava.util.List\tIMPORTABLE",
		"com.gen\tjava.lang.String\tIN_SCOPE",
		"com.gen.Model\tcom.foo.Widget\tIMPORTABLE",
	}, "\n")+"\n", out)
}

func TestPlanRender(t *testing.T) {
	out, _, err := execute(t, "plan", "--stubs", stubs, "--log-level", "warn", "--render",
		filepath.Join("testdata", "plan.yaml"))
	require.NoError(t, err)
	assert.Equal(t, strings.Join([]string{
		"com.gen.Model\tcom.foo.Base.Part\tIN_SCOPE\tPart",
		"com.gen.Model\tcom.gen.Model.Inner\tIN_SCOPE\tInner",
		"com.gen\tjava.util.List\tIMPORTABLE\tList",
		"com.gen\tjava.lang.String\tIN_SCOPE\tString",
		"com.gen.Model\tcom.foo.Widget\tIMPORTABLE\tWidget",
		"",
		"package com.gen;",
		"",
		"import com.foo.Widget;",
		"import java.util.List;",
	}, "\n")+"\n", out)
}

func TestPlanErrors(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("generated:\n  - name: p.A\n    visibility: friend\n"), 0o644))
	_, _, err := execute(t, "plan", "--stubs", stubs, "--log-level", "warn", bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "generated type p.A")

	unknown := filepath.Join(dir, "unknown.yaml")
	require.NoError(t, os.WriteFile(unknown, []byte("queries:\n  - typ: p.A\n"), 0o644))
	_, _, err = execute(t, "plan", "--stubs", stubs, "--log-level", "warn", unknown)
	require.Error(t, err)

	_, _, err = execute(t, "plan", filepath.Join(dir, "missing.yaml"))
	require.Error(t, err)
}

func TestDescribe(t *testing.T) {
	out, _, err := execute(t, "describe", "--stubs", stubs, "--log-level", "warn", "com.foo.Widget", "com.foo.Base")
	require.NoError(t, err)
	assert.Equal(t, strings.Join([]string{
		"public class com.foo.Widget extends com.foo.Base",
		"  ancestors: com.foo.Base, java.lang.Object",
		"public abstract class com.foo.Base extends java.lang.Object",
		"  ancestors: java.lang.Object",
		"  nested: public static class com.foo.Base.Part extends java.lang.Object",
		"  nested: private static class com.foo.Base.Secret extends java.lang.Object",
	}, "\n")+"\n", out)

	out, _, err = execute(t, "describe", "--stubs", stubs, "--log-level", "warn")
	require.NoError(t, err)
	assert.Contains(t, out, "(3 packages, 7 types)")
	assert.Contains(t, out, "package com.foo\n  class Base\n    class Part\n    class Secret\n  class Widget\n")

	_, _, err = execute(t, "describe", "--stubs", stubs, "--log-level", "warn", "com.foo.Missing")
	assert.Error(t, err)
}

func TestDescribeBySimpleName(t *testing.T) {
	out, _, err := execute(t, "describe", "--stubs", stubs, "--log-level", "warn", "Part")
	require.NoError(t, err)
	assert.Equal(t, "public static class com.foo.Base.Part extends java.lang.Object\n"+
		"  ancestors: java.lang.Object\n", out)

	dir := t.TempDir()
	for _, src := range []struct{ file, body string }{
		{"p/A.java", "package p;\npublic class A {}\n"},
		{"q/A.java", "package q;\npublic class A {}\n"},
	} {
		path := filepath.Join(dir, filepath.FromSlash(src.file))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(src.body), 0o644))
	}
	_, _, err = execute(t, "describe", "--stubs", dir, "--log-level", "warn", "A")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "type name A is ambiguous: p.A, q.A")
}

func TestIndexRoundTrip(t *testing.T) {
	manifest := filepath.Join(t.TempDir(), "symbols.yaml")
	_, _, err := execute(t, "index", "--stubs", stubs, "--log-level", "warn", "--out", manifest)
	require.NoError(t, err)

	data, err := os.ReadFile(manifest)
	require.NoError(t, err)
	assert.Contains(t, string(data), "name: com.foo")

	out, _, err := execute(t, "resolve", "--manifest", manifest, "--log-level", "warn",
		"--scope", "com.foo.Widget", "com.foo.Base.Part")
	require.NoError(t, err)
	assert.Equal(t, "com.foo.Widget\tcom.foo.Base.Part\tIN_SCOPE\n", out)
}

func TestConfigFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	config := filepath.Join(dir, "typescope.yaml")
	abs, err := filepath.Abs(stubs)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(config, []byte(
		"stubs: ["+abs+"]\noutput: json\nlog:\n  level: warn\n"), 0o644))

	out, _, err := execute(t, "resolve", "--config", config, "--package", "com.foo", "com.foo.Widget")
	require.NoError(t, err)
	assert.Equal(t, `{"package":"com.foo","type":"com.foo.Widget","state":"IN_SCOPE"}`+"\n", out)

	t.Setenv("TYPESCOPE_OUTPUT", "text")
	out, _, err = execute(t, "resolve", "--config", config, "--package", "com.foo", "com.foo.Widget")
	require.NoError(t, err)
	assert.Equal(t, "com.foo\tcom.foo.Widget\tIN_SCOPE\n", out)

	_, _, err = execute(t, "resolve", "--config", filepath.Join(dir, "missing.yaml"), "--package", "p", "p.A")
	assert.Error(t, err)
}

func TestUniversalPackageFlag(t *testing.T) {
	out, _, err := execute(t, "resolve", "--stubs", stubs, "--log-level", "warn",
		"--universal-package", "java.util", "--package", "com.gen", "java.util.List", "java.lang.String")
	require.NoError(t, err)
	assert.Equal(t, "com.gen\tjava.util.List\tIN_SCOPE\ncom.gen\tjava.lang.String\tIMPORTABLE\n", out)
}

func TestLoggingAndMetrics(t *testing.T) {
	metrics := filepath.Join(t.TempDir(), "typescope.prom")
	_, logs, err := execute(t, "resolve", "--stubs", stubs, "--log-level", "debug", "--log-format", "json",
		"--metrics-file", metrics, "--package", "com.foo", "com.foo.Widget")
	require.NoError(t, err)
	assert.Contains(t, logs, `"run":"`)
	assert.Contains(t, logs, `"message":"symbol table loaded"`)

	data, err := os.ReadFile(metrics)
	require.NoError(t, err)
	assert.Contains(t, string(data), `typescope_scope_queries_total{state="IN_SCOPE"} 1`)
}

func TestInvalidSettings(t *testing.T) {
	_, _, err := execute(t, "version", "-o", "yaml")
	assert.Error(t, err)
	_, _, err = execute(t, "version", "--log-level", "loud")
	assert.Error(t, err)
	_, _, err = execute(t, "version", "--log-format", "xml")
	assert.Error(t, err)
}

func TestVersion(t *testing.T) {
	out, _, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "typescope dev\n", out)
}
