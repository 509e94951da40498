package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/jessevdk/go-flags"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	tserr "github.com/nooga/tsblame/pkg/errors"
)

const declarations = `;(function(){ var Blame = require('./blame'), T = new Blame.LazyTypeCache(), M = Object.create(null);
T.set('Point', Blame.obj({x: Blame.Num, y: Blame.Num}));
T.set('Path', Blame.arr(T.get('Point')));
T.verify(); }());
`

func writeFile(t *testing.T, dir, name, content string) string {
	URL := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(URL, []byte(content), 0644))
	return URL
}

func TestRun_Check(t *testing.T) {
	dir := t.TempDir()
	decls := writeFile(t, dir, "lib.decl.js", declarations)
	var testCases = []struct {
		description string
		typeName    string
		name        string
		content     string
		expectOut   string
		expectBlame bool
	}{
		{
			description: "valid json point",
			typeName:    "Point",
			name:        "ok.json",
			content:     `{"x": 1, "y": 2}`,
		},
		{
			description: "invalid property",
			typeName:    "Point",
			name:        "bad.json",
			content:     `{"x": 1, "y": "two"}`,
			expectOut:   "{0} + POSITIVE + GET[y] not of type Num: type is string\n",
			expectBlame: true,
		},
		{
			description: "yaml array element",
			typeName:    "Path",
			name:        "path.yaml",
			content:     "- x: 1\n  y: 2\n- x: true\n  y: 3\n",
			expectOut:   "{0} + POSITIVE + GET_ARRAY[]/GET[x] not of type Num: type is boolean\n",
			expectBlame: true,
		},
	}
	for _, testCase := range testCases {
		input := writeFile(t, dir, testCase.name, testCase.content)
		stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
		err := run([]string{"check", "-d", decls, "-t", testCase.typeName, "-i", input}, stdout, stderr)
		if testCase.expectBlame {
			assert.True(t, errors.Is(err, errBlamed), testCase.description)
			assert.EqualValues(t, testCase.expectOut, stdout.String(), testCase.description)
			continue
		}
		require.NoError(t, err, testCase.description)
		assert.EqualValues(t, input+": ok\n", stdout.String(), testCase.description)
	}
}

func TestRun_CheckRecord(t *testing.T) {
	dir := t.TempDir()
	decls := writeFile(t, dir, "lib.decl.js", declarations)
	input := writeFile(t, dir, "bad.json", `{"x": "one", "y": 2}`)
	record := filepath.Join(dir, "blame.db")

	err := run([]string{"check", "-d", decls, "-t", "Point", "-i", input, "-r", record}, &bytes.Buffer{}, &bytes.Buffer{})
	require.True(t, errors.Is(err, errBlamed))

	stdout := &bytes.Buffer{}
	require.NoError(t, run([]string{"log", "-r", record, "--clear"}, stdout, &bytes.Buffer{}))
	assert.Contains(t, stdout.String(), "{0} + POSITIVE + GET[x] not of type Num: type is string")

	stdout.Reset()
	require.NoError(t, run([]string{"log", "-r", record}, stdout, &bytes.Buffer{}))
	assert.Empty(t, stdout.String())
}

func TestRun_Dump(t *testing.T) {
	dir := t.TempDir()
	decls := writeFile(t, dir, "lib.decl.js", declarations)

	stdout := &bytes.Buffer{}
	require.NoError(t, run([]string{"dump", "-d", decls}, stdout, &bytes.Buffer{}))
	assert.EqualValues(t, "type Point = {x: Num, y: Num}\ntype Path = [Point]\n", stdout.String())

	stdout.Reset()
	require.NoError(t, run([]string{"dump", "-v", "-d", decls}, stdout, &bytes.Buffer{}))
	assert.Contains(t, stdout.String(), `"ObjectType"`)
	assert.Contains(t, stdout.String(), `"[Point]"`)
}

func TestRun_Errors(t *testing.T) {
	dir := t.TempDir()
	decls := writeFile(t, dir, "lib.decl.js", declarations)
	broken := writeFile(t, dir, "broken.decl.js", "T.set('A' Blame.Num);")
	input := writeFile(t, dir, "doc.json", `{}`)

	stderr := &bytes.Buffer{}
	err := run([]string{"dump", "-d", broken}, &bytes.Buffer{}, stderr)
	var syntaxErr *tserr.SyntaxError
	require.True(t, errors.As(err, &syntaxErr))
	assert.Contains(t, stderr.String(), `expected ",", found "Blame"`)

	err = run([]string{"check", "-d", decls, "-t", "Nope", "-i", input}, &bytes.Buffer{}, &bytes.Buffer{})
	assert.EqualError(t, err, "type Nope is not declared")

	err = run([]string{"log"}, &bytes.Buffer{}, &bytes.Buffer{})
	var configErr *tserr.ConfigError
	assert.True(t, errors.As(err, &configErr))

	assert.Error(t, run([]string{"check", "-d", decls}, &bytes.Buffer{}, &bytes.Buffer{}))
	assert.Error(t, run(nil, &bytes.Buffer{}, &bytes.Buffer{}))
}

func TestNewOptions(t *testing.T) {
	var testCases = []struct {
		description string
		args        []string
		command     string
		check       func(o *Options) bool
	}{
		{description: "check", args: []string{"check", "-d", "a.js", "-t", "T", "-i", "d.json"}, command: "check",
			check: func(o *Options) bool { return o.Check.Decls == "a.js" && o.Check.Type == "T" }},
		{description: "dump", args: []string{"dump", "-v", "-d", "a.js"}, command: "dump",
			check: func(o *Options) bool { return o.Dump.Verbose && o.Dump.Decls == "a.js" }},
		{description: "log", args: []string{"log", "-r", "x.db", "--clear"}, command: "log",
			check: func(o *Options) bool { return o.Log.Clear && o.Log.Record == "x.db" }},
	}
	for _, testCase := range testCases {
		options := newOptions()
		parser := flags.NewParser(options, flags.HelpFlag|flags.PassDoubleDash)
		_, err := parser.ParseArgs(testCase.args)
		require.NoError(t, err, testCase.description)
		require.NotNil(t, parser.Active, testCase.description)
		assert.EqualValues(t, testCase.command, parser.Active.Name, testCase.description)
		assert.True(t, testCase.check(options), testCase.description)
	}
}
