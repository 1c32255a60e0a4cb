package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kailas-cloud/alumdex/internal/db/badger"
	domrec "github.com/kailas-cloud/alumdex/internal/domain/record"
)

const fixture = `{"records": [
  {"id": "a1", "kind": "alumni", "fullName": "Ada Lovelace", "company": "Acme", "skills": ["Go", "Rust"]},
  {"id": "a2", "kind": "alumni", "fullName": "Grace Hopper", "company": "Navy", "location": "New York"},
  {"id": "j1", "kind": "job", "title": "Backend Engineer", "company": "Acme"},
  {"id": "", "kind": "alumni"}
]}`

func newTestApp(t *testing.T) *app {
	t.Helper()
	store, err := badger.OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(store.Close)
	return &app{env: "local", logger: zap.NewNop(), store: store}
}

func run(t *testing.T, a *app, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd(a)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestImportThenSearch(t *testing.T) {
	a := newTestApp(t)

	path := filepath.Join(t.TempDir(), "records.json")
	require.NoError(t, os.WriteFile(path, []byte(fixture), 0o600))

	out, err := run(t, a, "", "import", path)
	require.NoError(t, err)
	assert.Contains(t, out, "imported 3 of 4 records (invalid: 1, failed: 0)")
	assert.Contains(t, out, "invalid")

	out, err = run(t, a, "", "search", "directory", "gra")
	require.NoError(t, err)
	assert.Contains(t, out, "Grace Hopper")
	assert.NotContains(t, out, "Ada Lovelace")
	assert.Contains(t, out, "1 of 1 matches")

	out, err = run(t, a, "", "search", "directory")
	require.NoError(t, err)
	assert.Contains(t, out, "0 of 0 matches", "directory shows nothing until searched")

	out, err = run(t, a, "", "search", "results", "--json", "-f", "skill:go", "-f", "company:navy")
	require.NoError(t, err)
	var recs []domrec.Record
	require.NoError(t, json.Unmarshal([]byte(out), &recs))
	require.Len(t, recs, 2)
	assert.Equal(t, "a1", recs[0].ID)
	assert.Equal(t, "a2", recs[1].ID)
}

func TestImport_Stdin(t *testing.T) {
	a := newTestApp(t)

	out, err := run(t, a, `[{"id": "e1", "kind": "event", "title": "Reunion", "organizer": "Class of 99"}]`,
		"import", "-")
	require.NoError(t, err)
	assert.Contains(t, out, "imported 1 of 1 records")

	out, err = run(t, a, "", "options", "events", "organizer")
	require.NoError(t, err)
	assert.Equal(t, "organizer:class of 99\n", out)
}

func TestImport_BadPayload(t *testing.T) {
	a := newTestApp(t)
	_, err := run(t, a, "not json", "import", "-")
	assert.Error(t, err)
}

func TestOptions(t *testing.T) {
	a := newTestApp(t)
	_, err := run(t, a, fixture, "import", "-")
	require.NoError(t, err)

	out, err := run(t, a, "", "options", "results", "career", "skill")
	require.NoError(t, err)
	assert.Equal(t, "skill:go\nskill:rust\n", out)

	_, err = run(t, a, "", "options", "results", "organizer")
	assert.Error(t, err)
}

func TestSearch_Errors(t *testing.T) {
	a := newTestApp(t)

	_, err := run(t, a, "", "search", "nope")
	assert.Error(t, err)

	_, err = run(t, a, "", "search", "results", "-f", "company")
	assert.Error(t, err)
}

func TestScreens(t *testing.T) {
	a := newTestApp(t)

	out, err := run(t, a, "", "screens")
	require.NoError(t, err)
	assert.Contains(t, out, "directory")
	assert.Contains(t, out, "none")
	assert.Contains(t, out, "events")
}

func TestDelete(t *testing.T) {
	a := newTestApp(t)
	_, err := run(t, a, fixture, "import", "-")
	require.NoError(t, err)

	out, err := run(t, a, "", "delete", "alumni", "a1")
	require.NoError(t, err)
	assert.Contains(t, out, "deleted alumni a1")

	_, err = run(t, a, "", "delete", "alumni", "a1")
	assert.Error(t, err)
}
