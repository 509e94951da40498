package report

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nooga/tsblame/pkg/blame"
	"github.com/nooga/tsblame/pkg/contract"
	"github.com/nooga/tsblame/pkg/types"
	"github.com/nooga/tsblame/pkg/values"
)

func openStore(t *testing.T) (*Store, string) {
	path := filepath.Join(t.TempDir(), "blame.db")
	store, err := Open(path, "reports")
	require.NoError(t, err)
	store.now = func() time.Time { return time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC) }
	return store, path
}

func TestStore_Report(t *testing.T) {
	store, path := openStore(t)

	engine := contract.New(contract.WithReporter(store))
	v, err := engine.SimpleWrap(values.NewString("x"), types.Num)
	require.NoError(t, err)
	assert.EqualValues(t, "x", v.AsString())
	_, err = engine.SimpleWrap(values.NumberValue(3), types.Bool)
	require.NoError(t, err)

	entries, err := store.List()
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.EqualValues(t, []uint64{1, 2}, []uint64{entries[0].Seq, entries[1].Seq})
	assert.EqualValues(t, "{0} + POSITIVE +  not of type Num: type is string", entries[0].String())
	assert.EqualValues(t, "1", entries[1].Label)
	assert.EqualValues(t, time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC), entries[0].Time)

	require.NoError(t, store.Close())
	reopened, err := Open(path, "reports")
	require.NoError(t, err)
	defer reopened.Close()
	entries, err = reopened.List()
	require.NoError(t, err)
	assert.Len(t, entries, 2)

	require.NoError(t, reopened.Clear())
	entries, err = reopened.List()
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestStore_Namespaces(t *testing.T) {
	path := filepath.Join(t.TempDir(), "blame.db")
	store, err := Open(path, "a")
	require.NoError(t, err)
	require.NoError(t, store.Report(blame.Report{Label: "0", Polarity: blame.Negative, Message: "m"}))
	require.NoError(t, store.Close())

	other, err := Open(path, "b")
	require.NoError(t, err)
	defer other.Close()
	entries, err := other.List()
	require.NoError(t, err)
	assert.Empty(t, entries)

	_, err = Open(path, "")
	assert.Error(t, err)
}
