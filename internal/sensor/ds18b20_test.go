package sensor

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const goodW1 = "72 01 4b 46 7f ff 0e 10 57 : crc=57 YES\n72 01 4b 46 7f ff 0e 10 57 t=23125\n"

func writeProbe(t *testing.T, dir, id, content string) {
	t.Helper()
	devDir := filepath.Join(dir, id)
	require.NoError(t, os.MkdirAll(devDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(devDir, "w1_slave"), []byte(content), 0o644))
}

func TestDS18B20_DiscoversFirstProbe(t *testing.T) {
	dir := t.TempDir()
	writeProbe(t, dir, "28-000005e2fdc3", goodW1)
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "w1_bus_master1"), 0o755))

	d, err := NewDS18B20(dir, "")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "28-000005e2fdc3", "w1_slave"), d.Path())

	got, err := d.Poll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 23, got)
}

func TestDS18B20_RoundsToNearestDegree(t *testing.T) {
	dir := t.TempDir()
	writeProbe(t, dir, "28-a", "aa : crc=aa YES\naa t=99500\n")

	d, err := NewDS18B20(dir, "28-a")
	require.NoError(t, err)
	got, err := d.Poll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 100, got)
}

func TestDS18B20_Errors(t *testing.T) {
	t.Run("no probe", func(t *testing.T) {
		_, err := NewDS18B20(t.TempDir(), "")
		assert.Error(t, err)
	})

	t.Run("unknown device", func(t *testing.T) {
		_, err := NewDS18B20(t.TempDir(), "28-missing")
		assert.Error(t, err)
	})

	cases := map[string]string{
		"crc failed":   "72 01 : crc=00 NO\n72 01 t=23125\n",
		"empty":        "",
		"no temp line": "72 01 : crc=57 YES\n",
		"garbage temp": "72 01 : crc=57 YES\n72 01 t=abc\n",
		"no t= marker": "72 01 : crc=57 YES\n72 01 4b 46\n",
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()
			writeProbe(t, dir, "28-x", content)
			d, err := NewDS18B20(dir, "28-x")
			require.NoError(t, err)

			_, err = d.Poll(context.Background())
			assert.ErrorIs(t, err, ErrSensorFailure)
		})
	}

	t.Run("probe unplugged", func(t *testing.T) {
		dir := t.TempDir()
		writeProbe(t, dir, "28-x", goodW1)
		d, err := NewDS18B20(dir, "28-x")
		require.NoError(t, err)
		require.NoError(t, os.RemoveAll(filepath.Join(dir, "28-x")))

		_, err = d.Poll(context.Background())
		assert.ErrorIs(t, err, ErrSensorFailure)
	})
}
