package sensor

import (
	"bufio"
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// DefaultW1Dir is where the w1-gpio kernel driver exposes one-wire devices.
const DefaultW1Dir = "/sys/bus/w1/devices"

// ds18b20Family is the one-wire family code prefix of DS18B20 probes.
const ds18b20Family = "28-"

// DS18B20 reads a probe via its w1_slave file. Reading the file blocks for
// the conversion time (up to 750ms at 12-bit resolution).
type DS18B20 struct {
	path string
}

// NewDS18B20 locates the probe. An empty device id picks the first DS18B20
// found under baseDir.
func NewDS18B20(baseDir, device string) (*DS18B20, error) {
	if baseDir == "" {
		baseDir = DefaultW1Dir
	}
	if device == "" {
		matches, err := filepath.Glob(filepath.Join(baseDir, ds18b20Family+"*"))
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", baseDir, err)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("no DS18B20 probe under %s", baseDir)
		}
		device = filepath.Base(matches[0])
	}
	path := filepath.Join(baseDir, device, "w1_slave")
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("probe %s: %w", device, err)
	}
	return &DS18B20{path: path}, nil
}

// Path returns the w1_slave file being read.
func (d *DS18B20) Path() string {
	return d.path
}

// Poll triggers a conversion and returns whole degrees Celsius.
func (d *DS18B20) Poll(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrSensorFailure, err)
	}
	f, err := os.Open(d.path)
	if err != nil {
		return 0, fmt.Errorf("%w: open %s: %v", ErrSensorFailure, d.path, err)
	}
	defer f.Close()

	milli, err := parseW1Slave(bufio.NewScanner(f))
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrSensorFailure, err)
	}
	return int(math.Round(float64(milli) / 1000)), nil
}

// parseW1Slave decodes the two-line w1_slave format:
//
//	72 01 4b 46 7f ff 0e 10 57 : crc=57 YES
//	72 01 4b 46 7f ff 0e 10 57 t=23125
func parseW1Slave(sc *bufio.Scanner) (int, error) {
	if !sc.Scan() {
		return 0, fmt.Errorf("empty w1_slave")
	}
	if !strings.HasSuffix(strings.TrimSpace(sc.Text()), "YES") {
		return 0, fmt.Errorf("crc check failed: %q", sc.Text())
	}
	if !sc.Scan() {
		return 0, fmt.Errorf("missing temperature line")
	}
	line := sc.Text()
	i := strings.LastIndex(line, "t=")
	if i < 0 {
		return 0, fmt.Errorf("no temperature in %q", line)
	}
	milli, err := strconv.Atoi(strings.TrimSpace(line[i+2:]))
	if err != nil {
		return 0, fmt.Errorf("parse temperature %q: %w", line[i+2:], err)
	}
	return milli, nil
}
