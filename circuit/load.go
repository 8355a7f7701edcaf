// Package circuit loads simulator circuits from files in JSON, YAML or
// OpenQASM form and lays them out for display.
package circuit

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"qtermsim/qasm"
	"qtermsim/sim"
)

// Format identifies a circuit encoding.
type Format int

const (
	JSON Format = iota
	YAML
	QASM
)

func (f Format) String() string {
	switch f {
	case JSON:
		return "json"
	case YAML:
		return "yaml"
	case QASM:
		return "qasm"
	}
	return fmt.Sprintf("Format(%d)", int(f))
}

// ParseFormat accepts a format name or file extension (with or without dot).
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(name, ".")) {
	case "json":
		return JSON, nil
	case "yaml", "yml":
		return YAML, nil
	case "qasm":
		return QASM, nil
	}
	return 0, fmt.Errorf("unknown circuit format %q", name)
}

// Load reads the circuit at path, choosing the decoder by extension.
func Load(path string) (sim.Circuit, error) {
	format, err := ParseFormat(filepath.Ext(path))
	if err != nil {
		return sim.Circuit{}, fmt.Errorf("%s: %w", path, err)
	}

	f, err := os.Open(path)
	if err != nil {
		return sim.Circuit{}, err
	}
	defer f.Close()

	c, err := Decode(f, format)
	if err != nil {
		return sim.Circuit{}, fmt.Errorf("%s: %w", path, err)
	}
	if c.Name == "" {
		c.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return c, nil
}

// Decode reads one circuit from r.
func Decode(r io.Reader, format Format) (sim.Circuit, error) {
	var c sim.Circuit

	switch format {
	case JSON:
		dec := json.NewDecoder(r)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&c); err != nil {
			return c, fmt.Errorf("decode json: %w", err)
		}
	case YAML:
		dec := yaml.NewDecoder(r)
		dec.KnownFields(true)
		if err := dec.Decode(&c); err != nil {
			return c, fmt.Errorf("decode yaml: %w", err)
		}
	case QASM:
		src, err := io.ReadAll(r)
		if err != nil {
			return c, err
		}
		return qasm.Parse(string(src))
	default:
		return c, fmt.Errorf("unsupported format %v", format)
	}
	return c, nil
}

// Encode writes c to w in the given format.
func Encode(w io.Writer, c sim.Circuit, format Format) error {
	switch format {
	case JSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(c)
	case YAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(c); err != nil {
			return err
		}
		if err := enc.Close(); err != nil {
			return err
		}
		_, err := w.Write(buf.Bytes())
		return err
	case QASM:
		src, err := qasm.Format(c)
		if err != nil {
			return err
		}
		_, err = io.WriteString(w, src)
		return err
	}
	return fmt.Errorf("unsupported format %v", format)
}
