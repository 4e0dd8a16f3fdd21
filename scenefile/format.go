package scenefile

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Format is a scene document encoding.
type Format int

const (
	YAML Format = iota
	TOML
	JSON
)

func (f Format) String() string {
	switch f {
	case YAML:
		return "yaml"
	case TOML:
		return "toml"
	case JSON:
		return "json"
	default:
		return fmt.Sprintf("Format(%d)", int(f))
	}
}

// FormatOf picks the format from path's extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return YAML, nil
	case ".toml":
		return TOML, nil
	case ".json":
		return JSON, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownFormat, filepath.Ext(path))
	}
}

// Decoder decodes one document from the reader it was created with.
type Decoder interface {
	Decode(v any) error
}

// DecoderFunc creates a Decoder for r.
type DecoderFunc func(r io.Reader) Decoder

// decoders are strict: unknown fields are errors in every format.
var decoders = map[Format]DecoderFunc{
	YAML: func(r io.Reader) Decoder {
		d := yaml.NewDecoder(r)
		d.KnownFields(true)
		return d
	},
	TOML: func(r io.Reader) Decoder {
		return toml.NewDecoder(r).DisallowUnknownFields()
	},
	JSON: func(r io.Reader) Decoder {
		d := jsoniter.ConfigCompatibleWithStandardLibrary.NewDecoder(r)
		d.DisallowUnknownFields()
		return d
	},
}

// decoderFor returns the DecoderFunc for f.
func decoderFor(f Format) (DecoderFunc, error) {
	d, ok := decoders[f]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, f)
	}
	return d, nil
}
