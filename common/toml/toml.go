package toml

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"gitlab.com/aquachain/ethash/common/sense"
)

func Marshal(v any) ([]byte, error) {
	return toml.Marshal(v)
}

func Unmarshal(data []byte, ptr any) error {
	return toml.Unmarshal(data, ptr)
}

func NewDecoder(r io.Reader) *toml.Decoder {
	return toml.NewDecoder(r)
}

func NewEncoder(w io.Writer) *toml.Encoder {
	return toml.NewEncoder(w)
}

// MissingFieldError lists keys of a file that no struct field took.
// Wrong config file, or outdated config file.
type MissingFieldError struct {
	File string
	Keys []string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("%s: fields not defined: %s", e.File, strings.Join(e.Keys, ", "))
}

// DecodeFile decodes the file at path into ptr. Unknown keys are an error
// unless TOML_MISSING_FIELD=OK is set in the environment.
func DecodeFile(path string, ptr any) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	md, err := toml.NewDecoder(f).Decode(ptr)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 && sense.Getenv("TOML_MISSING_FIELD") != "OK" {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return &MissingFieldError{File: path, Keys: keys}
	}
	return nil
}

// EncodeFile writes v to path, replacing any existing file.
func EncodeFile(path string, v any) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	if err := toml.NewEncoder(f).Encode(v); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
