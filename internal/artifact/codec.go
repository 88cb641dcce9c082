package artifact

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"github.com/vmihailenco/msgpack/v5"
	"gopkg.in/yaml.v3"

	"surrogated/internal/model"
)

// Extensions lists the supported file extensions in lookup order.
var Extensions = []string{".msgpack", ".json", ".yaml", ".yml", ".toml"}

// Supported reports whether ext (with dot) has a codec.
func Supported(ext string) bool {
	ext = strings.ToLower(ext)
	for _, e := range Extensions {
		if e == ext {
			return true
		}
	}
	return false
}

// Decode parses b according to ext.
func Decode(b []byte, ext string) (Document, error) {
	var doc Document
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &doc); err != nil {
			return doc, err
		}
	case ".json":
		if err := json.Unmarshal(b, &doc); err != nil {
			return doc, err
		}
	case ".toml":
		if err := toml.Unmarshal(b, &doc); err != nil {
			return doc, err
		}
	case ".msgpack", ".mpk":
		if err := msgpack.Unmarshal(b, &doc); err != nil {
			return doc, err
		}
	default:
		return doc, fmt.Errorf("unsupported artifact extension: %s", ext)
	}
	return doc, nil
}

// Encode serializes doc according to ext.
func Encode(doc Document, ext string) ([]byte, error) {
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		return yaml.Marshal(doc)
	case ".json":
		return json.MarshalIndent(doc, "", "  ")
	case ".toml":
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(doc); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case ".msgpack", ".mpk":
		return msgpack.Marshal(doc)
	default:
		return nil, fmt.Errorf("unsupported artifact extension: %s", ext)
	}
}

// ReadFile decodes the document at path.
func ReadFile(path string) (Document, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Document{}, err
	}
	return Decode(b, filepath.Ext(path))
}

// WriteFile encodes doc to path, picking the codec from the extension.
func WriteFile(path string, doc Document) error {
	b, err := Encode(doc, filepath.Ext(path))
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}

// Open reads path and builds its components.
func Open(path string) ([]model.Component, error) {
	doc, err := ReadFile(path)
	if err != nil {
		return nil, err
	}
	return doc.Components()
}
