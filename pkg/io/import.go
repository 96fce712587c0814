package io

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/waitgraph/pkg/errors"
	"github.com/matzehuels/waitgraph/pkg/rag"
)

// Format identifies a graph file encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
	FormatHCL  Format = "hcl"
)

var formatByExt = map[string]Format{
	".json": FormatJSON,
	".toml": FormatTOML,
	".yaml": FormatYAML,
	".yml":  FormatYAML,
	".hcl":  FormatHCL,
}

// Extensions lists the graph file extensions [ImportGraph] understands.
func Extensions() []string {
	return []string{".json", ".toml", ".yaml", ".yml", ".hcl"}
}

// FormatFromPath infers the format from the file extension.
func FormatFromPath(path string) (Format, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if f, ok := formatByExt[ext]; ok {
		return f, nil
	}
	return "", errors.New(errors.ErrCodeInvalidFormat, "unsupported graph file extension %q", ext)
}

// ReadGraph decodes a graph in the given format from r.
// filename is only used for diagnostics and may be empty.
// ReadGraph does not close r.
func ReadGraph(r io.Reader, format Format, filename string) (rag.Graph, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return rag.Graph{}, fmt.Errorf("read: %w", err)
	}
	return DecodeGraph(data, format, filename)
}

// DecodeGraph decodes a graph held in memory.
func DecodeGraph(data []byte, format Format, filename string) (rag.Graph, error) {
	var (
		g   rag.Graph
		err error
	)
	switch format {
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		err = dec.Decode(&g)
	case FormatTOML:
		_, err = toml.Decode(string(data), &g)
	case FormatYAML:
		err = yaml.Unmarshal(data, &g)
	case FormatHCL:
		g, err = decodeHCL(data, filename)
	default:
		return rag.Graph{}, errors.New(errors.ErrCodeInvalidFormat, "unknown graph format %q", format)
	}
	if err != nil {
		return rag.Graph{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode %s graph", format)
	}
	return g, nil
}

// ImportGraph reads the graph file at path, choosing the decoder by extension.
func ImportGraph(path string) (rag.Graph, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return rag.Graph{}, err
	}
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return rag.Graph{}, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
	}
	if err != nil {
		return rag.Graph{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadGraph(f, format, path)
}
