package file

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/vivispa/catalog-api/internal/model"
	"github.com/vivispa/catalog-api/internal/repository"
	"github.com/vivispa/catalog-api/pkg/validator"
)

type catalogRepository struct {
	path      string
	validator validator.Validator
}

// NewCatalogRepository reads catalogs from the YAML document at path.
func NewCatalogRepository(path string, v validator.Validator) repository.CatalogRepository {
	return &catalogRepository{path: path, validator: v}
}

func (r *catalogRepository) Source() string {
	return "file:" + r.path
}

func (r *catalogRepository) Load(ctx context.Context) (*model.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(r.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}

	doc, err := Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", r.path, err)
	}

	return repository.BuildSnapshot(doc, r.Source(), r.validator)
}

// Decode parses a catalog document, rejecting unknown keys.
func Decode(rd io.Reader) (repository.Document, error) {
	var doc repository.Document
	dec := yaml.NewDecoder(rd)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return doc, fmt.Errorf("empty document")
		}
		return doc, err
	}
	return doc, nil
}
