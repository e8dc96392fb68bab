package config

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"sync"

	"github.com/klothoplatform/warmup/pkg/service"
	"github.com/pkg/errors"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

const schemaURL = "warmup.schema.json"

//go:embed warmup.schema.json
var schemaContent []byte

var (
	schemaOnce     sync.Once
	schemaErr      error
	compiledSchema *jsonschema.Schema
)

func loadSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		compiler.Draft = jsonschema.Draft7
		if err := compiler.AddResource(schemaURL, bytes.NewReader(schemaContent)); err != nil {
			schemaErr = err
			return
		}
		compiledSchema, schemaErr = compiler.Compile(schemaURL)
	})
	return compiledSchema, schemaErr
}

// Validate checks custom.warmup and every function-level warmup section against the warmup schema.
func Validate(svc *service.Service) error {
	sch, err := loadSchema()
	if err != nil {
		return errors.Wrap(err, "could not load warmup schema")
	}

	doc := map[string]any{"functions": map[string]any{}}
	if warmup, ok := svc.Custom["warmup"]; ok && warmup != nil {
		doc["warmup"] = warmup
	}
	fns := doc["functions"].(map[string]any)
	for _, key := range svc.Functions.Keys() {
		raw, _ := svc.Functions.Get(key)
		if fn, ok := raw.(map[string]any); ok && fn["warmup"] != nil {
			fns[key] = fn["warmup"]
		}
	}

	document, err := jsonDocument(doc)
	if err != nil {
		return err
	}
	if err := sch.Validate(document); err != nil {
		return errors.Wrap(err, "invalid warmup configuration")
	}
	return nil
}

// jsonDocument normalizes YAML-decoded values into the types the validator accepts. Numbers are
// kept as json.Number so integer keywords are checked exactly.
func jsonDocument(v any) (any, error) {
	jsonData, err := json.Marshal(v)
	if err != nil {
		return nil, errors.Wrap(err, "could not convert warmup config to json")
	}
	dec := json.NewDecoder(bytes.NewReader(jsonData))
	dec.UseNumber()
	var document any
	if err := dec.Decode(&document); err != nil {
		return nil, errors.Wrap(err, "could not convert warmup config to json")
	}
	return document, nil
}
