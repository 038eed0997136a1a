package maintenance

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/fastygo/teamboard/domain"
)

const schemaURL = "snapshot.schema.json"

//go:embed snapshot.schema.json
var schemaJSON []byte

var (
	schemaOnce     sync.Once
	compiledSchema *jsonschema.Schema
	schemaErr      error
)

func snapshotSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource(schemaURL, bytes.NewReader(schemaJSON)); err != nil {
			schemaErr = err
			return
		}
		compiledSchema, schemaErr = compiler.Compile(schemaURL)
	})
	return compiledSchema, schemaErr
}

// validateSnapshot checks raw against the snapshot schema and folds every
// leaf violation into one INVALID error.
func validateSnapshot(raw []byte) error {
	schema, err := snapshotSchema()
	if err != nil {
		return domain.WrapError(domain.ErrCodeInternal, "snapshot schema unavailable", err)
	}

	var doc interface{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return domain.Invalidf("snapshot is not valid JSON: %v", err)
	}

	if err := schema.Validate(doc); err != nil {
		var ve *jsonschema.ValidationError
		if !errors.As(err, &ve) {
			return domain.Invalidf("snapshot rejected: %v", err)
		}
		var problems []string
		collectSchemaErrors(ve, &problems)
		return domain.Invalidf("snapshot rejected: %s", strings.Join(problems, "; "))
	}
	return nil
}

func collectSchemaErrors(err *jsonschema.ValidationError, out *[]string) {
	if err == nil {
		return
	}
	if len(err.Causes) == 0 {
		location := err.InstanceLocation
		if location == "" {
			location = "/"
		}
		*out = append(*out, fmt.Sprintf("%s: %s", location, err.Message))
		return
	}
	for _, cause := range err.Causes {
		collectSchemaErrors(cause, out)
	}
}
