// Copyright 2026 European Digital Reading Lab. All rights reserved.
// Use of this source code is governed by a BSD-style license
// specified in the Github project LICENSE file.

package check

import (
	"embed"
	"errors"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"
	jsonschema "github.com/xeipuuv/gojsonschema"
)

//go:embed data/event.schema.json data/enrichment.schema.json
var jsfs embed.FS

// ErrInvalidEvent is returned when a payload does not match the event schema.
var ErrInvalidEvent = errors.New("invalid analytics event")

// Validate checks a wire payload against the event schema:
// the enrichment fields, and the properties required by each known event name.
// Unknown event names only need the enrichment fields.
func Validate(bytes []byte) error {

	schema, err := compileSchema()
	if err != nil {
		return err
	}

	documentLoader := jsonschema.NewBytesLoader(bytes)

	result, err := schema.Validate(documentLoader)
	if err != nil {
		return err
	}

	if !result.Valid() {
		var msgs []string
		for _, desc := range result.Errors() {
			msgs = append(msgs, desc.String())
		}
		return fmt.Errorf("%w: %s", ErrInvalidEvent, strings.Join(msgs, "; "))
	}
	log.Debug("The event is valid vs the json schema")
	return nil
}

func compileSchema() (*jsonschema.Schema, error) {
	eventSchema, err := jsfs.ReadFile("data/event.schema.json")
	if err != nil {
		return nil, err
	}
	enrichmentSchema, err := jsfs.ReadFile("data/enrichment.schema.json")
	if err != nil {
		return nil, err
	}

	sl := jsonschema.NewSchemaLoader()
	err = sl.AddSchemas(jsonschema.NewBytesLoader(enrichmentSchema))
	if err != nil {
		return nil, err
	}
	return sl.Compile(jsonschema.NewBytesLoader(eventSchema))
}
