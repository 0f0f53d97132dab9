package kv

import "github.com/reglet-dev/capbridge/internal/infrastructure/validation"

var (
	setSchema = validation.MustCompile("kv-set.json", []byte(`{
		"$schema": "https://json-schema.org/draft/2020-12/schema",
		"type": "object",
		"additionalProperties": false,
		"required": ["key", "value"],
		"properties": {
			"key": {"type": "string", "minLength": 1, "maxLength": 256},
			"value": true
		}
	}`))

	getSchema = validation.MustCompile("kv-get.json", []byte(`{
		"$schema": "https://json-schema.org/draft/2020-12/schema",
		"type": "object",
		"additionalProperties": false,
		"required": ["key"],
		"properties": {
			"key": {"type": "string", "minLength": 1, "maxLength": 256}
		}
	}`))
)
