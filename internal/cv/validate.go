package cv

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// ErrInvalidDocument wraps every schema validation failure so callers can
// map it to a client error rather than a server one.
var ErrInvalidDocument = errors.New("invalid cv document")

const documentSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "minProperties": 1,
  "additionalProperties": {"$ref": "#/definitions/record"},
  "definitions": {
    "record": {
      "type": "object",
      "required": ["nombre", "titulo"],
      "additionalProperties": false,
      "properties": {
        "nombre": {"type": "string", "minLength": 1},
        "titulo": {"type": "string", "minLength": 1},
        "resumen": {"type": "string"},
        "objetivo": {"type": "string"},
        "fuente": {"type": "string"},
        "secciones": {
          "type": "object",
          "additionalProperties": {"type": "string"}
        },
        "contacto": {
          "type": "array",
          "items": {
            "type": "object",
            "required": ["etiqueta", "valor"],
            "properties": {
              "icono": {"type": "string"},
              "etiqueta": {"type": "string"},
              "valor": {"type": "string"}
            }
          }
        },
        "habilidades": {
          "type": "array",
          "items": {
            "type": "object",
            "required": ["nombre", "nivel"],
            "properties": {
              "icono": {"type": "string"},
              "nombre": {"type": "string"},
              "nivel": {"type": "integer", "minimum": 0, "maximum": 5}
            }
          }
        },
        "idiomas": {
          "type": "array",
          "items": {
            "type": "object",
            "required": ["idioma", "nivel"],
            "properties": {
              "icono": {"type": "string"},
              "codigo": {"type": "string"},
              "idioma": {"type": "string"},
              "nivel": {"type": "string", "enum": ["A1", "A2", "B1", "B2", "C1", "C2"]}
            }
          }
        },
        "hobbies": {
          "type": "array",
          "items": {
            "type": "object",
            "required": ["nombre"],
            "properties": {
              "icono": {"type": "string"},
              "nombre": {"type": "string"}
            }
          }
        },
        "experiencia": {
          "type": "array",
          "items": {
            "type": "object",
            "required": ["puesto", "empresa"],
            "properties": {
              "icono": {"type": "string"},
              "puesto": {"type": "string"},
              "empresa": {"type": "string"},
              "descripcion": {"type": "string"},
              "fecha": {"type": "string"}
            }
          }
        },
        "estudios": {
          "type": "array",
          "items": {
            "type": "object",
            "required": ["titulo"],
            "properties": {
              "icono": {"type": "string"},
              "titulo": {"type": "string"},
              "detalles": {"type": "string"},
              "fecha": {"type": "string"}
            }
          }
        },
        "logros": {
          "type": "array",
          "items": {
            "type": "object",
            "required": ["titulo"],
            "properties": {
              "titulo": {"type": "string"},
              "descripcion": {"type": "string"},
              "fecha": {"type": "string"}
            }
          }
        }
      }
    }
  }
}`

var schemaLoader = gojsonschema.NewStringLoader(documentSchema)

// ParseDocument validates raw JSON against the document schema and decodes
// it into a Document. The input is rejected wholesale on the first schema
// failure; partial documents never reach storage.
func ParseDocument(data []byte) (*Document, error) {
	result, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewBytesLoader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			msgs = append(msgs, desc.String())
		}
		return nil, fmt.Errorf("%w: %s", ErrInvalidDocument, strings.Join(msgs, "; "))
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	return &doc, nil
}
