package cv

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Record 表示单一语言版本的完整简历内容。
// 字段名与存储的 JSON 保持西语键名。
type Record struct {
	Nombre  string `json:"nombre"`
	Titulo  string `json:"titulo"`
	Resumen string `json:"resumen"`
	// Objetivo is optional and hidden when empty.
	Objetivo string `json:"objetivo,omitempty"`

	Contacto    []ContactItem     `json:"contacto,omitempty"`
	Habilidades []SkillItem       `json:"habilidades,omitempty"`
	Idiomas     []LanguageItem    `json:"idiomas,omitempty"`
	Hobbies     []HobbyItem       `json:"hobbies,omitempty"`
	Experiencia []ExperienceItem  `json:"experiencia,omitempty"`
	Estudios    []EducationItem   `json:"estudios,omitempty"`
	Logros      []AchievementItem `json:"logros,omitempty"`

	// Secciones carries per-language section labels ("habilidades" -> "Skills").
	Secciones map[string]string `json:"secciones,omitempty"`
	// Fuente optionally overrides the page font for this language.
	Fuente string `json:"fuente,omitempty"`
}

// ContactItem 表示联系方式条目（邮箱、电话、链接等）。
type ContactItem struct {
	Icono    string `json:"icono"`
	Etiqueta string `json:"etiqueta"`
	Valor    string `json:"valor"`
}

// SkillItem carries a skill and a numeric mastery level (0..5 filled glyphs).
type SkillItem struct {
	Icono  string `json:"icono"`
	Nombre string `json:"nombre"`
	Nivel  int    `json:"nivel"`
}

// LanguageItem carries a spoken language with a CEFR level token (A1..C2).
// Codigo is the ISO country code used to pick a flag icon; it may be empty,
// in which case Icono is rendered instead.
type LanguageItem struct {
	Icono  string `json:"icono,omitempty"`
	Codigo string `json:"codigo,omitempty"`
	Idioma string `json:"idioma"`
	Nivel  string `json:"nivel"`
}

// HobbyItem has no value slot: just an icon and a name.
type HobbyItem struct {
	Icono  string `json:"icono"`
	Nombre string `json:"nombre"`
}

// ExperienceItem 表示一段工作经历。
type ExperienceItem struct {
	Icono       string `json:"icono,omitempty"`
	Puesto      string `json:"puesto"`
	Empresa     string `json:"empresa"`
	Descripcion string `json:"descripcion,omitempty"`
	Fecha       string `json:"fecha,omitempty"`
}

// EducationItem 表示一段学习经历。
type EducationItem struct {
	Icono    string `json:"icono,omitempty"`
	Titulo   string `json:"titulo"`
	Detalles string `json:"detalles,omitempty"`
	Fecha    string `json:"fecha,omitempty"`
}

// AchievementItem 表示一项成就，没有图标槽位。
type AchievementItem struct {
	Titulo      string `json:"titulo"`
	Descripcion string `json:"descripcion,omitempty"`
	Fecha       string `json:"fecha,omitempty"`
}

// Document maps language codes to records. The order of the keys in the
// source JSON is preserved so "the first language" is well defined when no
// selection has been stored yet.
type Document struct {
	Codes   []string
	Records map[string]Record
}

// Record returns the record for a language code.
func (d *Document) Record(code string) (Record, bool) {
	rec, ok := d.Records[code]
	return rec, ok
}

// DefaultCode returns the first language of the document.
func (d *Document) DefaultCode() string {
	if len(d.Codes) == 0 {
		return ""
	}
	return d.Codes[0]
}

// Has reports whether the document carries the given language.
func (d *Document) Has(code string) bool {
	_, ok := d.Records[code]
	return ok
}

// UnmarshalJSON decodes a top-level object of language records while keeping
// the original key order. encoding/json maps would lose it.
func (d *Document) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decode document: %w", err)
	}

	codes, err := topLevelKeys(data)
	if err != nil {
		return err
	}

	records := make(map[string]Record, len(raw))
	for code, msg := range raw {
		var rec Record
		if err := json.Unmarshal(msg, &rec); err != nil {
			return fmt.Errorf("decode language %q: %w", code, err)
		}
		records[code] = rec
	}

	d.Codes = codes
	d.Records = records
	return nil
}

// MarshalJSON writes the records back out in their original language order.
func (d *Document) MarshalJSON() ([]byte, error) {
	var buf []byte
	buf = append(buf, '{')
	for i, code := range d.Codes {
		if i > 0 {
			buf = append(buf, ',')
		}
		key, err := json.Marshal(code)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(d.Records[code])
		if err != nil {
			return nil, fmt.Errorf("encode language %q: %w", code, err)
		}
		buf = append(buf, key...)
		buf = append(buf, ':')
		buf = append(buf, val...)
	}
	buf = append(buf, '}')
	return buf, nil
}

// topLevelKeys walks the token stream of a JSON object and collects its keys
// in order of appearance.
func topLevelKeys(data []byte) ([]string, error) {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("document must be a JSON object, got %v", tok)
	}

	var keys []string
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("read language key: %w", err)
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected token %v", tok)
		}
		keys = append(keys, key)

		var skip json.RawMessage
		if err := dec.Decode(&skip); err != nil {
			return nil, fmt.Errorf("skip language %q: %w", key, err)
		}
	}
	return keys, nil
}
