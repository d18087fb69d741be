package models

import (
	"context"
	"database/sql/driver"
	"encoding/json"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/schema"
)

// LocalizedText maps a language code ("en", "th", "zh") to text. It is stored
// as a JSON column and never as NULL.
type LocalizedText struct {
	datatypes.JSONType[map[string]string]
}

// NewLocalizedText wraps m; a nil map is stored as an empty object.
func NewLocalizedText(m map[string]string) LocalizedText {
	if m == nil {
		m = map[string]string{}
	}
	return LocalizedText{datatypes.NewJSONType(m)}
}

// Map returns the translations, never nil.
func (t LocalizedText) Map() map[string]string {
	if m := t.Data(); m != nil {
		return m
	}
	return map[string]string{}
}

// Get returns the text for lang, falling back to English.
func (t LocalizedText) Get(lang string) string {
	m := t.Map()
	if v, ok := m[lang]; ok && v != "" {
		return v
	}
	return m["en"]
}

func (t LocalizedText) Value() (driver.Value, error) {
	b, err := json.Marshal(t.Map())
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// GormValue keeps a zero LocalizedText from being written as JSON null.
func (t LocalizedText) GormValue(ctx context.Context, db *gorm.DB) clause.Expr {
	return NewLocalizedText(t.Map()).JSONType.GormValue(ctx, db)
}

func (t *LocalizedText) Scan(value interface{}) error {
	if value == nil {
		*t = NewLocalizedText(nil)
		return nil
	}
	return t.JSONType.Scan(value)
}

func (t LocalizedText) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Map())
}

func (t *LocalizedText) UnmarshalJSON(data []byte) error {
	var m map[string]string
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	*t = NewLocalizedText(m)
	return nil
}

// GormDBDataType ensures the correct data type is used for each database driver.
// MSSQL does not support the 'json' data type.
func (LocalizedText) GormDBDataType(db *gorm.DB, field *schema.Field) string {
	switch db.Dialector.Name() {
	case "mysql":
		return "JSON"
	case "postgres":
		return "JSONB"
	case "sqlserver", "mssql":
		return "NVARCHAR(MAX)"
	case "sqlite":
		return "JSON"
	}
	return "TEXT"
}
