package entities

import (
	"encoding/json"
	"strconv"
	"time"
)

const MaintenanceModeKey = "maintenance_mode"

type SettingType string

const (
	SettingBoolean SettingType = "boolean"
	SettingString  SettingType = "string"
	SettingNumber  SettingType = "number"
	SettingJSON    SettingType = "json"
)

type Setting struct {
	Key       string      `gorm:"primaryKey;size:128" json:"key"`
	Value     string      `gorm:"type:text" json:"value"`
	Type      SettingType `gorm:"size:16;not null" json:"type"`
	UpdatedBy string      `gorm:"size:255" json:"updatedBy,omitempty"`
	UpdatedAt time.Time   `json:"updatedAt"`
}

func (s Setting) Validate() error {
	fields := map[string]string{}
	if s.Key == "" {
		fields["key"] = "required"
	}
	switch s.Type {
	case SettingBoolean:
		if s.Value != "true" && s.Value != "false" {
			fields["value"] = "must be true or false"
		}
	case SettingNumber:
		if _, err := strconv.ParseFloat(s.Value, 64); err != nil {
			fields["value"] = "must be a number"
		}
	case SettingJSON:
		if !json.Valid([]byte(s.Value)) {
			fields["value"] = "must be valid json"
		}
	case SettingString:
	default:
		fields["type"] = "must be boolean, string, number or json"
	}
	return validationError("invalid setting", fields)
}

// Bool is true only for a literal "true" value.
func (s Setting) Bool() bool {
	return s.Value == "true"
}
