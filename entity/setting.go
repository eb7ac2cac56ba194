package entity

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

var (
	ErrInvalidSetting = errors.New("invalid setting value")
	ErrUnknownSetting = errors.New("unknown setting")
)

type SettingKind int

const (
	SettingFloat SettingKind = iota
	SettingInteger
)

// Setting is one editable {description, value} pair. Only the field matching
// Kind is meaningful.
type Setting struct {
	Description string
	Kind        SettingKind
	Float       float64
	Integer     int
}

func FloatSetting(description string, v float64) Setting {
	return Setting{Description: description, Kind: SettingFloat, Float: v}
}

func IntegerSetting(description string, v int) Setting {
	return Setting{Description: description, Kind: SettingInteger, Integer: v}
}

// Value formats the value for display and editing.
func (s Setting) Value() string {
	if s.Kind == SettingInteger {
		return strconv.Itoa(s.Integer)
	}
	return strconv.FormatFloat(s.Float, 'g', -1, 64)
}

func (s Setting) String() string {
	return s.Description + " " + s.Value()
}

// Parse returns a copy of s holding the value parsed from text. On failure s
// is returned unchanged together with an error wrapping ErrInvalidSetting.
func (s Setting) Parse(text string) (Setting, error) {
	text = strings.TrimSpace(text)
	switch s.Kind {
	case SettingInteger:
		v, err := strconv.Atoi(text)
		if err != nil || v < 0 {
			return s, fmt.Errorf("%s: %q is not a non-negative integer: %w", s.Description, text, ErrInvalidSetting)
		}
		s.Integer = v
	default:
		v, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return s, fmt.Errorf("%s: %q is not a number: %w", s.Description, text, ErrInvalidSetting)
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return s, fmt.Errorf("%s: %q is not finite: %w", s.Description, text, ErrInvalidSetting)
		}
		s.Float = v
	}
	return s, nil
}

func settingError(s Setting, reason string) error {
	return fmt.Errorf("%s %s: %s: %w", s.Description, s.Value(), reason, ErrInvalidSetting)
}

func expectKind(s Setting, k SettingKind) error {
	if s.Kind != k {
		return settingError(s, "wrong value kind")
	}
	if k == SettingFloat && (math.IsNaN(s.Float) || math.IsInf(s.Float, 0)) {
		return settingError(s, "not finite")
	}
	return nil
}
