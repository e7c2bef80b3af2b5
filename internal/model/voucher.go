package model

import (
	"encoding/json"
	"strconv"
)

// UnknownCode is printed when the controller omits a voucher code.
const UnknownCode = "Unknown"

const minutesPerDay = 1440

// --- Voucher Structures (Matching the controller's JSON) ---

// VoucherPayload is the listing envelope. Data is nil when the field is
// missing or null.
type VoucherPayload struct {
	Data *[]Voucher `json:"data"`
}

type Voucher struct {
	ID         string `json:"_id,omitempty"`
	Code       string `json:"code"`
	Duration   int    `json:"duration"` // minutes
	Used       int    `json:"used"`
	Quota      int    `json:"quota,omitempty"`
	Note       string `json:"note,omitempty"`
	Status     string `json:"status,omitempty"`
	CreateTime int64  `json:"create_time,omitempty"`
}

// DurationDays truncates, a voucher of 2879 minutes is a 1 day voucher.
func (v Voucher) DurationDays() int {
	return v.Duration / minutesPerDay
}

// UnmarshalJSON decodes a voucher field by field so that one malformed field
// falls back to its default instead of failing the whole listing.
func (v *Voucher) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*v = Voucher{
		ID:         stringField(raw, "_id", ""),
		Code:       codeField(raw),
		Duration:   intField(raw, "duration"),
		Used:       usedField(raw),
		Quota:      intField(raw, "quota"),
		Note:       stringField(raw, "note", ""),
		Status:     stringField(raw, "status", ""),
		CreateTime: int64(intField(raw, "create_time")),
	}
	return nil
}

func stringField(raw map[string]any, key, def string) string {
	s, ok := raw[key].(string)
	if !ok || s == "" {
		return def
	}
	return s
}

// codeField falls back to UnknownCode only when the code is missing or null.
// Numeric codes keep their digits.
func codeField(raw map[string]any) string {
	switch t := raw["code"].(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return UnknownCode
	}
}

// usedField reports 0 only for a missing field, a numeric 0 or false. Any
// other value counts as used so that a voucher of unknown state is never printed.
func usedField(raw map[string]any) int {
	v, ok := raw["used"]
	if !ok {
		return 0
	}
	switch t := v.(type) {
	case float64:
		if t == 0 {
			return 0
		}
		if n := int(t); float64(n) == t && n > 0 {
			return n
		}
		return 1
	case bool:
		if t {
			return 1
		}
		return 0
	default:
		return 1
	}
}

func intField(raw map[string]any, key string) int {
	switch t := raw[key].(type) {
	case float64:
		return int(t)
	case bool:
		if t {
			return 1
		}
		return 0
	case string:
		if n, err := strconv.Atoi(t); err == nil {
			return n
		}
		if f, err := strconv.ParseFloat(t, 64); err == nil {
			return int(f)
		}
	}
	return 0
}
