package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// Structured fields (jar balances, schedules, photo lists, chat attachments)
// are stored as JSON text columns. The Scanner/Valuer implementations here are
// the single encode/decode boundary for all of them; nothing else in the
// codebase touches the raw column text.
//
// Scanning is tolerant: a NULL, empty, or unparseable column leaves the zero
// value in place instead of failing the whole row.

// Jars holds the three allowance sub-balances in cents. The same shape is
// used for a transaction's jar distribution breakdown.
type Jars struct {
	Spend int64 `json:"spend"`
	Save  int64 `json:"save"`
	Give  int64 `json:"give"`
}

// Total returns spend+save+give.
func (j Jars) Total() int64 {
	return j.Spend + j.Save + j.Give
}

func (j Jars) Value() (driver.Value, error) {
	b, err := json.Marshal(j)
	if err != nil {
		return nil, fmt.Errorf("marshal jars: %w", err)
	}
	return string(b), nil
}

func (j *Jars) Scan(src any) error {
	*j = Jars{}
	b, ok := columnBytes(src)
	if !ok || len(b) == 0 {
		return nil
	}
	// Tolerate unparseable stored text
	_ = json.Unmarshal(b, j)
	return nil
}

// Schedule describes when a chore recurs.
type Schedule struct {
	Frequency string `json:"frequency"`
	Days      []int  `json:"days,omitempty"`
}

func (s Schedule) Value() (driver.Value, error) {
	b, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("marshal schedule: %w", err)
	}
	return string(b), nil
}

func (s *Schedule) Scan(src any) error {
	*s = Schedule{}
	b, ok := columnBytes(src)
	if !ok || len(b) == 0 {
		return nil
	}
	_ = json.Unmarshal(b, s)
	return nil
}

// StringList is a JSON array column of strings (photo URLs, attachments).
// It marshals as [] rather than null when empty.
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		l = StringList{}
	}
	b, err := json.Marshal(l)
	if err != nil {
		return nil, fmt.Errorf("marshal string list: %w", err)
	}
	return string(b), nil
}

func (l *StringList) Scan(src any) error {
	*l = StringList{}
	b, ok := columnBytes(src)
	if !ok || len(b) == 0 {
		return nil
	}
	_ = json.Unmarshal(b, l)
	return nil
}

func (l StringList) MarshalJSON() ([]byte, error) {
	if l == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]string(l))
}

func columnBytes(src any) ([]byte, bool) {
	switch v := src.(type) {
	case nil:
		return nil, false
	case []byte:
		return v, true
	case string:
		return []byte(v), true
	default:
		return nil, false
	}
}
