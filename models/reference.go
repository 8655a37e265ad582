package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// Reference is a bibliographic citation record attached to an article. All
// fields are free text; which ones are meaningful depends on Type
// (article, book, inproceedings, misc). Order in the list is significant:
// citation index = position + 1.
type Reference struct {
	Type      string `json:"type,omitempty"`
	Author    string `json:"author,omitempty"`
	Title     string `json:"title,omitempty"`
	Year      string `json:"year,omitempty"`
	Journal   string `json:"journal,omitempty"`
	Volume    string `json:"volume,omitempty"`
	Pages     string `json:"pages,omitempty"`
	Publisher string `json:"publisher,omitempty"`
	DOI       string `json:"doi,omitempty"`
	URL       string `json:"url,omitempty"`
	Booktitle string `json:"booktitle,omitempty"`
}

// ReferenceList is the ordered reference array stored as a single JSON
// column on articles and article versions.
type ReferenceList []Reference

func (l ReferenceList) Value() (driver.Value, error) {
	if l == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(l)
}

// Scan decodes the stored JSON. Anything that is not a JSON array of
// reference objects becomes an empty list rather than a scan error.
func (l *ReferenceList) Scan(value interface{}) error {
	*l = ReferenceList{}
	var raw []byte
	switch v := value.(type) {
	case nil:
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("unsupported type %T for ReferenceList", value)
	}
	var out []Reference
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil
	}
	*l = out
	return nil
}
