package domain

import (
	"bytes"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/satishbabariya/restdb/internal/core/fault"
)

// Field is one name/value pair of a Record.
type Field struct {
	Name  string
	Value interface{}
}

// Record is an ordered list of fields. Field order drives column order in
// generated SQL and key order in responses.
type Record []Field

// Get returns the value of name.
func (r Record) Get(name string) (interface{}, bool) {
	for _, f := range r {
		if f.Name == name {
			return f.Value, true
		}
	}
	return nil, false
}

// Names returns the field names in order.
func (r Record) Names() []string {
	out := make([]string, len(r))
	for i, f := range r {
		out[i] = f.Name
	}
	return out
}

// Set replaces the value of name, appending the field when absent.
func (r *Record) Set(name string, value interface{}) {
	for i := range *r {
		if (*r)[i].Name == name {
			(*r)[i].Value = value
			return
		}
	}
	*r = append(*r, Field{Name: name, Value: value})
}

// MarshalJSON writes the record as an object with its fields in order.
func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range r {
		if i > 0 {
			buf.WriteByte(',')
		}
		name, err := json.Marshal(f.Name)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(f.Value)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", f.Name, err)
		}
		buf.Write(name)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a flat object of scalar values keeping field order.
func (r *Record) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	rec, err := decodeRecord(dec)
	if err != nil {
		return err
	}
	*r = rec
	return nil
}

func decodeRecord(dec *json.Decoder) (Record, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, fmt.Errorf("expected object, got %v", tok)
	}
	rec := Record{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		name, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("expected field name, got %v", tok)
		}
		tok, err = dec.Token()
		if err != nil {
			return nil, err
		}
		value, err := scalar(tok)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", name, err)
		}
		rec.Set(name, value)
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return rec, nil
}

func scalar(tok json.Token) (interface{}, error) {
	switch v := tok.(type) {
	case json.Delim:
		return nil, fmt.Errorf("nested %v is not supported", v)
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return i, nil
		}
		return v.Float64()
	default:
		return v, nil
	}
}

// DecodeRecords parses a request body holding either an array of records or
// a single record. An empty body yields no records.
func DecodeRecords(body []byte) ([]Record, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return nil, nil
	}
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var records []Record
	if body[0] == '[' {
		if _, err := dec.Token(); err != nil {
			return nil, fault.Wrap(fault.MalformedBody, err)
		}
		for dec.More() {
			rec, err := decodeRecord(dec)
			if err != nil {
				return nil, fault.Wrap(fault.MalformedBody, err)
			}
			records = append(records, rec)
		}
		if _, err := dec.Token(); err != nil {
			return nil, fault.Wrap(fault.MalformedBody, err)
		}
	} else {
		rec, err := decodeRecord(dec)
		if err != nil {
			return nil, fault.Wrap(fault.MalformedBody, err)
		}
		records = append(records, rec)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fault.New(fault.MalformedBody)
	}
	return records, nil
}

// MarshalXML writes the record as a list of <field name="..."> elements.
func (r Record) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	if err := e.EncodeToken(start); err != nil {
		return err
	}
	for _, f := range r {
		el := xml.StartElement{
			Name: xml.Name{Local: "field"},
			Attr: []xml.Attr{{Name: xml.Name{Local: "name"}, Value: f.Name}},
		}
		if f.Value == nil {
			el.Attr = append(el.Attr, xml.Attr{Name: xml.Name{Local: "null"}, Value: "true"})
			if err := e.EncodeToken(el); err != nil {
				return err
			}
			if err := e.EncodeToken(el.End()); err != nil {
				return err
			}
			continue
		}
		if err := e.EncodeElement(xmlValue(f.Value), el); err != nil {
			return err
		}
	}
	return e.EncodeToken(start.End())
}

func xmlValue(v interface{}) interface{} {
	switch t := v.(type) {
	case time.Time:
		return t.Format(time.RFC3339Nano)
	case []byte:
		return string(t)
	default:
		return v
	}
}

var _ msgpack.CustomEncoder = Record(nil)

// EncodeMsgpack writes the record as a map with its fields in order.
func (r Record) EncodeMsgpack(enc *msgpack.Encoder) error {
	if err := enc.EncodeMapLen(len(r)); err != nil {
		return err
	}
	for _, f := range r {
		if err := enc.EncodeString(f.Name); err != nil {
			return err
		}
		if err := enc.Encode(f.Value); err != nil {
			return err
		}
	}
	return nil
}
