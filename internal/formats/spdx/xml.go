package spdx

import (
	"bytes"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"sort"

	spdxjson "github.com/spdx/tools-golang/json"
	"github.com/spdx/tools-golang/spdx/v2/v2_3"
)

const xmlRoot = "Document"

// writeXML renders the JSON form of the document as XML. Object keys become
// elements in sorted order and arrays become repeated elements.
func writeXML(doc *v2_3.Document, w io.Writer) error {
	var buf bytes.Buffer
	if err := spdxjson.Write(doc, &buf); err != nil {
		return err
	}

	var tree map[string]interface{}
	decoder := json.NewDecoder(&buf)
	decoder.UseNumber()
	if err := decoder.Decode(&tree); err != nil {
		return fmt.Errorf("failed to decode SPDX JSON: %w", err)
	}

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	encoder := xml.NewEncoder(w)
	encoder.Indent("", "  ")
	if err := encodeElement(encoder, xmlRoot, tree); err != nil {
		return err
	}
	if err := encoder.Flush(); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\n")
	return err
}

func encodeElement(e *xml.Encoder, name string, value interface{}) error {
	start := xml.StartElement{Name: xml.Name{Local: name}}

	switch v := value.(type) {
	case nil:
		return nil
	case []interface{}:
		for _, item := range v {
			if err := encodeElement(e, name, item); err != nil {
				return err
			}
		}
		return nil
	case map[string]interface{}:
		if err := e.EncodeToken(start); err != nil {
			return err
		}
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if err := encodeElement(e, k, v[k]); err != nil {
				return err
			}
		}
		return e.EncodeToken(start.End())
	default:
		return e.EncodeElement(fmt.Sprint(v), start)
	}
}
