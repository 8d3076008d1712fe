package document

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// MarshalJSON encodes elements as {"type":…,"children":[…]} and text
// leaves as {"text":…} with one boolean key per mark.
func (n Node) MarshalJSON() ([]byte, error) {
	if n.IsText() {
		m := map[string]any{"text": n.Text}
		for _, mk := range n.Marks.Marks() {
			m[string(mk)] = true
		}
		return json.Marshal(m)
	}
	m := map[string]any{"type": n.Type}
	for key, val := range n.stringAttrs() {
		if *val != "" {
			m[key] = *val
		}
	}
	if n.Level != 0 {
		m["level"] = n.Level
	}
	if n.Size != 0 {
		m["size"] = n.Size
	}
	children := n.Children
	if children == nil {
		children = []Node{}
	}
	m["children"] = children
	return json.Marshal(m)
}

func (n *Node) stringAttrs() map[string]*string {
	return map[string]*string{
		"url":         &n.URL,
		"alt":         &n.Alt,
		"caption":     &n.Caption,
		"name":        &n.Name,
		"language":    &n.Language,
		"variant":     &n.Variant,
		"icon":        &n.Icon,
		"title":       &n.Title,
		"description": &n.Description,
		"image":       &n.ImageURL,
		"site":        &n.Site,
	}
}

func (n *Node) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidNode, err)
	}
	*n = Node{}
	if t, ok := raw["type"]; ok {
		var typ string
		if err := json.Unmarshal(t, &typ); err != nil {
			return fmt.Errorf("%w: type: %v", ErrInvalidNode, err)
		}
		n.Type = Type(typ)
	}

	if n.Type == "" {
		text, ok := raw["text"]
		if !ok {
			return fmt.Errorf("%w: node has neither type nor text", ErrInvalidNode)
		}
		if err := json.Unmarshal(text, &n.Text); err != nil {
			return fmt.Errorf("%w: text: %v", ErrInvalidNode, err)
		}
		for _, m := range AllMarks {
			v, ok := raw[string(m)]
			if !ok {
				continue
			}
			var on bool
			if json.Unmarshal(v, &on) == nil && on {
				n.Marks = n.Marks.With(m)
			}
		}
		return nil
	}

	for key, dst := range n.stringAttrs() {
		v, ok := raw[key]
		if !ok {
			continue
		}
		if err := json.Unmarshal(v, dst); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalidNode, key, err)
		}
	}
	if v, ok := raw["level"]; ok {
		if err := json.Unmarshal(v, &n.Level); err != nil {
			return fmt.Errorf("%w: level: %v", ErrInvalidNode, err)
		}
	}
	if v, ok := raw["size"]; ok {
		if err := json.Unmarshal(v, &n.Size); err != nil {
			return fmt.Errorf("%w: size: %v", ErrInvalidNode, err)
		}
	}
	if v, ok := raw["children"]; ok {
		if err := json.Unmarshal(v, &n.Children); err != nil {
			return err
		}
	}
	return nil
}

// MarshalJSON encodes the document as a JSON array of blocks.
func (d Document) MarshalJSON() ([]byte, error) {
	children := d.Children
	if children == nil {
		children = []Node{}
	}
	return json.Marshal(children)
}

func (d *Document) UnmarshalJSON(data []byte) error {
	var children []Node
	if err := json.Unmarshal(data, &children); err != nil {
		return err
	}
	d.Children = children
	return nil
}

// JSON returns the encoded document. Encoding a Document cannot fail.
func (d Document) JSON() string {
	b, err := json.Marshal(d)
	if err != nil {
		return "[]"
	}
	return string(b)
}

// Parse decodes, validates and normalizes a JSON document. Empty input
// and "null" yield a document holding one empty paragraph.
func Parse(data []byte) (Document, error) {
	var d Document
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null")) {
		if err := json.Unmarshal(trimmed, &d); err != nil {
			if errors.Is(err, ErrInvalidNode) {
				return Document{}, err
			}
			return Document{}, fmt.Errorf("%w: %v", ErrInvalidNode, err)
		}
	}
	if err := Validate(d); err != nil {
		return Document{}, err
	}
	Normalize(&d)
	return d, nil
}
