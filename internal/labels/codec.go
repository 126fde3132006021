package labels

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
)

const (
	indentConstant                      = "    "
	fragmentParseErrorTemplateConstant  = "unable to parse label file %s: %w"
	documentEncodeErrorTemplateConstant = "unable to encode label document: %w"
)

// parsedFragment is a label file reduced to its non-empty label nodes.
type parsedFragment struct {
	SourcePath string
	Labels     []Label
	Skipped    int
}

// parseFragment reads a label file. Nodes without children or without a fullName are skipped.
func parseFragment(sourcePath string, reader io.Reader) (parsedFragment, error) {
	document := fragmentDocument{}
	if decodeError := xml.NewDecoder(reader).Decode(&document); decodeError != nil {
		return parsedFragment{}, fmt.Errorf(fragmentParseErrorTemplateConstant, sourcePath, decodeError)
	}

	fragment := parsedFragment{SourcePath: sourcePath}
	for _, node := range document.Labels {
		if len(node.Children) == 0 {
			fragment.Skipped++
			continue
		}
		label := node.label()
		if len(label.FullName) == 0 {
			fragment.Skipped++
			continue
		}
		fragment.Labels = append(fragment.Labels, label)
	}
	return fragment, nil
}

// EncodeDocument renders the document with an XML declaration and four-space indentation.
func EncodeDocument(document Document) ([]byte, error) {
	var buffer bytes.Buffer
	buffer.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")

	encoder := xml.NewEncoder(&buffer)
	encoder.Indent("", indentConstant)
	if encodeError := encoder.Encode(document); encodeError != nil {
		return nil, fmt.Errorf(documentEncodeErrorTemplateConstant, encodeError)
	}
	if closeError := encoder.Close(); closeError != nil {
		return nil, fmt.Errorf(documentEncodeErrorTemplateConstant, closeError)
	}
	buffer.WriteString("\n")

	return buffer.Bytes(), nil
}

// DecodeDocument parses a merged CustomLabels document.
func DecodeDocument(content []byte) (Document, error) {
	fragment, parseError := parseFragment("document", bytes.NewReader(content))
	if parseError != nil {
		return Document{}, parseError
	}
	return Document{Labels: fragment.Labels}, nil
}
