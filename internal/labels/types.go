package labels

import (
	"encoding/xml"
	"fmt"
	"strings"
)

const (
	// MetadataNamespace is the namespace of the merged CustomLabels document.
	MetadataNamespace = "http://soap.sforce.com/2006/04/metadata"
	// OutputFileName is the file name of the merged label document.
	OutputFileName = "CustomLabels.labels-meta.xml"

	fullNameElementConstant         = "fullName"
	languageElementConstant         = "language"
	protectedElementConstant        = "protected"
	shortDescriptionElementConstant = "shortDescription"
	valueElementConstant            = "value"

	dedupScopeRunConstant                 = "run"
	dedupScopeFileConstant                = "file"
	unsupportedDedupScopeTemplateConstant = "unsupported dedup scope: %s"
)

// DedupScope controls how far the first-definition-wins rule reaches.
type DedupScope string

// Supported dedup scopes.
const (
	// DedupScopeRun keeps one definition per label name across all files.
	DedupScopeRun DedupScope = dedupScopeRunConstant
	// DedupScopeFile only deduplicates inside each file; the same name may repeat across files.
	DedupScopeFile DedupScope = dedupScopeFileConstant
)

// ParseDedupScope converts user input into a DedupScope. Blank input selects DedupScopeRun.
func ParseDedupScope(value string) (DedupScope, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", dedupScopeRunConstant:
		return DedupScopeRun, nil
	case dedupScopeFileConstant:
		return DedupScopeFile, nil
	default:
		return "", fmt.Errorf(unsupportedDedupScopeTemplateConstant, value)
	}
}

// Label is a single custom label definition. Optional elements absent from the source stay absent.
type Label struct {
	FullName         string `xml:"fullName" yaml:"full_name"`
	Language         string `xml:"language,omitempty" yaml:"language,omitempty"`
	Protected        string `xml:"protected,omitempty" yaml:"protected,omitempty"`
	ShortDescription string `xml:"shortDescription,omitempty" yaml:"short_description,omitempty"`
	Value            string `xml:"value" yaml:"value"`
}

// Document is the merged CustomLabels document.
type Document struct {
	XMLName xml.Name `xml:"http://soap.sforce.com/2006/04/metadata CustomLabels"`
	Labels  []Label  `xml:"labels"`
}

// fragmentDocument is the lenient shape used to read label fragments.
type fragmentDocument struct {
	Labels []labelNode `xml:"labels"`
}

type labelNode struct {
	Children []childElement `xml:",any"`
}

type childElement struct {
	XMLName xml.Name
	Text    string `xml:",chardata"`
}

// field returns the text of the last child with the given local name.
func (node labelNode) field(localName string) string {
	value := ""
	for _, child := range node.Children {
		if child.XMLName.Local == localName {
			value = child.Text
		}
	}
	return value
}

func (node labelNode) label() Label {
	return Label{
		FullName:         node.field(fullNameElementConstant),
		Language:         node.field(languageElementConstant),
		Protected:        node.field(protectedElementConstant),
		ShortDescription: node.field(shortDescriptionElementConstant),
		Value:            node.field(valueElementConstant),
	}
}
