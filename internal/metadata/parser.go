package metadata

import (
	"encoding/xml"
	"fmt"
	"strings"
)

const (
	edmNamespace  = "http://docs.oasis-open.org/odata/ns/edm"
	edmxNamespace = "http://docs.oasis-open.org/odata/ns/edmx"

	// DefaultKeyAnnotationNamespace is the extension namespace consulted for
	// the non-standard Key attribute on complex types. Producers that emit
	// the attribute without a namespace are accepted as a fallback.
	DefaultKeyAnnotationNamespace = "http://odatascope.dev/schema/annotations"

	// DefaultComplexTypePrefix is the naming convention stripped from
	// complex type names for presentation.
	DefaultComplexTypePrefix = "CT_"
)

// ParseError is returned for documents that cannot be turned into a
// Metadata: malformed XML or missing required EDMX structure.
type ParseError struct {
	Msg string
	Err error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *ParseError) Unwrap() error { return e.Err }

// element is a generic XML element tree. Decoding into it instead of typed
// structs keeps namespace handling in our own lookup helpers, which real
// producers make necessary: some qualify every element, some only the root,
// some not at all.
type element struct {
	XMLName  xml.Name
	Attrs    []xml.Attr `xml:",any,attr"`
	Children []element  `xml:",any"`
}

// Parser converts raw EDMX/CSDL XML into a Metadata document.
type Parser struct {
	keyAnnotationNS string
}

// ParserOption configures a Parser.
type ParserOption func(*Parser)

// WithKeyAnnotationNamespace overrides the namespace consulted for the
// complex-type Key annotation attribute.
func WithKeyAnnotationNamespace(ns string) ParserOption {
	return func(p *Parser) {
		p.keyAnnotationNS = ns
	}
}

// NewParser creates a Parser.
func NewParser(opts ...ParserOption) *Parser {
	p := &Parser{keyAnnotationNS: DefaultKeyAnnotationNamespace}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse parses an EDMX document with default options.
func Parse(xmlText string) (*Metadata, error) {
	return NewParser().Parse(xmlText)
}

// Parse converts the given XML text into a Metadata document. It fails when
// the input is not well-formed XML, when the root element's local name does
// not contain "edmx" (case-insensitive), or when no DataServices element is
// found under the root. Everything else degrades: unknown elements are
// skipped, missing attributes get documented defaults.
func (p *Parser) Parse(xmlText string) (*Metadata, error) {
	var root element
	if err := xml.Unmarshal([]byte(xmlText), &root); err != nil {
		return nil, &ParseError{Msg: "malformed XML", Err: err}
	}

	if !strings.Contains(strings.ToLower(root.XMLName.Local), "edmx") {
		return nil, &ParseError{Msg: fmt.Sprintf("not an EDMX document: root element is <%s>", root.XMLName.Local)}
	}

	ds := findChild(&root, "DataServices")
	if ds == nil {
		return nil, &ParseError{Msg: "no DataServices element found in EDMX document"}
	}

	version := attrValue(&root, "Version")
	if version == "" {
		version = "4.0"
	}

	md := &Metadata{Version: version}
	for _, schemaEl := range findChildren(ds, "Schema") {
		md.Schemas = append(md.Schemas, p.parseSchema(schemaEl))
	}

	// Flattened views: schema order, then declaration order.
	for i := range md.Schemas {
		s := &md.Schemas[i]
		for j := range s.Entities {
			md.AllEntities = append(md.AllEntities, &s.Entities[j])
		}
		for j := range s.ComplexTypes {
			md.AllComplexTypes = append(md.AllComplexTypes, &s.ComplexTypes[j])
		}
		for j := range s.EnumTypes {
			md.AllEnumTypes = append(md.AllEnumTypes, &s.EnumTypes[j])
		}
	}

	return md, nil
}

func (p *Parser) parseSchema(el *element) Schema {
	ns := attrValue(el, "Namespace")
	if ns == "" {
		ns = "Default"
	}

	s := Schema{
		Namespace: ns,
		Alias:     attrValue(el, "Alias"),
	}

	for _, et := range findChildren(el, "EntityType") {
		s.Entities = append(s.Entities, p.parseEntity(et, ns))
	}
	for _, ct := range findChildren(el, "ComplexType") {
		s.ComplexTypes = append(s.ComplexTypes, p.parseComplexType(ct, ns))
	}
	for _, en := range findChildren(el, "EnumType") {
		s.EnumTypes = append(s.EnumTypes, parseEnumType(en, ns))
	}

	return s
}

func (p *Parser) parseEntity(el *element, namespace string) Entity {
	name := attrValue(el, "Name")
	e := Entity{
		Name:      name,
		FullName:  namespace + "." + name,
		Namespace: namespace,
		BaseType:  attrValue(el, "BaseType"),
	}

	// Key refs come first so property parsing can mark key membership.
	if key := findChild(el, "Key"); key != nil {
		for _, ref := range findChildren(key, "PropertyRef") {
			if n := attrValue(ref, "Name"); n != "" {
				e.KeyProperties = append(e.KeyProperties, n)
			}
		}
	}

	for _, prop := range findChildren(el, "Property") {
		e.Properties = append(e.Properties, parseProperty(prop, e.KeyProperties))
	}
	for _, nav := range findChildren(el, "NavigationProperty") {
		e.NavigationProperties = append(e.NavigationProperties, parseNavigationProperty(nav))
	}

	return e
}

func (p *Parser) parseComplexType(el *element, namespace string) ComplexType {
	name := attrValue(el, "Name")
	ct := ComplexType{
		Name:        name,
		FullName:    namespace + "." + name,
		Namespace:   namespace,
		BaseType:    attrValue(el, "BaseType"),
		KeyProperty: p.complexKey(el),
	}

	for _, prop := range findChildren(el, "Property") {
		ct.Properties = append(ct.Properties, parseProperty(prop, nil))
	}
	for _, nav := range findChildren(el, "NavigationProperty") {
		ct.NavigationProperties = append(ct.NavigationProperties, parseNavigationProperty(nav))
	}

	return ct
}

// complexKey reads the custom Key annotation attribute: properly namespaced
// first, then an unnamespaced attribute of the same literal name.
func (p *Parser) complexKey(el *element) string {
	for _, a := range el.Attrs {
		if a.Name.Space == p.keyAnnotationNS && a.Name.Local == "Key" {
			return a.Value
		}
	}
	for _, a := range el.Attrs {
		if a.Name.Space == "" && a.Name.Local == "Key" {
			return a.Value
		}
	}
	return ""
}

func parseEnumType(el *element, namespace string) EnumType {
	name := attrValue(el, "Name")
	en := EnumType{
		Name:           name,
		FullName:       namespace + "." + name,
		Namespace:      namespace,
		UnderlyingType: attrValue(el, "UnderlyingType"),
		IsFlags:        attrValue(el, "IsFlags") == "true",
	}
	for _, m := range findChildren(el, "Member") {
		en.Members = append(en.Members, EnumMember{
			Name:  attrValue(m, "Name"),
			Value: attrValue(m, "Value"),
		})
	}
	return en
}

func parseProperty(el *element, keyProps []string) Property {
	name := attrValue(el, "Name")
	return Property{
		Name: name,
		Type: attrValue(el, "Type"),
		// Explicit Nullable="false" is the only non-nullable spelling;
		// absence and every other value default to nullable.
		Nullable:  attrValue(el, "Nullable") != "false",
		IsKey:     containsString(keyProps, name),
		MaxLength: attrValue(el, "MaxLength"),
		Precision: attrValue(el, "Precision"),
		Scale:     attrValue(el, "Scale"),
	}
}

func parseNavigationProperty(el *element) NavigationProperty {
	rawType := attrValue(el, "Type")
	target := rawType
	isCollection := false
	if inner, ok := CollectionInner(rawType); ok {
		target = inner
		isCollection = true
	}

	nav := NavigationProperty{
		Name:         attrValue(el, "Name"),
		Type:         rawType,
		TargetEntity: LastSegment(target),
		IsCollection: isCollection,
		Partner:      attrValue(el, "Partner"),
	}

	// Constraints stay nil (absent) when the source declares none.
	for _, rc := range findChildren(el, "ReferentialConstraint") {
		nav.Constraints = append(nav.Constraints, ReferentialConstraint{
			Property:           attrValue(rc, "Property"),
			ReferencedProperty: attrValue(rc, "ReferencedProperty"),
		})
	}

	return nav
}

// findChild locates one direct child by local name using the documented
// fallback order: EDM-qualified, EDMX-qualified, unqualified, then any
// namespace by local name alone.
func findChild(el *element, local string) *element {
	for _, space := range []string{edmNamespace, edmxNamespace} {
		for i := range el.Children {
			c := &el.Children[i]
			if c.XMLName.Space == space && c.XMLName.Local == local {
				return c
			}
		}
	}
	for i := range el.Children {
		c := &el.Children[i]
		if c.XMLName.Space == "" && c.XMLName.Local == local {
			return c
		}
	}
	for i := range el.Children {
		c := &el.Children[i]
		if c.XMLName.Local == local {
			return c
		}
	}
	return nil
}

// findChildren returns all direct children with the given local name, in
// document order, regardless of namespace.
func findChildren(el *element, local string) []*element {
	var out []*element
	for i := range el.Children {
		c := &el.Children[i]
		if c.XMLName.Local == local {
			out = append(out, c)
		}
	}
	return out
}

// attrValue returns an attribute by local name, preferring an unqualified
// attribute over a namespace-qualified one.
func attrValue(el *element, local string) string {
	for _, a := range el.Attrs {
		if a.Name.Space == "" && a.Name.Local == local {
			return a.Value
		}
	}
	for _, a := range el.Attrs {
		if a.Name.Local == local {
			return a.Value
		}
	}
	return ""
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
