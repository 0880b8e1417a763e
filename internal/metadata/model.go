package metadata

import "strings"

// Metadata is the normalized, immutable model of one parsed $metadata
// document. Reparsing produces a fresh Metadata; nothing is patched in place.
type Metadata struct {
	Version string   `yaml:"version" json:"version"`
	Schemas []Schema `yaml:"schemas" json:"schemas"`

	// Flattened cross-schema views, built once at parse time in schema
	// order, then declaration order within each schema.
	AllEntities     []*Entity      `yaml:"-" json:"-"`
	AllComplexTypes []*ComplexType `yaml:"-" json:"-"`
	AllEnumTypes    []*EnumType    `yaml:"-" json:"-"`
}

// Schema groups the types declared under one namespace.
type Schema struct {
	Namespace    string        `yaml:"namespace" json:"namespace"`
	Alias        string        `yaml:"alias,omitempty" json:"alias,omitempty"`
	Entities     []Entity      `yaml:"entities,omitempty" json:"entities,omitempty"`
	ComplexTypes []ComplexType `yaml:"complex_types,omitempty" json:"complexTypes,omitempty"`
	EnumTypes    []EnumType    `yaml:"enum_types,omitempty" json:"enumTypes,omitempty"`
}

// Entity is a top-level schema type with identity.
type Entity struct {
	Name                 string               `yaml:"name" json:"name"`
	FullName             string               `yaml:"full_name" json:"fullName"`
	Namespace            string               `yaml:"namespace" json:"namespace"`
	BaseType             string               `yaml:"base_type,omitempty" json:"baseType,omitempty"`
	KeyProperties        []string             `yaml:"key_properties,omitempty" json:"keyProperties,omitempty"`
	Properties           []Property           `yaml:"properties,omitempty" json:"properties,omitempty"`
	NavigationProperties []NavigationProperty `yaml:"navigation_properties,omitempty" json:"navigationProperties,omitempty"`
}

// ComplexType is a structured type without standard identity. It mirrors
// Entity except the key, if any, comes from a custom annotation and names a
// single property. Complex types may carry navigation properties
// (non-standard, but real producers emit them) and may nest recursively via
// collection-typed properties.
type ComplexType struct {
	Name                 string               `yaml:"name" json:"name"`
	FullName             string               `yaml:"full_name" json:"fullName"`
	Namespace            string               `yaml:"namespace" json:"namespace"`
	BaseType             string               `yaml:"base_type,omitempty" json:"baseType,omitempty"`
	KeyProperty          string               `yaml:"key_property,omitempty" json:"keyProperty,omitempty"`
	Properties           []Property           `yaml:"properties,omitempty" json:"properties,omitempty"`
	NavigationProperties []NavigationProperty `yaml:"navigation_properties,omitempty" json:"navigationProperties,omitempty"`
}

// EnumType is a named enumeration. Listed but not traversed.
type EnumType struct {
	Name           string       `yaml:"name" json:"name"`
	FullName       string       `yaml:"full_name" json:"fullName"`
	Namespace      string       `yaml:"namespace" json:"namespace"`
	UnderlyingType string       `yaml:"underlying_type,omitempty" json:"underlyingType,omitempty"`
	IsFlags        bool         `yaml:"is_flags,omitempty" json:"isFlags,omitempty"`
	Members        []EnumMember `yaml:"members,omitempty" json:"members,omitempty"`
}

// EnumMember is one member of an enum type. Value is kept as the raw
// attribute text; it is optional in the source.
type EnumMember struct {
	Name  string `yaml:"name" json:"name"`
	Value string `yaml:"value,omitempty" json:"value,omitempty"`
}

// Property is a structural property of an entity or complex type.
type Property struct {
	Name      string `yaml:"name" json:"name"`
	Type      string `yaml:"type" json:"type"`
	Nullable  bool   `yaml:"nullable" json:"nullable"`
	IsKey     bool   `yaml:"is_key,omitempty" json:"isKey,omitempty"`
	MaxLength string `yaml:"max_length,omitempty" json:"maxLength,omitempty"`
	Precision string `yaml:"precision,omitempty" json:"precision,omitempty"`
	Scale     string `yaml:"scale,omitempty" json:"scale,omitempty"`
}

// NavigationProperty is a typed reference to another type, or a collection
// of one. TargetEntity is the bare type name: Collection() wrapper and
// namespace stripped. Type preserves the raw source string.
type NavigationProperty struct {
	Name         string                  `yaml:"name" json:"name"`
	Type         string                  `yaml:"type" json:"type"`
	TargetEntity string                  `yaml:"target_entity" json:"targetEntity"`
	IsCollection bool                    `yaml:"is_collection,omitempty" json:"isCollection,omitempty"`
	Partner      string                  `yaml:"partner,omitempty" json:"partner,omitempty"`
	Constraints  []ReferentialConstraint `yaml:"constraints,omitempty" json:"constraints,omitempty"`
}

// ReferentialConstraint ties a dependent property to a principal property.
type ReferentialConstraint struct {
	Property           string `yaml:"property" json:"property"`
	ReferencedProperty string `yaml:"referenced_property" json:"referencedProperty"`
}

// NavigationPathStep is one breadcrumb entry for drilling from an entity
// into nested complex-type collections.
type NavigationPathStep struct {
	Kind         string `yaml:"kind" json:"kind"` // entity or complex
	TypeName     string `yaml:"type_name" json:"typeName"`
	PropertyName string `yaml:"property_name" json:"propertyName"`
	DisplayName  string `yaml:"display_name" json:"displayName"`
}

// EntityByName returns the entity with the given bare name, or nil.
func (m *Metadata) EntityByName(name string) *Entity {
	for _, e := range m.AllEntities {
		if e.Name == name {
			return e
		}
	}
	return nil
}

// ComplexTypeByName resolves a complex type by bare name, or by full name
// ending in ".name" for namespace-qualified lookups. Returns nil when
// unresolved.
func (m *Metadata) ComplexTypeByName(name string) *ComplexType {
	for _, ct := range m.AllComplexTypes {
		if ct.Name == name || ct.FullName == name || strings.HasSuffix(ct.FullName, "."+name) {
			return ct
		}
	}
	return nil
}

// CollectionProperties returns the properties of an entity whose type is a
// collection of a complex type declared in this document.
func (m *Metadata) CollectionProperties(props []Property) []Property {
	var out []Property
	for _, p := range props {
		if inner, ok := CollectionInner(p.Type); ok && m.ComplexTypeByName(LastSegment(inner)) != nil {
			out = append(out, p)
		}
	}
	return out
}

// CollectionInner unwraps a Collection(X) type string, returning X and true,
// or "" and false when the string is not a collection.
func CollectionInner(rawType string) (string, bool) {
	if strings.HasPrefix(rawType, "Collection(") && strings.HasSuffix(rawType, ")") {
		return rawType[len("Collection(") : len(rawType)-1], true
	}
	return "", false
}

// LastSegment returns the final dot-separated segment of a type name,
// stripping any namespace qualification.
func LastSegment(name string) string {
	if i := strings.LastIndex(name, "."); i >= 0 {
		return name[i+1:]
	}
	return name
}
