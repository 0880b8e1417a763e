package metadata

import "strings"

// DisplayName strips the conventional complex-type prefix from a type name
// for presentation. Entity names pass through unchanged because they do not
// follow the convention.
func DisplayName(typeName string) string {
	return DisplayNameWithPrefix(typeName, DefaultComplexTypePrefix)
}

// DisplayNameWithPrefix strips a configured prefix convention.
func DisplayNameWithPrefix(typeName, prefix string) string {
	if prefix != "" && strings.HasPrefix(typeName, prefix) && len(typeName) > len(prefix) {
		return typeName[len(prefix):]
	}
	return typeName
}
