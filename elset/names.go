package elset

import (
	"fmt"
	"strings"
)

const (
	MaxNameLength      = 80
	MaxShortNameLength = 20
)

// Group is one named element grouping, Elements nil means every element of the class
type Group struct {
	Long     string
	Short    string
	Elements []int
}

type NameTooLongError struct {
	Name  string
	Limit int
}

func (e *NameTooLongError) Error() string {
	return fmt.Sprintf("element set name is longer than %d characters: %s", e.Limit, e.Name)
}

// StandardName concatenates the long identifiers, falling back to the short ones
func StandardName(groups ...Group) (string, error) {
	var long, short strings.Builder
	for _, g := range groups {
		long.WriteString(g.Long)
		short.WriteString(g.Short)
	}
	if long.Len() <= MaxNameLength {
		return long.String(), nil
	}
	if short.Len() <= MaxNameLength {
		return short.String(), nil
	}
	return "", &NameTooLongError{Name: short.String(), Limit: MaxNameLength}
}

// ShortName concatenates short identifiers only, used for beam and fluid sets
func ShortName(groups ...Group) (string, error) {
	var short strings.Builder
	for _, g := range groups {
		short.WriteString(g.Short)
	}
	if short.Len() <= MaxShortNameLength {
		return short.String(), nil
	}
	return "", &NameTooLongError{Name: short.String(), Limit: MaxShortNameLength}
}
