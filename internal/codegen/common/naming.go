package common

import (
	"strings"
	"unicode"
)

// BlockID returns the globally unique block type of a bound function, e.g. "analog_get_analog".
func BlockID(module, function string) string {
	return module + "_" + function
}

// MessageKey returns the Blockly.Msg key of a function block, e.g. "ANALOG_GET_ANALOG".
func MessageKey(module, function string) string {
	return strings.ToUpper(module + "_" + function)
}

// ParameterMessageKey returns the Blockly.Msg key of an argument label, e.g. "ANALOG_GET_ANALOG_PORT".
func ParameterMessageKey(module, function, parameter string) string {
	return strings.ToUpper(module + "_" + function + "_" + parameter)
}

// InputName returns the input slot name of a parameter ("port" -> "PORT").
func InputName(parameter string) string {
	return strings.ToUpper(parameter)
}

// ColourExtension returns the name of the colour extension registered for a module.
func ColourExtension(module string) string {
	return "colours_" + module
}

// ToTitle turns a snake_case module name into a category label ("wait_for" -> "Wait For").
func ToTitle(s string) string {
	words := strings.FieldsFunc(s, func(r rune) bool {
		return r == '_' || r == '-' || unicode.IsSpace(r)
	})
	for i, word := range words {
		words[i] = strings.ToUpper(word[:1]) + word[1:]
	}
	return strings.Join(words, " ")
}

// JSString quotes s as a single-quoted JavaScript string literal.
func JSString(s string) string {
	var b strings.Builder
	b.WriteByte('\'')
	for _, r := range s {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case '\'':
			b.WriteString(`\'`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('\'')
	return b.String()
}

var xmlAttrReplacer = strings.NewReplacer(
	`&`, "&amp;",
	`<`, "&lt;",
	`>`, "&gt;",
	`"`, "&quot;",
	`'`, "&apos;",
)

// XMLAttr escapes s for use inside a double-quoted XML attribute that is
// itself embedded in a single-quoted JavaScript string.
func XMLAttr(s string) string {
	return xmlAttrReplacer.Replace(s)
}
