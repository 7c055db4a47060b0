package messages

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/kipr/kipr-scratch/internal/codegen/common"
	"github.com/kipr/kipr-scratch/internal/codegen/meta"
)

// FileName is the artifact name of the message catalog. The patcher appends
// its content to the vendored msg/messages.js.
const FileName = "messages.js"

// Template returns the display template of fn, e.g. "get_analog(%1, %2)".
func Template(fn *meta.Function) string {
	placeholders := make([]string, len(fn.Parameters))
	for i := range fn.Parameters {
		placeholders[i] = fmt.Sprintf("%%%d", i+1)
	}
	return fn.Name + "(" + strings.Join(placeholders, ", ") + ")"
}

// Render produces one message per whitelisted function followed by one label
// per parameter, in catalog order. Functions the block emitter skips are
// still included.
func Render(md *meta.Metadata) meta.Artifact {
	var b strings.Builder
	for _, module := range md.Whitelisted() {
		for i := range module.Functions {
			fn := &module.Functions[i]
			writeMsg(&b, common.MessageKey(module.Name, fn.Name), Template(fn))
			for _, p := range fn.Parameters {
				writeMsg(&b, common.ParameterMessageKey(module.Name, fn.Name, p.Name), p.Name)
			}
		}
	}
	return meta.Artifact{Name: FileName, Content: []byte(b.String())}
}

func writeMsg(b *strings.Builder, key, value string) {
	b.WriteString("Blockly.Msg.")
	b.WriteString(key)
	b.WriteString(" = ")
	b.WriteString(common.JSString(value))
	b.WriteString(";\n")
}

func Generate(logger *slog.Logger, md *meta.Metadata) []meta.Artifact {
	art := Render(md)
	logger.Debug("Generated message catalog", "bytes", len(art.Content))
	return []meta.Artifact{art}
}
