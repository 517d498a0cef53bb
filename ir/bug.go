package ir

import (
	"fmt"
	"path"
	"strings"

	"github.com/nikandfor/loc"
)

// bug panics with an internal consistency error. Such errors are bugs in
// the code manipulating the IR, never a property of the input.
func bug(format string, args ...any) {
	name, _, line := loc.Caller(1).NameFileLine()
	name = strings.TrimPrefix(path.Ext(name), ".")

	panic(fmt.Sprintf("BUG: "+format+" (%s:%d)", append(args, name, line)...))
}
