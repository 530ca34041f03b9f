package emulator

import (
	"strings"

	"github.com/dop251/goja"
)

// Check compiles script without running it and returns the syntax error, if any.
// Blank scripts are valid.
func Check(name, script string) error {
	if strings.TrimSpace(script) == "" {
		return nil
	}
	_, err := goja.Compile(name, script, false)
	return err
}
