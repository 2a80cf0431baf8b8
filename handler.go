package shell

import (
	shellhandler "github.com/mkdocstrings/shell/pkg/handlers/shell"
)

// Handler aliases the shell handler so callers can depend on the root package
// alone.
type Handler = shellhandler.Handler

// GetHandler returns a shell handler for theme. Identifiers are resolved
// relative to the directory of configFilePath (or the current directory), and
// templates in customTemplates/shell/<theme> override the built-in ones. Extra
// configuration is accepted for host compatibility and ignored.
func GetHandler(theme, customTemplates, configFilePath string, _ map[string]any) *Handler {
	return shellhandler.New(shellhandler.Name, theme, customTemplates, configFilePath)
}
