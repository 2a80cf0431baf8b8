package shelldoc

import "strings"

// Kind groups tags that share the same section layout.
type Kind string

const (
	KindText     Kind = "text"
	KindNamed    Kind = "named"
	KindOption   Kind = "option"
	KindExample  Kind = "example"
	KindFunction Kind = "function"
)

// DocFile is the structured documentation of a single script.
type DocFile struct {
	Filename  string     `json:"filename"`
	Sections  []Section  `json:"sections"`
	Functions []Function `json:"functions,omitempty"`
}

// Section is one tagged block of documentation, in file order.
type Section struct {
	Tag   string `json:"tag"`
	Kind  Kind   `json:"kind"`
	Title string `json:"title"`
	Line  int    `json:"line"`

	Text string `json:"text,omitempty"`

	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`

	Short    string `json:"short,omitempty"`
	Long     string `json:"long,omitempty"`
	Argument string `json:"argument,omitempty"`

	Brief string `json:"brief,omitempty"`
	Code  string `json:"code,omitempty"`

	Prototype string `json:"prototype,omitempty"`
	Defined   bool   `json:"defined,omitempty"`

	// GroupStart marks the first section of a run sharing one tag. It is set
	// by GroupSections at render time.
	GroupStart bool `json:"group_start,omitempty"`
}

// Function is a shell function definition found in the script body.
type Function struct {
	Name string `json:"name"`
	Line int    `json:"line"`
}

// ByTag returns the sections carrying tag, preserving file order.
func (d DocFile) ByTag(tag string) []Section {
	tag = strings.ToLower(strings.TrimSpace(tag))
	var out []Section
	for _, section := range d.Sections {
		if section.Tag == tag {
			out = append(out, section)
		}
	}
	return out
}

// GroupSections returns a copy of sections with GroupStart set on every
// section whose tag differs from the one before it.
func GroupSections(sections []Section) []Section {
	out := make([]Section, len(sections))
	for i, section := range sections {
		section.GroupStart = i == 0 || sections[i-1].Tag != section.Tag
		out[i] = section
	}
	return out
}

// SourcePath returns the script the documentation was read from.
func (d DocFile) SourcePath() string { return d.Filename }

// Brief returns the text of the first brief section, if any.
func (d DocFile) Brief() string {
	for _, section := range d.Sections {
		if section.Tag == "brief" {
			return section.Text
		}
	}
	return ""
}

type tagSpec struct {
	kind  Kind
	title string
}

var tagSpecs = map[string]tagSpec{
	"brief":     {KindText, "Brief"},
	"desc":      {KindText, "Description"},
	"usage":     {KindText, "Usage"},
	"note":      {KindText, "Notes"},
	"caveat":    {KindText, "Caveats"},
	"bug":       {KindText, "Bugs"},
	"author":    {KindText, "Authors"},
	"copyright": {KindText, "Copyright"},
	"date":      {KindText, "Date"},
	"license":   {KindText, "License"},
	"version":   {KindText, "Version"},
	"stdin":     {KindText, "Standard input"},
	"stdout":    {KindText, "Standard output"},
	"stderr":    {KindText, "Standard error"},
	"seealso":   {KindText, "See also"},
	"env":       {KindNamed, "Environment variables"},
	"file":      {KindNamed, "Files"},
	"exit":      {KindNamed, "Exit status"},
	"error":     {KindNamed, "Errors"},
	"option":    {KindOption, "Options"},
	"example":   {KindExample, "Examples"},
	"function":  {KindFunction, "Functions"},
}

// tagAliases maps alternate spellings onto canonical tags.
var tagAliases = map[string]string{
	"description": "desc",
	"see":         "seealso",
	"see_also":    "seealso",
	"environment": "env",
	"exitcode":    "exit",
	"return":      "exit",
	"func":        "function",
}

// CanonicalTag normalises a raw tag name.
func CanonicalTag(raw string) string {
	tag := strings.ToLower(strings.TrimSpace(raw))
	if alias, ok := tagAliases[tag]; ok {
		return alias
	}
	return tag
}

// LookupTag reports the section kind and display title of tag. Unknown tags
// are text sections titled after the tag itself.
func LookupTag(tag string) (Kind, string, bool) {
	spec, ok := tagSpecs[CanonicalTag(tag)]
	if !ok {
		title := strings.TrimSpace(tag)
		if title != "" {
			title = strings.ToUpper(title[:1]) + title[1:]
		}
		return KindText, title, false
	}
	return spec.kind, spec.title, true
}
