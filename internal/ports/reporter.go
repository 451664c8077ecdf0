package ports

// ReporterPort receives human-readable progress text. Sections are framed
// by blank lines.
type ReporterPort interface {
	Line(text string) error
	Section(text string) error
}
