package styles

import "github.com/charmbracelet/lipgloss"

var (
	// Colors
	Primary   = lipgloss.Color("#7C3AED") // Purple
	Secondary = lipgloss.Color("#10B981") // Green
	Muted     = lipgloss.Color("#6B7280") // Gray
	Warning   = lipgloss.Color("#F59E0B") // Amber
	Error     = lipgloss.Color("#EF4444") // Red
	White     = lipgloss.Color("#FFFFFF")
	Black     = lipgloss.Color("#000000")

	// Base styles
	App = lipgloss.NewStyle().
		Padding(1, 2)

	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(Primary).
		MarginBottom(1)

	Subtitle = lipgloss.NewStyle().
			Foreground(Muted).
			Italic(true)

	// Gallery rows
	Row = lipgloss.NewStyle()

	RowFocused = lipgloss.NewStyle().
			Background(Primary).
			Foreground(White).
			Bold(true)

	RowMarked = lipgloss.NewStyle().
			Foreground(Warning).
			Bold(true)

	RowTrashed = lipgloss.NewStyle().
			Foreground(Muted).
			Strikethrough(true)

	StarGlyph = lipgloss.NewStyle().
			Foreground(Warning).
			SetString("★")

	TagText = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#60A5FA")) // Blue

	CostText = lipgloss.NewStyle().
			Foreground(Secondary)

	// Jobs strip
	JobRunning = lipgloss.NewStyle().
			Foreground(Secondary).
			Bold(true)

	JobPending = lipgloss.NewStyle().
			Foreground(Warning)

	JobFailed = lipgloss.NewStyle().
			Foreground(Error)

	// Status bar
	StatusBar = lipgloss.NewStyle().
			Background(lipgloss.Color("#1F2937")).
			Foreground(White).
			Padding(0, 1)

	StatusText = lipgloss.NewStyle().
			Foreground(Muted)

	// Input styles
	InputLabel = lipgloss.NewStyle().
			Foreground(Secondary).
			Bold(true)

	InputField = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Primary).
			Padding(0, 1)

	InputFocused = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Secondary).
			Padding(0, 1)

	// Help styles
	HelpKey = lipgloss.NewStyle().
		Foreground(Primary).
		Bold(true)

	HelpDesc = lipgloss.NewStyle().
			Foreground(Muted)

	HelpSeparator = lipgloss.NewStyle().
			Foreground(Muted).
			SetString(" • ")

	// Message styles
	Success = lipgloss.NewStyle().
		Foreground(Secondary).
		Bold(true)

	ErrorMsg = lipgloss.NewStyle().
			Foreground(Error).
			Bold(true)

	// Compare panes
	ComparePane = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Muted).
			Padding(0, 1)

	// Muted text style (for using Muted color as a style)
	MutedText = lipgloss.NewStyle().
			Foreground(Muted)
)
