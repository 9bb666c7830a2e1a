package views

// ViewState contains common state shared by all view models.
// Embed this struct in view models to get width/height and message handling.
type ViewState struct {
	Width      int
	Height     int
	Message    string
	MessageErr bool
}

// SetSize updates the view dimensions
func (s *ViewState) SetSize(width, height int) {
	s.Width = width
	s.Height = height
}

// SetMessage sets a message to display in the view
func (s *ViewState) SetMessage(msg string, isErr bool) {
	s.Message = msg
	s.MessageErr = isErr
}

// ClearMessage clears the current message
func (s *ViewState) ClearMessage() {
	s.Message = ""
	s.MessageErr = false
}

// Messages for view switching
type SwitchToGalleryMsg struct{}

type SwitchToDetailMsg struct {
	ID int64
}

type SwitchToCompareMsg struct{}

// SwitchToGenerateMsg opens the generate form. ReferencePaths, when set,
// pre-fills the reference images field with archived paths.
type SwitchToGenerateMsg struct {
	ReferencePaths []string
}

type SwitchToHelpMsg struct{}

// RegenerateMarkedMsg asks the app to re-submit one generation per marked
// record. The app owns the provider wiring, so the view only signals.
type RegenerateMarkedMsg struct{}

// BatchDoneMsg reports the outcome of a batch operation the app ran on the
// view's behalf.
type BatchDoneMsg struct {
	Message string
	Err     error
}

// OpenViewerMsg requests opening an image in the external viewer
type OpenViewerMsg struct {
	Path string
}

type errMsg struct {
	err error
}

type successMsg struct {
	message string
}
