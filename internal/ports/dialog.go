package ports

// ClockFormData holds the result of the interactive setup form.
type ClockFormData struct {
	Server         string
	UTCOffsetHours int
	ResyncInterval string
	ResyncMode     string
	Device         string
	Confirmed      bool
}

// DialogProvider abstracts interactive user dialogs.
// Implementations may use TUI forms or test fakes.
type DialogProvider interface {
	// ClockConfigForm shows a form to confirm/edit the clock configuration.
	// Pre-filled values come from the input data; the user can modify them.
	// Returns the final form data with Confirmed=true if the user accepted.
	ClockConfigForm(prefill ClockFormData) (ClockFormData, error)
}
