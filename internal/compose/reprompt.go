package compose

// Re-prompts restate the answer each planning step is waiting for.
const (
	RepromptTime         = "Sorry, I didn't catch a time. You can say something like \"arrive by 5 pm\", or \"no specific time\"."
	RepromptWeather      = "Please say yes if you'd like a well-lit route with good visibility, or no if any route is fine."
	RepromptBreaks       = "Should I plan breaks along the way? Please answer yes or no."
	RepromptConfirmation = "Just say \"start\" or \"yes\" when you're ready to begin navigation."
	RepromptNavigating   = "Navigation is already underway. Reset the session to plan a new trip."
)

// Surfaced collaborator failures.
const (
	MicrophoneDenied = "Microphone access was denied. Please allow microphone access and try again."
	SpeakFailed      = "Failed to speak response"
)

// RecognitionError turns a recognizer error code into a user-facing line.
func RecognitionError(code string) string {
	if code == "not-allowed" {
		return MicrophoneDenied
	}
	return "Error: " + code
}
