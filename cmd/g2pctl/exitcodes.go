package main

// Exit codes
const (
	ExitSuccess     = 0 // Success
	ExitError       = 1 // General error (invalid arguments, runtime failure)
	ExitConfigError = 2 // Configuration or database connection error
	ExitDataError   = 3 // Input file or database content rejected the run
)
