package config

// SampleConfig returns a fully commented configuration file
func SampleConfig() string {
	return `# BugFinder configuration
#
# Search order (first match wins for each key):
#   ./.bugfinder.yaml
#   ~/.config/bugfinder/config.yaml
#   /etc/bugfinder/config.yaml
# Every key can also be set with a BUGFINDER_ environment variable,
# e.g. BUGFINDER_SERVICE_ENDPOINT or BUGFINDER_WATCH_DEBOUNCE.

version: "1.0"

service:
  # Base URL of the Bug Analysis Service
  endpoint: "http://localhost:8000"
  # Route that analyzes a snippet (POST)
  find_bug_path: "/find-bug"
  # Route that lists sample cases (GET)
  sample_cases_path: "/sample-cases"
  # Per-request timeout; 0 disables it
  timeout: 30s

ui:
  # default | high-contrast | minimal
  theme: "default"
  # python | javascript | c
  default_language: "python"
  # Render descriptions and suggestions as markdown
  markdown: true

output:
  # text | json | markdown | html
  default_format: "text"
  # auto | always | never
  color_mode: "auto"
  verbose: false
  # Where logs go while the interactive view owns the terminal.
  # Empty discards them.
  log_file: ""

watch:
  # Quiet period after a file change before re-analysis
  debounce: 300ms
`
}

// MinimalSampleConfig returns a configuration with only the essential keys
func MinimalSampleConfig() string {
	return `version: "1.0"

service:
  endpoint: "http://localhost:8000"
  timeout: 30s

ui:
  default_language: "python"
`
}
