package formatter

import (
	"encoding/json"

	"github.com/yildizm/BugFinder/internal/bugapi"
)

// jsonFormatter formats output as JSON in the service's wire shape
type jsonFormatter struct{}

// NewJSON creates a new JSON formatter
func NewJSON() Formatter {
	return &jsonFormatter{}
}

func (f *jsonFormatter) FormatReport(report *bugapi.Report) ([]byte, error) {
	return marshal(report)
}

func (f *jsonFormatter) FormatSamples(cases []bugapi.Report) ([]byte, error) {
	if cases == nil {
		cases = []bugapi.Report{}
	}
	return marshal(cases)
}

func marshal(v interface{}) ([]byte, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}
