package domain

import "fmt"

// PercentileCommand is the analyze command a norms plugin exposes.
const PercentileCommand = "percentile"

// PercentileRequest is the input_json payload of PercentileCommand.
type PercentileRequest struct {
	TestName string  `json:"test_name"`
	Category string  `json:"category"`
	Score    float64 `json:"score"`
	Unit     string  `json:"unit"`
}

// PercentileAnswer is the output_json payload of PercentileCommand.
type PercentileAnswer struct {
	Percentile int    `json:"percentile"`
	Source     string `json:"source,omitempty"`
}

func (a PercentileAnswer) Validate() error {
	if a.Percentile < 0 || a.Percentile > 100 {
		return fmt.Errorf("percentile %d outside 0..100", a.Percentile)
	}
	return nil
}
