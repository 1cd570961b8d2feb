package enums

import "fmt"

// QualityMetric identifies which data-quality dimension a score measures.
type QualityMetric string

const (
	QualityMetricAccuracy     QualityMetric = "ACCURACY"
	QualityMetricCompleteness QualityMetric = "COMPLETENESS"
	QualityMetricTimeliness   QualityMetric = "TIMELINESS"
)

var validQualityMetrics = []QualityMetric{
	QualityMetricAccuracy,
	QualityMetricCompleteness,
	QualityMetricTimeliness,
}

// IsValid reports whether the value is a known QualityMetric.
func (q QualityMetric) IsValid() bool {
	for _, candidate := range validQualityMetrics {
		if candidate == q {
			return true
		}
	}
	return false
}

// ParseQualityMetric converts raw input into a QualityMetric.
func ParseQualityMetric(value string) (QualityMetric, error) {
	for _, candidate := range validQualityMetrics {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid quality metric %q", value)
}
