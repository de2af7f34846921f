package domain

import "regexp"

type ResultStatus string

const (
	ResultStatusPending  ResultStatus = "PENDING"
	ResultStatusFinished ResultStatus = "FINISHED"
	ResultStatusDNF      ResultStatus = "DNF"
	ResultStatusDNS      ResultStatus = "DNS"
)

// SubmittableResultStatuses are the statuses a rider may self-report.
var SubmittableResultStatuses = []ResultStatus{
	ResultStatusFinished,
	ResultStatusDNF,
	ResultStatusDNS,
}

func IsSubmittableResultStatus(s ResultStatus) bool {
	for _, v := range SubmittableResultStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// finishTimePattern matches elapsed times "H:MM" through "HHH:MM".
// Three hour digits cover multi-day elapsed times on 1200k+ events.
var finishTimePattern = regexp.MustCompile(`^\d{1,3}:\d{2}$`)

// ValidFinishTime reports whether s is a well-formed elapsed finish time.
func ValidFinishTime(s string) bool {
	return finishTimePattern.MatchString(s)
}
